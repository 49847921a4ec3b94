package locks

import (
	"context"
	"sync"
	"time"
)

// MemoryLocker is an in-process Locker for single-instance deployments.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]memoryLease
	now  func() time.Time
	seq  uint64
}

type memoryLease struct {
	id      uint64
	expires time.Time
}

// NewMemoryLocker constructs an empty in-process locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		held: make(map[string]memoryLease),
		now:  time.Now,
	}
}

// Acquire takes key for ttl. An expired lease is treated as free.
func (m *MemoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if lease, ok := m.held[key]; ok && now.Before(lease.expires) {
		return nil, ErrLocked
	}

	m.seq++
	id := m.seq
	m.held[key] = memoryLease{id: id, expires: now.Add(ttl)}

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			// only drop our own lease; it may have expired and been retaken
			if lease, ok := m.held[key]; ok && lease.id == id {
				delete(m.held, key)
			}
		})
	}, nil
}
