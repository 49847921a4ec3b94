// Package locks serializes uploads that target the same land record.
package locks

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrLocked is returned when another upload holds the lock.
var ErrLocked = errors.New("lock is held by another upload")

// Locker acquires short-lived exclusive locks keyed by string.
// The returned release func is safe to call more than once.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// UploadKey derives the lock key for an upload from its location and the
// survey identifiers that name the land record.
func UploadKey(district, taluka, village, surveyNo, blockNo, reSurveyNo string) string {
	parts := []string{district, taluka, village, surveyNo, blockNo, reSurveyNo}
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return "upload:" + strings.Join(parts, "|")
}
