package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/stwalsh4118/landrecords/internal/models"
)

// MockLandRecordRepository is a mock implementation of LandRecordRepository for testing.
// Successful inserts assign fresh IDs the way the real repository does.
type MockLandRecordRepository struct {
	mock.Mock
}

func (m *MockLandRecordRepository) InsertLandRecord(ctx context.Context, record *models.LandRecord) error {
	args := m.Called(ctx, record)
	if err := args.Error(0); err != nil {
		return err
	}
	record.ID = uuid.New()
	return nil
}

func (m *MockLandRecordRepository) InsertYearSlab(ctx context.Context, slab *models.YearSlab) error {
	args := m.Called(ctx, slab)
	if err := args.Error(0); err != nil {
		return err
	}
	slab.ID = uuid.New()
	return nil
}

func (m *MockLandRecordRepository) InsertNondhs(ctx context.Context, nondhs []models.Nondh) error {
	args := m.Called(ctx, nondhs)
	if err := args.Error(0); err != nil {
		return err
	}
	for i := range nondhs {
		nondhs[i].ID = uuid.New()
	}
	return nil
}

func (m *MockLandRecordRepository) InsertNondhDetail(ctx context.Context, detail *models.NondhDetail, affected []models.AffectedNondh) error {
	args := m.Called(ctx, detail, affected)
	if err := args.Error(0); err != nil {
		return err
	}
	detail.ID = uuid.New()
	for i := range affected {
		affected[i].ID = uuid.New()
		affected[i].NondhDetailID = detail.ID
	}
	return nil
}

func (m *MockLandRecordRepository) InsertOwnerRelation(ctx context.Context, owner *models.OwnerRelation) error {
	args := m.Called(ctx, owner)
	if err := args.Error(0); err != nil {
		return err
	}
	owner.ID = uuid.New()
	return nil
}

func (m *MockLandRecordRepository) FindLandRecord(ctx context.Context, id uuid.UUID) (*models.LandRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	record, ok := args.Get(0).(*models.LandRecord)
	if !ok {
		return nil, args.Error(1)
	}
	return record, args.Error(1)
}

func (m *MockLandRecordRepository) ListYearSlabs(ctx context.Context, landRecordID uuid.UUID) ([]models.YearSlab, error) {
	args := m.Called(ctx, landRecordID)
	slabs, _ := args.Get(0).([]models.YearSlab)
	return slabs, args.Error(1)
}

func (m *MockLandRecordRepository) ListNondhs(ctx context.Context, landRecordID uuid.UUID) ([]models.Nondh, error) {
	args := m.Called(ctx, landRecordID)
	nondhs, _ := args.Get(0).([]models.Nondh)
	return nondhs, args.Error(1)
}

func (m *MockLandRecordRepository) ListNondhDetails(ctx context.Context, landRecordID uuid.UUID) ([]models.NondhDetail, error) {
	args := m.Called(ctx, landRecordID)
	details, _ := args.Get(0).([]models.NondhDetail)
	return details, args.Error(1)
}

func (m *MockLandRecordRepository) ListAffectedNondhs(ctx context.Context, landRecordID uuid.UUID) ([]models.AffectedNondh, error) {
	args := m.Called(ctx, landRecordID)
	affected, _ := args.Get(0).([]models.AffectedNondh)
	return affected, args.Error(1)
}

func (m *MockLandRecordRepository) ListOwnerRelations(ctx context.Context, landRecordID uuid.UUID) ([]models.OwnerRelation, error) {
	args := m.Called(ctx, landRecordID)
	owners, _ := args.Get(0).([]models.OwnerRelation)
	return owners, args.Error(1)
}

// calledWith returns the first argument after ctx of every call to method.
func calledWith[T any](m *MockLandRecordRepository, method string) []T {
	var out []T
	for _, call := range m.Calls {
		if call.Method == method {
			out = append(out, call.Arguments.Get(1).(T))
		}
	}
	return out
}
