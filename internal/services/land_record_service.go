package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/stwalsh4118/landrecords/internal/logger"
	"github.com/stwalsh4118/landrecords/internal/models"
	"github.com/stwalsh4118/landrecords/internal/nondh"
	"github.com/stwalsh4118/landrecords/internal/repository"
)

// LandRecordView is a stored land record with its year slabs.
type LandRecordView struct {
	*models.LandRecord
	YearSlabs []models.YearSlab `json:"yearSlabs"`
}

// DetailView is a stored nondh detail with its owners and cross-references.
type DetailView struct {
	models.NondhDetail
	Owners   []models.OwnerRelation `json:"owners"`
	Affected []models.AffectedNondh `json:"affectedNondhDetails"`
}

// ChainEntry is one nondh in resolved sequence order.
type ChainEntry struct {
	models.Nondh
	PrimaryKind models.SurveyKind `json:"primaryKind"`
	Details     []DetailView      `json:"details"`
	Position    int               `json:"position"`
	Valid       bool              `json:"valid"`
}

// LandRecordService defines read access to ingested land records.
type LandRecordService interface {
	// GetLandRecord returns the land record and its year slabs.
	// Returns ErrLandRecordNotFound if no record has the ID.
	GetLandRecord(ctx context.Context, id uuid.UUID) (*LandRecordView, error)

	// GetNondhChain returns the land record's nondhs in sequence order with
	// their resolved validity.
	// Returns ErrLandRecordNotFound if no record has the ID.
	GetNondhChain(ctx context.Context, id uuid.UUID) ([]ChainEntry, error)
}

// landRecordService is the concrete implementation of LandRecordService.
type landRecordService struct {
	repo repository.LandRecordRepository
	log  *logger.Logger
}

// NewLandRecordService creates a new instance of LandRecordService.
func NewLandRecordService(repo repository.LandRecordRepository, log *logger.Logger) LandRecordService {
	return &landRecordService{
		repo: repo,
		log:  log,
	}
}

func (s *landRecordService) GetLandRecord(ctx context.Context, id uuid.UUID) (*LandRecordView, error) {
	record, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	slabs, err := s.repo.ListYearSlabs(ctx, id)
	if err != nil {
		s.log.Error("Failed to list year slabs", err, logger.Fields{"land_record_id": id.String()})
		return nil, fmt.Errorf("failed to list year slabs: %w", err)
	}

	return &LandRecordView{LandRecord: record, YearSlabs: slabs}, nil
}

func (s *landRecordService) GetNondhChain(ctx context.Context, id uuid.UUID) ([]ChainEntry, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}

	nondhs, err := s.repo.ListNondhs(ctx, id)
	if err != nil {
		return nil, s.listFailed("nondhs", id, err)
	}
	details, err := s.repo.ListNondhDetails(ctx, id)
	if err != nil {
		return nil, s.listFailed("nondh details", id, err)
	}
	affected, err := s.repo.ListAffectedNondhs(ctx, id)
	if err != nil {
		return nil, s.listFailed("affected nondhs", id, err)
	}
	owners, err := s.repo.ListOwnerRelations(ctx, id)
	if err != nil {
		return nil, s.listFailed("owner relations", id, err)
	}

	ownersByDetail := make(map[uuid.UUID][]models.OwnerRelation)
	for _, o := range owners {
		ownersByDetail[o.NondhDetailID] = append(ownersByDetail[o.NondhDetailID], o)
	}
	affectedByDetail := make(map[uuid.UUID][]models.AffectedNondh)
	for _, a := range affected {
		affectedByDetail[a.NondhDetailID] = append(affectedByDetail[a.NondhDetailID], a)
	}

	// the earliest uploaded detail per number decides its status, matching ingestion
	detailsByNondh := make(map[uuid.UUID][]DetailView)
	firstByNumber := make(map[string]models.NondhDetail)
	for _, d := range details {
		view := DetailView{
			NondhDetail: d,
			Owners:      nonNil(ownersByDetail[d.ID]),
			Affected:    nonNil(affectedByDetail[d.ID]),
		}
		detailsByNondh[d.NondhID] = append(detailsByNondh[d.NondhID], view)
		if first, seen := firstByNumber[d.NondhNumber]; !seen || d.Ordinal < first.Ordinal {
			firstByNumber[d.NondhNumber] = d
		}
	}
	statusByNumber := make(map[string]models.Status, len(firstByNumber))
	for number, d := range firstByNumber {
		statusByNumber[number] = d.Status
	}

	resolutions := nondh.ResolveChain(nondh.Sort(nondhs), statusByNumber)
	chain := make([]ChainEntry, 0, len(resolutions))
	for _, r := range resolutions {
		chain = append(chain, ChainEntry{
			Nondh:       r.Nondh,
			PrimaryKind: nondh.PrimaryKind(r.Nondh.AffectedSNos),
			Details:     nonNil(detailsByNondh[r.Nondh.ID]),
			Position:    r.Position,
			Valid:       r.Valid,
		})
	}

	s.log.Debug("Resolved nondh chain", logger.Fields{
		"land_record_id": id.String(),
		"nondhs":         len(chain),
	})

	return chain, nil
}

func (s *landRecordService) find(ctx context.Context, id uuid.UUID) (*models.LandRecord, error) {
	record, err := s.repo.FindLandRecord(ctx, id)
	if err != nil {
		s.log.Error("Failed to query land record", err, logger.Fields{"land_record_id": id.String()})
		return nil, fmt.Errorf("failed to query land record: %w", err)
	}
	if record == nil {
		return nil, fmt.Errorf("%w: %s", ErrLandRecordNotFound, id)
	}
	return record, nil
}

func (s *landRecordService) listFailed(what string, id uuid.UUID, err error) error {
	s.log.Error("Failed to list "+what, err, logger.Fields{"land_record_id": id.String()})
	return fmt.Errorf("failed to list %s: %w", what, err)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
