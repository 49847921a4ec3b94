package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/stwalsh4118/landrecords/internal/area"
	"github.com/stwalsh4118/landrecords/internal/config"
	"github.com/stwalsh4118/landrecords/internal/locks"
	"github.com/stwalsh4118/landrecords/internal/logger"
	"github.com/stwalsh4118/landrecords/internal/metrics"
	"github.com/stwalsh4118/landrecords/internal/models"
	"github.com/stwalsh4118/landrecords/internal/nondh"
	"github.com/stwalsh4118/landrecords/internal/repository"
	"github.com/stwalsh4118/landrecords/internal/validation"
)

// DateLayout is the ddmmyyyy layout of every uploaded date.
const DateLayout = "02012006"

// Service-level errors
var (
	ErrStructuralCheck    = errors.New("upload failed structural check")
	ErrLandRecordPersist  = errors.New("failed to store land record")
	ErrNondhsPersist      = errors.New("failed to store nondhs")
	ErrLandRecordNotFound = errors.New("land record not found")
	ErrUploadInProgress   = errors.New("an upload for this land record is already in progress")
)

// Stats counts what an upload stored.
type Stats struct {
	Nondhs              int `json:"nondhs"`
	NondhDetails        int `json:"nondhDetails"`
	TotalOwners         int `json:"totalOwners"`
	SkippedNondhDetails int `json:"skippedNondhDetails"`
	YearSlabs           int `json:"yearSlabs"`
}

// Report is the outcome of one upload. It is returned on partial failure too.
type Report struct {
	LandRecordID *uuid.UUID `json:"landRecordId,omitempty"`
	Message      string     `json:"message"`
	Errors       []string   `json:"errors,omitempty"`
	Stats        Stats      `json:"stats"`
	Success      bool       `json:"success"`
}

// IngestionService defines the upload pipeline.
type IngestionService interface {
	// Ingest stores one upload and returns its report.
	// Structural failures return ErrStructuralCheck with nothing written.
	// Returns ErrUploadInProgress if the same land record is being uploaded.
	// Returns ErrLandRecordPersist or ErrNondhsPersist when the upload cannot proceed.
	// Per-detail and per-owner failures never produce an error; they are
	// listed in Report.Errors.
	Ingest(ctx context.Context, upload *models.Upload) (*Report, error)
}

// ingestionService is the concrete implementation of IngestionService.
type ingestionService struct {
	repo      repository.LandRecordRepository
	validator *validation.Validator
	entries   *nondh.EntryValidator
	locker    locks.Locker
	metrics   *metrics.Metrics
	log       *logger.Logger
	cfg       config.IngestConfig
}

// NewIngestionService creates a new IngestionService. locker and m may be nil.
func NewIngestionService(
	repo repository.LandRecordRepository,
	v *validation.Validator,
	locker locks.Locker,
	m *metrics.Metrics,
	log *logger.Logger,
	cfg config.IngestConfig,
) IngestionService {
	if cfg.DetailWorkers < 1 {
		cfg.DetailWorkers = 1
	}
	return &ingestionService{
		repo:      repo,
		validator: v,
		entries:   nondh.NewEntryValidator(v),
		locker:    locker,
		metrics:   m,
		log:       log,
		cfg:       cfg,
	}
}

// detailJob is a validated detail matched to its stored nondh.
type detailJob struct {
	input    *models.NondhDetailInput
	label    string
	nondh    models.Nondh
	index    int
	detail   *models.NondhDetail
	affected []models.AffectedNondh
}

func (s *ingestionService) Ingest(ctx context.Context, upload *models.Upload) (*Report, error) {
	start := time.Now()
	log := s.log.WithUpload(uuid.NewString())

	// STRUCTURAL_CHECK
	if upload == nil {
		return s.reject(log, start, []string{"upload body is empty"})
	}
	if problems := s.validator.Messages(upload); len(problems) > 0 {
		return s.reject(log, start, problems)
	}

	basic := upload.BasicInfo
	if s.locker != nil {
		key := locks.UploadKey(basic.District, basic.Taluka, basic.Village,
			basic.SurveyNo.String(), basic.BlockNo.String(), basic.ReSurveyNo.String())
		release, err := s.locker.Acquire(ctx, key, s.cfg.LockTTL)
		if err != nil {
			if errors.Is(err, locks.ErrLocked) {
				log.Warn("Upload rejected, land record is locked", logger.Fields{"lock_key": key})
				s.observe(metrics.OutcomeRejected, start)
				return &Report{Message: ErrUploadInProgress.Error()}, ErrUploadInProgress
			}
			log.Error("Failed to acquire upload lock", err, logger.Fields{"lock_key": key})
			s.observe(metrics.OutcomeFailed, start)
			return &Report{Message: "failed to acquire upload lock"}, fmt.Errorf("acquire upload lock: %w", err)
		}
		defer release()
	}

	// PARCEL_PERSIST
	record := buildLandRecord(&basic)
	if err := s.repo.InsertLandRecord(ctx, record); err != nil {
		log.Error("Failed to store land record", err, logger.Fields{
			"district": record.District,
			"taluka":   record.Taluka,
			"village":  record.Village,
		})
		s.observe(metrics.OutcomeFailed, start)
		return &Report{Message: ErrLandRecordPersist.Error()}, fmt.Errorf("%w: %v", ErrLandRecordPersist, err)
	}
	recordID := record.ID
	log = log.With(logger.Fields{"land_record_id": recordID.String()})
	report := &Report{LandRecordID: &recordID}
	var failures []string

	// SLABS_PERSIST
	for i := range upload.YearSlabs {
		slab := buildYearSlab(&upload.YearSlabs[i], recordID)
		if err := s.repo.InsertYearSlab(ctx, slab); err != nil {
			log.Warn("Failed to store year slab", logger.Fields{
				"start_year": slab.StartYear,
				"end_year":   slab.EndYear,
				"error":      err.Error(),
			})
			failures = append(failures, fmt.Sprintf("year slab %d-%d: failed to store: %v", slab.StartYear, slab.EndYear, err))
			continue
		}
		report.Stats.YearSlabs++
	}
	s.addPersisted("year_slabs", report.Stats.YearSlabs)

	// AMENDMENTS_PERSIST
	nondhs := buildNondhs(upload.Nondhs, recordID)
	if len(nondhs) > 0 {
		if err := s.repo.InsertNondhs(ctx, nondhs); err != nil {
			log.Error("Failed to store nondhs", err, logger.Fields{"count": len(nondhs)})
			s.observe(metrics.OutcomeFailed, start)
			report.Message = ErrNondhsPersist.Error()
			report.Errors = append(failures, fmt.Sprintf("nondhs: failed to store: %v", err))
			return report, fmt.Errorf("%w: %v", ErrNondhsPersist, err)
		}
	}
	report.Stats.Nondhs = len(nondhs)
	s.addPersisted("nondhs", len(nondhs))

	// DETAILS_LOOP
	jobs, skips := s.planDetails(log, upload.NondhDetails, nondhs)
	s.persistDetails(ctx, log, jobs, skips)

	stored := make([]*detailJob, 0, len(jobs))
	for _, job := range jobs {
		if job.detail.ID != uuid.Nil {
			stored = append(stored, job)
		}
	}
	for _, skip := range skips {
		if skip != "" {
			failures = append(failures, skip)
			report.Stats.SkippedNondhDetails++
		}
	}
	report.Stats.NondhDetails = len(stored)
	s.addPersisted("nondh_details", len(stored))

	// SEQUENCE_AND_RESOLVE
	statusByNumber := make(map[string]models.Status, len(stored))
	for _, job := range stored {
		if _, seen := statusByNumber[job.nondh.Number]; !seen {
			statusByNumber[job.nondh.Number] = job.detail.Status
		}
	}
	resolutions := nondh.ResolveChain(nondh.Sort(nondhs), statusByNumber)
	validByNondh := make(map[uuid.UUID]bool, len(resolutions))
	for _, r := range resolutions {
		validByNondh[r.Nondh.ID] = r.Valid
	}
	if s.metrics != nil {
		s.metrics.ObserveChain(len(resolutions))
	}

	// OWNER_PERSIST
	for _, job := range stored {
		valid := validByNondh[job.nondh.ID]
		for _, owner := range buildOwners(job.input, job.detail.ID, valid) {
			if err := s.repo.InsertOwnerRelation(ctx, owner); err != nil {
				log.Warn("Failed to store owner relation", logger.Fields{
					"nondh_number": job.nondh.Number,
					"owner":        owner.OwnerName,
					"error":        err.Error(),
				})
				if s.metrics != nil {
					s.metrics.IncrementOwnerFailure()
				}
				failures = append(failures, fmt.Sprintf("%s: failed to store owner %q: %v", job.label, owner.OwnerName, err))
				continue
			}
			report.Stats.TotalOwners++
		}
	}
	s.addPersisted("owner_relations", report.Stats.TotalOwners)

	// REPORT
	report.Success = true
	report.Errors = failures
	report.Message = "Land record uploaded"
	if report.Stats.SkippedNondhDetails > 0 {
		report.Message = fmt.Sprintf("Land record uploaded with %d skipped nondh details", report.Stats.SkippedNondhDetails)
	}

	log.Info("Upload complete", logger.Fields{
		"nondhs":        report.Stats.Nondhs,
		"nondh_details": report.Stats.NondhDetails,
		"owners":        report.Stats.TotalOwners,
		"skipped":       report.Stats.SkippedNondhDetails,
		"year_slabs":    report.Stats.YearSlabs,
		"duration_ms":   time.Since(start).Milliseconds(),
	})
	s.observe(metrics.OutcomeSuccess, start)

	return report, nil
}

// planDetails validates every detail in input order and matches the accepted
// ones to their stored nondh. skips has one slot per input detail; a
// non-empty slot is the reported reason for skipping it.
func (s *ingestionService) planDetails(log *logger.Logger, inputs []models.NondhDetailInput, nondhs []models.Nondh) ([]*detailJob, []string) {
	byNumber := make(map[string]models.Nondh, len(nondhs))
	for _, n := range nondhs {
		if _, seen := byNumber[n.Number]; !seen {
			byNumber[n.Number] = n
		}
	}

	skips := make([]string, len(inputs))
	jobs := make([]*detailJob, 0, len(inputs))
	accepted := 0
	for i := range inputs {
		input := &inputs[i]
		number := strings.TrimSpace(input.NondhNumber.String())
		label := fmt.Sprintf("nondh detail #%d (nondh %s)", accepted+1, number)

		violations, advisories := s.entries.Check(input, accepted)
		if len(violations) > 0 {
			skips[i] = strings.Join(violations, "; ")
			log.Warn("Skipping invalid nondh detail", logger.Fields{
				"index":        i,
				"nondh_number": number,
				"reasons":      violations,
			})
			s.skipped()
			continue
		}
		accepted++
		if len(advisories) > 0 {
			log.Warn("Storing nondh detail with sentinel reason", logger.Fields{
				"index":        i,
				"nondh_number": number,
				"notes":        advisories,
			})
		}

		match, ok := byNumber[number]
		if !ok {
			skips[i] = fmt.Sprintf("%s: no nondh with number %q in nondhs", label, number)
			log.Warn("Skipping nondh detail with unknown nondh number", logger.Fields{
				"index":        i,
				"nondh_number": number,
			})
			s.skipped()
			continue
		}

		detail, affected := buildDetail(input, match)
		detail.Ordinal = i
		jobs = append(jobs, &detailJob{
			input:    input,
			label:    label,
			nondh:    match,
			index:    i,
			detail:   detail,
			affected: affected,
		})
	}
	return jobs, skips
}

// persistDetails stores the planned details on at most DetailWorkers
// goroutines and returns once every attempt has finished. Each job writes
// only its own skip slot.
func (s *ingestionService) persistDetails(ctx context.Context, log *logger.Logger, jobs []*detailJob, skips []string) {
	var g errgroup.Group
	g.SetLimit(s.cfg.DetailWorkers)

	for _, job := range jobs {
		g.Go(func() error {
			if err := s.repo.InsertNondhDetail(ctx, job.detail, job.affected); err != nil {
				job.detail.ID = uuid.Nil
				skips[job.index] = fmt.Sprintf("%s: failed to store: %v", job.label, err)
				log.Warn("Failed to store nondh detail", logger.Fields{
					"index":        job.index,
					"nondh_number": job.nondh.Number,
					"error":        err.Error(),
				})
				s.skipped()
			}
			return nil
		})
	}

	_ = g.Wait()
}

func (s *ingestionService) reject(log *logger.Logger, start time.Time, problems []string) (*Report, error) {
	log.Warn("Upload failed structural check", logger.Fields{"problems": problems})
	s.observe(metrics.OutcomeRejected, start)
	return &Report{
		Message: ErrStructuralCheck.Error(),
		Errors:  problems,
	}, fmt.Errorf("%w: %s", ErrStructuralCheck, strings.Join(problems, "; "))
}

func (s *ingestionService) observe(outcome string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveUpload(outcome, start)
	}
}

func (s *ingestionService) addPersisted(entity string, n int) {
	if s.metrics != nil {
		s.metrics.AddPersisted(entity, n)
	}
}

func (s *ingestionService) skipped() {
	if s.metrics != nil {
		s.metrics.IncrementSkippedDetail()
	}
}

func buildLandRecord(in *models.BasicInfoInput) *models.LandRecord {
	sqm, _ := area.Parse(in.Area)
	return &models.LandRecord{
		District:       strings.TrimSpace(in.District),
		Taluka:         strings.TrimSpace(in.Taluka),
		Village:        strings.TrimSpace(in.Village),
		SurveyNo:       optional(in.SurveyNo.String()),
		BlockNo:        optional(in.BlockNo.String()),
		ReSurveyNo:     optional(in.ReSurveyNo.String()),
		AreaSqM:        sqm,
		IsPromulgation: in.IsPromulgation != nil && bool(*in.IsPromulgation),
	}
}

func buildYearSlab(in *models.YearSlabInput, landRecordID uuid.UUID) *models.YearSlab {
	sqm, _ := area.Parse(in.Area)
	kind := in.SurveyNoType
	if kind == "" {
		kind = models.SurveyKindDirect
	}
	return &models.YearSlab{
		LandRecordID: landRecordID,
		StartYear:    in.StartYear,
		EndYear:      in.EndYear,
		SurveyNo:     optional(in.SurveyNo.String()),
		SurveyNoType: kind,
		AreaSqM:      sqm,
	}
}

func buildNondhs(inputs []models.NondhInput, landRecordID uuid.UUID) []models.Nondh {
	nondhs := make([]models.Nondh, 0, len(inputs))
	for _, in := range inputs {
		refs := make([]models.SurveyRef, 0, len(in.AffectedSNos))
		for _, ref := range in.AffectedSNos {
			refs = append(refs, models.SurveyRef{
				Number: strings.TrimSpace(ref.Number.String()),
				Type:   ref.Type,
			})
		}
		nondhs = append(nondhs, models.Nondh{
			LandRecordID: landRecordID,
			Number:       strings.TrimSpace(in.Number.String()),
			AffectedSNos: refs,
			DocURL:       in.DocURL,
		})
	}
	return nondhs
}

// buildDetail normalizes an accepted detail. Unparseable dates are stored as
// NULL with the raw text kept in DateRaw. Sale fields survive only on sale
// types and order fields only on order types.
func buildDetail(in *models.NondhDetailInput, parent models.Nondh) (*models.NondhDetail, []models.AffectedNondh) {
	sqm, _ := area.Parse(in.Area)
	status := models.ParseStatus(in.Status)
	nondhType, _ := models.ParseNondhType(in.Type)

	detail := &models.NondhDetail{
		NondhID:       parent.ID,
		NondhNumber:   parent.Number,
		Type:          nondhType,
		Date:          parseDate(in.Date),
		DateRaw:       in.Date,
		Vigat:         in.Vigat,
		Status:        status,
		InvalidReason: reasonFor(status, in.InvalidReason),
		ShowInOutput:  in.ShowInOutput == nil || bool(*in.ShowInOutput),
		OldOwner:      optional(in.OldOwner),
		AreaSqM:       sqm,
	}
	// type-specific fields are kept only for the types that carry them
	if nondhType.IsSale() {
		detail.SDDate = parseDate(in.SDDate)
		detail.Amount = in.Amount
	}
	if nondhType.IsOrder() {
		detail.HukamDate = parseDate(in.HukamDate)
		detail.HukamType = optional(in.HukamType)
		if in.RestrainingOrder != nil {
			ro := bool(*in.RestrainingOrder)
			detail.RestrainingOrder = &ro
		}
	}

	affected := make([]models.AffectedNondh, 0, len(in.AffectedNondhDetails))
	for _, ref := range in.AffectedNondhDetails {
		refStatus := models.ParseStatus(ref.Status)
		affected = append(affected, models.AffectedNondh{
			NondhNo:       strings.TrimSpace(ref.NondhNo.String()),
			Status:        refStatus,
			InvalidReason: reasonFor(refStatus, ref.InvalidReason),
		})
	}

	return detail, affected
}

func buildOwners(in *models.NondhDetailInput, detailID uuid.UUID, valid bool) []*models.OwnerRelation {
	owners := make([]*models.OwnerRelation, 0, in.OwnerCount())
	add := func(list []models.OwnerInput, isNew bool) {
		for _, o := range list {
			sqm, _ := area.Parse(o.Area)
			owners = append(owners, &models.OwnerRelation{
				NondhDetailID:    detailID,
				OwnerName:        strings.TrimSpace(o.Name),
				AreaSqM:          sqm,
				SurveyNumber:     optional(o.SurveyNumber.String()),
				SurveyNumberType: o.SurveyNumberType,
				IsNewOwner:       isNew,
				IsValid:          valid,
			})
		}
	}
	add(in.Owners, false)
	add(in.NewOwners, true)
	return owners
}

// reasonFor returns the reason to store. An invalid status without a reason
// gets the "NA" sentinel.
func reasonFor(status models.Status, reason string) *string {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		if status == models.StatusInvalid {
			sentinel := models.InvalidReasonSentinel
			return &sentinel
		}
		return nil
	}
	return &reason
}

func parseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return nil
	}
	return &t
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
