package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/landrecords/internal/database"
	"github.com/stwalsh4118/landrecords/internal/models"
)

// LandRecordRepository is the persistence collaborator of the ingestion
// pipeline. Inserts assign the generated ID onto the passed model.
// Separate calls are not atomic with each other.
type LandRecordRepository interface {
	// InsertLandRecord stores the parcel and sets its ID and CreatedAt.
	InsertLandRecord(ctx context.Context, record *models.LandRecord) error

	// InsertYearSlab stores one year slab and sets its ID.
	InsertYearSlab(ctx context.Context, slab *models.YearSlab) error

	// InsertNondhs stores all nondh headers of an upload in one transaction
	// and sets their IDs. Either every header is stored or none is.
	InsertNondhs(ctx context.Context, nondhs []models.Nondh) error

	// InsertNondhDetail stores a detail together with its cross-references
	// and sets their IDs.
	InsertNondhDetail(ctx context.Context, detail *models.NondhDetail, affected []models.AffectedNondh) error

	// InsertOwnerRelation stores one owner relation and sets its ID.
	InsertOwnerRelation(ctx context.Context, owner *models.OwnerRelation) error

	// FindLandRecord returns nil, nil when no record has the ID.
	FindLandRecord(ctx context.Context, id uuid.UUID) (*models.LandRecord, error)

	// The List methods return every row below the land record, empty if none.
	ListYearSlabs(ctx context.Context, landRecordID uuid.UUID) ([]models.YearSlab, error)
	ListNondhs(ctx context.Context, landRecordID uuid.UUID) ([]models.Nondh, error)
	ListNondhDetails(ctx context.Context, landRecordID uuid.UUID) ([]models.NondhDetail, error)
	ListAffectedNondhs(ctx context.Context, landRecordID uuid.UUID) ([]models.AffectedNondh, error)
	ListOwnerRelations(ctx context.Context, landRecordID uuid.UUID) ([]models.OwnerRelation, error)
}

// landRecordRepository is the pgx implementation of LandRecordRepository.
type landRecordRepository struct {
	db *database.Database
}

// NewLandRecordRepository creates a new LandRecordRepository.
func NewLandRecordRepository(db *database.Database) LandRecordRepository {
	return &landRecordRepository{
		db: db,
	}
}

func (r *landRecordRepository) InsertLandRecord(ctx context.Context, record *models.LandRecord) error {
	const query = `
		INSERT INTO land_records (
			id, district, taluka, village, s_no, block_no, re_survey_no, area_sqm, is_promulgation
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`

	id := uuid.New()
	err := r.db.Pool.QueryRow(ctx, query,
		id,
		record.District,
		record.Taluka,
		record.Village,
		record.SurveyNo,
		record.BlockNo,
		record.ReSurveyNo,
		record.AreaSqM,
		record.IsPromulgation,
	).Scan(&record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert land record (%s/%s/%s): %w",
			record.District, record.Taluka, record.Village, err)
	}

	record.ID = id
	return nil
}

func (r *landRecordRepository) InsertYearSlab(ctx context.Context, slab *models.YearSlab) error {
	const query = `
		INSERT INTO year_slabs (id, land_record_id, start_year, end_year, s_no, s_no_type, area_sqm)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	id := uuid.New()
	_, err := r.db.Pool.Exec(ctx, query,
		id,
		slab.LandRecordID,
		slab.StartYear,
		slab.EndYear,
		slab.SurveyNo,
		string(slab.SurveyNoType),
		slab.AreaSqM,
	)
	if err != nil {
		return fmt.Errorf("failed to insert year slab %d-%d: %w", slab.StartYear, slab.EndYear, err)
	}

	slab.ID = id
	return nil
}

func (r *landRecordRepository) InsertNondhs(ctx context.Context, nondhs []models.Nondh) error {
	if len(nondhs) == 0 {
		return nil
	}

	const query = `
		INSERT INTO nondhs (id, land_record_id, number, affected_s_nos, doc_url)
		VALUES ($1, $2, $3, $4, $5)
	`

	ids := make([]uuid.UUID, len(nondhs))
	err := pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for i := range nondhs {
			ids[i] = uuid.New()
			refs := nondhs[i].AffectedSNos
			if refs == nil {
				refs = []models.SurveyRef{}
			}
			batch.Queue(query, ids[i], nondhs[i].LandRecordID, nondhs[i].Number, refs, nondhs[i].DocURL)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("failed to insert %d nondhs: %w", len(nondhs), err)
	}

	for i := range nondhs {
		nondhs[i].ID = ids[i]
	}
	return nil
}

func (r *landRecordRepository) InsertNondhDetail(ctx context.Context, detail *models.NondhDetail, affected []models.AffectedNondh) error {
	const detailQuery = `
		INSERT INTO nondh_details (
			id, nondh_id, ordinal, type, date, date_raw, vigat, status, invalid_reason, show_in_output,
			old_owner, area_sqm, sd_date, amount, hukam_date, hukam_type, restraining_order
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	const affectedQuery = `
		INSERT INTO affected_nondhs (id, nondh_detail_id, nondh_no, status, invalid_reason)
		VALUES ($1, $2, $3, $4, $5)
	`

	detailID := uuid.New()
	affectedIDs := make([]uuid.UUID, len(affected))

	err := pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, detailQuery,
			detailID,
			detail.NondhID,
			detail.Ordinal,
			string(detail.Type),
			detail.Date,
			detail.DateRaw,
			detail.Vigat,
			string(detail.Status),
			detail.InvalidReason,
			detail.ShowInOutput,
			detail.OldOwner,
			detail.AreaSqM,
			detail.SDDate,
			detail.Amount,
			detail.HukamDate,
			detail.HukamType,
			detail.RestrainingOrder,
		)
		if err != nil {
			return err
		}

		if len(affected) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		for i := range affected {
			affectedIDs[i] = uuid.New()
			batch.Queue(affectedQuery,
				affectedIDs[i],
				detailID,
				affected[i].NondhNo,
				string(affected[i].Status),
				affected[i].InvalidReason,
			)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("failed to insert nondh detail for nondh %s: %w", detail.NondhNumber, err)
	}

	detail.ID = detailID
	for i := range affected {
		affected[i].ID = affectedIDs[i]
		affected[i].NondhDetailID = detailID
	}
	return nil
}

func (r *landRecordRepository) InsertOwnerRelation(ctx context.Context, owner *models.OwnerRelation) error {
	const query = `
		INSERT INTO owner_relations (
			id, nondh_detail_id, owner_name, area_sqm, survey_number, survey_number_type, is_new_owner, is_valid
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	id := uuid.New()
	_, err := r.db.Pool.Exec(ctx, query,
		id,
		owner.NondhDetailID,
		owner.OwnerName,
		owner.AreaSqM,
		owner.SurveyNumber,
		string(owner.SurveyNumberType),
		owner.IsNewOwner,
		owner.IsValid,
	)
	if err != nil {
		return fmt.Errorf("failed to insert owner relation %q: %w", owner.OwnerName, err)
	}

	owner.ID = id
	return nil
}

func (r *landRecordRepository) FindLandRecord(ctx context.Context, id uuid.UUID) (*models.LandRecord, error) {
	const query = `
		SELECT id, district, taluka, village, s_no, block_no, re_survey_no, area_sqm, is_promulgation, created_at
		FROM land_records
		WHERE id = $1
	`

	var record models.LandRecord
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&record.ID,
		&record.District,
		&record.Taluka,
		&record.Village,
		&record.SurveyNo,
		&record.BlockNo,
		&record.ReSurveyNo,
		&record.AreaSqM,
		&record.IsPromulgation,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query land record %s: %w", id, err)
	}

	return &record, nil
}

func (r *landRecordRepository) ListYearSlabs(ctx context.Context, landRecordID uuid.UUID) ([]models.YearSlab, error) {
	const query = `
		SELECT id, land_record_id, start_year, end_year, s_no, s_no_type, area_sqm
		FROM year_slabs
		WHERE land_record_id = $1
		ORDER BY start_year, end_year
	`

	return collect(ctx, r, query, landRecordID, "year slabs", func(row pgx.CollectableRow) (models.YearSlab, error) {
		var s models.YearSlab
		var kind string
		err := row.Scan(&s.ID, &s.LandRecordID, &s.StartYear, &s.EndYear, &s.SurveyNo, &kind, &s.AreaSqM)
		s.SurveyNoType = models.SurveyKind(kind)
		return s, err
	})
}

func (r *landRecordRepository) ListNondhs(ctx context.Context, landRecordID uuid.UUID) ([]models.Nondh, error) {
	const query = `
		SELECT id, land_record_id, number, affected_s_nos, doc_url
		FROM nondhs
		WHERE land_record_id = $1
	`

	return collect(ctx, r, query, landRecordID, "nondhs", func(row pgx.CollectableRow) (models.Nondh, error) {
		var n models.Nondh
		err := row.Scan(&n.ID, &n.LandRecordID, &n.Number, &n.AffectedSNos, &n.DocURL)
		return n, err
	})
}

func (r *landRecordRepository) ListNondhDetails(ctx context.Context, landRecordID uuid.UUID) ([]models.NondhDetail, error) {
	const query = `
		SELECT
			d.id, d.nondh_id, n.number, d.ordinal, d.type, d.date, d.date_raw, d.vigat, d.status,
			d.invalid_reason, d.show_in_output, d.old_owner, d.area_sqm, d.sd_date,
			d.amount, d.hukam_date, d.hukam_type, d.restraining_order
		FROM nondh_details d
		JOIN nondhs n ON n.id = d.nondh_id
		WHERE n.land_record_id = $1
		ORDER BY d.ordinal, d.id
	`

	return collect(ctx, r, query, landRecordID, "nondh details", func(row pgx.CollectableRow) (models.NondhDetail, error) {
		var d models.NondhDetail
		var nondhType, status string
		err := row.Scan(
			&d.ID,
			&d.NondhID,
			&d.NondhNumber,
			&d.Ordinal,
			&nondhType,
			&d.Date,
			&d.DateRaw,
			&d.Vigat,
			&status,
			&d.InvalidReason,
			&d.ShowInOutput,
			&d.OldOwner,
			&d.AreaSqM,
			&d.SDDate,
			&d.Amount,
			&d.HukamDate,
			&d.HukamType,
			&d.RestrainingOrder,
		)
		d.Type = models.NondhType(nondhType)
		d.Status = models.Status(status)
		return d, err
	})
}

func (r *landRecordRepository) ListAffectedNondhs(ctx context.Context, landRecordID uuid.UUID) ([]models.AffectedNondh, error) {
	const query = `
		SELECT a.id, a.nondh_detail_id, a.nondh_no, a.status, a.invalid_reason
		FROM affected_nondhs a
		JOIN nondh_details d ON d.id = a.nondh_detail_id
		JOIN nondhs n ON n.id = d.nondh_id
		WHERE n.land_record_id = $1
	`

	return collect(ctx, r, query, landRecordID, "affected nondhs", func(row pgx.CollectableRow) (models.AffectedNondh, error) {
		var a models.AffectedNondh
		var status string
		err := row.Scan(&a.ID, &a.NondhDetailID, &a.NondhNo, &status, &a.InvalidReason)
		a.Status = models.Status(status)
		return a, err
	})
}

func (r *landRecordRepository) ListOwnerRelations(ctx context.Context, landRecordID uuid.UUID) ([]models.OwnerRelation, error) {
	const query = `
		SELECT o.id, o.nondh_detail_id, o.owner_name, o.area_sqm, o.survey_number,
			o.survey_number_type, o.is_new_owner, o.is_valid
		FROM owner_relations o
		JOIN nondh_details d ON d.id = o.nondh_detail_id
		JOIN nondhs n ON n.id = d.nondh_id
		WHERE n.land_record_id = $1
		ORDER BY o.is_new_owner, o.owner_name
	`

	return collect(ctx, r, query, landRecordID, "owner relations", func(row pgx.CollectableRow) (models.OwnerRelation, error) {
		var o models.OwnerRelation
		var kind string
		err := row.Scan(&o.ID, &o.NondhDetailID, &o.OwnerName, &o.AreaSqM, &o.SurveyNumber, &kind, &o.IsNewOwner, &o.IsValid)
		o.SurveyNumberType = models.SurveyKind(kind)
		return o, err
	})
}

// collect runs a land-record scoped query and scans every row with scan.
// It never returns a nil slice on success.
func collect[T any](ctx context.Context, r *landRecordRepository, query string, landRecordID uuid.UUID, what string, scan pgx.RowToFunc[T]) ([]T, error) {
	rows, err := r.db.Pool.Query(ctx, query, landRecordID)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s for land record %s: %w", what, landRecordID, err)
	}

	results, err := pgx.CollectRows(rows, scan)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s for land record %s: %w", what, landRecordID, err)
	}

	if results == nil {
		results = []T{}
	}
	return results, nil
}
