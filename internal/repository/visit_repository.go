package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ArbeitTechnology/cid-visitor-backend/internal/models"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/search"
)

type VisitRepository struct {
	db DBTX
}

func NewVisitRepository(db DBTX) *VisitRepository {
	return &VisitRepository{db: db}
}

const visitColumns = `
	id, visitor_name, phone, address, purpose, officer_id, officer_name,
	officer_designation, officer_department, officer_unit, officer_status,
	photo_key, visit_time, created_at, updated_at
`

func scanVisit(row pgx.Row) (models.Visit, error) {
	var v models.Visit
	err := row.Scan(
		&v.ID,
		&v.VisitorName,
		&v.Phone,
		&v.Address,
		&v.Purpose,
		&v.OfficerID,
		&v.OfficerName,
		&v.OfficerDesignation,
		&v.OfficerDepartment,
		&v.OfficerUnit,
		&v.OfficerStatus,
		&v.PhotoKey,
		&v.VisitTime,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Visit{}, ErrVisitNotFound
	}
	return v, err
}

// Create inserts the visit along with the normalized phone key used by the
// previous-visit lookup.
func (r *VisitRepository) Create(ctx context.Context, visit models.Visit, phoneKey string) error {
	const query = `
		INSERT INTO visits (
			id, visitor_name, phone, phone_key, address, purpose, officer_id,
			officer_name, officer_designation, officer_department, officer_unit,
			officer_status, photo_key, visit_time, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW()
		)
	`
	_, err := r.db.Exec(ctx, query,
		visit.ID,
		visit.VisitorName,
		visit.Phone,
		phoneKey,
		visit.Address,
		visit.Purpose,
		visit.OfficerID,
		visit.OfficerName,
		visit.OfficerDesignation,
		visit.OfficerDepartment,
		visit.OfficerUnit,
		visit.OfficerStatus,
		visit.PhotoKey,
		visit.VisitTime,
	)
	return err
}

func (r *VisitRepository) GetByID(ctx context.Context, id string) (models.Visit, error) {
	return scanVisit(r.db.QueryRow(ctx, `SELECT `+visitColumns+` FROM visits WHERE id = $1`, id))
}

// List applies the search predicate and pagination; count and fetch share the
// identical WHERE clause.
func (r *VisitRepository) List(ctx context.Context, pred search.Predicate, page search.Page) ([]models.Visit, int, error) {
	where, args := pred.SQL(1)
	if where != "" {
		where = " WHERE " + where
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM visits`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + visitColumns + ` FROM visits` + where +
		` ORDER BY visit_time DESC LIMIT ` + placeholder(len(args)+1) + ` OFFSET ` + placeholder(len(args)+2)
	rows, err := r.db.Query(ctx, query, append(args, page.Size, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	return collectVisits(rows, total)
}

// ListAll fetches every visit matching the predicate, most recent first, for
// the spreadsheet export path.
func (r *VisitRepository) ListAll(ctx context.Context, pred search.Predicate) ([]models.Visit, error) {
	where, args := pred.SQL(1)
	if where != "" {
		where = " WHERE " + where
	}

	rows, err := r.db.Query(ctx, `SELECT `+visitColumns+` FROM visits`+where+` ORDER BY visit_time DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	visits, _, err := collectVisits(rows, 0)
	return visits, err
}

// FindRecentByPhoneKey returns the most recent prior visits for a normalized
// phone key, keeping only the newest visit per distinct visitor name.
func (r *VisitRepository) FindRecentByPhoneKey(ctx context.Context, phoneKey string, limit int) ([]models.Visit, error) {
	const query = `
		SELECT DISTINCT ON (visitor_name) ` + visitColumns + `
		FROM visits
		WHERE phone_key = $1
		ORDER BY visitor_name, visit_time DESC
	`
	rows, err := r.db.Query(ctx, query, phoneKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	visits, _, err := collectVisits(rows, 0)
	if err != nil {
		return nil, err
	}

	// DISTINCT ON forces visitor_name ordering, so re-sort newest first and
	// cap afterwards.
	sort.Slice(visits, func(i, j int) bool {
		return visits[i].VisitTime.After(visits[j].VisitTime)
	})
	if limit > 0 && len(visits) > limit {
		visits = visits[:limit]
	}
	return visits, nil
}

// CountSince returns the number of visits at or after the cutoff; the jobs
// scheduler uses it to refresh the dashboard counters.
func (r *VisitRepository) CountSince(ctx context.Context, cutoff time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM visits WHERE visit_time >= $1`, cutoff).Scan(&count)
	return count, err
}

func collectVisits(rows pgx.Rows, total int) ([]models.Visit, int, error) {
	var visits []models.Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, 0, err
		}
		visits = append(visits, v)
	}
	return visits, total, rows.Err()
}
