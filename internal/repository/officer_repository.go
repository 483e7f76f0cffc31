package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/ArbeitTechnology/cid-visitor-backend/internal/models"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/search"
)

type OfficerRepository struct {
	db DBTX
}

func NewOfficerRepository(db DBTX) *OfficerRepository {
	return &OfficerRepository{db: db}
}

const officerColumns = `
	id, name, phone, bp_no, designation, department, unit, status, roles,
	password_hash, account_id, created_at, updated_at
`

func scanOfficer(row pgx.Row) (models.Officer, error) {
	var (
		o     models.Officer
		roles []string
	)
	err := row.Scan(
		&o.ID,
		&o.Name,
		&o.Phone,
		&o.BPNumber,
		&o.Designation,
		&o.Department,
		&o.Unit,
		&o.Status,
		&roles,
		&o.PasswordHash,
		&o.AccountID,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Officer{}, ErrOfficerNotFound
	}
	for _, r := range roles {
		o.Roles = append(o.Roles, models.Role(r))
	}
	return o, err
}

func rolesToStrings(roles []models.Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}

func (r *OfficerRepository) Create(ctx context.Context, officer models.Officer) error {
	const query = `
		INSERT INTO officers (
			id, name, phone, bp_no, designation, department, unit, status, roles,
			password_hash, account_id, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW()
		)
	`
	_, err := r.db.Exec(ctx, query,
		officer.ID,
		officer.Name,
		officer.Phone,
		officer.BPNumber,
		officer.Designation,
		officer.Department,
		officer.Unit,
		officer.Status,
		rolesToStrings(officer.Roles),
		officer.PasswordHash,
		officer.AccountID,
	)
	return conflictErr(err)
}

func (r *OfficerRepository) GetByID(ctx context.Context, id string) (models.Officer, error) {
	return scanOfficer(r.db.QueryRow(ctx, `SELECT `+officerColumns+` FROM officers WHERE id = $1`, id))
}

func (r *OfficerRepository) FindByPhone(ctx context.Context, phoneNumber string) (models.Officer, error) {
	return scanOfficer(r.db.QueryRow(ctx, `SELECT `+officerColumns+` FROM officers WHERE phone = $1`, phoneNumber))
}

func (r *OfficerRepository) List(ctx context.Context, pred search.Predicate, page search.Page) ([]models.Officer, int, error) {
	where, args := pred.SQL(1)
	if where != "" {
		where = " WHERE " + where
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM officers`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + officerColumns + ` FROM officers` + where +
		` ORDER BY created_at DESC LIMIT ` + placeholder(len(args)+1) + ` OFFSET ` + placeholder(len(args)+2)
	rows, err := r.db.Query(ctx, query, append(args, page.Size, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var officers []models.Officer
	for rows.Next() {
		o, err := scanOfficer(rows)
		if err != nil {
			return nil, 0, err
		}
		officers = append(officers, o)
	}
	return officers, total, rows.Err()
}

func (r *OfficerRepository) UpdateProfile(ctx context.Context, officer models.Officer) error {
	const query = `
		UPDATE officers
		SET name = $2, phone = $3, bp_no = $4, designation = $5, department = $6,
		    unit = $7, updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.db.Exec(ctx, query,
		officer.ID,
		officer.Name,
		officer.Phone,
		officer.BPNumber,
		officer.Designation,
		officer.Department,
		officer.Unit,
	)
	if err != nil {
		return conflictErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrOfficerNotFound
	}
	return nil
}

func (r *OfficerRepository) UpdateStatus(ctx context.Context, id string, status models.Status) error {
	cmd, err := r.db.Exec(ctx, `UPDATE officers SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrOfficerNotFound
	}
	return nil
}

// SetAdminLink writes both sides of the officer half of the admin linkage:
// the granted roles and the linked account id (nil clears the link).
func (r *OfficerRepository) SetAdminLink(ctx context.Context, id string, accountID *string, roles []models.Role) error {
	cmd, err := r.db.Exec(ctx,
		`UPDATE officers SET roles = $2, account_id = $3, updated_at = NOW() WHERE id = $1`,
		id, rolesToStrings(roles), accountID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrOfficerNotFound
	}
	return nil
}

func (r *OfficerRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM officers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrOfficerNotFound
	}
	return nil
}
