package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/ArbeitTechnology/cid-visitor-backend/internal/models"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/search"
)

type AccountRepository struct {
	db DBTX
}

func NewAccountRepository(db DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `
	id, name, email, phone, password_hash, class, status, officer_id,
	last_login_at, created_at, updated_at
`

func scanAccount(row pgx.Row) (models.Account, error) {
	var a models.Account
	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.Email,
		&a.Phone,
		&a.PasswordHash,
		&a.Class,
		&a.Status,
		&a.OfficerID,
		&a.LastLoginAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Account{}, ErrAccountNotFound
	}
	return a, err
}

func (r *AccountRepository) Create(ctx context.Context, account models.Account) error {
	const query = `
		INSERT INTO accounts (
			id, name, email, phone, password_hash, class, status, officer_id, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW()
		)
	`
	_, err := r.db.Exec(ctx, query,
		account.ID,
		account.Name,
		account.Email,
		account.Phone,
		account.PasswordHash,
		account.Class,
		account.Status,
		account.OfficerID,
	)
	return conflictErr(err)
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (models.Account, error) {
	return scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (models.Account, error) {
	return scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email))
}

// FindByEmailOrPhone is used by the admin-linkage flow to reuse an account
// already carrying either handle.
func (r *AccountRepository) FindByEmailOrPhone(ctx context.Context, email string, phoneNumber string) (models.Account, error) {
	const query = `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE email = $1 OR (phone <> '' AND phone = $2)
		ORDER BY created_at
		LIMIT 1
	`
	return scanAccount(r.db.QueryRow(ctx, query, email, phoneNumber))
}

// Count returns the total number of accounts; registration uses it to decide
// whether the new account is the very first one (super_admin).
func (r *AccountRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count)
	return count, err
}

// List applies the search predicate and pagination, returning the page of
// accounts and the total count computed from the identical WHERE clause.
func (r *AccountRepository) List(ctx context.Context, pred search.Predicate, page search.Page) ([]models.Account, int, error) {
	where, args := pred.SQL(1)
	if where != "" {
		where = " WHERE " + where
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + accountColumns + ` FROM accounts` + where +
		` ORDER BY created_at DESC LIMIT ` + placeholder(len(args)+1) + ` OFFSET ` + placeholder(len(args)+2)
	rows, err := r.db.Query(ctx, query, append(args, page.Size, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, 0, err
		}
		accounts = append(accounts, a)
	}
	return accounts, total, rows.Err()
}

func (r *AccountRepository) UpdateProfile(ctx context.Context, id string, name string, email string, phoneNumber string) error {
	const query = `
		UPDATE accounts SET name = $2, email = $3, phone = $4, updated_at = NOW() WHERE id = $1
	`
	cmd, err := r.db.Exec(ctx, query, id, name, email, phoneNumber)
	if err != nil {
		return conflictErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, id string, passwordHash []byte) error {
	cmd, err := r.db.Exec(ctx, `UPDATE accounts SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, passwordHash)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) UpdateStatus(ctx context.Context, id string, status models.Status) error {
	cmd, err := r.db.Exec(ctx, `UPDATE accounts SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// LinkAdmin upgrades an account in place to class admin and points it at the
// officer carrying the capability.
func (r *AccountRepository) LinkAdmin(ctx context.Context, id string, officerID string) error {
	cmd, err := r.db.Exec(ctx,
		`UPDATE accounts SET class = $2, officer_id = $3, updated_at = NOW() WHERE id = $1`,
		id, models.AccountClassAdmin, officerID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// UnlinkAdmin demotes an account to class user and clears the officer
// back-reference. The account itself survives.
func (r *AccountRepository) UnlinkAdmin(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx,
		`UPDATE accounts SET class = $2, officer_id = NULL, updated_at = NOW() WHERE id = $1`,
		id, models.AccountClassUser)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) TouchLastLogin(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `UPDATE accounts SET last_login_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}
