package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the querying surface shared by *pgxpool.Pool and pgx.Tx, so the
// same repository code serves pooled queries and transactions.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Not-found and conflict sentinels. Conflicts are authoritative from the
// database's unique indexes; pre-checks in the services are a fast path only.
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrOfficerNotFound = errors.New("officer not found")
	ErrVisitNotFound   = errors.New("visit not found")
	ErrSessionNotFound = errors.New("session not found")

	ErrEmailConflict    = errors.New("email already in use")
	ErrPhoneConflict    = errors.New("phone number already in use")
	ErrBPNumberConflict = errors.New("bp number already in use")
)

const uniqueViolation = "23505"

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

// conflictErr maps a unique-violation to the sentinel for the violated
// constraint; any other error passes through unchanged.
func conflictErr(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case "accounts_email_key":
		return ErrEmailConflict
	case "officers_phone_key":
		return ErrPhoneConflict
	case "officers_bp_no_key":
		return ErrBPNumberConflict
	}
	return err
}
