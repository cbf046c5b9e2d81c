// Package repository holds the gorm-backed stores. Repositories carry no
// business rules; they translate driver-level failures into the sentinel
// errors below so that services can map them onto the API error taxonomy
// without importing database packages.
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert violates a unique constraint, e.g.
// the partial unique index guarding one open session per register.
var ErrDuplicate = errors.New("duplicate record")

// ErrOperatorBusy is returned when an insert violates the per-operator open
// session index — the policy index, distinct from the register one, so the
// conflict message can name the rule that was actually broken.
var ErrOperatorBusy = errors.New("operator already has an open session")

// ErrTimeout is returned when the backing store did not answer in time.
var ErrTimeout = errors.New("store timeout")

const (
	pgUniqueViolation = "23505"

	// Must match the DDL patch in infra.
	operatorSessionIndex = "ux_cash_sessions_open_operator"
)

// translate maps gorm / pgx / context errors to the sentinels above.
// Unrecognized errors pass through untouched.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		if pgErr.ConstraintName == operatorSessionIndex {
			return ErrOperatorBusy
		}
		return ErrDuplicate
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return err
}
