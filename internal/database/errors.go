package database

import (
	"context"
	"errors"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// IsFatal reports whether err means the underlying connection is gone, as
// opposed to a statement the server processed and rejected. Pool release
// handles broken connections either way; this only drives logging severity.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return false
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// IsNotFound reports whether err is a no-rows lookup result.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
