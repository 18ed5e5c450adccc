package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrNoRows      = errors.New("no rows affected")
	ErrForeignKey  = errors.New("foreign key violation")
	ErrDuplicate   = errors.New("duplicate key violation")
	ErrCheck       = errors.New("check constraint violation")
	ErrTimeout     = errors.New("store call timed out")
	ErrUnavailable = errors.New("store unavailable")
)

const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
	pgNotNullViolation    = "23502"
	pgQueryCanceled       = "57014"
)

// classify maps a driver or GORM error onto the store sentinels, keeping the
// original error in the chain.
func classify(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return wrap(ErrNotFound, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return wrap(ErrForeignKey, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return wrap(ErrDuplicate, err)
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return wrap(ErrCheck, err)
	case errors.Is(err, context.DeadlineExceeded), pgconn.Timeout(err):
		return wrap(ErrTimeout, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return wrap(ErrForeignKey, err)
		case pgUniqueViolation:
			return wrap(ErrDuplicate, err)
		case pgCheckViolation, pgNotNullViolation:
			return wrap(ErrCheck, err)
		case pgQueryCanceled:
			return wrap(ErrTimeout, err)
		}
		return err
	}

	var connErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connErr) || errors.As(err, &netErr) || errors.Is(err, driver.ErrBadConn) {
		return wrap(ErrUnavailable, err)
	}
	return err
}

type classified struct {
	kind  error
	cause error
}

func (e *classified) Error() string {
	return e.kind.Error() + ": " + e.cause.Error()
}

func (e *classified) Unwrap() []error {
	return []error{e.kind, e.cause}
}

func wrap(kind, cause error) error {
	return &classified{kind: kind, cause: cause}
}
