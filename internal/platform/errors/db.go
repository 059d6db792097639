package errors

// Database helpers for mapping pgx and sqlite errors to project ErrorCode

import (
	"context"
	stderrs "errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes we care about
const (
	pgErrUniqueViolation     = "23505"
	pgErrNotNullViolation    = "23502"
	pgErrCheckViolation      = "23514"
	pgErrStringTruncation    = "22001"
	pgErrSerializationFail   = "40001"
	pgErrDeadlockDetected    = "40P01"
	pgErrCannotConnectNow    = "57P03"
	pgErrAdminShutdown       = "57P01"
	pgErrReadOnlyTransaction = "25006"
)

// ExtractPgError returns (*pgconn.PgError, true) if the root cause is a PgError
func ExtractPgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if stderrs.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// IsSQLState reports whether the error is a Postgres error with the given SQLSTATE code
func IsSQLState(err error, code string) bool {
	pgErr, ok := ExtractPgError(err)
	return ok && pgErr.Code == code
}

// DBErrorCode maps a database error to an ErrorCode
// Postgres errors are classified by SQLSTATE; sqlite errors by their message text
func DBErrorCode(err error) ErrorCode {
	if pgErr, ok := ExtractPgError(err); ok {
		switch pgErr.Code {
		case pgErrNotNullViolation, pgErrCheckViolation, pgErrStringTruncation, pgErrUniqueViolation:
			return ErrorCodeInvalidArgument
		case pgErrCannotConnectNow, pgErrAdminShutdown, pgErrReadOnlyTransaction:
			return ErrorCodeUnavailable
		default:
			return ErrorCodeDB
		}
	}
	s := strings.ToLower(Root(err).Error())
	switch {
	case strings.Contains(s, "database is locked"), strings.Contains(s, "sqlite_busy"):
		return ErrorCodeUnavailable
	case strings.Contains(s, "constraint failed"):
		return ErrorCodeInvalidArgument
	}
	return ErrorCodeDB
}

// FromDB wraps a database error with a mapped ErrorCode and message
// If err is nil, returns nil
func FromDB(err error, msg string) error {
	if err == nil {
		return nil
	}
	return Wrap(err, DBErrorCode(err), msg)
}

// FromDBf is the formatted variant of FromDB
func FromDBf(err error, format string, a ...any) error {
	if err == nil {
		return nil
	}
	return Wrap(err, DBErrorCode(err), fmt.Sprintf(format, a...))
}

// IsRetryable reports whether a database error is a transient condition
// Local cancellations are never retryable
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}
	if pgErr, ok := ExtractPgError(err); ok {
		return pgErr.Code == pgErrSerializationFail || pgErr.Code == pgErrDeadlockDetected
	}
	return DBErrorCode(err) == ErrorCodeUnavailable
}
