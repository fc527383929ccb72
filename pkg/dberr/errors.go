// Package dberr defines the error taxonomy of the database update flow.
// Tunnel domain errors must reach API callers verbatim so the UI can give
// precise feedback; everything unexpected from the persistence layer is
// wrapped into ErrDatabaseUpdateFailed instead of leaking internals.
package dberr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDatabaseNotFound: the database id resolves to no record.
	ErrDatabaseNotFound = errors.New("database not found")

	// ErrDatabaseConnectionFailed: schema discovery could not reach the target.
	ErrDatabaseConnectionFailed = errors.New("could not connect to database")

	// ErrDatabaseUpdateFailed wraps unexpected persistence failures from the
	// staged update or tunnel steps.
	ErrDatabaseUpdateFailed = errors.New("database could not be updated")

	// ErrSSHTunnelingDisabled: a tunnel change was requested while the
	// SSH_TUNNELING feature is administratively off.
	ErrSSHTunnelingDisabled = errors.New("SSH tunneling is not enabled")

	// Tunnel domain errors, surfaced verbatim to callers.
	ErrSSHTunnelInvalid      = errors.New("SSH tunnel parameters are invalid")
	ErrSSHTunnelCreateFailed = errors.New("SSH tunnel could not be created")
	ErrSSHTunnelUpdateFailed = errors.New("SSH tunnel could not be updated")
	ErrSSHTunnelDeleteFailed = errors.New("SSH tunnel could not be deleted")
	ErrSSHTunnelPortConflict = errors.New("database port is required for SSH tunneling")
)

// Validation failure kinds carried by InvalidError. Only name uniqueness
// exists today; the list shape leaves room for more.
const (
	ValidationNameExists = "database name already exists"
)

// InvalidError accumulates structured validation failures detected before any
// mutation is staged.
type InvalidError struct {
	Failures []string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("database parameters are invalid: %s", strings.Join(e.Failures, "; "))
}

// NewInvalidError builds an InvalidError from one or more failure kinds.
func NewInvalidError(failures ...string) *InvalidError {
	return &InvalidError{Failures: failures}
}

// IsTunnelError reports whether err is one of the tunnel domain errors that
// must pass through to the caller unwrapped.
func IsTunnelError(err error) bool {
	return errors.Is(err, ErrSSHTunnelInvalid) ||
		errors.Is(err, ErrSSHTunnelCreateFailed) ||
		errors.Is(err, ErrSSHTunnelUpdateFailed) ||
		errors.Is(err, ErrSSHTunnelDeleteFailed) ||
		errors.Is(err, ErrSSHTunnelPortConflict)
}
