// internal/app/system/faults/faults.go

// Package faults defines the error taxonomy shared by the stores, services,
// and HTTP feature layer. Services classify every failure as one of these
// sentinels (wrapped with %w) so handlers can map errors to HTTP statuses
// with errors.Is instead of string matching.
package faults

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound: the map, grant, or place does not exist. Also returned
	// when a caller has no effective role on an existing map, so that an
	// unauthorized caller cannot distinguish "no access" from "no such map".
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied: the caller has a role on the map, but not one
	// that allows the requested operation (e.g. a viewer writing places).
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidArgument: the request is malformed or violates a structural
	// rule, such as sharing a map with its own owner.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConflict: a transaction failed to serialize. The transaction
	// runner retries these internally; callers only see ErrConflict once
	// the retries are exhausted.
	ErrConflict = errors.New("transaction conflict")

	// ErrUnavailable: the underlying store is unreachable.
	ErrUnavailable = errors.New("store unavailable")
)

// PartialCleanupError reports that a map was deleted (the map document and
// all its grants are atomically gone) but the best-effort place cascade was
// interrupted. The remaining places are unreachable through any access path
// and are reclaimed by the orphan sweep worker.
type PartialCleanupError struct {
	MapID   string
	Deleted int64
	Err     error
}

func (e *PartialCleanupError) Error() string {
	return fmt.Sprintf("map %s deleted but place cleanup incomplete (%d removed): %v", e.MapID, e.Deleted, e.Err)
}

func (e *PartialCleanupError) Unwrap() error { return e.Err }

// HTTPStatus maps a classified error to the status code the API surface
// reports. Note that ErrNotFound covers both unknown ids and "caller has no
// access" so map existence is never leaked.
func HTTPStatus(err error) int {
	var partial *PartialCleanupError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict), errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &partial):
		// The authoritative deletion committed; report success with a
		// warning body rather than a hard failure.
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}
