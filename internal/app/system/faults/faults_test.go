package faults_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/Praytic/places-sub000/internal/app/system/faults"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"not found", faults.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("%w: map abc", faults.ErrNotFound), http.StatusNotFound},
		{"permission denied", faults.ErrPermissionDenied, http.StatusForbidden},
		{"invalid argument", fmt.Errorf("%w: bad role", faults.ErrInvalidArgument), http.StatusBadRequest},
		{"conflict", faults.ErrConflict, http.StatusServiceUnavailable},
		{"unavailable", faults.ErrUnavailable, http.StatusServiceUnavailable},
		{"partial cleanup", &faults.PartialCleanupError{MapID: "abc", Err: errors.New("boom")}, http.StatusOK},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := faults.HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPartialCleanupErrorUnwrap(t *testing.T) {
	inner := errors.New("socket closed")
	err := &faults.PartialCleanupError{MapID: "abc", Deleted: 3, Err: inner}

	if !errors.Is(err, inner) {
		t.Error("expected PartialCleanupError to unwrap to its cause")
	}

	var partial *faults.PartialCleanupError
	if !errors.As(error(err), &partial) {
		t.Fatal("errors.As failed to match PartialCleanupError")
	}
	if partial.Deleted != 3 {
		t.Errorf("Deleted: got %d, want 3", partial.Deleted)
	}
}
