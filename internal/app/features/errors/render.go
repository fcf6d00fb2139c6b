// internal/app/features/errors/render.go
package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Praytic/places-sub000/internal/app/system/faults"
	"go.uber.org/zap"
)

// ErrorLogger renders classified errors as JSON responses and logs them
// with request context. All API handlers share one instance.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger creates an ErrorLogger backed by the app logger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

type errorResponse struct {
	Error   string `json:"error"`
	Warning string `json:"warning,omitempty"`
}

// Render writes the JSON error response for err. Bodies stay generic for
// denial statuses so resource existence is never leaked; invalid-argument
// details are echoed back since they describe the caller's own input.
func (l *ErrorLogger) Render(w http.ResponseWriter, r *http.Request, operation string, err error) {
	status := faults.HTTPStatus(err)

	var body errorResponse
	switch {
	case errors.Is(err, faults.ErrNotFound):
		body.Error = "not found"
	case errors.Is(err, faults.ErrPermissionDenied):
		body.Error = "forbidden"
	case errors.Is(err, faults.ErrInvalidArgument):
		body.Error = err.Error()
	case errors.Is(err, faults.ErrConflict), errors.Is(err, faults.ErrUnavailable):
		body.Error = "temporarily unavailable, retry later"
	default:
		body.Error = "internal error"
	}

	if status >= 500 {
		l.log.Error("request failed",
			zap.String("operation", operation),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
	} else {
		l.log.Debug("request rejected",
			zap.String("operation", operation),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// RenderPartialCleanup reports a delete whose authoritative phase committed
// but whose place cascade was interrupted. The operation succeeded from the
// caller's point of view; the body carries a warning instead of an error.
func (l *ErrorLogger) RenderPartialCleanup(w http.ResponseWriter, r *http.Request, operation string, pc *faults.PartialCleanupError) {
	l.log.Warn("partial cleanup",
		zap.String("operation", operation),
		zap.String("map_id", pc.MapID),
		zap.Int64("deleted", pc.Deleted),
		zap.Error(pc.Err))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Warning: "map deleted; some places will be cleaned up shortly",
	})
}
