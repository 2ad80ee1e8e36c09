package http

import (
	"net/http"
	"time"

	apperrors "github.com/tair/wishlist-service/pkg/errors"
	"github.com/tair/wishlist-service/pkg/logger"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Success    bool   `json:"success"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
	Timestamp  string `json:"timestamp"`
	Path       string `json:"path"`
	RequestID  string `json:"requestId,omitempty"`
	Details    any    `json:"details,omitempty"`
}

// respondError classifies err and writes the error envelope. Server side
// failures are logged at error level, client errors at warn.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	status := apperrors.HTTPStatus(err)

	event := logger.Warn(ctx)
	if status >= http.StatusInternalServerError {
		event = logger.Error(ctx)
	}
	event.Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Msg("Request failed")

	respondJSON(w, status, ErrorResponse{
		Success:    false,
		Code:       apperrors.Code(err),
		Message:    apperrors.Message(err),
		StatusCode: status,
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
		Path:       r.URL.Path,
		RequestID:  logger.RequestIDFromContext(ctx),
		Details:    apperrors.Details(err),
	})
}
