package api

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/garnizeh/vagas/internal/records"
	"github.com/garnizeh/vagas/pkg/repository"
)

// Error codes carried in the error envelope.
const (
	CodeBadRequest       = "bad_request"
	CodeUnauthorized     = "unauthorized"
	CodeNotFound         = "not_found"
	CodeDuplicateSlug    = "duplicate_slug"
	CodeValidationFailed = "validation_failed"
	CodeRateLimited      = "rate_limited"
	CodeUnavailable      = "unavailable"
	CodeInternal         = "internal"
)

type errorBody struct {
	Code      string       `json:"code"`
	Message   string       `json:"message"`
	RequestID string       `json:"request_id,omitempty"`
	Details   []FieldError `json:"details,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

// WriteError renders {"error":{"code","message","request_id"}} with status.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeErrorDetails(w, r, status, code, message, nil)
}

func writeErrorDetails(w http.ResponseWriter, r *http.Request, status int, code, message string, details []FieldError) {
	body := errorBody{Code: code, Message: message, Details: details}
	if r != nil {
		body.RequestID = RequestIDFromContext(r.Context())
	}
	writeJSON(w, errorEnvelope{Error: body}, status)
}

// writeStoreError maps record store errors onto HTTP responses. notFound is
// the message used for ErrNotFound.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		WriteError(w, r, http.StatusNotFound, CodeNotFound, notFound)
	case errors.Is(err, repository.ErrDuplicateSlug):
		WriteError(w, r, http.StatusConflict, CodeDuplicateSlug, "could not allocate a unique slug, try again")
	case errors.Is(err, repository.ErrInvalidReference):
		WriteError(w, r, http.StatusUnprocessableEntity, CodeValidationFailed, err.Error())
	case errors.Is(err, records.ErrProfilesDisabled):
		WriteError(w, r, http.StatusServiceUnavailable, CodeUnavailable, "profile generation is disabled")
	default:
		logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("request_id", RequestIDFromContext(r.Context())),
			slog.String("error", err.Error()),
		)
		WriteError(w, r, http.StatusInternalServerError, CodeInternal, "internal server error")
	}
}
