package api

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/dfspersona/internal/adapters/ingest"
	"github.com/okian/dfspersona/internal/adapters/repository"
	service "github.com/okian/dfspersona/internal/app"
	"github.com/okian/dfspersona/internal/domain/model"
	"github.com/okian/dfspersona/internal/domain/pipeline"
	"github.com/okian/dfspersona/pkg/logger"
)

// Error codes carried in error bodies.
const (
	codeMalformedInput = "malformed_input"
	codeNoEntries      = "no_entries"
	codeBadRequest     = "bad_request"
	codeTooLarge       = "file_too_large"
	codeNotFound       = "not_found"
	codeBackpressure   = "backpressure"
	codeUnavailable    = "unavailable"
	codeInternal       = "internal_error"
)

type errorResponse struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	if detail == "" {
		detail = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Code: code, Detail: detail})
}

// writeFailure maps err to a status and error body. Server side failures
// are logged; client mistakes are not.
func writeFailure(w http.ResponseWriter, r *http.Request, log logger.Logger, op string, err error) {
	status, code, detail := classify(err)
	if status >= http.StatusInternalServerError {
		log.Error(r.Context(), "request failed",
			logger.String("op", op),
			logger.String("path", r.URL.Path),
			logger.Error(err))
	}
	writeError(w, status, code, detail)
}

// classify translates upstream error kinds to HTTP semantics.
func classify(err error) (status int, code, detail string) {
	var parseErr *csv.ParseError
	switch {
	case errors.Is(err, service.ErrNotCSV):
		return http.StatusBadRequest, codeMalformedInput, "File must be a CSV"
	case errors.Is(err, pipeline.ErrNoEntries):
		return http.StatusBadRequest, codeNoEntries, "No valid entries found in CSV"
	case errors.Is(err, ingest.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, codeTooLarge, err.Error()
	case errors.Is(err, ingest.ErrUnknownPlatform),
		errors.Is(err, ingest.ErrMissingColumns),
		errors.Is(err, ingest.ErrEmptyFile),
		errors.Is(err, model.ErrInvalidEntry),
		errors.Is(err, model.ErrInvalidMetrics),
		errors.Is(err, model.ErrInvalidPersonaScore),
		errors.Is(err, model.ErrInvalidWeights),
		errors.As(err, &parseErr):
		return http.StatusBadRequest, codeMalformedInput, err.Error()
	case errors.Is(err, ErrMissingFile),
		errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, codeBadRequest, err.Error()
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrJobNotFound):
		return http.StatusNotFound, codeNotFound, err.Error()
	case errors.Is(err, service.ErrBackpressure),
		errors.Is(err, ErrBackpressure):
		return http.StatusServiceUnavailable, codeBackpressure, err.Error()
	case errors.Is(err, service.ErrNotStarted),
		errors.Is(err, repository.ErrStoreClosed):
		return http.StatusServiceUnavailable, codeUnavailable, err.Error()
	default:
		return http.StatusInternalServerError, codeInternal, http.StatusText(http.StatusInternalServerError)
	}
}
