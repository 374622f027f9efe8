package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/okian/dfspersona/internal/adapters/ingest"
	"github.com/okian/dfspersona/internal/domain/types"
	"github.com/okian/dfspersona/pkg/logger"
)

// multipartOverhead leaves room for boundaries and part headers around the file.
const multipartOverhead = 64 << 10

// UploadHandler handles CSV uploads.
type UploadHandler struct {
	deps     UploadDependencies
	maxBytes int64
	log      logger.Logger
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(deps UploadDependencies, maxBytes int64, log logger.Logger) *UploadHandler {
	return &UploadHandler{deps: deps, maxBytes: maxBytes, log: log}
}

// uploadResponse is the body of POST /uploads.
type uploadResponse struct {
	types.Job
	Duplicate bool `json:"duplicate"`
}

// HandleParse handles POST /parse: analysis without persistence.
func (h *UploadHandler) HandleParse(w http.ResponseWriter, r *http.Request) {
	const op = "api.parse"
	name, body, err := h.readUpload(w, r)
	if err != nil {
		writeFailure(w, r, h.log, op, err)
		return
	}
	analysis, err := h.deps.Parse(r.Context(), name, body)
	if err != nil {
		writeFailure(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// HandleAnalyze handles POST /analyze: analysis plus a stored profile.
func (h *UploadHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze"
	name, body, err := h.readUpload(w, r)
	if err != nil {
		writeFailure(w, r, h.log, op, err)
		return
	}
	analysis, err := h.deps.Analyze(r.Context(), name, body)
	if err != nil {
		writeFailure(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// HandleSubmit handles POST /uploads. New uploads get 202, repeats get 200
// with the original job.
func (h *UploadHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit"
	name, body, err := h.readUpload(w, r)
	if err != nil {
		writeFailure(w, r, h.log, op, err)
		return
	}
	job, duplicate, err := h.deps.Submit(r.Context(), name, body)
	if err != nil {
		writeFailure(w, r, h.log, op, err)
		return
	}
	status := http.StatusAccepted
	if duplicate {
		status = http.StatusOK
	}
	w.Header().Set("Location", "/uploads/"+job.ID)
	writeJSON(w, status, uploadResponse{Job: job, Duplicate: duplicate})
}

// HandleGetJob handles GET /uploads/{id}.
func (h *UploadHandler) HandleGetJob(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_job"
	job, err := h.deps.Job(r.PathValue("id"))
	if err != nil {
		writeFailure(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// readUpload returns the name and bytes of the multipart "file" field.
func (h *UploadHandler) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return "", nil, fmt.Errorf("%w: limit is %d bytes", ingest.ErrFileTooLarge, h.maxBytes)
		}
		return "", nil, WrapKind("read multipart form", ErrBadRequest, err)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil, ErrMissingFile
	}
	if err != nil {
		return "", nil, WrapKind("open upload", ErrBadRequest, err)
	}
	defer func() { _ = file.Close() }()

	body, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		return "", nil, WrapKind("read upload", ErrBadRequest, err)
	}
	if int64(len(body)) > h.maxBytes {
		return "", nil, fmt.Errorf("%w: limit is %d bytes", ingest.ErrFileTooLarge, h.maxBytes)
	}
	return header.Filename, body, nil
}
