package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/okian/dfspersona/internal/adapters/repository"
	"github.com/okian/dfspersona/pkg/logger"
)

// ProfileHandler handles stored profile requests.
type ProfileHandler struct {
	deps ProfileDependencies
	log  logger.Logger
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(deps ProfileDependencies, log logger.Logger) *ProfileHandler {
	return &ProfileHandler{deps: deps, log: log}
}

// HandleGetProfile handles GET /profiles/{id}.
func (h *ProfileHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_profile"
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeFailure(w, r, h.log, op, WrapKind(op, ErrInvalidID, err))
		return
	}
	profile, err := h.deps.Profile(r.Context(), id)
	if err != nil {
		writeFailure(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// HandleDeleteProfile handles DELETE /profiles/{id}.
func (h *ProfileHandler) HandleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_profile"
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeFailure(w, r, h.log, op, WrapKind(op, ErrInvalidID, err))
		return
	}
	existed, err := h.deps.DeleteProfile(r.Context(), id)
	if err != nil {
		writeFailure(w, r, h.log, op, err)
		return
	}
	if !existed {
		writeFailure(w, r, h.log, op, repository.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
