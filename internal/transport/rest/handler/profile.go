package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"debatehub/internal/service"
)

// ProfileHandler serves finalized respondent profiles
type ProfileHandler struct {
	profileSvc *service.ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileSvc *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileSvc: profileSvc}
}

// Get handles GET /v1/questionnaires/{questionnaireId}/profiles/{respondentId}
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	if hostFromContext(w, r) == "" {
		return
	}

	vars := mux.Vars(r)
	profile, err := h.profileSvc.GetByRespondent(r.Context(), vars["respondentId"], vars["questionnaireId"])
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, "profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, profile)
}
