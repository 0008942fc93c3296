package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"debatehub/internal/model"
	"debatehub/internal/service"
)

// QuestionnaireHandler handles questionnaire CRUD endpoints
type QuestionnaireHandler struct {
	questionnaireSvc *service.QuestionnaireService
}

// NewQuestionnaireHandler creates a new questionnaire handler
func NewQuestionnaireHandler(questionnaireSvc *service.QuestionnaireService) *QuestionnaireHandler {
	return &QuestionnaireHandler{questionnaireSvc: questionnaireSvc}
}

// CreateQuestionnaireRequest is the request body for creating a questionnaire
type CreateQuestionnaireRequest struct {
	Title       string                     `json:"title" validate:"required"`
	Description string                     `json:"description"`
	Questions   []model.QuestionDescriptor `json:"questions" validate:"required,min=1"`
}

// Create handles POST /v1/questionnaires
func (h *QuestionnaireHandler) Create(w http.ResponseWriter, r *http.Request) {
	hostID := hostFromContext(w, r)
	if hostID == "" {
		return
	}

	var req CreateQuestionnaireRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "title and questions are required")
		return
	}

	created, err := h.questionnaireSvc.Create(r.Context(), hostID, &model.Questionnaire{
		Title:       req.Title,
		Description: req.Description,
		Questions:   req.Questions,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// Get handles GET /v1/questionnaires/{questionnaireId}
func (h *QuestionnaireHandler) Get(w http.ResponseWriter, r *http.Request) {
	questionnaireID := mux.Vars(r)["questionnaireId"]

	q, err := h.questionnaireSvc.GetByID(r.Context(), questionnaireID)
	if err != nil {
		if errors.Is(err, service.ErrQuestionnaireNotFound) {
			writeError(w, http.StatusNotFound, "questionnaire not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, q)
}

// List handles GET /v1/questionnaires
func (h *QuestionnaireHandler) List(w http.ResponseWriter, r *http.Request) {
	hostID := hostFromContext(w, r)
	if hostID == "" {
		return
	}

	questionnaires, err := h.questionnaireSvc.GetByHostID(r.Context(), hostID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"questionnaires": questionnaires})
}

// Update handles PUT /v1/questionnaires/{questionnaireId}
func (h *QuestionnaireHandler) Update(w http.ResponseWriter, r *http.Request) {
	questionnaireID := mux.Vars(r)["questionnaireId"]
	hostID := hostFromContext(w, r)
	if hostID == "" {
		return
	}

	var req CreateQuestionnaireRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "title and questions are required")
		return
	}

	updated, err := h.questionnaireSvc.Update(r.Context(), hostID, questionnaireID, &model.Questionnaire{
		Title:       req.Title,
		Description: req.Description,
		Questions:   req.Questions,
	})
	if err != nil {
		if errors.Is(err, service.ErrQuestionnaireNotFound) {
			writeError(w, http.StatusNotFound, "questionnaire not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /v1/questionnaires/{questionnaireId}
func (h *QuestionnaireHandler) Delete(w http.ResponseWriter, r *http.Request) {
	questionnaireID := mux.Vars(r)["questionnaireId"]
	hostID := hostFromContext(w, r)
	if hostID == "" {
		return
	}

	if err := h.questionnaireSvc.Delete(r.Context(), hostID, questionnaireID); err != nil {
		if errors.Is(err, service.ErrQuestionnaireNotFound) {
			writeError(w, http.StatusNotFound, "questionnaire not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
