package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"debatehub/internal/engine"
	"debatehub/internal/model"
	"debatehub/internal/service"
)

// SessionHandler handles live survey session endpoints
type SessionHandler struct {
	sessionSvc *service.SessionService
	authSvc    *service.AuthService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionSvc *service.SessionService, authSvc *service.AuthService) *SessionHandler {
	return &SessionHandler{
		sessionSvc: sessionSvc,
		authSvc:    authSvc,
	}
}

// StartSessionRequest is the request body for starting a session
type StartSessionRequest struct {
	RespondentName string `json:"respondentName"`
}

// Start handles POST /v1/questionnaires/{questionnaireId}/start
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	questionnaireID := mux.Vars(r)["questionnaireId"]

	var req StartSessionRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	view, respondentID, err := h.sessionSvc.StartSession(r.Context(), questionnaireID, req.RespondentName)
	if err != nil {
		if errors.Is(err, service.ErrQuestionnaireNotFound) {
			writeError(w, http.StatusNotFound, "questionnaire not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	token, err := h.authSvc.GenerateRespondentToken(view.SessionID, respondentID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue session token")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"token":        token,
		"respondentId": respondentID,
		"session":      view,
	})
}

// Current handles GET /v1/sessions/{sessionId}
func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, h.sessionSvc.View)
}

// Resume handles POST /v1/sessions/{sessionId}/resume
func (h *SessionHandler) Resume(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	view, err := h.sessionSvc.ResumeSession(r.Context(), sessionID)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// SaveResponse handles PUT /v1/sessions/{sessionId}/responses
func (h *SessionHandler) SaveResponse(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	var resp model.RecordedResponse
	if err := json.NewDecoder(r.Body).Decode(&resp); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.sessionSvc.SaveResponse(r.Context(), sessionID, resp)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Advance handles POST /v1/sessions/{sessionId}/advance
func (h *SessionHandler) Advance(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, h.sessionSvc.Advance)
}

// Retreat handles POST /v1/sessions/{sessionId}/retreat
func (h *SessionHandler) Retreat(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, h.sessionSvc.Retreat)
}

// Skip handles POST /v1/sessions/{sessionId}/skip
func (h *SessionHandler) Skip(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, h.sessionSvc.Skip)
}

// Jump handles POST /v1/sessions/{sessionId}/jump/{index}
func (h *SessionHandler) Jump(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "index must be an integer")
		return
	}

	view, err := h.sessionSvc.JumpTo(sessionID, index)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Personalization handles GET /v1/sessions/{sessionId}/personalization
func (h *SessionHandler) Personalization(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	pctx, err := h.sessionSvc.Personalization(sessionID)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pctx)
}

// Issues handles GET /v1/sessions/{sessionId}/issues
func (h *SessionHandler) Issues(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	issues, err := h.sessionSvc.Issues(sessionID)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"issues": issues})
}

// Progress handles GET /v1/sessions/{sessionId}/progress
func (h *SessionHandler) Progress(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	progress, err := h.sessionSvc.Progress(sessionID)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, progress)
}

// Finalize handles POST /v1/sessions/{sessionId}/finalize
func (h *SessionHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	profile, err := h.sessionSvc.Finalize(r.Context(), sessionID)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (h *SessionHandler) navigate(w http.ResponseWriter, r *http.Request, move func(string) (*service.SessionView, error)) {
	sessionID, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	view, err := move(sessionID)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// sessionFromPath reads the session ID from the URL and checks it against
// the token's session claim.
func (h *SessionHandler) sessionFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	sessionID := mux.Vars(r)["sessionId"]
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "missing session id")
		return "", false
	}
	if claimed := sessionIDFromContext(r); claimed != "" && claimed != sessionID {
		writeError(w, http.StatusForbidden, "token does not grant access to this session")
		return "", false
	}
	return sessionID, true
}

func (h *SessionHandler) writeSessionError(w http.ResponseWriter, err error) {
	var verr *engine.ValidationError
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, service.ErrSessionNotReady):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrAlreadyFinalized):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrUnknownQuestion):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrRequiredUnanswered):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, engine.ErrIndexOutOfRange):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
