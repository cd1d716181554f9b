package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/behuman/cascade/internal/model"
	"github.com/behuman/cascade/internal/service"
)

// SessionHandler handles the interview session lifecycle.
type SessionHandler struct {
	sessionSvc *service.SessionService
	authSvc    *service.AuthService
	log        *zap.SugaredLogger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(sessionSvc *service.SessionService, authSvc *service.AuthService, log *zap.SugaredLogger) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc, authSvc: authSvc, log: log}
}

type createSessionRequest struct {
	InvitationToken string                   `json:"invitationToken"`
	AssessmentType  string                   `json:"assessmentType"`
	Profile         model.ParticipantProfile `json:"profile"`
}

// Create handles POST /api/sessions. Consumes the invitation and issues the
// session-scoped participant token in the same response.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.sessionSvc.Create(r.Context(), req.Profile, req.InvitationToken, req.AssessmentType)
	if err != nil {
		respondError(w, err)
		return
	}

	token, err := h.authSvc.GenerateParticipantToken(session.ID)
	if err != nil {
		h.log.Errorw("participant token generation failed", "sessionId", session.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to issue session token")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"session": session,
		"token":   token,
	})
}

// AttachResearch handles POST /api/admin/sessions/{sessionId}/research.
func (h *SessionHandler) AttachResearch(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	var req struct {
		Summary string `json:"summary"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.sessionSvc.AttachResearch(r.Context(), sessionID, req.Summary)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Begin handles POST /api/sessions/{sessionId}/begin.
func (h *SessionHandler) Begin(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	result, err := h.sessionSvc.Begin(r.Context(), sessionID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type recordResponseRequest struct {
	QuestionID string            `json:"questionId"`
	Answer     model.AnswerValue `json:"answer"`
	Skipped    bool              `json:"skipped"`
}

// RecordResponse handles POST /api/sessions/{sessionId}/responses.
func (h *SessionHandler) RecordResponse(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	var req recordResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.QuestionID == "" {
		writeError(w, http.StatusBadRequest, "questionId is required")
		return
	}

	result, err := h.sessionSvc.RecordResponse(r.Context(), sessionID, req.QuestionID, req.Answer, req.Skipped)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// EditResponse handles PUT /api/sessions/{sessionId}/responses/{questionId}.
func (h *SessionHandler) EditResponse(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["sessionId"]
	questionID := vars["questionId"]

	var req struct {
		Answer model.AnswerValue `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.sessionSvc.EditResponse(r.Context(), sessionID, questionID, req.Answer)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Analyze handles POST /api/sessions/{sessionId}/analyze.
func (h *SessionHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	session, err := h.sessionSvc.Analyze(r.Context(), sessionID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Get handles GET /api/sessions/{sessionId}.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	session, err := h.sessionSvc.Get(r.Context(), sessionID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// List handles GET /api/admin/sessions. ?full=true includes response bodies.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	withResponses := r.URL.Query().Get("full") == "true"

	sessions, err := h.sessionSvc.List(r.Context(), withResponses)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// Delete handles DELETE /api/admin/sessions/{sessionId}.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	if err := h.sessionSvc.Delete(r.Context(), sessionID); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// CorrectProfile handles POST /api/admin/sessions/{sessionId}/profile-corrections.
func (h *SessionHandler) CorrectProfile(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	var req struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.sessionSvc.CorrectProfile(r.Context(), sessionID, req.Field, req.Value)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}
