package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/behuman/cascade/internal/service"
	"github.com/behuman/cascade/internal/transport/rest/middleware"
)

// InvitationHandler handles admin invitation minting.
type InvitationHandler struct {
	invitationSvc *service.InvitationService
}

// NewInvitationHandler creates a new invitation handler.
func NewInvitationHandler(svc *service.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitationSvc: svc}
}

// Create handles POST /api/admin/invitations.
func (h *InvitationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	adminID := middleware.GetAdminID(r.Context())
	inv, err := h.invitationSvc.Mint(r.Context(), adminID, req.Email)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, inv)
}

// Peek handles GET /api/invitations/{token} so the intake form can reject
// a dead link before the participant types anything.
func (h *InvitationHandler) Peek(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	inv, err := h.invitationSvc.Peek(r.Context(), token)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":       inv.ID,
		"consumed": inv.Consumed(),
	})
}
