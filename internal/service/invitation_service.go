package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/behuman/cascade/internal/model"
	"github.com/behuman/cascade/internal/repository"
)

// InvitationService mints single-use invitations for admins.
type InvitationService struct {
	invitationRepo repository.InvitationRepo
}

// NewInvitationService creates a new invitation service.
func NewInvitationService(repo repository.InvitationRepo) *InvitationService {
	return &InvitationService{invitationRepo: repo}
}

// Mint creates one unconsumed invitation.
func (s *InvitationService) Mint(ctx context.Context, adminID, email string) (*model.Invitation, error) {
	if email != "" && !strings.Contains(email, "@") {
		return nil, model.Validationf("email %q is not valid", email)
	}

	inv := &model.Invitation{
		ID:        "inv_" + uuid.New().String()[:8],
		Token:     uuid.New().String(),
		Email:     email,
		CreatedBy: adminID,
	}

	if err := s.invitationRepo.Create(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// Peek looks up an invitation without consuming it, for preflight checks.
func (s *InvitationService) Peek(ctx context.Context, token string) (*model.Invitation, error) {
	inv, err := s.invitationRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, model.Validationf("invitation not found")
	}
	return inv, nil
}
