package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginAndValidate(t *testing.T) {
	svc := NewAuthService()

	resp, err := svc.Login("admin", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)

	claims, err := svc.ValidateAdminToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.AdminID, claims.AdminID)
}

func TestLoginBadCredentials(t *testing.T) {
	svc := NewAuthService()

	_, err := svc.Login("admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login("intruder", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestParticipantTokenRoundTrip(t *testing.T) {
	svc := NewAuthService()

	token, err := svc.GenerateParticipantToken("sess_123")
	require.NoError(t, err)

	claims, err := svc.ValidateParticipantToken(token)
	require.NoError(t, err)
	assert.Equal(t, "sess_123", claims.SessionID)
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	svc := NewAuthService()

	participant, err := svc.GenerateParticipantToken("sess_123")
	require.NoError(t, err)
	_, err = svc.ValidateAdminToken(participant)
	assert.ErrorIs(t, err, ErrInvalidToken)

	login, err := svc.Login("admin", "password123")
	require.NoError(t, err)
	_, err = svc.ValidateParticipantToken(login.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateGarbageToken(t *testing.T) {
	svc := NewAuthService()

	_, err := svc.ValidateAdminToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
