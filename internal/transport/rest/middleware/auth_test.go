package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/behuman/cascade/internal/service"
)

func participantRouter(t *testing.T, authSvc *service.AuthService) http.Handler {
	t.Helper()
	mw := NewAuthMiddleware(authSvc)
	r := mux.NewRouter()
	sub := r.NewRoute().Subrouter()
	sub.Use(mw.RequireParticipant)
	sub.HandleFunc("/sessions/{sessionId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func TestRequireParticipantMatchingSession(t *testing.T) {
	authSvc := service.NewAuthService()
	token, err := authSvc.GenerateParticipantToken("sess_abc")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/sessions/sess_abc", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	participantRouter(t, authSvc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireParticipantMismatchedSession(t *testing.T) {
	authSvc := service.NewAuthService()
	token, err := authSvc.GenerateParticipantToken("sess_abc")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/sessions/sess_other", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	participantRouter(t, authSvc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireParticipantMissingToken(t *testing.T) {
	req := httptest.NewRequest("GET", "/sessions/sess_abc", nil)
	rec := httptest.NewRecorder()

	participantRouter(t, service.NewAuthService()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdminRejectsParticipantToken(t *testing.T) {
	authSvc := service.NewAuthService()
	token, err := authSvc.GenerateParticipantToken("sess_abc")
	require.NoError(t, err)

	mw := NewAuthMiddleware(authSvc)
	r := mux.NewRouter()
	sub := r.NewRoute().Subrouter()
	sub.Use(mw.RequireAdmin)
	sub.HandleFunc("/admin/sessions", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/admin/sessions", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code,
		"session-scoped tokens must not open admin routes")
}

func TestExtractBearerToken(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	assert.Empty(t, extractBearerToken(req))

	req.Header.Set("Authorization", "Bearer abc123")
	assert.Equal(t, "abc123", extractBearerToken(req))

	req.Header.Set("Authorization", "bearer abc123")
	assert.Equal(t, "abc123", extractBearerToken(req))

	req.Header.Set("Authorization", "Basic abc123")
	assert.Empty(t, extractBearerToken(req))
}
