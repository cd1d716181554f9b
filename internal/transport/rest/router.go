package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/behuman/cascade/internal/service"
	"github.com/behuman/cascade/internal/transport/rest/handler"
	"github.com/behuman/cascade/internal/transport/rest/middleware"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService       *service.AuthService
	SessionService    *service.SessionService
	InvitationService *service.InvitationService
	Log               *zap.SugaredLogger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	sessionHandler := handler.NewSessionHandler(c.SessionService, c.AuthService, c.Log)
	invitationHandler := handler.NewInvitationHandler(c.InvitationService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/invitations/{token}", invitationHandler.Peek).Methods("GET", "OPTIONS")
	v1.HandleFunc("/sessions", sessionHandler.Create).Methods("POST", "OPTIONS")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Participant routes (require session-scoped token)
	participantRoutes := v1.NewRoute().Subrouter()
	participantRoutes.Use(authMW.RequireParticipant)

	participantRoutes.HandleFunc("/sessions/{sessionId}", sessionHandler.Get).Methods("GET", "OPTIONS")
	participantRoutes.HandleFunc("/sessions/{sessionId}/begin", sessionHandler.Begin).Methods("POST", "OPTIONS")
	participantRoutes.HandleFunc("/sessions/{sessionId}/responses", sessionHandler.RecordResponse).Methods("POST", "OPTIONS")
	participantRoutes.HandleFunc("/sessions/{sessionId}/responses/{questionId}", sessionHandler.EditResponse).Methods("PUT", "OPTIONS")
	participantRoutes.HandleFunc("/sessions/{sessionId}/analyze", sessionHandler.Analyze).Methods("POST", "OPTIONS")

	// Admin routes (require admin auth)
	adminRoutes := v1.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(authMW.RequireAdmin)

	adminRoutes.HandleFunc("/invitations", invitationHandler.Create).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/sessions", sessionHandler.List).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/sessions/{sessionId}", sessionHandler.Get).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/sessions/{sessionId}", sessionHandler.Delete).Methods("DELETE", "OPTIONS")
	adminRoutes.HandleFunc("/sessions/{sessionId}/research", sessionHandler.AttachResearch).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/sessions/{sessionId}/analyze", sessionHandler.Analyze).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/sessions/{sessionId}/profile-corrections", sessionHandler.CorrectProfile).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
