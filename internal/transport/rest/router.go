package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"debatehub/internal/service"
	"debatehub/internal/transport/rest/handler"
	"debatehub/internal/transport/rest/middleware"
	"debatehub/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService          *service.AuthService
	QuestionnaireService *service.QuestionnaireService
	SessionService       *service.SessionService
	ProfileService       *service.ProfileService
	WSHub                *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	questionnaireHandler := handler.NewQuestionnaireHandler(c.QuestionnaireService)
	sessionHandler := handler.NewSessionHandler(c.SessionService, c.AuthService)
	profileHandler := handler.NewProfileHandler(c.ProfileService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/questionnaires/{questionnaireId}/start", sessionHandler.Start).Methods("POST", "OPTIONS")

	// WebSocket route (public with token in query param)
	v1.HandleFunc("/ws/sessions/{sessionId}", wsHandler.SessionWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Host routes (require host auth)
	hostRoutes := v1.NewRoute().Subrouter()
	hostRoutes.Use(authMW.RequireHost)

	hostRoutes.HandleFunc("/questionnaires", questionnaireHandler.Create).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/questionnaires", questionnaireHandler.List).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/questionnaires/{questionnaireId}", questionnaireHandler.Get).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/questionnaires/{questionnaireId}", questionnaireHandler.Update).Methods("PUT", "OPTIONS")
	hostRoutes.HandleFunc("/questionnaires/{questionnaireId}", questionnaireHandler.Delete).Methods("DELETE", "OPTIONS")
	hostRoutes.HandleFunc("/questionnaires/{questionnaireId}/profiles/{respondentId}", profileHandler.Get).Methods("GET", "OPTIONS")

	// Respondent routes (require respondent auth)
	respondentRoutes := v1.NewRoute().Subrouter()
	respondentRoutes.Use(authMW.RequireRespondent)

	respondentRoutes.HandleFunc("/sessions/{sessionId}", sessionHandler.Current).Methods("GET", "OPTIONS")
	respondentRoutes.HandleFunc("/sessions/{sessionId}/resume", sessionHandler.Resume).Methods("POST", "OPTIONS")
	respondentRoutes.HandleFunc("/sessions/{sessionId}/responses", sessionHandler.SaveResponse).Methods("PUT", "OPTIONS")
	respondentRoutes.HandleFunc("/sessions/{sessionId}/advance", sessionHandler.Advance).Methods("POST", "OPTIONS")
	respondentRoutes.HandleFunc("/sessions/{sessionId}/retreat", sessionHandler.Retreat).Methods("POST", "OPTIONS")
	respondentRoutes.HandleFunc("/sessions/{sessionId}/skip", sessionHandler.Skip).Methods("POST", "OPTIONS")
	respondentRoutes.HandleFunc("/sessions/{sessionId}/jump/{index}", sessionHandler.Jump).Methods("POST", "OPTIONS")
	respondentRoutes.HandleFunc("/sessions/{sessionId}/personalization", sessionHandler.Personalization).Methods("GET", "OPTIONS")
	respondentRoutes.HandleFunc("/sessions/{sessionId}/issues", sessionHandler.Issues).Methods("GET", "OPTIONS")
	respondentRoutes.HandleFunc("/sessions/{sessionId}/progress", sessionHandler.Progress).Methods("GET", "OPTIONS")
	respondentRoutes.HandleFunc("/sessions/{sessionId}/finalize", sessionHandler.Finalize).Methods("POST", "OPTIONS")

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
