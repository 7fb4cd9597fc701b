// Package httpserver exposes the ArenaHub score API over HTTP.
package httpserver

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/arenahub/arenahub-backend/internal/ratelimit"
	"github.com/arenahub/arenahub-backend/internal/service"
)

// Server wires services into HTTP handlers.
type Server struct {
	scores *service.ScoreService
	admin  *service.AdminService
	log    *zap.Logger
}

// New constructs a Server with injected services.
func New(scores *service.ScoreService, admin *service.AdminService, log *zap.Logger) *Server {
	return &Server{scores: scores, admin: admin, log: log}
}

// Router builds the route table with the standard middleware chain.
// limiter may be nil to disable throttling (tests).
func (s *Server) Router(limiter *ratelimit.Limiter) http.Handler {
	r := mux.NewRouter()
	r.Use(Recover(s.log))
	r.Use(RequestLogger(s.log))
	r.Use(CORS)
	if limiter != nil {
		r.Use(limiter.Middleware)
	}

	r.HandleFunc("/", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	r.HandleFunc("/submit-score", s.handleSubmit).Methods(http.MethodPost)
	r.HandleFunc("/leaderboard", s.handleLeaderboard).Methods(http.MethodGet)
	r.HandleFunc("/profile/{address}", s.handleProfile).Methods(http.MethodGet)

	r.HandleFunc("/admin/login", s.handleAdminLogin).Methods(http.MethodPost)
	r.HandleFunc("/admin/reset", s.handleAdminReset).Methods(http.MethodPost)
	r.HandleFunc("/admin/last-reset", s.handleLastResetInfo).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found")
	})
	return r
}
