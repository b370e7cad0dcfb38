// Package server exposes Groupify over JSON HTTP.
package server

import (
	"log/slog"
	"net/http"

	"groupify/internal/auth"
	"groupify/internal/metrics"
	"groupify/internal/middleware"
	"groupify/internal/service"
)

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	receipts *service.ReceiptService
	groups   *service.GroupService
	auth     *service.AuthService
	jwt      *auth.JWTManager
	logger   *slog.Logger
}

// New creates a Server. A nil logger falls back to slog.Default.
func New(receipts *service.ReceiptService, groups *service.GroupService, authSvc *service.AuthService, jwt *auth.JWTManager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		receipts: receipts,
		groups:   groups,
		auth:     authSvc,
		jwt:      jwt,
		logger:   logger,
	}
}

// Handler builds the full route table with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	mux.Handle("POST /api/receipts", s.optional(s.handleParseReceipt))
	mux.Handle("GET /api/receipts", s.required(s.handleListReceipts))
	mux.HandleFunc("GET /api/receipts/{id}", s.handleGetReceipt)
	mux.HandleFunc("POST /api/receipts/{id}/assign", s.handleAssignItem)
	mux.HandleFunc("POST /api/receipts/{id}/tip", s.handleAddTip)
	mux.HandleFunc("POST /api/receipts/{id}/split", s.handleSplit)
	mux.HandleFunc("GET /api/receipts/{id}/settlements", s.handleSettlements)
	mux.HandleFunc("GET /api/receipts/{id}/export", s.handleExport)

	mux.Handle("POST /api/groups", s.required(s.handleCreateGroup))
	mux.Handle("GET /api/groups", s.required(s.handleListGroups))
	mux.Handle("GET /api/groups/{id}", s.required(s.handleGetGroup))

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())

	return middleware.Logging(middleware.CORS(mux))
}

func (s *Server) required(h http.HandlerFunc) http.Handler {
	return middleware.RequireAuth(s.jwt, h)
}

func (s *Server) optional(h http.HandlerFunc) http.Handler {
	return middleware.OptionalAuth(s.jwt, h)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
