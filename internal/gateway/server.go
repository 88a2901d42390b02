package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/purrsec/Hackathon-parrotAI/internal/mission"
)

// Server exposes the mission pipeline over HTTP and WebSocket.
type Server struct {
	service *MissionService
	logger  *slog.Logger
	http    *http.Server
	hub     *wsHub
	dryRun  bool
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithServerLogger sets the logger.
func WithServerLogger(l *slog.Logger) ServerOption {
	return func(s *Server) { s.logger = l }
}

// WithDryRun makes confirmed missions log instead of fly.
func WithDryRun(enabled bool) ServerOption {
	return func(s *Server) { s.dryRun = enabled }
}

// NewServer builds the HTTP server around the mission service.
func NewServer(addr string, allowedOrigins []string, service *MissionService, opts ...ServerOption) *Server {
	s := &Server{
		service: service,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.hub = newWSHub(s.logger)
	service.onResult = s.hub.broadcastResult

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/message", s.handleMessage)
	r.Post("/missions/{id}/confirm", s.handleConfirm)
	r.Post("/missions/{id}/reject", s.handleReject)
	r.Get("/missions/{id}/report", s.handleReport)
	r.Get("/health", s.handleHealth)
	r.Get("/history", s.handleHistory)
	r.Post("/reset", s.handleReset)
	r.Get("/ws", s.hub.handleWS(s))

	s.http = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// ListenAndServe runs the server until Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.logger.Info("gateway listening", "addr", s.http.Addr)
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains the server and closes WebSocket sessions.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.close()
	return s.http.Shutdown(ctx)
}

type messageRequest struct {
	Message string `json:"message"`
}

type proposalResponse struct {
	MissionID     string        `json:"mission_id"`
	Understanding string        `json:"understanding,omitempty"`
	Mission       *mission.Plan `json:"mission"`
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	proposal, err := s.service.Plan(r.Context(), req.Message)
	if err != nil {
		s.logger.Error("planning failed", "error", err)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, proposalResponse{
		MissionID:     proposal.MissionID,
		Understanding: proposal.Understanding,
		Mission:       proposal.Plan,
	})
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.service.Confirm(id, s.dryRun); err != nil {
		if errors.Is(err, mission.ErrNoSuchPending) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"mission_id": id,
		"status":     "executing",
	})
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.service.Reject(id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"mission_id": id,
		"status":     "rejected",
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	report, err := s.service.Report(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	pending, executing, uptime := s.service.Status()

	vehicleReady := true
	if err := s.service.VehicleReady(r.Context()); err != nil {
		vehicleReady = false
		s.logger.Warn("vehicle readiness probe failed", "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"uptime_seconds": int(uptime.Seconds()),
		"pending":        pending,
		"executing":      executing,
		"vehicle_ready":  vehicleReady,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.service.History())
}

func (s *Server) handleReset(w http.ResponseWriter, _ *http.Request) {
	s.service.Reset()
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
