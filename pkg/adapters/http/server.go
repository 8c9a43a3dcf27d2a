package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/planner"
	"github.com/aretw0/planner/internal/logging"
	"github.com/aretw0/planner/pkg/domain"
	"github.com/aretw0/planner/pkg/history"
	"github.com/aretw0/planner/pkg/script"
	"github.com/aretw0/planner/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodySize bounds request bodies (scripts included).
const maxBodySize = 1 << 20

// Server exposes workspaces over HTTP. Every call into a workspace holds its session
// lock.
type Server struct {
	Sessions *session.Manager
	Streams  *StreamManager

	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithGatherer exposes the given metrics on GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger configures a logger for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates a new HTTP handler over the session manager.
func NewHandler(sessions *session.Manager, opts ...Option) http.Handler {
	server := &Server{
		Sessions: sessions,
		Streams:  NewStreamManager(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	if server.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(server.gatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/workspaces", server.ListWorkspaces)
	r.Route("/workspaces/{id}", func(r chi.Router) {
		r.Post("/", server.OpenWorkspace)
		r.Get("/", server.GetSnapshot)
		r.Delete("/", server.CloseWorkspace)
		r.Get("/history", server.GetHistory)
		r.Get("/events", server.SubscribeEvents)

		r.Post("/entities", server.StampEntity)
		r.Delete("/entities/{entityID}", server.DeleteEntity)
		r.Post("/devices", server.PlaceDevice)
		r.Post("/regions", server.DrawRegion)
		r.Post("/walls", server.DrawWalls)
		r.Post("/undo", server.Undo)
		r.Post("/redo", server.Redo)
		r.Post("/settle", server.Settle)
		r.Post("/script", server.RunScript)
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// MutationResponse is returned by every call that may change a workspace.
type MutationResponse struct {
	Applied bool                `json:"applied"`
	ID      domain.EntityID     `json:"id,omitempty"`
	IDs     []domain.EntityID   `json:"ids,omitempty"`
	History domain.HistoryState `json:"history"`
}

// HistoryResponse lists the undo and redo stacks.
type HistoryResponse struct {
	State domain.HistoryState `json:"state"`
	Undo  []history.Entry     `json:"undo"`
	Redo  []history.Entry     `json:"redo"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "planner-http",
		"version": strings.TrimSpace(planner.Version),
	})
}

// ListWorkspaces handles the GET /workspaces request.
func (s *Server) ListWorkspaces(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Sessions.List())
}

// OpenWorkspace handles the POST /workspaces/{id} request.
func (s *Server) OpenWorkspace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.Sessions.Open(r.Context(), id); err != nil {
		s.fail(w, "OpenWorkspace", err)
		return
	}
	s.snapshot(w, r, id, http.StatusCreated)
}

// GetSnapshot handles the GET /workspaces/{id} request.
func (s *Server) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	s.snapshot(w, r, chi.URLParam(r, "id"), http.StatusOK)
}

// CloseWorkspace handles the DELETE /workspaces/{id} request.
func (s *Server) CloseWorkspace(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, "CloseWorkspace", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetHistory handles the GET /workspaces/{id}/history request.
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	var resp HistoryResponse
	err := s.Sessions.WithLock(r.Context(), chi.URLParam(r, "id"), func(ctx context.Context, ws *planner.Workspace) error {
		resp.State = ws.State()
		resp.Undo, resp.Redo = ws.History().Entries()
		return nil
	})
	if err != nil {
		s.fail(w, "GetHistory", err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// StampEntity handles the POST /workspaces/{id}/entities request.
func (s *Server) StampEntity(w http.ResponseWriter, r *http.Request) {
	var e domain.Entity
	if !s.decode(w, r, &e) {
		return
	}
	s.mutate(w, r, "StampEntity", func(ctx context.Context, ws *planner.Workspace, resp *MutationResponse) error {
		stamped, err := ws.Stamp(ctx, &e)
		if err != nil {
			return err
		}
		resp.Applied, resp.ID = true, stamped.ID
		return nil
	})
}

// PlaceDevice handles the POST /workspaces/{id}/devices request.
func (s *Server) PlaceDevice(w http.ResponseWriter, r *http.Request) {
	var spec planner.DeviceSpec
	if !s.decode(w, r, &spec) {
		return
	}
	s.mutate(w, r, "PlaceDevice", func(ctx context.Context, ws *planner.Workspace, resp *MutationResponse) error {
		d, err := ws.PlaceDevice(ctx, spec)
		if err != nil {
			return err
		}
		resp.Applied, resp.ID = true, d.ID
		return nil
	})
}

// DrawRegion handles the POST /workspaces/{id}/regions request.
func (s *Server) DrawRegion(w http.ResponseWriter, r *http.Request) {
	var spec planner.RegionSpec
	if !s.decode(w, r, &spec) {
		return
	}
	s.mutate(w, r, "DrawRegion", func(ctx context.Context, ws *planner.Workspace, resp *MutationResponse) error {
		region, err := ws.DrawRegion(ctx, spec)
		if err != nil {
			return err
		}
		resp.Applied, resp.ID = true, region.ID
		return nil
	})
}

// DrawWalls handles the POST /workspaces/{id}/walls request.
func (s *Server) DrawWalls(w http.ResponseWriter, r *http.Request) {
	var spec planner.WallSpec
	if !s.decode(w, r, &spec) {
		return
	}
	s.mutate(w, r, "DrawWalls", func(ctx context.Context, ws *planner.Workspace, resp *MutationResponse) error {
		nodes, err := ws.DrawWalls(ctx, spec)
		if err != nil {
			return err
		}
		resp.Applied, resp.IDs = true, nodes
		return nil
	})
}

// DeleteEntity handles the DELETE /workspaces/{id}/entities/{entityID} request.
func (s *Server) DeleteEntity(w http.ResponseWriter, r *http.Request) {
	entityID := domain.EntityID(chi.URLParam(r, "entityID"))
	s.mutate(w, r, "DeleteEntity", func(ctx context.Context, ws *planner.Workspace, resp *MutationResponse) error {
		ok, err := ws.Delete(ctx, entityID)
		resp.Applied, resp.ID = ok, entityID
		return err
	})
}

// Undo handles the POST /workspaces/{id}/undo request.
func (s *Server) Undo(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, "Undo", func(ctx context.Context, ws *planner.Workspace, resp *MutationResponse) error {
		resp.Applied = ws.Undo(ctx)
		return nil
	})
}

// Redo handles the POST /workspaces/{id}/redo request.
func (s *Server) Redo(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, "Redo", func(ctx context.Context, ws *planner.Workspace, resp *MutationResponse) error {
		resp.Applied = ws.Redo(ctx)
		return nil
	})
}

// Settle handles the POST /workspaces/{id}/settle request.
func (s *Server) Settle(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, "Settle", func(ctx context.Context, ws *planner.Workspace, resp *MutationResponse) error {
		resp.Applied = ws.Settle(ctx) > 0
		return nil
	})
}

// RunScript handles the POST /workspaces/{id}/script request. The body is a YAML
// editor script.
func (s *Server) RunScript(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	sc, err := script.Parse(data)
	if err != nil {
		s.fail(w, "RunScript", err)
		return
	}

	var outcomes []script.Outcome
	err = s.Sessions.WithLock(r.Context(), chi.URLParam(r, "id"), func(ctx context.Context, ws *planner.Workspace) error {
		var runErr error
		outcomes, runErr = script.Run(ctx, ws, sc)
		s.broadcast(ws, "script")
		return runErr
	})
	if err != nil {
		s.fail(w, "RunScript", err)
		return
	}
	s.writeJSON(w, http.StatusOK, outcomes)
}

// mutate runs fn under the workspace lock, then broadcasts and returns the new state.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, op string, fn func(context.Context, *planner.Workspace, *MutationResponse) error) {
	var resp MutationResponse
	err := s.Sessions.WithLock(r.Context(), chi.URLParam(r, "id"), func(ctx context.Context, ws *planner.Workspace) error {
		err := fn(ctx, ws, &resp)
		resp.History = ws.State()
		if resp.Applied {
			s.broadcast(ws, op)
		}
		return err
	})
	if err != nil {
		s.fail(w, op, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) snapshot(w http.ResponseWriter, r *http.Request, id string, status int) {
	var snap *planner.Snapshot
	err := s.Sessions.WithLock(r.Context(), id, func(ctx context.Context, ws *planner.Workspace) error {
		var err error
		snap, err = ws.Snapshot(ctx)
		return err
	})
	if err != nil {
		s.fail(w, "Snapshot", err)
		return
	}
	s.writeJSON(w, status, snap)
}

// broadcast notifies SSE subscribers of a workspace change.
func (s *Server) broadcast(ws *planner.Workspace, op string) {
	payload, err := json.Marshal(map[string]any{"op": op, "history": ws.State()})
	if err != nil {
		return
	}
	s.Streams.Broadcast(ws.ID, string(payload))
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Invalid request body", "path", r.URL.Path, "err", err)
		return false
	}
	return true
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrWorkspaceNotFound), errors.Is(err, domain.ErrEntityNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownKind), errors.Is(err, domain.ErrInvalidScript), errors.Is(err, domain.ErrNotStampable):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotApplied):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	}
	http.Error(w, fmt.Sprintf("%s error: %v", op, err), status)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}
