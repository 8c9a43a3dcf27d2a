package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/planner"
	"github.com/aretw0/planner/internal/logging"
	"github.com/aretw0/planner/pkg/domain"
	"github.com/aretw0/planner/pkg/script"
	"github.com/aretw0/planner/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Result is the structured outcome of every workspace tool.
type Result struct {
	Workspace string              `json:"workspace" jsonschema_description:"Workspace the tool acted on"`
	Applied   bool                `json:"applied" jsonschema_description:"Whether the call changed the workspace"`
	ID        domain.EntityID     `json:"id,omitempty" jsonschema_description:"Entity created or deleted"`
	Detail    string              `json:"detail,omitempty" jsonschema_description:"Human readable summary"`
	History   domain.HistoryState `json:"history" jsonschema_description:"Undo/redo availability after the call"`
}

// Server exposes workspaces as MCP tools, so agent hosts can edit plans.
type Server struct {
	sessions  *session.Manager
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance.
func NewServer(sessions *session.Manager, logger *slog.Logger) *Server {
	s := &Server{
		sessions:  sessions,
		mcpServer: server.NewMCPServer("planner-mcp", strings.TrimSpace(planner.Version)),
		logger:    logging.OrNop(logger),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func workspaceArg() mcp.ToolOption {
	return mcp.WithString("workspace", mcp.Required(), mcp.Description("Workspace ID"))
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("open_workspace",
		mcp.WithDescription("Open a workspace, creating it if it does not exist."),
		workspaceArg(),
		mcp.WithOutputSchema[Result](),
	), mcp.NewStructuredToolHandler(s.handleOpen))

	s.mcpServer.AddTool(mcp.NewTool("stamp",
		mcp.WithDescription("Insert a free-form entity (shape, text, image). It becomes one undo step."),
		workspaceArg(),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Entity kind: shape, text or image")),
		mcp.WithString("id", mcp.Description("Entity ID (generated if omitted)")),
		mcp.WithString("text", mcp.Description("Text content")),
		mcp.WithNumber("x", mcp.Description("X position")),
		mcp.WithNumber("y", mcp.Description("Y position")),
		mcp.WithOutputSchema[Result](),
	), mcp.NewStructuredToolHandler(s.handleStamp))

	s.mcpServer.AddTool(mcp.NewTool("place_device",
		mcp.WithDescription("Place a device with its label as one undo step."),
		workspaceArg(),
		mcp.WithString("id", mcp.Description("Device ID (generated if omitted)")),
		mcp.WithString("label", mcp.Description("Label text")),
		mcp.WithNumber("x", mcp.Description("X position")),
		mcp.WithNumber("y", mcp.Description("Y position")),
		mcp.WithBoolean("coverage", mcp.Description("Whether the device projects a coverage overlay")),
		mcp.WithOutputSchema[Result](),
	), mcp.NewStructuredToolHandler(s.handlePlaceDevice))

	s.mcpServer.AddTool(mcp.NewTool("delete_entity",
		mcp.WithDescription("Delete an entity together with what depends on it (labels, orphaned wall nodes)."),
		workspaceArg(),
		mcp.WithString("entity_id", mcp.Required(), mcp.Description("Entity ID")),
		mcp.WithOutputSchema[Result](),
	), mcp.NewStructuredToolHandler(s.handleDelete))

	s.mcpServer.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Revert the most recent change."),
		workspaceArg(),
		mcp.WithOutputSchema[Result](),
	), mcp.NewStructuredToolHandler(s.handleUndo))

	s.mcpServer.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Re-apply the most recently reverted change."),
		workspaceArg(),
		mcp.WithOutputSchema[Result](),
	), mcp.NewStructuredToolHandler(s.handleRedo))

	s.mcpServer.AddTool(mcp.NewTool("run_script",
		mcp.WithDescription("Replay a YAML editor script against the workspace."),
		workspaceArg(),
		mcp.WithString("script", mcp.Required(), mcp.Description("YAML script with a steps list")),
		mcp.WithOutputSchema[Result](),
	), mcp.NewStructuredToolHandler(s.handleRunScript))

	s.mcpServer.AddTool(mcp.NewTool("snapshot",
		mcp.WithDescription("Get the entities, registries, walls and history of a workspace."),
		workspaceArg(),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, _ := request.GetArguments()["workspace"].(string)
		var snap *planner.Snapshot
		err := s.sessions.WithLock(ctx, id, func(ctx context.Context, ws *planner.Workspace) error {
			var err error
			snap, err = ws.Snapshot(ctx)
			return err
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("snapshot failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(snap)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

// Handler methods for structured tools

func (s *Server) handleOpen(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (Result, error) {
	id, _ := args["workspace"].(string)
	if _, err := s.sessions.Open(ctx, id); err != nil {
		return Result{}, err
	}
	return s.apply(ctx, id, func(ctx context.Context, ws *planner.Workspace, res *Result) error {
		res.Detail = "opened"
		return nil
	})
}

func (s *Server) handleStamp(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (Result, error) {
	id, _ := args["workspace"].(string)
	kind, _ := args["kind"].(string)
	entityID, _ := args["id"].(string)
	text, _ := args["text"].(string)
	return s.apply(ctx, id, func(ctx context.Context, ws *planner.Workspace, res *Result) error {
		e, err := ws.Stamp(ctx, &domain.Entity{
			ID:       domain.EntityID(entityID),
			Kind:     domain.Kind(kind),
			Text:     text,
			Position: pointArg(args),
		})
		if err != nil {
			return err
		}
		res.Applied, res.ID = true, e.ID
		return nil
	})
}

func (s *Server) handlePlaceDevice(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (Result, error) {
	id, _ := args["workspace"].(string)
	entityID, _ := args["id"].(string)
	label, _ := args["label"].(string)
	coverage, _ := args["coverage"].(bool)
	return s.apply(ctx, id, func(ctx context.Context, ws *planner.Workspace, res *Result) error {
		d, err := ws.PlaceDevice(ctx, planner.DeviceSpec{
			ID:       domain.EntityID(entityID),
			Label:    label,
			Coverage: coverage,
			Position: pointArg(args),
		})
		if err != nil {
			return err
		}
		res.Applied, res.ID = true, d.ID
		return nil
	})
}

func (s *Server) handleDelete(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (Result, error) {
	id, _ := args["workspace"].(string)
	entityID, _ := args["entity_id"].(string)
	return s.apply(ctx, id, func(ctx context.Context, ws *planner.Workspace, res *Result) error {
		ok, err := ws.Delete(ctx, domain.EntityID(entityID))
		res.Applied, res.ID = ok, domain.EntityID(entityID)
		return err
	})
}

func (s *Server) handleUndo(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (Result, error) {
	id, _ := args["workspace"].(string)
	return s.apply(ctx, id, func(ctx context.Context, ws *planner.Workspace, res *Result) error {
		res.Applied = ws.Undo(ctx)
		return nil
	})
}

func (s *Server) handleRedo(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (Result, error) {
	id, _ := args["workspace"].(string)
	return s.apply(ctx, id, func(ctx context.Context, ws *planner.Workspace, res *Result) error {
		res.Applied = ws.Redo(ctx)
		return nil
	})
}

func (s *Server) handleRunScript(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (Result, error) {
	id, _ := args["workspace"].(string)
	src, _ := args["script"].(string)
	sc, err := script.Parse([]byte(src))
	if err != nil {
		return Result{}, err
	}
	return s.apply(ctx, id, func(ctx context.Context, ws *planner.Workspace, res *Result) error {
		outcomes, err := script.Run(ctx, ws, sc)
		res.Applied = len(outcomes) > 0
		res.Detail = fmt.Sprintf("%d of %d steps applied", len(outcomes), len(sc.Steps))
		return err
	})
}

// apply runs fn under the workspace lock and fills in the resulting history state.
func (s *Server) apply(ctx context.Context, id string, fn func(context.Context, *planner.Workspace, *Result) error) (Result, error) {
	res := Result{Workspace: id}
	err := s.sessions.WithLock(ctx, id, func(ctx context.Context, ws *planner.Workspace) error {
		err := fn(ctx, ws, &res)
		res.History = ws.State()
		return err
	})
	if err != nil {
		s.logger.Warn("MCP tool failed", "workspace", id, "err", err)
		return Result{}, err
	}
	return res, nil
}

func pointArg(args map[string]interface{}) domain.Point {
	x, _ := args["x"].(float64)
	y, _ := args["y"].(float64)
	return domain.Point{X: x, Y: y}
}

func (s *Server) registerResources() {
	// EXPOSE: planner://workspaces
	s.mcpServer.AddResource(mcp.NewResource("planner://workspaces", "Open Workspaces",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, _ := json.Marshal(s.sessions.List())
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "planner://workspaces",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
