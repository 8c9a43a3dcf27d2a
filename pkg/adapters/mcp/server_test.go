package mcp

import (
	"context"
	"testing"

	"github.com/aretw0/planner/pkg/domain"
	"github.com/aretw0/planner/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *session.Manager) {
	t.Helper()
	sessions := session.NewManager(nil)
	return NewServer(sessions, nil), sessions
}

func TestServer_DeviceRoundTrip(t *testing.T) {
	s, sessions := newTestServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	res, err := s.handleOpen(ctx, req, map[string]interface{}{"workspace": "floor-1"})
	require.NoError(t, err)
	assert.Equal(t, "floor-1", res.Workspace)
	assert.False(t, res.History.CanUndo)

	res, err = s.handlePlaceDevice(ctx, req, map[string]interface{}{
		"workspace": "floor-1",
		"id":        "ap-1",
		"label":     "AP lobby",
		"x":         float64(12),
		"y":         float64(30),
	})
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, domain.EntityID("ap-1"), res.ID)
	assert.Equal(t, 1, res.History.UndoDepth)

	res, err = s.handleDelete(ctx, req, map[string]interface{}{"workspace": "floor-1", "entity_id": "ap-1"})
	require.NoError(t, err)
	assert.True(t, res.Applied)

	ws, err := sessions.Open(ctx, "floor-1")
	require.NoError(t, err)
	assert.Empty(t, ws.Scene().List())

	res, err = s.handleUndo(ctx, req, map[string]interface{}{"workspace": "floor-1"})
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Len(t, ws.Scene().List(), 2, "device and label come back")

	res, err = s.handleRedo(ctx, req, map[string]interface{}{"workspace": "floor-1"})
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Empty(t, ws.Scene().List())

	res, err = s.handleRedo(ctx, req, map[string]interface{}{"workspace": "floor-1"})
	require.NoError(t, err)
	assert.False(t, res.Applied)
}

func TestServer_Stamp(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	_, err := s.handleOpen(ctx, req, map[string]interface{}{"workspace": "w"})
	require.NoError(t, err)

	res, err := s.handleStamp(ctx, req, map[string]interface{}{"workspace": "w", "kind": "text", "text": "Server room"})
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.NotEmpty(t, res.ID)

	_, err = s.handleStamp(ctx, req, map[string]interface{}{"workspace": "w", "kind": "teapot"})
	assert.ErrorIs(t, err, domain.ErrUnknownKind)
}

func TestServer_RunScript(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	_, err := s.handleOpen(ctx, req, map[string]interface{}{"workspace": "w"})
	require.NoError(t, err)

	src := `
steps:
  - stamp: {kind: shape, id: s1}
  - stamp: {kind: shape, id: s2}
  - undo
`
	res, err := s.handleRunScript(ctx, req, map[string]interface{}{"workspace": "w", "script": src})
	require.NoError(t, err)
	assert.Equal(t, "3 of 3 steps applied", res.Detail)
	assert.Equal(t, 1, res.History.UndoDepth)
	assert.Equal(t, 1, res.History.RedoDepth)

	_, err = s.handleRunScript(ctx, req, map[string]interface{}{"workspace": "w", "script": "steps: [{bogus: 1}]"})
	assert.Error(t, err)
}

func TestServer_MissingWorkspace(t *testing.T) {
	s, _ := newTestServer(t)
	_, err := s.handleUndo(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{"workspace": "nope"})
	assert.ErrorIs(t, err, domain.ErrWorkspaceNotFound)
}
