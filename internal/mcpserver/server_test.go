package mcpserver_test

import (
	"context"
	"encoding/json"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/learnmesh"
	"github.com/hupe1980/learnmesh/imagegen"
	"github.com/hupe1980/learnmesh/internal/mcpserver"
	"github.com/hupe1980/learnmesh/retry"
)

type staticBackend struct{}

func (staticBackend) Name() string { return "imagen" }

func (staticBackend) Generate(context.Context, string) (*imagegen.Payload, error) {
	return &imagegen.Payload{Data: []byte("png"), MimeType: "image/png"}, nil
}

func connectInMemory(t *testing.T, ctx context.Context) *sdkmcp.ClientSession {
	t.Helper()
	mesh, err := learnmesh.New(func(o *learnmesh.Options) {
		o.Primary = staticBackend{}
		o.RetryPolicy = retry.Policy{Attempts: 1}
	})
	require.NoError(t, err)

	srv := mcpserver.NewServer(mesh)
	t1, t2 := sdkmcp.NewInMemoryTransports()
	_, err = srv.MCPServer.Connect(ctx, t1, nil)
	require.NoError(t, err)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, t2, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func callTool(t *testing.T, ctx context.Context, session *sdkmcp.ClientSession, name string, args map[string]any) map[string]any {
	t.Helper()
	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.False(t, res.IsError, "CallTool(%s) returned error", name)

	for _, c := range res.Content {
		if tc, ok := c.(*sdkmcp.TextContent); ok {
			out := map[string]any{}
			require.NoError(t, json.Unmarshal([]byte(tc.Text), &out), tc.Text)
			return out
		}
	}
	t.Fatalf("no text content in %s result", name)
	return nil
}

func TestServer_ToolDiscovery(t *testing.T) {
	ctx := context.Background()
	session := connectInMemory(t, ctx)

	res, err := session.ListTools(ctx, nil)
	require.NoError(t, err)

	var names []string
	for _, tl := range res.Tools {
		names = append(names, tl.Name)
	}
	assert.ElementsMatch(t, []string{
		"generate_image",
		"get_student_overall_performance",
		"list_artifacts",
		"load_artifact",
	}, names)
}

func TestServer_PerformanceAcrossCalls(t *testing.T) {
	ctx := context.Background()
	session := connectInMemory(t, ctx)

	var out map[string]any
	for _, score := range []float64{80, 90, 70} {
		out = callTool(t, ctx, session, "get_student_overall_performance", map[string]any{
			"session_id":              "learner-1",
			"current_quiz_percentage": score,
		})
	}
	assert.Equal(t, "success", out["status"])
	assert.Equal(t, float64(80), out["overall_percentage"])
	assert.Equal(t, float64(3), out["quizzes_counted"])

	out = callTool(t, ctx, session, "get_student_overall_performance", map[string]any{
		"session_id":              "learner-1",
		"current_quiz_percentage": 101,
	})
	assert.Equal(t, "error", out["status"])
	assert.Equal(t, "VALIDATION_ERROR", out["code"])
}

func TestServer_ImageAndArtifacts(t *testing.T) {
	ctx := context.Background()
	session := connectInMemory(t, ctx)

	out := callTool(t, ctx, session, "generate_image", map[string]any{
		"session_id": "learner-1",
		"prompt":     "the solar system",
	})
	require.Equal(t, "success", out["status"], out)
	assert.Equal(t, "the_solar_system_image.png", out["artifact_name"])
	assert.Equal(t, float64(1), out["version"])

	out = callTool(t, ctx, session, "list_artifacts", map[string]any{"session_id": "learner-1"})
	assert.Equal(t, []any{"the_solar_system_image.png"}, out["artifacts"])

	out = callTool(t, ctx, session, "load_artifact", map[string]any{
		"session_id":   "learner-1",
		"name":         "the_solar_system_image.png",
		"include_data": true,
	})
	assert.Equal(t, "cG5n", out["data_base64"])

	out = callTool(t, ctx, session, "list_artifacts", map[string]any{"session_id": "learner-2"})
	assert.Empty(t, out["artifacts"])

	out = callTool(t, ctx, session, "load_artifact", map[string]any{"session_id": "learner-2", "name": "the_solar_system_image.png"})
	assert.Equal(t, "NOT_FOUND", out["code"])
}
