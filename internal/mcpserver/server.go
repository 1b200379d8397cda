// Package mcpserver exposes the learnmesh tools over the Model Context
// Protocol so an external orchestrator can call them. Every tool takes a
// session_id argument selecting the learner's session; results are the flat
// tool result maps, with failures reported in-band via "status": "error".
package mcpserver

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hupe1980/learnmesh"
	"github.com/hupe1980/learnmesh/logging"
	"github.com/hupe1980/learnmesh/tool"
)

// Server wraps the MCP SDK server.
type Server struct {
	MCPServer *sdkmcp.Server

	mesh   *learnmesh.Mesh
	logger logging.Logger
}

// Options configures a Server.
type Options struct {
	Name    string
	Version string
	Logger  logging.Logger
}

// NewServer creates an MCP server with the mesh tools registered.
func NewServer(mesh *learnmesh.Mesh, optFns ...func(o *Options)) *Server {
	opts := Options{Name: "learnmesh", Version: "dev", Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	s := &Server{
		MCPServer: sdkmcp.NewServer(&sdkmcp.Implementation{Name: opts.Name, Version: opts.Version}, nil),
		mesh:      mesh,
		logger:    opts.Logger,
	}
	s.registerTools()
	return s
}

// Run serves over stdio until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("mcp.serve.start", "transport", "stdio")
	return s.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}

func (s *Server) registerTools() {
	for _, t := range s.mesh.Tools() {
		switch t.Name() {
		case tool.PerformanceToolName:
			sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{Name: t.Name(), Description: t.Description()}, s.handlePerformance)
		case tool.GenerateImageToolName:
			sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{Name: t.Name(), Description: t.Description()}, s.handleGenerateImage)
		case tool.LoadArtifactToolName:
			sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{Name: t.Name(), Description: t.Description()}, s.handleLoadArtifact)
		case tool.ListArtifactsToolName:
			sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{Name: t.Name(), Description: t.Description()}, s.handleListArtifacts)
		default:
			s.logger.Warn("mcp.tool.skipped", "tool", t.Name())
		}
	}
}

// --- Tool input types ---

type performanceInput struct {
	SessionID             string  `json:"session_id" jsonschema:"learner session ID"`
	CurrentQuizPercentage float64 `json:"current_quiz_percentage" jsonschema:"percentage scored on the quiz just completed (0-100)"`
}

type generateImageInput struct {
	SessionID string `json:"session_id" jsonschema:"learner session ID"`
	Prompt    string `json:"prompt" jsonschema:"description of the image to generate"`
	Name      string `json:"name,omitempty" jsonschema:"artifact name; derived from the prompt when omitted"`
}

type loadArtifactInput struct {
	SessionID   string `json:"session_id" jsonschema:"learner session ID"`
	Name        string `json:"name" jsonschema:"artifact name"`
	Version     int    `json:"version,omitempty" jsonschema:"version to load; latest when omitted"`
	IncludeData bool   `json:"include_data,omitempty" jsonschema:"return the payload base64 encoded"`
}

type listArtifactsInput struct {
	SessionID string `json:"session_id" jsonschema:"learner session ID"`
}

// --- Tool handlers ---

func (s *Server) handlePerformance(ctx context.Context, _ *sdkmcp.CallToolRequest, in performanceInput) (*sdkmcp.CallToolResult, map[string]any, error) {
	return s.invoke(ctx, in.SessionID, tool.PerformanceToolName, map[string]any{
		"current_quiz_percentage": in.CurrentQuizPercentage,
	})
}

func (s *Server) handleGenerateImage(ctx context.Context, _ *sdkmcp.CallToolRequest, in generateImageInput) (*sdkmcp.CallToolResult, map[string]any, error) {
	args := map[string]any{"prompt": in.Prompt}
	if in.Name != "" {
		args["name"] = in.Name
	}
	return s.invoke(ctx, in.SessionID, tool.GenerateImageToolName, args)
}

func (s *Server) handleLoadArtifact(ctx context.Context, _ *sdkmcp.CallToolRequest, in loadArtifactInput) (*sdkmcp.CallToolResult, map[string]any, error) {
	return s.invoke(ctx, in.SessionID, tool.LoadArtifactToolName, map[string]any{
		"name":         in.Name,
		"version":      in.Version,
		"include_data": in.IncludeData,
	})
}

func (s *Server) handleListArtifacts(ctx context.Context, _ *sdkmcp.CallToolRequest, in listArtifactsInput) (*sdkmcp.CallToolResult, map[string]any, error) {
	return s.invoke(ctx, in.SessionID, tool.ListArtifactsToolName, nil)
}

func (s *Server) invoke(ctx context.Context, sessionID, name string, args map[string]any) (*sdkmcp.CallToolResult, map[string]any, error) {
	inv := s.mesh.Invoke(ctx, sessionID, name, args)
	s.logger.Debug("mcp.tool.called", "tool", name, "session_id", sessionID, "invocation_id", inv.ID, "status", inv.Result["status"])
	return nil, inv.Result, nil
}
