package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ekomarov/drafter/internal/core/ports"
)

// Server exposes outline management over the Model Context Protocol so
// editor assistants can drive the same use cases as the HTTP API.
type Server struct {
	outlines ports.OutlineService
	content  ports.ContentService
	render   ports.RenderService
	mcp      *server.MCPServer
}

func NewServer(
	outlines ports.OutlineService,
	content ports.ContentService,
	render ports.RenderService,
	version string,
) *Server {
	s := &Server{
		outlines: outlines,
		content:  content,
		render:   render,
		mcp: server.NewMCPServer(
			"drafter",
			version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
	}
	s.registerTools()
	return s
}

// ServeStdio blocks serving the MCP session on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("list_outlines",
		mcp.WithDescription("List all document outlines."),
	), s.listOutlines)

	s.mcp.AddTool(mcp.NewTool("get_outline",
		mcp.WithDescription("Fetch one outline with its nodes and numbered table of contents."),
		mcp.WithString("outline_id", mcp.Required(), mcp.Description("Outline identifier.")),
	), s.getOutline)

	s.mcp.AddTool(mcp.NewTool("create_outline",
		mcp.WithDescription("Create an empty outline."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Outline name.")),
	), s.createOutline)

	s.mcp.AddTool(mcp.NewTool("add_node",
		mcp.WithDescription("Add a section to an outline, optionally under a parent node."),
		mcp.WithString("outline_id", mcp.Required(), mcp.Description("Outline identifier.")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Section title.")),
		mcp.WithString("parent_id", mcp.Description("Parent node id; empty for a top-level section.")),
	), s.addNode)

	s.mcp.AddTool(mcp.NewTool("generate_section",
		mcp.WithDescription("Generate content for one outline section."),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Node identifier.")),
		mcp.WithString("requirements", mcp.Description("Free-form requirements passed to the generator.")),
	), s.generateSection)

	s.mcp.AddTool(mcp.NewTool("render_outline",
		mcp.WithDescription("Render an outline as a flattened HTML document."),
		mcp.WithString("outline_id", mcp.Required(), mcp.Description("Outline identifier.")),
	), s.renderOutline)
}

func (s *Server) listOutlines(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	outlines, err := s.outlines.ListOutlines(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(outlines)
}

func (s *Server) getOutline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	outlineID, err := req.RequireString("outline_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	detail, err := s.outlines.GetDetail(ctx, outlineID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(detail)
}

func (s *Server) createOutline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	outline, err := s.outlines.CreateOutline(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(outline)
}

func (s *Server) addNode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	outlineID, err := req.RequireString("outline_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	node, err := s.outlines.AddNode(ctx, outlineID, req.GetString("parent_id", ""), title)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(node)
}

func (s *Server) generateSection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nodeID, err := req.RequireString("node_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entry, err := s.content.GenerateNode(ctx, nodeID, req.GetString("requirements", ""), nil)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(entry)
}

func (s *Server) renderOutline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	outlineID, err := req.RequireString("outline_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.render.Render(ctx, outlineID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(doc)
}

func jsonResult(payload any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
