// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the bookshelf for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/berkana/internal/card"
	"github.com/starford/berkana/internal/shelf"
)

// Server wraps the MCP server with shelf tools.
type Server struct {
	mcp      *server.MCPServer
	shelf    *shelf.Shelf
	renderer *card.Renderer
}

// New creates a new MCP server with all shelf tools registered.
func New(sh *shelf.Shelf, renderer *card.Renderer) *Server {
	s := &Server{shelf: sh, renderer: renderer}

	s.mcp = server.NewMCPServer(
		"Berkana",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_books",
		mcp.WithDescription("List the IDs and titles of every cached book record."),
	), s.listBooks)

	s.mcp.AddTool(mcp.NewTool("get_book",
		mcp.WithDescription("Read the full cached record of one book."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Shelf ID, e.g. douban1449351")),
	), s.getBook)

	s.mcp.AddTool(mcp.NewTool("render_card",
		mcp.WithDescription("Render the HTML card fragment for one cached book, "+
			"using the configured field order."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Shelf ID, e.g. douban1449351")),
	), s.renderCard)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listBooks(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	books := s.shelf.Books()
	if len(books) == 0 {
		return mcp.NewToolResultText("shelf is empty"), nil
	}
	var lines []string
	for _, b := range books {
		lines = append(lines, fmt.Sprintf("%s\t%s", b.ID, b.DisplayTitle()))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getBook(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	b, err := s.shelf.Find(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(b, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) renderCard(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	b, err := s.shelf.Find(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	fragment, err := s.renderer.Render(b)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fragment), nil
}
