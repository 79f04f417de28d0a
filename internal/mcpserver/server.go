// Package mcpserver exposes the progress operations as MCP tools over streamable HTTP.
package mcpserver

import (
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mark3labs/progressr/internal/progress"
)

// Server holds the MCP tool registry backed by a progress service.
// Tools go through the same service as the HTTP API, so they signal updates the same way.
type Server struct {
	service   *progress.Service
	mcpServer *server.MCPServer
}

// New creates an MCP server with every progress tool registered.
func New(service *progress.Service, version string) *Server {
	s := &Server{
		service: service,
		mcpServer: server.NewMCPServer(
			"progressr-tools",
			version,
			server.WithToolCapabilities(true),
		),
	}
	s.registerTools()
	return s
}

// Handler returns a stateless streamable HTTP handler for the tools.
func (s *Server) Handler() http.Handler {
	return server.NewStreamableHTTPServer(
		s.mcpServer,
		server.WithStateLess(true),
	)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("progress-list",
			mcp.WithDescription("List every task with its categories and completion percentages"),
		),
		s.handleProgressList,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("task-create",
			mcp.WithDescription("Create a new inactive task"),
			mcp.WithString("name", mcp.Required(), mcp.Description("Task name")),
		),
		s.handleTaskCreate,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("task-activate",
			mcp.WithDescription("Toggle whether a task appears in the published progress report"),
			mcp.WithString("task", mcp.Required(), mcp.Description("Task name")),
		),
		s.handleTaskActivate,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("category-create",
			mcp.WithDescription("Add a category to a task"),
			mcp.WithString("task", mcp.Required(), mcp.Description("Task name")),
			mcp.WithString("name", mcp.Required(), mcp.Description("Category name")),
		),
		s.handleCategoryCreate,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("subtask-add",
			mcp.WithDescription("Add an incomplete subtask to a category"),
			mcp.WithString("task", mcp.Required(), mcp.Description("Task name")),
			mcp.WithString("category", mcp.Required(), mcp.Description("Category name")),
			mcp.WithString("name", mcp.Required(), mcp.Description("Subtask name")),
		),
		s.handleSubtaskAdd,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("subtask-toggle",
			mcp.WithDescription("Flip a subtask between done and not done"),
			mcp.WithString("task", mcp.Required(), mcp.Description("Task name")),
			mcp.WithString("category", mcp.Required(), mcp.Description("Category name")),
			mcp.WithString("subtask", mcp.Required(), mcp.Description("Subtask name")),
		),
		s.handleSubtaskToggle,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("note-set",
			mcp.WithDescription("Set a category note; an empty note clears it"),
			mcp.WithString("task", mcp.Required(), mcp.Description("Task name")),
			mcp.WithString("category", mcp.Required(), mcp.Description("Category name")),
			mcp.WithString("note", mcp.Description("Note text")),
		),
		s.handleNoteSet,
	)
}
