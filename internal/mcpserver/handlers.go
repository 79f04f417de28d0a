package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// stringArg extracts a required string argument.
func stringArg(args map[string]any, key string) (string, error) {
	raw, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing '%s' parameter", key)
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("'%s' must be a string", key)
	}
	return value, nil
}

// requireArgs extracts several required string arguments in order.
func requireArgs(request mcp.CallToolRequest, keys ...string) ([]string, *mcp.CallToolResult) {
	args := request.GetArguments()
	if args == nil {
		return nil, mcp.NewToolResultText("error: no arguments provided")
	}
	values := make([]string, 0, len(keys))
	for _, key := range keys {
		v, err := stringArg(args, key)
		if err != nil {
			return nil, mcp.NewToolResultText("error: " + err.Error())
		}
		values = append(values, v)
	}
	return values, nil
}

func errorResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultText("error: " + err.Error())
}

// handleProgressList returns the summary as JSON.
func (s *Server) handleProgressList(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summary, err := s.service.Summarize(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleTaskCreate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, res := requireArgs(request, "name")
	if res != nil {
		return res, nil
	}
	name, err := s.service.CreateTask(ctx, args[0])
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Task '%s' created", name)), nil
}

func (s *Server) handleTaskActivate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, res := requireArgs(request, "task")
	if res != nil {
		return res, nil
	}
	active, err := s.service.ToggleTaskActive(ctx, args[0])
	if err != nil {
		return errorResult(err), nil
	}
	state := "inactive"
	if active {
		state = "active"
	}
	return mcp.NewToolResultText(fmt.Sprintf("Task '%s' is now %s", args[0], state)), nil
}

func (s *Server) handleCategoryCreate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, res := requireArgs(request, "task", "name")
	if res != nil {
		return res, nil
	}
	name, err := s.service.CreateCategory(ctx, args[0], args[1])
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Category '%s' added", name)), nil
}

func (s *Server) handleSubtaskAdd(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, res := requireArgs(request, "task", "category", "name")
	if res != nil {
		return res, nil
	}
	name, err := s.service.CreateSubtask(ctx, args[0], args[1], args[2])
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Subtask '%s' added", name)), nil
}

func (s *Server) handleSubtaskToggle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, res := requireArgs(request, "task", "category", "subtask")
	if res != nil {
		return res, nil
	}
	done, err := s.service.ToggleSubtask(ctx, args[0], args[1], args[2])
	if err != nil {
		return errorResult(err), nil
	}
	state := "not done"
	if done {
		state = "done"
	}
	return mcp.NewToolResultText(fmt.Sprintf("Subtask '%s' is now %s", args[2], state)), nil
}

func (s *Server) handleNoteSet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, res := requireArgs(request, "task", "category")
	if res != nil {
		return res, nil
	}

	note := ""
	if raw, ok := request.GetArguments()["note"]; ok {
		text, ok := raw.(string)
		if !ok {
			return mcp.NewToolResultText("error: 'note' must be a string"), nil
		}
		note = text
	}

	if note == "" {
		if err := s.service.ClearNote(ctx, args[0], args[1]); err != nil {
			return errorResult(err), nil
		}
		return mcp.NewToolResultText("Note cleared"), nil
	}
	if err := s.service.SetNote(ctx, args[0], args[1], note); err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText("Note saved"), nil
}
