package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/x/editor"
	"github.com/mark3labs/progressr/internal/nats"
	"github.com/mark3labs/progressr/internal/progress"
	"github.com/mark3labs/progressr/internal/queue"
	"github.com/spf13/cobra"
)

var toolCmd = &cobra.Command{
	Use:   "tool",
	Short: "Edit progress data from the command line",
	Long: `Run the same operations as the HTTP API directly against the data directory.
Each mutation raises the update flag; when serve is running its notifier is
woken over NATS.`,
}

func init() {
	toolCmd.AddCommand(
		progressListCmd,
		taskCreateCmd,
		taskRenameCmd,
		taskActivateCmd,
		taskDeleteCmd,
		categoryCreateCmd,
		categoryRenameCmd,
		categoryDeleteCmd,
		noteSetCmd,
		noteClearCmd,
		noteEditCmd,
		subtaskAddCmd,
		subtaskToggleCmd,
		subtaskDeleteCmd,
	)
}

// openService builds a progress service over the data directory. The cleanup
// function closes the NATS connection when one was made.
func openService() (*progress.Service, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	q := queue.New(cfg.DataDir)
	cleanup := func() {}
	if nc := dialServe(cfg.DataDir); nc != nil {
		q.WithPublisher(nc, nats.SubjectUpdate)
		cleanup = nc.Close
	}
	return progress.NewService(progress.NewStore(cfg.DataDir), q), cleanup, nil
}

// withService runs fn against an opened service and prints its result as JSON.
func withService(fn func(ctx context.Context, svc *progress.Service) (any, error)) error {
	svc, cleanup, err := openService()
	if err != nil {
		return err
	}
	defer cleanup()

	out, err := fn(context.Background(), svc)
	if err != nil {
		return err
	}
	return printJSON(out)
}

func printJSON(v any) error {
	output, err := json.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Println(string(output))
	return nil
}

func message(format string, args ...any) map[string]string {
	return map[string]string{"message": fmt.Sprintf(format, args...)}
}

var progressListCmd = &cobra.Command{
	Use:   "progress-list",
	Short: "Print the whole progress document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *progress.Service) (any, error) {
			return svc.List(ctx)
		})
	},
}

var taskCreateCmd = &cobra.Command{
	Use:   "task-create NAME",
	Short: "Create a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *progress.Service) (any, error) {
			name, err := svc.CreateTask(ctx, args[0])
			if err != nil {
				return nil, err
			}
			return message("Task '%s' created", name), nil
		})
	},
}

var taskRenameCmd = &cobra.Command{
	Use:   "task-rename OLD NEW",
	Short: "Rename a task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *progress.Service) (any, error) {
			name, err := svc.RenameTask(ctx, args[0], args[1])
			if err != nil {
				return nil, err
			}
			return message("Task renamed to '%s'", name), nil
		})
	},
}

var taskActivateCmd = &cobra.Command{
	Use:   "task-activate NAME",
	Short: "Toggle whether a task is shown in the report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *progress.Service) (any, error) {
			task := progress.Normalize(args[0])
			active, err := svc.ToggleTaskActive(ctx, task)
			if err != nil {
				return nil, err
			}
			return map[string]any{"task": task, "active": active}, nil
		})
	},
}

var taskDeleteCmd = &cobra.Command{
	Use:   "task-delete NAME",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *progress.Service) (any, error) {
			task := progress.Normalize(args[0])
			if err := svc.DeleteTask(ctx, task); err != nil {
				return nil, err
			}
			return message("Task '%s' deleted", task), nil
		})
	},
}

var categoryCreateCmd = &cobra.Command{
	Use:   "category-create TASK NAME",
	Short: "Add a category to a task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *progress.Service) (any, error) {
			name, err := svc.CreateCategory(ctx, args[0], args[1])
			if err != nil {
				return nil, err
			}
			return message("Category '%s' added", name), nil
		})
	},
}

var categoryRenameCmd = &cobra.Command{
	Use:   "category-rename TASK OLD NEW",
	Short: "Rename a category",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *progress.Service) (any, error) {
			name, err := svc.RenameCategory(ctx, args[0], args[1], args[2])
			if err != nil {
				return nil, err
			}
			return message("Category renamed to '%s'", name), nil
		})
	},
}

var categoryDeleteCmd = &cobra.Command{
	Use:   "category-delete TASK NAME",
	Short: "Delete a category",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *progress.Service) (any, error) {
			if err := svc.DeleteCategory(ctx, args[0], args[1]); err != nil {
				return nil, err
			}
			return message("Category deleted"), nil
		})
	},
}

var noteSetCmd = &cobra.Command{
	Use:   "note-set TASK CATEGORY NOTE",
	Short: "Set a category note",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *progress.Service) (any, error) {
			if err := svc.SetNote(ctx, args[0], args[1], args[2]); err != nil {
				return nil, err
			}
			return message("Note saved"), nil
		})
	},
}

var noteClearCmd = &cobra.Command{
	Use:   "note-clear TASK CATEGORY",
	Short: "Clear a category note",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *progress.Service) (any, error) {
			if err := svc.ClearNote(ctx, args[0], args[1]); err != nil {
				return nil, err
			}
			return message("Note deleted"), nil
		})
	},
}

var noteEditCmd = &cobra.Command{
	Use:   "note-edit TASK CATEGORY",
	Short: "Edit a category note in $EDITOR",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *progress.Service) (any, error) {
			current, err := svc.Note(ctx, args[0], args[1])
			if err != nil {
				return nil, err
			}
			edited, err := editText(current)
			if err != nil {
				return nil, err
			}
			if edited == current {
				return message("Note unchanged"), nil
			}
			if err := svc.SetNote(ctx, args[0], args[1], edited); err != nil {
				return nil, err
			}
			return message("Note saved"), nil
		})
	},
}

// editText opens text in the user's editor and returns the saved result without
// the trailing newline most editors add.
func editText(text string) (string, error) {
	tmpfile, err := os.CreateTemp("", "progressr-note-*.md")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmpfile.Name())

	if _, err := tmpfile.WriteString(text); err != nil {
		tmpfile.Close()
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmpfile.Close(); err != nil {
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	cmd, err := editor.Command("progressr", tmpfile.Name())
	if err != nil {
		return "", fmt.Errorf("preparing editor: %w", err)
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("running editor: %w", err)
	}

	data, err := os.ReadFile(tmpfile.Name())
	if err != nil {
		return "", fmt.Errorf("reading edited note: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

var subtaskAddCmd = &cobra.Command{
	Use:   "subtask-add TASK CATEGORY NAME",
	Short: "Add a subtask",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *progress.Service) (any, error) {
			name, err := svc.CreateSubtask(ctx, args[0], args[1], args[2])
			if err != nil {
				return nil, err
			}
			return message("Subtask '%s' added", name), nil
		})
	},
}

var subtaskToggleCmd = &cobra.Command{
	Use:   "subtask-toggle TASK CATEGORY NAME",
	Short: "Flip a subtask's completion",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *progress.Service) (any, error) {
			done, err := svc.ToggleSubtask(ctx, args[0], args[1], args[2])
			if err != nil {
				return nil, err
			}
			return map[string]any{"subtask": args[2], "done": done}, nil
		})
	},
}

var subtaskDeleteCmd = &cobra.Command{
	Use:   "subtask-delete TASK CATEGORY NAME",
	Short: "Delete a subtask",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *progress.Service) (any, error) {
			if err := svc.DeleteSubtask(ctx, args[0], args[1], args[2]); err != nil {
				return nil, err
			}
			return message("Subtask deleted"), nil
		})
	},
}
