package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/mark3labs/progressr/internal/config"
	"github.com/mark3labs/progressr/internal/logger"
	"github.com/spf13/cobra"
)

// Version set via ldflags during build
var version = "dev"

var rootFlags struct {
	dataDir  string
	logLevel string
}

func main() {
	// Ensure logger is closed on exit
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "progressr",
	Short: "Multi-project progress tracker with a Discord status board",
	Long: `progressr tracks progress across projects (tasks, categories and subtasks),
serves a CRUD API and dashboard to edit it, and keeps one Discord message
up to date with the aggregate progress of every active project.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlags.dataDir, "data-dir", "", "Data directory (default: from config or PROGRESSR_DATA_DIR)")
	rootCmd.PersistentFlags().StringVar(&rootFlags.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(notifierCmd)
	rootCmd.AddCommand(toolCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(setupCmd)
}

// loadConfig loads the layered config, applies root flags and configures the logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if rootFlags.dataDir != "" {
		cfg.DataDir = rootFlags.dataDir
	}
	if rootFlags.logLevel != "" {
		cfg.LogLevel = rootFlags.logLevel
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, fmt.Errorf("configuring logger: %w", err)
	}
	return cfg, nil
}
