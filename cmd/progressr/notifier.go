package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mark3labs/progressr/internal/chat"
	"github.com/mark3labs/progressr/internal/config"
	"github.com/mark3labs/progressr/internal/logger"
	"github.com/mark3labs/progressr/internal/nats"
	"github.com/mark3labs/progressr/internal/notifier"
	"github.com/mark3labs/progressr/internal/progress"
	"github.com/mark3labs/progressr/internal/queue"
	natsgo "github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
)

var notifierCmd = &cobra.Command{
	Use:   "notifier",
	Short: "Run the Discord notifier in the foreground",
	Long: `Run the notifier loop: render the progress report once, then re-render it
whenever the update flag is raised. serve spawns this command when the
notifier is started through the control endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runNotifier(ctx, cfg, nil)
	},
}

// runNotifier runs the notifier until ctx is cancelled. When nc is nil the notifier
// looks for a running serve's NATS server and falls back to watching the flag file.
func runNotifier(ctx context.Context, cfg *config.Config, nc *natsgo.Conn) error {
	if cfg.BotToken == "" {
		return errors.New("bot token is required (set bot_token or BOT_TOKEN)")
	}

	var ch chat.Channel
	if cfg.ChannelID == "" {
		logger.Warn("No channel id configured; renders will be skipped")
	} else {
		discord, err := chat.NewDiscord(cfg.BotToken, cfg.ChannelID, cfg.ExternalTimeout)
		if err != nil {
			return err
		}
		ch = discord
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	q := queue.New(cfg.DataDir)
	n := notifier.New(progress.NewStore(cfg.DataDir), q, ch, notifier.Options{
		DataDir:      cfg.DataDir,
		PollInterval: cfg.PollInterval,
	})

	if nc == nil {
		if conn := dialServe(cfg.DataDir); conn != nil {
			defer conn.Close()
			nc = conn
		}
	}

	if nc != nil {
		sub, err := nats.WakeOn(nc, nats.SubjectUpdate, n.Wake())
		if err != nil {
			return err
		}
		defer func() { _ = sub.Unsubscribe() }()
		logger.Debug("Notifier subscribed to %s", nats.SubjectUpdate)
	} else {
		watcher, err := notifier.NewQueueWatcher(q.Path(), n.Wake())
		if err != nil {
			logger.Warn("Flag watcher unavailable, polling only: %v", err)
		} else {
			watcher.Start()
			defer func() { _ = watcher.Stop() }()
		}
	}

	return n.Run(ctx)
}

// dialServe connects to the NATS server of a running serve, or returns nil.
func dialServe(dataDir string) *natsgo.Conn {
	port, err := nats.ReadPort(filepath.Join(dataDir, "nats"))
	if err != nil {
		logger.Debug("No running serve found: %v", err)
		return nil
	}
	nc, err := nats.ConnectToPort(port)
	if err != nil {
		logger.Debug("Could not reach serve NATS on port %d: %v", port, err)
		return nil
	}
	return nc
}
