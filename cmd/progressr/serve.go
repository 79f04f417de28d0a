package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mark3labs/progressr/internal/api"
	"github.com/mark3labs/progressr/internal/config"
	"github.com/mark3labs/progressr/internal/logger"
	"github.com/mark3labs/progressr/internal/mcpserver"
	"github.com/mark3labs/progressr/internal/nats"
	"github.com/mark3labs/progressr/internal/progress"
	"github.com/mark3labs/progressr/internal/queue"
	"github.com/mark3labs/progressr/internal/supervisor"
	natsgo "github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveFlags struct {
	port          int
	startNotifier bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the API, dashboard and notifier controls",
	Long: `Serve the CRUD API, the dashboard, the MCP tool endpoint and the notifier
control endpoints. Every mutation raises the update flag and wakes the
notifier over the embedded NATS server.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&serveFlags.port, "port", 0, "Listen port (default: from config or PORT)")
	serveCmd.Flags().BoolVar(&serveFlags.startNotifier, "start-notifier", false, "Start the notifier immediately")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveFlags.port != 0 {
		cfg.Port = serveFlags.port
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if serveFlags.startNotifier {
		cfg.StartNotifier = true
	}
	if cfg.APISecretKey == "" {
		logger.Warn("No API secret configured; every authenticated request will be rejected")
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	store := progress.NewStore(cfg.DataDir)
	if seeded, err := store.Seed(cfg.SeedFile); err != nil {
		logger.Error("Seeding failed: %v", err)
	} else if seeded {
		logger.Info("Seeded %s from %s", store.Path(), cfg.SeedFile)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	natsDir := filepath.Join(cfg.DataDir, "nats")
	ns, port, err := nats.StartEmbeddedNATS(natsDir)
	if err != nil {
		return fmt.Errorf("starting NATS: %w", err)
	}
	nc, err := nats.ConnectInProcess(ns)
	if err != nil {
		ns.Shutdown()
		_ = nats.RemovePort(natsDir)
		return fmt.Errorf("connecting to NATS: %w", err)
	}
	defer func() {
		if err := nats.Shutdown(nc, ns); err != nil {
			logger.Warn("NATS shutdown: %v", err)
		}
		_ = nats.RemovePort(natsDir)
	}()
	logger.Debug("Embedded NATS listening on port %d", port)

	q := queue.New(cfg.DataDir).WithPublisher(nc, nats.SubjectUpdate)
	service := progress.NewService(store, q)

	sup, err := newSupervisor(cfg, nc)
	if err != nil {
		return err
	}
	defer func() {
		if result, err := sup.Stop(); err != nil {
			logger.Warn("Stopping notifier: %v", err)
		} else {
			logger.Debug("Notifier %s", result)
		}
	}()
	if cfg.StartNotifier {
		result, err := sup.Start()
		if err != nil {
			logger.Error("Starting notifier: %v", err)
		} else {
			logger.Info("Notifier %s", result)
		}
	}

	mcp := mcpserver.New(service, version).Handler()
	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: api.New(service, sup, mcp, api.Options{
			APIKey:             cfg.APISecretKey,
			ControlRequiresKey: cfg.ControlRequiresKey,
		}).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown: %v", err)
	}
	return nil
}

// newSupervisor builds the notifier supervisor for the configured mode.
func newSupervisor(cfg *config.Config, nc *natsgo.Conn) (*supervisor.Supervisor, error) {
	var unit supervisor.Unit
	switch cfg.NotifierMode {
	case config.NotifierModeInProcess:
		unit = supervisor.NewFuncUnit(func(ctx context.Context) error {
			return runNotifier(ctx, cfg, nc)
		})
	default:
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("locating executable: %w", err)
		}
		unit = supervisor.NewProcessUnit(exe, []string{"notifier", "--data-dir", cfg.DataDir, "--log-level", cfg.LogLevel})
	}
	return supervisor.New(unit, cfg.RestartDelay), nil
}
