// Package supervisor starts, stops and reports on the notifier.
package supervisor

import (
	"context"
	"sync"
	"time"

	"github.com/mark3labs/progressr/internal/logger"
)

// Results reported by the supervisor.
const (
	Started        = "started"
	AlreadyRunning = "already running"
	Stopped        = "stopped"
	AlreadyStopped = "already stopped"
	Running        = "running"
)

// DefaultSettleDelay separates the stop and start halves of a restart.
const DefaultSettleDelay = 2 * time.Second

// Unit is one supervised notifier instance.
type Unit interface {
	// Start launches the unit and returns once it is running.
	Start() error
	// Stop terminates the unit and waits for it to exit.
	Stop() error
	// Alive reports whether the unit is still running. A unit that exited on its own
	// is not alive.
	Alive() bool
}

// Supervisor owns a single Unit. Its operations are serialized.
type Supervisor struct {
	mu     sync.Mutex
	unit   Unit
	settle time.Duration
	sleep  func(context.Context, time.Duration) error
}

// New creates a supervisor for unit. A non-positive settle uses DefaultSettleDelay.
func New(unit Unit, settle time.Duration) *Supervisor {
	if settle <= 0 {
		settle = DefaultSettleDelay
	}
	return &Supervisor{unit: unit, settle: settle, sleep: sleepCtx}
}

// Start launches the unit unless it is already alive.
func (s *Supervisor) Start() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.start()
}

// Stop terminates the unit if it is alive.
func (s *Supervisor) Stop() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop()
}

// Status reports Running or Stopped.
func (s *Supervisor) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unit.Alive() {
		return Running
	}
	return Stopped
}

// Restart stops the unit if alive, waits the settle delay and starts it again.
func (s *Supervisor) Restart(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.stop(); err != nil {
		return "", err
	}
	if err := s.sleep(ctx, s.settle); err != nil {
		return "", err
	}
	return s.start()
}

func (s *Supervisor) start() (string, error) {
	if s.unit.Alive() {
		return AlreadyRunning, nil
	}
	if err := s.unit.Start(); err != nil {
		logger.Error("Failed to start notifier: %v", err)
		return "", err
	}
	logger.Info("Notifier started")
	return Started, nil
}

func (s *Supervisor) stop() (string, error) {
	if !s.unit.Alive() {
		return AlreadyStopped, nil
	}
	if err := s.unit.Stop(); err != nil {
		logger.Error("Failed to stop notifier: %v", err)
		return "", err
	}
	logger.Info("Notifier stopped")
	return Stopped, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
