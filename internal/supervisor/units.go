package supervisor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/mark3labs/progressr/internal/logger"
)

// DefaultGrace is how long a child gets to exit after SIGTERM before it is killed.
const DefaultGrace = 5 * time.Second

// ProcessUnit runs the notifier as a child process.
type ProcessUnit struct {
	Path  string
	Args  []string
	Env   []string
	Grace time.Duration

	mu   sync.Mutex
	cmd  *exec.Cmd
	done chan struct{}
}

// NewProcessUnit creates a unit that runs path with args and the current environment
// plus env.
func NewProcessUnit(path string, args []string, env ...string) *ProcessUnit {
	return &ProcessUnit{
		Path:  path,
		Args:  args,
		Env:   env,
		Grace: DefaultGrace,
	}
}

// Start implements Unit.
func (p *ProcessUnit) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	cmd := exec.Command(p.Path, p.Args...)
	cmd.Env = append(os.Environ(), p.Env...)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr

	logger.Debug("Starting notifier process: %s %v", p.Path, p.Args)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start notifier process: %w", err)
	}

	done := make(chan struct{})
	go func() {
		err := cmd.Wait()
		if err != nil {
			logger.Warn("Notifier process %d exited: %v", cmd.Process.Pid, err)
		} else {
			logger.Debug("Notifier process %d exited", cmd.Process.Pid)
		}
		close(done)
	}()

	p.cmd = cmd
	p.done = done
	return nil
}

// Stop implements Unit.
func (p *ProcessUnit) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd == nil || !isOpen(p.done) {
		return nil
	}

	if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil && !errors.Is(err, os.ErrProcessDone) {
		logger.Warn("SIGTERM failed, killing notifier process: %v", err)
		_ = p.cmd.Process.Kill()
	}

	grace := p.Grace
	if grace <= 0 {
		grace = DefaultGrace
	}
	select {
	case <-p.done:
	case <-time.After(grace):
		logger.Warn("Notifier process ignored SIGTERM for %s, killing", grace)
		if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			return fmt.Errorf("failed to kill notifier process: %w", err)
		}
		<-p.done
	}
	return nil
}

// Alive implements Unit.
func (p *ProcessUnit) Alive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cmd != nil && isOpen(p.done)
}

// FuncUnit runs the notifier loop in this process.
type FuncUnit struct {
	run func(ctx context.Context) error

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewFuncUnit creates a unit that calls run under a context cancelled by Stop.
func NewFuncUnit(run func(ctx context.Context) error) *FuncUnit {
	return &FuncUnit{run: run}
}

// Start implements Unit.
func (f *FuncUnit) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := f.run(ctx); err != nil {
			logger.Error("Notifier loop exited: %v", err)
		}
	}()

	f.cancel = cancel
	f.done = done
	return nil
}

// Stop implements Unit.
func (f *FuncUnit) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cancel == nil {
		return nil
	}
	f.cancel()
	<-f.done
	f.cancel = nil
	return nil
}

// Alive implements Unit.
func (f *FuncUnit) Alive() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.done != nil && isOpen(f.done)
}

func isOpen(ch chan struct{}) bool {
	if ch == nil {
		return false
	}
	select {
	case <-ch:
		return false
	default:
		return true
	}
}
