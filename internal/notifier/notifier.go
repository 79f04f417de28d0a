// Package notifier keeps one message in the progress channel in sync with the store.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aymanbagabas/go-udiff"
	"github.com/mark3labs/progressr/internal/chat"
	"github.com/mark3labs/progressr/internal/logger"
	"github.com/mark3labs/progressr/internal/progress"
	"github.com/mark3labs/progressr/internal/queue"
	"github.com/mark3labs/progressr/internal/report"
	"github.com/rs/xid"
)

// DefaultPollInterval is how often the update flag is checked without a wake-up.
const DefaultPollInterval = 5 * time.Second

// Options configures a Notifier.
type Options struct {
	DataDir      string
	PollInterval time.Duration
}

// Notifier renders the progress report into the channel whenever the update flag
// is raised. It is idle between renders and never renders concurrently.
type Notifier struct {
	store    *progress.Store
	queue    *queue.Queue
	channel  chat.Channel
	dataDir  string
	interval time.Duration
	wake     chan struct{}

	mu   sync.Mutex
	last string
}

// New creates a notifier. A nil channel means no channel is configured and every
// render is skipped with a warning.
func New(store *progress.Store, q *queue.Queue, ch chat.Channel, opts Options) *Notifier {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Notifier{
		store:    store,
		queue:    q,
		channel:  ch,
		dataDir:  opts.DataDir,
		interval: interval,
		wake:     make(chan struct{}, 1),
	}
}

// Wake returns the channel that triggers an early tick. Sends should not block.
func (n *Notifier) Wake() chan<- struct{} {
	return n.wake
}

// Run renders once unconditionally, then ticks on every interval and wake-up until
// ctx is cancelled. A failed render or tick never stops the loop.
func (n *Notifier) Run(ctx context.Context) error {
	logger.Info("Notifier started (poll every %s)", n.interval)

	if err := n.Render(ctx); err != nil {
		logger.Warn("Initial render failed: %v", err)
	}

	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Notifier stopped")
			return nil
		case <-ticker.C:
		case <-n.wake:
			logger.Debug("Notifier woken early")
		}
		if _, err := n.Tick(ctx); err != nil {
			logger.Warn("Notifier tick failed: %v", err)
		}
	}
}

// Tick renders when the update flag is raised and drains the flag afterwards,
// whatever the render outcome. It reports whether a render was attempted.
func (n *Notifier) Tick(ctx context.Context) (bool, error) {
	pending, err := n.queue.Pending()
	if err != nil {
		logger.Warn("Treating unreadable update flag as clear: %v", err)
		if err := n.queue.Drain(); err != nil {
			return false, err
		}
		return false, nil
	}
	if !pending {
		return false, nil
	}

	logger.Info("Update flag found, refreshing progress message")
	if err := n.Render(ctx); err != nil {
		logger.Warn("Render failed: %v", err)
	}
	if err := n.queue.Drain(); err != nil {
		return true, err
	}
	logger.Debug("Update flag drained")
	return true, nil
}

// Render builds the report from the current store and publishes it. Channel failures
// are logged and swallowed; only a store read failure is returned.
func (n *Notifier) Render(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	rid := xid.New().String()

	if n.channel == nil {
		logger.Warn("[%s] No progress channel configured, skipping render", rid)
		return nil
	}

	doc, err := n.store.Load()
	if err != nil {
		if !errors.Is(err, progress.ErrCorrupt) {
			return err
		}
		logger.Warn("[%s] Rendering from an empty document: %v", rid, err)
	}

	r := report.Build(doc)
	n.logDiff(rid, r.Description)

	embed := chat.Embed{Title: r.Title, Description: r.Description, Color: r.Color}
	if err := n.publish(ctx, rid, embed); err != nil {
		if errors.Is(err, chat.ErrForbidden) {
			logger.Error("[%s] Bot lacks permission to post in the progress channel: %v", rid, err)
		} else {
			logger.Error("[%s] Publishing progress failed: %v", rid, err)
		}
		return nil
	}

	n.last = r.Description
	logger.Info("[%s] Progress message updated (%d active, %d%%)", rid, r.ActiveTasks, r.Aggregate)
	return nil
}

// publish edits the referenced message, or sends a new one and remembers it when
// there is no usable reference. A fetch that gets no answer from the platform skips
// the render so the existing message is not orphaned.
func (n *Notifier) publish(ctx context.Context, rid string, embed chat.Embed) error {
	ref, err := LoadRef(n.dataDir)
	if err != nil {
		logger.Warn("[%s] Ignoring unreadable message reference: %v", rid, err)
		ref = ""
	}

	if ref != "" {
		if err := n.channel.Fetch(ctx, ref); err != nil {
			if !chat.Answered(err) {
				return fmt.Errorf("fetching message %s: %w", ref, err)
			}
			logger.Info("[%s] Message %s unavailable, sending a new one: %v", rid, ref, err)
			ref = ""
		}
	}

	if ref != "" {
		return n.channel.Edit(ctx, ref, embed)
	}

	id, err := n.channel.Send(ctx, embed)
	if err != nil {
		return err
	}
	if err := SaveRef(n.dataDir, id); err != nil {
		return err
	}
	logger.Info("[%s] Sent new progress message %s", rid, id)
	return nil
}

func (n *Notifier) logDiff(rid, description string) {
	if !logger.Enabled(logger.LevelDebug) || n.last == "" {
		return
	}
	if n.last == description {
		logger.Debug("[%s] Report unchanged", rid)
		return
	}
	logger.Debug("[%s] Report changes:\n%s", rid, udiff.Unified("previous", "current", n.last, description))
}
