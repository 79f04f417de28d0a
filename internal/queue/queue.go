// Package queue manages the update flag file that tells the notifier a render is due.
package queue

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/progressr/internal/logger"
	"github.com/mark3labs/progressr/internal/progress"
)

// FileName is the flag file's name inside the data directory.
const FileName = "update_queue.json"

// Flag is the persisted queue state. A drained queue is stored as {}.
type Flag struct {
	UpdateNeeded bool    `json:"update_needed,omitempty"`
	Timestamp    float64 `json:"timestamp,omitempty"`
}

// Publisher announces a raised flag to anyone listening. *nats.Conn satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Queue is the single-slot update flag. Signals raised before a drain collapse into one.
type Queue struct {
	path      string
	publisher Publisher
	subject   string
	now       func() time.Time
}

// New creates a queue for the flag file in dataDir.
func New(dataDir string) *Queue {
	return &Queue{
		path: filepath.Join(dataDir, FileName),
		now:  time.Now,
	}
}

// WithPublisher makes Signal also publish an empty message on subject.
func (q *Queue) WithPublisher(p Publisher, subject string) *Queue {
	q.publisher = p
	q.subject = subject
	return q
}

// Path returns the flag file path.
func (q *Queue) Path() string {
	return q.path
}

// Signal raises the flag. The file write is what matters; a failed publish is logged.
func (q *Queue) Signal() error {
	now := q.now()
	flag := Flag{
		UpdateNeeded: true,
		Timestamp:    float64(now.UnixNano()) / float64(time.Second),
	}
	if err := progress.WriteJSON(q.path, flag); err != nil {
		return fmt.Errorf("raising update flag: %w", err)
	}
	logger.Debug("Update flag raised at %.3f", flag.Timestamp)

	if q.publisher != nil {
		if err := q.publisher.Publish(q.subject, nil); err != nil {
			logger.Warn("Failed to publish update wake-up: %v", err)
		}
	}
	return nil
}

// Pending reports whether the flag is raised. A missing or empty file is not pending;
// a malformed one is not pending and returns an error.
func (q *Queue) Pending() (bool, error) {
	flag, err := q.Read()
	if err != nil {
		return false, err
	}
	return flag.UpdateNeeded, nil
}

// Read returns the raw flag.
func (q *Queue) Read() (Flag, error) {
	data, err := os.ReadFile(q.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Flag{}, nil
		}
		return Flag{}, fmt.Errorf("reading update flag: %w", err)
	}
	if len(data) == 0 {
		return Flag{}, nil
	}

	var flag Flag
	if err := json.Unmarshal(data, &flag); err != nil {
		return Flag{}, fmt.Errorf("parsing update flag %s: %w", q.path, err)
	}
	return flag, nil
}

// Drain clears the flag by writing {}.
func (q *Queue) Drain() error {
	if err := progress.WriteJSON(q.path, struct{}{}); err != nil {
		return fmt.Errorf("draining update flag: %w", err)
	}
	return nil
}
