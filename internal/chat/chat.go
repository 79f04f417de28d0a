// Package chat publishes the progress report to an external channel.
package chat

import (
	"context"
	"errors"
)

var (
	// ErrNotFound means the referenced message no longer exists.
	ErrNotFound = errors.New("message not found")

	// ErrForbidden means the bot may not read or write the channel.
	ErrForbidden = errors.New("missing channel permissions")

	// ErrRejected means the platform answered with any other error status.
	ErrRejected = errors.New("request rejected")
)

// Answered reports whether err is a status answer from the platform, as opposed to
// a transport failure or timeout where the outcome is unknown.
func Answered(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) || errors.Is(err, ErrRejected)
}

// Embed is the rich message the report is published as.
type Embed struct {
	Title       string
	Description string
	Color       int
}

// Channel is one external channel that holds the progress message.
type Channel interface {
	// Fetch checks that a previously sent message still exists.
	Fetch(ctx context.Context, messageID string) error
	// Send posts a new message and returns its id.
	Send(ctx context.Context, embed Embed) (string, error)
	// Edit replaces the contents of an existing message.
	Edit(ctx context.Context, messageID string, embed Embed) error
}
