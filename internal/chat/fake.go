package chat

import (
	"context"
	"fmt"
	"sync"
)

// Call records one request made against a Fake.
type Call struct {
	Op        string
	MessageID string
	Embed     Embed
}

// Fake is an in-memory Channel for tests and dry runs.
type Fake struct {
	mu       sync.Mutex
	messages map[string]Embed
	calls    []Call
	nextID   int

	// FetchErr, SendErr and EditErr are returned by the matching call when set.
	FetchErr error
	SendErr  error
	EditErr  error
}

// NewFake returns an empty fake channel.
func NewFake() *Fake {
	return &Fake{messages: make(map[string]Embed), nextID: 1000}
}

// Fetch implements Channel.
func (f *Fake) Fetch(_ context.Context, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: "fetch", MessageID: messageID})
	if f.FetchErr != nil {
		return f.FetchErr
	}
	if _, ok := f.messages[messageID]; !ok {
		return ErrNotFound
	}
	return nil
}

// Send implements Channel.
func (f *Fake) Send(_ context.Context, embed Embed) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SendErr != nil {
		f.calls = append(f.calls, Call{Op: "send", Embed: embed})
		return "", f.SendErr
	}
	f.nextID++
	id := fmt.Sprintf("%d", f.nextID)
	f.messages[id] = embed
	f.calls = append(f.calls, Call{Op: "send", MessageID: id, Embed: embed})
	return id, nil
}

// Edit implements Channel.
func (f *Fake) Edit(_ context.Context, messageID string, embed Embed) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: "edit", MessageID: messageID, Embed: embed})
	if f.EditErr != nil {
		return f.EditErr
	}
	if _, ok := f.messages[messageID]; !ok {
		return ErrNotFound
	}
	f.messages[messageID] = embed
	return nil
}

// Put stores a message as if it had been sent earlier.
func (f *Fake) Put(messageID string, embed Embed) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages[messageID] = embed
}

// Delete removes a message as if a moderator had deleted it.
func (f *Fake) Delete(messageID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.messages, messageID)
}

// Message returns a stored message.
func (f *Fake) Message(messageID string) (Embed, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.messages[messageID]
	return e, ok
}

// Calls returns a copy of the recorded calls.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Reset clears the recorded calls.
func (f *Fake) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}
