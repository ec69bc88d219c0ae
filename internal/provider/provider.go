// Package provider implements the streaming reply clients for the supported
// AI backends and the registry that routes model names to them.
package provider

import (
	"context"
	"time"
)

// defaultTimeout bounds every provider HTTP call. There is no orchestrator
// timeout on top of it; a hung stream fails here.
const defaultTimeout = 60 * time.Second

// Role tags one turn of conversation history.
type Role string

// Role constants.
const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one role-tagged entry of conversation history.
type Turn struct {
	Role Role
	Text string
}

// Request describes one streaming reply call.
type Request struct {
	// Model is the vendor model name, e.g. "gemini-2.0-flash" or "gpt-4o".
	Model string
	// History is the conversation before this turn, in ascending order.
	// It must not include the prompt being submitted.
	History []Turn
	// Prompt is the new user prompt.
	Prompt string
	// Instructions is the optional system directive. Empty means none is
	// sent.
	Instructions string
}

// Stream is a finite, non-restartable sequence of text fragments.
//
// Every fragment is a delta: the text produced since the previous fragment.
// Recv returns io.EOF when the reply is complete and a non-EOF error when
// the stream fails; a failing stream never ends silently.
type Stream interface {
	Recv() (string, error)
	Close() error
}

// Client streams an assistant reply given history, a prompt, and optional
// system instructions. Clients do not retry; retry policy belongs to the
// caller.
type Client interface {
	// Name identifies the backing vendor, e.g. "gemini" or "openai".
	Name() string

	// StreamReply opens the reply stream for the request.
	StreamReply(ctx context.Context, req Request) (Stream, error)
}
