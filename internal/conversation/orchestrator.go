// Package conversation orchestrates chat turns: it persists the exchange,
// streams the assistant reply, and publishes live view snapshots.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/parley-ai/parley/internal/debug"
	"github.com/parley-ai/parley/internal/events"
	"github.com/parley-ai/parley/internal/message"
	"github.com/parley-ai/parley/internal/project"
	"github.com/parley-ai/parley/internal/provider"
	"github.com/parley-ai/parley/internal/pubsub"
	"github.com/parley-ai/parley/internal/session"
)

// ErrTurnActive is returned when a turn is submitted for a session that
// already has one in flight.
var ErrTurnActive = errors.New("a turn is already active for this session")

// Orchestrator runs the turn lifecycle for chat sessions. One turn per
// session at a time; different sessions proceed independently.
type Orchestrator struct {
	sessions *session.Service
	projects *project.Service
	messages *message.Service
	registry *provider.Registry
	hub      *pubsub.Hub

	mu     sync.Mutex
	active map[string]struct{}
}

// NewOrchestrator creates a turn orchestrator.
func NewOrchestrator(
	sessions *session.Service,
	projects *project.Service,
	messages *message.Service,
	registry *provider.Registry,
	hub *pubsub.Hub,
) *Orchestrator {
	return &Orchestrator{
		sessions: sessions,
		projects: projects,
		messages: messages,
		registry: registry,
		hub:      hub,
		active:   make(map[string]struct{}),
	}
}

// SubmitTurn runs one full turn: it commits the user prompt, streams the
// assistant reply, and commits the outcome. It blocks until the turn is
// durable; progress is published on the hub's turn and view brokers.
//
// A blank prompt or an unknown session is a silent no-op. Provider failures
// are not returned: they are committed to the conversation as an assistant
// message reading "Error: <cause>", so history always records how a turn
// ended. The returned error covers submission problems only - a concurrent
// turn on the same session (ErrTurnActive) or a persistence failure.
func (o *Orchestrator) SubmitTurn(ctx context.Context, sessionID, prompt, model string) error {
	if strings.TrimSpace(prompt) == "" {
		return nil
	}

	sess, err := o.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("loading session: %w", err)
	}

	if !o.begin(sessionID) {
		return ErrTurnActive
	}
	defer o.end(sessionID)

	// History is everything committed before this prompt.
	history, err := o.messages.GetBySession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	userMsg := &message.Message{
		SessionID: sessionID,
		Role:      message.RoleUser,
		Content:   prompt,
	}
	if err := o.messages.Add(ctx, userMsg); err != nil {
		return fmt.Errorf("committing prompt: %w", err)
	}

	// First real prompt names the session.
	if sess.Title == session.DefaultTitle {
		if title := session.DeriveTitle(prompt); title != "" {
			if err := o.sessions.UpdateTitle(ctx, sessionID, title); err != nil {
				debug.Error("orchestrator", err, "renaming session")
			}
		}
	}

	instructions := o.instructionsFor(ctx, sess)

	o.hub.Turn.Publish(pubsub.EventStarted, events.NewTurnStartedEvent(sessionID, model))

	base := snapshotMessages(append(history, userMsg))
	o.publishView(sessionID, base, "", true)

	reply, streamErr := o.streamReply(ctx, sessionID, base, provider.Request{
		Model:        model,
		History:      historyTurns(history),
		Prompt:       prompt,
		Instructions: instructions,
	})
	if streamErr != nil {
		return o.failTurn(ctx, sessionID, base, streamErr)
	}

	modelMsg := &message.Message{
		SessionID: sessionID,
		Role:      message.RoleModel,
		Content:   strings.TrimSpace(reply),
	}
	if err := o.messages.Add(ctx, modelMsg); err != nil {
		return fmt.Errorf("committing reply: %w", err)
	}
	if err := o.sessions.Touch(ctx, sessionID); err != nil {
		debug.Error("orchestrator", err, "touching session")
	}

	fallback := append(base, snapshotMessages([]*message.Message{modelMsg})...)
	o.publishView(sessionID, o.committedSnapshot(ctx, sessionID, fallback), "", false)
	o.hub.Turn.Publish(pubsub.EventCompleted, events.NewTurnCompletedEvent(sessionID))

	return nil
}

// streamReply opens the provider stream and drains it, publishing a fragment
// event and a refreshed view snapshot per delta. It returns the accumulated
// reply text.
func (o *Orchestrator) streamReply(
	ctx context.Context,
	sessionID string,
	base []events.MessageSnapshot,
	req provider.Request,
) (string, error) {
	client, err := o.registry.Resolve(req.Model)
	if err != nil {
		return "", err
	}
	debug.Event("orchestrator", "stream", fmt.Sprintf("session=%s model=%s provider=%s",
		sessionID, req.Model, client.Name()))

	stream, err := client.StreamReply(ctx, req)
	if err != nil {
		return "", err
	}
	defer stream.Close() //nolint:errcheck

	var reply strings.Builder
	for {
		delta, err := stream.Recv()
		if err == io.EOF {
			return reply.String(), nil
		}
		if err != nil {
			return reply.String(), err
		}

		reply.WriteString(delta)
		o.hub.Turn.Publish(pubsub.EventProgress, events.NewTurnFragmentEvent(sessionID, delta))
		o.publishView(sessionID, base, reply.String(), true)
	}
}

// failTurn converts a provider failure into conversation data: the cause is
// committed as an assistant message so the session records the failed turn.
func (o *Orchestrator) failTurn(
	ctx context.Context,
	sessionID string,
	base []events.MessageSnapshot,
	cause error,
) error {
	debug.Error("orchestrator", cause, "turn failed")

	errMsg := &message.Message{
		SessionID: sessionID,
		Role:      message.RoleModel,
		Content:   fmt.Sprintf("Error: %s", cause.Error()),
	}
	if err := o.messages.Add(ctx, errMsg); err != nil {
		return fmt.Errorf("committing error message: %w", err)
	}
	if err := o.sessions.Touch(ctx, sessionID); err != nil {
		debug.Error("orchestrator", err, "touching session")
	}

	fallback := append(base, snapshotMessages([]*message.Message{errMsg})...)
	o.publishView(sessionID, o.committedSnapshot(ctx, sessionID, fallback), "", false)
	o.hub.Turn.Publish(pubsub.EventFailed, events.NewTurnFailedEvent(sessionID, cause))

	return nil
}

// committedSnapshot re-reads the session's message log so the settling view
// snapshot is authoritative, not the turn's local assembly. A failed re-read
// degrades to the fallback rather than ending the turn without a settled view.
func (o *Orchestrator) committedSnapshot(
	ctx context.Context,
	sessionID string,
	fallback []events.MessageSnapshot,
) []events.MessageSnapshot {
	committed, err := o.messages.GetBySession(ctx, sessionID)
	if err != nil {
		debug.Error("orchestrator", err, "re-reading session")
		return fallback
	}
	return snapshotMessages(committed)
}

// instructionsFor resolves the session's project instructions, if any. A
// lookup failure degrades to no instructions rather than blocking the turn.
func (o *Orchestrator) instructionsFor(ctx context.Context, sess *session.Session) string {
	if sess.ProjectID == "" {
		return ""
	}
	proj, err := o.projects.Get(ctx, sess.ProjectID)
	if err != nil {
		debug.Error("orchestrator", err, "loading project instructions")
		return ""
	}
	return proj.Instructions
}

// publishView publishes a snapshot of the committed messages, appending a
// pending placeholder carrying the partial reply while the turn streams.
func (o *Orchestrator) publishView(
	sessionID string,
	committed []events.MessageSnapshot,
	partial string,
	pending bool,
) {
	snapshot := make([]events.MessageSnapshot, 0, len(committed)+1)
	snapshot = append(snapshot, committed...)
	if pending {
		snapshot = append(snapshot, events.MessageSnapshot{
			Role:    string(message.RoleModel),
			Text:    partial,
			Pending: true,
		})
	}
	o.hub.View.Publish(pubsub.EventProgress, events.NewViewEvent(sessionID, snapshot))
}

func (o *Orchestrator) begin(sessionID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, busy := o.active[sessionID]; busy {
		return false
	}
	o.active[sessionID] = struct{}{}
	return true
}

func (o *Orchestrator) end(sessionID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.active, sessionID)
}

// snapshotMessages converts committed messages into view snapshot entries.
func snapshotMessages(msgs []*message.Message) []events.MessageSnapshot {
	out := make([]events.MessageSnapshot, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, events.MessageSnapshot{
			ID:   m.ID,
			Role: string(m.Role),
			Text: m.Content,
		})
	}
	return out
}

// historyTurns converts committed messages into provider history.
func historyTurns(msgs []*message.Message) []provider.Turn {
	out := make([]provider.Turn, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, provider.Turn{
			Role: provider.Role(m.Role),
			Text: m.Content,
		})
	}
	return out
}
