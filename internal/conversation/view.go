package conversation

import (
	"context"
	"sync"

	"github.com/parley-ai/parley/internal/debug"
	"github.com/parley-ai/parley/internal/events"
	"github.com/parley-ai/parley/internal/message"
	"github.com/parley-ai/parley/internal/pubsub"
)

// View delivers live conversation snapshots for the session currently on
// screen. It holds at most one subscription: attaching to a session detaches
// the previous one, so switching sessions never leaks a feed. Detaching
// stops delivery only - a turn in flight keeps running to completion.
type View struct {
	messages *message.Service
	views    pubsub.Subscriber[events.ViewEvent]
	msgs     pubsub.Subscriber[events.MessageEvent]

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewView creates a conversation view over the hub's view and message
// brokers.
func NewView(messages *message.Service, hub *pubsub.Hub) *View {
	return &View{
		messages: messages,
		views:    hub.View,
		msgs:     hub.Message,
	}
}

// Attach subscribes to one session's snapshots, replacing any previous
// subscription. The first event on the returned channel is the session's
// committed state. Later events come from two sources: the hub's view broker
// (streaming snapshots published during a turn) and the message broker (a
// commit outside a watched turn triggers a re-query). Events for other
// sessions are ignored. The channel closes when ctx is cancelled, Attach is
// called again, Detach is called, or the hub shuts down.
func (v *View) Attach(ctx context.Context, sessionID string) (<-chan events.ViewEvent, error) {
	// Read committed state before swapping subscriptions so a failed load
	// leaves the previous attachment intact.
	committed, err := v.messages.GetBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	initial := events.NewViewEvent(sessionID, snapshotMessages(committed))

	subCtx, cancel := context.WithCancel(ctx)
	v.mu.Lock()
	if v.cancel != nil {
		v.cancel()
	}
	v.cancel = cancel
	v.mu.Unlock()

	viewSub := v.views.Subscribe(subCtx)
	msgSub := v.msgs.Subscribe(subCtx)

	out := make(chan events.ViewEvent, pubsub.DefaultBufferSize)
	go func() {
		defer close(out)

		deliver := func(ev events.ViewEvent) {
			select {
			case out <- ev:
			default:
				// Slow consumer; snapshots are complete, drop this one.
			}
		}

		deliver(initial)
		for viewSub != nil || msgSub != nil {
			select {
			case ev, ok := <-viewSub:
				if !ok {
					viewSub = nil
					continue
				}
				if ev.Payload.SessionID != sessionID {
					continue
				}
				deliver(ev.Payload)
			case ev, ok := <-msgSub:
				if !ok {
					msgSub = nil
					continue
				}
				if ev.Payload.SessionID != sessionID {
					continue
				}
				refreshed, err := v.messages.GetBySession(subCtx, sessionID)
				if err != nil {
					debug.Error("view", err, "re-querying session")
					continue
				}
				deliver(events.NewViewEvent(sessionID, snapshotMessages(refreshed)))
			}
		}
	}()

	return out, nil
}

// Detach ends the current subscription, if any.
func (v *View) Detach() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
}
