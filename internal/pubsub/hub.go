package pubsub

import (
	"sync"

	"github.com/parley-ai/parley/internal/events"
)

// Hub is the central container for all domain brokers.
type Hub struct {
	Turn    *Broker[events.TurnEvent]
	View    *Broker[events.ViewEvent]
	Message *Broker[events.MessageEvent]
	Session *Broker[events.SessionEvent]
	Project *Broker[events.ProjectEvent]

	done chan struct{}
}

// NewHub creates a new Hub with all domain brokers initialized.
func NewHub() *Hub {
	return &Hub{
		Turn:    NewBroker[events.TurnEvent]("turn"),
		View:    NewBroker[events.ViewEvent]("view"),
		Message: NewBroker[events.MessageEvent]("message"),
		Session: NewBroker[events.SessionEvent]("session"),
		Project: NewBroker[events.ProjectEvent]("project"),
		done:    make(chan struct{}),
	}
}

// Shutdown gracefully shuts down all brokers.
func (h *Hub) Shutdown() {
	select {
	case <-h.done:
		return
	default:
		close(h.done)
	}

	var wg sync.WaitGroup
	wg.Add(5)

	go func() { defer wg.Done(); h.Turn.Shutdown() }()
	go func() { defer wg.Done(); h.View.Shutdown() }()
	go func() { defer wg.Done(); h.Message.Shutdown() }()
	go func() { defer wg.Done(); h.Session.Shutdown() }()
	go func() { defer wg.Done(); h.Project.Shutdown() }()

	wg.Wait()
}

// IsShutdown returns true if the hub has been shut down.
func (h *Hub) IsShutdown() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Done returns a channel that's closed when the hub is shut down.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}
