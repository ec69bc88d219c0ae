package pubsub

import (
	"context"
	"testing"
	"time"
)

func TestBrokerSubscribePublish(t *testing.T) {
	t.Run("single subscriber receives events", func(t *testing.T) {
		broker := NewBroker[string]("test")
		defer broker.Shutdown()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		events := broker.Subscribe(ctx)

		broker.Publish(EventCreated, "hello")

		select {
		case event := <-events:
			if event.Type != EventCreated || event.Payload != "hello" {
				t.Errorf("unexpected event: %+v", event)
			}
		case <-time.After(100 * time.Millisecond):
			t.Error("timeout waiting for event")
		}
	})

	t.Run("multiple subscribers receive same event", func(t *testing.T) {
		broker := NewBroker[int]("test")
		defer broker.Shutdown()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sub1 := broker.Subscribe(ctx)
		sub2 := broker.Subscribe(ctx)

		broker.Publish(EventUpdated, 42)

		for i, sub := range []<-chan Event[int]{sub1, sub2} {
			select {
			case event := <-sub:
				if event.Payload != 42 {
					t.Errorf("subscriber %d: expected 42, got %d", i, event.Payload)
				}
			case <-time.After(100 * time.Millisecond):
				t.Errorf("subscriber %d: timeout", i)
			}
		}
	})

	t.Run("cancelled context unsubscribes", func(t *testing.T) {
		broker := NewBroker[string]("test")
		defer broker.Shutdown()

		ctx, cancel := context.WithCancel(context.Background())
		sub := broker.Subscribe(ctx)

		cancel()

		// Wait for the cleanup goroutine to close the channel.
		deadline := time.After(time.Second)
		for {
			select {
			case _, ok := <-sub:
				if !ok {
					if broker.SubscriberCount() != 0 {
						t.Errorf("SubscriberCount() = %d, want 0", broker.SubscriberCount())
					}
					return
				}
			case <-deadline:
				t.Fatal("channel was not closed after context cancellation")
			}
		}
	})

	t.Run("slow subscriber drops events", func(t *testing.T) {
		broker := NewBroker[int]("test", WithBufferSize[int](1))
		defer broker.Shutdown()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sub := broker.Subscribe(ctx)

		// Fill the buffer, then overflow it; Publish must not block.
		broker.Publish(EventProgress, 1)
		broker.Publish(EventProgress, 2)

		event := <-sub
		if event.Payload != 1 {
			t.Errorf("payload = %d, want 1", event.Payload)
		}
		select {
		case e := <-sub:
			t.Errorf("expected dropped event, got %+v", e)
		default:
		}
	})
}

func TestBrokerShutdown(t *testing.T) {
	t.Run("closes subscriber channels", func(t *testing.T) {
		broker := NewBroker[string]("test")

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sub := broker.Subscribe(ctx)
		broker.Shutdown()

		select {
		case _, ok := <-sub:
			if ok {
				t.Error("expected channel to be closed")
			}
		case <-time.After(100 * time.Millisecond):
			t.Error("timeout waiting for channel close")
		}

		if !broker.IsShutdown() {
			t.Error("IsShutdown() = false, want true")
		}
	})

	t.Run("subscribe after shutdown returns closed channel", func(t *testing.T) {
		broker := NewBroker[string]("test")
		broker.Shutdown()

		sub := broker.Subscribe(context.Background())
		if _, ok := <-sub; ok {
			t.Error("expected closed channel")
		}
	})

	t.Run("publish after shutdown is a no-op", func(t *testing.T) {
		broker := NewBroker[string]("test")
		broker.Shutdown()

		// Must not panic.
		broker.Publish(EventCreated, "late")
	})

	t.Run("double shutdown is safe", func(t *testing.T) {
		broker := NewBroker[string]("test")
		broker.Shutdown()
		broker.Shutdown()
	})
}

func TestHub(t *testing.T) {
	t.Run("shutdown closes all brokers", func(t *testing.T) {
		hub := NewHub()
		hub.Shutdown()

		if !hub.Turn.IsShutdown() {
			t.Error("turn broker not shut down")
		}
		if !hub.View.IsShutdown() {
			t.Error("view broker not shut down")
		}
		if !hub.Message.IsShutdown() {
			t.Error("message broker not shut down")
		}
		if !hub.Session.IsShutdown() {
			t.Error("session broker not shut down")
		}
		if !hub.Project.IsShutdown() {
			t.Error("project broker not shut down")
		}
		if !hub.IsShutdown() {
			t.Error("hub not shut down")
		}
	})
}
