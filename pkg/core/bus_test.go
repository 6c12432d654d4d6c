package core

import (
	"context"
	"testing"
	"time"
)

// test message types; registered as pointers, matching how modules
// register their own message structs.
type ping struct {
	Seq int
}

type pong struct {
	Seq int
}

// stubModule is a configurable Module for tests. Nil hooks default to
// success.
type stubModule struct {
	name       string
	initFn     func(ctx context.Context, bus *MessageBus) error
	processFn  func(ctx context.Context, env Envelope) error
	shutdownFn func(ctx context.Context) error
}

func (m *stubModule) Name() string { return m.name }

func (m *stubModule) Initialize(ctx context.Context, bus *MessageBus) error {
	if m.initFn != nil {
		return m.initFn(ctx, bus)
	}
	return nil
}

func (m *stubModule) ProcessMessage(ctx context.Context, env Envelope) error {
	if m.processFn != nil {
		return m.processFn(ctx, env)
	}
	return nil
}

func (m *stubModule) Shutdown(ctx context.Context) error {
	if m.shutdownFn != nil {
		return m.shutdownFn(ctx)
	}
	return nil
}

func newTestBus(t *testing.T, opts BusOptions) *MessageBus {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	bus := NewMessageBus(ctx, opts)
	t.Cleanup(func() {
		bus.Close()
		cancel()
	})
	return bus
}

func TestPublishBeforeRegisterFails(t *testing.T) {
	bus := newTestBus(t, BusOptions{})

	err := bus.Publish(&ping{Seq: 1})
	if err == nil {
		t.Fatal("expected error publishing unregistered type")
	}
	if !IsNotRegistered(err) {
		t.Fatalf("expected NOT_REGISTERED, got %v", err)
	}
}

func TestPublishNilMessageFails(t *testing.T) {
	bus := newTestBus(t, BusOptions{})

	if err := bus.Publish(nil); err == nil {
		t.Fatal("expected error publishing nil message")
	}
}

func TestRegisterMessageTypeIdempotent(t *testing.T) {
	bus := newTestBus(t, BusOptions{})

	t1 := bus.RegisterMessageType(&ping{})
	t2 := bus.RegisterMessageType(&ping{})
	if t1 != t2 {
		t.Fatalf("repeated registration returned different identities: %v vs %v", t1, t2)
	}
	if err := bus.Publish(&ping{Seq: 1}); err != nil {
		t.Fatalf("publish after re-registration: %v", err)
	}
}

func TestPublishZeroSubscribersSucceeds(t *testing.T) {
	bus := newTestBus(t, BusOptions{})

	bus.RegisterMessageType(&ping{})
	if err := bus.Publish(&ping{Seq: 1}); err != nil {
		t.Fatalf("publish with zero subscribers: %v", err)
	}
}

func TestPublishFullChannelFails(t *testing.T) {
	// No registry linked, so nothing drains the channel.
	bus := newTestBus(t, BusOptions{ChannelCapacity: 1})

	bus.RegisterMessageType(&ping{})
	if err := bus.Publish(&ping{Seq: 1}); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	err := bus.Publish(&ping{Seq: 2})
	if err == nil {
		t.Fatal("expected error publishing to full channel")
	}
	if !IsChannelUnavailable(err) {
		t.Fatalf("expected CHANNEL_UNAVAILABLE, got %v", err)
	}
}

func TestPublishAfterCloseFails(t *testing.T) {
	bus := newTestBus(t, BusOptions{})

	bus.RegisterMessageType(&ping{})
	bus.Close()
	err := bus.Publish(&ping{Seq: 1})
	if !IsChannelUnavailable(err) {
		t.Fatalf("expected CHANNEL_UNAVAILABLE after close, got %v", err)
	}
}

func TestSubscribeDeduplicates(t *testing.T) {
	bus := newTestBus(t, BusOptions{})

	pingType := bus.RegisterMessageType(&ping{})
	if err := bus.Subscribe(pingType, "echo"); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := bus.Subscribe(pingType, "echo"); err != nil {
		t.Fatalf("duplicate subscribe should be a no-op, got %v", err)
	}
	if subs := bus.Subscribers(pingType); len(subs) != 1 {
		t.Fatalf("expected 1 subscriber after duplicate subscribe, got %v", subs)
	}
}

func TestSubscribeRejectsInvalidInput(t *testing.T) {
	bus := newTestBus(t, BusOptions{})

	pingType := bus.RegisterMessageType(&ping{})
	if err := bus.Subscribe(pingType, ""); err == nil {
		t.Fatal("expected error subscribing with empty module name")
	}
	if err := bus.Subscribe(nil, "echo"); err == nil {
		t.Fatal("expected error subscribing with nil type")
	}
}

func TestUnsubscribe(t *testing.T) {
	bus := newTestBus(t, BusOptions{})

	pingType := bus.RegisterMessageType(&ping{})
	bus.Subscribe(pingType, "echo")

	if !bus.Unsubscribe(pingType, "echo") {
		t.Fatal("expected unsubscribe to report removal")
	}
	if bus.Unsubscribe(pingType, "echo") {
		t.Fatal("expected second unsubscribe to report nothing removed")
	}
	if subs := bus.Subscribers(pingType); len(subs) != 0 {
		t.Fatalf("expected no subscribers, got %v", subs)
	}
}

func TestUnsubscribeAll(t *testing.T) {
	bus := newTestBus(t, BusOptions{})

	pingType := bus.RegisterMessageType(&ping{})
	pongType := bus.RegisterMessageType(&pong{})
	bus.Subscribe(pingType, "echo")
	bus.Subscribe(pongType, "echo")
	bus.Subscribe(pongType, "other")

	if n := bus.UnsubscribeAll("echo"); n != 2 {
		t.Fatalf("expected 2 subscriptions removed, got %d", n)
	}
	if subs := bus.Subscribers(pingType); len(subs) != 0 {
		t.Fatalf("expected ping subscribers cleared, got %v", subs)
	}
	if subs := bus.Subscribers(pongType); len(subs) != 1 || subs[0] != "other" {
		t.Fatalf("expected only %q on pong, got %v", "other", subs)
	}
}

// waitRecv receives from ch or fails the test after a deadline.
func waitRecv[T any](t *testing.T, ch <-chan T, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
		panic("unreachable")
	}
}
