package uihost

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/synapseio/synapse/pkg/core"
)

func newBusAndRegistry(t *testing.T) (*core.MessageBus, *core.ModuleRegistry) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	bus := core.NewMessageBus(ctx, core.BusOptions{})
	t.Cleanup(func() {
		bus.Close()
		cancel()
	})
	return bus, core.NewModuleRegistry(bus)
}

func TestHeadlessModuleInitializes(t *testing.T) {
	_, reg := newBusAndRegistry(t)

	m := &Module{logger: core.NewComponentLogger(ModuleName)}
	if err := reg.AddModule(context.Background(), m); err != nil {
		t.Fatalf("add module: %v", err)
	}
	if err := reg.UnregisterModule(context.Background(), ModuleName); err != nil {
		t.Fatalf("unregister: %v", err)
	}
}

func TestLoopEndSignalsExit(t *testing.T) {
	_, reg := newBusAndRegistry(t)

	m := &Module{
		logger: core.NewComponentLogger(ModuleName),
		loop: func(ctx context.Context, bus *core.MessageBus) error {
			return nil // quit immediately
		},
	}
	if err := reg.AddModule(context.Background(), m); err != nil {
		t.Fatalf("add module: %v", err)
	}

	select {
	case <-reg.ExitSignal():
	case <-time.After(2 * time.Second):
		t.Fatal("expected exit signal when loop returns")
	}
}

func TestShutdownCancelsLoop(t *testing.T) {
	_, reg := newBusAndRegistry(t)

	started := make(chan struct{})
	m := &Module{
		logger: core.NewComponentLogger(ModuleName),
		loop: func(ctx context.Context, bus *core.MessageBus) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		},
	}
	if err := reg.AddModule(context.Background(), m); err != nil {
		t.Fatalf("add module: %v", err)
	}

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("loop never started")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := reg.UnregisterModule(ctx, ModuleName); err != nil {
		t.Fatalf("unregister: %v", err)
	}
}

func TestShutdownReportsStuckLoop(t *testing.T) {
	_, reg := newBusAndRegistry(t)

	block := make(chan struct{})
	t.Cleanup(func() { close(block) })
	m := &Module{
		logger: core.NewComponentLogger(ModuleName),
		loop: func(ctx context.Context, bus *core.MessageBus) error {
			<-block // ignores cancellation
			return nil
		},
	}
	if err := reg.AddModule(context.Background(), m); err != nil {
		t.Fatalf("add module: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := reg.UnregisterModule(ctx, ModuleName); err == nil {
		t.Fatal("expected error for a loop that ignores cancellation")
	} else if errors.Is(err, context.Canceled) {
		t.Fatalf("expected deadline-style error, got %v", err)
	}
}

func TestIgnoresSystemMessagesForOthers(t *testing.T) {
	m := &Module{logger: core.NewComponentLogger(ModuleName)}
	env := core.NewEnvelope(&core.SystemMessage{Source: "core", Target: "i18n", Content: "hello"})
	if err := m.ProcessMessage(context.Background(), env); err != nil {
		t.Fatalf("expected irrelevant message to be a no-op, got %v", err)
	}
}
