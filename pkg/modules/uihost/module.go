// Package uihost owns the process's foreground loop. The original system
// parked a GUI event loop here; headless deployments plug in any blocking
// loop, or none, and the module signals coordinated exit when it returns.
package uihost

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/synapseio/synapse/pkg/core"
)

// ModuleName is the uihost module's registry name.
const ModuleName = "uihost"

// RunLoop is the blocking foreground loop. It runs on a dedicated goroutine
// and should return when ctx is cancelled or the user quits.
type RunLoop func(ctx context.Context, bus *core.MessageBus) error

var (
	loopMu   sync.Mutex
	loopFunc RunLoop
)

// SetRunLoop installs the foreground loop. Call before module registration.
// Without one the module is a passive SystemMessage listener.
func SetRunLoop(fn RunLoop) {
	loopMu.Lock()
	defer loopMu.Unlock()
	loopFunc = fn
}

// Module hosts the foreground loop and listens for SystemMessage traffic
// addressed to it.
type Module struct {
	bus    *core.MessageBus
	logger core.Logger
	loop   RunLoop

	cancel context.CancelFunc
	done   chan struct{}
}

// New builds the module with the installed run loop, if any.
func New() *Module {
	loopMu.Lock()
	fn := loopFunc
	loopMu.Unlock()
	return &Module{
		logger: core.NewComponentLogger(ModuleName),
		loop:   fn,
	}
}

func (m *Module) Name() string { return ModuleName }

func (m *Module) Initialize(ctx context.Context, bus *core.MessageBus) error {
	m.bus = bus

	sysType := bus.RegisterMessageType(&core.SystemMessage{})
	if err := bus.Subscribe(sysType, ModuleName); err != nil {
		return err
	}

	if m.loop == nil {
		m.logger.Debug("no run loop installed; running headless")
		return nil
	}

	// The loop outlives Initialize's ctx; it gets its own cancellation
	// scope tied to Shutdown.
	loopCtx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})

	go func() {
		defer close(m.done)
		if err := m.loop(loopCtx, bus); err != nil {
			m.logger.Errorf("run loop exited with error: %v", err)
		} else {
			m.logger.Info("run loop exited")
		}
		// Loop end means the user quit; take the process down with us.
		bus.SignalExit()
	}()
	return nil
}

func (m *Module) ProcessMessage(ctx context.Context, env core.Envelope) error {
	msg, ok := core.PayloadAs[*core.SystemMessage](env)
	if !ok {
		return nil
	}
	if msg.Target != "all" && msg.Target != ModuleName {
		return nil
	}
	m.logger.Infof("system message from %s: %s", msg.Source, msg.Content)
	return nil
}

// Shutdown cancels the run loop and waits briefly for it to unwind.
func (m *Module) Shutdown(ctx context.Context) error {
	if m.cancel == nil {
		return nil
	}
	m.cancel()

	select {
	case <-m.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("run loop did not stop: %w", ctx.Err())
	case <-time.After(5 * time.Second):
		return fmt.Errorf("run loop did not stop within 5s")
	}
}

func init() {
	core.RegisterModuleBuilder(core.ModuleBuildInfo{
		Name:      ModuleName,
		Construct: func() core.Module { return New() },
	})
}
