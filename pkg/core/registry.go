package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// ModuleRegistry tracks the live module set and drives module lifecycle. A
// module is "live" between a successful Initialize and its UnregisterModule;
// the dispatcher only delivers to live modules.
type ModuleRegistry struct {
	bus *MessageBus

	mu      sync.RWMutex
	modules map[string]Module

	exitOnce sync.Once
	exit     chan struct{}

	logger  Logger
	metrics Metrics
}

// NewModuleRegistry creates a registry linked to bus. Linking starts
// dispatchers for any message types registered beforehand.
func NewModuleRegistry(bus *MessageBus) *ModuleRegistry {
	r := &ModuleRegistry{
		bus:     bus,
		modules: make(map[string]Module),
		exit:    make(chan struct{}),
		logger:  NewComponentLogger("registry"),
		metrics: bus.metrics,
	}
	bus.bindRegistry(r)
	return r
}

// Bus returns the message bus this registry is linked to.
func (r *ModuleRegistry) Bus() *MessageBus { return r.bus }

// RegisterAllModules constructs and initializes every module in the
// discovery table, in registration order. The first failure aborts the
// sequence and is returned; modules initialized before it stay live. Zero
// discovered modules is a warning, not an error.
func (r *ModuleRegistry) RegisterAllModules(ctx context.Context) error {
	infos := ModuleBuilders()
	if len(infos) == 0 {
		r.logger.Warn("no modules discovered; nothing to register")
		return nil
	}

	for _, info := range infos {
		mod := info.Construct()
		if mod == nil {
			return fmt.Errorf("constructor for module %q returned nil", info.Name)
		}
		if mod.Name() != info.Name {
			return fmt.Errorf("module %q reports name %q", info.Name, mod.Name())
		}
		if err := r.AddModule(ctx, mod); err != nil {
			return fmt.Errorf("registering module %q: %w", info.Name, err)
		}
	}
	r.logger.Infof("registered %d modules", len(infos))
	return nil
}

// AddModule initializes mod and adds it to the live set. The module name
// must be valid and not already live.
func (r *ModuleRegistry) AddModule(ctx context.Context, mod Module) error {
	name := mod.Name()
	if err := ValidateModuleName(name); err != nil {
		return err
	}

	r.mu.RLock()
	_, dup := r.modules[name]
	r.mu.RUnlock()
	if dup {
		return &Error{
			Code:    CodeDuplicateModule,
			Message: fmt.Sprintf("module %q is already registered", name),
		}
	}

	r.logger.Infof("initializing module %q", name)
	if err := mod.Initialize(ctx, r.bus); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	r.mu.Lock()
	r.modules[name] = mod
	n := len(r.modules)
	r.mu.Unlock()

	r.metrics.SetLiveModules(n)
	r.logger.Infof("module %q is live", name)
	return nil
}

// UnregisterModule shuts a module down, removes it from the live set, and
// clears its subscriptions. Removal and cleanup happen even when Shutdown
// errors; the error is logged and returned. Unknown names are a no-op.
func (r *ModuleRegistry) UnregisterModule(ctx context.Context, name string) error {
	r.mu.Lock()
	mod, ok := r.modules[name]
	if ok {
		delete(r.modules, name)
	}
	n := len(r.modules)
	r.mu.Unlock()

	if !ok {
		r.logger.Debugf("unregister of unknown module %q ignored", name)
		return nil
	}

	err := mod.Shutdown(ctx)
	if err != nil {
		r.logger.Errorf("module %q shutdown failed: %v", name, err)
	}

	removed := r.bus.UnsubscribeAll(name)
	r.metrics.SetLiveModules(n)
	r.logger.Infof("module %q unregistered (%d subscriptions removed)", name, removed)
	return err
}

// ListModules returns the names of all live modules, sorted.
func (r *ModuleRegistry) ListModules() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// SignalExit requests coordinated shutdown. Idempotent; later calls are
// no-ops.
func (r *ModuleRegistry) SignalExit() {
	r.exitOnce.Do(func() {
		r.logger.Info("exit signal raised")
		close(r.exit)
	})
}

// ExitSignal returns a channel closed when SignalExit is first called. The
// host process selects on it alongside OS signals.
func (r *ModuleRegistry) ExitSignal() <-chan struct{} {
	return r.exit
}

// lookupModule resolves a live module by name for the dispatcher.
func (r *ModuleRegistry) lookupModule(name string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	mod, ok := r.modules[name]
	return mod, ok
}
