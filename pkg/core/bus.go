package core

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/synapseio/synapse/pkg/core/concurrency"
)

// DefaultChannelCapacity is the per-type queue bound used when BusOptions
// leaves ChannelCapacity unset.
const DefaultChannelCapacity = 1000

// BusOptions configures a MessageBus.
type BusOptions struct {
	// ChannelCapacity bounds each message type's FIFO queue.
	ChannelCapacity int

	// DeliveryTimeout bounds the dispatcher's wait on a single subscriber's
	// ProcessMessage call. Zero means wait indefinitely, which matches the
	// historical behavior where one wedged subscriber stalls its type.
	DeliveryTimeout time.Duration

	Logger  Logger
	Metrics Metrics
}

// messageChannel backs one registered message type.
type messageChannel struct {
	mailbox *concurrency.Mailbox[Envelope]
	// dispatching is set once a dispatcher owns the receiving end; guarded
	// by MessageBus.channelsMu.
	dispatching bool
}

// MessageBus routes typed messages between modules. It owns one bounded FIFO
// channel per registered message type and the subscriber-name table, and
// starts one dispatcher goroutine per type once a registry is linked.
//
// The bus and registry reference each other: the bus resolves subscriber
// names to live modules through the registry, and the registry cleans
// subscriptions through the bus. Both are created together at startup and
// torn down together, so the cycle is intentional.
type MessageBus struct {
	channelsMu sync.RWMutex
	channels   map[reflect.Type]*messageChannel

	subsMu      sync.RWMutex
	subscribers map[reflect.Type][]string

	regMu    sync.Mutex
	registry *ModuleRegistry

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	capacity        int
	deliveryTimeout time.Duration
	logger          Logger
	metrics         Metrics
}

// NewMessageBus creates a message bus. Dispatchers run until ctx is
// cancelled or the bus is closed.
func NewMessageBus(ctx context.Context, opts BusOptions) *MessageBus {
	if opts.ChannelCapacity < 1 {
		opts.ChannelCapacity = DefaultChannelCapacity
	}
	if opts.Logger == nil {
		opts.Logger = NewComponentLogger("bus")
	}
	if opts.Metrics == nil {
		opts.Metrics = NopMetrics()
	}

	ctx, cancel := context.WithCancel(ctx)
	return &MessageBus{
		channels:        make(map[reflect.Type]*messageChannel),
		subscribers:     make(map[reflect.Type][]string),
		ctx:             ctx,
		cancel:          cancel,
		capacity:        opts.ChannelCapacity,
		deliveryTimeout: opts.DeliveryTimeout,
		logger:          opts.Logger,
		metrics:         opts.Metrics,
	}
}

// RegisterMessageType registers a message type with the bus, creating its
// channel on first registration and returning the type identity. Idempotent.
// Publish a pointer value and register with the same pointer shape:
//
//	pingType := bus.RegisterMessageType(&Ping{})
//	_ = bus.Subscribe(pingType, "echo")
//	_ = bus.Publish(&Ping{ID: 1})
func (b *MessageBus) RegisterMessageType(prototype any) reflect.Type {
	t := reflect.TypeOf(prototype)
	if t == nil {
		b.logger.Warn("RegisterMessageType called with nil prototype")
		return nil
	}

	b.channelsMu.Lock()
	ch, exists := b.channels[t]
	if !exists {
		ch = &messageChannel{mailbox: concurrency.NewMailbox[Envelope](b.capacity)}
		b.channels[t] = ch
	}
	b.channelsMu.Unlock()

	if !exists {
		b.logger.Debugf("registered message type %s (capacity %d)", t, b.capacity)
	}
	b.maybeStartDispatcher(t, ch)
	return t
}

// Publish enqueues msg on its type's channel. It fails with NOT_REGISTERED
// when the type has no channel and CHANNEL_UNAVAILABLE when the queue is
// full or closed. Publishing with zero subscribers succeeds; the dispatcher
// drops the message later with a warning.
func (b *MessageBus) Publish(msg any) error {
	if err := ValidateMessage(msg); err != nil {
		return err
	}
	t := reflect.TypeOf(msg)

	b.channelsMu.RLock()
	ch, ok := b.channels[t]
	b.channelsMu.RUnlock()
	if !ok {
		return &Error{
			Code:    CodeNotRegistered,
			Message: fmt.Sprintf("message type %s not registered; call RegisterMessageType first", t),
		}
	}

	env := NewEnvelope(msg)
	if err := ch.mailbox.Send(env); err != nil {
		return &Error{
			Code:    CodeChannelUnavailable,
			Message: fmt.Sprintf("channel for message type %s unavailable: %v", t, err),
		}
	}

	b.metrics.MessagePublished(t.String())
	b.metrics.SetChannelDepth(t.String(), ch.mailbox.Len())

	if n := len(b.Subscribers(t)); n == 0 {
		b.logger.Warnf("published message %s of type %s with 0 subscribers", env.ID, t)
	} else {
		b.logger.Debugf("published message %s of type %s, %d subscribers", env.ID, t, n)
	}
	return nil
}

// Subscribe adds moduleName to msgType's subscriber list. Subscribing the
// same (type, name) pair twice is ignored with a warning so a module is
// never delivered the same message twice.
func (b *MessageBus) Subscribe(msgType reflect.Type, moduleName string) error {
	if err := ValidateMessageType(msgType); err != nil {
		return err
	}
	if err := ValidateModuleName(moduleName); err != nil {
		return err
	}

	b.subsMu.Lock()
	defer b.subsMu.Unlock()
	for _, name := range b.subscribers[msgType] {
		if name == moduleName {
			b.logger.Warnf("module %q already subscribed to %s; duplicate ignored", moduleName, msgType)
			return nil
		}
	}
	b.subscribers[msgType] = append(b.subscribers[msgType], moduleName)
	b.logger.Infof("module %q subscribed to message type %s", moduleName, msgType)
	return nil
}

// Unsubscribe removes every entry of moduleName for msgType and reports
// whether any removal occurred. A type left with an empty list is pruned.
func (b *MessageBus) Unsubscribe(msgType reflect.Type, moduleName string) bool {
	b.subsMu.Lock()
	defer b.subsMu.Unlock()

	subs, ok := b.subscribers[msgType]
	if !ok {
		return false
	}
	kept := subs[:0]
	for _, name := range subs {
		if name != moduleName {
			kept = append(kept, name)
		}
	}
	removed := len(kept) != len(subs)
	if removed {
		b.logger.Infof("module %q unsubscribed from message type %s", moduleName, msgType)
	}
	if len(kept) == 0 {
		delete(b.subscribers, msgType)
	} else {
		b.subscribers[msgType] = kept
	}
	return removed
}

// UnsubscribeAll removes moduleName from every type's subscriber list,
// pruning emptied types, and returns the number of subscriptions removed.
// The registry calls this when a module is unregistered.
func (b *MessageBus) UnsubscribeAll(moduleName string) int {
	b.subsMu.Lock()
	defer b.subsMu.Unlock()

	removed := 0
	for t, subs := range b.subscribers {
		kept := subs[:0]
		for _, name := range subs {
			if name != moduleName {
				kept = append(kept, name)
			}
		}
		removed += len(subs) - len(kept)
		if len(kept) == 0 {
			delete(b.subscribers, t)
		} else {
			b.subscribers[t] = kept
		}
	}
	return removed
}

// Subscribers returns a snapshot copy of msgType's subscriber list.
func (b *MessageBus) Subscribers(msgType reflect.Type) []string {
	b.subsMu.RLock()
	defer b.subsMu.RUnlock()
	subs := b.subscribers[msgType]
	out := make([]string, len(subs))
	copy(out, subs)
	return out
}

// SignalExit asks the linked registry to initiate coordinated shutdown.
// Modules that own blocking loops call this when their loop ends.
func (b *MessageBus) SignalExit() {
	b.regMu.Lock()
	reg := b.registry
	b.regMu.Unlock()
	if reg != nil {
		reg.SignalExit()
	}
}

// Close closes every channel and stops all dispatchers. Messages still
// queued may be discarded; unregister modules first for a clean drain.
func (b *MessageBus) Close() error {
	b.closeOnce.Do(func() {
		b.channelsMu.Lock()
		for _, ch := range b.channels {
			ch.mailbox.Close()
		}
		b.channelsMu.Unlock()
		b.cancel()
	})
	return nil
}

// bindRegistry links the registry and starts dispatchers for channels that
// were registered before the link.
func (b *MessageBus) bindRegistry(reg *ModuleRegistry) {
	b.regMu.Lock()
	b.registry = reg
	b.regMu.Unlock()

	b.channelsMu.RLock()
	pending := make(map[reflect.Type]*messageChannel, len(b.channels))
	for t, ch := range b.channels {
		pending[t] = ch
	}
	b.channelsMu.RUnlock()

	for t, ch := range pending {
		b.maybeStartDispatcher(t, ch)
	}
}

// maybeStartDispatcher starts the type's dispatcher if a registry is linked
// and no dispatcher owns the channel yet.
func (b *MessageBus) maybeStartDispatcher(t reflect.Type, ch *messageChannel) {
	b.regMu.Lock()
	linked := b.registry != nil
	b.regMu.Unlock()
	if !linked {
		return
	}

	b.channelsMu.Lock()
	if ch.dispatching {
		b.channelsMu.Unlock()
		return
	}
	ch.dispatching = true
	b.channelsMu.Unlock()

	b.logger.Debugf("starting dispatcher for message type %s", t)
	go b.runDispatcher(t, ch.mailbox)
}

func (b *MessageBus) lookupModule(name string) (Module, bool) {
	b.regMu.Lock()
	reg := b.registry
	b.regMu.Unlock()
	if reg == nil {
		return nil, false
	}
	return reg.lookupModule(name)
}
