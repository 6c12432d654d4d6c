package core

import "context"

// Module is an independently lifecycled unit of behavior that subscribes to
// and publishes messages. Lifecycle: constructed via its build record,
// initialized exactly once, processing messages concurrently while
// subscribed, shut down exactly once. A module instance is never reused
// after shutdown.
type Module interface {
	// Name returns the stable, process-unique identifier used as the
	// subscription key.
	Name() string

	// Initialize is called once, before any message delivery to this
	// module. It must register every message type the module intends to
	// receive and subscribe itself to each. Long-running work belongs on a
	// dedicated goroutine, not inline. A failure prevents the module from
	// joining the live set and aborts the registration sequence.
	Initialize(ctx context.Context, bus *MessageBus) error

	// ProcessMessage is invoked concurrently, once per relevant publish.
	// Implementations inspect the envelope type, attempt a checked downcast
	// of the payload, and return nil for messages that are not theirs.
	// Heavy work must be delegated off the dispatch goroutine.
	ProcessMessage(ctx context.Context, env Envelope) error

	// Shutdown is called once when the module is unregistered. Cleanup
	// failures are logged by the registry, not escalated; the module is
	// removed regardless.
	Shutdown(ctx context.Context) error
}
