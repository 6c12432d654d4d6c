package core

import "time"

// Metrics receives bus instrumentation events. Implementations must be safe
// for concurrent use. The prometheus implementation lives in
// pkg/observability/prometheus; NopMetrics is the default.
type Metrics interface {
	// MessagePublished is called after a message is enqueued.
	MessagePublished(msgType string)

	// MessageDropped is called when the dispatcher drops a message that had
	// no subscribers.
	MessageDropped(msgType string)

	// DeliverySucceeded is called per subscriber delivery that returned nil.
	DeliverySucceeded(msgType, module string, d time.Duration)

	// DeliveryFailed is called per subscriber delivery that errored, timed
	// out, or panicked.
	DeliveryFailed(msgType, module string)

	// SetLiveModules reports the current live-module count.
	SetLiveModules(n int)

	// SetChannelDepth reports the queue depth of a message channel.
	SetChannelDepth(msgType string, depth int)
}

// NopMetrics returns a Metrics implementation that discards everything.
func NopMetrics() Metrics { return nopMetrics{} }

type nopMetrics struct{}

func (nopMetrics) MessagePublished(string)                       {}
func (nopMetrics) MessageDropped(string)                         {}
func (nopMetrics) DeliverySucceeded(string, string, time.Duration) {}
func (nopMetrics) DeliveryFailed(string, string)                 {}
func (nopMetrics) SetLiveModules(int)                            {}
func (nopMetrics) SetChannelDepth(string, int)                   {}
