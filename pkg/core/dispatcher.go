package core

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/synapseio/synapse/pkg/core/concurrency"
)

// deliveryResult is the per-subscriber outcome reported back to the
// dispatcher's completion barrier.
type deliveryResult struct {
	module string
	err    error
	took   time.Duration
}

// runDispatcher owns one message type's channel. It dequeues one envelope at
// a time, fans it out to every current subscriber on its own goroutine, and
// waits for all of them to finish before dequeuing the next. That barrier is
// what makes delivery FIFO per type: message N+1 is never handed to anyone
// until every subscriber is done with message N.
func (b *MessageBus) runDispatcher(msgType reflect.Type, mailbox *concurrency.Mailbox[Envelope]) {
	for {
		env, err := mailbox.Receive(b.ctx)
		if err != nil {
			b.logger.Debugf("dispatcher for %s stopping: %v", msgType, err)
			return
		}
		b.metrics.SetChannelDepth(msgType.String(), mailbox.Len())
		b.dispatchOne(env)
	}
}

// dispatchOne fans env out to the subscriber snapshot taken at dequeue time
// and blocks until every delivery reports back.
func (b *MessageBus) dispatchOne(env Envelope) {
	subs := b.Subscribers(env.Type)
	if len(subs) == 0 {
		b.logger.Warnf("dropping message %s of type %s: no subscribers", env.ID, env.Type)
		b.metrics.MessageDropped(env.Type.String())
		return
	}

	results := concurrency.NewMailbox[deliveryResult](len(subs))
	for _, name := range subs {
		go b.deliver(env, name, results)
	}

	for range subs {
		res, err := results.Receive(b.ctx)
		if err != nil {
			// Bus shutting down mid-message; remaining deliveries finish
			// on their own goroutines.
			return
		}
		if res.err != nil {
			b.logger.Errorf("module %q failed processing message %s of type %s: %v",
				res.module, env.ID, env.Type, res.err)
			b.metrics.DeliveryFailed(env.Type.String(), res.module)
		} else {
			b.metrics.DeliverySucceeded(env.Type.String(), res.module, res.took)
		}
	}
}

// deliver resolves one subscriber name and invokes its handler, reporting
// exactly one result. A name with no live module, such as a subscriber
// unregistered after the snapshot, is skipped silently.
func (b *MessageBus) deliver(env Envelope, moduleName string, results *concurrency.Mailbox[deliveryResult]) {
	mod, ok := b.lookupModule(moduleName)
	if !ok {
		results.Send(deliveryResult{module: moduleName})
		return
	}

	start := time.Now()
	err := b.invoke(mod, env)
	results.Send(deliveryResult{module: moduleName, err: err, took: time.Since(start)})
}

// invoke calls the module's handler with panic isolation and the optional
// delivery timeout applied.
func (b *MessageBus) invoke(mod Module, env Envelope) error {
	if b.deliveryTimeout <= 0 {
		return safeProcess(b.ctx, mod, env)
	}

	ctx, cancel := context.WithTimeout(b.ctx, b.deliveryTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- safeProcess(ctx, mod, env)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		// The handler keeps running in the background; the barrier is
		// released so the rest of the queue can make progress.
		return &Error{
			Code:    CodeDeliveryTimeout,
			Message: fmt.Sprintf("module %q exceeded delivery timeout %s", mod.Name(), b.deliveryTimeout),
		}
	}
}

// safeProcess converts a handler panic into an error so one misbehaving
// module cannot take down the dispatcher.
func safeProcess(ctx context.Context, mod Module, env Envelope) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in module %q: %v", mod.Name(), r)
		}
	}()
	return mod.ProcessMessage(ctx, env)
}
