package concurrency

import (
	"context"
	"errors"
	"sync/atomic"
)

var (
	// ErrMailboxClosed is returned when sending to or receiving from a closed mailbox.
	ErrMailboxClosed = errors.New("mailbox is closed")

	// ErrMailboxFull is returned when sending to a full mailbox (backpressure).
	ErrMailboxFull = errors.New("mailbox is full")
)

// Mailbox is a bounded FIFO queue abstracting channel operations behind a
// message passing API. One mailbox backs each registered message type on the
// bus; smaller mailboxes collect fan-out delivery results.
type Mailbox[T any] struct {
	ch       chan T
	closed   atomic.Bool
	capacity int
}

// NewMailbox creates a bounded mailbox. Capacities below 1 fall back to 100.
func NewMailbox[T any](capacity int) *Mailbox[T] {
	if capacity < 1 {
		capacity = 100
	}
	return &Mailbox[T]{
		ch:       make(chan T, capacity),
		capacity: capacity,
	}
}

// Send enqueues msg without blocking. Returns ErrMailboxFull when the queue
// is at capacity and ErrMailboxClosed after Close.
func (mb *Mailbox[T]) Send(msg T) error {
	if mb.closed.Load() {
		return ErrMailboxClosed
	}
	select {
	case mb.ch <- msg:
		return nil
	default:
		return ErrMailboxFull
	}
}

// Receive blocks until a message is available, the mailbox closes, or ctx is
// cancelled.
func (mb *Mailbox[T]) Receive(ctx context.Context) (T, error) {
	var zero T
	select {
	case msg, ok := <-mb.ch:
		if !ok {
			return zero, ErrMailboxClosed
		}
		return msg, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// TryReceive attempts a non-blocking receive. The second return reports
// whether a message was available.
func (mb *Mailbox[T]) TryReceive() (T, bool, error) {
	var zero T
	select {
	case msg, ok := <-mb.ch:
		if !ok {
			return zero, false, ErrMailboxClosed
		}
		return msg, true, nil
	default:
		return zero, false, nil
	}
}

// Close closes the mailbox. Pending messages remain receivable until the
// queue drains; subsequent sends fail with ErrMailboxClosed.
func (mb *Mailbox[T]) Close() {
	if mb.closed.CompareAndSwap(false, true) {
		close(mb.ch)
	}
}

// Cap returns the mailbox capacity.
func (mb *Mailbox[T]) Cap() int { return mb.capacity }

// Len returns the number of queued messages.
func (mb *Mailbox[T]) Len() int { return len(mb.ch) }

// IsClosed reports whether Close has been called.
func (mb *Mailbox[T]) IsClosed() bool { return mb.closed.Load() }
