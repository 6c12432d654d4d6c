package core

import (
	"reflect"

	"github.com/google/uuid"
)

// Envelope pairs a message's runtime type identity with a shared handle to
// its payload. The payload is shared, never copied, across fan-out
// deliveries; subscribers must treat it as read-only. Type always matches
// the concrete type of Payload.
type Envelope struct {
	Type    reflect.Type
	ID      string
	Payload any
}

// NewEnvelope wraps msg for routing, assigning a message ID used in logs.
func NewEnvelope(msg any) Envelope {
	return Envelope{
		Type:    reflect.TypeOf(msg),
		ID:      uuid.NewString(),
		Payload: msg,
	}
}

// PayloadAs extracts the payload as a T. The second return reports whether
// the envelope carries that type; subscribers use this as the checked
// downcast before handling a message.
func PayloadAs[T any](env Envelope) (T, bool) {
	v, ok := env.Payload.(T)
	return v, ok
}

// MessageTypeOf returns the routing identity the bus uses for msg. Publish a
// pointer and pass the same pointer shape here.
func MessageTypeOf(msg any) reflect.Type {
	return reflect.TypeOf(msg)
}

// SystemMessage is the built-in control message used for framework-level
// notifications. Target is "all" or a specific module name; modules decide
// relevance themselves.
type SystemMessage struct {
	Source  string
	Target  string
	Content string
}
