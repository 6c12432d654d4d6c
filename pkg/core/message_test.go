package core

import "testing"

func TestNewEnvelopeCapturesTypeAndPayload(t *testing.T) {
	msg := &ping{Seq: 3}
	env := NewEnvelope(msg)

	if env.Type != MessageTypeOf(&ping{}) {
		t.Fatalf("envelope type %v does not match message type", env.Type)
	}
	if env.ID == "" {
		t.Fatal("expected a non-empty envelope ID")
	}
	if env.Payload != any(msg) {
		t.Fatal("envelope must share the payload, not copy it")
	}
}

func TestEnvelopeIDsAreUnique(t *testing.T) {
	a := NewEnvelope(&ping{Seq: 1})
	b := NewEnvelope(&ping{Seq: 1})
	if a.ID == b.ID {
		t.Fatalf("two envelopes share ID %s", a.ID)
	}
}

func TestPayloadAs(t *testing.T) {
	env := NewEnvelope(&ping{Seq: 9})

	p, ok := PayloadAs[*ping](env)
	if !ok || p.Seq != 9 {
		t.Fatalf("expected checked downcast to succeed, got %v %v", p, ok)
	}
	if _, ok := PayloadAs[*pong](env); ok {
		t.Fatal("downcast to the wrong type must fail")
	}
}

func TestMessageTypeOfDistinguishesPointerShapes(t *testing.T) {
	if MessageTypeOf(&ping{}) == MessageTypeOf(ping{}) {
		t.Fatal("pointer and value shapes must be distinct routing identities")
	}
}
