package natsbridge

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	natssrv "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"

	"github.com/synapseio/synapse/pkg/core"
)

func runTestNATSServer(t *testing.T) *natssrv.Server {
	t.Helper()

	opts := &natssrv.Options{
		Port: -1,
	}
	s, err := natssrv.NewServer(opts)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	go s.Start()
	if !s.ReadyForConnections(5 * time.Second) {
		s.Shutdown()
		t.Fatalf("nats server not ready")
	}
	t.Cleanup(func() {
		s.Shutdown()
	})
	return s
}

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

func TestDisabledBridgeIsInert(t *testing.T) {
	_, reg := newBusAndRegistry(t)

	m := &Module{logger: core.NewComponentLogger(ModuleName)}
	if err := reg.AddModule(context.Background(), m); err != nil {
		t.Fatalf("add module: %v", err)
	}
	if err := reg.UnregisterModule(context.Background(), ModuleName); err != nil {
		t.Fatalf("unregister: %v", err)
	}
}

func TestOutboundSystemMessagesReachNATS(t *testing.T) {
	s := runTestNATSServer(t)
	bus, reg := newBusAndRegistry(t)

	m := &Module{
		opts:   Options{Enabled: true, URL: s.ClientURL(), Prefix: "synapse.test"},
		logger: core.NewComponentLogger(ModuleName),
	}
	if err := reg.AddModule(context.Background(), m); err != nil {
		t.Fatalf("add module: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		reg.UnregisterModule(ctx, ModuleName)
	})

	nc, err := nats.Connect(s.ClientURL())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(nc.Close)

	got := make(chan wireMessage, 1)
	sub, err := nc.Subscribe("synapse.test.out.system", func(msg *nats.Msg) {
		var wire wireMessage
		if err := json.Unmarshal(msg.Data, &wire); err == nil {
			got <- wire
		}
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	t.Cleanup(func() { sub.Unsubscribe() })
	nc.Flush()

	if err := bus.Publish(&core.SystemMessage{Source: "core", Target: "all", Content: "ready"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case wire := <-got:
		if wire.Source != "core" || wire.Content != "ready" {
			t.Fatalf("unexpected wire message: %+v", wire)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for mirrored message on NATS")
	}
}

func TestInboundNATSMessagesReachBus(t *testing.T) {
	s := runTestNATSServer(t)
	_, reg := newBusAndRegistry(t)

	got := make(chan *core.SystemMessage, 1)
	probe := &probeModule{got: got}
	if err := reg.AddModule(context.Background(), probe); err != nil {
		t.Fatalf("add probe: %v", err)
	}

	m := &Module{
		opts:   Options{Enabled: true, URL: s.ClientURL(), Prefix: "synapse.test"},
		logger: core.NewComponentLogger(ModuleName),
	}
	if err := reg.AddModule(context.Background(), m); err != nil {
		t.Fatalf("add module: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		reg.UnregisterModule(ctx, ModuleName)
	})

	nc, err := nats.Connect(s.ClientURL())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(nc.Close)

	data, _ := json.Marshal(wireMessage{Target: "all", Content: "external ping"})
	if err := nc.Publish("synapse.test.in.control", data); err != nil {
		t.Fatalf("nats publish: %v", err)
	}
	nc.Flush()

	select {
	case msg := <-got:
		if msg.Source != ModuleName || msg.Content != "external ping" {
			t.Fatalf("unexpected bus message: %+v", msg)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for injected bus message")
	}
}

// probeModule records SystemMessages not originated by the bridge probe
// itself.
type probeModule struct {
	got chan *core.SystemMessage
}

func (p *probeModule) Name() string { return "probe" }

func (p *probeModule) Initialize(ctx context.Context, bus *core.MessageBus) error {
	return bus.Subscribe(bus.RegisterMessageType(&core.SystemMessage{}), "probe")
}

func (p *probeModule) ProcessMessage(ctx context.Context, env core.Envelope) error {
	if msg, ok := core.PayloadAs[*core.SystemMessage](env); ok && msg.Source == ModuleName {
		p.got <- msg
	}
	return nil
}

func (p *probeModule) Shutdown(ctx context.Context) error { return nil }
