// Package natsbridge mirrors SystemMessage traffic onto a NATS server so
// external tooling can observe and inject control messages.
//
// Subject mapping:
//   - outbound: <prefix>.out.system
//   - inbound:  <prefix>.in.>
package natsbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/synapseio/synapse/pkg/core"
	"github.com/synapseio/synapse/pkg/core/concurrency"
)

// ModuleName is the bridge module's registry name.
const ModuleName = "natsbridge"

// Options configures the bridge.
type Options struct {
	// Enabled turns the bridge on. Disabled, the module initializes as an
	// inert listener so the module set stays stable across deployments.
	Enabled bool

	// URL is the NATS server URL. Empty means nats.DefaultURL.
	URL string

	// Prefix is prepended to all subjects. Empty means "synapse".
	Prefix string
}

var (
	optsMu sync.Mutex
	opts   Options
)

// Configure sets the bridge options. Call before module registration.
func Configure(o Options) {
	optsMu.Lock()
	defer optsMu.Unlock()
	opts = o
}

// wireMessage is the JSON shape of a SystemMessage on NATS subjects.
type wireMessage struct {
	Source  string `json:"source"`
	Target  string `json:"target"`
	Content string `json:"content"`
}

// Module bridges the in-process bus and NATS.
type Module struct {
	opts   Options
	logger core.Logger

	bus      *core.MessageBus
	nc       *nats.Conn
	sub      *nats.Subscription
	executor concurrency.Executor
	cancel   context.CancelFunc
}

// New builds the module with the configured options.
func New() *Module {
	optsMu.Lock()
	o := opts
	optsMu.Unlock()
	return &Module{
		opts:   o,
		logger: core.NewComponentLogger(ModuleName),
	}
}

func (m *Module) Name() string { return ModuleName }

func (m *Module) Initialize(ctx context.Context, bus *core.MessageBus) error {
	m.bus = bus

	sysType := bus.RegisterMessageType(&core.SystemMessage{})
	if err := bus.Subscribe(sysType, ModuleName); err != nil {
		return err
	}

	if !m.opts.Enabled {
		m.logger.Debug("bridge disabled; not connecting")
		return nil
	}

	url := m.opts.URL
	if url == "" {
		url = nats.DefaultURL
	}

	nc, err := nats.Connect(url, nats.Name("synapse-bridge"))
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", url, err)
	}
	m.nc = nc

	// Inbound handlers run off the NATS callback goroutine on a bounded
	// executor so a burst cannot wedge the connection.
	execCtx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.executor = concurrency.NewExecutor(execCtx, concurrency.ExecutorConfig{
		Workers:   4,
		QueueSize: 256,
	})

	sub, err := nc.Subscribe(m.prefix()+".in.>", m.handleInbound)
	if err != nil {
		nc.Close()
		cancel()
		return fmt.Errorf("subscribing to inbound subjects: %w", err)
	}
	m.sub = sub

	m.logger.Infof("bridge connected to %s with prefix %q", url, m.prefix())
	return nil
}

// ProcessMessage mirrors bus SystemMessages out to NATS. Messages the
// bridge itself injected are skipped to avoid echo loops.
func (m *Module) ProcessMessage(ctx context.Context, env core.Envelope) error {
	if m.nc == nil {
		return nil
	}
	msg, ok := core.PayloadAs[*core.SystemMessage](env)
	if !ok || msg.Source == ModuleName {
		return nil
	}

	data, err := json.Marshal(wireMessage{
		Source:  msg.Source,
		Target:  msg.Target,
		Content: msg.Content,
	})
	if err != nil {
		return fmt.Errorf("encoding system message: %w", err)
	}
	return m.nc.Publish(m.prefix()+".out.system", data)
}

func (m *Module) Shutdown(ctx context.Context) error {
	if m.nc == nil {
		return nil
	}
	if m.sub != nil {
		if err := m.sub.Unsubscribe(); err != nil {
			m.logger.Warnf("unsubscribe: %v", err)
		}
	}

	var err error
	if m.executor != nil {
		execCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = m.executor.Shutdown(execCtx)
		cancel()
	}
	if m.cancel != nil {
		m.cancel()
	}

	if derr := m.nc.Drain(); derr != nil {
		m.nc.Close()
		if err == nil {
			err = derr
		}
	}
	return err
}

func (m *Module) handleInbound(natsMsg *nats.Msg) {
	task := concurrency.NewNamedTask("bridge-inbound", func(ctx context.Context) error {
		var wire wireMessage
		if err := json.Unmarshal(natsMsg.Data, &wire); err != nil {
			return fmt.Errorf("decoding inbound message on %s: %w", natsMsg.Subject, err)
		}
		target := wire.Target
		if target == "" {
			target = "all"
		}
		return m.bus.Publish(&core.SystemMessage{
			Source:  ModuleName,
			Target:  target,
			Content: wire.Content,
		})
	})
	if err := m.executor.Submit(task); err != nil {
		m.logger.Warnf("dropping inbound message on %s: %v", natsMsg.Subject, err)
	}
}

func (m *Module) prefix() string {
	if m.opts.Prefix == "" {
		return "synapse"
	}
	return m.opts.Prefix
}

func init() {
	core.RegisterModuleBuilder(core.ModuleBuildInfo{
		Name:      ModuleName,
		Construct: func() core.Module { return New() },
	})
}
