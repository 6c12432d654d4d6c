// Command synapsed runs the message bus host: it loads configuration,
// registers every discovered module, and coordinates shutdown on OS signals
// or a module-raised exit.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/synapseio/synapse/pkg/config"
	"github.com/synapseio/synapse/pkg/core"
	"github.com/synapseio/synapse/pkg/modules/i18n"
	"github.com/synapseio/synapse/pkg/modules/natsbridge"
	obsprom "github.com/synapseio/synapse/pkg/observability/prometheus"

	// Modules register themselves with the discovery table at init.
	_ "github.com/synapseio/synapse/pkg/modules/uihost"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML or JSON config file")
	flag.Parse()

	cfg := config.Default()
	if err := config.LoadWithEnv(*configPath, "SYNAPSE", cfg); err != nil {
		fatal(core.NewComponentLogger("main"), "loading configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		fatal(core.NewComponentLogger("main"), "invalid configuration: %v", err)
	}

	core.ConfigureLogging(cfg.Log.Level)
	logger := core.NewComponentLogger("main")

	lang, err := i18n.ParseLanguage(cfg.I18n.DefaultLanguage)
	if err != nil {
		fatal(logger, "invalid configuration: %v", err)
	}
	i18n.Configure(lang, cfg.I18n.TranslationsDir)
	natsbridge.Configure(natsbridge.Options{
		Enabled: cfg.Bridge.Enabled,
		URL:     cfg.Bridge.URL,
		Prefix:  cfg.Bridge.Prefix,
	})

	deliveryTimeout, err := cfg.Bus.DeliveryTimeoutDuration()
	if err != nil {
		fatal(logger, "invalid configuration: %v", err)
	}

	metrics := core.NopMetrics()
	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		metrics = obsprom.GetMetrics()
		metricsSrv = startMetricsServer(cfg.Metrics.Addr, logger)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := core.NewMessageBus(ctx, core.BusOptions{
		ChannelCapacity: cfg.Bus.ChannelCapacity,
		DeliveryTimeout: deliveryTimeout,
		Metrics:         metrics,
	})
	registry := core.NewModuleRegistry(bus)

	if err := registry.RegisterAllModules(ctx); err != nil {
		logger.Errorf("module registration failed: %v", err)
		os.Exit(1)
	}

	bus.RegisterMessageType(&core.SystemMessage{})
	if err := bus.Publish(&core.SystemMessage{
		Source:  "core",
		Target:  "all",
		Content: "startup complete",
	}); err != nil {
		logger.Warnf("startup announcement: %v", err)
	}
	logger.Infof("synapsed running with modules %v", registry.ListModules())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sig:
		logger.Infof("received signal %s, shutting down", s)
	case <-registry.ExitSignal():
		logger.Info("exit requested by a module, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	for _, name := range registry.ListModules() {
		if err := registry.UnregisterModule(shutdownCtx, name); err != nil {
			logger.Warnf("unregistering %s: %v", name, err)
		}
	}
	bus.Close()

	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("metrics server shutdown: %v", err)
		}
	}
	logger.Info("shutdown complete")
}

func startMetricsServer(addr string, logger core.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", obsprom.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Infof("metrics listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("metrics server: %v", err)
		}
	}()
	return srv
}

func fatal(logger core.Logger, format string, args ...any) {
	logger.Errorf(format, args...)
	os.Exit(1)
}
