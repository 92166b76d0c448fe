// Package main implements the entry point for the SupportStream
// pipeline. SupportStream consumes raw support tickets, scores their
// sentiment and urgency, decides escalation, and publishes an AI
// response for every ticket.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/c360/supportstream/analyze"
	"github.com/c360/supportstream/config"
	"github.com/c360/supportstream/envelope"
	"github.com/c360/supportstream/metric"
	"github.com/c360/supportstream/pipeline"
	"github.com/c360/supportstream/respond"
	"github.com/c360/supportstream/schema"
	"github.com/c360/supportstream/ticket"
	"github.com/c360/supportstream/transport"
	"github.com/c360/supportstream/transport/jet"
	"github.com/c360/supportstream/transport/kafkatransport"
	"github.com/c360/supportstream/transport/sim"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "supportstream"
)

const statsInterval = 30 * time.Second

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	// Local development reads credentials from .env when present
	_ = godotenv.Load()

	cliCfg, logger, shouldExit, err := initializeCLI()
	if shouldExit || err != nil {
		return err
	}

	cfg, err := initializeConfiguration(cliCfg)
	if err != nil {
		return err
	}

	if cliCfg.Validate {
		slog.Info("Configuration is valid")
		return nil
	}

	ctx := context.Background()

	metricsRegistry := metric.NewMetricsRegistry()
	channel := buildSchemaChannel(ctx, cfg, logger)

	tp, err := buildTransport(ctx, cfg, cliCfg, channel, metricsRegistry.CoreMetrics(), logger)
	if err != nil {
		return err
	}

	pipe := pipeline.New(cfg, tp, channel,
		analyze.NewAnalyzer(analyze.NewLexiconScorer(), cfg.StageTimeout(), "lexicon-v1", logger),
		respond.NewStage(respond.NewTemplateResponder(), cfg.StageTimeout(), "template-v1", logger),
		metricsRegistry, logger)

	var metricsServer *metric.Server
	if cfg.Metrics.Enabled {
		metricsServer = startMetricsServer(cfg, metricsRegistry)
	}

	return runWithSignalHandling(ctx, cfg, pipe, tp, metricsServer)
}

// initializeCLI parses flags and sets up logging
func initializeCLI() (*CLIConfig, *slog.Logger, bool, error) {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return nil, nil, false, fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil, nil, true, nil
	}

	if cliCfg.ShowHelp {
		printHelp()
		return nil, nil, true, nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	slog.Info("Starting SupportStream (ticket sentiment pipeline)",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath)

	return cliCfg, logger, false, nil
}

// initializeConfiguration loads and validates configuration
func initializeConfiguration(cliCfg *CLIConfig) (*config.Config, error) {
	cfg, err := config.Load(cliCfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// buildSchemaChannel wires the schema authority when a registry URL is
// configured, and registers the pipeline schemas with it
func buildSchemaChannel(ctx context.Context, cfg *config.Config, logger *slog.Logger) *schema.Channel {
	specs := schema.PipelineSpecs(cfg.Topics.Raw, cfg.Topics.Processed, cfg.Topics.Responses)
	codec := envelope.NewCodec(cfg.Envelope.Enabled)

	var authority *schema.Authority
	if cfg.SchemaRegistry.URL != "" {
		authority = schema.NewAuthority(cfg.SchemaRegistry.URL,
			cfg.SchemaRegistry.APIKey, cfg.SchemaRegistry.APISecret, cfg.RegistryTimeout())
		slog.Info("Schema registry configured", "url", cfg.SchemaRegistry.URL)
	} else {
		slog.Info("No schema registry configured, using textual encoding",
			"envelope", cfg.Envelope.Enabled)
	}

	channel := schema.NewChannel(authority, codec, specs, logger)
	if authority != nil {
		channel.RegisterSchemas(ctx)
	}
	return channel
}

// buildTransport creates the transport selected by configuration
func buildTransport(
	ctx context.Context,
	cfg *config.Config,
	cliCfg *CLIConfig,
	channel *schema.Channel,
	metrics *metric.Metrics,
	logger *slog.Logger,
) (transport.Transport, error) {
	switch cfg.Transport.Mode {
	case config.ModeKafka:
		slog.Info("Using Kafka transport", "brokers", cfg.Transport.Kafka.Brokers)
		return kafkatransport.New(cfg.Transport.Kafka.Brokers, cfg.Transport.Kafka.GroupID, logger)

	case config.ModeJetStream:
		slog.Info("Using JetStream transport", "urls", cfg.Transport.JetStream.URLs)
		return jet.New(ctx, cfg.Transport.JetStream.URLs, cfg.Transport.JetStream.Durable, metrics, logger)

	case config.ModeSimulated:
		opts := []sim.Option{}
		if cliCfg.Demo && cfg.DemoInterval() > 0 {
			opts = append(opts, sim.WithDemoTraffic(cfg.Topics.Raw, cfg.DemoInterval(),
				demoSource(cfg, channel)))
		}
		bus := sim.NewBus(cfg.Transport.Simulated.QueueSize, logger, opts...)
		if err := bus.Start(ctx); err != nil {
			return nil, fmt.Errorf("start simulated transport: %w", err)
		}
		slog.Info("Using simulated transport", "demo", cliCfg.Demo)
		return bus, nil

	default:
		return nil, fmt.Errorf("unknown transport mode: %s", cfg.Transport.Mode)
	}
}

// demoSource feeds synthetic tickets through the same encoding path
// real producers use
func demoSource(cfg *config.Config, channel *schema.Channel) sim.DemoSource {
	gen := ticket.NewDemoGenerator()
	return func() ([]byte, error) {
		tk := gen.Next()
		data, err := json.Marshal(tk)
		if err != nil {
			return nil, err
		}
		return channel.Encode(context.Background(), cfg.Topics.Raw, tk.TicketID, data)
	}
}

func startMetricsServer(cfg *config.Config, registry *metric.MetricsRegistry) *metric.Server {
	server := metric.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, registry)
	go func() {
		slog.Info("Metrics server listening", "address", server.Address(), "path", cfg.Metrics.Path)
		if err := server.Start(); err != nil {
			slog.Error("Metrics server failed", "error", err)
		}
	}()
	return server
}

// runWithSignalHandling starts the pipeline and handles shutdown signals
func runWithSignalHandling(
	ctx context.Context,
	cfg *config.Config,
	pipe *pipeline.Pipeline,
	tp transport.Transport,
	metricsServer *metric.Server,
) error {
	signalCtx, signalCancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	if err := pipe.Start(signalCtx); err != nil {
		return fmt.Errorf("start pipeline: %w", err)
	}
	slog.Info("SupportStream started successfully")

	go logStats(signalCtx, pipe)

	<-signalCtx.Done()
	slog.Info("Received shutdown signal")

	return shutdown(cfg, pipe, tp, metricsServer)
}

// logStats periodically logs the tally the dashboard polls
func logStats(ctx context.Context, pipe *pipeline.Pipeline) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := pipe.Snapshot()
			slog.Info("Pipeline tally",
				"total", stats.Total,
				"responded", stats.ByState[pipeline.StateResponded],
				"failed", stats.ByState[pipeline.StateFailed],
				"escalations", stats.Escalations,
				"by_sentiment", stats.BySentiment)
		}
	}
}

// shutdown stops the pipeline, then the transport, then the metrics
// server, bounded by the configured shutdown timeout
func shutdown(
	cfg *config.Config,
	pipe *pipeline.Pipeline,
	tp transport.Transport,
	metricsServer *metric.Server,
) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()

	var firstErr error
	if err := pipe.Stop(); err != nil {
		slog.Error("Pipeline stop failed", "error", err)
		firstErr = err
	}

	if err := tp.Close(shutdownCtx); err != nil {
		slog.Error("Transport close failed", "error", err)
		if firstErr == nil {
			firstErr = err
		}
	}

	if metricsServer != nil {
		if err := metricsServer.Stop(); err != nil {
			slog.Error("Metrics server stop failed", "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if firstErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", firstErr)
	}

	slog.Info("SupportStream shutdown complete")
	return nil
}
