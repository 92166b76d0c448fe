package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath  string
	LogLevel    string
	LogFormat   string
	Debug       bool
	Demo        bool
	ShowVersion bool
	ShowHelp    bool
	Validate    bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	// Flags fall back to environment variables so container deploys
	// can skip the command line entirely
	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("SUPPORTSTREAM_CONFIG", ""),
		"Path to configuration file, empty for defaults (env: SUPPORTSTREAM_CONFIG)")

	flag.StringVar(&cfg.ConfigPath, "c",
		getEnv("SUPPORTSTREAM_CONFIG", ""),
		"Path to configuration file, empty for defaults (env: SUPPORTSTREAM_CONFIG)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("SUPPORTSTREAM_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: SUPPORTSTREAM_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("SUPPORTSTREAM_LOG_FORMAT", "json"),
		"Log format: json, text (env: SUPPORTSTREAM_LOG_FORMAT)")

	flag.BoolVar(&cfg.Debug, "debug",
		getEnvBool("SUPPORTSTREAM_DEBUG", false),
		"Enable debug mode (env: SUPPORTSTREAM_DEBUG)")

	flag.BoolVar(&cfg.Demo, "demo",
		getEnvBool("SUPPORTSTREAM_DEMO", true),
		"Generate synthetic tickets in simulated mode (env: SUPPORTSTREAM_DEMO)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	flag.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")
	flag.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	flag.Usage = func() {
		printDetailedHelp()
	}

	flag.Parse()

	if cfg.Debug {
		cfg.LogLevel = "debug"
	}

	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	if cfg.ConfigPath != "" {
		if _, err := os.Stat(cfg.ConfigPath); err != nil {
			return fmt.Errorf("config file not found: %s", cfg.ConfigPath)
		}
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	validFormats := []string{"json", "text"}
	if !contains(validFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	return nil
}

func printHelp() {
	printDetailedHelp()
}

func printDetailedHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - Support Ticket Sentiment Pipeline

Usage: %s [options]

Options:
`, appName, os.Args[0])
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Examples:
  # Run in simulated mode with synthetic demo tickets
  %s

  # Run against Kafka
  export SUPPORTSTREAM_TRANSPORT_MODE=kafka
  export SUPPORTSTREAM_KAFKA_BROKERS=broker1:9092,broker2:9092
  %s --config=/etc/supportstream/config.json

  # Run against NATS JetStream with a schema registry
  export SUPPORTSTREAM_TRANSPORT_MODE=jetstream
  export SCHEMA_REGISTRY_URL=https://registry.example.com
  %s --log-level=debug --log-format=text

  # Validate configuration only
  %s --config=config.json --validate

Version: %s
Build: %s
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], Version, BuildTime)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
