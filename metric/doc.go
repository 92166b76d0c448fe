// Package metric provides Prometheus-based metrics collection and an HTTP
// server for pipeline monitoring.
//
// The package offers a centralized metrics registry managing both core
// platform metrics (service status, message counts, broker health) and
// custom component metrics, plus an HTTP server exposing them in
// Prometheus format.
//
// # Basic Usage
//
//	registry := metric.NewMetricsRegistry()
//	server := metric.NewServer(9090, "/metrics", registry)
//
//	go func() {
//	    if err := server.Start(); err != nil {
//	        slog.Error("metrics server error", "error", err)
//	    }
//	}()
//
//	core := registry.CoreMetrics()
//	core.RecordServiceStatus("pipeline", 2)
//	core.RecordMessageProcessed("pipeline", "support-tickets", "success")
//
// Component-specific metrics register through the MetricsRegistrar
// interface, namespaced by service and metric name so two components
// cannot collide.
package metric
