package main

import (
	"churnetl/internal/config"
	"churnetl/internal/logger"
	"churnetl/internal/metrics"
	"churnetl/internal/metrics/datadog"
	"churnetl/internal/metrics/prompush"
)

// setupMetrics installs the configured backend and returns the function that
// flushes it at exit. Initialization failures fall back to the no-op backend.
func setupMetrics(cfg config.Config, log *logger.Logger) func() {
	var (
		b   metrics.Backend
		err error
	)
	switch cfg.Metrics.Backend {
	case "prompush":
		b, err = prompush.NewBackend(cfg.Job, cfg.Metrics.PushgatewayURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       cfg.Metrics.DatadogAddr,
			Namespace:  "churnetl.",
			GlobalTags: []string{"job:" + cfg.Job},
		})
	default:
		log.Debug("metrics: disabled", "backend", cfg.Metrics.Backend)
		return func() {}
	}
	if err != nil {
		log.Warn("metrics: backend init failed; metrics disabled", "backend", cfg.Metrics.Backend, "error", err)
		return func() {}
	}

	metrics.SetBackend(b)
	log.Info("metrics: enabled", "backend", cfg.Metrics.Backend)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warn("metrics: flush failed", "error", err)
		}
	}
}
