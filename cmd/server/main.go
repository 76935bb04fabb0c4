// Command server wires configuration, telemetry, the matching core, and
// the HTTP/websocket ingress together into one running process.
package main

import (
	"net/http"

	"github.com/dsirotkin256/matchcore/config"
	"github.com/dsirotkin256/matchcore/engine"
	"github.com/dsirotkin256/matchcore/ingress"
	"github.com/dsirotkin256/matchcore/logging"
	"github.com/dsirotkin256/matchcore/telemetry"
)

func main() {
	cfg := config.Load()
	logger := logging.New()

	metrics := telemetry.NewPrometheusHook()
	hooks := engine.Hooks{
		Trade:        metrics,
		QueueDepth:   metrics,
		MatchLatency: metrics,
	}

	dispatcher := engine.NewDispatcher(cfg.Markets, cfg.Workers, logger, hooks)
	dispatcher.Start()

	srv := ingress.NewServer(dispatcher, cfg.PriceScale, cfg.SnapshotDepth, cfg.AuthToken, cfg.CORSOrigin, logger)

	go func() {
		logger.WithField("addr", cfg.MetricsAddr).Info("serving metrics")
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", metrics.Handler())
		if err := http.ListenAndServe(cfg.MetricsAddr, metricsMux); err != nil {
			logger.WithError(err).Error("metrics server stopped")
		}
	}()

	logger.WithField("addr", cfg.ListenAddr).WithField("markets", cfg.Markets).Info("matchcore listening")
	if err := http.ListenAndServe(cfg.ListenAddr, srv.Routes()); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}
