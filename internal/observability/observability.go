// Package observability provides prometheus metrics for monitoring the
// wavecraft processing core.
package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wavecraft-audio/wavecraft/internal/observability/metrics"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry *prometheus.Registry
	Metering *metrics.MeteringMetrics
	Scene    *metrics.SceneMetrics
}

// NewMetrics creates a new Metrics instance, initializing all collectors.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	meteringMetrics, err := metrics.NewMeteringMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create metering metrics: %w", err)
	}

	sceneMetrics, err := metrics.NewSceneMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create scene metrics: %w", err)
	}

	return &Metrics{
		registry: registry,
		Metering: meteringMetrics,
		Scene:    sceneMetrics,
	}, nil
}

// RegisterHandlers adds the prometheus scrape endpoint to the given mux.
func (m *Metrics) RegisterHandlers(mux *http.ServeMux) {
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
