package observability

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/wavecraft-audio/wavecraft/internal/conf"
	"github.com/wavecraft-audio/wavecraft/internal/errors"
	"github.com/wavecraft-audio/wavecraft/internal/logging"
)

// Endpoint serves the prometheus scrape endpoint over HTTP.
type Endpoint struct {
	server        *http.Server
	listenAddress string
	metrics       *Metrics
	logger        *slog.Logger
}

// NewEndpoint creates a telemetry endpoint from settings and an initialized
// Metrics instance. It fails if telemetry is disabled in the settings.
func NewEndpoint(settings *conf.Settings, m *Metrics) (*Endpoint, error) {
	if !settings.Telemetry.Enabled {
		return nil, errors.Newf("telemetry not enabled in settings").
			Component("observability").
			Category(errors.CategoryConfiguration).
			Build()
	}

	logger := logging.ForService("observability")
	if logger == nil {
		logger = slog.Default()
	}

	return &Endpoint{
		listenAddress: settings.Telemetry.Listen,
		metrics:       m,
		logger:        logger,
	}, nil
}

// Start runs the HTTP server in its own goroutine and shuts it down when
// quitChan closes.
func (e *Endpoint) Start(wg *sync.WaitGroup, quitChan <-chan struct{}) {
	mux := http.NewServeMux()
	e.metrics.RegisterHandlers(mux)

	e.server = &http.Server{
		Addr:              e.listenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		e.logger.Info("telemetry endpoint starting", "address", e.listenAddress)
		if err := e.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			e.logger.Error("telemetry HTTP server error", "error", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-quitChan
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.server.Shutdown(ctx); err != nil {
			e.logger.Error("telemetry endpoint shutdown error", "error", err)
		}
	}()
}
