package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavecraft-audio/wavecraft/internal/conf"
)

func TestNewMetricsRegistersCollectors(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)
	require.NotNil(t, m.Metering)
	require.NotNil(t, m.Scene)

	m.Metering.RecordRunCycle()
	m.Scene.RecordGather(3)

	mux := http.NewServeMux()
	m.RegisterHandlers(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "wavecraft_meter_run_cycles_total 1")
	assert.Contains(t, body, "wavecraft_scene_index_entries 3")
}

func TestNewEndpointRequiresTelemetryEnabled(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)

	settings := &conf.Settings{}
	_, err = NewEndpoint(settings, m)
	assert.Error(t, err)

	settings.Telemetry.Enabled = true
	settings.Telemetry.Listen = "localhost:0"
	e, err := NewEndpoint(settings, m)
	require.NoError(t, err)
	assert.Equal(t, "localhost:0", e.listenAddress)
}
