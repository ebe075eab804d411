package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SceneMetrics contains prometheus metrics for the scene automation
// scheduler.
type SceneMetrics struct {
	delivered      prometheus.Counter
	gathers        prometheus.Counter
	indexSize      prometheus.Gauge
	markersCreated prometheus.Counter
	markersDropped prometheus.Counter
	jumpRequests   prometheus.Counter
	locatePending  prometheus.Counter
}

// NewSceneMetrics creates and registers scene scheduler metrics.
func NewSceneMetrics(registry *prometheus.Registry) (*SceneMetrics, error) {
	m := &SceneMetrics{
		delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wavecraft_scene_events_delivered_total",
			Help: "Scene events delivered to the outbound control buffer",
		}),
		gathers: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wavecraft_scene_index_rebuilds_total",
			Help: "Wholesale rebuilds of the scene event index",
		}),
		indexSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wavecraft_scene_index_entries",
			Help: "Entries in the current scene event index",
		}),
		markersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wavecraft_scene_markers_created_total",
			Help: "Timeline markers synthesized from incoming control messages",
		}),
		markersDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wavecraft_scene_markers_dropped_total",
			Help: "Incoming control messages dropped for lack of a marker name",
		}),
		jumpRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wavecraft_scene_jump_requests_total",
			Help: "Transport relocations requested by bank/program matches",
		}),
		locatePending: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wavecraft_scene_locate_pending_total",
			Help: "Locates that found a differing scene without emitting it",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.delivered, m.gathers, m.indexSize, m.markersCreated,
		m.markersDropped, m.jumpRequests, m.locatePending,
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RecordDelivered counts one delivered scene event.
func (m *SceneMetrics) RecordDelivered() {
	m.delivered.Inc()
}

// RecordGather counts an index rebuild and tracks the new index size.
func (m *SceneMetrics) RecordGather(entries int) {
	m.gathers.Inc()
	m.indexSize.Set(float64(entries))
}

// RecordMarkerCreated counts a synthesized timeline marker.
func (m *SceneMetrics) RecordMarkerCreated() {
	m.markersCreated.Inc()
}

// RecordMarkerDropped counts a control message dropped on name exhaustion.
func (m *SceneMetrics) RecordMarkerDropped() {
	m.markersDropped.Inc()
}

// RecordJumpRequest counts a transport relocation request.
func (m *SceneMetrics) RecordJumpRequest() {
	m.jumpRequests.Inc()
}

// RecordLocatePending counts an inert locate hit.
func (m *SceneMetrics) RecordLocatePending() {
	m.locatePending.Inc()
}
