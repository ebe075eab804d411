// Package metrics provides prometheus collectors for the wavecraft
// processing components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MeteringMetrics contains prometheus metrics for the level metering engine.
type MeteringMetrics struct {
	runCycles     prometheus.Counter
	meterTicks    prometheus.Counter
	reconfigures  prometheus.Counter
	audioChannels prometheus.Gauge
	typeSwitches  *prometheus.CounterVec
}

// NewMeteringMetrics creates and registers metering metrics.
func NewMeteringMetrics(registry *prometheus.Registry) (*MeteringMetrics, error) {
	m := &MeteringMetrics{
		runCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wavecraft_meter_run_cycles_total",
			Help: "Number of real-time cycles processed by the metering engine",
		}),
		meterTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wavecraft_meter_ticks_total",
			Help: "Number of snapshot-and-decay meter ticks",
		}),
		reconfigures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wavecraft_meter_reconfigurations_total",
			Help: "Number of channel reconfigurations",
		}),
		audioChannels: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wavecraft_meter_audio_channels",
			Help: "Currently configured audio channel count",
		}),
		typeSwitches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wavecraft_meter_type_switches_total",
			Help: "Number of algorithm mask switches by new mask",
		}, []string{"mask"}),
	}

	for _, c := range []prometheus.Collector{
		m.runCycles, m.meterTicks, m.reconfigures, m.audioChannels, m.typeSwitches,
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RecordRunCycle counts one real-time metering cycle.
func (m *MeteringMetrics) RecordRunCycle() {
	m.runCycles.Inc()
}

// RecordMeterTick counts one display-cadence meter tick.
func (m *MeteringMetrics) RecordMeterTick() {
	m.meterTicks.Inc()
}

// RecordReconfigure counts a channel reconfiguration and tracks the new
// audio channel count.
func (m *MeteringMetrics) RecordReconfigure(audioChannels int) {
	m.reconfigures.Inc()
	m.audioChannels.Set(float64(audioChannels))
}

// RecordTypeSwitch counts an algorithm mask switch.
func (m *MeteringMetrics) RecordTypeSwitch(mask string) {
	m.typeSwitches.WithLabelValues(mask).Inc()
}
