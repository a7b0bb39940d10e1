package timetravel

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts what the subsystem does each tick. A nil *Metrics records
// nothing.
type Metrics struct {
	ticks              prometheus.Counter
	worldTime          prometheus.Gauge
	furthestTime       prometheus.Gauge
	stored             prometheus.Counter
	restored           *prometheus.CounterVec
	entityErrors       *prometheus.CounterVec
	intervalsCollected prometheus.Counter
	intentsDropped     *prometheus.CounterVec
}

// NewMetrics registers the subsystem metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ticks: f.NewCounter(prometheus.CounterOpts{
			Name: "timecube_ticks_total",
			Help: "Simulation ticks executed",
		}),
		worldTime: f.NewGauge(prometheus.GaugeOpts{
			Name: "timecube_world_time",
			Help: "Current world time in ticks",
		}),
		furthestTime: f.NewGauge(prometheus.GaugeOpts{
			Name: "timecube_furthest_time",
			Help: "Furthest world time ever reached in ticks",
		}),
		stored: f.NewCounter(prometheus.CounterOpts{
			Name: "timecube_snapshots_stored_total",
			Help: "History snapshots stored",
		}),
		restored: f.NewCounterVec(prometheus.CounterOpts{
			Name: "timecube_snapshots_restored_total",
			Help: "History snapshots restored by mode",
		}, []string{"mode"}),
		entityErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "timecube_entity_errors_total",
			Help: "Per-entity store/restore failures by operation",
		}, []string{"op"}),
		intervalsCollected: f.NewCounter(prometheus.CounterOpts{
			Name: "timecube_intervals_collected_total",
			Help: "Recorded intervals dropped by garbage collection",
		}),
		intentsDropped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "timecube_intents_dropped_total",
			Help: "One-shot intents dropped unserviced by kind",
		}, []string{"kind"}),
	}
}

func (m *Metrics) tick(worldTime, furthest int) {
	if m == nil {
		return
	}
	m.ticks.Inc()
	m.worldTime.Set(float64(worldTime))
	m.furthestTime.Set(float64(furthest))
}

func (m *Metrics) store() {
	if m == nil {
		return
	}
	m.stored.Inc()
}

func (m *Metrics) restore(mode string) {
	if m == nil {
		return
	}
	m.restored.WithLabelValues(mode).Inc()
}

func (m *Metrics) entityError(op string) {
	if m == nil {
		return
	}
	m.entityErrors.WithLabelValues(op).Inc()
}

func (m *Metrics) collected(n int) {
	if m == nil {
		return
	}
	m.intervalsCollected.Add(float64(n))
}

func (m *Metrics) dropped(kind IntentKind) {
	if m == nil {
		return
	}
	m.intentsDropped.WithLabelValues(kind.String()).Inc()
}
