package metrics

import (
	"calendar-sync/core/reconcile"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "calendar_sync"

// Recorder holds the pass collectors.
type Recorder struct {
	PassesTotal    *prometheus.CounterVec
	PassDuration   prometheus.Histogram
	EventsTotal    *prometheus.CounterVec
	ErrorsTotal    *prometheus.CounterVec
	OrphansDeleted prometheus.Counter
	LastSuccess    prometheus.Gauge
	PassRunning    prometheus.Gauge
}

// NewRecorder registers the collectors on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		PassesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passes_total",
			Help:      "Total number of reconciliation passes by outcome",
		}, []string{"outcome"}),

		PassDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pass_duration_seconds",
			Help:      "Duration of reconciliation passes in seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),

		EventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Events processed by direction and result",
		}, []string{"direction", "result"}),

		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Errors by stage",
		}, []string{"stage"}),

		OrphansDeleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orphans_deleted_total",
			Help:      "Mirrors deleted because their primary event vanished",
		}),

		LastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last pass that finished without errors",
		}),

		PassRunning: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pass_running",
			Help:      "1 while a pass is in progress",
		}),
	}
}

// ObservePass records the outcome of one pass. summary may be nil when err is set.
func (r *Recorder) ObservePass(summary *reconcile.PassSummary, err error) {
	if summary != nil && !summary.FinishedAt.IsZero() {
		r.PassDuration.Observe(summary.FinishedAt.Sub(summary.StartedAt).Seconds())
	}

	switch {
	case err != nil:
		r.PassesTotal.WithLabelValues("failed").Inc()
		r.ErrorsTotal.WithLabelValues("pass").Inc()
		return
	case summary == nil:
		return
	case summary.TotalErrors() > 0:
		r.PassesTotal.WithLabelValues("degraded").Inc()
	default:
		r.PassesTotal.WithLabelValues("ok").Inc()
		r.LastSuccess.Set(float64(summary.FinishedAt.Unix()))
	}

	r.observeDirection("a_to_b", summary.AToB)
	r.observeDirection("b_to_a", summary.BToA)
	r.OrphansDeleted.Add(float64(summary.OrphansDeleted))

	r.ErrorsTotal.WithLabelValues("fetch").Add(float64(summary.FetchErrors))
	r.ErrorsTotal.WithLabelValues("ledger").Add(float64(summary.LedgerErrors))
	r.ErrorsTotal.WithLabelValues("orphan").Add(float64(summary.OrphanErrors))
	r.ErrorsTotal.WithLabelValues("write").Add(float64(summary.AToB.Errors + summary.BToA.Errors))
}

func (r *Recorder) observeDirection(direction string, s reconcile.DirectionStats) {
	r.EventsTotal.WithLabelValues(direction, "created").Add(float64(s.Created))
	r.EventsTotal.WithLabelValues(direction, "updated").Add(float64(s.Updated))
	r.EventsTotal.WithLabelValues(direction, "unchanged").Add(float64(s.Unchanged))
	r.EventsTotal.WithLabelValues(direction, "skipped_duplicate").Add(float64(s.SkippedDuplicate))
}
