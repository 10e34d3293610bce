package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DispatchMetrics records outcomes of assignment passes.
type DispatchMetrics struct {
	passDuration *prometheus.HistogramVec
	assignments  *prometheus.CounterVec
	deferrals    *prometheus.CounterVec
	queueDepth   prometheus.Gauge
}

// NewDispatchMetrics registers the dispatch metrics on the provided registerer.
func NewDispatchMetrics(reg prometheus.Registerer) *DispatchMetrics {
	if reg == nil {
		return &DispatchMetrics{}
	}
	passDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dispatch_pass_duration_seconds",
		Help:    "Duration of dispatch passes in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	assignments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_assignments_total",
		Help: "Orders assigned to a courier, by match quality score.",
	}, []string{"score"})
	deferrals := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_deferrals_total",
		Help: "Orders left pending after a pass, by reason.",
	}, []string{"reason"})
	queueDepth := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dispatch_queue_depth",
		Help: "Pending queue entries observed at the start of a pass.",
	})
	reg.MustRegister(passDuration, assignments, deferrals, queueDepth)
	return &DispatchMetrics{
		passDuration: passDuration,
		assignments:  assignments,
		deferrals:    deferrals,
		queueDepth:   queueDepth,
	}
}

// ObservePass records the duration of one dispatch pass.
func (d *DispatchMetrics) ObservePass(outcome string, duration time.Duration) {
	if d == nil || d.passDuration == nil {
		return
	}
	d.passDuration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncAssignment counts one assignment bucketed by its criteria score.
func (d *DispatchMetrics) IncAssignment(score string) {
	if d == nil || d.assignments == nil {
		return
	}
	d.assignments.WithLabelValues(normalizeLabel(score)).Inc()
}

// IncDeferral counts one order left pending for the given reason.
func (d *DispatchMetrics) IncDeferral(reason string) {
	if d == nil || d.deferrals == nil {
		return
	}
	d.deferrals.WithLabelValues(normalizeLabel(reason)).Inc()
}

// SetQueueDepth records the pending backlog size.
func (d *DispatchMetrics) SetQueueDepth(depth int) {
	if d == nil || d.queueDepth == nil {
		return
	}
	d.queueDepth.Set(float64(depth))
}
