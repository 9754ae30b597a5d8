// Package metrics exports canopy container transitions to Prometheus.
//
//	m := metrics.New(prometheus.DefaultRegisterer)
//	sheets.AddCallbackReceiver(m.Receiver(sheets.Name()))
package metrics

import (
	"time"

	"github.com/phanxgames/canopy"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the transition metrics shared by every container.
type Collector struct {
	transitions *prometheus.CounterVec
	aborted     *prometheus.CounterVec
	inFlight    *prometheus.GaugeVec
	duration    *prometheus.HistogramVec

	now func() time.Time
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "canopy_transitions_total",
				Help: "Completed container transitions.",
			},
			[]string{"container", "op"},
		),
		aborted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "canopy_transitions_aborted_total",
				Help: "Transitions abandoned by Recover or Dispose.",
			},
			[]string{"container", "op"},
		),
		inFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "canopy_transitions_in_flight",
				Help: "Transitions currently running.",
			},
			[]string{"container"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "canopy_transition_duration_seconds",
				Help:    "Wall time from the start of a transition to its completion.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
			},
			[]string{"container", "op"},
		),
		now: time.Now,
	}
	reg.MustRegister(c.transitions, c.aborted, c.inFlight, c.duration)
	return c
}

// Receiver returns a CallbackReceiver that records transitions of the
// container named container.
func (c *Collector) Receiver(container string) canopy.CallbackReceiver {
	return &receiver{c: c, container: container}
}

type receiver struct {
	c         *Collector
	container string
	started   time.Time
}

func (r *receiver) BeforeTransition(tr canopy.Transition) {
	r.started = r.c.now()
	r.c.inFlight.WithLabelValues(r.container).Inc()
}

func (r *receiver) AfterTransition(tr canopy.Transition) {
	op := tr.Op.String()
	r.c.inFlight.WithLabelValues(r.container).Dec()
	r.c.transitions.WithLabelValues(r.container, op).Inc()
	r.c.duration.WithLabelValues(r.container, op).Observe(r.c.now().Sub(r.started).Seconds())
}

func (r *receiver) TransitionAborted(tr canopy.Transition, err error) {
	r.c.inFlight.WithLabelValues(r.container).Dec()
	r.c.aborted.WithLabelValues(r.container, tr.Op.String()).Inc()
}
