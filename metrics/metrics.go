// Package metrics exports the node manager signals to prometheus.
package metrics

import (
	"errors"
	"time"

	"github.com/blocktank/lnworker/lightning"
	"github.com/blocktank/lnworker/node"
	"github.com/blocktank/lnworker/nodeman"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "lnworker"

var _ nodeman.Observer = (*Observer)(nil)

type Observer struct {
	nodeUp          *prometheus.GaugeVec
	payments        *prometheus.CounterVec
	paymentDuration *prometheus.HistogramVec
	events          *prometheus.CounterVec
	channelRequests *prometheus.CounterVec
	streamsEnded    *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Observer, error) {
	o := &Observer{
		nodeUp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "node_up",
			Help:      "1 if the node is available, 0 otherwise.",
		}, []string{"node"}),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_total",
			Help:      "Payments by node and outcome.",
		}, []string{"node", "outcome"}),
		paymentDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "payment_duration_seconds",
			Help:      "Time from payment start to outcome.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		}, []string{"node"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_delivered_total",
			Help:      "Events handed to services by category and result.",
		}, []string{"category", "service", "result"}),
		channelRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "channel_requests_total",
			Help:      "Inbound channel requests by decision.",
		}, []string{"node", "decision"}),
		streamsEnded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "streams_ended_total",
			Help:      "Event streams that ended, by node, stream and result.",
		}, []string{"node", "stream", "result"}),
	}
	for _, c := range []prometheus.Collector{
		o.nodeUp, o.payments, o.paymentDuration, o.events, o.channelRequests, o.streamsEnded,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *Observer) NodeHealth(name string, state node.State) {
	up := 0.0
	if state == node.StateAvailable {
		up = 1
	}
	o.nodeUp.WithLabelValues(name).Set(up)
}

func (o *Observer) PaymentFinished(name string, took time.Duration, err error) {
	o.payments.WithLabelValues(name, paymentOutcome(err)).Inc()
	o.paymentDuration.WithLabelValues(name).Observe(took.Seconds())
}

func paymentOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, lightning.ErrPaymentAttemptsTimedOut):
		return "timeout"
	case errors.Is(err, lightning.ErrPaymentAttemptsExhausted):
		return "exhausted"
	case errors.Is(err, lightning.ErrPaymentHasFailed):
		return "failed"
	default:
		return "error"
	}
}

func (o *Observer) EventDelivered(category nodeman.Category, service string, err error) {
	o.events.WithLabelValues(category.String(), service, result(err)).Inc()
}

func (o *Observer) ChannelRequestDecided(name string, accepted bool) {
	decision := "rejected"
	if accepted {
		decision = "accepted"
	}
	o.channelRequests.WithLabelValues(name, decision).Inc()
}

func (o *Observer) StreamEnded(name string, stream string, err error) {
	o.streamsEnded.WithLabelValues(name, stream, result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
