package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/blocktank/lnworker/lightning"
	"github.com/blocktank/lnworker/node"
	"github.com/blocktank/lnworker/nodeman"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newObserver(t *testing.T) *Observer {
	t.Helper()
	o, err := New(prometheus.NewRegistry())
	require.NoError(t, err)
	return o
}

func TestNodeHealth(t *testing.T) {
	o := newObserver(t)

	o.NodeHealth("node-a", node.StateAvailable)
	o.NodeHealth("node-b", node.StateUnavailable)

	assert.Equal(t, 1.0, testutil.ToFloat64(o.nodeUp.WithLabelValues("node-a")))
	assert.Equal(t, 0.0, testutil.ToFloat64(o.nodeUp.WithLabelValues("node-b")))
}

func TestPaymentFinished(t *testing.T) {
	o := newObserver(t)

	o.PaymentFinished("node-a", time.Second, nil)
	o.PaymentFinished("node-a", 30*time.Second, lightning.ErrPaymentAttemptsTimedOut)
	o.PaymentFinished("node-a", time.Second, fmt.Errorf("3 attempts: %w", lightning.ErrPaymentAttemptsExhausted))
	o.PaymentFinished("node-a", time.Second, lightning.ErrPaymentHasFailed)
	o.PaymentFinished("node-a", time.Second, errors.New("connection reset"))

	for _, outcome := range []string{"ok", "timeout", "exhausted", "failed", "error"} {
		assert.Equal(t, 1.0, testutil.ToFloat64(o.payments.WithLabelValues("node-a", outcome)), outcome)
	}
	assert.Equal(t, 1, testutil.CollectAndCount(o.paymentDuration))
}

func TestEventsAndDecisions(t *testing.T) {
	o := newObserver(t)

	o.EventDelivered(nodeman.CategoryForward, "svc:forwards", nil)
	o.EventDelivered(nodeman.CategoryForward, "svc:forwards", nil)
	o.EventDelivered(nodeman.CategoryChannelRequest, "svc:acceptor", errors.New("down"))
	o.ChannelRequestDecided("node-a", false)
	o.StreamEnded("node-a", "htlc_forward", errors.New("eof"))

	assert.Equal(t, 2.0, testutil.ToFloat64(o.events.WithLabelValues("htlc_forward", "svc:forwards", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.events.WithLabelValues("channel_acceptor", "svc:acceptor", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.channelRequests.WithLabelValues("node-a", "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.streamsEnded.WithLabelValues("node-a", "htlc_forward", "error")))
}

func TestNew_DoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.Error(t, err)
}
