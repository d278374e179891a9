package node

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/blocktank/lnworker/lightning"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testRequest = "lnbcrt10u1test"

func TestPay_Confirmed(t *testing.T) {
	n, backend := newStartedNode(t)
	backend.EXPECT().PayViaPaymentRequest(gomock.Any(), lightning.PayRequest{
		Request:            testRequest,
		MaxFeeSat:          DefaultMaxFeeSat,
		PathfindingTimeout: DefaultPathfindingTimeout,
	}).Return(&lightning.PayAttempt{
		ID:     "aa",
		Secret: "bb",
		Status: lightning.StatusConfirmed,
	}, nil)
	backend.EXPECT().GetPayment(gomock.Any(), "aa").Return(&lightning.Payment{
		ID:     "aa",
		Secret: "bb",
		Hops:   []string{"pkB"},
		State:  lightning.PaymentStateConfirmed,
		Status: lightning.StatusConfirmed,
	}, nil)

	p, err := n.Pay(context.Background(), PayRequest{Request: testRequest})
	require.NoError(t, err)
	assert.True(t, p.IsConfirmed)
	assert.Equal(t, "bb", p.Secret)
	assert.Equal(t, testRequest, p.Request)
	assert.Equal(t, lightning.PaymentStateConfirmed, p.State)
}

func TestPay_RetriesUntilSecret(t *testing.T) {
	n, backend := newStartedNode(t, WithPayRetry(5, time.Millisecond))
	gomock.InOrder(
		backend.EXPECT().PayViaPaymentRequest(gomock.Any(), gomock.Any()).
			Return(&lightning.PayAttempt{ID: "aa"}, nil).Times(2),
		backend.EXPECT().PayViaPaymentRequest(gomock.Any(), gomock.Any()).
			Return(&lightning.PayAttempt{ID: "aa", Secret: "bb", Status: lightning.StatusConfirmed}, nil),
	)
	backend.EXPECT().GetPayment(gomock.Any(), "aa").Return(&lightning.Payment{
		ID: "aa", Secret: "bb", Status: lightning.StatusConfirmed,
	}, nil)

	p, err := n.Pay(context.Background(), PayRequest{Request: testRequest})
	require.NoError(t, err)
	assert.Equal(t, "bb", p.Secret)
}

func TestPay_AttemptsExhausted(t *testing.T) {
	n, backend := newStartedNode(t, WithPayRetry(2, time.Millisecond))
	backend.EXPECT().PayViaPaymentRequest(gomock.Any(), gomock.Any()).
		Return(&lightning.PayAttempt{ID: "aa"}, nil).Times(3)

	_, err := n.Pay(context.Background(), PayRequest{Request: testRequest})
	require.ErrorIs(t, err, lightning.ErrPaymentAttemptsExhausted)
	assert.True(t, lightning.IsServiceUnavailable(err))
}

func TestPay_FailedAttemptIsNotRetried(t *testing.T) {
	n, backend := newStartedNode(t, WithPayRetry(10, time.Millisecond))
	backend.EXPECT().PayViaPaymentRequest(gomock.Any(), gomock.Any()).
		Return(&lightning.PayAttempt{ID: "aa", Hops: []string{}, Status: lightning.StatusFailed}, nil).Times(1)

	_, err := n.Pay(context.Background(), PayRequest{Request: testRequest})
	require.ErrorIs(t, err, lightning.ErrPaymentHasFailed)
	assert.False(t, lightning.IsServiceUnavailable(err))
}

func TestPay_BackendPaymentFailure(t *testing.T) {
	n, backend := newStartedNode(t, WithPayRetry(10, time.Millisecond))
	failure := fmt.Errorf("FAILURE_REASON_NO_ROUTE: %w", lightning.ErrPaymentHasFailed)
	backend.EXPECT().PayViaPaymentRequest(gomock.Any(), gomock.Any()).Return(nil, failure).Times(1)

	_, err := n.Pay(context.Background(), PayRequest{Request: testRequest})
	require.ErrorIs(t, err, lightning.ErrPaymentHasFailed)
	assert.ErrorContains(t, err, "FAILURE_REASON_NO_ROUTE")
}

func TestPay_TimeoutCancelsAttempt(t *testing.T) {
	n, backend := newStartedNode(t)
	cancelled := make(chan struct{})
	backend.EXPECT().PayViaPaymentRequest(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ lightning.PayRequest) (*lightning.PayAttempt, error) {
			<-ctx.Done()
			close(cancelled)
			return nil, ctx.Err()
		})

	start := time.Now()
	_, err := n.Pay(context.Background(), PayRequest{
		Request:            testRequest,
		PathfindingTimeout: 50 * time.Millisecond,
	})
	require.ErrorIs(t, err, lightning.ErrPaymentAttemptsTimedOut)
	assert.True(t, lightning.IsServiceUnavailable(err))
	assert.Less(t, time.Since(start), 5*time.Second)

	select {
	case <-cancelled:
	case <-time.After(5 * time.Second):
		t.Fatal("attempt was not cancelled")
	}
}

func TestPay_TimeoutStopsRetries(t *testing.T) {
	n, backend := newStartedNode(t, WithPayRetry(10, time.Second))
	backend.EXPECT().PayViaPaymentRequest(gomock.Any(), gomock.Any()).
		Return(&lightning.PayAttempt{ID: "aa"}, nil).Times(1)

	_, err := n.Pay(context.Background(), PayRequest{
		Request:            testRequest,
		PathfindingTimeout: 50 * time.Millisecond,
	})
	require.ErrorIs(t, err, lightning.ErrPaymentAttemptsTimedOut)
	// Let the attempt observe the cancellation before the mock is verified.
	time.Sleep(50 * time.Millisecond)
}

func TestPay_Failed(t *testing.T) {
	n, backend := newStartedNode(t)
	backend.EXPECT().PayViaPaymentRequest(gomock.Any(), gomock.Any()).
		Return(&lightning.PayAttempt{ID: "aa", Secret: "bb"}, nil)
	backend.EXPECT().GetPayment(gomock.Any(), "aa").Return(&lightning.Payment{
		ID: "aa", Status: lightning.StatusFailed,
	}, nil)

	_, err := n.Pay(context.Background(), PayRequest{Request: testRequest})
	assert.ErrorIs(t, err, lightning.ErrPaymentHasFailed)
}

func TestPay_PendingSettlement(t *testing.T) {
	n, backend := newStartedNode(t)
	backend.EXPECT().PayViaPaymentRequest(gomock.Any(), gomock.Any()).
		Return(&lightning.PayAttempt{ID: "aa", Secret: lightning.SecretPending, Status: lightning.StatusPending}, nil)
	backend.EXPECT().GetPayment(gomock.Any(), "aa").Return(&lightning.Payment{
		ID: "aa", State: lightning.PaymentStatePending, Status: lightning.StatusPending,
	}, nil)

	p, err := n.Pay(context.Background(), PayRequest{Request: testRequest})
	require.NoError(t, err)
	assert.True(t, p.IsPending)
	assert.False(t, p.IsConfirmed)
	assert.False(t, p.IsFailed)
	assert.Equal(t, lightning.SecretPending, p.Secret)
	assert.Equal(t, lightning.PaymentStatePendingSettlement, p.State)
}

func TestPay_PaymentNotFound(t *testing.T) {
	n, backend := newStartedNode(t)
	backend.EXPECT().PayViaPaymentRequest(gomock.Any(), gomock.Any()).
		Return(&lightning.PayAttempt{ID: "aa", Secret: "bb", Fee: 2, Status: lightning.StatusConfirmed}, nil)
	backend.EXPECT().GetPayment(gomock.Any(), "aa").Return(nil, nil)

	p, err := n.Pay(context.Background(), PayRequest{Request: testRequest})
	require.NoError(t, err)
	assert.Equal(t, "aa", p.ID)
	assert.Equal(t, "bb", p.Secret)
	assert.EqualValues(t, 2, p.Fee)
	assert.Equal(t, []string{}, p.Hops)
	assert.True(t, p.IsConfirmed)
}

func TestPay_UnknownDetails(t *testing.T) {
	n, backend := newStartedNode(t)
	backend.EXPECT().PayViaPaymentRequest(gomock.Any(), gomock.Any()).
		Return(&lightning.PayAttempt{UnknownDetails: true, Hops: []string{}, Status: lightning.StatusFailed}, nil)

	p, err := n.Pay(context.Background(), PayRequest{Request: testRequest})
	require.NoError(t, err)
	assert.Empty(t, p.Secret)
	assert.Equal(t, []string{}, p.Hops)
}

func TestPay_BackendErrorIsNotRetried(t *testing.T) {
	n, backend := newStartedNode(t, WithPayRetry(5, time.Millisecond))
	transportErr := lightning.NewNodeError(lightning.KindLND, "SendPaymentV2", errors.New("unavailable"))
	backend.EXPECT().PayViaPaymentRequest(gomock.Any(), gomock.Any()).Return(nil, transportErr).Times(1)

	_, err := n.Pay(context.Background(), PayRequest{Request: testRequest})
	var nodeErr *lightning.NodeError
	assert.ErrorAs(t, err, &nodeErr)
}

func TestPay_MissingRequest(t *testing.T) {
	n, _ := newStartedNode(t)
	_, err := n.Pay(context.Background(), PayRequest{})
	assert.Error(t, err)
}

func TestPayRequest_UnmarshalJSON(t *testing.T) {
	var req PayRequest
	require.NoError(t, json.Unmarshal([]byte(`"lnbc1"`), &req))
	assert.Equal(t, PayRequest{Request: "lnbc1"}, req)

	withDefaults := req.withDefaults()
	assert.EqualValues(t, DefaultMaxFeeSat, withDefaults.MaxFeeSat)
	assert.Equal(t, DefaultPathfindingTimeout, withDefaults.PathfindingTimeout)

	require.NoError(t, json.Unmarshal([]byte(`{
		"invoice": "lnbc2",
		"amount": 500,
		"max_fee_sat": 20,
		"pathfinding_timeout_ms": 1500
	}`), &req))
	assert.Equal(t, PayRequest{
		Request:            "lnbc2",
		Tokens:             500,
		MaxFeeSat:          20,
		PathfindingTimeout: 1500 * time.Millisecond,
	}, req)
	assert.Equal(t, req, req.withDefaults())

	assert.Error(t, json.Unmarshal([]byte(`42`), &req))
}
