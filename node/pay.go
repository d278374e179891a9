package node

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/blocktank/lnworker/lightning"
	"github.com/blocktank/lnworker/log"
	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultMaxFeeSat          = 1000
	DefaultPathfindingTimeout = 30 * time.Second

	defaultPayRetryMax     = 10
	defaultPayRetryInitial = 500 * time.Millisecond
)

var errNoSecret = errors.New("payment attempt returned no secret")

// PayRequest is a payment of a bolt11 request. Zero values take the
// defaults.
type PayRequest struct {
	Request            string
	Tokens             uint64
	MaxFeeSat          uint64
	PathfindingTimeout time.Duration
}

// UnmarshalJSON accepts a bare payment request string or an object
// {invoice, amount, max_fee_sat, pathfinding_timeout_ms}.
func (r *PayRequest) UnmarshalJSON(b []byte) error {
	var request string
	if err := json.Unmarshal(b, &request); err == nil {
		*r = PayRequest{Request: request}
		return nil
	}
	var wire struct {
		Invoice              string `json:"invoice"`
		Request              string `json:"request"`
		Amount               uint64 `json:"amount"`
		MaxFeeSat            uint64 `json:"max_fee_sat"`
		PathfindingTimeoutMs int64  `json:"pathfinding_timeout_ms"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	*r = PayRequest{
		Request:            wire.Invoice,
		Tokens:             wire.Amount,
		MaxFeeSat:          wire.MaxFeeSat,
		PathfindingTimeout: time.Duration(wire.PathfindingTimeoutMs) * time.Millisecond,
	}
	if r.Request == "" {
		r.Request = wire.Request
	}
	return nil
}

func (r PayRequest) withDefaults() PayRequest {
	if r.MaxFeeSat == 0 {
		r.MaxFeeSat = DefaultMaxFeeSat
	}
	if r.PathfindingTimeout <= 0 {
		r.PathfindingTimeout = DefaultPathfindingTimeout
	}
	return r
}

// Pay races the payment against the pathfinding timeout. The attempt runs
// under a context that expires with the timeout, so a lost race cancels the
// backend call and any pending retry. A timeout fails with
// lightning.ErrPaymentAttemptsTimedOut.
func (n *Node) Pay(ctx context.Context, req PayRequest) (*lightning.Payment, error) {
	if err := n.ready(); err != nil {
		return nil, err
	}
	if req.Request == "" {
		return nil, errors.New("missing payment request")
	}
	req = req.withDefaults()

	ctx, cancel := context.WithTimeoutCause(ctx, req.PathfindingTimeout, lightning.ErrPaymentAttemptsTimedOut)
	defer cancel()

	type result struct {
		payment *lightning.Payment
		err     error
	}
	done := make(chan result, 1)
	go func() {
		p, err := n.attemptPayment(ctx, req)
		done <- result{payment: p, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil && ctx.Err() != nil {
			return nil, context.Cause(ctx)
		}
		return r.payment, r.err
	case <-ctx.Done():
		log.Infof("[Node %s]: payment timed out after %s", n.name, req.PathfindingTimeout)
		return nil, context.Cause(ctx)
	}
}

func (n *Node) attemptPayment(ctx context.Context, req PayRequest) (*lightning.Payment, error) {
	attempt, err := n.payUntilSecret(ctx, req)
	if err != nil {
		return nil, err
	}
	if attempt.UnknownDetails {
		return &lightning.Payment{Hops: []string{}}, nil
	}

	payment, err := n.backend.GetPayment(ctx, attempt.ID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return paymentFromAttempt(req, attempt), nil
	}
	if !payment.IsConfirmed && payment.IsFailed {
		return nil, lightning.ErrPaymentHasFailed
	}
	if payment.IsPending {
		payment.State = lightning.PaymentStatePendingSettlement
		payment.Secret = lightning.SecretPending
	}
	if payment.Request == "" {
		payment.Request = req.Request
	}
	return payment, nil
}

// payUntilSecret repeats the attempt while it returns without secret, with
// exponential backoff and at most payRetryMax retries. Backend errors and
// failed attempts end the loop.
func (n *Node) payUntilSecret(ctx context.Context, req PayRequest) (*lightning.PayAttempt, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = n.payRetryInitial
	bo.MaxElapsedTime = 0
	bo.Reset()

	var attempt *lightning.PayAttempt
	tries := 0
	err := backoff.Retry(func() error {
		tries++
		a, err := n.backend.PayViaPaymentRequest(ctx, lightning.PayRequest{
			Request:            req.Request,
			Tokens:             req.Tokens,
			MaxFeeSat:          req.MaxFeeSat,
			PathfindingTimeout: req.PathfindingTimeout,
		})
		if err != nil {
			return backoff.Permanent(err)
		}
		if a.UnknownDetails || a.Secret != "" {
			attempt = a
			return nil
		}
		if a.IsFailed {
			return backoff.Permanent(fmt.Errorf("payment %s: %w", a.ID, lightning.ErrPaymentHasFailed))
		}
		log.Debugf("[Node %s]: payment attempt %d returned no secret", n.name, tries)
		return errNoSecret
	}, backoff.WithContext(backoff.WithMaxRetries(bo, n.payRetryMax), ctx))

	switch {
	case err == nil:
		return attempt, nil
	case ctx.Err() != nil:
		return nil, context.Cause(ctx)
	case errors.Is(err, errNoSecret):
		return nil, fmt.Errorf("%d attempts: %w", tries, lightning.ErrPaymentAttemptsExhausted)
	default:
		return nil, err
	}
}

func paymentFromAttempt(req PayRequest, a *lightning.PayAttempt) *lightning.Payment {
	p := &lightning.Payment{
		ID:      a.ID,
		Request: req.Request,
		Secret:  a.Secret,
		Hops:    a.Hops,
		Tokens:  a.Tokens,
		Fee:     a.Fee,
		State:   a.Status.State(),
		Status:  a.Status,
	}
	if p.Hops == nil {
		p.Hops = []string{}
	}
	if a.Secret == lightning.SecretPending {
		p.State = lightning.PaymentStatePendingSettlement
	}
	return p
}
