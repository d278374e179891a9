package lnd

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/blocktank/lnworker/lightning"
	"github.com/blocktank/lnworker/log"
	"github.com/lightningnetwork/lnd/lnrpc"
	"github.com/lightningnetwork/lnd/lnrpc/routerrpc"
)

// PayViaPaymentRequest sends the payment and follows its updates until it
// leaves the in flight state or ctx is done.
func (l *Client) PayViaPaymentRequest(ctx context.Context, req lightning.PayRequest) (*lightning.PayAttempt, error) {
	sendReq := &routerrpc.SendPaymentRequest{
		PaymentRequest:    req.Request,
		Amt:               int64(req.Tokens),
		FeeLimitSat:       int64(req.MaxFeeSat),
		NoInflightUpdates: true,
	}
	if req.PathfindingTimeout > 0 {
		sendReq.TimeoutSeconds = int32(req.PathfindingTimeout.Round(time.Second) / time.Second)
		if sendReq.TimeoutSeconds == 0 {
			sendReq.TimeoutSeconds = 1
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := l.routerClient.SendPaymentV2(ctx, sendReq)
	if err != nil {
		return nil, nodeErr("SendPaymentV2", err)
	}

	for {
		p, err := stream.Recv()
		if err != nil {
			return nil, nodeErr("SendPaymentV2", err)
		}

		switch p.Status {
		case lnrpc.Payment_IN_FLIGHT, lnrpc.Payment_UNKNOWN:
			continue
		case lnrpc.Payment_SUCCEEDED:
			return &lightning.PayAttempt{
				ID:     p.PaymentHash,
				Secret: p.PaymentPreimage,
				Hops:   paymentHops(p),
				Tokens: lightning.MsatToSat(uint64(p.ValueMsat)),
				Fee:    lightning.MsatToSat(uint64(p.FeeMsat)),
				Status: lightning.StatusConfirmed,
			}, nil
		case lnrpc.Payment_FAILED:
			log.Debugf("[LndClient]: payment %s failed: %s", p.PaymentHash, p.FailureReason)
			if p.FailureReason != lnrpc.PaymentFailureReason_FAILURE_REASON_INCORRECT_PAYMENT_DETAILS {
				return nil, fmt.Errorf("%s: %w", p.FailureReason, lightning.ErrPaymentHasFailed)
			}
			return &lightning.PayAttempt{
				ID:             p.PaymentHash,
				Hops:           []string{},
				UnknownDetails: true,
				Status:         lightning.StatusFailed,
			}, nil
		default:
			// Initiated payments have no htlc in flight yet.
			continue
		}
	}
}

// GetPayment reads the current state of an outgoing payment.
func (l *Client) GetPayment(ctx context.Context, id string) (*lightning.Payment, error) {
	hash, err := hex.DecodeString(id)
	if err != nil {
		return nil, fmt.Errorf("invalid payment hash %q: %w", id, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := l.routerClient.TrackPaymentV2(ctx, &routerrpc.TrackPaymentRequest{
		PaymentHash: hash,
	})
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, nodeErr("TrackPaymentV2", err)
	}

	// The first update carries the current state.
	p, err := stream.Recv()
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, nodeErr("TrackPaymentV2", err)
	}
	return toPayment(p), nil
}

func (l *Client) ListPayments(ctx context.Context, req lightning.PaymentsRequest) ([]lightning.Payment, error) {
	res, err := l.lndClient.ListPayments(ctx, &lnrpc.ListPaymentsRequest{
		IncludeIncomplete: true,
		MaxPayments:       uint64(req.Limit),
		Reversed:          true,
	})
	if err != nil {
		return nil, nodeErr("ListPayments", err)
	}
	payments := make([]lightning.Payment, 0, len(res.Payments))
	for _, p := range res.Payments {
		payments = append(payments, *toPayment(p))
	}
	return payments, nil
}

func (l *Client) GetForwards(ctx context.Context, req lightning.ForwardsRequest) ([]lightning.Forward, error) {
	fwReq := &lnrpc.ForwardingHistoryRequest{
		NumMaxEvents: uint32(req.Limit),
	}
	if req.After > 0 {
		fwReq.StartTime = uint64(req.After / 1000)
	}
	if req.Before > 0 {
		fwReq.EndTime = uint64(req.Before / 1000)
	}
	res, err := l.lndClient.ForwardingHistory(ctx, fwReq)
	if err != nil {
		return nil, nodeErr("ForwardingHistory", err)
	}
	forwards := make([]lightning.Forward, 0, len(res.ForwardingEvents))
	for _, ev := range res.ForwardingEvents {
		forwards = append(forwards, lightning.Forward{
			InChannel:  scid(ev.ChanIdIn),
			OutChannel: scid(ev.ChanIdOut),
			Tokens:     lightning.MsatToSat(ev.AmtOutMsat),
			Fee:        lightning.MsatToSat(ev.FeeMsat),
			CreatedAt:  lightning.UnixNanoToMillis(int64(ev.TimestampNs)),
			Status:     lightning.StatusConfirmed,
		})
	}
	return forwards, nil
}
