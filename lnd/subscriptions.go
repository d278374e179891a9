package lnd

import (
	"context"
	"encoding/hex"
	"errors"
	"io"
	"sync"

	"github.com/blocktank/lnworker/lightning"
	"github.com/blocktank/lnworker/log"
	"github.com/lightningnetwork/lnd/lnrpc"
	"github.com/lightningnetwork/lnd/lnrpc/routerrpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// shouldStopReceiving is true for errors caused by our own cancellation or a
// clean close by lnd. These end the stream without error.
func shouldStopReceiving(err error, ctx context.Context) bool {
	if errors.Is(err, io.EOF) {
		return true
	}
	if ctx.Err() != nil {
		return true
	}
	return status.Code(err) == codes.Canceled
}

// pump forwards converted messages of a grpc stream until it ends. Messages
// convert fails on are dropped.
func pump[R any, T any](ctx context.Context, name string, recv func() (R, error), out *lightning.Stream[T], convert func(R) ([]T, error)) {
	log.Infof("[%s]: Start listening", name)
	for {
		msg, err := recv()
		if err != nil {
			if shouldStopReceiving(err, ctx) {
				log.Infof("[%s]: Stream closed", name)
				out.Finish(nil)
				return
			}
			log.Infof("[%s]: Stream closed with err: %v", name, err)
			out.Finish(nodeErr(name, err))
			return
		}

		events, err := convert(msg)
		if err != nil {
			log.Debugf("[%s]: dropping message: %v", name, err)
			continue
		}
		for _, ev := range events {
			if !out.Send(ctx, ev) {
				out.Finish(nil)
				return
			}
		}
	}
}

func one[T any](v T) ([]T, error) {
	return []T{v}, nil
}

func (l *Client) SubscribeToInvoices(ctx context.Context) (*lightning.Stream[lightning.Invoice], error) {
	ctx, cancel := context.WithCancel(ctx)
	stream, err := l.lndClient.SubscribeInvoices(ctx, &lnrpc.InvoiceSubscription{})
	if err != nil {
		cancel()
		return nil, nodeErr("SubscribeInvoices", err)
	}
	out := lightning.NewStream[lightning.Invoice](cancel)
	go pump(ctx, "InvoiceListener", stream.Recv, out, func(inv *lnrpc.Invoice) ([]lightning.Invoice, error) {
		return one(*toInvoice(inv))
	})
	return out, nil
}

// SubscribeToPayments follows outgoing payments that reach a final state.
func (l *Client) SubscribeToPayments(ctx context.Context) (*lightning.Stream[lightning.Payment], error) {
	ctx, cancel := context.WithCancel(ctx)
	stream, err := l.routerClient.TrackPayments(ctx, &routerrpc.TrackPaymentsRequest{
		NoInflightUpdates: true,
	})
	if err != nil {
		cancel()
		return nil, nodeErr("TrackPayments", err)
	}
	out := lightning.NewStream[lightning.Payment](cancel)
	go pump(ctx, "PaymentListener", stream.Recv, out, func(p *lnrpc.Payment) ([]lightning.Payment, error) {
		return one(*toPayment(p))
	})
	return out, nil
}

// SubscribeToForwards emits forwarded htlcs. Sends and receives of the node
// itself are skipped.
func (l *Client) SubscribeToForwards(ctx context.Context) (*lightning.Stream[lightning.Forward], error) {
	ctx, cancel := context.WithCancel(ctx)
	stream, err := l.routerClient.SubscribeHtlcEvents(ctx, &routerrpc.SubscribeHtlcEventsRequest{})
	if err != nil {
		cancel()
		return nil, nodeErr("SubscribeHtlcEvents", err)
	}
	out := lightning.NewStream[lightning.Forward](cancel)
	go pump(ctx, "ForwardListener", stream.Recv, out, toForward)
	return out, nil
}

var errSkip = errors.New("skipped")

func toForward(ev *routerrpc.HtlcEvent) ([]lightning.Forward, error) {
	if ev.EventType != routerrpc.HtlcEvent_FORWARD {
		return nil, errSkip
	}
	fw := lightning.Forward{
		InChannel:  scid(ev.IncomingChannelId),
		OutChannel: scid(ev.OutgoingChannelId),
		InPayment:  ev.IncomingHtlcId,
		OutPayment: ev.OutgoingHtlcId,
		CreatedAt:  lightning.UnixNanoToMillis(int64(ev.TimestampNs)),
	}
	var info *routerrpc.HtlcInfo
	switch {
	case ev.GetForwardEvent() != nil:
		info = ev.GetForwardEvent().GetInfo()
		fw.Status = lightning.StatusPending
	case ev.GetSettleEvent() != nil:
		fw.Status = lightning.StatusConfirmed
	case ev.GetForwardFailEvent() != nil:
		fw.Status = lightning.StatusFailed
	case ev.GetLinkFailEvent() != nil:
		info = ev.GetLinkFailEvent().GetInfo()
		fw.Status = lightning.StatusFailed
	default:
		return nil, errSkip
	}
	if info != nil {
		fw.Tokens = lightning.MsatToSat(info.OutgoingAmtMsat)
		if info.IncomingAmtMsat > info.OutgoingAmtMsat {
			fw.Fee = lightning.MsatToSat(info.IncomingAmtMsat - info.OutgoingAmtMsat)
		}
	}
	return one(fw)
}

func (l *Client) SubscribeToPeers(ctx context.Context) (*lightning.Stream[lightning.PeerEvent], error) {
	ctx, cancel := context.WithCancel(ctx)
	stream, err := l.lndClient.SubscribePeerEvents(ctx, &lnrpc.PeerEventSubscription{})
	if err != nil {
		cancel()
		return nil, nodeErr("SubscribePeerEvents", err)
	}
	out := lightning.NewStream[lightning.PeerEvent](cancel)
	go pump(ctx, "PeerListener", stream.Recv, out, func(evt *lnrpc.PeerEvent) ([]lightning.PeerEvent, error) {
		log.Debugf("[PeerListener]: %s %s", evt.Type, evt.PubKey)
		switch evt.Type {
		case lnrpc.PeerEvent_PEER_ONLINE:
			return one(lightning.PeerEvent{
				Event: lightning.PeerConnected,
				Peer:  lightning.Peer{PublicKey: evt.PubKey, IsConnected: true},
			})
		case lnrpc.PeerEvent_PEER_OFFLINE:
			return one(lightning.PeerEvent{
				Event: lightning.PeerDisconnected,
				Peer:  lightning.Peer{PublicKey: evt.PubKey},
			})
		}
		return nil, errSkip
	})
	return out, nil
}

func (l *Client) SubscribeToGraph(ctx context.Context) (*lightning.Stream[lightning.GraphUpdate], error) {
	ctx, cancel := context.WithCancel(ctx)
	stream, err := l.lndClient.SubscribeChannelGraph(ctx, &lnrpc.GraphTopologySubscription{})
	if err != nil {
		cancel()
		return nil, nodeErr("SubscribeChannelGraph", err)
	}
	out := lightning.NewStream[lightning.GraphUpdate](cancel)
	go pump(ctx, "GraphListener", stream.Recv, out, toGraphUpdates)
	return out, nil
}

func toGraphUpdates(u *lnrpc.GraphTopologyUpdate) ([]lightning.GraphUpdate, error) {
	var updates []lightning.GraphUpdate
	for _, n := range u.NodeUpdates {
		updates = append(updates, lightning.GraphUpdate{
			Kind:      lightning.GraphNodeUpdated,
			PublicKey: n.IdentityKey,
			Alias:     n.Alias,
		})
	}
	for _, c := range u.ChannelUpdates {
		update := lightning.GraphUpdate{
			Kind:      lightning.GraphChannelUpdated,
			ChannelID: scid(c.ChanId),
			PublicKey: c.AdvertisingNode,
			Capacity:  nonNegative(c.Capacity),
		}
		if c.RoutingPolicy != nil {
			policy := toPolicy(c.AdvertisingNode, c.RoutingPolicy)
			update.Policy = &policy
		}
		updates = append(updates, update)
	}
	for _, c := range u.ClosedChans {
		updates = append(updates, lightning.GraphUpdate{
			Kind:      lightning.GraphChannelClosed,
			ChannelID: scid(c.ChanId),
			Capacity:  nonNegative(c.Capacity),
		})
	}
	return updates, nil
}

// SubscribeToChannelRequests registers a channel acceptor. Every request is
// enriched with the peer record of the partner; requests whose peer lookup
// fails are rejected right away.
func (l *Client) SubscribeToChannelRequests(ctx context.Context) (*lightning.Stream[*lightning.ChannelRequest], error) {
	ctx, cancel := context.WithCancel(ctx)
	stream, err := l.lndClient.ChannelAcceptor(ctx)
	if err != nil {
		cancel()
		return nil, nodeErr("ChannelAcceptor", err)
	}

	// Responses are sent from whichever goroutine decides. grpc streams
	// allow one concurrent sender.
	var sendMu sync.Mutex
	respond := func(pendingChanID []byte, accept bool, reason string) error {
		sendMu.Lock()
		defer sendMu.Unlock()
		resp := &lnrpc.ChannelAcceptResponse{
			Accept:        accept,
			PendingChanId: pendingChanID,
		}
		if !accept {
			resp.Error = reason
		}
		if err := stream.Send(resp); err != nil {
			return nodeErr("ChannelAcceptor", err)
		}
		return nil
	}

	out := lightning.NewStream[*lightning.ChannelRequest](cancel)
	go pump(ctx, "ChannelAcceptor", stream.Recv, out, func(req *lnrpc.ChannelAcceptRequest) ([]*lightning.ChannelRequest, error) {
		pendingChanID := req.PendingChanId
		partner := hex.EncodeToString(req.NodePubkey)

		peer, err := l.findPeer(ctx, partner)
		if err != nil {
			log.Infof("[ChannelAcceptor]: rejecting %x, peer lookup failed: %v", pendingChanID, err)
			if err := respond(pendingChanID, false, "internal error"); err != nil {
				log.Infof("[ChannelAcceptor]: %v", err)
			}
			return nil, err
		}

		cr := &lightning.ChannelRequest{
			ID:               hex.EncodeToString(pendingChanID),
			Capacity:         req.FundingAmt,
			PushTokens:       lightning.MsatToSat(req.PushAmt),
			PartnerPublicKey: partner,
			CsvDelay:         req.CsvDelay,
			MaxPendingHtlcs:  req.MaxAcceptedHtlcs,
			IsPrivate:        req.ChannelFlags&uint32(1) == 0,
			Peer:             peer,
		}
		cr.WithDecider(func(accept bool, reason string) error {
			return respond(pendingChanID, accept, reason)
		})
		return one(cr)
	})
	return out, nil
}

func (l *Client) findPeer(ctx context.Context, pubkey string) (*lightning.Peer, error) {
	res, err := l.lndClient.ListPeers(ctx, &lnrpc.ListPeersRequest{})
	if err != nil {
		return nil, nodeErr("ListPeers", err)
	}
	for _, p := range res.Peers {
		if p.PubKey == pubkey {
			peer := toPeer(p)
			return &peer, nil
		}
	}
	return nil, nil
}
