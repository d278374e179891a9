package nodeman

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/blocktank/lnworker/lightning"
	"github.com/blocktank/lnworker/log"
	"github.com/blocktank/lnworker/node"
)

type Category int

const (
	CategoryInvoicePaid Category = iota
	CategoryForward
	CategoryChannelRequest
	CategoryPeerConnected
	CategoryPeerDisconnected
)

func (c Category) String() string {
	switch c {
	case CategoryInvoicePaid:
		return "invoice_paid"
	case CategoryForward:
		return "htlc_forward"
	case CategoryChannelRequest:
		return "channel_acceptor"
	case CategoryPeerConnected:
		return "peer_connected"
	case CategoryPeerDisconnected:
		return "peer_disconnected"
	default:
		return "unknown"
	}
}

const (
	MethodInvoicePaid    = "newInvoicePaid"
	MethodHtlcForward    = "newHtlcForward"
	MethodChannelRequest = "newChannelRequest"
	MethodPeerEvent      = "newPeerEvent"
)

// Routes maps event categories to the services they are delivered to. Both
// peer categories go to PeerEvents.
type Routes struct {
	HtlcForward     []string `toml:"htlc_forward"`
	ChannelAcceptor []string `toml:"channel_acceptor"`
	PeerEvents      []string `toml:"peer_events"`
	InvoicePaid     []string `toml:"invoice_paid"`
}

// Validate allows at most one channel acceptor, since every channel request
// gets exactly one decision.
func (r Routes) Validate() error {
	if len(r.ChannelAcceptor) > 1 {
		return fmt.Errorf("at most one channel_acceptor service allowed, got %d", len(r.ChannelAcceptor))
	}
	return nil
}

func (r Routes) Empty() bool {
	return len(r.HtlcForward) == 0 && len(r.ChannelAcceptor) == 0 &&
		len(r.PeerEvents) == 0 && len(r.InvoicePaid) == 0
}

func (r Routes) Services(c Category) []string {
	switch c {
	case CategoryInvoicePaid:
		return r.InvoicePaid
	case CategoryForward:
		return r.HtlcForward
	case CategoryChannelRequest:
		return r.ChannelAcceptor
	case CategoryPeerConnected, CategoryPeerDisconnected:
		return r.PeerEvents
	}
	return nil
}

// BroadcastEvent is one event addressed to one service. Respond is set for
// events that expect an answer.
type BroadcastEvent struct {
	Service  string
	Method   string
	Category Category
	Args     any
	Respond  func(resp json.RawMessage, err error)
}

// Broadcaster delivers events to other services. For an event with Respond
// set, DeliverBroadcast passes the service answer to Respond before it
// returns nil.
type Broadcaster interface {
	DeliverBroadcast(ctx context.Context, ev BroadcastEvent) error
}

// InvoicePaidArgs is the payload of newInvoicePaid.
type InvoicePaidArgs struct {
	Invoice lightning.Invoice `json:"invoice"`
}

func (m *Manager) listen(n *node.Node) {
	if len(m.routes.InvoicePaid) > 0 {
		s, err := n.SubscribeToPaidInvoices(m.ctx)
		if m.subscribed(n, CategoryInvoicePaid, err) {
			consume(m, n, CategoryInvoicePaid, s, func(ctx context.Context, inv lightning.Invoice) {
				inv.NodePublicKey = n.PublicKey()
				m.broadcast(ctx, CategoryInvoicePaid, MethodInvoicePaid, InvoicePaidArgs{Invoice: inv})
			})
		}
	}
	if len(m.routes.HtlcForward) > 0 {
		s, err := n.SubscribeToForwards(m.ctx)
		if m.subscribed(n, CategoryForward, err) {
			consume(m, n, CategoryForward, s, func(ctx context.Context, fwd lightning.Forward) {
				m.broadcast(ctx, CategoryForward, MethodHtlcForward, []lightning.Forward{fwd})
			})
		}
	}
	if len(m.routes.ChannelAcceptor) > 0 {
		s, err := n.SubscribeToChannelRequests(m.ctx)
		if m.subscribed(n, CategoryChannelRequest, err) {
			log.Infof("[NodeMan]: channel acceptor on %s is listening: service %s", n.Name(), m.routes.ChannelAcceptor[0])
			consume(m, n, CategoryChannelRequest, s, func(ctx context.Context, req *lightning.ChannelRequest) {
				// The result is logged and observed.
				if !m.spawn(func() { _ = m.decideChannelRequest(ctx, n, req) }) {
					_ = req.Reject("shutting down")
				}
			})
		}
	}
	if len(m.routes.PeerEvents) > 0 {
		s, err := n.SubscribeToPeers(m.ctx)
		if m.subscribed(n, CategoryPeerConnected, err) {
			consume(m, n, CategoryPeerConnected, s, func(ctx context.Context, ev lightning.PeerEvent) {
				category := CategoryPeerConnected
				if ev.Event == lightning.PeerDisconnected {
					category = CategoryPeerDisconnected
				}
				m.broadcast(ctx, category, MethodPeerEvent, ev)
			})
		}
	}
}

func (m *Manager) subscribed(n *node.Node, c Category, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, lightning.ErrNotSupported):
		log.Infof("[NodeMan]: %s node %s has no %s events", n.Kind(), n.Name(), c)
	default:
		log.Errorf("[NodeMan]: subscribing %s to %s events: %v", n.Name(), c, err)
		m.observer.StreamEnded(n.Name(), c.String(), err)
	}
	return false
}

// consume reads s until the stream ends or the manager stops. Events are
// handed to handle in order by a second goroutine, so a slow handler does not
// stall the backend stream until eventQueueSize events are waiting.
func consume[T any](m *Manager, n *node.Node, c Category, s *lightning.Stream[T], handle func(context.Context, T)) {
	queue := make(chan T, eventQueueSize)
	m.wg.Add(2)
	go func() {
		defer m.wg.Done()
		for ev := range queue {
			if m.ctx.Err() != nil {
				continue
			}
			handle(m.ctx, ev)
		}
	}()
	go func() {
		defer m.wg.Done()
		defer close(queue)
		for {
			select {
			case ev, ok := <-s.Events():
				if !ok {
					err := s.Err()
					if err != nil {
						log.Errorf("[NodeMan]: %s stream of %s ended: %v", c, n.Name(), err)
					} else {
						log.Infof("[NodeMan]: %s stream of %s ended", c, n.Name())
					}
					m.observer.StreamEnded(n.Name(), c.String(), err)
					return
				}
				select {
				case queue <- ev:
				case <-m.ctx.Done():
					s.Close()
					return
				}
			case <-m.ctx.Done():
				s.Close()
				return
			}
		}
	}()
}

// spawn runs fn in its own goroutine once one of the maxPendingRequests slots
// is free. It returns false if the manager stopped first.
func (m *Manager) spawn(fn func()) bool {
	if err := m.pending.Acquire(m.ctx, 1); err != nil {
		return false
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer m.pending.Release(1)
		fn()
	}()
	return true
}

func (m *Manager) broadcast(ctx context.Context, c Category, method string, args any) {
	for _, svc := range m.routes.Services(c) {
		err := m.broadcaster.DeliverBroadcast(ctx, BroadcastEvent{
			Service:  svc,
			Method:   method,
			Category: c,
			Args:     args,
		})
		if err != nil {
			log.Errorf("[NodeMan]: delivering %s to %s: %v", method, svc, err)
		}
		m.observer.EventDelivered(c, svc, err)
	}
}

type acceptorResponse struct {
	Accept bool   `json:"accept"`
	Reason string `json:"reason"`
}

type acceptorReply struct {
	body json.RawMessage
	err  error
}

// decideChannelRequest asks the channel acceptor service and answers the
// request exactly once. Any error, a timeout, an unreadable answer or an
// answer without accept rejects the request. A rejection is returned as
// lightning.ErrChannelRequestRejected.
func (m *Manager) decideChannelRequest(ctx context.Context, n *node.Node, req *lightning.ChannelRequest) error {
	svc := m.routes.ChannelAcceptor[0]
	log.Infof("[NodeMan]: new channel request %s on %s: capacity %d from %s",
		req.ID, n.Name(), req.Capacity, req.PartnerPublicKey)

	ctx, cancel := context.WithTimeout(ctx, m.acceptorTimeout)
	defer cancel()

	replies := make(chan acceptorReply, 1)
	respond := func(body json.RawMessage, err error) {
		select {
		case replies <- acceptorReply{body: body, err: err}:
		default:
		}
	}
	go func() {
		ev := BroadcastEvent{
			Service:  svc,
			Method:   MethodChannelRequest,
			Category: CategoryChannelRequest,
			Args:     req,
			Respond:  respond,
		}
		err := m.broadcaster.DeliverBroadcast(ctx, ev)
		if err != nil {
			respond(nil, err)
		}
		m.observer.EventDelivered(CategoryChannelRequest, svc, err)
	}()

	var answer acceptorResponse
	select {
	case r := <-replies:
		switch {
		case r.err != nil && ctx.Err() != nil:
			answer.Reason = "channel acceptor timed out"
		case r.err != nil:
			answer.Reason = fmt.Sprintf("channel acceptor error: %v", r.err)
		default:
			if err := json.Unmarshal(r.body, &answer); err != nil {
				answer = acceptorResponse{Reason: "invalid channel acceptor response"}
			}
		}
	case <-ctx.Done():
		answer.Reason = "channel acceptor timed out"
	}

	m.observer.ChannelRequestDecided(n.Name(), answer.Accept)
	if answer.Accept {
		log.Infof("[NodeMan]: accepted channel %s", req.ID)
		if err := req.Accept(); err != nil {
			log.Errorf("[NodeMan]: accepting channel %s: %v", req.ID, err)
			return err
		}
		return nil
	}

	log.Infof("[NodeMan]: rejected channel %s: %s", req.ID, answer.Reason)
	if err := req.Reject(answer.Reason); err != nil {
		log.Errorf("[NodeMan]: rejecting channel %s: %v", req.ID, err)
		return err
	}
	return fmt.Errorf("%s: %w", answer.Reason, lightning.ErrChannelRequestRejected)
}
