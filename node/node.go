// Package node wraps one lightning backend with its cached identity and
// health, and runs the payment protocol against it.
package node

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/blocktank/lnworker/lightning"
	"github.com/blocktank/lnworker/log"
)

type State int

const (
	StateStarting State = iota
	StateAvailable
	StateUnavailable
)

func (s State) String() string {
	switch s {
	case StateAvailable:
		return "available"
	case StateUnavailable:
		return "unavailable"
	default:
		return "starting"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Health is the outcome of the last start of the node.
type Health struct {
	State     State
	Err       error
	CheckedAt time.Time
}

type Node struct {
	name    string
	kind    lightning.Kind
	backend lightning.Backend

	mu     sync.RWMutex
	info   lightning.NodeInfo
	health Health

	payRetryMax     uint64
	payRetryInitial time.Duration
}

type Option func(*Node)

// WithPayRetry bounds the retries of a payment attempt that came back
// without a secret.
func WithPayRetry(max uint64, initial time.Duration) Option {
	return func(n *Node) {
		n.payRetryMax = max
		if initial > 0 {
			n.payRetryInitial = initial
		}
	}
}

func New(name string, backend lightning.Backend, opts ...Option) *Node {
	n := &Node{
		name:            name,
		backend:         backend,
		payRetryMax:     defaultPayRetryMax,
		payRetryInitial: defaultPayRetryInitial,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Unreachable is a node whose backend could not be dialed. It stays
// unavailable and reports err as its health.
func Unreachable(name string, kind lightning.Kind, err error) *Node {
	return &Node{
		name: name,
		kind: kind,
		health: Health{
			State:     StateUnavailable,
			Err:       err,
			CheckedAt: time.Now(),
		},
	}
}

// Start reads the node identity. A failure marks the node unavailable and is
// returned.
func (n *Node) Start(ctx context.Context) error {
	if n.backend == nil {
		return n.Health().Err
	}
	info, err := n.backend.GetInfo(ctx)

	n.mu.Lock()
	defer n.mu.Unlock()
	n.health.CheckedAt = time.Now()
	if err != nil {
		n.health.State = StateUnavailable
		n.health.Err = err
		log.Errorf("[Node %s]: start failed: %v", n.name, err)
		return err
	}
	n.info = *info
	n.info.InternalName = n.name
	n.health.State = StateAvailable
	n.health.Err = nil
	log.Infof("[Node %s]: started %s %s (%s)", n.name, n.backend.Kind(), n.info.PublicKey, n.info.Alias)
	return nil
}

func (n *Node) Close() error {
	if n.backend == nil {
		return nil
	}
	return n.backend.Close()
}

func (n *Node) Name() string {
	return n.name
}

func (n *Node) Kind() lightning.Kind {
	if n.backend == nil {
		return n.kind
	}
	return n.backend.Kind()
}

// Info is the identity cached at start.
func (n *Node) Info() lightning.NodeInfo {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.info
}

func (n *Node) PublicKey() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.info.PublicKey
}

func (n *Node) Health() Health {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.health
}

func (n *Node) Available() bool {
	return n.Health().State == StateAvailable
}

func (n *Node) ready() error {
	if !n.Available() {
		return fmt.Errorf("%s: %w", n.name, lightning.ErrNodeUnavailable)
	}
	return nil
}

// GetInfo queries the backend. InternalName is always the configured name.
func (n *Node) GetInfo(ctx context.Context) (*lightning.NodeInfo, error) {
	if err := n.ready(); err != nil {
		return nil, err
	}
	info, err := n.backend.GetInfo(ctx)
	if err != nil {
		return nil, err
	}
	info.InternalName = n.name
	return info, nil
}

func (n *Node) GetFeeRate(ctx context.Context) (uint64, error) {
	if err := n.ready(); err != nil {
		return 0, err
	}
	return n.backend.GetFeeRate(ctx)
}

func (n *Node) GetOnChainBalance(ctx context.Context) (uint64, error) {
	if err := n.ready(); err != nil {
		return 0, err
	}
	return n.backend.GetOnChainBalance(ctx)
}

func (n *Node) GetBalances(ctx context.Context) (*lightning.Balances, error) {
	if err := n.ready(); err != nil {
		return nil, err
	}
	return n.backend.GetBalances(ctx)
}

// CreateInvoice stamps the invoice with the public key of the node that will
// receive the payment.
func (n *Node) CreateInvoice(ctx context.Context, req lightning.CreateInvoiceRequest) (*lightning.Invoice, error) {
	if err := n.ready(); err != nil {
		return nil, err
	}
	inv, err := n.backend.CreateInvoice(ctx, req)
	if err != nil {
		return nil, err
	}
	inv.NodePublicKey = n.PublicKey()
	return inv, nil
}

func (n *Node) CreateHodlInvoice(ctx context.Context, req lightning.CreateInvoiceRequest) (*lightning.Invoice, error) {
	if err := n.ready(); err != nil {
		return nil, err
	}
	inv, err := n.backend.CreateHodlInvoice(ctx, req)
	if err != nil {
		return nil, err
	}
	inv.NodePublicKey = n.PublicKey()
	return inv, nil
}

func (n *Node) CancelInvoice(ctx context.Context, id string) error {
	if err := n.ready(); err != nil {
		return err
	}
	return n.backend.CancelInvoice(ctx, id)
}

func (n *Node) SettleHodlInvoice(ctx context.Context, secret string) error {
	if err := n.ready(); err != nil {
		return err
	}
	return n.backend.SettleHodlInvoice(ctx, secret)
}

func (n *Node) GetInvoice(ctx context.Context, id string) (*lightning.Invoice, error) {
	if err := n.ready(); err != nil {
		return nil, err
	}
	return n.backend.GetInvoice(ctx, id)
}

func (n *Node) GetInvoices(ctx context.Context, req lightning.InvoicesRequest) ([]lightning.Invoice, error) {
	if err := n.ready(); err != nil {
		return nil, err
	}
	return n.backend.GetInvoices(ctx, req)
}

func (n *Node) DecodePaymentRequest(ctx context.Context, request string) (*lightning.DecodedPaymentRequest, error) {
	if err := n.ready(); err != nil {
		return nil, err
	}
	return n.backend.DecodePaymentRequest(ctx, request)
}

func (n *Node) GetPayment(ctx context.Context, id string) (*lightning.Payment, error) {
	if err := n.ready(); err != nil {
		return nil, err
	}
	return n.backend.GetPayment(ctx, id)
}

func (n *Node) ListPayments(ctx context.Context, req lightning.PaymentsRequest) ([]lightning.Payment, error) {
	if err := n.ready(); err != nil {
		return nil, err
	}
	return n.backend.ListPayments(ctx, req)
}

func (n *Node) ListChannels(ctx context.Context) ([]lightning.Channel, error) {
	if err := n.ready(); err != nil {
		return nil, err
	}
	return n.backend.ListChannels(ctx)
}

func (n *Node) ListPeers(ctx context.Context) ([]lightning.Peer, error) {
	if err := n.ready(); err != nil {
		return nil, err
	}
	return n.backend.ListPeers(ctx)
}

func (n *Node) ListClosedChannels(ctx context.Context) ([]lightning.ClosedChannel, error) {
	if err := n.ready(); err != nil {
		return nil, err
	}
	return n.backend.ListClosedChannels(ctx)
}

func (n *Node) GetChannel(ctx context.Context, id string) (*lightning.ChannelInfo, error) {
	if err := n.ready(); err != nil {
		return nil, err
	}
	return n.backend.GetChannel(ctx, id)
}

func (n *Node) AddPeer(ctx context.Context, req lightning.AddPeerRequest) error {
	if err := n.ready(); err != nil {
		return err
	}
	return n.backend.AddPeer(ctx, req)
}

func (n *Node) OpenChannel(ctx context.Context, req lightning.OpenChannelRequest) (*lightning.ChannelPoint, error) {
	if err := n.ready(); err != nil {
		return nil, err
	}
	return n.backend.OpenChannel(ctx, req)
}

func (n *Node) CloseChannel(ctx context.Context, req lightning.CloseChannelRequest) (*lightning.ChannelPoint, error) {
	if err := n.ready(); err != nil {
		return nil, err
	}
	return n.backend.CloseChannel(ctx, req)
}

func (n *Node) UpdateRoutingFees(ctx context.Context, req lightning.RoutingFeeUpdate) (*lightning.RoutingFeeUpdateResult, error) {
	if err := n.ready(); err != nil {
		return nil, err
	}
	return n.backend.UpdateRoutingFees(ctx, req)
}

func (n *Node) GetForwards(ctx context.Context, req lightning.ForwardsRequest) ([]lightning.Forward, error) {
	if err := n.ready(); err != nil {
		return nil, err
	}
	return n.backend.GetForwards(ctx, req)
}

func (n *Node) SubscribeToInvoices(ctx context.Context) (*lightning.Stream[lightning.Invoice], error) {
	if err := n.ready(); err != nil {
		return nil, err
	}
	return n.backend.SubscribeToInvoices(ctx)
}

// SubscribeToPaidInvoices carries only confirmed invoices.
func (n *Node) SubscribeToPaidInvoices(ctx context.Context) (*lightning.Stream[lightning.Invoice], error) {
	invoices, err := n.SubscribeToInvoices(ctx)
	if err != nil {
		return nil, err
	}
	return lightning.Filter(invoices, func(inv lightning.Invoice) bool {
		return inv.IsConfirmed
	}), nil
}

func (n *Node) SubscribeToPayments(ctx context.Context) (*lightning.Stream[lightning.Payment], error) {
	if err := n.ready(); err != nil {
		return nil, err
	}
	return n.backend.SubscribeToPayments(ctx)
}

func (n *Node) SubscribeToForwards(ctx context.Context) (*lightning.Stream[lightning.Forward], error) {
	if err := n.ready(); err != nil {
		return nil, err
	}
	return n.backend.SubscribeToForwards(ctx)
}

func (n *Node) SubscribeToChannelRequests(ctx context.Context) (*lightning.Stream[*lightning.ChannelRequest], error) {
	if err := n.ready(); err != nil {
		return nil, err
	}
	return n.backend.SubscribeToChannelRequests(ctx)
}

func (n *Node) SubscribeToPeers(ctx context.Context) (*lightning.Stream[lightning.PeerEvent], error) {
	if err := n.ready(); err != nil {
		return nil, err
	}
	return n.backend.SubscribeToPeers(ctx)
}

func (n *Node) SubscribeToGraph(ctx context.Context) (*lightning.Stream[lightning.GraphUpdate], error) {
	if err := n.ready(); err != nil {
		return nil, err
	}
	return n.backend.SubscribeToGraph(ctx)
}
