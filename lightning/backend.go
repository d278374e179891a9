package lightning

import (
	"context"
	"time"
)

// Backend is the contract every node family implements. Each call is a
// single attempt against the node: amounts come back in satoshis,
// timestamps in epoch milliseconds and transport failures as *NodeError.
// Capabilities a family cannot offer return ErrNotSupported.
//
//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_backend.go -package=mocks github.com/blocktank/lnworker/lightning Backend
type Backend interface {
	Kind() Kind

	GetInfo(ctx context.Context) (*NodeInfo, error)
	// GetFeeRate returns the chain fee estimate in sat/vbyte.
	GetFeeRate(ctx context.Context) (uint64, error)
	GetOnChainBalance(ctx context.Context) (uint64, error)
	GetBalances(ctx context.Context) (*Balances, error)

	CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error)
	// CreateHodlInvoice returns the generated preimage in Invoice.Secret.
	CreateHodlInvoice(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error)
	CancelInvoice(ctx context.Context, id string) error
	SettleHodlInvoice(ctx context.Context, secret string) error
	GetInvoice(ctx context.Context, id string) (*Invoice, error)
	GetInvoices(ctx context.Context, req InvoicesRequest) ([]Invoice, error)

	DecodePaymentRequest(ctx context.Context, request string) (*DecodedPaymentRequest, error)
	PayViaPaymentRequest(ctx context.Context, req PayRequest) (*PayAttempt, error)
	// GetPayment returns nil, nil if the node has no record of the payment.
	GetPayment(ctx context.Context, id string) (*Payment, error)
	ListPayments(ctx context.Context, req PaymentsRequest) ([]Payment, error)

	ListChannels(ctx context.Context) ([]Channel, error)
	ListPeers(ctx context.Context) ([]Peer, error)
	ListClosedChannels(ctx context.Context) ([]ClosedChannel, error)
	GetChannel(ctx context.Context, id string) (*ChannelInfo, error)
	AddPeer(ctx context.Context, req AddPeerRequest) error
	OpenChannel(ctx context.Context, req OpenChannelRequest) (*ChannelPoint, error)
	CloseChannel(ctx context.Context, req CloseChannelRequest) (*ChannelPoint, error)
	UpdateRoutingFees(ctx context.Context, req RoutingFeeUpdate) (*RoutingFeeUpdateResult, error)
	GetForwards(ctx context.Context, req ForwardsRequest) ([]Forward, error)

	SubscribeToInvoices(ctx context.Context) (*Stream[Invoice], error)
	SubscribeToPayments(ctx context.Context) (*Stream[Payment], error)
	SubscribeToForwards(ctx context.Context) (*Stream[Forward], error)
	SubscribeToChannelRequests(ctx context.Context) (*Stream[*ChannelRequest], error)
	SubscribeToPeers(ctx context.Context) (*Stream[PeerEvent], error)
	SubscribeToGraph(ctx context.Context) (*Stream[GraphUpdate], error)

	Close() error
}

type CreateInvoiceRequest struct {
	Tokens      uint64 `json:"amount"`
	Description string `json:"memo"`
	// ExpiresAt is epoch milliseconds. ExpirySeconds wins when both are set.
	ExpiresAt     int64 `json:"expiry"`
	ExpirySeconds int64 `json:"expiry_seconds"`
}

// Expiry resolves the requested lifetime relative to now, zero for the
// backend default.
func (r CreateInvoiceRequest) Expiry(now time.Time) time.Duration {
	if r.ExpirySeconds > 0 {
		return time.Duration(r.ExpirySeconds) * time.Second
	}
	if r.ExpiresAt > 0 {
		if d := time.UnixMilli(r.ExpiresAt).Sub(now); d > 0 {
			return d.Truncate(time.Second)
		}
	}
	return 0
}

type InvoicesRequest struct {
	Limit         int  `json:"limit"`
	IsUnconfirmed bool `json:"is_unconfirmed"`
}

type PayRequest struct {
	Request            string
	Tokens             uint64
	MaxFeeSat          uint64
	PathfindingTimeout time.Duration
}

type PaymentsRequest struct {
	Limit int `json:"limit"`
}

type AddPeerRequest struct {
	PublicKey string `json:"public_key"`
	Socket    string `json:"socket"`
}

type OpenChannelRequest struct {
	PartnerPublicKey string `json:"remote_pub_key"`
	LocalTokens      uint64 `json:"local_amt"`
	GiveTokens       uint64 `json:"remote_amt"`
	IsPrivate        bool   `json:"is_private"`
	// FeeRate is sat/vbyte, zero for the backend estimate.
	FeeRate uint64 `json:"fee_rate"`
}

type CloseChannelRequest struct {
	ID      string `json:"id"`
	IsForce bool   `json:"is_force_close"`
}

// ChannelPoint identifies the funding or closing transaction output.
type ChannelPoint struct {
	TransactionID   string `json:"transaction_id"`
	TransactionVout uint32 `json:"transaction_vout"`
}

// RoutingFeeUpdate applies to one channel, or to all when ChannelID is empty.
type RoutingFeeUpdate struct {
	ChannelID      string `json:"id"`
	BaseFeeMtokens uint64 `json:"base_fee_mtokens"`
	FeeRate        uint64 `json:"fee_rate"`
	CltvDelta      uint32 `json:"cltv_delta"`
}

type RoutingFeeFailure struct {
	ChannelID string `json:"id"`
	Reason    string `json:"failure"`
}

type RoutingFeeUpdateResult struct {
	Failures []RoutingFeeFailure `json:"failures"`
}

// ForwardsRequest bounds are epoch milliseconds.
type ForwardsRequest struct {
	After  int64 `json:"after"`
	Before int64 `json:"before"`
	Limit  int   `json:"limit"`
}
