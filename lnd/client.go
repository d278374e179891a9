package lnd

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/blocktank/lnworker/lightning"
	"github.com/lightningnetwork/lnd/lnrpc"
	"github.com/lightningnetwork/lnd/lnrpc/invoicesrpc"
	"github.com/lightningnetwork/lnd/lnrpc/routerrpc"
	"github.com/lightningnetwork/lnd/lnrpc/walletrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	// feeConfTarget is the confirmation target used for chain fee estimates.
	feeConfTarget = 6

	// defaultInvoiceExpiry is what lnd applies when no expiry is given.
	defaultInvoiceExpiry = 3600 * time.Second

	// minTimeLockDelta is the smallest cltv delta lnd accepts on policy
	// updates.
	minTimeLockDelta = 18
	defaultTimeLockDelta = 40
)

// Client is the lnd implementation of lightning.Backend.
type Client struct {
	lndClient      lnrpc.LightningClient
	routerClient   routerrpc.RouterClient
	invoicesClient invoicesrpc.InvoicesClient
	walletClient   walletrpc.WalletKitClient

	cc *grpc.ClientConn
}

var _ lightning.Backend = (*Client)(nil)

func NewClient(cc *grpc.ClientConn) *Client {
	c := NewClientFromRPC(
		lnrpc.NewLightningClient(cc),
		routerrpc.NewRouterClient(cc),
		invoicesrpc.NewInvoicesClient(cc),
		walletrpc.NewWalletKitClient(cc),
	)
	c.cc = cc
	return c
}

// NewClientFromRPC builds a client on already constructed rpc clients.
func NewClientFromRPC(
	ln lnrpc.LightningClient,
	router routerrpc.RouterClient,
	invoices invoicesrpc.InvoicesClient,
	wallet walletrpc.WalletKitClient,
) *Client {
	return &Client{
		lndClient:      ln,
		routerClient:   router,
		invoicesClient: invoices,
		walletClient:   wallet,
	}
}

func (l *Client) Kind() lightning.Kind {
	return lightning.KindLND
}

func (l *Client) Close() error {
	if l.cc == nil {
		return nil
	}
	return l.cc.Close()
}

func nodeErr(op string, err error) error {
	return lightning.NewNodeError(lightning.KindLND, op, err)
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func (l *Client) GetInfo(ctx context.Context) (*lightning.NodeInfo, error) {
	gi, err := l.lndClient.GetInfo(ctx, &lnrpc.GetInfoRequest{})
	if err != nil {
		return nil, nodeErr("GetInfo", err)
	}
	return &lightning.NodeInfo{
		PublicKey:           gi.IdentityPubkey,
		Alias:               gi.Alias,
		PeersCount:          int(gi.NumPeers),
		ActiveChannelsCount: int(gi.NumActiveChannels),
		PendingChannels:     int(gi.NumPendingChannels),
		BlockHeight:         gi.BlockHeight,
		SyncedToChain:       gi.SyncedToChain,
		Version:             gi.Version,
		URIs:                gi.Uris,
	}, nil
}

// GetFeeRate converts the sat/kw estimate of the wallet to sat/vbyte.
func (l *Client) GetFeeRate(ctx context.Context) (uint64, error) {
	res, err := l.walletClient.EstimateFee(ctx, &walletrpc.EstimateFeeRequest{
		ConfTarget: feeConfTarget,
	})
	if err != nil {
		return 0, nodeErr("EstimateFee", err)
	}
	if res.SatPerKw <= 0 {
		return 0, nil
	}
	return uint64(res.SatPerKw) * 4 / 1000, nil
}

func (l *Client) GetOnChainBalance(ctx context.Context) (uint64, error) {
	res, err := l.lndClient.WalletBalance(ctx, &lnrpc.WalletBalanceRequest{})
	if err != nil {
		return 0, nodeErr("WalletBalance", err)
	}
	return nonNegative(res.ConfirmedBalance), nil
}

func (l *Client) GetBalances(ctx context.Context) (*lightning.Balances, error) {
	wallet, err := l.lndClient.WalletBalance(ctx, &lnrpc.WalletBalanceRequest{})
	if err != nil {
		return nil, nodeErr("WalletBalance", err)
	}
	channels, err := l.lndClient.ChannelBalance(ctx, &lnrpc.ChannelBalanceRequest{})
	if err != nil {
		return nil, nodeErr("ChannelBalance", err)
	}
	return &lightning.Balances{
		ChannelBalance:        channels.GetLocalBalance().GetSat(),
		PendingChannelBalance: channels.GetPendingOpenLocalBalance().GetSat(),
		ChainBalance:          nonNegative(wallet.ConfirmedBalance),
		PendingChainBalance:   nonNegative(wallet.UnconfirmedBalance),
	}, nil
}

func (l *Client) CreateInvoice(ctx context.Context, req lightning.CreateInvoiceRequest) (*lightning.Invoice, error) {
	now := time.Now()
	expiry := req.Expiry(now)
	res, err := l.lndClient.AddInvoice(ctx, &lnrpc.Invoice{
		Memo:   req.Description,
		Value:  int64(req.Tokens),
		Expiry: int64(expiry / time.Second),
	})
	if err != nil {
		return nil, nodeErr("AddInvoice", err)
	}
	return newInvoice(hex.EncodeToString(res.RHash), res.PaymentRequest, req, now, expiry), nil
}

func (l *Client) CreateHodlInvoice(ctx context.Context, req lightning.CreateInvoiceRequest) (*lightning.Invoice, error) {
	preimage, err := lightning.GetPreimage()
	if err != nil {
		return nil, err
	}
	hash := preimage.Hash()

	now := time.Now()
	expiry := req.Expiry(now)
	res, err := l.invoicesClient.AddHoldInvoice(ctx, &invoicesrpc.AddHoldInvoiceRequest{
		Memo:   req.Description,
		Hash:   hash[:],
		Value:  int64(req.Tokens),
		Expiry: int64(expiry / time.Second),
	})
	if err != nil {
		return nil, nodeErr("AddHoldInvoice", err)
	}
	invoice := newInvoice(hash.String(), res.PaymentRequest, req, now, expiry)
	invoice.Secret = preimage.String()
	return invoice, nil
}

func newInvoice(id, request string, req lightning.CreateInvoiceRequest, now time.Time, expiry time.Duration) *lightning.Invoice {
	if expiry == 0 {
		expiry = defaultInvoiceExpiry
	}
	return &lightning.Invoice{
		ID:          id,
		Request:     request,
		Description: req.Description,
		Tokens:      req.Tokens,
		CreatedAt:   now.UnixMilli(),
		ExpiresAt:   now.Add(expiry).UnixMilli(),
		Status:      lightning.StatusPending,
	}
}

func (l *Client) CancelInvoice(ctx context.Context, id string) error {
	hash, err := hex.DecodeString(id)
	if err != nil {
		return fmt.Errorf("invalid payment hash %q: %w", id, err)
	}
	_, err = l.invoicesClient.CancelInvoice(ctx, &invoicesrpc.CancelInvoiceMsg{PaymentHash: hash})
	if err != nil {
		return nodeErr("CancelInvoice", err)
	}
	return nil
}

func (l *Client) SettleHodlInvoice(ctx context.Context, secret string) error {
	preimage, err := lightning.MakePreimageFromStr(secret)
	if err != nil {
		return err
	}
	_, err = l.invoicesClient.SettleInvoice(ctx, &invoicesrpc.SettleInvoiceMsg{Preimage: preimage[:]})
	if err != nil {
		return nodeErr("SettleInvoice", err)
	}
	return nil
}

func (l *Client) GetInvoice(ctx context.Context, id string) (*lightning.Invoice, error) {
	hash, err := hex.DecodeString(id)
	if err != nil {
		return nil, fmt.Errorf("invalid payment hash %q: %w", id, err)
	}
	inv, err := l.lndClient.LookupInvoice(ctx, &lnrpc.PaymentHash{RHash: hash})
	if isNotFound(err) {
		return nil, &lightning.NotFoundError{What: "invoice", ID: id}
	}
	if err != nil {
		return nil, nodeErr("LookupInvoice", err)
	}
	return toInvoice(inv), nil
}

func (l *Client) GetInvoices(ctx context.Context, req lightning.InvoicesRequest) ([]lightning.Invoice, error) {
	res, err := l.lndClient.ListInvoices(ctx, &lnrpc.ListInvoiceRequest{
		PendingOnly:    req.IsUnconfirmed,
		NumMaxInvoices: uint64(req.Limit),
		Reversed:       true,
	})
	if err != nil {
		return nil, nodeErr("ListInvoices", err)
	}
	invoices := make([]lightning.Invoice, 0, len(res.Invoices))
	for _, inv := range res.Invoices {
		invoices = append(invoices, *toInvoice(inv))
	}
	return invoices, nil
}

func (l *Client) DecodePaymentRequest(ctx context.Context, request string) (*lightning.DecodedPaymentRequest, error) {
	decoded, err := l.lndClient.DecodePayReq(ctx, &lnrpc.PayReqString{PayReq: request})
	if err != nil {
		return nil, nodeErr("DecodePayReq", err)
	}
	return &lightning.DecodedPaymentRequest{
		ID:          decoded.PaymentHash,
		Destination: decoded.Destination,
		Description: decoded.Description,
		Tokens:      nonNegative(decoded.NumSatoshis),
		CreatedAt:   lightning.UnixToMillis(decoded.Timestamp),
		ExpiresAt:   lightning.UnixToMillis(decoded.Timestamp + decoded.Expiry),
		CltvDelta:   uint32(decoded.CltvExpiry),
	}, nil
}

func nonNegative(v int64) uint64 {
	if v < 0 {
		return 0
	}
	return uint64(v)
}
