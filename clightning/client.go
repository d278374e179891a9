// Package clightning implements lightning.Backend for core-lightning nodes
// behind a c-lightning-REST server.
package clightning

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/blocktank/lnworker/lightning"
	"github.com/blocktank/lnworker/log"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// maxFeePercent bounds the routing fee of a payment relative to its
	// amount. Fees up to the requested max fee are always accepted.
	maxFeePercent = 5

	defaultInvoiceExpiry = 3600 * time.Second

	// incorrectPaymentDetails is the failure of a destination that does not
	// know the payment hash or rejects the amount.
	incorrectPaymentDetails = "WIRE_INCORRECT_OR_UNKNOWN_PAYMENT_DETAILS"

	channelStateNormal = "CHANNELD_NORMAL"
)

// Client is the core-lightning implementation of lightning.Backend.
type Client struct {
	api       *api
	websocket string
	wsDialer  wsDialer
}

var _ lightning.Backend = (*Client)(nil)

// New creates a client for the REST server described by cfg.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mac, err := cfg.macaroonHex()
	if err != nil {
		return nil, err
	}
	tlsConfig, err := cfg.tlsConfig()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	option := defaultOption()
	option.RetryMax = cfg.MaxRetries
	option.TLSConfig = tlsConfig

	a := NewAPI(cfg.URL, mac).WithLogger(logger).WithOption(option)
	return &Client{
		api:       a,
		websocket: cfg.Websocket,
		wsDialer:  newWSDialer(tlsConfig, mac),
	}, nil
}

func (c *Client) Kind() lightning.Kind {
	return lightning.KindCLN
}

func (c *Client) Close() error {
	c.api.httpClient.HTTPClient.CloseIdleConnections()
	return nil
}

func nodeErr(op string, err error) error {
	return lightning.NewNodeError(lightning.KindCLN, op, err)
}

func isHTTPNotFound(err error) bool {
	var apiErr *apiError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

func (c *Client) GetInfo(ctx context.Context) (*lightning.NodeInfo, error) {
	var info getInfoResponse
	if err := c.api.get(ctx, "getinfo", nil, &info); err != nil {
		return nil, nodeErr("getinfo", err)
	}
	uris := make([]string, 0, len(info.Address))
	for _, addr := range info.Address {
		uris = append(uris, fmt.Sprintf("%s@%s:%d", info.ID, addr.Address, addr.Port))
	}
	return &lightning.NodeInfo{
		PublicKey:           info.ID,
		Alias:               info.Alias,
		PeersCount:          info.NumPeers,
		ActiveChannelsCount: info.NumActiveChannels,
		PendingChannels:     info.NumPendingChannels,
		BlockHeight:         info.BlockHeight,
		SyncedToChain:       info.WarningBitcoindSync == "" && info.WarningLightningd == "",
		Version:             info.Version,
		URIs:                uris,
	}, nil
}

// GetFeeRate converts the opening estimate from sat/kvbyte to sat/vbyte.
func (c *Client) GetFeeRate(ctx context.Context) (uint64, error) {
	var res feeRatesResponse
	if err := c.api.get(ctx, "network/feeRates/perkb", nil, &res); err != nil {
		return 0, nodeErr("feerates", err)
	}
	return res.PerKb.Opening / 1000, nil
}

func (c *Client) GetOnChainBalance(ctx context.Context) (uint64, error) {
	var res getBalanceResponse
	if err := c.api.get(ctx, "getBalance", nil, &res); err != nil {
		return 0, nodeErr("getBalance", err)
	}
	return res.ConfBalance, nil
}

func (c *Client) GetBalances(ctx context.Context) (*lightning.Balances, error) {
	var chain getBalanceResponse
	if err := c.api.get(ctx, "getBalance", nil, &chain); err != nil {
		return nil, nodeErr("getBalance", err)
	}
	var channels localRemoteBalResponse
	if err := c.api.get(ctx, "channel/localremotebal", nil, &channels); err != nil {
		return nil, nodeErr("localremotebal", err)
	}
	return &lightning.Balances{
		ChannelBalance:        channels.LocalBalance,
		PendingChannelBalance: channels.PendingBalance,
		ChainBalance:          chain.ConfBalance,
		PendingChainBalance:   chain.UnconfBalance,
	}, nil
}

// CreateInvoice labels the invoice with a random uuid. The label is the
// internal id used to look the invoice up again.
func (c *Client) CreateInvoice(ctx context.Context, req lightning.CreateInvoiceRequest) (*lightning.Invoice, error) {
	now := time.Now()
	expiry := req.Expiry(now)
	label := uuid.NewString()

	var res genInvoiceResponse
	err := c.api.post(ctx, "invoice/genInvoice", &genInvoiceRequest{
		Amount:      lightning.SatToMsat(req.Tokens),
		Label:       label,
		Description: req.Description,
		Expiry:      int64(expiry / time.Second),
	}, &res)
	if err != nil {
		return nil, nodeErr("genInvoice", err)
	}

	if expiry == 0 {
		expiry = defaultInvoiceExpiry
	}
	expiresAt := lightning.UnixToMillis(res.ExpiresAt)
	if expiresAt == 0 {
		expiresAt = now.Add(expiry).UnixMilli()
	}
	return &lightning.Invoice{
		ID:          res.PaymentHash,
		InternalID:  label,
		Request:     res.Bolt11,
		Description: req.Description,
		Tokens:      req.Tokens,
		CreatedAt:   now.UnixMilli(),
		ExpiresAt:   expiresAt,
		Status:      lightning.StatusPending,
	}, nil
}

func (c *Client) CreateHodlInvoice(ctx context.Context, req lightning.CreateInvoiceRequest) (*lightning.Invoice, error) {
	return nil, lightning.ErrNotSupported
}

func (c *Client) SettleHodlInvoice(ctx context.Context, secret string) error {
	return lightning.ErrNotSupported
}

func (c *Client) CancelInvoice(ctx context.Context, id string) error {
	inv, err := c.findInvoice(ctx, id)
	if err != nil {
		return err
	}
	path := "invoice/delInvoice/" + url.PathEscape(inv.Label) + "/" + url.PathEscape(inv.Status)
	if err := c.api.delete(ctx, path, nil, nil); err != nil {
		return nodeErr("delInvoice", err)
	}
	return nil
}

// GetInvoice looks the invoice up by label or by payment hash. Anything but a
// single match is a NotFoundError.
func (c *Client) GetInvoice(ctx context.Context, id string) (*lightning.Invoice, error) {
	inv, err := c.findInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	return toInvoice(inv), nil
}

func (c *Client) findInvoice(ctx context.Context, id string) (*invoice, error) {
	query := url.Values{}
	if isPaymentHash(id) {
		query.Set("payment_hash", id)
	} else {
		query.Set("label", id)
	}
	invoices, err := getList[invoice](ctx, c.api, "invoice/listInvoices", query, "invoices")
	if err != nil {
		return nil, nodeErr("listInvoices", err)
	}
	switch len(invoices) {
	case 1:
		return &invoices[0], nil
	case 0:
		return nil, &lightning.NotFoundError{What: "invoice", ID: id}
	default:
		return nil, &lightning.NotFoundError{What: "invoice", ID: id, Ambiguous: true}
	}
}

func (c *Client) GetInvoices(ctx context.Context, req lightning.InvoicesRequest) ([]lightning.Invoice, error) {
	raw, err := getList[invoice](ctx, c.api, "invoice/listInvoices", nil, "invoices")
	if err != nil {
		return nil, nodeErr("listInvoices", err)
	}
	invoices := make([]lightning.Invoice, 0, len(raw))
	// Newest first, as lnd returns them.
	for i := len(raw) - 1; i >= 0; i-- {
		inv := toInvoice(&raw[i])
		if req.IsUnconfirmed && !inv.IsPending {
			continue
		}
		invoices = append(invoices, *inv)
		if req.Limit > 0 && len(invoices) == req.Limit {
			break
		}
	}
	return invoices, nil
}

func (c *Client) DecodePaymentRequest(ctx context.Context, request string) (*lightning.DecodedPaymentRequest, error) {
	var res decodePayResponse
	if err := c.api.get(ctx, "pay/decodePay/"+url.PathEscape(request), nil, &res); err != nil {
		return nil, nodeErr("decodePay", err)
	}
	return &lightning.DecodedPaymentRequest{
		ID:          res.PaymentHash,
		Destination: res.Payee,
		Description: res.Description,
		Tokens:      firstMsat(res.AmountMsat, res.Msatoshi).Sat(),
		CreatedAt:   lightning.UnixToMillis(res.CreatedAt),
		ExpiresAt:   lightning.UnixToMillis(res.CreatedAt + res.Expiry),
		CltvDelta:   res.MinFinalCltvExpiry,
	}, nil
}

// PayViaPaymentRequest pays and maps the outcome. A destination that rejects
// the payment details yields an attempt without secret and no error. A
// pending payment is returned with the pending secret sentinel.
func (c *Client) PayViaPaymentRequest(ctx context.Context, req lightning.PayRequest) (*lightning.PayAttempt, error) {
	body := &payRequest{
		Invoice:       req.Request,
		MaxFeePercent: maxFeePercent,
		ExemptFee:     lightning.SatToMsat(req.MaxFeeSat),
	}
	if req.Tokens > 0 {
		body.Amount = lightning.SatToMsat(req.Tokens)
	}
	if req.PathfindingTimeout > 0 {
		body.RetryFor = int64(req.PathfindingTimeout / time.Second)
	}

	var res payResponse
	err := c.api.post(ctx, "pay", body, &res)
	if err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) && strings.Contains(apiErr.Message, incorrectPaymentDetails) {
			log.Debugf("[ClnClient]: payment rejected by destination: %s", apiErr.Message)
			return &lightning.PayAttempt{
				Hops:           []string{},
				UnknownDetails: true,
				Status:         lightning.StatusFailed,
			}, nil
		}
		return nil, nodeErr("pay", err)
	}

	id := res.PaymentHash
	if id == "" {
		id = req.Request
	}
	attempt := &lightning.PayAttempt{
		ID:     id,
		Hops:   []string{},
		Tokens: res.AmountMsat.Sat(),
		Status: lightning.StatusFromCLN(res.Status),
	}
	if res.AmountSentMsat > res.AmountMsat {
		attempt.Fee = lightning.MsatToSat(uint64(res.AmountSentMsat - res.AmountMsat))
	}
	if res.Destination != "" {
		attempt.Hops = []string{res.Destination}
	}
	switch {
	case attempt.IsPending:
		attempt.Secret = lightning.SecretPending
	case attempt.IsConfirmed:
		attempt.Secret = res.PaymentPreimage
	}
	return attempt, nil
}

// GetPayment reads the pay record. id is a payment hash or the bolt11
// request. Of several attempts a complete one wins over a pending one over a
// failed one.
func (c *Client) GetPayment(ctx context.Context, id string) (*lightning.Payment, error) {
	query := url.Values{}
	if isPaymentHash(id) {
		query.Set("payment_hash", id)
	} else {
		query.Set("invoice", id)
	}
	pays, err := getList[pay](ctx, c.api, "pay/listPays", query, "pays")
	if isHTTPNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, nodeErr("listPays", err)
	}
	if len(pays) == 0 {
		return nil, nil
	}
	sort.SliceStable(pays, func(i, j int) bool {
		return payRank(pays[i].Status) < payRank(pays[j].Status)
	})
	return toPayment(&pays[0]), nil
}

func payRank(status string) int {
	switch lightning.StatusFromCLN(status) {
	case lightning.StatusConfirmed:
		return 0
	case lightning.StatusPending:
		return 1
	case lightning.StatusFailed:
		return 2
	}
	return 3
}

func (c *Client) ListPayments(ctx context.Context, req lightning.PaymentsRequest) ([]lightning.Payment, error) {
	pays, err := getList[pay](ctx, c.api, "pay/listPays", nil, "pays")
	if err != nil {
		return nil, nodeErr("listPays", err)
	}
	payments := make([]lightning.Payment, 0, len(pays))
	for i := len(pays) - 1; i >= 0; i-- {
		payments = append(payments, *toPayment(&pays[i]))
		if req.Limit > 0 && len(payments) == req.Limit {
			break
		}
	}
	return payments, nil
}

func (c *Client) ListChannels(ctx context.Context) ([]lightning.Channel, error) {
	raw, err := getList[channel](ctx, c.api, "channel/listChannels", nil, "channels")
	if err != nil {
		return nil, nodeErr("listChannels", err)
	}
	channels := make([]lightning.Channel, 0, len(raw))
	for i := range raw {
		channels = append(channels, toChannel(&raw[i]))
	}
	return channels, nil
}

func (c *Client) ListPeers(ctx context.Context) ([]lightning.Peer, error) {
	raw, err := getList[peer](ctx, c.api, "peer/listPeers", nil, "peers")
	if err != nil {
		return nil, nodeErr("listPeers", err)
	}
	peers := make([]lightning.Peer, 0, len(raw))
	for _, p := range raw {
		peers = append(peers, toPeer(p))
	}
	return peers, nil
}

func (c *Client) ListClosedChannels(ctx context.Context) ([]lightning.ClosedChannel, error) {
	return nil, lightning.ErrNotSupported
}

func (c *Client) GetChannel(ctx context.Context, id string) (*lightning.ChannelInfo, error) {
	scid := lightning.Scid(id).ClnStyle()
	halves, err := getList[networkChannel](ctx, c.api, "network/listChannel/"+url.PathEscape(scid), nil, "channels")
	if err != nil {
		return nil, nodeErr("listChannel", err)
	}
	if len(halves) == 0 {
		return nil, &lightning.NotFoundError{What: "channel", ID: id}
	}
	info := &lightning.ChannelInfo{
		ID:       scid,
		Policies: make([]lightning.ChannelPolicy, 0, len(halves)),
	}
	for _, h := range halves {
		info.Capacity = h.Satoshis
		if info.Capacity == 0 {
			info.Capacity = h.AmountMsat.Sat()
		}
		if updated := lightning.UnixToMillis(h.LastUpdate); updated > info.UpdatedAt {
			info.UpdatedAt = updated
		}
		info.Policies = append(info.Policies, lightning.ChannelPolicy{
			PublicKey:      h.Source,
			BaseFeeMtokens: h.BaseFeeMillisatoshi,
			FeeRate:        h.FeePerMillionth,
			CltvDelta:      h.Delay,
			IsDisabled:     !h.Active,
		})
	}
	return info, nil
}

func (c *Client) AddPeer(ctx context.Context, req lightning.AddPeerRequest) error {
	id := req.PublicKey
	if req.Socket != "" {
		id += "@" + req.Socket
	}
	if err := c.api.post(ctx, "peer/connect", &connectPeerRequest{ID: id}, nil); err != nil {
		return nodeErr("connect", err)
	}
	return nil
}

func (c *Client) OpenChannel(ctx context.Context, req lightning.OpenChannelRequest) (*lightning.ChannelPoint, error) {
	body := &openChannelRequest{
		ID:         req.PartnerPublicKey,
		Satoshis:   req.LocalTokens,
		Announce:   !req.IsPrivate,
		PushAmount: lightning.SatToMsat(req.GiveTokens),
	}
	if req.FeeRate > 0 {
		// perkb is the unit of the node.
		body.FeeRate = strconv.FormatUint(req.FeeRate*1000, 10) + "perkb"
	}
	var res openChannelResponse
	if err := c.api.post(ctx, "channel/openChannel", body, &res); err != nil {
		return nil, nodeErr("openChannel", err)
	}
	return &lightning.ChannelPoint{TransactionID: res.Txid, TransactionVout: res.Outnum}, nil
}

// CloseChannel closes mutually. A force close asks the node to go unilateral
// right away.
func (c *Client) CloseChannel(ctx context.Context, req lightning.CloseChannelRequest) (*lightning.ChannelPoint, error) {
	var query url.Values
	if req.IsForce {
		query = url.Values{"unilateralTimeout": []string{"1"}}
	}
	var res closeChannelResponse
	path := "channel/closeChannel/" + url.PathEscape(lightning.Scid(req.ID).ClnStyle())
	if err := c.api.delete(ctx, path, query, &res); err != nil {
		return nil, nodeErr("closeChannel", err)
	}
	return &lightning.ChannelPoint{TransactionID: res.Txid}, nil
}

// UpdateRoutingFees sets base fee and fee rate. The node has no per channel
// failure report, every channel it did not update is a failure.
func (c *Client) UpdateRoutingFees(ctx context.Context, req lightning.RoutingFeeUpdate) (*lightning.RoutingFeeUpdateResult, error) {
	id := "all"
	if req.ChannelID != "" {
		id = lightning.Scid(req.ChannelID).ClnStyle()
	}
	var res setChannelFeeResponse
	err := c.api.post(ctx, "channel/setChannelFee", &setChannelFeeRequest{
		ID:   id,
		Base: req.BaseFeeMtokens,
		PPM:  req.FeeRate,
	}, &res)
	if err != nil {
		return nil, nodeErr("setChannelFee", err)
	}
	result := &lightning.RoutingFeeUpdateResult{Failures: []lightning.RoutingFeeFailure{}}
	if req.ChannelID != "" && len(res.Channels) == 0 {
		result.Failures = append(result.Failures, lightning.RoutingFeeFailure{
			ChannelID: id,
			Reason:    "channel not updated",
		})
	}
	return result, nil
}

func (c *Client) GetForwards(ctx context.Context, req lightning.ForwardsRequest) ([]lightning.Forward, error) {
	raw, err := getList[forward](ctx, c.api, "channel/listForwards", nil, "forwards")
	if err != nil {
		return nil, nodeErr("listForwards", err)
	}
	forwards := make([]lightning.Forward, 0, len(raw))
	for i := range raw {
		fw := toForward(&raw[i])
		if req.After > 0 && fw.CreatedAt < req.After {
			continue
		}
		if req.Before > 0 && fw.CreatedAt >= req.Before {
			continue
		}
		forwards = append(forwards, fw)
		if req.Limit > 0 && len(forwards) == req.Limit {
			break
		}
	}
	return forwards, nil
}

func (c *Client) SubscribeToPayments(ctx context.Context) (*lightning.Stream[lightning.Payment], error) {
	return nil, lightning.ErrNotSupported
}

func (c *Client) SubscribeToForwards(ctx context.Context) (*lightning.Stream[lightning.Forward], error) {
	return nil, lightning.ErrNotSupported
}

func (c *Client) SubscribeToChannelRequests(ctx context.Context) (*lightning.Stream[*lightning.ChannelRequest], error) {
	return nil, lightning.ErrNotSupported
}

func (c *Client) SubscribeToPeers(ctx context.Context) (*lightning.Stream[lightning.PeerEvent], error) {
	return nil, lightning.ErrNotSupported
}

func (c *Client) SubscribeToGraph(ctx context.Context) (*lightning.Stream[lightning.GraphUpdate], error) {
	return nil, lightning.ErrNotSupported
}
