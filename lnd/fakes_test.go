package lnd

import (
	"context"
	"sync"

	"github.com/lightningnetwork/lnd/lnrpc"
	"github.com/lightningnetwork/lnd/lnrpc/invoicesrpc"
	"github.com/lightningnetwork/lnd/lnrpc/routerrpc"
	"github.com/lightningnetwork/lnd/lnrpc/walletrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// fakeStream serves queued messages and returns err once the queue is
// closed.
type fakeStream[T any] struct {
	grpc.ClientStream

	ctx  context.Context
	msgs chan T
	err  error
}

func newFakeStream[T any](ctx context.Context, err error, msgs ...T) *fakeStream[T] {
	s := &fakeStream[T]{ctx: ctx, msgs: make(chan T, len(msgs)+8), err: err}
	for _, m := range msgs {
		s.msgs <- m
	}
	return s
}

func (s *fakeStream[T]) Recv() (T, error) {
	var zero T
	select {
	case m, ok := <-s.msgs:
		if !ok {
			return zero, s.err
		}
		return m, nil
	case <-s.ctx.Done():
		return zero, status.Error(codes.Canceled, "context canceled")
	}
}

type fakeAcceptor struct {
	*fakeStream[*lnrpc.ChannelAcceptRequest]

	mu   sync.Mutex
	sent []*lnrpc.ChannelAcceptResponse
	resp chan *lnrpc.ChannelAcceptResponse
}

func (a *fakeAcceptor) Send(r *lnrpc.ChannelAcceptResponse) error {
	a.mu.Lock()
	a.sent = append(a.sent, r)
	a.mu.Unlock()
	a.resp <- r
	return nil
}

type fakeLightning struct {
	lnrpc.LightningClient

	getInfo     *lnrpc.GetInfoResponse
	getInfoErr  error
	channels    []*lnrpc.Channel
	fees        []*lnrpc.ChannelFeeReport
	peers       []*lnrpc.Peer
	peersErr    error
	edge        *lnrpc.ChannelEdge
	policyResp  *lnrpc.PolicyUpdateResponse
	policyReq   *lnrpc.PolicyUpdateRequest
	lookupErr   error
	acceptor    *fakeAcceptor
	peerEvents  func(ctx context.Context) *fakeStream[*lnrpc.PeerEvent]
	walletBal   *lnrpc.WalletBalanceResponse
	channelBal  *lnrpc.ChannelBalanceResponse
	invoiceResp *lnrpc.AddInvoiceResponse
	invoiceReq  *lnrpc.Invoice
}

func (f *fakeLightning) GetInfo(ctx context.Context, in *lnrpc.GetInfoRequest, opts ...grpc.CallOption) (*lnrpc.GetInfoResponse, error) {
	return f.getInfo, f.getInfoErr
}

func (f *fakeLightning) ListChannels(ctx context.Context, in *lnrpc.ListChannelsRequest, opts ...grpc.CallOption) (*lnrpc.ListChannelsResponse, error) {
	return &lnrpc.ListChannelsResponse{Channels: f.channels}, nil
}

func (f *fakeLightning) FeeReport(ctx context.Context, in *lnrpc.FeeReportRequest, opts ...grpc.CallOption) (*lnrpc.FeeReportResponse, error) {
	return &lnrpc.FeeReportResponse{ChannelFees: f.fees}, nil
}

func (f *fakeLightning) ListPeers(ctx context.Context, in *lnrpc.ListPeersRequest, opts ...grpc.CallOption) (*lnrpc.ListPeersResponse, error) {
	if f.peersErr != nil {
		return nil, f.peersErr
	}
	return &lnrpc.ListPeersResponse{Peers: f.peers}, nil
}

func (f *fakeLightning) GetChanInfo(ctx context.Context, in *lnrpc.ChanInfoRequest, opts ...grpc.CallOption) (*lnrpc.ChannelEdge, error) {
	if f.edge == nil || f.edge.ChannelId != in.ChanId {
		return nil, status.Error(codes.NotFound, "edge not found")
	}
	return f.edge, nil
}

func (f *fakeLightning) UpdateChannelPolicy(ctx context.Context, in *lnrpc.PolicyUpdateRequest, opts ...grpc.CallOption) (*lnrpc.PolicyUpdateResponse, error) {
	f.policyReq = in
	return f.policyResp, nil
}

func (f *fakeLightning) LookupInvoice(ctx context.Context, in *lnrpc.PaymentHash, opts ...grpc.CallOption) (*lnrpc.Invoice, error) {
	return nil, f.lookupErr
}

func (f *fakeLightning) ChannelAcceptor(ctx context.Context, opts ...grpc.CallOption) (lnrpc.Lightning_ChannelAcceptorClient, error) {
	f.acceptor.ctx = ctx
	return f.acceptor, nil
}

func (f *fakeLightning) SubscribePeerEvents(ctx context.Context, in *lnrpc.PeerEventSubscription, opts ...grpc.CallOption) (lnrpc.Lightning_SubscribePeerEventsClient, error) {
	return f.peerEvents(ctx), nil
}

func (f *fakeLightning) WalletBalance(ctx context.Context, in *lnrpc.WalletBalanceRequest, opts ...grpc.CallOption) (*lnrpc.WalletBalanceResponse, error) {
	return f.walletBal, nil
}

func (f *fakeLightning) ChannelBalance(ctx context.Context, in *lnrpc.ChannelBalanceRequest, opts ...grpc.CallOption) (*lnrpc.ChannelBalanceResponse, error) {
	return f.channelBal, nil
}

func (f *fakeLightning) AddInvoice(ctx context.Context, in *lnrpc.Invoice, opts ...grpc.CallOption) (*lnrpc.AddInvoiceResponse, error) {
	f.invoiceReq = in
	return f.invoiceResp, nil
}

type fakeRouter struct {
	routerrpc.RouterClient

	sendPayment  func(ctx context.Context) *fakeStream[*lnrpc.Payment]
	trackPayment func(ctx context.Context) *fakeStream[*lnrpc.Payment]
	sendReq      *routerrpc.SendPaymentRequest
}

func (f *fakeRouter) SendPaymentV2(ctx context.Context, in *routerrpc.SendPaymentRequest, opts ...grpc.CallOption) (routerrpc.Router_SendPaymentV2Client, error) {
	f.sendReq = in
	return f.sendPayment(ctx), nil
}

func (f *fakeRouter) TrackPaymentV2(ctx context.Context, in *routerrpc.TrackPaymentRequest, opts ...grpc.CallOption) (routerrpc.Router_TrackPaymentV2Client, error) {
	return f.trackPayment(ctx), nil
}

type fakeInvoices struct {
	invoicesrpc.InvoicesClient

	holdReq *invoicesrpc.AddHoldInvoiceRequest
	settled []byte
}

func (f *fakeInvoices) AddHoldInvoice(ctx context.Context, in *invoicesrpc.AddHoldInvoiceRequest, opts ...grpc.CallOption) (*invoicesrpc.AddHoldInvoiceResp, error) {
	f.holdReq = in
	return &invoicesrpc.AddHoldInvoiceResp{PaymentRequest: "lnbcrt1hold"}, nil
}

func (f *fakeInvoices) SettleInvoice(ctx context.Context, in *invoicesrpc.SettleInvoiceMsg, opts ...grpc.CallOption) (*invoicesrpc.SettleInvoiceResp, error) {
	f.settled = in.Preimage
	return &invoicesrpc.SettleInvoiceResp{}, nil
}

type fakeWallet struct {
	walletrpc.WalletKitClient

	satPerKw int64
}

func (f *fakeWallet) EstimateFee(ctx context.Context, in *walletrpc.EstimateFeeRequest, opts ...grpc.CallOption) (*walletrpc.EstimateFeeResponse, error) {
	return &walletrpc.EstimateFeeResponse{SatPerKw: f.satPerKw}, nil
}

func newTestClient(ln *fakeLightning, router *fakeRouter) (*Client, *fakeInvoices, *fakeWallet) {
	invoices := &fakeInvoices{}
	wallet := &fakeWallet{}
	return NewClientFromRPC(ln, router, invoices, wallet), invoices, wallet
}
