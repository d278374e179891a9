package lnd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/blocktank/lnworker/lightning"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/lightningnetwork/lnd/lnrpc"
)

// ListChannels merges the fee report into the channel list.
func (l *Client) ListChannels(ctx context.Context) ([]lightning.Channel, error) {
	res, err := l.lndClient.ListChannels(ctx, &lnrpc.ListChannelsRequest{})
	if err != nil {
		return nil, nodeErr("ListChannels", err)
	}
	fees, err := l.lndClient.FeeReport(ctx, &lnrpc.FeeReportRequest{})
	if err != nil {
		return nil, nodeErr("FeeReport", err)
	}
	feesByChan := make(map[uint64]*lnrpc.ChannelFeeReport, len(fees.ChannelFees))
	for _, f := range fees.ChannelFees {
		feesByChan[f.ChanId] = f
	}

	channels := make([]lightning.Channel, 0, len(res.Channels))
	for _, ch := range res.Channels {
		channel := toChannel(ch)
		if f, ok := feesByChan[ch.ChanId]; ok {
			channel.BaseFeeMtokens = nonNegative(f.BaseFeeMsat)
			channel.FeeRate = nonNegative(f.FeePerMil)
		}
		channels = append(channels, channel)
	}
	return channels, nil
}

func (l *Client) ListPeers(ctx context.Context) ([]lightning.Peer, error) {
	res, err := l.lndClient.ListPeers(ctx, &lnrpc.ListPeersRequest{})
	if err != nil {
		return nil, nodeErr("ListPeers", err)
	}
	peers := make([]lightning.Peer, 0, len(res.Peers))
	for _, p := range res.Peers {
		peers = append(peers, toPeer(p))
	}
	return peers, nil
}

func (l *Client) ListClosedChannels(ctx context.Context) ([]lightning.ClosedChannel, error) {
	res, err := l.lndClient.ClosedChannels(ctx, &lnrpc.ClosedChannelsRequest{})
	if err != nil {
		return nil, nodeErr("ClosedChannels", err)
	}
	closed := make([]lightning.ClosedChannel, 0, len(res.Channels))
	for _, ch := range res.Channels {
		closed = append(closed, lightning.ClosedChannel{
			ID:               scid(ch.ChanId),
			PartnerPublicKey: ch.RemotePubkey,
			Capacity:         nonNegative(ch.Capacity),
			CloseHeight:      ch.CloseHeight,
			CloseTxID:        ch.ClosingTxHash,
			FinalBalance:     nonNegative(ch.SettledBalance),
		})
	}
	return closed, nil
}

func (l *Client) GetChannel(ctx context.Context, id string) (*lightning.ChannelInfo, error) {
	edge, err := l.chanInfo(ctx, id)
	if err != nil {
		return nil, err
	}
	info := &lightning.ChannelInfo{
		ID:        scid(edge.ChannelId),
		Capacity:  nonNegative(edge.Capacity),
		UpdatedAt: lightning.UnixToMillis(int64(edge.LastUpdate)),
		Policies:  []lightning.ChannelPolicy{},
	}
	if edge.Node1Policy != nil {
		info.Policies = append(info.Policies, toPolicy(edge.Node1Pub, edge.Node1Policy))
	}
	if edge.Node2Policy != nil {
		info.Policies = append(info.Policies, toPolicy(edge.Node2Pub, edge.Node2Policy))
	}
	return info, nil
}

func (l *Client) chanInfo(ctx context.Context, id string) (*lnrpc.ChannelEdge, error) {
	chanID, err := parseScid(id)
	if err != nil {
		return nil, fmt.Errorf("invalid channel id %q: %w", id, err)
	}
	edge, err := l.lndClient.GetChanInfo(ctx, &lnrpc.ChanInfoRequest{ChanId: chanID})
	if isNotFound(err) {
		return nil, &lightning.NotFoundError{What: "channel", ID: id}
	}
	if err != nil {
		return nil, nodeErr("GetChanInfo", err)
	}
	return edge, nil
}

func (l *Client) AddPeer(ctx context.Context, req lightning.AddPeerRequest) error {
	_, err := l.lndClient.ConnectPeer(ctx, &lnrpc.ConnectPeerRequest{
		Addr: &lnrpc.LightningAddress{
			Pubkey: req.PublicKey,
			Host:   req.Socket,
		},
		Perm: true,
	})
	if err != nil && !strings.Contains(err.Error(), "already connected") {
		return nodeErr("ConnectPeer", err)
	}
	return nil
}

func (l *Client) OpenChannel(ctx context.Context, req lightning.OpenChannelRequest) (*lightning.ChannelPoint, error) {
	cp, err := l.lndClient.OpenChannelSync(ctx, &lnrpc.OpenChannelRequest{
		NodePubkeyString:   req.PartnerPublicKey,
		LocalFundingAmount: int64(req.LocalTokens),
		PushSat:            int64(req.GiveTokens),
		Private:            req.IsPrivate,
		SatPerVbyte:        req.FeeRate,
	})
	if err != nil {
		return nil, nodeErr("OpenChannelSync", err)
	}
	txid, err := fundingTxid(cp)
	if err != nil {
		return nil, err
	}
	return &lightning.ChannelPoint{TransactionID: txid, TransactionVout: cp.OutputIndex}, nil
}

// CloseChannel resolves the channel point of the short channel id and waits
// for the closing transaction to be broadcast.
func (l *Client) CloseChannel(ctx context.Context, req lightning.CloseChannelRequest) (*lightning.ChannelPoint, error) {
	edge, err := l.chanInfo(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	cp, err := toChannelPoint(edge.ChanPoint)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := l.lndClient.CloseChannel(ctx, &lnrpc.CloseChannelRequest{
		ChannelPoint: cp,
		Force:        req.IsForce,
	})
	if err != nil {
		return nil, nodeErr("CloseChannel", err)
	}
	for {
		update, err := stream.Recv()
		if err != nil {
			return nil, nodeErr("CloseChannel", err)
		}
		if pending := update.GetClosePending(); pending != nil {
			hash, err := chainhash.NewHash(pending.Txid)
			if err != nil {
				return nil, err
			}
			return &lightning.ChannelPoint{
				TransactionID:   hash.String(),
				TransactionVout: pending.OutputIndex,
			}, nil
		}
		if closed := update.GetChanClose(); closed != nil {
			hash, err := chainhash.NewHash(closed.ClosingTxid)
			if err != nil {
				return nil, err
			}
			return &lightning.ChannelPoint{TransactionID: hash.String()}, nil
		}
	}
}

// UpdateRoutingFees applies the policy to one channel or globally. Failed
// updates are reported in the result, not as error.
func (l *Client) UpdateRoutingFees(ctx context.Context, req lightning.RoutingFeeUpdate) (*lightning.RoutingFeeUpdateResult, error) {
	timeLockDelta := req.CltvDelta
	if timeLockDelta == 0 {
		timeLockDelta = defaultTimeLockDelta
	}
	if timeLockDelta < minTimeLockDelta {
		return nil, fmt.Errorf("cltv delta %d below minimum %d", timeLockDelta, minTimeLockDelta)
	}
	policy := &lnrpc.PolicyUpdateRequest{
		BaseFeeMsat:   int64(req.BaseFeeMtokens),
		FeeRatePpm:    uint32(req.FeeRate),
		TimeLockDelta: timeLockDelta,
	}
	if req.ChannelID == "" {
		policy.Scope = &lnrpc.PolicyUpdateRequest_Global{Global: true}
	} else {
		edge, err := l.chanInfo(ctx, req.ChannelID)
		if err != nil {
			return nil, err
		}
		cp, err := toChannelPoint(edge.ChanPoint)
		if err != nil {
			return nil, err
		}
		policy.Scope = &lnrpc.PolicyUpdateRequest_ChanPoint{ChanPoint: cp}
	}

	res, err := l.lndClient.UpdateChannelPolicy(ctx, policy)
	if err != nil {
		return nil, nodeErr("UpdateChannelPolicy", err)
	}
	result := &lightning.RoutingFeeUpdateResult{Failures: []lightning.RoutingFeeFailure{}}
	for _, f := range res.FailedUpdates {
		outpoint := ""
		if f.Outpoint != nil {
			outpoint = fmt.Sprintf("%s:%d", f.Outpoint.TxidStr, f.Outpoint.OutputIndex)
		}
		reason := f.UpdateError
		if reason == "" {
			reason = f.Reason.String()
		}
		result.Failures = append(result.Failures, lightning.RoutingFeeFailure{
			ChannelID: outpoint,
			Reason:    reason,
		})
	}
	return result, nil
}

func splitChannelPoint(cp string) (string, uint32) {
	txid, idx, ok := strings.Cut(cp, ":")
	if !ok {
		return cp, 0
	}
	vout, err := strconv.ParseUint(idx, 10, 32)
	if err != nil {
		return txid, 0
	}
	return txid, uint32(vout)
}

func toChannelPoint(cp string) (*lnrpc.ChannelPoint, error) {
	txid, idx, ok := strings.Cut(cp, ":")
	if !ok {
		return nil, fmt.Errorf("invalid channel point %q", cp)
	}
	vout, err := strconv.ParseUint(idx, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid channel point %q: %w", cp, err)
	}
	return &lnrpc.ChannelPoint{
		FundingTxid: &lnrpc.ChannelPoint_FundingTxidStr{FundingTxidStr: txid},
		OutputIndex: uint32(vout),
	}, nil
}

// fundingTxid renders the funding txid. Byte encoded ids are in internal
// byte order.
func fundingTxid(cp *lnrpc.ChannelPoint) (string, error) {
	switch txid := cp.FundingTxid.(type) {
	case *lnrpc.ChannelPoint_FundingTxidStr:
		return txid.FundingTxidStr, nil
	case *lnrpc.ChannelPoint_FundingTxidBytes:
		hash, err := chainhash.NewHash(txid.FundingTxidBytes)
		if err != nil {
			return "", err
		}
		return hash.String(), nil
	}
	return "", fmt.Errorf("channel point without funding txid")
}
