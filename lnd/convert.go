package lnd

import (
	"encoding/hex"
	"fmt"

	"github.com/blocktank/lnworker/lightning"
	"github.com/lightningnetwork/lnd/lnrpc"
	"github.com/lightningnetwork/lnd/lnwire"
)

// scid renders an lnd channel id in the x separated short channel id form
// used everywhere outside this package.
func scid(chanID uint64) string {
	return lightning.Scid(lnwire.NewShortChanIDFromInt(chanID).String()).ClnStyle()
}

// parseScid accepts both the x and the : separated forms.
func parseScid(id string) (uint64, error) {
	var blockHeight, txIndex, txPosition uint32
	_, err := fmt.Sscanf(lightning.Scid(id).ClnStyle(), "%dx%dx%d", &blockHeight, &txIndex, &txPosition)
	if err != nil {
		return 0, err
	}
	return lnwire.ShortChannelID{
		BlockHeight: blockHeight,
		TxIndex:     txIndex,
		TxPosition:  uint16(txPosition),
	}.ToUint64(), nil
}

func invoiceStatus(state lnrpc.Invoice_InvoiceState) lightning.Status {
	switch state {
	case lnrpc.Invoice_SETTLED:
		return lightning.StatusConfirmed
	case lnrpc.Invoice_CANCELED:
		return lightning.StatusFailed
	case lnrpc.Invoice_OPEN, lnrpc.Invoice_ACCEPTED:
		return lightning.StatusPending
	}
	return lightning.Status{}
}

func toInvoice(inv *lnrpc.Invoice) *lightning.Invoice {
	createdAt := lightning.UnixToMillis(inv.CreationDate)
	var expiresAt int64
	if createdAt != 0 {
		expiresAt = lightning.UnixToMillis(inv.CreationDate + inv.Expiry)
	}
	invoice := &lightning.Invoice{
		ID:          hex.EncodeToString(inv.RHash),
		Request:     inv.PaymentRequest,
		Description: inv.Memo,
		Tokens:      lightning.MsatToSat(uint64(inv.ValueMsat)),
		Received:    lightning.MsatToSat(uint64(inv.AmtPaidMsat)),
		CreatedAt:   createdAt,
		ExpiresAt:   expiresAt,
		ConfirmedAt: lightning.UnixToMillis(inv.SettleDate),
		IsHeld:      inv.State == lnrpc.Invoice_ACCEPTED,
		Status:      invoiceStatus(inv.State),
	}
	if invoice.IsConfirmed && len(inv.RPreimage) > 0 {
		invoice.Secret = hex.EncodeToString(inv.RPreimage)
	}
	return invoice
}

func paymentStatus(s lnrpc.Payment_PaymentStatus) lightning.Status {
	switch s {
	case lnrpc.Payment_SUCCEEDED:
		return lightning.StatusConfirmed
	case lnrpc.Payment_FAILED:
		return lightning.StatusFailed
	case lnrpc.Payment_UNKNOWN:
		return lightning.Status{}
	}
	return lightning.StatusPending
}

// paymentHops returns the node keys of the settled route.
func paymentHops(p *lnrpc.Payment) []string {
	hops := []string{}
	for _, htlc := range p.Htlcs {
		if htlc.Status != lnrpc.HTLCAttempt_SUCCEEDED || htlc.Route == nil {
			continue
		}
		for _, hop := range htlc.Route.Hops {
			hops = append(hops, hop.PubKey)
		}
		break
	}
	return hops
}

func toPayment(p *lnrpc.Payment) *lightning.Payment {
	st := paymentStatus(p.Status)
	payment := &lightning.Payment{
		ID:        p.PaymentHash,
		Request:   p.PaymentRequest,
		Hops:      paymentHops(p),
		Tokens:    lightning.MsatToSat(uint64(p.ValueMsat)),
		Fee:       lightning.MsatToSat(uint64(p.FeeMsat)),
		CreatedAt: lightning.UnixNanoToMillis(p.CreationTimeNs),
		State:     st.State(),
		Status:    st,
	}
	if st.IsConfirmed {
		payment.Secret = p.PaymentPreimage
		for _, htlc := range p.Htlcs {
			if htlc.Status == lnrpc.HTLCAttempt_SUCCEEDED {
				payment.ConfirmedAt = lightning.UnixNanoToMillis(htlc.ResolveTimeNs)
			}
		}
	}
	return payment
}

func toChannel(ch *lnrpc.Channel) lightning.Channel {
	txid, vout := splitChannelPoint(ch.ChannelPoint)
	return lightning.Channel{
		ID:               scid(ch.ChanId),
		PartnerPublicKey: ch.RemotePubkey,
		LocalBalance:     nonNegative(ch.LocalBalance),
		RemoteBalance:    nonNegative(ch.RemoteBalance),
		Capacity:         nonNegative(ch.Capacity),
		IsPrivate:        ch.Private,
		IsActive:         ch.Active,
		TransactionID:    txid,
		TransactionVout:  vout,
	}
}

func toPeer(p *lnrpc.Peer) lightning.Peer {
	return lightning.Peer{
		PublicKey:   p.PubKey,
		Socket:      p.Address,
		IsInbound:   p.Inbound,
		BytesSent:   p.BytesSent,
		BytesRecv:   p.BytesRecv,
		TokensSent:  nonNegative(p.SatSent),
		TokensRecv:  nonNegative(p.SatRecv),
		PingTimeUs:  p.PingTime,
		IsConnected: true,
	}
}

func toPolicy(pubkey string, p *lnrpc.RoutingPolicy) lightning.ChannelPolicy {
	return lightning.ChannelPolicy{
		PublicKey:      pubkey,
		BaseFeeMtokens: nonNegative(p.GetFeeBaseMsat()),
		FeeRate:        nonNegative(p.GetFeeRateMilliMsat()),
		CltvDelta:      p.GetTimeLockDelta(),
		IsDisabled:     p.GetDisabled(),
	}
}
