package clightning

import (
	"encoding/hex"
	"strings"

	"github.com/blocktank/lnworker/lightning"
)

func isPaymentHash(id string) bool {
	if len(id) != lightning.HashSize*2 {
		return false
	}
	_, err := hex.DecodeString(id)
	return err == nil
}

// toInvoice normalizes an invoice. Expiry and payment times are seconds.
func toInvoice(inv *invoice) *lightning.Invoice {
	st := lightning.StatusFromCLN(inv.Status)
	if st.IsConfirmed && (inv.PayIndex == 0 || inv.PaidAt == 0) {
		// Paid without settlement details yet.
		st = lightning.StatusPending
	}
	res := &lightning.Invoice{
		ID:          inv.PaymentHash,
		InternalID:  inv.Label,
		Request:     inv.Bolt11,
		Description: inv.Description,
		Tokens:      firstMsat(inv.AmountMsat, inv.Msatoshi).Sat(),
		Received:    firstMsat(inv.AmountReceivedMsat, inv.MsatoshiReceived).Sat(),
		ExpiresAt:   lightning.UnixToMillis(inv.ExpiresAt),
		Status:      st,
	}
	if st.IsConfirmed {
		res.ConfirmedAt = lightning.UnixToMillis(inv.PaidAt)
		res.Secret = inv.PaymentPreimage
	}
	return res
}

func toPayment(p *pay) *lightning.Payment {
	st := lightning.StatusFromCLN(p.Status)
	payment := &lightning.Payment{
		ID:          p.PaymentHash,
		Request:     p.Bolt11,
		Destination: p.Destination,
		Hops:        []string{},
		Tokens:      p.AmountMsat.Sat(),
		CreatedAt:   lightning.UnixToMillis(p.CreatedAt),
		State:       st.State(),
		Status:      st,
	}
	if p.Destination != "" {
		payment.Hops = []string{p.Destination}
	}
	if p.AmountSentMsat > p.AmountMsat {
		payment.Fee = lightning.MsatToSat(uint64(p.AmountSentMsat - p.AmountMsat))
	}
	if st.IsConfirmed {
		payment.Secret = p.Preimage
		payment.ConfirmedAt = lightning.UnixToMillis(p.CompletedAt)
	}
	return payment
}

func toChannel(ch *channel) lightning.Channel {
	total := firstMsat(ch.TotalMsat, ch.MsatoshiTotal)
	local := firstMsat(ch.ToUsMsat, ch.MsatoshiToUs)
	var remote Msat
	if total > local {
		remote = total - local
	}
	return lightning.Channel{
		ID:               ch.ShortChannelID,
		PartnerPublicKey: ch.ID,
		LocalBalance:     local.Sat(),
		RemoteBalance:    remote.Sat(),
		Capacity:         total.Sat(),
		IsPrivate:        ch.Private,
		IsActive:         ch.Connected && ch.State == channelStateNormal,
		TransactionID:    ch.FundingTxid,
		TransactionVout:  ch.FundingOutnum,
		BaseFeeMtokens:   uint64(ch.FeeBaseMsat),
		FeeRate:          ch.FeeProportionalMillionth,
	}
}

func toPeer(p peer) lightning.Peer {
	res := lightning.Peer{
		PublicKey:   p.ID,
		IsConnected: p.Connected,
	}
	if len(p.Netaddr) > 0 {
		res.Socket = p.Netaddr[0]
	}
	return res
}

// toForward normalizes a forward. Times are fractional seconds.
func toForward(f *forward) lightning.Forward {
	in := firstMsat(f.InMsat, f.InMsatoshi)
	out := firstMsat(f.OutMsat, f.OutMsatoshi)
	fee := firstMsat(f.FeeMsat, f.Fee)
	if fee == 0 && in > out {
		fee = in - out
	}
	return lightning.Forward{
		InChannel:  f.InChannel,
		OutChannel: f.OutChannel,
		InPayment:  f.InHtlcID,
		OutPayment: f.OutHtlcID,
		Tokens:     out.Sat(),
		Fee:        fee.Sat(),
		CreatedAt:  secondsToMillis(f.ReceivedTime),
		Status:     lightning.StatusFromCLN(strings.TrimSpace(f.Status)),
	}
}

func secondsToMillis(sec float64) int64 {
	if sec <= 0 {
		return 0
	}
	return int64(sec * 1000)
}
