package clightning

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/blocktank/lnworker/lightning"
)

// Msat is a millisatoshi amount. Depending on the node version it is encoded
// as a number or as a string with msat suffix.
type Msat uint64

func (m *Msat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*m = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSuffix(s, "msat")
		if s == "" {
			*m = 0
			return nil
		}
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid msat amount %q: %w", s, err)
		}
		*m = Msat(v)
		return nil
	}
	var v uint64
	if err := json.Unmarshal(b, &v); err != nil {
		// Amounts above 2^53 may come as floats.
		var f float64
		if ferr := json.Unmarshal(b, &f); ferr != nil || f < 0 {
			return fmt.Errorf("invalid msat amount %s", b)
		}
		v = uint64(f)
	}
	*m = Msat(v)
	return nil
}

func (m Msat) Sat() uint64 {
	return lightning.MsatToSat(uint64(m))
}

// firstMsat returns the first non zero amount. Field names changed between
// node versions and both are decoded.
func firstMsat(amounts ...Msat) Msat {
	for _, a := range amounts {
		if a != 0 {
			return a
		}
	}
	return 0
}

type getInfoResponse struct {
	ID                  string `json:"id"`
	Alias               string `json:"alias"`
	NumPeers            int    `json:"num_peers"`
	NumActiveChannels   int    `json:"num_active_channels"`
	NumPendingChannels  int    `json:"num_pending_channels"`
	BlockHeight         uint32 `json:"blockheight"`
	Version             string `json:"version"`
	WarningBitcoindSync string `json:"warning_bitcoind_sync"`
	WarningLightningd   string `json:"warning_lightningd_sync"`
	Address             []struct {
		Type    string `json:"type"`
		Address string `json:"address"`
		Port    int    `json:"port"`
	} `json:"address"`
}

type getBalanceResponse struct {
	TotalBalance  uint64 `json:"totalBalance"`
	ConfBalance   uint64 `json:"confBalance"`
	UnconfBalance uint64 `json:"unconfBalance"`
}

type localRemoteBalResponse struct {
	LocalBalance    uint64 `json:"localBalance"`
	RemoteBalance   uint64 `json:"remoteBalance"`
	PendingBalance  uint64 `json:"pendingBalance"`
	InactiveBalance uint64 `json:"inactiveBalance"`
}

type feeRatesResponse struct {
	PerKb struct {
		Opening       uint64 `json:"opening"`
		MutualClose   uint64 `json:"mutual_close"`
		MinAcceptable uint64 `json:"min_acceptable"`
	} `json:"perkb"`
}

type genInvoiceRequest struct {
	Amount      uint64 `json:"amount"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Expiry      int64  `json:"expiry,omitempty"`
}

type genInvoiceResponse struct {
	PaymentHash string `json:"payment_hash"`
	ExpiresAt   int64  `json:"expires_at"`
	Bolt11      string `json:"bolt11"`
}

type invoice struct {
	Label              string `json:"label"`
	Bolt11             string `json:"bolt11"`
	PaymentHash        string `json:"payment_hash"`
	Description        string `json:"description"`
	Status             string `json:"status"`
	AmountMsat         Msat   `json:"amount_msat"`
	Msatoshi           Msat   `json:"msatoshi"`
	AmountReceivedMsat Msat   `json:"amount_received_msat"`
	MsatoshiReceived   Msat   `json:"msatoshi_received"`
	PayIndex           uint64 `json:"pay_index"`
	PaidAt             int64  `json:"paid_at"`
	PaymentPreimage    string `json:"payment_preimage"`
	ExpiresAt          int64  `json:"expires_at"`
}

type decodePayResponse struct {
	PaymentHash        string `json:"payment_hash"`
	Payee              string `json:"payee"`
	Description        string `json:"description"`
	AmountMsat         Msat   `json:"amount_msat"`
	Msatoshi           Msat   `json:"msatoshi"`
	CreatedAt          int64  `json:"created_at"`
	Expiry             int64  `json:"expiry"`
	MinFinalCltvExpiry uint32 `json:"min_final_cltv_expiry"`
}

type payRequest struct {
	Invoice       string  `json:"invoice"`
	Amount        uint64  `json:"amount,omitempty"`
	MaxFeePercent float64 `json:"maxfeepercent,omitempty"`
	ExemptFee     uint64  `json:"exemptfee,omitempty"`
	RetryFor      int64   `json:"retry_for,omitempty"`
}

type payResponse struct {
	PaymentHash     string  `json:"payment_hash"`
	PaymentPreimage string  `json:"payment_preimage"`
	Destination     string  `json:"destination"`
	Status          string  `json:"status"`
	AmountMsat      Msat    `json:"amount_msat"`
	AmountSentMsat  Msat    `json:"amount_sent_msat"`
	CreatedAt       float64 `json:"created_at"`
}

type pay struct {
	Bolt11         string `json:"bolt11"`
	PaymentHash    string `json:"payment_hash"`
	Destination    string `json:"destination"`
	Status         string `json:"status"`
	Preimage       string `json:"preimage"`
	AmountMsat     Msat   `json:"amount_msat"`
	AmountSentMsat Msat   `json:"amount_sent_msat"`
	CreatedAt      int64  `json:"created_at"`
	CompletedAt    int64  `json:"completed_at"`
}

type channel struct {
	ID                       string `json:"id"`
	Connected                bool   `json:"connected"`
	State                    string `json:"state"`
	ShortChannelID           string `json:"short_channel_id"`
	ChannelID                string `json:"channel_id"`
	FundingTxid              string `json:"funding_txid"`
	FundingOutnum            uint32 `json:"funding_outnum"`
	Private                  bool   `json:"private"`
	ToUsMsat                 Msat   `json:"to_us_msat"`
	MsatoshiToUs             Msat   `json:"msatoshi_to_us"`
	TotalMsat                Msat   `json:"total_msat"`
	MsatoshiTotal            Msat   `json:"msatoshi_total"`
	FeeBaseMsat              Msat   `json:"fee_base_msat"`
	FeeProportionalMillionth uint64 `json:"fee_proportional_millionths"`
}

type peer struct {
	ID        string   `json:"id"`
	Connected bool     `json:"connected"`
	Netaddr   []string `json:"netaddr"`
	Alias     string   `json:"alias"`
}

type networkChannel struct {
	Source              string `json:"source"`
	Destination         string `json:"destination"`
	ShortChannelID      string `json:"short_channel_id"`
	AmountMsat          Msat   `json:"amount_msat"`
	Satoshis            uint64 `json:"satoshis"`
	BaseFeeMillisatoshi uint64 `json:"base_fee_millisatoshi"`
	FeePerMillionth     uint64 `json:"fee_per_millionth"`
	Delay               uint32 `json:"delay"`
	Active              bool   `json:"active"`
	LastUpdate          int64  `json:"last_update"`
}

type connectPeerRequest struct {
	ID string `json:"id"`
}

type openChannelRequest struct {
	ID         string `json:"id"`
	Satoshis   uint64 `json:"satoshis"`
	FeeRate    string `json:"feeRate,omitempty"`
	Announce   bool   `json:"announce"`
	PushAmount uint64 `json:"pushAmount,omitempty"`
}

type openChannelResponse struct {
	Tx        string `json:"tx"`
	Txid      string `json:"txid"`
	Outnum    uint32 `json:"outnum"`
	ChannelID string `json:"channel_id"`
}

type closeChannelResponse struct {
	Tx   string `json:"tx"`
	Txid string `json:"txid"`
	Type string `json:"type"`
}

type setChannelFeeRequest struct {
	ID   string `json:"id"`
	Base uint64 `json:"base"`
	PPM  uint64 `json:"ppm"`
}

type setChannelFeeResponse struct {
	Base     uint64 `json:"base"`
	PPM      uint64 `json:"ppm"`
	Channels []struct {
		PeerID         string `json:"peer_id"`
		ChannelID      string `json:"channel_id"`
		ShortChannelID string `json:"short_channel_id"`
	} `json:"channels"`
}

type forward struct {
	InChannel    string  `json:"in_channel"`
	OutChannel   string  `json:"out_channel"`
	InHtlcID     uint64  `json:"in_htlc_id"`
	OutHtlcID    uint64  `json:"out_htlc_id"`
	InMsat       Msat    `json:"in_msat"`
	InMsatoshi   Msat    `json:"in_msatoshi"`
	OutMsat      Msat    `json:"out_msat"`
	OutMsatoshi  Msat    `json:"out_msatoshi"`
	FeeMsat      Msat    `json:"fee_msat"`
	Fee          Msat    `json:"fee"`
	Status       string  `json:"status"`
	ReceivedTime float64 `json:"received_time"`
	ResolvedTime float64 `json:"resolved_time"`
}

// invoicePaymentMessage is the websocket notification for a paid invoice.
type invoicePaymentMessage struct {
	InvoicePayment *struct {
		Label    string `json:"label"`
		Preimage string `json:"preimage"`
		Msat     Msat   `json:"msat"`
	} `json:"invoice_payment"`
}
