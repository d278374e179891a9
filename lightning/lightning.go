// Package lightning holds the backend-neutral node model: the Backend
// contract every node family implements, the normalized records it returns
// and the helpers used to normalize them.
package lightning

import (
	"fmt"
	"strings"
)

// Kind is the backend family a node speaks.
type Kind int

const (
	KindUnknown Kind = iota
	KindLND
	KindCLN
)

func (k Kind) String() string {
	switch k {
	case KindLND:
		return "LND"
	case KindCLN:
		return "CLN"
	default:
		return "unknown"
	}
}

// ParseKind accepts the node type names used in the nodes file.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lnd":
		return KindLND, nil
	case "cln", "clightning", "core-lightning":
		return KindCLN, nil
	}
	return KindUnknown, fmt.Errorf("unknown node type %q", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

type Scid string

// ClnStyle returns the `short_channel_id` divided by 'x'
func (s Scid) ClnStyle() string {
	return strings.ReplaceAll(string(s), ":", "x")
}

// LndStyle returns the `short_channel_id` divided by ':'
func (s Scid) LndStyle() string {
	return strings.ReplaceAll(string(s), "x", ":")
}

type NodeInfo struct {
	PublicKey           string   `json:"public_key"`
	Alias               string   `json:"alias"`
	InternalName        string   `json:"internal_node_name"`
	PeersCount          int      `json:"peers_count"`
	ActiveChannelsCount int      `json:"active_channels_count"`
	PendingChannels     int      `json:"pending_channels_count"`
	BlockHeight         uint32   `json:"current_block_height"`
	SyncedToChain       bool     `json:"is_synced_to_chain"`
	Version             string   `json:"version"`
	URIs                []string `json:"uris"`
}

// Invoice amounts are satoshis and timestamps epoch milliseconds, zero when
// the backend does not know them.
type Invoice struct {
	ID            string `json:"id"`
	InternalID    string `json:"internal_id,omitempty"`
	Request       string `json:"request"`
	Description   string `json:"description"`
	Tokens        uint64 `json:"tokens"`
	Received      uint64 `json:"received"`
	CreatedAt     int64  `json:"created_at"`
	ExpiresAt     int64  `json:"expires_at"`
	ConfirmedAt   int64  `json:"confirmed_at"`
	Secret        string `json:"secret,omitempty"`
	IsHeld        bool   `json:"is_held"`
	NodePublicKey string `json:"node_public_key,omitempty"`
	Status
}

// SecretPending is returned in Payment.Secret while a hold invoice has locked
// the payment but not released the preimage yet.
const SecretPending = "PENDING"

type Payment struct {
	ID          string       `json:"id"`
	Request     string       `json:"request,omitempty"`
	Destination string       `json:"destination,omitempty"`
	Secret      string       `json:"secret"`
	Hops        []string     `json:"hops"`
	Tokens      uint64       `json:"tokens"`
	Fee         uint64       `json:"fee"`
	CreatedAt   int64        `json:"created_at"`
	ConfirmedAt int64        `json:"confirmed_at"`
	State       PaymentState `json:"state"`
	Status
}

// PayAttempt is the outcome of one PayViaPaymentRequest call. Secret is empty
// when the backend gave up before the preimage was revealed.
type PayAttempt struct {
	ID     string
	Secret string
	Hops   []string
	Tokens uint64
	Fee    uint64
	// UnknownDetails is set when the destination rejected the payment as
	// incorrect or unknown.
	UnknownDetails bool
	Status
}

func (a *PayAttempt) HasSecret() bool {
	return a.Secret != "" && a.Secret != SecretPending
}

type Channel struct {
	ID               string `json:"id"`
	PartnerPublicKey string `json:"partner_public_key"`
	LocalBalance     uint64 `json:"local_balance"`
	RemoteBalance    uint64 `json:"remote_balance"`
	Capacity         uint64 `json:"capacity"`
	IsPrivate        bool   `json:"is_private"`
	IsActive         bool   `json:"is_active"`
	TransactionID    string `json:"transaction_id"`
	TransactionVout  uint32 `json:"transaction_vout"`
	BaseFeeMtokens   uint64 `json:"base_fee_mtokens"`
	FeeRate          uint64 `json:"fee_rate"`
}

type ClosedChannel struct {
	ID               string `json:"id"`
	PartnerPublicKey string `json:"partner_public_key"`
	Capacity         uint64 `json:"capacity"`
	CloseHeight      uint32 `json:"close_confirm_height"`
	CloseTxID        string `json:"close_transaction_id"`
	FinalBalance     uint64 `json:"final_local_balance"`
}

type ChannelPolicy struct {
	PublicKey      string `json:"public_key"`
	BaseFeeMtokens uint64 `json:"base_fee_mtokens"`
	FeeRate        uint64 `json:"fee_rate"`
	CltvDelta      uint32 `json:"cltv_delta"`
	IsDisabled     bool   `json:"is_disabled"`
}

type ChannelInfo struct {
	ID        string          `json:"id"`
	Capacity  uint64          `json:"capacity"`
	UpdatedAt int64           `json:"updated_at"`
	Policies  []ChannelPolicy `json:"policies"`
}

type Peer struct {
	PublicKey   string `json:"public_key"`
	Socket      string `json:"socket"`
	IsInbound   bool   `json:"is_inbound"`
	BytesSent   uint64 `json:"bytes_sent"`
	BytesRecv   uint64 `json:"bytes_received"`
	TokensSent  uint64 `json:"tokens_sent"`
	TokensRecv  uint64 `json:"tokens_received"`
	PingTimeUs  int64  `json:"ping_time"`
	IsConnected bool   `json:"is_connected"`
}

type PeerEventKind string

const (
	PeerConnected    PeerEventKind = "connected"
	PeerDisconnected PeerEventKind = "disconnected"
)

type PeerEvent struct {
	Event PeerEventKind `json:"event"`
	Peer  Peer          `json:"peer"`
}

// Forward is an htlc routed through the node. Tokens and Fee are satoshis.
type Forward struct {
	InChannel  string `json:"in_channel"`
	OutChannel string `json:"out_channel"`
	InPayment  uint64 `json:"in_payment"`
	OutPayment uint64 `json:"out_payment"`
	Tokens     uint64 `json:"tokens"`
	Fee        uint64 `json:"fee"`
	CreatedAt  int64  `json:"at"`
	IsSend     bool   `json:"is_send"`
	IsReceive  bool   `json:"is_receive"`
	Status
}

type GraphUpdateKind string

const (
	GraphChannelUpdated GraphUpdateKind = "channel_updated"
	GraphChannelClosed  GraphUpdateKind = "channel_closed"
	GraphNodeUpdated    GraphUpdateKind = "node_updated"
)

type GraphUpdate struct {
	Kind      GraphUpdateKind `json:"kind"`
	ChannelID string          `json:"id,omitempty"`
	PublicKey string          `json:"public_key,omitempty"`
	Alias     string          `json:"alias,omitempty"`
	Capacity  uint64          `json:"capacity,omitempty"`
	Policy    *ChannelPolicy  `json:"policy,omitempty"`
}

type DecodedPaymentRequest struct {
	ID          string `json:"id"`
	Destination string `json:"destination"`
	Description string `json:"description"`
	Tokens      uint64 `json:"tokens"`
	CreatedAt   int64  `json:"created_at"`
	ExpiresAt   int64  `json:"expires_at"`
	CltvDelta   uint32 `json:"cltv_delta"`
}

// Balances are satoshis.
type Balances struct {
	ChannelBalance        uint64 `json:"channel_balance"`
	PendingChannelBalance uint64 `json:"pending_channel_balance"`
	ChainBalance          uint64 `json:"chain_balance"`
	PendingChainBalance   uint64 `json:"pending_chain_balance"`
}
