package lightning

import (
	"errors"
	"sync"
)

var ErrAlreadyDecided = errors.New("channel request already decided")

// DecideFunc answers the backend. accept false carries the rejection reason.
type DecideFunc func(accept bool, reason string) error

// ChannelRequest is an inbound channel open waiting for a decision. Accept and
// Reject share one decision; whichever runs first wins.
type ChannelRequest struct {
	ID               string `json:"id"`
	Capacity         uint64 `json:"capacity"`
	PushTokens       uint64 `json:"local_balance"`
	PartnerPublicKey string `json:"partner_public_key"`
	CsvDelay         uint32 `json:"csv_delay"`
	MaxPendingHtlcs  uint32 `json:"max_pending_payments"`
	IsPrivate        bool   `json:"is_private"`
	Peer             *Peer  `json:"peer_info,omitempty"`

	decision *decision
}

type decision struct {
	once     sync.Once
	decide   DecideFunc
	decided  bool
	accepted bool
	mu       sync.Mutex
}

// WithDecider binds the backend answer to the request.
func (r *ChannelRequest) WithDecider(decide DecideFunc) *ChannelRequest {
	r.decision = &decision{decide: decide}
	return r
}

func (r *ChannelRequest) Accept() error {
	return r.answer(true, "")
}

func (r *ChannelRequest) Reject(reason string) error {
	return r.answer(false, reason)
}

// Decided reports whether a decision was made and which.
func (r *ChannelRequest) Decided() (decided, accepted bool) {
	if r.decision == nil {
		return false, false
	}
	r.decision.mu.Lock()
	defer r.decision.mu.Unlock()
	return r.decision.decided, r.decision.accepted
}

func (r *ChannelRequest) answer(accept bool, reason string) error {
	if r.decision == nil {
		return ErrNotSupported
	}
	err := ErrAlreadyDecided
	r.decision.once.Do(func() {
		r.decision.mu.Lock()
		r.decision.decided = true
		r.decision.accepted = accept
		r.decision.mu.Unlock()
		err = r.decision.decide(accept, reason)
	})
	return err
}
