package lightning

import "strings"

// Status is the canonical settlement triple. Once the state of a record is
// known exactly one of the flags is set.
type Status struct {
	IsConfirmed bool `json:"is_confirmed"`
	IsFailed    bool `json:"is_failed"`
	IsPending   bool `json:"is_pending"`
}

var (
	StatusConfirmed = Status{IsConfirmed: true}
	StatusFailed    = Status{IsFailed: true}
	StatusPending   = Status{IsPending: true}
)

func (s Status) Known() bool {
	return s.IsConfirmed || s.IsFailed || s.IsPending
}

// StatusFromCLN maps the status vocabulary of core-lightning invoices, pays
// and forwards. Unrecognized values give the zero Status.
func StatusFromCLN(status string) Status {
	switch strings.ToLower(status) {
	case "paid", "complete", "settled":
		return StatusConfirmed
	case "failed", "local_failed", "expired":
		return StatusFailed
	case "pending", "unpaid", "offered":
		return StatusPending
	}
	return Status{}
}

type PaymentState int

const (
	PaymentStateUnknown PaymentState = iota
	PaymentStatePending
	// PaymentStatePendingSettlement is a payment locked in by a hold invoice
	// whose preimage has not been released yet.
	PaymentStatePendingSettlement
	PaymentStateConfirmed
	PaymentStateFailed
)

func (s PaymentState) String() string {
	switch s {
	case PaymentStatePending:
		return "pending"
	case PaymentStatePendingSettlement:
		return "pending_settlement"
	case PaymentStateConfirmed:
		return "confirmed"
	case PaymentStateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s PaymentState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// State derives the payment state from the triple. PendingSettlement is never
// derived here; the payment executor assigns it.
func (s Status) State() PaymentState {
	switch {
	case s.IsConfirmed:
		return PaymentStateConfirmed
	case s.IsFailed:
		return PaymentStateFailed
	case s.IsPending:
		return PaymentStatePending
	}
	return PaymentStateUnknown
}
