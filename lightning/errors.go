package lightning

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound                = errors.New("not found")
	ErrPaymentHasFailed        = errors.New("payment has failed")
	ErrChannelRequestRejected  = errors.New("channel request rejected")
	ErrNotSupported            = errors.New("not supported by backend")
	ErrNodeUnavailable         = errors.New("node unavailable")
	ErrPaymentAttemptsTimedOut = &ServiceUnavailableError{Reason: "PaymentAttemptsTimedOut"}
	// ErrPaymentAttemptsExhausted is returned when every bounded retry came
	// back without a preimage.
	ErrPaymentAttemptsExhausted = &ServiceUnavailableError{Reason: "PaymentAttemptsExhausted"}
)

// NodeError wraps transport and authentication failures of a backend call.
type NodeError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Op, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

func NewNodeError(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &NodeError{Kind: kind, Op: op, Err: err}
}

// NotFoundError is an absent or ambiguous lookup. errors.Is(err, ErrNotFound)
// matches it.
type NotFoundError struct {
	What      string
	ID        string
	Ambiguous bool
}

func (e *NotFoundError) Error() string {
	if e.Ambiguous {
		return fmt.Sprintf("%s %s: ambiguous match", e.What, e.ID)
	}
	return fmt.Sprintf("%s %s: not found", e.What, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ServiceUnavailableError marks failures a caller may retry later. It maps to
// a 503 at service boundaries.
type ServiceUnavailableError struct {
	Reason string
}

func (e *ServiceUnavailableError) Error() string {
	return e.Reason
}

func IsServiceUnavailable(err error) bool {
	var target *ServiceUnavailableError
	return errors.As(err, &target)
}
