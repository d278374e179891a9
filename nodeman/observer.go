package nodeman

import (
	"time"

	"github.com/blocktank/lnworker/node"
)

// Observer receives the manager's operational signals. Implementations must
// be safe for concurrent use.
type Observer interface {
	NodeHealth(name string, state node.State)
	PaymentFinished(name string, took time.Duration, err error)
	EventDelivered(category Category, service string, err error)
	ChannelRequestDecided(name string, accepted bool)
	StreamEnded(name string, stream string, err error)
}

type nopObserver struct{}

func (nopObserver) NodeHealth(string, node.State) {}
func (nopObserver) PaymentFinished(string, time.Duration, error) {}
func (nopObserver) EventDelivered(Category, string, error) {}
func (nopObserver) ChannelRequestDecided(string, bool) {}
func (nopObserver) StreamEnded(string, string, error) {}
