// Package nodeman manages the ordered set of nodes: it resolves selectors,
// aggregates calls across nodes and fans node events out to the services
// routed to them.
package nodeman

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/blocktank/lnworker/lightning"
	"github.com/blocktank/lnworker/log"
	"github.com/blocktank/lnworker/node"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultAcceptorTimeout = 15 * time.Second

	// Channel requests that wait for the acceptor service at the same time.
	maxPendingRequests = 32
	eventQueueSize     = 256
)

type Manager struct {
	nodes       []*node.Node
	routes      Routes
	broadcaster Broadcaster
	observer    Observer

	acceptorTimeout time.Duration
	pending         *semaphore.Weighted

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

type Option func(*Manager)

func WithObserver(o Observer) Option {
	return func(m *Manager) {
		if o != nil {
			m.observer = o
		}
	}
}

func WithAcceptorTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.acceptorTimeout = d
		}
	}
}

// New validates that node names are unique and that every routed event has a
// broadcaster to go to.
func New(nodes []*node.Node, routes Routes, broadcaster Broadcaster, opts ...Option) (*Manager, error) {
	if len(nodes) == 0 {
		return nil, ErrNoNodes
	}
	names := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		if _, ok := names[n.Name()]; ok {
			return nil, fmt.Errorf("duplicate node name %q", n.Name())
		}
		names[n.Name()] = struct{}{}
	}
	if err := routes.Validate(); err != nil {
		return nil, err
	}
	if broadcaster == nil && !routes.Empty() {
		return nil, fmt.Errorf("events are routed but no broadcaster is set")
	}

	m := &Manager{
		nodes:           nodes,
		routes:          routes,
		broadcaster:     broadcaster,
		observer:        nopObserver{},
		acceptorTimeout: DefaultAcceptorTimeout,
		pending:         semaphore.NewWeighted(maxPendingRequests),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Start starts every node concurrently and subscribes the available ones to
// the routed event categories. Nodes that fail to start are reported through
// Health; Start only fails if none is available or two nodes share a public
// key.
func (m *Manager) Start(ctx context.Context) error {
	var wg sync.WaitGroup
	for _, n := range m.nodes {
		n := n
		wg.Add(1)
		go func() {
			defer wg.Done()
			// The error is kept in the node health.
			_ = n.Start(ctx)
			m.observer.NodeHealth(n.Name(), n.Health().State)
		}()
	}
	wg.Wait()

	available := m.available()
	if len(available) == 0 {
		return ErrNoNodesAvailable
	}
	keys := make(map[string]string, len(available))
	for _, n := range available {
		if other, ok := keys[n.PublicKey()]; ok {
			return fmt.Errorf("nodes %s and %s share public key %s", other, n.Name(), n.PublicKey())
		}
		keys[n.PublicKey()] = n.Name()
	}
	log.Infof("[NodeMan]: %d of %d nodes available", len(available), len(m.nodes))

	m.ctx, m.cancel = context.WithCancel(ctx)
	for _, n := range available {
		m.listen(n)
	}
	return nil
}

// Stop cancels every event stream, waits for the consumers to return and
// closes the backends.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	for _, n := range m.nodes {
		if err := n.Close(); err != nil {
			log.Debugf("[NodeMan]: closing %s: %v", n.Name(), err)
		}
	}
}

// Nodes returns the managed nodes in configured order.
func (m *Manager) Nodes() []*node.Node {
	return m.nodes
}

type NodeHealth struct {
	Name      string         `json:"internal_node_name"`
	PublicKey string         `json:"public_key,omitempty"`
	Kind      lightning.Kind `json:"type"`
	State     node.State     `json:"state"`
	Error     string         `json:"error,omitempty"`
	CheckedAt int64          `json:"checked_at"`
}

func (m *Manager) Health() []NodeHealth {
	res := make([]NodeHealth, 0, len(m.nodes))
	for _, n := range m.nodes {
		h := n.Health()
		nh := NodeHealth{
			Name:      n.Name(),
			PublicKey: n.PublicKey(),
			Kind:      n.Kind(),
			State:     h.State,
		}
		if h.Err != nil {
			nh.Error = h.Err.Error()
		}
		if !h.CheckedAt.IsZero() {
			nh.CheckedAt = h.CheckedAt.UnixMilli()
		}
		res = append(res, nh)
	}
	return res
}

func (m *Manager) available() []*node.Node {
	var res []*node.Node
	for _, n := range m.nodes {
		if n.Available() {
			res = append(res, n)
		}
	}
	return res
}
