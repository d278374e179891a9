package nodeman

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/blocktank/lnworker/lightning"
	"github.com/blocktank/lnworker/log"
	"github.com/blocktank/lnworker/node"
	"golang.org/x/sync/errgroup"
)

// NodeResult is one node's share of an aggregated call.
type NodeResult[T any] struct {
	NodePublicKey string `json:"node_public_key"`
	Data          T      `json:"data"`
}

// Result holds Data for a single node call and PerNode, keyed by internal
// node name, for an {all: true} call.
type Result[T any] struct {
	Data    T
	PerNode map[string]NodeResult[T]
}

func (r Result[T]) MarshalJSON() ([]byte, error) {
	if r.PerNode != nil {
		return json.Marshal(r.PerNode)
	}
	return json.Marshal(r.Data)
}

// Action is a call against one node.
type Action[T any] func(ctx context.Context, n *node.Node) (T, error)

// CallAction runs action on the nodes sel designates. Across several nodes
// the calls run concurrently, one per node; the first failure cancels the
// others and no partial result is returned.
func CallAction[T any](ctx context.Context, m *Manager, sel Selector, action Action[T]) (Result[T], error) {
	nodes, err := m.Resolve(sel)
	if err != nil {
		return Result[T]{}, err
	}
	if !sel.All {
		data, err := action(ctx, nodes[0])
		if err != nil {
			return Result[T]{}, err
		}
		return Result[T]{Data: data}, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	data := make([]T, len(nodes))
	for i, n := range nodes {
		i, n := i, n
		g.Go(func() error {
			d, err := action(gctx, n)
			if err != nil {
				return fmt.Errorf("%s: %w", n.Name(), err)
			}
			data[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result[T]{}, err
	}

	perNode := make(map[string]NodeResult[T], len(nodes))
	for i, n := range nodes {
		perNode[n.Name()] = NodeResult[T]{
			NodePublicKey: n.PublicKey(),
			Data:          data[i],
		}
	}
	return Result[T]{PerNode: perNode}, nil
}

// ListChannels lists channels, only those with remoteNode as partner when it
// is set.
func (m *Manager) ListChannels(ctx context.Context, sel Selector, remoteNode string) (Result[[]lightning.Channel], error) {
	return CallAction(ctx, m, sel, func(ctx context.Context, n *node.Node) ([]lightning.Channel, error) {
		channels, err := n.ListChannels(ctx)
		if err != nil {
			return nil, err
		}
		return filterChannels(channels, remoteNode), nil
	})
}

func filterChannels(channels []lightning.Channel, remoteNode string) []lightning.Channel {
	if remoteNode == "" {
		return channels
	}
	res := make([]lightning.Channel, 0, len(channels))
	for _, ch := range channels {
		if ch.PartnerPublicKey == remoteNode {
			res = append(res, ch)
		}
	}
	return res
}

// UpdateRoutingFees fails with *RoutingFeeUpdateError when the backend
// reports channels it could not update.
func (m *Manager) UpdateRoutingFees(ctx context.Context, sel Selector, req lightning.RoutingFeeUpdate) (Result[*lightning.RoutingFeeUpdateResult], error) {
	return CallAction(ctx, m, sel, func(ctx context.Context, n *node.Node) (*lightning.RoutingFeeUpdateResult, error) {
		res, err := n.UpdateRoutingFees(ctx, req)
		if err != nil {
			return nil, err
		}
		if len(res.Failures) > 0 {
			return nil, &RoutingFeeUpdateError{Failures: res.Failures}
		}
		return res, nil
	})
}

// GetNodeOfClosedChannel scans the closed channels of the available nodes in
// order and returns the partner public key of the first match, or "" when no
// node knows the channel. Backends without closed channel history are
// skipped.
func (m *Manager) GetNodeOfClosedChannel(ctx context.Context, id string) (string, error) {
	for _, n := range m.available() {
		closed, err := n.ListClosedChannels(ctx)
		if errors.Is(err, lightning.ErrNotSupported) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("%s: %w", n.Name(), err)
		}
		for _, ch := range closed {
			if ch.ID == id {
				return ch.PartnerPublicKey, nil
			}
		}
	}
	return "", nil
}

// Pay pays through the selected node and reports the outcome to the
// observer. A payment request is paid once, so the all selector is refused.
func (m *Manager) Pay(ctx context.Context, sel Selector, req node.PayRequest) (Result[*lightning.Payment], error) {
	if sel.All {
		return Result[*lightning.Payment]{}, &SelectionError{NodeID: "all", Matches: len(m.available())}
	}
	return CallAction(ctx, m, sel, func(ctx context.Context, n *node.Node) (*lightning.Payment, error) {
		return m.pay(ctx, n, req)
	})
}

func (m *Manager) pay(ctx context.Context, n *node.Node, req node.PayRequest) (*lightning.Payment, error) {
	start := time.Now()
	p, err := n.Pay(ctx, req)
	m.observer.PaymentFinished(n.Name(), time.Since(start), err)
	if err != nil {
		log.Infof("[NodeMan]: payment via %s failed: %v", n.Name(), err)
		return nil, err
	}
	return p, nil
}
