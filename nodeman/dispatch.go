package nodeman

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/blocktank/lnworker/lightning"
	"github.com/blocktank/lnworker/node"
)

type handler func(ctx context.Context, m *Manager, sel Selector, args json.RawMessage) (any, error)

type noArgs struct{}

// done is the result of calls that return nothing.
type done struct{}

type idArgs struct {
	ID string `json:"id"`
}

// UnmarshalJSON accepts a bare id string or {id}.
func (a *idArgs) UnmarshalJSON(b []byte) error {
	var id string
	if err := json.Unmarshal(b, &id); err == nil {
		a.ID = id
		return nil
	}
	var wire struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	a.ID = wire.ID
	return nil
}

type secretArgs struct {
	Secret string `json:"secret"`
}

type requestArgs struct {
	Request string `json:"request"`
}

type listChannelsArgs struct {
	RemoteNode string `json:"remote_node"`
}

// decodeArgs accepts the arguments bare or as the first element of an array.
// Empty arguments leave v untouched.
func decodeArgs(raw json.RawMessage, v any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return fmt.Errorf("invalid arguments: %w", err)
		}
		if len(items) == 0 {
			return nil
		}
		raw = items[0]
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// perNode builds a handler that decodes A and runs fn on the selected nodes.
func perNode[A any, T any](fn func(ctx context.Context, n *node.Node, args A) (T, error)) handler {
	return func(ctx context.Context, m *Manager, sel Selector, raw json.RawMessage) (any, error) {
		var args A
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		return CallAction(ctx, m, sel, func(ctx context.Context, n *node.Node) (T, error) {
			return fn(ctx, n, args)
		})
	}
}

func getPayment(ctx context.Context, n *node.Node, args idArgs) (*lightning.Payment, error) {
	return n.GetPayment(ctx, args.ID)
}

var methods = map[string]handler{
	"getInfo": perNode(func(ctx context.Context, n *node.Node, _ noArgs) (*lightning.NodeInfo, error) {
		return n.GetInfo(ctx)
	}),
	"getFeeRate": perNode(func(ctx context.Context, n *node.Node, _ noArgs) (uint64, error) {
		return n.GetFeeRate(ctx)
	}),
	"getOnChainBalance": perNode(func(ctx context.Context, n *node.Node, _ noArgs) (uint64, error) {
		return n.GetOnChainBalance(ctx)
	}),
	"getBalances": perNode(func(ctx context.Context, n *node.Node, _ noArgs) (*lightning.Balances, error) {
		return n.GetBalances(ctx)
	}),
	"createInvoice": perNode(func(ctx context.Context, n *node.Node, req lightning.CreateInvoiceRequest) (*lightning.Invoice, error) {
		return n.CreateInvoice(ctx, req)
	}),
	"createHodlInvoice": perNode(func(ctx context.Context, n *node.Node, req lightning.CreateInvoiceRequest) (*lightning.Invoice, error) {
		return n.CreateHodlInvoice(ctx, req)
	}),
	"cancelInvoice": perNode(func(ctx context.Context, n *node.Node, args idArgs) (done, error) {
		return done{}, n.CancelInvoice(ctx, args.ID)
	}),
	"settleHodlInvoice": perNode(func(ctx context.Context, n *node.Node, args secretArgs) (done, error) {
		return done{}, n.SettleHodlInvoice(ctx, args.Secret)
	}),
	"getInvoice": perNode(func(ctx context.Context, n *node.Node, args idArgs) (*lightning.Invoice, error) {
		return n.GetInvoice(ctx, args.ID)
	}),
	"listInvoices": perNode(func(ctx context.Context, n *node.Node, req lightning.InvoicesRequest) ([]lightning.Invoice, error) {
		return n.GetInvoices(ctx, req)
	}),
	"decodePaymentRequest": perNode(func(ctx context.Context, n *node.Node, args requestArgs) (*lightning.DecodedPaymentRequest, error) {
		return n.DecodePaymentRequest(ctx, args.Request)
	}),
	"pay": func(ctx context.Context, m *Manager, sel Selector, raw json.RawMessage) (any, error) {
		var req node.PayRequest
		if err := decodeArgs(raw, &req); err != nil {
			return nil, err
		}
		return m.Pay(ctx, sel, req)
	},
	"getPayment":        perNode(getPayment),
	"getSettledPayment": perNode(getPayment),
	"listPayments": perNode(func(ctx context.Context, n *node.Node, req lightning.PaymentsRequest) ([]lightning.Payment, error) {
		return n.ListPayments(ctx, req)
	}),
	"listChannels": func(ctx context.Context, m *Manager, sel Selector, raw json.RawMessage) (any, error) {
		var args listChannelsArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		return m.ListChannels(ctx, sel, args.RemoteNode)
	},
	"listPeers": perNode(func(ctx context.Context, n *node.Node, _ noArgs) ([]lightning.Peer, error) {
		return n.ListPeers(ctx)
	}),
	"listClosedChannels": perNode(func(ctx context.Context, n *node.Node, _ noArgs) ([]lightning.ClosedChannel, error) {
		return n.ListClosedChannels(ctx)
	}),
	"getChannel": perNode(func(ctx context.Context, n *node.Node, args idArgs) (*lightning.ChannelInfo, error) {
		return n.GetChannel(ctx, args.ID)
	}),
	"addPeer": perNode(func(ctx context.Context, n *node.Node, req lightning.AddPeerRequest) (done, error) {
		return done{}, n.AddPeer(ctx, req)
	}),
	"openChannel": perNode(func(ctx context.Context, n *node.Node, req lightning.OpenChannelRequest) (*lightning.ChannelPoint, error) {
		return n.OpenChannel(ctx, req)
	}),
	"closeChannel": perNode(func(ctx context.Context, n *node.Node, req lightning.CloseChannelRequest) (*lightning.ChannelPoint, error) {
		return n.CloseChannel(ctx, req)
	}),
	"updateRoutingFees": func(ctx context.Context, m *Manager, sel Selector, raw json.RawMessage) (any, error) {
		var req lightning.RoutingFeeUpdate
		if err := decodeArgs(raw, &req); err != nil {
			return nil, err
		}
		return m.UpdateRoutingFees(ctx, sel, req)
	},
	"getForwards": perNode(func(ctx context.Context, n *node.Node, req lightning.ForwardsRequest) ([]lightning.Forward, error) {
		return n.GetForwards(ctx, req)
	}),
	"getNodeOfClosedChannel": func(ctx context.Context, m *Manager, _ Selector, raw json.RawMessage) (any, error) {
		var args idArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		partner, err := m.GetNodeOfClosedChannel(ctx, args.ID)
		if err != nil || partner == "" {
			return nil, err
		}
		return partner, nil
	},
	"getNodeHealth": func(_ context.Context, m *Manager, _ Selector, _ json.RawMessage) (any, error) {
		return m.Health(), nil
	},
}

// Dispatch runs the named method with JSON arguments. The result marshals to
// the single node data or, for {all: true}, to the per node aggregate.
func (m *Manager) Dispatch(ctx context.Context, method string, sel Selector, args json.RawMessage) (any, error) {
	h, ok := methods[method]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
	return h(ctx, m, sel, args)
}

// Methods lists the names Dispatch accepts.
func Methods() []string {
	names := make([]string, 0, len(methods))
	for name := range methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
