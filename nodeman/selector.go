package nodeman

import (
	"fmt"

	"github.com/blocktank/lnworker/lightning"
	"github.com/blocktank/lnworker/node"
)

// Selector picks the nodes a call runs on. The zero value selects the first
// available node.
type Selector struct {
	NodeID string `json:"node_id,omitempty"`
	All    bool   `json:"all,omitempty"`
}

// Resolve returns the nodes sel designates. NodeID matches the public key or
// the internal name and must match exactly one node. All returns every
// available node in configured order.
func (m *Manager) Resolve(sel Selector) ([]*node.Node, error) {
	switch {
	case sel.All:
		nodes := m.available()
		if len(nodes) == 0 {
			return nil, ErrNoNodesAvailable
		}
		return nodes, nil

	case sel.NodeID != "":
		var matches []*node.Node
		for _, n := range m.nodes {
			if n.Name() == sel.NodeID || (n.PublicKey() != "" && n.PublicKey() == sel.NodeID) {
				matches = append(matches, n)
			}
		}
		if len(matches) != 1 {
			return nil, &SelectionError{NodeID: sel.NodeID, Matches: len(matches)}
		}
		if !matches[0].Available() {
			return nil, fmt.Errorf("%s: %w", matches[0].Name(), lightning.ErrNodeUnavailable)
		}
		return matches, nil

	default:
		for _, n := range m.nodes {
			if n.Available() {
				return []*node.Node{n}, nil
			}
		}
		return nil, ErrNoNodesAvailable
	}
}

// Node resolves a selector that must designate a single node.
func (m *Manager) Node(sel Selector) (*node.Node, error) {
	nodes, err := m.Resolve(sel)
	if err != nil {
		return nil, err
	}
	if len(nodes) != 1 {
		return nil, &SelectionError{NodeID: "all", Matches: len(nodes)}
	}
	return nodes[0], nil
}
