package nodeman

import (
	"errors"
	"fmt"
	"strings"

	"github.com/blocktank/lnworker/lightning"
)

var (
	ErrNoNodes          = errors.New("no nodes configured")
	ErrNoNodesAvailable = fmt.Errorf("all nodes: %w", lightning.ErrNodeUnavailable)
	ErrUnknownMethod    = errors.New("unknown method")
)

// SelectionError is returned when a node_id selector does not match exactly
// one managed node.
type SelectionError struct {
	NodeID  string
	Matches int
}

func (e *SelectionError) Error() string {
	if e.Matches == 0 {
		return fmt.Sprintf("invalid node_id %q: no node matches", e.NodeID)
	}
	return fmt.Sprintf("invalid node_id %q: %d nodes match", e.NodeID, e.Matches)
}

// RoutingFeeUpdateError carries the channels the backend refused to update.
type RoutingFeeUpdateError struct {
	Failures []lightning.RoutingFeeFailure
}

func (e *RoutingFeeUpdateError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %s", f.ChannelID, f.Reason))
	}
	return fmt.Sprintf("routing fee update failed for %d channels: %s",
		len(e.Failures), strings.Join(parts, "; "))
}
