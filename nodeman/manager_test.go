package nodeman

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/blocktank/lnworker/lightning"
	"github.com/blocktank/lnworker/lightning/mocks"
	"github.com/blocktank/lnworker/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newMockNode(t *testing.T, name, pubkey string) (*node.Node, *mocks.MockBackend) {
	t.Helper()
	backend := mocks.NewMockBackend(gomock.NewController(t))
	backend.EXPECT().Kind().Return(lightning.KindLND).AnyTimes()
	backend.EXPECT().Close().Return(nil).AnyTimes()
	backend.EXPECT().GetInfo(gomock.Any()).Return(&lightning.NodeInfo{PublicKey: pubkey}, nil).AnyTimes()
	return node.New(name, backend), backend
}

func newDownNode(t *testing.T, name string) *node.Node {
	t.Helper()
	backend := mocks.NewMockBackend(gomock.NewController(t))
	backend.EXPECT().Kind().Return(lightning.KindCLN).AnyTimes()
	backend.EXPECT().Close().Return(nil).AnyTimes()
	backend.EXPECT().GetInfo(gomock.Any()).Return(nil, lightning.NewNodeError(lightning.KindCLN, "getinfo", errors.New("unauthorized")))
	return node.New(name, backend)
}

func startManager(t *testing.T, routes Routes, b Broadcaster, nodes ...*node.Node) *Manager {
	t.Helper()
	m, err := New(nodes, routes, b, WithAcceptorTimeout(200*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(m.Stop)
	return m
}

// twoNodes is the A/B fixture: A has public key pkA, B has pkB.
func twoNodes(t *testing.T) (*Manager, *mocks.MockBackend, *mocks.MockBackend) {
	a, backendA := newMockNode(t, "node-a", "pkA")
	b, backendB := newMockNode(t, "node-b", "pkB")
	return startManager(t, Routes{}, nil, a, b), backendA, backendB
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []BroadcastEvent
	seen   chan BroadcastEvent
	reply  func(ctx context.Context, ev BroadcastEvent) (json.RawMessage, error)
}

func newFakeBroadcaster() *fakeBroadcaster {
	return &fakeBroadcaster{seen: make(chan BroadcastEvent, 16)}
}

func (b *fakeBroadcaster) DeliverBroadcast(ctx context.Context, ev BroadcastEvent) error {
	b.mu.Lock()
	b.events = append(b.events, ev)
	b.mu.Unlock()
	b.seen <- ev
	if ev.Respond == nil || b.reply == nil {
		return nil
	}
	body, err := b.reply(ctx, ev)
	if err != nil {
		return err
	}
	ev.Respond(body, nil)
	return nil
}

func (b *fakeBroadcaster) next(t *testing.T) BroadcastEvent {
	t.Helper()
	select {
	case ev := <-b.seen:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("no event delivered")
		return BroadcastEvent{}
	}
}

func TestNew(t *testing.T) {
	a, _ := newMockNode(t, "node-a", "pkA")
	dup, _ := newMockNode(t, "node-a", "pkB")

	_, err := New(nil, Routes{}, nil)
	assert.ErrorIs(t, err, ErrNoNodes)

	_, err = New([]*node.Node{a, dup}, Routes{}, nil)
	assert.ErrorContains(t, err, "duplicate node name")

	_, err = New([]*node.Node{a}, Routes{HtlcForward: []string{"svc:forwards"}}, nil)
	assert.Error(t, err)

	_, err = New([]*node.Node{a}, Routes{ChannelAcceptor: []string{"svc:a", "svc:b"}}, newFakeBroadcaster())
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	m, _, _ := twoNodes(t)

	tests := []struct {
		name    string
		sel     Selector
		want    []string
		matches int
	}{
		{name: "default is first node", sel: Selector{}, want: []string{"node-a"}},
		{name: "by public key", sel: Selector{NodeID: "pkB"}, want: []string{"node-b"}},
		{name: "by internal name", sel: Selector{NodeID: "node-a"}, want: []string{"node-a"}},
		{name: "all", sel: Selector{All: true}, want: []string{"node-a", "node-b"}},
		{name: "unknown", sel: Selector{NodeID: "pkC"}, matches: 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			nodes, err := m.Resolve(tt.sel)
			if tt.want == nil {
				var selErr *SelectionError
				require.ErrorAs(t, err, &selErr)
				assert.Equal(t, tt.matches, selErr.Matches)
				return
			}
			require.NoError(t, err)
			var names []string
			for _, n := range nodes {
				names = append(names, n.Name())
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestResolve_AmbiguousNodeID(t *testing.T) {
	// A node named after another node's public key matches twice.
	a, _ := newMockNode(t, "node-a", "pkA")
	b, _ := newMockNode(t, "pkA", "pkB")
	m := startManager(t, Routes{}, nil, a, b)

	_, err := m.Resolve(Selector{NodeID: "pkA"})
	var selErr *SelectionError
	require.ErrorAs(t, err, &selErr)
	assert.Equal(t, 2, selErr.Matches)
}

func TestStart_UnavailableNode(t *testing.T) {
	a, _ := newMockNode(t, "node-a", "pkA")
	b := newDownNode(t, "node-b")
	m := startManager(t, Routes{}, nil, b, a)

	nodes, err := m.Resolve(Selector{})
	require.NoError(t, err)
	assert.Equal(t, "node-a", nodes[0].Name())

	_, err = m.Resolve(Selector{NodeID: "node-b"})
	assert.ErrorIs(t, err, lightning.ErrNodeUnavailable)

	nodes, err = m.Resolve(Selector{All: true})
	require.NoError(t, err)
	assert.Len(t, nodes, 1)

	health := m.Health()
	require.Len(t, health, 2)
	assert.Equal(t, "node-b", health[0].Name)
	assert.Equal(t, node.StateUnavailable, health[0].State)
	assert.Contains(t, health[0].Error, "unauthorized")
	assert.Equal(t, node.StateAvailable, health[1].State)
	assert.Equal(t, "pkA", health[1].PublicKey)
}

func TestStart_NoneAvailable(t *testing.T) {
	m, err := New([]*node.Node{newDownNode(t, "node-a")}, Routes{}, nil)
	require.NoError(t, err)

	err = m.Start(context.Background())
	assert.ErrorIs(t, err, ErrNoNodesAvailable)
	assert.ErrorIs(t, err, lightning.ErrNodeUnavailable)
}

func TestStart_DuplicatePublicKey(t *testing.T) {
	a, _ := newMockNode(t, "node-a", "pkA")
	b, _ := newMockNode(t, "node-b", "pkA")
	m, err := New([]*node.Node{a, b}, Routes{}, nil)
	require.NoError(t, err)

	assert.ErrorContains(t, m.Start(context.Background()), "share public key")
}
