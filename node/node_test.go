package node

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/blocktank/lnworker/lightning"
	"github.com/blocktank/lnworker/lightning/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newStartedNode(t *testing.T, opts ...Option) (*Node, *mocks.MockBackend) {
	t.Helper()
	backend := mocks.NewMockBackend(gomock.NewController(t))
	backend.EXPECT().Kind().Return(lightning.KindLND).AnyTimes()
	backend.EXPECT().GetInfo(gomock.Any()).Return(&lightning.NodeInfo{
		PublicKey: "pkA",
		Alias:     "alice",
	}, nil)

	n := New("node-a", backend, opts...)
	require.NoError(t, n.Start(context.Background()))
	return n, backend
}

func TestStart(t *testing.T) {
	n, _ := newStartedNode(t)

	assert.True(t, n.Available())
	assert.Equal(t, "pkA", n.PublicKey())
	info := n.Info()
	assert.Equal(t, "node-a", info.InternalName)
	assert.Equal(t, "alice", info.Alias)
	h := n.Health()
	assert.Equal(t, StateAvailable, h.State)
	assert.NoError(t, h.Err)
	assert.False(t, h.CheckedAt.IsZero())
}

func TestStart_Unavailable(t *testing.T) {
	backend := mocks.NewMockBackend(gomock.NewController(t))
	authErr := lightning.NewNodeError(lightning.KindLND, "GetInfo", errors.New("permission denied"))
	backend.EXPECT().GetInfo(gomock.Any()).Return(nil, authErr)

	n := New("node-a", backend)
	err := n.Start(context.Background())
	require.ErrorIs(t, err, authErr)

	h := n.Health()
	assert.Equal(t, StateUnavailable, h.State)
	assert.Equal(t, authErr, h.Err)
	assert.Equal(t, "unavailable", h.State.String())

	_, err = n.ListChannels(context.Background())
	assert.ErrorIs(t, err, lightning.ErrNodeUnavailable)
	_, err = n.CreateInvoice(context.Background(), lightning.CreateInvoiceRequest{})
	assert.ErrorIs(t, err, lightning.ErrNodeUnavailable)
	_, err = n.Pay(context.Background(), PayRequest{Request: "lnbc1"})
	assert.ErrorIs(t, err, lightning.ErrNodeUnavailable)
	_, err = n.SubscribeToPaidInvoices(context.Background())
	assert.ErrorIs(t, err, lightning.ErrNodeUnavailable)
}

func TestNotStarted(t *testing.T) {
	n := New("node-a", mocks.NewMockBackend(gomock.NewController(t)))
	assert.Equal(t, StateStarting, n.Health().State)
	_, err := n.GetFeeRate(context.Background())
	assert.ErrorIs(t, err, lightning.ErrNodeUnavailable)
}

func TestCreateInvoice_StampsPublicKey(t *testing.T) {
	n, backend := newStartedNode(t)
	req := lightning.CreateInvoiceRequest{Tokens: 100, Description: "test"}
	backend.EXPECT().CreateInvoice(gomock.Any(), req).Return(&lightning.Invoice{ID: "aa"}, nil)
	backend.EXPECT().CreateHodlInvoice(gomock.Any(), req).Return(&lightning.Invoice{ID: "bb", Secret: "cc"}, nil)

	inv, err := n.CreateInvoice(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "pkA", inv.NodePublicKey)

	hodl, err := n.CreateHodlInvoice(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "pkA", hodl.NodePublicKey)
	assert.Equal(t, "cc", hodl.Secret)
}

func TestCreateInvoice_Error(t *testing.T) {
	n, backend := newStartedNode(t)
	backend.EXPECT().CreateInvoice(gomock.Any(), gomock.Any()).Return(nil, lightning.ErrNotSupported)

	_, err := n.CreateInvoice(context.Background(), lightning.CreateInvoiceRequest{})
	assert.ErrorIs(t, err, lightning.ErrNotSupported)
}

func TestGetInfo_InternalName(t *testing.T) {
	n, backend := newStartedNode(t)
	backend.EXPECT().GetInfo(gomock.Any()).Return(&lightning.NodeInfo{PublicKey: "pkA"}, nil)

	info, err := n.GetInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "node-a", info.InternalName)
}

func TestSubscribeToPaidInvoices(t *testing.T) {
	n, backend := newStartedNode(t)

	src := lightning.NewStream[lightning.Invoice](nil)
	backend.EXPECT().SubscribeToInvoices(gomock.Any()).Return(src, nil)

	paid, err := n.SubscribeToPaidInvoices(context.Background())
	require.NoError(t, err)

	go func() {
		ctx := context.Background()
		src.Send(ctx, lightning.Invoice{ID: "open", Status: lightning.StatusPending})
		src.Send(ctx, lightning.Invoice{ID: "paid", Status: lightning.StatusConfirmed})
		src.Send(ctx, lightning.Invoice{ID: "canceled", Status: lightning.StatusFailed})
		src.Finish(nil)
	}()

	var got []string
	timeout := time.After(5 * time.Second)
	for {
		select {
		case inv, ok := <-paid.Events():
			if !ok {
				assert.Equal(t, []string{"paid"}, got)
				assert.NoError(t, paid.Err())
				return
			}
			got = append(got, inv.ID)
		case <-timeout:
			t.Fatal("stream did not end")
		}
	}
}

func TestUnreachable(t *testing.T) {
	dialErr := errors.New("connection refused")
	n := Unreachable("node-c", lightning.KindCLN, dialErr)

	assert.Equal(t, lightning.KindCLN, n.Kind())
	assert.False(t, n.Available())
	assert.ErrorIs(t, n.Start(context.Background()), dialErr)
	assert.NoError(t, n.Close())
	_, err := n.GetInfo(context.Background())
	assert.ErrorIs(t, err, lightning.ErrNodeUnavailable)
}
