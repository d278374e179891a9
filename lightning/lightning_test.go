package lightning

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func Test_SatMsatRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sat := rapid.Uint64Range(0, 21_000_000*100_000_000).Draw(t, "sat")
		msat := SatToMsat(sat)
		if got := MsatToSat(msat); got != sat {
			t.Fatalf("round trip of %d gave %d", sat, got)
		}
		if again := MsatToSat(SatToMsat(MsatToSat(msat))); again != sat {
			t.Fatalf("second round trip of %d gave %d", sat, again)
		}
	})
}

func Test_MsatToSatFloors(t *testing.T) {
	assert.Equal(t, uint64(0), MsatToSat(999))
	assert.Equal(t, uint64(1), MsatToSat(1000))
	assert.Equal(t, uint64(1), MsatToSat(1999))
	assert.Equal(t, uint64(2000), SatToMsat(2))
}

func Test_UnixToMillis(t *testing.T) {
	assert.Equal(t, int64(0), UnixToMillis(0))
	assert.Equal(t, int64(0), UnixToMillis(-5))
	assert.Equal(t, int64(1_700_000_000_000), UnixToMillis(1_700_000_000))
	assert.Equal(t, int64(1_700_000_000_123), UnixNanoToMillis(1_700_000_000_123_456_789))
}

func Test_StatusFromCLN(t *testing.T) {
	tests := map[string]Status{
		"paid":     StatusConfirmed,
		"complete": StatusConfirmed,
		"pending":  StatusPending,
		"unpaid":   StatusPending,
		"failed":   StatusFailed,
		"expired":  StatusFailed,
		"bogus":    {},
	}
	for in, want := range tests {
		in, want := in, want
		t.Run(in, func(t *testing.T) {
			got := StatusFromCLN(in)
			assert.Equal(t, want, got)
			if got.Known() {
				n := 0
				for _, b := range []bool{got.IsConfirmed, got.IsFailed, got.IsPending} {
					if b {
						n++
					}
				}
				assert.Equal(t, 1, n)
			}
		})
	}
}

func Test_StatusState(t *testing.T) {
	assert.Equal(t, PaymentStateConfirmed, StatusConfirmed.State())
	assert.Equal(t, PaymentStateFailed, StatusFailed.State())
	assert.Equal(t, PaymentStatePending, StatusPending.State())
	assert.Equal(t, PaymentStateUnknown, Status{}.State())
	assert.Equal(t, "pending_settlement", PaymentStatePendingSettlement.String())
}

func Test_ParseKind(t *testing.T) {
	k, err := ParseKind("LND")
	require.NoError(t, err)
	assert.Equal(t, KindLND, k)

	k, err = ParseKind(" cln ")
	require.NoError(t, err)
	assert.Equal(t, KindCLN, k)

	_, err = ParseKind("eclair")
	assert.Error(t, err)
}

func Test_Scid(t *testing.T) {
	assert.Equal(t, "1x2x3", Scid("1:2:3").ClnStyle())
	assert.Equal(t, "1:2:3", Scid("1x2x3").LndStyle())
}

func Test_Preimage(t *testing.T) {
	p, err := GetPreimage()
	require.NoError(t, err)

	parsed, err := MakePreimageFromStr(p.String())
	require.NoError(t, err)
	assert.Equal(t, p, parsed)
	assert.Equal(t, p.Hash(), parsed.Hash())

	_, err = MakePreimageFromStr("abcd")
	assert.Error(t, err)
}

func Test_InvoiceExpiry(t *testing.T) {
	now := time.UnixMilli(1_000_000)
	assert.Equal(t, time.Duration(0), CreateInvoiceRequest{}.Expiry(now))
	assert.Equal(t, time.Hour, CreateInvoiceRequest{ExpirySeconds: 3600, ExpiresAt: 5}.Expiry(now))
	assert.Equal(t, time.Minute, CreateInvoiceRequest{ExpiresAt: 1_060_000}.Expiry(now))
	assert.Equal(t, time.Duration(0), CreateInvoiceRequest{ExpiresAt: 10}.Expiry(now))
}

func Test_Errors(t *testing.T) {
	err := fmt.Errorf("lookup: %w", &NotFoundError{What: "invoice", ID: "aa"})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.True(t, IsServiceUnavailable(fmt.Errorf("pay: %w", ErrPaymentAttemptsTimedOut)))
	assert.True(t, IsServiceUnavailable(ErrPaymentAttemptsExhausted))
	assert.False(t, IsServiceUnavailable(ErrPaymentHasFailed))

	inner := errors.New("connection refused")
	nodeErr := NewNodeError(KindLND, "GetInfo", inner)
	assert.ErrorIs(t, nodeErr, inner)
	assert.Equal(t, "LND GetInfo: connection refused", nodeErr.Error())
	assert.NoError(t, NewNodeError(KindLND, "GetInfo", nil))
}

func Test_ChannelRequestDecidesOnce(t *testing.T) {
	var calls []bool
	var mu sync.Mutex
	req := (&ChannelRequest{ID: "abc"}).WithDecider(func(accept bool, reason string) error {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, accept)
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_ = req.Accept()
			} else {
				_ = req.Reject("no")
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, calls, 1)
	decided, accepted := req.Decided()
	assert.True(t, decided)
	assert.Equal(t, calls[0], accepted)
	assert.ErrorIs(t, req.Reject("again"), ErrAlreadyDecided)
}

func Test_ChannelRequestWithoutDecider(t *testing.T) {
	req := &ChannelRequest{ID: "abc"}
	assert.ErrorIs(t, req.Accept(), ErrNotSupported)
}

func Test_StreamEndAndError(t *testing.T) {
	s := NewStream[int](nil)
	go func() {
		for i := 0; i < 3; i++ {
			s.Send(context.Background(), i)
		}
		s.Finish(nil)
	}()

	var got []int
	for v := range s.Events() {
		got = append(got, v)
	}
	assert.Equal(t, []int{0, 1, 2}, got)
	assert.NoError(t, s.Err())

	failing := NewStream[int](nil)
	go failing.Finish(errors.New("stream reset"))
	for range failing.Events() {
	}
	assert.EqualError(t, failing.Err(), "stream reset")
}

func Test_StreamCloseCancelsProducer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewStream[int](cancel)
	go func() {
		for s.Send(ctx, 1) {
		}
		s.Finish(ctx.Err())
	}()

	<-s.Events()
	s.Close()
	for range s.Events() {
	}
	assert.ErrorIs(t, s.Err(), context.Canceled)
}

func Test_Filter(t *testing.T) {
	in := NewStream[int](nil)
	go func() {
		for i := 0; i < 6; i++ {
			in.Send(context.Background(), i)
		}
		in.Finish(nil)
	}()

	even := Filter(in, func(v int) bool { return v%2 == 0 })
	var got []int
	for v := range even.Events() {
		got = append(got, v)
	}
	assert.Equal(t, []int{0, 2, 4}, got)
	assert.NoError(t, even.Err())
}
