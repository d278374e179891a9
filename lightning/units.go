package lightning

import (
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/lightningnetwork/lnd/lnwire"
)

// MsatToSat floors to whole satoshis.
func MsatToSat(msat uint64) uint64 {
	return uint64(lnwire.MilliSatoshi(msat).ToSatoshis())
}

func SatToMsat(sat uint64) uint64 {
	return uint64(lnwire.NewMSatFromSatoshis(btcutil.Amount(sat)))
}

// UnixToMillis converts backend seconds. Non-positive input means unknown.
func UnixToMillis(sec int64) int64 {
	if sec <= 0 {
		return 0
	}
	return sec * 1000
}

func UnixNanoToMillis(ns int64) int64 {
	if ns <= 0 {
		return 0
	}
	return time.Unix(0, ns).UnixMilli()
}
