package lnd

import (
	"context"
	"fmt"
	"time"

	"github.com/blocktank/lnworker/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
)

// WaitForReady checks on the status of a grpc client connection. We wait until
// the connection is READY, until timeout or until ctx is done. Is a blocking
// call.
func WaitForReady(ctx context.Context, conn *grpc.ClientConn, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	state := conn.GetState()
	if state == connectivity.Ready {
		return nil
	}
	conn.Connect()

	log.Debugf("Waiting for client connection to be READY: current state: %s", state)

	for {
		ok := conn.WaitForStateChange(ctx, state)
		if !ok {
			return fmt.Errorf("waiting for client connection to be READY: %w", ctx.Err())
		}
		state = conn.GetState()
		log.Debugf("Waiting for client connection to be READY: state changed: %s", state)
		if state == connectivity.Ready {
			return nil
		}
	}
}
