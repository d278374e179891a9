package lnd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/blocktank/lnworker/log"
	grpc_retry "github.com/grpc-ecosystem/go-grpc-middleware/retry"
	"github.com/lightningnetwork/lnd/macaroons"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"gopkg.in/macaroon.v2"

	internal_log "log"
)

const (
	// defaultGrpcBackoffTime is the linear back off time between failing grpc
	// calls when retries are enabled.
	defaultGrpcBackoffTime = 1 * time.Second

	defaultDialTimeout = 30 * time.Second
)

// Config describes how to reach one lnd node.
type Config struct {
	Host         string
	TLSCertPath  string
	MacaroonPath string
	// MaxRetries is the number of transparent grpc retries on Unavailable.
	// Zero keeps every call a single attempt.
	MaxRetries  uint
	DialTimeout time.Duration
}

func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("lnd host missing")
	}
	if c.TLSCertPath == "" {
		return fmt.Errorf("lnd tls cert path missing")
	}
	if c.MacaroonPath == "" {
		return fmt.Errorf("lnd macaroon path missing")
	}
	return nil
}

func GetClientConnection(ctx context.Context, cfg *Config) (*grpc.ClientConn, error) {
	creds, err := credentials.NewClientTLSFromFile(cfg.TLSCertPath, "")
	if err != nil {
		return nil, err
	}
	macBytes, err := os.ReadFile(cfg.MacaroonPath)
	if err != nil {
		return nil, err
	}
	mac := &macaroon.Macaroon{}
	if err := mac.UnmarshalBinary(macBytes); err != nil {
		return nil, err
	}
	cred, err := macaroons.NewMacaroonCredential(mac)
	if err != nil {
		return nil, err
	}
	maxMsgRecvSize := grpc.MaxCallRecvMsgSize(1 * 1024 * 1024 * 500)

	debugLogger := internal_log.New(log.NewDebugLogger(), "[grpc_conn]: ", 0)
	retryOptions := []grpc_retry.CallOption{
		grpc_retry.WithBackoff(func(_ uint) time.Duration {
			return defaultGrpcBackoffTime
		}),
		grpc_retry.WithCodes(codes.Unavailable),
		grpc_retry.WithMax(cfg.MaxRetries),
		grpc_retry.WithLogger(debugLogger),
	}
	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(creds),
		grpc.WithPerRPCCredentials(cred),
		grpc.WithDefaultCallOptions(maxMsgRecvSize),
		grpc.WithStreamInterceptor(grpc_retry.StreamClientInterceptor(
			retryOptions...,
		)),
		grpc.WithUnaryInterceptor(grpc_retry.UnaryClientInterceptor(
			retryOptions...,
		)),
	}
	conn, err := grpc.DialContext(ctx, cfg.Host, opts...)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Dial connects to lnd and waits until the connection is READY.
func Dial(ctx context.Context, cfg *Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cc, err := GetClientConnection(ctx, cfg)
	if err != nil {
		return nil, err
	}
	timeout := cfg.DialTimeout
	if timeout == 0 {
		timeout = defaultDialTimeout
	}
	if err := WaitForReady(ctx, cc, timeout); err != nil {
		cc.Close()
		return nil, fmt.Errorf("lnd %s: %w", cfg.Host, err)
	}
	return NewClient(cc), nil
}
