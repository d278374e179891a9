package nodeman

import (
	"context"
	"fmt"

	"github.com/blocktank/lnworker/clightning"
	"github.com/blocktank/lnworker/lightning"
	"github.com/blocktank/lnworker/lnd"
	"github.com/blocktank/lnworker/log"
	"github.com/blocktank/lnworker/node"
	"go.uber.org/zap"
)

// NodeConfig describes one managed node. Socket is host:port for lnd and the
// REST url for core-lightning. Cert and Macaroon are file paths.
type NodeConfig struct {
	Type          lightning.Kind `toml:"type"`
	Name          string         `toml:"name"`
	Socket        string         `toml:"socket"`
	Cert          string         `toml:"cert"`
	Macaroon      string         `toml:"macaroon"`
	Websocket     string         `toml:"websocket"`
	TLSSkipVerify bool           `toml:"tls_skip_verify"`
}

func (c NodeConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("node name missing")
	}
	if c.Socket == "" {
		return fmt.Errorf("node %s: socket missing", c.Name)
	}
	switch c.Type {
	case lightning.KindLND, lightning.KindCLN:
	default:
		return fmt.Errorf("node %s: unknown node type", c.Name)
	}
	return nil
}

// DialBackend connects the backend variant for the configured type.
func DialBackend(ctx context.Context, cfg NodeConfig, logger *zap.Logger) (lightning.Backend, error) {
	switch cfg.Type {
	case lightning.KindLND:
		client, err := lnd.Dial(ctx, &lnd.Config{
			Host:         cfg.Socket,
			TLSCertPath:  cfg.Cert,
			MacaroonPath: cfg.Macaroon,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	case lightning.KindCLN:
		client, err := clightning.New(clightning.Config{
			URL:           cfg.Socket,
			MacaroonPath:  cfg.Macaroon,
			TLSCertPath:   cfg.Cert,
			TLSSkipVerify: cfg.TLSSkipVerify,
			Websocket:     cfg.Websocket,
		}, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown node type %s", cfg.Type)
	}
}

// DialNodes builds one node per config entry, in order. A node whose backend
// cannot be dialed is kept as unreachable so the others keep serving.
func DialNodes(ctx context.Context, cfgs []NodeConfig, logger *zap.Logger, opts ...node.Option) []*node.Node {
	nodes := make([]*node.Node, 0, len(cfgs))
	for _, cfg := range cfgs {
		backend, err := DialBackend(ctx, cfg, logger)
		if err != nil {
			log.Errorf("[NodeMan]: could not dial %s node %s: %v", cfg.Type, cfg.Name, err)
			nodes = append(nodes, node.Unreachable(cfg.Name, cfg.Type, err))
			continue
		}
		nodes = append(nodes, node.New(cfg.Name, backend, opts...))
	}
	return nodes
}
