package lnworker_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blocktank/lnworker/cmd/lnworker"
	"github.com/blocktank/lnworker/lightning"
	"github.com/blocktank/lnworker/nodeman"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nodesFile = `
[[node]]
type = "LND"
name = "lnd-1"
socket = "127.0.0.1:10009"
cert = "/lnd/tls.cert"
macaroon = "/lnd/admin.macaroon"

[[node]]
type = "cln"
name = "cln-1"
socket = "https://127.0.0.1:3001"
macaroon = "/cln/access.macaroon"
websocket = "wss://127.0.0.1:3001"
tls_skip_verify = true

[events]
htlc_forward = ["svc:forwards"]
channel_acceptor = ["svc:acceptor"]
peer_events = ["svc:peers", "svc:forwards"]

[services]
"svc:forwards" = "http://localhost:8001/events"
"svc:acceptor" = "http://localhost:8002/channels"
"svc:peers" = "http://localhost:8003/peers"
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), fs.ModePerm))
	return path
}

func TestLoadNodesFile(t *testing.T) {
	t.Parallel()
	nf, err := lnworker.LoadNodesFile(writeFile(t, "nodes.toml", nodesFile))
	require.NoError(t, err)

	assert.Equal(t, []nodeman.NodeConfig{
		{
			Type:     lightning.KindLND,
			Name:     "lnd-1",
			Socket:   "127.0.0.1:10009",
			Cert:     "/lnd/tls.cert",
			Macaroon: "/lnd/admin.macaroon",
		},
		{
			Type:          lightning.KindCLN,
			Name:          "cln-1",
			Socket:        "https://127.0.0.1:3001",
			Macaroon:      "/cln/access.macaroon",
			Websocket:     "wss://127.0.0.1:3001",
			TLSSkipVerify: true,
		},
	}, nf.Nodes)
	assert.Equal(t, nodeman.Routes{
		HtlcForward:     []string{"svc:forwards"},
		ChannelAcceptor: []string{"svc:acceptor"},
		PeerEvents:      []string{"svc:peers", "svc:forwards"},
	}, nf.Events)
	assert.Len(t, nf.Services, 3)
}

func TestLoadNodesFile_Invalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "no nodes",
			content: `[events]`,
			wantErr: "no node configured",
		},
		{
			name: "unknown type",
			content: `
[[node]]
type = "eclair"
name = "e"
socket = "localhost:1"
`,
			wantErr: "unknown node type",
		},
		{
			name: "duplicate name",
			content: `
[[node]]
type = "lnd"
name = "a"
socket = "localhost:1"

[[node]]
type = "cln"
name = "a"
socket = "http://localhost:2"
`,
			wantErr: "duplicate node name",
		},
		{
			name: "two acceptors",
			content: `
[[node]]
type = "lnd"
name = "a"
socket = "localhost:1"

[events]
channel_acceptor = ["svc:a", "svc:b"]

[services]
"svc:a" = "http://localhost:1"
"svc:b" = "http://localhost:2"
`,
			wantErr: "at most one channel_acceptor",
		},
		{
			name: "service without url",
			content: `
[[node]]
type = "lnd"
name = "a"
socket = "localhost:1"

[events]
invoice_paid = ["svc:orders"]
`,
			wantErr: `no url for service "svc:orders"`,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := lnworker.LoadNodesFile(writeFile(t, "nodes.toml", tt.content))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()
	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		cfg, err := lnworker.LoadConfig([]string{"--configfile", filepath.Join(t.TempDir(), "missing.conf")})
		require.NoError(t, err)
		assert.Equal(t, lnworker.DefaultNodesFile, cfg.NodesFile)
		assert.Equal(t, lnworker.LOGLEVEL_INFO, cfg.LogLevel)
		assert.Equal(t, 15*time.Second, cfg.AcceptorTimeout)
		assert.NoError(t, cfg.Validate())
	})
	t.Run("ini file and flags", func(t *testing.T) {
		t.Parallel()
		conf := writeFile(t, "lnworker.conf", `
nodesfile=/etc/lnworker/nodes.toml
loglevel=2
acceptortimeout=5s
metricshost=0.0.0.0:9100
`)
		cfg, err := lnworker.LoadConfig([]string{"--configfile", conf, "--acceptortimeout", "3s"})
		require.NoError(t, err)
		assert.Equal(t, "/etc/lnworker/nodes.toml", cfg.NodesFile)
		assert.Equal(t, lnworker.LOGLEVEL_DEBUG, cfg.LogLevel)
		assert.Equal(t, 3*time.Second, cfg.AcceptorTimeout)
		assert.Equal(t, "0.0.0.0:9100", cfg.MetricsHost)
	})
	t.Run("invalid loglevel", func(t *testing.T) {
		t.Parallel()
		cfg := lnworker.DefaultConfig()
		cfg.LogLevel = 7
		assert.Error(t, cfg.Validate())
	})
}
