package lnworker

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/blocktank/lnworker/nodeman"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/jessevdk/go-flags"
	"github.com/pelletier/go-toml/v2"
)

type LogLevel uint8

const (
	LOGLEVEL_INFO = LogLevel(iota + 1)
	LOGLEVEL_DEBUG
)

var (
	DefaultDatadir         = btcutil.AppDataDir("lnworker", false)
	DefaultConfigFile      = filepath.Join(DefaultDatadir, "lnworker.conf")
	DefaultNodesFile       = filepath.Join(DefaultDatadir, "nodes.toml")
	DefaultLogLevel        = LOGLEVEL_INFO
	DefaultMetricsHost     = "localhost:9464"
	DefaultAcceptorTimeout = nodeman.DefaultAcceptorTimeout
	DefaultPayRetryMax     = uint64(10)
)

type Config struct {
	ConfigFile      string        `long:"configfile" description:"path to configfile"`
	NodesFile       string        `long:"nodesfile" description:"path to the toml file listing the managed nodes"`
	DataDir         string        `long:"datadir" description:"lnworker datadir"`
	LogLevel        LogLevel      `long:"loglevel" description:"loglevel (1=Info, 2=Debug)"`
	MetricsHost     string        `long:"metricshost" description:"host to serve prometheus metrics on, empty to disable"`
	AcceptorTimeout time.Duration `long:"acceptortimeout" description:"time the channel acceptor service has to answer"`
	PayRetryMax     uint64        `long:"payretrymax" description:"retries of a payment attempt that returned no preimage"`
	WebhookRetryMax int           `long:"webhookretrymax" description:"retries of an event delivery on connection errors and 5xx answers"`
}

func (c *Config) String() string {
	return fmt.Sprintf("ConfigFile %s, NodesFile %s, Datadir %s, LogLevel %d, MetricsHost %s, AcceptorTimeout %s",
		c.ConfigFile, c.NodesFile, c.DataDir, c.LogLevel, c.MetricsHost, c.AcceptorTimeout)
}

func (c *Config) Validate() error {
	if c.NodesFile == "" {
		return fmt.Errorf("nodesfile must be set")
	}
	if c.LogLevel != LOGLEVEL_INFO && c.LogLevel != LOGLEVEL_DEBUG {
		return fmt.Errorf("unknown loglevel %d", c.LogLevel)
	}
	if c.AcceptorTimeout <= 0 {
		return fmt.Errorf("acceptortimeout must be positive")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		ConfigFile:      DefaultConfigFile,
		NodesFile:       DefaultNodesFile,
		DataDir:         DefaultDatadir,
		LogLevel:        DefaultLogLevel,
		MetricsHost:     DefaultMetricsHost,
		AcceptorTimeout: DefaultAcceptorTimeout,
		PayRetryMax:     DefaultPayRetryMax,
	}
}

// LoadConfig parses the flags, overlays the ini config file and parses the
// flags again so that they take precedence.
func LoadConfig(args []string) (*Config, error) {
	cfg := DefaultConfig()
	parser := flags.NewParser(cfg, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	if _, err := os.Stat(cfg.ConfigFile); err == nil {
		fileParser := flags.NewParser(cfg, flags.Default|flags.IgnoreUnknown)
		err = flags.NewIniParser(fileParser).ParseFile(cfg.ConfigFile)
		if err != nil {
			return nil, err
		}
	}

	flagParser := flags.NewParser(cfg, flags.Default)
	if _, err := flagParser.ParseArgs(args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NodesFile is the managed node set: an ordered [[node]] list, the [events]
// routing table and the [services] url map.
type NodesFile struct {
	Nodes    []nodeman.NodeConfig `toml:"node"`
	Events   nodeman.Routes       `toml:"events"`
	Services map[string]string    `toml:"services"`
}

func LoadNodesFile(path string) (*NodesFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	nf := &NodesFile{}
	if err := toml.Unmarshal(b, nf); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := nf.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return nf, nil
}

func (nf *NodesFile) Validate() error {
	if len(nf.Nodes) == 0 {
		return fmt.Errorf("no node configured")
	}
	names := make(map[string]struct{}, len(nf.Nodes))
	for _, n := range nf.Nodes {
		if err := n.Validate(); err != nil {
			return err
		}
		if _, ok := names[n.Name]; ok {
			return fmt.Errorf("duplicate node name %q", n.Name)
		}
		names[n.Name] = struct{}{}
	}
	if err := nf.Events.Validate(); err != nil {
		return err
	}
	for _, routed := range [][]string{
		nf.Events.HtlcForward,
		nf.Events.ChannelAcceptor,
		nf.Events.PeerEvents,
		nf.Events.InvoicePaid,
	} {
		for _, svc := range routed {
			if _, ok := nf.Services[svc]; !ok {
				return fmt.Errorf("no url for service %q", svc)
			}
		}
	}
	return nil
}
