package main

import (
	"context"
	"errors"
	"fmt"
	core_log "log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/blocktank/lnworker/broadcast"
	"github.com/blocktank/lnworker/cmd/lnworker"
	"github.com/blocktank/lnworker/log"
	"github.com/blocktank/lnworker/metrics"
	"github.com/blocktank/lnworker/node"
	"github.com/blocktank/lnworker/nodeman"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	err := run()
	if err != nil {
		core_log.Fatal(err)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigChan)

	// load config
	cfg, err := lnworker.LoadConfig(os.Args[1:])
	if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
		return nil
	}
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := makeDirectories(cfg.DataDir); err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()
	log.SetLogger(logger.Sugar())
	log.Infof("Starting lnworker with config: %s", cfg)

	nodesFile, err := lnworker.LoadNodesFile(cfg.NodesFile)
	if err != nil {
		return err
	}

	var broadcaster nodeman.Broadcaster
	if !nodesFile.Events.Empty() {
		broadcaster, err = broadcast.NewWebhook(nodesFile.Services,
			broadcast.WithRetry(cfg.WebhookRetryMax, 500*time.Millisecond, 5*time.Second))
		if err != nil {
			return err
		}
	}

	opts := []nodeman.Option{nodeman.WithAcceptorTimeout(cfg.AcceptorTimeout)}
	if cfg.MetricsHost != "" {
		observer, err := metrics.New(prometheus.DefaultRegisterer)
		if err != nil {
			return err
		}
		opts = append(opts, nodeman.WithObserver(observer))
		go serveMetrics(ctx, cfg.MetricsHost)
	}

	nodes := nodeman.DialNodes(ctx, nodesFile.Nodes, logger,
		node.WithPayRetry(cfg.PayRetryMax, 0))
	manager, err := nodeman.New(nodes, nodesFile.Events, broadcaster, opts...)
	if err != nil {
		return err
	}
	if err := manager.Start(ctx); err != nil {
		return err
	}
	defer manager.Stop()

	for _, h := range manager.Health() {
		if h.Error != "" {
			log.Infof("node %s is %s: %s", h.Name, h.State, h.Error)
			continue
		}
		log.Infof("node %s (%s) is %s", h.Name, h.PublicKey, h.State)
	}
	log.Infof("lnworker running with %d nodes", len(nodes))

	sig := <-sigChan
	log.Infof("received signal: %v, shutting down", sig)
	return nil
}

func newLogger(cfg *lnworker.Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.Encoding = "console"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.OutputPaths = []string{"stdout", filepath.Join(cfg.DataDir, "log")}
	zcfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if cfg.LogLevel == lnworker.LOGLEVEL_DEBUG {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zcfg.Build()
}

func serveMetrics(ctx context.Context, host string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: host, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	log.Infof("serving metrics on %s", host)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Errorf("metrics server: %v", err)
	}
}

func makeDirectories(fullDir string) error {
	err := os.MkdirAll(fullDir, 0700)
	if err != nil {
		// Show a nicer error message if it's because a symlink is
		// linked to a directory that does not exist (probably because
		// it's not mounted).
		if e, ok := err.(*os.PathError); ok && os.IsExist(err) {
			if link, lerr := os.Readlink(e.Path); lerr == nil {
				str := "is symlink %s -> %s mounted?"
				err = fmt.Errorf(str, e.Path, link)
			}
		}
		return fmt.Errorf("failed to create directory %s: %w", fullDir, err)
	}
	return nil
}
