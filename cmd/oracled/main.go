package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/priceoracle/oracle/internal/service/interrupter"
	"github.com/priceoracle/oracle/pkg/app"
	"github.com/priceoracle/oracle/pkg/client/daemon"
	"github.com/priceoracle/oracle/pkg/config"
	"github.com/priceoracle/oracle/pkg/logging"
	"github.com/priceoracle/oracle/pkg/metrics"
	"github.com/priceoracle/oracle/pkg/version"
)

var (
	configFile = flag.String("config", "config/oracled.yaml", "Path to configuration file")
	showVer    = flag.Bool("version", false, "Show version and exit")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Println(version.String())
		os.Exit(0)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)

	logger.Info("starting oracled", "version", version.String(), "rpc_host", cfg.Validator.RPCHost)

	if cfg.Metrics.Enabled {
		metrics.Init()
	}

	d := daemon.New(cfg, logger.ZerologLogger())
	if err := d.Init(); err != nil {
		logger.Fatal("daemon init failed", "error", err)
		os.Exit(1)
	}

	a := app.New().WithService(interrupter.Interrupter{}).WithService(d)

	if cfg.Metrics.Enabled {
		a = a.WithService(metricsServer{addr: cfg.Metrics.Addr})
	}

	if err := a.Run(context.Background()); err != nil {
		logger.Warn("oracled exiting", "error", err)
	}

	if err := d.Teardown(); err != nil {
		logger.Warn("teardown error", "error", err)
	}

	logger.Info("oracled stopped")
}

// metricsServer adapts metrics.ServeHTTP to app.Service so the Prometheus
// HTTP endpoint shares the actor group's shutdown semantics.
type metricsServer struct {
	addr string
}

func (m metricsServer) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- metrics.ServeHTTP(m.addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
