// Package daemon wires the rpcclient, bootstrap controller, registry,
// scheduler, local server, and optional capture sink into the manager's
// public surface: Init, Bootstrap, Poll, Teardown (§6 "Daemon surface").
package daemon

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/priceoracle/oracle/pkg/client/bootstrap"
	"github.com/priceoracle/oracle/pkg/client/capture"
	"github.com/priceoracle/oracle/pkg/client/eventloop"
	"github.com/priceoracle/oracle/pkg/client/localserver"
	"github.com/priceoracle/oracle/pkg/client/registry"
	"github.com/priceoracle/oracle/pkg/client/rpcclient"
	"github.com/priceoracle/oracle/pkg/client/scheduler"
	"github.com/priceoracle/oracle/pkg/config"
	"github.com/priceoracle/oracle/pkg/program"
)

// Daemon is the client-side oracle process: one RPC connection to a
// validator, a resident registry of discovered products/prices, a
// round-robin scheduler, and a local server for publisher connections.
type Daemon struct {
	cfg    *config.Config
	logger zerolog.Logger

	rpc     *rpcclient.Client
	reg     *registry.Registry
	boot    *bootstrap.Controller
	sched   *scheduler.Scheduler
	local   *localserver.Server
	capture *capture.Sink
	loop    *eventloop.Loop

	quotes *quoteCache
	ready  chan struct{}
}

// New constructs a Daemon from validated configuration. It performs no
// I/O; call Init to build the component graph and Bootstrap to connect.
func New(cfg *config.Config, logger zerolog.Logger) *Daemon {
	return &Daemon{
		cfg:    cfg,
		logger: logger,
		quotes: newQuoteCache(),
		ready:  make(chan struct{}),
	}
}

// Init wires the component graph. Only unrecoverable configuration faults
// abort Init, per §7.
func (d *Daemon) Init() error {
	if err := config.Validate(d.cfg); err != nil {
		return fmt.Errorf("daemon init: %w", err)
	}

	d.reg = registry.New(d.logger)
	d.boot = bootstrap.New(d.reg, d.cfg.Validator.MappingKey, d.onBootstrapReady, d.logger)

	d.rpc = rpcclient.New(
		d.cfg.Validator.RPCHost,
		wsURLFromHTTP(d.cfg.Validator.RPCHost),
		d.cfg.Validator.ReconnectWait.ToDuration(),
		d.boot,
		d.logger,
	)
	d.boot.AttachClient(d.rpc)

	d.sched = scheduler.New(schedulerSource{d.quotes}, schedulerPublisher{rpc: d.rpc, reg: d.reg}, d.logger)

	d.local = localserver.New(
		fmt.Sprintf(":%d", d.cfg.Local.ListenPort),
		localSubmitter{quotes: d.quotes, reg: d.reg},
		localExponentLookup(d.reg),
		d.logger,
	)

	if d.cfg.Capture.Enabled {
		sink, err := capture.Open(d.cfg.Capture.File, d.logger)
		if err != nil {
			return fmt.Errorf("daemon init: capture sink: %w", err)
		}
		d.capture = sink
	}

	d.loop = eventloop.New(d.rpc, d.sched, d.local, d.cfg.Validator.RequestWait.ToDuration(), d.logger)
	return nil
}

// Bootstrap connects to the validator and blocks until the mapping chain
// has been fully walked (HasMapping) or ctx is canceled. It does not call
// Poll; responses are handled by the RPC client's read loop.
func (d *Daemon) Bootstrap(ctx context.Context) error {
	if err := d.rpc.Connect(ctx); err != nil {
		return fmt.Errorf("daemon bootstrap: %w", err)
	}

	select {
	case <-d.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// onBootstrapReady fires once the mapping chain has been fully walked: it
// seeds the scheduler's rotation from every price account the registry
// discovered, then unblocks Bootstrap.
func (d *Daemon) onBootstrapReady() {
	for _, p := range d.reg.AllPrices() {
		d.sched.Register(p.Key)
	}

	select {
	case <-d.ready:
	default:
		close(d.ready)
	}
}

// Poll drains one round of event-loop housekeeping.
func (d *Daemon) Poll(ctx context.Context, wait bool) {
	d.loop.Poll(ctx, wait)
}

// Run implements app.Service: Bootstrap then hand off to the event loop
// until ctx is canceled.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Bootstrap(ctx); err != nil {
		return err
	}
	return d.loop.Run(ctx)
}

// Teardown releases every owned resource: sockets, the local server's
// clients, and the capture sink, walking the owning containers per §5's
// resource discipline.
func (d *Daemon) Teardown() error {
	d.rpc.Close()
	for _, c := range d.local.Clients() {
		d.local.DelUser(c.ID)
	}
	d.local.Sweep()
	if d.capture != nil {
		return d.capture.Close()
	}
	return nil
}

// Status reports the bootstrap status bitmap for external observers
// (health checks, metrics).
func (d *Daemon) Status() bootstrap.Status {
	return d.boot.Status()
}

func wsURLFromHTTP(httpURL string) string {
	switch {
	case len(httpURL) >= 7 && httpURL[:7] == "http://":
		return "ws://" + httpURL[7:]
	case len(httpURL) >= 8 && httpURL[:8] == "https://":
		return "wss://" + httpURL[8:]
	default:
		return httpURL
	}
}

// schedulerSource adapts quoteCache to scheduler.QuoteSource.
type schedulerSource struct{ quotes *quoteCache }

func (s schedulerSource) Quote(key [32]byte) *scheduler.Quote {
	e, ok := s.quotes.takeAndClear(key)
	if !ok {
		return nil
	}
	return &scheduler.Quote{Price: e.price, Confidence: e.conf, Status: e.status}
}

// schedulerPublisher adapts rpcclient.Client to scheduler.Publisher. The
// transaction's signature is an external collaborator's responsibility
// (§1); this only submits the already-assembled instruction bytes.
type schedulerPublisher struct {
	rpc *rpcclient.Client
	reg *registry.Registry
}

func (p schedulerPublisher) PublishUpdate(key [32]byte, q scheduler.Quote) error {
	price, ok := p.reg.Price(key)
	if !ok {
		return fmt.Errorf("daemon: no price account registered for key %x", key)
	}
	body := encodeUpdPrice(program.CmdUpdPrice, price.Symbol, price.Account.PType, q.Price, q.Confidence, q.Status)
	_, err := p.rpc.SendTransaction(context.Background(), body)
	return err
}

func (p schedulerPublisher) PublishAggregateOnly(key [32]byte) error {
	price, ok := p.reg.Price(key)
	if !ok {
		return fmt.Errorf("daemon: no price account registered for key %x", key)
	}
	body := encodeUpdPrice(program.CmdAggPrice, price.Symbol, price.Account.PType, 0, 0, 0)
	_, err := p.rpc.SendTransaction(context.Background(), body)
	return err
}

// localSubmitter adapts quoteCache + registry to localserver.Submitter.
type localSubmitter struct {
	quotes *quoteCache
	reg    *registry.Registry
}

func (s localSubmitter) SubmitUpdate(symbol string, priceType uint32, price int64, conf uint64, status uint32) error {
	sym := symbolFromString(symbol)
	product, ok := s.reg.Product(sym)
	if !ok || len(product.PriceKeys) == 0 {
		return fmt.Errorf("daemon: no price account registered for symbol %q", symbol)
	}
	s.quotes.set(product.PriceKeys[0], price, conf, status)
	return nil
}

func localExponentLookup(reg *registry.Registry) localserver.ExponentLookup {
	return func(symbol string, priceType uint32) int32 {
		sym := symbolFromString(symbol)
		product, ok := reg.Product(sym)
		if !ok || len(product.PriceKeys) == 0 {
			return 0
		}
		price, ok := reg.Price(product.PriceKeys[0])
		if !ok {
			return 0
		}
		return price.Account.Expo
	}
}
