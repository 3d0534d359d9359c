// Package metrics provides Prometheus metrics for the oracle daemon.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// AggregationsTotal is a counter of on-chain aggregation recomputations
	// observed, keyed by symbol and resulting status.
	AggregationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aggregations_total",
			Help: "Total number of price aggregations observed on-chain",
		},
		[]string{"symbol", "status"},
	)

	// AggregatePriceStalenessSlots is a gauge of how many slots behind the
	// validator's current slot each symbol's last aggregation is.
	AggregatePriceStalenessSlots = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "aggregate_price_staleness_slots",
			Help: "Slots since the last successful aggregation for a symbol",
		},
		[]string{"symbol"},
	)

	// PublisherQuotesTotal is a counter of publisher quote submissions
	// ingested by the local server and of quotes the scheduler publishes,
	// keyed by symbol and publisher.
	PublisherQuotesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "publisher_quotes_total",
			Help: "Total number of publisher quotes ingested",
		},
		[]string{"symbol", "publisher"},
	)

	// PublisherQuoteRejectionsTotal is a counter of publisher quotes
	// rejected before submission, keyed by reason.
	PublisherQuoteRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "publisher_quote_rejections_total",
			Help: "Total number of publisher quotes rejected before submission",
		},
		[]string{"reason"},
	)

	// SchedulerCyclesTotal counts completed round-robin scheduler cycles.
	SchedulerCyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scheduler_cycles_total",
			Help: "Total number of scheduler round-robin cycles completed",
		},
	)

	// SchedulerCycleDuration is a histogram of scheduler cycle durations.
	SchedulerCycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scheduler_cycle_duration_seconds",
			Help:    "Duration of a scheduler round-robin cycle",
			Buckets: prometheus.DefBuckets,
		},
	)

	// RPCRequestsTotal is a counter of RPC requests issued to the
	// validator, keyed by method and outcome.
	RPCRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rpc_requests_total",
			Help: "Total number of RPC requests issued to the validator",
		},
		[]string{"method", "status"},
	)

	// RPCReconnectsTotal counts websocket reconnect attempts to the
	// validator.
	RPCReconnectsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rpc_reconnects_total",
			Help: "Total number of validator websocket reconnect attempts",
		},
	)

	// BootstrapStatus is a gauge reflecting the daemon's bootstrap state
	// machine: 0=not started, 1=walking mapping, 2=complete.
	BootstrapStatus = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bootstrap_status",
			Help: "Bootstrap state: 0=not started, 1=in progress, 2=complete",
		},
	)

	// BootstrapSymbolsDiscovered counts symbols discovered while walking
	// the mapping account chain during bootstrap.
	BootstrapSymbolsDiscovered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bootstrap_symbols_discovered_total",
			Help: "Total number of symbols discovered while walking the mapping chain",
		},
	)

	// LocalServerConnectionsTotal counts publisher connections accepted by
	// the local server, keyed by outcome.
	LocalServerConnectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "local_server_connections_total",
			Help: "Total number of publisher connections accepted by the local server",
		},
		[]string{"status"},
	)

	// LocalServerActiveConnections is a gauge of currently-connected
	// publisher clients.
	LocalServerActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "local_server_active_connections",
			Help: "Number of publisher clients currently connected to the local server",
		},
	)

	// CaptureEventsTotal counts events written to the capture sink.
	CaptureEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "capture_events_total",
			Help: "Total number of events written to the capture sink",
		},
		[]string{"kind"},
	)
)

// Init registers all metrics with the default Prometheus registry.
func Init() {
	prometheus.MustRegister(
		AggregationsTotal,
		AggregatePriceStalenessSlots,
		PublisherQuotesTotal,
		PublisherQuoteRejectionsTotal,
		SchedulerCyclesTotal,
		SchedulerCycleDuration,
		RPCRequestsTotal,
		RPCReconnectsTotal,
		BootstrapStatus,
		BootstrapSymbolsDiscovered,
		LocalServerConnectionsTotal,
		LocalServerActiveConnections,
		CaptureEventsTotal,
	)
}

// ServeHTTP serves Prometheus metrics on the specified address.
func ServeHTTP(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server.ListenAndServe()
}

// RecordAggregation records an observed on-chain aggregation for a symbol.
func RecordAggregation(symbol, status string) {
	AggregationsTotal.WithLabelValues(symbol, status).Inc()
}

// RecordAggregateStaleness records how many slots behind the validator's
// current slot a symbol's last aggregation is.
func RecordAggregateStaleness(symbol string, slots float64) {
	AggregatePriceStalenessSlots.WithLabelValues(symbol).Set(slots)
}

// RecordPublisherQuote records an ingested publisher quote.
func RecordPublisherQuote(symbol, publisher string) {
	PublisherQuotesTotal.WithLabelValues(symbol, publisher).Inc()
}

// RecordPublisherQuoteRejection records a publisher quote rejected before
// submission.
func RecordPublisherQuoteRejection(reason string) {
	PublisherQuoteRejectionsTotal.WithLabelValues(reason).Inc()
}

// RecordSchedulerCycle records a completed scheduler round-robin cycle.
func RecordSchedulerCycle(duration time.Duration) {
	SchedulerCyclesTotal.Inc()
	SchedulerCycleDuration.Observe(duration.Seconds())
}

// RecordRPCRequest records an RPC request issued to the validator.
func RecordRPCRequest(method, status string) {
	RPCRequestsTotal.WithLabelValues(method, status).Inc()
}

// RecordRPCReconnect records a websocket reconnect attempt.
func RecordRPCReconnect() {
	RPCReconnectsTotal.Inc()
}

// SetBootstrapStatus updates the bootstrap state gauge.
func SetBootstrapStatus(state int) {
	BootstrapStatus.Set(float64(state))
}

// RecordBootstrapSymbolDiscovered records a symbol discovered while
// walking the mapping account chain.
func RecordBootstrapSymbolDiscovered() {
	BootstrapSymbolsDiscovered.Inc()
}

// RecordLocalServerConnection records a publisher connection outcome and
// updates the active-connection gauge.
func RecordLocalServerConnection(status string, delta float64) {
	LocalServerConnectionsTotal.WithLabelValues(status).Inc()
	LocalServerActiveConnections.Add(delta)
}

// RecordCaptureEvent records an event written to the capture sink.
func RecordCaptureEvent(kind string) {
	CaptureEventsTotal.WithLabelValues(kind).Inc()
}
