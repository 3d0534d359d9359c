package localserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/priceoracle/oracle/pkg/metrics"
)

// Submitter forwards a decoded publisher request to the RPC client as an
// upd_price submission. The transaction-building/signing path it wraps is
// an external collaborator (§1).
type Submitter interface {
	SubmitUpdate(symbol string, priceType uint32, price int64, conf uint64, status uint32) error
}

// ExponentLookup resolves a symbol/price-type pair to the price account's
// current exponent, used to rescale a publisher's decimal price into the
// account's native int64 representation.
type ExponentLookup func(symbol string, priceType uint32) int32

// Server accepts connections from publisher processes on a local TCP
// port and translates their requests into RPC submissions.
type Server struct {
	addr      string
	submitter Submitter
	expoOf    ExponentLookup
	logger    zerolog.Logger
	upgrader  websocket.Upgrader

	mu      sync.RWMutex
	clients map[uuid.UUID]*PublisherClient
}

// New constructs a Server bound to addr (e.g. ":8910").
func New(addr string, submitter Submitter, expoOf ExponentLookup, logger zerolog.Logger) *Server {
	return &Server{
		addr:      addr,
		submitter: submitter,
		expoOf:    expoOf,
		logger:    logger.With().Str("component", "localserver").Logger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(_ *http.Request) bool { return true },
		},
		clients: make(map[uuid.UUID]*PublisherClient),
	}
}

// Run implements app.Service: it listens until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleConnect)

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.logger.Info().Str("addr", s.addr).Msg("local server listening for publishers")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to upgrade publisher connection")
		return
	}

	client := newPublisherClient(conn)
	s.register(client)
	metrics.RecordLocalServerConnection("accepted", 1)

	go client.writePump()
	go s.readPump(client)
}

func (s *Server) register(c *PublisherClient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.ID] = c
}

// DelUser marks the client for removal without touching the map directly,
// matching the two-phase deletion §4.9 requires so in-flight iteration
// over Clients() is never invalidated.
func (s *Server) DelUser(id uuid.UUID) {
	s.mu.RLock()
	c, ok := s.clients[id]
	s.mu.RUnlock()
	if ok {
		c.markForDeletion()
	}
}

// Sweep removes every client flagged for deletion, called once per poll
// boundary by the event loop.
func (s *Server) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.clients {
		if c.isPendingDeletion() {
			close(c.send)
			delete(s.clients, id)
			metrics.RecordLocalServerConnection("closed", -1)
		}
	}
}

// Clients returns a snapshot of currently-connected publisher clients.
func (s *Server) Clients() []*PublisherClient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*PublisherClient, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, c)
	}
	return out
}

func (s *Server) readPump(c *PublisherClient) {
	defer s.DelUser(c.ID)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		s.handleMessage(c, data)
	}
}

func (s *Server) handleMessage(c *PublisherClient, data []byte) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		s.logger.Warn().Err(err).Msg("malformed publisher request")
		c.sendResponse(Response{Type: "error", Error: "malformed request"})
		return
	}

	switch req.Type {
	case RequestUpdatePrice:
		s.handleUpdatePrice(c, req)
	case RequestPing:
		c.sendResponse(Response{Type: "pong"})
	default:
		s.logger.Debug().Str("type", string(req.Type)).Msg("unhandled publisher request type")
	}
}

func (s *Server) handleUpdatePrice(c *PublisherClient, req Request) {
	status := statusFromString(req.Status)
	var expo int32
	if s.expoOf != nil {
		expo = s.expoOf(req.Symbol, req.PriceType)
	}
	price, conf := RescalePrice(req.Price, req.Confidence, expo)

	if err := s.submitter.SubmitUpdate(req.Symbol, req.PriceType, price, conf, status); err != nil {
		metrics.RecordPublisherQuoteRejection("submit_failed")
		c.sendResponse(Response{Type: "error", Error: err.Error()})
		return
	}
	metrics.RecordPublisherQuote(req.Symbol, c.ID.String())
	c.sendResponse(Response{Type: "ack"})
}

func statusFromString(s string) uint32 {
	switch s {
	case "trading":
		return 1
	case "halted":
		return 2
	case "auction":
		return 3
	default:
		return 0
	}
}
