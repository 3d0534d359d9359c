// Package rpcclient owns the two sockets the daemon keeps open to a
// validator: a one-shot JSON-RPC HTTP client and a long-lived WebSocket
// subscription session, with request/response correlation and a
// reconnect attempted at most once per reconnect interval.
package rpcclient

import (
	"bytes"
	"container/list"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

func jsonBody(b []byte) io.Reader {
	return bytes.NewReader(b)
}

const (
	httpRequestTimeout = 10 * time.Second
	pingInterval       = 30 * time.Second
	pongTimeout        = 60 * time.Second
)

// Observer receives connection lifecycle notifications, letting the
// bootstrap controller keep its status bitmap in sync without the client
// depending on bootstrap directly.
type Observer interface {
	OnConnect()
	OnDisconnect(err error)
}

// Client owns the validator's HTTP and WebSocket sessions.
type Client struct {
	httpURL string
	wsURL   string
	ctimeout time.Duration
	logger  zerolog.Logger
	observer Observer

	httpClient *http.Client

	mu             sync.Mutex
	conn           *websocket.Conn
	nextID         uint64
	pending        *list.List // ordered queue of *Request, submission order
	pendingByID    map[uint64]*list.Element
	subs           map[uint64]*subscription
	lastReconnect  time.Time
	closed         chan struct{}
}

// New constructs a Client bound to a validator's HTTP and WebSocket
// endpoints. ctimeout bounds how often a reconnect attempt is scheduled
// after a disconnect.
func New(httpURL, wsURL string, ctimeout time.Duration, observer Observer, logger zerolog.Logger) *Client {
	return &Client{
		httpURL:     httpURL,
		wsURL:       wsURL,
		ctimeout:    ctimeout,
		logger:      logger.With().Str("component", "rpcclient").Logger(),
		observer:    observer,
		httpClient:  &http.Client{Timeout: httpRequestTimeout},
		pending:     list.New(),
		pendingByID: make(map[uint64]*list.Element),
		subs:        make(map[uint64]*subscription),
		closed:      make(chan struct{}),
	}
}

// Connect dials the WebSocket session and starts its read loop. HTTP
// queries need no persistent connection and work regardless of
// WebSocket state.
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.wsURL, nil)
	if err != nil {
		return newTransportErr(fmt.Errorf("dial %s: %w", c.wsURL, err))
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	c.logger.Info().Str("url", c.wsURL).Msg("connected to validator websocket")
	if c.observer != nil {
		c.observer.OnConnect()
	}

	go c.readLoop(ctx)
	return nil
}

// MaybeReconnect dials again if no WebSocket session is live and at least
// ctimeout has elapsed since the last attempt, matching the "schedule a
// reconnect at most once per ctimeout_" contract. Bootstrap state
// (registry, scheduler) is untouched; only the connection and its
// subscriptions are rebuilt.
func (c *Client) MaybeReconnect(ctx context.Context) {
	c.mu.Lock()
	if c.conn != nil || time.Since(c.lastReconnect) < c.ctimeout {
		c.mu.Unlock()
		return
	}
	c.lastReconnect = time.Now()
	c.mu.Unlock()

	if err := c.Connect(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("reconnect attempt failed")
	}
}

// readLoop drains inbound WebSocket frames until the connection fails or
// the context is canceled, at which point it tears down subscription and
// pending-request state and notifies the observer.
func (c *Client) readLoop(ctx context.Context) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return
	}

	_ = conn.SetReadDeadline(time.Now().Add(pongTimeout))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongTimeout))
		return nil
	})

	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()

	msgCh := make(chan []byte, 16)
	errCh := make(chan error, 1)
	go func() {
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				errCh <- err
				return
			}
			msgCh <- msg
		}
	}()

	var loopErr error
loop:
	for {
		select {
		case <-ctx.Done():
			loopErr = ctx.Err()
			break loop
		case <-c.closed:
			return
		case <-pingTicker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				loopErr = err
				break loop
			}
		case err := <-errCh:
			loopErr = err
			break loop
		case msg := <-msgCh:
			if err := c.handleMessage(msg); err != nil {
				c.logger.Warn().Err(err).Msg("failed to handle validator message")
			}
		}
	}

	c.disconnect(loopErr)
}

// disconnect clears subscription state and the pending request queue,
// notifying every waiter with ErrDisconnected, then informs the observer.
func (c *Client) disconnect(cause error) {
	c.mu.Lock()
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.subs = make(map[uint64]*subscription)

	var callbacks []Callback
	for e := c.pending.Front(); e != nil; e = e.Next() {
		req := e.Value.(*Request)
		callbacks = append(callbacks, req.done)
	}
	c.pending = list.New()
	c.pendingByID = make(map[uint64]*list.Element)
	c.mu.Unlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(nil, newTransportErr(ErrDisconnected))
		}
	}

	c.logger.Warn().Err(cause).Msg("validator websocket disconnected")
	if c.observer != nil {
		c.observer.OnDisconnect(cause)
	}
}

// Close cancels every request bound to this client and tears down the
// WebSocket session without notifying the observer (a caller-initiated
// close is not a reconnect trigger).
func (c *Client) Close() {
	select {
	case <-c.closed:
		return
	default:
		close(c.closed)
	}
	c.mu.Lock()
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	var callbacks []Callback
	for e := c.pending.Front(); e != nil; e = e.Next() {
		callbacks = append(callbacks, e.Value.(*Request).done)
	}
	c.pending = list.New()
	c.pendingByID = make(map[uint64]*list.Element)
	c.mu.Unlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(nil, newTransportErr(ErrDisconnected))
		}
	}
}

func (c *Client) allocID() uint64 {
	return atomic.AddUint64(&c.nextID, 1)
}

type rpcEnvelope struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcErrorBody   `json:"error,omitempty"`
}

type rpcErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// handleMessage routes an inbound frame either to the pending request it
// completes (response, matched by id) or to the subscription it notifies
// (matched by subscription-specific params); malformed frames are a
// protocol error, logged and dropped rather than tearing down the
// connection.
func (c *Client) handleMessage(raw []byte) error {
	var env rpcEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return newProtocolErr(fmt.Errorf("decode validator frame: %w", err))
	}

	if env.Method != "" {
		return c.handleNotification(env)
	}
	return c.handleResponse(env)
}

func (c *Client) handleResponse(env rpcEnvelope) error {
	c.mu.Lock()
	el, ok := c.pendingByID[env.ID]
	if !ok {
		c.mu.Unlock()
		return newProtocolErr(fmt.Errorf("response for unknown request id %d", env.ID))
	}
	delete(c.pendingByID, env.ID)
	c.pending.Remove(el)
	req := el.Value.(*Request)
	c.mu.Unlock()

	if env.Error != nil {
		req.done(nil, newLogicalErr(fmt.Errorf("%s (code %d)", env.Error.Message, env.Error.Code)))
		return nil
	}
	req.done(env.Result, nil)
	return nil
}

type subNotifyParams struct {
	Subscription uint64          `json:"subscription"`
	Result       json.RawMessage `json:"result"`
}

func (c *Client) handleNotification(env rpcEnvelope) error {
	var params subNotifyParams
	if err := json.Unmarshal(env.Params, &params); err != nil {
		return newProtocolErr(fmt.Errorf("decode subscription notification: %w", err))
	}

	c.mu.Lock()
	sub, ok := c.subs[params.Subscription]
	c.mu.Unlock()
	if !ok {
		return newProtocolErr(ErrUnknownSubscription)
	}

	switch sub.kind {
	case SubKindSlot:
		var slot struct {
			Slot uint64 `json:"slot"`
		}
		if err := json.Unmarshal(params.Result, &slot); err != nil {
			return newProtocolErr(err)
		}
		if sub.dispatch.OnSlot != nil {
			sub.dispatch.OnSlot(SlotNotification{Slot: slot.Slot})
		}
	case SubKindAccount:
		if sub.dispatch.OnAccount != nil {
			sub.dispatch.OnAccount(AccountNotification{Key: sub.key, Data: params.Result})
		}
	}
	return nil
}

// Submit enqueues a request, keyed by a fresh monotonic id, and writes it
// to the WebSocket session. Once Submit has returned nil, done is invoked
// exactly once with the result or an error (including on disconnect).
// When Submit itself returns an error, the request is not queued and done
// is never invoked.
func (c *Client) Submit(method Method, params interface{}, done Callback) error {
	c.mu.Lock()
	conn := c.conn
	if conn == nil {
		c.mu.Unlock()
		return newTransportErr(ErrNoConnection)
	}

	id := c.allocID()
	req := newRequest(id, method, done)
	el := c.pending.PushBack(req)
	c.pendingByID[id] = el
	c.mu.Unlock()

	raw, err := json.Marshal(rpcEnvelope{JSONRPC: "2.0", ID: id, Method: string(method), Params: mustParams(params)})
	if err != nil {
		c.removePending(id)
		return newProtocolErr(err)
	}

	c.mu.Lock()
	writeErr := conn.WriteMessage(websocket.TextMessage, raw)
	c.mu.Unlock()
	if writeErr != nil {
		c.removePending(id)
		return newTransportErr(writeErr)
	}
	return nil
}

func (c *Client) removePending(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.pendingByID[id]; ok {
		c.pending.Remove(el)
		delete(c.pendingByID, id)
	}
}

func mustParams(v interface{}) json.RawMessage {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return raw
}

// Subscribe registers a slot or account subscription and returns its
// client-assigned id, used later to route notifications and to unsubscribe.
func (c *Client) Subscribe(method Method, key string, kind SubKind, dispatch SubDispatch) (uint64, error) {
	id := c.allocID()
	c.mu.Lock()
	c.subs[id] = &subscription{id: id, kind: kind, key: key, dispatch: dispatch}
	c.mu.Unlock()

	params := []interface{}{}
	if key != "" {
		params = append(params, key)
	}
	return id, c.Submit(method, params, func(_ json.RawMessage, err error) {
		if err != nil {
			c.logger.Warn().Err(err).Str("method", string(method)).Msg("subscription request failed")
		}
	})
}

// Unsubscribe removes local bookkeeping for a subscription id. The
// validator-side unsubscribe call, if any, is the caller's responsibility.
func (c *Client) Unsubscribe(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subs, id)
}

// PendingCount reports the number of requests awaiting a response. The
// bootstrap controller does not consult it: its completion check counts
// only its own outstanding mapping fetches.
func (c *Client) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending.Len()
}

// GetAccountInfo issues a one-shot HTTP JSON-RPC query for an account.
func (c *Client) GetAccountInfo(ctx context.Context, key string) ([]byte, error) {
	return c.httpCall(ctx, MethodGetAccountInfo, []interface{}{key})
}

// GetRecentBlockhash issues a one-shot HTTP JSON-RPC query for a recent
// block hash, used to construct new transactions.
func (c *Client) GetRecentBlockhash(ctx context.Context) ([]byte, error) {
	return c.httpCall(ctx, MethodGetRecentBlockhash, nil)
}

// SendTransaction submits a signed transaction over HTTP JSON-RPC. The
// transaction's own signing is an external collaborator's concern; this
// client only transports already-signed bytes.
func (c *Client) SendTransaction(ctx context.Context, rawTx []byte) ([]byte, error) {
	return c.httpCall(ctx, MethodSendTransaction, []interface{}{rawTx})
}

func (c *Client) httpCall(ctx context.Context, method Method, params interface{}) ([]byte, error) {
	body, err := json.Marshal(rpcEnvelope{JSONRPC: "2.0", ID: c.allocID(), Method: string(method), Params: mustParams(params)})
	if err != nil {
		return nil, newProtocolErr(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.httpURL, jsonBody(body))
	if err != nil {
		return nil, newTransportErr(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newTransportErr(err)
	}
	defer resp.Body.Close()

	var env rpcEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, newProtocolErr(err)
	}
	if env.Error != nil {
		return nil, newLogicalErr(fmt.Errorf("%s (code %d)", env.Error.Message, env.Error.Code))
	}
	return env.Result, nil
}
