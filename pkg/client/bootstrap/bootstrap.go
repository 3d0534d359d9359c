// Package bootstrap drives the daemon's status bitmap lifecycle from a
// fresh RPC connection through a fully-walked mapping chain.
package bootstrap

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/priceoracle/oracle/pkg/client/registry"
	"github.com/priceoracle/oracle/pkg/client/rpcclient"
	"github.com/priceoracle/oracle/pkg/program"
)

// Status is a bitmap of the three conditions the controller tracks, in
// the order they become true.
type Status uint32

const (
	Connected Status = 1 << iota
	HasBlockHash
	HasMapping
)

// Has reports whether bit is set in s.
func (s Status) Has(bit Status) bool { return s&bit != 0 }

// Controller sequences bring-up: subscribe to slots, fetch a recent block
// hash, then walk the mapping chain from a known root key, materializing
// products and price-account subscriptions as symbols are discovered.
type Controller struct {
	rpc     *rpcclient.Client
	reg     *registry.Registry
	rootKey string
	onInit  func()
	logger  zerolog.Logger

	status     Status
	numFetches int // mapping fetches issued but not yet resolved
	slot       uint64
}

// New constructs a Controller with no client attached yet. Call
// AttachClient once the rpcclient.Client that observes this Controller
// exists — the two are mutually referential (the client notifies the
// controller; the controller submits requests through the client) so
// construction is necessarily two-step.
func New(reg *registry.Registry, rootKey string, onInit func(), logger zerolog.Logger) *Controller {
	return &Controller{
		reg:     reg,
		rootKey: rootKey,
		onInit:  onInit,
		logger:  logger.With().Str("component", "bootstrap").Logger(),
	}
}

// AttachClient binds the rpcclient.Client this controller drives requests
// through. Must be called before the client's OnConnect can fire.
func (c *Controller) AttachClient(rpc *rpcclient.Client) {
	c.rpc = rpc
}

// Status returns the current bitmap, safe to poll from metrics.
func (c *Controller) Status() Status { return c.status }

// Slot returns the latest slot observed via the slot subscription.
func (c *Controller) Slot() uint64 { return c.slot }

// OnConnect implements rpcclient.Observer: it kicks off the RPC-connected
// sequence (slot subscription, block hash request, mapping walk from the
// root key).
func (c *Controller) OnConnect() {
	c.status |= Connected
	c.logger.Info().Msg("rpc connected, starting bootstrap sequence")

	if _, err := c.rpc.Subscribe(rpcclient.MethodSlotSubscribe, "", rpcclient.SubKindSlot, rpcclient.SubDispatch{
		OnSlot: c.onSlot,
	}); err != nil {
		c.logger.Error().Err(err).Msg("slot subscription failed")
	}

	if err := c.rpc.Submit(rpcclient.MethodGetRecentBlockhash, nil, c.onBlockHash); err != nil {
		c.logger.Error().Err(err).Msg("recent blockhash request failed")
	}

	c.fetchMapping(c.rootKey)
}

// OnDisconnect implements rpcclient.Observer: per §4.6, only the status
// flags revert on disconnect; registry and scheduler state (bootstrap
// state) is preserved across the client's lifetime.
func (c *Controller) OnDisconnect(err error) {
	c.status = 0
	c.numFetches = 0
	c.logger.Warn().Err(err).Msg("bootstrap status reverted after disconnect")
}

func (c *Controller) onBlockHash(_ json.RawMessage, err error) {
	if err != nil {
		c.logger.Error().Err(err).Msg("recent blockhash request failed")
		return
	}
	c.status |= HasBlockHash
}

func (c *Controller) onSlot(n rpcclient.SlotNotification) {
	c.slot = n.Slot
}

func (c *Controller) fetchMapping(key string) {
	if key == "" || isZeroKey(key) {
		return
	}
	c.numFetches++
	if err := c.rpc.Submit(rpcclient.MethodGetAccountInfo, []interface{}{key}, func(raw json.RawMessage, err error) {
		c.handleMappingResponse(key, raw, err)
	}); err != nil {
		c.numFetches--
		c.logger.Error().Err(err).Str("key", key).Msg("mapping fetch submit failed")
	}
}

func (c *Controller) handleMappingResponse(key string, raw json.RawMessage, err error) {
	c.numFetches--
	if err != nil {
		c.logger.Error().Err(err).Str("key", key).Msg("mapping fetch failed")
		c.maybeComplete()
		return
	}

	var table program.MappingTable
	if unmarshalErr := table.UnmarshalBinary(raw); unmarshalErr != nil {
		c.logger.Error().Err(unmarshalErr).Str("key", key).Msg("malformed mapping account")
		c.maybeComplete()
		return
	}

	for i := uint32(0); i < table.Num; i++ {
		node := table.Nodes[i]
		if node.Symbol.IsZero() {
			continue
		}
		c.reg.AddProduct(node.Symbol, node.PriceAccount)
		c.fetchPriceAccount(node.PriceAccount)
	}

	if !table.Next.IsZero() {
		c.fetchMapping(fmt.Sprintf("%x", table.Next))
	}

	c.maybeComplete()
}

// fetchPriceAccount seeds the registry's resident copy of a newly
// discovered price account and keeps it current via account_subscribe.
// Unlike fetchMapping, this does not gate bootstrap completion — a price
// account's live data is refreshed independently of the mapping walk.
func (c *Controller) fetchPriceAccount(key program.PubKey) {
	keyHex := fmt.Sprintf("%x", key)

	if err := c.rpc.Submit(rpcclient.MethodGetAccountInfo, []interface{}{keyHex}, func(raw json.RawMessage, err error) {
		if err != nil {
			c.logger.Warn().Err(err).Str("key", keyHex).Msg("price account fetch failed")
			return
		}
		if err := c.reg.UpdatePrice(key, raw); err != nil {
			c.logger.Warn().Err(err).Str("key", keyHex).Msg("malformed price account")
		}
	}); err != nil {
		c.logger.Warn().Err(err).Str("key", keyHex).Msg("price account fetch submit failed")
	}

	if _, err := c.rpc.Subscribe(rpcclient.MethodAccountSubscribe, keyHex, rpcclient.SubKindAccount, rpcclient.SubDispatch{
		OnAccount: func(n rpcclient.AccountNotification) {
			if err := c.reg.UpdatePrice(key, n.Data); err != nil {
				c.logger.Warn().Err(err).Str("key", keyHex).Msg("malformed price account notification")
			}
		},
	}); err != nil {
		c.logger.Warn().Err(err).Str("key", keyHex).Msg("price account subscribe failed")
	}
}

func (c *Controller) maybeComplete() {
	if c.numFetches == 0 {
		c.status |= HasMapping
		if c.onInit != nil {
			c.onInit()
		}
	}
}

func isZeroKey(key string) bool {
	for _, ch := range key {
		if ch != '0' {
			return false
		}
	}
	return true
}
