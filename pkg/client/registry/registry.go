// Package registry maps validator account public keys to the client's
// in-flight and resident product/price objects, as the exclusive owner of
// that state for the life of the process.
package registry

import (
	"encoding/binary"
	"sync"

	"github.com/rs/zerolog"

	"github.com/priceoracle/oracle/pkg/program"
)

// keyHash is the first 8 bytes of a public key, used as the registry's
// hash-table key per §3 ("using the first 8 bytes of the key as the
// hash").
type keyHash uint64

func hashKey(key program.PubKey) keyHash {
	return keyHash(binary.LittleEndian.Uint64(key[:8]))
}

// Registry owns every Product and Price the daemon has observed: prices
// keyed by account public key, products keyed by symbol.
type Registry struct {
	logger zerolog.Logger

	mu       sync.RWMutex
	products map[keyHash]*Product // keyed by symbol's low 8 bytes
	prices   map[keyHash]*Price   // keyed by price account key
}

// New returns an empty Registry.
func New(logger zerolog.Logger) *Registry {
	return &Registry{
		logger:   logger.With().Str("component", "registry").Logger(),
		products: make(map[keyHash]*Product),
		prices:   make(map[keyHash]*Price),
	}
}

// AddProduct materializes (or extends) the Product for symbol, registers
// a Price entry for priceAccount if new, and returns the Product.
func (r *Registry) AddProduct(symbol program.Symbol, priceAccount program.PubKey) *Product {
	r.mu.Lock()
	defer r.mu.Unlock()

	h := keyHash(binary.LittleEndian.Uint64(symbol[:8]))
	p, ok := r.products[h]
	if !ok {
		p = &Product{Symbol: symbol}
		r.products[h] = p
	}
	p.addPriceKey(priceAccount)

	ph := hashKey(priceAccount)
	if _, exists := r.prices[ph]; !exists {
		r.prices[ph] = &Price{Key: priceAccount, Symbol: symbol}
	}

	return p
}

// Product looks up the product registered for symbol.
func (r *Registry) Product(symbol program.Symbol) (*Product, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[keyHash(binary.LittleEndian.Uint64(symbol[:8]))]
	return p, ok
}

// Price looks up the resident Price entry for a price account key.
func (r *Registry) Price(key program.PubKey) (*Price, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.prices[hashKey(key)]
	return p, ok
}

// UpdatePrice decodes freshly-received account bytes into the resident
// Price entry for key, creating the entry if this is the first
// observation of that account (e.g. via account_subscribe before any
// add_symbol mapping walk reached it).
func (r *Registry) UpdatePrice(key program.PubKey, data []byte) error {
	var acct program.PriceAccount
	if err := acct.UnmarshalBinary(data); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	h := hashKey(key)
	p, ok := r.prices[h]
	if !ok {
		p = &Price{Key: key, Symbol: acct.Symbol}
		r.prices[h] = p
	}
	p.Account = acct
	return nil
}

// AllPrices returns every resident Price entry, in no particular order,
// for the scheduler to register against.
func (r *Registry) AllPrices() []*Price {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Price, 0, len(r.prices))
	for _, p := range r.prices {
		out = append(out, p)
	}
	return out
}

// Count reports the number of distinct products and prices, for metrics
// and tests.
func (r *Registry) Count() (products, prices int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.products), len(r.prices)
}
