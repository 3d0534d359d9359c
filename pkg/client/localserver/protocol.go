// Package localserver accepts connections from publisher processes,
// parses their requests against a well-known local wire protocol (opaque
// to the on-ledger contract — it only needs to carry symbol/price-type/
// price/confidence/status), and forwards them as price submissions the
// scheduler's QuoteSource can read.
package localserver

import "github.com/shopspring/decimal"

// RequestType distinguishes the handful of operations a publisher
// connection may issue.
type RequestType string

const (
	RequestUpdatePrice RequestType = "upd_price"
	RequestSubscribe   RequestType = "subscribe"
	RequestPing        RequestType = "ping"
)

// Request is one decoded message from a publisher connection.
type Request struct {
	Type       RequestType     `json:"type"`
	Symbol     string          `json:"symbol,omitempty"`
	PriceType  uint32          `json:"price_type,omitempty"`
	Price      decimal.Decimal `json:"price,omitempty"`
	Confidence decimal.Decimal `json:"confidence,omitempty"`
	Status     string          `json:"status,omitempty"`
}

// Response is one message sent back to a publisher connection.
type Response struct {
	Type  string `json:"type"`
	Error string `json:"error,omitempty"`
}

// RescalePrice converts a human-facing decimal price/confidence pair into
// the price account's native int64/uint64 representation at the given
// exponent, matching how the on-ledger account stores values: price_ *
// 10^(-expo_) as an integer.
func RescalePrice(price, confidence decimal.Decimal, expo int32) (p int64, c uint64) {
	scale := decimal.New(1, -expo)
	scaledPrice := price.Mul(scale)
	scaledConf := confidence.Mul(scale)
	return scaledPrice.IntPart(), uint64(scaledConf.IntPart())
}
