package registry

import "github.com/priceoracle/oracle/pkg/program"

// Price is the client's resident view of one on-ledger price account,
// refreshed as account_subscribe notifications arrive.
type Price struct {
	Key     program.PubKey
	Symbol  program.Symbol
	Account program.PriceAccount
}

// Aggregate returns the account's current aggregate price, confidence,
// and status. It returns them whatever the status is; callers gate their
// reads on the returned status.
func (p *Price) Aggregate() (price int64, conf uint64, status uint32) {
	return p.Account.Agg.Price, p.Account.Agg.Conf, p.Account.Agg.Status
}
