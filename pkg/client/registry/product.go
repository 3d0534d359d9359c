package registry

import "github.com/priceoracle/oracle/pkg/program"

// Product is a symbol plus the public keys of its price accounts, per
// §3's client-side derived entity. A symbol may have more than one price
// account chained by price-type (program.PriceAccount.Next).
type Product struct {
	Symbol    program.Symbol
	PriceKeys []program.PubKey
}

func (p *Product) addPriceKey(key program.PubKey) {
	for _, existing := range p.PriceKeys {
		if existing == key {
			return
		}
	}
	p.PriceKeys = append(p.PriceKeys, key)
}
