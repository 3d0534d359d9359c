package program

import (
	"bytes"
	"encoding/binary"
)

// updPriceBody is the wire body shared by upd_price and agg_price,
// following the 8-byte Header.
type updPriceBody struct {
	Symbol Symbol
	PType  uint32
	Price  int64
	Conf   uint64
	Status uint32
}

func decodeUpdPriceBody(data []byte) (updPriceBody, error) {
	var b updPriceBody
	if len(data) < binary.Size(b) {
		return b, ErrInvalidArgument
	}
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &b); err != nil {
		return b, ErrInvalidArgument
	}
	return b, nil
}

// UpdatePrice handles both upd_price and agg_price: a publisher submits a
// quote for the current slot (read off the clock sysvar account), the
// account is re-aggregated if the slot has advanced since the last
// aggregate, and — only when aggOnly is false — the publisher's own latest
// quote is recorded. agg_price (aggOnly true) only ever triggers
// re-aggregation; per the original program's behavior it never writes a
// publisher's latest_ field, so on a stale slot it is a complete no-op.
func UpdatePrice(programID PubKey, body []byte, accounts []*AccountInfo, aggOnly bool) error {
	args, err := decodeUpdPriceBody(body)
	if err != nil {
		return err
	}
	if len(accounts) < 3 {
		return ErrInvalidArgument
	}
	funding, priceAcct, clockAcct := accounts[0], accounts[1], accounts[2]
	if !ValidFundingAccount(funding) {
		return ErrInvalidArgument
	}
	if !ValidWritableAccount(priceAcct, programID, PriceAccountSize) {
		return ErrInvalidArgument
	}
	if clockAcct == nil || clockAcct.Key != ClockSysvarKey {
		return ErrInvalidArgument
	}

	var price PriceAccount
	if err := price.UnmarshalBinary(priceAcct.Data); err != nil {
		return err
	}
	if price.Magic != PC_MAGIC || price.Ver > PC_VERSION || price.PType != args.PType || price.Symbol != args.Symbol {
		return ErrInvalidArgument
	}

	compIdx := -1
	for i := uint32(0); i < price.Num; i++ {
		if price.Comp[i].Pub == funding.Key {
			compIdx = int(i)
			break
		}
	}
	if compIdx < 0 {
		return ErrInvalidArgument
	}

	slot, err := decodeClockSlot(clockAcct.Data)
	if err != nil {
		return err
	}

	if slot > price.CurrSlot {
		aggregate(&price, funding.Key, slot)
	}

	if !aggOnly {
		price.Comp[compIdx].Latest = PriceInfo{
			Price:   args.Price,
			Conf:    args.Conf,
			Status:  args.Status,
			PubSlot: slot,
		}
	}

	enc, err := price.MarshalBinary()
	if err != nil {
		return err
	}
	copy(priceAcct.Data, enc)
	return nil
}

// aggregate recomputes price's aggregate for the new slot from every
// component whose latest quote is both TRADING and was submitted for
// slot-1 — the one slot old enough to be considered settled but not so old
// it is stale. It mirrors the original program's insertion-sort-by-price
// selection of the median (or, for an even count, the average of the two
// central prices with truncating integer division).
func aggregate(price *PriceAccount, publisher PubKey, slot uint64) {
	price.Agg.PubSlot = slot
	price.ValidSlot = price.CurrSlot
	price.CurrSlot = slot
	price.AggPub = publisher

	var sorted [PC_COMP_SIZE]PriceInfo
	numa := 0
	prevSlot := slot - 1
	for i := uint32(0); i < price.Num; i++ {
		price.Comp[i].Agg = price.Comp[i].Latest
		info := price.Comp[i].Agg
		if info.Status != PC_STATUS_TRADING || info.PubSlot != prevSlot {
			continue
		}
		pos := numa
		for pos > 0 && sorted[pos-1].Price > info.Price {
			sorted[pos] = sorted[pos-1]
			pos--
		}
		sorted[pos] = info
		numa++
	}

	if numa == 0 {
		price.Agg.Status = PC_STATUS_UNKNOWN
		return
	}

	mid := numa / 2
	apx := sorted[mid].Price
	acf := sorted[mid].Conf
	if numa%2 == 0 && mid != 0 {
		apx = (apx + sorted[mid-1].Price) / 2
		acf = (acf + sorted[mid-1].Conf) / 2
	}

	price.Agg.Price = apx
	price.Agg.Conf = acf
	price.Agg.Status = PC_STATUS_TRADING
	price.Agg.PubSlot = slot
}
