// Command oraclesim runs a scripted sequence of on-ledger instructions
// against pkg/program in memory, without a validator, printing the price
// account's aggregate after each submitted quote. It exists for local smoke
// testing of the aggregation logic: build a mapping table, register a
// symbol, add a publisher, submit a few quotes across slots, and observe
// the aggregate the same way a validator replaying a ledger would.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/priceoracle/oracle/pkg/program"
)

var symbolFlag = flag.String("symbol", "BTC/USD", "symbol to simulate")

func main() {
	flag.Parse()

	s := newSim(*symbolFlag)
	if err := s.run(); err != nil {
		fmt.Fprintf(os.Stderr, "oraclesim: %v\n", err)
		os.Exit(1)
	}
}

// sim holds the in-memory ledger: a key-addressed account store plus the
// fixed set of keys the scripted steps below refer to.
type sim struct {
	programID PubKey
	funding   PubKey
	publisher PubKey
	mapKey    PubKey
	priceKey  PubKey
	clockKey  PubKey
	symbol    program.Symbol

	accounts map[PubKey]*program.AccountInfo
	clock    uint64
}

type PubKey = program.PubKey

func newSim(symbolText string) *sim {
	s := &sim{
		programID: keyFrom("program"),
		funding:   keyFrom("funding"),
		publisher: keyFrom("publisher-1"),
		mapKey:    keyFrom("mapping-0"),
		priceKey:  keyFrom("price-btc-usd"),
		clockKey:  program.ClockSysvarKey,
		symbol:    symbolFrom(symbolText),
		accounts:  make(map[PubKey]*program.AccountInfo),
	}

	s.accounts[s.mapKey] = &program.AccountInfo{
		Key: s.mapKey, Owner: s.programID, IsSigner: true, IsWritable: true,
		Data: make([]byte, program.MappingTableSize),
	}
	s.accounts[s.priceKey] = &program.AccountInfo{
		Key: s.priceKey, Owner: s.programID, IsSigner: true, IsWritable: true,
		Data: make([]byte, program.PriceAccountSize),
	}
	s.accounts[s.clockKey] = &program.AccountInfo{
		Key: s.clockKey, Data: make([]byte, 8),
	}
	return s
}

func (s *sim) fundingAccount() *program.AccountInfo {
	return &program.AccountInfo{Key: s.funding, IsSigner: true, IsWritable: true}
}

func (s *sim) publisherFunding() *program.AccountInfo {
	return &program.AccountInfo{Key: s.publisher, IsSigner: true, IsWritable: true}
}

func (s *sim) setClock(slot uint64) {
	s.clock = slot
	binaryPutUint64(s.accounts[s.clockKey].Data, slot)
}

func (s *sim) run() error {
	fmt.Printf("== init_mapping ==\n")
	if err := program.Dispatch(s.programID, header(program.CmdInitMapping), []*program.AccountInfo{
		s.fundingAccount(), s.accounts[s.mapKey],
	}); err != nil {
		return fmt.Errorf("init_mapping: %w", err)
	}

	fmt.Printf("== add_symbol %s ==\n", s.symbol)
	if err := program.Dispatch(s.programID, addSymbolBody(s.symbol, -8, program.PC_PTYPE_PRICE), []*program.AccountInfo{
		s.fundingAccount(), s.accounts[s.mapKey], s.accounts[s.priceKey],
	}); err != nil {
		return fmt.Errorf("add_symbol: %w", err)
	}

	fmt.Printf("== add_publisher %x ==\n", s.publisher[:8])
	if err := program.Dispatch(s.programID, publisherBody(program.PC_VERSION, s.symbol, program.PC_PTYPE_PRICE, s.publisher), []*program.AccountInfo{
		s.fundingAccount(), s.accounts[s.priceKey],
	}); err != nil {
		return fmt.Errorf("add_publisher: %w", err)
	}

	quotes := []struct {
		slot   uint64
		price  int64
		conf   uint64
		status uint32
	}{
		{slot: 100, price: 50_000_00000000, conf: 10_00000000, status: program.PC_STATUS_TRADING},
		{slot: 101, price: 50_100_00000000, conf: 10_00000000, status: program.PC_STATUS_TRADING},
	}

	for _, q := range quotes {
		s.setClock(q.slot)
		fmt.Printf("== upd_price slot=%d price=%d ==\n", q.slot, q.price)
		if err := program.Dispatch(s.programID, updPriceBody(s.symbol, program.PC_PTYPE_PRICE, q.price, q.conf, q.status), []*program.AccountInfo{
			s.publisherFunding(), s.accounts[s.priceKey], s.accounts[s.clockKey],
		}); err != nil {
			return fmt.Errorf("upd_price at slot %d: %w", q.slot, err)
		}
		s.printAggregate()
	}

	return nil
}

func (s *sim) printAggregate() {
	var price program.PriceAccount
	if err := price.UnmarshalBinary(s.accounts[s.priceKey].Data); err != nil {
		fmt.Printf("  decode error: %v\n", err)
		return
	}
	fmt.Printf("  aggregate: price=%d conf=%d status=%d curr_slot=%d\n",
		price.Agg.Price, price.Agg.Conf, price.Agg.Status, price.CurrSlot)
}

func keyFrom(label string) PubKey {
	var k PubKey
	copy(k[:], label)
	return k
}

func symbolFrom(text string) program.Symbol {
	var sym program.Symbol
	copy(sym[:], text)
	return sym
}

func binaryPutUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}
