// Package program implements the on-ledger price aggregation program: the
// fixed-layout account structures, the four account-validity predicates, and
// the instruction dispatcher/handlers that a validator invokes once per
// transaction. It has no logger, no config, and no goroutines — a consensus
// program runs synchronously inside someone else's runtime.
package program

import (
	"bytes"
	"encoding/binary"
)

// Wire-format constants, transliterated from the on-ledger C implementation.
const (
	// PC_MAGIC tags a freshly-initialized account of this program.
	PC_MAGIC = uint32(0xa1b2c3d4)

	// PC_VERSION is the current account layout version this program writes.
	// A decoded account with Ver <= PC_VERSION is treated as forward
	// compatible; a Ver above it is rejected by the instruction handlers.
	PC_VERSION = uint32(2)

	// PC_MAP_TABLE_SIZE is the number of hash buckets in a mapping table.
	PC_MAP_TABLE_SIZE = 640

	// PC_MAP_NODE_SIZE is the number of product nodes a single mapping
	// table account can hold before a new table must be chained on.
	PC_MAP_NODE_SIZE = 640

	// PC_COMP_SIZE is the maximum number of publisher components a single
	// price account can carry.
	PC_COMP_SIZE = 32

	// PC_MAX_NUM_DECIMALS bounds the exponent accepted by AddSymbol to
	// [-PC_MAX_NUM_DECIMALS, +PC_MAX_NUM_DECIMALS].
	PC_MAX_NUM_DECIMALS = 16
)

// Price account types. PC_PTYPE_UNKNOWN is never a valid argument to
// AddSymbol; it only ever appears in a zeroed, uninitialized account.
const (
	PC_PTYPE_UNKNOWN = uint32(0)
	PC_PTYPE_PRICE   = uint32(1)
)

// Price status values a publisher or the aggregate can carry.
const (
	PC_STATUS_UNKNOWN = uint32(0)
	PC_STATUS_TRADING = uint32(1)
	PC_STATUS_HALTED  = uint32(2)
	PC_STATUS_AUCTION = uint32(3)
)

// PubKey is a ledger account address.
type PubKey [32]byte

// IsZero reports whether k is the all-zero key, used throughout as the
// "no account"/"end of chain" sentinel.
func (k PubKey) IsZero() bool {
	return k == PubKey{}
}

// Symbol is an opaque 32-byte product identifier (e.g. a padded ticker).
type Symbol [32]byte

// IsZero reports whether s is the all-zero symbol.
func (s Symbol) IsZero() bool {
	return s == Symbol{}
}

// lowWord returns the first 8 bytes of the symbol as a little-endian
// integer, used by AddSymbol to select the mapping table's hash bucket. It mirrors the original program reading the
// symbol's first machine word directly off the account buffer.
func (s Symbol) lowWord() uint64 {
	return binary.LittleEndian.Uint64(s[:8])
}

// bucket returns the hash bucket index for s within a table of
// PC_MAP_TABLE_SIZE buckets.
func (s Symbol) bucket() uint32 {
	return uint32(s.lowWord() % uint64(PC_MAP_TABLE_SIZE))
}

// MapNode is one product entry in a mapping table's dense node array: the
// product symbol, the 1-based index of the next node in this bucket's hash
// chain (0 means end of chain), and the key of that product's price account.
type MapNode struct {
	Symbol       Symbol
	Next         uint32
	PriceAccount PubKey
}

// MappingTable is the root discovery structure: a singly linked list of
// mapping table accounts, each holding up to PC_MAP_NODE_SIZE product nodes
// indexed by a PC_MAP_TABLE_SIZE-bucket hash table of 1-based node indices
// (0 means empty bucket).
type MappingTable struct {
	Magic uint32
	Ver   uint32
	Num   uint32
	Next  PubKey
	Nodes [PC_MAP_NODE_SIZE]MapNode
	Tab   [PC_MAP_TABLE_SIZE]uint32
}

// MappingTableSize is the exact encoded size of a MappingTable, used by
// validators.go to size-check accounts before decoding them.
var MappingTableSize = binary.Size(MappingTable{})

// MarshalBinary encodes t in the program's fixed little-endian layout.
func (t *MappingTable) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Grow(MappingTableSize)
	if err := binary.Write(buf, binary.LittleEndian, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes t from data, which must be at least
// MappingTableSize bytes.
func (t *MappingTable) UnmarshalBinary(data []byte) error {
	if len(data) < MappingTableSize {
		return ErrInvalidArgument
	}
	return binary.Read(bytes.NewReader(data[:MappingTableSize]), binary.LittleEndian, t)
}

// PriceInfo is one slot's worth of a price quote: the price itself, a
// confidence interval around it, a trading status, and the publisher slot
// the quote was submitted for.
type PriceInfo struct {
	Price   int64
	Conf    uint64
	Status  uint32
	PubSlot uint64
}

// PriceComponent is one publisher's slot in a price account's roster: the
// publisher's key, the latest quote it submitted, and the quote that was
// live at the slot the aggregate last used it.
type PriceComponent struct {
	Pub    PubKey
	Latest PriceInfo
	Agg    PriceInfo
}

// PriceAccount is a single product's price account: header fields
// (exponent, price type, symbol, chain pointer), the current aggregate, and
// up to PC_COMP_SIZE publisher components.
type PriceAccount struct {
	Magic     uint32
	Ver       uint32
	Size      uint32
	PType     uint32
	Expo      int32
	Num       uint32
	Symbol    Symbol
	Next      PubKey
	CurrSlot  uint64
	ValidSlot uint64
	AggPub    PubKey
	Agg       PriceInfo
	Comp      [PC_COMP_SIZE]PriceComponent
}

// PriceAccountSize is the exact encoded size of a PriceAccount.
var PriceAccountSize = binary.Size(PriceAccount{})

// MarshalBinary encodes p in the program's fixed little-endian layout.
func (p *PriceAccount) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Grow(PriceAccountSize)
	if err := binary.Write(buf, binary.LittleEndian, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes p from data, which must be at least
// PriceAccountSize bytes.
func (p *PriceAccount) UnmarshalBinary(data []byte) error {
	if len(data) < PriceAccountSize {
		return ErrInvalidArgument
	}
	return binary.Read(bytes.NewReader(data[:PriceAccountSize]), binary.LittleEndian, p)
}
