package program

import (
	"bytes"
	"encoding/binary"
)

// addSymbolBody is the wire body of an add_symbol instruction, following
// the 8-byte Header.
type addSymbolBody struct {
	Symbol Symbol
	Expo   int32
	PType  uint32
}

// publisherBody is the shared wire body of add_publisher and del_publisher,
// following the 8-byte Header.
type publisherBody struct {
	Version   uint32
	Symbol    Symbol
	PType     uint32
	Publisher PubKey
}

func decodeAddSymbolBody(data []byte) (addSymbolBody, error) {
	var b addSymbolBody
	if len(data) < binary.Size(b) {
		return b, ErrInvalidArgument
	}
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &b); err != nil {
		return b, ErrInvalidArgument
	}
	return b, nil
}

func decodePublisherBody(data []byte) (publisherBody, error) {
	var b publisherBody
	if len(data) < binary.Size(b) {
		return b, ErrInvalidArgument
	}
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &b); err != nil {
		return b, ErrInvalidArgument
	}
	return b, nil
}

// InitMapping initializes a fresh, zeroed account as the head of a new
// mapping table chain.
func InitMapping(programID PubKey, _ []byte, accounts []*AccountInfo) error {
	if len(accounts) < 2 {
		return ErrInvalidArgument
	}
	funding, acct := accounts[0], accounts[1]
	if !ValidFundingAccount(funding) {
		return ErrInvalidArgument
	}
	if !ValidSignableAccount(acct, programID, MappingTableSize) {
		return ErrInvalidArgument
	}

	var table MappingTable
	if err := table.UnmarshalBinary(acct.Data); err != nil {
		return err
	}
	if table.Magic != 0 {
		return ErrInvalidArgument
	}

	table = MappingTable{Magic: PC_MAGIC, Ver: PC_VERSION}
	enc, err := table.MarshalBinary()
	if err != nil {
		return err
	}
	copy(acct.Data, enc)
	return nil
}

// AddMapping extends a full mapping table chain with a new, fresh tail
// account.
func AddMapping(programID PubKey, _ []byte, accounts []*AccountInfo) error {
	if len(accounts) < 3 {
		return ErrInvalidArgument
	}
	funding, tailAcct, newAcct := accounts[0], accounts[1], accounts[2]
	if !ValidFundingAccount(funding) {
		return ErrInvalidArgument
	}
	if !ValidWritableAccount(tailAcct, programID, MappingTableSize) {
		return ErrInvalidArgument
	}
	if !ValidSignableAccount(newAcct, programID, MappingTableSize) {
		return ErrInvalidArgument
	}

	var tail MappingTable
	if err := tail.UnmarshalBinary(tailAcct.Data); err != nil {
		return err
	}
	if tail.Magic != PC_MAGIC || tail.Ver > PC_VERSION {
		return ErrInvalidArgument
	}
	if !tail.Next.IsZero() {
		// Not the chain's current tail.
		return ErrInvalidArgument
	}
	if tail.Num < PC_MAP_NODE_SIZE {
		// Tail still has room; no need to chain a new table.
		return ErrInvalidArgument
	}

	var fresh MappingTable
	if err := fresh.UnmarshalBinary(newAcct.Data); err != nil {
		return err
	}
	if fresh.Magic != 0 {
		return ErrInvalidArgument
	}
	fresh = MappingTable{Magic: PC_MAGIC, Ver: PC_VERSION}

	tail.Next = newAcct.Key

	tailEnc, err := tail.MarshalBinary()
	if err != nil {
		return err
	}
	freshEnc, err := fresh.MarshalBinary()
	if err != nil {
		return err
	}
	copy(tailAcct.Data, tailEnc)
	copy(newAcct.Data, freshEnc)
	return nil
}

// AddSymbol initializes a fresh price account for symbol/ptype and links it
// into the mapping table's hash chain.
func AddSymbol(programID PubKey, body []byte, accounts []*AccountInfo) error {
	args, err := decodeAddSymbolBody(body)
	if err != nil {
		return err
	}
	if args.Symbol.IsZero() || args.PType == PC_PTYPE_UNKNOWN {
		return ErrInvalidArgument
	}
	if args.Expo > PC_MAX_NUM_DECIMALS || args.Expo < -PC_MAX_NUM_DECIMALS {
		return ErrInvalidArgument
	}
	if len(accounts) < 3 {
		return ErrInvalidArgument
	}
	funding, mapAcct, priceAcct := accounts[0], accounts[1], accounts[2]
	if !ValidFundingAccount(funding) {
		return ErrInvalidArgument
	}
	if !ValidWritableAccount(mapAcct, programID, MappingTableSize) {
		return ErrInvalidArgument
	}
	if !ValidSignableAccount(priceAcct, programID, PriceAccountSize) {
		return ErrInvalidArgument
	}

	var mapping MappingTable
	if err := mapping.UnmarshalBinary(mapAcct.Data); err != nil {
		return err
	}
	if mapping.Magic != PC_MAGIC || mapping.Ver > PC_VERSION {
		return ErrInvalidArgument
	}

	var price PriceAccount
	if err := price.UnmarshalBinary(priceAcct.Data); err != nil {
		return err
	}
	if price.Magic != 0 {
		return ErrInvalidArgument
	}

	bucket := args.Symbol.bucket()
	var existing *MapNode
	for idx := mapping.Tab[bucket]; idx != 0; idx = mapping.Nodes[idx-1].Next {
		if mapping.Nodes[idx-1].Symbol == args.Symbol {
			existing = &mapping.Nodes[idx-1]
			break
		}
	}

	price = PriceAccount{
		Magic:  PC_MAGIC,
		Ver:    PC_VERSION,
		Size:   uint32(PriceAccountSize),
		PType:  args.PType,
		Expo:   args.Expo,
		Symbol: args.Symbol,
	}

	if existing != nil {
		// Symbol already has a node: link the new price account at the
		// head of its price-type chain, num_ unchanged.
		price.Next = existing.PriceAccount
		existing.PriceAccount = priceAcct.Key
	} else {
		// First time this symbol is seen: a fresh node, hashed into its
		// bucket's chain.
		if mapping.Num >= PC_MAP_NODE_SIZE {
			return ErrInvalidArgument
		}
		newIdx := mapping.Num + 1
		node := &mapping.Nodes[newIdx-1]
		node.Symbol = args.Symbol
		node.Next = mapping.Tab[bucket]
		node.PriceAccount = priceAcct.Key
		mapping.Tab[bucket] = newIdx
		mapping.Num = newIdx
	}

	mapEnc, err := mapping.MarshalBinary()
	if err != nil {
		return err
	}
	priceEnc, err := price.MarshalBinary()
	if err != nil {
		return err
	}
	copy(mapAcct.Data, mapEnc)
	copy(priceAcct.Data, priceEnc)
	return nil
}

// AddPublisher appends publisher to a price account's component roster.
func AddPublisher(programID PubKey, body []byte, accounts []*AccountInfo) error {
	args, err := decodePublisherBody(body)
	if err != nil {
		return err
	}
	if args.Publisher.IsZero() {
		return ErrInvalidArgument
	}
	if len(accounts) < 2 {
		return ErrInvalidArgument
	}
	funding, priceAcct := accounts[0], accounts[1]
	if !ValidFundingAccount(funding) {
		return ErrInvalidArgument
	}
	if !ValidWritableAccount(priceAcct, programID, PriceAccountSize) {
		return ErrInvalidArgument
	}

	var price PriceAccount
	if err := price.UnmarshalBinary(priceAcct.Data); err != nil {
		return err
	}
	if price.Magic != PC_MAGIC || price.PType != args.PType || price.Symbol != args.Symbol || price.Ver != args.Version {
		return ErrInvalidArgument
	}
	for i := uint32(0); i < price.Num; i++ {
		if price.Comp[i].Pub == args.Publisher {
			return ErrInvalidArgument
		}
	}
	if price.Num >= PC_COMP_SIZE {
		return ErrInvalidArgument
	}

	price.Comp[price.Num] = PriceComponent{Pub: args.Publisher}
	price.Num++

	enc, err := price.MarshalBinary()
	if err != nil {
		return err
	}
	copy(priceAcct.Data, enc)
	return nil
}

// DeletePublisher removes publisher from a price account's component
// roster, shifting the remaining components down one at a time (rather
// than a block move) so a future, richer component layout still shifts
// field-by-field correctly.
func DeletePublisher(programID PubKey, body []byte, accounts []*AccountInfo) error {
	args, err := decodePublisherBody(body)
	if err != nil {
		return err
	}
	if len(accounts) < 2 {
		return ErrInvalidArgument
	}
	funding, priceAcct := accounts[0], accounts[1]
	if !ValidFundingAccount(funding) {
		return ErrInvalidArgument
	}
	if !ValidWritableAccount(priceAcct, programID, PriceAccountSize) {
		return ErrInvalidArgument
	}

	var price PriceAccount
	if err := price.UnmarshalBinary(priceAcct.Data); err != nil {
		return err
	}
	if price.Magic != PC_MAGIC || price.PType != args.PType || price.Symbol != args.Symbol || price.Ver != args.Version {
		return ErrInvalidArgument
	}

	found := -1
	for i := uint32(0); i < price.Num; i++ {
		if price.Comp[i].Pub == args.Publisher {
			found = int(i)
			break
		}
	}
	if found < 0 {
		return ErrInvalidArgument
	}

	for j := found; j < int(price.Num)-1; j++ {
		price.Comp[j] = price.Comp[j+1]
	}
	price.Comp[price.Num-1] = PriceComponent{}
	price.Num--

	enc, err := price.MarshalBinary()
	if err != nil {
		return err
	}
	copy(priceAcct.Data, enc)
	return nil
}
