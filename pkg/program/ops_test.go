package program

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testProgramID = PubKey{0xff}

func TestInitMapping(t *testing.T) {
	funding := newFundingAccount(PubKey{1})
	m1 := newSignableAccount(testProgramID, PubKey{0x10}, MappingTableSize)

	err := InitMapping(testProgramID, nil, []*AccountInfo{funding, m1})
	require.NoError(t, err)

	table := decodeMappingTable(t, m1)
	assert.Equal(t, PC_MAGIC, table.Magic)
	assert.Equal(t, PC_VERSION, table.Ver)
	assert.Zero(t, table.Num)

	// Re-initializing an already-initialized account fails.
	err = InitMapping(testProgramID, nil, []*AccountInfo{funding, m1})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestInitMappingRejectsNonSigner(t *testing.T) {
	funding := newFundingAccount(PubKey{1})
	m1 := newWritableAccount(testProgramID, PubKey{0x10}, MappingTableSize)
	err := InitMapping(testProgramID, nil, []*AccountInfo{funding, m1})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestAddMappingBoundary(t *testing.T) {
	funding := newFundingAccount(PubKey{1})
	tail := newSignableAccount(testProgramID, PubKey{0x10}, MappingTableSize)
	next := newSignableAccount(testProgramID, PubKey{0x11}, MappingTableSize)

	require.NoError(t, InitMapping(testProgramID, nil, []*AccountInfo{funding, tail}))

	// Tail not full yet: add_mapping fails.
	err := AddMapping(testProgramID, nil, []*AccountInfo{funding, tail, next})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	// Fill the tail.
	full := decodeMappingTable(t, tail)
	full.Num = PC_MAP_NODE_SIZE
	enc, err := full.MarshalBinary()
	require.NoError(t, err)
	copy(tail.Data, enc)

	// Now it succeeds.
	require.NoError(t, AddMapping(testProgramID, nil, []*AccountInfo{funding, tail, next}))
	gotTail := decodeMappingTable(t, tail)
	assert.Equal(t, next.Key, gotTail.Next)
	gotNext := decodeMappingTable(t, next)
	assert.Equal(t, PC_MAGIC, gotNext.Magic)

	// Tail is no longer the chain's tail: a second add_mapping against it fails.
	another := newSignableAccount(testProgramID, PubKey{0x12}, MappingTableSize)
	err = AddMapping(testProgramID, nil, []*AccountInfo{funding, tail, another})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestScenario1BootstrapFreshChain(t *testing.T) {
	funding := newFundingAccount(PubKey{1})
	m1 := newSignableAccount(testProgramID, PubKey{0x10}, MappingTableSize)
	require.NoError(t, InitMapping(testProgramID, nil, []*AccountInfo{funding, m1}))

	symbol := Symbol{'S'}
	p1 := newSignableAccount(testProgramID, PubKey{0x20}, PriceAccountSize)
	body := encodeAddSymbolIx(symbol, -4, PC_PTYPE_PRICE)
	require.NoError(t, Dispatch(testProgramID, body, []*AccountInfo{funding, m1, p1}))

	table := decodeMappingTable(t, m1)
	assert.EqualValues(t, 1, table.Num)

	pubA := PubKey{'A'}
	pubB := PubKey{'B'}
	ixA := encodePublisherIx(CmdAddPublisher, symbol, PC_PTYPE_PRICE, pubA)
	require.NoError(t, Dispatch(testProgramID, ixA, []*AccountInfo{funding, p1}))
	ixB := encodePublisherIx(CmdAddPublisher, symbol, PC_PTYPE_PRICE, pubB)
	require.NoError(t, Dispatch(testProgramID, ixB, []*AccountInfo{funding, p1}))

	price := decodePriceAccount(t, p1)
	require.EqualValues(t, 2, price.Num)
	assert.Equal(t, pubA, price.Comp[0].Pub)
	assert.Equal(t, pubB, price.Comp[1].Pub)
}

func TestAddSymbolSecondCallLinksHeadWithoutChangingNum(t *testing.T) {
	funding := newFundingAccount(PubKey{1})
	m1 := newSignableAccount(testProgramID, PubKey{0x10}, MappingTableSize)
	require.NoError(t, InitMapping(testProgramID, nil, []*AccountInfo{funding, m1}))

	symbol := Symbol{'S'}
	p1 := newSignableAccount(testProgramID, PubKey{0x20}, PriceAccountSize)
	require.NoError(t, Dispatch(testProgramID, encodeAddSymbolIx(symbol, -4, PC_PTYPE_PRICE), []*AccountInfo{funding, m1, p1}))

	p2 := newSignableAccount(testProgramID, PubKey{0x21}, PriceAccountSize)
	require.NoError(t, Dispatch(testProgramID, encodeAddSymbolIx(symbol, -2, 2), []*AccountInfo{funding, m1, p2}))

	table := decodeMappingTable(t, m1)
	assert.EqualValues(t, 1, table.Num, "num_ unchanged on second add_symbol for the same symbol")

	p2dec := decodePriceAccount(t, p2)
	assert.Equal(t, p1.Key, p2dec.Next, "new price account heads the price-type chain")

	bucket := symbol.bucket()
	headIdx := table.Tab[bucket]
	require.NotZero(t, headIdx)
	assert.Equal(t, p2.Key, table.Nodes[headIdx-1].PriceAccount, "node now points at the new head")
}

func TestAddPublisherFullBoundary(t *testing.T) {
	funding := newFundingAccount(PubKey{1})
	p1 := newSignableAccount(testProgramID, PubKey{0x20}, PriceAccountSize)
	symbol := Symbol{'S'}
	preset := PriceAccount{Magic: PC_MAGIC, Ver: PC_VERSION, PType: PC_PTYPE_PRICE, Symbol: symbol, Num: PC_COMP_SIZE}
	enc, err := preset.MarshalBinary()
	require.NoError(t, err)
	copy(p1.Data, enc)

	ix := encodePublisherIx(CmdAddPublisher, symbol, PC_PTYPE_PRICE, PubKey{9})
	err = Dispatch(testProgramID, ix, []*AccountInfo{funding, p1})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestScenario6DeletePublisher(t *testing.T) {
	funding := newFundingAccount(PubKey{1})
	symbol := Symbol{'S'}
	p1 := newSignableAccount(testProgramID, PubKey{0x20}, PriceAccountSize)
	preset := PriceAccount{Magic: PC_MAGIC, Ver: PC_VERSION, PType: PC_PTYPE_PRICE, Symbol: symbol, Num: 4}
	preset.Comp[0].Pub = PubKey{'A'}
	preset.Comp[1].Pub = PubKey{'B'}
	preset.Comp[2].Pub = PubKey{'C'}
	preset.Comp[3].Pub = PubKey{'D'}
	enc, err := preset.MarshalBinary()
	require.NoError(t, err)
	copy(p1.Data, enc)

	ix := encodePublisherIx(CmdDelPublisher, symbol, PC_PTYPE_PRICE, PubKey{'B'})
	require.NoError(t, Dispatch(testProgramID, ix, []*AccountInfo{funding, p1}))

	got := decodePriceAccount(t, p1)
	require.EqualValues(t, 3, got.Num)
	assert.Equal(t, PubKey{'A'}, got.Comp[0].Pub)
	assert.Equal(t, PubKey{'C'}, got.Comp[1].Pub)
	assert.Equal(t, PubKey{'D'}, got.Comp[2].Pub)
	assert.Equal(t, PriceComponent{}, got.Comp[3])
}

func TestAddThenDeletePublisherRoundTrip(t *testing.T) {
	funding := newFundingAccount(PubKey{1})
	symbol := Symbol{'S'}
	p1 := newSignableAccount(testProgramID, PubKey{0x20}, PriceAccountSize)
	preset := PriceAccount{Magic: PC_MAGIC, Ver: PC_VERSION, PType: PC_PTYPE_PRICE, Symbol: symbol}
	enc, err := preset.MarshalBinary()
	require.NoError(t, err)
	copy(p1.Data, enc)

	pub := PubKey{'K'}
	require.NoError(t, Dispatch(testProgramID, encodePublisherIx(CmdAddPublisher, symbol, PC_PTYPE_PRICE, pub), []*AccountInfo{funding, p1}))
	mid := decodePriceAccount(t, p1)
	require.EqualValues(t, 1, mid.Num)

	require.NoError(t, Dispatch(testProgramID, encodePublisherIx(CmdDelPublisher, symbol, PC_PTYPE_PRICE, pub), []*AccountInfo{funding, p1}))
	final := decodePriceAccount(t, p1)
	assert.EqualValues(t, 0, final.Num)
	assert.Equal(t, PriceComponent{}, final.Comp[0])
}
