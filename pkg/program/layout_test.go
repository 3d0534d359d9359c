package program

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMappingTableRoundTrip(t *testing.T) {
	in := MappingTable{Magic: PC_MAGIC, Ver: PC_VERSION, Num: 3}
	in.Nodes[0] = MapNode{Symbol: Symbol{1}, Next: 0, PriceAccount: PubKey{9}}
	in.Tab[42] = 1

	enc, err := in.MarshalBinary()
	require.NoError(t, err)
	assert.Len(t, enc, MappingTableSize)

	var out MappingTable
	require.NoError(t, out.UnmarshalBinary(enc))
	assert.Equal(t, in, out)
}

func TestMappingTableUnmarshalTooShort(t *testing.T) {
	var out MappingTable
	err := out.UnmarshalBinary(make([]byte, MappingTableSize-1))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestPriceAccountRoundTrip(t *testing.T) {
	in := PriceAccount{
		Magic:  PC_MAGIC,
		Ver:    PC_VERSION,
		PType:  PC_PTYPE_PRICE,
		Expo:   -4,
		Symbol: Symbol{7, 7, 7},
		Num:    2,
	}
	in.Comp[0] = PriceComponent{Pub: PubKey{1}, Latest: PriceInfo{Price: 100, Conf: 1, Status: PC_STATUS_TRADING, PubSlot: 10}}
	in.Comp[1] = PriceComponent{Pub: PubKey{2}}

	enc, err := in.MarshalBinary()
	require.NoError(t, err)
	assert.Len(t, enc, PriceAccountSize)

	var out PriceAccount
	require.NoError(t, out.UnmarshalBinary(enc))
	assert.Equal(t, in, out)
}

func TestSymbolBucketIsStable(t *testing.T) {
	var s Symbol
	s[0] = 0x11
	s[7] = 0x22
	b1 := s.bucket()
	b2 := s.bucket()
	assert.Equal(t, b1, b2)
	assert.Less(t, b1, uint32(PC_MAP_TABLE_SIZE))
}

func TestPubKeyIsZero(t *testing.T) {
	var z PubKey
	assert.True(t, z.IsZero())
	nz := PubKey{1}
	assert.False(t, nz.IsZero())
}
