package program

import (
	"bytes"
	"encoding/binary"
)

func newFundingAccount(key PubKey) *AccountInfo {
	return &AccountInfo{Key: key, IsSigner: true, IsWritable: true}
}

func newSignableAccount(programID, key PubKey, size int) *AccountInfo {
	return &AccountInfo{
		Key:        key,
		Owner:      programID,
		IsSigner:   true,
		IsWritable: true,
		Data:       make([]byte, size),
	}
}

func newWritableAccount(programID, key PubKey, size int) *AccountInfo {
	return &AccountInfo{
		Key:        key,
		Owner:      programID,
		IsWritable: true,
		Data:       make([]byte, size),
	}
}

func newClockAccount(slot uint64) *AccountInfo {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.LittleEndian, slot)
	return &AccountInfo{Key: ClockSysvarKey, Data: buf.Bytes()}
}

func encodeHeader(cmd Command) []byte {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.LittleEndian, Header{Version: CurrentVersion, Command: cmd})
	return buf.Bytes()
}

func encodeAddSymbolIx(symbol Symbol, expo int32, ptype uint32) []byte {
	buf := bytes.NewBuffer(encodeHeader(CmdAddSymbol))
	_ = binary.Write(buf, binary.LittleEndian, addSymbolBody{Symbol: symbol, Expo: expo, PType: ptype})
	return buf.Bytes()
}

func encodePublisherIx(cmd Command, symbol Symbol, ptype uint32, pub PubKey) []byte {
	buf := bytes.NewBuffer(encodeHeader(cmd))
	_ = binary.Write(buf, binary.LittleEndian, publisherBody{Version: PC_VERSION, Symbol: symbol, PType: ptype, Publisher: pub})
	return buf.Bytes()
}

func encodeUpdPriceIx(cmd Command, symbol Symbol, ptype uint32, price int64, conf uint64, status uint32) []byte {
	buf := bytes.NewBuffer(encodeHeader(cmd))
	_ = binary.Write(buf, binary.LittleEndian, updPriceBody{Symbol: symbol, PType: ptype, Price: price, Conf: conf, Status: status})
	return buf.Bytes()
}

func decodeMappingTable(t testingTB, a *AccountInfo) MappingTable {
	t.Helper()
	var m MappingTable
	if err := m.UnmarshalBinary(a.Data); err != nil {
		t.Fatalf("decode mapping table: %v", err)
	}
	return m
}

func decodePriceAccount(t testingTB, a *AccountInfo) PriceAccount {
	t.Helper()
	var p PriceAccount
	if err := p.UnmarshalBinary(a.Data); err != nil {
		t.Fatalf("decode price account: %v", err)
	}
	return p
}

// testingTB is the subset of testing.TB used by the decode helpers, kept
// narrow so this file does not need to import "testing" directly.
type testingTB interface {
	Helper()
	Fatalf(format string, args ...interface{})
}
