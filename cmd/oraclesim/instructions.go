package main

import (
	"bytes"
	"encoding/binary"

	"github.com/priceoracle/oracle/pkg/program"
)

// The wire bodies below mirror pkg/program's unexported decode types
// field-for-field; this command only needs to encode instructions, the
// inverse of what the program package does internally.

func header(cmd program.Command) []byte {
	return encode(program.Header{Version: program.CurrentVersion, Command: cmd})
}

func addSymbolBody(symbol program.Symbol, expo int32, ptype uint32) []byte {
	buf := new(bytes.Buffer)
	buf.Write(header(program.CmdAddSymbol))
	_ = binary.Write(buf, binary.LittleEndian, symbol)
	_ = binary.Write(buf, binary.LittleEndian, expo)
	_ = binary.Write(buf, binary.LittleEndian, ptype)
	return buf.Bytes()
}

func publisherBody(version uint32, symbol program.Symbol, ptype uint32, publisher program.PubKey) []byte {
	buf := new(bytes.Buffer)
	buf.Write(header(program.CmdAddPublisher))
	_ = binary.Write(buf, binary.LittleEndian, version)
	_ = binary.Write(buf, binary.LittleEndian, symbol)
	_ = binary.Write(buf, binary.LittleEndian, ptype)
	_ = binary.Write(buf, binary.LittleEndian, publisher)
	return buf.Bytes()
}

func updPriceBody(symbol program.Symbol, ptype uint32, price int64, conf uint64, status uint32) []byte {
	buf := new(bytes.Buffer)
	buf.Write(header(program.CmdUpdPrice))
	_ = binary.Write(buf, binary.LittleEndian, symbol)
	_ = binary.Write(buf, binary.LittleEndian, ptype)
	_ = binary.Write(buf, binary.LittleEndian, price)
	_ = binary.Write(buf, binary.LittleEndian, conf)
	_ = binary.Write(buf, binary.LittleEndian, status)
	return buf.Bytes()
}

func encode(v interface{}) []byte {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.LittleEndian, v)
	return buf.Bytes()
}
