package daemon

import (
	"bytes"
	"encoding/binary"

	"github.com/priceoracle/oracle/pkg/program"
)

// encodeUpdPrice builds the on-wire body of an upd_price/agg_price
// instruction per §6's table: header, symbol, price-type, price,
// confidence, status. The publish-slot is supplied by the clock account
// at execution time, not by this encoding.
func encodeUpdPrice(cmd program.Command, symbol program.Symbol, priceType uint32, price int64, conf uint64, status uint32) []byte {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.LittleEndian, program.Header{Version: program.CurrentVersion, Command: cmd})
	_ = binary.Write(buf, binary.LittleEndian, symbol)
	_ = binary.Write(buf, binary.LittleEndian, priceType)
	_ = binary.Write(buf, binary.LittleEndian, price)
	_ = binary.Write(buf, binary.LittleEndian, conf)
	_ = binary.Write(buf, binary.LittleEndian, status)
	return buf.Bytes()
}

func symbolFromString(s string) program.Symbol {
	var sym program.Symbol
	copy(sym[:], s)
	return sym
}
