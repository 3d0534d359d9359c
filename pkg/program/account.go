package program

import "encoding/binary"

// AccountInfo is the program's view of a single ledger account passed into
// an instruction: its key, owning program, signer/writable flags from the
// transaction, and its raw backing buffer. Handlers decode a typed struct
// out of Data, mutate it, and re-encode it back into Data — there is no
// separate "commit" step, matching how the original program operates
// in-place on the account buffer handed to it by the runtime.
type AccountInfo struct {
	Key        PubKey
	Owner      PubKey
	IsSigner   bool
	IsWritable bool
	Data       []byte
}

// ClockSysvarKey is the well-known key of the clock sysvar account, the
// source of truth for the current slot during upd_price/agg_price.
var ClockSysvarKey = PubKey{'c', 'l', 'o', 'c', 'k', 's', 'y', 's', 'v', 'a', 'r', '1', '1', '1', '1', '1'}

// decodeClockSlot reads the current slot from a clock sysvar account's
// data. The real sysvar carries additional timestamp fields after the slot;
// this program only ever reads the slot, so decodeClockSlot only validates
// enough of the buffer to read that first field.
func decodeClockSlot(data []byte) (uint64, error) {
	if len(data) < 8 {
		return 0, ErrInvalidArgument
	}
	return binary.LittleEndian.Uint64(data[:8]), nil
}
