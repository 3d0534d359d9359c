package program

import (
	"bytes"
	"encoding/binary"
)

// CurrentVersion is the instruction header's wire version. The program only ever
// speaks CurrentVersion; any other value is rejected.
const CurrentVersion = uint32(1)

// Command identifies which operation an instruction invokes.
type Command uint32

const (
	CmdInitMapping Command = iota
	CmdAddMapping
	CmdAddSymbol
	CmdAddPublisher
	CmdDelPublisher
	CmdUpdPrice
	CmdAggPrice
)

// headerSize is the encoded size of Header.
const headerSize = 8

// Header is the fixed 8-byte instruction prefix every instruction body
// starts with: a wire version followed by a command selector.
type Header struct {
	Version uint32
	Command Command
}

func decodeHeader(data []byte) (Header, []byte, error) {
	if len(data) < headerSize {
		return Header{}, nil, ErrInvalidArgument
	}
	var h Header
	if err := binary.Read(bytes.NewReader(data[:headerSize]), binary.LittleEndian, &h); err != nil {
		return Header{}, nil, ErrInvalidArgument
	}
	return h, data[headerSize:], nil
}

// Dispatch decodes the instruction header from data and routes to the
// matching handler with the remaining bytes as that handler's body and
// accounts as its account list. It is the program's single entry point,
// mirroring the original program's entrypoint/dispatch/dispatch_1 chain.
func Dispatch(programID PubKey, data []byte, accounts []*AccountInfo) error {
	hdr, body, err := decodeHeader(data)
	if err != nil {
		return err
	}
	if hdr.Version != CurrentVersion {
		return ErrInvalidArgument
	}
	switch hdr.Command {
	case CmdInitMapping:
		return InitMapping(programID, body, accounts)
	case CmdAddMapping:
		return AddMapping(programID, body, accounts)
	case CmdAddSymbol:
		return AddSymbol(programID, body, accounts)
	case CmdAddPublisher:
		return AddPublisher(programID, body, accounts)
	case CmdDelPublisher:
		return DeletePublisher(programID, body, accounts)
	case CmdUpdPrice:
		return UpdatePrice(programID, body, accounts, false)
	case CmdAggPrice:
		return UpdatePrice(programID, body, accounts, true)
	default:
		return ErrInvalidArgument
	}
}
