package antfs

import (
	"time"

	"github.com/go-ant/antcore/pkg"
)

// CmdTime is the CommandPipe subtype for the Set Time command.
const CmdTime uint8 = 0x17

// antFSEpoch is the ANT-FS time base: 1989-12-31 00:00:00 UTC.
var antFSEpoch = time.Date(1989, 12, 31, 0, 0, 0, 0, time.UTC)

// utcTAIOffset is the fixed UTC-to-TAI offset ANT-FS encodes alongside its
// timestamp, per the protocol's historical TAI convention.
const utcTAIOffset uint8 = 35

// TimeCommand sets the client device's clock.
type TimeCommand struct {
	When time.Time
}

// Encode builds the wire bytes for a Time command.
func (c TimeCommand) Encode(seq uint8) []byte {
	buf := encodeHeader(header{Command: CmdTime, Sequence: seq})
	seconds := uint32(c.When.UTC().Sub(antFSEpoch).Seconds())
	buf = append(buf, le32(seconds)...)
	return append(buf, utcTAIOffset)
}

// TimeResponse acknowledges a Time command.
type TimeResponse struct {
	Code pkg.ResponseCode
}

// DecodeTimeResponse parses a TimeResponse payload.
func DecodeTimeResponse(buf []byte) (TimeResponse, error) {
	_, rest, err := decodeHeader(buf)
	if err != nil {
		return TimeResponse{}, err
	}
	if len(rest) < 1 {
		return TimeResponse{}, pkg.ErrProtocolViolation
	}
	return TimeResponse{Code: pkg.ResponseCode(rest[0])}, nil
}
