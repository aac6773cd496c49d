package frame

import "github.com/go-ant/antcore/pkg"

// Sync is the fixed sync byte that begins every frame.
const Sync byte = 0xA4

// MaxPayload is the largest payload a single frame can carry (length is a
// single byte).
const MaxPayload = 255

// Frame is an immutable decoded ANT message.
type Frame struct {
	Length   uint8
	ID       MessageID
	Payload  []byte
	Checksum byte
}

func checksum(length uint8, id MessageID, payload []byte) byte {
	c := Sync ^ length ^ byte(id)
	for _, b := range payload {
		c ^= b
	}
	return c
}

// Encode builds the wire bytes for a message: sync, length, id, payload,
// checksum. Payloads must be at most [MaxPayload] bytes; every caller in
// this module constructs payloads of known, fixed size, so Encode does not
// itself validate the bound.
func Encode(id MessageID, payload []byte) []byte {
	length := uint8(len(payload))
	out := make([]byte, 0, 4+len(payload))
	out = append(out, Sync, length, byte(id))
	out = append(out, payload...)
	out = append(out, checksum(length, id, payload))
	return out
}

// Decode consumes one frame from the head of buf. It returns the decoded
// Frame, the number of bytes consumed, and ok=true on success. ok=false
// with a nil error means "need more bytes" (buf is a valid but incomplete
// prefix) — not a failure. A non-nil error means the buffer's head cannot
// possibly begin a valid frame ([pkg.ErrBadSync]) or a complete frame
// failed its checksum ([pkg.ErrBadChecksum]); callers should discard
// exactly one byte and try again, per §7's BadFrame recovery policy.
func Decode(buf []byte) (f Frame, n int, ok bool, err error) {
	if len(buf) < 1 {
		return Frame{}, 0, false, nil
	}
	if buf[0] != Sync {
		return Frame{}, 0, false, pkg.ErrBadSync
	}
	if len(buf) < 2 {
		return Frame{}, 0, false, nil
	}
	length := buf[1]
	total := int(length) + 4
	if len(buf) < total {
		return Frame{}, 0, false, nil
	}
	id := MessageID(buf[2])
	payload := buf[3 : 3+int(length)]
	want := checksum(length, id, payload)
	got := buf[total-1]
	if got != want {
		return Frame{}, 0, false, pkg.ErrBadChecksum
	}
	out := make([]byte, length)
	copy(out, payload)
	return Frame{Length: length, ID: id, Payload: out, Checksum: got}, total, true, nil
}
