package transport

import "github.com/go-ant/antcore/pkg"

// burstReassembler accumulates one channel's BURST_TRANSFER_DATA packets
// into a complete payload. A burst packet's header byte packs the channel
// number into the low 5 bits and a 3-bit sequence field into the high bits:
// the first packet of a burst always carries sequence&0x3 == 0, the last
// packet has bit 2 of the sequence field set, and the sequence number of
// every packet in between cycles 1, 2, 3, 1, 2, 3, ...
type burstReassembler struct {
	active   bool
	expected uint8
	buf      []byte
}

func burstHeader(channel int, seq uint8) byte {
	return byte(channel&0x1F) | (seq << 5)
}

func burstChannel(header byte) int {
	return int(header & 0x1F)
}

func burstSequence(header byte) uint8 {
	return header >> 5
}

func burstSeqNum(seq uint8) uint8 {
	return seq & 0x3
}

func burstIsLast(seq uint8) bool {
	return seq&0x4 != 0
}

func nextBurstSeqNum(n uint8) uint8 {
	if n == 3 {
		return 1
	}
	return n + 1
}

// Feed consumes one burst packet's sequence field and payload. done is true
// once the packet completing the burst (the one with its sequence field's
// bit 2 set) has been fed, in which case result holds the full reassembled
// payload. A non-first packet whose sequence number does not match the
// expected next value in the 1,2,3 cycle returns [pkg.ErrProtocolViolation]
// and resets the reassembler.
func (r *burstReassembler) Feed(seq uint8, payload []byte) (done bool, result []byte, err error) {
	seqNum := burstSeqNum(seq)
	last := burstIsLast(seq)

	if seqNum == 0 {
		r.active = true
		r.expected = 1
		r.buf = append([]byte(nil), payload...)
	} else {
		if !r.active || seqNum != r.expected {
			r.reset()
			return false, nil, pkg.ErrProtocolViolation
		}
		r.buf = append(r.buf, payload...)
		r.expected = nextBurstSeqNum(seqNum)
	}

	if last {
		out := r.buf
		r.reset()
		return true, out, nil
	}
	return false, nil, nil
}

func (r *burstReassembler) reset() {
	r.active = false
	r.expected = 0
	r.buf = nil
}
