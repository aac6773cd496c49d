// Package frame implements the ANT wire framing format and the message ID
// and channel event code tables the rest of the stack dispatches on.
//
// A frame on the wire is a sync byte, a length byte, a message ID byte, the
// payload, and a trailing XOR checksum over every preceding byte:
//
//	0xA4, length, id, payload[length], checksum
//
// [Encode] builds this byte sequence; [Decode] consumes it from the head of
// a buffer, tolerating partial reads so a caller can re-invoke it as more
// bytes arrive from the driver.
package frame
