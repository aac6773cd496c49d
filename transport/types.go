package transport

import "github.com/go-ant/antcore/frame"

// NoChannel marks a [Response] that is not associated with any channel
// (capabilities, version, serial number, startup/serial-error
// notifications).
const NoChannel = -1

// Response is a dispatched configuration/control reply: either a
// channel-less notification, a REQUEST_MESSAGE reply, or a RESPONSE_CHANNEL
// acknowledgement of a configuration command (classification rules 1-4).
type Response struct {
	ID      frame.MessageID
	Channel int
	Code    frame.EventCode
	Payload []byte
}

// ChannelEvent is a channel event dispatched from a RESPONSE_CHANNEL
// message with sub-id 0x01 (classification rule 5).
type ChannelEvent struct {
	Channel int
	Code    frame.EventCode
}

// DataKind identifies the variety of a dispatched [DataMessage].
type DataKind int

// Data message kinds, per classification rules 6-8.
const (
	KindBroadcast DataKind = iota
	KindAcknowledge
	KindBurst
)

// DataMessage is a broadcast, acknowledge, or reassembled-burst payload
// dispatched to a specific channel's application callback.
type DataMessage struct {
	Kind    DataKind
	Channel int
	Payload []byte
}
