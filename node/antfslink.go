package node

import (
	"context"

	"github.com/go-ant/antcore/antfs"
)

var _ antfs.Link = (*ChannelLink)(nil)

// ChannelLink adapts a [Channel] already opened and tracking an ANT-FS
// client to the antfs.Link collaborator interface: beacons arrive as
// broadcasts, command-pipe responses as acknowledge/burst data, and
// commands are sent acknowledged or burst depending on size.
type ChannelLink struct {
	ch        *Channel
	beaconCh  chan []byte
	responses chan []byte
}

// NewChannelLink wires ch's callbacks to feed an antfs.Link, overwriting
// any callbacks previously installed via [Channel.SetCallbacks].
func NewChannelLink(ch *Channel) *ChannelLink {
	l := &ChannelLink{
		ch:        ch,
		beaconCh:  make(chan []byte, 8),
		responses: make(chan []byte, 8),
	}
	ch.SetCallbacks(Callbacks{
		OnBroadcast: func(p []byte) {
			select {
			case l.beaconCh <- p:
			default:
			}
		},
		OnAcknowledge: func(p []byte) {
			select {
			case l.responses <- p:
			default:
			}
		},
		OnBurst: func(p []byte) {
			select {
			case l.responses <- p:
			default:
			}
		},
	})
	return l
}

// Beacons implements antfs.Link.
func (l *ChannelLink) Beacons() <-chan []byte { return l.beaconCh }

// Responses implements antfs.Link.
func (l *ChannelLink) Responses() <-chan []byte { return l.responses }

// maxAcknowledgedPayload is the largest payload sent as a single
// ACKNOWLEDGED_DATA frame before SendCommand falls back to a burst
// transfer.
const maxAcknowledgedPayload = 8

// SendCommand implements antfs.Link, choosing acknowledged or burst
// transfer by payload size.
func (l *ChannelLink) SendCommand(ctx context.Context, payload []byte) error {
	if len(payload) <= maxAcknowledgedPayload {
		return l.ch.SendAcknowledged(ctx, payload)
	}
	return l.ch.SendBurst(ctx, payload)
}
