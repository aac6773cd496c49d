package node

// ChannelType selects a channel's direction and sharing mode, encoded into
// the ASSIGN_CHANNEL payload's type byte.
type ChannelType uint8

// Channel types, per the module's ASSIGN_CHANNEL type byte.
const (
	ChannelTypeBidirectionalRX ChannelType = 0x00
	ChannelTypeBidirectionalTX ChannelType = 0x10
	ChannelTypeSharedRX        ChannelType = 0x20
	ChannelTypeSharedTX        ChannelType = 0x30
	ChannelTypeUnidirectionalRX ChannelType = 0x40
	ChannelTypeUnidirectionalTX ChannelType = 0x50
)

// ChannelConfig is a channel's configuration. Mutable before Open, treated
// as read-only for the lifetime of an open channel.
type ChannelConfig struct {
	Type ChannelType

	NetworkNumber uint8

	// DeviceNumber is 0 for a wildcard (matches any device), in [0, 65535]
	// otherwise.
	DeviceNumber uint16

	DeviceType       uint8
	TransmissionType uint8

	// Period is the channel message period in 1/32768 s units, in
	// [1, 65535].
	Period uint16

	// RFFrequency is the RF frequency offset from 2400 MHz in MHz,
	// in [0, 124].
	RFFrequency uint8

	// SearchTimeout is the search timeout in 2.5 s units, as sent to
	// SET_SEARCH_TIMEOUT.
	SearchTimeout uint8

	ExtendedRXEnabled bool
}

// DefaultChannelConfig returns a bidirectional-RX slave configuration with a
// wildcard device number, the ANT+ standard period disabled (caller must
// set Period), and RF frequency 2457 MHz (offset 57, the ANT+ default).
func DefaultChannelConfig() ChannelConfig {
	return ChannelConfig{
		Type:          ChannelTypeBidirectionalRX,
		NetworkNumber: 0,
		DeviceNumber:  0,
		RFFrequency:   57,
		SearchTimeout: 12,
	}
}
