package node

// Capability option bits, decoded from the four option bytes of a
// RESPONSE_CAPABILITIES payload: (max_channels, max_networks, standard,
// advanced, advanced2, advanced3). Bit positions and names are taken from
// the module's own documented capability bytes.
type StandardOptions uint8

// Standard capability options (RESPONSE_CAPABILITIES byte 3).
const (
	NoRxChannels    StandardOptions = 1 << 0
	NoTxChannels    StandardOptions = 1 << 1
	NoRxMessages    StandardOptions = 1 << 2
	NoTxMessages    StandardOptions = 1 << 3
	NoAckMessages   StandardOptions = 1 << 4
	NoBurstMessages StandardOptions = 1 << 5
)

// AdvancedOptions is the first advanced capability byte (byte 4).
type AdvancedOptions uint8

const (
	NetworkEnabled           AdvancedOptions = 1 << 1
	SerialNumberEnabled      AdvancedOptions = 1 << 3
	PerChannelTxPowerEnabled AdvancedOptions = 1 << 4
	LowPrioritySearchEnabled AdvancedOptions = 1 << 5
	ScriptEnabled            AdvancedOptions = 1 << 6
	SearchListEnabled        AdvancedOptions = 1 << 7
)

// AdvancedOptionsTwo is the second advanced capability byte (byte 5).
type AdvancedOptionsTwo uint8

const (
	LedEnabled             AdvancedOptionsTwo = 1 << 0
	ExtMessageEnabled      AdvancedOptionsTwo = 1 << 1
	ScanModeEnabled        AdvancedOptionsTwo = 1 << 2
	ProximitySearchEnabled AdvancedOptionsTwo = 1 << 4
	ExtAssignEnabled       AdvancedOptionsTwo = 1 << 5
	FsAntFsEnabled         AdvancedOptionsTwo = 1 << 6
	Fit1Enabled            AdvancedOptionsTwo = 1 << 7
)

// AdvancedOptionsThree is the third advanced capability byte (byte 6).
type AdvancedOptionsThree uint8

const (
	AdvancedBurstEnabled       AdvancedOptionsThree = 1 << 0
	EventBufferingEnabled      AdvancedOptionsThree = 1 << 1
	EventFilteringEnabled      AdvancedOptionsThree = 1 << 2
	HighDutySearchEnabled      AdvancedOptionsThree = 1 << 3
	SearchSharingEnabled       AdvancedOptionsThree = 1 << 4
	SelectiveDataUpdateEnabled AdvancedOptionsThree = 1 << 5
	EncryptedChannelEnabled    AdvancedOptionsThree = 1 << 6
)

// CapabilitySet is the decoded RESPONSE_CAPABILITIES payload, populated
// asynchronously on Node.Start.
type CapabilitySet struct {
	MaxChannels uint8
	MaxNetworks uint8
	Standard    StandardOptions
	Advanced    AdvancedOptions
	Advanced2   AdvancedOptionsTwo
	Advanced3   AdvancedOptionsThree
}

// decodeCapabilities parses a RESPONSE_CAPABILITIES payload. The payload is
// at least 4 bytes (max_channels, max_networks, standard, advanced); the
// two newer advanced bytes are optional and default to zero on modules that
// don't report them.
func decodeCapabilities(payload []byte) CapabilitySet {
	var c CapabilitySet
	if len(payload) > 0 {
		c.MaxChannels = payload[0]
	}
	if len(payload) > 1 {
		c.MaxNetworks = payload[1]
	}
	if len(payload) > 2 {
		c.Standard = StandardOptions(payload[2])
	}
	if len(payload) > 3 {
		c.Advanced = AdvancedOptions(payload[3])
	}
	if len(payload) > 4 {
		c.Advanced2 = AdvancedOptionsTwo(payload[4])
	}
	if len(payload) > 5 {
		c.Advanced3 = AdvancedOptionsThree(payload[5])
	}
	return c
}
