package antfs

import "github.com/go-ant/antcore/pkg"

// beaconTag is the fixed first byte of every ANT-FS beacon.
const beaconTag byte = 0x43

// ClientDeviceState is the client device state reported in a beacon's
// status2 byte.
type ClientDeviceState uint8

// Client device states.
const (
	StateLink ClientDeviceState = iota
	StateAuthentication
	StateTransportState
	StateBusy
)

// String returns a human-readable client device state name.
func (s ClientDeviceState) String() string {
	switch s {
	case StateLink:
		return "link"
	case StateAuthentication:
		return "authentication"
	case StateTransportState:
		return "transport"
	case StateBusy:
		return "busy"
	default:
		return "unknown"
	}
}

// BeaconPeriod is the broadcast period advertised in a beacon's status1
// bits 0-2.
type BeaconPeriod uint8

// Beacon periods, per the status1 period field.
const (
	BeaconPeriod0_5Hz BeaconPeriod = iota
	BeaconPeriod1Hz
	BeaconPeriod2Hz
	BeaconPeriod4Hz
	BeaconPeriod8Hz
	BeaconPeriodMatchChannel = 0x07
)

// Beacon is one decoded ANT-FS beacon (8 bytes), broadcast by the client
// once per receive slot while an ANT-FS session is active.
type Beacon struct {
	Period          BeaconPeriod
	PairingEnabled  bool
	UploadEnabled   bool
	DataAvailable   bool
	DeviceState     ClientDeviceState
	AuthType        uint8
	HostSerial      uint32 // valid when DeviceState == StateTransportState
	DeviceDescriptor uint32 // valid in Link/Authentication states
}

// DecodeBeacon parses an 8-byte ANT-FS beacon payload.
func DecodeBeacon(payload []byte) (Beacon, error) {
	if len(payload) < 8 {
		return Beacon{}, pkg.ErrProtocolViolation
	}
	if payload[0] != beaconTag {
		return Beacon{}, pkg.ErrProtocolViolation
	}
	status1 := payload[1]
	b := Beacon{
		Period:         BeaconPeriod(status1 & 0x07),
		PairingEnabled: status1&(1<<3) != 0,
		UploadEnabled:  status1&(1<<4) != 0,
		DataAvailable:  status1&(1<<5) != 0,
		DeviceState:    ClientDeviceState(payload[2] & 0x0F),
		AuthType:       payload[3],
	}
	raw := uint32(payload[4]) | uint32(payload[5])<<8 | uint32(payload[6])<<16 | uint32(payload[7])<<24
	if b.DeviceState == StateTransportState {
		b.HostSerial = raw
	} else {
		b.DeviceDescriptor = raw
	}
	return b, nil
}
