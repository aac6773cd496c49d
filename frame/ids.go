package frame

// MessageID identifies an ANT message's role on the wire, per the USB/serial
// link protocol the radio module speaks.
type MessageID uint8

// Configuration messages (host -> module).
const (
	UnassignChannel     MessageID = 0x41
	AssignChannel       MessageID = 0x42
	SetChannelID        MessageID = 0x51
	SetChannelPeriod    MessageID = 0x43
	SetSearchTimeout    MessageID = 0x44
	SetChannelRFFreq    MessageID = 0x45
	SetNetworkKey       MessageID = 0x46
	SetSearchWaveform   MessageID = 0x49
	EnableExtRXMessages MessageID = 0x66
)

// Control messages (host -> module).
const (
	ResetSystem    MessageID = 0x4A
	OpenChannel    MessageID = 0x4B
	CloseChannel   MessageID = 0x4C
	RequestMessage MessageID = 0x4D
	OpenRXScanMode MessageID = 0x5B
)

// Data messages (bidirectional).
const (
	BroadcastData     MessageID = 0x4E
	AcknowledgedData  MessageID = 0x4F
	BurstTransferData MessageID = 0x50
)

// Notifications (module -> host), unsolicited.
const (
	StartupMessage     MessageID = 0x6F
	SerialErrorMessage MessageID = 0xAE
)

// Responses. RESPONSE_CHANNEL carries both channel events (sub-id 0x01,
// classification rule 5) and plain command acknowledgements (any other
// sub-id, classification rule 4). The REQUEST_MESSAGE responses
// (ChannelStatus/ChannelID/ANTVersion/Capabilities/SerialNumber) are
// identified by the same ID the module was asked to report.
const (
	ResponseChannel       MessageID = 0x40
	ResponseChannelStatus MessageID = 0x52
	ResponseChannelID     MessageID = 0x51
	ResponseANTVersion    MessageID = 0x3E
	ResponseCapabilities  MessageID = 0x54
	ResponseSerialNumber  MessageID = 0x61
)

// EventCode is the event or response code carried in the third payload
// byte of a RESPONSE_CHANNEL message (after the channel and sub-id bytes).
type EventCode uint8

// Channel event codes, reported via RESPONSE_CHANNEL sub-id 0x01.
const (
	EventRXSearchTimeout    EventCode = 1
	EventRXFail             EventCode = 2
	EventTX                 EventCode = 3
	EventTransferRXFailed   EventCode = 4
	EventTransferTXComplete EventCode = 5
	EventTransferTXFailed   EventCode = 6
	EventChannelClosed      EventCode = 7
	EventRXFailGoToSearch   EventCode = 8
	EventChannelCollision   EventCode = 9
	EventTransferTXStart    EventCode = 10
)

// ResponseNoError is the RESPONSE_CHANNEL code meaning a configuration
// command succeeded with no channel event attached.
const ResponseNoError EventCode = 0

// String returns a human-readable message ID name.
func (id MessageID) String() string {
	switch id {
	case UnassignChannel:
		return "UNASSIGN_CHANNEL"
	case AssignChannel:
		return "ASSIGN_CHANNEL"
	case SetChannelID: // ResponseChannelID shares the value 0x51
		return "SET/RESPONSE_CHANNEL_ID"
	case SetChannelPeriod:
		return "SET_CHANNEL_PERIOD"
	case SetSearchTimeout:
		return "SET_SEARCH_TIMEOUT"
	case SetChannelRFFreq:
		return "SET_CHANNEL_RF_FREQ"
	case SetNetworkKey:
		return "SET_NETWORK_KEY"
	case SetSearchWaveform:
		return "SET_SEARCH_WAVEFORM"
	case EnableExtRXMessages:
		return "ENABLE_EXT_RX_MESSAGES"
	case ResetSystem:
		return "RESET_SYSTEM"
	case OpenChannel:
		return "OPEN_CHANNEL"
	case CloseChannel:
		return "CLOSE_CHANNEL"
	case RequestMessage:
		return "REQUEST_MESSAGE"
	case OpenRXScanMode:
		return "OPEN_RX_SCAN_MODE"
	case BroadcastData:
		return "BROADCAST_DATA"
	case AcknowledgedData:
		return "ACKNOWLEDGED_DATA"
	case BurstTransferData:
		return "BURST_TRANSFER_DATA"
	case StartupMessage:
		return "STARTUP_MESSAGE"
	case SerialErrorMessage:
		return "SERIAL_ERROR_MESSAGE"
	case ResponseChannel:
		return "RESPONSE_CHANNEL"
	case ResponseChannelStatus:
		return "RESPONSE_CHANNEL_STATUS"
	case ResponseANTVersion:
		return "RESPONSE_ANT_VERSION"
	case ResponseCapabilities:
		return "RESPONSE_CAPABILITIES"
	case ResponseSerialNumber:
		return "RESPONSE_SERIAL_NUMBER"
	default:
		return "UNKNOWN"
	}
}

// String returns a human-readable channel event code name.
func (c EventCode) String() string {
	switch c {
	case ResponseNoError:
		return "NO_ERROR"
	case EventRXSearchTimeout:
		return "EVENT_RX_SEARCH_TIMEOUT"
	case EventRXFail:
		return "EVENT_RX_FAIL"
	case EventTX:
		return "EVENT_TX"
	case EventTransferRXFailed:
		return "EVENT_TRANSFER_RX_FAILED"
	case EventTransferTXComplete:
		return "EVENT_TRANSFER_TX_COMPLETED"
	case EventTransferTXFailed:
		return "EVENT_TRANSFER_TX_FAILED"
	case EventChannelClosed:
		return "EVENT_CHANNEL_CLOSED"
	case EventRXFailGoToSearch:
		return "EVENT_RX_FAIL_GO_TO_SEARCH"
	case EventChannelCollision:
		return "EVENT_CHANNEL_COLLISION"
	case EventTransferTXStart:
		return "EVENT_TRANSFER_TX_START"
	default:
		return "UNKNOWN"
	}
}

// IsFailure reports whether a channel event code indicates that a pending
// transfer or search operation failed, the way [transport.Transport.AwaitEvent]
// surfaces as an error rather than a normal completion.
func (c EventCode) IsFailure() bool {
	switch c {
	case EventRXFail, EventTransferRXFailed, EventTransferTXFailed,
		EventRXSearchTimeout, EventChannelCollision:
		return true
	default:
		return false
	}
}
