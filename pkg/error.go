package pkg

import (
	"errors"
	"fmt"
)

// ANT protocol errors.
var (
	// ErrDriverNotFound indicates no compatible ANT radio could be located.
	ErrDriverNotFound = errors.New("ant: no compatible driver found")

	// ErrDriverTimeout indicates a write-side stall on the underlying driver.
	ErrDriverTimeout = errors.New("ant: driver write timeout")

	// ErrNoDevice indicates the radio is not present or was disconnected.
	ErrNoDevice = errors.New("ant: device not present")

	// ErrBadSync indicates a frame did not begin with the expected sync byte.
	ErrBadSync = errors.New("ant: bad frame sync byte")

	// ErrBadChecksum indicates a frame's trailing XOR checksum did not match.
	ErrBadChecksum = errors.New("ant: bad frame checksum")

	// ErrResponseTimeout indicates a configuration response did not arrive
	// within its wait window.
	ErrResponseTimeout = errors.New("ant: response timeout")

	// ErrEventTimeout indicates an expected channel event did not arrive
	// within its wait window.
	ErrEventTimeout = errors.New("ant: event timeout")

	// ErrTransferFailed indicates the module reported EVENT_TRANSFER_TX_FAILED
	// (or an equivalent RX failure) for an acknowledged or burst send. The
	// channel send methods retry once and return it wrapped if the retry
	// fails too.
	ErrTransferFailed = errors.New("ant: transfer failed")

	// ErrSearchTimeout indicates a channel's master was not found within its
	// configured search window. Non-fatal; returning it does not change the
	// channel's recorded state.
	ErrSearchTimeout = errors.New("ant: search timeout")

	// ErrProtocolViolation indicates an invariant breach in the wire
	// protocol, such as an unexpected message ID or a malformed burst
	// sequence. Returning it does not close the affected channel.
	ErrProtocolViolation = errors.New("ant: protocol violation")

	// ErrInvalidState indicates a channel or session method was called while
	// the state machine was not in a state that permits it.
	ErrInvalidState = errors.New("ant: invalid state")

	// ErrInvalidParameter indicates a configuration value fell outside its
	// documented domain (e.g. an RF frequency offset above 124).
	ErrInvalidParameter = errors.New("ant: invalid parameter")

	// ErrAlreadyRunning indicates the node is already started.
	ErrAlreadyRunning = errors.New("ant: already running")

	// ErrNotRunning indicates the node has not been started, or has already
	// been stopped.
	ErrNotRunning = errors.New("ant: not running")

	// ErrNoChannels indicates the node's channel table has no free slot.
	ErrNoChannels = errors.New("ant: no free channel")

	// ErrCancelled indicates an operation was cancelled via context.
	ErrCancelled = errors.New("ant: cancelled")

	// ErrBeaconResync indicates an ANT-FS beacon sequence failed to settle
	// on the expected client device state within the resynchronization
	// window.
	ErrBeaconResync = errors.New("ant: beacon resynchronization failed")

	// ErrAuthenticationFailed indicates the ANT-FS peer rejected pairing or
	// authentication outright (no response code to carry).
	ErrAuthenticationFailed = errors.New("antfs: authentication failed")
)

// ANTFSOp names the ANT-FS operation that produced an [ANTFSError].
type ANTFSOp string

// ANT-FS operations that can fail with a peer response code.
const (
	OpDownload   ANTFSOp = "download"
	OpUpload     ANTFSOp = "upload"
	OpErase      ANTFSOp = "erase"
	OpCreateFile ANTFSOp = "create_file"
	OpSetTime    ANTFSOp = "set_time"
)

// ANTFSError reports an ANT-FS operation failure together with the response
// code the peer returned for it.
type ANTFSError struct {
	Op   ANTFSOp
	Code ResponseCode
}

// Error implements the error interface.
func (e *ANTFSError) Error() string {
	return fmt.Sprintf("antfs: %s failed: %s", e.Op, e.Code)
}

// ResponseCode is the ANT-FS peer response enumerated in §4.7 of the command
// pipe and download/upload/erase protocol.
type ResponseCode uint8

// ANT-FS response codes.
const (
	ResponseOK ResponseCode = iota
	ResponseNotReadable
	ResponseNotWritable
	ResponseNotEnoughSpace
	ResponseInvalidOperation
	ResponseFailedToWrite
	ResponseNotReady
	ResponseInvalidIndex
	ResponseCRCFailed
	ResponseNoMoreData
)

// String returns a human-readable response code description.
func (c ResponseCode) String() string {
	switch c {
	case ResponseOK:
		return "ok"
	case ResponseNotReadable:
		return "not readable"
	case ResponseNotWritable:
		return "not writable"
	case ResponseNotEnoughSpace:
		return "not enough space"
	case ResponseInvalidOperation:
		return "invalid operation"
	case ResponseFailedToWrite:
		return "failed to write"
	case ResponseNotReady:
		return "not ready"
	case ResponseInvalidIndex:
		return "invalid index"
	case ResponseCRCFailed:
		return "crc failed"
	case ResponseNoMoreData:
		return "no more data"
	default:
		return fmt.Sprintf("unknown response code (%d)", uint8(c))
	}
}
