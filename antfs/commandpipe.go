package antfs

import "github.com/go-ant/antcore/pkg"

// commandPipeTag is the first byte of any ANT-FS CommandPipe message,
// distinguishing it from plain file data on the same pipe.
const commandPipeTag byte = 0x44

// Command subtypes, the CommandPipe packet's own second byte (index 1,
// right after commandPipeTag).
const (
	CmdLink               uint8 = 0x02
	CmdDisconnect         uint8 = 0x03
	CmdAuthenticate       uint8 = 0x04
	CmdDownloadRequest    uint8 = 0x09
	CmdUploadRequest      uint8 = 0x0A
	CmdEraseRequest       uint8 = 0x0B
	CmdUploadDataCommand  uint8 = 0x0C
)

// AuthRequestType selects the kind of authentication requested.
type AuthRequestType uint8

// Authentication request types.
const (
	AuthSerial AuthRequestType = iota
	AuthPairing
	AuthPasskey
	AuthPassthrough
)

// header is the CommandPipe packet's fixed 4-byte prefix: commandPipeTag,
// command, one reserved byte, and a sequence number that rolls over
// modulo 256.
type header struct {
	Command  uint8
	Sequence uint8
}

func encodeHeader(h header) []byte {
	return []byte{commandPipeTag, h.Command, 0, h.Sequence}
}

func decodeHeader(buf []byte) (header, []byte, error) {
	if len(buf) < 4 || buf[0] != commandPipeTag {
		return header{}, nil, pkg.ErrProtocolViolation
	}
	return header{Command: buf[1], Sequence: buf[3]}, buf[4:], nil
}

// LinkCommand requests the client switch to the ANT-FS Link layer's
// proposed channel frequency and period.
type LinkCommand struct {
	Frequency     uint8
	ChannelPeriod uint8
	HostSerial    uint32
}

// Encode builds the wire bytes for a Link command.
func (c LinkCommand) Encode(seq uint8) []byte {
	buf := encodeHeader(header{Command: CmdLink, Sequence: seq})
	buf = append(buf, c.Frequency, c.ChannelPeriod)
	buf = append(buf, le32(c.HostSerial)...)
	return buf
}

// AuthenticateCommand requests pairing/authentication of a given type.
type AuthenticateCommand struct {
	RequestType AuthRequestType
	HostSerial  uint32
	AuthString  []byte
}

// Encode builds the wire bytes for an Authenticate command.
func (c AuthenticateCommand) Encode(seq uint8) []byte {
	buf := encodeHeader(header{Command: CmdAuthenticate, Sequence: seq})
	buf = append(buf, byte(c.RequestType), byte(len(c.AuthString)))
	buf = append(buf, le32(c.HostSerial)...)
	buf = append(buf, c.AuthString...)
	return buf
}

// AuthenticateResponse carries the peer's accept/reject decision.
type AuthenticateResponse struct {
	Accepted bool
	Passkey  []byte
}

// DecodeAuthenticateResponse parses an AuthenticateResponse payload. Byte
// layout mirrors AuthenticateCommand: response code then an optional
// trailing blob (the passkey, on a PAIRING accept).
func DecodeAuthenticateResponse(buf []byte) (AuthenticateResponse, error) {
	_, rest, err := decodeHeader(buf)
	if err != nil {
		return AuthenticateResponse{}, err
	}
	if len(rest) < 2 {
		return AuthenticateResponse{}, pkg.ErrProtocolViolation
	}
	accepted := rest[0] == 1
	n := int(rest[1])
	var key []byte
	if n > 0 && len(rest) >= 6+n {
		key = append([]byte(nil), rest[6:6+n]...)
	}
	return AuthenticateResponse{Accepted: accepted, Passkey: key}, nil
}

// DownloadRequestCommand requests a block of file data.
type DownloadRequestCommand struct {
	DataIndex      uint16
	Offset         uint32
	InitialRequest bool
	CRCSeed        uint16
}

// Encode builds the wire bytes for a DownloadRequest command.
func (c DownloadRequestCommand) Encode(seq uint8) []byte {
	buf := encodeHeader(header{Command: CmdDownloadRequest, Sequence: seq})
	buf = append(buf, le16(c.DataIndex)...)
	buf = append(buf, le32(c.Offset)...)
	var flag uint8
	if c.InitialRequest {
		flag = 1
	}
	buf = append(buf, flag, 0, 0, 0)
	buf = append(buf, le16(c.CRCSeed)...)
	return buf
}

// DownloadResponse carries one block of downloaded file data.
type DownloadResponse struct {
	Code      pkg.ResponseCode
	Size      uint32
	Remaining uint32
	Offset    uint32
	CRC       uint16
	Data      []byte
}

// DecodeDownloadResponse parses a DownloadResponse payload.
func DecodeDownloadResponse(buf []byte) (DownloadResponse, error) {
	_, rest, err := decodeHeader(buf)
	if err != nil {
		return DownloadResponse{}, err
	}
	if len(rest) < 16 {
		return DownloadResponse{}, pkg.ErrProtocolViolation
	}
	return DownloadResponse{
		Code:      pkg.ResponseCode(rest[0]),
		Size:      decodeLE32(rest[4:8]),
		Remaining: decodeLE32(rest[8:12]),
		Offset:    decodeLE32(rest[12:16]),
		Data:      append([]byte(nil), rest[16:]...),
	}, nil
}

// UploadRequestCommand requests permission to upload to a file index.
type UploadRequestCommand struct {
	DataIndex uint16
	MaxSize   uint32
	Offset    uint32
}

// Encode builds the wire bytes for an UploadRequest command.
func (c UploadRequestCommand) Encode(seq uint8) []byte {
	buf := encodeHeader(header{Command: CmdUploadRequest, Sequence: seq})
	buf = append(buf, le16(c.DataIndex)...)
	buf = append(buf, 0, 0)
	buf = append(buf, le32(c.MaxSize)...)
	buf = append(buf, le32(c.Offset)...)
	return buf
}

// UploadResponse grants (or denies) an upload request.
type UploadResponse struct {
	Code       pkg.ResponseCode
	LastOffset uint32
	MaxSize    uint32
	CRC        uint16
}

// DecodeUploadResponse parses an UploadResponse payload.
func DecodeUploadResponse(buf []byte) (UploadResponse, error) {
	_, rest, err := decodeHeader(buf)
	if err != nil {
		return UploadResponse{}, err
	}
	if len(rest) < 12 {
		return UploadResponse{}, pkg.ErrProtocolViolation
	}
	return UploadResponse{
		Code:       pkg.ResponseCode(rest[0]),
		LastOffset: decodeLE32(rest[4:8]),
		MaxSize:    decodeLE32(rest[8:12]),
	}, nil
}

// UploadDataCommand carries one block of uploaded file data.
type UploadDataCommand struct {
	CRCSeed uint16
	Offset  uint32
	Data    []byte
	CRC     uint16
}

// Encode builds the wire bytes for an UploadDataCommand, padding Data to a
// multiple of 8 bytes with zeros as the protocol requires.
func (c UploadDataCommand) Encode(seq uint8) []byte {
	buf := encodeHeader(header{Command: CmdUploadDataCommand, Sequence: seq})
	buf = append(buf, 0, 0)
	buf = append(buf, le32(c.Offset)...)
	padded := padTo8(c.Data)
	crc := crc16(padded, c.CRCSeed)
	buf = append(buf, padded...)
	buf = append(buf, le16(crc)...)
	return buf
}

func padTo8(data []byte) []byte {
	rem := len(data) % 8
	if rem == 0 {
		return data
	}
	return append(append([]byte(nil), data...), make([]byte, 8-rem)...)
}

// UploadDataResponse acknowledges one uploaded block.
type UploadDataResponse struct {
	Code pkg.ResponseCode
}

// DecodeUploadDataResponse parses an UploadDataResponse payload.
func DecodeUploadDataResponse(buf []byte) (UploadDataResponse, error) {
	_, rest, err := decodeHeader(buf)
	if err != nil {
		return UploadDataResponse{}, err
	}
	if len(rest) < 1 {
		return UploadDataResponse{}, pkg.ErrProtocolViolation
	}
	return UploadDataResponse{Code: pkg.ResponseCode(rest[0])}, nil
}

// EraseRequestCommand requests a file be erased.
type EraseRequestCommand struct {
	DataIndex uint16
}

// Encode builds the wire bytes for an EraseRequest command.
func (c EraseRequestCommand) Encode(seq uint8) []byte {
	buf := encodeHeader(header{Command: CmdEraseRequest, Sequence: seq})
	return append(buf, le16(c.DataIndex)...)
}

// EraseResponseCode values.
const EraseSuccessful pkg.ResponseCode = pkg.ResponseOK

// DecodeEraseResponse parses an EraseResponse payload.
func DecodeEraseResponse(buf []byte) (pkg.ResponseCode, error) {
	_, rest, err := decodeHeader(buf)
	if err != nil {
		return 0, err
	}
	if len(rest) < 1 {
		return 0, pkg.ErrProtocolViolation
	}
	return pkg.ResponseCode(rest[0]), nil
}

// DisconnectCommand terminates the session.
type DisconnectCommand struct {
	ReturnToBroadcast         bool
	TimeDuration              uint8
	ApplicationSpecificDuration uint8
}

// Encode builds the wire bytes for a Disconnect command.
func (c DisconnectCommand) Encode(seq uint8) []byte {
	buf := encodeHeader(header{Command: CmdDisconnect, Sequence: seq})
	var t uint8
	if c.ReturnToBroadcast {
		t = 1
	}
	return append(buf, t, c.TimeDuration, c.ApplicationSpecificDuration)
}

func le16(v uint16) []byte { return []byte{byte(v), byte(v >> 8)} }
func le32(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}
func decodeLE32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
