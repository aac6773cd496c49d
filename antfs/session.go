package antfs

import (
	"context"
	"errors"
	"time"

	"github.com/go-ant/antcore/pkg"
)

// Link is the collaborator interface a session drives: a channel already
// opened and tracking an ANT-FS client, delivering beacons and command-pipe
// responses and accepting command-pipe sends. node.ChannelLink adapts a
// node.Channel to this shape (SendAcknowledged/SendBurst for commands, its
// broadcast and burst/acknowledge callbacks feeding Beacons/Responses).
type Link interface {
	Beacons() <-chan []byte
	Responses() <-chan []byte
	SendCommand(ctx context.Context, payload []byte) error
}

// SessionState is a session's position in the Link/Authentication/
// Transport/Disconnect state machine.
type SessionState int

// Session states, per §4.8's state diagram.
const (
	SessionInit SessionState = iota
	SessionLink
	SessionAuthenticating
	SessionTransport
	SessionDisconnect
)

// maxResyncBeacons bounds how many consecutive unexpected-state beacons a
// session reads before giving up and failing with ErrBeaconResync.
const maxResyncBeacons = 5

// Session drives one ANT-FS client through pairing/authentication and the
// download/upload/erase/create-file/set-time operations.
type Session struct {
	link       Link
	hostSerial uint32

	state SessionState
	seq   uint8
}

// NewSession creates a session bound to link, reporting hostSerial in its
// Link and Authenticate commands.
func NewSession(link Link, hostSerial uint32) *Session {
	return &Session{link: link, hostSerial: hostSerial, state: SessionInit}
}

// State returns the session's current state.
func (s *Session) State() SessionState { return s.state }

func (s *Session) nextSeq() uint8 {
	s.seq++
	return s.seq
}

// awaitBeaconState reads beacons until one reports want, resynchronizing
// (per the spec's "re-read up to five beacons" policy) on any other state.
func (s *Session) awaitBeaconState(ctx context.Context, want ClientDeviceState) (Beacon, error) {
	for i := 0; i < maxResyncBeacons; i++ {
		select {
		case raw, ok := <-s.link.Beacons():
			if !ok {
				return Beacon{}, pkg.ErrProtocolViolation
			}
			b, err := DecodeBeacon(raw)
			if err != nil {
				continue
			}
			if b.DeviceState == want {
				return b, nil
			}
		case <-ctx.Done():
			return Beacon{}, ctx.Err()
		}
	}
	return Beacon{}, pkg.ErrBeaconResync
}

func (s *Session) awaitResponse(ctx context.Context) ([]byte, error) {
	select {
	case raw, ok := <-s.link.Responses():
		if !ok {
			return nil, pkg.ErrProtocolViolation
		}
		return raw, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Connect drives the Link and Authentication layers: it waits for a Link
// beacon, sends LinkCommand, waits for an Authentication beacon, sends
// AuthenticateCommand, and transitions to Transport on acceptance.
func (s *Session) Connect(ctx context.Context, freq, period uint8, authType AuthRequestType, authString []byte) error {
	if _, err := s.awaitBeaconState(ctx, StateLink); err != nil {
		return err
	}
	s.state = SessionLink

	link := LinkCommand{Frequency: freq, ChannelPeriod: period, HostSerial: s.hostSerial}
	if err := s.link.SendCommand(ctx, link.Encode(s.nextSeq())); err != nil {
		return err
	}

	if _, err := s.awaitBeaconState(ctx, StateAuthentication); err != nil {
		return err
	}
	s.state = SessionAuthenticating

	auth := AuthenticateCommand{RequestType: authType, HostSerial: s.hostSerial, AuthString: authString}
	if err := s.link.SendCommand(ctx, auth.Encode(s.nextSeq())); err != nil {
		return err
	}
	raw, err := s.awaitResponse(ctx)
	if err != nil {
		return err
	}
	resp, err := DecodeAuthenticateResponse(raw)
	if err != nil {
		return err
	}
	if !resp.Accepted {
		s.state = SessionDisconnect
		return pkg.ErrAuthenticationFailed
	}
	s.state = SessionTransport
	return nil
}

// Disconnect sends a Disconnect command and returns the session to Link.
func (s *Session) Disconnect(ctx context.Context, returnToBroadcast bool) error {
	cmd := DisconnectCommand{ReturnToBroadcast: returnToBroadcast}
	if err := s.link.SendCommand(ctx, cmd.Encode(s.nextSeq())); err != nil {
		return err
	}
	s.state = SessionLink
	return nil
}

// Download retrieves the full contents of the file at index, following the
// offset/seed continuation protocol until the reported size is reached,
// bounded by ctx's deadline.
func (s *Session) Download(ctx context.Context, index uint16) ([]byte, error) {
	var acc []byte
	var offset uint32
	var seed uint16
	initial := true

	for {
		req := DownloadRequestCommand{DataIndex: index, Offset: offset, InitialRequest: initial, CRCSeed: seed}
		if err := s.link.SendCommand(ctx, req.Encode(s.nextSeq())); err != nil {
			if errors.Is(err, pkg.ErrTransferFailed) {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				default:
					continue
				}
			}
			return nil, err
		}

		raw, err := s.awaitResponse(ctx)
		if err != nil {
			return nil, err
		}
		resp, err := DecodeDownloadResponse(raw)
		if err != nil {
			return nil, err
		}
		if resp.Code != pkg.ResponseOK {
			return nil, &pkg.ANTFSError{Op: pkg.OpDownload, Code: resp.Code}
		}

		acc = append(acc, resp.Data...)
		offset = resp.Offset + uint32(len(resp.Data))
		seed = resp.CRC
		if offset >= resp.Size {
			return acc, nil
		}
		initial = false
	}
}

// Upload sends the full contents of data to the file at index, in blocks
// no larger than maxBlock, padding the final block to a multiple of 8
// bytes.
func (s *Session) Upload(ctx context.Context, index uint16, data []byte, maxBlock uint32) error {
	req := UploadRequestCommand{DataIndex: index, MaxSize: uint32(len(data)), Offset: 0}
	if err := s.link.SendCommand(ctx, req.Encode(s.nextSeq())); err != nil {
		return err
	}
	raw, err := s.awaitResponse(ctx)
	if err != nil {
		return err
	}
	resp, err := DecodeUploadResponse(raw)
	if err != nil {
		return err
	}
	if resp.Code != pkg.ResponseOK {
		return &pkg.ANTFSError{Op: pkg.OpUpload, Code: resp.Code}
	}

	offset := resp.LastOffset
	seed := resp.CRC
	for offset < uint32(len(data)) {
		end := offset + maxBlock
		if end > uint32(len(data)) {
			end = uint32(len(data))
		}
		slice := data[offset:end]
		padded := padTo8(slice)
		crc := crc16(padded, seed)
		cmd := UploadDataCommand{CRCSeed: seed, Offset: offset, Data: slice, CRC: crc}
		if err := s.link.SendCommand(ctx, cmd.Encode(s.nextSeq())); err != nil {
			return err
		}
		raw, err := s.awaitResponse(ctx)
		if err != nil {
			return err
		}
		dataResp, err := DecodeUploadDataResponse(raw)
		if err != nil {
			return err
		}
		if dataResp.Code != pkg.ResponseOK {
			return &pkg.ANTFSError{Op: pkg.OpUpload, Code: dataResp.Code}
		}
		offset += uint32(len(padded))
		seed = crc
	}
	return nil
}

// CreateFile uploads body's descriptor via the Command Pipe's reserved
// index, reads back the index the client allocated for it, and uploads the
// file body there.
func (s *Session) CreateFile(ctx context.Context, descriptor, body []byte, maxBlock uint32) (uint16, error) {
	if err := s.Upload(ctx, CommandPipeIndex, descriptor, maxBlock); err != nil {
		return 0, &pkg.ANTFSError{Op: pkg.OpCreateFile, Code: pkg.ResponseFailedToWrite}
	}
	raw, err := s.Download(ctx, CommandPipeIndex)
	if err != nil {
		return 0, err
	}
	if len(raw) < 2 {
		return 0, &pkg.ANTFSError{Op: pkg.OpCreateFile, Code: pkg.ResponseInvalidOperation}
	}
	newIndex := uint16(raw[0]) | uint16(raw[1])<<8
	if err := s.Upload(ctx, newIndex, body, maxBlock); err != nil {
		return 0, err
	}
	return newIndex, nil
}

// SetTime encodes when as seconds since the ANT-FS epoch and sends it via
// the Command Pipe.
func (s *Session) SetTime(ctx context.Context, when time.Time) error {
	cmd := TimeCommand{When: when}
	if err := s.link.SendCommand(ctx, cmd.Encode(s.nextSeq())); err != nil {
		return err
	}
	raw, err := s.awaitResponse(ctx)
	if err != nil {
		return err
	}
	resp, err := DecodeTimeResponse(raw)
	if err != nil {
		return err
	}
	if resp.Code != pkg.ResponseOK {
		return &pkg.ANTFSError{Op: pkg.OpSetTime, Code: resp.Code}
	}
	return nil
}

// Erase requests the file at index be erased.
func (s *Session) Erase(ctx context.Context, index uint16) error {
	cmd := EraseRequestCommand{DataIndex: index}
	if err := s.link.SendCommand(ctx, cmd.Encode(s.nextSeq())); err != nil {
		return err
	}
	raw, err := s.awaitResponse(ctx)
	if err != nil {
		return err
	}
	code, err := DecodeEraseResponse(raw)
	if err != nil {
		return err
	}
	if code != EraseSuccessful {
		return &pkg.ANTFSError{Op: pkg.OpErase, Code: code}
	}
	return nil
}
