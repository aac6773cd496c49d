package antfs

import (
	"context"
	"testing"
	"time"

	"github.com/go-ant/antcore/pkg"
)

// fakeLink is a minimal in-memory Link used to drive a Session without a
// real ANT channel: SendCommand scripts a reply that the test pushes onto
// the appropriate channel.
type fakeLink struct {
	beacons   chan []byte
	responses chan []byte
	onSend    func(payload []byte)
}

func newFakeLink() *fakeLink {
	return &fakeLink{
		beacons:   make(chan []byte, 8),
		responses: make(chan []byte, 8),
	}
}

func (f *fakeLink) Beacons() <-chan []byte   { return f.beacons }
func (f *fakeLink) Responses() <-chan []byte { return f.responses }
func (f *fakeLink) SendCommand(ctx context.Context, payload []byte) error {
	if f.onSend != nil {
		f.onSend(payload)
	}
	return nil
}

func encodeBeacon(state ClientDeviceState) []byte {
	return []byte{beaconTag, 0, byte(state), 0, 0, 0, 0, 0}
}

func TestSession_Connect_AcceptedTransitionsToTransport(t *testing.T) {
	link := newFakeLink()
	link.onSend = func(payload []byte) {
		h, _, err := decodeHeader(payload)
		if err != nil {
			return
		}
		switch h.Command {
		case CmdLink:
			link.beacons <- encodeBeacon(StateAuthentication)
		case CmdAuthenticate:
			resp := append(encodeHeader(header{Command: CmdAuthenticate, Sequence: 0}), 1, 0, 0, 0, 0, 0, 0, 0, 0, 0)
			link.responses <- resp
		}
	}
	link.beacons <- encodeBeacon(StateLink)

	s := NewSession(link, 12345)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := s.Connect(ctx, 57, 5, AuthSerial, nil); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if s.State() != SessionTransport {
		t.Errorf("State() = %v, want SessionTransport", s.State())
	}
}

func TestSession_Connect_RejectedReturnsAuthError(t *testing.T) {
	link := newFakeLink()
	link.onSend = func(payload []byte) {
		h, _, err := decodeHeader(payload)
		if err != nil {
			return
		}
		switch h.Command {
		case CmdLink:
			link.beacons <- encodeBeacon(StateAuthentication)
		case CmdAuthenticate:
			resp := append(encodeHeader(header{Command: CmdAuthenticate, Sequence: 0}), 0, 0, 0, 0, 0, 0, 0, 0, 0, 0)
			link.responses <- resp
		}
	}
	link.beacons <- encodeBeacon(StateLink)

	s := NewSession(link, 12345)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := s.Connect(ctx, 57, 5, AuthSerial, nil)
	if err == nil {
		t.Fatal("Connect() error = nil, want authentication failure")
	}
	if s.State() != SessionDisconnect {
		t.Errorf("State() = %v, want SessionDisconnect", s.State())
	}
}

func TestSession_Download_AccumulatesAcrossBlocks(t *testing.T) {
	link := newFakeLink()
	full := []byte("0123456789ABCDEF")
	link.onSend = func(payload []byte) {
		h, rest, err := decodeHeader(payload)
		if err != nil || h.Command != CmdDownloadRequest {
			return
		}
		offset := decodeLE32(rest[2:6])
		end := offset + 8
		if end > uint32(len(full)) {
			end = uint32(len(full))
		}
		resp := DownloadResponse{
			Code:      pkg.ResponseOK,
			Size:      uint32(len(full)),
			Remaining: uint32(len(full)) - end,
			Offset:    offset,
			Data:      full[offset:end],
		}
		buf := encodeHeader(header{Command: CmdDownloadRequest, Sequence: h.Sequence})
		buf = append(buf, byte(resp.Code), 0, 0, 0)
		buf = append(buf, le32(resp.Size)...)
		buf = append(buf, le32(resp.Remaining)...)
		buf = append(buf, le32(resp.Offset)...)
		buf = append(buf, resp.Data...)
		link.responses <- buf
	}

	s := NewSession(link, 1)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	got, err := s.Download(ctx, 5)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if string(got) != string(full) {
		t.Errorf("Download() = %q, want %q", got, full)
	}
}

func TestSession_Download_FailureResponseReturnsANTFSError(t *testing.T) {
	link := newFakeLink()
	link.onSend = func(payload []byte) {
		h, _, err := decodeHeader(payload)
		if err != nil {
			return
		}
		buf := encodeHeader(header{Command: CmdDownloadRequest, Sequence: h.Sequence})
		buf = append(buf, byte(pkg.ResponseNotReadable), 0, 0, 0)
		buf = append(buf, make([]byte, 12)...)
		link.responses <- buf
	}

	s := NewSession(link, 1)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := s.Download(ctx, 5)
	var fsErr *pkg.ANTFSError
	if err == nil {
		t.Fatal("Download() error = nil, want ANTFSError")
	}
	if !asANTFSError(err, &fsErr) || fsErr.Code != pkg.ResponseNotReadable {
		t.Errorf("Download() error = %v, want ANTFSError{Code: NotReadable}", err)
	}
}

func asANTFSError(err error, target **pkg.ANTFSError) bool {
	if e, ok := err.(*pkg.ANTFSError); ok {
		*target = e
		return true
	}
	return false
}
