package frame

import (
	"bytes"
	"errors"
	"testing"

	"github.com/go-ant/antcore/pkg"
)

func TestDecode_ScenarioFrameParse(t *testing.T) {
	buf := []byte{0xA4, 0x03, 0x40, 0x00, 0x46, 0x00, 0xA1}

	f, n, ok, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !ok {
		t.Fatal("Decode() ok = false, want true")
	}
	if n != len(buf) {
		t.Errorf("Decode() consumed %d bytes, want %d", n, len(buf))
	}
	if f.ID != ResponseChannel {
		t.Errorf("Decode() id = %#x, want %#x", f.ID, ResponseChannel)
	}
	want := []byte{0x00, 0x46, 0x00}
	if !bytes.Equal(f.Payload, want) {
		t.Errorf("Decode() payload = %v, want %v", f.Payload, want)
	}

	bad := append([]byte(nil), buf...)
	bad[len(bad)-1] = 0xA0
	if _, _, _, err := Decode(bad); !errors.Is(err, pkg.ErrBadChecksum) {
		t.Errorf("Decode() with flipped checksum byte: err = %v, want %v", err, pkg.ErrBadChecksum)
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		id      MessageID
		payload []byte
	}{
		{"empty payload", ResetSystem, nil},
		{"single byte", CloseChannel, []byte{0x00}},
		{"channel config", AssignChannel, []byte{0x00, 0x00, 0x00}},
		{"max payload", BurstTransferData, bytes.Repeat([]byte{0x5A}, MaxPayload)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := Encode(tt.id, tt.payload)
			f, n, ok, err := Decode(encoded)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !ok {
				t.Fatal("Decode() ok = false, want true")
			}
			if n != len(encoded) {
				t.Errorf("Decode() consumed %d, want %d", n, len(encoded))
			}
			if f.ID != tt.id {
				t.Errorf("Decode() id = %v, want %v", f.ID, tt.id)
			}
			if !bytes.Equal(f.Payload, tt.payload) && !(len(f.Payload) == 0 && len(tt.payload) == 0) {
				t.Errorf("Decode() payload = %v, want %v", f.Payload, tt.payload)
			}
		})
	}
}

func TestEncodeDecode_BitFlipBreaksChecksum(t *testing.T) {
	encoded := Encode(AcknowledgedData, []byte{0x01, 0x02, 0x03, 0x04})

	for i := range encoded {
		// Flipping the sync byte itself changes the failure mode to
		// BadSync rather than BadChecksum; everything else in the frame
		// is inside the checksum domain.
		if i == 0 {
			continue
		}
		corrupt := append([]byte(nil), encoded...)
		corrupt[i] ^= 0x01
		if _, _, _, err := Decode(corrupt); !errors.Is(err, pkg.ErrBadChecksum) {
			t.Errorf("byte %d flipped: err = %v, want %v", i, err, pkg.ErrBadChecksum)
		}
	}
}

func TestDecode_NeedMoreData(t *testing.T) {
	full := Encode(BroadcastData, []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08})

	for n := 0; n < len(full); n++ {
		_, consumed, ok, err := Decode(full[:n])
		if err != nil {
			t.Fatalf("Decode() with %d/%d bytes: unexpected error %v", n, len(full), err)
		}
		if ok {
			t.Fatalf("Decode() with %d/%d bytes: ok = true, want false", n, len(full))
		}
		if consumed != 0 {
			t.Fatalf("Decode() with %d/%d bytes: consumed = %d, want 0", n, len(full), consumed)
		}
	}
}

func TestDecode_BadSync(t *testing.T) {
	_, _, _, err := Decode([]byte{0x00, 0x00, 0x00, 0x00})
	if !errors.Is(err, pkg.ErrBadSync) {
		t.Errorf("Decode() err = %v, want %v", err, pkg.ErrBadSync)
	}
}

func TestMessageID_String(t *testing.T) {
	if got := ResponseChannel.String(); got != "RESPONSE_CHANNEL" {
		t.Errorf("ResponseChannel.String() = %v", got)
	}
	if got := MessageID(0xFF).String(); got != "UNKNOWN" {
		t.Errorf("unknown id String() = %v, want UNKNOWN", got)
	}
}

func TestEventCode_IsFailure(t *testing.T) {
	tests := []struct {
		code EventCode
		want bool
	}{
		{EventTransferTXComplete, false},
		{EventTransferTXFailed, true},
		{EventTransferTXStart, false},
		{EventRXSearchTimeout, true},
		{EventChannelClosed, false},
	}
	for _, tt := range tests {
		if got := tt.code.IsFailure(); got != tt.want {
			t.Errorf("%v.IsFailure() = %v, want %v", tt.code, got, tt.want)
		}
	}
}
