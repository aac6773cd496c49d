package pkg

import (
	"errors"
	"testing"
)

func TestResponseCode_String(t *testing.T) {
	tests := []struct {
		code ResponseCode
		want string
	}{
		{ResponseOK, "ok"},
		{ResponseNotReadable, "not readable"},
		{ResponseNotWritable, "not writable"},
		{ResponseNotEnoughSpace, "not enough space"},
		{ResponseInvalidOperation, "invalid operation"},
		{ResponseFailedToWrite, "failed to write"},
		{ResponseNotReady, "not ready"},
		{ResponseInvalidIndex, "invalid index"},
		{ResponseCRCFailed, "crc failed"},
		{ResponseNoMoreData, "no more data"},
		{ResponseCode(99), "unknown response code (99)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.code.String(); got != tt.want {
				t.Errorf("ResponseCode.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestANTFSError(t *testing.T) {
	err := &ANTFSError{Op: OpDownload, Code: ResponseNotReadable}
	want := "antfs: download failed: not readable"
	if got := err.Error(); got != want {
		t.Errorf("ANTFSError.Error() = %v, want %v", got, want)
	}
}

func TestSentinelErrors(t *testing.T) {
	// Verify all sentinel errors are distinct.
	errs := []error{
		ErrDriverNotFound,
		ErrDriverTimeout,
		ErrNoDevice,
		ErrBadSync,
		ErrBadChecksum,
		ErrResponseTimeout,
		ErrEventTimeout,
		ErrTransferFailed,
		ErrSearchTimeout,
		ErrProtocolViolation,
		ErrInvalidState,
		ErrInvalidParameter,
		ErrAlreadyRunning,
		ErrNotRunning,
		ErrNoChannels,
		ErrCancelled,
		ErrBeaconResync,
		ErrAuthenticationFailed,
	}

	for i, err1 := range errs {
		if err1 == nil {
			t.Errorf("error %d is nil", i)
			continue
		}
		for j, err2 := range errs {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("error %d and %d are equal", i, j)
			}
		}
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err     error
		wantMsg string
	}{
		{ErrDriverNotFound, "ant: no compatible driver found"},
		{ErrBadChecksum, "ant: bad frame checksum"},
		{ErrTransferFailed, "ant: transfer failed"},
		{ErrSearchTimeout, "ant: search timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.wantMsg, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("error.Error() = %v, want %v", got, tt.wantMsg)
			}
		})
	}
}
