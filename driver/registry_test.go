package driver

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/go-ant/antcore/pkg"
)

// stubDriver is a minimal Driver used to exercise Registry without real
// hardware.
type stubDriver struct {
	name string
}

func (s *stubDriver) Open(ctx context.Context) error                   { return nil }
func (s *stubDriver) Read(ctx context.Context, buf []byte) (int, error) { return 0, nil }
func (s *stubDriver) Write(ctx context.Context, data []byte) (int, error) {
	return len(data), nil
}
func (s *stubDriver) Close() error { return nil }

func absentFactory() (Driver, bool) { return nil, false }

func TestRegistry_Find_SkipsAbsentAndReturnsFirstPresent(t *testing.T) {
	present := func() (Driver, bool) { return &stubDriver{name: "present"}, true }
	r := Registry{absentFactory, present, absentFactory}

	d, err := r.Find()
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	got, ok := d.(*stubDriver)
	if !ok || got.name != "present" {
		t.Errorf("Find() = %v, want the first present driver", d)
	}
}

func TestRegistry_Find_NoneFound(t *testing.T) {
	r := Registry{absentFactory, absentFactory}
	_, err := r.Find()
	if !errors.Is(err, pkg.ErrDriverNotFound) {
		t.Errorf("Find() error = %v, want %v", err, pkg.ErrDriverNotFound)
	}
}

func TestDefaultRegistry_HasUSBBeforeSerial(t *testing.T) {
	r := DefaultRegistry()
	if len(r) != 2 {
		t.Fatalf("DefaultRegistry() has %d factories, want 2", len(r))
	}
	if reflect.ValueOf(r[0]).Pointer() != reflect.ValueOf(Factory(NewUSBDriver)).Pointer() ||
		reflect.ValueOf(r[1]).Pointer() != reflect.ValueOf(Factory(NewSerialDriver)).Pointer() {
		t.Error("DefaultRegistry() order is not {NewUSBDriver, NewSerialDriver}")
	}
}
