package node

import (
	"bytes"
	"testing"

	"github.com/go-ant/antcore/profile"
)

func newTestScanner() *Scanner {
	ch := &Channel{id: 0, state: StateSearching}
	return NewScanner(ch)
}

func extendedBroadcast(deviceNumber uint16, deviceType, transmissionType byte, page []byte) []byte {
	buf := append([]byte(nil), page...)
	buf = append(buf, extendedHeaderFlag, byte(deviceNumber), byte(deviceNumber>>8), deviceType, transmissionType)
	return buf
}

func TestScanner_OnFound_FiresOnce(t *testing.T) {
	s := newTestScanner()
	found := 0
	s.OnFound = func(DeviceTuple) { found++ }

	payload := extendedBroadcast(1234, 120, 5, []byte{0, 0, 0, 0, 0, 0, 0, 0})
	s.handleBroadcast(payload)
	s.handleBroadcast(payload)

	if found != 1 {
		t.Errorf("OnFound fired %d times, want 1", found)
	}
}

func TestScanner_OnUpdate_FiresOnCommonPage(t *testing.T) {
	s := newTestScanner()
	var gotInfo profile.CommonInfo
	updates := 0
	s.OnUpdate = func(_ DeviceTuple, info profile.CommonInfo) {
		updates++
		gotInfo = info
	}

	manufacturer := []byte{profile.PageManufacturerInfo, 0xFF, 2, 7, 0, 11, 0, 0xFF}
	payload := extendedBroadcast(1234, 120, 5, manufacturer)
	s.handleBroadcast(payload)

	if updates != 1 {
		t.Fatalf("OnUpdate fired %d times, want 1", updates)
	}
	if gotInfo.ManufacturerID != 7 || gotInfo.ModelNumber != 11 {
		t.Errorf("gotInfo = %+v, want ManufacturerID=7 ModelNumber=11", gotInfo)
	}
}

func TestScanner_IgnoresNonExtendedBroadcasts(t *testing.T) {
	s := newTestScanner()
	found := 0
	s.OnFound = func(DeviceTuple) { found++ }

	s.handleBroadcast([]byte{0, 0, 0, 0, 0, 0, 0, 0})

	if found != 0 {
		t.Errorf("OnFound fired for a non-extended broadcast, want 0 calls")
	}
}

func TestSaveLoadCache_RoundTrip(t *testing.T) {
	cache := map[DeviceTuple]profile.CommonInfo{
		{DeviceNumber: 1234, DeviceType: 120, TransmissionType: 5}: {ManufacturerID: 7, ModelNumber: 11},
	}

	var buf bytes.Buffer
	if err := SaveCache(&buf, cache); err != nil {
		t.Fatalf("SaveCache() error = %v", err)
	}

	got, err := LoadCache(&buf)
	if err != nil {
		t.Fatalf("LoadCache() error = %v", err)
	}
	tuple := DeviceTuple{DeviceNumber: 1234, DeviceType: 120, TransmissionType: 5}
	info, ok := got[tuple]
	if !ok {
		t.Fatalf("LoadCache() missing tuple %v", tuple)
	}
	if info.ManufacturerID != 7 || info.ModelNumber != 11 {
		t.Errorf("info = %+v, want ManufacturerID=7 ModelNumber=11", info)
	}
}
