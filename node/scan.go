package node

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/go-ant/antcore/pkg"
	"github.com/go-ant/antcore/profile"
)

// DeviceTuple identifies a device observed in scan mode.
type DeviceTuple struct {
	DeviceNumber     uint16
	DeviceType       uint8
	TransmissionType uint8
}

// String renders the tuple as "device_id:device_type", matching the
// source's cache key format.
func (d DeviceTuple) String() string {
	return fmt.Sprintf("%d:%d", d.DeviceNumber, d.DeviceType)
}

// Scanner wraps a channel opened in promiscuous RX scan mode: it parses the
// extended receive header from every broadcast, tracks first-seen device
// tuples, and folds in common-page info as it arrives.
type Scanner struct {
	ch *Channel

	mu       sync.Mutex
	known    map[DeviceTuple]*profile.CommonInfo
	OnFound  func(DeviceTuple)
	OnUpdate func(DeviceTuple, profile.CommonInfo)
}

// NewScanner wires ch's broadcast callback to the scanner's device-tuple
// tracking. It does not open the channel or enable extended messages; ch
// is expected to be put in extended-message RX scan mode separately (see
// [Channel.EnableExtendedMessages] and [Channel.OpenRXScanMode]).
func NewScanner(ch *Channel) *Scanner {
	s := &Scanner{ch: ch, known: make(map[DeviceTuple]*profile.CommonInfo)}
	ch.SetCallbacks(Callbacks{OnBroadcast: s.handleBroadcast})
	return s
}

// extendedHeaderFlag marks the presence of an extended receive header
// following an 8-byte broadcast payload.
const extendedHeaderFlag = 0x80

func (s *Scanner) handleBroadcast(payload []byte) {
	if len(payload) < 8+5 || payload[8] != extendedHeaderFlag {
		return
	}
	tuple := DeviceTuple{
		DeviceNumber:     uint16(payload[9]) | uint16(payload[10])<<8,
		DeviceType:       payload[11],
		TransmissionType: payload[12],
	}

	s.mu.Lock()
	info, seen := s.known[tuple]
	if !seen {
		info = &profile.CommonInfo{}
		s.known[tuple] = info
	}
	s.mu.Unlock()

	if !seen {
		pkg.LogInfo(pkg.ComponentScan, "device found", "tuple", tuple.String())
		if s.OnFound != nil {
			s.OnFound(tuple)
		}
	}

	if common, ok := profile.DecodeCommon(payload[:8], info); ok {
		pkg.LogDebug(pkg.ComponentScan, "common page update", "tuple", tuple.String(), "page", common.Page)
		if s.OnUpdate != nil {
			s.OnUpdate(tuple, *info)
		}
	}
}

// Snapshot returns a copy of every device tuple observed so far, keyed the
// same way [SaveCache] persists them.
func (s *Scanner) Snapshot() map[DeviceTuple]profile.CommonInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[DeviceTuple]profile.CommonInfo, len(s.known))
	for k, v := range s.known {
		out[k] = *v
	}
	return out
}

// cacheEntry is the on-wire JSON representation of one device-tuple cache
// record, keyed by its "device_id:device_type" string per the source's
// Scanner.save/load format.
type cacheEntry struct {
	DeviceNumber     uint16             `json:"device_number"`
	DeviceType       uint8              `json:"device_type"`
	TransmissionType uint8              `json:"transmission_type"`
	Info             profile.CommonInfo `json:"info"`
}

// SaveCache marshals a device-tuple → common-info map as JSON.
func SaveCache(w io.Writer, cache map[DeviceTuple]profile.CommonInfo) error {
	entries := make(map[string]cacheEntry, len(cache))
	for tuple, info := range cache {
		entries[tuple.String()] = cacheEntry{
			DeviceNumber:     tuple.DeviceNumber,
			DeviceType:       tuple.DeviceType,
			TransmissionType: tuple.TransmissionType,
			Info:             info,
		}
	}
	return json.NewEncoder(w).Encode(entries)
}

// LoadCache unmarshals a device-tuple → common-info map previously written
// by [SaveCache].
func LoadCache(r io.Reader) (map[DeviceTuple]profile.CommonInfo, error) {
	var entries map[string]cacheEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, err
	}
	out := make(map[DeviceTuple]profile.CommonInfo, len(entries))
	for _, e := range entries {
		tuple := DeviceTuple{
			DeviceNumber:     e.DeviceNumber,
			DeviceType:       e.DeviceType,
			TransmissionType: e.TransmissionType,
		}
		out[tuple] = e.Info
	}
	return out, nil
}
