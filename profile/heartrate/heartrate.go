// Package heartrate decodes the ANT+ Heart Rate device profile's data
// pages, as a worked example of the profile.Decoder collaborator
// interface.
package heartrate

import "github.com/go-ant/antcore/profile"

// Page is a decoded heart rate data page (pages 0-4 share this layout:
// page number, a page-specific "data" field at bytes 1-3, a heartbeat
// event time, a beat count, and the computed instantaneous heart rate).
type Page struct {
	PageNum   uint8
	BeatTime  uint16 // 1/1024 s units
	BeatCount uint8
	HeartRate uint8 // bpm
}

// PageNumber implements [profile.PageData].
func (p Page) PageNumber() uint8 { return p.PageNum }

// Decoder implements [profile.Decoder] for the ANT+ Heart Rate profile
// (device type 120).
type Decoder struct {
	common profile.CommonInfo
}

// DeviceType is the ANT+ device type identifying a heart rate monitor.
const DeviceType uint8 = 120

// Decode decodes one 8-byte heart rate broadcast payload. Common pages
// (80-83) are folded into the decoder's accumulated CommonInfo and
// returned as a [profile.CommonPage]; device-specific pages 0-4 return a
// [Page].
func (d *Decoder) Decode(page []byte) (profile.PageData, error) {
	if common, ok := profile.DecodeCommon(page, &d.common); ok {
		return common, nil
	}
	if len(page) < 8 {
		return nil, errShortPage
	}
	return Page{
		PageNum:   page[0] & 0x7F,
		BeatTime:  uint16(page[4]) | uint16(page[5])<<8,
		BeatCount: page[6],
		HeartRate: page[7],
	}, nil
}

// Common returns the decoder's accumulated manufacturer/product/battery/
// time information, as folded in from interleaved common pages so far.
func (d *Decoder) Common() profile.CommonInfo {
	return d.common
}
