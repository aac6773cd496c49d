package profile

// Common data page numbers, present on most ANT+ device profiles
// interleaved with device-specific pages.
const (
	PageManufacturerInfo uint8 = 80
	PageProductInfo      uint8 = 81
	PageBatteryStatus    uint8 = 82
	PageDateTime         uint8 = 83
)

// CommonInfo accumulates the fields reported across the four common pages
// for one device, mirroring the source's per-device "common data" record.
type CommonInfo struct {
	ManufacturerID uint16
	ModelNumber    uint16
	HWRevision     uint8
	SWRevision     uint8
	SerialNumber   uint32

	BatteryVoltage float64
	BatteryStatus  BatteryStatus

	Year, Month, Day     uint8
	Hour, Minute, Second uint8
}

// BatteryStatus is the coarse battery health state reported in page 82.
type BatteryStatus uint8

// Battery status values, per the common page 82 status nibble.
const (
	BatteryStatusUnknown BatteryStatus = iota
	BatteryStatusNew
	BatteryStatusGood
	BatteryStatusOK
	BatteryStatusLow
	BatteryStatusCritical
	BatteryStatusInvalid = BatteryStatus(0xF)
)

// CommonPage is a decoded common data page value.
type CommonPage struct {
	Page uint8
	Info CommonInfo
}

// PageNumber implements [PageData].
func (p CommonPage) PageNumber() uint8 { return p.Page }

// DecodeCommon recognizes common pages 80-83 ahead of a profile's own
// decoder being consulted, folding the decoded fields into acc (which the
// caller keeps across calls for one device). It reports ok=false for any
// page number outside the common range, leaving acc untouched.
func DecodeCommon(page []byte, acc *CommonInfo) (result CommonPage, ok bool) {
	if len(page) < 8 {
		return CommonPage{}, false
	}
	switch page[0] {
	case PageManufacturerInfo:
		acc.HWRevision = page[2]
		acc.ManufacturerID = uint16(page[3]) | uint16(page[4])<<8
		acc.ModelNumber = uint16(page[5]) | uint16(page[6])<<8
	case PageProductInfo:
		acc.SWRevision = page[3]
		acc.SerialNumber = uint32(page[4]) | uint32(page[5])<<8 |
			uint32(page[6])<<16 | uint32(page[7])<<24
	case PageBatteryStatus:
		acc.BatteryStatus = BatteryStatus(page[6] >> 4 & 0x07)
		coarse := uint16(page[3])
		fractional := float64(page[2]) / 256.0
		acc.BatteryVoltage = float64(coarse) + fractional
	case PageDateTime:
		acc.Second = page[1]
		acc.Minute = page[2]
		acc.Hour = page[3]
		acc.Day = page[4]
		acc.Month = page[5]
		acc.Year = page[6]
	default:
		return CommonPage{}, false
	}
	return CommonPage{Page: page[0], Info: *acc}, true
}
