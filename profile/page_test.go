package profile

import "testing"

func TestDecodeCommon_ManufacturerInfo(t *testing.T) {
	var acc CommonInfo
	page := []byte{PageManufacturerInfo, 0xFF, 0x02, 0x01, 0x00, 0x05, 0x00, 0xFF}
	result, ok := DecodeCommon(page, &acc)
	if !ok {
		t.Fatal("DecodeCommon() ok = false, want true for page 80")
	}
	if result.Info.HWRevision != 2 || result.Info.ManufacturerID != 1 || result.Info.ModelNumber != 5 {
		t.Errorf("Info = %+v, want HWRevision=2 ManufacturerID=1 ModelNumber=5", result.Info)
	}
}

func TestDecodeCommon_NonCommonPage(t *testing.T) {
	var acc CommonInfo
	page := []byte{0, 0, 0, 0, 0, 0, 0, 0}
	if _, ok := DecodeCommon(page, &acc); ok {
		t.Error("DecodeCommon() ok = true for a non-common page, want false")
	}
}

func TestDecodeCommon_ShortPage(t *testing.T) {
	var acc CommonInfo
	if _, ok := DecodeCommon([]byte{PageManufacturerInfo, 1, 2}, &acc); ok {
		t.Error("DecodeCommon() ok = true for a short page, want false")
	}
}
