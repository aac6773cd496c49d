package heartrate

import "testing"

func TestDecoder_Decode_DefaultPage(t *testing.T) {
	var d Decoder
	page := []byte{0, 0xFF, 0xFF, 0xFF, 0x10, 0x27, 42, 68}
	got, err := d.Decode(page)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	hr, ok := got.(Page)
	if !ok {
		t.Fatalf("Decode() = %T, want Page", got)
	}
	if hr.HeartRate != 68 || hr.BeatCount != 42 {
		t.Errorf("hr = %+v, want HeartRate=68 BeatCount=42", hr)
	}
}

func TestDecoder_Decode_InterleavedCommonPage(t *testing.T) {
	var d Decoder
	manufacturer := []byte{80, 0xFF, 1, 9, 0, 3, 0, 0xFF}
	got, err := d.Decode(manufacturer)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if _, ok := got.(interface{ PageNumber() uint8 }); !ok {
		t.Fatalf("Decode() = %T, want a PageData value", got)
	}
	if d.Common().ManufacturerID != 9 {
		t.Errorf("Common().ManufacturerID = %d, want 9", d.Common().ManufacturerID)
	}
}

func TestDecoder_Decode_ShortPage(t *testing.T) {
	var d Decoder
	if _, err := d.Decode([]byte{0, 1, 2}); err == nil {
		t.Error("Decode() error = nil for a short page, want errShortPage")
	}
}
