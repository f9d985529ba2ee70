package scanner

import (
	"bytes"
	"image"
	"testing"

	"github.com/skip2/go-qrcode"
)

func TestQRDecoderReadsRenderedCode(t *testing.T) {
	want := "EVENT:evt1|GUEST:g42|1699999999"
	pngBytes, err := qrcode.Encode(want, qrcode.Medium, 256)
	if err != nil {
		t.Fatalf("qrcode.Encode: %v", err)
	}
	img, _, err := image.Decode(bytes.NewReader(pngBytes))
	if err != nil {
		t.Fatalf("image.Decode: %v", err)
	}

	got, err := NewQRDecoder().Decode(img)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != want {
		t.Errorf("Decode() = %q, want %q", got, want)
	}
}

func TestQRDecoderBlankFrame(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	got, err := NewQRDecoder().Decode(img)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != "" {
		t.Errorf("Decode() = %q, want empty", got)
	}
}
