package checkin

import "github.com/skip2/go-qrcode"

// DefaultQRSize is the edge length in pixels of rendered codes.
const DefaultQRSize = 512

// RenderPNG draws code text as a QR code PNG. Medium recovery survives a
// cracked phone screen without growing the code too dense for webcams.
func RenderPNG(text string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultQRSize
	}
	return qrcode.Encode(text, qrcode.Medium, size)
}
