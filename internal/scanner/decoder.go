package scanner

import (
	"errors"
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// Decoder extracts code text from a frame. It returns "" and no error when
// the frame holds no readable code.
type Decoder interface {
	Decode(img image.Image) (string, error)
}

// QRDecoder reads QR codes.
type QRDecoder struct {
	hints map[gozxing.DecodeHintType]interface{}
}

func NewQRDecoder() *QRDecoder {
	return &QRDecoder{
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
	}
}

func (d *QRDecoder) Decode(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", err
	}
	// readers keep state between calls, so each frame gets its own
	result, err := qrcode.NewQRCodeReader().Decode(bmp, d.hints)
	if err != nil {
		var notReadable gozxing.ReaderException
		if errors.As(err, &notReadable) {
			return "", nil
		}
		return "", err
	}
	return result.GetText(), nil
}
