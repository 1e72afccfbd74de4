package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/fogleman/gg"

	"github.com/elieceruiz/cleanup/internal/domain"
)

// EncodeBlob serializes a normalized image as a base64 string of lossy JPEG
// bytes. Quality is tuned low on purpose to bound per-record storage; pixel
// values degrade but dimensions survive the round trip exactly.
func EncodeBlob(img image.Image, quality int) (string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return "", fmt.Errorf("encode jpeg: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeBlob is the inverse of EncodeBlob. Corrupt input fails with
// domain.ErrCodec; callers rendering history substitute Placeholder and keep
// going rather than aborting unrelated records.
func DecodeBlob(blob string) (image.Image, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCodec, err)
	}
	img, err := jpeg.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCodec, err)
	}
	return img, nil
}

// Placeholder draws a neutral stand-in image used when a stored blob cannot
// be decoded: light gray field, darker frame, diagonal cross.
func Placeholder(w, h int) image.Image {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dc := gg.NewContext(w, h)
	dc.SetRGB255(0xde, 0xde, 0xde)
	dc.Clear()

	dc.SetRGB255(0x9a, 0x9a, 0x9a)
	dc.SetLineWidth(2)
	dc.DrawRectangle(1, 1, float64(w)-2, float64(h)-2)
	dc.Stroke()
	dc.DrawLine(0, 0, float64(w), float64(h))
	dc.Stroke()
	dc.DrawLine(float64(w), 0, 0, float64(h))
	dc.Stroke()

	return dc.Image()
}
