package imaging

import (
	"bytes"
	"fmt"
	"image"
	"math"

	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"

	"github.com/elieceruiz/cleanup/internal/domain"
)

// Normalize decodes raw upload bytes and produces the canonical working
// image: RGBA, width capped at maxWidth with the aspect ratio preserved.
// Images already narrower than maxWidth keep their dimensions.
// Returns domain.ErrDecode when the bytes are not a valid JPEG or PNG.
func Normalize(raw []byte, maxWidth int) (*image.RGBA, error) {
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: empty image", domain.ErrDecode)
	}

	if w <= maxWidth {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
		return dst, nil
	}

	scaledH := int(math.Round(float64(h) * float64(maxWidth) / float64(w)))
	if scaledH < 1 {
		scaledH = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, scaledH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst, nil
}
