package imaging

import (
	"image"
	"image/color"
)

// gradientThreshold is the minimum luminance step (0-255) between adjacent
// pixels that counts toward the clutter score.
const gradientThreshold = 10

// ClutterScore quantifies visual busyness as the number of adjacent-pixel
// pairs, in raster order, whose luminance differs by more than the gradient
// threshold. Pixels are flattened row by row, so the pair spanning the end
// of one row and the start of the next is counted too; the score is only
// ever compared against another score from the same heuristic, where that
// imprecision cancels out.
//
// Deterministic and pure: the same image always yields the same score.
func ClutterScore(img image.Image) int {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return 0
	}

	lum := make([]int, 0, w*h)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			lum = append(lum, int(g.Y))
		}
	}

	score := 0
	for i := 0; i < len(lum)-1; i++ {
		d := lum[i] - lum[i+1]
		if d < 0 {
			d = -d
		}
		if d > gradientThreshold {
			score++
		}
	}
	return score
}
