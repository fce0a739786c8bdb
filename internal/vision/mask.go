package vision

import "math"

// Mask flags, per canonical pixel in row-major order, whether the pixel
// counts toward the similarity score.
type Mask []bool

// BuildMask maps exclusion rectangles given in the baseline's original
// width x height coordinates onto the canonical grid.
//
// Top-left corners are floored and bottom-right corners are ceiled, then both
// are clamped to the grid. Rounding outward means even a zero-area rectangle
// excludes at least one canonical pixel. Rectangles combine by union.
func BuildMask(rects []Rect, width, height int) Mask {
	mask := make(Mask, CanonicalSize*CanonicalSize)
	for i := range mask {
		mask[i] = true
	}
	if len(rects) == 0 {
		return mask
	}

	sx := float64(CanonicalSize) / float64(max(width, 1))
	sy := float64(CanonicalSize) / float64(max(height, 1))

	for _, r := range rects {
		x0 := toCanonical(math.Floor(float64(r.TopLeftX) * sx))
		y0 := toCanonical(math.Floor(float64(r.TopLeftY) * sy))
		x1 := toCanonical(math.Ceil(float64(r.BottomRightX) * sx))
		y1 := toCanonical(math.Ceil(float64(r.BottomRightY) * sy))

		for y := y0; y <= y1; y++ {
			row := y * CanonicalSize
			for x := x0; x <= x1; x++ {
				mask[row+x] = false
			}
		}
	}
	return mask
}

// Included returns the number of pixels that count toward the score.
func (m Mask) Included() int {
	n := 0
	for _, in := range m {
		if in {
			n++
		}
	}
	return n
}

func toCanonical(v float64) int {
	return int(math.Max(0, math.Min(float64(CanonicalSize-1), v)))
}
