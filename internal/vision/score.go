package vision

import "image"

// Similarity computes the normalized mean absolute luminance difference
// between two canonical images over the pixels the mask includes:
//
//	score = (1 - Σ|a-b| / (255 × included)) × 100
//
// The result is clamped to [0,100]. A mask that includes no pixel scores 0.
// A nil mask includes every pixel.
func Similarity(a, b *image.Gray, mask Mask) float64 {
	if a.Bounds().Size() != b.Bounds().Size() {
		panic("Similarity: image dimensions must match")
	}

	width := a.Bounds().Dx()
	height := a.Bounds().Dy()

	var sum uint64
	var count uint64

	for y := 0; y < height; y++ {
		rowA := a.Pix[y*a.Stride : y*a.Stride+width]
		rowB := b.Pix[y*b.Stride : y*b.Stride+width]

		for x := 0; x < width; x++ {
			if mask != nil && !mask[y*width+x] {
				continue
			}
			sum += uint64(absDiff(rowA[x], rowB[x]))
			count++
		}
	}

	if count == 0 {
		return 0
	}

	score := 1 - float64(sum)/float64(255*count)
	return clampFloat(score, 0, 1) * 100
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
