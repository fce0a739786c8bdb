package vision

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder.
	_ "image/jpeg" // Register JPEG decoder.
	_ "image/png"  // Register PNG decoder.
	"os"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"  // Register BMP decoder.
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // Register TIFF decoder.
	_ "golang.org/x/image/webp" // Register WebP decoder.
)

// DecodeError reports that a locator could not be read or decoded as a
// raster image. The comparator recovers from it by falling back to a
// byte-level comparison; it never reaches callers of Compare.
type DecodeError struct {
	Locator string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Locator, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// normalized holds a canonical luminance buffer plus the size of the image
// it was derived from.
type normalized struct {
	gray   *image.Gray
	width  int
	height int
}

// loadLuma opens and decodes locator into a single-channel image.
func loadLuma(locator string) (*image.Gray, error) {
	f, err := os.Open(locator)
	if err != nil {
		return nil, &DecodeError{Locator: locator, Err: err}
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, &DecodeError{Locator: locator, Err: err}
	}

	return toGray(img), nil
}

// toGray converts any image to luminance with bounds rebased to the origin.
func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Rect.Min == (image.Point{}) {
		return g
	}
	b := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(g, g.Bounds(), img, b.Min, draw.Src)
	return g
}

// canonicalize resamples g to CanonicalSize x CanonicalSize with Lanczos3.
func canonicalize(g *image.Gray) *image.Gray {
	return toGray(resize.Resize(CanonicalSize, CanonicalSize, g, resize.Lanczos3))
}

// normalize decodes locator and resamples it to the canonical grid.
func normalize(locator string) (*normalized, error) {
	g, err := loadLuma(locator)
	if err != nil {
		return nil, err
	}
	return &normalized{
		gray:   canonicalize(g),
		width:  g.Bounds().Dx(),
		height: g.Bounds().Dy(),
	}, nil
}

// NormalizePair decodes both locators and resamples each independently to
// the canonical grid. It also returns the baseline's original dimensions,
// which exclusion rectangles are expressed against.
func NormalizePair(baseline, input string) (a, b *image.Gray, baseW, baseH int, err error) {
	na, err := normalize(baseline)
	if err != nil {
		return nil, nil, 0, 0, err
	}
	nb, err := normalize(input)
	if err != nil {
		return nil, nil, 0, 0, err
	}
	return na.gray, nb.gray, na.width, na.height, nil
}
