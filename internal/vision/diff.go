package vision

import (
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// ArtifactPrefix starts every diff artifact file name.
const ArtifactPrefix = "vt_diff_"

// DiffImage returns the absolute per-pixel luminance difference of two
// equally sized images. It ignores any exclusion mask.
func DiffImage(a, b *image.Gray) *image.Gray {
	bounds := a.Bounds()
	if bounds.Size() != b.Bounds().Size() {
		panic("DiffImage: image dimensions must match")
	}

	width, height := bounds.Dx(), bounds.Dy()
	diff := image.NewGray(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			diff.Pix[y*diff.Stride+x] = absDiff(a.Pix[y*a.Stride+x], b.Pix[y*b.Stride+x])
		}
	}
	return diff
}

// ArtifactName derives a diff artifact file name from t. Names are only as
// unique as the clock's resolution.
func ArtifactName(t time.Time) string {
	return fmt.Sprintf("%s%d.png", ArtifactPrefix, t.UnixNano())
}

// writeArtifact persists img under dir and returns its path. The write is
// fire-and-forget: the path is returned even if the file could not be
// written, so callers must not treat it as proof the file exists.
func writeArtifact(dir string, now time.Time, img image.Image) string {
	path := filepath.Join(dir, ArtifactName(now))
	if err := savePNG(path, img); err != nil {
		slog.Debug("Diff artifact not persisted", "path", path, "error", err)
	}
	return path
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create artifact: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode artifact: %w", err)
	}
	return f.Close()
}
