package vision

import (
	"log/slog"
	"os"
	"time"
)

// Comparator runs image comparisons. It holds configuration only; every
// call is independent and safe for concurrent use.
type Comparator struct {
	artifactDir string
	now         func() time.Time
}

// Option configures a Comparator.
type Option func(*Comparator)

// WithArtifactDir sets where diff artifacts are written. Empty means the
// OS temp directory.
func WithArtifactDir(dir string) Option {
	return func(c *Comparator) {
		if dir != "" {
			c.artifactDir = dir
		}
	}
}

// WithClock overrides the clock used to name diff artifacts.
func WithClock(now func() time.Time) Option {
	return func(c *Comparator) {
		if now != nil {
			c.now = now
		}
	}
}

// NewComparator creates a comparator.
func NewComparator(opts ...Option) *Comparator {
	c := &Comparator{
		artifactDir: os.TempDir(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ArtifactDir reports where diff artifacts are written.
func (c *Comparator) ArtifactDir() string {
	return c.artifactDir
}

// Compare scores req.InputImage against req.BaselineImage.
//
// When both images decode, they are normalized to the canonical grid, scored
// over the non-excluded pixels, and a diff artifact is written. When either
// fails to decode the files are compared byte by byte and no artifact is
// produced. Compare never fails; the worst outcome is a score of 0.
func (c *Comparator) Compare(req CompareRequest) CompareResult {
	similarity, ref := c.pixelSimilarity(req)

	result := CompareResult{
		ObtainedSimilarity: similarity,
		Status:             Evaluate(similarity, req.MinSimilarity),
		ResultImageRef:     ref,
		NoiseFilter:        EffectiveNoiseFilter(req.NoiseFilter),
		ExcludedAreas:      req.ExcludedAreas,
	}

	slog.Debug("Comparison complete",
		"baseline", req.BaselineImage,
		"input", req.InputImage,
		"similarity", result.ObtainedSimilarity,
		"status", result.Status,
		"excluded", len(req.ExcludedAreas),
	)
	return result
}

// pixelSimilarity returns the score and the artifact path, falling back to
// ByteSimilarity with no artifact when decoding fails.
func (c *Comparator) pixelSimilarity(req CompareRequest) (float64, string) {
	a, b, w, h, err := NormalizePair(req.BaselineImage, req.InputImage)
	if err != nil {
		slog.Debug("Falling back to byte comparison", "error", err)
		return ByteSimilarity(req.BaselineImage, req.InputImage), ""
	}

	mask := BuildMask(req.ExcludedAreas, w, h)
	score := Similarity(a, b, mask)
	ref := writeArtifact(c.artifactDir, c.now(), DiffImage(a, b))

	return score, ref
}
