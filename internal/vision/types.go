package vision

// CanonicalSize is the edge length of the square grid both images are
// resampled to before scoring.
const CanonicalSize = 256

// DefaultNoiseFilter is reported when the caller does not supply one.
const DefaultNoiseFilter = 20

// Rect is an axis-aligned rectangle in original-image pixel coordinates.
// The bottom-right corner is inclusive. Degenerate rectangles are allowed.
type Rect struct {
	TopLeftX     uint32 `json:"topLeftX"`
	TopLeftY     uint32 `json:"topLeftY"`
	BottomRightX uint32 `json:"bottomRightX"`
	BottomRightY uint32 `json:"bottomRightY"`
}

// Meta is opaque pass-through metadata. The engine never interprets it.
type Meta struct {
	TestName      string `json:"testName,omitempty"`
	TestMode      string `json:"testMode,omitempty"`
	ProjectName   string `json:"projectName,omitempty"`
	ExecutionName string `json:"executionName,omitempty"`
}

// CompareRequest describes one baseline/input comparison.
type CompareRequest struct {
	BaselineImage string `json:"baselineImage"`
	InputImage    string `json:"inputImage"`

	// MinSimilarity is the pass threshold in [0,100]; nil means no verdict.
	MinSimilarity *int `json:"minSimilarity,omitempty"`

	// NoiseFilter is accepted and echoed but not consumed by the scorer.
	NoiseFilter *int `json:"noiseFilter,omitempty"`

	ExcludedAreas []Rect `json:"excludedAreas,omitempty"`
	Meta          Meta   `json:"meta"`
}

// Status is the verdict of a thresholded comparison.
type Status string

const (
	StatusPassed Status = "Passed"
	StatusFailed Status = "Failed"
)

// CompareResult is the outcome of a comparison.
type CompareResult struct {
	ObtainedSimilarity float64 `json:"obtainedSimilarity"`

	// Status is empty (and omitted) when no threshold was supplied.
	Status Status `json:"status,omitempty"`

	// ResultImageRef points at the diff artifact. It is set whenever the
	// pixel path ran, even if the artifact write failed.
	ResultImageRef string `json:"resultImageRef,omitempty"`

	NoiseFilter   int    `json:"noiseFilter"`
	ExcludedAreas []Rect `json:"excludedAreas,omitempty"`
}

// EffectiveNoiseFilter clamps the requested noise filter to [0,100] and
// applies the default when none was given.
func EffectiveNoiseFilter(n *int) int {
	if n == nil {
		return DefaultNoiseFilter
	}
	return clampInt(*n, 0, 100)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
