package engine

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geomichelon/vtsdk/internal/vision"
)

func TestNormalizeBackend(t *testing.T) {
	tests := []struct {
		in   string
		want Backend
	}{
		{"", BackendReal},
		{"real", BackendReal},
		{" Real ", BackendReal},
		{"core", BackendReal},
		{"mock", BackendMock},
		{"MOCK", BackendMock},
		{"fake", BackendMock},
		{"gpu", Backend("gpu")},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeBackend(tt.in))
		})
	}
}

func TestNew(t *testing.T) {
	for _, b := range SupportedBackends() {
		t.Run(string(b), func(t *testing.T) {
			e, err := New(string(b))
			require.NoError(t, err)
			assert.Equal(t, b, e.Backend())
		})
	}

	_, err := New("quantum")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownBackend))
}

func TestReal_CompareFallsBackForMissingFiles(t *testing.T) {
	e, err := New("real", vision.WithArtifactDir(t.TempDir()))
	require.NoError(t, err)

	dir := t.TempDir()
	res := e.Compare(vision.CompareRequest{
		BaselineImage: filepath.Join(dir, "a.png"),
		InputImage:    filepath.Join(dir, "b.png"),
	})

	assert.Equal(t, 0.0, res.ObtainedSimilarity)
	assert.Empty(t, res.ResultImageRef)
	assert.Equal(t, vision.DefaultNoiseFilter, res.NoiseFilter)
}

func TestReal_SearchAndLocateNotFound(t *testing.T) {
	e := NewReal()

	assert.Equal(t, vision.StatusNotFound, e.Search(vision.SearchRequest{ParentImage: "p", ChildImage: "c"}).Status)
	assert.Equal(t, vision.StatusNotFound, e.Locate(vision.LocateRequest{ContainerImage: "c", MainImage: "m", RelativeImage: "r"}).Status)
}

type foundFinder struct{}

func (foundFinder) Search(vision.SearchRequest) vision.SearchResult {
	return vision.SearchResult{Status: vision.StatusFound, TotalMatches: 1}
}

func (foundFinder) Locate(vision.LocateRequest) vision.LocateResult {
	return vision.LocateResult{Status: vision.StatusFound, RelativePositionFromMain: vision.PositionBelow}
}

func TestReal_WithFinder(t *testing.T) {
	base := NewReal()
	e := base.WithFinder(foundFinder{})

	assert.Equal(t, vision.StatusFound, e.Search(vision.SearchRequest{}).Status)
	assert.Equal(t, vision.PositionBelow, e.Locate(vision.LocateRequest{}).RelativePositionFromMain)
	// The receiver keeps the pending finder.
	assert.Equal(t, vision.StatusNotFound, base.Search(vision.SearchRequest{}).Status)
}

func TestMock_Compare(t *testing.T) {
	min := 10
	noise := 150
	areas := []vision.Rect{{TopLeftX: 1, TopLeftY: 1, BottomRightX: 2, BottomRightY: 2}}

	res := Mock{}.Compare(vision.CompareRequest{
		BaselineImage: "does-not-matter",
		InputImage:    "does-not-matter",
		MinSimilarity: &min,
		NoiseFilter:   &noise,
		ExcludedAreas: areas,
	})

	assert.Equal(t, MockSimilarity, res.ObtainedSimilarity)
	assert.Equal(t, vision.StatusFailed, res.Status)
	assert.Empty(t, res.ResultImageRef)
	assert.Equal(t, 100, res.NoiseFilter)
	assert.Equal(t, areas, res.ExcludedAreas)
}

func TestMock_CompareWithoutThreshold(t *testing.T) {
	res := Mock{}.Compare(vision.CompareRequest{})

	assert.Empty(t, res.Status)
	assert.Equal(t, vision.DefaultNoiseFilter, res.NoiseFilter)
}

func TestMock_SearchAndLocate(t *testing.T) {
	assert.Equal(t, vision.SearchResult{Status: vision.StatusNotFound}, Mock{}.Search(vision.SearchRequest{}))
	assert.Equal(t, vision.LocateResult{Status: vision.StatusNotFound}, Mock{}.Locate(vision.LocateRequest{}))
}
