package engine

import "github.com/geomichelon/vtsdk/internal/vision"

// MockSimilarity is the fixed score reported by the mock backend.
const MockSimilarity = 42.0

// Mock is a deterministic backend for contract tests of embedding runtimes.
// It never touches the filesystem.
type Mock struct{}

// Compare reports MockSimilarity, fails any supplied threshold, and echoes
// the noise filter and exclusions.
func (Mock) Compare(req vision.CompareRequest) vision.CompareResult {
	var status vision.Status
	if req.MinSimilarity != nil {
		status = vision.StatusFailed
	}
	return vision.CompareResult{
		ObtainedSimilarity: MockSimilarity,
		Status:             status,
		NoiseFilter:        vision.EffectiveNoiseFilter(req.NoiseFilter),
		ExcludedAreas:      req.ExcludedAreas,
	}
}

func (Mock) Search(vision.SearchRequest) vision.SearchResult {
	return vision.SearchResult{Status: vision.StatusNotFound}
}

func (Mock) Locate(vision.LocateRequest) vision.LocateResult {
	return vision.LocateResult{Status: vision.StatusNotFound}
}

func (Mock) Backend() Backend { return BackendMock }
