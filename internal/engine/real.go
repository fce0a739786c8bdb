package engine

import "github.com/geomichelon/vtsdk/internal/vision"

// Real runs the image comparison and delegates search/locate to a Finder.
type Real struct {
	comparator *vision.Comparator
	finder     vision.Finder
}

// NewReal creates the real engine with the pending (NotFound) finder.
func NewReal(opts ...vision.Option) *Real {
	return &Real{
		comparator: vision.NewComparator(opts...),
		finder:     vision.PendingFinder{},
	}
}

// WithFinder returns a copy of r that answers search/locate with f.
func (r *Real) WithFinder(f vision.Finder) *Real {
	cp := *r
	cp.finder = f
	return &cp
}

func (r *Real) Compare(req vision.CompareRequest) vision.CompareResult {
	return r.comparator.Compare(req)
}

func (r *Real) Search(req vision.SearchRequest) vision.SearchResult {
	return r.finder.Search(req)
}

func (r *Real) Locate(req vision.LocateRequest) vision.LocateResult {
	return r.finder.Locate(req)
}

func (r *Real) Backend() Backend { return BackendReal }
