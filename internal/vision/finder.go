package vision

// FindStatus reports whether a search or locate operation found anything.
type FindStatus string

const (
	StatusFound    FindStatus = "Found"
	StatusNotFound FindStatus = "NotFound"
)

// SearchRequest asks for occurrences of ChildImage inside ParentImage.
type SearchRequest struct {
	ParentImage string `json:"parentImage"`
	ChildImage  string `json:"childImage"`
	Meta        Meta   `json:"meta"`
}

// MatchRegion is one occurrence found by a search, in parent-image pixels.
type MatchRegion struct {
	TopLeftX     uint32 `json:"topLeftX"`
	TopLeftY     uint32 `json:"topLeftY"`
	BottomRightX uint32 `json:"bottomRightX"`
	BottomRightY uint32 `json:"bottomRightY"`
}

// SearchResult is the response of a search.
type SearchResult struct {
	Status         FindStatus    `json:"status"`
	TotalMatches   uint32        `json:"totalMatches"`
	Matches        []MatchRegion `json:"matches,omitempty"`
	ResultImageRef string        `json:"resultImageRef,omitempty"`
	Precision      *float64      `json:"precision,omitempty"`
	Center         *[2]float64   `json:"center,omitempty"`
}

// LocateRequest asks where RelativeImage sits with respect to MainImage
// inside ContainerImage.
type LocateRequest struct {
	ContainerImage string `json:"containerImage"`
	MainImage      string `json:"mainImage"`
	RelativeImage  string `json:"relativeImage"`
	Meta           Meta   `json:"meta"`
}

// RelativePosition is the placement of the relative element seen from the
// main element.
type RelativePosition string

const (
	PositionTopLeft     RelativePosition = "TOP_LEFT"
	PositionTopRight    RelativePosition = "TOP_RIGHT"
	PositionBottomLeft  RelativePosition = "BOTTOM_LEFT"
	PositionBottomRight RelativePosition = "BOTTOM_RIGHT"
	PositionLeft        RelativePosition = "LEFT"
	PositionRight       RelativePosition = "RIGHT"
	PositionAbove       RelativePosition = "ABOVE"
	PositionBelow       RelativePosition = "BELOW"
	PositionOverlapping RelativePosition = "OVERLAPPING"
)

// Region is an (x0, y0, x1, y1) box in container-image pixels.
type Region [4]uint32

// LocateResult is the response of a locate.
type LocateResult struct {
	Status                   FindStatus       `json:"status"`
	MainRegion               *Region          `json:"mainRegion,omitempty"`
	RelativeRegion           *Region          `json:"relativeRegion,omitempty"`
	RelativePositionFromMain RelativePosition `json:"relativePositionFromMain,omitempty"`
	Description              string           `json:"description,omitempty"`
	ResultImageRef           string           `json:"resultImageRef,omitempty"`
}

// Finder locates elements inside images. Implementations must keep the
// request/response shapes above stable.
type Finder interface {
	Search(req SearchRequest) SearchResult
	Locate(req LocateRequest) LocateResult
}

// PendingFinder is the Finder used until real sub-image matching exists.
// It answers NotFound for every request.
type PendingFinder struct{}

// Search always reports no matches.
func (PendingFinder) Search(SearchRequest) SearchResult {
	return SearchResult{Status: StatusNotFound, TotalMatches: 0}
}

// Locate always reports nothing located.
func (PendingFinder) Locate(LocateRequest) LocateResult {
	return LocateResult{Status: StatusNotFound}
}
