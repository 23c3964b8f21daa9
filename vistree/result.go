package vistree

// DiffType classifies a single difference between two snapshots.
type DiffType string

const (
	DiffAdded    DiffType = "added"
	DiffRemoved  DiffType = "removed"
	DiffModified DiffType = "modified"
	DiffMoved    DiffType = "moved"   // only position fields differ
	DiffResized  DiffType = "resized" // only size fields differ
)

// Difference is one detected change. Path identifies the group or element;
// Before/After carry the matched payloads when both sides exist.
type Difference struct {
	Type   DiffType     `json:"type"`
	Path   string       `json:"path"`
	Before *DiffPayload `json:"before,omitempty"`
	After  *DiffPayload `json:"after,omitempty"`
	Detail string       `json:"detail,omitempty"`
}

// DiffPayload is the side-specific state of a changed group or element.
type DiffPayload struct {
	Bounds     BoundingRect `json:"bounds"`
	Text       string       `json:"text,omitempty"`
	Importance float64      `json:"importance,omitempty"`
	ChildCount int          `json:"childCount,omitempty"`
}

// Summary aggregates counts over one comparison.
type Summary struct {
	TotalElements int `json:"totalElements"`
	TotalChanged  int `json:"totalChanged"`
	TotalAdded    int `json:"totalAdded"`
	TotalRemoved  int `json:"totalRemoved"`
}

// ComparisonResult is the comparator's output. Similarity is 0–100;
// an empty comparison (no elements on either side) is vacuously 100.
type ComparisonResult struct {
	Differences []Difference `json:"differences"`
	Similarity  float64      `json:"similarity"`
	Summary     Summary      `json:"summary"`
}

// Identical reports whether no differences were found.
func (r *ComparisonResult) Identical() bool {
	return len(r.Differences) == 0
}
