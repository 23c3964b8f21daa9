package vistree

// ComparisonSettings is the tolerance profile produced by calibration and
// consumed verbatim by the comparator on subsequent runs. It is the only
// data that crosses the calibration → comparison boundary.
type ComparisonSettings struct {
	PositionTolerance float64 `json:"positionTolerance"` // px
	SizeTolerance     float64 `json:"sizeTolerance"`     // percent

	// TextSimilarityThreshold is 0–1; matched elements whose text similarity
	// falls below it are reported as modified.
	TextSimilarityThreshold float64 `json:"textSimilarityThreshold"`

	ImportanceThreshold float64 `json:"importanceThreshold"`

	// IgnoreElements are selectors for dynamic elements; the caller applies
	// them to both snapshots before invoking the comparator.
	IgnoreElements []string `json:"ignoreElements,omitempty"`
}

// DefaultSettings are the tolerances used before any calibration has run.
func DefaultSettings() ComparisonSettings {
	return ComparisonSettings{
		PositionTolerance:       5,
		SizeTolerance:           10,
		TextSimilarityThreshold: 0.9,
		ImportanceThreshold:     15,
	}
}
