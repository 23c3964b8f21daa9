package vistree

// FlakinessType is the category of property that varies across samples.
type FlakinessType string

const (
	FlakyPosition   FlakinessType = "position"
	FlakySize       FlakinessType = "size"
	FlakyText       FlakinessType = "text"
	FlakyStyle      FlakinessType = "style"
	FlakyImportance FlakinessType = "importance"
	FlakyExistence  FlakinessType = "existence"
	FlakyMixed      FlakinessType = "mixed"
)

// Variation is the per-property value histogram observed across samples.
type Variation struct {
	Property string         `json:"property"`
	Values   map[string]int `json:"values"` // bucketed value → occurrence count
	Variance float64        `json:"variance"`
}

// FlakyElement is the per-path variance record.
type FlakyElement struct {
	Path           string        `json:"path"`
	FlakinessType  FlakinessType `json:"flakinessType"`
	Score          float64       `json:"score"` // 0–100
	Variations     []Variation   `json:"variations"`
	OccurrenceRate float64       `json:"occurrenceRate"` // samples containing the path / total
}

// FlakinessAnalysis aggregates N same-page samples into per-path variance
// statistics. Derived, read-only output.
type FlakinessAnalysis struct {
	SampleCount   int            `json:"sampleCount"`
	TotalPaths    int            `json:"totalPaths"`
	FlakyElements []FlakyElement `json:"flakyElements"`
	OverallScore  float64        `json:"overallScore"` // 0–100
}
