// Package compare diffs two visual snapshots at raw-element or
// semantic-group granularity and scores their similarity. Every function in
// the package is total: malformed or missing data degrades to a documented
// fallback (vacuous 100% similarity, raw-element mode) instead of failing.
package compare

import (
	"math"
	"reflect"

	"github.com/vizdrift/vizdrift/vistree"
)

// Options configures a comparison. Tolerances come from ComparisonSettings
// so calibration output plugs in verbatim.
type Options struct {
	Settings vistree.ComparisonSettings

	// IgnoreText skips text comparison in raw-element mode.
	IgnoreText bool

	// IgnoreAttributes lists attribute names excluded from raw-element
	// comparison on top of the built-in ignore list.
	IgnoreAttributes []string
}

func (o *Options) defaults() {
	z := vistree.ComparisonSettings{}
	if reflect.DeepEqual(o.Settings, z) {
		o.Settings = vistree.DefaultSettings()
	}
	if o.Settings.PositionTolerance <= 0 {
		o.Settings.PositionTolerance = 5
	}
	if o.Settings.SizeTolerance <= 0 {
		o.Settings.SizeTolerance = 10
	}
	if o.Settings.TextSimilarityThreshold <= 0 {
		o.Settings.TextSimilarityThreshold = 0.9
	}
	if o.Settings.ImportanceThreshold <= 0 {
		o.Settings.ImportanceThreshold = 15
	}
}

// opacityTolerance is the opacity delta above which a raw element counts as
// changed.
const opacityTolerance = 0.1

// Snapshots compares two snapshots, preferring group mode when both carry
// semantic group data and falling back to raw-element mode otherwise.
func Snapshots(baseline, current *vistree.VisualTreeAnalysis, opts Options) *vistree.ComparisonResult {
	if baseline.HasGroups() && current.HasGroups() {
		return Groups(baseline, current, opts)
	}
	return Raw(baseline, current, opts)
}

// vacuous is the all-100 result returned when there is nothing to compare.
func vacuous() *vistree.ComparisonResult {
	return &vistree.ComparisonResult{Similarity: 100}
}

// score converts difference counts into the 0–100 similarity value.
// total == 0 means vacuously identical.
func score(changed, total int) float64 {
	if total == 0 {
		return 100
	}
	return 100 * math.Max(0, 1-float64(changed)/float64(total))
}
