// Package calibrate converts observed flakiness across repeated samples of
// the same page into a ComparisonSettings tolerance profile. Its output is
// consumed verbatim by the comparator on subsequent runs.
package calibrate

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/vizdrift/vizdrift/flakiness"
	"github.com/vizdrift/vizdrift/vistree"
)

// Strictness scales derived tolerances: low is forgiving, high is tight.
type Strictness string

const (
	Low    Strictness = "low"
	Medium Strictness = "medium"
	High   Strictness = "high"
)

// Multiplier returns the tolerance scale factor for the strictness level.
func (s Strictness) Multiplier() float64 {
	switch s {
	case Low:
		return 1.5
	case High:
		return 0.7
	default:
		return 1.0
	}
}

// Options configures a calibration run.
type Options struct {
	Strictness Strictness

	// DetectDynamicElements earmarks highly flaky paths and synthesizes
	// ignore selectors for them.
	DetectDynamicElements bool

	// DynamicThreshold is the flakiness score at which a path counts as
	// dynamic. Default 50.
	DynamicThreshold float64

	// Flakiness tunes the underlying detector.
	Flakiness flakiness.Options
}

func (o *Options) defaults() {
	if o.Strictness == "" {
		o.Strictness = Medium
	}
	if o.DynamicThreshold <= 0 {
		o.DynamicThreshold = 50
	}
}

// Tolerance floors: calibration never emits settings tighter than these,
// however stable the samples.
const (
	minPositionTolerance = 2
	minSizeTolerance     = 5
	minTextThreshold     = 0.8
)

// Result is the calibration output: the derived settings plus the evidence
// they were derived from.
type Result struct {
	Settings   vistree.ComparisonSettings `json:"settings"`
	Confidence float64                    `json:"confidence"` // 0–100

	DynamicPaths []string                   `json:"dynamicPaths,omitempty"`
	Drift        DriftStats                 `json:"drift"`
	Flakiness    *vistree.FlakinessAnalysis `json:"flakiness,omitempty"`
}

// Calibrate runs the flakiness detector and pairwise drift aggregation over
// the samples and derives a tolerance profile.
func Calibrate(samples []*vistree.VisualTreeAnalysis, opts Options) (*Result, error) {
	if len(samples) < flakiness.MinSamples {
		return nil, fmt.Errorf("calibrate: got %d samples: %w", len(samples), flakiness.ErrInsufficientSamples)
	}
	opts.defaults()

	flaky, err := flakiness.Detect(samples, opts.Flakiness)
	if err != nil {
		return nil, err
	}

	var dynamicPaths []string
	var ignore []string
	if opts.DetectDynamicElements {
		for _, fe := range flaky.FlakyElements {
			if fe.Score >= opts.DynamicThreshold {
				dynamicPaths = append(dynamicPaths, fe.Path)
				if sel := synthesizeSelector(fe.Path); sel != "" {
					ignore = append(ignore, sel)
				}
			}
		}
		ignore = dedupe(ignore)
	}

	drift := aggregateDrift(samples)
	mult := opts.Strictness.Multiplier()

	settings := vistree.ComparisonSettings{
		PositionTolerance:       math.Max(minPositionTolerance, math.Ceil(drift.MaxPositionDrift*mult)),
		SizeTolerance:           math.Max(minSizeTolerance, math.Ceil(drift.MaxSizeVariance*100*mult)),
		TextSimilarityThreshold: math.Max(minTextThreshold, 1-drift.AvgTextDissimilarity*mult),
		ImportanceThreshold:     vistree.DefaultSettings().ImportanceThreshold,
	}
	if len(ignore) > 0 {
		settings.IgnoreElements = ignore
	}

	return &Result{
		Settings:     settings,
		Confidence:   confidence(len(samples), drift),
		DynamicPaths: dynamicPaths,
		Drift:        drift,
		Flakiness:    flaky,
	}, nil
}

// confidence blends a sample-count base with a stability term. More samples
// and less drift both push it toward 100.
func confidence(sampleCount int, d DriftStats) float64 {
	base := math.Min(100, 50+float64(sampleCount)*10)
	stability := 100 - (d.AvgPositionDrift*2 + d.AvgSizeVariance*100)
	c := (base + stability) / 2
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}

// synthesizeSelector builds a best-effort ignore selector from a flaky path.
// Element paths prefer id > class > tag; group paths target the rendering
// side marker attribute, since groups have no DOM element of their own.
func synthesizeSelector(path string) string {
	if rest, ok := strings.CutPrefix(path, "grp:"); ok {
		// Last path segment is the group's own type:label.
		if i := strings.LastIndexByte(rest, '/'); i >= 0 {
			rest = rest[i+1:]
		}
		return fmt.Sprintf(`[data-visual-group=%q]`, rest)
	}

	rest, ok := strings.CutPrefix(path, "el:")
	if !ok {
		return ""
	}
	// el:tag(#id)?(.class)?:n
	if i := strings.LastIndexByte(rest, ':'); i >= 0 {
		rest = rest[:i]
	}
	if i := strings.IndexByte(rest, '#'); i >= 0 {
		id := rest[i+1:]
		if j := strings.IndexByte(id, '.'); j >= 0 {
			id = id[:j]
		}
		return "#" + id
	}
	if i := strings.IndexByte(rest, '.'); i >= 0 {
		return rest[i:]
	}
	return rest
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
