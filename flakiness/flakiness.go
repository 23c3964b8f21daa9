// Package flakiness aggregates repeated same-page snapshots into per-path
// variance statistics, separating rendering noise from real change.
package flakiness

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/vizdrift/vizdrift/compare"
	"github.com/vizdrift/vizdrift/vistree"
)

// ErrInsufficientSamples is returned when fewer than two samples are given.
// Detection over a single sample has no variance to measure; callers must
// supply more input, not retry.
var ErrInsufficientSamples = errors.New("flakiness: need at least 2 samples")

// MinSamples is the smallest sample set the detector accepts.
const MinSamples = 2

// Options tunes the detector. Zero values take documented defaults.
type Options struct {
	// PositionThreshold buckets x/y values; jitter below it is invisible.
	PositionThreshold float64

	// SizeThreshold buckets width/height values.
	SizeThreshold float64

	// FlakinessThreshold is the per-property variance above which a
	// property counts as flaky.
	FlakinessThreshold float64
}

func (o *Options) defaults() {
	if o.PositionThreshold <= 0 {
		o.PositionThreshold = 5
	}
	if o.SizeThreshold <= 0 {
		o.SizeThreshold = 10
	}
	if o.FlakinessThreshold <= 0 {
		o.FlakinessThreshold = 0.2
	}
}

// property categories for flakinessType classification.
var propCategory = map[string]vistree.FlakinessType{
	"x":          vistree.FlakyPosition,
	"y":          vistree.FlakyPosition,
	"width":      vistree.FlakySize,
	"height":     vistree.FlakySize,
	"text":       vistree.FlakyText,
	"label":      vistree.FlakyText,
	"fontSize":   vistree.FlakyStyle,
	"importance": vistree.FlakyImportance,
	"existence":  vistree.FlakyExistence,
}

// observations accumulates bucketed values for one path.
type observations struct {
	props    map[string]map[string]int // property → bucket → count
	presence int                       // samples containing the path
}

// Detect analyses N samples of the same page and reports which paths vary.
// Raw-element paths and semantic-group paths are tracked independently.
func Detect(samples []*vistree.VisualTreeAnalysis, opts Options) (*vistree.FlakinessAnalysis, error) {
	if len(samples) < MinSamples {
		return nil, fmt.Errorf("flakiness: got %d samples: %w", len(samples), ErrInsufficientSamples)
	}
	opts.defaults()

	paths := make(map[string]*observations)

	for _, s := range samples {
		recordElements(paths, s, opts)
		recordGroups(paths, s, opts)
	}

	sampleCount := len(samples)
	keys := make([]string, 0, len(paths))
	for k := range paths {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var flaky []vistree.FlakyElement
	for _, path := range keys {
		obs := paths[path]
		fe := analyzePath(path, obs, sampleCount, opts)
		if fe != nil {
			flaky = append(flaky, *fe)
		}
	}

	overall := 0.0
	if len(paths) > 0 {
		overall = 100 * float64(len(flaky)) / float64(len(paths))
	}

	return &vistree.FlakinessAnalysis{
		SampleCount:   sampleCount,
		TotalPaths:    len(paths),
		FlakyElements: flaky,
		OverallScore:  overall,
	}, nil
}

// analyzePath computes per-property variances for one path and returns a
// FlakyElement when any property crosses the flakiness threshold.
func analyzePath(path string, obs *observations, sampleCount int, opts Options) *vistree.FlakyElement {
	occurrenceRate := float64(obs.presence) / float64(sampleCount)

	type flagged struct {
		prop     string
		variance float64
		values   map[string]int
	}
	var hits []flagged

	props := make([]string, 0, len(obs.props))
	for p := range obs.props {
		props = append(props, p)
	}
	sort.Strings(props)

	for _, prop := range props {
		buckets := obs.props[prop]
		most := 0
		for _, c := range buckets {
			if c > most {
				most = c
			}
		}
		// Variance over the samples where the path was observed; absence
		// is charged to the existence property, not to every value.
		variance := 1 - float64(most)/float64(obs.presence)
		if variance > opts.FlakinessThreshold {
			hits = append(hits, flagged{prop, variance, buckets})
		}
	}

	if occurrenceRate < 1 {
		ev := 1 - occurrenceRate
		if ev > opts.FlakinessThreshold {
			hits = append(hits, flagged{"existence", ev, map[string]int{"present": obs.presence, "absent": sampleCount - obs.presence}})
		}
	}

	if len(hits) == 0 {
		return nil
	}

	var variations []vistree.Variation
	sum := 0.0
	categories := map[vistree.FlakinessType]float64{}
	for _, h := range hits {
		variations = append(variations, vistree.Variation{
			Property: h.prop,
			Values:   h.values,
			Variance: h.variance,
		})
		sum += h.variance
		categories[propCategory[h.prop]] += h.variance
	}

	ftype := vistree.FlakyMixed
	if len(categories) == 1 {
		for c := range categories {
			ftype = c
		}
	}

	return &vistree.FlakyElement{
		Path:           path,
		FlakinessType:  ftype,
		Score:          100 * sum / float64(len(hits)),
		Variations:     variations,
		OccurrenceRate: occurrenceRate,
	}
}

// Dominant resolves a mixed flakiness record to the category with the
// largest summed variance, for reporting.
func Dominant(fe *vistree.FlakyElement) vistree.FlakinessType {
	if fe.FlakinessType != vistree.FlakyMixed {
		return fe.FlakinessType
	}
	sums := map[vistree.FlakinessType]float64{}
	for _, v := range fe.Variations {
		sums[propCategory[v.Property]] += v.Variance
	}
	best := vistree.FlakyMixed
	bestSum := -1.0
	cats := make([]string, 0, len(sums))
	for c := range sums {
		cats = append(cats, string(c))
	}
	sort.Strings(cats)
	for _, c := range cats {
		if sums[vistree.FlakinessType(c)] > bestSum {
			bestSum = sums[vistree.FlakinessType(c)]
			best = vistree.FlakinessType(c)
		}
	}
	return best
}

func recordElements(paths map[string]*observations, s *vistree.VisualTreeAnalysis, opts Options) {
	seen := map[string]int{}
	for i := range s.Elements {
		n := &s.Elements[i]
		base := stableElementKey(n)
		seen[base]++ // nth occurrence disambiguates repeated tag+class
		path := fmt.Sprintf("el:%s:%d", base, seen[base])

		obs := getObs(paths, path)
		obs.presence++
		record(obs, "x", bucketNum(n.Rect.X, opts.PositionThreshold))
		record(obs, "y", bucketNum(n.Rect.Y, opts.PositionThreshold))
		record(obs, "width", bucketNum(n.Rect.Width, opts.SizeThreshold))
		record(obs, "height", bucketNum(n.Rect.Height, opts.SizeThreshold))
		record(obs, "text", n.Text)
		record(obs, "fontSize", n.Style.FontSize)
		record(obs, "importance", bucketNum(n.Importance, 1))
	}
}

func recordGroups(paths map[string]*observations, s *vistree.VisualTreeAnalysis, opts Options) {
	if !s.HasGroups() {
		return
	}
	flat := compare.FlattenGroups(s.VisualNodeGroups)
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		g := flat[k]
		path := "grp:" + k
		obs := getObs(paths, path)
		obs.presence++
		record(obs, "x", bucketNum(g.Bounds.X, opts.PositionThreshold))
		record(obs, "y", bucketNum(g.Bounds.Y, opts.PositionThreshold))
		record(obs, "width", bucketNum(g.Bounds.Width, opts.SizeThreshold))
		record(obs, "height", bucketNum(g.Bounds.Height, opts.SizeThreshold))
		record(obs, "label", g.Label)
		record(obs, "importance", bucketNum(g.Importance, 1))
	}
}

func getObs(paths map[string]*observations, path string) *observations {
	obs, ok := paths[path]
	if !ok {
		obs = &observations{props: map[string]map[string]int{}}
		paths[path] = obs
	}
	return obs
}

func record(obs *observations, prop, bucket string) {
	m, ok := obs.props[prop]
	if !ok {
		m = map[string]int{}
		obs.props[prop] = m
	}
	m[bucket]++
}

// bucketNum rounds v to the nearest multiple of step and formats it, so
// sub-threshold jitter lands in one bucket.
func bucketNum(v, step float64) string {
	if step <= 0 {
		step = 1
	}
	return strconv.FormatFloat(math.Round(v/step)*step, 'f', -1, 64)
}

// stableElementKey identifies an element across samples without positional
// data, which would defeat jitter bucketing.
func stableElementKey(n *vistree.VisualNode) string {
	var sb strings.Builder
	sb.WriteString(strings.ToLower(n.TagName))
	if n.ID != "" {
		sb.WriteByte('#')
		sb.WriteString(n.ID)
	}
	if fc := n.FirstClass(); fc != "" {
		sb.WriteByte('.')
		sb.WriteString(fc)
	}
	return sb.String()
}
