package calibrate

import (
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/vizdrift/vizdrift/compare"
	"github.com/vizdrift/vizdrift/similarity"
	"github.com/vizdrift/vizdrift/vistree"
)

// DriftStats summarises pairwise movement between samples of the same page.
type DriftStats struct {
	MaxPositionDrift     float64 `json:"maxPositionDrift"` // px
	AvgPositionDrift     float64 `json:"avgPositionDrift"` // px
	MaxSizeVariance      float64 `json:"maxSizeVariance"`  // relative, 0–1
	AvgSizeVariance      float64 `json:"avgSizeVariance"`  // relative, 0–1
	AvgTextDissimilarity float64 `json:"avgTextDissimilarity"`
	PairCount            int     `json:"pairCount"`
}

// aggregateDrift collects drift observations across all N×(N−1)/2 sample
// pairs, preferring semantic-group signal and falling back to raw elements
// when group data is absent.
func aggregateDrift(samples []*vistree.VisualTreeAnalysis) DriftStats {
	var pos, size, textDissim []float64
	pairs := 0

	for i := 0; i < len(samples); i++ {
		for j := i + 1; j < len(samples); j++ {
			a, b := samples[i], samples[j]
			pairs++
			if a.HasGroups() && b.HasGroups() {
				collectGroupDrift(a, b, &pos, &size, &textDissim)
			} else {
				collectElementDrift(a, b, &pos, &size, &textDissim)
			}
		}
	}

	d := DriftStats{PairCount: pairs}
	if len(pos) > 0 {
		d.MaxPositionDrift = floats.Max(pos)
		d.AvgPositionDrift = stat.Mean(pos, nil)
	}
	if len(size) > 0 {
		d.MaxSizeVariance = floats.Max(size)
		d.AvgSizeVariance = stat.Mean(size, nil)
	}
	if len(textDissim) > 0 {
		d.AvgTextDissimilarity = stat.Mean(textDissim, nil)
	}
	return d
}

func collectGroupDrift(a, b *vistree.VisualTreeAnalysis, pos, size, textDissim *[]float64) {
	for _, c := range compare.MatchGroups(a.VisualNodeGroups, b.VisualNodeGroups) {
		*pos = append(*pos, c.Baseline.Bounds.CenterDistance(c.Current.Bounds))
		*size = append(*size, relativeSizeDelta(c.Baseline.Bounds, c.Current.Bounds))
		*textDissim = append(*textDissim, 1-similarity.Text(c.Baseline.Label, c.Current.Label))
	}
}

func collectElementDrift(a, b *vistree.VisualTreeAnalysis, pos, size, textDissim *[]float64) {
	byKey := map[string]*vistree.VisualNode{}
	seen := map[string]int{}
	for i := range a.Elements {
		n := &a.Elements[i]
		k := driftKey(n, seen)
		byKey[k] = n
	}

	seen = map[string]int{}
	for i := range b.Elements {
		n := &b.Elements[i]
		k := driftKey(n, seen)
		m, ok := byKey[k]
		if !ok {
			continue
		}
		*pos = append(*pos, m.Rect.CenterDistance(n.Rect))
		*size = append(*size, relativeSizeDelta(m.Rect, n.Rect))
		*textDissim = append(*textDissim, 1-similarity.Text(m.Text, n.Text))
	}
}

// driftKey matches elements across samples without positional data, using a
// per-sample occurrence index to disambiguate repeats.
func driftKey(n *vistree.VisualNode, seen map[string]int) string {
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
	base := sb.String()
	seen[base]++
	return base + ":" + strconv.Itoa(seen[base])
}

// relativeSizeDelta is the mean of the per-axis relative size changes.
func relativeSizeDelta(a, b vistree.BoundingRect) float64 {
	var dw, dh float64
	if a.Width > 0 {
		dw = math.Abs(b.Width-a.Width) / a.Width
	} else if b.Width > 0 {
		dw = 1
	}
	if a.Height > 0 {
		dh = math.Abs(b.Height-a.Height) / a.Height
	} else if b.Height > 0 {
		dh = 1
	}
	return (dw + dh) / 2
}
