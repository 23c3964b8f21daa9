package compare

import (
	"github.com/vizdrift/vizdrift/vistree"
)

// Correspondence is a best-effort pairing between a group in one snapshot
// and a group in another, used when path-based matching fails (reorder,
// restyle). It feeds movement analysis and calibration statistics.
type Correspondence struct {
	Baseline *vistree.VisualNodeGroup `json:"-"`
	Current  *vistree.VisualNodeGroup `json:"-"`

	BaselinePath string `json:"baselinePath"`
	CurrentPath  string `json:"currentPath"`

	// Shift is the position delta from baseline to current bounds origin.
	ShiftX float64 `json:"shiftX"`
	ShiftY float64 `json:"shiftY"`

	// SizeDelta is the width/height change.
	SizeDeltaW float64 `json:"sizeDeltaW"`
	SizeDeltaH float64 `json:"sizeDeltaH"`

	// Confidence is the blended match score that accepted this pairing.
	Confidence float64 `json:"confidence"`
}

// Scoring weights: distance dominates, type agreement and overlap refine.
const (
	distanceWeight = 0.6
	typeWeight     = 0.2
	overlapWeight  = 0.2

	// acceptScore is the blended score a candidate must exceed.
	acceptScore = 0.5

	// partialTypeBonus is the type term when the types differ.
	partialTypeBonus = 0.5
)

// MatchGroups pairs unmatched baseline groups with unmatched current groups.
// Greedy first-match-wins: each baseline group takes the best-scoring
// remaining candidate, which later groups cannot reuse. Not globally
// optimal; an assignment solver could replace this behind the same
// signature.
func MatchGroups(baseline, current []*vistree.VisualNodeGroup) []Correspondence {
	if len(baseline) == 0 || len(current) == 0 {
		return nil
	}

	consumed := make([]bool, len(current))
	var out []Correspondence

	for _, g1 := range baseline {
		best := -1
		bestScore := acceptScore
		for j, g2 := range current {
			if consumed[j] {
				continue
			}
			s := matchScore(g1, g2)
			if s > bestScore {
				bestScore = s
				best = j
			}
		}
		if best < 0 {
			continue
		}
		consumed[best] = true
		g2 := current[best]
		out = append(out, Correspondence{
			Baseline:     g1,
			Current:      g2,
			BaselinePath: GroupPath(g1, ""),
			CurrentPath:  GroupPath(g2, ""),
			ShiftX:       g2.Bounds.X - g1.Bounds.X,
			ShiftY:       g2.Bounds.Y - g1.Bounds.Y,
			SizeDeltaW:   g2.Bounds.Width - g1.Bounds.Width,
			SizeDeltaH:   g2.Bounds.Height - g1.Bounds.Height,
			Confidence:   bestScore,
		})
	}
	return out
}

// matchScore blends normalized center distance, type agreement, and bounds
// overlap into a 0–1 candidate score.
func matchScore(g1, g2 *vistree.VisualNodeGroup) float64 {
	dist := g1.Bounds.CenterDistance(g2.Bounds)

	// Normalize against the diagonal of the union of both bounds: local,
	// deterministic, and scale-free for groups of any size.
	norm := g1.Bounds.Union(g2.Bounds).Diagonal()
	nd := 1.0
	if norm > 0 {
		nd = dist / norm
		if nd > 1 {
			nd = 1
		}
	}

	typeBonus := partialTypeBonus
	if g1.Type == g2.Type {
		typeBonus = 1
	}

	overlap := g1.Bounds.OverlapRatio(g2.Bounds)

	return distanceWeight*(1-nd) + typeWeight*typeBonus + overlapWeight*overlap
}
