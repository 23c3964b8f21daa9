// Package grouping clusters a flat list of rendered elements into a forest
// of semantically labeled visual regions. It is a pure, total function over
// its input: absent or empty input yields an empty forest, and it never
// panics on degenerate geometry.
package grouping

import (
	"sort"

	"github.com/vizdrift/vizdrift/vistree"
)

// Options tunes the grouping engine. Zero values take documented defaults,
// so callers can thread explicit configuration without global state.
type Options struct {
	// Viewport, when set, drops nodes fully outside the visible window.
	Viewport *vistree.Viewport

	// GroupingThreshold is the base clustering distance in px. A node joins
	// the nearest group whose origin is closer than 5× this value.
	GroupingThreshold float64

	// ImportanceThreshold drops low-signal nodes before clustering.
	ImportanceThreshold float64

	// MinScrollRatio is the content/client ratio below which a scrollable
	// element is not treated as an overflow region.
	MinScrollRatio float64

	// MaxScrollDepth bounds recursive nested-scroll detection.
	MaxScrollDepth int
}

func (o *Options) defaults() {
	if o.GroupingThreshold <= 0 {
		o.GroupingThreshold = 20
	}
	if o.ImportanceThreshold <= 0 {
		o.ImportanceThreshold = 10
	}
	if o.MinScrollRatio <= 0 {
		o.MinScrollRatio = 1.1
	}
	if o.MaxScrollDepth <= 0 {
		o.MaxScrollDepth = 3
	}
}

// maxGroupAreaShare: nodes covering more of the page than this are generic
// containers, never group anchors. Keeps one giant wrapper from swallowing
// the whole page.
const maxGroupAreaShare = 0.8

// Build clusters nodes into a two-level forest of visual regions, then
// overlays dedicated overflow/fixed-dimension groups detected in a second
// pass.
func Build(nodes []vistree.VisualNode, opts Options) []*vistree.VisualNodeGroup {
	opts.defaults()
	if len(nodes) == 0 {
		return nil
	}

	kept := filterVisible(nodes, opts.Viewport)
	if len(kept) == 0 {
		return nil
	}

	pageBounds := unionBounds(kept)
	pageArea := pageBounds.Area()
	if opts.Viewport != nil {
		va := opts.Viewport.Width * opts.Viewport.Height
		if va > pageArea {
			pageArea = va
		}
	}

	groups := clusterByProximity(kept, pageArea, opts)
	groups = buildHierarchy(groups)

	// Selectors must exist before the merge: the specialized/generic match
	// is keyed on them.
	assignSelectors(groups, kept)

	specialized := detectOverflowGroups(kept, opts, opts.MaxScrollDepth)
	groups = mergeSpecialized(groups, specialized)
	return groups
}

// filterVisible drops nodes with no intersection with the viewport window.
func filterVisible(nodes []vistree.VisualNode, vp *vistree.Viewport) []*vistree.VisualNode {
	out := make([]*vistree.VisualNode, 0, len(nodes))
	var window vistree.BoundingRect
	if vp != nil {
		window = vistree.Rect(vp.ScrollX, vp.ScrollY, vp.Width, vp.Height)
	}
	for i := range nodes {
		n := &nodes[i]
		if vp != nil && !window.Empty() {
			r := n.Rect.Normalize()
			if r.Empty() {
				// Zero-area rects never intersect; keep them only when
				// their point lies inside the window.
				if !window.Contains(r) {
					continue
				}
			} else if r.Intersect(window).Empty() {
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

func unionBounds(nodes []*vistree.VisualNode) vistree.BoundingRect {
	var u vistree.BoundingRect
	for _, n := range nodes {
		u = u.Union(n.Rect)
	}
	return u
}

// byImportance returns node indices ordered by descending importance,
// original order breaking ties so output is deterministic.
func byImportance(nodes []*vistree.VisualNode) []int {
	idx := make([]int, len(nodes))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return nodes[idx[a]].Importance > nodes[idx[b]].Importance
	})
	return idx
}
