package grouping

import (
	"strings"

	"github.com/vizdrift/vizdrift/vistree"
)

// detectOverflowGroups runs the second grouping pass: scrollable and
// fixed-dimension elements get dedicated groups, classified into semantic
// subtypes and expanded to their full scroll content size. Nested scroll
// regions are detected recursively down to the depth limit.
func detectOverflowGroups(nodes []*vistree.VisualNode, opts Options, depth int) []*vistree.VisualNodeGroup {
	if depth <= 0 {
		return nil
	}

	var out []*vistree.VisualNodeGroup
	for _, n := range nodes {
		if !isOverflowAnchor(n, opts.MinScrollRatio) {
			continue
		}

		g := &vistree.VisualNodeGroup{
			Type:         classifyOverflow(n),
			Label:        groupLabel(n),
			Bounds:       expandedBounds(n),
			Importance:   n.Importance,
			Children:     []vistree.GroupChild{vistree.NodeChild(n)},
			RootSelector: selectorFor(n, nodes),
		}

		// Adopt contained elements and recurse into contained scrollables.
		var inner []*vistree.VisualNode
		for _, m := range nodes {
			if m == n {
				continue
			}
			if g.Bounds.Contains(m.Rect) && m.Rect.Area() < n.Rect.Area() {
				inner = append(inner, m)
			}
		}
		for _, sub := range detectOverflowGroups(inner, opts, depth-1) {
			g.Children = append(g.Children, vistree.GroupChildOf(sub))
		}

		out = append(out, g)
	}
	return out
}

func isOverflowAnchor(n *vistree.VisualNode, minRatio float64) bool {
	if n.IsScrollable && n.ScrollRatio() >= minRatio {
		return true
	}
	return n.HasFixedDimensions.Width || n.HasFixedDimensions.Height
}

// expandedBounds grows the rendered box to the full scroll content size.
func expandedBounds(n *vistree.VisualNode) vistree.BoundingRect {
	r := n.Rect.Normalize()
	if sd := n.ScrollDimensions; sd != nil {
		w := r.Width
		h := r.Height
		if sd.ScrollWidth > w {
			w = sd.ScrollWidth
		}
		if sd.ScrollHeight > h {
			h = sd.ScrollHeight
		}
		r = vistree.Rect(r.X, r.Y, w, h)
	}
	return r
}

// classifyOverflow maps an overflow anchor to its semantic subtype by
// tag/class/role heuristics, falling back to the scroll direction.
func classifyOverflow(n *vistree.VisualNode) vistree.GroupType {
	tag := strings.ToLower(n.TagName)
	classes := strings.ToLower(strings.Join(n.ClassList, " "))

	switch {
	case tag == "table" || n.Role == "table" || n.Role == "grid" ||
		strings.Contains(classes, "table"):
		return vistree.GroupDataTable
	case tag == "pre" || tag == "code" ||
		strings.Contains(classes, "code") || strings.Contains(classes, "highlight"):
		return vistree.GroupCodeBlock
	case strings.Contains(classes, "carousel") || strings.Contains(classes, "slider") ||
		strings.Contains(classes, "swiper"):
		return vistree.GroupCarousel
	case n.Role == "dialog" || n.Role == "alertdialog" ||
		strings.Contains(classes, "modal"):
		return vistree.GroupModal
	case n.Role == "listbox" || n.Role == "menu" ||
		strings.Contains(classes, "dropdown"):
		return vistree.GroupDropdown
	}

	if sd := n.ScrollDimensions; sd != nil && n.IsScrollable {
		var rx, ry float64
		if sd.ClientWidth > 0 {
			rx = sd.ScrollWidth / sd.ClientWidth
		}
		if sd.ClientHeight > 0 {
			ry = sd.ScrollHeight / sd.ClientHeight
		}
		if rx > ry {
			return vistree.GroupScrollX
		}
		return vistree.GroupScrollY
	}
	return vistree.GroupFixedDim
}

// typeSpecificity ranks group types; a specialized group replaces a generic
// one when it ranks at least as high.
func typeSpecificity(t vistree.GroupType) int {
	switch t {
	case vistree.GroupContainer:
		return 0
	case vistree.GroupGeneric:
		return 1
	case vistree.GroupContent, vistree.GroupSection:
		return 2
	case vistree.GroupNavigation, vistree.GroupInteractive:
		return 3
	case vistree.GroupScrollX, vistree.GroupScrollY, vistree.GroupFixedDim:
		return 4
	case vistree.GroupDataTable, vistree.GroupCodeBlock, vistree.GroupCarousel,
		vistree.GroupModal, vistree.GroupDropdown:
		return 5
	}
	return 1
}

// mergeThreshold is the bounds overlap above which a specialized group may
// replace a generic one even without a selector match.
const mergeThreshold = 0.8

// mergeSpecialized folds the overflow pass into the general forest. A
// specialized group replaces a generic one when their root selectors match
// or when their bounds overlap enough and the specialized type is at least
// as specific (the cluster pass may already seed the same type, e.g. a table
// tag); unmatched specialized groups join the forest as new top-levels.
func mergeSpecialized(groups, specialized []*vistree.VisualNodeGroup) []*vistree.VisualNodeGroup {
	for _, s := range specialized {
		replaced := false
		for i, g := range groups {
			match := s.RootSelector != "" && s.RootSelector == g.RootSelector
			if !match {
				match = s.Bounds.OverlapRatio(g.Bounds) > mergeThreshold &&
					typeSpecificity(s.Type) >= typeSpecificity(g.Type)
			}
			if !match {
				continue
			}
			// Adopt the generic group's children that fall inside the
			// specialized bounds, then take its slot.
			for _, c := range g.Children {
				if s.Bounds.Contains(c.Bounds()) && !sameChild(s, c) {
					s.Children = append(s.Children, c)
				}
			}
			if g.Importance > s.Importance {
				s.Importance = g.Importance
			}
			groups[i] = s
			replaced = true
			break
		}
		if !replaced {
			groups = append(groups, s)
		}
	}
	return groups
}

func sameChild(g *vistree.VisualNodeGroup, c vistree.GroupChild) bool {
	for _, have := range g.Children {
		if have.Node != nil && have.Node == c.Node {
			return true
		}
		if have.Group != nil && have.Group == c.Group {
			return true
		}
	}
	return false
}
