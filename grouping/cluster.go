package grouping

import (
	"sort"
	"strings"

	"github.com/vizdrift/vizdrift/vistree"
)

// anchorRadiusFactor scales GroupingThreshold into the clustering radius.
const anchorRadiusFactor = 5

// clusterByProximity performs the flat clustering pass: nodes are visited in
// descending importance; each either joins the nearest existing group within
// the anchor radius or seeds a new one.
func clusterByProximity(nodes []*vistree.VisualNode, pageArea float64, opts Options) []*vistree.VisualNodeGroup {
	radius := anchorRadiusFactor * opts.GroupingThreshold

	var groups []*vistree.VisualNodeGroup

	for _, i := range byImportance(nodes) {
		n := nodes[i]
		if n.Importance < opts.ImportanceThreshold {
			continue
		}
		if pageArea > 0 && n.Rect.Area() > maxGroupAreaShare*pageArea {
			// Page-scale wrapper: a container, never a group.
			continue
		}

		best := -1
		bestDist := radius
		for gi, g := range groups {
			d := g.Bounds.OriginDistance(n.Rect)
			if d < bestDist {
				bestDist = d
				best = gi
			}
		}

		if best >= 0 {
			g := groups[best]
			g.Children = append(g.Children, vistree.NodeChild(n))
			g.Bounds = g.Bounds.Union(n.Rect)
			if n.Importance > g.Importance {
				g.Importance = n.Importance
			}
			continue
		}

		groups = append(groups, &vistree.VisualNodeGroup{
			Type:       semanticType(n),
			Label:      groupLabel(n),
			Bounds:     n.Rect.Normalize(),
			Importance: n.Importance,
			Children:   []vistree.GroupChild{vistree.NodeChild(n)},
		})
	}

	return groups
}

// buildHierarchy nests each group under the first strictly larger group that
// fully contains it. One level of nesting only: nested groups never receive
// children of their own here.
func buildHierarchy(groups []*vistree.VisualNodeGroup) []*vistree.VisualNodeGroup {
	if len(groups) < 2 {
		return groups
	}

	order := make([]int, len(groups))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return groups[order[a]].Bounds.Area() > groups[order[b]].Bounds.Area()
	})

	nested := make([]bool, len(groups))
	for pos, gi := range order {
		g := groups[gi]
		for _, pj := range order[:pos] {
			p := groups[pj]
			if nested[pj] {
				continue
			}
			if p.Bounds.Area() > g.Bounds.Area() && p.Bounds.Contains(g.Bounds) {
				p.Children = append(p.Children, vistree.GroupChildOf(g))
				nested[gi] = true
				break
			}
		}
	}

	top := groups[:0]
	for i, g := range groups {
		if !nested[i] {
			top = append(top, g)
		}
	}
	return top
}

// semanticType derives the seed group type from its anchor node.
func semanticType(n *vistree.VisualNode) vistree.GroupType {
	tag := strings.ToLower(n.TagName)
	switch tag {
	case "nav":
		return vistree.GroupNavigation
	case "header", "footer", "aside", "main", "section", "article":
		return vistree.GroupSection
	case "table":
		return vistree.GroupDataTable
	}
	switch n.Role {
	case "navigation", "menubar":
		return vistree.GroupNavigation
	case "dialog":
		return vistree.GroupModal
	}
	if n.IsInteractive {
		return vistree.GroupInteractive
	}
	switch tag {
	case "a", "button", "input", "select", "textarea":
		return vistree.GroupInteractive
	}
	if strings.TrimSpace(n.Text) != "" {
		return vistree.GroupContent
	}
	return vistree.GroupGeneric
}

const maxLabelLen = 40

// groupLabel prefers truncated text content, falling back to the tag name.
func groupLabel(n *vistree.VisualNode) string {
	text := strings.Join(strings.Fields(n.Text), " ")
	if text != "" {
		return truncate(text, maxLabelLen)
	}
	if n.AriaLabel != "" {
		return truncate(n.AriaLabel, maxLabelLen)
	}
	return strings.ToLower(n.TagName)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
