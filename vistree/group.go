package vistree

// GroupType is the semantic classification of a visual region.
type GroupType string

const (
	GroupNavigation  GroupType = "navigation"
	GroupSection     GroupType = "section"
	GroupInteractive GroupType = "interactive"
	GroupContainer   GroupType = "container"
	GroupGeneric     GroupType = "group"
	GroupContent     GroupType = "content"
	GroupDataTable   GroupType = "data-table"
	GroupCodeBlock   GroupType = "code-block"
	GroupCarousel    GroupType = "carousel"
	GroupModal       GroupType = "modal"
	GroupDropdown    GroupType = "dropdown"
	GroupScrollX     GroupType = "scroll-x"
	GroupScrollY     GroupType = "scroll-y"
	GroupFixedDim    GroupType = "fixed-dimension"
)

// GroupChild is the tagged union of the two things a group can contain.
// Exactly one of Node or Group is set.
type GroupChild struct {
	Node  *VisualNode      `json:"node,omitempty"`
	Group *VisualNodeGroup `json:"group,omitempty"`
}

// NodeChild wraps a leaf element.
func NodeChild(n *VisualNode) GroupChild { return GroupChild{Node: n} }

// GroupChildOf wraps a nested group.
func GroupChildOf(g *VisualNodeGroup) GroupChild { return GroupChild{Group: g} }

// IsGroup reports whether the child is a nested group.
func (c GroupChild) IsGroup() bool { return c.Group != nil }

// Bounds returns the child's bounding rect regardless of variant.
func (c GroupChild) Bounds() BoundingRect {
	if c.Group != nil {
		return c.Group.Bounds
	}
	if c.Node != nil {
		return c.Node.Rect
	}
	return BoundingRect{}
}

// VisualNodeGroup is a clustered, semantically labeled visual region.
// Built once by the grouping engine; the comparator never mutates it.
type VisualNodeGroup struct {
	Type       GroupType    `json:"type"`
	Label      string       `json:"label"`
	Bounds     BoundingRect `json:"bounds"`
	Importance float64      `json:"importance"`
	Children   []GroupChild `json:"children"`

	// RootSelector is a CSS-like string identifying the region's anchor
	// element. It, not raw position, is the stable key used for
	// cross-snapshot re-identification.
	RootSelector string `json:"rootSelector,omitempty"`
}

// NodeCount returns the number of leaf nodes in the group, recursively.
func (g *VisualNodeGroup) NodeCount() int {
	n := 0
	for _, c := range g.Children {
		if c.Group != nil {
			n += c.Group.NodeCount()
		} else if c.Node != nil {
			n++
		}
	}
	return n
}
