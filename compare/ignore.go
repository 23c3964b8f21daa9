package compare

import (
	"strings"

	"github.com/vizdrift/vizdrift/vistree"
)

// ApplyIgnore returns a copy of the snapshot with elements and groups
// matching any of the selectors removed. This is the settings round-trip:
// calibration synthesizes ignoreElements, and the caller applies them to
// both snapshots before diffing.
//
// Supported selector forms are the ones calibration emits: "#id", ".class",
// "tag", "tag.class", `[attr="value"]`, "[attr]", and the group marker
// `[data-visual-group="type:label"]`.
func ApplyIgnore(a *vistree.VisualTreeAnalysis, selectors []string) *vistree.VisualTreeAnalysis {
	if a == nil || len(selectors) == 0 {
		return a
	}

	sels := make([]ignoreSelector, 0, len(selectors))
	for _, s := range selectors {
		if sel, ok := parseSelector(s); ok {
			sels = append(sels, sel)
		}
	}
	if len(sels) == 0 {
		return a
	}

	out := *a
	out.Elements = nil
	for i := range a.Elements {
		if !anyMatchNode(sels, &a.Elements[i]) {
			out.Elements = append(out.Elements, a.Elements[i])
		}
	}
	out.VisualNodeGroups = filterGroups(a.VisualNodeGroups, sels)
	out.Statistics.TotalElements = len(out.Elements)
	return &out
}

func filterGroups(forest []*vistree.VisualNodeGroup, sels []ignoreSelector) []*vistree.VisualNodeGroup {
	var out []*vistree.VisualNodeGroup
	for _, g := range forest {
		if anyMatchGroup(sels, g) {
			continue
		}
		kept := *g
		kept.Children = nil
		for _, c := range g.Children {
			switch {
			case c.Group != nil:
				if sub := filterGroups([]*vistree.VisualNodeGroup{c.Group}, sels); len(sub) > 0 {
					kept.Children = append(kept.Children, vistree.GroupChildOf(sub[0]))
				}
			case c.Node != nil:
				if !anyMatchNode(sels, c.Node) {
					kept.Children = append(kept.Children, c)
				}
			}
		}
		out = append(out, &kept)
	}
	return out
}

// groupMarkerAttr is the synthetic attribute calibration uses to target
// semantic groups, which have no DOM element of their own.
const groupMarkerAttr = "data-visual-group"

type ignoreSelector struct {
	id    string
	class string
	tag   string
	attr  string
	value string // empty means presence-only
}

func parseSelector(s string) (ignoreSelector, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ignoreSelector{}, false
	}
	switch {
	case strings.HasPrefix(s, "#"):
		return ignoreSelector{id: s[1:]}, s[1:] != ""
	case strings.HasPrefix(s, "."):
		return ignoreSelector{class: s[1:]}, s[1:] != ""
	case strings.HasPrefix(s, "["):
		body := strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
		if eq := strings.IndexByte(body, '='); eq >= 0 {
			val := strings.Trim(body[eq+1:], `"'`)
			return ignoreSelector{attr: body[:eq], value: val}, body[:eq] != ""
		}
		return ignoreSelector{attr: body}, body != ""
	}
	// tag or tag.class
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		return ignoreSelector{tag: s[:dot], class: s[dot+1:]}, true
	}
	return ignoreSelector{tag: s}, true
}

func anyMatchNode(sels []ignoreSelector, n *vistree.VisualNode) bool {
	for _, s := range sels {
		if s.matchNode(n) {
			return true
		}
	}
	return false
}

func anyMatchGroup(sels []ignoreSelector, g *vistree.VisualNodeGroup) bool {
	for _, s := range sels {
		if s.matchGroup(g) {
			return true
		}
	}
	return false
}

func (s ignoreSelector) matchNode(n *vistree.VisualNode) bool {
	if s.id != "" {
		return n.ID == s.id
	}
	if s.attr != "" {
		if s.attr == groupMarkerAttr {
			return false
		}
		v, ok := n.Attributes[s.attr]
		if !ok {
			return false
		}
		return s.value == "" || v == s.value
	}
	if s.tag != "" && !strings.EqualFold(n.TagName, s.tag) {
		return false
	}
	if s.class != "" {
		for _, c := range n.ClassList {
			if c == s.class {
				return true
			}
		}
		return false
	}
	return s.tag != ""
}

func (s ignoreSelector) matchGroup(g *vistree.VisualNodeGroup) bool {
	if s.attr == groupMarkerAttr {
		return s.value == "" || s.value == string(g.Type)+":"+g.Label
	}
	// DOM-shaped selectors match a group through its root selector.
	if s.id != "" {
		return g.RootSelector == "#"+s.id
	}
	return false
}
