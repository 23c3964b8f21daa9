package grouping

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vizdrift/vizdrift/vistree"
)

// semanticTags are the tags considered self-identifying when paired with an
// ARIA role.
var semanticTags = map[string]bool{
	"nav": true, "main": true, "header": true, "footer": true,
	"aside": true, "section": true, "article": true,
}

// assignSelectors derives a rootSelector for every group in the forest from
// its anchor (first leaf) node. Groups produced by the overflow pass already
// carry one.
func assignSelectors(groups []*vistree.VisualNodeGroup, all []*vistree.VisualNode) {
	for _, g := range groups {
		if g.RootSelector == "" {
			if anchor := firstLeaf(g); anchor != nil {
				g.RootSelector = selectorFor(anchor, all)
			}
		}
		var nested []*vistree.VisualNodeGroup
		for _, c := range g.Children {
			if c.Group != nil {
				nested = append(nested, c.Group)
			}
		}
		if len(nested) > 0 {
			assignSelectors(nested, all)
		}
	}
}

func firstLeaf(g *vistree.VisualNodeGroup) *vistree.VisualNode {
	for _, c := range g.Children {
		if c.Node != nil {
			return c.Node
		}
	}
	for _, c := range g.Children {
		if c.Group != nil {
			if n := firstLeaf(c.Group); n != nil {
				return n
			}
		}
	}
	return nil
}

// selectorFor builds a CSS-like selector identifying the node across
// snapshots. Priority: id > data-testid/data-* > aria-label > semantic tag
// with role > tag+class, with :nth-of-type only when siblings collide.
func selectorFor(n *vistree.VisualNode, all []*vistree.VisualNode) string {
	tag := strings.ToLower(n.TagName)
	if tag == "" {
		tag = "div"
	}

	if n.ID != "" {
		return "#" + n.ID
	}

	if v, ok := n.Attributes["data-testid"]; ok && v != "" {
		return fmt.Sprintf(`[data-testid=%q]`, v)
	}
	if key, val := firstDataAttr(n.Attributes); key != "" {
		return fmt.Sprintf(`[%s=%q]`, key, val)
	}

	if n.AriaLabel != "" {
		return fmt.Sprintf(`%s[aria-label=%q]`, tag, n.AriaLabel)
	}

	if semanticTags[tag] && n.Role != "" {
		return fmt.Sprintf(`%s[role=%q]`, tag, n.Role)
	}

	sel := tag
	class := n.FirstClass()
	if class != "" {
		sel += "." + class
	}

	// Disambiguate only when other nodes share the same tag+class.
	idx, dup := nthOfType(n, all)
	if dup {
		sel += fmt.Sprintf(":nth-of-type(%d)", idx)
	}
	return sel
}

// firstDataAttr returns the lexically first data-* attribute, so selector
// output is deterministic regardless of map order.
func firstDataAttr(attrs map[string]string) (key, val string) {
	var keys []string
	for k, v := range attrs {
		if strings.HasPrefix(k, "data-") && v != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return "", ""
	}
	sort.Strings(keys)
	return keys[0], attrs[keys[0]]
}

// nthOfType returns the node's 1-based index among same-tag+class peers,
// ordered by document position (y, then x), and whether peers exist at all.
func nthOfType(n *vistree.VisualNode, all []*vistree.VisualNode) (int, bool) {
	tag := strings.ToLower(n.TagName)
	class := n.FirstClass()

	var peers []*vistree.VisualNode
	for _, m := range all {
		if strings.ToLower(m.TagName) == tag && m.FirstClass() == class {
			peers = append(peers, m)
		}
	}
	if len(peers) < 2 {
		return 1, false
	}

	sort.SliceStable(peers, func(a, b int) bool {
		if peers[a].Rect.Y != peers[b].Rect.Y {
			return peers[a].Rect.Y < peers[b].Rect.Y
		}
		return peers[a].Rect.X < peers[b].Rect.X
	})
	for i, p := range peers {
		if p == n {
			return i + 1, true
		}
	}
	return 1, true
}
