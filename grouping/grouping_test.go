package grouping

import (
	"testing"

	"github.com/vizdrift/vizdrift/vistree"
)

func node(tag string, x, y, w, h, importance float64) vistree.VisualNode {
	return vistree.VisualNode{
		TagName:    tag,
		Rect:       vistree.Rect(x, y, w, h),
		Importance: importance,
	}
}

func TestBuildEmpty(t *testing.T) {
	if got := Build(nil, Options{}); got != nil {
		t.Errorf("empty input: got %d groups, want none", len(got))
	}
	if got := Build([]vistree.VisualNode{}, Options{}); got != nil {
		t.Errorf("zero-length input: got %d groups, want none", len(got))
	}
}

func TestBuildClustersByProximity(t *testing.T) {
	// Two tight clusters far apart.
	nodes := []vistree.VisualNode{
		node("div", 0, 0, 50, 20, 30),
		node("span", 10, 30, 40, 20, 25),
		node("div", 1000, 1000, 50, 20, 30),
		node("span", 1010, 1030, 40, 20, 25),
	}
	groups := Build(nodes, Options{})
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	for _, g := range groups {
		if g.NodeCount() != 2 {
			t.Errorf("group %q: got %d nodes, want 2", g.Label, g.NodeCount())
		}
	}
}

func TestBuildDropsLowImportance(t *testing.T) {
	nodes := []vistree.VisualNode{
		node("div", 0, 0, 50, 20, 30),
		node("span", 10, 30, 40, 20, 3), // below the default threshold of 10
	}
	groups := Build(nodes, Options{})
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if groups[0].NodeCount() != 1 {
		t.Errorf("low-importance node should be dropped, got %d nodes", groups[0].NodeCount())
	}
}

func TestBuildSkipsPageScaleWrapper(t *testing.T) {
	// The wrapper covers the whole page; it must not become a group anchor.
	nodes := []vistree.VisualNode{
		node("div", 0, 0, 1280, 2000, 90),
		node("nav", 0, 0, 1280, 60, 50),
		node("a", 20, 10, 80, 40, 30),
	}
	groups := Build(nodes, Options{Viewport: &vistree.Viewport{Width: 1280, Height: 800}})
	for _, g := range groups {
		if g.Bounds.Width >= 1280 && g.Bounds.Height >= 2000 {
			t.Errorf("page-scale wrapper became a group: %+v", g.Bounds)
		}
	}
}

func TestFilterVisible(t *testing.T) {
	vp := &vistree.Viewport{Width: 1280, Height: 800}
	nodes := []vistree.VisualNode{
		node("div", 100, 100, 200, 50, 30),   // inside
		node("div", 0, 900, 200, 50, 30),     // fully below the window
		node("span", 100, 100, 0, 0, 30),     // zero-area, inside
		node("span", 2000, 2000, 0, 0, 30),   // zero-area, outside
		node("div", 1200, 700, 200, 200, 30), // partial overlap
	}
	kept := filterVisible(nodes, vp)
	if len(kept) != 3 {
		t.Fatalf("got %d nodes, want 3", len(kept))
	}
	for _, n := range kept {
		if n.Rect.Y >= 900 || n.Rect.X >= 2000 {
			t.Errorf("node outside the window survived: %+v", n.Rect)
		}
	}
}

func TestGroupContainmentInvariant(t *testing.T) {
	nodes := []vistree.VisualNode{
		node("section", 0, 0, 400, 300, 40),
		node("p", 20, 20, 100, 30, 20),
		node("p", 20, 60, 100, 30, 20),
		node("button", 900, 900, 80, 30, 35),
	}
	groups := Build(nodes, Options{})

	var check func(g *vistree.VisualNodeGroup)
	check = func(g *vistree.VisualNodeGroup) {
		for _, c := range g.Children {
			if !g.Bounds.Contains(c.Bounds()) {
				t.Errorf("group %q bounds %+v do not contain child %+v",
					g.Label, g.Bounds, c.Bounds())
			}
			if c.Group != nil {
				check(c.Group)
			}
		}
	}
	for _, g := range groups {
		check(g)
	}
}

func TestBuildDeterministic(t *testing.T) {
	nodes := []vistree.VisualNode{
		node("nav", 0, 0, 800, 60, 55),
		node("a", 10, 10, 60, 40, 30),
		node("a", 80, 10, 60, 40, 30),
		node("main", 0, 100, 800, 600, 60),
		node("p", 20, 120, 300, 40, 25),
	}
	a := Build(nodes, Options{})
	b := Build(nodes, Options{})
	if len(a) != len(b) {
		t.Fatalf("group count differs between runs: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Type != b[i].Type || a[i].Label != b[i].Label ||
			a[i].RootSelector != b[i].RootSelector {
			t.Errorf("group %d differs between runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestSemanticType(t *testing.T) {
	tests := []struct {
		n    vistree.VisualNode
		want vistree.GroupType
	}{
		{vistree.VisualNode{TagName: "nav"}, vistree.GroupNavigation},
		{vistree.VisualNode{TagName: "div", Role: "navigation"}, vistree.GroupNavigation},
		{vistree.VisualNode{TagName: "header"}, vistree.GroupSection},
		{vistree.VisualNode{TagName: "table"}, vistree.GroupDataTable},
		{vistree.VisualNode{TagName: "button"}, vistree.GroupInteractive},
		{vistree.VisualNode{TagName: "div", IsInteractive: true}, vistree.GroupInteractive},
		{vistree.VisualNode{TagName: "div", Role: "dialog"}, vistree.GroupModal},
		{vistree.VisualNode{TagName: "div", Text: "hello"}, vistree.GroupContent},
		{vistree.VisualNode{TagName: "div"}, vistree.GroupGeneric},
	}
	for _, tt := range tests {
		if got := semanticType(&tt.n); got != tt.want {
			t.Errorf("semanticType(%s role=%s): got %q, want %q",
				tt.n.TagName, tt.n.Role, got, tt.want)
		}
	}
}

func TestGroupLabelTruncation(t *testing.T) {
	long := "this is a very long piece of text content that should be cut"
	n := vistree.VisualNode{TagName: "p", Text: long}
	label := groupLabel(&n)
	if len([]rune(label)) > maxLabelLen {
		t.Errorf("label not truncated: %d runes", len([]rune(label)))
	}

	// Fallback chain: text > aria-label > tag.
	n2 := vistree.VisualNode{TagName: "DIV", AriaLabel: "Sidebar"}
	if got := groupLabel(&n2); got != "Sidebar" {
		t.Errorf("aria fallback: got %q", got)
	}
	n3 := vistree.VisualNode{TagName: "DIV"}
	if got := groupLabel(&n3); got != "div" {
		t.Errorf("tag fallback: got %q", got)
	}
}
