package compare

import (
	"testing"

	"github.com/vizdrift/vizdrift/vistree"
)

func TestApplyIgnoreByID(t *testing.T) {
	a := rawAnalysis(
		el("div", "clock", 0, 0, 100, 20),
		el("div", "hero", 0, 40, 800, 400),
	)
	out := ApplyIgnore(a, []string{"#clock"})
	if len(out.Elements) != 1 || out.Elements[0].ID != "hero" {
		t.Errorf("filtered elements: %+v", out.Elements)
	}
	// Original is untouched.
	if len(a.Elements) != 2 {
		t.Errorf("input mutated: %d elements", len(a.Elements))
	}
}

func TestApplyIgnoreByClassAndTag(t *testing.T) {
	ad := vistree.VisualNode{TagName: "div", ClassList: []string{"ad-banner"}, Rect: vistree.Rect(0, 0, 100, 50)}
	iframe := vistree.VisualNode{TagName: "iframe", Rect: vistree.Rect(0, 60, 100, 50)}
	keep := vistree.VisualNode{TagName: "main", Rect: vistree.Rect(0, 120, 800, 400)}

	out := ApplyIgnore(rawAnalysis(ad, iframe, keep), []string{".ad-banner", "iframe"})
	if len(out.Elements) != 1 || out.Elements[0].TagName != "main" {
		t.Errorf("filtered elements: %+v", out.Elements)
	}
}

func TestApplyIgnoreTagClass(t *testing.T) {
	target := vistree.VisualNode{TagName: "span", ClassList: []string{"ticker"}}
	decoy := vistree.VisualNode{TagName: "div", ClassList: []string{"ticker"}}
	out := ApplyIgnore(rawAnalysis(target, decoy), []string{"span.ticker"})
	if len(out.Elements) != 1 || out.Elements[0].TagName != "div" {
		t.Errorf("tag.class should match tag and class together: %+v", out.Elements)
	}
}

func TestApplyIgnoreByAttribute(t *testing.T) {
	tracked := vistree.VisualNode{TagName: "div", Attributes: map[string]string{"data-dynamic": "true"}}
	other := vistree.VisualNode{TagName: "div", Attributes: map[string]string{"data-dynamic": "false"}}
	plain := vistree.VisualNode{TagName: "div"}

	out := ApplyIgnore(rawAnalysis(tracked, other, plain), []string{`[data-dynamic="true"]`})
	if len(out.Elements) != 2 {
		t.Errorf("value-matched attribute: got %d elements, want 2", len(out.Elements))
	}

	out = ApplyIgnore(rawAnalysis(tracked, other, plain), []string{"[data-dynamic]"})
	if len(out.Elements) != 1 {
		t.Errorf("presence-matched attribute: got %d elements, want 1", len(out.Elements))
	}
}

func TestApplyIgnoreGroupMarker(t *testing.T) {
	carousel := &vistree.VisualNodeGroup{Type: vistree.GroupCarousel, Label: "featured"}
	nav := &vistree.VisualNodeGroup{Type: vistree.GroupNavigation, Label: "menu"}
	a := &vistree.VisualTreeAnalysis{
		VisualNodeGroups: []*vistree.VisualNodeGroup{carousel, nav},
	}
	out := ApplyIgnore(a, []string{`[data-visual-group="carousel:featured"]`})
	if len(out.VisualNodeGroups) != 1 || out.VisualNodeGroups[0].Type != vistree.GroupNavigation {
		t.Errorf("group marker filter: %+v", out.VisualNodeGroups)
	}
}

func TestApplyIgnoreGroupByRootSelector(t *testing.T) {
	g := &vistree.VisualNodeGroup{Type: vistree.GroupSection, Label: "hero", RootSelector: "#hero"}
	a := &vistree.VisualTreeAnalysis{VisualNodeGroups: []*vistree.VisualNodeGroup{g}}
	out := ApplyIgnore(a, []string{"#hero"})
	if len(out.VisualNodeGroups) != 0 {
		t.Errorf("group should be removed via root selector: %+v", out.VisualNodeGroups)
	}
}

func TestApplyIgnoreNestedChildren(t *testing.T) {
	inner := &vistree.VisualNodeGroup{Type: vistree.GroupContent, Label: "ticker", RootSelector: "#ticker"}
	leaf := &vistree.VisualNode{TagName: "div", ID: "ticker-item"}
	outer := &vistree.VisualNodeGroup{
		Type:  vistree.GroupSection,
		Label: "feed",
		Children: []vistree.GroupChild{
			vistree.GroupChildOf(inner),
			vistree.NodeChild(leaf),
		},
	}
	a := &vistree.VisualTreeAnalysis{VisualNodeGroups: []*vistree.VisualNodeGroup{outer}}

	out := ApplyIgnore(a, []string{"#ticker", "#ticker-item"})
	if len(out.VisualNodeGroups) != 1 {
		t.Fatalf("outer group should survive")
	}
	if len(out.VisualNodeGroups[0].Children) != 0 {
		t.Errorf("nested matches should be pruned: %+v", out.VisualNodeGroups[0].Children)
	}
	// Input tree untouched.
	if len(outer.Children) != 2 {
		t.Errorf("input group mutated")
	}
}

func TestApplyIgnoreNoSelectors(t *testing.T) {
	a := rawAnalysis(el("div", "x", 0, 0, 10, 10))
	if got := ApplyIgnore(a, nil); got != a {
		t.Errorf("no selectors should return the input unchanged")
	}
	if got := ApplyIgnore(nil, []string{"#x"}); got != nil {
		t.Errorf("nil input should pass through")
	}
}
