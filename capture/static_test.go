package capture

import (
	"strings"
	"testing"
)

const sampleHTML = `<!DOCTYPE html>
<html>
<head><title>Shop</title><script>var x=1;</script><style>body{}</style></head>
<body>
  <nav id="topnav" role="navigation"><a href="/">Home</a><a href="/shop">Shop</a></nav>
  <main>
    <h1>Welcome to the shop</h1>
    <section class="hero wide" aria-label="Hero">
      <p>Find everything you need in one place today</p>
      <button data-testid="cta">Buy now</button>
    </section>
  </main>
  <footer>© 2026</footer>
</body>
</html>`

func TestParseStatic(t *testing.T) {
	a, err := ParseStatic(strings.NewReader(sampleHTML), "https://example.com", Options{PageID: "shop"})
	if err != nil {
		t.Fatal(err)
	}

	if a.PageID != "shop" || a.URL != "https://example.com" {
		t.Errorf("identity: pageID=%q url=%q", a.PageID, a.URL)
	}
	if !a.Statistics.StructureOnlyMode {
		t.Errorf("static capture should be structure-only")
	}
	if a.HasGroups() {
		t.Errorf("structure-only snapshots carry no groups")
	}
	if a.ID == "" || a.Timestamp == 0 {
		t.Errorf("id/timestamp not assigned: %q %d", a.ID, a.Timestamp)
	}

	byTag := map[string]int{}
	for _, e := range a.Elements {
		byTag[e.TagName]++
	}
	// Head machinery is skipped entirely.
	for _, skipped := range []string{"script", "style", "title", "head", "html"} {
		if byTag[skipped] != 0 {
			t.Errorf("%s should be skipped", skipped)
		}
	}
	if byTag["nav"] != 1 || byTag["a"] != 2 || byTag["button"] != 1 {
		t.Errorf("element counts: %v", byTag)
	}
}

func TestParseStaticAttributes(t *testing.T) {
	a, err := ParseStatic(strings.NewReader(sampleHTML), "https://example.com", Options{})
	if err != nil {
		t.Fatal(err)
	}

	var nav, section, button *elementRef
	for i := range a.Elements {
		e := &a.Elements[i]
		switch {
		case e.ID == "topnav":
			nav = &elementRef{e.TagName, e.Role, e.AriaLabel, e.Attributes, e.ClassList, e.IsInteractive}
		case e.TagName == "section":
			section = &elementRef{e.TagName, e.Role, e.AriaLabel, e.Attributes, e.ClassList, e.IsInteractive}
		case e.TagName == "button":
			button = &elementRef{e.TagName, e.Role, e.AriaLabel, e.Attributes, e.ClassList, e.IsInteractive}
		}
	}

	if nav == nil || nav.role != "navigation" {
		t.Fatalf("nav not extracted: %+v", nav)
	}
	if section == nil || section.ariaLabel != "Hero" {
		t.Fatalf("section aria-label lost: %+v", section)
	}
	if len(section.classes) != 2 || section.classes[0] != "hero" {
		t.Errorf("section classes: %v", section.classes)
	}
	if button == nil || button.attrs["data-testid"] != "cta" {
		t.Fatalf("button data attribute lost: %+v", button)
	}
	if !button.interactive {
		t.Errorf("button should be interactive")
	}
}

type elementRef struct {
	tag, role, ariaLabel string
	attrs                map[string]string
	classes              []string
	interactive          bool
}

func TestParseStaticDirectText(t *testing.T) {
	const htmlDoc = `<html><body><div>outer <span>inner</span> tail</div></body></html>`
	a, err := ParseStatic(strings.NewReader(htmlDoc), "https://example.com", Options{})
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range a.Elements {
		if e.TagName == "div" {
			// Only the div's own text children, not the span's.
			if e.Text != "outer tail" {
				t.Errorf("direct text: got %q, want %q", e.Text, "outer tail")
			}
			return
		}
	}
	t.Fatal("div not found")
}

func TestParseStaticMalformed(t *testing.T) {
	// The HTML5 parser is forgiving; half-open tags still produce a tree.
	a, err := ParseStatic(strings.NewReader("<div><p>unclosed"), "https://example.com", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Elements) == 0 {
		t.Errorf("malformed input should still yield elements")
	}
}
