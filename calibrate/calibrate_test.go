package calibrate

import (
	"errors"
	"testing"

	"github.com/vizdrift/vizdrift/flakiness"
	"github.com/vizdrift/vizdrift/vistree"
)

func staticSample() *vistree.VisualTreeAnalysis {
	return &vistree.VisualTreeAnalysis{
		Elements: []vistree.VisualNode{
			{TagName: "div", ID: "hero", Rect: vistree.Rect(0, 0, 800, 400), Text: "Welcome"},
			{TagName: "button", ID: "cta", Rect: vistree.Rect(100, 420, 120, 40), Text: "Buy"},
		},
	}
}

func TestCalibrateInsufficientSamples(t *testing.T) {
	if _, err := Calibrate(nil, Options{}); !errors.Is(err, flakiness.ErrInsufficientSamples) {
		t.Errorf("nil samples: got %v", err)
	}
	if _, err := Calibrate([]*vistree.VisualTreeAnalysis{staticSample()}, Options{}); !errors.Is(err, flakiness.ErrInsufficientSamples) {
		t.Errorf("one sample: got %v", err)
	}
	if _, err := Calibrate([]*vistree.VisualTreeAnalysis{staticSample(), staticSample()}, Options{}); err != nil {
		t.Errorf("two samples should succeed: %v", err)
	}
}

func TestCalibrateStaticConvergence(t *testing.T) {
	// Three identical samples at medium strictness converge to the floors
	// with high confidence.
	samples := []*vistree.VisualTreeAnalysis{staticSample(), staticSample(), staticSample()}
	res, err := Calibrate(samples, Options{Strictness: Medium})
	if err != nil {
		t.Fatal(err)
	}
	if res.Settings.PositionTolerance != 2 {
		t.Errorf("position tolerance: got %v, want 2", res.Settings.PositionTolerance)
	}
	if res.Settings.SizeTolerance != 5 {
		t.Errorf("size tolerance: got %v, want 5", res.Settings.SizeTolerance)
	}
	if res.Confidence < 90 {
		t.Errorf("confidence: got %v, want >= 90", res.Confidence)
	}
	if len(res.DynamicPaths) != 0 {
		t.Errorf("static page should have no dynamic paths: %v", res.DynamicPaths)
	}
}

func TestCalibrateFloors(t *testing.T) {
	for _, s := range []Strictness{Low, Medium, High} {
		res, err := Calibrate([]*vistree.VisualTreeAnalysis{staticSample(), staticSample()}, Options{Strictness: s})
		if err != nil {
			t.Fatal(err)
		}
		if res.Settings.PositionTolerance < 2 {
			t.Errorf("%s: position tolerance %v below floor", s, res.Settings.PositionTolerance)
		}
		if res.Settings.SizeTolerance < 5 {
			t.Errorf("%s: size tolerance %v below floor", s, res.Settings.SizeTolerance)
		}
		if res.Settings.TextSimilarityThreshold < 0.8 {
			t.Errorf("%s: text threshold %v below floor", s, res.Settings.TextSimilarityThreshold)
		}
	}
}

func TestCalibrateStrictnessScaling(t *testing.T) {
	drift := func(x float64) *vistree.VisualTreeAnalysis {
		return &vistree.VisualTreeAnalysis{
			Elements: []vistree.VisualNode{
				{TagName: "div", ID: "hero", Rect: vistree.Rect(x, 0, 800, 400)},
			},
		}
	}
	// 20px horizontal drift between the two samples.
	samples := []*vistree.VisualTreeAnalysis{drift(0), drift(20)}

	low, err := Calibrate(samples, Options{Strictness: Low})
	if err != nil {
		t.Fatal(err)
	}
	high, err := Calibrate(samples, Options{Strictness: High})
	if err != nil {
		t.Fatal(err)
	}
	// low: ceil(20 × 1.5) = 30; high: ceil(20 × 0.7) = 14.
	if low.Settings.PositionTolerance != 30 {
		t.Errorf("low tolerance: got %v, want 30", low.Settings.PositionTolerance)
	}
	if high.Settings.PositionTolerance != 14 {
		t.Errorf("high tolerance: got %v, want 14", high.Settings.PositionTolerance)
	}
}

func TestCalibrateDynamicDetection(t *testing.T) {
	mk := func(text string) *vistree.VisualTreeAnalysis {
		return &vistree.VisualTreeAnalysis{
			Elements: []vistree.VisualNode{
				{TagName: "div", ID: "hero", Rect: vistree.Rect(0, 0, 800, 400), Text: "stable"},
				{TagName: "span", ID: "clock", Rect: vistree.Rect(700, 10, 80, 20), Text: text},
			},
		}
	}
	samples := []*vistree.VisualTreeAnalysis{mk("12:01"), mk("12:02"), mk("12:03")}

	res, err := Calibrate(samples, Options{DetectDynamicElements: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.DynamicPaths) != 1 {
		t.Fatalf("dynamic paths: got %v, want one", res.DynamicPaths)
	}
	if len(res.Settings.IgnoreElements) != 1 || res.Settings.IgnoreElements[0] != "#clock" {
		t.Errorf("ignore selectors: got %v, want [#clock]", res.Settings.IgnoreElements)
	}

	// Same samples without detection: no selectors synthesized.
	res, err = Calibrate(samples, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Settings.IgnoreElements) != 0 {
		t.Errorf("detection off: got %v", res.Settings.IgnoreElements)
	}
}

func TestSynthesizeSelector(t *testing.T) {
	tests := []struct {
		path, want string
	}{
		{"el:span#clock:1", "#clock"},
		{"el:div#hero.banner:1", "#hero"},
		{"el:li.item:3", ".item"},
		{"el:footer:1", "footer"},
		{"grp:carousel:featured", `[data-visual-group="carousel:featured"]`},
		{"grp:section:hero/interactive:buy", `[data-visual-group="interactive:buy"]`},
		{"unprefixed", ""},
	}
	for _, tt := range tests {
		if got := synthesizeSelector(tt.path); got != tt.want {
			t.Errorf("synthesizeSelector(%q): got %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestStrictnessMultiplier(t *testing.T) {
	if Low.Multiplier() != 1.5 {
		t.Errorf("low: got %v", Low.Multiplier())
	}
	if Medium.Multiplier() != 1.0 {
		t.Errorf("medium: got %v", Medium.Multiplier())
	}
	if High.Multiplier() != 0.7 {
		t.Errorf("high: got %v", High.Multiplier())
	}
	if Strictness("").Multiplier() != 1.0 {
		t.Errorf("empty strictness should default to medium")
	}
}

func TestAggregateDriftGroupsPreferred(t *testing.T) {
	mk := func(x float64) *vistree.VisualTreeAnalysis {
		return &vistree.VisualTreeAnalysis{
			Elements: []vistree.VisualNode{{TagName: "body", Rect: vistree.Rect(0, 0, 800, 600)}},
			VisualNodeGroups: []*vistree.VisualNodeGroup{{
				Type:   vistree.GroupSection,
				Label:  "hero",
				Bounds: vistree.Rect(x, 0, 800, 400),
			}},
		}
	}
	d := aggregateDrift([]*vistree.VisualTreeAnalysis{mk(0), mk(10)})
	if d.PairCount != 1 {
		t.Errorf("pair count: got %d, want 1", d.PairCount)
	}
	if d.MaxPositionDrift != 10 {
		t.Errorf("max position drift: got %v, want 10", d.MaxPositionDrift)
	}
	if d.MaxSizeVariance != 0 {
		t.Errorf("size variance: got %v, want 0", d.MaxSizeVariance)
	}
}

func TestAggregateDriftElementFallback(t *testing.T) {
	mk := func(w float64) *vistree.VisualTreeAnalysis {
		return &vistree.VisualTreeAnalysis{
			Elements: []vistree.VisualNode{
				{TagName: "div", ID: "hero", Rect: vistree.Rect(0, 0, w, 400)},
			},
		}
	}
	// 800 → 880 is a 10% relative width change, 5% mean over both axes.
	d := aggregateDrift([]*vistree.VisualTreeAnalysis{mk(800), mk(880)})
	if diff := d.MaxSizeVariance - 0.05; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("size variance: got %v, want 0.05", d.MaxSizeVariance)
	}
}

func TestRelativeSizeDelta(t *testing.T) {
	a := vistree.Rect(0, 0, 100, 100)
	b := vistree.Rect(0, 0, 150, 100)
	// Width changed 50%, height 0%: mean 25%.
	if got := relativeSizeDelta(a, b); got != 0.25 {
		t.Errorf("got %v, want 0.25", got)
	}
	// Zero-to-something counts as full change on that axis.
	z := vistree.Rect(0, 0, 0, 100)
	if got := relativeSizeDelta(z, b); got != 0.5 {
		t.Errorf("zero width axis: got %v, want 0.5", got)
	}
}
