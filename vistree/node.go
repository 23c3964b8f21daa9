// Package vistree defines the structured snapshot types exchanged between
// the capture, grouping, comparison, and calibration components.
// These are the public API contract: any consumer (HTTP service, MCP tools,
// custom pipelines) imports this package to produce and process snapshots.
package vistree

// ComputedStyle is the subset of computed CSS the engine cares about.
// Width and Height carry the declared strings (e.g. "300px", "100%"), not
// the rendered box; the rendered box lives in the node's Rect.
type ComputedStyle struct {
	Display    string  `json:"display,omitempty"`
	Position   string  `json:"position,omitempty"`
	Overflow   string  `json:"overflow,omitempty"`
	OverflowX  string  `json:"overflowX,omitempty"`
	OverflowY  string  `json:"overflowY,omitempty"`
	Width      string  `json:"width,omitempty"`
	Height     string  `json:"height,omitempty"`
	FontSize   string  `json:"fontSize,omitempty"`
	Visibility string  `json:"visibility,omitempty"`
	Opacity    float64 `json:"opacity"`
}

// ScrollDimensions records content vs client size for scrollable elements.
type ScrollDimensions struct {
	ScrollWidth  float64 `json:"scrollWidth"`
	ScrollHeight float64 `json:"scrollHeight"`
	ClientWidth  float64 `json:"clientWidth"`
	ClientHeight float64 `json:"clientHeight"`
}

// FixedDimensions flags axes with an explicit declared size.
type FixedDimensions struct {
	Width  bool `json:"width"`
	Height bool `json:"height"`
}

// VisualNode is one rendered element snapshot. Produced by the capture
// collaborator with the importance score already computed; immutable
// afterwards, the core never mutates nodes.
type VisualNode struct {
	TagName   string   `json:"tagName"`
	ID        string   `json:"id,omitempty"`
	ClassList []string `json:"classList,omitempty"`

	Role      string            `json:"role,omitempty"`
	AriaLabel string            `json:"ariaLabel,omitempty"`
	Aria      map[string]string `json:"aria,omitempty"` // aria-* attributes, key without prefix

	// Attributes carries non-ARIA attributes of interest (data-*, href, alt…).
	Attributes map[string]string `json:"attributes,omitempty"`

	Text string       `json:"text,omitempty"` // truncated text content
	Rect BoundingRect `json:"rect"`

	Style ComputedStyle `json:"style"`

	IsInteractive      bool              `json:"isInteractive,omitempty"`
	IsScrollable       bool              `json:"isScrollable,omitempty"`
	HasFixedDimensions FixedDimensions   `json:"hasFixedDimensions,omitempty"`
	ScrollDimensions   *ScrollDimensions `json:"scrollDimensions,omitempty"`

	// Importance is 0–100, supplied by the extraction collaborator.
	Importance float64 `json:"importance"`
}

// FirstClass returns the first class name, or "".
func (n *VisualNode) FirstClass() string {
	if len(n.ClassList) == 0 {
		return ""
	}
	return n.ClassList[0]
}

// ScrollRatio returns the larger of the horizontal and vertical
// content/client ratios, or 0 when the node carries no scroll dimensions.
func (n *VisualNode) ScrollRatio() float64 {
	sd := n.ScrollDimensions
	if sd == nil {
		return 0
	}
	var rx, ry float64
	if sd.ClientWidth > 0 {
		rx = sd.ScrollWidth / sd.ClientWidth
	}
	if sd.ClientHeight > 0 {
		ry = sd.ScrollHeight / sd.ClientHeight
	}
	if rx > ry {
		return rx
	}
	return ry
}
