package vistree

// Viewport is the capture window geometry and scroll offset.
type Viewport struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	ScrollX float64 `json:"scrollX"`
	ScrollY float64 `json:"scrollY"`
}

// Statistics summarises one snapshot.
type Statistics struct {
	TotalElements     int `json:"totalElements"`
	InteractiveCount  int `json:"interactiveCount"`
	ScrollableCount   int `json:"scrollableCount"`
	GroupCount        int `json:"groupCount"`
	TopLevelGroups    int `json:"topLevelGroups"`
	StructureOnlyMode bool `json:"structureOnlyMode,omitempty"` // static capture, no layout boxes
}

// VisualTreeAnalysis is one snapshot of a page's rendered layout: the flat
// element list plus the semantic group forest built over it. Immutable; the
// unit exchanged between all core components.
type VisualTreeAnalysis struct {
	ID        string   `json:"id,omitempty"` // UUIDv7, assigned by capture
	URL       string   `json:"url"`
	PageID    string   `json:"pageId,omitempty"` // stable identifier provided by caller
	Timestamp int64    `json:"timestamp"`        // epoch milliseconds
	Viewport  Viewport `json:"viewport"`

	Elements         []VisualNode       `json:"elements"`
	VisualNodeGroups []*VisualNodeGroup `json:"visualNodeGroups,omitempty"`

	Statistics Statistics `json:"statistics"`
}

// HasGroups reports whether the snapshot carries semantic group data.
func (a *VisualTreeAnalysis) HasGroups() bool {
	return a != nil && len(a.VisualNodeGroups) > 0
}

// SafeElements returns the element slice, tolerating nil receivers and
// missing fields. A degraded-but-present comparison beats a hard failure.
func (a *VisualTreeAnalysis) SafeElements() []VisualNode {
	if a == nil {
		return nil
	}
	return a.Elements
}
