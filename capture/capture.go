package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/google/uuid"

	"github.com/vizdrift/vizdrift/grouping"
	"github.com/vizdrift/vizdrift/vistree"
)

// Options configures one capture.
type Options struct {
	// PageID is the caller-provided stable page identifier.
	PageID string

	// Viewport geometry. Default 1280×800.
	Viewport vistree.Viewport

	// NavigateTimeout bounds navigation + load. Default 30s.
	NavigateTimeout time.Duration

	// SettleDelay waits after load before extraction, letting late layout
	// shifts land. Default 500ms.
	SettleDelay time.Duration

	// Grouping tunes the semantic grouping pass.
	Grouping grouping.Options
}

func (o *Options) defaults() {
	if o.Viewport.Width <= 0 {
		o.Viewport.Width = 1280
	}
	if o.Viewport.Height <= 0 {
		o.Viewport.Height = 800
	}
	if o.NavigateTimeout <= 0 {
		o.NavigateTimeout = 30 * time.Second
	}
	if o.SettleDelay <= 0 {
		o.SettleDelay = 500 * time.Millisecond
	}
}

// rawElement is the record the injected extractor returns per element.
type rawElement struct {
	Tag       string            `json:"tag"`
	ID        string            `json:"id"`
	Classes   []string          `json:"classes"`
	Role      string            `json:"role"`
	AriaLabel string            `json:"ariaLabel"`
	Aria      map[string]string `json:"aria"`
	Attrs     map[string]string `json:"attrs"`
	Text      string            `json:"text"`

	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`

	Style struct {
		Display    string `json:"display"`
		Position   string `json:"position"`
		Overflow   string `json:"overflow"`
		OverflowX  string `json:"overflowX"`
		OverflowY  string `json:"overflowY"`
		Width      string `json:"width"`
		Height     string `json:"height"`
		FontSize   string `json:"fontSize"`
		Visibility string `json:"visibility"`
		Opacity    string `json:"opacity"`
	} `json:"style"`

	Interactive bool `json:"interactive"`
	Scrollable  bool `json:"scrollable"`
	FixedWidth  bool `json:"fixedWidth"`
	FixedHeight bool `json:"fixedHeight"`

	ScrollWidth  float64 `json:"scrollWidth"`
	ScrollHeight float64 `json:"scrollHeight"`
	ClientWidth  float64 `json:"clientWidth"`
	ClientHeight float64 `json:"clientHeight"`
}

// Capture navigates to url in a fresh stealth tab and produces a snapshot.
func (b *Browser) Capture(ctx context.Context, url string, opts Options) (*vistree.VisualTreeAnalysis, error) {
	opts.defaults()

	br, err := b.Rod()
	if err != nil {
		return nil, err
	}

	page, err := stealth.Page(br)
	if err != nil {
		return nil, fmt.Errorf("capture: create tab: %w", err)
	}
	defer page.Close()

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             int(opts.Viewport.Width),
		Height:            int(opts.Viewport.Height),
		DeviceScaleFactor: 1,
	}); err != nil {
		return nil, fmt.Errorf("capture: set viewport: %w", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, opts.NavigateTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(url); err != nil {
		return nil, fmt.Errorf("capture: navigate %s: %w", url, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		b.cfg.Logger.Warn("capture: wait load timeout", "url", url, "error", err)
	}

	select {
	case <-time.After(opts.SettleDelay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	res, err := page.Context(ctx).Eval(extractScript)
	if err != nil {
		return nil, fmt.Errorf("capture: extract: %w", err)
	}

	var raws []rawElement
	if err := json.Unmarshal([]byte(res.Value.Str()), &raws); err != nil {
		return nil, fmt.Errorf("capture: decode elements: %w", err)
	}

	return buildAnalysis(url, opts, raws, false), nil
}

// buildAnalysis converts raw extraction records into the immutable snapshot:
// nodes get importance scores, then the grouping engine builds the forest.
func buildAnalysis(url string, opts Options, raws []rawElement, structureOnly bool) *vistree.VisualTreeAnalysis {
	nodes := make([]vistree.VisualNode, 0, len(raws))
	for _, r := range raws {
		nodes = append(nodes, nodeFromRaw(r))
	}
	for i := range nodes {
		nodes[i].Importance = Score(&nodes[i], opts.Viewport)
	}

	gopts := opts.Grouping
	if gopts.Viewport == nil && !structureOnly {
		vp := opts.Viewport
		gopts.Viewport = &vp
	}
	var forest []*vistree.VisualNodeGroup
	if !structureOnly {
		forest = grouping.Build(nodes, gopts)
	}

	stats := vistree.Statistics{
		TotalElements:     len(nodes),
		GroupCount:        countGroups(forest),
		TopLevelGroups:    len(forest),
		StructureOnlyMode: structureOnly,
	}
	for i := range nodes {
		if nodes[i].IsInteractive {
			stats.InteractiveCount++
		}
		if nodes[i].IsScrollable {
			stats.ScrollableCount++
		}
	}

	return &vistree.VisualTreeAnalysis{
		ID:               uuid.Must(uuid.NewV7()).String(),
		URL:              url,
		PageID:           opts.PageID,
		Timestamp:        time.Now().UnixMilli(),
		Viewport:         opts.Viewport,
		Elements:         nodes,
		VisualNodeGroups: forest,
		Statistics:       stats,
	}
}

const maxTextLen = 200

func nodeFromRaw(r rawElement) vistree.VisualNode {
	opacity, err := strconv.ParseFloat(r.Style.Opacity, 64)
	if err != nil {
		opacity = 1
	}

	n := vistree.VisualNode{
		TagName:    r.Tag,
		ID:         r.ID,
		ClassList:  r.Classes,
		Role:       r.Role,
		AriaLabel:  r.AriaLabel,
		Aria:       r.Aria,
		Attributes: r.Attrs,
		Text:       truncateText(r.Text, maxTextLen),
		Rect:       vistree.Rect(r.X, r.Y, r.W, r.H),
		Style: vistree.ComputedStyle{
			Display:    r.Style.Display,
			Position:   r.Style.Position,
			Overflow:   r.Style.Overflow,
			OverflowX:  r.Style.OverflowX,
			OverflowY:  r.Style.OverflowY,
			Width:      r.Style.Width,
			Height:     r.Style.Height,
			FontSize:   r.Style.FontSize,
			Visibility: r.Style.Visibility,
			Opacity:    opacity,
		},
		IsInteractive: r.Interactive,
		IsScrollable:  r.Scrollable,
		HasFixedDimensions: vistree.FixedDimensions{
			Width:  r.FixedWidth,
			Height: r.FixedHeight,
		},
	}
	if r.Scrollable && (r.ClientWidth > 0 || r.ClientHeight > 0) {
		n.ScrollDimensions = &vistree.ScrollDimensions{
			ScrollWidth:  r.ScrollWidth,
			ScrollHeight: r.ScrollHeight,
			ClientWidth:  r.ClientWidth,
			ClientHeight: r.ClientHeight,
		}
	}
	return n
}

func truncateText(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func countGroups(forest []*vistree.VisualNodeGroup) int {
	n := 0
	for _, g := range forest {
		n++
		for _, c := range g.Children {
			if c.Group != nil {
				n += countGroups([]*vistree.VisualNodeGroup{c.Group})
			}
		}
	}
	return n
}
