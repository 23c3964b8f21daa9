package compare

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/vizdrift/vizdrift/similarity"
	"github.com/vizdrift/vizdrift/vistree"
)

// defaultIgnoredAttrs never participate in raw-element comparison: they are
// expected to vary between captures without visual meaning.
var defaultIgnoredAttrs = map[string]bool{
	"style":          true,
	"data-timestamp": true,
	"data-reactid":   true,
	"data-rendered":  true,
}

// Raw compares two snapshots element by element, keyed on a positional
// composite so identical page structures line up without group data.
func Raw(baseline, current *vistree.VisualTreeAnalysis, opts Options) *vistree.ComparisonResult {
	opts.defaults()

	base := baseline.SafeElements()
	cur := current.SafeElements()
	if len(base) == 0 && len(cur) == 0 {
		return vacuous()
	}

	baseByKey := keyElements(base)
	curByKey := keyElements(cur)

	keys := unionKeys(baseByKey, curByKey)

	ignored := make(map[string]bool, len(defaultIgnoredAttrs)+len(opts.IgnoreAttributes))
	for k := range defaultIgnoredAttrs {
		ignored[k] = true
	}
	for _, k := range opts.IgnoreAttributes {
		ignored[k] = true
	}

	var diffs []vistree.Difference
	var added, removed, changed int

	for _, key := range keys {
		b, inBase := baseByKey[key]
		c, inCur := curByKey[key]

		switch {
		case inBase && !inCur:
			removed++
			diffs = append(diffs, vistree.Difference{
				Type:   vistree.DiffRemoved,
				Path:   key,
				Before: elementPayload(b),
			})
		case !inBase && inCur:
			added++
			diffs = append(diffs, vistree.Difference{
				Type:  vistree.DiffAdded,
				Path:  key,
				After: elementPayload(c),
			})
		default:
			if d, ok := diffElements(key, b, c, opts, ignored); ok {
				changed++
				diffs = append(diffs, d)
			}
		}
	}

	return &vistree.ComparisonResult{
		Differences: diffs,
		Similarity:  score(added+removed+changed, len(keys)),
		Summary: vistree.Summary{
			TotalElements: len(keys),
			TotalChanged:  changed,
			TotalAdded:    added,
			TotalRemoved:  removed,
		},
	}
}

// diffElements compares one matched element pair and classifies the change.
func diffElements(key string, b, c *vistree.VisualNode, opts Options, ignored map[string]bool) (vistree.Difference, bool) {
	tol := opts.Settings.PositionTolerance

	posChanged := math.Abs(c.Rect.X-b.Rect.X) > tol || math.Abs(c.Rect.Y-b.Rect.Y) > tol
	sizeChanged := math.Abs(c.Rect.Width-b.Rect.Width) > tol || math.Abs(c.Rect.Height-b.Rect.Height) > tol

	textChanged := false
	if !opts.IgnoreText {
		textChanged = similarity.Text(b.Text, c.Text) < opts.Settings.TextSimilarityThreshold
	}

	styleChanged := math.Abs(c.Style.Opacity-b.Style.Opacity) > opacityTolerance ||
		b.Style.Visibility != c.Style.Visibility

	attrChanged := attrsDiffer(b.Attributes, c.Attributes, ignored)

	otherChanged := textChanged || styleChanged || attrChanged
	if !posChanged && !sizeChanged && !otherChanged {
		return vistree.Difference{}, false
	}

	var typ vistree.DiffType
	var detail string
	switch {
	case posChanged && !sizeChanged && !otherChanged:
		typ = vistree.DiffMoved
	case sizeChanged && !posChanged && !otherChanged:
		typ = vistree.DiffResized
	default:
		typ = vistree.DiffModified
		detail = changeDetail(posChanged || sizeChanged, textChanged, styleChanged, attrChanged)
	}

	return vistree.Difference{
		Type:   typ,
		Path:   key,
		Before: elementPayload(b),
		After:  elementPayload(c),
		Detail: detail,
	}, true
}

func changeDetail(bounds, text, style, attrs bool) string {
	var parts []string
	if bounds {
		parts = append(parts, "bounds")
	}
	if text {
		parts = append(parts, "text")
	}
	if style {
		parts = append(parts, "style")
	}
	if attrs {
		parts = append(parts, "attributes")
	}
	return strings.Join(parts, ",")
}

func attrsDiffer(a, b map[string]string, ignored map[string]bool) bool {
	for k, v := range a {
		if ignored[k] {
			continue
		}
		if bv, ok := b[k]; !ok || bv != v {
			return true
		}
	}
	for k := range b {
		if ignored[k] {
			continue
		}
		if _, ok := a[k]; !ok {
			return true
		}
	}
	return false
}

func elementPayload(n *vistree.VisualNode) *vistree.DiffPayload {
	return &vistree.DiffPayload{
		Bounds:     n.Rect,
		Text:       n.Text,
		Importance: n.Importance,
	}
}

// positionBucket is the rounding granularity for the positional key.
const positionBucket = 10

// ElementKey builds the raw-mode composite key:
// tag + (#id)? + (.firstClass)? + @roundedX,roundedY.
func ElementKey(n *vistree.VisualNode) string {
	var sb strings.Builder
	sb.WriteString(strings.ToLower(n.TagName))
	if n.ID != "" {
		sb.WriteByte('#')
		sb.WriteString(n.ID)
	}
	if fc := n.FirstClass(); fc != "" {
		sb.WriteByte('.')
		sb.WriteString(fc)
	}
	rx := math.Round(n.Rect.X/positionBucket) * positionBucket
	ry := math.Round(n.Rect.Y/positionBucket) * positionBucket
	fmt.Fprintf(&sb, "@%.0f,%.0f", rx, ry)
	return sb.String()
}

// keyElements maps elements by key. On collision the first occurrence wins,
// keeping output deterministic.
func keyElements(nodes []vistree.VisualNode) map[string]*vistree.VisualNode {
	m := make(map[string]*vistree.VisualNode, len(nodes))
	for i := range nodes {
		k := ElementKey(&nodes[i])
		if _, ok := m[k]; !ok {
			m[k] = &nodes[i]
		}
	}
	return m
}

func unionKeys[V any](a, b map[string]V) []string {
	keys := make([]string, 0, len(a)+len(b))
	for k := range a {
		keys = append(keys, k)
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
