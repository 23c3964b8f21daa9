package compare

import (
	"math"

	"github.com/vizdrift/vizdrift/vistree"
)

// maxPathLen caps the flattened group path. Deep, visually similar trees can
// collide after truncation; callers needing collision-free identity should
// key on rootSelector instead.
const maxPathLen = 100

// Groups compares two snapshots at semantic-group granularity. When either
// side lacks group data the result is vacuously identical; callers should
// then fall back to Raw.
func Groups(baseline, current *vistree.VisualTreeAnalysis, opts Options) *vistree.ComparisonResult {
	opts.defaults()

	if !baseline.HasGroups() || !current.HasGroups() {
		return vacuous()
	}

	basePaths := FlattenGroups(baseline.VisualNodeGroups)
	curPaths := FlattenGroups(current.VisualNodeGroups)

	keys := unionKeys(basePaths, curPaths)

	var diffs []vistree.Difference
	var added, removed, changed int

	for _, path := range keys {
		b, inBase := basePaths[path]
		c, inCur := curPaths[path]

		switch {
		case inBase && !inCur:
			removed++
			diffs = append(diffs, vistree.Difference{
				Type:   vistree.DiffRemoved,
				Path:   path,
				Before: groupPayload(b),
			})
		case !inBase && inCur:
			added++
			diffs = append(diffs, vistree.Difference{
				Type:  vistree.DiffAdded,
				Path:  path,
				After: groupPayload(c),
			})
		default:
			if d, ok := diffGroups(path, b, c, opts); ok {
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

// diffGroups flags a matched path when its position or size delta exceeds
// the larger of the two tolerances, its child count differs, or its
// importance shifted beyond the importance threshold.
func diffGroups(path string, b, c *vistree.VisualNodeGroup, opts Options) (vistree.Difference, bool) {
	thr := math.Max(opts.Settings.PositionTolerance, opts.Settings.SizeTolerance)

	posDelta := math.Max(math.Abs(c.Bounds.X-b.Bounds.X), math.Abs(c.Bounds.Y-b.Bounds.Y))
	sizeDelta := math.Max(math.Abs(c.Bounds.Width-b.Bounds.Width), math.Abs(c.Bounds.Height-b.Bounds.Height))

	posChanged := posDelta > thr
	sizeChanged := sizeDelta > thr
	childrenChanged := len(b.Children) != len(c.Children)
	importanceChanged := math.Abs(c.Importance-b.Importance) > opts.Settings.ImportanceThreshold

	if !posChanged && !sizeChanged && !childrenChanged && !importanceChanged {
		return vistree.Difference{}, false
	}

	var typ vistree.DiffType
	var detail string
	switch {
	case posChanged && !sizeChanged && !childrenChanged && !importanceChanged:
		typ = vistree.DiffMoved
	case sizeChanged && !posChanged && !childrenChanged && !importanceChanged:
		typ = vistree.DiffResized
	default:
		typ = vistree.DiffModified
		detail = groupChangeDetail(posChanged, sizeChanged, childrenChanged, importanceChanged)
	}

	return vistree.Difference{
		Type:   typ,
		Path:   path,
		Before: groupPayload(b),
		After:  groupPayload(c),
		Detail: detail,
	}, true
}

func groupChangeDetail(pos, size, children, importance bool) string {
	detail := ""
	add := func(s string) {
		if detail != "" {
			detail += ","
		}
		detail += s
	}
	if pos {
		add("position")
	}
	if size {
		add("size")
	}
	if children {
		add("children")
	}
	if importance {
		add("importance")
	}
	return detail
}

func groupPayload(g *vistree.VisualNodeGroup) *vistree.DiffPayload {
	return &vistree.DiffPayload{
		Bounds:     g.Bounds,
		Text:       g.Label,
		Importance: g.Importance,
		ChildCount: len(g.Children),
	}
}

// FlattenGroups maps every group in the forest by its ancestor path of
// type:label segments. On a truncation collision the first group wins.
func FlattenGroups(forest []*vistree.VisualNodeGroup) map[string]*vistree.VisualNodeGroup {
	out := make(map[string]*vistree.VisualNodeGroup)
	var walk func(g *vistree.VisualNodeGroup, parent string)
	walk = func(g *vistree.VisualNodeGroup, parent string) {
		path := GroupPath(g, parent)
		if _, ok := out[path]; !ok {
			out[path] = g
		}
		for _, c := range g.Children {
			if c.Group != nil {
				walk(c.Group, path)
			}
		}
	}
	for _, g := range forest {
		walk(g, "")
	}
	return out
}

// GroupPath appends the group's type:label segment to the parent path and
// truncates the result to the path length cap.
func GroupPath(g *vistree.VisualNodeGroup, parent string) string {
	seg := string(g.Type) + ":" + g.Label
	path := seg
	if parent != "" {
		path = parent + "/" + seg
	}
	if len(path) > maxPathLen {
		path = path[:maxPathLen]
	}
	return path
}
