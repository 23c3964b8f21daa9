package capture

import (
	"strings"

	"github.com/vizdrift/vizdrift/vistree"
)

// Score rates an element 0–100 by how much it matters visually: semantic
// landmarks, interactivity, size relative to the viewport, text content,
// and position above the fold all contribute.
func Score(n *vistree.VisualNode, vp vistree.Viewport) float64 {
	score := 10.0

	switch strings.ToLower(n.TagName) {
	case "main", "nav", "header":
		score += 30
	case "article", "section", "footer", "aside":
		score += 25
	case "h1":
		score += 25
	case "h2", "h3":
		score += 18
	case "table", "form":
		score += 20
	case "img", "video", "canvas", "svg":
		score += 12
	case "button", "a", "input", "select", "textarea":
		score += 10
	}

	switch n.Role {
	case "navigation", "main", "banner", "dialog":
		score += 15
	case "button", "link", "tab", "menuitem":
		score += 8
	}

	if n.IsInteractive {
		score += 10
	}
	if n.AriaLabel != "" {
		score += 5
	}
	if len(strings.TrimSpace(n.Text)) > 20 {
		score += 10
	}

	// Size share of the viewport, capped: big regions matter, but a
	// page-sized wrapper should not dominate.
	va := vp.Width * vp.Height
	if va > 0 {
		share := n.Rect.Area() / va
		if share > 0.5 {
			share = 0.5
		}
		score += share * 30
	}

	// Above the fold bonus.
	if vp.Height > 0 && n.Rect.Y < vp.Height {
		score += 5
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}
