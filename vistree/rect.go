package vistree

import "math"

// BoundingRect is an axis-aligned box in CSS pixels. Right and Bottom are
// derived (right = x+width, bottom = y+height); Normalize enforces the
// invariant and clamps negatives.
type BoundingRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Rect builds a normalized BoundingRect from origin and size.
func Rect(x, y, w, h float64) BoundingRect {
	r := BoundingRect{X: x, Y: y, Width: w, Height: h}
	return r.Normalize()
}

// Normalize clamps negative sizes to zero and recomputes the derived edges.
func (r BoundingRect) Normalize() BoundingRect {
	if r.Width < 0 {
		r.Width = 0
	}
	if r.Height < 0 {
		r.Height = 0
	}
	r.Top = r.Y
	r.Left = r.X
	r.Right = r.X + r.Width
	r.Bottom = r.Y + r.Height
	return r
}

// Area returns width × height.
func (r BoundingRect) Area() float64 {
	return r.Width * r.Height
}

// Empty reports whether the rect has zero area.
func (r BoundingRect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Center returns the midpoint of the rect.
func (r BoundingRect) Center() (x, y float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Union returns the smallest rect containing both r and o.
// An empty rect is treated as absent.
func (r BoundingRect) Union(o BoundingRect) BoundingRect {
	if r.Empty() {
		return o.Normalize()
	}
	if o.Empty() {
		return r.Normalize()
	}
	x1 := math.Min(r.X, o.X)
	y1 := math.Min(r.Y, o.Y)
	x2 := math.Max(r.X+r.Width, o.X+o.Width)
	y2 := math.Max(r.Y+r.Height, o.Y+o.Height)
	return Rect(x1, y1, x2-x1, y2-y1)
}

// Intersect returns the overlapping region of r and o, or a zero rect when
// they do not overlap.
func (r BoundingRect) Intersect(o BoundingRect) BoundingRect {
	x1 := math.Max(r.X, o.X)
	y1 := math.Max(r.Y, o.Y)
	x2 := math.Min(r.X+r.Width, o.X+o.Width)
	y2 := math.Min(r.Y+r.Height, o.Y+o.Height)
	if x2 <= x1 || y2 <= y1 {
		return BoundingRect{}
	}
	return Rect(x1, y1, x2-x1, y2-y1)
}

// Contains reports whether o lies entirely inside r (edges inclusive).
func (r BoundingRect) Contains(o BoundingRect) bool {
	return o.X >= r.X && o.Y >= r.Y &&
		o.X+o.Width <= r.X+r.Width &&
		o.Y+o.Height <= r.Y+r.Height
}

// CenterDistance returns the Euclidean distance between the two centers.
func (r BoundingRect) CenterDistance(o BoundingRect) float64 {
	cx1, cy1 := r.Center()
	cx2, cy2 := o.Center()
	return math.Hypot(cx2-cx1, cy2-cy1)
}

// OriginDistance returns the Euclidean distance between the two origins.
func (r BoundingRect) OriginDistance(o BoundingRect) float64 {
	return math.Hypot(o.X-r.X, o.Y-r.Y)
}

// IoU returns intersection-over-union of the two rects, in [0,1].
func (r BoundingRect) IoU(o BoundingRect) float64 {
	inter := r.Intersect(o).Area()
	if inter <= 0 {
		return 0
	}
	union := r.Area() + o.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// OverlapRatio returns intersection area over the smaller rect's area,
// in [0,1]. Unlike IoU, a small rect fully inside a large one scores 1.
func (r BoundingRect) OverlapRatio(o BoundingRect) float64 {
	inter := r.Intersect(o).Area()
	if inter <= 0 {
		return 0
	}
	minArea := math.Min(r.Area(), o.Area())
	if minArea <= 0 {
		return 0
	}
	return math.Min(inter/minArea, 1)
}

// AspectDelta returns the absolute difference of the two aspect ratios.
// Rects with zero height are treated as ratio 0.
func (r BoundingRect) AspectDelta(o BoundingRect) float64 {
	ar := func(b BoundingRect) float64 {
		if b.Height <= 0 {
			return 0
		}
		return b.Width / b.Height
	}
	return math.Abs(ar(r) - ar(o))
}

// Diagonal returns the length of the rect's diagonal.
func (r BoundingRect) Diagonal() float64 {
	return math.Hypot(r.Width, r.Height)
}
