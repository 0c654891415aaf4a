package geom

import "fmt"

// Coord is a distance or position in database units (1 dbu = 1 nm).
type Coord int64

// DBUPerMicron converts between the micron-valued API boundary and dbu.
const DBUPerMicron = 1000

// FromMicrons converts a micron value to dbu, rounding half away from
// zero. Inputs are expected to be well within int64 range.
func FromMicrons(um float64) Coord {
	if um >= 0 {
		return Coord(um*DBUPerMicron + 0.5)
	}
	return Coord(um*DBUPerMicron - 0.5)
}

// Microns converts a dbu value back to microns.
func (c Coord) Microns() float64 {
	return float64(c) / DBUPerMicron
}

// String formats a coordinate as microns with dbu resolution.
func (c Coord) String() string {
	return fmt.Sprintf("%.3fum", c.Microns())
}

// Point is a position on the plane in dbu.
type Point struct {
	X Coord `json:"x"`
	Y Coord `json:"y"`
}

// Rect is an axis-aligned rectangle in dbu. X1/Y1 is the lower-left
// corner, X2/Y2 the upper-right. Construct via NewRect to keep the
// corners ordered.
type Rect struct {
	X1, Y1, X2, Y2 Coord
}

// NewRect builds a rectangle from any two opposite corners.
func NewRect(x1, y1, x2, y2 Coord) Rect {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	return Rect{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// W returns the rectangle width.
func (r Rect) W() Coord { return r.X2 - r.X1 }

// H returns the rectangle height.
func (r Rect) H() Coord { return r.Y2 - r.Y1 }

// Empty reports whether the rectangle has no interior.
func (r Rect) Empty() bool { return r.X2 <= r.X1 || r.Y2 <= r.Y1 }

// Center returns the rectangle midpoint. For odd extents the result is
// truncated toward the lower-left, which keeps it in whole dbu.
func (r Rect) Center() Point {
	return Point{X: (r.X1 + r.X2) / 2, Y: (r.Y1 + r.Y2) / 2}
}

// Inset shrinks the rectangle by d on every side. A negative d grows it
// (an enclosure offset).
func (r Rect) Inset(d Coord) Rect {
	return Rect{X1: r.X1 + d, Y1: r.Y1 + d, X2: r.X2 - d, Y2: r.Y2 - d}
}

// Translate shifts the rectangle by (dx, dy).
func (r Rect) Translate(dx, dy Coord) Rect {
	return Rect{X1: r.X1 + dx, Y1: r.Y1 + dy, X2: r.X2 + dx, Y2: r.Y2 + dy}
}

// Union returns the smallest rectangle covering both r and o.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	return Rect{
		X1: minCoord(r.X1, o.X1),
		Y1: minCoord(r.Y1, o.Y1),
		X2: maxCoord(r.X2, o.X2),
		Y2: maxCoord(r.Y2, o.Y2),
	}
}

// Poly converts the rectangle to a counter-clockwise polygon.
func (r Rect) Poly() Polygon {
	return Polygon{
		{r.X1, r.Y1},
		{r.X2, r.Y1},
		{r.X2, r.Y2},
		{r.X1, r.Y2},
	}
}

func minCoord(a, b Coord) Coord {
	if a < b {
		return a
	}
	return b
}

func maxCoord(a, b Coord) Coord {
	if a > b {
		return a
	}
	return b
}
