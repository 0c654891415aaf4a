package geom

// Polygon is an ordered, closed vertex loop. The closing edge from the
// last vertex back to the first is implied; vertices are never repeated.
// Generators emit counter-clockwise loops so signed area stays positive.
type Polygon []Point

// Area2 returns twice the signed shoelace area in dbu^2. Doubling keeps
// the value integer for any integer polygon. Positive means
// counter-clockwise winding.
func (p Polygon) Area2() int64 {
	if len(p) < 3 {
		return 0
	}
	var sum int64
	for i := range p {
		j := (i + 1) % len(p)
		sum += int64(p[i].X)*int64(p[j].Y) - int64(p[j].X)*int64(p[i].Y)
	}
	return sum
}

// IsCCW reports whether the polygon winds counter-clockwise.
func (p Polygon) IsCCW() bool { return p.Area2() > 0 }

// BBox returns the polygon's bounding rectangle.
func (p Polygon) BBox() Rect {
	if len(p) == 0 {
		return Rect{}
	}
	r := Rect{X1: p[0].X, Y1: p[0].Y, X2: p[0].X, Y2: p[0].Y}
	for _, pt := range p[1:] {
		r.X1 = minCoord(r.X1, pt.X)
		r.Y1 = minCoord(r.Y1, pt.Y)
		r.X2 = maxCoord(r.X2, pt.X)
		r.Y2 = maxCoord(r.Y2, pt.Y)
	}
	return r
}

// Translate returns a copy shifted by (dx, dy).
func (p Polygon) Translate(dx, dy Coord) Polygon {
	out := make(Polygon, len(p))
	for i, pt := range p {
		out[i] = Point{X: pt.X + dx, Y: pt.Y + dy}
	}
	return out
}

// Equal reports exact vertex-for-vertex equality.
func (p Polygon) Equal(o Polygon) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// OnBoundary reports whether pt lies on one of the polygon's edges,
// including the implied closing edge. Exact integer test: collinearity
// by cross product plus bounding-interval containment.
func (p Polygon) OnBoundary(pt Point) bool {
	n := len(p)
	if n < 2 {
		return false
	}
	for i := range p {
		a := p[i]
		b := p[(i+1)%n]
		if onSegment(a, b, pt) {
			return true
		}
	}
	return false
}

func onSegment(a, b, pt Point) bool {
	cross := int64(b.X-a.X)*int64(pt.Y-a.Y) - int64(b.Y-a.Y)*int64(pt.X-a.X)
	if cross != 0 {
		return false
	}
	return minCoord(a.X, b.X) <= pt.X && pt.X <= maxCoord(a.X, b.X) &&
		minCoord(a.Y, b.Y) <= pt.Y && pt.Y <= maxCoord(a.Y, b.Y)
}
