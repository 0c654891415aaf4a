package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRect_Normalizes(t *testing.T) {
	r := NewRect(10, 20, -5, 0)
	assert.Equal(t, Rect{X1: -5, Y1: 0, X2: 10, Y2: 20}, r)
	assert.Equal(t, Coord(15), r.W())
	assert.Equal(t, Coord(20), r.H())
	assert.False(t, r.Empty())
}

func TestRect_InsetAndEnclosure(t *testing.T) {
	r := NewRect(0, 0, 100, 50)

	shrunk := r.Inset(10)
	assert.Equal(t, Rect{X1: 10, Y1: 10, X2: 90, Y2: 40}, shrunk)

	// Negative inset is an enclosure offset.
	grown := r.Inset(-70)
	assert.Equal(t, Rect{X1: -70, Y1: -70, X2: 170, Y2: 120}, grown)

	// Over-shrinking yields an empty rect, which callers must detect.
	assert.True(t, r.Inset(30).Empty())
}

func TestRect_Poly_IsCCW(t *testing.T) {
	p := NewRect(0, 0, 100, 50).Poly()
	assert.Len(t, p, 4)
	assert.True(t, p.IsCCW())
	assert.Equal(t, int64(2*100*50), p.Area2())
}

func TestPolygon_BBox(t *testing.T) {
	p := Polygon{{-5, 3}, {10, -2}, {7, 20}}
	assert.Equal(t, Rect{X1: -5, Y1: -2, X2: 10, Y2: 20}, p.BBox())
}

func TestPolygon_OnBoundary(t *testing.T) {
	p := NewRect(0, 0, 100, 50).Poly()

	tests := []struct {
		name string
		pt   Point
		want bool
	}{
		{"corner", Point{0, 0}, true},
		{"bottom edge midpoint", Point{50, 0}, true},
		{"left edge", Point{0, 25}, true},
		{"closing edge", Point{0, 49}, true},
		{"interior", Point{50, 25}, false},
		{"outside", Point{101, 0}, false},
		{"collinear but beyond edge", Point{150, 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.OnBoundary(tt.pt))
		})
	}
}

func TestPolygon_TranslateEqual(t *testing.T) {
	p := NewRect(0, 0, 10, 10).Poly()
	q := p.Translate(5, -5)
	assert.False(t, p.Equal(q))
	assert.True(t, q.Equal(p.Translate(5, -5)))
	assert.Equal(t, p.Area2(), q.Area2(), "translation preserves area")
}
