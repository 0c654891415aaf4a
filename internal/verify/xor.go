package verify

import (
	"math"

	polyclip "github.com/ctessum/polyclip-go"

	"github.com/openpdk/sg13/internal/geom"
)

// Epsilon is the residual-area floor in dbu^2. Coordinates are whole
// dbu, so any true mismatch is at least one dbu^2; the floor only
// absorbs floating-point dust from the clipper.
const Epsilon = 1e-6

func toClip(polys []geom.Polygon) polyclip.Polygon {
	out := make(polyclip.Polygon, 0, len(polys))
	for _, p := range polys {
		contour := make(polyclip.Contour, len(p))
		for i, pt := range p {
			contour[i] = polyclip.Point{X: float64(pt.X), Y: float64(pt.Y)}
		}
		out = append(out, contour)
	}
	return out
}

func fromClip(p polyclip.Polygon) []geom.Polygon {
	out := make([]geom.Polygon, 0, len(p))
	for _, contour := range p {
		poly := make(geom.Polygon, len(contour))
		for i, pt := range contour {
			poly[i] = geom.Point{
				X: geom.Coord(math.Round(pt.X)),
				Y: geom.Coord(math.Round(pt.Y)),
			}
		}
		out = append(out, poly)
	}
	return out
}

// xorPolys computes the symmetric difference of two polygon sets.
func xorPolys(a, b []geom.Polygon) []geom.Polygon {
	switch {
	case len(a) == 0:
		return append([]geom.Polygon(nil), b...)
	case len(b) == 0:
		return append([]geom.Polygon(nil), a...)
	}
	return fromClip(toClip(a).Construct(polyclip.XOR, toClip(b)))
}

// area sums the unsigned area of a polygon set in dbu^2. Hole
// contours carry opposite winding, so summing signed areas and taking
// the magnitude counts them correctly.
func area(polys []geom.Polygon) float64 {
	var signed int64
	for _, p := range polys {
		signed += p.Area2()
	}
	return math.Abs(float64(signed)) / 2
}
