package pcell

import (
	"math"
	"sort"

	"github.com/openpdk/sg13/internal/device"
	"github.com/openpdk/sg13/internal/geom"
	"github.com/openpdk/sg13/internal/layout"
	"github.com/openpdk/sg13/internal/tech"
)

// side names one edge of an anchor rectangle. Ports sit at the
// midpoint of their side, so the position is always on the rectangle
// boundary in whole dbu.
type side int

const (
	sideLeft side = iota
	sideRight
	sideBottom
	sideTop
)

func (s side) orientation() int {
	switch s {
	case sideLeft:
		return 180
	case sideRight:
		return 0
	case sideBottom:
		return 270
	default:
		return 90
	}
}

// anchor records where a port will be derived from: a rectangle the
// strategy also emitted as pin-sublayer geometry, plus the side the
// port faces out of.
type anchor struct {
	name  string
	layer string
	rect  geom.Rect
	side  side
}

// builder accumulates geometry for one cell. Every rectangle passes
// through the snapper, degenerate rectangles are dropped, and layer
// names are resolved eagerly so a typo fails at synthesis time rather
// than at export time.
type builder struct {
	pdk     *tech.Tech
	cell    *layout.Cell
	anchors []anchor
}

func newBuilder(pdk *tech.Tech, name string, spec *device.Spec) *builder {
	return &builder{pdk: pdk, cell: layout.NewCell(name, spec)}
}

// rect emits one axis-aligned rectangle. Corners are snapped
// independently; rectangles with no interior after snapping are
// silently skipped, matching how optional geometry (zero-width
// enclosures, empty offsets) degenerates.
func (b *builder) rect(layer string, x1, y1, x2, y2 geom.Coord) {
	b.pdk.Stack.MustResolve(layer)
	r := geom.NewRect(b.pdk.Snap.Snap(x1), b.pdk.Snap.Snap(y1), b.pdk.Snap.Snap(x2), b.pdk.Snap.Snap(y2))
	if r.Empty() {
		return
	}
	b.cell.Polygons[layer] = append(b.cell.Polygons[layer], r.Poly())
}

func (b *builder) rectR(layer string, r geom.Rect) {
	b.rect(layer, r.X1, r.Y1, r.X2, r.Y2)
}

// snapF snaps a fractional dbu position. Contact pitches inside an
// arbitrary-width region are generally not whole dbu; each placement
// rounds independently, the way tiled contact arrays are laid out in
// the process reference cells.
func (b *builder) snapF(v float64) geom.Coord {
	return b.pdk.Snap.Snap(geom.Coord(math.Round(v)))
}

// contactArray tiles square cuts into bounds. ox and oy are the
// minimum enclosures on each axis, ws the cut size, ds the minimum cut
// spacing. Cuts are spread evenly: with n cuts the residual space is
// distributed into the gaps, and a single cut centers on its axis. A
// region too small for one cut produces no geometry.
func (b *builder) contactArray(layer string, bounds geom.Rect, ox, oy, ws, ds geom.Coord) {
	w, h := bounds.W(), bounds.H()

	nx := int((w - 2*ox + ds) / (ws + ds))
	if nx <= 0 {
		return
	}
	ny := int((h - 2*oy + ds) / (ws + ds))
	if ny <= 0 {
		return
	}

	var dsx, dsy float64
	xStart := float64(ox)
	if nx == 1 {
		xStart = float64(w-ws) / 2
	} else {
		dsx = float64(w-2*ox-geom.Coord(nx)*ws) / float64(nx-1)
	}
	yStart := float64(oy)
	if ny == 1 {
		yStart = float64(h-ws) / 2
	} else {
		dsy = float64(h-2*oy-geom.Coord(ny)*ws) / float64(ny-1)
	}

	x := xStart
	for i := 0; i < nx; i++ {
		y := yStart
		for j := 0; j < ny; j++ {
			cx := b.snapF(float64(bounds.X1) + x)
			cy := b.snapF(float64(bounds.Y1) + y)
			b.rect(layer, cx, cy, cx+ws, cy+ws)
			y += float64(ws) + dsy
		}
		x += float64(ws) + dsx
	}
}

// port registers a port anchor. The rectangle must also exist as
// geometry on the given layer; finish verifies that.
func (b *builder) port(name, layer string, r geom.Rect, s side) {
	b.anchors = append(b.anchors, anchor{name: name, layer: layer, rect: r, side: s})
}

// evenWidth rounds a port width up to an even dbu count, the
// convention the downstream netlisters expect.
func evenWidth(w geom.Coord) geom.Coord {
	return w + w%2
}

// finish turns anchors into ports and validates that each port
// position lies on a polygon edge of its layer. Ports come out sorted
// by name so cell construction order never leaks into serialized form.
func (b *builder) finish() (*layout.Cell, error) {
	for _, a := range b.anchors {
		ref, err := b.pdk.Stack.Resolve(a.layer)
		if err != nil {
			return nil, err
		}
		r := b.pdk.Snap.SnapRect(a.rect)

		var pos geom.Point
		var width geom.Coord
		switch a.side {
		case sideLeft:
			pos = geom.Point{X: r.X1, Y: (r.Y1 + r.Y2) / 2}
			width = r.H()
		case sideRight:
			pos = geom.Point{X: r.X2, Y: (r.Y1 + r.Y2) / 2}
			width = r.H()
		case sideBottom:
			pos = geom.Point{X: (r.X1 + r.X2) / 2, Y: r.Y1}
			width = r.W()
		default:
			pos = geom.Point{X: (r.X1 + r.X2) / 2, Y: r.Y2}
			width = r.W()
		}

		onEdge := false
		for _, poly := range b.cell.Polygons[a.layer] {
			if poly.OnBoundary(pos) {
				onEdge = true
				break
			}
		}
		if !onEdge {
			return nil, &PortPlacementError{
				Cell:     b.cell.Name,
				Port:     a.name,
				Layer:    a.layer,
				Position: pos,
			}
		}

		b.cell.Ports = append(b.cell.Ports, layout.Port{
			Name:        a.name,
			Layer:       ref,
			Position:    pos,
			Orientation: a.side.orientation(),
			Width:       evenWidth(width),
			Type:        "electrical",
		})
	}
	sort.Slice(b.cell.Ports, func(i, j int) bool { return b.cell.Ports[i].Name < b.cell.Ports[j].Name })
	return b.cell, nil
}
