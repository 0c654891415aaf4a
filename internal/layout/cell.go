package layout

import (
	"sort"

	"github.com/openpdk/sg13/internal/device"
	"github.com/openpdk/sg13/internal/geom"
	"github.com/openpdk/sg13/internal/tech"
)

// Port is a named electrical connection point. Its position lies
// exactly on an edge of a polygon on the same layer; the annotator
// enforces that before a Cell leaves the synthesizer.
type Port struct {
	Name        string        `json:"name"`
	Layer       tech.LayerRef `json:"layer"`
	Position    geom.Point    `json:"position"`
	Orientation int           `json:"orientation"` // degrees, 0 = +x, counter-clockwise
	Width       geom.Coord    `json:"width"`
	Type        string        `json:"type"` // always "electrical" in this PDK
}

// Cell is one synthesized device instance. Cells are value objects:
// equal kind and spec key imply bit-identical geometry. After synthesis
// a Cell is never mutated; the cache hands the same instance to every
// caller.
type Cell struct {
	Name     string                    `json:"name"`
	Kind     device.Kind               `json:"kind"`
	Key      string                    `json:"key"`
	Polygons map[string][]geom.Polygon `json:"polygons"` // logical layer name -> polygons
	Ports    []Port                    `json:"ports"`
	Settings map[string]string         `json:"settings"` // normalized parameter echo
}

// NewCell creates an empty cell for a normalized spec.
func NewCell(name string, spec *device.Spec) *Cell {
	return &Cell{
		Name:     name,
		Kind:     spec.Kind(),
		Key:      spec.Key(),
		Polygons: make(map[string][]geom.Polygon),
		Settings: spec.Settings(),
	}
}

// Layers returns the cell's layer names in sorted order, so every
// consumer iterates geometry deterministically.
func (c *Cell) Layers() []string {
	names := make([]string, 0, len(c.Polygons))
	for n := range c.Polygons {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// PolyCount returns the total polygon count across all layers.
func (c *Cell) PolyCount() int {
	n := 0
	for _, polys := range c.Polygons {
		n += len(polys)
	}
	return n
}

// BBox returns the bounding rectangle over every polygon on every
// layer. An empty cell yields the zero rect.
func (c *Cell) BBox() geom.Rect {
	var bb geom.Rect
	first := true
	for _, layer := range c.Layers() {
		for _, p := range c.Polygons[layer] {
			if first {
				bb = p.BBox()
				first = false
				continue
			}
			bb = bb.Union(p.BBox())
		}
	}
	return bb
}

// LayerBBox returns the bounding rectangle of one layer's polygons and
// whether the layer has any geometry.
func (c *Cell) LayerBBox(layer string) (geom.Rect, bool) {
	polys := c.Polygons[layer]
	if len(polys) == 0 {
		return geom.Rect{}, false
	}
	bb := polys[0].BBox()
	for _, p := range polys[1:] {
		bb = bb.Union(p.BBox())
	}
	return bb, true
}
