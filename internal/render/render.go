// Package render draws cells as plots for visual review. Layers use
// the fill colors from the layer map, drawn bottom-up in stack order
// so wells and implants sit under metal.
package render

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/openpdk/sg13/internal/layout"
	"github.com/openpdk/sg13/internal/tech"
)

// parseHexColor turns a "#rrggbb" fill color into an RGBA with the
// given alpha. Unparseable or empty colors fall back to gray.
func parseHexColor(s string, alpha uint8) color.Color {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{R: 128, G: 128, B: 128, A: alpha}
	}
	return color.RGBA{R: r, G: g, B: b, A: alpha}
}

type polyXYs struct {
	poly []plotter.XY
}

func (p polyXYs) Len() int                { return len(p.poly) }
func (p polyXYs) XY(i int) (x, y float64) { return p.poly[i].X, p.poly[i].Y }

// Cell builds a plot of one cell with axes in microns.
func Cell(cell *layout.Cell, stack *tech.Stack) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = cell.Name
	p.X.Label.Text = "x (um)"
	p.Y.Label.Text = "y (um)"

	for _, layer := range cell.Layers() {
		if _, err := stack.Resolve(layer); err != nil {
			return nil, err
		}
		fill := parseHexColor(stack.FillColor(layer), 96)
		for _, poly := range cell.Polygons[layer] {
			xys := polyXYs{poly: make([]plotter.XY, len(poly))}
			for i, pt := range poly {
				xys.poly[i] = plotter.XY{X: pt.X.Microns(), Y: pt.Y.Microns()}
			}
			pg, err := plotter.NewPolygon(xys)
			if err != nil {
				return nil, fmt.Errorf("plot %s: %w", layer, err)
			}
			pg.Color = fill
			pg.LineStyle.Color = parseHexColor(stack.FillColor(layer), 255)
			p.Add(pg)
		}
	}

	// Port positions as markers.
	if len(cell.Ports) > 0 {
		pts := make(plotter.XYs, len(cell.Ports))
		for i, port := range cell.Ports {
			pts[i] = plotter.XY{X: port.Position.X.Microns(), Y: port.Position.Y.Microns()}
		}
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("plot ports: %w", err)
		}
		scatter.GlyphStyle.Color = color.RGBA{R: 255, A: 255}
		p.Add(scatter)
	}

	return p, nil
}

// SaveCell renders a cell to a file; the format follows the
// extension (.png, .svg, .pdf).
func SaveCell(cell *layout.Cell, stack *tech.Stack, width, height vg.Length, path string) error {
	p, err := Cell(cell, stack)
	if err != nil {
		return err
	}
	if err := p.Save(width, height, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
