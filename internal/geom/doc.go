// Package geom provides the fixed-point plane geometry the PDK is built
// on: integer database-unit coordinates, rectangles, grid-aligned
// polygons, and the manufacturing-grid snapper.
//
// All coordinates are int64 database units (1 dbu = 1 nm = 0.001 um).
// Keeping the core integer-only is what makes bit-exact equivalence
// against reference geometry possible; floating point appears only at
// the micron-valued API boundary and inside the polygon clipper.
package geom
