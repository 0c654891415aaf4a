// Package pcell synthesizes device geometry. Each device kind has one
// synthesis strategy that turns a normalized spec into a Cell:
// rectangles placed left-to-right (or outward from the body center),
// contact arrays tiled into their enclosing regions, and ports pinned
// to the edges of the pin-sublayer geometry. All placement goes
// through the manufacturing-grid snapper, so every emitted vertex is
// grid-aligned by construction.
package pcell
