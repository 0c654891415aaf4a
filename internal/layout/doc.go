// Package layout defines the value objects geometry flows through: the
// Cell (one synthesized device instance: polygons per layer, ports,
// settings echo) and its canonical serialization used for cache keys,
// golden snapshots and the geometry exchange boundary.
package layout
