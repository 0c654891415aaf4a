// Package tech holds the read-only process description: the layer stack
// (logical layer names bound to physical GDS layer/datatype pairs) and
// the design-rule repository (minimum widths, spacings, enclosures and
// per-device parameter ranges).
//
// Both tables are loaded once - the layer stack from a KLayout .lyp
// layer-properties file, the rules from a CUE document - and are never
// mutated afterwards. There is no ambient "active PDK": callers thread
// a *Tech through every synthesis call.
package tech
