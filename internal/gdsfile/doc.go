// Package gdsfile reads and writes GDSII stream format. The subset
// covers what flat parametric cells need: BOUNDARY elements with
// layer/datatype, TEXT labels for ports, and library units pinned to
// 1 dbu = 1 nm. Hierarchy (SREF/AREF) is out of scope; cells are
// written flat.
package gdsfile
