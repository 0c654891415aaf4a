// Package device defines the closed set of device kinds, the immutable
// DeviceSpec, and the parameter normalizer that turns caller-supplied
// micron values into validated, grid-aligned canonical specs.
package device
