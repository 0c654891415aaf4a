// Package verify decides geometric equivalence of two cells by
// polygon-exact XOR. Two cells are equivalent when the symmetric
// difference of their geometry is empty on every layer; anything
// else is reported per layer with the residual polygons and their
// area, never just a boolean.
package verify
