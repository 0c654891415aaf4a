package verify

import (
	"github.com/openpdk/sg13/internal/device"
	"github.com/openpdk/sg13/internal/layout"
)

// Reference produces independently generated geometry for a spec.
// Implementations wrap external generators or stored results; the
// production synthesis path never calls one.
type Reference interface {
	Synthesize(spec *device.Spec) (*layout.Cell, error)
}

// Against synthesizes the reference cell for a spec and compares the
// candidate against it.
func Against(cell *layout.Cell, spec *device.Spec, ref Reference) (*Result, error) {
	other, err := ref.Synthesize(spec)
	if err != nil {
		return nil, err
	}
	return Compare(cell, other), nil
}
