package pcell

import (
	"errors"
	"fmt"

	"github.com/openpdk/sg13/internal/device"
	"github.com/openpdk/sg13/internal/geom"
)

// DesignRuleViolation reports that a parameter combination, though
// individually in range, yields geometry that breaks a named design
// rule. Synthesis fails fast on the first violation; no partial cell
// is returned.
type DesignRuleViolation struct {
	Kind   device.Kind
	Rule   string
	Detail string
}

func (e *DesignRuleViolation) Error() string {
	return fmt.Sprintf("%s: design rule %s violated: %s", e.Kind, e.Rule, e.Detail)
}

// IsDesignRuleViolation reports whether err wraps a DesignRuleViolation.
func IsDesignRuleViolation(err error) (*DesignRuleViolation, bool) {
	var v *DesignRuleViolation
	ok := errors.As(err, &v)
	return v, ok
}

// PortPlacementError reports a port whose position does not lie on the
// boundary of any polygon on its layer. It indicates a defect in a
// synthesis strategy, not in the caller's parameters.
type PortPlacementError struct {
	Cell     string
	Port     string
	Layer    string
	Position geom.Point
}

func (e *PortPlacementError) Error() string {
	return fmt.Sprintf("%s: port %s at (%d, %d) is not on a polygon edge of layer %s",
		e.Cell, e.Port, e.Position.X, e.Position.Y, e.Layer)
}
