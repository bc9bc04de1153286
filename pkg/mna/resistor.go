package mna

import (
	"github.com/pkg/errors"
)

type Resistor struct {
	baseDevice
	value float64
}

func (r *Resistor) Type() string { return "R" }

func (r *Resistor) Stamp(m *Matrix, st *Status) error {
	if r.value <= 0 {
		return errors.Errorf("resistor %s: non-positive resistance %g", r.name, r.value)
	}
	stampConductance(m, r.nodes[0], r.nodes[1], 1.0/r.value)
	return nil
}

// current computes I through the resistor from a solution, n1 to n2.
func (r *Resistor) current(solution []float64) float64 {
	v1, v2 := r.nodeVoltages(solution)
	return (v1 - v2) / r.value
}
