package mna

// Capacitor uses the backward-Euler companion model in transient: a
// conductance C/dt in parallel with a current source holding the
// previous voltage.
type Capacitor struct {
	baseDevice
	value    float64
	voltage0 float64 // accepted voltage of the previous step
}

var _ TimeDependent = (*Capacitor)(nil)

func (c *Capacitor) Type() string { return "C" }

func (c *Capacitor) Stamp(m *Matrix, st *Status) error {
	geq := c.value / st.TimeStep
	ceq := geq * c.voltage0
	n1, n2 := c.nodes[0], c.nodes[1]

	stampConductance(m, n1, n2, geq)
	if n1 != 0 {
		m.AddRHS(n1, ceq)
	}
	if n2 != 0 {
		m.AddRHS(n2, -ceq)
	}
	return nil
}

func (c *Capacitor) UpdateState(solution []float64, st *Status) {
	v1, v2 := c.nodeVoltages(solution)
	c.voltage0 = v1 - v2
}
