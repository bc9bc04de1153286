package mna

// Status carries the conditions a solve runs under.
type Status struct {
	Time     float64 // end of the step being solved
	TimeStep float64
}

// Device is one stamped element of the demo circuit.
type Device interface {
	Name() string
	Type() string
	Stamp(m *Matrix, st *Status) error
}

// TimeDependent devices keep companion-model history that must be
// refreshed from the accepted solution after each step.
type TimeDependent interface {
	UpdateState(solution []float64, st *Status)
}

type baseDevice struct {
	name      string
	nodeNames [2]string
	nodes     [2]int // matrix indices assigned at Compile, 0 = ground
}

func (d *baseDevice) Name() string { return d.name }

// nodeVoltages reads the device's terminal voltages from a solution.
func (d *baseDevice) nodeVoltages(solution []float64) (float64, float64) {
	v1, v2 := 0.0, 0.0
	if d.nodes[0] != 0 && d.nodes[0] < len(solution) {
		v1 = solution[d.nodes[0]]
	}
	if d.nodes[1] != 0 && d.nodes[1] < len(solution) {
		v2 = solution[d.nodes[1]]
	}
	return v1, v2
}

// stampConductance adds a two-terminal conductance between the device
// nodes, skipping ground rows and columns.
func stampConductance(m *Matrix, n1, n2 int, g float64) {
	if n1 != 0 {
		m.AddElement(n1, n1, g)
		if n2 != 0 {
			m.AddElement(n1, n2, -g)
		}
	}
	if n2 != 0 {
		m.AddElement(n2, n2, g)
		if n1 != 0 {
			m.AddElement(n2, n1, -g)
		}
	}
}
