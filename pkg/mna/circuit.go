package mna

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"signalflow/internal/consts"
	"signalflow/pkg/backend"
)

// Circuit is a small self-contained transient MNA engine implementing
// the backend adapter. It exists so a schematic's control loop can be
// exercised end to end without the native solver: DC/SIN sources,
// resistors, capacitors and PWM-gated switches are enough for the
// converter demos and the test-bench circuits.
type Circuit struct {
	name      string
	nodeMap   map[string]int
	branchMap map[string]int
	devices   []Device
	switches  map[string]*Switch // PWM generator ID -> bound switch
	mat       *Matrix
	dt        float64
	solution  []float64
	compiled  bool
}

var _ backend.Adapter = (*Circuit)(nil)

func NewCircuit(name string) *Circuit {
	return &Circuit{
		name:      name,
		nodeMap:   make(map[string]int),
		branchMap: make(map[string]int),
		switches:  make(map[string]*Switch),
	}
}

func (c *Circuit) AddResistor(name, n1, n2 string, value float64) {
	c.devices = append(c.devices, &Resistor{
		baseDevice: baseDevice{name: name, nodeNames: [2]string{n1, n2}},
		value:      value,
	})
}

func (c *Circuit) AddCapacitor(name, n1, n2 string, value float64) {
	c.devices = append(c.devices, &Capacitor{
		baseDevice: baseDevice{name: name, nodeNames: [2]string{n1, n2}},
		value:      value,
	})
}

func (c *Circuit) AddDCSource(name, n1, n2 string, value float64) {
	c.devices = append(c.devices, &VoltageSource{
		baseDevice: baseDevice{name: name, nodeNames: [2]string{n1, n2}},
		shape:      shapeDC,
		dcValue:    value,
	})
}

func (c *Circuit) AddSinSource(name, n1, n2 string, offset, amplitude, freq, phase float64) {
	c.devices = append(c.devices, &VoltageSource{
		baseDevice: baseDevice{name: name, nodeNames: [2]string{n1, n2}},
		shape:      shapeSin,
		dcValue:    offset,
		amplitude:  amplitude,
		freq:       freq,
		phase:      phase,
	})
}

// AddSwitch adds a PWM-gated switch bound to the signal-domain PWM
// generator with the given identifier. duty is the default ratio used
// until the first SetDuty push.
func (c *Circuit) AddSwitch(name, n1, n2 string, ron, roff, freq, duty float64, generatorID string) {
	sw := &Switch{
		baseDevice: baseDevice{name: name, nodeNames: [2]string{n1, n2}},
		ron:        ron,
		roff:       roff,
		freq:       freq,
		duty:       duty,
	}
	c.devices = append(c.devices, sw)
	c.switches[generatorID] = sw
}

// Compile assigns node and branch indices and allocates the matrix.
// Nodes get 1..n in first-seen order, ground ("0" or "gnd") stays 0;
// voltage-source branches follow the nodes.
func (c *Circuit) Compile() error {
	if c.compiled {
		return errors.New("circuit already compiled")
	}
	if len(c.devices) == 0 {
		return errors.New("empty circuit")
	}

	for _, dev := range c.devices {
		base := deviceBase(dev)
		for i, nodeName := range base.nodeNames {
			if nodeName == "0" || nodeName == "gnd" {
				base.nodes[i] = 0
				continue
			}
			idx, exists := c.nodeMap[nodeName]
			if !exists {
				idx = len(c.nodeMap) + 1
				c.nodeMap[nodeName] = idx
			}
			base.nodes[i] = idx
		}
	}

	branchStart := len(c.nodeMap) + 1
	for _, dev := range c.devices {
		if v, ok := dev.(*VoltageSource); ok {
			c.branchMap[v.name] = branchStart
			v.branchIdx = branchStart
			branchStart++
		}
	}

	size := len(c.nodeMap) + len(c.branchMap)
	mat, err := NewMatrix(size)
	if err != nil {
		return errors.Wrapf(err, "compiling circuit %s", c.name)
	}
	mat.SetupElements()
	c.mat = mat
	c.compiled = true
	return nil
}

func deviceBase(dev Device) *baseDevice {
	switch d := dev.(type) {
	case *Resistor:
		return &d.baseDevice
	case *Capacitor:
		return &d.baseDevice
	case *VoltageSource:
		return &d.baseDevice
	case *Switch:
		return &d.baseDevice
	default:
		panic(fmt.Sprintf("unknown device type %T", dev))
	}
}

// Name implements backend.Adapter.
func (c *Circuit) Name() string { return c.name }

func (c *Circuit) Capabilities() backend.Capability {
	return backend.CapDutyOverride | backend.CapVoltageProbe | backend.CapCurrentProbe
}

// Init compiles the circuit if needed and solves the t=0 point so the
// first snapshot is available before step 0.
func (c *Circuit) Init(dt float64) error {
	if dt <= 0 {
		return errors.Errorf("invalid timestep %g", dt)
	}
	if !c.compiled {
		if err := c.Compile(); err != nil {
			return err
		}
	}
	c.dt = dt

	for _, sw := range c.switches {
		sw.setGate(0)
	}
	return c.solve(&Status{Time: 0, TimeStep: dt})
}

// SetDuty applies duty overrides to the switches bound to the named PWM
// generators. Clamping to [0, 1] has already happened in the signal
// domain; a stray value is clamped again rather than trusted.
func (c *Circuit) SetDuty(duties map[string]float64) error {
	for id, duty := range duties {
		sw, ok := c.switches[id]
		if !ok {
			return errors.Errorf("no switch bound to PWM generator %q", id)
		}
		sw.duty = math.Min(math.Max(duty, 0), 1)
	}
	return nil
}

// Advance solves one step from t to t+dt. Switch gates are decided at
// the start of the step, so duty pushed for this step shapes this
// step's conduction.
func (c *Circuit) Advance(t, dt float64) error {
	if c.mat == nil {
		return errors.New("backend not initialized")
	}

	for _, sw := range c.switches {
		sw.setGate(t)
	}

	st := &Status{Time: t + dt, TimeStep: dt}
	if err := c.solve(st); err != nil {
		return errors.Wrapf(err, "advancing to t=%g", t+dt)
	}

	for _, dev := range c.devices {
		if td, ok := dev.(TimeDependent); ok {
			td.UpdateState(c.solution, st)
		}
	}
	return nil
}

// solve iterates stamp/factor/solve until two successive solutions
// agree within tolerance. The demo devices are linear, so this settles
// on the second pass; the loop shape matches a Newton-Raphson solver so
// nonlinear devices can slot in.
func (c *Circuit) solve(st *Status) error {
	var prev []float64

	for iter := 0; iter < consts.MaxIter; iter++ {
		c.mat.Clear()
		for _, dev := range c.devices {
			if err := dev.Stamp(c.mat, st); err != nil {
				return errors.Wrapf(err, "stamping device %s", dev.Name())
			}
		}
		c.mat.LoadGmin(consts.Gmin)

		if err := c.mat.Solve(); err != nil {
			return err
		}

		solution := c.mat.Solution()
		if prev != nil && converged(prev, solution) {
			c.solution = append([]float64(nil), solution...)
			return nil
		}
		prev = append(prev[:0], solution...)
	}

	return errors.Errorf("failed to converge in %d iterations", consts.MaxIter)
}

func converged(oldSol, newSol []float64) bool {
	if len(oldSol) != len(newSol) {
		return false
	}
	for i := range oldSol {
		diff := math.Abs(newSol[i] - oldSol[i])
		if diff > consts.Abstol && diff > consts.Reltol*math.Abs(newSol[i]) {
			return false
		}
	}
	return true
}

// Snapshot returns node voltages as V(name), source branch currents as
// I(name), and resistor currents as I(name), matching the naming probe
// targets use.
func (c *Circuit) Snapshot() backend.Snapshot {
	snap := make(backend.Snapshot, len(c.nodeMap)+len(c.branchMap))
	if c.solution == nil {
		return snap
	}

	for name, idx := range c.nodeMap {
		snap[fmt.Sprintf("V(%s)", name)] = c.solution[idx]
	}
	for name, idx := range c.branchMap {
		snap[fmt.Sprintf("I(%s)", name)] = -c.solution[idx]
	}
	for _, dev := range c.devices {
		if r, ok := dev.(*Resistor); ok {
			snap[fmt.Sprintf("I(%s)", r.name)] = r.current(c.solution)
		}
	}
	return snap
}

func (c *Circuit) Close() error {
	if c.mat != nil {
		c.mat.Destroy()
		c.mat = nil
	}
	return nil
}
