package driver

import (
	"math"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"signalflow/pkg/backend"
	"signalflow/pkg/block"
	"signalflow/pkg/graph"
)

// Driver evaluates the signal-flow blocks once per electrical timestep
// and feeds resolved duty ratios back to the backend. It owns all
// cross-step simulation state, so concurrent runs (parameter sweeps)
// each get their own Driver and never share anything.
type Driver struct {
	runID   string
	g       *graph.Graph
	order   []string
	states  map[string]block.State
	adapter backend.Adapter
	duties  map[string]float64
}

// New builds a driver for one simulation run. All configuration errors
// surface here, before step 0: algebraic loops as *graph.AlgebraicLoopError,
// unwired required inputs and missing backend capabilities as *ConfigError.
// A driver that constructs cleanly will not fail on a step except for
// genuine evaluator faults.
func New(blocks []*block.Block, wires []graph.Wire, adapter backend.Adapter) (*Driver, error) {
	if adapter == nil {
		return nil, errors.New("nil backend adapter")
	}

	g := graph.Build(blocks, wires)
	order, err := g.Order()
	if err != nil {
		return nil, err
	}

	if err := validate(g, adapter.Capabilities()); err != nil {
		return nil, err
	}

	d := &Driver{
		runID:   uuid.NewString(),
		g:       g,
		order:   order,
		states:  make(map[string]block.State, g.Size()),
		adapter: adapter,
		duties:  make(map[string]float64),
	}
	d.Reset()
	return d, nil
}

func validate(g *graph.Graph, caps backend.Capability) error {
	for _, id := range g.IDs() {
		b := g.Block(id)
		for _, pin := range block.RequiredPins(b.Kind) {
			if !g.Wired(id, pin) {
				return &ConfigError{BlockID: id, Pin: pin, Reason: "is required but unconnected"}
			}
		}

		var need backend.Capability
		switch b.Kind {
		case block.VoltageProbe:
			need = backend.CapVoltageProbe
		case block.CurrentProbe:
			need = backend.CapCurrentProbe
		case block.PWMGenerator:
			need = backend.CapDutyOverride
		}
		if need != 0 && !caps.Has(need) {
			return &ConfigError{BlockID: id, Reason: "backend does not support " + b.Kind.String()}
		}
	}
	return nil
}

// RunID identifies this run, e.g. for tagging recorded waveforms.
func (d *Driver) RunID() string { return d.runID }

// Order returns the cached evaluation order. Computed once at
// construction; the topology is static for the run.
func (d *Driver) Order() []string { return d.order }

// Reset zeroes every block's cross-step state, as at run start.
func (d *Driver) Reset() {
	for _, id := range d.g.IDs() {
		d.states[id] = block.State{}
	}
}

// Step runs one full evaluation pass in topological order and pushes
// the resolved PWM duty ratios to the backend, so they take effect in
// the electrical step about to be solved. It returns each block's
// primary output keyed by block ID.
func (d *Driver) Step(t, dt float64, snap backend.Snapshot) (map[string]block.Signal, error) {
	ctx := &block.StepContext{
		Time:     t,
		TimeStep: dt,
		Meas:     d.measurements(snap),
	}

	outputs := make(map[string]block.Outputs, len(d.order))
	resolved := make(map[string]block.Signal, len(d.order))

	for _, id := range d.order {
		b := d.g.Block(id)

		in := make(block.Inputs)
		for pin, src := range d.g.Inputs(id) {
			if outs, ok := outputs[src.ID]; ok {
				in[pin] = outs[src.Pin]
			}
		}

		outs, st, err := block.Evaluate(b, in, d.states[id], ctx)
		if err != nil {
			return nil, &EvalError{BlockID: id, Err: err}
		}
		for pin, s := range outs {
			for _, v := range s {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return nil, &EvalError{BlockID: id, Err: errors.Errorf("non-finite output %g on pin %s", v, pin)}
				}
			}
		}

		d.states[id] = st
		outputs[id] = outs
		resolved[id] = outs.Primary()
	}

	duties := d.resolveDuties(resolved)
	if len(duties) > 0 {
		if err := d.adapter.SetDuty(duties); err != nil {
			return nil, errors.Wrap(err, "pushing duty overrides")
		}
	}
	d.duties = duties

	return resolved, nil
}

// resolveDuties extracts the duty ratio of every PWM generator. A wired
// DUTY_IN uses the evaluator's clamped output; an unwired generator
// reads its static duty_cycle parameter directly, without consulting
// the evaluator.
func (d *Driver) resolveDuties(resolved map[string]block.Signal) map[string]float64 {
	duties := make(map[string]float64)
	for _, id := range d.g.IDs() {
		b := d.g.Block(id)
		if b.Kind != block.PWMGenerator {
			continue
		}
		if d.g.Wired(id, block.PinDutyIn) {
			duties[id] = resolved[id].Scalar()
		} else {
			duties[id] = b.Param("duty_cycle", 0)
		}
	}
	return duties
}

// measurements maps the snapshot onto the probe blocks: each probe reads
// the measurement named by its Target. An unresolved target reads 0.
func (d *Driver) measurements(snap backend.Snapshot) map[string]float64 {
	meas := make(map[string]float64)
	for _, id := range d.g.IDs() {
		b := d.g.Block(id)
		if b.Kind != block.VoltageProbe && b.Kind != block.CurrentProbe {
			continue
		}
		meas[id] = snap[b.Target]
	}
	return meas
}

// Duties returns the duty ratios pushed on the last step, keyed by PWM
// generator ID.
func (d *Driver) Duties() map[string]float64 { return d.duties }
