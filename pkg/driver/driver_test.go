package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signalflow/pkg/backend"
	"signalflow/pkg/block"
	"signalflow/pkg/graph"
)

const dt = 1e-6

// fixedBackend serves a constant snapshot and records duty pushes.
type fixedBackend struct {
	caps   backend.Capability
	snap   backend.Snapshot
	duties map[string]float64
	pushes int
}

func newFixedBackend(snap backend.Snapshot) *fixedBackend {
	return &fixedBackend{
		caps:   backend.CapDutyOverride | backend.CapVoltageProbe | backend.CapCurrentProbe,
		snap:   snap,
		duties: make(map[string]float64),
	}
}

func (f *fixedBackend) Name() string                     { return "fixed" }
func (f *fixedBackend) Capabilities() backend.Capability { return f.caps }
func (f *fixedBackend) Init(dt float64) error            { return nil }
func (f *fixedBackend) Snapshot() backend.Snapshot       { return f.snap }
func (f *fixedBackend) Advance(t, dt float64) error      { return nil }
func (f *fixedBackend) Close() error                     { return nil }

func (f *fixedBackend) SetDuty(d map[string]float64) error {
	f.pushes++
	for id, v := range d {
		f.duties[id] = v
	}
	return nil
}

func piLoop(kp, ki float64) ([]*block.Block, []graph.Wire) {
	blocks := []*block.Block{
		{ID: "ref", Kind: block.Constant, Params: map[string]float64{"value": 1}},
		{ID: "probe", Kind: block.VoltageProbe, Target: "V(out)"},
		{ID: "pi", Kind: block.PIController, Params: map[string]float64{"kp": kp, "ki": ki}},
		{ID: "pwm", Kind: block.PWMGenerator},
	}
	wires := []graph.Wire{
		{From: "ref", FromPin: block.PinOut, To: "pi", ToPin: block.PinRef},
		{From: "probe", FromPin: block.PinOut, To: "pi", ToPin: block.PinFB},
		{From: "pi", FromPin: block.PinOut, To: "pwm", ToPin: block.PinDutyIn},
	}
	return blocks, wires
}

func TestDutyInjection(t *testing.T) {
	// PI output 0.55 must arrive at the backend as exactly 0.55.
	blocks, wires := piLoop(0.55, 0) // ref=1, fb=0 -> out = 0.55
	be := newFixedBackend(backend.Snapshot{"V(out)": 0})

	drv, err := New(blocks, wires, be)
	require.NoError(t, err)

	outs, err := drv.Step(0, dt, be.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, 0.55, outs["pi"].Scalar())
	assert.Equal(t, 0.55, be.duties["pwm"])
}

func TestDutyClampedToUnitRange(t *testing.T) {
	blocks, wires := piLoop(1.15, 0) // PI output 1.15
	be := newFixedBackend(backend.Snapshot{"V(out)": 0})

	drv, err := New(blocks, wires, be)
	require.NoError(t, err)

	_, err = drv.Step(0, dt, be.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, 1.0, be.duties["pwm"])
}

func TestUnwiredDutyUsesStaticParameter(t *testing.T) {
	blocks := []*block.Block{
		{ID: "pwm", Kind: block.PWMGenerator, Params: map[string]float64{"duty_cycle": 0.3}},
	}
	be := newFixedBackend(backend.Snapshot{})

	drv, err := New(blocks, nil, be)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := drv.Step(float64(i)*dt, dt, be.Snapshot())
		require.NoError(t, err)
		assert.Equal(t, 0.3, be.duties["pwm"])
	}
}

func TestStepIsIdempotentForSameState(t *testing.T) {
	blocks, wires := piLoop(2, 100)
	be := newFixedBackend(backend.Snapshot{"V(out)": 0.25})

	drv, err := New(blocks, wires, be)
	require.NoError(t, err)

	first, err := drv.Step(0, dt, be.Snapshot())
	require.NoError(t, err)

	drv.Reset()
	second, err := drv.Step(0, dt, be.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestProbeFeedbackReachesController(t *testing.T) {
	blocks, wires := piLoop(1, 0)
	be := newFixedBackend(backend.Snapshot{"V(out)": 0.4})

	drv, err := New(blocks, wires, be)
	require.NoError(t, err)

	outs, err := drv.Step(0, dt, be.Snapshot())
	require.NoError(t, err)
	assert.InDelta(t, 0.4, outs["probe"].Scalar(), 1e-12)
	assert.InDelta(t, 0.6, outs["pi"].Scalar(), 1e-12) // 1*(1-0.4)
}

func TestAlgebraicLoopRejectedBeforeRun(t *testing.T) {
	blocks := []*block.Block{
		{ID: "A", Kind: block.Gain}, {ID: "B", Kind: block.Gain},
	}
	wires := []graph.Wire{
		{From: "A", FromPin: block.PinOut, To: "B", ToPin: block.PinIn},
		{From: "B", FromPin: block.PinOut, To: "A", ToPin: block.PinIn},
	}

	_, err := New(blocks, wires, newFixedBackend(backend.Snapshot{}))
	require.Error(t, err)
	loopErr, ok := err.(*graph.AlgebraicLoopError)
	require.True(t, ok, "got %T", err)
	assert.ElementsMatch(t, []string{"A", "B"}, loopErr.Blocks)
}

func TestMissingRequiredInputRejected(t *testing.T) {
	// PI without FB is a configuration error naming block and pin.
	blocks := []*block.Block{
		{ID: "ref", Kind: block.Constant, Params: map[string]float64{"value": 1}},
		{ID: "pi", Kind: block.PIController, Params: map[string]float64{"kp": 1}},
	}
	wires := []graph.Wire{
		{From: "ref", FromPin: block.PinOut, To: "pi", ToPin: block.PinRef},
	}

	_, err := New(blocks, wires, newFixedBackend(backend.Snapshot{}))
	require.Error(t, err)
	cfgErr, ok := err.(*ConfigError)
	require.True(t, ok, "got %T", err)
	assert.Equal(t, "pi", cfgErr.BlockID)
	assert.Equal(t, block.PinFB, cfgErr.Pin)
}

func TestMissingCapabilityRejected(t *testing.T) {
	blocks := []*block.Block{
		{ID: "probe", Kind: block.CurrentProbe, Target: "I(V1)"},
	}
	be := newFixedBackend(backend.Snapshot{})
	be.caps = backend.CapDutyOverride | backend.CapVoltageProbe // no current probes

	_, err := New(blocks, nil, be)
	require.Error(t, err)
	cfgErr, ok := err.(*ConfigError)
	require.True(t, ok, "got %T", err)
	assert.Equal(t, "probe", cfgErr.BlockID)
}

func TestNonFiniteOutputAborts(t *testing.T) {
	// Provoke an overflow to Inf through parameters; the step must abort
	// with the offending block named instead of propagating garbage.
	blocks := []*block.Block{
		{ID: "big", Kind: block.Constant, Params: map[string]float64{"value": 1e308}},
		{ID: "g", Kind: block.Gain, Params: map[string]float64{"gain": 1e308}},
	}
	wires := []graph.Wire{
		{From: "big", FromPin: block.PinOut, To: "g", ToPin: block.PinIn},
	}

	drv, err := New(blocks, wires, newFixedBackend(backend.Snapshot{}))
	require.NoError(t, err)

	_, err = drv.Step(0, dt, backend.Snapshot{})
	require.Error(t, err)
	evalErr, ok := err.(*EvalError)
	require.True(t, ok, "got %T", err)
	assert.Equal(t, "g", evalErr.BlockID)
}

func TestStatePersistsAcrossSteps(t *testing.T) {
	blocks := []*block.Block{
		{ID: "one", Kind: block.Constant, Params: map[string]float64{"value": 1}},
		{ID: "int", Kind: block.Integrator},
	}
	wires := []graph.Wire{
		{From: "one", FromPin: block.PinOut, To: "int", ToPin: block.PinIn},
	}
	be := newFixedBackend(backend.Snapshot{})

	drv, err := New(blocks, wires, be)
	require.NoError(t, err)

	var last float64
	for i := 0; i < 10; i++ {
		outs, err := drv.Step(float64(i), 0.5, be.Snapshot())
		require.NoError(t, err)
		last = outs["int"].Scalar()
	}
	assert.InDelta(t, 5.0, last, 1e-12)
}
