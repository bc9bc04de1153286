package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signalflow/pkg/block"
)

func blk(id string, kind block.Kind) *block.Block {
	return &block.Block{ID: id, Kind: kind}
}

func position(t *testing.T, order []string, id string) int {
	t.Helper()
	for i, v := range order {
		if v == id {
			return i
		}
	}
	t.Fatalf("block %s missing from order %v", id, order)
	return -1
}

func TestOrderRespectsWires(t *testing.T) {
	// Constant -> Subtractor.IN_0, Probe -> Gain -> Subtractor.IN_1,
	// Subtractor -> Limiter -> PI.REF, PI -> PWM.DUTY_IN.
	blocks := []*block.Block{
		blk("pwm", block.PWMGenerator),
		blk("pi", block.PIController),
		blk("limit", block.Limiter),
		blk("sub", block.Subtractor),
		blk("gain", block.Gain),
		blk("probe", block.VoltageProbe),
		blk("const", block.Constant),
		blk("fb", block.Constant),
	}
	wires := []Wire{
		{From: "const", FromPin: block.PinOut, To: "sub", ToPin: block.InPin(0)},
		{From: "probe", FromPin: block.PinOut, To: "gain", ToPin: block.PinIn},
		{From: "gain", FromPin: block.PinOut, To: "sub", ToPin: block.InPin(1)},
		{From: "sub", FromPin: block.PinOut, To: "limit", ToPin: block.PinIn},
		{From: "limit", FromPin: block.PinOut, To: "pi", ToPin: block.PinRef},
		{From: "fb", FromPin: block.PinOut, To: "pi", ToPin: block.PinFB},
		{From: "pi", FromPin: block.PinOut, To: "pwm", ToPin: block.PinDutyIn},
	}

	g := Build(blocks, wires)
	order, err := g.Order()
	require.NoError(t, err)
	require.Len(t, order, len(blocks))

	// Every wire's source strictly precedes its destination.
	for _, w := range wires {
		assert.Less(t, position(t, order, w.From), position(t, order, w.To),
			"%s must precede %s", w.From, w.To)
	}
}

func TestOrderIsDeterministic(t *testing.T) {
	blocks := []*block.Block{
		blk("a", block.Constant), blk("b", block.Constant), blk("c", block.Sum),
		blk("d", block.Gain), blk("e", block.Gain),
	}
	wires := []Wire{
		{From: "a", FromPin: block.PinOut, To: "c", ToPin: block.InPin(0)},
		{From: "b", FromPin: block.PinOut, To: "c", ToPin: block.InPin(1)},
		{From: "c", FromPin: block.PinOut, To: "d", ToPin: block.PinIn},
		{From: "c", FromPin: block.PinOut, To: "e", ToPin: block.PinIn},
	}

	first, err := Build(blocks, wires).Order()
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := Build(blocks, wires).Order()
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCycleDetection(t *testing.T) {
	blocks := []*block.Block{blk("A", block.Gain), blk("B", block.Gain)}
	wires := []Wire{
		{From: "A", FromPin: block.PinOut, To: "B", ToPin: block.PinIn},
		{From: "B", FromPin: block.PinOut, To: "A", ToPin: block.PinIn},
	}

	_, err := Build(blocks, wires).Order()
	require.Error(t, err)

	loopErr, ok := err.(*AlgebraicLoopError)
	require.True(t, ok, "expected *AlgebraicLoopError, got %T", err)
	assert.ElementsMatch(t, []string{"A", "B"}, loopErr.Blocks)
}

func TestCycleReportIsSupersetOfLoop(t *testing.T) {
	// root -> A <-> B -> tail: the undrained set must contain the A/B
	// loop; tail hangs off it and may be reported too.
	blocks := []*block.Block{
		blk("root", block.Constant), blk("A", block.Sum),
		blk("B", block.Gain), blk("tail", block.Gain),
	}
	wires := []Wire{
		{From: "root", FromPin: block.PinOut, To: "A", ToPin: block.InPin(0)},
		{From: "A", FromPin: block.PinOut, To: "B", ToPin: block.PinIn},
		{From: "B", FromPin: block.PinOut, To: "A", ToPin: block.InPin(1)},
		{From: "B", FromPin: block.PinOut, To: "tail", ToPin: block.PinIn},
	}

	_, err := Build(blocks, wires).Order()
	loopErr, ok := err.(*AlgebraicLoopError)
	require.True(t, ok)
	assert.NotEmpty(t, loopErr.Blocks)
	assert.Subset(t, loopErr.Blocks, []string{"A", "B"})
	assert.NotContains(t, loopErr.Blocks, "root")
}

func TestElectricalWiresIgnored(t *testing.T) {
	// Wires touching blocks outside the signal-domain set belong to the
	// electrical netlist and do not create edges.
	blocks := []*block.Block{blk("g", block.Gain)}
	wires := []Wire{
		{From: "R1", FromPin: "p", To: "g", ToPin: block.PinIn},
		{From: "g", FromPin: block.PinOut, To: "R2", ToPin: "n"},
	}

	g := Build(blocks, wires)
	assert.Equal(t, 1, g.Size())
	assert.False(t, g.Wired("g", block.PinIn))

	order, err := g.Order()
	require.NoError(t, err)
	assert.Equal(t, []string{"g"}, order)
}

func TestLastWireIntoPinWins(t *testing.T) {
	blocks := []*block.Block{
		blk("a", block.Constant), blk("b", block.Constant), blk("g", block.Gain),
	}
	wires := []Wire{
		{From: "a", FromPin: block.PinOut, To: "g", ToPin: block.PinIn},
		{From: "b", FromPin: block.PinOut, To: "g", ToPin: block.PinIn},
	}

	g := Build(blocks, wires)
	src := g.Inputs("g")[block.PinIn]
	assert.Equal(t, "b", src.ID)

	order, err := g.Order()
	require.NoError(t, err)
	assert.Less(t, position(t, order, "b"), position(t, order, "g"))
}
