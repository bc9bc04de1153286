package block

import (
	"fmt"
)

// Kind of a signal-domain block.
type Kind int

const (
	Constant Kind = iota
	Gain
	Sum
	Subtractor
	Limiter
	RateLimiter
	Integrator
	PIController
	PIDController
	Hysteresis
	SampleHold
	Mux
	Demux
	VoltageProbe
	CurrentProbe
	PWMGenerator
)

var kindNames = map[Kind]string{
	Constant:      "Constant",
	Gain:          "Gain",
	Sum:           "Sum",
	Subtractor:    "Subtractor",
	Limiter:       "Limiter",
	RateLimiter:   "RateLimiter",
	Integrator:    "Integrator",
	PIController:  "PIController",
	PIDController: "PIDController",
	Hysteresis:    "Hysteresis",
	SampleHold:    "SampleHold",
	Mux:           "Mux",
	Demux:         "Demux",
	VoltageProbe:  "VoltageProbe",
	CurrentProbe:  "CurrentProbe",
	PWMGenerator:  "PWMGenerator",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Pin names shared by the block kinds. Multi-input kinds use indexed
// pins, see InPin and OutPin.
const (
	PinIn      = "IN"
	PinOut     = "OUT"
	PinMeas    = "MEAS"
	PinRef     = "REF"
	PinFB      = "FB"
	PinTrigger = "TRIGGER"
	PinDutyIn  = "DUTY_IN"
)

// InPin returns the i-th indexed input pin name ("IN_0", "IN_1", ...).
func InPin(i int) string { return fmt.Sprintf("IN_%d", i) }

// OutPin returns the i-th indexed output pin name ("OUT_0", "OUT_1", ...).
func OutPin(i int) string { return fmt.Sprintf("OUT_%d", i) }

// Block describes one signal-domain block of a schematic. The identifier
// is assigned by the schematic editor and stays stable for the session.
// Params hold the values set in the properties panel. Target names the
// electrical measurement a probe block reads, e.g. "V(out)" or "I(V1)";
// it is empty for every other kind.
type Block struct {
	ID     string
	Kind   Kind
	Params map[string]float64
	Target string
}

// Param returns the named parameter, or def when it is not set.
func (b *Block) Param(name string, def float64) float64 {
	if v, ok := b.Params[name]; ok {
		return v
	}
	return def
}

// ParamOK returns the named parameter and whether it is set.
func (b *Block) ParamOK(name string) (float64, bool) {
	v, ok := b.Params[name]
	return v, ok
}

// Signal is the value carried by one wire during one step. Most blocks
// produce a single scalar; Mux produces a vector bus.
type Signal []float64

// Scalar wraps a single value as a Signal.
func Scalar(v float64) Signal { return Signal{v} }

// Scalar returns the first element of the signal, 0 when unconnected.
func (s Signal) Scalar() float64 {
	if len(s) == 0 {
		return 0
	}
	return s[0]
}

// Inputs are the resolved upstream values of one block for one step,
// keyed by input pin name. Unwired pins are simply absent.
type Inputs map[string]Signal

// Scalar returns the scalar value on the given pin, 0 when unwired.
func (in Inputs) Scalar(pin string) float64 { return in[pin].Scalar() }

// Outputs are the values a block produced this step, keyed by output pin.
type Outputs map[string]Signal

// Primary returns the block's main output: OUT if present, MEAS as the
// probe fallback, otherwise the zero signal.
func (out Outputs) Primary() Signal {
	if s, ok := out[PinOut]; ok {
		return s
	}
	if s, ok := out[PinMeas]; ok {
		return s
	}
	return nil
}

// State is the per-block memory carried across steps. The fields are
// shared between kinds; each evaluator touches only its own. All fields
// are zero at run start.
type State struct {
	Accum    float64 // Integrator accumulator, PI/PID integral
	LastErr  float64 // PID previous error
	LastOut  float64 // RateLimiter / Hysteresis previous output
	Held     float64 // SampleHold latch
	LastTrig float64 // SampleHold previous trigger level
}

// StepContext carries the per-step environment shared by all evaluators:
// the simulation clock and the electrical measurements resolved for the
// probe blocks, keyed by probe block ID.
type StepContext struct {
	Time     float64
	TimeStep float64
	Meas     map[string]float64
}

// RequiredPins lists the input pins that must be wired for a kind to be
// evaluated at all. Everything else falls back to a documented default
// (0 for unwired scalar inputs, the static duty_cycle parameter for
// PWMGenerator).
func RequiredPins(k Kind) []string {
	switch k {
	case PIController, PIDController:
		return []string{PinRef, PinFB}
	case Demux:
		return []string{PinIn}
	default:
		return nil
	}
}
