package backend

// Capability flags what an electrical backend can do for the signal
// domain. The driver checks the schematic's needs against these at run
// setup, before the first step.
type Capability uint32

const (
	CapDutyOverride Capability = 1 << iota
	CapVoltageProbe
	CapCurrentProbe
)

// Has reports whether c includes every flag in f.
func (c Capability) Has(f Capability) bool { return c&f == f }

// Snapshot holds the measurements of the last completed electrical
// solve, keyed the way the solver names them, e.g. "V(out)" or "I(V1)".
type Snapshot map[string]float64

// Adapter is the narrow boundary to the electrical solver: push duty
// overrides in, pull a measurement snapshot out. The solver itself
// (device models, matrix assembly, convergence) stays behind it.
type Adapter interface {
	Name() string
	Capabilities() Capability

	// Init prepares the backend for a fixed-step run starting at t=0.
	Init(dt float64) error

	// Snapshot returns the measurements of the last completed step.
	Snapshot() Snapshot

	// SetDuty applies duty ratios keyed by PWM generator identifier.
	// Overrides take effect on the next Advance, so a duty computed from
	// this step's measurements shapes this step's switching.
	SetDuty(duties map[string]float64) error

	// Advance solves one electrical step from t to t+dt.
	Advance(t, dt float64) error

	Close() error
}
