package mna

import (
	"math"

	"github.com/pkg/errors"
)

// Switch is a PWM-gated two-terminal switch: Ron when the carrier is
// below the duty ratio, Roff otherwise. The duty comes from the bound
// signal-domain PWM generator via Circuit.SetDuty; until the first push
// it keeps its configured default.
type Switch struct {
	baseDevice
	ron    float64
	roff   float64
	freq   float64 // carrier frequency (Hz)
	duty   float64
	closed bool
}

func (s *Switch) Type() string { return "S" }

// setGate decides the switch state from the sawtooth carrier phase at
// the start of the step being solved.
func (s *Switch) setGate(t float64) {
	period := 1.0 / s.freq
	phase := math.Mod(t, period) / period
	s.closed = phase < s.duty
}

func (s *Switch) Stamp(m *Matrix, st *Status) error {
	if s.ron <= 0 || s.roff <= 0 {
		return errors.Errorf("switch %s: non-positive on/off resistance", s.name)
	}
	g := 1.0 / s.roff
	if s.closed {
		g = 1.0 / s.ron
	}
	stampConductance(m, s.nodes[0], s.nodes[1], g)
	return nil
}
