package mna

import (
	"math"
)

type sourceShape int

const (
	shapeDC sourceShape = iota
	shapeSin
)

// VoltageSource is an independent source with its own branch equation.
type VoltageSource struct {
	baseDevice
	shape     sourceShape
	dcValue   float64
	amplitude float64
	freq      float64
	phase     float64 // degrees
	branchIdx int
}

func (v *VoltageSource) Type() string { return "V" }

func (v *VoltageSource) voltage(t float64) float64 {
	switch v.shape {
	case shapeSin:
		phaseRad := v.phase * math.Pi / 180.0
		return v.dcValue + v.amplitude*math.Sin(2.0*math.Pi*v.freq*t+phaseRad)
	default:
		return v.dcValue
	}
}

func (v *VoltageSource) Stamp(m *Matrix, st *Status) error {
	n1, n2 := v.nodes[0], v.nodes[1]
	bIdx := v.branchIdx

	// v1 - v2 = V
	if n1 != 0 {
		m.AddElement(bIdx, n1, 1)
		m.AddElement(n1, bIdx, 1)
	}
	if n2 != 0 {
		m.AddElement(bIdx, n2, -1)
		m.AddElement(n2, bIdx, -1)
	}

	m.AddRHS(bIdx, v.voltage(st.Time))
	return nil
}
