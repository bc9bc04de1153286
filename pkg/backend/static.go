package backend

import (
	"github.com/pkg/errors"
)

// Static is a placeholder backend that replays fixed waveforms instead
// of solving a circuit. It stands in for the native solver in tests and
// demos that only need plausible measurements.
type Static struct {
	waveforms map[string]func(t float64) float64
	duties    map[string]float64
	time      float64
	running   bool
}

var _ Adapter = (*Static)(nil)

// NewStatic builds a placeholder backend whose snapshot evaluates the
// given waveform functions at the current simulation time.
func NewStatic(waveforms map[string]func(t float64) float64) *Static {
	return &Static{
		waveforms: waveforms,
		duties:    make(map[string]float64),
	}
}

func (s *Static) Name() string { return "static" }

func (s *Static) Capabilities() Capability {
	return CapDutyOverride | CapVoltageProbe | CapCurrentProbe
}

func (s *Static) Init(dt float64) error {
	if dt <= 0 {
		return errors.Errorf("invalid timestep %g", dt)
	}
	s.time = 0
	s.running = true
	return nil
}

func (s *Static) Snapshot() Snapshot {
	snap := make(Snapshot, len(s.waveforms))
	for name, f := range s.waveforms {
		snap[name] = f(s.time)
	}
	return snap
}

func (s *Static) SetDuty(duties map[string]float64) error {
	if !s.running {
		return errors.New("backend not initialized")
	}
	for id, d := range duties {
		s.duties[id] = d
	}
	return nil
}

// Duty returns the last duty pushed for a generator. Test hook.
func (s *Static) Duty(id string) (float64, bool) {
	d, ok := s.duties[id]
	return d, ok
}

func (s *Static) Advance(t, dt float64) error {
	if !s.running {
		return errors.New("backend not initialized")
	}
	s.time = t + dt
	return nil
}

func (s *Static) Close() error {
	s.running = false
	return nil
}
