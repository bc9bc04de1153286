package wave

import (
	"sort"

	"signalflow/pkg/util"
)

// Recorder accumulates per-run time series keyed by variable name, e.g.
// "V(out)", "duty(pwm1)" or a block identifier. One recorder belongs to
// one run and is discarded with it.
type Recorder struct {
	runID  string
	times  []float64
	series map[string][]float64
}

func NewRecorder(runID string) *Recorder {
	return &Recorder{
		runID:  runID,
		series: make(map[string][]float64),
	}
}

func (r *Recorder) RunID() string { return r.runID }

// Record appends one time point. A point whose time formats identically
// to the previous one is dropped, so step-size jitter like 1.999999e-05
// vs 2.000000e-05 does not duplicate rows.
func (r *Recorder) Record(t float64, values map[string]float64) {
	if n := len(r.times); n > 0 {
		last := r.times[n-1]
		if t == last || util.FormatValueFactor(t, "s") == util.FormatValueFactor(last, "s") {
			return
		}
	}

	r.times = append(r.times, t)
	for name, v := range values {
		r.series[name] = append(r.series[name], v)
	}
}

// Times returns the recorded time axis.
func (r *Recorder) Times() []float64 { return r.times }

// Series returns the recorded values for one variable, nil when the
// variable was never recorded.
func (r *Recorder) Series(name string) []float64 { return r.series[name] }

// Names returns the recorded variable names, sorted.
func (r *Recorder) Names() []string {
	names := make([]string, 0, len(r.series))
	for name := range r.series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of recorded time points.
func (r *Recorder) Len() int { return len(r.times) }
