package driver

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"signalflow/pkg/block"
	"signalflow/pkg/wave"
)

// Runner drives the electrical backend and the signal evaluator in
// lock-step over a fixed-step transient run: snapshot, evaluate, push
// duty, advance. Evaluation itself is strictly sequential; the whole
// run is meant to live on one worker goroutine, with cancellation
// checked between steps.
type Runner struct {
	drv      *Driver
	stopTime float64
	timeStep float64
	rec      *wave.Recorder
}

func NewRunner(drv *Driver, stopTime, timeStep float64) *Runner {
	return &Runner{
		drv:      drv,
		stopTime: stopTime,
		timeStep: timeStep,
		rec:      wave.NewRecorder(drv.RunID()),
	}
}

// Recorder returns the run's waveform recorder. Valid after Run too.
func (r *Runner) Recorder() *wave.Recorder { return r.rec }

// Run executes the transient. Each step reads the backend snapshot,
// evaluates every block, pushes duty overrides, then advances the
// electrical solve. Snapshot measurements, block outputs and duty
// ratios are recorded per step. A canceled context stops the run at
// the next step boundary.
func (r *Runner) Run(ctx context.Context) error {
	if r.timeStep <= 0 || r.stopTime <= 0 {
		return errors.Errorf("invalid run window: stop=%g step=%g", r.stopTime, r.timeStep)
	}

	be := r.drv.adapter
	if err := be.Init(r.timeStep); err != nil {
		return errors.Wrap(err, "initializing backend")
	}
	defer be.Close()

	r.drv.Reset()

	for t := 0.0; t < r.stopTime; t += r.timeStep {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		snap := be.Snapshot()
		outs, err := r.drv.Step(t, r.timeStep, snap)
		if err != nil {
			return err
		}

		r.record(t, snap, outs)

		if err := be.Advance(t, r.timeStep); err != nil {
			return errors.Wrapf(err, "electrical step at t=%g", t)
		}
	}
	return nil
}

func (r *Runner) record(t float64, snap map[string]float64, outs map[string]block.Signal) {
	values := make(map[string]float64, len(snap)+len(outs))
	for name, v := range snap {
		values[name] = v
	}
	for id, s := range outs {
		values[id] = s.Scalar()
	}
	for id, duty := range r.drv.Duties() {
		values[fmt.Sprintf("duty(%s)", id)] = duty
	}
	r.rec.Record(t, values)
}
