package block

import (
	"github.com/pkg/errors"
)

// Evaluate runs the evaluator for b's kind. in holds the already resolved
// upstream signals keyed by input pin name, st the block's state from the
// previous step. The returned state replaces st for the next step; st
// itself is never mutated, so evaluating the same step twice with the
// same state yields identical outputs.
func Evaluate(b *Block, in Inputs, st State, ctx *StepContext) (Outputs, State, error) {
	switch b.Kind {
	case Constant:
		return evalConstant(b, st)
	case Gain:
		return evalGain(b, in, st)
	case Sum:
		return evalSum(in, st)
	case Subtractor:
		return evalSubtractor(in, st)
	case Limiter:
		return evalLimiter(b, in, st)
	case RateLimiter:
		return evalRateLimiter(b, in, st, ctx)
	case Integrator:
		return evalIntegrator(b, in, st, ctx)
	case PIController:
		return evalPI(b, in, st, ctx)
	case PIDController:
		return evalPID(b, in, st, ctx)
	case Hysteresis:
		return evalHysteresis(b, in, st)
	case SampleHold:
		return evalSampleHold(in, st)
	case Mux:
		return evalMux(b, in, st)
	case Demux:
		return evalDemux(in, st)
	case VoltageProbe, CurrentProbe:
		return evalProbe(b, st, ctx)
	case PWMGenerator:
		return evalPWM(b, in, st)
	default:
		return nil, st, errors.Errorf("no evaluator for kind %s", b.Kind)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
