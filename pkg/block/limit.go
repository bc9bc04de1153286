package block

import "math"

// Limiter clamps to [lower, upper], inclusive on both bounds.
func evalLimiter(b *Block, in Inputs, st State) (Outputs, State, error) {
	lo := b.Param("lower", math.Inf(-1))
	hi := b.Param("upper", math.Inf(1))
	return Outputs{PinOut: Scalar(clamp(in.Scalar(PinIn), lo, hi))}, st, nil
}

// RateLimiter bounds the per-step change of the output to rate*dt in
// either direction. The previous output starts at 0 at run start.
func evalRateLimiter(b *Block, in Inputs, st State, ctx *StepContext) (Outputs, State, error) {
	rate := b.Param("rate", math.Inf(1))
	maxDelta := rate * ctx.TimeStep
	out := clamp(in.Scalar(PinIn), st.LastOut-maxDelta, st.LastOut+maxDelta)
	st.LastOut = out
	return Outputs{PinOut: Scalar(out)}, st, nil
}

// Hysteresis switches to the high level at upper_threshold and back to
// the low level at lower_threshold, holding its last output in between.
func evalHysteresis(b *Block, in Inputs, st State) (Outputs, State, error) {
	hi := b.Param("high", 1)
	lo := b.Param("low", 0)
	v := in.Scalar(PinIn)

	out := st.LastOut
	switch {
	case v >= b.Param("upper_threshold", 0):
		out = hi
	case v <= b.Param("lower_threshold", 0):
		out = lo
	}
	st.LastOut = out
	return Outputs{PinOut: Scalar(out)}, st, nil
}
