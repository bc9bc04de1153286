package block

// Integrator accumulates IN*dt, with optional saturation of the
// accumulator via the lower/upper parameters.
func evalIntegrator(b *Block, in Inputs, st State, ctx *StepContext) (Outputs, State, error) {
	st.Accum += in.Scalar(PinIn) * ctx.TimeStep
	if lo, ok := b.ParamOK("lower"); ok && st.Accum < lo {
		st.Accum = lo
	}
	if hi, ok := b.ParamOK("upper"); ok && st.Accum > hi {
		st.Accum = hi
	}
	return Outputs{PinOut: Scalar(st.Accum)}, st, nil
}

// PI: OUT = Kp*error + Ki*integral, with the integral updated after the
// output is formed. When out_min/out_max are set, both the output and the
// integral are clamped so the integral cannot wind up past the range the
// output is allowed to cover.
func evalPI(b *Block, in Inputs, st State, ctx *StepContext) (Outputs, State, error) {
	kp := b.Param("kp", 0)
	ki := b.Param("ki", 0)
	err := in.Scalar(PinRef) - in.Scalar(PinFB)

	out := kp*err + ki*st.Accum
	st.Accum += err * ctx.TimeStep
	out, st.Accum = applyWindupLimits(b, ki, out, st.Accum)
	return Outputs{PinOut: Scalar(out)}, st, nil
}

// PID adds the derivative term Kd*(error - last_error)/dt on top of PI.
func evalPID(b *Block, in Inputs, st State, ctx *StepContext) (Outputs, State, error) {
	kp := b.Param("kp", 0)
	ki := b.Param("ki", 0)
	kd := b.Param("kd", 0)
	err := in.Scalar(PinRef) - in.Scalar(PinFB)

	deriv := 0.0
	if ctx.TimeStep > 0 {
		deriv = kd * (err - st.LastErr) / ctx.TimeStep
	}

	out := kp*err + ki*st.Accum + deriv
	st.Accum += err * ctx.TimeStep
	st.LastErr = err
	out, st.Accum = applyWindupLimits(b, ki, out, st.Accum)
	return Outputs{PinOut: Scalar(out)}, st, nil
}

func applyWindupLimits(b *Block, ki, out, integral float64) (float64, float64) {
	if lo, ok := b.ParamOK("out_min"); ok {
		if out < lo {
			out = lo
		}
		if ki > 0 && integral < lo/ki {
			integral = lo / ki
		}
	}
	if hi, ok := b.ParamOK("out_max"); ok {
		if out > hi {
			out = hi
		}
		if ki > 0 && integral > hi/ki {
			integral = hi / ki
		}
	}
	return out, integral
}
