package block

// Probe blocks read the electrical snapshot instead of a signal input.
// The step driver resolves each probe's measurement into ctx.Meas before
// evaluation starts; a probe with no measurement reads 0. The value is
// published on both OUT and MEAS so either pin name can be wired.
func evalProbe(b *Block, st State, ctx *StepContext) (Outputs, State, error) {
	v := ctx.Meas[b.ID]
	s := Scalar(v)
	return Outputs{PinOut: s, PinMeas: s}, st, nil
}
