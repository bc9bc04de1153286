package block

// PWMGenerator resolves the duty ratio for one step. A wired DUTY_IN
// overrides the static duty_cycle parameter and is clamped to [0, 1];
// otherwise the parameter passes through untouched so schematics without
// a control loop keep their configured duty.
func evalPWM(b *Block, in Inputs, st State) (Outputs, State, error) {
	duty := b.Param("duty_cycle", 0)
	if s, ok := in[PinDutyIn]; ok {
		duty = clamp(s.Scalar(), 0, 1)
	}
	return Outputs{PinOut: Scalar(duty)}, st, nil
}
