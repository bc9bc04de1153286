package block

// triggerLevel is the threshold a TRIGGER signal must cross upward for
// SampleHold to latch a new sample.
const triggerLevel = 0.5

// SampleHold latches IN on a rising edge of TRIGGER and holds the
// latched value otherwise.
func evalSampleHold(in Inputs, st State) (Outputs, State, error) {
	trig := in.Scalar(PinTrigger)
	if trig > triggerLevel && st.LastTrig <= triggerLevel {
		st.Held = in.Scalar(PinIn)
	}
	st.LastTrig = trig
	return Outputs{PinOut: Scalar(st.Held)}, st, nil
}
