package block

func evalConstant(b *Block, st State) (Outputs, State, error) {
	return Outputs{PinOut: Scalar(b.Param("value", 0))}, st, nil
}

func evalGain(b *Block, in Inputs, st State) (Outputs, State, error) {
	out := b.Param("gain", 1) * in.Scalar(PinIn)
	return Outputs{PinOut: Scalar(out)}, st, nil
}

// Sum adds every wired input; unwired named inputs contribute 0 by
// simply being absent.
func evalSum(in Inputs, st State) (Outputs, State, error) {
	total := 0.0
	for _, s := range in {
		total += s.Scalar()
	}
	return Outputs{PinOut: Scalar(total)}, st, nil
}

func evalSubtractor(in Inputs, st State) (Outputs, State, error) {
	out := in.Scalar(InPin(0)) - in.Scalar(InPin(1))
	return Outputs{PinOut: Scalar(out)}, st, nil
}
