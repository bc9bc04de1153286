package block

import (
	"fmt"
)

// Mux packs the indexed inputs IN_0..IN_n into one bus signal, in pin
// order. The bus width is the highest wired index plus one, or the width
// parameter when that is larger; unwired slots carry 0.
func evalMux(b *Block, in Inputs, st State) (Outputs, State, error) {
	width := int(b.Param("width", 0))
	for pin := range in {
		var idx int
		if _, err := fmt.Sscanf(pin, "IN_%d", &idx); err == nil && idx+1 > width {
			width = idx + 1
		}
	}

	bus := make(Signal, width)
	for i := range bus {
		bus[i] = in.Scalar(InPin(i))
	}
	return Outputs{PinOut: bus}, st, nil
}

// Demux unpacks a bus input into the scalar outputs OUT_0..OUT_n.
func evalDemux(in Inputs, st State) (Outputs, State, error) {
	bus := in[PinIn]
	out := make(Outputs, len(bus))
	for i, v := range bus {
		out[OutPin(i)] = Scalar(v)
	}
	return out, st, nil
}
