package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"signalflow/pkg/block"
	"signalflow/pkg/driver"
	"signalflow/pkg/graph"
	"signalflow/pkg/mna"
	"signalflow/pkg/util"
	"signalflow/pkg/wave"
)

// Demo: a PWM step-down stage regulated by a PI loop. The electrical
// side is a DC source feeding an RC filter through a PWM-gated switch;
// the signal side reads V(out), compares it against a reference and
// drives the switch duty.

func buildPlant(pwmFreq float64) *mna.Circuit {
	ckt := mna.NewCircuit("pwm-regulator")
	ckt.AddDCSource("V1", "vin", "0", 10.0)
	ckt.AddSwitch("S1", "vin", "sw", 1e-3, 1e6, pwmFreq, 0.0, "pwm1")
	ckt.AddResistor("R1", "sw", "out", 10.0)
	ckt.AddCapacitor("C1", "out", "0", 100e-6)
	ckt.AddResistor("Rload", "out", "0", 100.0)
	return ckt
}

func buildControl(vref float64) ([]*block.Block, []graph.Wire) {
	blocks := []*block.Block{
		{ID: "ref", Kind: block.Constant, Params: map[string]float64{"value": vref}},
		{ID: "vout", Kind: block.VoltageProbe, Target: "V(out)"},
		{ID: "pi", Kind: block.PIController, Params: map[string]float64{
			"kp": 0.2, "ki": 40.0, "out_min": 0.0, "out_max": 1.0,
		}},
		{ID: "limit", Kind: block.Limiter, Params: map[string]float64{"lower": 0.0, "upper": 1.0}},
		{ID: "pwm1", Kind: block.PWMGenerator, Params: map[string]float64{"duty_cycle": 0.0}},
	}
	wires := []graph.Wire{
		{From: "ref", FromPin: block.PinOut, To: "pi", ToPin: block.PinRef},
		{From: "vout", FromPin: block.PinOut, To: "pi", ToPin: block.PinFB},
		{From: "pi", FromPin: block.PinOut, To: "limit", ToPin: block.PinIn},
		{From: "limit", FromPin: block.PinOut, To: "pwm1", ToPin: block.PinDutyIn},
	}
	return blocks, wires
}

func main() {
	var (
		vref     = flag.Float64("vref", 5.0, "Regulation target (V)")
		stopTime = flag.Float64("stop", 20e-3, "Simulation stop time (s)")
		timeStep = flag.Float64("step", 1e-6, "Timestep (s)")
		pwmFreq  = flag.Float64("fpwm", 20e3, "PWM carrier frequency (Hz)")
		plotFile = flag.String("plot", "", "Write waveform plot to this file (png/svg/pdf)")
		every    = flag.Int("every", 1000, "Print every Nth step")
	)
	flag.Parse()

	plant := buildPlant(*pwmFreq)
	blocks, wires := buildControl(*vref)

	drv, err := driver.New(blocks, wires, plant)
	if err != nil {
		log.Fatalf("Run rejected: %v", err)
	}

	runner := driver.NewRunner(drv, *stopTime, *timeStep)
	if err := runner.Run(context.Background()); err != nil {
		log.Fatalf("Run failed: %v", err)
	}

	rec := runner.Recorder()
	times := rec.Times()
	vout := rec.Series("V(out)")
	duty := rec.Series("duty(pwm1)")

	fmt.Printf("PWM regulator, carrier %s, target %s\n",
		util.FormatFrequency(*pwmFreq), util.FormatValueFactor(*vref, "V"))
	fmt.Println("Time        V(out)      duty")
	fmt.Println("--------------------------------")
	for i := range times {
		if i%*every != 0 && i != len(times)-1 {
			continue
		}
		fmt.Printf("%-11s %-11s %s\n",
			util.FormatValueFactor(times[i], "s"),
			util.FormatValueFactor(vout[i], "V"),
			util.FormatPercent(duty[i]))
	}

	if *plotFile != "" {
		if err := wave.WritePlot(rec, "PWM regulator", *plotFile, "V(out)", "duty(pwm1)"); err != nil {
			log.Fatalf("Plot failed: %v", err)
		}
		fmt.Printf("\nWaveform written to %s\n", *plotFile)
	}
}
