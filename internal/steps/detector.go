package steps

// Step detection tuning, assuming update calls at roughly 10-100 Hz.
const (
	// StepThresholdG is the high-pass magnitude a footstrike must exceed.
	StepThresholdG = 0.35

	// StepRefractoryMS is the minimum spacing between step events. One
	// footstrike rings for a while in the high-pass signal; crossings
	// inside this window are the same step, not new ones.
	StepRefractoryMS = 350
)

// StepDetector is an edge-triggered threshold detector that emits at most
// one step event per qualifying motion burst. Hysteresis comes purely
// from the time refractory window, not from a magnitude band, which
// trades missed light steps for no double counting.
type StepDetector struct {
	lastStepMS uint32
}

// Check reports whether highPass at nowMS qualifies as a new step and
// records the event time when it does. Timestamps subtract with uint32
// wraparound, so detection stays correct across the ~49.7 day rollover
// of a millisecond counter.
func (d *StepDetector) Check(highPass float32, nowMS uint32) bool {
	if highPass <= StepThresholdG {
		return false
	}
	if nowMS-d.lastStepMS <= StepRefractoryMS {
		return false
	}
	d.lastStepMS = nowMS
	return true
}
