package steps

import (
	"math"

	"github.com/stridelabs/step_tracker/internal/accel"
)

// BaselineAlpha is the smoothing factor of the gravity baseline tracker.
// Smaller values track gravity more slowly: more stable rejection of the
// ~1g offset, more lag after orientation changes.
const BaselineAlpha = 0.01

// GravityFilter tracks the slowly varying 1g magnitude baseline with an
// exponential low-pass and derives a high-pass motion signal from it.
// Footstrikes show up as short spikes in the high-pass output while the
// gravity offset and slow orientation drift are subtracted out.
type GravityFilter struct {
	baseline    float32
	initialized bool
}

// Process folds one sample into the baseline and returns the high-pass
// motion signal. The first sample ever seeds the baseline, so its
// high-pass output is 0.
func (f *GravityFilter) Process(s accel.Sample) float32 {
	mag := float32(math.Sqrt(float64(s.X*s.X + s.Y*s.Y + s.Z*s.Z)))

	if !f.initialized {
		f.baseline = mag
		f.initialized = true
		return 0
	}

	f.baseline += BaselineAlpha * (mag - f.baseline)
	return mag - f.baseline
}

// Baseline returns the current low-pass magnitude estimate.
func (f *GravityFilter) Baseline() float32 {
	return f.baseline
}
