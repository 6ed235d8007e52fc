// Copyright (c) 2026 Stride Labs
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"math"
	"time"

	"github.com/stridelabs/step_tracker/internal/accel"
)

// MockWalker simulates a wearer walking at a fixed cadence: a 1g gravity
// baseline with a short acceleration spike once per stride and a little
// lateral sway. Useful for running the full pipeline without hardware.
type MockWalker struct {
	start   time.Time
	cadence float64 // strides per second
}

// NewMockWalker creates a mock accelerometer source. A cadence of 0
// defaults to 1.5 strides per second, a relaxed walking pace.
func NewMockWalker(cadence float64) *MockWalker {
	if cadence <= 0 {
		cadence = 1.5
	}
	return &MockWalker{cadence: cadence}
}

// Init implements accel.Source. There is no hardware to bring up.
func (m *MockWalker) Init() error {
	m.start = time.Now()
	return nil
}

// ReadAccel returns the simulated sample for the current wall-clock time.
func (m *MockWalker) ReadAccel() (accel.Reading, error) {
	elapsed := time.Since(m.start).Seconds()
	phase := elapsed * m.cadence
	frac := phase - math.Floor(phase)

	// Footstrike: a 0.6g half-sine spike over the first 15% of each
	// stride, well above the detection threshold.
	spike := 0.0
	if frac < 0.15 {
		spike = 0.6 * math.Sin(frac/0.15*math.Pi)
	}
	mag := 1.0 + spike

	x := 0.05 * math.Sin(2*math.Pi*phase)
	y := 0.03 * math.Cos(2*math.Pi*phase)
	zsq := mag*mag - x*x - y*y
	if zsq < 0 {
		zsq = 0
	}
	z := math.Sqrt(zsq)

	sample := accel.Sample{X: float32(x), Y: float32(y), Z: float32(z)}
	return accel.Reading{
		Raw: accel.Raw{
			Ax: int16(x / accelLSB2G),
			Ay: int16(y / accelLSB2G),
			Az: int16(z / accelLSB2G),
		},
		Sample: sample,
	}, nil
}
