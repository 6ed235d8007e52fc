// Copyright (c) 2026 Stride Labs
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package steps

import (
	"math"
	"testing"

	"github.com/stridelabs/step_tracker/internal/accel"
)

func sampleWithMagnitude(mag float32) accel.Sample {
	// Put the whole magnitude on one axis to keep the math obvious.
	return accel.Sample{X: 0, Y: 0, Z: mag}
}

func TestGravityFilterFirstSampleSeedsBaseline(t *testing.T) {
	var f GravityFilter

	hp := f.Process(sampleWithMagnitude(1.02))
	if hp != 0 {
		t.Errorf("first sample high-pass = %v, want 0", hp)
	}
	if got := f.Baseline(); got != 1.02 {
		t.Errorf("baseline after seed = %v, want 1.02", got)
	}
}

func TestGravityFilterEWMAUpdate(t *testing.T) {
	var f GravityFilter
	f.Process(sampleWithMagnitude(1.0))

	hp := f.Process(sampleWithMagnitude(1.5))

	wantBaseline := float32(1.0 + BaselineAlpha*0.5)
	if got := f.Baseline(); math.Abs(float64(got-wantBaseline)) > 1e-6 {
		t.Errorf("baseline = %v, want %v", got, wantBaseline)
	}
	wantHP := float32(1.5) - wantBaseline
	if math.Abs(float64(hp-wantHP)) > 1e-6 {
		t.Errorf("high-pass = %v, want %v", hp, wantHP)
	}
}

func TestGravityFilterMagnitudeCombinesAxes(t *testing.T) {
	var f GravityFilter
	f.Process(accel.Sample{X: 3, Y: 4, Z: 0}) // magnitude 5

	if got := f.Baseline(); math.Abs(float64(got-5)) > 1e-6 {
		t.Errorf("baseline = %v, want 5", got)
	}
}

func TestGravityFilterRejectsConstantGravity(t *testing.T) {
	var f GravityFilter
	var hp float32
	for i := 0; i < 500; i++ {
		hp = f.Process(sampleWithMagnitude(0.98))
	}
	if hp != 0 {
		t.Errorf("steady input high-pass = %v, want 0", hp)
	}
}

func TestGravityFilterTracksOrientationChange(t *testing.T) {
	var f GravityFilter
	f.Process(sampleWithMagnitude(1.0))

	// A persistent offset decays into the baseline; after enough
	// samples the high-pass output settles back near zero.
	var hp float32
	for i := 0; i < 2000; i++ {
		hp = f.Process(sampleWithMagnitude(1.2))
	}
	if math.Abs(float64(hp)) > 0.01 {
		t.Errorf("high-pass after settling = %v, want near 0", hp)
	}
	if got := f.Baseline(); math.Abs(float64(got-1.2)) > 0.01 {
		t.Errorf("baseline after settling = %v, want near 1.2", got)
	}
}

func TestGravityFilterSpikePassesThrough(t *testing.T) {
	var f GravityFilter
	f.Process(sampleWithMagnitude(1.0))

	hp := f.Process(sampleWithMagnitude(1.6))
	if hp < 0.5 {
		t.Errorf("footstrike spike high-pass = %v, want > 0.5", hp)
	}
}
