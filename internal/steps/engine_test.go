// Copyright (c) 2026 Stride Labs
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package steps

import (
	"errors"
	"testing"

	"github.com/stridelabs/step_tracker/internal/accel"
)

// fakeSource replays a fixed sequence of readings. Past the end of the
// script it keeps returning the last reading.
type fakeSource struct {
	initErr  error
	readings []accel.Reading
	errAt    map[int]error // read index -> error
	calls    int
}

func (s *fakeSource) Init() error { return s.initErr }

func (s *fakeSource) ReadAccel() (accel.Reading, error) {
	i := s.calls
	s.calls++
	if err, ok := s.errAt[i]; ok {
		return accel.Reading{}, err
	}
	if len(s.readings) == 0 {
		return accel.Reading{}, nil
	}
	if i >= len(s.readings) {
		i = len(s.readings) - 1
	}
	return s.readings[i], nil
}

func restReading() accel.Reading {
	return accel.Reading{Sample: accel.Sample{Z: 1.0}}
}

func strikeReading() accel.Reading {
	return accel.Reading{Sample: accel.Sample{Z: 1.8}}
}

func TestEngineUninitializedIsInert(t *testing.T) {
	e := New(&fakeSource{})

	if err := e.Update(1000); err != nil {
		t.Errorf("Update before Init returned %v, want nil", err)
	}
	if e.Running() {
		t.Error("Running() = true before Init")
	}
	if e.TotalSteps() != 0 || e.StepsLastHour() != 0 {
		t.Error("counters nonzero before Init")
	}
	if e.GoalReached() {
		t.Error("GoalReached() = true before Init")
	}
	if e.ActivityLevel() != ActivitySedentary {
		t.Errorf("ActivityLevel() = %d before Init, want sedentary", e.ActivityLevel())
	}
}

func TestEngineInitFailureLeavesEngineStopped(t *testing.T) {
	src := &fakeSource{initErr: errors.New("no sensor on bus")}
	e := New(src)

	if err := e.Init(); err == nil {
		t.Fatal("Init succeeded with a failing sensor")
	}
	if e.Running() {
		t.Error("Running() = true after failed Init")
	}
	if err := e.Update(1000); err != nil {
		t.Errorf("Update after failed Init returned %v, want nil", err)
	}
	if src.calls != 0 {
		t.Errorf("sensor read %d times while stopped, want 0", src.calls)
	}
}

func TestEngineNoStepsAtRest(t *testing.T) {
	src := &fakeSource{readings: []accel.Reading{restReading()}}
	e := New(src)
	if err := e.Init(); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 10; i++ {
		if err := e.Update(uint32(20 * (i + 1))); err != nil {
			t.Fatalf("Update: %v", err)
		}
	}

	if got := e.TotalSteps(); got != 0 {
		t.Errorf("TotalSteps() = %d at rest, want 0", got)
	}
	if e.ActivityLevel() != ActivitySedentary {
		t.Errorf("ActivityLevel() = %d at rest, want sedentary", e.ActivityLevel())
	}
}

func TestEngineCountsDistinctSteps(t *testing.T) {
	src := &fakeSource{readings: []accel.Reading{
		restReading(),   // t=20: seeds the baseline
		strikeReading(), // t=1000: step 1
		restReading(),   // t=1200
		strikeReading(), // t=2000: step 2
	}}
	e := New(src)
	if err := e.Init(); err != nil {
		t.Fatal(err)
	}

	for _, tick := range []uint32{20, 1000, 1200, 2000} {
		if err := e.Update(tick); err != nil {
			t.Fatalf("Update(%d): %v", tick, err)
		}
	}

	if got := e.TotalSteps(); got != 2 {
		t.Errorf("TotalSteps() = %d, want 2", got)
	}
	if got := e.StepsLastHour(); got != 2 {
		t.Errorf("StepsLastHour() = %d, want 2", got)
	}
	if got := e.ActivityLevel(); got != ActivitySedentary {
		t.Errorf("ActivityLevel() = %d, want sedentary", got)
	}
}

func TestEngineRefractoryRejectsRinging(t *testing.T) {
	src := &fakeSource{readings: []accel.Reading{
		restReading(),
		strikeReading(), // t=1000: step
		strikeReading(), // t=1100: same footstrike ringing
		strikeReading(), // t=1300: still inside the window
		strikeReading(), // t=1400: new step
	}}
	e := New(src)
	if err := e.Init(); err != nil {
		t.Fatal(err)
	}

	for _, tick := range []uint32{20, 1000, 1100, 1300, 1400} {
		if err := e.Update(tick); err != nil {
			t.Fatalf("Update(%d): %v", tick, err)
		}
	}

	if got := e.TotalSteps(); got != 2 {
		t.Errorf("TotalSteps() = %d, want 2", got)
	}
}

func TestEngineReadErrorDropsTick(t *testing.T) {
	readErr := errors.New("i2c timeout")
	src := &fakeSource{
		readings: []accel.Reading{
			restReading(),
			strikeReading(), // t=1000: step
			{},              // t=1100: replaced by error
			strikeReading(), // t=2000: step
		},
		errAt: map[int]error{2: readErr},
	}
	e := New(src)
	if err := e.Init(); err != nil {
		t.Fatal(err)
	}

	for _, tick := range []uint32{20, 1000} {
		if err := e.Update(tick); err != nil {
			t.Fatalf("Update(%d): %v", tick, err)
		}
	}
	if err := e.Update(1100); !errors.Is(err, readErr) {
		t.Fatalf("Update(1100) = %v, want read error", err)
	}
	if err := e.Update(2000); err != nil {
		t.Fatalf("Update(2000): %v", err)
	}

	if got := e.TotalSteps(); got != 2 {
		t.Errorf("TotalSteps() = %d, want 2", got)
	}
	// The failed tick must not clobber the last good reading.
	if got := e.LastFilteredSample(); got != strikeReading().Sample {
		t.Errorf("LastFilteredSample() = %+v, want last good sample", got)
	}
}

func TestEngineHourWindowAges(t *testing.T) {
	src := &fakeSource{readings: []accel.Reading{
		restReading(),
		strikeReading(), // t=1000: step
		restReading(),   // t=30 min: still in window
		restReading(),   // t=62 min: aged out
	}}
	e := New(src)
	if err := e.Init(); err != nil {
		t.Fatal(err)
	}

	if err := e.Update(20); err != nil {
		t.Fatal(err)
	}
	if err := e.Update(1000); err != nil {
		t.Fatal(err)
	}
	if err := e.Update(30 * 60000); err != nil {
		t.Fatal(err)
	}
	if got := e.StepsLastHour(); got != 1 {
		t.Errorf("StepsLastHour() at 30 min = %d, want 1", got)
	}

	if err := e.Update(62 * 60000); err != nil {
		t.Fatal(err)
	}
	if got := e.StepsLastHour(); got != 0 {
		t.Errorf("StepsLastHour() at 62 min = %d, want 0", got)
	}
	if got := e.TotalSteps(); got != 1 {
		t.Errorf("TotalSteps() = %d, want 1 (lifetime count keeps aged steps)", got)
	}
}

func TestEngineGoalAndActivity(t *testing.T) {
	// One strong strike every 400 ms with rest samples in between, so
	// the baseline stays anchored near 1g instead of absorbing the
	// spikes.
	readings := []accel.Reading{restReading()}
	ticks := []uint32{20}
	now := uint32(1000)
	for i := 0; i < int(StepGoalPerHour); i++ {
		readings = append(readings,
			accel.Reading{Sample: accel.Sample{Z: 2.0}},
			restReading())
		ticks = append(ticks, now, now+200)
		now += 400
	}

	src := &fakeSource{readings: readings}
	e := New(src)
	if err := e.Init(); err != nil {
		t.Fatal(err)
	}
	for _, tick := range ticks {
		if err := e.Update(tick); err != nil {
			t.Fatal(err)
		}
	}

	if got := e.TotalSteps(); got != StepGoalPerHour {
		t.Fatalf("TotalSteps() = %d, want %d", got, StepGoalPerHour)
	}
	if !e.GoalReached() {
		t.Error("GoalReached() = false at the goal count")
	}
	if got := e.ActivityLevel(); got != ActivityGoal {
		t.Errorf("ActivityLevel() = %d, want %d", got, ActivityGoal)
	}
}

func TestEngineReInitResetsCounters(t *testing.T) {
	src := &fakeSource{readings: []accel.Reading{
		restReading(),
		strikeReading(),
	}}
	e := New(src)
	if err := e.Init(); err != nil {
		t.Fatal(err)
	}
	if err := e.Update(20); err != nil {
		t.Fatal(err)
	}
	if err := e.Update(1000); err != nil {
		t.Fatal(err)
	}
	if e.TotalSteps() != 1 {
		t.Fatalf("TotalSteps() = %d, want 1", e.TotalSteps())
	}

	if err := e.Init(); err != nil {
		t.Fatal(err)
	}
	if e.TotalSteps() != 0 || e.StepsLastHour() != 0 {
		t.Error("counters survived re-Init")
	}
}

func TestEngineSnapshot(t *testing.T) {
	src := &fakeSource{readings: []accel.Reading{
		restReading(),
		strikeReading(),
		restReading(),
		strikeReading(),
	}}
	e := New(src)
	if err := e.Init(); err != nil {
		t.Fatal(err)
	}
	for _, tick := range []uint32{20, 1000, 1200, 2000} {
		if err := e.Update(tick); err != nil {
			t.Fatal(err)
		}
	}

	r := e.Snapshot(160, HeightMedium)
	if r.TotalSteps != 2 || r.StepsLastHour != 2 {
		t.Errorf("Snapshot counters = %d/%d, want 2/2", r.TotalSteps, r.StepsLastHour)
	}
	if r.GoalReached {
		t.Error("Snapshot GoalReached = true, want false")
	}
	if r.ActivityLevel != ActivitySedentary {
		t.Errorf("Snapshot ActivityLevel = %d, want sedentary", r.ActivityLevel)
	}
	if want := StepsToCalories(2, 160, HeightMedium); r.Calories != want {
		t.Errorf("Snapshot Calories = %d, want %d", r.Calories, want)
	}
	if r.Time != "" {
		t.Errorf("Snapshot Time = %q, want empty (publisher stamps it)", r.Time)
	}
}
