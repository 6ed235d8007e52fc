package steps

import (
	"github.com/stridelabs/step_tracker/internal/accel"
)

// Engine is the step-detection and rolling-hour aggregation core. It
// consumes accelerometer readings from a Source and a caller-supplied
// monotonic millisecond clock, and exposes step and activity counters.
//
// All state lives in the Engine value, so independent engines can coexist
// and tests need no global reset hooks. The engine is single-threaded:
// Update and the accessors must be called from one goroutine.
type Engine struct {
	src     accel.Source
	running bool

	filter   GravityFilter
	detector StepDetector
	hist     hourHistogram

	totalSteps   uint32
	lastReading  accel.Reading
	lastHighPass float32
}

// New returns an engine over src. The engine stays inert until Init
// succeeds.
func New(src accel.Source) *Engine {
	return &Engine{src: src}
}

// Init brings up the sensor and resets all runtime state. On error the
// engine remains uninitialized: Update is a no-op and every query
// returns zero/false. Callers may call Init again to attempt recovery.
func (e *Engine) Init() error {
	e.running = false
	if err := e.src.Init(); err != nil {
		return err
	}

	e.filter = GravityFilter{}
	e.detector = StepDetector{}
	e.hist.reset(0) // realigned on the first Update
	e.totalSteps = 0
	e.lastReading = accel.Reading{}
	e.lastHighPass = 0

	e.running = true
	return nil
}

// Running reports whether sensor bring-up has succeeded.
func (e *Engine) Running() bool {
	return e.running
}

// Update runs one sampling tick: advance the minute buckets, acquire a
// sample, filter it, and count a step if one is detected. nowMS is a
// monotonically increasing millisecond clock; it may start anywhere and
// wraps after ~49.7 days.
//
// A sample acquisition error drops the tick with no state touched beyond
// the bucket advance, which cannot break the histogram invariants.
func (e *Engine) Update(nowMS uint32) error {
	if !e.running {
		return nil
	}

	e.hist.advance(nowMS)

	reading, err := e.src.ReadAccel()
	if err != nil {
		return err
	}
	e.lastReading = reading

	highPass := e.filter.Process(reading.Sample)
	e.lastHighPass = highPass

	if e.detector.Check(highPass, nowMS) {
		e.totalSteps++
		e.hist.recordStep()
	}
	return nil
}

// TotalSteps returns the lifetime step count since Init.
func (e *Engine) TotalSteps() uint32 {
	if !e.running {
		return 0
	}
	return e.totalSteps
}

// StepsLastHour returns the trailing ~60 minute step count, saturating
// at 65535.
func (e *Engine) StepsLastHour() uint16 {
	if !e.running {
		return 0
	}
	return e.hist.stepsLastHour()
}

// GoalReached reports whether the hourly step goal is met.
func (e *Engine) GoalReached() bool {
	return e.StepsLastHour() >= StepGoalPerHour
}

// ActivityLevel returns the ordinal activity classification (0-3).
func (e *Engine) ActivityLevel() uint8 {
	return classifyActivity(e.StepsLastHour())
}

// LastRawSample returns the raw LSB values of the most recent reading.
func (e *Engine) LastRawSample() accel.Raw {
	return e.lastReading.Raw
}

// LastFilteredSample returns the most recent reading scaled to g.
func (e *Engine) LastFilteredSample() accel.Sample {
	return e.lastReading.Sample
}

// LastHighPass returns the most recent high-pass motion magnitude, for
// diagnostics and threshold tuning.
func (e *Engine) LastHighPass() float32 {
	return e.lastHighPass
}
