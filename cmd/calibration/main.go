// Copyright (c) 2026 Stride Labs
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// ./cmd/calibration/main.go
//
// Guided step-threshold calibration for the wearer.
// Two phases:
//  1. Still: the device rests on the wrist while the wearer stands still,
//     so we can measure the high-pass noise floor after gravity removal.
//  2. Walk: the wearer walks normally while we collect high-pass peaks.
//
// Output:
//
//	Writes a JSON file under ./calibration/ with the measured noise floor,
//	peak statistics, a recommended threshold and a confidence score.
//
// Run:
//
//	go run ./cmd/calibration            (real accelerometer)
//	go run ./cmd/calibration -mock      (simulated walker, for bench testing)
//
// Notes / assumptions:
//   - All values are in g after gravity removal, matching the units the
//     step detector compares against.
//   - The recommendation is advisory; apply it by rebuilding with the new
//     threshold or keep the default if confidence is low.
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/stridelabs/step_tracker/internal/accel"
	"github.com/stridelabs/step_tracker/internal/config"
	"github.com/stridelabs/step_tracker/internal/sensors"
	"github.com/stridelabs/step_tracker/internal/steps"
)

const (
	sampleHz = 50 // target loop frequency (best-effort)

	stillDuration   = 10 * time.Second
	walkMaxDuration = 30 * time.Second
	walkMinDuration = 10 * time.Second

	// Noise ceiling multiplier: recommended threshold must clear
	// mean + noiseSigma * stddev of the still phase.
	noiseSigma = 4.0

	// Quality heuristics (in g)
	stillStdGood = 0.02
	stillStdBad  = 0.10

	// Peaks below this are ignored as residual noise even during the walk.
	peakFloorG = 0.10

	minWalkPeaks = 8 // fewer peaks than this and the walk was too short

	confFloor = 0.05
)

type PhaseStats struct {
	Samples     int      `json:"samples"`
	DurationSec float64  `json:"duration_sec"`
	Mean        float64  `json:"mean"`
	StdDev      float64  `json:"stddev"`
	Max         float64  `json:"max"`
	Notes       []string `json:"notes,omitempty"`
}

type CalibrationResult struct {
	SchemaVersion int    `json:"schema_version"`
	CalibrationAt string `json:"calibration_at"` // RFC3339
	Source        string `json:"source"`         // "lsm6ds3" or "mock"

	// Still phase: high-pass magnitude with the device at rest (g)
	NoiseFloor   float64 `json:"noise_floor"`
	NoiseCeiling float64 `json:"noise_ceiling"` // mean + noiseSigma*stddev

	// Walk phase (g)
	PeakCount  int     `json:"peak_count"`
	PeakMedian float64 `json:"peak_median"`
	PeakP25    float64 `json:"peak_p25"`

	// Threshold recommendation (g)
	DefaultThreshold     float64 `json:"default_threshold"`
	RecommendedThreshold float64 `json:"recommended_threshold"`

	Confidence struct {
		Stillness  float64 `json:"stillness"`
		Separation float64 `json:"separation"`
		Overall    float64 `json:"overall"`
	} `json:"confidence"`

	StillStats PhaseStats `json:"still_stats"`
	WalkStats  PhaseStats `json:"walk_stats"`

	Notes []string `json:"notes,omitempty"`
}

func main() {
	in := bufio.NewReader(os.Stdin)

	configPath := flag.String("config", "./step_config.txt", "path to configuration file")
	useMock := flag.Bool("mock", false, "use a simulated walker instead of the accelerometer")
	flag.Parse()

	fmt.Println("=== Guided Step Threshold Calibration ===")
	fmt.Println("This workflow will prompt you in the console and store results under ./calibration/")
	fmt.Println()

	var src accel.Source
	sourceName := "lsm6ds3"
	if *useMock {
		src = sensors.NewMockWalker(1.5)
		sourceName = "mock"
		fmt.Println("Using simulated walker (-mock).")
	} else {
		if err := config.InitGlobal(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: Failed to load config from %s: %v\n", *configPath, err)
			os.Exit(1)
		}
		cfg := config.Get()
		src = sensors.NewLSM6DS3(cfg.IMUI2CBus, cfg.IMUI2CAddr)
	}

	if err := src.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: accelerometer init failed: %v\n", err)
		os.Exit(1)
	}

	res := CalibrationResult{
		SchemaVersion:    1,
		CalibrationAt:    time.Now().Format(time.RFC3339),
		Source:           sourceName,
		DefaultThreshold: steps.StepThresholdG,
	}

	// ---------------- Still phase ----------------
	fmt.Println("Step 1/2 — Noise floor")
	fmt.Println("Strap the device on and stand still with your arm relaxed.")
	waitEnter(in, "Press ENTER to start the still capture (10s)...")

	stillValues, stillStats, err := captureHighPass(src, stillDuration)
	if err != nil {
		fatal(err)
	}
	res.StillStats = stillStats
	res.NoiseFloor = stillStats.Mean
	res.NoiseCeiling = stillStats.Mean + noiseSigma*stillStats.StdDev
	res.Confidence.Stillness = stillnessConfidence(stillStats.StdDev)

	fmt.Printf("Noise floor: mean=%.4fg std=%.4fg ceiling=%.4fg | confidence=%.2f\n",
		stillStats.Mean, stillStats.StdDev, res.NoiseCeiling, res.Confidence.Stillness)

	_ = stillValues // kept for possible future extensions

	// ---------------- Walk phase ----------------
	fmt.Println("\nStep 2/2 — Walk capture")
	fmt.Println("Walk at your normal pace. Capture stops automatically after 30s,")
	fmt.Println("or press ENTER again to stop earlier (walk at least 10s).")
	waitEnter(in, "Press ENTER to start walking...")

	walkValues, walkStats, err := captureHighPassUntilEnterOrTimeout(in, src, walkMaxDuration)
	if err != nil {
		fatal(err)
	}
	res.WalkStats = walkStats
	if walkStats.DurationSec < walkMinDuration.Seconds() {
		res.WalkStats.Notes = append(res.WalkStats.Notes,
			fmt.Sprintf("too_short: %.1fs < %.1fs", walkStats.DurationSec, walkMinDuration.Seconds()))
	}

	peaks := findPeaks(walkValues, peakFloorG)
	res.PeakCount = len(peaks)
	if len(peaks) < minWalkPeaks {
		fatal(errors.New("walk capture produced too few step peaks; walk longer and at a steady pace"))
	}

	sort.Float64s(peaks)
	res.PeakMedian = percentile(peaks, 0.50)
	res.PeakP25 = percentile(peaks, 0.25)

	fmt.Printf("Walk: %d peaks | median=%.3fg p25=%.3fg\n", res.PeakCount, res.PeakMedian, res.PeakP25)

	// ---------------- Recommendation ----------------
	// Place the threshold between the noise ceiling and the weakest typical
	// steps, leaning toward the step side so light steps still register.
	recommended := res.NoiseCeiling + 0.4*(res.PeakP25-res.NoiseCeiling)
	if recommended <= res.NoiseCeiling {
		recommended = res.NoiseCeiling * 1.1
	}
	res.RecommendedThreshold = round3(recommended)

	res.Confidence.Separation = separationConfidence(res.NoiseCeiling, res.PeakP25)
	res.Confidence.Overall = clamp01(0.4*res.Confidence.Stillness + 0.6*res.Confidence.Separation)
	if res.Confidence.Overall < confFloor {
		res.Confidence.Overall = confFloor
	}

	if err := writeResult(res); err != nil {
		fatal(err)
	}

	fmt.Println("\nCalibration complete.")
	fmt.Printf("Default threshold:     %.3fg\n", res.DefaultThreshold)
	fmt.Printf("Recommended threshold: %.3fg (confidence %.2f)\n", res.RecommendedThreshold, res.Confidence.Overall)
	if math.Abs(res.RecommendedThreshold-res.DefaultThreshold) < 0.05 {
		fmt.Println("The default threshold is a good fit for this wearer.")
	} else if res.RecommendedThreshold > res.DefaultThreshold {
		fmt.Println("This wearer generates strong impacts; a higher threshold would reject more noise.")
	} else {
		fmt.Println("This wearer walks softly; a lower threshold would catch more light steps.")
	}
}

// ---------- Sampling helpers ----------

func captureHighPass(src accel.Source, dur time.Duration) ([]float64, PhaseStats, error) {
	start := time.Now()
	deadline := start.Add(dur)
	targetPeriod := time.Second / time.Duration(sampleHz)

	var filter steps.GravityFilter
	var values []float64
	for time.Now().Before(deadline) {
		r, err := src.ReadAccel()
		if err != nil {
			return nil, PhaseStats{}, err
		}
		values = append(values, float64(filter.Process(r.Sample)))
		time.Sleep(targetPeriod)
	}
	return values, computeStats(values, time.Since(start)), nil
}

func captureHighPassUntilEnterOrTimeout(in *bufio.Reader, src accel.Source, maxDur time.Duration) ([]float64, PhaseStats, error) {
	start := time.Now()
	deadline := start.Add(maxDur)

	stopCh := make(chan struct{}, 1)
	go func() {
		_, _ = in.ReadString('\n')
		stopCh <- struct{}{}
	}()

	targetPeriod := time.Second / time.Duration(sampleHz)

	var filter steps.GravityFilter
	var values []float64
	for {
		select {
		case <-stopCh:
			return values, computeStats(values, time.Since(start)), nil
		default:
			if time.Now().After(deadline) {
				stats := computeStats(values, time.Since(start))
				stats.Notes = append(stats.Notes, "stopped_by_timeout")
				return values, stats, nil
			}
			r, err := src.ReadAccel()
			if err != nil {
				return nil, PhaseStats{}, err
			}
			values = append(values, float64(filter.Process(r.Sample)))
			time.Sleep(targetPeriod)
		}
	}
}

func computeStats(values []float64, dur time.Duration) PhaseStats {
	n := len(values)
	if n == 0 {
		return PhaseStats{Samples: 0, DurationSec: dur.Seconds()}
	}
	var sum, maxV float64
	for _, v := range values {
		sum += v
		if v > maxV {
			maxV = v
		}
	}
	mean := sum / float64(n)
	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	return PhaseStats{
		Samples:     n,
		DurationSec: dur.Seconds(),
		Mean:        mean,
		StdDev:      math.Sqrt(variance / float64(n)),
		Max:         maxV,
	}
}

// findPeaks returns local maxima above floor, one per impact.
func findPeaks(values []float64, floor float64) []float64 {
	var peaks []float64
	inPeak := false
	peakMax := 0.0
	for _, v := range values {
		if v > floor {
			if !inPeak {
				inPeak = true
				peakMax = v
			} else if v > peakMax {
				peakMax = v
			}
			continue
		}
		if inPeak {
			peaks = append(peaks, peakMax)
			inPeak = false
		}
	}
	if inPeak {
		peaks = append(peaks, peakMax)
	}
	return peaks
}

// percentile expects xs sorted ascending, p in [0,1].
func percentile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	idx := p * float64(len(xs)-1)
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	if lo == hi {
		return xs[lo]
	}
	t := idx - float64(lo)
	return xs[lo] + t*(xs[hi]-xs[lo])
}

// ---------- Confidence heuristics ----------

func stillnessConfidence(std float64) float64 {
	switch {
	case std <= stillStdGood:
		return 1.0
	case std >= stillStdBad:
		return confFloor
	default:
		t := (std - stillStdGood) / (stillStdBad - stillStdGood)
		return clamp01(1.0 - 0.95*t)
	}
}

func separationConfidence(ceiling, p25 float64) float64 {
	if p25 <= ceiling {
		return confFloor
	}
	// Ratio 1 means no margin at all; 3x or better is comfortable.
	ratio := p25 / math.Max(ceiling, 1e-6)
	return clamp01((ratio - 1) / 2)
}

// ---------- Output ----------

func writeResult(res CalibrationResult) error {
	if err := os.MkdirAll("calibration", 0o755); err != nil {
		return err
	}
	ts := time.Now().Format("2006-01-02T15-04-05Z07-00")
	name := filepath.Join("calibration", fmt.Sprintf("%s_step_calibration.json", ts))

	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(name, b, 0o644); err != nil {
		return err
	}
	fmt.Printf("\nWrote: %s\n", name)
	return nil
}

// ---------- Console helpers ----------

func waitEnter(in *bufio.Reader, prompt string) {
	fmt.Print(prompt)
	_, _ = in.ReadString('\n')
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
	os.Exit(1)
}

// ---------- Small math helpers ----------

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
