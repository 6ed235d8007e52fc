// Copyright (c) 2026 Stride Labs
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"time"

	"github.com/stridelabs/step_tracker/internal/sensors"
	"github.com/stridelabs/step_tracker/internal/steps"
)

// RunMockConsole runs the step engine over the mock walking source and
// prints live counters. No hardware, no broker, no config file.
func RunMockConsole() error {
	engine := steps.New(sensors.NewMockWalker(0))
	if err := engine.Init(); err != nil {
		return err
	}

	start := time.Now()
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for t := range ticker.C {
		nowMS := uint32(t.Sub(start).Milliseconds())
		if err := engine.Update(nowMS); err != nil {
			return err
		}

		fmt.Printf(
			"steps=%6d  hour=%5d  level=%d  goal=%-5v  hp=%+.3f\n",
			engine.TotalSteps(),
			engine.StepsLastHour(),
			engine.ActivityLevel(),
			engine.GoalReached(),
			engine.LastHighPass(),
		)
	}
	return nil
}
