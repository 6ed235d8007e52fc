package steps

// Report is the step telemetry record published over MQTT and served by
// the web API.
type Report struct {
	TotalSteps    uint32 `json:"total_steps"`
	StepsLastHour uint16 `json:"steps_last_hour"`
	GoalReached   bool   `json:"goal_reached"`
	ActivityLevel uint8  `json:"activity_level"`
	Calories      uint32 `json:"calories"`
	Time          string `json:"time"` // RFC3339, filled by the publisher
}

// Snapshot assembles a Report from the engine's current counters. The
// Time field is left for the publisher to stamp.
func (e *Engine) Snapshot(weightLbs uint16, height HeightCategory) Report {
	return Report{
		TotalSteps:    e.TotalSteps(),
		StepsLastHour: e.StepsLastHour(),
		GoalReached:   e.GoalReached(),
		ActivityLevel: e.ActivityLevel(),
		Calories:      StepsToCalories(e.TotalSteps(), weightLbs, height),
	}
}
