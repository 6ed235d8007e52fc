package steps

// StepGoalPerHour is the hourly step goal the activity levels and the
// goal-reached flag are derived from.
const StepGoalPerHour = 250

// Activity levels derived from the rolling-hour step count.
const (
	ActivitySedentary  uint8 = 0 // almost no movement
	ActivityLight      uint8 = 1 // light activity
	ActivityGoal       uint8 = 2 // around the hourly goal
	ActivityVeryActive uint8 = 3 // well above the goal
)

// classifyActivity maps a trailing-hour step count to an ordinal level.
func classifyActivity(stepsLastHour uint16) uint8 {
	switch {
	case stepsLastHour < 50:
		return ActivitySedentary
	case stepsLastHour < StepGoalPerHour:
		return ActivityLight
	case stepsLastHour < 2*StepGoalPerHour:
		return ActivityGoal
	default:
		return ActivityVeryActive
	}
}
