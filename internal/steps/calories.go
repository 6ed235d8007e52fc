package steps

import "fmt"

// Calorie estimation from step counts, based on MET tables for walking
// at 2-4 mph. The tables are bucketed by body weight and by height
// category (taller wearers take fewer steps per mile).

// HeightCategory selects the steps-per-mile calorie table.
type HeightCategory int

const (
	HeightTall   HeightCategory = iota // 6'0" and above, ~2000 steps/mile
	HeightMedium                       // 5'6" to 5'11", ~2200 steps/mile
	HeightShort                        // 5'5" and below, ~2400 steps/mile
)

// ParseHeightCategory maps a config string to a HeightCategory.
func ParseHeightCategory(s string) (HeightCategory, error) {
	switch s {
	case "tall":
		return HeightTall, nil
	case "medium":
		return HeightMedium, nil
	case "short":
		return HeightShort, nil
	default:
		return HeightMedium, fmt.Errorf("unknown height category %q (want tall, medium or short)", s)
	}
}

// Weight brackets in pounds; calorie tables index against these.
var weightBrackets = [...]uint16{100, 120, 140, 160, 180, 200, 220, 250, 275, 300}

// Calories burned per 1000 steps by weight bracket.
var (
	calPer1000Tall   = [...]uint8{28, 33, 38, 44, 49, 55, 60, 69, 75, 82}
	calPer1000Medium = [...]uint8{25, 30, 35, 40, 45, 50, 55, 63, 69, 75}
	calPer1000Short  = [...]uint8{23, 28, 32, 36, 41, 45, 50, 57, 63, 68}
)

// StepsToCalories estimates calories burned for a step count, linearly
// interpolating between weight brackets. Weight clamps to the table
// range of 100-300 lbs.
func StepsToCalories(steps uint32, weightLbs uint16, height HeightCategory) uint32 {
	table := calPer1000Medium
	switch height {
	case HeightTall:
		table = calPer1000Tall
	case HeightShort:
		table = calPer1000Short
	}

	last := len(weightBrackets) - 1
	if weightLbs < weightBrackets[0] {
		weightLbs = weightBrackets[0]
	}
	if weightLbs > weightBrackets[last] {
		weightLbs = weightBrackets[last]
	}

	idx := last - 1
	for i := 0; i < last; i++ {
		if weightLbs >= weightBrackets[i] && weightLbs < weightBrackets[i+1] {
			idx = i
			break
		}
	}

	w1 := uint32(weightBrackets[idx])
	w2 := uint32(weightBrackets[idx+1])
	c1 := uint32(table[idx])
	c2 := uint32(table[idx+1])

	per1000 := c1 + (c2-c1)*(uint32(weightLbs)-w1)/(w2-w1)

	// Multiply first to keep precision.
	return steps * per1000 / 1000
}

// StepsToCaloriesQuick is the fast approximation: ~0.04 cal/step at
// 160 lbs, scaled linearly with weight.
func StepsToCaloriesQuick(steps uint32, weightLbs uint16) uint32 {
	return steps * uint32(weightLbs) / 4000
}
