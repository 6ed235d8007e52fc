// Copyright (c) 2026 Stride Labs
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package steps

import "testing"

func TestParseHeightCategory(t *testing.T) {
	tests := []struct {
		in      string
		want    HeightCategory
		wantErr bool
	}{
		{"tall", HeightTall, false},
		{"medium", HeightMedium, false},
		{"short", HeightShort, false},
		{"giant", HeightMedium, true},
		{"", HeightMedium, true},
	}
	for _, tt := range tests {
		got, err := ParseHeightCategory(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseHeightCategory(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseHeightCategory(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStepsToCalories(t *testing.T) {
	tests := []struct {
		name   string
		steps  uint32
		weight uint16
		height HeightCategory
		want   uint32
	}{
		{"bracket exact, medium", 1000, 160, HeightMedium, 40},
		{"bracket exact, tall", 1000, 160, HeightTall, 44},
		{"bracket exact, short", 1000, 160, HeightShort, 36},
		{"interpolated midpoint", 10000, 150, HeightMedium, 370}, // 35 + (40-35)*10/20 = 37/1000 steps
		{"clamped below table", 1000, 90, HeightMedium, 25},
		{"clamped above table", 1000, 350, HeightMedium, 75},
		{"top bracket edge", 1000, 300, HeightMedium, 75},
		{"zero steps", 0, 160, HeightMedium, 0},
		{"sub-1000 steps truncate", 999, 100, HeightShort, 22}, // 999*23/1000
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StepsToCalories(tt.steps, tt.weight, tt.height); got != tt.want {
				t.Errorf("StepsToCalories(%d, %d, %v) = %d, want %d",
					tt.steps, tt.weight, tt.height, got, tt.want)
			}
		})
	}
}

func TestStepsToCaloriesQuick(t *testing.T) {
	tests := []struct {
		steps  uint32
		weight uint16
		want   uint32
	}{
		{4000, 160, 160},
		{1000, 200, 50},
		{0, 160, 0},
		{2500, 100, 62}, // truncating division
	}
	for _, tt := range tests {
		if got := StepsToCaloriesQuick(tt.steps, tt.weight); got != tt.want {
			t.Errorf("StepsToCaloriesQuick(%d, %d) = %d, want %d", tt.steps, tt.weight, got, tt.want)
		}
	}
}
