// Copyright (c) 2026 Stride Labs
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "step_config.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const minimalConfig = `MQTT_BROKER=tcp://localhost:1883
TOPIC_STEPS=tracker/steps
TOPIC_ACCEL=tracker/accel
TOPIC_BATTERY=tracker/battery
SAMPLE_INTERVAL=20
CONSOLE_LOG_INTERVAL=1000
`

func TestLoadMinimalConfig(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.MQTTBroker != "tcp://localhost:1883" {
		t.Errorf("MQTTBroker = %q", cfg.MQTTBroker)
	}
	if cfg.TopicSteps != "tracker/steps" {
		t.Errorf("TopicSteps = %q", cfg.TopicSteps)
	}
	if cfg.SampleInterval != 20 {
		t.Errorf("SampleInterval = %d, want 20", cfg.SampleInterval)
	}
	if cfg.ConsoleLogInterval != 1000 {
		t.Errorf("ConsoleLogInterval = %d, want 1000", cfg.ConsoleLogInterval)
	}
}

func TestLoadFullConfig(t *testing.T) {
	content := minimalConfig + `
# wearer profile
WEARER_WEIGHT_LBS=185
WEARER_HEIGHT=tall

IMU_I2C_ADDR=0x6B
DISPLAY_CONTENT=battery
LED_COUNT=8
LED_STEPS_PER_LED=50
GPS_SERIAL_PORT=/dev/ttyAMA0
GPS_BAUD_RATE=38400
WEB_SERVER_PORT=9090
TOPIC_GPS=tracker/gps
`
	cfg, err := Load(writeConfigFile(t, content))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.WearerWeightLbs != 185 {
		t.Errorf("WearerWeightLbs = %d, want 185", cfg.WearerWeightLbs)
	}
	if cfg.WearerHeight != "tall" {
		t.Errorf("WearerHeight = %q, want tall", cfg.WearerHeight)
	}
	if cfg.IMUI2CAddr != 0x6B {
		t.Errorf("IMUI2CAddr = 0x%X, want 0x6B", cfg.IMUI2CAddr)
	}
	if cfg.DisplayContent != "battery" {
		t.Errorf("DisplayContent = %q, want battery", cfg.DisplayContent)
	}
	if cfg.LEDCount != 8 || cfg.LEDStepsPerLED != 50 {
		t.Errorf("LED config = %d/%d, want 8/50", cfg.LEDCount, cfg.LEDStepsPerLED)
	}
	if cfg.GPSSerialPort != "/dev/ttyAMA0" || cfg.GPSBaudRate != 38400 {
		t.Errorf("GPS config = %q/%d", cfg.GPSSerialPort, cfg.GPSBaudRate)
	}
	if cfg.WebServerPort != 9090 {
		t.Errorf("WebServerPort = %d, want 9090", cfg.WebServerPort)
	}
}

func TestLoadSkipsCommentsAndBlankLines(t *testing.T) {
	content := "# leading comment\n\n" + minimalConfig + "\n   \n# trailing comment\n"
	if _, err := Load(writeConfigFile(t, content)); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantSub string
	}{
		{"missing broker", strings.Replace(minimalConfig, "MQTT_BROKER=tcp://localhost:1883\n", "", 1), "MQTT_BROKER"},
		{"missing steps topic", strings.Replace(minimalConfig, "TOPIC_STEPS=tracker/steps\n", "", 1), "TOPIC_STEPS"},
		{"missing sample interval", strings.Replace(minimalConfig, "SAMPLE_INTERVAL=20\n", "", 1), "SAMPLE_INTERVAL"},
		{"unknown key", minimalConfig + "MAGIC_KNOB=1\n", "unknown config key"},
		{"malformed line", minimalConfig + "not a key value line\n", "invalid config line"},
		{"bad interval", strings.Replace(minimalConfig, "SAMPLE_INTERVAL=20", "SAMPLE_INTERVAL=fast", 1), "SAMPLE_INTERVAL"},
		{"bad height", minimalConfig + "WEARER_HEIGHT=enormous\n", "WEARER_HEIGHT"},
		{"bad weight", minimalConfig + "WEARER_WEIGHT_LBS=-5\n", "WEARER_WEIGHT_LBS"},
		{"bad display content", minimalConfig + "DISPLAY_CONTENT=weather\n", "DISPLAY_CONTENT"},
		{"zero led count", minimalConfig + "LED_COUNT=0\n", "LED_COUNT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfigFile(t, tt.content))
			if err == nil {
				t.Fatal("Load succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err, tt.wantSub)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Fatal("Load succeeded on a missing file")
	}
}
