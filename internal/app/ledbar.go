// Copyright (c) 2026 Stride Labs
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/apa102"
	"periph.io/x/host/v3"

	"github.com/stridelabs/step_tracker/internal/battery"
	"github.com/stridelabs/step_tracker/internal/config"
	"github.com/stridelabs/step_tracker/internal/steps"
)

// RunLEDBar drives the APA102 progress bar: each LED lights as another
// LED_STEPS_PER_LED steps land in the trailing hour, with brightness
// fading in across the active segment. The bar color tracks battery
// charge from red (empty) to green (full).
func RunLEDBar() error {
	cfg := config.Get()

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	port, err := spireg.Open(cfg.LEDSPIDevice)
	if err != nil {
		return fmt.Errorf("ledbar: SPI open %q: %w", cfg.LEDSPIDevice, err)
	}
	defer port.Close()

	count := cfg.LEDCount
	if count <= 0 {
		count = 4
	}
	stepsPerLED := cfg.LEDStepsPerLED
	if stepsPerLED <= 0 {
		stepsPerLED = 25
	}

	ledOpts := apa102.DefaultOpts
	ledOpts.NumPixels = count
	strip, err := apa102.New(port, &ledOpts)
	if err != nil {
		return fmt.Errorf("ledbar: apa102 init: %w", err)
	}
	defer strip.Halt()
	log.Printf("ledbar: %d LEDs on %s, %d steps per LED", count, cfg.LEDSPIDevice, stepsPerLED)

	var (
		mu          sync.RWMutex
		stepsHour   uint16
		battPercent = 100.0
	)

	clientID := cfg.MQTTClientIDLEDBar
	if clientID == "" {
		clientID = "tracker-ledbar"
	}
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("ledbar: connected to MQTT broker at %s", cfg.MQTTBroker)

	stepToken := client.Subscribe(cfg.TopicSteps, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var r steps.Report
		if err := json.Unmarshal(msg.Payload(), &r); err != nil {
			log.Printf("ledbar: report unmarshal error: %v", err)
			return
		}
		mu.Lock()
		stepsHour = r.StepsLastHour
		mu.Unlock()
	})
	stepToken.Wait()
	if stepToken.Error() != nil {
		return stepToken.Error()
	}

	battToken := client.Subscribe(cfg.TopicBattery, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s battery.Sample
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("ledbar: battery unmarshal error: %v", err)
			return
		}
		mu.Lock()
		battPercent = s.Percent
		mu.Unlock()
	})
	battToken.Wait()
	if battToken.Error() != nil {
		return battToken.Error()
	}

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		mu.RLock()
		frame := ledBarFrame(stepsHour, battPercent, count, stepsPerLED)
		mu.RUnlock()

		if _, err := strip.Write(frame); err != nil {
			log.Printf("ledbar: write error: %v", err)
		}
	}
	return nil
}

// batteryColor maps the charge percentage onto a red (empty) to green
// (full) gradient.
func batteryColor(percent float64) (r, g byte) {
	p := percent
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	r = byte(255 * (100 - p) / 100)
	g = byte(255 * p / 100)
	return r, g
}

// ledBarFrame renders the progress bar as an RGB byte stream, 3 bytes
// per LED. LEDs before the progress point are full brightness, the LED
// at the point fades in proportionally, and the rest stay dark.
func ledBarFrame(stepsLastHour uint16, batteryPercent float64, count, stepsPerLED int) []byte {
	r, g := batteryColor(batteryPercent)

	frame := make([]byte, 0, count*3)
	for i := 0; i < count; i++ {
		into := int(stepsLastHour) - i*stepsPerLED
		if into <= 0 {
			frame = append(frame, 0, 0, 0)
			continue
		}
		if into > stepsPerLED {
			into = stepsPerLED
		}
		scale := into * 255 / stepsPerLED
		frame = append(frame, byte(int(r)*scale/255), byte(int(g)*scale/255), 0)
	}
	return frame
}
