// Copyright (c) 2026 Stride Labs
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/stridelabs/step_tracker/internal/battery"
	"github.com/stridelabs/step_tracker/internal/config"
	"github.com/stridelabs/step_tracker/internal/sensors"
)

// RunBatteryProducer polls the MAX17048 fuel gauge and publishes battery
// telemetry to MQTT.
func RunBatteryProducer() error {
	cfg := config.Get()

	gauge, err := sensors.NewMAX17048(cfg.BatteryI2CBus)
	if err != nil {
		return err
	}
	defer gauge.Close()

	if v, err := gauge.Version(); err == nil {
		log.Printf("battery: MAX17048 version 0x%04X", v)
	}

	clientID := cfg.MQTTClientIDBattery
	if clientID == "" {
		clientID = "tracker-battery-producer"
	}
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("battery: connected to MQTT broker at %s", cfg.MQTTBroker)

	intervalMS := cfg.BatterySampleInterval
	if intervalMS <= 0 {
		intervalMS = 5000
	}
	ticker := time.NewTicker(time.Duration(intervalMS) * time.Millisecond)
	defer ticker.Stop()

	for t := range ticker.C {
		voltage, err := gauge.Voltage()
		if err != nil {
			log.Printf("battery: voltage read error: %v", err)
			continue
		}
		percent, err := gauge.StateOfCharge()
		if err != nil {
			log.Printf("battery: soc read error: %v", err)
			continue
		}
		if percent > 100 {
			percent = 100
		}

		sample := battery.Sample{
			Voltage: voltage,
			Percent: percent,
			Time:    t.UTC().Format(time.RFC3339),
		}
		payload, err := json.Marshal(sample)
		if err != nil {
			log.Printf("battery: marshal error: %v", err)
			continue
		}
		if token := client.Publish(cfg.TopicBattery, 0, true, payload); token.Wait() && token.Error() != nil {
			log.Printf("battery: MQTT publish error: %v", token.Error())
		}
	}
	return nil
}
