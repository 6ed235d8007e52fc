package app

import (
	"encoding/json"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/stridelabs/step_tracker/internal/accel"
	"github.com/stridelabs/step_tracker/internal/config"
	"github.com/stridelabs/step_tracker/internal/sensors"
	"github.com/stridelabs/step_tracker/internal/steps"
)

// RunStepProducer drives the step engine off the LSM6DS3 (or the mock
// walking source) and publishes accelerometer readings and step reports
// to MQTT.
func RunStepProducer(useMock bool) error {
	log.Println("starting step-tracker producer")

	cfg := config.Get()

	var src accel.Source
	if useMock {
		log.Println("using mock walking source")
		src = sensors.NewMockWalker(0)
	} else {
		src = sensors.NewLSM6DS3(cfg.IMUI2CBus, cfg.IMUI2CAddr)
	}

	engine := steps.New(src)
	if err := engine.Init(); err != nil {
		log.Printf("sensor init failed, engine stays inert: %v", err)
		return err
	}
	log.Println("step engine initialized")

	// Wearer profile for the calorie estimate.
	weight := cfg.WearerWeightLbs
	if weight == 0 {
		weight = 160
	}
	height := steps.HeightMedium
	if cfg.WearerHeight != "" {
		h, err := steps.ParseHeightCategory(cfg.WearerHeight)
		if err != nil {
			return err
		}
		height = h
	}

	// --- connect to MQTT ---
	clientID := cfg.MQTTClientIDTracker
	if clientID == "" {
		clientID = "tracker-step-producer"
	}
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Printf("MQTT connect error: %v", token.Error())
		return token.Error()
	}
	defer client.Disconnect(250)

	log.Println("connected to MQTT, starting sample loop")

	// The engine wants a monotonic millisecond clock; milliseconds since
	// producer start wraps after ~49.7 days, which the engine handles.
	start := time.Now()
	var lastLog time.Time
	logEvery := time.Duration(cfg.ConsoleLogInterval) * time.Millisecond

	ticker := time.NewTicker(time.Duration(cfg.SampleInterval) * time.Millisecond)
	defer ticker.Stop()

	for t := range ticker.C {
		nowMS := uint32(t.Sub(start).Milliseconds())

		if err := engine.Update(nowMS); err != nil {
			// Dropped tick; a failed read leaves the engine state alone.
			log.Printf("accel read error: %v", err)
			continue
		}

		// 1) Raw + scaled accel for diagnostics consumers
		reading := accel.Reading{
			Raw:    engine.LastRawSample(),
			Sample: engine.LastFilteredSample(),
		}
		if payload, err := json.Marshal(reading); err != nil {
			log.Printf("accel marshal error: %v", err)
		} else {
			if token := client.Publish(cfg.TopicAccel, 0, true, payload); token.Wait() && token.Error() != nil {
				log.Printf("MQTT publish error (accel): %v", token.Error())
				continue
			}
		}

		// 2) Step report
		report := engine.Snapshot(weight, height)
		report.Time = t.UTC().Format(time.RFC3339)

		if payload, err := json.Marshal(report); err != nil {
			log.Printf("report marshal error: %v", err)
		} else {
			if token := client.Publish(cfg.TopicSteps, 0, true, payload); token.Wait() && token.Error() != nil {
				log.Printf("MQTT publish error (steps): %v", token.Error())
				continue
			}
		}

		if t.Sub(lastLog) >= logEvery {
			lastLog = t
			raw := engine.LastRawSample()
			log.Printf("tick: steps=%d hour=%d level=%d goal=%v hp=%+.3f raw=%6d %6d %6d",
				report.TotalSteps, report.StepsLastHour, report.ActivityLevel,
				report.GoalReached, engine.LastHighPass(), raw.Ax, raw.Ay, raw.Az)
		}
	}
	return nil
}
