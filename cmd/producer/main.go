package main

import (
	"encoding/json"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/stridelabs/step_tracker/internal/sensors"
	"github.com/stridelabs/step_tracker/internal/steps"
)

func main() {
	log.Println("starting step-tracker MQTT producer (mock)")

	// 1) Connect to MQTT broker on the device
	opts := mqtt.NewClientOptions().
		AddBroker("tcp://localhost:1883").
		SetClientID("tracker-producer-mock")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("MQTT connect error: %v", token.Error())
	}
	defer client.Disconnect(250)

	engine := steps.New(sensors.NewMockWalker(0))
	if err := engine.Init(); err != nil {
		log.Fatalf("engine init error: %v", err)
	}

	start := time.Now()
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for t := range ticker.C {
		nowMS := uint32(t.Sub(start).Milliseconds())
		if err := engine.Update(nowMS); err != nil {
			log.Printf("error from mock source: %v", err)
			continue
		}

		report := engine.Snapshot(160, steps.HeightMedium)
		report.Time = t.UTC().Format(time.RFC3339)

		payload, err := json.Marshal(report)
		if err != nil {
			log.Printf("json marshal error: %v", err)
			continue
		}

		token := client.Publish("tracker/steps", 0, true, payload)
		token.Wait()

		log.Printf("%s published report: %+v", t.Format(time.RFC3339), report)
	}
}
