package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/stridelabs/step_tracker/internal/accel"
	"github.com/stridelabs/step_tracker/internal/battery"
	"github.com/stridelabs/step_tracker/internal/config"
	"github.com/stridelabs/step_tracker/internal/gps"
	"github.com/stridelabs/step_tracker/internal/steps"
)

// RunConsoleMQTT subscribes to every tracker topic and prints live
// telemetry lines to the terminal.
func RunConsoleMQTT() error {
	cfg := config.Get()

	clientID := cfg.MQTTClientIDConsole
	if clientID == "" {
		clientID = "tracker-console-subscriber"
	}
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	// Step reports
	stepToken := client.Subscribe(cfg.TopicSteps, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var r steps.Report
		if err := json.Unmarshal(msg.Payload(), &r); err != nil {
			log.Printf("console: report unmarshal error: %v", err)
			return
		}
		fmt.Printf(
			"[STEP]  total=%6d  hour=%5d  level=%d  goal=%-5v  kcal=%d\n",
			r.TotalSteps, r.StepsLastHour, r.ActivityLevel, r.GoalReached, r.Calories,
		)
	})
	stepToken.Wait()
	if stepToken.Error() != nil {
		return stepToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicSteps)

	// Raw accelerometer
	accelToken := client.Subscribe(cfg.TopicAccel, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var r accel.Reading
		if err := json.Unmarshal(msg.Payload(), &r); err != nil {
			log.Printf("console: accel unmarshal error: %v", err)
			return
		}
		fmt.Printf(
			"[ACCL]  raw=%6d %6d %6d  g=%+.3f %+.3f %+.3f\n",
			r.Raw.Ax, r.Raw.Ay, r.Raw.Az, r.Sample.X, r.Sample.Y, r.Sample.Z,
		)
	})
	accelToken.Wait()
	if accelToken.Error() != nil {
		return accelToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicAccel)

	// Battery
	battToken := client.Subscribe(cfg.TopicBattery, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s battery.Sample
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("console: battery unmarshal error: %v", err)
			return
		}
		fmt.Printf("[BATT]  %.3fV  %.1f%%\n", s.Voltage, s.Percent)
	})
	battToken.Wait()
	if battToken.Error() != nil {
		return battToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicBattery)

	// GPS
	if cfg.TopicGPS != "" {
		gpsToken := client.Subscribe(cfg.TopicGPS, 0, func(_ mqtt.Client, msg mqtt.Message) {
			var f gps.Fix
			if err := json.Unmarshal(msg.Payload(), &f); err != nil {
				log.Printf("console: gps unmarshal error: %v", err)
				return
			}
			fmt.Printf(
				"[GPS ]  lat=%.6f lon=%.6f speed=%.1fkn dist=%.0fm validity=%s\n",
				f.Latitude, f.Longitude, f.SpeedKnots, f.WalkDistanceM, f.Validity,
			)
		})
		gpsToken.Wait()
		if gpsToken.Error() != nil {
			return gpsToken.Error()
		}
		log.Printf("console: subscribed to %s", cfg.TopicGPS)
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
