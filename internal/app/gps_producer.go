package app

import (
	"bufio"
	"encoding/json"
	"log"
	"strings"

	nmea "github.com/adrianmo/go-nmea"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	serial "github.com/jacobsa/go-serial/serial"

	"github.com/stridelabs/step_tracker/internal/config"
	"github.com/stridelabs/step_tracker/internal/gps"
)

// RunGPSProducer opens the GPS serial port, parses NMEA sentences, and
// publishes combined fixes with accumulated walk distance to MQTT. The
// GPS is optional kit for outdoor walks; the step pipeline never depends
// on it.
func RunGPSProducer() error {
	cfg := config.Get()

	clientID := cfg.MQTTClientIDGPS
	if clientID == "" {
		clientID = "tracker-gps-producer"
	}
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("gps: connected to MQTT broker at %s", cfg.MQTTBroker)

	port := cfg.GPSSerialPort
	if port == "" {
		port = "/dev/serial0"
	}
	baud := cfg.GPSBaudRate
	if baud == 0 {
		baud = 9600
	}
	serialOpts := serial.OpenOptions{
		PortName:              port,
		BaudRate:              uint(baud),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	sp, err := serial.Open(serialOpts)
	if err != nil {
		return err
	}
	defer sp.Close()
	log.Printf("gps: serial port opened on %s at %d baud", port, baud)

	reader := bufio.NewReader(sp)

	var current gps.Fix
	havePrev := false
	var prevLat, prevLon float64

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			log.Printf("gps: read error: %v", err)
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "$") {
			continue
		}

		sentence, err := nmea.Parse(line)
		if err != nil {
			// noisy receiver or partial sentence
			continue
		}

		if sentence.DataType() != nmea.TypeRMC {
			continue
		}
		m := sentence.(nmea.RMC)

		current.Time = m.Time.String()
		current.Date = m.Date.String()
		current.Latitude = m.Latitude
		current.Longitude = m.Longitude
		current.SpeedKnots = m.Speed
		current.CourseDeg = m.Course
		current.Validity = string(m.Validity)

		// Accumulate walked distance over consecutive valid fixes.
		if current.Validity == "A" {
			if havePrev {
				current.WalkDistanceM += gps.DistanceM(prevLat, prevLon, m.Latitude, m.Longitude)
			}
			prevLat, prevLon = m.Latitude, m.Longitude
			havePrev = true
		}

		payload, err := json.Marshal(current)
		if err != nil {
			log.Printf("gps: marshal error: %v", err)
			continue
		}

		token := client.Publish(cfg.TopicGPS, 0, true, payload)
		token.Wait()
		if token.Error() != nil {
			log.Printf("gps: publish error: %v", token.Error())
			continue
		}

		log.Printf("gps: published fix lat=%.6f lon=%.6f dist=%.0fm", current.Latitude, current.Longitude, current.WalkDistanceM)
	}
}
