package app

import (
	"encoding/json"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/stridelabs/step_tracker/internal/accel"
	"github.com/stridelabs/step_tracker/internal/battery"
	"github.com/stridelabs/step_tracker/internal/config"
	"github.com/stridelabs/step_tracker/internal/gps"
	"github.com/stridelabs/step_tracker/internal/steps"
)

// DisplayData holds the latest telemetry for the OLED.
type DisplayData struct {
	mu sync.RWMutex

	report     steps.Report
	haveReport bool

	reading     accel.Reading
	haveReading bool

	batt     battery.Sample
	haveBatt bool

	gpsFix  gps.Fix
	haveGPS bool
}

var activityNames = [...]string{"sedentary", "light", "goal", "active!"}

// RunDisplay drives the 128x64 SSD1306 status screen from MQTT telemetry.
func RunDisplay() error {
	cfg := config.Get()

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	bus, err := i2creg.Open("")
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	// The SSD1306 driver talks to the controller at the standard 0x3C.
	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Println("display: initialized 128x64 at 0x3C")

	if err := showSplash(dev); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	data := &DisplayData{}

	clientID := cfg.MQTTClientIDDisplay
	if clientID == "" {
		clientID = "tracker-display"
	}
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("display: connected to MQTT broker at %s", cfg.MQTTBroker)

	content := cfg.DisplayContent
	if content == "" {
		content = "steps"
	}
	if err := subscribeForContent(client, content, data, cfg); err != nil {
		return fmt.Errorf("failed to subscribe for display: %w", err)
	}

	intervalMS := cfg.DisplayUpdateInterval
	if intervalMS <= 0 {
		intervalMS = 500
	}
	ticker := time.NewTicker(time.Duration(intervalMS) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")

	for range ticker.C {
		data.mu.RLock()
		snapshot := DisplayData{
			report:      data.report,
			haveReport:  data.haveReport,
			reading:     data.reading,
			haveReading: data.haveReading,
			batt:        data.batt,
			haveBatt:    data.haveBatt,
			gpsFix:      data.gpsFix,
			haveGPS:     data.haveGPS,
		}
		data.mu.RUnlock()

		if err := updateDisplay(dev, content, &snapshot); err != nil {
			log.Printf("display: error updating display: %v", err)
		}
	}

	return nil
}

func subscribeForContent(client mqtt.Client, content string, data *DisplayData, cfg *config.Config) error {
	switch content {
	case "steps":
		token := client.Subscribe(cfg.TopicSteps, 0, func(_ mqtt.Client, msg mqtt.Message) {
			var r steps.Report
			if err := json.Unmarshal(msg.Payload(), &r); err != nil {
				log.Printf("display: report unmarshal error: %v", err)
				return
			}
			data.mu.Lock()
			data.report = r
			data.haveReport = true
			data.mu.Unlock()
		})
		token.Wait()
		if token.Error() != nil {
			return token.Error()
		}
		log.Printf("display: subscribed to %s", cfg.TopicSteps)

	case "accel":
		token := client.Subscribe(cfg.TopicAccel, 0, func(_ mqtt.Client, msg mqtt.Message) {
			var r accel.Reading
			if err := json.Unmarshal(msg.Payload(), &r); err != nil {
				log.Printf("display: accel unmarshal error: %v", err)
				return
			}
			data.mu.Lock()
			data.reading = r
			data.haveReading = true
			data.mu.Unlock()
		})
		token.Wait()
		if token.Error() != nil {
			return token.Error()
		}
		log.Printf("display: subscribed to %s", cfg.TopicAccel)

	case "battery":
		token := client.Subscribe(cfg.TopicBattery, 0, func(_ mqtt.Client, msg mqtt.Message) {
			var s battery.Sample
			if err := json.Unmarshal(msg.Payload(), &s); err != nil {
				log.Printf("display: battery unmarshal error: %v", err)
				return
			}
			data.mu.Lock()
			data.batt = s
			data.haveBatt = true
			data.mu.Unlock()
		})
		token.Wait()
		if token.Error() != nil {
			return token.Error()
		}
		log.Printf("display: subscribed to %s", cfg.TopicBattery)

	case "gps":
		token := client.Subscribe(cfg.TopicGPS, 0, func(_ mqtt.Client, msg mqtt.Message) {
			var f gps.Fix
			if err := json.Unmarshal(msg.Payload(), &f); err != nil {
				log.Printf("display: gps unmarshal error: %v", err)
				return
			}
			data.mu.Lock()
			data.gpsFix = f
			data.haveGPS = true
			data.mu.Unlock()
		})
		token.Wait()
		if token.Error() != nil {
			return token.Error()
		}
		log.Printf("display: subscribed to %s", cfg.TopicGPS)

	default:
		return fmt.Errorf("unknown display content type: %s", content)
	}

	return nil
}

func updateDisplay(dev *ssd1306.Dev, content string, data *DisplayData) error {
	switch content {
	case "steps":
		return updateStepsDisplay(dev, data.report, data.haveReport)
	case "accel":
		return updateAccelDisplay(dev, data.reading, data.haveReading)
	case "battery":
		return updateBatteryDisplay(dev, data.batt, data.haveBatt)
	case "gps":
		return updateGPSDisplay(dev, data.gpsFix, data.haveGPS)
	default:
		return fmt.Errorf("unknown display content type: %s", content)
	}
}

func newFrame() (*image1bit.VerticalLSB, *font.Drawer) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	for i := range img.Pix {
		img.Pix[i] = 0
	}
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	return img, drawer
}

func updateStepsDisplay(dev *ssd1306.Dev, r steps.Report, haveData bool) error {
	img, drawer := newFrame()

	if !haveData {
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte("Steps"))
		drawer.Dot = fixed.P(0, 39)
		drawer.DrawBytes([]byte("Waiting..."))
	} else {
		drawer.Dot = fixed.P(0, 13)
		drawer.DrawBytes([]byte(fmt.Sprintf("Steps: %d", r.TotalSteps)))

		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte(fmt.Sprintf("Hour:  %d/%d", r.StepsLastHour, steps.StepGoalPerHour)))

		level := "?"
		if int(r.ActivityLevel) < len(activityNames) {
			level = activityNames[r.ActivityLevel]
		}
		drawer.Dot = fixed.P(0, 39)
		drawer.DrawBytes([]byte(fmt.Sprintf("Level: %s", level)))

		drawer.Dot = fixed.P(0, 52)
		drawer.DrawBytes([]byte(fmt.Sprintf("kcal:  %d", r.Calories)))
	}

	return dev.Draw(dev.Bounds(), img, image.Point{})
}

func updateAccelDisplay(dev *ssd1306.Dev, r accel.Reading, haveData bool) error {
	img, drawer := newFrame()

	if !haveData {
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte("Accel"))
		drawer.Dot = fixed.P(0, 39)
		drawer.DrawBytes([]byte("Waiting..."))
	} else {
		drawer.Dot = fixed.P(0, 13)
		drawer.DrawBytes([]byte(fmt.Sprintf("X:%6d %+.2fg", r.Raw.Ax, r.Sample.X)))

		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte(fmt.Sprintf("Y:%6d %+.2fg", r.Raw.Ay, r.Sample.Y)))

		drawer.Dot = fixed.P(0, 39)
		drawer.DrawBytes([]byte(fmt.Sprintf("Z:%6d %+.2fg", r.Raw.Az, r.Sample.Z)))
	}

	return dev.Draw(dev.Bounds(), img, image.Point{})
}

func updateBatteryDisplay(dev *ssd1306.Dev, s battery.Sample, haveData bool) error {
	img, drawer := newFrame()

	if !haveData {
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte("Battery"))
		drawer.Dot = fixed.P(0, 39)
		drawer.DrawBytes([]byte("Waiting..."))
	} else {
		drawer.Dot = fixed.P(0, 13)
		drawer.DrawBytes([]byte(fmt.Sprintf("%.1f%%", s.Percent)))

		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte(fmt.Sprintf("%.3fV", s.Voltage)))
	}

	return dev.Draw(dev.Bounds(), img, image.Point{})
}

func updateGPSDisplay(dev *ssd1306.Dev, f gps.Fix, haveData bool) error {
	img, drawer := newFrame()

	if !haveData {
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte("GPS"))
		drawer.Dot = fixed.P(0, 39)
		drawer.DrawBytes([]byte("Waiting..."))
	} else {
		latDir := "N"
		lat := f.Latitude
		if lat < 0 {
			latDir = "S"
			lat = -lat
		}
		drawer.Dot = fixed.P(0, 13)
		drawer.DrawBytes([]byte(fmt.Sprintf("%.4f%s", lat, latDir)))

		lonDir := "E"
		lon := f.Longitude
		if lon < 0 {
			lonDir = "W"
			lon = -lon
		}
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte(fmt.Sprintf("%.4f%s", lon, lonDir)))

		drawer.Dot = fixed.P(0, 39)
		drawer.DrawBytes([]byte(fmt.Sprintf("Walk: %.0fm", f.WalkDistanceM)))
	}

	return dev.Draw(dev.Bounds(), img, image.Point{})
}

func showSplash(dev *ssd1306.Dev) error {
	img, drawer := newFrame()

	drawer.Dot = fixed.P(10, 26)
	drawer.DrawBytes([]byte("Step Tracker"))

	drawer.Dot = fixed.P(5, 43)
	drawer.DrawBytes([]byte("Waiting for"))

	drawer.Dot = fixed.P(25, 56)
	drawer.DrawBytes([]byte("steps"))

	return dev.Draw(dev.Bounds(), img, image.Point{})
}
