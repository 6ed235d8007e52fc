package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker          string
	MQTTClientIDTracker string
	MQTTClientIDBattery string
	MQTTClientIDGPS     string
	MQTTClientIDConsole string
	MQTTClientIDWeb     string
	MQTTClientIDDisplay string
	MQTTClientIDLEDBar  string

	// Topics
	TopicSteps   string
	TopicAccel   string
	TopicBattery string
	TopicGPS     string

	// IMU hardware
	IMUI2CBus  string // "" picks the host default bus
	IMUI2CAddr uint16 // 0 probes both SA0 addresses

	// Timing
	SampleInterval     int // milliseconds
	ConsoleLogInterval int // milliseconds

	// Battery fuel gauge
	BatteryI2CBus         string
	BatterySampleInterval int // milliseconds

	// Wearer profile (calorie estimation)
	WearerWeightLbs uint16
	WearerHeight    string // "tall", "medium" or "short"

	// Display
	DisplayUpdateInterval int    // milliseconds
	DisplayContent        string // "steps", "accel", "battery" or "gps"

	// LED bar
	LEDSPIDevice   string
	LEDCount       int
	LEDStepsPerLED int

	// GPS
	GPSSerialPort string
	GPSBaudRate   int

	// Web server
	WebServerPort int
}

// Package-level unexported variables for the config singleton. External
// code must use InitGlobal() to set and Get() to read; the RWMutex lets
// concurrent readers share while initialization holds the write lock.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := &Config{}
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_TRACKER":
		c.MQTTClientIDTracker = value
	case "MQTT_CLIENT_ID_BATTERY":
		c.MQTTClientIDBattery = value
	case "MQTT_CLIENT_ID_GPS":
		c.MQTTClientIDGPS = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value
	case "MQTT_CLIENT_ID_LEDBAR":
		c.MQTTClientIDLEDBar = value

	// Topics
	case "TOPIC_STEPS":
		c.TopicSteps = value
	case "TOPIC_ACCEL":
		c.TopicAccel = value
	case "TOPIC_BATTERY":
		c.TopicBattery = value
	case "TOPIC_GPS":
		c.TopicGPS = value

	// IMU hardware
	case "IMU_I2C_BUS":
		c.IMUI2CBus = value
	case "IMU_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid IMU_I2C_ADDR %q: %w", value, err)
		}
		c.IMUI2CAddr = uint16(addr)

	// Timing
	case "SAMPLE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SAMPLE_INTERVAL %q: %w", value, err)
		}
		c.SampleInterval = interval
	case "CONSOLE_LOG_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid CONSOLE_LOG_INTERVAL %q: %w", value, err)
		}
		c.ConsoleLogInterval = interval

	// Battery fuel gauge
	case "BATTERY_I2C_BUS":
		c.BatteryI2CBus = value
	case "BATTERY_SAMPLE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid BATTERY_SAMPLE_INTERVAL %q: %w", value, err)
		}
		c.BatterySampleInterval = interval

	// Wearer profile
	case "WEARER_WEIGHT_LBS":
		weight, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEARER_WEIGHT_LBS %q: %w", value, err)
		}
		if weight < 0 || weight > 65535 {
			return fmt.Errorf("WEARER_WEIGHT_LBS out of range: %d", weight)
		}
		c.WearerWeightLbs = uint16(weight)
	case "WEARER_HEIGHT":
		switch value {
		case "tall", "medium", "short":
			c.WearerHeight = value
		default:
			return fmt.Errorf("WEARER_HEIGHT must be tall, medium or short, got %q", value)
		}

	// Display
	case "DISPLAY_UPDATE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_INTERVAL %q: %w", value, err)
		}
		c.DisplayUpdateInterval = interval
	case "DISPLAY_CONTENT":
		switch value {
		case "steps", "accel", "battery", "gps":
			c.DisplayContent = value
		default:
			return fmt.Errorf("DISPLAY_CONTENT must be steps, accel, battery or gps, got %q", value)
		}

	// LED bar
	case "LED_SPI_DEVICE":
		c.LEDSPIDevice = value
	case "LED_COUNT":
		count, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid LED_COUNT %q: %w", value, err)
		}
		if count <= 0 {
			return fmt.Errorf("LED_COUNT must be positive, got %d", count)
		}
		c.LEDCount = count
	case "LED_STEPS_PER_LED":
		steps, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid LED_STEPS_PER_LED %q: %w", value, err)
		}
		if steps <= 0 {
			return fmt.Errorf("LED_STEPS_PER_LED must be positive, got %d", steps)
		}
		c.LEDStepsPerLED = steps

	// GPS
	case "GPS_SERIAL_PORT":
		c.GPSSerialPort = value
	case "GPS_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid GPS_BAUD_RATE %q: %w", value, err)
		}
		c.GPSBaudRate = rate

	// Web server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.TopicSteps == "" {
		return fmt.Errorf("TOPIC_STEPS is required")
	}
	if c.TopicAccel == "" {
		return fmt.Errorf("TOPIC_ACCEL is required")
	}
	if c.TopicBattery == "" {
		return fmt.Errorf("TOPIC_BATTERY is required")
	}
	if c.SampleInterval == 0 {
		return fmt.Errorf("SAMPLE_INTERVAL is required")
	}
	if c.ConsoleLogInterval == 0 {
		return fmt.Errorf("CONSOLE_LOG_INTERVAL is required")
	}
	return nil
}

// InitGlobal initializes the global configuration from file. sync.Once
// ensures this only runs once even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance. InitGlobal must be
// called first, or this returns nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
