package main

import (
	"flag"
	"log"

	"github.com/stridelabs/step_tracker/internal/app"
	"github.com/stridelabs/step_tracker/internal/config"
)

func main() {
	configPath := flag.String("config", "./step_config.txt", "path to configuration file")
	flag.Parse()

	log.Println("starting step-tracker battery producer (MAX17048 → MQTT)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunBatteryProducer(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
