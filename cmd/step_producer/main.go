// Copyright (c) 2026 Stride Labs
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"

	"github.com/stridelabs/step_tracker/internal/app"
	"github.com/stridelabs/step_tracker/internal/config"
)

func main() {
	configPath := flag.String("config", "./step_config.txt", "path to configuration file")
	mock := flag.Bool("mock", false, "use the mock walking source instead of the LSM6DS3")
	flag.Parse()

	log.Println("starting step-tracker producer (LSM6DS3 → MQTT)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunStepProducer(*mock); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
