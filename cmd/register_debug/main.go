// Copyright (c) 2026 Stride Labs
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/stridelabs/step_tracker/internal/app"
	"github.com/stridelabs/step_tracker/internal/config"
	"github.com/stridelabs/step_tracker/internal/sensors"
)

func main() {
	configPath := flag.String("config", "./step_config.txt", "path to configuration file")
	flag.Parse()

	log.Println("starting LSM6DS3 register debug tool (standalone)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()

	dev := sensors.NewLSM6DS3(cfg.IMUI2CBus, cfg.IMUI2CAddr)
	if err := dev.Init(); err != nil {
		log.Fatalf("failed to initialize accelerometer: %v", err)
	}
	log.Printf("accelerometer ready at 0x%02X", dev.Addr())

	http.HandleFunc("/ws", app.HandleRegisterDebugWS(dev))

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "web/register_debug.html")
	})

	addr := ":8081"
	log.Printf("Register debug tool listening on %s", addr)
	log.Printf("Open http://localhost:8081 in your browser")
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
