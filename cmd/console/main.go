// Copyright (c) 2026 Stride Labs
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"log"

	"github.com/stridelabs/step_tracker/internal/app"
)

func main() {
	log.Println("starting step-tracker (mock console)")

	if err := app.RunMockConsole(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
