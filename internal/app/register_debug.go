// Copyright (c) 2026 Stride Labs
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/stridelabs/step_tracker/internal/sensors"
)

// WebSocket message types for register debugging
type RegisterCmd struct {
	Action  string `json:"action"` // "map", "read", "read_all", "write"
	Address string `json:"addr,omitempty"`
	Value   string `json:"value,omitempty"`
}

type RegisterResponse struct {
	Type        string                 `json:"type"` // "register_data", "register_map", "status", "error"
	Address     string                 `json:"addr,omitempty"`
	Value       string                 `json:"value,omitempty"`
	Registers   map[string]string      `json:"registers,omitempty"` // for bulk read
	RegisterMap []sensors.RegisterInfo `json:"register_map,omitempty"`
	Timestamp   string                 `json:"timestamp,omitempty"`
	Message     string                 `json:"message,omitempty"`
}

// HandleRegisterDebugWS serves a WebSocket session for poking LSM6DS3
// registers: read one, dump the known map, or write a value. Meant for
// bring-up debugging on the bench, not for production wear.
func HandleRegisterDebugWS(dev *sensors.LSM6DS3) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("register_debug: websocket upgrade error: %v", err)
			return
		}
		defer conn.Close()
		log.Printf("register_debug: session started from %s", r.RemoteAddr)

		for {
			var cmd RegisterCmd
			if err := conn.ReadJSON(&cmd); err != nil {
				log.Printf("register_debug: session ended: %v", err)
				return
			}

			resp := handleRegisterCmd(dev, cmd)
			resp.Timestamp = time.Now().UTC().Format(time.RFC3339)
			if err := conn.WriteJSON(resp); err != nil {
				log.Printf("register_debug: write error: %v", err)
				return
			}
		}
	}
}

func handleRegisterCmd(dev *sensors.LSM6DS3, cmd RegisterCmd) RegisterResponse {
	switch cmd.Action {
	case "map":
		return RegisterResponse{
			Type:        "register_map",
			RegisterMap: sensors.LSM6DS3RegisterMap(),
		}

	case "read":
		reg, err := parseRegisterAddr(cmd.Address)
		if err != nil {
			return errorResponse(err)
		}
		val, err := dev.ReadRegister(reg)
		if err != nil {
			return errorResponse(fmt.Errorf("read 0x%02X: %w", reg, err))
		}
		return RegisterResponse{
			Type:    "register_data",
			Address: fmt.Sprintf("0x%02X", reg),
			Value:   fmt.Sprintf("0x%02X", val),
		}

	case "read_all":
		regs := make(map[string]string)
		for _, info := range sensors.LSM6DS3RegisterMap() {
			reg, err := parseRegisterAddr(info.Address)
			if err != nil {
				continue
			}
			val, err := dev.ReadRegister(reg)
			if err != nil {
				regs[info.Name] = fmt.Sprintf("error: %v", err)
				continue
			}
			regs[info.Name] = fmt.Sprintf("0x%02X", val)
		}
		return RegisterResponse{Type: "register_data", Registers: regs}

	case "write":
		reg, err := parseRegisterAddr(cmd.Address)
		if err != nil {
			return errorResponse(err)
		}
		val, err := strconv.ParseUint(cmd.Value, 0, 8)
		if err != nil {
			return errorResponse(fmt.Errorf("invalid value %q: %w", cmd.Value, err))
		}
		if err := dev.WriteRegister(reg, byte(val)); err != nil {
			return errorResponse(fmt.Errorf("write 0x%02X: %w", reg, err))
		}
		return RegisterResponse{
			Type:    "status",
			Address: fmt.Sprintf("0x%02X", reg),
			Value:   fmt.Sprintf("0x%02X", byte(val)),
			Message: "written",
		}

	default:
		return errorResponse(fmt.Errorf("unknown action %q", cmd.Action))
	}
}

func parseRegisterAddr(s string) (byte, error) {
	addr, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid register address %q: %w", s, err)
	}
	return byte(addr), nil
}

func errorResponse(err error) RegisterResponse {
	return RegisterResponse{Type: "error", Message: err.Error()}
}
