// Copyright (c) 2026 Stride Labs
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"log"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/stridelabs/step_tracker/internal/accel"
)

// LSM6DS3TR-C register map (accelerometer subset).
const (
	lsm6ds3AddrSA0Low  = 0x6A // SDO/SA0 pulled low
	lsm6ds3AddrSA0High = 0x6B // SDO/SA0 pulled high

	regFuncCfgAccess = 0x01
	regWhoAmI        = 0x0F
	regCtrl1XL       = 0x10
	regCtrl2G        = 0x11
	regCtrl3C        = 0x12
	regCtrl8XL       = 0x17
	regStatus        = 0x1E
	regOutXLXL       = 0x28

	whoAmIValue = 0x6A

	// ±2g full scale: 0.061 mg/LSB.
	accelLSB2G = 0.000061
)

// LSM6DS3 reads the 3-axis accelerometer of an LSM6DS3TR-C over I2C.
// It implements accel.Source.
type LSM6DS3 struct {
	busName string
	addr    uint16
	bus     i2c.BusCloser
	dev     i2c.Dev
	ready   bool
}

// NewLSM6DS3 creates a driver on the named I2C bus ("" picks the host
// default). addr 0 probes both SA0 addresses during Init.
func NewLSM6DS3(busName string, addr uint16) *LSM6DS3 {
	return &LSM6DS3{busName: busName, addr: addr}
}

// Init opens the I2C bus, identifies the device via WHO_AM_I and
// configures the accelerometer for 104 Hz ±2g operation.
func (s *LSM6DS3) Init() error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("lsm6ds3: periph host init: %w", err)
	}

	bus, err := i2creg.Open(s.busName)
	if err != nil {
		return fmt.Errorf("lsm6ds3: i2c open %q: %w", s.busName, err)
	}
	s.bus = bus

	// Try the default address, then the alternate if needed.
	addrs := []uint16{lsm6ds3AddrSA0Low, lsm6ds3AddrSA0High}
	if s.addr != 0 {
		addrs = []uint16{s.addr}
	}

	var id byte
	found := false
	for _, addr := range addrs {
		s.dev = i2c.Dev{Bus: bus, Addr: addr}
		id, err = s.ReadRegister(regWhoAmI)
		if err == nil && id == whoAmIValue {
			s.addr = addr
			found = true
			break
		}
	}
	if !found {
		bus.Close()
		s.bus = nil
		if err != nil {
			return fmt.Errorf("lsm6ds3: WHO_AM_I read: %w", err)
		}
		return fmt.Errorf("lsm6ds3: WHO_AM_I mismatch: got 0x%02X, want 0x%02X", id, whoAmIValue)
	}
	log.Printf("lsm6ds3: WHO_AM_I=0x%02X at address 0x%02X", id, s.addr)

	// CTRL3_C: block data update + register auto-increment.
	if err := s.WriteRegister(regCtrl3C, 0x44); err != nil {
		return fmt.Errorf("lsm6ds3: CTRL3_C write: %w", err)
	}
	// CTRL1_XL: accelerometer 104 Hz, ±2g.
	if err := s.WriteRegister(regCtrl1XL, 0x40); err != nil {
		return fmt.Errorf("lsm6ds3: CTRL1_XL write: %w", err)
	}
	// CTRL2_G: gyroscope 104 Hz, ±245 dps.
	if err := s.WriteRegister(regCtrl2G, 0x40); err != nil {
		return fmt.Errorf("lsm6ds3: CTRL2_G write: %w", err)
	}

	s.ready = true
	return nil
}

// ReadAccel returns one 3-axis sample, both raw LSB and scaled to g.
func (s *LSM6DS3) ReadAccel() (accel.Reading, error) {
	if !s.ready {
		return accel.Reading{}, fmt.Errorf("lsm6ds3: not initialized")
	}

	// 6-byte burst from OUTX_L_XL; the device auto-increments.
	var buf [6]byte
	if err := s.dev.Tx([]byte{regOutXLXL}, buf[:]); err != nil {
		return accel.Reading{}, fmt.Errorf("lsm6ds3: accel read: %w", err)
	}

	raw := accel.Raw{
		Ax: int16(uint16(buf[1])<<8 | uint16(buf[0])),
		Ay: int16(uint16(buf[3])<<8 | uint16(buf[2])),
		Az: int16(uint16(buf[5])<<8 | uint16(buf[4])),
	}
	return accel.Reading{
		Raw: raw,
		Sample: accel.Sample{
			X: float32(raw.Ax) * accelLSB2G,
			Y: float32(raw.Ay) * accelLSB2G,
			Z: float32(raw.Az) * accelLSB2G,
		},
	}, nil
}

// ReadRegister reads a single register.
func (s *LSM6DS3) ReadRegister(reg byte) (byte, error) {
	var rx [1]byte
	if err := s.dev.Tx([]byte{reg}, rx[:]); err != nil {
		return 0, err
	}
	return rx[0], nil
}

// WriteRegister writes a single register.
func (s *LSM6DS3) WriteRegister(reg, value byte) error {
	return s.dev.Tx([]byte{reg, value}, nil)
}

// Addr returns the I2C address the device answered on.
func (s *LSM6DS3) Addr() uint16 {
	return s.addr
}

// Close releases the I2C bus.
func (s *LSM6DS3) Close() error {
	s.ready = false
	if s.bus == nil {
		return nil
	}
	err := s.bus.Close()
	s.bus = nil
	return err
}
