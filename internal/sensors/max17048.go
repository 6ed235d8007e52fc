package sensors

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// MAX17048 fuel gauge register map (MAX17043/48 family, 16-bit registers).
const (
	max17048Addr = 0x36

	regVCell   = 0x02
	regSOC     = 0x04
	regMode    = 0x06
	regVersion = 0x08
	regConfig  = 0x0C
	regCommand = 0xFE

	quickStartValue   = 0x4000
	powerOnResetValue = 0x5400
)

// MAX17048 reads battery voltage and state of charge over I2C.
type MAX17048 struct {
	bus i2c.BusCloser
	dev i2c.Dev
}

// NewMAX17048 opens the named I2C bus ("" picks the host default) and
// confirms the gauge responds by reading its version register.
func NewMAX17048(busName string) (*MAX17048, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("max17048: periph host init: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("max17048: i2c open %q: %w", busName, err)
	}

	d := &MAX17048{
		bus: bus,
		dev: i2c.Dev{Bus: bus, Addr: max17048Addr},
	}
	if _, err := d.Version(); err != nil {
		bus.Close()
		return nil, fmt.Errorf("max17048: version read: %w", err)
	}
	return d, nil
}

func (d *MAX17048) readReg16(reg byte) (uint16, error) {
	var buf [2]byte
	if err := d.dev.Tx([]byte{reg}, buf[:]); err != nil {
		return 0, err
	}
	return uint16(buf[0])<<8 | uint16(buf[1]), nil
}

func (d *MAX17048) writeReg16(reg byte, val uint16) error {
	return d.dev.Tx([]byte{reg, byte(val >> 8), byte(val)}, nil)
}

// Voltage returns the cell voltage in volts.
func (d *MAX17048) Voltage() (float64, error) {
	raw, err := d.readReg16(regVCell)
	if err != nil {
		return 0, fmt.Errorf("max17048: vcell read: %w", err)
	}
	// Bits 15:4 hold the measurement; each LSB = 1.25mV.
	return float64(raw>>4) * 0.00125, nil
}

// StateOfCharge returns the battery percentage (8.8 fixed point).
func (d *MAX17048) StateOfCharge() (float64, error) {
	raw, err := d.readReg16(regSOC)
	if err != nil {
		return 0, fmt.Errorf("max17048: soc read: %w", err)
	}
	return float64(raw) / 256.0, nil
}

// Version returns the IC production version.
func (d *MAX17048) Version() (uint16, error) {
	return d.readReg16(regVersion)
}

// QuickStart restarts the fuel-gauge calculations (datasheet quick-start
// command), for when the battery is swapped under power.
func (d *MAX17048) QuickStart() error {
	return d.writeReg16(regMode, quickStartValue)
}

// Reset issues a soft reset back to power-on defaults.
func (d *MAX17048) Reset() error {
	return d.writeReg16(regCommand, powerOnResetValue)
}

// Close releases the I2C bus.
func (d *MAX17048) Close() error {
	if d.bus == nil {
		return nil
	}
	err := d.bus.Close()
	d.bus = nil
	return err
}
