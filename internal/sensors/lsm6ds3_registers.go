// Copyright (c) 2026 Stride Labs
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

// BitField describes one field inside a register for the debug tooling.
type BitField struct {
	Bits        string `json:"bits"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Values      string `json:"values,omitempty"`
}

// RegisterInfo is metadata for one LSM6DS3 register.
type RegisterInfo struct {
	Address     string     `json:"address"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Access      string     `json:"access"` // "R", "W", "RW"
	Default     string     `json:"default,omitempty"`
	BitFields   []BitField `json:"bit_fields,omitempty"`
}

// LSM6DS3RegisterMap returns metadata for the registers the step tracker
// touches, plus the output registers useful when debugging a dead axis.
func LSM6DS3RegisterMap() []RegisterInfo {
	return []RegisterInfo{
		{Address: "0x01", Name: "FUNC_CFG_ACCESS", Description: "Embedded functions configuration access", Access: "RW", Default: "0x00"},
		{Address: "0x0F", Name: "WHO_AM_I", Description: "Device identification", Access: "R", Default: "0x6A"},
		{Address: "0x10", Name: "CTRL1_XL", Description: "Accelerometer control", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:4", Name: "ODR_XL", Description: "Accelerometer output data rate", Values: "0=Power down, 4=104Hz"},
				{Bits: "3:2", Name: "FS_XL", Description: "Accelerometer full scale", Values: "0=±2g, 1=±16g, 2=±4g, 3=±8g"},
				{Bits: "1:0", Name: "BW_XL", Description: "Anti-aliasing filter bandwidth", Values: "0=400Hz, 1=200Hz, 2=100Hz, 3=50Hz"},
			}},
		{Address: "0x11", Name: "CTRL2_G", Description: "Gyroscope control", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:4", Name: "ODR_G", Description: "Gyroscope output data rate", Values: "0=Power down, 4=104Hz"},
				{Bits: "3:2", Name: "FS_G", Description: "Gyroscope full scale", Values: "0=±245dps, 1=±500dps, 2=±1000dps, 3=±2000dps"},
			}},
		{Address: "0x12", Name: "CTRL3_C", Description: "Control register 3", Access: "RW", Default: "0x04",
			BitFields: []BitField{
				{Bits: "7", Name: "BOOT", Description: "Reboot memory content", Values: "0=Normal, 1=Reboot"},
				{Bits: "6", Name: "BDU", Description: "Block data update", Values: "0=Continuous, 1=Wait for read"},
				{Bits: "2", Name: "IF_INC", Description: "Register address auto-increment", Values: "0=Disabled, 1=Enabled"},
				{Bits: "0", Name: "SW_RESET", Description: "Software reset", Values: "0=Normal, 1=Reset"},
			}},
		{Address: "0x17", Name: "CTRL8_XL", Description: "Accelerometer filtering control", Access: "RW", Default: "0x00"},
		{Address: "0x1E", Name: "STATUS_REG", Description: "Data ready status", Access: "R",
			BitFields: []BitField{
				{Bits: "2", Name: "TDA", Description: "Temperature data available", Values: ""},
				{Bits: "1", Name: "GDA", Description: "Gyroscope data available", Values: ""},
				{Bits: "0", Name: "XLDA", Description: "Accelerometer data available", Values: ""},
			}},

		// Output registers (read-only)
		{Address: "0x22", Name: "OUTX_L_G", Description: "Gyroscope X low byte", Access: "R"},
		{Address: "0x23", Name: "OUTX_H_G", Description: "Gyroscope X high byte", Access: "R"},
		{Address: "0x24", Name: "OUTY_L_G", Description: "Gyroscope Y low byte", Access: "R"},
		{Address: "0x25", Name: "OUTY_H_G", Description: "Gyroscope Y high byte", Access: "R"},
		{Address: "0x26", Name: "OUTZ_L_G", Description: "Gyroscope Z low byte", Access: "R"},
		{Address: "0x27", Name: "OUTZ_H_G", Description: "Gyroscope Z high byte", Access: "R"},
		{Address: "0x28", Name: "OUTX_L_XL", Description: "Accelerometer X low byte", Access: "R"},
		{Address: "0x29", Name: "OUTX_H_XL", Description: "Accelerometer X high byte", Access: "R"},
		{Address: "0x2A", Name: "OUTY_L_XL", Description: "Accelerometer Y low byte", Access: "R"},
		{Address: "0x2B", Name: "OUTY_H_XL", Description: "Accelerometer Y high byte", Access: "R"},
		{Address: "0x2C", Name: "OUTZ_L_XL", Description: "Accelerometer Z low byte", Access: "R"},
		{Address: "0x2D", Name: "OUTZ_H_XL", Description: "Accelerometer Z high byte", Access: "R"},
	}
}
