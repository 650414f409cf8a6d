// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package dmp

import "github.com/relabs-tech/motion_computer/internal/transport"

// MPU6050 register addresses. Only the registers this driver touches are
// listed; the register-debug tool exposes the same set with metadata below.
const (
	regXAOffsetH = 0x06 // accel offset trim, X high byte (Y at 0x08, Z at 0x0A)
	regYAOffsetH = 0x08
	regZAOffsetH = 0x0A

	regXGOffsetH = 0x13 // gyro offset trim, X high byte (Y at 0x15, Z at 0x17)
	regYGOffsetH = 0x15
	regZGOffsetH = 0x17

	regSmplrtDiv   = 0x19
	regConfig      = 0x1A
	regGyroConfig  = 0x1B
	regAccelConfig = 0x1C

	regFIFOEnable = 0x23

	regIntPinCfg = 0x37
	regIntEnable = 0x38
	regIntStatus = 0x3A

	regAccelXOutH = 0x3B
	regTempOutH   = 0x41
	regGyroXOutH  = 0x43

	regUserCtrl = 0x6A
	regPwrMgmt1 = 0x6B
	regPwrMgmt2 = 0x6C

	// DMP program/data memory is reached through a bank-select window.
	regBankSel      = 0x6D
	regMemStartAddr = 0x6E
	regMemRW        = 0x6F
	regDMPCfg1      = 0x70
	regDMPCfg2      = 0x71

	regFIFOCountH = 0x72
	regFIFORW     = 0x74
	regWhoAmI     = 0x75
)

// Bit fields consumed through the generic field accessors.
var (
	fieldDeviceReset = transport.Field{Reg: regPwrMgmt1, Start: 7, Width: 1}
	fieldSleep       = transport.Field{Reg: regPwrMgmt1, Start: 6, Width: 1}
	fieldClockSel    = transport.Field{Reg: regPwrMgmt1, Start: 0, Width: 3}

	fieldDMPEnable  = transport.Field{Reg: regUserCtrl, Start: 7, Width: 1}
	fieldFIFOEnable = transport.Field{Reg: regUserCtrl, Start: 6, Width: 1}
	fieldDMPReset   = transport.Field{Reg: regUserCtrl, Start: 3, Width: 1}
	fieldFIFOReset  = transport.Field{Reg: regUserCtrl, Start: 2, Width: 1}

	fieldDLPFMode   = transport.Field{Reg: regConfig, Start: 0, Width: 3}
	fieldGyroRange  = transport.Field{Reg: regGyroConfig, Start: 3, Width: 2}
	fieldAccelRange = transport.Field{Reg: regAccelConfig, Start: 3, Width: 2}

	fieldDMPInt = transport.Field{Reg: regIntEnable, Start: 1, Width: 1}
)

// Clock source values for PWR_MGMT_1 CLKSEL.
const (
	clockInternal = 0x00
	clockPLLGyroX = 0x01
	clockPLLGyroZ = 0x03
)

// BitField describes one field of a register for the debug tool.
type BitField struct {
	Bits        string `json:"bits"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Values      string `json:"values,omitempty"`
}

// RegisterInfo is register metadata served to the register-debug console.
type RegisterInfo struct {
	Address     string     `json:"address"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Access      string     `json:"access"`
	Default     string     `json:"default,omitempty"`
	BitFields   []BitField `json:"bit_fields,omitempty"`
}

// RegisterMap returns metadata for the MPU6050 registers this driver uses.
func RegisterMap() []RegisterInfo {
	return []RegisterInfo{
		// Offset trim
		{Address: "0x06", Name: "XA_OFFS_H", Description: "Accelerometer X-Axis Offset High Byte", Access: "RW"},
		{Address: "0x07", Name: "XA_OFFS_L", Description: "Accelerometer X-Axis Offset Low Byte (bit 0 reserved for temperature compensation)", Access: "RW"},
		{Address: "0x08", Name: "YA_OFFS_H", Description: "Accelerometer Y-Axis Offset High Byte", Access: "RW"},
		{Address: "0x09", Name: "YA_OFFS_L", Description: "Accelerometer Y-Axis Offset Low Byte", Access: "RW"},
		{Address: "0x0A", Name: "ZA_OFFS_H", Description: "Accelerometer Z-Axis Offset High Byte", Access: "RW"},
		{Address: "0x0B", Name: "ZA_OFFS_L", Description: "Accelerometer Z-Axis Offset Low Byte", Access: "RW"},
		{Address: "0x13", Name: "XG_OFFS_H", Description: "Gyroscope X-Axis Offset High Byte", Access: "RW"},
		{Address: "0x14", Name: "XG_OFFS_L", Description: "Gyroscope X-Axis Offset Low Byte", Access: "RW"},
		{Address: "0x15", Name: "YG_OFFS_H", Description: "Gyroscope Y-Axis Offset High Byte", Access: "RW"},
		{Address: "0x16", Name: "YG_OFFS_L", Description: "Gyroscope Y-Axis Offset Low Byte", Access: "RW"},
		{Address: "0x17", Name: "ZG_OFFS_H", Description: "Gyroscope Z-Axis Offset High Byte", Access: "RW"},
		{Address: "0x18", Name: "ZG_OFFS_L", Description: "Gyroscope Z-Axis Offset Low Byte", Access: "RW"},

		// Configuration
		{Address: "0x19", Name: "SMPLRT_DIV", Description: "Sample Rate Divider", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:0", Name: "SMPLRT_DIV", Description: "Sample Rate = Gyro Output Rate / (1 + SMPLRT_DIV)", Values: "0-255"},
			}},
		{Address: "0x1A", Name: "CONFIG", Description: "Configuration (DLPF)", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "5:3", Name: "EXT_SYNC_SET", Description: "External FSYNC pin sampling", Values: "0=Disabled"},
				{Bits: "2:0", Name: "DLPF_CFG", Description: "Digital Low Pass Filter", Values: "0=260Hz, 1=184Hz, 2=94Hz, 3=44Hz, 4=21Hz, 5=10Hz, 6=5Hz"},
			}},
		{Address: "0x1B", Name: "GYRO_CONFIG", Description: "Gyroscope Configuration", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "4:3", Name: "FS_SEL", Description: "Gyro Full Scale Range", Values: "0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s"},
			}},
		{Address: "0x1C", Name: "ACCEL_CONFIG", Description: "Accelerometer Configuration", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "4:3", Name: "AFS_SEL", Description: "Accel Full Scale Range", Values: "0=±2g, 1=±4g, 2=±8g, 3=±16g"},
			}},
		{Address: "0x23", Name: "FIFO_EN", Description: "FIFO Enable (per-sensor routing)", Access: "RW", Default: "0x00"},

		// Interrupts
		{Address: "0x37", Name: "INT_PIN_CFG", Description: "INT Pin / Bypass Enable Configuration", Access: "RW", Default: "0x00"},
		{Address: "0x38", Name: "INT_ENABLE", Description: "Interrupt Enable", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "4", Name: "FIFO_OFLOW_EN", Description: "FIFO overflow interrupt", Values: "0=Disabled, 1=Enabled"},
				{Bits: "1", Name: "DMP_INT_EN", Description: "DMP interrupt", Values: "0=Disabled, 1=Enabled"},
				{Bits: "0", Name: "DATA_RDY_EN", Description: "Raw data ready interrupt", Values: "0=Disabled, 1=Enabled"},
			}},
		{Address: "0x3A", Name: "INT_STATUS", Description: "Interrupt Status", Access: "R", Default: "0x00"},

		// Sensor data
		{Address: "0x3B", Name: "ACCEL_XOUT_H", Description: "Accelerometer X-Axis High Byte", Access: "R"},
		{Address: "0x3D", Name: "ACCEL_YOUT_H", Description: "Accelerometer Y-Axis High Byte", Access: "R"},
		{Address: "0x3F", Name: "ACCEL_ZOUT_H", Description: "Accelerometer Z-Axis High Byte", Access: "R"},
		{Address: "0x41", Name: "TEMP_OUT_H", Description: "Temperature High Byte", Access: "R"},
		{Address: "0x43", Name: "GYRO_XOUT_H", Description: "Gyroscope X-Axis High Byte", Access: "R"},
		{Address: "0x45", Name: "GYRO_YOUT_H", Description: "Gyroscope Y-Axis High Byte", Access: "R"},
		{Address: "0x47", Name: "GYRO_ZOUT_H", Description: "Gyroscope Z-Axis High Byte", Access: "R"},

		// Control
		{Address: "0x6A", Name: "USER_CTRL", Description: "User Control", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "DMP_EN", Description: "Enable DMP", Values: "0=Disabled, 1=Enabled"},
				{Bits: "6", Name: "FIFO_EN", Description: "Enable FIFO", Values: "0=Disabled, 1=Enabled"},
				{Bits: "3", Name: "DMP_RST", Description: "Reset DMP", Values: "1=Reset"},
				{Bits: "2", Name: "FIFO_RST", Description: "Reset FIFO", Values: "1=Reset"},
			}},
		{Address: "0x6B", Name: "PWR_MGMT_1", Description: "Power Management 1", Access: "RW", Default: "0x40",
			BitFields: []BitField{
				{Bits: "7", Name: "DEVICE_RESET", Description: "Device reset", Values: "1=Reset device"},
				{Bits: "6", Name: "SLEEP", Description: "Sleep mode", Values: "0=Disabled, 1=Sleep"},
				{Bits: "2:0", Name: "CLKSEL", Description: "Clock source", Values: "0=Internal 8MHz, 1=PLL X gyro, 3=PLL Z gyro"},
			}},
		{Address: "0x6C", Name: "PWR_MGMT_2", Description: "Power Management 2 (per-axis standby)", Access: "RW", Default: "0x00"},

		// DMP memory window
		{Address: "0x6D", Name: "BANK_SEL", Description: "DMP Memory Bank Select", Access: "RW"},
		{Address: "0x6E", Name: "MEM_START_ADDR", Description: "DMP Memory Start Address within bank", Access: "RW"},
		{Address: "0x6F", Name: "MEM_R_W", Description: "DMP Memory Read/Write window", Access: "RW"},
		{Address: "0x70", Name: "DMP_CFG_1", Description: "DMP program start address high byte", Access: "RW"},
		{Address: "0x71", Name: "DMP_CFG_2", Description: "DMP program start address low byte", Access: "RW"},

		// FIFO
		{Address: "0x72", Name: "FIFO_COUNT_H", Description: "FIFO Count High Byte", Access: "R"},
		{Address: "0x73", Name: "FIFO_COUNT_L", Description: "FIFO Count Low Byte", Access: "R"},
		{Address: "0x74", Name: "FIFO_R_W", Description: "FIFO Read Write", Access: "RW"},

		{Address: "0x75", Name: "WHO_AM_I", Description: "Device ID (should be 0x68)", Access: "R", Default: "0x68"},
	}
}
