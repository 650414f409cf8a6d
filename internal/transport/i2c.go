// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package transport

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// The MPU6050 register file is accessed through SMBus-style transactions;
// most adapters cap a single transfer at 32 data bytes, and the chip's own
// serial interface buffer is no bigger. Bulk FIFO/firmware transfers chunk
// at this size.
const i2cMaxBurst = 32

var hostOnce sync.Once

// i2cTransport implements Transport on top of a periph.io I2C device.
type i2cTransport struct {
	dev i2c.Dev
	bus i2c.BusCloser
}

// NewI2C opens the named I2C bus (empty string selects the first available
// one) and returns a Transport bound to the device at addr.
func NewI2C(busName string, addr uint16) (Transport, error) {
	var initErr error
	hostOnce.Do(func() {
		_, initErr = host.Init()
	})
	if initErr != nil {
		return nil, fmt.Errorf("periph host init: %w", initErr)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open I2C bus %q: %w", busName, err)
	}

	return &i2cTransport{
		dev: i2c.Dev{Addr: addr, Bus: bus},
		bus: bus,
	}, nil
}

func (t *i2cTransport) ReadByte(reg byte) (byte, error) {
	var buf [1]byte
	if err := t.dev.Tx([]byte{reg}, buf[:]); err != nil {
		return 0, fmt.Errorf("read reg 0x%02X: %w", reg, err)
	}
	return buf[0], nil
}

func (t *i2cTransport) ReadBytes(reg byte, buf []byte) error {
	if len(buf) > i2cMaxBurst {
		return fmt.Errorf("read reg 0x%02X: %d bytes exceeds burst limit %d", reg, len(buf), i2cMaxBurst)
	}
	if err := t.dev.Tx([]byte{reg}, buf); err != nil {
		return fmt.Errorf("read reg 0x%02X (%d bytes): %w", reg, len(buf), err)
	}
	return nil
}

func (t *i2cTransport) ReadWord(reg byte) (uint16, error) {
	var buf [2]byte
	if err := t.dev.Tx([]byte{reg}, buf[:]); err != nil {
		return 0, fmt.Errorf("read word 0x%02X: %w", reg, err)
	}
	return uint16(buf[0])<<8 | uint16(buf[1]), nil
}

func (t *i2cTransport) WriteByte(reg byte, value byte) error {
	if err := t.dev.Tx([]byte{reg, value}, nil); err != nil {
		return fmt.Errorf("write reg 0x%02X: %w", reg, err)
	}
	return nil
}

func (t *i2cTransport) WriteBytes(reg byte, buf []byte) error {
	if len(buf) > i2cMaxBurst {
		return fmt.Errorf("write reg 0x%02X: %d bytes exceeds burst limit %d", reg, len(buf), i2cMaxBurst)
	}
	w := make([]byte, 0, len(buf)+1)
	w = append(w, reg)
	w = append(w, buf...)
	if err := t.dev.Tx(w, nil); err != nil {
		return fmt.Errorf("write reg 0x%02X (%d bytes): %w", reg, len(buf), err)
	}
	return nil
}

func (t *i2cTransport) WriteWord(reg byte, value uint16) error {
	if err := t.dev.Tx([]byte{reg, byte(value >> 8), byte(value)}, nil); err != nil {
		return fmt.Errorf("write word 0x%02X: %w", reg, err)
	}
	return nil
}

func (t *i2cTransport) MaxBurst() int { return i2cMaxBurst }

// Close releases the underlying bus.
func (t *i2cTransport) Close() error {
	return t.bus.Close()
}
