// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package transport

// Transport is the raw register access capability everything else in this
// project is built on: byte/word/bit reads and writes addressed by register.
// The device address is fixed at construction time; a Transport talks to
// exactly one device.
type Transport interface {
	ReadByte(reg byte) (byte, error)
	ReadBytes(reg byte, buf []byte) error
	// ReadWord reads two consecutive registers as a big-endian uint16
	// (the device stores all multi-byte quantities MSB first).
	ReadWord(reg byte) (uint16, error)

	WriteByte(reg byte, value byte) error
	WriteBytes(reg byte, buf []byte) error
	WriteWord(reg byte, value uint16) error

	// MaxBurst returns the largest number of bytes a single ReadBytes or
	// WriteBytes transfer may carry. Callers doing bulk FIFO or firmware
	// transfers must chunk accordingly.
	MaxBurst() int
}

// Field describes a bit field inside a register: its register address, the
// bit position of the field's LSB and its width in bits. One descriptor plus
// the two generic accessors below replaces a dedicated getter/setter pair
// per flag.
type Field struct {
	Reg   byte
	Start uint // bit position of the field's least significant bit, 0..7
	Width uint // 1..8
}

func (f Field) mask() byte {
	return byte((1<<f.Width)-1) << f.Start
}

// ReadField reads the register and extracts the field value, shifted down
// to bit 0.
func ReadField(t Transport, f Field) (byte, error) {
	v, err := t.ReadByte(f.Reg)
	if err != nil {
		return 0, err
	}
	return (v & f.mask()) >> f.Start, nil
}

// WriteField performs a read-modify-write of the field, leaving the other
// bits of the register untouched.
func WriteField(t Transport, f Field, value byte) error {
	v, err := t.ReadByte(f.Reg)
	if err != nil {
		return err
	}
	v = (v &^ f.mask()) | ((value << f.Start) & f.mask())
	return t.WriteByte(f.Reg, v)
}
