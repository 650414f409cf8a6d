// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package dmp

import (
	"bytes"
	"fmt"
	"log"
	"time"

	"github.com/relabs-tech/motion_computer/internal/timeutil"
	"github.com/relabs-tech/motion_computer/internal/transport"
)

// Empirical device constants. Both are overridable through Options; neither
// has a documented derivation beyond bench measurement, so they are kept as
// named values rather than literals.
const (
	// DefaultOverflowThreshold is the backlog (in bytes, roughly 7
	// packets) past which draining the ring buffer costs more time than
	// resetting it and waiting for a fresh capture.
	DefaultOverflowThreshold = 200

	// DefaultDeadline bounds a single packet acquisition attempt.
	DefaultDeadline = 11 * time.Second
)

// fifoPollInterval paces backlog re-polls after a ring-buffer reset.
const fifoPollInterval = time.Millisecond

const expectedDeviceID = 0x68

// Options configures a Device session.
type Options struct {
	// OverflowThreshold in bytes; 0 selects DefaultOverflowThreshold.
	OverflowThreshold int
	// Deadline for one acquisition attempt; 0 selects DefaultDeadline.
	Deadline time.Duration
	// Clock defaults to the real clock; tests inject a mock.
	Clock timeutil.Clock
}

// Device is a session with the motion co-processor. The ring buffer and the
// offset registers are a single exclusively-owned hardware resource: callers
// must serialize acquisitions and calibration runs. There is no internal
// locking because there is no internal concurrency.
type Device struct {
	tr       transport.Transport
	clock    timeutil.Clock
	overflow int
	deadline time.Duration
}

// New wraps a register transport in a Device session.
func New(tr transport.Transport, opts Options) *Device {
	d := &Device{
		tr:       tr,
		clock:    opts.Clock,
		overflow: opts.OverflowThreshold,
		deadline: opts.Deadline,
	}
	if d.clock == nil {
		d.clock = timeutil.RealClock{}
	}
	if d.overflow == 0 {
		d.overflow = DefaultOverflowThreshold
	}
	if d.deadline == 0 {
		d.deadline = DefaultDeadline
	}
	return d
}

// initSequence is the register bring-up before firmware upload: full reset,
// wake with the Z-gyro PLL as clock source, 42Hz DLPF, 200Hz sample rate,
// ±2000°/s gyro and ±2g accel full scale. Entries with a single value are
// settle delays in milliseconds.
var initSequence = [][]byte{
	{regPwrMgmt1, 0x80}, // device reset
	{100},
	{regPwrMgmt1, clockPLLGyroZ}, // wake, clock from Z gyro PLL
	{regPwrMgmt2, 0x00},          // all axes out of standby
	{regIntEnable, 0x00},
	{regFIFOEnable, 0x00},
	{regConfig, 0x03},      // DLPF 42Hz
	{regSmplrtDiv, 0x04},   // 1kHz / (1+4) = 200Hz
	{regGyroConfig, 3 << 3}, // ±2000°/s, DMP native scale
	{regAccelConfig, 0x00},  // ±2g
}

// Init verifies the device identity and runs the bring-up sequence.
// The DMP is left disabled; call LoadFirmware and EnableDMP afterwards.
func (d *Device) Init() error {
	id, err := d.tr.ReadByte(regWhoAmI)
	if err != nil {
		return fmt.Errorf("device probe: %w", err)
	}
	if id != expectedDeviceID {
		return fmt.Errorf("unexpected device ID 0x%02X (want 0x%02X)", id, expectedDeviceID)
	}

	for i, step := range initSequence {
		if len(step) == 1 {
			d.clock.Sleep(time.Duration(step[0]) * time.Millisecond)
			continue
		}
		if err := d.tr.WriteByte(step[0], step[1]); err != nil {
			return fmt.Errorf("init step %d (reg 0x%02X): %w", i, step[0], err)
		}
	}
	return nil
}

// DMP program memory geometry: 8 banks of 256 bytes reached through the
// bank-select window, written in 16-byte chunks.
const (
	memBankSize     = 256
	memBanks        = 8
	memChunkSize    = 16
	dmpProgramStart = 0x0400
)

// LoadFirmware uploads the co-processor firmware image through the banked
// memory window, verifying each chunk by read-back, then programs the DMP
// start address. The image is an immutable artifact loaded once at session
// start; this call is not part of the runtime packet path.
func (d *Device) LoadFirmware(image []byte) error {
	if len(image) == 0 {
		return fmt.Errorf("empty firmware image")
	}
	if len(image) > memBankSize*memBanks {
		return fmt.Errorf("firmware image %d bytes exceeds %d bytes of DMP memory", len(image), memBankSize*memBanks)
	}

	verify := make([]byte, memChunkSize)
	for offset := 0; offset < len(image); offset += memChunkSize {
		end := offset + memChunkSize
		if end > len(image) {
			end = len(image)
		}
		chunk := image[offset:end]

		bank := byte(offset / memBankSize)
		addr := byte(offset % memBankSize)
		if err := d.setMemoryWindow(bank, addr); err != nil {
			return err
		}
		if err := d.tr.WriteBytes(regMemRW, chunk); err != nil {
			return fmt.Errorf("firmware write at bank %d addr 0x%02X: %w", bank, addr, err)
		}

		if err := d.setMemoryWindow(bank, addr); err != nil {
			return err
		}
		if err := d.tr.ReadBytes(regMemRW, verify[:len(chunk)]); err != nil {
			return fmt.Errorf("firmware verify read at bank %d addr 0x%02X: %w", bank, addr, err)
		}
		if !bytes.Equal(chunk, verify[:len(chunk)]) {
			return fmt.Errorf("firmware verify mismatch at bank %d addr 0x%02X", bank, addr)
		}
	}

	if err := d.tr.WriteWord(regDMPCfg1, dmpProgramStart); err != nil {
		return fmt.Errorf("set DMP program start: %w", err)
	}

	log.Printf("dmp: firmware image loaded (%d bytes, %d chunks)", len(image), (len(image)+memChunkSize-1)/memChunkSize)
	return nil
}

func (d *Device) setMemoryWindow(bank, addr byte) error {
	if err := d.tr.WriteByte(regBankSel, bank); err != nil {
		return fmt.Errorf("select memory bank %d: %w", bank, err)
	}
	if err := d.tr.WriteByte(regMemStartAddr, addr); err != nil {
		return fmt.Errorf("set memory start 0x%02X: %w", addr, err)
	}
	return nil
}

// EnableDMP turns the co-processor and its FIFO routing on (or off) and
// clears any stale ring-buffer content.
func (d *Device) EnableDMP(enable bool) error {
	v := byte(0)
	if enable {
		v = 1
	}
	if err := transport.WriteField(d.tr, fieldFIFOEnable, v); err != nil {
		return fmt.Errorf("set FIFO enable: %w", err)
	}
	if err := transport.WriteField(d.tr, fieldDMPEnable, v); err != nil {
		return fmt.Errorf("set DMP enable: %w", err)
	}
	if err := transport.WriteField(d.tr, fieldDMPInt, v); err != nil {
		return fmt.Errorf("set DMP interrupt enable: %w", err)
	}
	if enable {
		return d.ResetFIFO()
	}
	return nil
}

// ResetFIFO flushes the hardware ring buffer. The reset bit self-clears.
func (d *Device) ResetFIFO() error {
	if err := transport.WriteField(d.tr, fieldFIFOReset, 1); err != nil {
		return fmt.Errorf("FIFO reset: %w", err)
	}
	return nil
}

// ResetDMP restarts the co-processor program, discarding its internal
// fusion state. The reset bit self-clears.
func (d *Device) ResetDMP() error {
	if err := transport.WriteField(d.tr, fieldDMPReset, 1); err != nil {
		return fmt.Errorf("DMP reset: %w", err)
	}
	return nil
}

// FIFOCount reads the current ring-buffer backlog in bytes.
func (d *Device) FIFOCount() (uint16, error) {
	c, err := d.tr.ReadWord(regFIFOCountH)
	if err != nil {
		return 0, fmt.Errorf("FIFO count: %w", err)
	}
	return c, nil
}
