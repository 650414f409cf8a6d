// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package dmp

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/motion_computer/internal/timeutil"
)

func TestInitConfiguresDevice(t *testing.T) {
	f := newFakeTransport()
	clock := timeutil.NewMockClock(time.Now())
	dev := newTestDevice(f, clock)

	require.NoError(t, dev.Init())

	assert.Equal(t, byte(clockPLLGyroZ), f.regs[regPwrMgmt1])
	assert.Equal(t, byte(0x03), f.regs[regConfig])
	assert.Equal(t, byte(0x04), f.regs[regSmplrtDiv])
	assert.Equal(t, byte(3<<3), f.regs[regGyroConfig])
	assert.Equal(t, byte(0x00), f.regs[regAccelConfig])

	// The post-reset settle delay must actually be observed.
	assert.Contains(t, clock.Sleeps(), 100*time.Millisecond)
}

func TestInitRejectsWrongDeviceID(t *testing.T) {
	f := newFakeTransport()
	f.regs[regWhoAmI] = 0x71
	dev := newTestDevice(f, timeutil.NewMockClock(time.Now()))

	err := dev.Init()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected device ID")
}

func TestLoadFirmwareWritesAndStartsProgram(t *testing.T) {
	f := newFakeTransport()
	dev := newTestDevice(f, timeutil.NewMockClock(time.Now()))

	image := make([]byte, 300) // spans two banks, ends mid-chunk
	for i := range image {
		image[i] = byte(i)
	}

	require.NoError(t, dev.LoadFirmware(image))

	// Program start address installed after a verified upload.
	assert.Equal(t, byte(0x04), f.regs[regDMPCfg1])
	assert.Equal(t, byte(0x00), f.regs[regDMPCfg2])
	// Last chunk selected bank 1 (offset 288 / 256).
	assert.Equal(t, byte(1), f.regs[regBankSel])
}

func TestLoadFirmwareVerifyMismatch(t *testing.T) {
	f := newFakeTransport()
	f.corruptMem = true
	dev := newTestDevice(f, timeutil.NewMockClock(time.Now()))

	err := dev.LoadFirmware([]byte{1, 2, 3, 4})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "verify mismatch")
}

func TestLoadFirmwareRejectsOversizedImage(t *testing.T) {
	dev := newTestDevice(newFakeTransport(), timeutil.NewMockClock(time.Now()))

	err := dev.LoadFirmware(make([]byte, memBankSize*memBanks+1))
	require.Error(t, err)

	err = dev.LoadFirmware(nil)
	assert.Error(t, err)
}

func TestEnableDMPFlushesFIFO(t *testing.T) {
	f := newFakeTransport()
	f.counts = []uint16{0}
	dev := newTestDevice(f, timeutil.NewMockClock(time.Now()))

	require.NoError(t, dev.EnableDMP(true))

	assert.Equal(t, byte(0xC0), f.regs[regUserCtrl]&0xC0) // DMP_EN | FIFO_EN
	assert.Equal(t, byte(0x02), f.regs[regIntEnable]&0x02)
	assert.Equal(t, 1, f.fifoResets)
}

func TestFIFOCount(t *testing.T) {
	f := newFakeTransport()
	f.counts = []uint16{3 * PacketSize}
	dev := newTestDevice(f, timeutil.NewMockClock(time.Now()))

	c, err := dev.FIFOCount()
	require.NoError(t, err)
	assert.Equal(t, uint16(84), c)
}

func TestReadFirmwareImage(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "dmp_firmware.bin")
	content := make([]byte, 1929)
	require.NoError(t, os.WriteFile(path, content, 0644))

	image, err := ReadFirmwareImage(path)
	require.NoError(t, err)
	assert.Len(t, image, 1929)

	empty := filepath.Join(dir, "empty.bin")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	_, err = ReadFirmwareImage(empty)
	assert.Error(t, err)

	_, err = ReadFirmwareImage(filepath.Join(dir, "missing.bin"))
	assert.Error(t, err)

	big := filepath.Join(dir, "big.bin")
	require.NoError(t, os.WriteFile(big, make([]byte, memBankSize*memBanks+1), 0644))
	_, err = ReadFirmwareImage(big)
	assert.Error(t, err)
}
