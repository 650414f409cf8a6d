// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package dmp

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/motion_computer/internal/timeutil"
)

func makePacket(w, x, y, z int32) []byte {
	buf := make([]byte, PacketSize)
	binary.BigEndian.PutUint32(buf[0:], uint32(w))
	binary.BigEndian.PutUint32(buf[4:], uint32(x))
	binary.BigEndian.PutUint32(buf[8:], uint32(y))
	binary.BigEndian.PutUint32(buf[12:], uint32(z))
	for i, v := range []int16{100, -200, 8300, -1, 2, -3} {
		binary.BigEndian.PutUint16(buf[16+2*i:], uint16(v))
	}
	return buf
}

func newTestDevice(f *fakeTransport, clock timeutil.Clock) *Device {
	return New(f, Options{Clock: clock})
}

func TestCurrentPacketEmptyBuffer(t *testing.T) {
	f := newFakeTransport()
	f.counts = []uint16{0}
	dev := newTestDevice(f, timeutil.NewMockClock(time.Now()))

	_, err := dev.CurrentPacket()
	assert.ErrorIs(t, err, ErrNoData)
	assert.Equal(t, 0, f.fifoResets)
}

func TestCurrentPacketSinglePacket(t *testing.T) {
	f := newFakeTransport()
	f.counts = []uint16{PacketSize}
	f.fifoData = makePacket(16384, 0, 0, 0)
	dev := newTestDevice(f, timeutil.NewMockClock(time.Now()))

	pkt, err := dev.CurrentPacket()
	require.NoError(t, err)
	assert.Equal(t, f.fifoData, pkt)
	assert.Equal(t, 0, f.fifoResets)
}

// A packet becoming available on the third poll must need no resets: the
// first two calls report an empty buffer and the third delivers.
func TestCurrentPacketArrivesOnThirdPoll(t *testing.T) {
	f := newFakeTransport()
	f.counts = []uint16{0, 0, PacketSize}
	f.fifoData = makePacket(16384, 0, 0, 0)
	dev := newTestDevice(f, timeutil.NewMockClock(time.Now()))

	_, err := dev.CurrentPacket()
	assert.ErrorIs(t, err, ErrNoData)
	_, err = dev.CurrentPacket()
	assert.ErrorIs(t, err, ErrNoData)

	pkt, err := dev.CurrentPacket()
	require.NoError(t, err)
	assert.Equal(t, f.fifoData, pkt)
	assert.Equal(t, 0, f.fifoResets)
}

// A backlog past the overflow threshold forces exactly one reset, then the
// acquirer waits for a fresh packet.
func TestCurrentPacketOverflowResetsOnce(t *testing.T) {
	f := newFakeTransport()
	f.counts = []uint16{220, 0, 0, PacketSize}
	f.fifoData = makePacket(16384, 0, 0, 0)
	clock := timeutil.NewMockClock(time.Now())
	dev := newTestDevice(f, clock)

	pkt, err := dev.CurrentPacket()
	require.NoError(t, err)
	assert.Equal(t, f.fifoData, pkt)
	assert.Equal(t, 1, f.fifoResets)
	assert.Len(t, clock.Sleeps(), 2) // two empty re-polls before data landed
}

// A moderate backlog is drained down to the freshest packet without any
// reset, in transport-sized chunks.
func TestCurrentPacketDrainsBacklog(t *testing.T) {
	f := newFakeTransport()
	f.counts = []uint16{3 * PacketSize, PacketSize}

	stale := make([]byte, 2*PacketSize)
	for i := range stale {
		stale[i] = 0xEE
	}
	fresh := makePacket(11585, 11585, 0, 0)
	f.fifoData = append(stale, fresh...)

	dev := newTestDevice(f, timeutil.NewMockClock(time.Now()))

	pkt, err := dev.CurrentPacket()
	require.NoError(t, err)
	assert.Equal(t, fresh, pkt)
	assert.Equal(t, 0, f.fifoResets)
}

// A backlog that is not a whole number of packets means lost alignment and
// forces a reset.
func TestCurrentPacketDesyncResets(t *testing.T) {
	f := newFakeTransport()
	f.counts = []uint16{30, PacketSize}
	f.fifoData = makePacket(16384, 0, 0, 0)
	dev := newTestDevice(f, timeutil.NewMockClock(time.Now()))

	pkt, err := dev.CurrentPacket()
	require.NoError(t, err)
	assert.Equal(t, f.fifoData, pkt)
	assert.Equal(t, 1, f.fifoResets)
}

// If the buffer stays empty after a reset the acquisition fails with
// ErrTimeout once the deadline elapses.
func TestCurrentPacketTimeout(t *testing.T) {
	f := newFakeTransport()
	f.counts = []uint16{220, 0} // empty forever after the reset
	clock := timeutil.NewMockClock(time.Now())
	dev := New(f, Options{Clock: clock, Deadline: 5 * time.Millisecond})

	_, err := dev.CurrentPacket()
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, 1, f.fifoResets)
}
