// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package dmp

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoData means the ring buffer held no complete packet at the time of
// the call. This is the expected idle outcome, not a fault; the caller
// retries at its own cadence.
var ErrNoData = errors.New("no motion data available")

// ErrTimeout means the ring buffer never stabilized on a readable packet
// within the acquisition deadline. Unlike ErrNoData this points at a stuck
// or desynchronized device.
var ErrTimeout = errors.New("motion packet acquisition timed out")

// CurrentPacket returns exactly one 28-byte packet holding the freshest
// available fused sample.
//
// Backpressure is lossy by design: under sustained overload stale packets
// are discarded in favor of freshness and nothing is queued host-side. If
// the backlog exceeds the overflow threshold the ring buffer is reset once
// and re-polled until a fresh packet lands or the deadline elapses. A
// backlog that is not a whole multiple of the packet size means the read
// pointer lost packet alignment, which also forces a reset.
//
// Returns ErrNoData when the buffer is momentarily empty and ErrTimeout
// when the deadline elapses. Calls must not overlap: the drain accounting
// assumes exclusive ownership of the ring buffer.
func (d *Device) CurrentPacket() ([]byte, error) {
	start := d.clock.Now()
	trash := make([]byte, d.tr.MaxBurst())

	for {
		count, err := d.FIFOCount()
		if err != nil {
			return nil, err
		}

		switch {
		case int(count) > d.overflow:
			// Draining this much would take longer than a fresh capture.
			if err := d.ResetFIFO(); err != nil {
				return nil, err
			}
			if count, err = d.awaitData(start); err != nil {
				return nil, err
			}

		case count > 0 && count%PacketSize != 0:
			// Partial packet in flight or lost alignment; a reset is the
			// only way back to a packet boundary.
			if err := d.ResetFIFO(); err != nil {
				return nil, err
			}
			if count, err = d.awaitData(start); err != nil {
				return nil, err
			}

		case count > PacketSize:
			// Keep only the freshest packet: discard the backlog ahead of
			// it in transport-sized chunks. Each pass removes a positive
			// number of bytes, so this terminates.
			for count > PacketSize {
				remove := int(count) - PacketSize
				for remove > 0 {
					n := remove
					if n > len(trash) {
						n = len(trash)
					}
					if err := d.tr.ReadBytes(regFIFORW, trash[:n]); err != nil {
						return nil, fmt.Errorf("FIFO drain: %w", err)
					}
					remove -= n
				}
				if count, err = d.FIFOCount(); err != nil {
					return nil, err
				}
			}
		}

		if count == 0 {
			return nil, ErrNoData
		}
		if d.clock.Since(start) > d.deadline {
			return nil, ErrTimeout
		}
		if count == PacketSize {
			break
		}
	}

	packet := make([]byte, PacketSize)
	if err := d.tr.ReadBytes(regFIFORW, packet); err != nil {
		return nil, fmt.Errorf("FIFO packet read: %w", err)
	}
	return packet, nil
}

// awaitData re-polls the backlog count after a reset until data arrives or
// the deadline elapses.
func (d *Device) awaitData(start time.Time) (uint16, error) {
	for {
		count, err := d.FIFOCount()
		if err != nil {
			return 0, err
		}
		if count != 0 {
			return count, nil
		}
		if d.clock.Since(start) > d.deadline {
			return 0, ErrTimeout
		}
		d.clock.Sleep(fifoPollInterval)
	}
}
