// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"log"
	"time"

	"github.com/relabs-tech/motion_computer/internal/config"
	"github.com/relabs-tech/motion_computer/internal/dmp"
	"github.com/relabs-tech/motion_computer/internal/transport"
)

// openTransport opens the configured I2C bus and binds it to the IMU
// address.
func openTransport(cfg *config.Config) (transport.Transport, error) {
	tr, err := transport.NewI2C(cfg.IMUI2CBus, cfg.IMUI2CAddr)
	if err != nil {
		return nil, fmt.Errorf("open IMU transport: %w", err)
	}
	return tr, nil
}

// openDevice brings up a full DMP session: identity probe, register init,
// firmware upload and co-processor enable. On return the device is streaming
// packets into its ring buffer.
func openDevice(cfg *config.Config) (*dmp.Device, error) {
	tr, err := openTransport(cfg)
	if err != nil {
		return nil, err
	}

	dev := dmp.New(tr, dmp.Options{
		OverflowThreshold: cfg.FIFOOverflowThreshold,
		Deadline:          time.Duration(cfg.FIFODeadline) * time.Millisecond,
	})

	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("device init: %w", err)
	}

	image, err := dmp.ReadFirmwareImage(cfg.DMPFirmwarePath)
	if err != nil {
		return nil, err
	}
	if err := dev.LoadFirmware(image); err != nil {
		return nil, fmt.Errorf("firmware upload: %w", err)
	}

	if err := dev.EnableDMP(true); err != nil {
		return nil, fmt.Errorf("enable DMP: %w", err)
	}

	log.Println("dmp: session up, packets streaming")
	return dev, nil
}
