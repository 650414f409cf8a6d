// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// ./cmd/calibration/main.go
//
// Closed-loop offset calibration for the MPU-6050 in this project. Place
// the device flat and still; the tool nulls the accelerometer offsets
// (Z against +1g) and the gyroscope offsets by driving the hardware trim
// registers, then writes a JSON report with the installed offsets.
//
// Run:
//
//	go run ./cmd/calibration
//
// With -serve the tool instead exposes the browser-guided flow on :8082
// (WebSocket at /ws/calibration) and does not calibrate on its own.
//
// Notes / assumptions:
//   - Offsets are stored in RAW register units. They persist only until
//     the next device power cycle; rerun after power loss.
//   - More loops give a tighter null but take longer. 1-5 are accepted.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/relabs-tech/motion_computer/internal/app"
	"github.com/relabs-tech/motion_computer/internal/config"
	"github.com/relabs-tech/motion_computer/internal/dmp"
	"github.com/relabs-tech/motion_computer/internal/transport"
)

func main() {
	configPath := flag.String("config", "./motion_config.txt", "path to configuration file")
	loops := flag.Int("loops", 0, "calibration loops, 1-5 (0 uses the configured value)")
	yes := flag.Bool("y", false, "skip the confirmation prompt")
	serve := flag.Bool("serve", false, "serve the browser-guided calibration flow instead of running directly")
	flag.Parse()

	log.Println("starting motion-computer offset calibration")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()

	n := cfg.CalibrationLoops
	if *loops > 0 {
		n = *loops
	}
	if n < 1 {
		n = 1
	}

	if !*yes && !*serve {
		fmt.Println("Place the device flat and still. Calibration overwrites the")
		fmt.Println("hardware offset registers. Continue? [y/N]")
		reader := bufio.NewReader(os.Stdin)
		line, _ := reader.ReadString('\n')
		if len(line) == 0 || (line[0] != 'y' && line[0] != 'Y') {
			log.Println("calibration aborted")
			return
		}
	}

	tr, err := transport.NewI2C(cfg.IMUI2CBus, cfg.IMUI2CAddr)
	if err != nil {
		log.Fatalf("failed to open IMU transport: %v", err)
	}

	dev := dmp.New(tr, dmp.Options{
		OverflowThreshold: cfg.FIFOOverflowThreshold,
		Deadline:          time.Duration(cfg.FIFODeadline) * time.Millisecond,
	})
	if err := dev.Init(); err != nil {
		log.Fatalf("device init failed: %v", err)
	}

	if *serve {
		http.Handle("/ws/calibration", app.NewCalibrationHandler(dev))
		log.Println("guided calibration listening on :8082")
		log.Fatal(http.ListenAndServe(":8082", nil))
	}

	result := app.CalibrationResult{
		Version:   1,
		Timestamp: time.Now(),
		Loops:     n,
	}

	log.Printf("calibrating accelerometer offsets (%d loops)...", n)
	result.AccelOffsets, err = dev.CalibrateAccel(n)
	if err != nil {
		log.Fatalf("accel calibration failed: %v", err)
	}
	log.Printf("accel offsets: x=%d y=%d z=%d",
		result.AccelOffsets.X, result.AccelOffsets.Y, result.AccelOffsets.Z)

	log.Printf("calibrating gyroscope offsets (%d loops)...", n)
	result.GyroOffsets, err = dev.CalibrateGyro(n)
	if err != nil {
		log.Fatalf("gyro calibration failed: %v", err)
	}
	log.Printf("gyro offsets: x=%d y=%d z=%d",
		result.GyroOffsets.X, result.GyroOffsets.Y, result.GyroOffsets.Z)

	filename, err := app.WriteCalibrationReport(result)
	if err != nil {
		log.Fatalf("failed to write report: %v", err)
	}
	log.Printf("calibration complete, report written to %s", filename)
}
