// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/relabs-tech/motion_computer/internal/config"
	"github.com/relabs-tech/motion_computer/internal/dmp"
)

// CalibrationResult is the JSON report written after a calibration run.
// Offsets are raw register values as installed in the offset trim registers.
type CalibrationResult struct {
	Version   int       `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Loops     int       `json:"loops"`

	AccelOffsets dmp.AxisData `json:"accel_offsets"`
	GyroOffsets  dmp.AxisData `json:"gyro_offsets"`
}

// CalibrationSession drives one WebSocket-guided calibration: the browser
// steps through the accel and gyro phases while the device stays still.
type CalibrationSession struct {
	dev          *dmp.Device
	conn         *websocket.Conn
	mu           sync.Mutex
	currentPhase string
	loops        int
	results      CalibrationResult
}

// WSMessage is a command from the browser.
type WSMessage struct {
	Action string `json:"action"` // init, next, cancel
	Loops  int    `json:"loops,omitempty"`
}

// WSResponse is a progress or result message to the browser.
type WSResponse struct {
	Type    string      `json:"type"` // phase, complete, error, action
	Phase   string      `json:"phase,omitempty"`
	Results interface{} `json:"results,omitempty"`
	Message string      `json:"message,omitempty"`
}

// NewCalibrationHandler returns an HTTP handler running calibrations against
// the given device session. Calibration owns the device while it runs;
// packet acquisition must be stopped first.
func NewCalibrationHandler(dev *dmp.Device) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("calibration: websocket upgrade error: %v", err)
			return
		}
		defer conn.Close()

		session := &CalibrationSession{
			dev:   dev,
			conn:  conn,
			loops: config.Get().CalibrationLoops,
			results: CalibrationResult{
				Version:   1,
				Timestamp: time.Now(),
			},
		}

		for {
			var msg WSMessage
			if err := conn.ReadJSON(&msg); err != nil {
				log.Printf("calibration: websocket read error: %v", err)
				break
			}

			switch msg.Action {
			case "init":
				if msg.Loops > 0 {
					session.loops = msg.Loops
				}
				session.results.Loops = session.loops
				log.Printf("calibration: initialized, %d loops", session.loops)

			case "next":
				session.mu.Lock()
				err := session.runNextPhase()
				session.mu.Unlock()
				if err != nil {
					session.sendError(err.Error())
				}

			case "cancel":
				log.Printf("calibration: cancelled by user")
				return
			}
		}
	}
}

func (s *CalibrationSession) runNextPhase() error {
	switch s.currentPhase {
	case "":
		s.currentPhase = "accel"
		return s.runAccelPhase()
	case "accel":
		s.currentPhase = "gyro"
		return s.runGyroPhase()
	case "gyro":
		return s.complete()
	}
	return nil
}

func (s *CalibrationSession) runAccelPhase() error {
	s.sendPhase("accel")

	offsets, err := s.dev.CalibrateAccel(s.loops)
	if err != nil {
		return err
	}
	s.results.AccelOffsets = offsets

	log.Printf("calibration: accel offsets x=%d y=%d z=%d", offsets.X, offsets.Y, offsets.Z)
	s.sendActionReady()
	return nil
}

func (s *CalibrationSession) runGyroPhase() error {
	s.sendPhase("gyro")

	offsets, err := s.dev.CalibrateGyro(s.loops)
	if err != nil {
		return err
	}
	s.results.GyroOffsets = offsets

	log.Printf("calibration: gyro offsets x=%d y=%d z=%d", offsets.X, offsets.Y, offsets.Z)
	s.sendActionReady()
	return nil
}

func (s *CalibrationSession) complete() error {
	filename, err := WriteCalibrationReport(s.results)
	if err != nil {
		return err
	}

	s.conn.WriteJSON(WSResponse{
		Type:    "complete",
		Results: map[string]interface{}{"filename": filename},
	})
	return nil
}

// WriteCalibrationReport saves a calibration result as JSON in the current
// directory and returns the file name.
func WriteCalibrationReport(result CalibrationResult) (string, error) {
	filename := fmt.Sprintf("%d_motion_calibration.json", time.Now().Unix())

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal calibration results: %w", err)
	}

	path := filepath.Join(cwd, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write calibration file: %w", err)
	}

	log.Printf("calibration: saved results to %s", path)
	return filename, nil
}

func (s *CalibrationSession) sendPhase(phase string) {
	s.conn.WriteJSON(WSResponse{
		Type:  "phase",
		Phase: phase,
	})
}

func (s *CalibrationSession) sendActionReady() {
	s.conn.WriteJSON(WSResponse{
		Type:    "action",
		Message: "ready",
	})
}

func (s *CalibrationSession) sendError(message string) {
	s.conn.WriteJSON(WSResponse{
		Type:    "error",
		Message: message,
	})
}
