// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/relabs-tech/motion_computer/internal/config"
	"github.com/relabs-tech/motion_computer/internal/dmp"
	"github.com/relabs-tech/motion_computer/internal/transport"
)

// RegisterDebugServer exposes raw register access over a WebSocket for the
// browser-based debug console. It owns its transport directly; running it
// alongside the producer is not supported since both would fight over the
// same device.
type RegisterDebugServer struct {
	tr transport.Transport
}

// NewRegisterDebugServer binds the debug console to an open transport.
func NewRegisterDebugServer(tr transport.Transport) *RegisterDebugServer {
	return &RegisterDebugServer{tr: tr}
}

// registerDebugSession holds WebSocket connection state for one client.
type registerDebugSession struct {
	srv  *RegisterDebugServer
	conn *websocket.Conn
}

// RegisterResponse is the single response envelope for all message types.
type RegisterResponse struct {
	Type        string             `json:"type"` // "register_data", "register_map", "status", "error"
	Address     string             `json:"addr,omitempty"`
	Value       string             `json:"value,omitempty"`
	Registers   map[string]string  `json:"registers,omitempty"` // for bulk read
	Timestamp   string             `json:"timestamp,omitempty"`
	Message     string             `json:"message,omitempty"`
	Status      string             `json:"status,omitempty"`
	RegisterMap []dmp.RegisterInfo `json:"register_map,omitempty"`
}

// RegisterConfigFile is the JSON structure for exported register dumps.
type RegisterConfigFile struct {
	Version   int               `json:"version"`
	Timestamp string            `json:"timestamp"`
	Registers map[string]string `json:"registers"` // hex address -> hex value
}

// HandleWS handles the WebSocket connection for register debugging.
func (srv *RegisterDebugServer) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("register_debug: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	session := &registerDebugSession{srv: srv, conn: conn}

	// Send register map on connection
	if err := session.sendRegisterMap(); err != nil {
		log.Printf("register_debug: error sending register map: %v", err)
		return
	}

	// Message loop
	for {
		var rawMsg map[string]interface{}
		err := conn.ReadJSON(&rawMsg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("register_debug: websocket error: %v", err)
			}
			break
		}

		action, ok := rawMsg["action"].(string)
		if !ok {
			session.sendError("missing or invalid action field")
			continue
		}

		switch action {
		case "get_map":
			session.sendRegisterMap()
		case "read":
			session.handleRead(rawMsg)
		case "read_all":
			session.handleReadAll()
		case "write":
			session.handleWrite(rawMsg)
		case "export_config":
			session.handleExportConfig()
		default:
			session.sendError(fmt.Sprintf("unknown action: %s", action))
		}
	}
}

func (s *registerDebugSession) handleRead(rawMsg map[string]interface{}) {
	addr, _ := rawMsg["addr"].(string)
	if addr == "" {
		s.sendError("missing addr field")
		return
	}

	var addrByte byte
	if _, err := fmt.Sscanf(addr, "0x%X", &addrByte); err != nil {
		s.sendError(fmt.Sprintf("invalid address format: %s", addr))
		return
	}

	value, err := s.srv.tr.ReadByte(addrByte)
	if err != nil {
		s.sendError(fmt.Sprintf("read error: %v", err))
		return
	}

	resp := RegisterResponse{
		Type:      "register_data",
		Address:   addr,
		Value:     fmt.Sprintf("0x%02X", value),
		Timestamp: time.Now().Format(time.RFC3339),
	}
	s.conn.WriteJSON(resp)
}

func (s *registerDebugSession) handleReadAll() {
	regMap, err := s.srv.readAll()
	if err != nil {
		s.sendError(fmt.Sprintf("read all error: %v", err))
		return
	}

	resp := RegisterResponse{
		Type:      "register_data",
		Registers: regMap,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	s.conn.WriteJSON(resp)
}

func (s *registerDebugSession) handleWrite(rawMsg map[string]interface{}) {
	addr, _ := rawMsg["addr"].(string)
	valueStr, _ := rawMsg["value"].(string)

	if addr == "" || valueStr == "" {
		s.sendError("missing addr or value field")
		return
	}

	var addrByte, valueByte byte
	if _, err := fmt.Sscanf(addr, "0x%X", &addrByte); err != nil {
		s.sendError(fmt.Sprintf("invalid address format: %s", addr))
		return
	}
	if _, err := fmt.Sscanf(valueStr, "0x%X", &valueByte); err != nil {
		s.sendError(fmt.Sprintf("invalid value format: %s", valueStr))
		return
	}

	if !isRegisterWritable(addrByte) {
		s.sendError(fmt.Sprintf("register 0x%02X is not writable", addrByte))
		return
	}

	if err := s.srv.tr.WriteByte(addrByte, valueByte); err != nil {
		s.sendError(fmt.Sprintf("write error: %v", err))
		return
	}

	resp := RegisterResponse{
		Type:      "register_data",
		Address:   addr,
		Value:     valueStr,
		Timestamp: time.Now().Format(time.RFC3339),
		Message:   "write successful",
	}
	s.conn.WriteJSON(resp)
}

func (s *registerDebugSession) handleExportConfig() {
	regMap, err := s.srv.readAll()
	if err != nil {
		s.sendError(fmt.Sprintf("export error: %v", err))
		return
	}

	configFile := RegisterConfigFile{
		Version:   1,
		Timestamp: time.Now().Format(time.RFC3339),
		Registers: regMap,
	}

	configJSON, _ := json.Marshal(configFile)
	rawResp := map[string]interface{}{
		"type":     "export_config",
		"message":  "config exported",
		"config":   string(configJSON),
		"filename": fmt.Sprintf("mpu6050_%s_registers.json", time.Now().Format("20060102_150405")),
	}
	s.conn.WriteJSON(rawResp)
}

func (s *registerDebugSession) sendRegisterMap() error {
	resp := RegisterResponse{
		Type:        "register_map",
		RegisterMap: dmp.RegisterMap(),
	}
	return s.conn.WriteJSON(resp)
}

func (s *registerDebugSession) sendError(message string) {
	resp := RegisterResponse{
		Type:    "error",
		Message: message,
	}
	s.conn.WriteJSON(resp)
}

// readAll dumps every register the map knows about as hex string pairs.
func (srv *RegisterDebugServer) readAll() (map[string]string, error) {
	regMap := make(map[string]string)
	for _, info := range dmp.RegisterMap() {
		var addrByte byte
		if _, err := fmt.Sscanf(info.Address, "0x%X", &addrByte); err != nil {
			continue
		}
		value, err := srv.tr.ReadByte(addrByte)
		if err != nil {
			return nil, err
		}
		regMap[info.Address] = fmt.Sprintf("0x%02X", value)
	}
	return regMap, nil
}

// isRegisterWritable consults the register map's access field.
func isRegisterWritable(addr byte) bool {
	for _, info := range dmp.RegisterMap() {
		var addrByte byte
		if _, err := fmt.Sscanf(info.Address, "0x%X", &addrByte); err != nil {
			continue
		}
		if addrByte == addr {
			return info.Access == "RW" || info.Access == "W"
		}
	}
	return false
}

// RunRegisterDebug serves the browser register console. It opens its own
// transport and does not bring up the DMP, so the device stays in whatever
// state the operator left it.
func RunRegisterDebug() error {
	cfg := config.Get()

	tr, err := openTransport(cfg)
	if err != nil {
		return err
	}

	srv := NewRegisterDebugServer(tr)
	http.HandleFunc("/ws", srv.HandleWS)
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "web/register_debug.html")
	})

	addr := ":8081"
	log.Printf("register debug tool listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}
