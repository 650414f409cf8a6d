package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"
	"github.com/relabs-tech/motion_computer/internal/config"
	"github.com/relabs-tech/motion_computer/internal/motion"
	"github.com/relabs-tech/motion_computer/internal/orientation"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// latestMotion caches the most recent messages from the producer so HTTP
// and WebSocket consumers never have to wait for the next publish.
type latestMotion struct {
	mu         sync.RWMutex
	pose       orientation.Pose
	havePose   bool
	sample     motion.Sample
	haveSample bool
}

func RunWeb() error {
	cfg := config.Get()
	data := &latestMotion{}

	// 1) Connect to MQTT broker
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("connected to MQTT broker at %s", cfg.MQTTBroker)

	// 2) Subscribe to pose and motion topics, cache the latest of each
	poseToken := client.Subscribe(cfg.TopicPose, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var p orientation.Pose
		if err := json.Unmarshal(msg.Payload(), &p); err != nil {
			log.Printf("MQTT pose unmarshal error: %v", err)
			return
		}
		data.mu.Lock()
		data.pose = p
		data.havePose = true
		data.mu.Unlock()
	})
	poseToken.Wait()
	if poseToken.Error() != nil {
		return poseToken.Error()
	}
	log.Printf("subscribed to MQTT topic %s", cfg.TopicPose)

	motionToken := client.Subscribe(cfg.TopicMotion, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s motion.Sample
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("MQTT motion unmarshal error: %v", err)
			return
		}
		data.mu.Lock()
		data.sample = s
		data.haveSample = true
		data.mu.Unlock()
	})
	motionToken.Wait()
	if motionToken.Error() != nil {
		return motionToken.Error()
	}
	log.Printf("subscribed to MQTT topic %s", cfg.TopicMotion)

	// 3) JSON API endpoints: latest pose and latest full motion record
	http.HandleFunc("/api/orientation", func(w http.ResponseWriter, r *http.Request) {
		data.mu.RLock()
		defer data.mu.RUnlock()

		if !data.havePose {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(data.pose); err != nil {
			log.Printf("json encode error: %v", err)
		}
	})

	http.HandleFunc("/api/motion", func(w http.ResponseWriter, r *http.Request) {
		data.mu.RLock()
		defer data.mu.RUnlock()

		if !data.haveSample {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(data.sample); err != nil {
			log.Printf("json encode error: %v", err)
		}
	})

	// 4) WebSocket stream: pushes each new motion sample as it arrives
	http.HandleFunc("/ws/motion", func(w http.ResponseWriter, r *http.Request) {
		handleMotionWS(w, r, client, cfg)
	})

	// 5) Static files from ./web as the root
	fs := http.FileServer(http.Dir("web"))
	http.Handle("/", fs)

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web server listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}

// handleMotionWS relays motion samples from MQTT to one WebSocket client.
// Each connection gets its own subscription so slow clients only stall
// themselves.
func handleMotionWS(w http.ResponseWriter, r *http.Request, client mqtt.Client, cfg *config.Config) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	samples := make(chan []byte, 8)
	token := client.Subscribe(cfg.TopicMotion, 0, func(_ mqtt.Client, msg mqtt.Message) {
		select {
		case samples <- msg.Payload():
		default: // drop for a slow client, freshness over completeness
		}
	})
	token.Wait()
	if token.Error() != nil {
		log.Printf("web: websocket subscribe error: %v", token.Error())
		return
	}

	// Detect client-side close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case payload := <-samples:
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Printf("web: websocket write error: %v", err)
				return
			}
		case <-done:
			return
		}
	}
}
