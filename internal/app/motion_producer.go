package app

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/relabs-tech/motion_computer/internal/config"
	"github.com/relabs-tech/motion_computer/internal/dmp"
	"github.com/relabs-tech/motion_computer/internal/motion"
)

// RunMotionProducer is the main producer: it owns the DMP session and
// publishes fused motion data to MQTT at the configured rate.
func RunMotionProducer() error {
	log.Println("starting motion-computer producer")

	cfg := config.Get()

	dev, err := openDevice(cfg)
	if err != nil {
		return err
	}
	src := motion.NewSource(dev)

	// --- connect to MQTT ---
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProducer)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)

	log.Println("connected to MQTT, starting publish loop")

	logEvery := time.Duration(cfg.ConsoleLogInterval) * time.Millisecond
	lastLog := time.Time{}

	ticker := time.NewTicker(time.Duration(cfg.SampleInterval) * time.Millisecond)
	defer ticker.Stop()

	for t := range ticker.C {
		sample, err := src.Next()
		if err != nil {
			// An empty ring buffer between ticks is normal; anything else
			// is worth a line in the log.
			if errors.Is(err, dmp.ErrNoData) {
				continue
			}
			if errors.Is(err, dmp.ErrTimeout) {
				log.Printf("packet acquisition timed out, resyncing")
				continue
			}
			log.Printf("sample read error: %v", err)
			continue
		}

		// 1) Full motion record
		if payload, err := json.Marshal(sample); err != nil {
			log.Printf("json marshal error (motion): %v", err)
		} else if token := client.Publish(cfg.TopicMotion, 0, true, payload); token.Wait() && token.Error() != nil {
			log.Printf("MQTT publish error (motion): %v", token.Error())
			continue
		}

		// 2) Pose for lightweight consumers (web, display)
		if payload, err := json.Marshal(sample.Pose); err != nil {
			log.Printf("json marshal error (pose): %v", err)
		} else if token := client.Publish(cfg.TopicPose, 0, true, payload); token.Wait() && token.Error() != nil {
			log.Printf("MQTT publish error (pose): %v", token.Error())
			continue
		}

		// 3) Gravity-compensated acceleration
		if payload, err := json.Marshal(sample.LinearAccel); err != nil {
			log.Printf("json marshal error (linear accel): %v", err)
		} else if token := client.Publish(cfg.TopicLinearAccel, 0, true, payload); token.Wait() && token.Error() != nil {
			log.Printf("MQTT publish error (linear accel): %v", token.Error())
			continue
		}

		if t.Sub(lastLog) >= logEvery {
			lastLog = t
			log.Printf("%s tick: pose R=%.2f P=%.2f Y=%.2f | accel ax=%d ay=%d az=%d | gyro gx=%d gy=%d gz=%d | lin |a|=%.0f",
				t.Format(time.RFC3339),
				sample.Pose.Roll, sample.Pose.Pitch, sample.Pose.Yaw,
				sample.Accel.X, sample.Accel.Y, sample.Accel.Z,
				sample.Gyro.X, sample.Gyro.Y, sample.Gyro.Z,
				sample.LinearAccel.Norm(),
			)
		}
	}
	return nil
}
