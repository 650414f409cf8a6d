package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/motion_computer/internal/config"
	"github.com/relabs-tech/motion_computer/internal/motion"
	"github.com/relabs-tech/motion_computer/internal/orientation"
)

func RunConsoleMQTT() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	// Subscribe to orientation
	poseToken := client.Subscribe(cfg.TopicPose, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var p orientation.Pose
		if err := json.Unmarshal(msg.Payload(), &p); err != nil {
			log.Printf("console: pose unmarshal error: %v", err)
			return
		}

		fmt.Printf(
			"[POSE]  ROLL=%6.2f  PITCH=%6.2f  YAW=%6.2f\n",
			p.Roll, p.Pitch, p.Yaw,
		)
	})
	poseToken.Wait()
	if poseToken.Error() != nil {
		return poseToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicPose)

	// Subscribe to the full motion record
	motionToken := client.Subscribe(cfg.TopicMotion, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s motion.Sample
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("console: motion unmarshal error: %v", err)
			return
		}

		fmt.Printf(
			"[MOTN]  q=(%6d %6d %6d %6d)  ax=%6d ay=%6d az=%6d  gx=%6d gy=%6d gz=%6d\n",
			s.Quat.W, s.Quat.X, s.Quat.Y, s.Quat.Z,
			s.Accel.X, s.Accel.Y, s.Accel.Z,
			s.Gyro.X, s.Gyro.Y, s.Gyro.Z,
		)
	})
	motionToken.Wait()
	if motionToken.Error() != nil {
		return motionToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicMotion)

	// Subscribe to gravity-compensated acceleration
	linToken := client.Subscribe(cfg.TopicLinearAccel, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var v orientation.Vector3
		if err := json.Unmarshal(msg.Payload(), &v); err != nil {
			log.Printf("console: linear accel unmarshal error: %v", err)
			return
		}

		fmt.Printf(
			"[LINA]  x=%8.1f  y=%8.1f  z=%8.1f  |a|=%8.1f\n",
			v.X, v.Y, v.Z, v.Norm(),
		)
	})
	linToken.Wait()
	if linToken.Error() != nil {
		return linToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicLinearAccel)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
