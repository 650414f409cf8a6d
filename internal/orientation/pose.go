package orientation

import "math"

// Pose is the canonical representation of orientation for consumers
// (MQTT, web, display). Angles are in degrees.
type Pose struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// Source is anything that can provide poses over time: the DMP-backed
// source, the mock source, maybe a replay source from file later.
type Source interface {
	Next() (Pose, error)
}

// PoseFromRPY converts radians to the degree-based wire representation.
func PoseFromRPY(r RPY) Pose {
	const degPerRad = 180.0 / math.Pi
	return Pose{
		Roll:  r.Roll * degPerRad,
		Pitch: r.Pitch * degPerRad,
		Yaw:   r.Yaw * degPerRad,
	}
}
