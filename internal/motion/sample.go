package motion

import (
	"github.com/relabs-tech/motion_computer/internal/dmp"
	"github.com/relabs-tech/motion_computer/internal/orientation"
)

// Sample is one fused motion record as published to consumers: the raw
// packet content plus every derived quantity, so subscribers never need to
// redo the fixed-point math.
type Sample struct {
	Quat  orientation.Quaternion `json:"quat"`
	Accel dmp.AxisData           `json:"accel"`
	Gyro  dmp.AxisData           `json:"gyro"`

	Gravity     orientation.Vector3 `json:"gravity"`
	LinearAccel orientation.Vector3 `json:"linear_accel"`
	Euler       orientation.Euler   `json:"euler"`
	Pose        orientation.Pose    `json:"pose"`
}

// Derive expands a decoded packet into the full published record.
func Derive(m dmp.Motion) Sample {
	g := m.Quat.Gravity()
	return Sample{
		Quat:        m.Quat,
		Accel:       m.Accel,
		Gyro:        m.Gyro,
		Gravity:     g,
		LinearAccel: orientation.LinearAccel(m.Accel.Vector(), g),
		Euler:       m.Quat.Euler(),
		Pose:        orientation.PoseFromRPY(m.Quat.RPY(g)),
	}
}
