package orientation

import (
	"math"
)

// The DMP emits orientation as a quaternion in Q14 fixed point: a raw
// component value of 16384 corresponds to 1.0. The same scale ties the
// gravity projection to the ±2g accelerometer range, where 8192 LSB = 1g.
const (
	QuatScale = 16384.0
	LSBPerG   = 8192.0
)

// Quaternion holds the raw fixed-point components as decoded from a motion
// packet. The math below operates directly on the raw magnitudes.
type Quaternion struct {
	W int32 `json:"w"`
	X int32 `json:"x"`
	Y int32 `json:"y"`
	Z int32 `json:"z"`
}

// Vector3 is a 3-vector. Units depend on the call site: Gravity returns
// unit-scaled components, LinearAccel raw LSB.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Norm returns the Euclidean norm.
func (v Vector3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Euler holds aerospace-sequence Euler angles in radians.
type Euler struct {
	Psi   float64 `json:"psi"`
	Theta float64 `json:"theta"`
	Phi   float64 `json:"phi"`
}

// RPY holds roll/pitch/yaw in radians. Yaw comes from the quaternion,
// roll and pitch from the gravity vector.
type RPY struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// norm returns the components scaled from Q14 down to floats, where a unit
// quaternion has magnitude 1.
func (q Quaternion) norm() (w, x, y, z float64) {
	return float64(q.W) / QuatScale,
		float64(q.X) / QuatScale,
		float64(q.Y) / QuatScale,
		float64(q.Z) / QuatScale
}

// Gravity projects the body-frame gravity axis out of the quaternion.
// For a unit quaternion (raw magnitude 16384) the result has norm ≈1.
func (q Quaternion) Gravity() Vector3 {
	w, x, y, z := q.norm()

	return Vector3{
		X: 2 * (x*z - w*y),
		Y: 2 * (w*x + y*z),
		Z: w*w - x*x - y*y + z*z,
	}
}

// Euler derives aerospace Euler angles directly from the quaternion.
// This derivation is independent of RPY and both are kept as separate
// outputs; consumers may depend on either one's behavior near
// singularities. Near theta = ±90° (gimbal lock) the outputs are large but
// finite and are deliberately not corrected.
func (q Quaternion) Euler() Euler {
	w, x, y, z := q.norm()

	return Euler{
		Psi:   math.Atan2(2*x*y-2*w*z, 2*w*w+2*x*x-1),
		Theta: -math.Asin(2*x*z + 2*w*y),
		Phi:   math.Atan2(2*y*z-2*w*x, 2*w*w+2*z*z-1),
	}
}

// RPY derives roll/pitch/yaw from the quaternion and its gravity vector.
// When gravity.Z is negative the device is upside down and pitch is
// reflected through ±π so it stays continuous through the inversion.
func (q Quaternion) RPY(g Vector3) RPY {
	w, x, y, z := q.norm()

	yaw := math.Atan2(2*x*y-2*w*z, 2*w*w+2*x*x-1)
	pitch := math.Atan2(g.X, math.Sqrt(g.Y*g.Y+g.Z*g.Z))
	roll := math.Atan2(g.Y, g.Z)

	if g.Z < 0 {
		if pitch > 0 {
			pitch = math.Pi - pitch
		} else {
			pitch = -math.Pi - pitch
		}
	}

	return RPY{Roll: roll, Pitch: pitch, Yaw: yaw}
}

// LinearAccel removes the 1g gravity bias from a raw accelerometer reading.
// Both input and output are in raw LSB at the ±2g scale.
func LinearAccel(accel, g Vector3) Vector3 {
	return Vector3{
		X: accel.X - g.X*LSBPerG,
		Y: accel.Y - g.Y*LSBPerG,
		Z: accel.Z - g.Z*LSBPerG,
	}
}
