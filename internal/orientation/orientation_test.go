package orientation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Level identity orientation: gravity straight down the body Z axis, all
// angles zero.
func TestGravityIdentity(t *testing.T) {
	q := Quaternion{W: 16384, X: 0, Y: 0, Z: 0}
	g := q.Gravity()

	assert.InDelta(t, 0, g.X, 1e-9)
	assert.InDelta(t, 0, g.Y, 1e-9)
	assert.InDelta(t, 1, g.Z, 1e-9)

	r := q.RPY(g)
	assert.InDelta(t, 0, r.Roll, 1e-9)
	assert.InDelta(t, 0, r.Pitch, 1e-9)
	assert.InDelta(t, 0, r.Yaw, 1e-9)

	e := q.Euler()
	assert.InDelta(t, 0, e.Psi, 1e-9)
	assert.InDelta(t, 0, e.Theta, 1e-9)
	assert.InDelta(t, 0, e.Phi, 1e-9)
}

// Any unit quaternion projects to a unit-norm gravity vector.
func TestGravityUnitNorm(t *testing.T) {
	quats := []Quaternion{
		{W: 16384, X: 0, Y: 0, Z: 0},
		{W: 11585, X: 11585, Y: 0, Z: 0},  // 90° about X
		{W: 11585, X: 0, Y: 11585, Z: 0},  // 90° about Y
		{W: 11585, X: 0, Y: 0, Z: 11585},  // 90° about Z
		{W: 15137, X: 6270, Y: 0, Z: 0},   // 45° about X
		{W: 8192, X: 8192, Y: 8192, Z: 8192},
	}

	for _, q := range quats {
		assert.InDelta(t, 1.0, q.Gravity().Norm(), 0.01, "quat %+v", q)
	}
}

// 90° roll about X puts gravity on the body Y axis.
func TestGravityRoll90(t *testing.T) {
	q := Quaternion{W: 11585, X: 11585, Y: 0, Z: 0}
	g := q.Gravity()

	assert.InDelta(t, 0, g.X, 0.01)
	assert.InDelta(t, 1, g.Y, 0.01)
	assert.InDelta(t, 0, g.Z, 0.01)

	r := q.RPY(g)
	assert.InDelta(t, math.Pi/2, r.Roll, 0.01)
	assert.InDelta(t, 0, r.Pitch, 0.01)
}

// Yaw about Z leaves gravity on Z and shows up only in the yaw output.
func TestRPYYawOnly(t *testing.T) {
	q := Quaternion{W: 11585, X: 0, Y: 0, Z: 11585}
	g := q.Gravity()
	r := q.RPY(g)

	assert.InDelta(t, 0, r.Roll, 0.01)
	assert.InDelta(t, 0, r.Pitch, 0.01)
	assert.InDelta(t, math.Pi/2, math.Abs(r.Yaw), 0.01)
}

// Upside down the pitch is reflected through ±π instead of folding back
// toward zero.
func TestRPYInvertedPitchReflection(t *testing.T) {
	// 180° roll about X: gravity points along -Z in the body frame.
	q := Quaternion{W: 0, X: 16384, Y: 0, Z: 0}
	g := q.Gravity()
	assert.InDelta(t, -1, g.Z, 0.01)

	r := q.RPY(g)
	assert.InDelta(t, math.Pi, math.Abs(r.Roll), 0.01)
	// With no forward tilt the reflected pitch lands on ±π, not 0.
	assert.InDelta(t, math.Pi, math.Abs(r.Pitch), 0.01)
}

// At rest the raw accelerometer reads 1g on Z; subtracting the projected
// gravity leaves no linear acceleration.
func TestLinearAccelAtRest(t *testing.T) {
	q := Quaternion{W: 16384, X: 0, Y: 0, Z: 0}
	g := q.Gravity()

	lin := LinearAccel(Vector3{X: 0, Y: 0, Z: LSBPerG}, g)
	assert.InDelta(t, 0, lin.X, 1e-9)
	assert.InDelta(t, 0, lin.Y, 1e-9)
	assert.InDelta(t, 0, lin.Z, 1e-9)
}

// A zero gravity vector must pass the reading through untouched.
func TestLinearAccelZeroGravityIdentity(t *testing.T) {
	a := Vector3{X: 42, Y: -17, Z: 9000}
	assert.Equal(t, a, LinearAccel(a, Vector3{}))
}

func TestLinearAccelRemovesBias(t *testing.T) {
	q := Quaternion{W: 16384, X: 0, Y: 0, Z: 0}
	g := q.Gravity()

	lin := LinearAccel(Vector3{X: 500, Y: -250, Z: LSBPerG + 100}, g)
	assert.InDelta(t, 500, lin.X, 1e-9)
	assert.InDelta(t, -250, lin.Y, 1e-9)
	assert.InDelta(t, 100, lin.Z, 1e-9)
}

func TestPoseFromRPY(t *testing.T) {
	p := PoseFromRPY(RPY{Roll: math.Pi / 2, Pitch: -math.Pi / 4, Yaw: math.Pi})
	assert.InDelta(t, 90, p.Roll, 1e-9)
	assert.InDelta(t, -45, p.Pitch, 1e-9)
	assert.InDelta(t, 180, p.Yaw, 1e-9)
}
