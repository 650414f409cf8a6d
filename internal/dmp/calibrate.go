package dmp

import (
	"fmt"
	"math"
	"time"
)

// Closed-loop offset calibration. The device's raw output at rest is the
// negated bias error; a small PI controller drives the hardware offset trim
// registers until the readings center on zero (Z accel on +1g). The loop
// always runs to its fixed budget and never fails for lack of convergence;
// convergence quality is a property of the returned offsets.

const (
	calibInnerSamples = 100
	// Total absolute error still this large after a full inner pass means
	// the loop is diverging; the pass restarts instead of advancing.
	calibDivergedSum = 1000
	// Convergence: the scaled error sum must drop below this...
	calibErrTolerance = 5
	// ...for at least this many samples, after a short warm-up,
	calibSettleCount  = 10
	calibWarmupCount  = 10
	// with the unscaled sum below this bound.
	calibSettledSum = 100

	// One register sample is produced roughly every millisecond; the
	// 0.001 integral step and the write pacing both assume that rate.
	calibSampleStep     = 0.001
	calibSampleInterval = time.Millisecond

	// 1g on the raw accelerometer scale, subtracted from the vertical
	// axis before it is treated as an error signal.
	accelGravityLSB = 16384

	// Outer passes progressively de-tune the gains to avoid overshoot as
	// the bias approaches zero.
	calibGainDecay = 0.75
)

// axisState is the per-axis calibration record, created fresh for every
// run and discarded at the end.
type axisState struct {
	integral float64
	// The accelerometer offset register's bit 0 carries an unrelated
	// temperature-compensation flag: captured once up front, re-inserted
	// on every write.
	bitZero   int16
	converged int
	written   int16
}

// offsetGroup describes one calibratable register group. The accelerometer
// and gyroscope differ in data/offset register layout, offset register
// scaling (a bit-width asymmetry: 8 vs 4) and default gains.
type offsetGroup struct {
	name       string
	dataReg    byte    // first axis data register, axes at stride 2
	offsetRegs [3]byte // per-axis offset trim registers
	scale      float64
	keepBit0   bool
	gravityZ   int16   // subtracted from the Z reading before use
	sumScale   float64 // applied to the error sum in the convergence test
	kP, kI     float64
}

var accelGroup = offsetGroup{
	name:       "accel",
	dataReg:    regAccelXOutH,
	offsetRegs: [3]byte{regXAOffsetH, regYAOffsetH, regZAOffsetH},
	scale:      8,
	keepBit0:   true,
	gravityZ:   accelGravityLSB,
	sumScale:   0.05,
	kP:         0.3,
	kI:         20,
}

var gyroGroup = offsetGroup{
	name:       "gyro",
	dataReg:    regGyroXOutH,
	offsetRegs: [3]byte{regXGOffsetH, regYGOffsetH, regZGOffsetH},
	scale:      4,
	keepBit0:   false,
	gravityZ:   0,
	sumScale:   1,
	kP:         0.3,
	kI:         90,
}

// gainDamping maps the requested loop budget to a gain pre-scale: fewer
// loops leave less room to converge, so they run with more aggressive
// gains.
func gainDamping(loops int) float64 {
	if loops < 1 {
		loops = 1
	}
	if loops > 5 {
		loops = 5
	}
	return float64(105-5*loops) / 100
}

// CalibrateAccel nulls the accelerometer offset registers (Z against +1g)
// via direct register reads, bypassing the FIFO. Returns the offsets
// written. Must not run concurrently with packet acquisition.
func (d *Device) CalibrateAccel(loops int) (AxisData, error) {
	return d.calibrate(accelGroup, loops)
}

// CalibrateGyro nulls the gyroscope offset registers. Returns the offsets
// written.
func (d *Device) CalibrateGyro(loops int) (AxisData, error) {
	return d.calibrate(gyroGroup, loops)
}

func (d *Device) calibrate(g offsetGroup, loops int) (AxisData, error) {
	if loops < 1 {
		loops = 1
	}
	damping := gainDamping(loops)
	kP := g.kP * damping
	kI := g.kI * damping

	// Seed the integral term from the installed trim so recalibration
	// continues from the current state instead of slamming to zero.
	var state [3]axisState
	for i := 0; i < 3; i++ {
		raw, err := d.tr.ReadWord(g.offsetRegs[i])
		if err != nil {
			return AxisData{}, fmt.Errorf("%s calibration: read offset %d: %w", g.name, i, err)
		}
		cur := int16(raw)
		if g.keepBit0 {
			state[i].bitZero = cur & 1
		}
		state[i].integral = float64(cur) * g.scale
		state[i].written = cur
	}

	for l := 0; l < loops; l++ {
		settled := 0
		for c := 0; c < calibInnerSamples; c++ {
			errSum := 0.0
			for i := 0; i < 3; i++ {
				raw, err := d.tr.ReadWord(g.dataReg + byte(2*i))
				if err != nil {
					return AxisData{}, fmt.Errorf("%s calibration: read axis %d: %w", g.name, i, err)
				}
				reading := int16(raw)
				if i == 2 {
					reading -= g.gravityZ
				}

				e := -float64(reading)
				errSum += math.Abs(float64(reading))

				p := kP * e
				state[i].integral += e * calibSampleStep * kI

				out := int16(math.Round((p + state[i].integral) / g.scale))
				if g.keepBit0 {
					out = out&^1 | state[i].bitZero
				}
				if err := d.tr.WriteWord(g.offsetRegs[i], uint16(out)); err != nil {
					return AxisData{}, fmt.Errorf("%s calibration: write offset %d: %w", g.name, i, err)
				}
				state[i].written = out
			}

			d.clock.Sleep(calibSampleInterval)

			// Divergence escape valve: a full pass with the error still
			// this large restarts the pass rather than ending the loop.
			if c == calibInnerSamples-1 && errSum > calibDivergedSum {
				c = -1
				settled = 0
				continue
			}

			if errSum*g.sumScale < calibErrTolerance {
				settled++
				for i := range state {
					state[i].converged++
				}
			}
			if errSum < calibSettledSum && c > calibWarmupCount && settled >= calibSettleCount {
				break
			}
		}

		kP *= calibGainDecay
		kI *= calibGainDecay

		// Between passes the proportional contribution is dropped and the
		// accumulated integral alone is installed.
		for i := 0; i < 3; i++ {
			out := int16(math.Round(state[i].integral / g.scale))
			if g.keepBit0 {
				out = out&^1 | state[i].bitZero
			}
			if err := d.tr.WriteWord(g.offsetRegs[i], uint16(out)); err != nil {
				return AxisData{}, fmt.Errorf("%s calibration: install offset %d: %w", g.name, i, err)
			}
			state[i].written = out
		}
	}

	// Samples collected while the offsets were moving are garbage; flush
	// the ring buffer and restart the co-processor state.
	if err := d.ResetFIFO(); err != nil {
		return AxisData{}, err
	}
	if err := d.ResetDMP(); err != nil {
		return AxisData{}, err
	}

	return AxisData{X: state[0].written, Y: state[1].written, Z: state[2].written}, nil
}
