package dmp

import (
	"encoding/binary"
	"fmt"

	"github.com/relabs-tech/motion_computer/internal/orientation"
)

// PacketSize is the fixed length of one fused-output FIFO packet.
const PacketSize = 28

// ErrShortPacket is returned by DecodePacket for buffers shorter than one
// packet. It is the only way decoding can fail.
var ErrShortPacket = fmt.Errorf("motion packet shorter than %d bytes", PacketSize)

// AxisData is one raw three-axis sensor reading in device LSB.
type AxisData struct {
	X int16 `json:"x"`
	Y int16 `json:"y"`
	Z int16 `json:"z"`
}

// Motion is the decoded content of one FIFO packet.
type Motion struct {
	Quat  orientation.Quaternion `json:"quat"`
	Accel AxisData               `json:"accel"`
	Gyro  AxisData               `json:"gyro"`
}

// DecodePacket parses a 28-byte fused-output packet. All fields are
// big-endian: quaternion w,x,y,z as int32 at offsets 0/4/8/12, accel x,y,z
// as int16 at 16/18/20, gyro x,y,z as int16 at 22/24/26. The parse is pure;
// any buffer of sufficient length decodes deterministically.
func DecodePacket(buf []byte) (Motion, error) {
	if len(buf) < PacketSize {
		return Motion{}, ErrShortPacket
	}

	i32 := func(off int) int32 {
		return int32(binary.BigEndian.Uint32(buf[off:]))
	}
	i16 := func(off int) int16 {
		return int16(binary.BigEndian.Uint16(buf[off:]))
	}

	return Motion{
		Quat: orientation.Quaternion{
			W: i32(0),
			X: i32(4),
			Y: i32(8),
			Z: i32(12),
		},
		Accel: AxisData{X: i16(16), Y: i16(18), Z: i16(20)},
		Gyro:  AxisData{X: i16(22), Y: i16(24), Z: i16(26)},
	}, nil
}

// Vector converts the raw reading to a float vector in LSB, the form the
// orientation math consumes.
func (a AxisData) Vector() orientation.Vector3 {
	return orientation.Vector3{X: float64(a.X), Y: float64(a.Y), Z: float64(a.Z)}
}
