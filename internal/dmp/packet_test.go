package dmp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePacket(t *testing.T) {
	buf := makePacket(16384, -7000, 123, -1)

	m, err := DecodePacket(buf)
	require.NoError(t, err)

	assert.Equal(t, int32(16384), m.Quat.W)
	assert.Equal(t, int32(-7000), m.Quat.X)
	assert.Equal(t, int32(123), m.Quat.Y)
	assert.Equal(t, int32(-1), m.Quat.Z)

	assert.Equal(t, AxisData{X: 100, Y: -200, Z: 8300}, m.Accel)
	assert.Equal(t, AxisData{X: -1, Y: 2, Z: -3}, m.Gyro)
}

func TestDecodePacketShort(t *testing.T) {
	_, err := DecodePacket(make([]byte, PacketSize-1))
	assert.ErrorIs(t, err, ErrShortPacket)
}

func TestDecodePacketExtraBytesIgnored(t *testing.T) {
	buf := append(makePacket(1, 2, 3, 4), 0xFF, 0xFF)
	m, err := DecodePacket(buf)
	require.NoError(t, err)
	assert.Equal(t, int32(1), m.Quat.W)
}

func TestAxisDataVector(t *testing.T) {
	v := AxisData{X: -1, Y: 2, Z: 3}.Vector()
	assert.Equal(t, -1.0, v.X)
	assert.Equal(t, 2.0, v.Y)
	assert.Equal(t, 3.0, v.Z)
}
