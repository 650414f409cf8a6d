package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "motion_config.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const validConfig = `# motion computer test config
MQTT_BROKER=tcp://localhost:1883
MQTT_CLIENT_ID_PRODUCER=motion-producer
MQTT_CLIENT_ID_WEB=motion-web

TOPIC_POSE=motion/pose
TOPIC_MOTION=motion/sample
TOPIC_LINEAR_ACCEL=motion/linear_accel

IMU_I2C_BUS=/dev/i2c-1
IMU_I2C_ADDR=0x68
DMP_FIRMWARE_PATH=/usr/share/motion/dmp_firmware.bin

FIFO_OVERFLOW_THRESHOLD=200
FIFO_DEADLINE_MS=11000
CALIBRATION_LOOPS=3

SAMPLE_INTERVAL=100
CONSOLE_LOG_INTERVAL=1000
WEB_SERVER_PORT=8080

DISPLAY_I2C_ADDR=0x3C
DISPLAY_UPDATE_INTERVAL=250
DISPLAY_CONTENT=pose
`

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	assert.Equal(t, "/dev/i2c-1", cfg.IMUI2CBus)
	assert.Equal(t, uint16(0x68), cfg.IMUI2CAddr)
	assert.Equal(t, "/usr/share/motion/dmp_firmware.bin", cfg.DMPFirmwarePath)
	assert.Equal(t, 200, cfg.FIFOOverflowThreshold)
	assert.Equal(t, 11000, cfg.FIFODeadline)
	assert.Equal(t, 3, cfg.CalibrationLoops)
	assert.Equal(t, "motion/sample", cfg.TopicMotion)
	assert.Equal(t, uint16(0x3C), cfg.DisplayI2CAddr)
	assert.Equal(t, "pose", cfg.DisplayContent)
}

func TestLoadUnknownKey(t *testing.T) {
	_, err := Load(writeConfig(t, validConfig+"NOT_A_KEY=1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config key")
}

func TestLoadInvalidLine(t *testing.T) {
	_, err := Load(writeConfig(t, validConfig+"not a key value pair\n"))
	assert.Error(t, err)
}

func TestLoadMissingBroker(t *testing.T) {
	cfg := `IMU_I2C_BUS=/dev/i2c-1
IMU_I2C_ADDR=0x68
DMP_FIRMWARE_PATH=/tmp/fw.bin
SAMPLE_INTERVAL=100
CONSOLE_LOG_INTERVAL=1000
`
	_, err := Load(writeConfig(t, cfg))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MQTT_BROKER")
}

func TestLoadMissingFirmwarePath(t *testing.T) {
	cfg := `MQTT_BROKER=tcp://localhost:1883
IMU_I2C_BUS=/dev/i2c-1
IMU_I2C_ADDR=0x68
SAMPLE_INTERVAL=100
CONSOLE_LOG_INTERVAL=1000
`
	_, err := Load(writeConfig(t, cfg))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DMP_FIRMWARE_PATH")
}

func TestLoadRejectsOutOfRangeValues(t *testing.T) {
	_, err := Load(writeConfig(t, validConfig+"FIFO_OVERFLOW_THRESHOLD=2000\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, validConfig+"CALIBRATION_LOOPS=9\n"))
	assert.Error(t, err)
}

func TestLoadSkipsCommentsAndBlankLines(t *testing.T) {
	cfg, err := Load(writeConfig(t, "\n# comment only\n\n"+validConfig))
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.SampleInterval)
}
