package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "usb", cfg.Transport.Kind)
	assert.Empty(t, cfg.Transport.Address)
	assert.Equal(t, 10*time.Second, cfg.Transport.Timeout)
	assert.Equal(t, 102400, cfg.Transport.ChunkSize)
	assert.Equal(t, 1, cfg.Acquisition.Channel)
	assert.Equal(t, "RAW", cfg.Acquisition.Mode)
	assert.Equal(t, "ASCII", cfg.Acquisition.Format)
	assert.Equal(t, 1, cfg.Acquisition.Start)
	assert.Equal(t, 100, cfg.Acquisition.End)
	assert.Zero(t, cfg.Acquisition.HeaderLength)
	assert.Equal(t, "FRONT", cfg.Export.USBLocation)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 280000, cfg.Mock.MemoryDepth)
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "usb", cfg.Transport.Kind)
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
transport:
  kind: tcp
  address: "192.168.1.50:5555"
  timeout: 3s
  chunk_size: 10240000

acquisition:
  channel: 2
  mode: NORM
  format: BYTE
  start: 1
  end: 250000
  header_length: 10
  average: 4

export:
  usb_location: BACK
  data_dir: dataout
  file_name: test1.csv

log:
  level: debug
  file: /tmp/rigol.log

metrics:
  listen: ":9090"

mock:
  frequency: 50
  amplitude: 2.5
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "tcp", cfg.Transport.Kind)
	assert.Equal(t, "192.168.1.50:5555", cfg.Transport.Address)
	assert.Equal(t, 3*time.Second, cfg.Transport.Timeout)
	assert.Equal(t, 10240000, cfg.Transport.ChunkSize)
	assert.Equal(t, 2, cfg.Acquisition.Channel)
	assert.Equal(t, "NORM", cfg.Acquisition.Mode)
	assert.Equal(t, "BYTE", cfg.Acquisition.Format)
	assert.Equal(t, 250000, cfg.Acquisition.End)
	assert.Equal(t, 10, cfg.Acquisition.HeaderLength)
	assert.Equal(t, 4, cfg.Acquisition.Average)
	assert.Equal(t, "BACK", cfg.Export.USBLocation)
	assert.Equal(t, "dataout", cfg.Export.DataDir)
	assert.Equal(t, "test1.csv", cfg.Export.FileName)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/rigol.log", cfg.Log.File)
	assert.Equal(t, ":9090", cfg.Metrics.Listen)
	assert.Equal(t, float64(50), cfg.Mock.Frequency)
	assert.Equal(t, 2.5, cfg.Mock.Amplitude)
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("invalid: yaml: content: [")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PartialYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
transport:
  kind: serial
  address: /dev/ttyUSB0
  timeout: 0s
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)

	assert.Equal(t, "serial", cfg.Transport.Kind)
	assert.Equal(t, "/dev/ttyUSB0", cfg.Transport.Address)
	assert.Equal(t, 10*time.Second, cfg.Transport.Timeout) // default
	assert.Equal(t, 9600, cfg.Transport.BaudRate)           // default
	assert.Equal(t, "ASCII", cfg.Acquisition.Format)        // default
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Transport.Kind = "mock"
	cfg.Acquisition.Format = "WORD"

	tmpfile, err := os.CreateTemp("", "test_save_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	err = cfg.Save(tmpfile.Name())
	require.NoError(t, err)

	loaded, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.Equal(t, "mock", loaded.Transport.Kind)
	assert.Equal(t, "WORD", loaded.Acquisition.Format)
	assert.Equal(t, cfg.Mock, loaded.Mock)
}
