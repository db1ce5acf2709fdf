package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Transport   TransportConfig   `yaml:"transport"`
	Acquisition AcquisitionConfig `yaml:"acquisition"`
	Export      ExportConfig      `yaml:"export"`
	Log         LogConfig         `yaml:"log"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Mock        MockConfig        `yaml:"mock"`
}

// TransportConfig selects and parameterizes the SCPI transport.
type TransportConfig struct {
	Kind      string        `yaml:"kind"`       // usb, serial, tcp or mock
	Address   string        `yaml:"address"`    // empty = discover the sole USB instrument
	Timeout   time.Duration `yaml:"timeout"`    // per request
	ChunkSize int           `yaml:"chunk_size"` // read buffer size in bytes
	BaudRate  int           `yaml:"baud_rate"`  // serial only
}

// AcquisitionConfig contains the default waveform request.
type AcquisitionConfig struct {
	Channel      int    `yaml:"channel"`
	Mode         string `yaml:"mode"`
	Format       string `yaml:"format"`
	Start        int    `yaml:"start"`
	End          int    `yaml:"end"`
	HeaderLength int    `yaml:"header_length"` // 0 = parse the block header
	Average      int    `yaml:"average"`       // acquisitions to average (0 or 1 = single)
}

// ExportConfig contains the instrument-side CSV export parameters.
type ExportConfig struct {
	USBLocation string `yaml:"usb_location"` // FRONT or BACK
	DataDir     string `yaml:"data_dir"`
	FileName    string `yaml:"file_name"`
}

// LogConfig contains logging parameters.
type LogConfig struct {
	Level      string `yaml:"level"`
	Console    bool   `yaml:"console"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// MetricsConfig contains the prometheus endpoint configuration.
type MetricsConfig struct {
	Listen string `yaml:"listen"` // empty = disabled
}

// MockConfig contains simulated oscilloscope configuration.
type MockConfig struct {
	Frequency   float64       `yaml:"frequency"`    // Signal frequency (Hz)
	Amplitude   float64       `yaml:"amplitude"`    // Peak amplitude (V)
	Offset      float64       `yaml:"offset"`       // DC offset (V)
	NoiseLevel  float64       `yaml:"noise_level"`  // Noise level (V)
	MemoryDepth int           `yaml:"memory_depth"` // Points in acquisition memory
	SampleRate  float64       `yaml:"sample_rate"`  // Samples per second
	Timebase    float64       `yaml:"timebase"`     // Seconds per division
	Latency     time.Duration `yaml:"latency"`      // Simulated reply latency
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Transport: TransportConfig{
			Kind:      "usb",
			Address:   "",
			Timeout:   10 * time.Second,
			ChunkSize: 102400,
			BaudRate:  9600,
		},
		Acquisition: AcquisitionConfig{
			Channel: 1,
			Mode:    "RAW",
			Format:  "ASCII",
			Start:   1,
			End:     100,
		},
		Export: ExportConfig{
			USBLocation: "FRONT",
			DataDir:     "",
			FileName:    "scopeout.csv",
		},
		Log: LogConfig{
			Level:      "info",
			Console:    true,
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Mock: MockConfig{
			Frequency:   1000,
			Amplitude:   1.0,
			Offset:      0.0,
			NoiseLevel:  0.01,
			MemoryDepth: 280000,
			SampleRate:  1e6,
			Timebase:    1e-3,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults fills fields that were explicitly zeroed in the file.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Transport.Kind == "" {
		c.Transport.Kind = def.Transport.Kind
	}
	if c.Transport.Timeout == 0 {
		c.Transport.Timeout = def.Transport.Timeout
	}
	if c.Transport.ChunkSize == 0 {
		c.Transport.ChunkSize = def.Transport.ChunkSize
	}
	if c.Transport.BaudRate == 0 {
		c.Transport.BaudRate = def.Transport.BaudRate
	}

	if c.Acquisition.Mode == "" {
		c.Acquisition.Mode = def.Acquisition.Mode
	}
	if c.Acquisition.Format == "" {
		c.Acquisition.Format = def.Acquisition.Format
	}

	if c.Export.USBLocation == "" {
		c.Export.USBLocation = def.Export.USBLocation
	}
	if c.Export.FileName == "" {
		c.Export.FileName = def.Export.FileName
	}

	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}

	if c.Mock.MemoryDepth == 0 {
		c.Mock.MemoryDepth = def.Mock.MemoryDepth
	}
	if c.Mock.SampleRate == 0 {
		c.Mock.SampleRate = def.Mock.SampleRate
	}
	if c.Mock.Timebase == 0 {
		c.Mock.Timebase = def.Mock.Timebase
	}
	if c.Mock.Frequency == 0 {
		c.Mock.Frequency = def.Mock.Frequency
	}
}
