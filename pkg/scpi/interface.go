// Package scpi provides transports that carry SCPI command text to an instrument and
// return its replies: USBTMC, serial, raw TCP socket and an in-process simulated
// oscilloscope.
package scpi

import (
	"fmt"
	"strings"
	"time"

	"github.com/itohio/gorigol/pkg/config"
	"github.com/itohio/gorigol/pkg/logger"
)

const (
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 10 * time.Second
	// DefaultChunkSize is the default read buffer size.
	DefaultChunkSize = 102400
	// DefaultBaudRate is the RS-232 rate configured on the instrument by default.
	DefaultBaudRate = 9600
	// DefaultTCPPort is the raw SCPI socket port.
	DefaultTCPPort = 5555
)

// Kind selects a transport implementation.
type Kind string

const (
	KindUSB    Kind = "usb"
	KindSerial Kind = "serial"
	KindTCP    Kind = "tcp"
	KindMock   Kind = "mock"
)

// Transport carries SCPI text to one instrument. Only one request may be outstanding:
// Query blocks until exactly one reply is received or the timeout elapses.
type Transport interface {
	// Write sends a command that produces no reply.
	Write(cmd string) error
	// Query sends a command and returns its reply without the line terminator.
	Query(cmd string) ([]byte, error)
	// Close releases the underlying handle.
	Close() error
}

// Ensure implementations satisfy Transport.
var (
	_ Transport = (*Serial)(nil)
	_ Transport = (*TCP)(nil)
	_ Transport = (*USBTMC)(nil)
	_ Transport = (*Mock)(nil)
	_ Transport = (*Recorder)(nil)
)

// Config holds the parameters of Open.
type Config struct {
	Kind      Kind
	Address   string
	Timeout   time.Duration
	ChunkSize int
	BaudRate  int
	Mock      *config.MockConfig
}

// ConfigFrom converts the file configuration into a transport Config.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		Kind:      Kind(strings.ToLower(cfg.Transport.Kind)),
		Address:   cfg.Transport.Address,
		Timeout:   cfg.Transport.Timeout,
		ChunkSize: cfg.Transport.ChunkSize,
		BaudRate:  cfg.Transport.BaudRate,
		Mock:      &cfg.Mock,
	}
}

// KindFromAddress guesses the transport kind from a resource string.
func KindFromAddress(address string) Kind {
	switch {
	case strings.HasPrefix(address, "USB"):
		return KindUSB
	case strings.HasPrefix(address, "ASRL"), strings.HasPrefix(address, "/dev/"), strings.HasPrefix(address, "COM"):
		return KindSerial
	case strings.HasPrefix(address, "TCPIP"), strings.Contains(address, ":"):
		return KindTCP
	}
	return ""
}

// Open opens a transport. An empty Kind is inferred from the address.
func Open(cfg Config) (Transport, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.Kind == "" {
		cfg.Kind = KindFromAddress(cfg.Address)
	}

	var (
		t   Transport
		err error
	)
	switch cfg.Kind {
	case KindUSB:
		t, err = OpenUSBTMC(cfg.Address, cfg.Timeout, cfg.ChunkSize)
	case KindSerial:
		t, err = OpenSerial(cfg.Address, cfg.BaudRate, cfg.Timeout, cfg.ChunkSize)
	case KindTCP:
		t, err = DialTCP(cfg.Address, cfg.Timeout, cfg.ChunkSize)
	case KindMock:
		t = NewMock(cfg.Mock)
	default:
		return nil, fmt.Errorf("unknown transport kind %q for address %q", cfg.Kind, cfg.Address)
	}
	if err != nil {
		return nil, err
	}

	logger.Debug("transport opened", "kind", string(cfg.Kind), "address", cfg.Address,
		"timeout", cfg.Timeout, "chunk_size", cfg.ChunkSize)
	return t, nil
}
