package scpi

import (
	"fmt"
	"strings"
	"time"

	"go.bug.st/serial"
)

// Serial is a transport over the instrument's RS-232 port.
type Serial struct {
	*stream
	port     string
	baudRate int
}

// OpenSerial opens a serial port. Zero baudRate, timeout and chunkSize select defaults.
// The port may be given as a device name or as an ASRL<name>::INSTR resource.
func OpenSerial(port string, baudRate int, timeout time.Duration, chunkSize int) (*Serial, error) {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	name := serialName(port)

	p, err := serial.Open(name, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", name, err)
	}
	if err := p.SetReadTimeout(timeout); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", name, err)
	}

	return &Serial{
		stream:   newStream(&timeoutPort{Port: p}, chunkSize),
		port:     name,
		baudRate: baudRate,
	}, nil
}

// Port returns the device name.
func (s *Serial) Port() string {
	return s.port
}

// timeoutPort reports an expired read timeout as ErrTimeout instead of an empty read.
type timeoutPort struct {
	serial.Port
}

func (p *timeoutPort) Read(b []byte) (int, error) {
	n, err := p.Port.Read(b)
	if n == 0 && err == nil {
		return 0, ErrTimeout
	}
	return n, err
}

func serialName(resource string) string {
	name := strings.TrimPrefix(resource, "ASRL")
	return strings.TrimSuffix(name, "::INSTR")
}
