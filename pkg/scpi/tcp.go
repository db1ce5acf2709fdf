package scpi

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// TCP is a transport over the instrument's raw SCPI socket.
type TCP struct {
	*stream
	addr string
}

// DialTCP connects to addr, which is host, host:port or TCPIP0::host::port::SOCKET.
func DialTCP(addr string, timeout time.Duration, chunkSize int) (*TCP, error) {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	hostPort, err := tcpAddress(addr)
	if err != nil {
		return nil, err
	}

	conn, err := net.DialTimeout("tcp", hostPort, timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", hostPort, mapNetErr(err))
	}

	s := newStream(conn, chunkSize)
	s.arm = func() error { return conn.SetDeadline(time.Now().Add(timeout)) }
	s.mapErr = mapNetErr

	return &TCP{stream: s, addr: hostPort}, nil
}

// Addr returns the remote host:port.
func (t *TCP) Addr() string {
	return t.addr
}

func tcpAddress(addr string) (string, error) {
	if strings.HasPrefix(addr, "TCPIP") {
		parts := strings.Split(addr, "::")
		if len(parts) < 2 || parts[1] == "" {
			return "", fmt.Errorf("%w: %q", ErrInvalidResource, addr)
		}
		port := strconv.Itoa(DefaultTCPPort)
		if len(parts) >= 4 && parts[3] == "SOCKET" {
			port = parts[2]
		}
		return net.JoinHostPort(parts[1], port), nil
	}
	if addr == "" {
		return "", fmt.Errorf("%w: empty address", ErrInvalidResource)
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return net.JoinHostPort(addr, strconv.Itoa(DefaultTCPPort)), nil
	}
	return addr, nil
}

func mapNetErr(err error) error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}
