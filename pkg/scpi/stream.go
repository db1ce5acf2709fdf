package scpi

import (
	"bufio"
	"fmt"
	"io"
	"sync"
)

// stream implements Transport over a newline-terminated byte stream.
type stream struct {
	mu     sync.Mutex
	rw     io.ReadWriteCloser
	r      *bufio.Reader
	closed bool

	// arm is called before each request to set the deadline, may be nil.
	arm func() error
	// mapErr converts driver errors into ErrTimeout where applicable.
	mapErr func(error) error
}

func newStream(rw io.ReadWriteCloser, chunkSize int) *stream {
	if chunkSize < 16 {
		chunkSize = DefaultChunkSize
	}
	return &stream{
		rw:     rw,
		r:      bufio.NewReaderSize(rw, chunkSize),
		mapErr: func(err error) error { return err },
	}
}

func (s *stream) Write(cmd string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.write(cmd)
}

func (s *stream) Query(cmd string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(cmd); err != nil {
		return nil, err
	}

	reply, err := readReply(s.r)
	if err != nil {
		return nil, fmt.Errorf("failed to read reply to %q: %w", cmd, s.mapErr(err))
	}
	return reply, nil
}

func (s *stream) write(cmd string) error {
	if s.closed {
		return ErrClosed
	}
	if s.arm != nil {
		if err := s.arm(); err != nil {
			return fmt.Errorf("failed to set deadline: %w", err)
		}
	}
	if _, err := s.rw.Write([]byte(cmd + "\n")); err != nil {
		return fmt.Errorf("failed to send %q: %w", cmd, s.mapErr(err))
	}
	return nil
}

func (s *stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.rw.Close()
}
