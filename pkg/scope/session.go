// Package scope drives a Rigol DS/MSO4000 oscilloscope over SCPI: individual control and
// status commands, and the ordered command sequence that reads a waveform window.
package scope

import (
	"fmt"
	"sync"
	"time"

	"github.com/itohio/gorigol/pkg/logger"
	"github.com/itohio/gorigol/pkg/scpi"
	"github.com/itohio/gorigol/pkg/waveform"
)

// HorizontalGrids is the number of horizontal divisions on the display.
const HorizontalGrids = 14

// DefaultPollInterval is the delay between status polls.
const DefaultPollInterval = 100 * time.Millisecond

// defaultMaxPoints is the largest window a single :WAV:DATA? returns per format.
func defaultMaxPoints() map[waveform.Format]int {
	return map[waveform.Format]int{
		waveform.FormatByte:  250000,
		waveform.FormatWord:  125000,
		waveform.FormatASCII: 15625,
	}
}

// Session is one logical connection to an oscilloscope. It owns the transport and must
// be closed. A Session is not safe for concurrent use.
type Session struct {
	t       scpi.Transport
	log     logger.Logger
	decoder waveform.Decoder
	poll    time.Duration

	maxPoints map[waveform.Format]int

	closeOnce sync.Once
	closeErr  error
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger receiving status values and command traces.
func WithLogger(l logger.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithHeaderLength strips a fixed number of leading reply bytes instead of parsing the
// binary block header. Zero restores header parsing.
func WithHeaderLength(n int) Option {
	return func(s *Session) {
		if n >= 0 {
			s.decoder.HeaderLength = n
		}
	}
}

// WithPollInterval sets the delay between status polls while waiting for the instrument.
func WithPollInterval(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.poll = d
		}
	}
}

// New creates a session that takes ownership of t.
func New(t scpi.Transport, opts ...Option) *Session {
	s := &Session{
		t:         t,
		log:       logger.GetLogger(),
		decoder:   waveform.Decoder{HeaderLength: waveform.HeaderAuto},
		poll:      DefaultPollInterval,
		maxPoints: defaultMaxPoints(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxPoints returns the largest window readable in format f, or 0 for an unknown format.
func (s *Session) MaxPoints(f waveform.Format) int {
	return s.maxPoints[f]
}

// Close closes the transport. Only the first call reaches the transport; later calls
// return the same result.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.t.Close()
		if s.closeErr != nil {
			s.log.Warn("failed to close transport", "error", s.closeErr)
			return
		}
		s.log.Debug("session closed")
	})
	return s.closeErr
}

func (s *Session) write(cmd string) error {
	s.log.Debug("scpi write", "cmd", cmd)
	if err := s.t.Write(cmd); err != nil {
		return fmt.Errorf("failed to write %s: %w", cmd, err)
	}
	return nil
}

func (s *Session) query(cmd string) ([]byte, error) {
	reply, err := s.t.Query(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", cmd, err)
	}
	s.log.Debug("scpi query", "cmd", cmd, "reply_bytes", len(reply))
	return reply, nil
}
