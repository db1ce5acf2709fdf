package scpi

import (
	"errors"

	"github.com/itohio/gorigol/pkg/waveform"
)

var (
	// ErrTimeout indicates that no reply arrived within the transport timeout.
	ErrTimeout = errors.New("scpi transport timeout")

	// ErrClosed indicates use of a closed transport.
	ErrClosed = errors.New("scpi transport closed")

	// ErrBlockHeader indicates a malformed IEEE 488.2 definite-length block prefix, or one
	// declaring more than MaxBlockLength bytes.
	ErrBlockHeader = waveform.ErrMalformedHeader

	// ErrNoUniqueResource indicates that discovery found zero or several USB instruments.
	ErrNoUniqueResource = errors.New("expected exactly one USB instrument")

	// ErrInvalidResource indicates a resource string that cannot be parsed.
	ErrInvalidResource = errors.New("invalid resource string")
)
