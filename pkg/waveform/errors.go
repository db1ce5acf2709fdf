package waveform

import "errors"

// ErrDecode is matched by every decoding failure.
var ErrDecode = errors.New("waveform decode error")

var (
	// ErrUnknownFormat indicates a format outside BYTE, WORD and ASCII.
	ErrUnknownFormat = errors.New("unknown waveform format")

	// ErrMalformedSample indicates an ASCII token that is not a decimal number.
	ErrMalformedSample = decodeError("malformed sample")

	// ErrMalformedHeader indicates a reply without a valid #<n><length> block prefix.
	ErrMalformedHeader = decodeError("malformed binary block header")

	// ErrPayloadLength indicates a binary payload whose length does not match the format
	// or the declared block length.
	ErrPayloadLength = decodeError("unexpected payload length")

	// ErrMalformedPreamble indicates a preamble reply that is not 10 numeric fields.
	ErrMalformedPreamble = decodeError("malformed waveform preamble")
)

type decodeErr struct{ msg string }

func decodeError(msg string) error { return &decodeErr{msg: msg} }

func (e *decodeErr) Error() string { return e.msg }

// Is makes every decode error match ErrDecode.
func (e *decodeErr) Is(target error) bool { return target == ErrDecode }
