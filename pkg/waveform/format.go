// Package waveform decodes oscilloscope waveform replies into sample sequences and
// provides the post-processing applied to them (scaling, decimation, averaging and
// measurements).
package waveform

import (
	"fmt"
	"strings"
)

// Format is the waveform data encoding requested from the instrument.
type Format string

const (
	FormatByte  Format = "BYTE"
	FormatWord  Format = "WORD"
	FormatASCII Format = "ASCII"
)

// Formats lists the supported encodings.
var Formats = []Format{FormatByte, FormatWord, FormatASCII}

// ParseFormat converts a format name into a Format.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToUpper(strings.TrimSpace(name)))
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
	return f, nil
}

// Valid reports whether f is one of the supported encodings.
func (f Format) Valid() bool {
	switch f {
	case FormatByte, FormatWord, FormatASCII:
		return true
	}
	return false
}

// SampleWidth returns the number of bytes per sample for binary formats and 0 for ASCII.
func (f Format) SampleWidth() int {
	switch f {
	case FormatByte:
		return 1
	case FormatWord:
		return 2
	}
	return 0
}

func (f Format) String() string {
	return string(f)
}
