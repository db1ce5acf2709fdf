package waveform

import (
	"fmt"
	"strconv"
)

// ParseBlockHeader parses the IEEE 488.2 definite-length block prefix "#<n><n digits>"
// at the start of p. It returns the prefix length (2+n) and the declared content length.
func ParseBlockHeader(p []byte) (headerLen, length int, err error) {
	if len(p) < 2 || p[0] != '#' {
		return 0, 0, fmt.Errorf("%w: reply does not start with #", ErrMalformedHeader)
	}
	n := int(p[1]) - '0'
	if n < 1 || n > 9 {
		return 0, 0, fmt.Errorf("%w: invalid digit count %q", ErrMalformedHeader, p[1])
	}
	if len(p) < 2+n {
		return 0, 0, fmt.Errorf("%w: need %d length digits, got %d", ErrMalformedHeader, n, len(p)-2)
	}
	length, err = strconv.Atoi(string(p[2 : 2+n]))
	if err != nil || length < 0 {
		return 0, 0, fmt.Errorf("%w: invalid length %q", ErrMalformedHeader, p[2:2+n])
	}
	return 2 + n, length, nil
}
