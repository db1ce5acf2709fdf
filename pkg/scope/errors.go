package scope

import (
	"errors"
	"fmt"

	"github.com/itohio/gorigol/pkg/waveform"
)

// ErrValidation is matched by every request rejected before any transport I/O.
var ErrValidation = errors.New("invalid request")

var (
	ErrInvalidChannel          = fmt.Errorf("%w: channel must be 1-4", ErrValidation)
	ErrInvalidMode             = fmt.Errorf("%w: mode must be NORMal, MAXimum or RAW", ErrValidation)
	ErrInvalidFormat           = fmt.Errorf("%w: format must be BYTE, WORD or ASCII", ErrValidation)
	ErrInvalidRange            = fmt.Errorf("%w: invalid point range", ErrValidation)
	ErrInvalidMountPoint       = fmt.Errorf("%w: mount point must be FRONT or BACK", ErrValidation)
	ErrInvalidFileName         = fmt.Errorf("%w: invalid file name", ErrValidation)
	ErrInvalidCount            = fmt.Errorf("%w: count must be positive", ErrValidation)
	ErrRangeExceedsFormatLimit = fmt.Errorf("%w: point range exceeds the format limit", ErrValidation)
)

// ErrMalformedReply indicates a scalar reply that does not parse as the expected type.
var ErrMalformedReply = fmt.Errorf("malformed reply: %w", waveform.ErrDecode)
