package scope

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/itohio/gorigol/pkg/waveform"
)

// Channel is an analog input, 1 to 4.
type Channel int

const (
	MinChannel Channel = 1
	MaxChannel Channel = 4
)

// Valid reports whether c names an existing input.
func (c Channel) Valid() bool {
	return c >= MinChannel && c <= MaxChannel
}

func (c Channel) String() string {
	return "CHANnel" + strconv.Itoa(int(c))
}

// Mode selects which samples :WAV:DATA? returns.
type Mode string

const (
	ModeNormal  Mode = "NORM" // displayed samples
	ModeMaximum Mode = "MAX"  // displayed when running, full memory when stopped
	ModeRaw     Mode = "RAW"  // full acquisition memory
)

// modeSpellings is the closed set of accepted mode names, keyed upper-case.
var modeSpellings = map[string]Mode{
	"NORM":    ModeNormal,
	"NORMAL":  ModeNormal,
	"MAX":     ModeMaximum,
	"MAXIMUM": ModeMaximum,
	"RAW":     ModeRaw,
}

// ParseMode accepts the short and long instrument spellings of a mode, in any case.
func ParseMode(name string) (Mode, error) {
	m, ok := modeSpellings[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, name)
	}
	return m, nil
}

func (m Mode) Valid() bool {
	switch m {
	case ModeNormal, ModeMaximum, ModeRaw:
		return true
	}
	return false
}

// PointRange is an inclusive window of sample indices.
type PointRange struct {
	Start int
	End   int
}

// Size returns the number of points in the window.
func (r PointRange) Size() int {
	return r.End - r.Start + 1
}

// First returns the zero-based memory index of the first point in the range.
func (r PointRange) First() int {
	return max(r.Start-1, 0)
}

// Validate checks that both bounds are non-negative and ordered.
func (r PointRange) Validate() error {
	if r.Start < 0 || r.End < 0 {
		return fmt.Errorf("%w: negative bound in %d..%d", ErrInvalidRange, r.Start, r.End)
	}
	if r.Start > r.End {
		return fmt.Errorf("%w: start %d is after end %d", ErrInvalidRange, r.Start, r.End)
	}
	return nil
}

func (r PointRange) String() string {
	return fmt.Sprintf("%d..%d", r.Start, r.End)
}

// MountPoint is a USB port of the instrument, used as the drive of saved files.
type MountPoint string

const (
	MountFront MountPoint = "FRONT"
	MountBack  MountPoint = "BACK"
)

var mountPrefixes = map[MountPoint]string{
	MountFront: "D:/",
	MountBack:  "E:/",
}

// ParseMountPoint converts FRONT or BACK, in any case, into a MountPoint.
func ParseMountPoint(name string) (MountPoint, error) {
	mp := MountPoint(strings.ToUpper(strings.TrimSpace(name)))
	if _, ok := mountPrefixes[mp]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidMountPoint, name)
	}
	return mp, nil
}

// Prefix returns the instrument-side path prefix of the port.
func (mp MountPoint) Prefix() (string, bool) {
	p, ok := mountPrefixes[mp]
	return p, ok
}

// Identity is the parsed *IDN? reply.
type Identity struct {
	Manufacturer string
	Model        string
	Serial       string
	Firmware     string
}

func (id Identity) String() string {
	return strings.Join([]string{id.Manufacturer, id.Model, id.Serial, id.Firmware}, ",")
}

// AcquireRequest describes one waveform read.
type AcquireRequest struct {
	Channel Channel
	Mode    Mode
	Format  waveform.Format
	Range   PointRange
}
