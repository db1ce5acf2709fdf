package waveform

import (
	"fmt"
	"strconv"
	"strings"
)

// Preamble is the reply of :WAVeform:PREamble?, describing how sample codes map to
// volts and sample indices map to seconds.
type Preamble struct {
	Format     Format
	Type       int // 0 NORMal, 1 MAXimum, 2 RAW
	Points     int
	Count      int
	XIncrement float64
	XOrigin    float64
	XReference float64
	YIncrement float64
	YOrigin    float64
	YReference float64
}

// Trace is a waveform scaled to physical units.
type Trace struct {
	Times []float64 // seconds relative to the trigger
	Volts []float32
}

var preambleFormats = map[int]Format{0: FormatByte, 1: FormatWord, 2: FormatASCII}

// ParsePreamble parses the ten comma-separated preamble fields.
func ParsePreamble(reply string) (Preamble, error) {
	fields := strings.Split(strings.TrimSpace(reply), ",")
	if len(fields) != 10 {
		return Preamble{}, fmt.Errorf("%w: expected 10 fields, got %d", ErrMalformedPreamble, len(fields))
	}

	var ints [4]int
	for i := range ints {
		// integer fields are sometimes sent in exponent notation
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
		if err != nil {
			return Preamble{}, fmt.Errorf("%w: field %d: %v", ErrMalformedPreamble, i, err)
		}
		ints[i] = int(v)
	}
	var floats [6]float64
	for i := range floats {
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[4+i]), 64)
		if err != nil {
			return Preamble{}, fmt.Errorf("%w: field %d: %v", ErrMalformedPreamble, 4+i, err)
		}
		floats[i] = v
	}

	f, ok := preambleFormats[ints[0]]
	if !ok {
		return Preamble{}, fmt.Errorf("%w: format code %d", ErrMalformedPreamble, ints[0])
	}

	return Preamble{
		Format:     f,
		Type:       ints[1],
		Points:     ints[2],
		Count:      ints[3],
		XIncrement: floats[0],
		XOrigin:    floats[1],
		XReference: floats[2],
		YIncrement: floats[3],
		YOrigin:    floats[4],
		YReference: floats[5],
	}, nil
}

// Volts converts BYTE/WORD sample codes to volts.
// Formula: V = (code - YOrigin - YReference) * YIncrement
func (p Preamble) Volts(codes []float64) []float32 {
	out := make([]float32, len(codes))
	for i, c := range codes {
		out[i] = float32((c - p.YOrigin - p.YReference) * p.YIncrement)
	}
	return out
}

// Times returns the time of n samples starting at zero-based memory index first.
// Formula: t = (i - XReference) * XIncrement + XOrigin
func (p Preamble) Times(first, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = (float64(first+i)-p.XReference)*p.XIncrement + p.XOrigin
	}
	return out
}

// Trace scales samples decoded in format f, the first of which sits at zero-based
// memory index first. ASCII samples are already volts.
func (p Preamble) Trace(samples []float64, f Format, first int) Trace {
	var volts []float32
	if f == FormatASCII {
		volts = make([]float32, len(samples))
		for i, v := range samples {
			volts[i] = float32(v)
		}
	} else {
		volts = p.Volts(samples)
	}
	return Trace{Times: p.Times(first, len(samples)), Volts: volts}
}

// String formats the preamble the way the instrument sends it.
func (p Preamble) String() string {
	code := 0
	for k, v := range preambleFormats {
		if v == p.Format {
			code = k
		}
	}
	return fmt.Sprintf("%d,%d,%d,%d,%e,%e,%e,%e,%e,%e", code, p.Type, p.Points, p.Count,
		p.XIncrement, p.XOrigin, p.XReference, p.YIncrement, p.YOrigin, p.YReference)
}
