package waveform

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

const (
	// HeaderAuto makes the decoder parse the #<n><length> block prefix to find where
	// sample content starts.
	HeaderAuto = 0
	// LegacyHeaderLength is the fixed prefix length stripped by older capture scripts.
	LegacyHeaderLength = 10
)

// Decoder turns raw :WAV:DATA? replies into samples.
//
// HeaderLength selects how the leading binary-block header is removed: HeaderAuto parses
// it, a positive value strips exactly that many bytes.
type Decoder struct {
	HeaderLength int
}

// Decode decodes payload with an auto-detected header.
func Decode(payload []byte, f Format) ([]float64, error) {
	return Decoder{HeaderLength: HeaderAuto}.Decode(payload, f)
}

// Decode strips the header from payload and decodes the content according to f.
// ASCII tokens become their float value, BYTE and WORD codes are returned as exact
// integers. The returned slice is in transmission order; on error no samples are returned.
func (d Decoder) Decode(payload []byte, f Format) ([]float64, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}

	content, declared, err := d.strip(payload)
	if err != nil {
		return nil, err
	}

	if f == FormatASCII {
		return decodeASCII(content)
	}
	return decodeBinary(content, declared, f.SampleWidth())
}

// strip removes the header and returns the remaining content plus the declared block
// length (-1 when the header was stripped by fixed length).
func (d Decoder) strip(payload []byte) ([]byte, int, error) {
	if d.HeaderLength > 0 {
		if len(payload) < d.HeaderLength {
			return nil, 0, fmt.Errorf("%w: reply of %d bytes is shorter than the %d byte header",
				ErrMalformedHeader, len(payload), d.HeaderLength)
		}
		return payload[d.HeaderLength:], -1, nil
	}

	headerLen, length, err := ParseBlockHeader(payload)
	if err != nil {
		return nil, 0, err
	}
	return payload[headerLen:], length, nil
}

func decodeASCII(content []byte) ([]float64, error) {
	text := strings.TrimRight(string(content), " \t\r\n")
	text = strings.TrimSuffix(text, ",")
	if text == "" {
		return []float64{}, nil
	}

	tokens := strings.Split(text, ",")
	values := make([]float64, len(tokens))
	for i, tok := range tokens {
		v, err := strconv.ParseFloat(strings.TrimSpace(tok), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: token %d %q", ErrMalformedSample, i, tok)
		}
		values[i] = v
	}
	return values, nil
}

func decodeBinary(content []byte, declared, width int) ([]float64, error) {
	if declared >= 0 {
		if len(content) < declared {
			return nil, fmt.Errorf("%w: block declares %d bytes, got %d", ErrPayloadLength, declared, len(content))
		}
		content = content[:declared]
	} else {
		content = bytes.TrimSuffix(content, []byte{'\n'})
	}

	if len(content)%width != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of the %d byte sample width",
			ErrPayloadLength, len(content), width)
	}

	n := len(content) / width
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		switch width {
		case 1:
			values[i] = float64(content[i])
		case 2:
			values[i] = float64(binary.LittleEndian.Uint16(content[2*i:]))
		}
	}
	return values, nil
}
