package waveform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeASCII(t *testing.T) {
	tests := []struct {
		name         string
		headerLength int
		payload      string
		want         []float64
	}{
		{name: "legacy fixed header", headerLength: LegacyHeaderLength, payload: "#9000000010" + "1.0,2.0,3.0", want: []float64{1, 2, 3}},
		{name: "parsed header", payload: "#9000000010" + "1.0,2.0,3.0", want: []float64{1, 2, 3}},
		{name: "exponent notation", payload: "#9000000027-1.2E-02,3.4e+00,0.000000e+00", want: []float64{-0.012, 3.4, 0}},
		{name: "trailing comma and newline", payload: "#15" + "1,2,\n", want: []float64{1, 2}},
		{name: "spaces around tokens", payload: "#210" + " 1.5 , 2.5", want: []float64{1.5, 2.5}},
		{name: "header only", payload: "#10", want: []float64{}},
		{name: "fixed header only", headerLength: 11, payload: "#9000000000", want: []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decoder{HeaderLength: tt.headerLength}.Decode([]byte(tt.payload), FormatASCII)
			require.NoError(t, err)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-12)
			}
		})
	}
}

func TestDecodeMalformedToken(t *testing.T) {
	got, err := Decode([]byte("#9000000011"+"1.0,abc,3.0"), FormatASCII)
	assert.ErrorIs(t, err, ErrMalformedSample)
	assert.ErrorIs(t, err, ErrDecode)
	assert.Nil(t, got)
	assert.Contains(t, err.Error(), `"abc"`)
}

func TestDecodeBinary(t *testing.T) {
	tests := []struct {
		name         string
		headerLength int
		format       Format
		payload      []byte
		want         []float64
	}{
		{
			name:    "byte codes",
			format:  FormatByte,
			payload: append([]byte("#14"), 0, 127, 128, 255),
			want:    []float64{0, 127, 128, 255},
		},
		{
			name:    "byte with terminator",
			format:  FormatByte,
			payload: append([]byte("#13"), 1, 2, 3, '\n'),
			want:    []float64{1, 2, 3},
		},
		{
			name:    "word little endian",
			format:  FormatWord,
			payload: append([]byte("#14"), 0x01, 0x00, 0xFF, 0x80),
			want:    []float64{1, 0x80FF},
		},
		{
			name:         "fixed header drops terminator",
			headerLength: 4,
			format:       FormatByte,
			payload:      append([]byte("#9xx"), 10, 20, '\n'),
			want:         []float64{10, 20},
		},
		{
			name:    "empty block",
			format:  FormatWord,
			payload: []byte("#10"),
			want:    []float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decoder{HeaderLength: tt.headerLength}.Decode(tt.payload, tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name         string
		headerLength int
		format       Format
		payload      []byte
		wantErr      error
	}{
		{name: "unknown format", format: Format("HEX"), payload: []byte("#10"), wantErr: ErrUnknownFormat},
		{name: "missing header", format: FormatASCII, payload: []byte("1.0,2.0"), wantErr: ErrMalformedHeader},
		{name: "short fixed header", headerLength: 10, format: FormatByte, payload: []byte("#9"), wantErr: ErrMalformedHeader},
		{name: "truncated block", format: FormatByte, payload: append([]byte("#15"), 1, 2), wantErr: ErrPayloadLength},
		{name: "odd word payload", format: FormatWord, payload: append([]byte("#13"), 1, 2, 3), wantErr: ErrPayloadLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decoder{HeaderLength: tt.headerLength}.Decode(tt.payload, tt.format)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, got)
		})
	}
}

func TestDecodeErrorsMatchErrDecode(t *testing.T) {
	for _, err := range []error{ErrMalformedSample, ErrMalformedHeader, ErrPayloadLength, ErrMalformedPreamble} {
		assert.ErrorIs(t, err, ErrDecode)
	}
	assert.NotErrorIs(t, ErrUnknownFormat, ErrDecode)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "BYTE", want: FormatByte},
		{in: "word", want: FormatWord},
		{in: " Ascii ", want: FormatASCII},
		{in: "ASC", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSampleWidth(t *testing.T) {
	assert.Equal(t, 1, FormatByte.SampleWidth())
	assert.Equal(t, 2, FormatWord.SampleWidth())
	assert.Equal(t, 0, FormatASCII.SampleWidth())
}
