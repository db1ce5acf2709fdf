package waveform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePreamble(t *testing.T) {
	reply := "0,2,1400,1,1.000000e-06,-7.000000e-04,0,4.000000e-02,0,127\n"

	p, err := ParsePreamble(reply)
	require.NoError(t, err)
	assert.Equal(t, FormatByte, p.Format)
	assert.Equal(t, 2, p.Type)
	assert.Equal(t, 1400, p.Points)
	assert.Equal(t, 1, p.Count)
	assert.InDelta(t, 1e-6, p.XIncrement, 1e-18)
	assert.InDelta(t, -7e-4, p.XOrigin, 1e-18)
	assert.InDelta(t, 0.04, p.YIncrement, 1e-12)
	assert.InDelta(t, 127, p.YReference, 0)

	again, err := ParsePreamble(p.String())
	require.NoError(t, err)
	assert.Equal(t, p, again)
}

func TestParsePreambleExponentIntegers(t *testing.T) {
	p, err := ParsePreamble("1,0,1.400000e+03,1,1e-3,0,0,1e-4,0,32768")
	require.NoError(t, err)
	assert.Equal(t, FormatWord, p.Format)
	assert.Equal(t, 1400, p.Points)
}

func TestParsePreambleErrors(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{name: "too few fields", reply: "0,2,1400"},
		{name: "too many fields", reply: "0,2,1400,1,1,1,1,1,1,1,1"},
		{name: "non numeric", reply: "0,2,x,1,1,1,1,1,1,1"},
		{name: "non numeric float", reply: "0,2,1400,1,1,1,1,y,1,1"},
		{name: "unknown format code", reply: "7,2,1400,1,1,1,1,1,1,1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePreamble(tt.reply)
			assert.ErrorIs(t, err, ErrMalformedPreamble)
			assert.ErrorIs(t, err, ErrDecode)
		})
	}
}

func TestPreambleScaling(t *testing.T) {
	p := Preamble{
		XIncrement: 0.5,
		XOrigin:    -1,
		XReference: 0,
		YIncrement: 0.1,
		YOrigin:    0,
		YReference: 127,
	}

	volts := p.Volts([]float64{127, 137, 117})
	assert.InDeltaSlice(t, []float32{0, 1, -1}, volts, 1e-6)

	assert.Equal(t, []float64{-1, -0.5, 0, 0.5}, p.Times(0, 4))
	assert.Equal(t, []float64{0.5, 1}, p.Times(3, 2))
}

func TestPreambleTrace(t *testing.T) {
	p := Preamble{XIncrement: 1, YIncrement: 2, YReference: 1}

	tr := p.Trace([]float64{1, 2}, FormatByte, 0)
	assert.Equal(t, []float32{0, 2}, tr.Volts)
	assert.Equal(t, []float64{0, 1}, tr.Times)

	tr = p.Trace([]float64{0.25, -0.5}, FormatASCII, 250)
	assert.Equal(t, []float32{0.25, -0.5}, tr.Volts)
	assert.Equal(t, []float64{250, 251}, tr.Times)
}
