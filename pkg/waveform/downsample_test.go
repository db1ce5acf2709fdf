package waveform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownsample(t *testing.T) {
	samples := make([]float64, 10)
	for i := range samples {
		samples[i] = float64(i)
	}

	tests := []struct {
		name      string
		maxPoints int
		want      []float64
	}{
		{name: "no limit", maxPoints: 0, want: samples},
		{name: "fits", maxPoints: 20, want: samples},
		{name: "exact", maxPoints: 10, want: samples},
		{name: "half", maxPoints: 5, want: []float64{0, 2, 4, 6, 9}},
		{name: "thirds", maxPoints: 3, want: []float64{0, 4, 9}},
		{name: "ends", maxPoints: 2, want: []float64{0, 9}},
		{name: "single keeps latest", maxPoints: 1, want: []float64{9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Downsample(nil, samples, tt.maxPoints)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDownsampleReusesDestination(t *testing.T) {
	samples := []float64{1, 2, 3, 4}
	dst := make([]float64, 0, 8)

	got := Downsample(dst, samples, 2)
	assert.Equal(t, []float64{1, 4}, got)
	assert.Same(t, &dst[:1][0], &got[0])

	got = Downsample(dst, samples, 0)
	assert.Equal(t, samples, got)
	got[0] = 42
	assert.Equal(t, 1.0, samples[0])

	assert.Empty(t, Downsample(nil, nil, 5))
}

func TestAverage(t *testing.T) {
	got, err := Average([][]float64{
		{1, 2, 3},
		{3, 4, 5},
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3, 4}, got)

	got, err = Average(nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = Average([][]float64{{1, 2}, {1}})
	assert.ErrorIs(t, err, ErrPayloadLength)
}
