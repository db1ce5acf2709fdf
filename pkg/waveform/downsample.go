package waveform

import "fmt"

// Downsample picks at most maxPoints evenly spaced samples for a preview, reusing dst
// when it is large enough. The first and last samples of the window are always kept so
// the preview spans the whole acquisition. maxPoints <= 0 copies every sample.
func Downsample(dst []float64, samples []float64, maxPoints int) []float64 {
	n := len(samples)
	if maxPoints <= 0 || n <= maxPoints {
		maxPoints = n
	}
	if cap(dst) >= maxPoints {
		dst = dst[:maxPoints]
	} else {
		dst = make([]float64, maxPoints)
	}
	if maxPoints == n {
		copy(dst, samples)
		return dst
	}
	if maxPoints == 1 {
		dst[0] = samples[n-1]
		return dst
	}

	last := maxPoints - 1
	for i := range dst {
		dst[i] = samples[i*(n-1)/last]
	}
	return dst
}

// Average returns the point-wise mean of equally long frames, reducing noise across
// repeated acquisitions of the same window.
func Average(frames [][]float64) ([]float64, error) {
	if len(frames) == 0 {
		return []float64{}, nil
	}

	n := len(frames[0])
	sum := make([]float64, n)
	for i, frame := range frames {
		if len(frame) != n {
			return nil, fmt.Errorf("%w: frame %d has %d samples, expected %d", ErrPayloadLength, i, len(frame), n)
		}
		for j, v := range frame {
			sum[j] += v
		}
	}

	count := float64(len(frames))
	for j := range sum {
		sum[j] /= count
	}
	return sum, nil
}
