package waveform

import (
	"github.com/chewxy/math32"
)

// Stats holds amplitude measurements of a trace.
type Stats struct {
	Count      int
	Min        float32
	Max        float32
	Mean       float32
	RMS        float32
	PeakToPeak float32
}

// Edge is a run of consecutive sample pairs whose slope exceeds the threshold.
type Edge struct {
	StartIndex int     // first sample of the run
	EndIndex   int     // last sample of the run
	Rising     bool    // positive slope
	PeakSlope  float64 // steepest derivative within the run (units per second)
}

// Measure computes amplitude statistics. An empty trace yields a zero Stats.
func Measure(volts []float32) Stats {
	if len(volts) == 0 {
		return Stats{}
	}

	lo, hi := math32.Inf(1), math32.Inf(-1)
	var sum, sumSq float32
	for _, v := range volts {
		lo = math32.Min(lo, v)
		hi = math32.Max(hi, v)
		sum += v
		sumSq += v * v
	}

	n := float32(len(volts))
	return Stats{
		Count:      len(volts),
		Min:        lo,
		Max:        hi,
		Mean:       sum / n,
		RMS:        math32.Sqrt(sumSq / n),
		PeakToPeak: hi - lo,
	}
}

// Derivatives differentiates samples taken dt seconds apart.
// derivative[i] = (samples[i+1] - samples[i]) / dt, so n samples give n-1 derivatives.
func Derivatives(samples []float64, dt float64) []float64 {
	if len(samples) < 2 || dt <= 0 {
		return []float64{}
	}
	out := make([]float64, len(samples)-1)
	for i := range out {
		out[i] = (samples[i+1] - samples[i]) / dt
	}
	return out
}

// Edges detects rising and falling edges: runs of derivatives whose magnitude exceeds
// threshold. Adjacent derivatives with the same sign are merged into one edge.
func Edges(samples []float64, dt, threshold float64) []Edge {
	derivs := Derivatives(samples, dt)
	edges := make([]Edge, 0)

	active := -1
	for i, d := range derivs {
		rising := d > threshold
		falling := d < -threshold
		if !rising && !falling {
			active = -1
			continue
		}

		if active >= 0 && edges[active].Rising == rising && edges[active].EndIndex == i {
			// extend the current run
			e := &edges[active]
			e.EndIndex = i + 1
			if abs(d) > abs(e.PeakSlope) {
				e.PeakSlope = d
			}
			continue
		}

		edges = append(edges, Edge{
			StartIndex: i,
			EndIndex:   i + 1,
			Rising:     rising,
			PeakSlope:  d,
		})
		active = len(edges) - 1
	}

	return edges
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
