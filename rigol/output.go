package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/itohio/gorigol/pkg/scope"
	"github.com/itohio/gorigol/pkg/waveform"
)

func sampleCount(samples []float64, trace *waveform.Trace) int {
	if trace != nil {
		return len(trace.Volts)
	}
	return len(samples)
}

// values returns the samples to report, in volts when a trace is present.
func values(samples []float64, trace *waveform.Trace) []float64 {
	if trace == nil {
		return samples
	}
	out := make([]float64, len(trace.Volts))
	for i, v := range trace.Volts {
		out[i] = float64(v)
	}
	return out
}

func writeSamplesFile(name string, samples []float64, trace *waveform.Trace) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	if err := writeSamples(f, samples, trace); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return f.Close()
}

// writeSamples writes index,value rows, or time_s,volts rows for a scaled trace.
func writeSamples(w io.Writer, samples []float64, trace *waveform.Trace) error {
	cw := csv.NewWriter(w)

	if trace != nil {
		if err := cw.Write([]string{"time_s", "volts"}); err != nil {
			return err
		}
		for i, v := range trace.Volts {
			row := []string{
				strconv.FormatFloat(trace.Times[i], 'g', -1, 64),
				strconv.FormatFloat(float64(v), 'g', -1, 32),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	} else {
		if err := cw.Write([]string{"index", "value"}); err != nil {
			return err
		}
		for i, v := range samples {
			if err := cw.Write([]string{strconv.Itoa(i), strconv.FormatFloat(v, 'g', -1, 64)}); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// printSummary prints amplitude statistics, a decimated preview and, for scaled traces,
// the edges steeper than threshold.
func printSummary(w io.Writer, req scope.AcquireRequest, samples []float64, trace *waveform.Trace, preview int, threshold float64) error {
	vals := values(samples, trace)
	unit := ""
	if trace != nil {
		unit = " V"
	}

	volts := make([]float32, len(vals))
	for i, v := range vals {
		volts[i] = float32(v)
	}
	st := waveform.Measure(volts)

	fmt.Fprintf(w, "%s %s %s points %s: %d samples\n", req.Channel, req.Mode, req.Format, req.Range, st.Count)
	if st.Count == 0 {
		return nil
	}
	fmt.Fprintf(w, "  min %g%s  max %g%s  mean %g%s  rms %g%s  pk-pk %g%s\n",
		st.Min, unit, st.Max, unit, st.Mean, unit, st.RMS, unit, st.PeakToPeak, unit)

	if preview > 0 {
		points := waveform.Downsample(nil, vals, preview)
		tokens := make([]string, len(points))
		for i, v := range points {
			tokens[i] = strconv.FormatFloat(v, 'g', 5, 64)
		}
		fmt.Fprintf(w, "  preview: %s\n", strings.Join(tokens, " "))
	}

	if threshold > 0 && trace != nil && len(trace.Times) > 1 {
		dt := trace.Times[1] - trace.Times[0]
		edges := waveform.Edges(vals, dt, threshold)
		fmt.Fprintf(w, "  edges: %d\n", len(edges))
		for _, e := range edges {
			dir := "falling"
			if e.Rising {
				dir = "rising"
			}
			fmt.Fprintf(w, "    %-7s t=%g s  samples %d..%d  peak %g V/s\n",
				dir, trace.Times[e.StartIndex], e.StartIndex, e.EndIndex, e.PeakSlope)
		}
	}
	return nil
}
