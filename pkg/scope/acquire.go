package scope

import (
	"context"
	"fmt"

	"github.com/itohio/gorigol/pkg/waveform"
)

// Validate checks req against the channel, mode and format sets and the point limit of
// the requested format.
func (s *Session) Validate(req AcquireRequest) error {
	if !req.Channel.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidChannel, int(req.Channel))
	}
	if !req.Mode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, string(req.Mode))
	}
	if !req.Format.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, string(req.Format))
	}
	if err := req.Range.Validate(); err != nil {
		return err
	}
	if limit := s.MaxPoints(req.Format); req.Range.Size() > limit {
		return fmt.Errorf("%w: %d points requested, %s allows %d",
			ErrRangeExceedsFormatLimit, req.Range.Size(), req.Format, limit)
	}
	return nil
}

// Acquire reads and decodes one waveform window.
//
// Acquisition is stopped first, then the source, mode, format and range are set in that
// order before the data is fetched. An invalid request fails before anything is sent.
// Any failure aborts the sequence without retry.
func (s *Session) Acquire(req AcquireRequest) ([]float64, error) {
	if err := s.Validate(req); err != nil {
		return nil, err
	}

	steps := []func() error{
		s.Stop,
		func() error { return s.SelectChannel(req.Channel) },
		func() error { return s.SelectMode(req.Mode) },
		func() error { return s.SelectFormat(req.Format) },
		func() error { return s.SetPointRange(req.Range) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}

	payload, err := s.WaveformPayload()
	if err != nil {
		return nil, err
	}

	samples, err := s.decoder.Decode(payload, req.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s waveform of %s: %w", req.Format, req.Channel, err)
	}

	s.log.Debug("waveform acquired", "channel", int(req.Channel), "mode", string(req.Mode),
		"format", string(req.Format), "range", req.Range.String(), "samples", len(samples))
	return samples, nil
}

// AcquireAveraged returns the point-wise mean of n acquisitions of the same window.
// The first frame is the waveform already in memory; every further frame arms a single
// trigger and waits for the acquisition to stop before reading.
func (s *Session) AcquireAveraged(ctx context.Context, req AcquireRequest, n int) ([]float64, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d acquisitions", ErrInvalidCount, n)
	}
	if err := s.Validate(req); err != nil {
		return nil, err
	}

	frames := make([][]float64, 0, n)
	for i := 0; i < n; i++ {
		if i > 0 {
			if err := s.Single(); err != nil {
				return nil, err
			}
			if err := s.WaitStopped(ctx); err != nil {
				return nil, fmt.Errorf("failed to wait for frame %d: %w", i+1, err)
			}
		}

		samples, err := s.Acquire(req)
		if err != nil {
			return nil, err
		}
		frames = append(frames, samples)
	}

	avg, err := waveform.Average(frames)
	if err != nil {
		return nil, fmt.Errorf("failed to average %d frames: %w", n, err)
	}
	return avg, nil
}

// AcquireVolts reads a waveform window and scales it with the preamble of the same
// settings.
func (s *Session) AcquireVolts(req AcquireRequest) (waveform.Trace, error) {
	samples, err := s.Acquire(req)
	if err != nil {
		return waveform.Trace{}, err
	}

	pre, err := s.Preamble()
	if err != nil {
		return waveform.Trace{}, err
	}
	if pre.Format != req.Format {
		s.log.Warn("preamble format differs from the request", "preamble", string(pre.Format),
			"request", string(req.Format))
	}
	return pre.Trace(samples, req.Format, req.Range.First()), nil
}
