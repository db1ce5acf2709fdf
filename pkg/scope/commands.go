package scope

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/itohio/gorigol/pkg/waveform"
)

// Run starts continuous acquisition.
func (s *Session) Run() error { return s.write(":RUN") }

// Stop halts acquisition.
func (s *Session) Stop() error { return s.write(":STOP") }

// Clear erases all waveforms on the screen.
func (s *Session) Clear() error { return s.write(":CLEar") }

// Autoscale lets the instrument pick vertical, horizontal and trigger settings.
func (s *Session) Autoscale() error { return s.write(":AUToscale") }

// Single arms a single trigger. Acquisition stops after the next trigger.
func (s *Session) Single() error { return s.write(":SINGle") }

// SelectChannel selects the waveform source.
func (s *Session) SelectChannel(ch Channel) error {
	if !ch.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidChannel, int(ch))
	}
	return s.write(":WAVeform:SOURce " + ch.String())
}

// SelectMode selects which samples are read.
func (s *Session) SelectMode(m Mode) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, string(m))
	}
	return s.write(":WAV:MODE " + string(m))
}

// SelectFormat selects the data encoding.
func (s *Session) SelectFormat(f waveform.Format) error {
	if !f.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, string(f))
	}
	return s.write(":WAVeform:FORMat " + string(f))
}

// SetPointRange sets the first and last point read. The format limit is not checked here.
func (s *Session) SetPointRange(r PointRange) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if err := s.write(":WAV:STAR " + strconv.Itoa(r.Start)); err != nil {
		return err
	}
	return s.write(":WAV:STOP " + strconv.Itoa(r.End))
}

// SetPoints sets the number of waveform points.
func (s *Session) SetPoints(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: %d points", ErrInvalidRange, n)
	}
	return s.write(":WAVeform:POINts " + strconv.Itoa(n))
}

// OperationComplete reports whether all pending operations have finished.
func (s *Session) OperationComplete() (bool, error) {
	n, err := s.queryInt("*OPC?")
	if err != nil {
		return false, err
	}
	return n != 0, nil
}

// WaitComplete polls *OPC? until it reports completion or ctx is done.
func (s *Session) WaitComplete(ctx context.Context) error {
	return s.waitFor(ctx, s.OperationComplete)
}

// TriggerStatus returns the trigger state: TD, WAIT, RUN, AUTO or STOP.
func (s *Session) TriggerStatus() (string, error) {
	reply, err := s.query(":TRIGger:STATus?")
	if err != nil {
		return "", err
	}
	return strings.ToUpper(strings.TrimSpace(string(reply))), nil
}

// WaitStopped polls the trigger status until acquisition has stopped or ctx is done.
func (s *Session) WaitStopped(ctx context.Context) error {
	return s.waitFor(ctx, func() (bool, error) {
		status, err := s.TriggerStatus()
		return status == "STOP", err
	})
}

func (s *Session) waitFor(ctx context.Context, done func() (bool, error)) error {
	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	for {
		ok, err := done()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// MemoryDepth returns the number of points in acquisition memory.
func (s *Session) MemoryDepth() (int, error) {
	depth, err := s.queryInt(":ACQuire:MDEPth?")
	if err != nil {
		return 0, err
	}
	s.log.Info("current memory depth", "memory_depth", depth)
	return depth, nil
}

// SampleRate returns the current sample rate in samples per second.
func (s *Session) SampleRate() (float64, error) {
	rate, err := s.queryFloat(":ACQuire:SRATe?")
	if err != nil {
		return 0, err
	}
	s.log.Info("current sample rate", "sample_rate", rate)
	return rate, nil
}

// Timebase returns the horizontal scale in seconds per division.
func (s *Session) Timebase() (float64, error) {
	tb, err := s.queryFloat(":TIMebase:SCALe?")
	if err != nil {
		return 0, err
	}
	s.log.Info("current horizontal time base", "timebase_s", tb)
	return tb, nil
}

// WindowDuration returns the time spanned by the full display width.
func (s *Session) WindowDuration() (time.Duration, error) {
	tb, err := s.Timebase()
	if err != nil {
		return 0, err
	}
	return time.Duration(tb * HorizontalGrids * float64(time.Second)), nil
}

// Identify queries *IDN?.
func (s *Session) Identify() (Identity, error) {
	reply, err := s.query("*IDN?")
	if err != nil {
		return Identity{}, err
	}
	fields := strings.Split(strings.TrimSpace(string(reply)), ",")
	if len(fields) != 4 {
		return Identity{}, fmt.Errorf("%w: *IDN? returned %q", ErrMalformedReply, reply)
	}
	return Identity{
		Manufacturer: strings.TrimSpace(fields[0]),
		Model:        strings.TrimSpace(fields[1]),
		Serial:       strings.TrimSpace(fields[2]),
		Firmware:     strings.TrimSpace(fields[3]),
	}, nil
}

// Preamble reads the scaling parameters of the current waveform settings.
func (s *Session) Preamble() (waveform.Preamble, error) {
	reply, err := s.query(":WAVeform:PREamble?")
	if err != nil {
		return waveform.Preamble{}, err
	}
	return waveform.ParsePreamble(string(reply))
}

// WaveformPayload returns the raw :WAV:DATA? reply, header included.
func (s *Session) WaveformPayload() ([]byte, error) {
	return s.query(":WAV:DATA?")
}

// SaveCSV makes the instrument write the current waveform as CSV to the USB drive in
// mount. No data is transferred to the host.
func (s *Session) SaveCSV(mount MountPoint, name string) error {
	prefix, ok := mount.Prefix()
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidMountPoint, string(mount))
	}
	name = strings.TrimLeft(name, "/")
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidFileName)
	}
	if strings.ContainsFunc(name, unicode.IsControl) {
		return fmt.Errorf("%w: control character in %q", ErrInvalidFileName, name)
	}
	path := prefix + name
	s.log.Info("saving waveform on instrument", "path", path)
	return s.write(":SAVE:CSV:STARt " + path)
}

func (s *Session) queryInt(cmd string) (int, error) {
	reply, err := s.query(cmd)
	if err != nil {
		return 0, err
	}
	text := strings.TrimSpace(string(reply))
	if n, err := strconv.Atoi(text); err == nil {
		return n, nil
	}
	// some firmware answers integers in exponent notation
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %s returned %q, expected an integer", ErrMalformedReply, cmd, text)
	}
	return int(f), nil
}

func (s *Session) queryFloat(cmd string) (float64, error) {
	reply, err := s.query(cmd)
	if err != nil {
		return 0, err
	}
	text := strings.TrimSpace(string(reply))
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s returned %q, expected a number", ErrMalformedReply, cmd, text)
	}
	return f, nil
}
