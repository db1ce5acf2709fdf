package scpi

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/itohio/gorigol/pkg/config"
)

// Simulated instrument geometry.
const (
	mockScreenPoints = 1400
	mockGrids        = 14
)

var mockMaxPoints = map[string]int{"BYTE": 250000, "WORD": 125000, "ASC": 15625}

// longForms maps long SCPI mnemonics to their short form.
var longForms = map[string]string{
	"WAVEFORM":  "WAV",
	"SOURCE":    "SOUR",
	"FORMAT":    "FORM",
	"ASCII":     "ASC",
	"ACQUIRE":   "ACQ",
	"MDEPTH":    "MDEP",
	"SRATE":     "SRAT",
	"TIMEBASE":  "TIM",
	"SCALE":     "SCAL",
	"POINTS":    "POIN",
	"PREAMBLE":  "PRE",
	"START":     "STAR",
	"CLEAR":     "CLE",
	"AUTOSCALE": "AUT",
	"SINGLE":    "SING",
	"NORMAL":    "NORM",
	"MAXIMUM":   "MAX",
	"TRIGGER":   "TRIG",
	"STATUS":    "STAT",
}

// Mock simulates an oscilloscope answering the waveform command set, for testing and
// development without hardware.
type Mock struct {
	cfg *config.MockConfig

	mu     sync.Mutex
	closed bool
	calls  []Call
	saved  []string

	// Instrument state
	running bool
	channel int
	mode    string
	format  string
	start   int
	stop    int
	points  int
}

// NewMock creates a simulated instrument.
func NewMock(cfg *config.MockConfig) *Mock {
	if cfg == nil {
		cfg = &config.MockConfig{
			Frequency:   1000,
			Amplitude:   1.0,
			NoiseLevel:  0.01,
			MemoryDepth: 280000,
			SampleRate:  1e6,
			Timebase:    1e-3,
		}
	}
	m := &Mock{cfg: cfg}
	m.reset()
	return m
}

func (m *Mock) reset() {
	m.running = true
	m.channel = 1
	m.mode = "NORM"
	m.format = "BYTE"
	m.start = 1
	m.stop = mockScreenPoints
	m.points = mockScreenPoints
}

func (m *Mock) Write(cmd string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.calls = append(m.calls, Call{Cmd: cmd})

	header, arg := canonical(cmd)
	switch header {
	case "*RST":
		m.reset()
	case ":RUN":
		m.running = true
	case ":STOP", ":SING":
		m.running = false
	case ":WAV:SOUR":
		if n, err := strconv.Atoi(strings.TrimPrefix(token(arg), "CHAN")); err == nil && n >= 1 && n <= 4 {
			m.channel = n
		}
	case ":WAV:MODE":
		if t := token(arg); t == "NORM" || t == "MAX" || t == "RAW" {
			m.mode = t
		}
	case ":WAV:FORM":
		if t := token(arg); mockMaxPoints[t] > 0 {
			m.format = t
		}
	case ":WAV:STAR":
		if n, err := strconv.Atoi(arg); err == nil {
			m.start = n
		}
	case ":WAV:STOP":
		if n, err := strconv.Atoi(arg); err == nil {
			m.stop = n
		}
	case ":WAV:POIN":
		if n, err := strconv.Atoi(arg); err == nil {
			m.points = n
		}
	case ":SAVE:CSV:STAR":
		m.saved = append(m.saved, arg)
	}
	// Unknown commands are ignored, as the instrument does.
	return nil
}

func (m *Mock) Query(cmd string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}
	m.calls = append(m.calls, Call{Query: true, Cmd: cmd})
	if m.cfg.Latency > 0 {
		time.Sleep(m.cfg.Latency)
	}

	header, _ := canonical(cmd)
	switch header {
	case "*IDN?":
		return []byte("RIGOL TECHNOLOGIES,MSO4024,MOCK00000001,00.02.03.SP1"), nil
	case "*OPC?":
		return []byte("1"), nil
	case ":TRIG:STAT?":
		if m.running {
			return []byte("RUN"), nil
		}
		return []byte("STOP"), nil
	case ":ACQ:MDEP?":
		return []byte(strconv.Itoa(m.cfg.MemoryDepth)), nil
	case ":ACQ:SRAT?":
		return []byte(strconv.FormatFloat(m.cfg.SampleRate, 'E', 6, 64)), nil
	case ":TIM:SCAL?":
		return []byte(strconv.FormatFloat(m.cfg.Timebase, 'E', 6, 64)), nil
	case ":WAV:PRE?":
		return []byte(m.preamble(len(m.window()))), nil
	case ":WAV:DATA?":
		return m.data(), nil
	}
	return nil, fmt.Errorf("%w: no reply to %q", ErrTimeout, cmd)
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Commands returns the received command text in order.
func (m *Mock) Commands() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]string, len(m.calls))
	for i, c := range m.calls {
		result[i] = c.Cmd
	}
	return result
}

// Saved returns the paths passed to :SAVE:CSV:STARt.
func (m *Mock) Saved() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]string, len(m.saved))
	copy(result, m.saved)
	return result
}

// Running reports whether acquisition is running.
func (m *Mock) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// xIncrement returns the time between two samples of the current mode.
func (m *Mock) xIncrement() float64 {
	if m.mode == "NORM" {
		return m.cfg.Timebase * mockGrids / mockScreenPoints
	}
	return 1 / m.cfg.SampleRate
}

func (m *Mock) xOrigin() float64 {
	return -m.cfg.Timebase * mockGrids / 2
}

func (m *Mock) yIncrement() float64 {
	span := (math.Abs(m.cfg.Amplitude) + math.Abs(m.cfg.Offset) + m.cfg.NoiseLevel) * 1.25
	if span == 0 {
		span = 1
	}
	if m.format == "WORD" {
		return span / 25600
	}
	return span / 100
}

func (m *Mock) yReference() float64 {
	if m.format == "WORD" {
		return 32768
	}
	return 127
}

// window returns the simulated signal for the configured start/stop range, silently
// truncated to what the mode and format allow.
func (m *Mock) window() []float64 {
	depth := m.cfg.MemoryDepth
	if m.mode == "NORM" {
		depth = mockScreenPoints
	}
	start := max(m.start, 1)
	stop := min(m.stop, depth)
	n := stop - start + 1
	if n <= 0 {
		return []float64{}
	}
	n = min(n, mockMaxPoints[m.format])

	xinc := m.xIncrement()
	values := make([]float64, n)
	for i := range values {
		idx := float64(start - 1 + i)
		t := idx*xinc + m.xOrigin()
		noise := math.Sin(idx*12.9898+float64(m.channel)) * m.cfg.NoiseLevel
		values[i] = m.cfg.Offset + m.cfg.Amplitude*math.Sin(2*math.Pi*m.cfg.Frequency*t) + noise
	}
	return values
}

func (m *Mock) preamble(points int) string {
	formats := map[string]int{"BYTE": 0, "WORD": 1, "ASC": 2}
	modes := map[string]int{"NORM": 0, "MAX": 1, "RAW": 2}
	return fmt.Sprintf("%d,%d,%d,1,%e,%e,0,%e,0,%e",
		formats[m.format], modes[m.mode], points,
		m.xIncrement(), m.xOrigin(), m.yIncrement(), m.yReference())
}

func (m *Mock) data() []byte {
	values := m.window()

	var content []byte
	switch m.format {
	case "ASC":
		tokens := make([]string, len(values))
		for i, v := range values {
			tokens[i] = strconv.FormatFloat(v, 'e', 6, 64)
		}
		content = []byte(strings.Join(tokens, ","))
	case "WORD":
		content = make([]byte, 2*len(values))
		for i, v := range values {
			binary.LittleEndian.PutUint16(content[2*i:], uint16(m.code(v, 65535)))
		}
	default:
		content = make([]byte, len(values))
		for i, v := range values {
			content[i] = byte(m.code(v, 255))
		}
	}

	block := []byte(fmt.Sprintf("#9%09d", len(content)))
	return append(block, content...)
}

func (m *Mock) code(v float64, limit float64) float64 {
	c := math.Round(v/m.yIncrement()) + m.yReference()
	return math.Max(0, math.Min(limit, c))
}

// canonical upper-cases the command header and reduces long mnemonics to their short
// form. The argument is returned as sent.
func canonical(cmd string) (header, arg string) {
	header, arg, _ = strings.Cut(strings.TrimSpace(cmd), " ")
	header = strings.ToUpper(header)
	if !strings.HasPrefix(header, ":") && !strings.HasPrefix(header, "*") {
		header = ":" + header
	}

	nodes := strings.Split(header, ":")
	for i, n := range nodes {
		q := strings.HasSuffix(n, "?")
		n = strings.TrimSuffix(n, "?")
		if s, ok := longForms[n]; ok {
			n = s
		}
		if q {
			n += "?"
		}
		nodes[i] = n
	}
	header = strings.Join(nodes, ":")

	return header, strings.TrimSpace(arg)
}

// token upper-cases an enumerated argument and reduces it to its short form.
func token(arg string) string {
	arg = strings.ToUpper(arg)
	if strings.HasPrefix(arg, "CHANNEL") {
		arg = "CHAN" + strings.TrimPrefix(arg, "CHANNEL")
	}
	if s, ok := longForms[arg]; ok {
		arg = s
	}
	return arg
}
