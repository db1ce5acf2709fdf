package logger

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    Level
		wantErr bool
	}{
		{"debug", DebugLevel, false},
		{"INFO", InfoLevel, false},
		{"", InfoLevel, false},
		{"warning", WarnLevel, false},
		{"error", ErrorLevel, false},
		{"verbose", InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSlogLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlog(Options{Level: InfoLevel, Output: &buf})

	l.Debug("hidden")
	l.With("transport", "mock").Info("current memory depth", "depth", 280000)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "current memory depth", rec["msg"])
	assert.Equal(t, "mock", rec["transport"])
	assert.Equal(t, float64(280000), rec["depth"])
	assert.Contains(t, rec, "ts")
}

func TestSlogLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlog(Options{Level: ErrorLevel, Output: &buf})
	assert.Equal(t, ErrorLevel, l.Level())

	l.Info("dropped")
	assert.Zero(t, buf.Len())

	l.SetLevel(DebugLevel)
	assert.Equal(t, DebugLevel, l.Level())
	l.Debug("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestSlogLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rigol.log")
	var buf bytes.Buffer
	l := NewSlog(Options{
		Level:  InfoLevel,
		Output: &buf,
		File:   &FileOptions{Path: path, MaxSizeMB: 1},
	})
	l.Info("to file")
	require.NoError(t, l.Close())

	assert.FileExists(t, path)
	assert.Contains(t, buf.String(), "to file")
}

func TestMockLogger(t *testing.T) {
	m := NewMockLogger()
	m.On("Info", "hello", []any{"k", 1}).Return()

	m.Info("hello", "k", 1)
	m.AssertExpectations(t)
}
