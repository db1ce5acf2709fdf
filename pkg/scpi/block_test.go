package scpi

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadReply(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "line", in: "1\n", want: []string{"1"}},
		{name: "crlf line", in: "2.000000E-03\r\n", want: []string{"2.000000E-03"}},
		{name: "block with terminator", in: "#15ab\ncd\n", want: []string{"#15ab\ncd"}},
		{name: "block then line", in: "#13\x00\x01\x02\n1\n", want: []string{"#13\x00\x01\x02", "1"}},
		{name: "leading terminators", in: "\r\n\n#12xy", want: []string{"#12xy"}},
		{name: "two lines", in: "RIGOL,DS4024\n1\n", want: []string{"RIGOL,DS4024", "1"}},
		{name: "block longer than declared", in: "#9000000010" + "1.0,2.0,3.0\n1\n", want: []string{"#90000000101.0,2.0,3.0", "1"}},
		{name: "block with crlf", in: "#12xy\r\n1\n", want: []string{"#12xy", "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := bufio.NewReader(bytes.NewReader([]byte(tt.in)))
			for _, want := range tt.want {
				got, err := readReply(r)
				require.NoError(t, err)
				assert.Equal(t, want, string(got))
			}
		})
	}
}

func TestReadReplyErrors(t *testing.T) {
	t.Run("truncated block", func(t *testing.T) {
		r := bufio.NewReader(bytes.NewReader([]byte("#15ab")))
		_, err := readReply(r)
		assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	})

	t.Run("bad digit count", func(t *testing.T) {
		r := bufio.NewReader(bytes.NewReader([]byte("#x12\n")))
		_, err := readReply(r)
		assert.ErrorIs(t, err, ErrBlockHeader)
	})

	t.Run("oversized block", func(t *testing.T) {
		r := bufio.NewReader(bytes.NewReader([]byte("#9999999999abc\n")))
		_, err := readReply(r)
		assert.ErrorIs(t, err, ErrBlockHeader)
	})

	t.Run("unterminated line", func(t *testing.T) {
		r := bufio.NewReader(bytes.NewReader([]byte("12")))
		_, err := readReply(r)
		assert.ErrorIs(t, err, io.EOF)
	})
}
