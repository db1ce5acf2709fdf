package scpi

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/itohio/gorigol/pkg/waveform"
)

// MaxBlockLength is the largest block content accepted from the instrument, a full
// WORD window plus room for a long ASCII reply.
const MaxBlockLength = 1 << 20

// readReply reads one reply from a byte stream. A reply starting with '#' is a binary
// block whose size is taken from its header, anything else ends at '\n'.
// The terminator is not included.
func readReply(r *bufio.Reader) ([]byte, error) {
	// a terminator left over from a previous block
	for {
		b, err := r.Peek(1)
		if err != nil {
			return nil, err
		}
		if b[0] != '\n' && b[0] != '\r' {
			break
		}
		_, _ = r.ReadByte()
	}

	head, err := r.Peek(2)
	if err != nil {
		return nil, err
	}
	if head[0] != '#' {
		line, err := r.ReadBytes('\n')
		if err != nil {
			return nil, err
		}
		return bytes.TrimRight(line, "\r\n"), nil
	}

	n := int(head[1]) - '0'
	if n < 1 || n > 9 {
		return nil, fmt.Errorf("%w: invalid digit count %q", ErrBlockHeader, head[1])
	}
	prefix, err := r.Peek(2 + n)
	if err != nil {
		return nil, err
	}
	headerLen, length, err := waveform.ParseBlockHeader(prefix)
	if err != nil {
		return nil, err
	}
	if length > MaxBlockLength {
		return nil, fmt.Errorf("%w: declared length %d exceeds %d", ErrBlockHeader, length, MaxBlockLength)
	}

	block := make([]byte, headerLen+length)
	if _, err := io.ReadFull(r, block); err != nil {
		return nil, err
	}

	// ASCII blocks may declare fewer bytes than sent; the rest runs up to the terminator.
	b, err := r.Peek(1)
	if err != nil {
		return block, nil
	}
	if b[0] == '\n' {
		_, _ = r.ReadByte()
		return block, nil
	}
	tail, err := r.ReadBytes('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return append(block, bytes.TrimRight(tail, "\r\n")...), nil
}
