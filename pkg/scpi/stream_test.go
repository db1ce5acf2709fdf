package scpi

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn is a ReadWriteCloser with canned input.
type fakeConn struct {
	in     *bytes.Reader
	out    bytes.Buffer
	closes int
	err    error
}

func newFakeConn(in string) *fakeConn {
	return &fakeConn{in: bytes.NewReader([]byte(in))}
}

func (c *fakeConn) Read(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	return c.in.Read(p)
}

func (c *fakeConn) Write(p []byte) (int, error) { return c.out.Write(p) }

func (c *fakeConn) Close() error {
	c.closes++
	return nil
}

func TestStreamQuery(t *testing.T) {
	conn := newFakeConn("1\n#13abc\n")
	s := newStream(conn, 0)

	require.NoError(t, s.Write(":STOP"))

	reply, err := s.Query("*OPC?")
	require.NoError(t, err)
	assert.Equal(t, "1", string(reply))

	reply, err = s.Query(":WAV:DATA?")
	require.NoError(t, err)
	assert.Equal(t, "#13abc", string(reply))

	assert.Equal(t, ":STOP\n*OPC?\n:WAV:DATA?\n", conn.out.String())
}

func TestStreamStaysInSyncAfterMiscountedBlock(t *testing.T) {
	conn := newFakeConn("#9000000010" + "1.0,2.0,3.0\n" + "1\n")
	s := newStream(conn, 0)

	reply, err := s.Query(":WAV:DATA?")
	require.NoError(t, err)
	assert.Equal(t, "#90000000101.0,2.0,3.0", string(reply))

	reply, err = s.Query("*OPC?")
	require.NoError(t, err)
	assert.Equal(t, "1", string(reply))
}

func TestStreamTimeout(t *testing.T) {
	conn := newFakeConn("")
	conn.err = ErrTimeout
	s := newStream(conn, 64)

	_, err := s.Query(":ACQ:SRAT?")
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Contains(t, err.Error(), ":ACQ:SRAT?")
}

func TestStreamArm(t *testing.T) {
	conn := newFakeConn("")
	s := newStream(conn, 64)
	armErr := errors.New("deadline")
	s.arm = func() error { return armErr }

	err := s.Write(":RUN")
	assert.ErrorIs(t, err, armErr)
	assert.Empty(t, conn.out.String())
}

func TestStreamClose(t *testing.T) {
	conn := newFakeConn("")
	s := newStream(conn, 64)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, conn.closes)

	assert.ErrorIs(t, s.Write(":RUN"), ErrClosed)
	_, err := s.Query("*OPC?")
	assert.ErrorIs(t, err, ErrClosed)
}
