package iolib

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteFull(t *testing.T) {
	data := []byte("Hello, World!")
	var buf bytes.Buffer

	written, err := WriteFull(&buf, data)
	assert.NoError(t, err)
	assert.Equal(t, uint(len(data)), written)
	assert.Equal(t, data, buf.Bytes())
}

// trickleWriter accepts at most two bytes per call.
type trickleWriter struct{ buf bytes.Buffer }

func (w *trickleWriter) Write(p []byte) (int, error) {
	if len(p) > 2 {
		p = p[:2]
	}
	return w.buf.Write(p)
}

func TestWriteFullShortWrites(t *testing.T) {
	data := []byte("GET / HTTP/1.1\r\n")
	w := &trickleWriter{}

	written, err := WriteFull(w, data)
	assert.NoError(t, err)
	assert.Equal(t, uint(len(data)), written)
	assert.Equal(t, data, w.buf.Bytes())
}

type stuckWriter struct{}

func (stuckWriter) Write(p []byte) (int, error) { return 0, nil }

func TestWriteFullStuck(t *testing.T) {
	written, err := WriteFull(stuckWriter{}, []byte("x"))
	assert.ErrorIs(t, err, io.ErrShortWrite)
	assert.Zero(t, written)
}

func TestLimitReader(t *testing.T) {
	lr := LimitReader(bytes.NewReader([]byte("Hello, World!")), 5)

	b, err := io.ReadAll(lr)
	assert.NoError(t, err)
	assert.Equal(t, []byte("Hello"), b)
	assert.True(t, lr.Exhausted())

	lr = LimitReader(bytes.NewReader([]byte("Hi")), 5)
	b, err = io.ReadAll(lr)
	assert.NoError(t, err)
	assert.Equal(t, []byte("Hi"), b)
	assert.False(t, lr.Exhausted())
}
