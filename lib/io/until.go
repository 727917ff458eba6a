package iolib

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
)

const DefaultChunkSize = 1024

// UntilReader reads the underlying reader in fixed-size chunks and keeps
// whatever was read past a delimiter, so the next Read or ReadUntil
// continues right after it.
type UntilReader struct {
	r     io.Reader
	chunk []byte
	buf   []byte // read from r, not handed out yet
}

func NewUntilReader(r io.Reader) *UntilReader {
	return NewUntilReaderSize(r, DefaultChunkSize)
}

func NewUntilReaderSize(r io.Reader, size int) *UntilReader {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return &UntilReader{r: r, chunk: make([]byte, size)}
}

func (ur *UntilReader) Read(p []byte) (n int, err error) {
	if len(ur.buf) > 0 {
		n = copy(p, ur.buf)
		ur.take(n)
		return n, nil
	}

	return ur.r.Read(p)
}

var (
	ErrZeroLenDelim  = errors.New("delim has zero length")
	ErrLimitExceeded = errors.New("delim not found within limit")
)

// ReadUntil reads until delim. The output will include delim.
// If the underlying reader fails before delim shows up,
// everything read so far is returned with the error.
func (ur *UntilReader) ReadUntil(delim []byte) ([]byte, error) {
	return ur.ReadUntilLimit(delim, 0)
}

// ReadUntilLimit is [UntilReader.ReadUntil] that gives up with [ErrLimitExceeded]
// once at least limit bytes are buffered without finding delim.
// Zero limit means no limit.
func (ur *UntilReader) ReadUntilLimit(delim []byte, limit uint) ([]byte, error) {
	if len(delim) == 0 {
		return nil, ErrZeroLenDelim
	}

	searched := 0
	for {
		if idx := bytes.Index(ur.buf[searched:], delim); idx >= 0 {
			return ur.take(searched + idx + len(delim)), nil
		}

		if limit > 0 && uint(len(ur.buf)) >= limit {
			return ur.take(len(ur.buf)), ErrLimitExceeded
		}

		// The tail could hold the first half of delim.
		searched = max(0, len(ur.buf)-len(delim)+1)

		n, err := ur.r.Read(ur.chunk)
		ur.buf = append(ur.buf, ur.chunk[:n]...)

		if err != nil {
			if idx := bytes.Index(ur.buf[searched:], delim); idx >= 0 {
				return ur.take(searched + idx + len(delim)), nil
			}
			return ur.take(len(ur.buf)), err
		}
	}
}

func (ur *UntilReader) take(n int) []byte {
	out := bytes.Clone(ur.buf[:n])
	ur.buf = ur.buf[n:]
	if len(ur.buf) == 0 {
		ur.buf = nil
	}
	return out
}
