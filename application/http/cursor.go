package http

import (
	"bytes"

	"github.com/pkg/errors"
)

var errDelimNotFound = errors.New("delimiter not found")

// cursor is a read position over an immutable buffer.
// It never moves past the end of buf.
type cursor struct {
	buf []byte
	pos int
}

func newCursor(buf []byte, pos int) *cursor {
	return &cursor{buf: buf, pos: min(pos, len(buf))}
}

// advancePast returns the bytes before the next delim and moves right after delim.
// If delim is absent the cursor stays where it is.
func (c *cursor) advancePast(delim byte) ([]byte, error) {
	idx := bytes.IndexByte(c.buf[c.pos:], delim)
	if idx < 0 {
		return nil, errors.WithMessagef(errDelimNotFound, "%q after offset %d", delim, c.pos)
	}

	before := c.buf[c.pos : c.pos+idx]
	c.pos += idx + 1

	return before, nil
}

// peekUntil returns the bytes before the first of delims without moving.
// With none of delims present, it returns the rest of the buffer.
func (c *cursor) peekUntil(delims ...byte) []byte {
	rest := c.buf[c.pos:]
	if idx := bytes.IndexAny(rest, string(delims)); idx >= 0 {
		return rest[:idx]
	}
	return rest
}

func (c *cursor) rest() []byte { return c.buf[c.pos:] }
