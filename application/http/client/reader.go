package client

import (
	"bytes"
	"io"

	"nomad/application/http"
	"nomad/application/util/rule"
	iolib "nomad/lib/io"

	"github.com/pkg/errors"
)

// readResponse returns the raw response bytes. An incomplete response is returned
// as it is, so that the parser reports what is wrong with it.
func readResponse(r io.Reader, opts ReceiveOptions) ([]byte, error) {
	switch opts.Framing {
	case FramingShortRead:
		return readShort(r, opts.bufferSize())
	default:
		return readContentLength(r, opts)
	}
}

func readShort(r io.Reader, size int) ([]byte, error) {
	chunk := make([]byte, size)

	var data []byte
	for {
		n, err := r.Read(chunk)
		data = append(data, chunk[:n]...)

		if err != nil {
			if errors.Is(err, io.EOF) {
				return data, nil
			}
			return nil, errors.Wrap(err, "reading response")
		}

		if n < size {
			return data, nil
		}
	}
}

func readContentLength(r io.Reader, opts ReceiveOptions) ([]byte, error) {
	ur := iolib.NewUntilReaderSize(r, opts.bufferSize())

	head, complete, err := readHead(ur, opts.MaxHeadSize)
	if err != nil {
		return nil, err
	}
	if !complete {
		return head, nil
	}

	h, _, err := http.NewResponseDecoder(opts.Decode).DecodeHead(head)
	if err != nil {
		return head, nil
	}

	n, declared, err := h.Headers.ContentLength()
	if err != nil {
		return head, nil
	}

	limit := opts.MaxContentLength
	if declared && limit > 0 && n > uint64(limit) {
		return nil, http.NewError(http.KindHTTPParse, errors.Errorf(
			"Content-Length %d exceeds limit %d", n, limit))
	}

	var (
		body     io.Reader = ur
		overflow *iolib.LimitedReader
	)
	switch {
	case declared:
		body = iolib.LimitReader(ur, uint(n))
	case limit > 0:
		// One more byte tells an oversized body apart.
		overflow = iolib.LimitReader(ur, limit+1)
		body = overflow
	}

	rest, err := io.ReadAll(body)
	if err != nil {
		return nil, errors.Wrap(err, "reading body")
	}

	if overflow != nil && overflow.Exhausted() {
		return nil, http.NewError(http.KindHTTPParse, errors.Errorf(
			"body exceeds limit %d", limit))
	}

	return append(head, rest...), nil
}

// readHead reads up to and including the blank line.
// complete is false when the peer closed before it.
func readHead(ur *iolib.UntilReader, maxSize uint) (head []byte, complete bool, err error) {
	lf := []byte{rule.LF}
	errTooLarge := func(cause error) error {
		return http.NewError(http.KindHTTPParse, errors.Wrapf(cause, "head exceeds %d bytes", maxSize))
	}

	for {
		// Whatever is left of maxSize bounds the next line.
		var limit uint
		if maxSize > 0 {
			limit = maxSize - uint(len(head))
		}

		line, err := ur.ReadUntilLimit(lf, limit)
		head = append(head, line...)

		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				return head, false, nil
			case errors.Is(err, iolib.ErrLimitExceeded):
				return nil, false, errTooLarge(err)
			}
			return nil, false, errors.Wrap(err, "reading head")
		}

		if isBlankLine(line) {
			return head, true, nil
		}

		if maxSize > 0 && uint(len(head)) >= maxSize {
			return nil, false, errTooLarge(iolib.ErrLimitExceeded)
		}
	}
}

func isBlankLine(line []byte) bool {
	return bytes.Equal(line, rule.CRLF) || bytes.Equal(line, []byte{rule.LF})
}
