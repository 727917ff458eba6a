package client

import (
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"nomad/application/http"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadShort(t *testing.T) {
	testcases := []struct {
		desc     string
		input    string
		size     int
		oneByte  bool
		expected string
	}{
		{desc: "stops at short chunk", input: "abcdef", size: 4, expected: "abcdef"},
		{desc: "full chunks until EOF", input: "abcdefgh", size: 4, expected: "abcdefgh"},
		{desc: "fits in one chunk", input: "abc", size: 1024, expected: "abc"},
		{desc: "empty", input: "", size: 4, expected: ""},
		// The heuristic can't tell a slow peer from a finished one.
		{desc: "slow peer", input: "abcdef", size: 4, oneByte: true, expected: "a"},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			data, err := readShort(maybeOneByte(strings.NewReader(tc.input), tc.oneByte), tc.size)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, string(data))
		})
	}
}

func TestReadShortError(t *testing.T) {
	errBoom := errors.New("boom")
	_, err := readShort(iotest.ErrReader(errBoom), 4)
	assert.ErrorIs(t, err, errBoom)
}

func TestReadContentLength(t *testing.T) {
	testcases := []struct {
		desc     string
		input    string
		opts     ReceiveOptions
		expected string
		wantErr  error
	}{
		{
			desc:     "stops at Content-Length",
			input:    "HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\n{}trailing",
			expected: "HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\n{}",
		},
		{
			desc:     "no Content-Length reads until EOF",
			input:    "HTTP/1.1 200 OK\r\n\r\n[1, 2, 3]",
			expected: "HTTP/1.1 200 OK\r\n\r\n[1, 2, 3]",
		},
		{
			desc:     "sole LF",
			input:    "HTTP/1.1 200 OK\nContent-Length: 4\n\nnullnull",
			expected: "HTTP/1.1 200 OK\nContent-Length: 4\n\nnull",
		},
		{
			desc:     "small chunks",
			input:    "HTTP/1.1 200 OK\r\nContent-Length: 13\r\n\r\n{\"test\":\"aa\"}",
			opts:     ReceiveOptions{BufferSize: 3},
			expected: "HTTP/1.1 200 OK\r\nContent-Length: 13\r\n\r\n{\"test\":\"aa\"}",
		},
		{
			desc:     "head cut short is returned as is",
			input:    "HTTP/1.1 200 OK\r\nHost",
			expected: "HTTP/1.1 200 OK\r\nHost",
		},
		{
			desc:     "body cut short is returned as is",
			input:    "HTTP/1.1 200 OK\r\nContent-Length: 10\r\n\r\n{}",
			expected: "HTTP/1.1 200 OK\r\nContent-Length: 10\r\n\r\n{}",
		},
		{
			desc:     "unparsable head stops reading",
			input:    "HTTP/1.0 200 OK\r\n\r\n{}",
			expected: "HTTP/1.0 200 OK\r\n\r\n",
		},
		{
			desc:    "head line too long",
			input:   "HTTP/1.1 200 " + strings.Repeat("x", 100),
			opts:    ReceiveOptions{MaxHeadSize: 16},
			wantErr: http.ErrHTTPParse,
		},
		{
			desc:    "too many field lines",
			input:   "HTTP/1.1 200 OK\r\n" + strings.Repeat("X-A: b\r\n", 20) + "\r\n{}",
			opts:    ReceiveOptions{MaxHeadSize: 64},
			wantErr: http.ErrHTTPParse,
		},
		{
			desc:     "head within limit",
			input:    "HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\n{}",
			opts:     ReceiveOptions{MaxHeadSize: 64},
			expected: "HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\n{}",
		},
		{
			desc:    "declared body too large",
			input:   "HTTP/1.1 200 OK\r\nContent-Length: 100\r\n\r\n",
			opts:    ReceiveOptions{MaxContentLength: 10},
			wantErr: http.ErrHTTPParse,
		},
		{
			desc:    "undeclared body too large",
			input:   "HTTP/1.1 200 OK\r\n\r\n" + strings.Repeat("1", 20),
			opts:    ReceiveOptions{MaxContentLength: 10},
			wantErr: http.ErrHTTPParse,
		},
		{
			desc:     "undeclared body within limit",
			input:    "HTTP/1.1 200 OK\r\n\r\n" + strings.Repeat("1", 10),
			opts:     ReceiveOptions{MaxContentLength: 10},
			expected: "HTTP/1.1 200 OK\r\n\r\n" + strings.Repeat("1", 10),
		},
	}

	for _, tc := range testcases {
		for _, oneByte := range []bool{false, true} {
			t.Run(tc.desc, func(t *testing.T) {
				data, err := readContentLength(maybeOneByte(strings.NewReader(tc.input), oneByte), tc.opts)
				if tc.wantErr != nil {
					assert.ErrorIs(t, err, tc.wantErr)
					return
				}

				require.NoError(t, err)
				assert.Equal(t, tc.expected, string(data))
			})
		}
	}
}

func TestReadContentLengthError(t *testing.T) {
	errBoom := errors.New("boom")
	r := iotest.TimeoutReader(strings.NewReader("HTTP/1.1 200 OK\r\n"))

	_, err := readContentLength(r, ReceiveOptions{})
	assert.ErrorIs(t, err, iotest.ErrTimeout)

	_, err = readContentLength(iotest.ErrReader(errBoom), ReceiveOptions{})
	assert.ErrorIs(t, err, errBoom)
}

func TestReadResponseFraming(t *testing.T) {
	input := "HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\n{}trailing"

	data, err := readResponse(strings.NewReader(input), ReceiveOptions{Framing: FramingShortRead})
	require.NoError(t, err)
	assert.Equal(t, input, string(data))

	data, err = readResponse(strings.NewReader(input), ReceiveOptions{Framing: FramingContentLength})
	require.NoError(t, err)
	assert.Equal(t, "HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\n{}", string(data))
}

func maybeOneByte(r io.Reader, oneByte bool) io.Reader {
	if oneByte {
		return iotest.OneByteReader(r)
	}
	return r
}
