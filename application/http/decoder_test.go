package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ResponseDecoderTestSuite struct {
	suite.Suite
}

func TestResponseDecoderTestSuite(t *testing.T) {
	suite.Run(t, new(ResponseDecoderTestSuite))
}

func (s *ResponseDecoderTestSuite) TestParseResponse() {
	testcases := []struct {
		desc    string
		input   string
		status  uint16
		headers Headers
		body    any
		wantErr error
	}{
		{
			desc:    "simple response",
			input:   "HTTP/1.1 200 OK\r\nHost: x\r\n\r\n{\"a\":1}",
			status:  200,
			headers: Headers{{"Host", "x"}},
			body:    map[string]any{"a": 1.0},
		},
		{
			desc:   "no headers",
			input:  "HTTP/1.1 201 Created\r\n\r\n[1,2]",
			status: 201,
			body:   []any{1.0, 2.0},
		},
		{
			desc:   "no reason phrase",
			input:  "HTTP/1.1 204\r\n\r\nnull",
			status: 204,
			body:   nil,
		},
		{
			desc:    "sole LF",
			input:   "HTTP/1.1 404 Not Found\nServer: test\n\n\"gone\"",
			status:  404,
			headers: Headers{{"Server", "test"}},
			body:    "gone",
		},
		{
			desc:    "body cut at Content-Length",
			input:   "HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\n{}HTTP/1.1 200 OK",
			status:  200,
			headers: Headers{{"Content-Length", "2"}},
			body:    map[string]any{},
		},
		{
			desc:    "malformed field line is skipped",
			input:   "HTTP/1.1 200 OK\r\nNoColon\r\nHost: x\r\n\r\n{}",
			status:  200,
			headers: Headers{{"Host", "x"}},
			body:    map[string]any{},
		},
		{
			desc:   "whitespace before colon is skipped",
			input:  "HTTP/1.1 200 OK\r\nHost : x\r\n\r\n{}",
			status: 200,
			body:   map[string]any{},
		},
		{
			desc:    "obsolete line folding continues the field",
			input:   "HTTP/1.1 200 OK\r\nX-A: b\r\n \tc\r\n\r\n{}",
			status:  200,
			headers: Headers{{"X-A", "b c"}},
			body:    map[string]any{},
		},
		{
			desc:   "folded line without a field is skipped",
			input:  "HTTP/1.1 200 OK\r\n c\r\n\r\n{}",
			status: 200,
			body:   map[string]any{},
		},
		{
			desc:    "wrong version",
			input:   "HTTP/1.0 200 OK\r\n\r\n{}",
			wantErr: ErrHTTPParse,
		},
		{
			desc:    "not http at all",
			input:   "SSH-2.0-OpenSSH\r\n",
			wantErr: ErrHTTPParse,
		},
		{
			desc:    "empty buffer",
			input:   "",
			wantErr: ErrHTTPParse,
		},
		{
			desc:    "status is not numeric",
			input:   "HTTP/1.1 OK \r\n\r\n{}",
			wantErr: ErrParseInt,
		},
		{
			desc:    "status overflows uint16",
			input:   "HTTP/1.1 70000 OK\r\n\r\n{}",
			wantErr: ErrParseInt,
		},
		{
			desc:    "status is not UTF-8",
			input:   "HTTP/1.1 \xff\xfe OK\r\n\r\n{}",
			wantErr: ErrUTF8,
		},
		{
			desc:    "status line not terminated",
			input:   "HTTP/1.1 200 OK",
			wantErr: ErrHTTPParse,
		},
		{
			desc:    "no blank line after headers",
			input:   "HTTP/1.1 200 OK\r\nHost: x\r\n",
			wantErr: ErrHTTPParse,
		},
		{
			desc:    "body shorter than Content-Length",
			input:   "HTTP/1.1 200 OK\r\nContent-Length: 10\r\n\r\n{}",
			wantErr: ErrHTTPParse,
		},
		{
			desc:    "invalid Content-Length",
			input:   "HTTP/1.1 200 OK\r\nContent-Length: ten\r\n\r\n{}",
			wantErr: ErrHTTPParse,
		},
		{
			desc:    "malformed JSON",
			input:   "HTTP/1.1 200 OK\r\n\r\n{\"a\":",
			wantErr: ErrSerialize,
		},
		{
			desc:    "empty body",
			input:   "HTTP/1.1 200 OK\r\n\r\n",
			wantErr: ErrSerialize,
		},
	}

	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			res, err := ParseResponse([]byte(tc.input))
			if tc.wantErr != nil {
				s.ErrorIs(err, tc.wantErr)
				s.Nil(res)
				return
			}

			s.Require().NoError(err)
			s.Equal(tc.status, res.Status)
			s.Equal(tc.headers, res.Headers)
			s.Equal(tc.body, res.Body)
		})
	}
}

func (s *ResponseDecoderTestSuite) TestStrictFields() {
	decoder := NewResponseDecoder(DecodeOptions{StrictFields: true})

	testcases := []struct {
		desc  string
		input string
	}{
		{desc: "malformed field line", input: "HTTP/1.1 200 OK\r\nNoColon\r\n\r\n{}"},
		{desc: "whitespace before colon", input: "HTTP/1.1 200 OK\r\nHost : x\r\n\r\n{}"},
		{desc: "obsolete line folding", input: "HTTP/1.1 200 OK\r\nX-A: b\r\n c\r\n\r\n{}"},
		{desc: "control byte in value", input: "HTTP/1.1 200 OK\r\nX-A: a\x00b\r\n\r\n{}"},
	}

	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			res, err := decoder.Decode([]byte(tc.input))
			s.ErrorIs(err, ErrHTTPParse)
			s.Nil(res)
		})
	}

	res, err := decoder.Decode([]byte("HTTP/1.1 200 OK\r\nHost: x\r\n\r\n{}"))
	s.Require().NoError(err)
	s.Equal(Headers{{"Host", "x"}}, res.Headers)
}

func (s *ResponseDecoderTestSuite) TestParseHead() {
	head, rest, err := ParseHead([]byte("HTTP/1.1 200 OK\r\nContent-Length: 7\r\nX-Trace: abc\r\n\r\n{\"a\":1}"))
	s.Require().NoError(err)

	s.Equal(uint16(200), head.Status)
	s.Equal(`{"a":1}`, string(rest))

	n, ok, err := head.Headers.ContentLength()
	s.NoError(err)
	s.True(ok)
	s.Equal(uint64(7), n)

	v, ok := head.Headers.Get("x-trace")
	s.True(ok)
	s.Equal("abc", v)
}

func TestResponseDecode(t *testing.T) {
	res, err := ParseResponse([]byte("HTTP/1.1 200 OK\r\n\r\n{\"test\":\"aa\",\"n\":3}"))
	require.NoError(t, err)

	var got struct {
		Test string `json:"test"`
		N    int    `json:"n"`
	}
	require.NoError(t, res.Decode(&got))
	assert.Equal(t, "aa", got.Test)
	assert.Equal(t, 3, got.N)
	assert.Equal(t, `{"test":"aa","n":3}`, string(res.RawBody()))

	var wrong []int
	assert.ErrorIs(t, res.Decode(&wrong), ErrSerialize)
}
