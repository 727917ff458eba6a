package http

import (
	"bytes"
	"strconv"
	"unicode/utf8"

	"nomad/application/util/rule"

	"github.com/pkg/errors"
)

var statusLinePrefix = append(HTTP11.Text(), rule.SP) // "HTTP/1.1 "

// Head is everything before the body.
type Head struct {
	Status  uint16
	Headers Headers
}

type Response struct {
	Head

	// Body is the decoded JSON: map[string]any, []any, string, float64, bool or nil.
	Body any

	raw []byte
}

// RawBody returns the body bytes the JSON was decoded from.
func (r *Response) RawBody() []byte { return r.raw }

// Decode decodes the body again into v.
func (r *Response) Decode(v any) error {
	if err := decodeJSON(r.raw, v); err != nil {
		return NewError(KindSerialize, errors.Wrap(err, "decoding body"))
	}
	return nil
}

type DecodeOptions struct {
	// StrictFields rejects a field line that does not parse, and obsolete line folding,
	// with [KindHTTPParse].
	// Otherwise such a line is skipped, and a folded line continues the previous field.
	//
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-5.2
	StrictFields bool
}

var DefaultDecodeOptions = DecodeOptions{
	StrictFields: false,
}

type ResponseDecoder struct {
	opts DecodeOptions
}

func NewResponseDecoder(opts DecodeOptions) *ResponseDecoder {
	return &ResponseDecoder{opts: opts}
}

// ParseResponse decodes data with [DefaultDecodeOptions].
func ParseResponse(data []byte) (*Response, error) {
	return NewResponseDecoder(DefaultDecodeOptions).Decode(data)
}

// ParseHead decodes the head of data with [DefaultDecodeOptions].
func ParseHead(data []byte) (Head, []byte, error) {
	return NewResponseDecoder(DefaultDecodeOptions).DecodeHead(data)
}

// Decode parses a complete response. The body is cut at Content-Length
// when the header is present.
func (rd *ResponseDecoder) Decode(data []byte) (*Response, error) {
	head, body, err := rd.DecodeHead(data)
	if err != nil {
		return nil, err
	}

	n, declared, err := head.Headers.ContentLength()
	if err != nil {
		return nil, NewError(KindHTTPParse, err)
	}
	if declared {
		if uint64(len(body)) < n {
			return nil, NewError(KindHTTPParse, errors.Errorf(
				"body has %d bytes, Content-Length is %d", len(body), n))
		}
		body = body[:n]
	}

	response := &Response{Head: head, raw: body}
	if err := decodeJSON(body, &response.Body); err != nil {
		return nil, NewError(KindSerialize, errors.Wrap(err, "decoding body"))
	}

	return response, nil
}

// DecodeHead parses the status line and the header block and returns
// the bytes following the blank line.
//
// Both CRLF and a sole LF end a line.
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-2.2-3
func (rd *ResponseDecoder) DecodeHead(data []byte) (Head, []byte, error) {
	if !bytes.HasPrefix(data, statusLinePrefix) {
		return Head{}, nil, NewError(KindHTTPParse, errors.Errorf(
			"response does not start with %q", statusLinePrefix))
	}

	c := newCursor(data, len(statusLinePrefix))

	status, err := parseStatusCode(c.peekUntil(rule.SP, rule.CR, rule.LF))
	if err != nil {
		return Head{}, nil, err
	}

	// Reason phrase is ignored.
	if _, err := c.advancePast(rule.LF); err != nil {
		return Head{}, nil, NewError(KindHTTPParse, errors.Wrap(err, "status line not terminated"))
	}

	headers, err := rd.parseHeaders(c)
	if err != nil {
		return Head{}, nil, err
	}

	return Head{Status: status, Headers: headers}, c.rest(), nil
}

func parseStatusCode(token []byte) (uint16, error) {
	if !utf8.Valid(token) {
		return 0, NewError(KindUTF8, errors.Errorf("status code %q is not valid UTF-8", token))
	}

	code, err := strconv.ParseUint(string(token), 10, 16)
	if err != nil {
		return 0, NewError(KindParseInt, errors.Wrap(err, "parsing status code"))
	}

	return uint16(code), nil
}

func (rd *ResponseDecoder) parseHeaders(c *cursor) (Headers, error) {
	var headers Headers
	for {
		line, err := c.advancePast(rule.LF)
		if err != nil {
			return nil, NewError(KindHTTPParse, errors.Wrap(err, "header block not terminated"))
		}
		line = bytes.TrimSuffix(line, []byte{rule.CR})

		if len(line) == 0 {
			// An empty line. This means that there are no more headers.
			return headers, nil
		}

		if line[0] == rule.SP || line[0] == rule.HTAB {
			if rd.opts.StrictFields {
				return nil, NewError(KindHTTPParse, errors.New("obsolete line folding is not supported"))
			}
			if len(headers) > 0 {
				// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-5.2-4
				last := &headers[len(headers)-1]
				last.Value = string(rule.TrimOWS([]byte(last.Value + " " + string(rule.TrimOWS(line)))))
			}
			continue
		}

		field, err := ParseField(line)
		if err != nil {
			if rd.opts.StrictFields {
				return nil, NewError(KindHTTPParse, errors.Wrap(err, "parsing field line"))
			}
			continue
		}

		headers = append(headers, field)
	}
}
