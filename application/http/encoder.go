package http

import (
	"bufio"
	"bytes"
	"io"
	"strconv"

	"nomad/application/util/location"
	"nomad/application/util/rule"

	"github.com/pkg/errors"
)

const contentTypeJSON = "application/json"

// Request is a value: every With/As method returns a new Request
// and leaves the receiver as it was.
type Request struct {
	loc     location.Location
	method  Method
	payload any // set only for MethodPost
}

// NewRequest parses rawLocation and returns a GET request for it.
func NewRequest(rawLocation string) (Request, error) {
	loc, err := location.Parse(rawLocation)
	if err != nil {
		return Request{}, NewError(KindParseURL, errors.Wrapf(err, "parsing %q", rawLocation))
	}

	return NewRequestTo(loc), nil
}

func NewRequestTo(loc location.Location) Request {
	return Request{loc: loc, method: MethodGet}
}

func (r Request) Location() location.Location { return r.loc }
func (r Request) Method() Method { return r.method }

// Payload returns the JSON payload. ok is true only for POST,
// even when the payload itself is nil (sent as JSON null).
func (r Request) Payload() (payload any, ok bool) {
	return r.payload, r.method == MethodPost
}

// WithPayload returns a POST request carrying payload.
func (r Request) WithPayload(payload any) Request {
	r.method = MethodPost
	r.payload = payload
	return r
}

// AsGet returns a GET request for the same location.
func (r Request) AsGet() Request {
	r.method = MethodGet
	r.payload = nil
	return r
}

// Encode returns the exact bytes to put on the wire.
func (r Request) Encode() ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := NewRequestEncoder(buf).Encode(r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type RequestEncoder struct {
	bw *bufio.Writer
}

func NewRequestEncoder(w io.Writer) *RequestEncoder {
	return &RequestEncoder{bw: bufio.NewWriter(w)}
}

// Encode validates and serializes the whole request before writing a single byte,
// so a [KindNoHostString] or [KindSerialize] failure leaves w untouched.
func (re *RequestEncoder) Encode(request Request) error {
	if !request.loc.HasHost() {
		return NewError(KindNoHostString, errors.Errorf("location %q has no host", request.loc.String()))
	}

	var body []byte
	if payload, ok := request.Payload(); ok {
		var err error
		if body, err = encodeJSON(payload); err != nil {
			return NewError(KindSerialize, errors.Wrap(err, "encoding payload"))
		}
	}

	if err := re.encode(request, body); err != nil {
		return NewError(KindResolve, err)
	}

	return nil
}

func (re *RequestEncoder) encode(request Request, body []byte) error {
	if err := re.encodeRequestLine(request); err != nil {
		return errors.Wrap(err, "encoding request line")
	}

	headers := Headers{
		{Name: "Host", Value: request.loc.Host},
		{Name: "Content-Type", Value: contentTypeJSON},
		{Name: "Content-Length", Value: strconv.Itoa(len(body))},
	}
	if err := re.encodeHeaders(headers); err != nil {
		return errors.Wrap(err, "encoding headers")
	}

	if _, err := re.bw.Write(body); err != nil {
		return errors.Wrap(err, "writing request body")
	}

	if err := re.bw.Flush(); err != nil {
		return errors.Wrap(err, "flushing request")
	}

	return nil
}

func (re *RequestEncoder) encodeRequestLine(request Request) error {
	buf := bytes.NewBuffer(nil)

	buf.WriteString(request.method.String())
	buf.WriteByte(rule.SP)
	buf.WriteString(request.loc.RequestTarget())
	buf.WriteByte(rule.SP)
	buf.Write(HTTP11.Text())

	return re.writeLine(buf.Bytes())
}

func (re *RequestEncoder) encodeHeaders(headers Headers) error {
	for _, field := range headers {
		if err := re.writeLine(field.Text()); err != nil {
			return errors.Wrap(err, "writing field")
		}
	}

	// Write a empty line as all the headers are written.
	return re.writeLine(nil)
}

func (re *RequestEncoder) writeLine(line []byte) error {
	if _, err := re.bw.Write(line); err != nil {
		return errors.Wrap(err, "writing line")
	}

	if _, err := re.bw.Write(rule.CRLF); err != nil {
		return errors.Wrap(err, "writing line terminator")
	}

	return nil
}
