package http

import (
	"bytes"
	"strconv"
	"strings"

	"nomad/application/util/rule"
	sliceutil "nomad/lib/slice"

	"github.com/pkg/errors"
	"golang.org/x/net/http/httpguts"
)

// [Major, Minor]
type Version [2]uint

var HTTP11 = Version{1, 1}

func (ver Version) Text() []byte {
	buf := bytes.NewBuffer(nil)
	buf.Write([]byte("HTTP/"))
	buf.Write([]byte(strconv.FormatUint(uint64(ver[0]), 10)))
	buf.Write([]byte{'.'})
	buf.Write([]byte(strconv.FormatUint(uint64(ver[1]), 10)))
	return buf.Bytes()
}

func (ver Version) String() string { return string(ver.Text()) }

type Method uint8

const (
	MethodGet Method = iota
	MethodPost
)

func (m Method) String() string {
	switch m {
	case MethodGet:
		return "GET"
	case MethodPost:
		return "POST"
	}
	return "Method(" + strconv.Itoa(int(m)) + ")"
}

type Field struct{ Name, Value string }

func (f Field) Text() []byte {
	buf := bytes.NewBuffer(nil)
	buf.WriteString(f.Name)
	buf.Write([]byte(": "))
	buf.WriteString(f.Value)
	return buf.Bytes()
}

var (
	ErrMalformedFieldLine = errors.New("field line is malformed")
	ErrInvalidFieldName   = errors.New("field name is not a valid token")
	ErrInvalidFieldValue  = errors.New("field value contains invalid bytes")
)

func ParseField(fieldLine []byte) (Field, error) {
	name, value, found := bytes.Cut(fieldLine, []byte{':'})
	if !found {
		return Field{}, errors.WithMessagef(ErrMalformedFieldLine, "colon separator not found: %q", fieldLine)
	}

	// No whitespace is allowed between field name and colon,
	// which the token check below also covers.
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-5.1-2
	if !httpguts.ValidHeaderFieldName(string(name)) {
		return Field{}, errors.WithMessagef(ErrInvalidFieldName, "%q", name)
	}

	value = rule.TrimOWS(value)
	if !httpguts.ValidHeaderFieldValue(string(value)) {
		return Field{}, errors.WithMessagef(ErrInvalidFieldValue, "field %q", name)
	}

	return Field{Name: string(name), Value: string(value)}, nil
}

// Headers keeps fields in the order they were received.
type Headers []Field

// Get returns the first value of the field, ignoring case of name.
func (h Headers) Get(name string) (value string, ok bool) {
	for _, f := range h {
		if strings.EqualFold(f.Name, name) {
			return f.Value, true
		}
	}
	return "", false
}

func (h Headers) Values(name string) []string {
	named := sliceutil.Filter(h, func(f Field) bool { return strings.EqualFold(f.Name, name) })
	return sliceutil.Map(named, func(f Field) string { return f.Value })
}

var ErrInvalidContentLength = errors.New("invalid Content-Length")

// ContentLength returns the declared body length. ok is false when the field is absent.
// Repeated fields must agree.
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-8.6
func (h Headers) ContentLength() (n uint64, ok bool, err error) {
	values := h.Values("Content-Length")
	if len(values) == 0 {
		return 0, false, nil
	}

	for i, v := range values {
		parsed, err := strconv.ParseUint(v, 10, 63)
		if err != nil {
			return 0, false, errors.WithMessagef(ErrInvalidContentLength, "%q", v)
		}
		if i > 0 && parsed != n {
			return 0, false, errors.WithMessagef(ErrInvalidContentLength, "conflicting values %d and %d", n, parsed)
		}
		n = parsed
	}

	return n, true, nil
}
