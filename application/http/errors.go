package http

import (
	"github.com/pkg/errors"
)

// Kind tells which stage of a request/response exchange failed.
type Kind uint8

const (
	KindSerialize    Kind = iota + 1 // JSON encode or decode
	KindResolve                      // resolve, connect, write or read
	KindUTF8                         // token is not valid UTF-8
	KindParseInt                     // status code is not a uint16
	KindParseURL                     // location is malformed
	KindNoHostString                 // location has no host
	KindHTTPParse                    // response is not HTTP/1.1
)

func (k Kind) String() string {
	switch k {
	case KindSerialize:
		return "serialize"
	case KindResolve:
		return "resolve"
	case KindUTF8:
		return "utf8"
	case KindParseInt:
		return "parse int"
	case KindParseURL:
		return "parse url"
	case KindNoHostString:
		return "no host string"
	case KindHTTPParse:
		return "http parse"
	}
	return "unknown"
}

// Error is the only error type the client returns.
// Match it with [errors.Is] against the Err* values below, or use [KindOf].
type Error struct {
	Kind Kind
	Err  error // nil for sentinels
}

var (
	ErrSerialize    = &Error{Kind: KindSerialize}
	ErrResolve      = &Error{Kind: KindResolve}
	ErrUTF8         = &Error{Kind: KindUTF8}
	ErrParseInt     = &Error{Kind: KindParseInt}
	ErrParseURL     = &Error{Kind: KindParseURL}
	ErrNoHostString = &Error{Kind: KindNoHostString}
	ErrHTTPParse    = &Error{Kind: KindHTTPParse}
)

func NewError(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Err: cause}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String() + " error"
	}
	return e.Kind.String() + " error: " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a sentinel of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Err == nil && t.Kind == e.Kind
}

// KindOf returns the kind of the first [*Error] in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
