package location

import (
	"strings"

	"github.com/pkg/errors"
)

type encodeMode uint

const (
	encodePath encodeMode = 1 + iota
	encodeQuery
)

func hex(c byte) (h [2]byte) {
	const hexSet = "0123456789ABCDEF"
	h[0] = hexSet[c>>4]
	h[1] = hexSet[c&0xF]
	return
}

func hexToNum(h byte) byte {
	switch {
	case '0' <= h && h <= '9':
		return h - '0'
	case 'a' <= h && h <= 'f':
		return h - 'a' + 10
	case 'A' <= h && h <= 'F':
		return h - 'A' + 10
	}
	return 0
}

// escape percent-encodes every byte not allowed in the component.
// Existing percent-encoded octets are kept as they are.
func escape(s string, mode encodeMode) string {
	b := new(strings.Builder)
	b.Grow(len(s))

	for idx := 0; idx < len(s); idx++ {
		c := s[idx]
		switch {
		case c == '%' && idx+2 < len(s) && isPercentEncoded(s[idx:idx+3]):
			b.WriteString(s[idx : idx+3])
			idx += 2
		case shouldEscape(c, mode):
			h := hex(c)
			b.Write([]byte{'%', h[0], h[1]})
		default:
			b.WriteByte(c)
		}
	}

	return b.String()
}

func unescape(s string) (string, error) {
	if !strings.Contains(s, "%") {
		return s, nil
	}

	b := new(strings.Builder)
	b.Grow(len(s))

	for idx := 0; idx < len(s); idx++ {
		c := s[idx]
		if c == '%' {
			if idx+2 >= len(s) || !isPercentEncoded(s[idx:idx+3]) {
				bad := s[idx:min(len(s), idx+3)]
				return "", errors.Errorf("percent encoding not properly applied: %q", bad)
			}
			b.WriteByte(hexToNum(s[idx+1])<<4 | hexToNum(s[idx+2]))
			idx += 2
			continue
		}
		b.WriteByte(c)
	}

	return b.String(), nil
}

func shouldEscape(c byte, mode encodeMode) bool {
	if isUnreserved(c) || isSubDelim(c) {
		return false
	}

	switch c {
	case ':', '@', '/':
		// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-3.3
		return false
	case '?':
		// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-3.4
		return mode != encodeQuery
	}

	return true
}
