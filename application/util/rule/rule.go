// Package rule holds the byte-level grammar shared by the URI and HTTP parsers.
package rule

const (
	CR   byte = '\r'
	LF   byte = '\n'
	SP   byte = ' '
	HTAB byte = '\t'
	VT   byte = 0x0B
	FF   byte = 0x0C
)

var (
	OWS         = []byte{SP, HTAB}
	CRLF        = []byte{CR, LF}
	Whitespaces = []byte{SP, HTAB, VT, FF, CR}
)

func IsWhitespace(c byte) bool {
	for _, ws := range Whitespaces {
		if c == ws {
			return true
		}
	}
	return false
}

func IsAlpha(c byte) bool { return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') }
func IsDigit(c byte) bool { return '0' <= c && c <= '9' }

func IsHex(c byte) bool {
	return IsDigit(c) || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// TrimOWS strips optional whitespace around a field value.
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-5.1-3
func TrimOWS(b []byte) []byte {
	for len(b) > 0 && (b[0] == SP || b[0] == HTAB) {
		b = b[1:]
	}
	for len(b) > 0 && (b[len(b)-1] == SP || b[len(b)-1] == HTAB) {
		b = b[:len(b)-1]
	}
	return b
}
