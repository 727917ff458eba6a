package location

import (
	"nomad/application/util/rule"

	"github.com/pkg/errors"
)

func containsCTL(s string) bool {
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b < ' ' || b == 0x7f {
			return true
		}
	}
	return false
}

// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-2.2
func isSubDelim(c byte) bool {
	switch c {
	case '!', '$', '&', '\'', '(', ')', '*', '+', ',', ';', '=':
		return true
	}
	return false
}

// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-2.3
func isUnreserved(c byte) bool {
	if rule.IsAlpha(c) || rule.IsDigit(c) {
		return true
	}
	switch c {
	case '-', '.', '_', '~':
		return true
	}
	return false
}

// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-2.1
func isPercentEncoded(s string) bool {
	return len(s) == 3 && s[0] == '%' && rule.IsHex(s[1]) && rule.IsHex(s[2])
}

// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-3.1
func assertValidScheme(scheme string) error {
	if len(scheme) == 0 {
		return errors.New("scheme is empty")
	}

	if !rule.IsAlpha(scheme[0]) {
		return errors.New("scheme doesn't start with ALPHA")
	}

	for idx := 1; idx < len(scheme); idx++ {
		c := scheme[idx]
		switch {
		case rule.IsAlpha(c) || rule.IsDigit(c):
		case c == '+' || c == '-' || c == '.':
		default:
			return errors.Errorf("scheme contains invalid byte: %q", c)
		}
	}

	return nil
}

func isValidUserInfo(s string) bool {
	for idx := 0; idx < len(s); idx++ {
		c := s[idx]
		if isUnreserved(c) || isSubDelim(c) || c == ':' {
			continue
		}
		if idx+2 < len(s) && isPercentEncoded(s[idx:idx+3]) {
			idx += 2
			continue
		}

		return false
	}

	return true
}

func isValidRegName(s string) bool {
	for idx := 0; idx < len(s); idx++ {
		c := s[idx]
		if !(isUnreserved(c) || isSubDelim(c)) {
			return false
		}
	}

	return true
}

// assertValidEscapes rejects a '%' that does not start a percent-encoded octet.
// Everything else that is not allowed gets escaped instead.
func assertValidEscapes(s string) error {
	for idx := 0; idx < len(s); idx++ {
		if s[idx] != '%' {
			continue
		}
		if idx+2 >= len(s) || !isPercentEncoded(s[idx:idx+3]) {
			return errors.Errorf("percent encoding not properly applied: %q", s[idx:min(len(s), idx+3)])
		}
		idx += 2
	}
	return nil
}
