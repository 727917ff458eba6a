package location

import (
	"net/netip"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/idna"
)

// Location is immutable once parsed. Path and Query are kept in their escaped
// form so they can go on the wire as is.
type Location struct {
	Scheme string
	// Host is lower-case ASCII. IP literals keep their brackets.
	Host  string
	Port  *uint16 // nil when absent
	Path  string
	Query *string
}

var (
	ErrMissingScheme = errors.New("location has no scheme")
	ErrCTL           = errors.New("location should not contain CTL bytes")
	ErrEmptyHost     = errors.New("location has an authority without a host")
)

func Parse(raw string) (Location, error) {
	if containsCTL(raw) {
		return Location{}, ErrCTL
	}

	var loc Location

	scheme, rest, found := strings.Cut(raw, ":")
	if !found {
		return Location{}, ErrMissingScheme
	}
	if err := assertValidScheme(scheme); err != nil {
		return Location{}, errors.Wrap(err, "scheme is not valid")
	}
	loc.Scheme = strings.ToLower(scheme)

	if strings.HasPrefix(rest, "//") {
		authority := rest[2:]
		rest = ""
		if i := strings.IndexAny(authority, "/?#"); i >= 0 {
			authority, rest = authority[:i], authority[i:]
		}

		host, port, err := parseAuthority(authority)
		if err != nil {
			return Location{}, errors.Wrap(err, "parsing authority")
		}
		if host == "" {
			return Location{}, errors.WithMessagef(ErrEmptyHost, "%q", raw)
		}
		loc.Host, loc.Port = host, port
	}

	// Fragment never leaves the client.
	rest, _, _ = strings.Cut(rest, "#")

	path, query, hasQuery := strings.Cut(rest, "?")
	if loc.Host == "" && strings.HasPrefix(path, "//") {
		return Location{}, errors.New("path without authority should not start with '//'")
	}
	if err := assertValidEscapes(path); err != nil {
		return Location{}, errors.Wrap(err, "path is not valid")
	}
	loc.Path = escape(path, encodePath)

	if hasQuery {
		if err := assertValidEscapes(query); err != nil {
			return Location{}, errors.Wrap(err, "query is not valid")
		}
		query = escape(query, encodeQuery)
		loc.Query = &query
	}

	return loc, nil
}

// RequestTarget is the origin-form target of a request line.
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-3.2.1
func (l Location) RequestTarget() string {
	target := l.Path
	if target == "" {
		target = "/"
	}
	if l.Query != nil {
		target += "?" + *l.Query
	}
	return target
}

func (l Location) HasHost() bool { return l.Host != "" }

// IP returns the host as an address when it is an IP literal.
func (l Location) IP() (netip.Addr, bool) {
	host := strings.TrimSuffix(strings.TrimPrefix(l.Host, "["), "]")
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

// PortOr returns the explicit port, or def when there is none.
func (l Location) PortOr(def uint16) uint16 {
	if l.Port == nil {
		return def
	}
	return *l.Port
}

func (l Location) String() string {
	b := new(strings.Builder)
	b.WriteString(l.Scheme)
	b.WriteByte(':')

	if l.Host != "" {
		b.WriteString("//")
		b.WriteString(l.Host)
		if l.Port != nil {
			b.WriteByte(':')
			b.WriteString(strconv.FormatUint(uint64(*l.Port), 10))
		}
	}

	b.WriteString(l.Path)
	if l.Query != nil {
		b.WriteByte('?')
		b.WriteString(*l.Query)
	}

	return b.String()
}

func parseAuthority(raw string) (host string, port *uint16, err error) {
	// User information is accepted but never used.
	if i := strings.LastIndex(raw, "@"); i >= 0 {
		if !isValidUserInfo(raw[:i]) {
			return "", nil, errors.New("user information is not valid")
		}
		raw = raw[i+1:]
	}

	host, portPart, err := splitHostPort(raw)
	if err != nil {
		return "", nil, err
	}

	if port, err = parsePort(portPart); err != nil {
		return "", nil, errors.Wrap(err, "parsing port")
	}

	if host, err = normalizeHost(host); err != nil {
		return "", nil, errors.Wrap(err, "host is not valid")
	}

	return host, port, nil
}

func splitHostPort(raw string) (host, portPart string, err error) {
	if strings.HasPrefix(raw, "[") {
		// This is IP Literal.
		idx := strings.LastIndex(raw, "]")
		if idx < 0 {
			return "", "", errors.New("missing ']' in IP Literal")
		}
		return raw[:idx+1], raw[idx+1:], nil
	}

	// ipv4 or reg-name.
	if idx := strings.LastIndex(raw, ":"); idx >= 0 {
		return raw[:idx], raw[idx:], nil
	}
	return raw, "", nil
}

// This is not the same rule as RFC: port is limited to uint16.
// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-3.2.3
func parsePort(s string) (*uint16, error) {
	if s == "" {
		return nil, nil
	}

	if s[0] != ':' {
		return nil, errors.New("colon delimiter not found on port")
	}

	s = s[1:]
	if s == "" {
		// "host:" is the same as "host".
		return nil, nil
	}

	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse uint")
	}

	port := uint16(n)
	return &port, nil
}

// hostProfile maps and validates reg-names the way lookups do,
// except that '_' stays allowed for internal service names.
var hostProfile = idna.New(idna.MapForLookup(), idna.StrictDomainName(false))

func normalizeHost(host string) (string, error) {
	if host == "" {
		return "", nil
	}

	if host[0] == '[' {
		addr, err := netip.ParseAddr(host[1 : len(host)-1])
		if err != nil || !addr.Is6() {
			return "", errors.New("host is expected to be IP Literal, but was malformed")
		}
		return "[" + strings.ToLower(addr.String()) + "]", nil
	}

	unescaped, err := unescape(host)
	if err != nil {
		return "", errors.Wrap(err, "unescaping host")
	}

	if addr, err := netip.ParseAddr(unescaped); err == nil && addr.Is4() {
		return addr.String(), nil
	}

	ascii, err := hostProfile.ToASCII(unescaped)
	if err != nil {
		return "", errors.Wrap(err, "converting host to ASCII")
	}

	if !isValidRegName(ascii) {
		return "", errors.Errorf("host is neither ipv4 addr nor valid reg-name: %q", host)
	}
	if len(ascii) > 255 {
		return "", errors.Errorf("host length exceeds limit(255): %d", len(ascii))
	}

	return ascii, nil
}
