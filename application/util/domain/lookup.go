package domain

import (
	"context"
	"maps"
	"net"
	"net/netip"

	sliceutil "nomad/lib/slice"

	"github.com/pkg/errors"
)

var ErrDomainNotFound = errors.New("domain not found")

type Lookuper interface {
	LookupIP(ctx context.Context, domain string) (addrs []netip.Addr, err error)
}

type mapLookuper struct {
	set map[string][]netip.Addr
}

var _ Lookuper = (*mapLookuper)(nil)

func NewMapLookuper(set map[string][]netip.Addr) *mapLookuper {
	if set == nil {
		set = make(map[string][]netip.Addr)
	}
	return &mapLookuper{set: maps.Clone(set)}
}

func (m *mapLookuper) LookupIP(ctx context.Context, domain string) (addrs []netip.Addr, err error) {
	addrs, ok := m.set[domain]
	if !ok {
		return nil, ErrDomainNotFound
	}
	return addrs, nil
}

func (m *mapLookuper) Set(domain string, addrs []netip.Addr) {
	if len(addrs) == 0 {
		return
	}
	m.set[domain] = addrs
}

// chainLookuper asks each lookuper in turn. Only [ErrDomainNotFound] moves on
// to the next one.
type chainLookuper struct {
	lookupers []Lookuper
}

var _ Lookuper = (*chainLookuper)(nil)

func NewChainLookuper(lookupers ...Lookuper) *chainLookuper {
	return &chainLookuper{lookupers: lookupers}
}

func (c *chainLookuper) LookupIP(ctx context.Context, domain string) ([]netip.Addr, error) {
	for _, l := range c.lookupers {
		addrs, err := l.LookupIP(ctx, domain)
		if err == nil {
			return addrs, nil
		}
		if !errors.Is(err, ErrDomainNotFound) {
			return nil, err
		}
	}
	return nil, errors.WithMessage(ErrDomainNotFound, domain)
}

// netLookuper asks the operating system (or the configured DNS servers) through [net.Resolver].
type netLookuper struct {
	r *net.Resolver
}

var _ Lookuper = (*netLookuper)(nil)

// NewNetLookuper uses [net.DefaultResolver] when r is nil.
func NewNetLookuper(r *net.Resolver) *netLookuper {
	if r == nil {
		r = net.DefaultResolver
	}
	return &netLookuper{r: r}
}

func (n *netLookuper) LookupIP(ctx context.Context, domain string) (addrs []netip.Addr, err error) {
	addrs, err = n.r.LookupNetIP(ctx, "ip", domain)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return nil, errors.WithMessage(ErrDomainNotFound, domain)
		}
		return nil, errors.Wrapf(err, "looking up %s", domain)
	}

	if len(addrs) == 0 {
		return nil, errors.WithMessage(ErrDomainNotFound, domain)
	}

	// IPv4-mapped IPv6 addresses dial as plain IPv4.
	return sliceutil.Map(addrs, netip.Addr.Unmap), nil
}
