// Package client sends [http.Request] values over a fresh connection each
// and parses what comes back.
package client

import (
	"context"
	"io"
	"log/slog"
	"net/netip"
	"sync"
	"time"

	"nomad/application/http"
	"nomad/application/util/domain"
	"nomad/application/util/location"
	iolib "nomad/lib/io"
	"nomad/transport"
	"nomad/transport/tcp"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type Client struct {
	opts Options

	logger *slog.Logger
	clock  clock.Clock

	lookuper   domain.Lookuper
	connDialer transport.ConnDialer
}

func New(
	d transport.ConnDialer,
	lookuper domain.Lookuper,
	logger *slog.Logger,
	clock clock.Clock,
	opts Options,
) *Client {
	return &Client{
		connDialer: d,
		lookuper:   lookuper,
		logger:     logger,
		clock:      clock,
		opts:       opts,
	}
}

// NewDefault dials TCP, resolves through the OS and logs nothing.
func NewDefault() *Client {
	return New(
		tcp.NewDialer(),
		domain.NewNetLookuper(nil),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock.New(),
		DefaultOptions,
	)
}

var defaultClient = sync.OnceValue(NewDefault)

// Get parses rawLocation and sends a GET request with the default client.
func Get(ctx context.Context, rawLocation string) (*http.Response, error) {
	request, err := http.NewRequest(rawLocation)
	if err != nil {
		return nil, err
	}
	return defaultClient().Get(ctx, request)
}

// Post parses rawLocation and sends payload as JSON with the default client.
func Post(ctx context.Context, rawLocation string, payload any) (*http.Response, error) {
	request, err := http.NewRequest(rawLocation)
	if err != nil {
		return nil, err
	}
	return defaultClient().Post(ctx, request, payload)
}

func (c *Client) Get(ctx context.Context, request http.Request) (*http.Response, error) {
	return c.Send(ctx, request.AsGet())
}

// Post sends a copy of request carrying payload. request itself is not changed.
func (c *Client) Post(ctx context.Context, request http.Request, payload any) (*http.Response, error) {
	return c.Send(ctx, request.WithPayload(payload))
}

// Send performs one exchange on its own connection.
// The connection is closed before Send returns.
func (c *Client) Send(ctx context.Context, request http.Request) (*http.Response, error) {
	// Nothing is resolved for a request that can't be written.
	data, err := request.Encode()
	if err != nil {
		return nil, err
	}

	addr, err := c.convertToAddr(ctx, request.Location())
	if err != nil {
		return nil, http.NewError(http.KindResolve, errors.Wrap(err, "converting location to addr"))
	}

	logger := c.logger.With("exchange", uuid.New(), "addr", addr)
	start := c.clock.Now()

	raw, err := c.roundtrip(ctx, logger, addr, data)
	if err != nil {
		if _, ok := http.KindOf(err); ok {
			return nil, err
		}
		return nil, http.NewError(http.KindResolve, errors.Wrap(err, "error while request-response roundtrip"))
	}

	res, err := http.NewResponseDecoder(c.opts.Receive.Decode).Decode(raw)
	if err != nil {
		logger.Debug("malformed response", "error", err)
		return nil, err
	}

	logger.Debug("response received",
		"method", request.Method().String(),
		"location", request.Location().String(),
		"status", res.Status,
		"elapsed", c.clock.Since(start),
	)

	return res, nil
}

func (c *Client) convertToAddr(ctx context.Context, loc location.Location) (netip.AddrPort, error) {
	port := loc.PortOr(c.opts.defaultPort())

	if addr, ok := loc.IP(); ok {
		return netip.AddrPortFrom(addr, port), nil
	}

	// Host is a domain name. Resolve it to the ip address.
	addrs, err := c.lookuper.LookupIP(ctx, loc.Host)
	if err != nil {
		return netip.AddrPort{}, errors.Wrapf(err, "lookup for host(%s) failed", loc.Host)
	}
	if len(addrs) == 0 {
		return netip.AddrPort{}, errors.WithMessage(domain.ErrDomainNotFound, loc.Host)
	}

	// Lets simply use the first address.
	return netip.AddrPortFrom(addrs[0], port), nil
}

func (c *Client) roundtrip(ctx context.Context, logger *slog.Logger, addr netip.AddrPort, data []byte) (_ []byte, err error) {
	con, err := c.connDialer.Dial(ctx, addr)
	if err != nil {
		return nil, errors.Wrapf(err, "dialing %s", addr)
	}
	defer func() {
		if cerr := con.Close(); cerr != nil && !errors.Is(cerr, transport.ErrConnClosed) {
			logger.Debug("error when closing connection", "error", cerr)
		}
	}()

	// Cancellation unblocks any read or write in flight.
	stop := context.AfterFunc(ctx, func() { con.Close() })
	defer stop()

	defer func() {
		if err != nil && ctx.Err() != nil {
			err = errors.WithMessage(ctx.Err(), err.Error())
		}
	}()

	if deadline := c.deadline(ctx); !deadline.IsZero() {
		if err := con.SetDeadline(deadline); err != nil {
			return nil, errors.Wrap(err, "setting deadline")
		}
	}

	if _, err := iolib.WriteFull(con, data); err != nil {
		return nil, errors.Wrap(err, "writing request")
	}
	logger.Debug("request sent", "bytes", len(data))

	raw, err := readResponse(con, c.opts.Receive)
	if err != nil {
		return nil, errors.Wrap(err, "reading response")
	}

	return raw, nil
}

// deadline is the earlier of the round-trip timeout and the context deadline.
func (c *Client) deadline(ctx context.Context) time.Time {
	var deadline time.Time
	if timeout := c.opts.Timeout.RoundTrip; timeout > 0 {
		deadline = c.clock.Now().Add(timeout)
	}

	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}

	return deadline
}
