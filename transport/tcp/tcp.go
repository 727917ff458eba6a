// Package tcp provides [transport.Conn] over the operating system's TCP sockets.
package tcp

import (
	"context"
	"net"
	"net/netip"
	"syscall"
	"time"

	"nomad/transport"

	"github.com/pkg/errors"
)

type Dialer struct {
	d net.Dialer
}

var _ transport.ConnDialer = (*Dialer)(nil)

func NewDialer() *Dialer { return &Dialer{} }

func (d *Dialer) Dial(ctx context.Context, addr netip.AddrPort) (transport.Conn, error) {
	c, err := d.d.DialContext(ctx, string(transport.TCP), addr.String())
	if err != nil {
		return nil, classifyDialError(err, addr)
	}

	return transport.FromNetConn(c), nil
}

func classifyDialError(err error, addr netip.AddrPort) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, syscall.ECONNREFUSED):
		return errors.WithMessagef(transport.ErrConnRefused, "dialing %s", addr)
	case errors.Is(err, syscall.ENETUNREACH), errors.Is(err, syscall.EHOSTUNREACH):
		return errors.WithMessagef(transport.ErrNetUnreachable, "dialing %s", addr)
	}
	return errors.Wrapf(err, "dialing %s", addr)
}

type Listener struct {
	l *net.TCPListener
}

var _ transport.ConnListener = (*Listener)(nil)

// Listen listens on addr. Zero port picks an ephemeral one, see [Listener.Addr].
func Listen(addr netip.AddrPort) (*Listener, error) {
	l, err := net.ListenTCP(string(transport.TCP), net.TCPAddrFromAddrPort(addr))
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return nil, transport.ErrAddrAlreadyInUse
		}
		return nil, errors.Wrapf(err, "listening on %s", addr)
	}

	return &Listener{l: l}, nil
}

func (l *Listener) Accept(ctx context.Context) (transport.Conn, error) {
	stop := context.AfterFunc(ctx, func() {
		// Wakes up the blocked accept below.
		_ = l.l.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	c, err := l.l.AcceptTCP()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, net.ErrClosed) {
			return nil, transport.ErrConnListenerClosed
		}
		return nil, errors.Wrap(err, "accepting connection")
	}

	return transport.FromNetConn(c), nil
}

func (l *Listener) Addr() netip.AddrPort {
	return l.l.Addr().(*net.TCPAddr).AddrPort()
}

func (l *Listener) Close() error {
	if err := l.l.Close(); err != nil {
		if errors.Is(err, net.ErrClosed) {
			return transport.ErrConnListenerClosed
		}
		return err
	}
	return nil
}
