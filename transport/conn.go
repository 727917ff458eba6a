package transport

import (
	"io"
	"net"
	"os"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrConnClosed         = errors.New("connection is closed")
	ErrConnReset          = errors.New("connection reset by peer")
	ErrConnRefused        = errors.New("connection refused")
	ErrConnListenerClosed = errors.New("conn listener is closed")
	ErrNetUnreachable     = errors.New("network is unreachable")
	ErrAddrAlreadyInUse   = errors.New("address already in use")
	ErrDeadlineExceeded   = errors.New("deadline exceeded")
)

// netConn adapts [net.Conn] to [Conn], translating its errors into the ones above.
// io.EOF is passed as is since it marks the end of a response.
type netConn struct {
	c      net.Conn
	closed atomic.Bool
}

var _ Conn = (*netConn)(nil)

func FromNetConn(c net.Conn) Conn { return &netConn{c: c} }

func (nc *netConn) Read(p []byte) (n int, err error) {
	n, err = nc.c.Read(p)
	return n, translateError(err)
}

func (nc *netConn) Write(p []byte) (n int, err error) {
	n, err = nc.c.Write(p)
	return n, translateError(err)
}

func (nc *netConn) Close() error {
	if nc.closed.Swap(true) {
		return nil
	}
	return translateError(nc.c.Close())
}

func (nc *netConn) SetDeadline(t time.Time) error {
	return translateError(nc.c.SetDeadline(t))
}

func translateError(err error) error {
	switch {
	case err == nil, err == io.EOF:
		return err
	case errors.Is(err, net.ErrClosed), errors.Is(err, io.ErrClosedPipe):
		return ErrConnClosed
	case errors.Is(err, os.ErrDeadlineExceeded):
		return ErrDeadlineExceeded
	case errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.EPIPE):
		return errors.WithMessage(ErrConnReset, err.Error())
	}
	return err
}
