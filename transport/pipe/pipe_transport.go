// Package pipe is an in-memory transport. Conns are [net.Pipe] pairs, so every
// write blocks until the peer reads it.
package pipe

import (
	"context"
	"net"
	"net/netip"
	"sync"

	"nomad/transport"
)

type PipeTransport struct {
	listeners map[netip.AddrPort]*pipeListener
	mu        sync.Mutex
}

var _ transport.ConnDialer = (*PipeTransport)(nil)

func NewPipeTransport() *PipeTransport {
	return &PipeTransport{
		listeners: make(map[netip.AddrPort]*pipeListener),
	}
}

// Pipe returns both ends of a connected pair.
func Pipe() (transport.Conn, transport.Conn) {
	c1, c2 := net.Pipe()
	return transport.FromNetConn(c1), transport.FromNetConn(c2)
}

func (pt *PipeTransport) Dial(ctx context.Context, addr netip.AddrPort) (transport.Conn, error) {
	pt.mu.Lock()
	listener, ok := pt.listeners[addr]
	pt.mu.Unlock()

	if !ok {
		return nil, transport.ErrNetUnreachable
	}

	local, remote := Pipe()

	select {
	case <-ctx.Done():
	case <-listener.closed:
		local.Close()
		remote.Close()
		return nil, transport.ErrConnRefused
	case listener.requests <- remote:
		return local, nil
	}

	local.Close()
	remote.Close()
	return nil, ctx.Err()
}

func (pt *PipeTransport) Listen(addr netip.AddrPort) (transport.ConnListener, error) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	if _, ok := pt.listeners[addr]; ok {
		return nil, transport.ErrAddrAlreadyInUse
	}

	pl := &pipeListener{
		addr:      addr,
		transport: pt,
		requests:  make(chan transport.Conn),
		closed:    make(chan struct{}),
	}
	pt.listeners[addr] = pl

	return pl, nil
}

type pipeListener struct {
	addr      netip.AddrPort
	transport *PipeTransport

	requests chan transport.Conn
	closed   chan struct{}
	once     sync.Once
}

var _ transport.ConnListener = (*pipeListener)(nil)

func (pl *pipeListener) Accept(ctx context.Context) (transport.Conn, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-pl.closed:
		return nil, transport.ErrConnListenerClosed
	case conn := <-pl.requests:
		return conn, nil
	}
}

func (pl *pipeListener) Addr() netip.AddrPort { return pl.addr }

func (pl *pipeListener) Close() error {
	err := transport.ErrConnListenerClosed
	pl.once.Do(func() {
		close(pl.closed)

		pl.transport.mu.Lock()
		delete(pl.transport.listeners, pl.addr)
		pl.transport.mu.Unlock()

		err = nil
	})
	return err
}
