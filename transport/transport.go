// Package transport defines the stream connections the HTTP client talks over.
//
// Addresses are concrete socket addresses. Name resolution happens before
// anything here is called.
package transport

import (
	"context"
	"net/netip"
	"time"
)

type Protocol string

const TCP Protocol = "tcp"

type Conn interface {
	Read(p []byte) (n int, err error)
	Write(p []byte) (n int, err error)

	// Close is idempotent.
	Close() error

	// SetDeadline sets both read and write deadline.
	// Zero value means no deadline.
	SetDeadline(t time.Time) error
}

type ConnListener interface {
	Accept(ctx context.Context) (Conn, error)
	Addr() netip.AddrPort
	Close() error
}

type ConnDialer interface {
	Dial(ctx context.Context, addr netip.AddrPort) (Conn, error)
}
