package client

import (
	"time"

	"nomad/application/http"
	iolib "nomad/lib/io"
)

const DefaultPort uint16 = 8000

// Framing decides when a response is complete.
type Framing uint8

const (
	// FramingContentLength reads the head, then exactly Content-Length body bytes.
	// Without Content-Length the body ends when the peer closes.
	FramingContentLength Framing = iota

	// FramingShortRead reads fixed-size chunks and stops at the first
	// read that returns less than a full chunk.
	// A response whose last chunk is exactly chunk-sized waits for the next read.
	FramingShortRead
)

type Options struct {
	Conn    ConnOptions
	Receive ReceiveOptions
	Timeout TimeoutOptions
}

type ConnOptions struct {
	// DefaultPort is used when the location has no port. Zero means [DefaultPort].
	DefaultPort uint16
}

type ReceiveOptions struct {
	Decode http.DecodeOptions

	Framing Framing

	// BufferSize is the chunk size of each read. Zero means [iolib.DefaultChunkSize].
	BufferSize uint

	// MaxHeadSize limits the status line and all field lines together.
	// Zero means no limit.
	MaxHeadSize uint

	// MaxContentLength limits the body. Zero means no limit.
	MaxContentLength uint
}

type TimeoutOptions struct {
	// RoundTrip bounds everything after the dial. Zero means no timeout.
	RoundTrip time.Duration
}

var DefaultOptions = Options{
	Conn: ConnOptions{
		DefaultPort: DefaultPort,
	},
	Receive: ReceiveOptions{
		Decode:      http.DefaultDecodeOptions,
		Framing:     FramingContentLength,
		BufferSize:  iolib.DefaultChunkSize,
		MaxHeadSize: 64 << 10,
	},
}

func (o Options) defaultPort() uint16 {
	if o.Conn.DefaultPort == 0 {
		return DefaultPort
	}
	return o.Conn.DefaultPort
}

func (o ReceiveOptions) bufferSize() int {
	if o.BufferSize == 0 {
		return iolib.DefaultChunkSize
	}
	return int(o.BufferSize)
}
