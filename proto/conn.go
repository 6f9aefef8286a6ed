package proto

import (
	"net"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/colwire/colwire-go/compress"
	"github.com/colwire/colwire-go/wire"
)

// Conn wraps a single TCP (or TLS) socket with the primitive reader/writer
// pair and negotiated session parameters. It has no notion of mutual
// exclusion itself -- that discipline belongs to the Session object one
// layer up; Conn assumes its caller already serializes access.
type Conn struct {
	nc          net.Conn
	r           *wire.Reader
	w           *wire.Writer
	Server      ServerInfo
	Compression compress.Method
	Log         *zap.Logger
}

// NewConn wraps an already-connected socket. It performs no I/O itself;
// call Handshake next.
func NewConn(nc net.Conn, log *zap.Logger) *Conn {
	if log == nil {
		log = zap.NewNop()
	}
	return &Conn{
		nc:  nc,
		r:   wire.NewReader(nc),
		w:   wire.NewWriter(nc),
		Log: log,
	}
}

// Close closes the underlying socket. A Conn is never reused after Close;
// the owning Session must reconnect and re-handshake.
func (c *Conn) Close() error {
	return c.nc.Close()
}

// Raw exposes the underlying socket so the owning Session can set
// connect/send/recv deadlines around each blocking call.
func (c *Conn) Raw() net.Conn {
	return c.nc
}

func (c *Conn) negotiated() int {
	return c.Server.Negotiated()
}

// dataReader returns a wire.Reader over body bytes appropriate to the
// negotiated compression: a decompressing stream when compression is on,
// or the raw connection reader otherwise.
func (c *Conn) dataReader() *wire.Reader {
	if c.Compression == compress.MethodNone || c.Compression == 0 {
		return c.r
	}
	return wire.NewReader(compress.NewReader(connReader{c}))
}

// dataWriter returns a function that must be called after the caller
// finishes writing one logical body (e.g. one Block) so any buffered
// compressed bytes are flushed to the wire.
func (c *Conn) dataWriter() (*wire.Writer, func() error) {
	if c.Compression == compress.MethodNone || c.Compression == 0 {
		return c.w, func() error { return nil }
	}
	cw := compress.NewWriter(connWriter{c}, c.Compression)
	return wire.NewWriter(cw), cw.Flush
}

// connReader/connWriter adapt Conn's raw, uncompressed wire.Reader/Writer
// to the io.Reader/io.Writer shape compress.Reader/Writer expect, so the
// compression stream reads/writes envelopes directly against the socket.
type connReader struct{ c *Conn }

func (r connReader) Read(p []byte) (int, error) {
	b, err := r.c.r.ReadExact(len(p))
	if err != nil {
		return 0, err
	}
	copy(p, b)
	return len(b), nil
}

type connWriter struct{ c *Conn }

func (w connWriter) Write(p []byte) (int, error) {
	if err := w.c.w.WriteAll(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// ErrUnexpectedPacket is returned when the server sends a packet kind the
// current state doesn't expect and can't safely skip.
var ErrUnexpectedPacket = errors.New("proto: unexpected packet kind")
