// Package colwire is a client library for a columnar OLAP database's
// native binary TCP protocol: handshake, typed column codec, block I/O,
// and a Session object serializing callers onto one physical connection.
package colwire

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/colwire/colwire-go/block"
	"github.com/colwire/colwire-go/compress"
	"github.com/colwire/colwire-go/cwerror"
	"github.com/colwire/colwire-go/proto"
	"github.com/colwire/colwire-go/wire"
)

// Session owns one physical connection and serializes every caller onto
// it with a mutex, per spec.md §5's single-writer-socket model.
type Session struct {
	cfg Config
	log *zap.Logger

	mu   sync.Mutex
	conn *proto.Conn

	lastServerInfo proto.ServerInfo
	lastProfile    proto.ProfileInfo
	lastProgress   proto.Progress
}

// Connect dials cfg.Host:cfg.Port, optionally wraps the connection in
// TLS, and performs the Hello handshake.
func Connect(ctx context.Context, cfg Config, log *zap.Logger) (*Session, error) {
	if cfg.Host == "" {
		return nil, cwerror.E(cwerror.Validation, "empty host")
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{cfg: cfg, log: log}
	if err := s.dial(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) dial(ctx context.Context) error {
	dialer := net.Dialer{Timeout: s.cfg.ConnectTimeout}
	nc, err := dialer.DialContext(ctx, "tcp", s.cfg.addr())
	if err != nil {
		return cwerror.E(cwerror.Connection, err)
	}
	if s.cfg.TLS {
		nc = tls.Client(nc, &tls.Config{ServerName: s.cfg.Host})
	}

	conn := proto.NewConn(nc, s.log)
	conn.Compression = compressionMethod(s.cfg.Compression)

	if err := s.withDeadline(conn.Raw(), s.cfg.ConnectTimeout, func() error {
		return conn.Handshake(proto.HandshakeParams{
			Database:           s.cfg.Database,
			User:               s.cfg.User,
			Password:           s.cfg.Password,
			ClientName:         s.cfg.ClientName,
			ClientVersionMajor: s.cfg.ClientVersionMajor,
			ClientVersionMinor: s.cfg.ClientVersionMinor,
			ClientVersionPatch: s.cfg.ClientVersionPatch,
		})
	}); err != nil {
		nc.Close()
		return classifyHandshakeErr(err)
	}

	s.conn = conn
	s.lastServerInfo = conn.Server
	return nil
}

func classifyHandshakeErr(err error) error {
	if se, ok := err.(*proto.ServerError); ok {
		return serverErr(se)
	}
	return cwerror.E(cwerror.Connection, err)
}

// serverErr builds a cwerror.Error(Server) from se, surfacing the
// server's own exception code/name on the Error itself rather than
// leaving callers to unwrap down to *proto.ServerError for them.
func serverErr(se *proto.ServerError) error {
	e := cwerror.E(cwerror.Server, se).(*cwerror.Error)
	e.ServerCode = se.Exception.Code
	e.ServerName = se.Exception.Name
	return e
}

func compressionMethod(c Compression) compress.Method {
	switch c {
	case CompressionLZ4:
		return compress.MethodLZ4
	case CompressionZSTD:
		return compress.MethodZSTD
	default:
		return compress.MethodNone
	}
}

func (s *Session) withDeadline(nc net.Conn, d time.Duration, fn func() error) error {
	if d > 0 {
		nc.SetDeadline(time.Now().Add(d))
		defer nc.SetDeadline(time.Time{})
	}
	return fn()
}

// Close closes the underlying socket. The Session must not be reused
// after Close.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// Reset discards the current connection and reconnects, re-running the
// handshake, per spec.md §4.7's "discard and reconnect."
func (s *Session) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	return s.dial(ctx)
}

// LastServerInfo, LastProfile, and LastProgress surface the Session's
// observable side effects, per spec.md §4.7.
func (s *Session) LastServerInfo() proto.ServerInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastServerInfo
}

func (s *Session) LastProfile() proto.ProfileInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastProfile
}

func (s *Session) LastProgress() proto.Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastProgress
}

func (s *Session) closeLocked() {
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
}

func (s *Session) clientInfo() proto.ClientInfo {
	return proto.ClientInfo{
		QueryKind:          proto.QueryKindInitial,
		InitialUser:        s.cfg.User,
		Interface:          proto.InterfaceTCP,
		ClientName:         s.cfg.ClientName,
		ClientVersionMajor: s.cfg.ClientVersionMajor,
		ClientVersionMinor: s.cfg.ClientVersionMinor,
		ClientRevision:     proto.ClientRevision,
		ClientVersionPatch: s.cfg.ClientVersionPatch,
	}
}

func nextQueryID() string {
	return uuid.New().String()
}

// Execute issues sql and consumes all response packets, discarding any
// Data blocks, returning once EndOfStream arrives.
func (s *Session) Execute(ctx context.Context, sql string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return cwerror.E(cwerror.Connection, "session is closed")
	}
	err := s.withDeadline(s.conn.Raw(), s.cfg.SendTimeout, func() error {
		return s.conn.SendQuery(nextQueryID(), sql, s.clientInfo())
	})
	if err != nil {
		s.closeLocked()
		return cwerror.E(cwerror.Io, err)
	}
	return s.drainLocked()
}

// Query issues sql and returns the ordered sequence of non-empty Data
// blocks, along with any Totals/Extremes blocks the server sent.
func (s *Session) Query(ctx context.Context, sql string) (*QueryResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil, cwerror.E(cwerror.Connection, "session is closed")
	}
	err := s.withDeadline(s.conn.Raw(), s.cfg.SendTimeout, func() error {
		return s.conn.SendQuery(nextQueryID(), sql, s.clientInfo())
	})
	if err != nil {
		s.closeLocked()
		return nil, cwerror.E(cwerror.Io, err)
	}

	res := &QueryResult{}
	loopErr := s.withDeadline(s.conn.Raw(), s.cfg.RecvTimeout, func() error {
		return s.conn.RunResponseLoop(proto.Handler{
			OnData: func(b *block.Block) error {
				if n, _ := b.NRows(); n > 0 {
					res.Blocks = append(res.Blocks, b)
				}
				return nil
			},
			OnTotals:   func(b *block.Block) error { res.Totals = b; return nil },
			OnExtremes: func(b *block.Block) error { res.Extremes = b; return nil },
			OnProgress: func(p proto.Progress) error { s.lastProgress = p; return nil },
			OnProfileInfo: func(p proto.ProfileInfo) error {
				s.lastProfile = p
				return nil
			},
		})
	})
	if loopErr != nil {
		return nil, s.classifyStreamErr(loopErr)
	}
	return res, nil
}

func (s *Session) drainLocked() error {
	err := s.withDeadline(s.conn.Raw(), s.cfg.RecvTimeout, func() error {
		return s.conn.RunResponseLoop(proto.Handler{
			OnProgress:    func(p proto.Progress) error { s.lastProgress = p; return nil },
			OnProfileInfo: func(p proto.ProfileInfo) error { s.lastProfile = p; return nil },
		})
	})
	if err != nil {
		return s.classifyStreamErr(err)
	}
	return nil
}

// classifyStreamErr maps an error surfaced mid-exchange into its
// cwerror.Kind and, per spec.md §7, closes the session for every kind
// except a Server exception that arrived at a stable point -- which
// RunResponseLoop only ever returns after fully draining to either
// EndOfStream or the Exception itself, both stable points between
// statements. A checksum or decompressed-size mismatch is Compression;
// a timed-out or closed socket is Io; anything else that isn't a server
// exception falls back to Protocol.
func (s *Session) classifyStreamErr(err error) error {
	if se, ok := err.(*proto.ServerError); ok {
		return serverErr(se)
	}
	s.closeLocked()
	switch {
	case errors.Is(err, compress.ErrChecksumMismatch), errors.Is(err, compress.ErrSizeMismatch):
		return cwerror.E(cwerror.Compression, err)
	case errors.Is(err, wire.ErrUnexpectedEOF), isTimeout(err):
		return cwerror.E(cwerror.Io, err)
	default:
		return cwerror.E(cwerror.Protocol, err)
	}
}

// isTimeout reports whether err is (or wraps) a net.Error reporting a
// timeout, e.g. a read/write deadline expiring mid-exchange.
func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// Ping performs a Ping/Pong round trip.
func (s *Session) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return cwerror.E(cwerror.Connection, "session is closed")
	}
	err := s.withDeadline(s.conn.Raw(), s.cfg.SendTimeout, s.conn.Ping)
	if err != nil {
		s.closeLocked()
		return cwerror.E(cwerror.Io, err)
	}
	return nil
}

// Cancel sends a Cancel packet and drains the response stream up to
// EndOfStream or an Exception. It takes the same mutex that Execute,
// Query and Insert hold for their whole exchange, so it runs only between
// exchanges, never while one of them is in flight.
func (s *Session) Cancel(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return cwerror.E(cwerror.Connection, "session is closed")
	}
	err := s.withDeadline(s.conn.Raw(), s.cfg.SendTimeout, s.conn.Cancel)
	if err != nil {
		return s.classifyStreamErr(err)
	}
	return nil
}

// QueryResult is the return value of Query: the ordered, non-empty Data
// blocks plus any Totals/Extremes blocks the server sent alongside them.
type QueryResult struct {
	Blocks   []*block.Block
	Totals   *block.Block
	Extremes *block.Block
}
