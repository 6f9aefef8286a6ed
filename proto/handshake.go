package proto

import (
	"github.com/go-faster/errors"

	"github.com/colwire/colwire-go/wire"
)

// HandshakeParams carries everything the client side of the Hello
// exchange needs to send.
type HandshakeParams struct {
	Database       string
	User           string
	Password       string
	ClientName     string
	ClientVersionMajor uint64
	ClientVersionMinor uint64
	ClientVersionPatch uint64
}

// Handshake performs the Disconnected -> Connected transition: send
// Hello, read the server's Hello (or fail on an Exception in its place),
// and populate c.Server.
func (c *Conn) Handshake(p HandshakeParams) error {
	if err := c.sendHello(p); err != nil {
		return errors.Wrap(err, "send hello")
	}
	kind, err := c.r.Uvarint()
	if err != nil {
		return errors.Wrap(err, "read hello packet kind")
	}
	switch kind {
	case ServerHello:
		return c.readServerHello()
	case ServerException:
		ex, err := readException(c.r)
		if err != nil {
			return errors.Wrap(err, "read exception")
		}
		return &ServerError{Exception: ex}
	default:
		return errors.Wrapf(ErrUnexpectedPacket, "got %d, expected Hello or Exception", kind)
	}
}

func (c *Conn) sendHello(p HandshakeParams) error {
	if err := c.w.PutUvarint(ClientHello); err != nil {
		return err
	}
	if err := c.w.PutString(p.ClientName); err != nil {
		return err
	}
	if err := c.w.PutUvarint(p.ClientVersionMajor); err != nil {
		return err
	}
	if err := c.w.PutUvarint(p.ClientVersionMinor); err != nil {
		return err
	}
	if err := c.w.PutUvarint(ClientRevision); err != nil {
		return err
	}
	if err := c.w.PutString(p.Database); err != nil {
		return err
	}
	if err := c.w.PutString(p.User); err != nil {
		return err
	}
	if err := c.w.PutString(p.Password); err != nil {
		return err
	}
	return nil
}

func (c *Conn) readServerHello() error {
	name, err := c.r.String()
	if err != nil {
		return errors.Wrap(err, "name")
	}
	major, err := c.r.Uvarint()
	if err != nil {
		return errors.Wrap(err, "version major")
	}
	minor, err := c.r.Uvarint()
	if err != nil {
		return errors.Wrap(err, "version minor")
	}
	revision, err := c.r.Uvarint()
	if err != nil {
		return errors.Wrap(err, "revision")
	}
	info := ServerInfo{Name: name, VersionMajor: major, VersionMinor: minor, Revision: revision}

	negotiated := info.Negotiated()
	if gated(negotiated, RevisionWithServerTimezone) {
		tz, err := c.r.String()
		if err != nil {
			return errors.Wrap(err, "timezone")
		}
		info.Timezone = tz
	}
	if gated(negotiated, RevisionWithDisplayName) {
		dn, err := c.r.String()
		if err != nil {
			return errors.Wrap(err, "display name")
		}
		info.DisplayName = dn
	}
	if gated(negotiated, RevisionWithClientInfo) {
		// Patch version is folded into the same gate as the rest of the
		// handshake tail in practice; read it last so older servers
		// that omit it still parse cleanly.
		patch, err := c.r.Uvarint()
		if err != nil {
			return errors.Wrap(err, "version patch")
		}
		info.VersionPatch = patch
	}
	c.Server = info
	return nil
}

func readException(r *wire.Reader) (*Exception, error) {
	code, err := r.Int32()
	if err != nil {
		return nil, errors.Wrap(err, "code")
	}
	name, err := r.String()
	if err != nil {
		return nil, errors.Wrap(err, "name")
	}
	message, err := r.String()
	if err != nil {
		return nil, errors.Wrap(err, "message")
	}
	stack, err := r.String()
	if err != nil {
		return nil, errors.Wrap(err, "stack trace")
	}
	hasNested, err := r.Bool()
	if err != nil {
		return nil, errors.Wrap(err, "has nested")
	}
	ex := &Exception{Code: code, Name: name, Message: message, StackTrace: stack}
	if hasNested {
		nested, err := readException(r)
		if err != nil {
			return nil, errors.Wrap(err, "nested")
		}
		ex.Nested = nested
	}
	return ex, nil
}

// ServerError wraps an Exception received from the server so callers can
// distinguish it from transport/protocol failures with errors.As.
type ServerError struct {
	Exception *Exception
}

func (e *ServerError) Error() string {
	return e.Exception.Name + ": " + e.Exception.Message
}
