package proto

import (
	"github.com/go-faster/errors"
)

// Ping sends a Ping packet and blocks for the matching Pong. Any other
// packet kind in its place is a protocol error: Ping/Pong is only valid
// between requests, never interleaved with a query in flight.
func (c *Conn) Ping() error {
	if err := c.w.PutUvarint(ClientPing); err != nil {
		return err
	}
	kind, err := c.r.Uvarint()
	if err != nil {
		return errors.Wrap(err, "read pong")
	}
	if kind != ServerPong {
		return errors.Wrapf(ErrUnexpectedPacket, "got %d, expected Pong", kind)
	}
	return nil
}

// Cancel sends a Cancel packet and drains the response stream, which the
// server ends with either EndOfStream or an Exception, discarding
// whatever rows were already in flight.
func (c *Conn) Cancel() error {
	if err := c.w.PutUvarint(ClientCancel); err != nil {
		return err
	}
	return c.RunResponseLoop(Handler{})
}
