package proto

import (
	"github.com/go-faster/errors"

	"github.com/colwire/colwire-go/block"
)

// ErrNoSchemaTemplate is returned when the server's first response to an
// INSERT query is not the expected schema-template Data block (n_columns
// > 0, n_rows == 0).
var ErrNoSchemaTemplate = errors.New("proto: server did not send an insert schema template")

// AwaitInsertSchema sends an INSERT query and reads packets until the
// schema-template block arrives: a Data block with at least one column
// and zero rows, describing the column names and types the server
// expects. Progress/ProfileInfo/Log packets preceding it are forwarded
// to h; any Data block that doesn't look like a template, or an
// Exception, ends the wait with an error.
func (c *Conn) AwaitInsertSchema(queryID, sql string, info ClientInfo, h Handler) (*block.Block, error) {
	if err := c.SendQuery(queryID, sql, info); err != nil {
		return nil, errors.Wrap(err, "send query")
	}
	var schema *block.Block
	loopHandler := h
	loopHandler.OnData = func(b *block.Block) error {
		if len(b.Columns) == 0 {
			return ErrNoSchemaTemplate
		}
		if n, err := b.NRows(); err != nil || n != 0 {
			return ErrNoSchemaTemplate
		}
		schema = b
		return ErrStopLoop
	}
	if err := c.RunResponseLoop(loopHandler); err != nil {
		return nil, err
	}
	if schema == nil {
		return nil, ErrNoSchemaTemplate
	}
	return schema, nil
}

// SendInsertBlock writes one Data packet carrying a chunk of rows
// matching the schema template's columns. Call it as many times as
// needed, then FinishInsert.
func (c *Conn) SendInsertBlock(b *block.Block) error {
	return c.sendBlock(b)
}

// FinishInsert writes the terminating empty Data block and waits for
// EndOfStream, forwarding any Progress/ProfileInfo packets to h.
func (c *Conn) FinishInsert(h Handler) error {
	if err := c.sendBlock(&block.Block{Info: block.DefaultInfo}); err != nil {
		return errors.Wrap(err, "send terminating block")
	}
	h.OnData = nil
	return c.RunResponseLoop(h)
}
