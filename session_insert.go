package colwire

import (
	"context"
	"fmt"

	"github.com/colwire/colwire-go/block"
	"github.com/colwire/colwire-go/cwerror"
	"github.com/colwire/colwire-go/proto"
)

// Insert runs the INSERT phase for sql (an "INSERT INTO ..." statement):
// it waits for the server's schema-template block, calls build with it
// to get the row block(s) to send -- since a block's column types can
// only be chosen correctly once the template is known -- validates each
// returned block against the template, sends them in order, then sends
// the terminating empty block and waits for EndOfStream.
func (s *Session) Insert(ctx context.Context, sql string, build func(schema *block.Block) ([]*block.Block, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return cwerror.E(cwerror.Connection, "session is closed")
	}

	var schema *block.Block
	err := s.withDeadline(s.conn.Raw(), s.cfg.RecvTimeout, func() error {
		var err error
		schema, err = s.conn.AwaitInsertSchema(nextQueryID(), sql, s.clientInfo(), proto.Handler{
			OnProgress:    func(p proto.Progress) error { s.lastProgress = p; return nil },
			OnProfileInfo: func(p proto.ProfileInfo) error { s.lastProfile = p; return nil },
		})
		return err
	})
	if err != nil {
		return s.classifyStreamErr(err)
	}

	blocks, err := build(schema)
	if err != nil {
		return err
	}

	for i, b := range blocks {
		if err := validateAgainstSchema(schema, b); err != nil {
			return err
		}
		sendErr := s.withDeadline(s.conn.Raw(), s.cfg.SendTimeout, func() error {
			return s.conn.SendInsertBlock(b)
		})
		if sendErr != nil {
			s.closeLocked()
			return cwerror.E(cwerror.Io, fmt.Errorf("sending insert block %d: %w", i, sendErr))
		}
	}

	err = s.withDeadline(s.conn.Raw(), s.cfg.RecvTimeout, func() error {
		return s.conn.FinishInsert(proto.Handler{
			OnProgress:    func(p proto.Progress) error { s.lastProgress = p; return nil },
			OnProfileInfo: func(p proto.ProfileInfo) error { s.lastProfile = p; return nil },
		})
	})
	if err != nil {
		return s.classifyStreamErr(err)
	}
	return nil
}

// validateAgainstSchema checks b's columns against the server's schema
// template: every column name in b must be declared in schema, and its
// type must match the template's type after both are compared
// structurally (coltype.Type.Equal), not by the raw type text.
func validateAgainstSchema(schema, b *block.Block) error {
	byName := make(map[string]*block.Column, len(schema.Columns))
	for i := range schema.Columns {
		byName[schema.Columns[i].Name] = &schema.Columns[i]
	}
	for _, col := range b.Columns {
		want, ok := byName[col.Name]
		if !ok {
			return cwerror.E(cwerror.Validation, "column %q is not part of the insert schema", col.Name)
		}
		if !want.Type.Equal(col.Type) {
			return cwerror.E(cwerror.Validation, "column %q has type %s, schema expects %s", col.Name, col.Type, want.Type)
		}
	}
	return nil
}
