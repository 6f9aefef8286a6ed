package proto_test

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colwire/colwire-go/block"
	"github.com/colwire/colwire-go/coltype"
	"github.com/colwire/colwire-go/column"
	"github.com/colwire/colwire-go/proto"
	"github.com/colwire/colwire-go/wire"
)

func pipe() (client net.Conn, sr *wire.Reader, sw *wire.Writer) {
	c, s := net.Pipe()
	return c, wire.NewReader(s), wire.NewWriter(s)
}

func writeException(t *testing.T, sw *wire.Writer, code int32, name, message string) {
	t.Helper()
	require.NoError(t, sw.PutInt32(code))
	require.NoError(t, sw.PutString(name))
	require.NoError(t, sw.PutString(message))
	require.NoError(t, sw.PutString(""))
	require.NoError(t, sw.PutBool(false))
}

func TestHandshakeSuccess(t *testing.T) {
	nc, sr, sw := pipe()
	defer nc.Close()
	c := proto.NewConn(nc, nil)

	done := make(chan error, 1)
	go func() {
		done <- func() error {
			if _, err := sr.Uvarint(); err != nil { // ClientHello
				return err
			}
			if _, err := sr.String(); err != nil { // client name
				return err
			}
			for i := 0; i < 2; i++ { // version major, minor
				if _, err := sr.Uvarint(); err != nil {
					return err
				}
			}
			if _, err := sr.Uvarint(); err != nil { // client revision
				return err
			}
			for i := 0; i < 3; i++ { // database, user, password
				if _, err := sr.String(); err != nil {
					return err
				}
			}
			if err := sw.PutUvarint(proto.ServerHello); err != nil {
				return err
			}
			if err := sw.PutString("TestServer"); err != nil {
				return err
			}
			if err := sw.PutUvarint(21); err != nil {
				return err
			}
			if err := sw.PutUvarint(8); err != nil {
				return err
			}
			if err := sw.PutUvarint(54460); err != nil {
				return err
			}
			if err := sw.PutString("UTC"); err != nil { // server timezone, gated
				return err
			}
			if err := sw.PutString("test display"); err != nil { // display name, gated
				return err
			}
			return sw.PutUvarint(3) // version patch, gated
		}()
	}()

	err := c.Handshake(proto.HandshakeParams{
		Database: "default", User: "default", Password: "",
		ClientName: "colwire-go", ClientVersionMajor: 1, ClientVersionMinor: 0, ClientVersionPatch: 0,
	})
	require.NoError(t, err)
	require.NoError(t, <-done)
	assert.Equal(t, "TestServer", c.Server.Name)
	assert.Equal(t, "UTC", c.Server.Timezone)
	assert.Equal(t, "test display", c.Server.DisplayName)
}

func TestHandshakeException(t *testing.T) {
	nc, sr, sw := pipe()
	defer nc.Close()
	c := proto.NewConn(nc, nil)

	done := make(chan error, 1)
	go func() {
		done <- func() error {
			if _, err := sr.Uvarint(); err != nil { // ClientHello
				return err
			}
			if _, err := sr.String(); err != nil { // client name
				return err
			}
			for i := 0; i < 2; i++ { // version major, minor
				if _, err := sr.Uvarint(); err != nil {
					return err
				}
			}
			if _, err := sr.Uvarint(); err != nil { // client revision
				return err
			}
			for i := 0; i < 3; i++ { // database, user, password
				if _, err := sr.String(); err != nil {
					return err
				}
			}
			if err := sw.PutUvarint(proto.ServerException); err != nil {
				return err
			}
			writeException(t, sw, 999, "DB::Exception", "auth failed")
			return nil
		}()
	}()

	err := c.Handshake(proto.HandshakeParams{ClientName: "colwire-go"})
	require.NoError(t, <-done)
	require.Error(t, err)
	var serverErr *proto.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, int32(999), serverErr.Exception.Code)
	assert.Equal(t, "auth failed", serverErr.Exception.Message)
}

func TestPingPong(t *testing.T) {
	nc, sr, sw := pipe()
	defer nc.Close()
	c := proto.NewConn(nc, nil)

	done := make(chan error, 1)
	go func() {
		done <- func() error {
			kind, err := sr.Uvarint()
			if err != nil {
				return err
			}
			if kind != proto.ClientPing {
				return assertFail("expected ClientPing")
			}
			return sw.PutUvarint(proto.ServerPong)
		}()
	}()

	require.NoError(t, c.Ping())
	require.NoError(t, <-done)
}

func assertFail(msg string) error { return &failError{msg} }

type failError struct{ msg string }

func (e *failError) Error() string { return e.msg }

func TestQueryRoundTrip(t *testing.T) {
	nc, sr, sw := pipe()
	defer nc.Close()
	c := proto.NewConn(nc, nil)

	done := make(chan error, 1)
	go func() {
		done <- func() error {
			if kind, err := sr.Uvarint(); err != nil || kind != proto.ClientQuery {
				return errOrFail(err, "expected ClientQuery")
			}
			if _, err := sr.String(); err != nil { // query id
				return err
			}
			if _, err := sr.String(); err != nil { // settings terminator
				return err
			}
			if _, err := sr.Uvarint(); err != nil { // stage
				return err
			}
			if _, err := sr.Uvarint(); err != nil { // compression flag
				return err
			}
			sql, err := sr.String()
			if err != nil {
				return err
			}
			if sql != "SELECT 1" {
				return assertFail("unexpected sql: " + sql)
			}
			if kind, err := sr.Uvarint(); err != nil || kind != proto.ClientData {
				return errOrFail(err, "expected ClientData (sentinel)")
			}
			if _, err := sr.String(); err != nil { // reserved temp table name
				return err
			}
			if _, err := block.Decode(sr); err != nil { // empty sentinel block
				return err
			}

			// Respond: Progress, one Data block, EndOfStream.
			if err := sw.PutUvarint(proto.ServerProgress); err != nil {
				return err
			}
			if err := sw.PutUvarint(1); err != nil {
				return err
			}
			if err := sw.PutUvarint(8); err != nil {
				return err
			}
			if err := sw.PutUvarint(1); err != nil {
				return err
			}

			if err := sw.PutUvarint(proto.ServerData); err != nil {
				return err
			}
			if err := sw.PutString(""); err != nil {
				return err
			}
			ty, err := coltype.Parse("Int32")
			if err != nil {
				return err
			}
			b := &block.Block{Info: block.DefaultInfo, Columns: []block.Column{
				{Name: "1", Type: ty, Values: []column.Value{int32(1)}},
			}}
			if err := block.Encode(sw, b); err != nil {
				return err
			}

			return sw.PutUvarint(proto.ServerEndOfStream)
		}()
	}()

	require.NoError(t, c.SendQuery("q1", "SELECT 1", proto.ClientInfo{}))

	var gotRows int
	var gotProgress proto.Progress
	err := c.RunResponseLoop(proto.Handler{
		OnData: func(b *block.Block) error {
			n, _ := b.NRows()
			gotRows += n
			return nil
		},
		OnProgress: func(p proto.Progress) error {
			gotProgress = p
			return nil
		},
	})
	require.NoError(t, err)
	require.NoError(t, <-done)
	assert.Equal(t, 1, gotRows)
	assert.Equal(t, uint64(1), gotProgress.Rows)
}

func errOrFail(err error, msg string) error {
	if err != nil {
		return err
	}
	return assertFail(msg)
}

func TestCancelDrainsToEndOfStream(t *testing.T) {
	nc, sr, sw := pipe()
	defer nc.Close()
	c := proto.NewConn(nc, nil)

	done := make(chan error, 1)
	go func() {
		done <- func() error {
			if kind, err := sr.Uvarint(); err != nil || kind != proto.ClientCancel {
				return errOrFail(err, "expected ClientCancel")
			}
			return sw.PutUvarint(proto.ServerEndOfStream)
		}()
	}()

	require.NoError(t, c.Cancel())
	require.NoError(t, <-done)
}

func TestInsertSchemaAndFinish(t *testing.T) {
	nc, sr, sw := pipe()
	defer nc.Close()
	c := proto.NewConn(nc, nil)

	ty, err := coltype.Parse("String")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- func() error {
			if kind, err := sr.Uvarint(); err != nil || kind != proto.ClientQuery {
				return errOrFail(err, "expected ClientQuery")
			}
			if _, err := sr.String(); err != nil {
				return err
			}
			if _, err := sr.String(); err != nil {
				return err
			}
			if _, err := sr.Uvarint(); err != nil {
				return err
			}
			if _, err := sr.Uvarint(); err != nil {
				return err
			}
			if _, err := sr.String(); err != nil { // sql
				return err
			}
			if kind, err := sr.Uvarint(); err != nil || kind != proto.ClientData {
				return errOrFail(err, "expected sentinel ClientData")
			}
			if _, err := sr.String(); err != nil {
				return err
			}
			if _, err := block.Decode(sr); err != nil {
				return err
			}

			// Schema template: one column, zero rows.
			if err := sw.PutUvarint(proto.ServerData); err != nil {
				return err
			}
			if err := sw.PutString(""); err != nil {
				return err
			}
			schema := &block.Block{Info: block.DefaultInfo, Columns: []block.Column{
				{Name: "name", Type: ty, Values: []column.Value{}},
			}}
			if err := block.Encode(sw, schema); err != nil {
				return err
			}

			// Next: the caller's data block.
			if kind, err := sr.Uvarint(); err != nil || kind != proto.ClientData {
				return errOrFail(err, "expected insert data block")
			}
			if _, err := sr.String(); err != nil {
				return err
			}
			got, err := block.Decode(sr)
			if err != nil {
				return err
			}
			if n, _ := got.NRows(); n != 1 {
				return assertFail("expected 1 row")
			}

			// Then: the terminating empty block.
			if kind, err := sr.Uvarint(); err != nil || kind != proto.ClientData {
				return errOrFail(err, "expected terminating data block")
			}
			if _, err := sr.String(); err != nil {
				return err
			}
			if _, err := block.Decode(sr); err != nil {
				return err
			}

			return sw.PutUvarint(proto.ServerEndOfStream)
		}()
	}()

	schema, err := c.AwaitInsertSchema("q2", "INSERT INTO t (name) VALUES", proto.ClientInfo{}, proto.Handler{})
	require.NoError(t, err)
	require.Len(t, schema.Columns, 1)
	assert.Equal(t, "name", schema.Columns[0].Name)

	require.NoError(t, c.SendInsertBlock(&block.Block{Info: block.DefaultInfo, Columns: []block.Column{
		{Name: "name", Type: ty, Values: []column.Value{"alice"}},
	}}))
	require.NoError(t, c.FinishInsert(proto.Handler{}))
	require.NoError(t, <-done)
}
