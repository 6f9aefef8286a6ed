package proto

import (
	"github.com/go-faster/errors"

	"github.com/colwire/colwire-go/block"
	"github.com/colwire/colwire-go/wire"
)

// SendQuery writes the Query packet: query id, revision-gated client
// info, empty settings, revision-gated empty interserver secret, the
// Complete processing stage, the negotiated compression flag, the SQL
// text, and the empty-Block "no input data" sentinel.
func (c *Conn) SendQuery(queryID, sql string, info ClientInfo) error {
	negotiated := c.negotiated()

	if err := c.w.PutUvarint(ClientQuery); err != nil {
		return err
	}
	if err := c.w.PutString(queryID); err != nil {
		return err
	}
	if gated(negotiated, RevisionWithClientInfo) {
		if err := writeClientInfo(c.w, info, negotiated); err != nil {
			return errors.Wrap(err, "client info")
		}
	}
	// Settings: empty list, terminated like block_info's tagged fields --
	// a single empty string ends the sequence.
	if err := c.w.PutString(""); err != nil {
		return errors.Wrap(err, "settings terminator")
	}
	if gated(negotiated, RevisionWithInterserverSecret) {
		if err := c.w.PutString(""); err != nil {
			return errors.Wrap(err, "interserver secret")
		}
	}
	if err := c.w.PutUvarint(StageComplete); err != nil {
		return errors.Wrap(err, "stage")
	}
	compressionFlag := CompressionDisabled
	if c.Compression != 0 {
		compressionFlag = CompressionEnabled
	}
	if err := c.w.PutUvarint(compressionFlag); err != nil {
		return errors.Wrap(err, "compression flag")
	}
	if err := c.w.PutString(sql); err != nil {
		return errors.Wrap(err, "sql")
	}
	return c.sendBlock(&block.Block{Info: block.DefaultInfo})
}

func writeClientInfo(w *wire.Writer, info ClientInfo, negotiated int) error {
	if err := w.PutUint8(info.QueryKind); err != nil {
		return err
	}
	if err := w.PutString(info.InitialUser); err != nil {
		return err
	}
	if err := w.PutString(info.InitialQueryID); err != nil {
		return err
	}
	if err := w.PutString(info.InitialAddress); err != nil {
		return err
	}
	if err := w.PutUint8(info.Interface); err != nil {
		return err
	}
	if err := w.PutString(info.OSUser); err != nil {
		return err
	}
	if err := w.PutString(info.ClientHostname); err != nil {
		return err
	}
	if err := w.PutString(info.ClientName); err != nil {
		return err
	}
	if err := w.PutUvarint(info.ClientVersionMajor); err != nil {
		return err
	}
	if err := w.PutUvarint(info.ClientVersionMinor); err != nil {
		return err
	}
	if err := w.PutUvarint(info.ClientRevision); err != nil {
		return err
	}
	if gated(negotiated, RevisionWithQuotaKey) {
		if err := w.PutString(info.QuotaKey); err != nil {
			return err
		}
	}
	if err := w.PutUvarint(info.DistributedDepth); err != nil {
		return err
	}
	if err := w.PutUvarint(uint64(info.ClientVersionPatch)); err != nil {
		return err
	}
	if gated(negotiated, RevisionWithOpenTelemetry) {
		present := uint8(0)
		if info.TraceParent {
			present = 1
		}
		if err := w.PutUint8(present); err != nil {
			return err
		}
		if info.TraceParent {
			if err := w.WriteAll(info.TraceID[:]); err != nil {
				return err
			}
			if err := w.WriteAll(info.SpanID[:]); err != nil {
				return err
			}
			if err := w.PutString(info.TraceState); err != nil {
				return err
			}
			if err := w.PutUint8(info.TraceFlags); err != nil {
				return err
			}
		}
	}
	return nil
}

// sendBlock writes a Data packet carrying b, routing through the
// negotiated compression codec when enabled.
func (c *Conn) sendBlock(b *block.Block) error {
	if err := c.w.PutUvarint(ClientData); err != nil {
		return err
	}
	if err := c.w.PutString(""); err != nil { // reserved temporary-table-name preamble
		return err
	}
	w, flush := c.dataWriter()
	if err := block.Encode(w, b); err != nil {
		return err
	}
	return flush()
}

// Handler receives packets from RunResponseLoop as they arrive. Nil
// fields are allowed; the corresponding packet is decoded (to stay in
// sync with the stream) but discarded.
type Handler struct {
	OnData          func(*block.Block) error
	OnTotals        func(*block.Block) error
	OnExtremes      func(*block.Block) error
	OnProgress      func(Progress) error
	OnProfileInfo   func(ProfileInfo) error
	OnProfileEvents func(*block.Block) error
	OnLog           func(*block.Block) error
	OnTableColumns  func(table, columns string) error
}

// RunResponseLoop reads packets until EndOfStream, a handler requests an
// early stop via ErrStopLoop, or an error occurs. An Exception packet is
// always terminal and returned as a *ServerError.
func (c *Conn) RunResponseLoop(h Handler) error {
	for {
		kind, err := c.r.Uvarint()
		if err != nil {
			return errors.Wrap(err, "read packet kind")
		}
		switch kind {
		case ServerData:
			b, err := c.readBlock()
			if err != nil {
				return errors.Wrap(err, "data")
			}
			if h.OnData != nil {
				if err := h.OnData(b); err != nil {
					if errors.Is(err, ErrStopLoop) {
						return nil
					}
					return err
				}
			}
		case ServerTotals:
			b, err := c.readBlock()
			if err != nil {
				return errors.Wrap(err, "totals")
			}
			if h.OnTotals != nil {
				if err := h.OnTotals(b); err != nil {
					return err
				}
			}
		case ServerExtremes:
			b, err := c.readBlock()
			if err != nil {
				return errors.Wrap(err, "extremes")
			}
			if h.OnExtremes != nil {
				if err := h.OnExtremes(b); err != nil {
					return err
				}
			}
		case ServerProgress:
			p, err := c.readProgress()
			if err != nil {
				return errors.Wrap(err, "progress")
			}
			if h.OnProgress != nil {
				if err := h.OnProgress(p); err != nil {
					return err
				}
			}
		case ServerProfileInfo:
			p, err := c.readProfileInfo()
			if err != nil {
				return errors.Wrap(err, "profile info")
			}
			if h.OnProfileInfo != nil {
				if err := h.OnProfileInfo(p); err != nil {
					return err
				}
			}
		case ServerProfileEvents:
			b, err := c.readBlock()
			if err != nil {
				return errors.Wrap(err, "profile events")
			}
			if h.OnProfileEvents != nil {
				if err := h.OnProfileEvents(b); err != nil {
					return err
				}
			}
		case ServerLog:
			b, err := c.readBlock()
			if err != nil {
				return errors.Wrap(err, "log")
			}
			if h.OnLog != nil {
				if err := h.OnLog(b); err != nil {
					return err
				}
			}
		case ServerTableColumns:
			table, err := c.r.String()
			if err != nil {
				return errors.Wrap(err, "table columns: table")
			}
			columns, err := c.r.String()
			if err != nil {
				return errors.Wrap(err, "table columns: columns")
			}
			if h.OnTableColumns != nil {
				if err := h.OnTableColumns(table, columns); err != nil {
					return err
				}
			}
		case ServerException:
			ex, err := readException(c.r)
			if err != nil {
				return errors.Wrap(err, "exception")
			}
			return &ServerError{Exception: ex}
		case ServerEndOfStream:
			return nil
		default:
			return errors.Wrapf(ErrUnexpectedPacket, "got server packet kind %d", kind)
		}
	}
}

// ErrStopLoop lets a Handler callback end RunResponseLoop early without
// treating it as a failure, used by the INSERT phase to stop as soon as
// the schema-template block arrives.
var ErrStopLoop = errors.New("proto: stop response loop")

func (c *Conn) readBlock() (*block.Block, error) {
	// The uncompressed temporary-table-name preamble precedes the block
	// bytes, mirroring what sendBlock writes.
	if _, err := c.r.String(); err != nil {
		return nil, errors.Wrap(err, "temporary table name")
	}
	return block.Decode(c.dataReader())
}

func (c *Conn) readProgress() (Progress, error) {
	var p Progress
	var err error
	if p.Rows, err = c.r.Uvarint(); err != nil {
		return p, err
	}
	if p.Bytes, err = c.r.Uvarint(); err != nil {
		return p, err
	}
	if p.TotalRows, err = c.r.Uvarint(); err != nil {
		return p, err
	}
	if gated(c.negotiated(), RevisionWithClientInfo) {
		if p.WrittenRows, err = c.r.Uvarint(); err != nil {
			return p, err
		}
		if p.WrittenBytes, err = c.r.Uvarint(); err != nil {
			return p, err
		}
	}
	return p, nil
}

func (c *Conn) readProfileInfo() (ProfileInfo, error) {
	var p ProfileInfo
	var err error
	if p.Rows, err = c.r.Uvarint(); err != nil {
		return p, err
	}
	if p.Blocks, err = c.r.Uvarint(); err != nil {
		return p, err
	}
	if p.Bytes, err = c.r.Uvarint(); err != nil {
		return p, err
	}
	if p.AppliedLimit, err = c.r.Bool(); err != nil {
		return p, err
	}
	if p.RowsBeforeLimit, err = c.r.Uvarint(); err != nil {
		return p, err
	}
	if p.CalculatedRowsBeforeLimit, err = c.r.Bool(); err != nil {
		return p, err
	}
	return p, nil
}
