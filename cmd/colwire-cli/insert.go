package main

import (
	"context"
	"flag"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"

	"github.com/colwire/colwire-go/block"
	"github.com/colwire/colwire-go/coerce"
	"github.com/colwire/colwire-go/coltype"
	"github.com/colwire/colwire-go/column"
	"github.com/colwire/colwire-go/pkg/charm"
)

var Insert = &charm.Spec{
	Name:  "insert",
	Usage: "insert <table> <col=value>...",
	Short: "insert one row, coercing each value to the column's template type",
	Long: `
The insert command runs an INSERT INTO <table> statement, waits for the
server's schema-template block, then sends one row built from its
col=value arguments. Every value is taken as a string, parsed against
the template's column type, and coerced to colwire-go's column
representation, so it only covers scalar columns (numbers, strings,
dates, bools, decimals) -- not arrays, tuples, or maps.`,
	New: NewInsert,
}

type InsertCommand struct {
	*Command
	progress bool
}

func NewInsert(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &InsertCommand{Command: parent.(*Command)}
	f.BoolVar(&c.progress, "progress", false, "live-render row/byte progress while the insert runs")
	return c, nil
}

func (c *InsertCommand) Run(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("insert: usage: insert <table> <col=value>...")
	}
	table := args[0]
	cols, vals, err := parseAssignments(args[1:])
	if err != nil {
		return err
	}

	ctx := context.Background()
	sess, err := c.connect(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	if c.progress {
		stop := startProgress(sess)
		defer stop()
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES", table, strings.Join(cols, ", "))
	return sess.Insert(ctx, sql, func(schema *block.Block) ([]*block.Block, error) {
		row, err := buildRow(schema, cols, vals)
		if err != nil {
			return nil, err
		}
		return []*block.Block{row}, nil
	})
}

func parseAssignments(args []string) (cols, vals []string, err error) {
	for _, a := range args {
		kv := strings.SplitN(a, "=", 2)
		if len(kv) != 2 {
			return nil, nil, fmt.Errorf("insert: bad col=value argument %q", a)
		}
		cols = append(cols, kv[0])
		vals = append(vals, kv[1])
	}
	return cols, vals, nil
}

// buildRow coerces the raw string arguments against the server's schema
// template, matching each by column name.
func buildRow(schema *block.Block, cols, vals []string) (*block.Block, error) {
	byName := make(map[string]*block.Column, len(schema.Columns))
	for i := range schema.Columns {
		byName[schema.Columns[i].Name] = &schema.Columns[i]
	}
	out := &block.Block{Info: block.DefaultInfo, Columns: make([]block.Column, len(cols))}
	for i, name := range cols {
		tmpl, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("insert: no such column %q in the insert schema", name)
		}
		raw, err := parseScalar(tmpl.Type, vals[i])
		if err != nil {
			return nil, fmt.Errorf("insert: column %q: %w", name, err)
		}
		v, err := coerce.ToColumn(tmpl.Type, raw)
		if err != nil {
			return nil, err
		}
		out.Columns[i] = block.Column{Name: name, Type: tmpl.Type, Values: []column.Value{v}}
	}
	return out, nil
}

// parseScalar turns a raw CLI argument into the Go value coerce.ToColumn
// and column.Encode expect for ty's effective kind, unwrapping Nullable
// and LowCardinality first since neither changes how the leaf value is
// shaped. coerce.ToColumn's own Nullable/Enum/default cases pass values
// through unchanged, so this is the only place such parsing happens.
func parseScalar(ty *coltype.Type, raw string) (interface{}, error) {
	leaf := ty
	for leaf.Kind == coltype.KindNullable || leaf.Kind == coltype.KindLowCardinality {
		leaf = leaf.Elem
	}
	switch leaf.Kind {
	case coltype.KindUInt8, coltype.KindUInt16, coltype.KindUInt32, coltype.KindUInt64:
		n, err := strconv.ParseUint(raw, 10, bitWidth(leaf.Kind))
		if err != nil {
			return nil, err
		}
		switch leaf.Kind {
		case coltype.KindUInt8:
			return uint8(n), nil
		case coltype.KindUInt16:
			return uint16(n), nil
		case coltype.KindUInt32:
			return uint32(n), nil
		default:
			return n, nil
		}
	case coltype.KindInt8, coltype.KindInt16, coltype.KindInt32, coltype.KindInt64:
		n, err := strconv.ParseInt(raw, 10, bitWidth(leaf.Kind))
		if err != nil {
			return nil, err
		}
		switch leaf.Kind {
		case coltype.KindInt8:
			return int8(n), nil
		case coltype.KindInt16:
			return int16(n), nil
		case coltype.KindInt32:
			return int32(n), nil
		default:
			return n, nil
		}
	case coltype.KindInt128, coltype.KindUInt128:
		n, ok := new(big.Int).SetString(raw, 10)
		if !ok {
			return nil, fmt.Errorf("not a valid integer: %q", raw)
		}
		return n, nil
	case coltype.KindFloat32:
		f, err := strconv.ParseFloat(raw, 32)
		return float32(f), err
	case coltype.KindFloat64:
		return strconv.ParseFloat(raw, 64)
	case coltype.KindBool:
		return strconv.ParseBool(raw)
	case coltype.KindDate, coltype.KindDateTime, coltype.KindDateTime64:
		t, err := dateparse.ParseAny(raw)
		if err != nil {
			return nil, fmt.Errorf("not a valid date/time: %q", raw)
		}
		return t, nil
	case coltype.KindDecimal:
		r, ok := new(big.Rat).SetString(raw)
		if !ok {
			return nil, fmt.Errorf("not a valid decimal: %q", raw)
		}
		return r, nil
	case coltype.KindFixedString:
		return []byte(raw), nil
	default:
		return raw, nil
	}
}

func bitWidth(k coltype.Kind) int {
	switch k {
	case coltype.KindUInt8, coltype.KindInt8:
		return 8
	case coltype.KindUInt16, coltype.KindInt16:
		return 16
	case coltype.KindUInt32, coltype.KindInt32:
		return 32
	default:
		return 64
	}
}
