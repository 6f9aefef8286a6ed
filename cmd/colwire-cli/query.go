package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/colwire/colwire-go/block"
	"github.com/colwire/colwire-go/pkg/charm"
)

var Query = &charm.Spec{
	Name:  "query",
	Usage: "query <sql>",
	Short: "run a SELECT and print the returned columns",
	Long: `
The query command sends its argument as SQL and prints every returned
Data block as a tab-separated table, one header line per block.`,
	New: NewQuery,
}

type QueryCommand struct {
	*Command
	progress bool
}

func NewQuery(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &QueryCommand{Command: parent.(*Command)}
	f.BoolVar(&c.progress, "progress", false, "live-render row/byte progress while the query runs")
	return c, nil
}

func (c *QueryCommand) Run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("query: missing sql argument")
	}
	sql := strings.Join(args, " ")

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

	res, err := sess.Query(ctx, sql)
	if err != nil {
		return err
	}
	for _, b := range res.Blocks {
		printBlock(b)
	}
	return nil
}

func printBlock(b *block.Block) {
	names := make([]string, len(b.Columns))
	for i, col := range b.Columns {
		names[i] = col.Name
	}
	fmt.Println(strings.Join(names, "\t"))

	n, _ := b.NRows()
	for row := 0; row < n; row++ {
		cells := make([]string, len(b.Columns))
		for i, col := range b.Columns {
			cells[i] = fmt.Sprint(col.Values[row])
		}
		fmt.Println(strings.Join(cells, "\t"))
	}
}
