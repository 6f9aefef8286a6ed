package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/colwire/colwire-go/pkg/charm"
)

var Execute = &charm.Spec{
	Name:  "execute",
	Usage: "execute <sql>",
	Short: "run a statement that returns no rows (DDL, DML)",
	New:   NewExecute,
}

type ExecuteCommand struct {
	*Command
}

func NewExecute(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	return &ExecuteCommand{Command: parent.(*Command)}, nil
}

func (c *ExecuteCommand) Run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("execute: missing sql argument")
	}
	sql := strings.Join(args, " ")

	ctx := context.Background()
	sess, err := c.connect(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	return sess.Execute(ctx, sql)
}
