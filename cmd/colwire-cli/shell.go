package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	colwire "github.com/colwire/colwire-go"
	"github.com/colwire/colwire-go/pkg/charm"
	"github.com/colwire/colwire-go/pkg/repl"
)

var Shell = &charm.Spec{
	Name:  "shell",
	Usage: "shell",
	Short: "open an interactive line-editing prompt against one connection",
	Long: `
The shell command dials once, then reads SQL statements from an
interactive prompt, one per line, until ".exit" or EOF. SELECT
statements print their returned columns; everything else just runs.`,
	New: NewShell,
}

type ShellCommand struct {
	*Command
	sess *colwire.Session
}

func NewShell(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	return &ShellCommand{Command: parent.(*Command)}, nil
}

func (c *ShellCommand) Run(args []string) error {
	ctx := context.Background()
	sess, err := c.connect(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()
	c.sess = sess
	return repl.Run(c)
}

func (c *ShellCommand) Prompt() string {
	return "colwire> "
}

// Consume runs one line as SQL and reports whether the shell should
// exit. Errors are printed, not returned, so one bad statement doesn't
// end the session.
func (c *ShellCommand) Consume(line string) bool {
	sql := strings.TrimSpace(line)
	switch sql {
	case "":
		return false
	case ".exit", ".quit":
		return true
	}

	ctx := context.Background()
	if strings.HasPrefix(strings.ToUpper(sql), "SELECT") {
		res, err := c.sess.Query(ctx, sql)
		if err != nil {
			fmt.Println(err)
			return false
		}
		for _, b := range res.Blocks {
			printBlock(b)
		}
		return false
	}
	if err := c.sess.Execute(ctx, sql); err != nil {
		fmt.Println(err)
	}
	return false
}
