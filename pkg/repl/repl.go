// Package repl is a minimal read-eval-print loop. It calls the Consumer
// to do all the eval work and only handles line editing and history.
package repl

import (
	"github.com/peterh/liner"
)

// Consumer evaluates one line of input and reports whether the loop
// should stop.
type Consumer interface {
	Consume(line string) bool
	Prompt() string
}

// Run executes the REPL until c.Consume returns true or the user sends
// EOF (Ctrl-D) or an interrupt (Ctrl-C).
func Run(c Consumer) error {
	l := liner.NewLiner()
	defer l.Close()
	l.SetCtrlCAborts(true)
	for {
		line, err := l.Prompt(c.Prompt())
		if err != nil {
			if err == liner.ErrPromptAborted {
				return nil
			}
			return err
		}
		l.AppendHistory(line)
		if c.Consume(line) {
			return nil
		}
	}
}
