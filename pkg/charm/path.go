package charm

import (
	"flag"
	"fmt"
	"strings"
)

type path []*instance

// parse walks spec and its descendants, consuming args level by level:
// each level's flags are parsed against that level's FlagSet, then the
// first remaining positional argument is checked against that level's
// sub-commands. It stops descending as soon as a level has no matching
// child, leaving the rest of args for that level's Command.Run.
func parse(spec *Spec, args []string, parent Command) (path, []string, bool, error) {
	var p path
	cur := spec
	curParent := parent
	for {
		inst, err := newInstance(curParent, cur)
		if err != nil {
			return nil, nil, false, err
		}
		p = append(p, inst)
		rest, err := parseFlags(inst.flags, args)
		if err != nil {
			return nil, nil, false, err
		}
		if len(rest) == 0 {
			return p, rest, false, nil
		}
		if rest[0] == "help" {
			return p, rest, false, NeedHelp
		}
		child := cur.lookupSub(rest[0])
		if child == nil {
			return p, rest, false, nil
		}
		curParent = inst.command
		cur = child
		args = rest[1:]
	}
}

// parseHelp resolves the command path named by a "help ..." invocation,
// e.g. "help query" walks to the "query" sub-command's instance.
func parseHelp(args []string) ([]*instance, error) {
	if len(args) > 0 && args[0] == "help" {
		args = args[1:]
	}
	return (&HelpCommand{}).search(args)
}

// parseFlags parses args against f and returns the leftover positional
// arguments.
func parseFlags(f *flag.FlagSet, args []string) ([]string, error) {
	if err := f.Parse(args); err != nil {
		return nil, err
	}
	return f.Args(), nil
}

func (p path) run(args []string) error {
	err := p.last().command.Run(args)
	if err == ErrNoRun {
		var subcmd string
		if len(args) == 0 {
			err = fmt.Errorf("%q: requires a sub-command: %s", p.pathname(), p.subCommands())
		} else {
			subcmd = args[0]
			err = fmt.Errorf("%q: no such sub-command %q: options are: %s", p.pathname(), subcmd, p.subCommands())
		}
	}
	return err
}

func (p path) last() *instance {
	return p[len(p)-1]
}

func (p path) pathname(args ...string) string {
	names := make([]string, 0, len(p)+len(args))
	for _, sub := range p {
		names = append(names, sub.spec.Name)
	}
	names = append(names, args...)
	return strings.Join(names, " ")
}

func (p path) subCommands() string {
	names := make([]string, 0, len(p))
	for _, spec := range p.last().spec.children {
		names = append(names, spec.Name)
	}
	return strings.Join(names, " ")
}
