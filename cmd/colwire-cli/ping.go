package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/colwire/colwire-go/pkg/charm"
)

var Ping = &charm.Spec{
	Name:  "ping",
	Usage: "ping",
	Short: "check that the server is reachable and responding",
	New:   NewPing,
}

type PingCommand struct {
	*Command
}

func NewPing(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	return &PingCommand{Command: parent.(*Command)}, nil
}

func (c *PingCommand) Run(args []string) error {
	ctx := context.Background()
	sess, err := c.connect(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.Ping(ctx); err != nil {
		return err
	}
	info := sess.LastServerInfo()
	fmt.Printf("ok: %s %d.%d.%d\n", info.Name, info.VersionMajor, info.VersionMinor, info.VersionPatch)
	return nil
}
