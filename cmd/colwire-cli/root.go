package main

import (
	"context"
	"flag"
	"time"

	"go.uber.org/zap"

	colwire "github.com/colwire/colwire-go"
	"github.com/colwire/colwire-go/pkg/charm"
)

// Cli is the root command: global connection flags, with Query/Execute/
// Ping/Insert/Shell and help as its sub-commands.
var Cli = &charm.Spec{
	Name:  "colwire-cli",
	Usage: "colwire-cli [global options] command [options] [arguments...]",
	Short: "talk to a columnar OLAP database over its native protocol",
	Long: `
colwire-cli is a thin demonstration client for the colwire-go Session
API: it dials one database, runs one command, and exits.`,
	New: New,
}

func init() {
	Cli.Add(Query)
	Cli.Add(Execute)
	Cli.Add(Ping)
	Cli.Add(Insert)
	Cli.Add(Shell)
	Cli.Add(charm.Help)
}

// Command carries the global connection flags shared by every
// sub-command; each sub-command dials its own Session through connect.
type Command struct {
	host     string
	port     int
	database string
	user     string
	password string
	tls      bool
	verbose  bool
	logFile  string
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{}
	f.StringVar(&c.host, "host", "127.0.0.1", "database host")
	f.IntVar(&c.port, "port", 9000, "database native protocol port")
	f.StringVar(&c.database, "database", "default", "database name")
	f.StringVar(&c.user, "user", "default", "user name")
	f.StringVar(&c.password, "password", "", "password")
	f.BoolVar(&c.tls, "tls", false, "wrap the connection in TLS")
	f.BoolVar(&c.verbose, "v", false, "log protocol events to stderr")
	f.StringVar(&c.logFile, "log-file", "", "write -v protocol logs to this file (rotated) instead of stderr")
	return c, nil
}

// Run returns charm.ErrNoRun, so the bare root command fails with an
// error listing the available sub-commands, as any command with no
// direct action of its own does.
func (c *Command) Run(args []string) error {
	return charm.ErrNoRun
}

// connect dials and hands back a Session built from the root command's
// global flags, shared by every sub-command.
func (c *Command) connect(ctx context.Context) (*colwire.Session, error) {
	log := zap.NewNop()
	if c.verbose {
		var err error
		if log, err = openVerboseLogger(c.logFile); err != nil {
			return nil, err
		}
	}
	return colwire.Connect(ctx, colwire.Config{
		Host:           c.host,
		Port:           c.port,
		Database:       c.database,
		User:           c.user,
		Password:       c.password,
		TLS:            c.tls,
		ClientName:     "colwire-cli",
		ConnectTimeout: 10 * time.Second,
		SendTimeout:    30 * time.Second,
		RecvTimeout:    30 * time.Second,
	}, log)
}
