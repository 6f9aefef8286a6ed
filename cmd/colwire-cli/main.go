package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Cli.ExecRoot(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "colwire-cli: %s\n", err)
		os.Exit(1)
	}
}
