package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/macropower/synckit/internal/cli"
)

const (
	cmdName = "syncbench"

	shortDesc = "The synckit benchmark Command Line Interface (CLI)."
	longDesc  = `The synckit benchmark (syncbench) Command Line Interface (CLI).

synckit is a concurrency safety toolkit: blocking FIFO queues built on
explicit mutex and condition primitives, and strong/weak lifetime guards for
observer registries. syncbench exercises those primitives under configurable
load, verifies their ordering and lifetime guarantees, and reports
throughput.
`
)

func main() {
	cmd := cli.NewRootCmd(cmdName, shortDesc, longDesc)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, strings.TrimLeft(err.Error(), "\n"))
		os.Exit(1)
	}
}
