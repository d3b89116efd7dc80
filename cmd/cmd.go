// Package cmd implements the radview binary's subcommand dispatch: process,
// viewm, viewn. Grounded on gofem's main.go (flag.Parse, positional
// dispatch, deferred cleanup), with panic/recover replaced by explicit
// error returns and MPI start/stop dropped — this is a single-process
// batch tool, not a distributed FEM solver (DESIGN.md).
package cmd

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pkg/errors"
)

// Main is the program entry point's logic, factored out of main() so it
// can be exercised without calling os.Exit.
func Main(args []string) int {
	fs := flag.NewFlagSet("radview", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return ExitBadArgs
	}

	rest := fs.Args()
	if len(rest) < 2 {
		fmt.Fprintln(os.Stderr, "usage: radview <process|viewm|viewn> <dir>")
		return ExitBadArgs
	}

	sub, dir := rest[0], rest[1]
	var err error
	switch sub {
	case "process":
		err = Process(dir)
	case "viewm":
		err = ViewMaterials(dir)
	case "viewn":
		err = ViewNormals(dir)
	default:
		err = errors.Wrapf(ErrBadArguments, "unknown subcommand %q", sub)
	}

	if err != nil {
		log.Printf("radview: %v\n", err)
	}
	return exitCode(err)
}
