// radview computes the radiative view factors (element-element,
// element-Earth, element-Sun) a transient thermal solver needs, from a
// triangulated spacecraft mesh, a material assignment and an orbit
// trajectory.
package main

import (
	"os"

	"github.com/dpedroso/radview/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args[1:]))
}
