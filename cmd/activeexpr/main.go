// Command activeexpr is a small demo/debug front-end for the activeexpr
// engine: it builds one of a fixed set of example expression graphs over
// in-process mock source objects, drives mutations against those sources,
// and prints each resulting notification.
//
// Grounded on cuelang.org/go's cmd/cue: a thin main.go delegating
// immediately to an internal cmd package built around cobra.
package main

import (
	"os"

	"activeexpr.dev/go/cmd/activeexpr/cmd"
)

func main() {
	os.Exit(cmd.Main())
}
