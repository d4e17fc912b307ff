// Package main provides the marionette CLI.
//
// Usage:
//
//	marionette [flags] <command>
//
// Commands:
//
//	run       - run a live generation session, streaming frames to a sink
//	generate  - generate a fixed number of frames offline to a JSON file
//	seed      - write a synthetic seed window to a JSON file
package main

import (
	"fmt"
	"os"

	"github.com/crimson-sun/marionette/cmd/marionette/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
