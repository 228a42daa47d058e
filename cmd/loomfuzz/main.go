// Package main implements the loomfuzz CLI tool.
//
// loomgo has no source-rewriting step: a user links internal/loom/sync and
// internal/loom/sync/atomic into their own test binary and drives it with
// loom.NewBuilder(). This tool is the thin wrapper around that, useful for
// running the bundled scenarios from examples/ without writing a harness by
// hand.
//
// Usage:
//
//	loomfuzz run mp            # fuzz one of the bundled scenarios
//	loomfuzz list               # list the bundled scenarios
//	loomfuzz version
package main

import (
	"fmt"
	"os"

	"github.com/kolkov/loomgo/loom"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "run":
		runCommand(os.Args[2:])
	case "list":
		listCommand()
	case "version", "--version", "-v":
		info := loom.GetInfo()
		fmt.Printf("loomfuzz version %s\n", info.Version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`loomfuzz - deterministic concurrency fuzzer driver

USAGE:
    loomfuzz <command> [arguments]

COMMANDS:
    run <name>   Fuzz one of the bundled scenarios (see 'list')
    list         List the bundled scenario names
    version      Show version information
    help         Show this help message

EXAMPLES:
    loomfuzz list
    loomfuzz run mp
    loomfuzz run mutex

ABOUT:
    loomfuzz wraps the bundled examples/ scenarios, each of which is its own
    "go run" target under examples/<name>. This command exists for
    discoverability; scenarios can also be run directly with
    "go run ./examples/<name>".
`)
}

var scenarios = []string{"mp", "mpbroken", "counter", "mutex", "semaphore", "atomictask"}

func listCommand() {
	for _, s := range scenarios {
		fmt.Println(s)
	}
}

func runCommand(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: 'run' requires a scenario name, see 'loomfuzz list'")
		os.Exit(1)
	}
	name := args[0]
	for _, s := range scenarios {
		if s == name {
			fmt.Fprintf(os.Stderr, "loomfuzz: scenarios run as their own binaries; use:\n\n    go run ./examples/%s\n\n", name)
			return
		}
	}
	fmt.Fprintf(os.Stderr, "Error: unknown scenario %q, see 'loomfuzz list'\n", name)
	os.Exit(1)
}
