// robospec encodes robot specifications into hexadecimal codes and decodes
// them back.
package main

import (
	"fmt"
	"os"

	"github.com/robospec/robospec-go/cmd/robospec/commands"
)

const (
	exitSuccess      = 0
	exitCommandError = 1
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitCommandError)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var exitCode int
	switch cmd {
	case "encode", "enc":
		exitCode = commands.RunEncode(args, os.Stdout, os.Stderr)
	case "decode", "dec":
		exitCode = commands.RunDecode(args, os.Stdout, os.Stderr)
	case "catalog":
		exitCode = commands.RunCatalog(args, os.Stdout, os.Stderr)
	case "lint":
		exitCode = commands.RunLint(args, os.Stdout, os.Stderr)
	case "interactive", "i":
		exitCode = commands.RunInteractive(args, os.Stdout, os.Stderr)
	case "help", "-h", "--help":
		printUsage()
		exitCode = exitSuccess
	case "version", "-v", "--version":
		fmt.Println("robospec version 0.1.0")
		exitCode = exitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		exitCode = exitCommandError
	}

	os.Exit(exitCode)
}

func printUsage() {
	fmt.Println(`robospec - robot specification code tool

Usage:
  robospec <command> [options]

Commands:
  encode       Encode a robot selection into a hexadecimal code
  decode       Decode hexadecimal codes into robot selections
  catalog      Show the attribute catalog
  lint         Check catalog or selection files
  interactive  Build or decode a specification interactively

Options:
  -h, --help     Show this help message
  -v, --version  Show version information

Exit codes:
  0  success
  1  command error (bad flags, unreadable files, invalid config)
  2  rejected input (unknown attribute, malformed or out-of-range code)

Configuration:
  --config FILE or $ROBOSPEC_CONFIG selects a YAML file with
  catalog_file, log_level, trace_file, format and uppercase.

Examples:
  robospec encode -t Iontec -n "KR 20 R3100 Iontec" -g Hydraulic -p WIFI -a FSD
  robospec decode 0x10017004180004000
  robospec catalog --kind protocol
  robospec interactive

For command-specific help, run:
  robospec <command> --help`)
}
