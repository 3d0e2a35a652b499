// Command robospec-log views and analyzes codec trace files.
//
// Trace files are written by robospec when run with --trace (or trace_file
// in the config file). Each event records one encode or decode call.
//
// Usage:
//
//	robospec-log <command> [flags] <file.rtrace>
//
// Commands:
//
//	view     View trace file in human-readable format
//	export   Export trace file to JSONL or CSV format
//	filter   Filter trace file and write to new file
//	stats    Show statistics about the trace file
//
// Examples:
//
//	# View all events
//	robospec-log view codec.rtrace
//
//	# View only rejected decodes
//	robospec-log view --op decode --outcome rejected codec.rtrace
//
//	# Export to CSV
//	robospec-log export --format csv -o codec.csv codec.rtrace
//
//	# Keep one session
//	robospec-log filter --session 3f2a9c1e-... -o session.rtrace codec.rtrace
//
//	# Show statistics
//	robospec-log stats codec.rtrace
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/robospec/robospec-go/cmd/robospec-log/commands"
	"github.com/robospec/robospec-go/pkg/log"
)

const usage = `robospec-log - Robot Specification Trace Analyzer

Usage:
  robospec-log <command> [flags] <file.rtrace>

Commands:
  view     View trace file in human-readable format
  export   Export trace file to JSONL or CSV format
  filter   Filter trace file and write to new file
  stats    Show statistics about the trace file

Use "robospec-log <command> --help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// newFlagSet creates a flag set for a command with the shared filter flags.
func newFlagSet(name, summary, extra string) (*pflag.FlagSet, *commands.FilterOptions) {
	fs := pflag.NewFlagSet(name, pflag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `robospec-log %s - %s

Usage:
  robospec-log %s [flags]%s <file.rtrace>

Flags:
`, name, summary, name, extra)
		fs.PrintDefaults()
	}

	var opts commands.FilterOptions
	fs.StringVar(&opts.SessionID, "session", "", "Filter by session ID")
	fs.StringVar(&opts.Operation, "op", "", "Filter by operation (encode, decode)")
	fs.StringVar(&opts.Outcome, "outcome", "", "Filter by outcome (ok, rejected)")
	fs.StringVar(&opts.ErrorKind, "error-kind", "", "Filter by error kind (e.g. unknown_attribute)")
	fs.StringVar(&opts.Code, "code", "", "Filter by hexadecimal code")
	fs.StringVar(&opts.TimeStart, "time-start", "", "Filter events at or after time (RFC3339)")
	fs.StringVar(&opts.TimeEnd, "time-end", "", "Filter events before time (RFC3339)")
	return fs, &opts
}

// parse parses args and returns the trace path and filter, exiting on error.
func parse(fs *pflag.FlagSet, opts *commands.FilterOptions, args []string) (string, log.Filter) {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: trace file path required")
		fs.Usage()
		os.Exit(1)
	}

	filter, err := commands.BuildFilter(*opts)
	if err != nil {
		fatal(err)
	}
	return fs.Arg(0), filter
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func runView(args []string) {
	fs, opts := newFlagSet("view", "View trace file in human-readable format", "")
	path, filter := parse(fs, opts, args)

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fatal(err)
	}
}

func runExport(args []string) {
	fs, opts := newFlagSet("export", "Export trace file to JSONL or CSV format", "")
	format := fs.StringP("format", "f", "jsonl", "Output format (jsonl, csv)")
	output := fs.StringP("output", "o", "", "Output file (default: stdout)")
	path, filter := parse(fs, opts, args)

	if err := commands.RunExport(path, *format, *output, filter, os.Stdout); err != nil {
		fatal(err)
	}
}

func runFilter(args []string) {
	fs, opts := newFlagSet("filter", "Filter trace file and write to new file", " -o <output.rtrace>")
	output := fs.StringP("output", "o", "", "Output file (required)")
	path, filter := parse(fs, opts, args)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file required (-o)")
		fs.Usage()
		os.Exit(1)
	}

	if err := commands.RunFilter(path, *output, filter, os.Stdout); err != nil {
		fatal(err)
	}
}

func runStats(args []string) {
	fs, opts := newFlagSet("stats", "Show statistics about the trace file", "")
	path, filter := parse(fs, opts, args)

	if err := commands.RunStats(path, filter, os.Stdout); err != nil {
		fatal(err)
	}
}
