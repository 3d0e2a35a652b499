package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/robospec/robospec-go/pkg/report"
	"github.com/robospec/robospec-go/pkg/speccode"
)

// DecodeOptions configures the decode command.
type DecodeOptions struct {
	commonFlags

	Codes  []string
	Stdin  bool
	Output string
	Bits   bool
}

// RunDecode runs the decode command.
func RunDecode(args []string, stdout, stderr io.Writer) int {
	return runDecode(args, os.Stdin, stdout, stderr)
}

func runDecode(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("decode", pflag.ContinueOnError)
	opts := DecodeOptions{}
	opts.register(fs)
	fs.BoolVar(&opts.Stdin, "stdin", false, "Read codes from stdin, one per line")
	fs.StringVarP(&opts.Output, "output", "o", "", "Write the report to a file instead of stdout")
	fs.BoolVar(&opts.Bits, "bits", false, "Include the 80-bit binary form")

	if done, code := parseFlags(fs, args, stdout, stderr, printDecodeUsage); done {
		return code
	}
	opts.Codes = fs.Args()

	if opts.Stdin {
		scanner := bufio.NewScanner(stdin)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" && !strings.HasPrefix(line, "#") {
				opts.Codes = append(opts.Codes, line)
			}
		}
		if err := scanner.Err(); err != nil {
			fmt.Fprintf(stderr, "Error: reading stdin: %v\n", err)
			return exitCommandError
		}
	}

	if len(opts.Codes) == 0 {
		fmt.Fprintln(stderr, "Error: no code specified")
		printDecodeUsage(stderr)
		return exitCommandError
	}
	if opts.Output != "" && len(opts.Codes) > 1 {
		fmt.Fprintln(stderr, "Error: --output takes a single code")
		return exitCommandError
	}

	rt, err := setup(fs, &opts.commonFlags, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	defer rt.Close()

	exitCode := exitSuccess
	for i, input := range opts.Codes {
		sel, err := rt.codec.Decode(input)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %s: %v\n", input, err)
			exitCode = max(exitCode, exitCodeFor(err))
			continue
		}

		code, _ := speccode.ParseCode(input)
		r := report.New(rt.catalog, sel, code, rt.reportOptions(opts.Bits))
		for _, w := range r.Warnings {
			rt.logger.Warn("decoded selection warning", "code", r.Code, "warning", w)
		}

		if i > 0 && rt.format == report.FormatText {
			fmt.Fprintln(stdout)
		}
		if rc := writeReport(r, rt.format, opts.Output, stdout, stderr); rc != exitSuccess {
			exitCode = max(exitCode, rc)
		}
	}
	return exitCode
}

func printDecodeUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: robospec decode [options] <code>...

Options:
      --stdin        Read codes from stdin, one per line
  -o, --output       Write the report to a file instead of stdout
  -f, --format       Output format (text, json, yaml) [default: text]
      --bits         Include the 80-bit binary form
      --uppercase    Render hex codes in upper case
      --catalog      Catalog YAML file
      --trace        Append a CBOR trace of codec calls to this file
  -c, --config       Configuration file
      --log-level    Log level (debug, info, warn, error)

Examples:
  robospec decode 10017004180004000
  robospec decode --format json 0x10017004180004000
  cat codes.txt | robospec decode --stdin`)
}
