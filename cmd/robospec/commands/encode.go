package commands

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/robospec/robospec-go/pkg/report"
	"github.com/robospec/robospec-go/pkg/speccode"
)

// EncodeOptions configures the encode command.
type EncodeOptions struct {
	commonFlags

	RobotType string
	Variant   string
	Gripper   string
	Protocols []string
	Addons    []string
	From      string // YAML or JSON selection file
	Output    string
	Bits      bool
	Quiet     bool // print only the code
}

// RunEncode runs the encode command.
func RunEncode(args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("encode", pflag.ContinueOnError)
	opts := EncodeOptions{}
	opts.register(fs)
	fs.StringVarP(&opts.RobotType, "robot-type", "t", "", "Robot type")
	fs.StringVarP(&opts.Variant, "variant", "n", "", "Robot name (variant)")
	fs.StringVarP(&opts.Gripper, "gripper", "g", "", "Gripper")
	fs.StringArrayVarP(&opts.Protocols, "protocol", "p", nil, "Communication protocol (repeatable)")
	fs.StringArrayVarP(&opts.Addons, "addon", "a", nil, "Addon (repeatable)")
	fs.StringVar(&opts.From, "from", "", "Read the selection from a YAML or JSON file")
	fs.StringVarP(&opts.Output, "output", "o", "", "Write the report to a file instead of stdout")
	fs.BoolVar(&opts.Bits, "bits", false, "Include the 80-bit binary form")
	fs.BoolVarP(&opts.Quiet, "quiet", "q", false, "Print only the hex code")

	if done, code := parseFlags(fs, args, stdout, stderr, printEncodeUsage); done {
		return code
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "Error: unexpected argument: %s\n", fs.Arg(0))
		return exitCommandError
	}

	rt, err := setup(fs, &opts.commonFlags, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	defer rt.Close()

	sel, err := opts.selection()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	code, err := rt.codec.Encode(sel)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCodeFor(err)
	}
	rt.logger.Info("encoded", "code", code.String())

	if opts.Quiet {
		r := report.New(nil, sel, code, rt.reportOptions(false))
		fmt.Fprintln(stdout, r.Code)
		return exitSuccess
	}

	r := report.New(rt.catalog, sel, code, rt.reportOptions(opts.Bits))
	for _, w := range r.Warnings {
		rt.logger.Warn("selection warning", "warning", w)
	}
	return writeReport(r, rt.format, opts.Output, stdout, stderr)
}

// selection merges the --from file with flag values. Flags win.
func (o EncodeOptions) selection() (speccode.Selection, error) {
	var sel speccode.Selection
	if o.From != "" {
		data, err := os.ReadFile(o.From)
		if err != nil {
			return sel, fmt.Errorf("reading selection: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&sel); err != nil {
			return sel, fmt.Errorf("%s: parsing selection: %w", o.From, err)
		}
	}
	if o.RobotType != "" {
		sel.RobotType = o.RobotType
	}
	if o.Variant != "" {
		sel.RobotVariant = o.Variant
	}
	if o.Gripper != "" {
		sel.Gripper = o.Gripper
	}
	if len(o.Protocols) > 0 {
		sel.Protocols = o.Protocols
	}
	if len(o.Addons) > 0 {
		sel.Addons = o.Addons
	}
	return sel, nil
}

func writeReport(r *report.Report, format report.Format, output string, stdout, stderr io.Writer) int {
	var err error
	if output != "" {
		err = r.WriteFile(output, format)
	} else {
		err = r.Write(stdout, format)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	if output != "" {
		fmt.Fprintf(stdout, "Report written to %s\n", output)
	}
	return exitSuccess
}

func printEncodeUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: robospec encode [options]

Options:
  -t, --robot-type   Robot type
  -n, --variant      Robot name (variant)
  -g, --gripper      Gripper
  -p, --protocol     Communication protocol (repeatable)
  -a, --addon        Addon (repeatable)
      --from         Read the selection from a YAML or JSON file
  -o, --output       Write the report to a file instead of stdout
  -f, --format       Output format (text, json, yaml) [default: text]
      --bits         Include the 80-bit binary form
  -q, --quiet        Print only the hex code
      --uppercase    Render hex codes in upper case
      --catalog      Catalog YAML file
      --trace        Append a CBOR trace of codec calls to this file
  -c, --config       Configuration file
      --log-level    Log level (debug, info, warn, error)

Examples:
  robospec encode -t Iontec -n "KR 20 R3100 Iontec" -g Hydraulic -p WIFI -a FSD
  robospec encode --from selection.yaml --format json
  robospec encode --from selection.yaml -o spec.txt`)
}
