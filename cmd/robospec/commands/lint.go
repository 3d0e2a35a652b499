package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/robospec/robospec-go/pkg/catalog"
	"github.com/robospec/robospec-go/pkg/speccode"
)

// LintOptions configures the lint command.
type LintOptions struct {
	commonFlags

	Selections bool // files are selections checked against the catalog
	JSON       bool
	Verbose    bool
	Files      []string
}

// LintIssue is a single lint finding.
type LintIssue struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// LintOutput holds the lint results for a file.
type LintOutput struct {
	File   string      `json:"file"`
	Code   string      `json:"code,omitempty"`
	Issues []LintIssue `json:"issues"`
	Clean  bool        `json:"clean"`
}

func (o *LintOutput) add(severity, format string, args ...any) {
	o.Issues = append(o.Issues, LintIssue{Severity: severity, Message: fmt.Sprintf(format, args...)})
	if severity == "error" {
		o.Clean = false
	}
}

// RunLint runs the lint command.
func RunLint(args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("lint", pflag.ContinueOnError)
	opts := LintOptions{}
	opts.register(fs)
	fs.BoolVarP(&opts.Selections, "selection", "s", false, "Lint selection files against the catalog instead of catalog files")
	fs.BoolVar(&opts.JSON, "json", false, "Output results as JSON")
	fs.BoolVarP(&opts.Verbose, "verbose", "v", false, "Show warnings for clean files")

	if done, code := parseFlags(fs, args, stdout, stderr, printLintUsage); done {
		return code
	}
	opts.Files = fs.Args()

	if len(opts.Files) == 0 {
		fmt.Fprintln(stderr, "Error: no files specified")
		printLintUsage(stderr)
		return exitCommandError
	}

	if name, ok := unusedLintFlag(fs, opts.Selections); ok {
		mode := "selection lint"
		if !opts.Selections {
			mode = "catalog lint (use --selection)"
		}
		fmt.Fprintf(stderr, "Error: --%s is not used by %s\n", name, mode)
		return exitCommandError
	}

	var lintOne func(string) LintOutput
	if opts.Selections {
		rt, err := setup(fs, &opts.commonFlags, stderr)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitCommandError
		}
		defer rt.Close()
		lintOne = func(path string) LintOutput { return lintSelectionFile(path, rt.codec) }
	} else {
		lintOne = lintCatalogFile
	}

	results := make([]LintOutput, 0, len(opts.Files))
	hasErrors := false
	for _, file := range opts.Files {
		output := lintOne(file)
		results = append(results, output)
		if !output.Clean {
			hasErrors = true
		}
		if !opts.JSON {
			printLintResult(stdout, output, opts.Verbose)
		}
	}

	if opts.JSON {
		out, _ := json.MarshalIndent(results, "", "  ")
		fmt.Fprintln(stdout, string(out))
	}

	if hasErrors {
		return exitRejected
	}
	return exitSuccess
}

// unusedLintFlag returns the first common flag set on the command line that
// the chosen lint mode ignores. Catalog files are linted without a codec.
func unusedLintFlag(fs *pflag.FlagSet, selections bool) (string, bool) {
	ignored := []string{"format", "uppercase"}
	if !selections {
		ignored = append([]string{"config", "catalog", "log-level", "trace"}, ignored...)
	}
	for _, name := range ignored {
		if fs.Changed(name) {
			return name, true
		}
	}
	return "", false
}

func lintCatalogFile(path string) LintOutput {
	output := LintOutput{File: path, Clean: true, Issues: []LintIssue{}}

	cat, err := catalog.LoadFile(path)
	if err != nil {
		output.add("error", "%v", err)
		return output
	}

	for _, rt := range cat.RobotTypes().Names() {
		if len(cat.VariantsOf(rt)) == 0 {
			output.add("warning", "robot type %q lists no variants", rt)
		}
	}
	for _, v := range cat.Variants().Names() {
		if _, ok := cat.TypeOfVariant(v); !ok {
			output.add("warning", "variant %q belongs to no robot type", v)
		}
	}
	for _, k := range []catalog.Kind{catalog.KindProtocol, catalog.KindAddon} {
		if n := cat.Flags(k).Len(); n == 0 {
			output.add("warning", "no %s defined; every code will be rejected", k.Label())
		} else if n == catalog.MaxFlags {
			output.add("info", "%s table is full (%d of %d bits)", k.Label(), n, catalog.MaxFlags)
		}
	}
	return output
}

func lintSelectionFile(path string, codec *speccode.Codec) LintOutput {
	output := LintOutput{File: path, Clean: true, Issues: []LintIssue{}}

	data, err := os.ReadFile(path)
	if err != nil {
		output.add("error", "reading selection: %v", err)
		return output
	}
	var sel speccode.Selection
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sel); err != nil {
		output.add("error", "parsing selection: %v", err)
		return output
	}

	code, err := codec.Encode(sel)
	if err != nil {
		output.add("error", "%v", err)
		return output
	}
	output.Code = code.String()

	if err := codec.Catalog().CheckFamily(sel.RobotType, sel.RobotVariant); err != nil {
		output.add("warning", "%v", err)
	}
	if norm, err := codec.Normalize(sel); err == nil {
		if len(norm.Protocols) != len(sel.Protocols) || len(norm.Addons) != len(sel.Addons) {
			output.add("warning", "duplicate protocols or addons")
		} else if !slices.Equal(norm.Protocols, sel.Protocols) || !slices.Equal(norm.Addons, sel.Addons) {
			output.add("info", "protocols or addons not in catalog order")
		}
	}
	return output
}

func printLintResult(w io.Writer, output LintOutput, verbose bool) {
	if output.Clean && !verbose {
		fmt.Fprintf(w, "%s: OK\n", output.File)
		return
	}

	status := "OK"
	if !output.Clean {
		status = "FAIL"
	}
	if output.Code != "" {
		fmt.Fprintf(w, "%s: %s (%s)\n", output.File, status, output.Code)
	} else {
		fmt.Fprintf(w, "%s: %s\n", output.File, status)
	}
	for _, issue := range output.Issues {
		fmt.Fprintf(w, "  %s: %s\n", issue.Severity, issue.Message)
	}
}

func printLintUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: robospec lint [options] <file>...

Lints catalog files, or selection files with --selection.

Options:
  -s, --selection    Files are selections checked against the catalog
      --json         Output results as JSON
  -v, --verbose      Show warnings for clean files
      --catalog      Catalog YAML file (with --selection)
  -c, --config       Configuration file (with --selection)
      --log-level    Log level (with --selection)
      --trace        Trace file for codec calls (with --selection)

Examples:
  robospec lint catalogs/*.yaml
  robospec lint --selection --catalog plant.yaml order-*.yaml`)
}
