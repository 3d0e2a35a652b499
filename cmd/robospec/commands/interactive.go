package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/robospec/robospec-go/cmd/robospec/interactive"
)

// RunInteractive runs the interactive form session.
func RunInteractive(args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("interactive", pflag.ContinueOnError)
	flags := commonFlags{}
	flags.register(fs)
	var history string
	var bits bool
	fs.StringVar(&history, "history", "", "Persist command history to this file")
	fs.BoolVar(&bits, "bits", false, "Include the 80-bit binary form in results")

	if done, code := parseFlags(fs, args, stdout, stderr, printInteractiveUsage); done {
		return code
	}

	rt, err := setup(fs, &flags, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	defer rt.Close()

	session, err := interactive.New(rt.codec, interactive.Config{
		Report:      rt.reportOptions(bits),
		Format:      rt.format,
		HistoryFile: history,
		Logger:      rt.logger,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rt.logger.Info("interactive session started", "catalog", rt.catalog.Name(), "session", rt.codec.SessionID())
	session.Run(ctx)
	return exitSuccess
}

func printInteractiveUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: robospec interactive [options]

Options:
      --history      Persist command history to this file
      --bits         Include the 80-bit binary form in results
  -f, --format       Result format (text, json, yaml) [default: text]
      --uppercase    Render hex codes in upper case
      --catalog      Catalog YAML file
      --trace        Append a CBOR trace of codec calls to this file
  -c, --config       Configuration file
      --log-level    Log level (debug, info, warn, error)`)
}
