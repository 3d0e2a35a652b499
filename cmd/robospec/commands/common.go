// Package commands implements the robospec subcommands.
package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"

	"github.com/robospec/robospec-go/internal/config"
	"github.com/robospec/robospec-go/pkg/catalog"
	"github.com/robospec/robospec-go/pkg/log"
	"github.com/robospec/robospec-go/pkg/report"
	"github.com/robospec/robospec-go/pkg/speccode"
)

// Exit codes shared by all commands.
const (
	exitSuccess      = 0
	exitCommandError = 1
	exitRejected     = 2
)

// commonFlags are accepted by every command that needs a codec.
type commonFlags struct {
	ConfigPath  string
	CatalogFile string
	LogLevel    string
	TraceFile   string
	Format      string
	Uppercase   bool
}

func (c *commonFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&c.ConfigPath, "config", "c", "", "Configuration file (default: $"+config.EnvVar+")")
	fs.StringVar(&c.CatalogFile, "catalog", "", "Catalog YAML file (default: built-in catalog)")
	fs.StringVar(&c.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&c.TraceFile, "trace", "", "Append a CBOR trace of codec calls to this file")
	fs.StringVarP(&c.Format, "format", "f", "", "Output format: text, json, yaml")
	fs.BoolVar(&c.Uppercase, "uppercase", false, "Render hex codes in upper case")
}

// runtime is the state a command builds from its flags and config file.
type runtime struct {
	cfg     *config.Config
	format  report.Format
	logger  *slog.Logger
	catalog *catalog.Catalog
	codec   *speccode.Codec
	trace   *log.FileLogger
}

// setup resolves the config file, applies flag overrides and builds the
// catalog and codec. Flags only override the file when explicitly set.
func setup(fs *pflag.FlagSet, flags *commonFlags, stderr io.Writer) (*runtime, error) {
	cfg, err := config.Resolve(flags.ConfigPath)
	if err != nil {
		return nil, err
	}
	if fs.Changed("catalog") {
		cfg.CatalogFile = flags.CatalogFile
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = flags.LogLevel
	}
	if fs.Changed("trace") {
		cfg.TraceFile = flags.TraceFile
	}
	if fs.Changed("format") {
		cfg.Format = flags.Format
	}
	if fs.Changed("uppercase") {
		cfg.Uppercase = flags.Uppercase
	}

	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		cfg:    cfg,
		format: format,
		logger: slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})),
	}

	rt.catalog, err = catalog.Load(cfg.CatalogFile)
	if err != nil {
		return nil, err
	}
	rt.logger.Debug("catalog loaded", "name", rt.catalog.Name(), "file", cfg.CatalogFile)

	tracers := []log.Logger{}
	if level <= slog.LevelDebug {
		tracers = append(tracers, log.NewSlogAdapter(rt.logger))
	}
	if cfg.TraceFile != "" {
		rt.trace, err = log.NewFileLogger(cfg.TraceFile)
		if err != nil {
			return nil, err
		}
		tracers = append(tracers, rt.trace)
	}

	opts := []speccode.Option{}
	if len(tracers) > 0 {
		opts = append(opts, speccode.WithLogger(log.NewMultiLogger(tracers...)))
	}
	rt.codec = speccode.New(rt.catalog, opts...)
	return rt, nil
}

// Close flushes the trace file, if any.
func (rt *runtime) Close() {
	if rt.trace == nil {
		return
	}
	written, dropped := rt.trace.Stats()
	if err := rt.trace.Close(); err != nil {
		rt.logger.Warn("closing trace file", "path", rt.trace.Path(), "error", err)
	}
	rt.logger.Debug("trace closed", "path", rt.trace.Path(), "events", written, "dropped", dropped)
}

func (rt *runtime) reportOptions(bits bool) report.Options {
	return report.Options{Uppercase: rt.cfg.Uppercase, Bits: bits}
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("invalid log level: %q (valid: debug, info, warn, error)", s)
	}
	return level, nil
}

// exitCodeFor maps codec rejections to exitRejected and everything else to
// exitCommandError.
func exitCodeFor(err error) int {
	switch speccode.KindOf(err) {
	case speccode.KindNone:
		return exitSuccess
	case speccode.KindOther:
		return exitCommandError
	default:
		return exitRejected
	}
}

// parseFlags parses args, printing usage on --help.
func parseFlags(fs *pflag.FlagSet, args []string, stdout, stderr io.Writer, usage func(io.Writer)) (done bool, code int) {
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			usage(stdout)
			return true, exitSuccess
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		usage(stderr)
		return true, exitCommandError
	}
	return false, exitSuccess
}
