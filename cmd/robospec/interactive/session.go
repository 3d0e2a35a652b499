package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/chzyer/readline"

	"github.com/robospec/robospec-go/pkg/catalog"
	"github.com/robospec/robospec-go/pkg/report"
	"github.com/robospec/robospec-go/pkg/speccode"
)

// Config configures a Session.
type Config struct {
	// Report controls how results are rendered.
	Report report.Options

	// Format is the result format. Default: text.
	Format report.Format

	// HistoryFile persists readline history when set.
	HistoryFile string

	// Logger receives operational messages. Default: discarded.
	Logger *slog.Logger
}

// lineReader is the part of *readline.Instance a Session uses.
type lineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
	Close() error
}

// Session drives a Form from readline input.
type Session struct {
	form      *Form
	cfg       Config
	rl        lineReader
	out       io.Writer
	logger    *slog.Logger
	closeOnce sync.Once
}

// New creates a session for codec reading from the terminal.
func New(codec *speccode.Codec, cfg Config) (*Session, error) {
	s := newSession(NewForm(codec), cfg, nil)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          s.prompt(),
		HistoryFile:     cfg.HistoryFile,
		AutoComplete:    s.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	s.rl = rl
	s.out = rl.Stdout()
	return s, nil
}

func newSession(form *Form, cfg Config, out io.Writer) *Session {
	if cfg.Format == "" {
		cfg.Format = report.FormatText
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{form: form, cfg: cfg, out: out, logger: logger}
}

// Form returns the session's form.
func (s *Session) Form() *Form { return s.form }

// Run reads commands until quit, EOF or ctx is done. Cancelling ctx closes
// the terminal so a pending Readline returns.
func (s *Session) Run(ctx context.Context) {
	defer s.close()
	stop := context.AfterFunc(ctx, s.close)
	defer stop()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) && ctx.Err() == nil {
				continue
			}
			fmt.Fprintln(s.out, "Exiting...")
			return
		}

		if !s.Execute(line) {
			return
		}
		s.rl.SetPrompt(s.prompt())
	}
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		if err := s.rl.Close(); err != nil {
			s.logger.Debug("closing terminal", "error", err)
		}
	})
}

// Execute runs one command line. It returns false when the session should end.
func (s *Session) Execute(line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return true
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	arg := strings.TrimSpace(strings.TrimPrefix(input, parts[0]))

	switch cmd {
	case "help", "?":
		s.printHelp()

	case "robot", "r":
		s.form.SelectMode()
		fmt.Fprintln(s.out, "Robot mode: choose type, variant, gripper, protocols and addons, then submit.")

	case "code", "c":
		s.form.CodeMode()
		if arg != "" {
			s.cmdHex(arg)
			return true
		}
		fmt.Fprintln(s.out, "Code mode: enter a hexadecimal value with 'hex <value>', then submit.")

	case "hex", "h":
		s.cmdHex(arg)

	case "type", "t":
		s.report(s.form.SetRobotType(arg))

	case "variant", "name", "n":
		s.report(s.form.SetVariant(arg))

	case "gripper", "g":
		s.report(s.form.SetGripper(arg))

	case "protocol", "p":
		s.cmdToggle("Protocol", arg, s.form.ToggleProtocol)

	case "addon", "a":
		s.cmdToggle("Addon", arg, s.form.ToggleAddon)

	case "options", "o":
		s.cmdOptions(arg)

	case "show", "s":
		s.cmdShow()

	case "submit", "go":
		s.cmdSubmit()

	case "clear":
		s.form.Clear()
		fmt.Fprintln(s.out, "Form cleared.")

	case "quit", "exit", "q":
		fmt.Fprintln(s.out, "Exiting...")
		return false

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return true
}

func (s *Session) cmdHex(arg string) {
	if arg == "" {
		fmt.Fprintln(s.out, "Usage: hex <value>")
		return
	}
	s.report(s.form.SetCode(arg))
}

func (s *Session) cmdToggle(label, name string, toggle func(string) (bool, error)) {
	if name == "" {
		fmt.Fprintf(s.out, "Usage: %s <name>\n", strings.ToLower(label))
		return
	}
	on, err := toggle(name)
	if err != nil {
		s.report(err)
		return
	}
	state := "unchecked"
	if on {
		state = "checked"
	}
	fmt.Fprintf(s.out, "%s %s\n", label, state)
}

func (s *Session) cmdOptions(arg string) {
	kinds := catalog.Kinds
	if arg != "" {
		k, ok := kindByName(arg)
		if !ok {
			fmt.Fprintf(s.out, "Unknown option list: %s (type, variant, gripper, protocol, addon)\n", arg)
			return
		}
		kinds = []catalog.Kind{k}
	}
	for _, k := range kinds {
		fmt.Fprintf(s.out, "%s:\n", k.Label())
		for _, name := range s.form.Options(k) {
			fmt.Fprintf(s.out, "  %s\n", name)
		}
	}
}

func (s *Session) cmdShow() {
	sel := s.form.Selection()
	fmt.Fprintf(s.out, "Mode: %s\n", s.form.Mode())
	fmt.Fprintf(s.out, "  %-24s %s\n", catalog.KindRobotType.Label()+":", orNone(sel.RobotType))
	fmt.Fprintf(s.out, "  %-24s %s\n", catalog.KindVariant.Label()+":", orNone(sel.RobotVariant))
	fmt.Fprintf(s.out, "  %-24s %s\n", catalog.KindGripper.Label()+":", orNone(sel.Gripper))
	fmt.Fprintf(s.out, "  %-24s %s\n", catalog.KindProtocol.Label()+":", orNone(strings.Join(sel.Protocols, ", ")))
	fmt.Fprintf(s.out, "  %-24s %s\n", catalog.KindAddon.Label()+":", orNone(strings.Join(sel.Addons, ", ")))
	if s.form.Mode() == ModeCode {
		fmt.Fprintf(s.out, "  %-24s %s\n", report.HexLabel+":", orNone(s.form.Input()))
	}
}

func (s *Session) cmdSubmit() {
	res, err := s.form.Submit()
	if err != nil {
		var ie *speccode.IncompleteSelectionError
		if errors.As(err, &ie) || errors.Is(err, speccode.ErrEmptySet) {
			labels := make([]string, 0, len(s.form.Missing()))
			for _, k := range s.form.Missing() {
				labels = append(labels, k.Label())
			}
			fmt.Fprintf(s.out, "Error: please select the following options: %s or a hexadecimal value\n", strings.Join(labels, ", "))
			return
		}
		s.report(err)
		return
	}

	r := report.New(s.form.codec.Catalog(), res.Selection, res.Code, s.cfg.Report)
	if err := r.Write(s.out, s.cfg.Format); err != nil {
		s.logger.Error("rendering report", "error", err)
	}
	s.logger.Debug("submitted", "mode", res.Mode.String(), "code", res.Code.Padded())
}

func (s *Session) report(err error) {
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
	}
}

func (s *Session) prompt() string {
	return fmt.Sprintf("robospec[%s]> ", s.form.Mode())
}

func (s *Session) completer() *readline.PrefixCompleter {
	names := func(k catalog.Kind) readline.DynamicCompleteFunc {
		return func(string) []string { return s.form.Options(k) }
	}
	return readline.NewPrefixCompleter(
		readline.PcItem("help"),
		readline.PcItem("robot"),
		readline.PcItem("code"),
		readline.PcItem("hex"),
		readline.PcItem("type", readline.PcItemDynamic(names(catalog.KindRobotType))),
		readline.PcItem("variant", readline.PcItemDynamic(names(catalog.KindVariant))),
		readline.PcItem("gripper", readline.PcItemDynamic(names(catalog.KindGripper))),
		readline.PcItem("protocol", readline.PcItemDynamic(names(catalog.KindProtocol))),
		readline.PcItem("addon", readline.PcItemDynamic(names(catalog.KindAddon))),
		readline.PcItem("options",
			readline.PcItem("type"), readline.PcItem("variant"), readline.PcItem("gripper"),
			readline.PcItem("protocol"), readline.PcItem("addon"),
		),
		readline.PcItem("show"),
		readline.PcItem("submit"),
		readline.PcItem("clear"),
		readline.PcItem("quit"),
	)
}

func (s *Session) printHelp() {
	fmt.Fprintln(s.out, `
Robot Specification Commands:
  Modes:
    robot               - Build a specification attribute by attribute
    code [value]        - Decode a hexadecimal value

  Robot mode:
    type <name>         - Choose the robot type (narrows variants)
    variant <name>      - Choose the robot name (sets its type)
    gripper <name>      - Choose the gripper
    protocol <name>     - Check or uncheck a communication protocol
    addon <name>        - Check or uncheck an addon

  Code mode:
    hex <value>         - Enter the hexadecimal value

  Common:
    options [kind]      - List the available choices
    show                - Show the current form
    submit              - Encode or decode and print the specification
    clear               - Reset the form
    help                - Show this help
    quit                - Exit`)
}

func kindByName(s string) (catalog.Kind, bool) {
	switch strings.ToLower(s) {
	case "type", "types", "robot_type":
		return catalog.KindRobotType, true
	case "variant", "variants", "name":
		return catalog.KindVariant, true
	case "gripper", "grippers":
		return catalog.KindGripper, true
	case "protocol", "protocols":
		return catalog.KindProtocol, true
	case "addon", "addons":
		return catalog.KindAddon, true
	}
	return 0, false
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
