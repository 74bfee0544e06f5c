package commands

import (
	"errors"
	"fmt"
	"io"
	"path"
	"sort"

	"github.com/anmitsu/go-shlex"
	"github.com/fatih/color"
	"github.com/josephlewis42/kshell/core/vos"
	getopt "github.com/pborman/getopt/v2"
)

// AllCommands holds a list of all registered commands keyed by name.
var AllCommands = make(map[string]vos.ProcessFunc)

// mustAddCmd registers a program, it panics on duplicate names.
func mustAddCmd(name string, cmd vos.ProcessFunc) {
	if _, ok := AllCommands[name]; ok {
		panic(fmt.Sprintf("duplicate command %q", name))
	}
	AllCommands[name] = cmd
}

// ListCommands returns the names of every registered program in order.
func ListCommands() []string {
	var names []string
	for name := range AllCommands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolver looks programs up by their path inside programDir.
func Resolver(programDir string) vos.ProcessResolver {
	dir := path.Clean("/" + programDir)
	return func(p string) vos.ProcessFunc {
		p = path.Clean(p)
		if path.Dir(p) != dir {
			return nil
		}
		return AllCommands[path.Base(p)]
	}
}

func BytesToHuman(bytes int64) string {
	for _, e := range []struct {
		unit  string
		power int64
	}{
		{"P", 1e15},
		{"T", 1e12},
		{"G", 1e9},
		{"M", 1e6},
		{"K", 1e3},
	} {
		quotient := bytes / e.power
		switch {
		case quotient == 0:
			continue
		case quotient > 10:
			return fmt.Sprintf("%d%s", quotient, e.unit)
		default:
			return fmt.Sprintf("%0.1f%s", float64(bytes)/float64(e.power), e.unit)
		}
	}

	return fmt.Sprintf("%d", bytes)
}

// SplitArgs expands the argument vector the shell passes programs. The shell
// hands everything after the verb over as a single argument, it's split into
// words the way a POSIX shell would. Longer vectors are left alone.
func SplitArgs(argv []string) ([]string, error) {
	if len(argv) != 2 {
		return argv, nil
	}

	words, err := shlex.Split(argv[1], true)
	if err != nil {
		return argv[:1], err
	}
	return append([]string{argv[0]}, words...), nil
}

type SimpleCommand struct {
	// Use holds a one line usage string
	Use string
	// Short holds a sone line description of the command.
	Short string
	// ShowHelp sets whether help is displayed or not.
	// If this is non-nil when Run() is called, then the default help flag isn't
	// added.
	ShowHelp *bool
	// NeverBail skips interacting with stdout/stderr on failure and
	// always runs the callback.
	NeverBail bool

	flags *getopt.Set
}

// Flags gets the command's flag set.
func (s *SimpleCommand) Flags() *getopt.Set {
	if s.flags == nil {
		s.flags = getopt.New()
	}

	return s.flags
}

// PrintHelp writes help for the command to the given writer.
func (s *SimpleCommand) PrintHelp(w io.Writer) {
	fmt.Fprint(w, "usage: ")
	fmt.Fprintln(w, s.Use)
	fmt.Fprintln(w, s.Short)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	s.Flags().PrintOptions(w)
}

// Run the command, if flag parsing was succcessful call the callback.
func (s *SimpleCommand) Run(virtOS vos.VOS, callback func() int) int {
	opts := s.Flags()

	// Add help flag if not overridden.
	if s.ShowHelp == nil {
		s.ShowHelp = opts.BoolLong("help", 'h', "show this help and exit")
	}

	argv, err := SplitArgs(virtOS.Args())
	if err == nil {
		err = opts.Getopt(argv, nil)
	}
	if err != nil {
		virtOS.LogInvalidInvocation(err)
	}

	if err != nil && !s.NeverBail {
		fmt.Fprintf(virtOS.Stderr(), "error: %s\n\n", err)

		s.PrintHelp(virtOS.Stdout())
		return 1
	}

	if *s.ShowHelp {
		s.PrintHelp(virtOS.Stdout())
		return 0
	}

	return callback()
}

// RunE is like Run, but the callback reports failure with an error which is
// printed before exiting with status 1.
func (s *SimpleCommand) RunE(virtOS vos.VOS, callback func() error) int {
	return s.Run(virtOS, func() int {
		if err := callback(); err != nil {
			s.LogProgramError(virtOS, err)
			return 1
		}
		return 0
	})
}

// LogProgramError prints err prefixed with the program's name.
func (s *SimpleCommand) LogProgramError(virtOS vos.VOS, err error) {
	fmt.Fprintf(virtOS.Stderr(), "%s: %v\n", programName(virtOS), err)
}

// RunEachFileOrStdin calls fn with each named file, or with stdin if there
// are none. Files that can't be opened are reported and skipped. It returns
// the exit status.
func (s *SimpleCommand) RunEachFileOrStdin(virtOS vos.VOS, files []string, fn func(name string, fd io.Reader) error) int {
	if len(files) == 0 {
		if err := fn("-", virtOS.Stdin()); err != nil {
			s.LogProgramError(virtOS, err)
			return 1
		}
		return 0
	}

	status := 0
	for _, name := range files {
		if err := s.runFile(virtOS, name, fn); err != nil {
			s.LogProgramError(virtOS, err)
			status = 1
		}
	}
	return status
}

// RunEachOperand calls fn with every operand, errors are printed and the
// remaining operands still run. It fails if there are no operands.
func (s *SimpleCommand) RunEachOperand(virtOS vos.VOS, operands []string, fn func(operand string) error) int {
	if len(operands) == 0 {
		s.LogProgramError(virtOS, errMissingOperand)
		return 1
	}

	status := 0
	for _, operand := range operands {
		if err := fn(operand); err != nil {
			s.LogProgramError(virtOS, err)
			status = 1
		}
	}
	return status
}

func (s *SimpleCommand) runFile(virtOS vos.VOS, name string, fn func(string, io.Reader) error) error {
	if name == "-" {
		return fn(name, virtOS.Stdin())
	}

	info, err := virtOS.Stat(name)
	switch {
	case err != nil:
		return fmt.Errorf("%s: no such file or directory", name)
	case info.IsDir():
		return fmt.Errorf("%s: is a directory", name)
	}

	fd, err := virtOS.Open(name)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	defer fd.Close()

	return fn(name, fd)
}

func programName(virtOS vos.VOS) string {
	if args := virtOS.Args(); len(args) > 0 {
		return path.Base(args[0])
	}
	return "?"
}

var (
	// errStop ends output loops when the process is cancelled.
	errStop = errors.New("stop")

	errMissingOperand = errors.New("missing operand")
)

const (
	colorAlways = "always"
	colorAuto   = "auto"
	colorNever  = "never"
)

var (
	ColorBoldBlue  = forcedColor(color.FgBlue, color.Bold)
	ColorBoldGreen = forcedColor(color.FgGreen, color.Bold)
	ColorBoldCyan  = forcedColor(color.FgCyan, color.Bold)
	ColorBoldRed   = forcedColor(color.FgRed, color.Bold)
)

// forcedColor ignores whether the host's stdout is a terminal, programs
// write to the machine and decide for themselves.
func forcedColor(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	c.EnableColor()
	return c
}

type ColorPrinter struct {
	value *string
}

// Init sets up the flag that determines the color output.
func (c *ColorPrinter) Init(flags *getopt.Set) {
	c.value = flags.EnumLong(
		"color",
		rune(0), // No short flag.
		[]string{colorAlways, colorAuto, colorNever},
		colorAuto,
		"colorize the output (always|auto|never)")
}

// ShouldColor reports whether escape codes should be written. The machine's
// console draws control characters literally so auto never colors.
func (c *ColorPrinter) ShouldColor() bool {
	return c.value != nil && *c.value == colorAlways
}

func (c *ColorPrinter) Sprintf(color *color.Color, format string, a ...interface{}) string {
	if c.ShouldColor() {
		return color.Sprintf(format, a...)
	}
	return fmt.Sprintf(format, a...)
}
