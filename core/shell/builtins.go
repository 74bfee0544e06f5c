package shell

import (
	"fmt"
	"os"
	"sort"

	"github.com/josephlewis42/kshell/core/vos"
	"github.com/spf13/afero"
)

// AllBuiltins holds a list of all registered shell builtins
var AllBuiltins = make(map[string]ShellBuiltin)

type ShellBuiltin interface {
	Main(s *Shell, arg string) error
}

type ShellBuiltinFunc func(s *Shell, arg string) error

func (f ShellBuiltinFunc) Main(s *Shell, arg string) error {
	return f(s, arg)
}

var _ ShellBuiltin = (ShellBuiltinFunc)(nil)

// IsBuiltin reports whether verb is handled by the shell itself.
func IsBuiltin(verb string) bool {
	_, ok := AllBuiltins[verb]
	return ok
}

// ListBuiltins returns the builtin names in order.
func ListBuiltins() []string {
	var names []string
	for name := range AllBuiltins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Help lists the builtins.
func Help(s *Shell, arg string) error {
	fmt.Fprintln(s.out, "Builtins:")
	for _, name := range ListBuiltins() {
		fmt.Fprintf(s.out, "  %s\n", name)
	}
	fmt.Fprintf(s.out, "Other commands run from %s.\n", s.opts.ProgramDir)
	return nil
}

// Pwd prints the working directory.
func Pwd(s *Shell, arg string) error {
	fmt.Fprintln(s.out, s.proc.Getwd())
	return nil
}

// Echo prints its argument as given.
func Echo(s *Shell, arg string) error {
	fmt.Fprintln(s.out, arg)
	return nil
}

// Ls lists a directory, the working directory if arg is empty.
func Ls(s *Shell, arg string) error {
	target := vos.ResolvePath(s.proc.Getwd(), arg)

	info, err := s.proc.Stat(target)
	switch {
	case err != nil:
		return pathError(arg, err)
	case !info.IsDir():
		return fmt.Errorf("%w: %s", ErrNotADirectory, arg)
	}

	entries, err := afero.ReadDir(s.proc, target)
	if err != nil {
		return pathError(arg, err)
	}
	for _, entry := range entries {
		fmt.Fprintln(s.out, entry.Name())
	}
	return nil
}

// Cd changes the working directory, to the root if arg is empty.
func Cd(s *Shell, arg string) error {
	if arg == "" {
		arg = "/"
	}

	target := vos.ResolvePath(s.proc.Getwd(), arg)
	info, err := s.proc.Stat(target)
	switch {
	case err != nil:
		return pathError(arg, err)
	case !info.IsDir():
		return fmt.Errorf("%w: %s", ErrNotADirectory, arg)
	}

	if err := s.proc.Chdir(target); err != nil {
		return pathError(arg, err)
	}
	return nil
}

// Mkdir creates a directory and any missing parents.
func Mkdir(s *Shell, arg string) error {
	if arg == "" {
		return fmt.Errorf("%w: mkdir: missing operand", ErrSyntax)
	}

	target := vos.ResolvePath(s.proc.Getwd(), arg)
	if info, err := s.proc.Stat(target); err == nil && !info.IsDir() {
		return fmt.Errorf("mkdir: %s: %w", arg, os.ErrExist)
	}
	if err := s.proc.MkdirAll(target, 0755); err != nil {
		return fmt.Errorf("mkdir: %s: %w", arg, err)
	}
	return nil
}

// Clear blanks the console.
func Clear(s *Shell, arg string) error {
	s.console.Clear()
	return nil
}

// Exit quits the shell.
func Exit(s *Shell, arg string) error {
	s.exited = true
	return nil
}

func init() {
	AllBuiltins["help"] = ShellBuiltinFunc(Help)
	AllBuiltins["pwd"] = ShellBuiltinFunc(Pwd)
	AllBuiltins["echo"] = ShellBuiltinFunc(Echo)
	AllBuiltins["ls"] = ShellBuiltinFunc(Ls)
	AllBuiltins["cd"] = ShellBuiltinFunc(Cd)
	AllBuiltins["mkdir"] = ShellBuiltinFunc(Mkdir)
	AllBuiltins["clear"] = ShellBuiltinFunc(Clear)
	AllBuiltins["exit"] = ShellBuiltinFunc(Exit)
}
