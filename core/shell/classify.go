package shell

import (
	"strings"
)

const blanks = " \t"

// Command is a verb and the rest of the line as a single argument.
type Command struct {
	Verb string
	Arg  string
}

// Argv returns the argument vector passed to programs: the verb, followed by
// the argument if there is one.
func (c Command) Argv() []string {
	if c.Arg == "" {
		return []string{c.Verb}
	}
	return []string{c.Verb, c.Arg}
}

func (c Command) String() string {
	if c.Arg == "" {
		return c.Verb
	}
	return c.Verb + " " + c.Arg
}

// ParseCommand splits s into its first blank-delimited word and the trimmed
// remainder.
func ParseCommand(s string) Command {
	s = strings.Trim(s, blanks)
	i := strings.IndexAny(s, blanks)
	if i < 0 {
		return Command{Verb: s}
	}
	return Command{
		Verb: s[:i],
		Arg:  strings.Trim(s[i:], blanks),
	}
}

// RedirectMode says how a redirection opens its file.
type RedirectMode int

const (
	RedirectNone RedirectMode = iota
	// RedirectOverwrite truncates the file first, written as '>'.
	RedirectOverwrite
	// RedirectAppend writes after the existing content, written as '>>'.
	RedirectAppend
)

// FindRedirect returns the position of the first '>' in line and whether it
// starts an append. Without one it returns -1 and RedirectNone.
func FindRedirect(line string) (int, RedirectMode) {
	i := strings.IndexByte(line, '>')
	switch {
	case i < 0:
		return -1, RedirectNone
	case i+1 < len(line) && line[i+1] == '>':
		return i, RedirectAppend
	default:
		return i, RedirectOverwrite
	}
}

// HasPipe reports whether line contains a '|'.
func HasPipe(line string) bool {
	return strings.IndexByte(line, '|') >= 0
}

// Action is the way a line gets executed.
type Action int

const (
	ActionNone Action = iota
	ActionRedirect
	ActionPipeline
	ActionBuiltin
	ActionExternal
)

func (a Action) String() string {
	switch a {
	case ActionRedirect:
		return "redirect"
	case ActionPipeline:
		return "pipeline"
	case ActionBuiltin:
		return "builtin"
	case ActionExternal:
		return "external"
	default:
		return "none"
	}
}

// Classify picks how a line is executed, in priority order: a blank line
// does nothing, any '>' makes a redirection, any '|' a pipeline, then a
// builtin verb, then an external program.
func Classify(line string, isBuiltin func(verb string) bool) Action {
	cmd := ParseCommand(line)
	switch {
	case cmd.Verb == "":
		return ActionNone
	case strings.IndexByte(line, '>') >= 0:
		return ActionRedirect
	case HasPipe(line):
		return ActionPipeline
	case isBuiltin(cmd.Verb):
		return ActionBuiltin
	default:
		return ActionExternal
	}
}

// ProgramPath returns verb if it's absolute, otherwise its path inside
// programDir.
func ProgramPath(verb, programDir string) string {
	if strings.HasPrefix(verb, "/") {
		return verb
	}
	return strings.TrimSuffix(programDir, "/") + "/" + verb
}
