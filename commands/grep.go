package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/josephlewis42/kshell/core/vos"
)

// Exit statuses of grep.
const (
	grepMatched   = 0
	grepNoMatch   = 1
	grepException = 2
)

// grepper searches one input at a time and remembers whether anything was
// selected.
type grepper struct {
	pattern     *regexp.Regexp
	invert      bool
	lineNumbers bool
	countOnly   bool
	namesOnly   bool
	quiet       bool
	withNames   bool
	colors      *ColorPrinter

	selected bool
}

func (g *grepper) search(w io.Writer, name string, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	count := 0
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := scanner.Text()
		hit := g.pattern.MatchString(line)
		if hit == g.invert {
			continue
		}

		count++
		g.selected = true
		if g.quiet || g.countOnly {
			continue
		}
		if g.namesOnly {
			fmt.Fprintln(w, g.colors.Sprintf(ColorBoldBlue, "%s", name))
			return nil
		}

		var prefix strings.Builder
		if g.withNames {
			prefix.WriteString(g.colors.Sprintf(ColorBoldBlue, "%s", name) + ":")
		}
		if g.lineNumbers {
			prefix.WriteString(g.colors.Sprintf(ColorBoldGreen, "%d", lineNo) + ":")
		}
		if hit && g.colors.ShouldColor() {
			line = g.pattern.ReplaceAllStringFunc(line, func(match string) string {
				return ColorBoldRed.Sprint(match)
			})
		}
		fmt.Fprintln(w, prefix.String()+line)
	}

	if g.countOnly && !g.quiet {
		if g.withNames {
			io.WriteString(w, name+":")
		}
		io.WriteString(w, strconv.Itoa(count)+"\n")
	}
	return scanner.Err()
}

// Grep prints lines matching a regular expression.
//
// https://pubs.opengroup.org/onlinepubs/9699919799.2018edition/utilities/grep.html
func Grep(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "grep [-cilnqv] PATTERN [FILE]...",
		Short: "Print lines that match a regular expression.",
	}

	flags := cmd.Flags()
	g := &grepper{colors: &ColorPrinter{}}
	flags.FlagLong(&g.invert, "invert-match", 'v', "select lines that don't match")
	ignoreCase := flags.BoolLong("ignore-case", 'i', "ignore case when matching")
	flags.FlagLong(&g.lineNumbers, "line-number", 'n', "prefix lines with their line number")
	flags.FlagLong(&g.countOnly, "count", 'c', "print the number of selected lines per file")
	flags.FlagLong(&g.namesOnly, "files-with-matches", 'l', "print only the names of files with selected lines")
	flags.FlagLong(&g.quiet, "quiet", 'q', "print nothing, only set the exit status")
	g.colors.Init(flags)

	return cmd.Run(virtOS, func() int {
		args := flags.Args()
		if len(args) == 0 {
			cmd.LogProgramError(virtOS, errors.New("missing argument PATTERN"))
			return grepException
		}

		expr := args[0]
		if *ignoreCase {
			expr = "(?i)" + expr
		}
		pattern, err := regexp.Compile(expr)
		if err != nil {
			cmd.LogProgramError(virtOS, err)
			return grepException
		}
		g.pattern = pattern

		files := args[1:]
		g.withNames = len(files) > 1
		status := cmd.RunEachFileOrStdin(virtOS, files, func(name string, fd io.Reader) error {
			return g.search(virtOS.Stdout(), name, fd)
		})

		switch {
		case status != 0:
			return grepException
		case g.selected:
			return grepMatched
		default:
			return grepNoMatch
		}
	})
}

func init() {
	mustAddCmd("grep", Grep)
}
