package commands

import (
	"strconv"
	"strings"

	"github.com/josephlewis42/kshell/core/vos"
)

var simpleEscapes = map[byte]byte{
	'a':  '\a',
	'b':  '\b',
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'v':  '\v',
	'\\': '\\',
}

// expandEscapes interprets the backslash escapes echo -e understands. It
// reports stop when a \c was found, nothing after it is printed.
func expandEscapes(s string) (out string, stop bool) {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			sb.WriteByte(s[i])
			continue
		}

		next := s[i+1]
		if b, ok := simpleEscapes[next]; ok {
			sb.WriteByte(b)
			i++
			continue
		}

		switch next {
		case 'c':
			return sb.String(), true
		case '0':
			digits := leadingDigits(s[i+2:], 3, "01234567")
			v, _ := strconv.ParseUint("0"+digits, 8, 16)
			sb.WriteByte(byte(v))
			i += 1 + len(digits)
		case 'x':
			digits := leadingDigits(s[i+2:], 2, "0123456789abcdefABCDEF")
			if digits == "" {
				sb.WriteString(`\x`)
				i++
				continue
			}
			v, _ := strconv.ParseUint(digits, 16, 8)
			sb.WriteByte(byte(v))
			i += 1 + len(digits)
		default:
			// Unknown escapes are printed as is.
			sb.WriteByte('\\')
		}
	}
	return sb.String(), false
}

func leadingDigits(s string, max int, digits string) string {
	n := 0
	for n < len(s) && n < max && strings.IndexByte(digits, s[n]) >= 0 {
		n++
	}
	return s[:n]
}

// Echo writes its arguments separated by spaces.
func Echo(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "echo [-ne] [STRING]...",
		Short: "Write arguments to standard output.",
	}

	interpret := cmd.Flags().Bool('e', "enable interpretation of backslash escapes")
	omitNewline := cmd.Flags().Bool('n', "omit the trailing newline")

	return cmd.Run(virtOS, func() int {
		line := strings.Join(cmd.Flags().Args(), " ")
		stop := false
		if *interpret {
			line, stop = expandEscapes(line)
		}
		if !*omitNewline && !stop {
			line += "\n"
		}

		// A reader that went away isn't worth reporting.
		if _, err := virtOS.Stdout().Write([]byte(line)); err != nil {
			return 1
		}
		return 0
	})
}

func init() {
	mustAddCmd("echo", Echo)
}
