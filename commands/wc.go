package commands

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/josephlewis42/kshell/core/vos"
)

// wcTally holds the counts for one input.
type wcTally struct {
	lines, words, bytes, chars int
}

func (t *wcTally) add(other wcTally) {
	t.lines += other.lines
	t.words += other.words
	t.bytes += other.bytes
	t.chars += other.chars
}

func countRunes(r io.Reader) (wcTally, error) {
	var tally wcTally
	br := bufio.NewReader(r)
	inWord := false
	for {
		c, size, err := br.ReadRune()
		if err == io.EOF {
			return tally, nil
		}
		if err != nil {
			return tally, err
		}

		tally.bytes += size
		tally.chars++
		if c == '\n' {
			tally.lines++
		}
		switch space := unicode.IsSpace(c); {
		case space:
			inWord = false
		case !inWord:
			tally.words++
			inWord = true
		}
	}
}

// Wc prints newline, word and byte counts for each file.
// https://pubs.opengroup.org/onlinepubs/009695399/utilities/wc.html
func Wc(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "wc [-c|-m] [-lw] [FILE]...",
		Short: "Count the newlines, words and bytes of each file.",
	}

	flags := cmd.Flags()
	lines := flags.Bool('l', "print the newline count")
	words := flags.Bool('w', "print the word count")
	bytes := flags.Bool('c', "print the byte count")
	chars := flags.Bool('m', "print the character count")

	return cmd.Run(virtOS, func() int {
		if !*lines && !*words && !*bytes && !*chars {
			*lines, *words, *bytes = true, true, true
		}

		out := virtOS.Stdout()
		report := func(tally wcTally, label string) {
			var fields []string
			for _, col := range []struct {
				enabled bool
				value   int
			}{
				{*lines, tally.lines},
				{*words, tally.words},
				{*bytes, tally.bytes},
				{*chars, tally.chars},
			} {
				if col.enabled {
					fields = append(fields, strconv.Itoa(col.value))
				}
			}
			if label != "-" {
				fields = append(fields, label)
			}
			io.WriteString(out, strings.Join(fields, " ")+"\n")
		}

		var total wcTally
		files := flags.Args()
		status := cmd.RunEachFileOrStdin(virtOS, files, func(name string, fd io.Reader) error {
			tally, err := countRunes(fd)
			if err != nil {
				return err
			}
			total.add(tally)
			report(tally, name)
			return nil
		})

		if len(files) > 1 {
			report(total, "total")
		}
		return status
	})
}

func init() {
	mustAddCmd("wc", Wc)
}
