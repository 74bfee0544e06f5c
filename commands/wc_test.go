package commands

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWc(t *testing.T) {
	cases := goldenTestSuite{
		"no-arg":  {Args: []string{"wc"}},
		"stdin":   {Args: []string{"wc", "-l"}, Stdin: "a\nb\nc\n"},
		"missing": {Args: []string{"wc", "does-not-exist.txt"}},
		"total": {
			Args:  []string{"wc", "/a.txt /b.txt"},
			Files: map[string]string{"/a.txt": "one two\n", "/b.txt": "three\n"},
		},
		"chars": {
			Args:  []string{"wc", "-m /utf8.txt"},
			Files: map[string]string{"/utf8.txt": "héllo"},
		},
	}

	cases.Run(t, Wc)
}

func TestCountRunes(t *testing.T) {
	cases := map[string]wcTally{
		"":                   {},
		"one":                {words: 1, bytes: 3, chars: 3},
		"Hello,\nworld !":    {lines: 1, words: 3, bytes: 14, chars: 14},
		"  spaced\t\tout \n": {lines: 1, words: 2, bytes: 15, chars: 15},
		"naïve café\n":       {lines: 1, words: 2, bytes: 13, chars: 11},
	}

	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			got, err := countRunes(strings.NewReader(in))
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}
