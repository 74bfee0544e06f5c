package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandEscapes(t *testing.T) {
	cases := map[string]struct {
		want     string
		wantStop bool
	}{
		"plain text":       {want: "plain text"},
		`tab\there`:        {want: "tab\there"},
		`lit\\n`:           {want: `lit\n`},
		`bell\a`:           {want: "bell\a"},
		`\0101\0102`:       {want: "AB"},
		`nul\0`:            {want: "nul\x00"},
		`\x41\x4a\x4`:      {want: "AJ\x04"},
		`\xzz`:             {want: `\xzz`},
		`unknown \q`:       {want: `unknown \q`},
		`trailing\`:        {want: `trailing\`},
		`stop\chidden`:     {want: "stop", wantStop: true},
		`\0777 overflowed`: {want: "\xff overflowed"},
	}

	for in, tc := range cases {
		t.Run(in, func(t *testing.T) {
			got, stop := expandEscapes(in)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.wantStop, stop)
		})
	}
}
