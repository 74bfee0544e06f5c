package commands

import (
	"testing"
	"time"

	"github.com/josephlewis42/kshell/core/vos"
	"github.com/josephlewis42/kshell/core/vos/vostest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUname(t *testing.T) {
	cases := goldenTestSuite{
		"no-arg":   {Args: []string{"uname"}},
		"all":      {Args: []string{"uname", "-a"}},
		"nodename": {Args: []string{"uname", "-n"}},
		"combined": {Args: []string{"uname", "-sr"}},
	}

	cases.Run(t, Uname)
}

func TestEcho(t *testing.T) {
	cases := goldenTestSuite{
		"plain":      {Args: []string{"echo", "hello   world"}},
		"quoted":     {Args: []string{"echo", `"hello   world"`}},
		"escaped":    {Args: []string{"echo", `-e 'a\tb'`}},
		"no-newline": {Args: []string{"echo", "-n hi"}},
	}

	cases.Run(t, Echo)
}

func TestHostname(t *testing.T) {
	out, err := vostest.Command(Hostname, "hostname").CombinedOutput()
	require.NoError(t, err)
	assert.Equal(t, "kshell\n", string(out))
}

func TestPwd(t *testing.T) {
	cmd := vostest.Command(Pwd, "pwd")
	cmd.Dir = "/home"

	out, err := cmd.CombinedOutput()
	require.NoError(t, err)
	assert.Equal(t, "/home\n", string(out))
}

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "0 days, 01:30", formatUptime(90*time.Minute))
	assert.Equal(t, "2 days, 01:05", formatUptime(49*time.Hour+5*time.Minute))
}

func TestUptime(t *testing.T) {
	out, err := vostest.Command(Uptime, "uptime").CombinedOutput()
	require.NoError(t, err)

	// The init process and uptime itself.
	assert.Contains(t, string(out), ", 2 processes\n")
}

func TestSegfault(t *testing.T) {
	cmd := vostest.Command(Segfault, "segfault")

	out, err := cmd.CombinedOutput()
	require.NoError(t, err)
	assert.Equal(t, vos.StatusPanic, cmd.ExitStatus)
	assert.Equal(t, "segfault: crashed\n", string(out))
}

func TestSleep(t *testing.T) {
	cmd := vostest.Command(Sleep, "sleep", "0.001")
	require.NoError(t, cmd.Run())
	assert.Equal(t, 0, cmd.ExitStatus)

	out, err := vostest.Command(Sleep, "sleep", "soon").CombinedOutput()
	require.NoError(t, err)
	assert.Equal(t, "sleep: invalid time interval \"soon\"\n", string(out))
}

func TestParseSleepDuration(t *testing.T) {
	cases := map[string]struct {
		want    time.Duration
		wantErr bool
	}{
		"1":    {want: time.Second},
		"0.5":  {want: 500 * time.Millisecond},
		"1m3s": {want: 63 * time.Second},
		"-1":   {wantErr: true},
		"-1s":  {wantErr: true},
		"x":    {wantErr: true},
	}

	for arg, tc := range cases {
		t.Run(arg, func(t *testing.T) {
			got, err := parseSleepDuration(arg)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
