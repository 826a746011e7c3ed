package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtm0/mdk2nc/internal/ncfile"
)

const relFile = `  Medslik-II release file
     LAT      LON     C2     C3     C4    U10M    V10M
   45.125   12.500   0   0   0    1.5   -2.0
   45.125   12.625   0   0   0    0.5    0.25
   45.250   12.500   0   0   0   -1.0    3.0
   45.250   12.500   0   0   0    7.0    7.0
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "spill.rel")
	require.NoError(t, os.WriteFile(input, []byte(relFile), 0o644))

	t.Run("convert", func(t *testing.T) {
		_, err := execute(t, "convert", "-i", input, "-t", "2020-04-21T12:00")
		require.NoError(t, err)

		inf, err := ncfile.Inspect(input+".nc", "lat", "lon")
		require.NoError(t, err)
		assert.Equal(t, []string{"U10M", "V10M", "lat", "lon", "time"}, inf.Vars)
		assert.Equal(t, ncfile.Bounds{Min: 45.125, Max: 45.25}, inf.Lat)
	})

	t.Run("info", func(t *testing.T) {
		out, err := execute(t, "info", "-i", input+".nc")
		require.NoError(t, err)
		assert.Equal(t, "variables: U10M V10M lat lon time\nlat: 45.125 .. 45.25\nlon: 12.5 .. 12.625\n", out)
	})

	t.Run("dump", func(t *testing.T) {
		out, err := execute(t, "dump", "-i", input, "-t", "2020-04-21 12:00", "--format", "csv")
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 5)
		assert.Equal(t, "time,lat,lon,U10M,V10M", lines[0])
		assert.Equal(t, "2020-04-21T12:00:00Z,45.250,12.500,-1,3", lines[3])
		assert.Equal(t, "2020-04-21T12:00:00Z,45.250,12.625,,", lines[4])
	})

	t.Run("missing time", func(t *testing.T) {
		_, err := execute(t, "convert", "-i", input, "-t", "")
		assert.ErrorContains(t, err, "--time is required")
	})

	t.Run("channels from environment", func(t *testing.T) {
		t.Setenv("MDK2NC_CHANNELS", "U,V")
		output := filepath.Join(dir, "env.nc")

		_, err := execute(t, "convert", "-i", input, "-o", output, "-t", "2020-04-21")
		require.NoError(t, err)

		inf, err := ncfile.Inspect(output, "lat", "lon")
		require.NoError(t, err)
		assert.Equal(t, []string{"U", "V", "lat", "lon", "time"}, inf.Vars)
	})

	t.Run("reserved channel name", func(t *testing.T) {
		output := filepath.Join(dir, "reserved.nc")
		_, err := execute(t, "convert", "-i", input, "-o", output, "-t", "2020-04-21", "--channels", "lat,V10M")
		assert.ErrorIs(t, err, ncfile.ErrChannelName)
		assert.NoFileExists(t, output)
	})

	t.Run("strict", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.rel")
		require.NoError(t, os.WriteFile(bad, []byte(relFile+"1 2 3\n"), 0o644))
		output := filepath.Join(dir, "bad.nc")

		_, err := execute(t, "convert", "-i", bad, "-o", output, "-t", "2020-04-21", "--strict", "--channels", "U10M,V10M")
		assert.ErrorContains(t, err, "line 7")
		assert.NoFileExists(t, output)
	})
}

func TestStringList(t *testing.T) {
	for _, tc := range []struct {
		in   any
		want []string
	}{
		{[]string{"U", "V"}, []string{"U", "V"}},
		{"U,V", []string{"U", "V"}},
		{"U V", []string{"U", "V"}},
		{[]string{"U, V", ""}, []string{"U", "V"}},
	} {
		cfg.Set("test-list", tc.in)
		assert.Equal(t, tc.want, stringList("test-list"), "%v", tc.in)
	}
}
