package cftime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2020, time.April, 21, 12, 30, 0, 0, time.UTC)
	for _, tc := range []struct {
		in   string
		want time.Time
	}{
		{"2020-04-21T12:30:00", want},
		{"2020-04-21 12:30:00", want},
		{"2020-04-21T12:30", want},
		{"2020-04-21T12:30:00Z", want},
		{"2020-04-21T14:30:00+02:00", want},
		{"2020-04-21T12:30:00.000", want},
		{" 2020-04-21T12:30 ", want},
		{"2020-04-21T12", time.Date(2020, time.April, 21, 12, 0, 0, 0, time.UTC)},
		{"2020-04-21", time.Date(2020, time.April, 21, 0, 0, 0, 0, time.UTC)},
	} {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseTimestamp(tc.in)
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got), "got %v", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseTimestampInvalid(t *testing.T) {
	for _, in := range []string{"", "yesterday", "2020-13-01", "21/04/2020", "2020-04-21T25:00"} {
		_, err := ParseTimestamp(in)
		assert.Error(t, err, in)
	}
}

func TestHours(t *testing.T) {
	for _, tc := range []struct {
		t    time.Time
		want int32
	}{
		{Epoch, 0},
		{time.Date(1950, time.January, 2, 0, 0, 0, 0, time.UTC), 24},
		{time.Date(1950, time.January, 1, 1, 59, 0, 0, time.UTC), 1},
		{time.Date(1949, time.December, 31, 22, 30, 0, 0, time.UTC), -1},
		{time.Date(2020, time.April, 21, 0, 0, 0, 0, time.UTC), 616272},
		{time.Date(2300, time.January, 1, 0, 0, 0, 0, time.UTC), 3068040},
		{time.Date(1600, time.January, 1, 0, 0, 0, 0, time.UTC), -3068040},
	} {
		assert.Equal(t, tc.want, Hours(tc.t), tc.t.String())
	}
}
