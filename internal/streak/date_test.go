package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDateOf_UsesLocalCalendarDay(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 23:30 local on Jan 10 is Jan 10 in Tokyo even though it is already
	// Jan 10 14:30 UTC; a late-night session must not slip to the next day.
	late := time.Date(2024, 1, 10, 23, 30, 0, 0, loc)
	assert.Equal(t, Date{Year: 2024, Month: time.January, Day: 10}, DateOf(late))

	// 00:30 local the next day belongs to Jan 11 despite being Jan 10 in UTC.
	early := time.Date(2024, 1, 11, 0, 30, 0, 0, loc)
	assert.Equal(t, Date{Year: 2024, Month: time.January, Day: 11}, DateOf(early))
}

func TestDate_DaysSince(t *testing.T) {
	tests := []struct {
		name string
		a, b Date
		want int
	}{
		{name: "same day", a: date(2024, 1, 10), b: date(2024, 1, 10), want: 0},
		{name: "next day", a: date(2024, 1, 11), b: date(2024, 1, 10), want: 1},
		{name: "previous day", a: date(2024, 1, 9), b: date(2024, 1, 10), want: -1},
		{name: "across month boundary", a: date(2024, 2, 1), b: date(2024, 1, 31), want: 1},
		{name: "across leap day", a: date(2024, 3, 1), b: date(2024, 2, 28), want: 2},
		{name: "across year boundary", a: date(2025, 1, 1), b: date(2024, 12, 31), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.DaysSince(tt.b))
		})
	}
}

func TestDate_YAMLRoundTrip(t *testing.T) {
	d := date(2024, 1, 10)

	out, err := yaml.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(out), "2024-01-10")

	var got Date
	require.NoError(t, yaml.Unmarshal(out, &got))
	assert.Equal(t, d, got)
}

func TestDate_UnmarshalYAML_BadFormat(t *testing.T) {
	var got Date
	err := yaml.Unmarshal([]byte(`"January 10"`), &got)
	assert.Error(t, err)
}
