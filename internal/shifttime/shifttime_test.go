package shifttime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTimeOptions(t *testing.T) {
	options := GenerateTimeOptions()

	require.Len(t, options, 120)
	assert.Equal(t, "00:00", options[0])
	assert.Equal(t, "29:45", options[len(options)-1])

	for i := 1; i < len(options); i++ {
		prev, err := ToMinutes(options[i-1])
		require.NoError(t, err)

		cur, err := ToMinutes(options[i])
		require.NoError(t, err)

		assert.Equal(t, StepMinutes, cur-prev, "step between %s and %s", options[i-1], options[i])
	}

	assert.Equal(t, options, GenerateTimeOptions(), "options must be deterministic")
}

func TestFormatShiftTime(t *testing.T) {
	tests := []struct {
		name      string
		start     string
		end       string
		separator []string
		want      string
	}{
		{"crosses midnight", "19:00", "03:00", nil, "19:00〜27:00"},
		{"empty start", "", "03:00", nil, ""},
		{"empty end", "19:00", "", nil, ""},
		{"both late night", "00:30", "05:45", nil, "24:30〜29:45"},
		{"six is not shifted", "06:00", "23:45", nil, "06:00〜23:45"},
		{"already display time", "20:00", "26:00", nil, "20:00〜26:00"},
		{"custom separator", "19:00", "03:00", []string{" - "}, "19:00 - 27:00"},
		{"single digit hour", "1:15", "4:00", nil, "25:15〜28:00"},
		{"unparsable kept", "late", "03:00", nil, "late〜27:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatShiftTime(tt.start, tt.end, tt.separator...))
		})
	}
}

func TestNormalize(t *testing.T) {
	for in, want := range map[string]string{
		"03:00": "27:00",
		"00:00": "24:00",
		"05:45": "29:45",
		"06:00": "06:00",
		"19:00": "19:00",
		"27:00": "27:00",
		"bad":   "bad",
	} {
		assert.Equal(t, want, Normalize(in), in)
	}
}

func TestToMinutes(t *testing.T) {
	m, err := ToMinutes("27:30")
	require.NoError(t, err)
	assert.Equal(t, 27*60+30, m)

	_, err = ToMinutes("30:00")
	require.ErrorIs(t, err, ErrOutOfRange)

	_, err = ToMinutes("12:60")
	require.ErrorIs(t, err, ErrOutOfRange)

	for _, bad := range []string{"", "1200", "ab:cd", "12:5", ":30"} {
		_, err = ToMinutes(bad)
		require.ErrorIs(t, err, ErrInvalidTime, bad)
	}
}

func TestIsOption(t *testing.T) {
	assert.True(t, IsOption("00:00"))
	assert.True(t, IsOption("29:45"))
	assert.False(t, IsOption("19:10"))
	assert.False(t, IsOption("9:00"))
	assert.False(t, IsOption("30:00"))
}

func TestDuration(t *testing.T) {
	d, err := Duration("19:00", "03:00")
	require.NoError(t, err)
	assert.Equal(t, 8*60, d)

	d, err = Duration("20:00", "26:30")
	require.NoError(t, err)
	assert.Equal(t, 6*60+30, d)

	_, err = Duration("22:00", "21:00")
	require.ErrorIs(t, err, ErrEndNotAfterStart)

	_, err = Duration("x", "21:00")
	require.ErrorIs(t, err, ErrInvalidTime)
}

func TestClock(t *testing.T) {
	clock, next, err := Clock("27:30")
	require.NoError(t, err)
	assert.Equal(t, "03:30", clock)
	assert.True(t, next)

	clock, next, err = Clock("19:00")
	require.NoError(t, err)
	assert.Equal(t, "19:00", clock)
	assert.False(t, next)
}

func TestBusinessDate(t *testing.T) {
	jst := time.FixedZone("JST", 9*60*60)

	assert.Equal(t, "2026-04-01", BusinessDate(time.Date(2026, 4, 1, 19, 0, 0, 0, jst)))
	assert.Equal(t, "2026-04-01", BusinessDate(time.Date(2026, 4, 2, 5, 59, 0, 0, jst)))
	assert.Equal(t, "2026-04-02", BusinessDate(time.Date(2026, 4, 2, 6, 0, 0, 0, jst)))
	assert.Equal(t, "2026-02-28", BusinessDate(time.Date(2026, 3, 1, 1, 0, 0, 0, jst)))
}
