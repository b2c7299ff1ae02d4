package alarm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	t.Parallel()

	valid := map[string]TimeOfDay{
		"07:00":   {Hour: 7, Minute: 0},
		"7:05":    {Hour: 7, Minute: 5},
		" 23:59 ": {Hour: 23, Minute: 59},
		"00:00":   {Hour: 0, Minute: 0},
	}
	for s, want := range valid {
		got, err := ParseTimeOfDay(s)
		require.NoError(t, err, s)
		require.Equal(t, want, got)
	}

	for _, s := range []string{
		"", "7", "24:00", "12:60", "12:5", "ab:cd", "-1:00",
		"+7:+5", "-0:00", "+7:05", "07:+5", "007:00", "7 :00", "07:0 ",
	} {
		_, err := ParseTimeOfDay(s)
		require.ErrorIs(t, err, ErrInvalidTime, s)
	}
}

func TestTimeOfDayAdd(t *testing.T) {
	t.Parallel()

	require.Equal(t, TimeOfDay{Hour: 0, Minute: 3}, TimeOfDay{Hour: 23, Minute: 58}.Add(5*time.Minute))
	require.Equal(t, TimeOfDay{Hour: 8, Minute: 2}, TimeOfDay{Hour: 7, Minute: 57}.Add(5*time.Minute))
	require.Equal(t, TimeOfDay{Hour: 23, Minute: 55}, TimeOfDay{Hour: 0, Minute: 0}.Add(-5*time.Minute))
	require.Equal(t, "00:03", TimeOfDay{Hour: 0, Minute: 3}.String())
}

func TestWeekdays(t *testing.T) {
	t.Parallel()

	w, err := ParseWeekdays("5, 1,0")
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 5}, w.Days())
	require.Equal(t, 3, w.Len())
	require.Equal(t, "0, 1, 5", w.String())
	require.Equal(t, "Sun, Mon, Fri", w.Names())
	require.True(t, w.Contains(time.Friday))
	require.False(t, w.Contains(time.Saturday))

	for _, s := range []string{"", "7", "-1", "+1", "1,+2", "01", "1,1", "mon", "1,,2"} {
		_, err := ParseWeekdays(s)
		require.ErrorIs(t, err, ErrInvalidDaySpec, s)
	}
}
