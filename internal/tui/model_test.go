package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/notify"
	"github.com/oshokin/alarm-clock/internal/scheduler"
)

func fixedClock() time.Time {
	return time.Date(2024, time.January, 1, 6, 0, 0, 0, time.UTC)
}

func newTestModel(t *testing.T) (Model, *scheduler.Scheduler) {
	t.Helper()

	engine := scheduler.New(scheduler.WithClock(fixedClock))

	return NewModel(engine, WithClock(fixedClock)), engine
}

// press sends keys to m one by one. Named keys map to their key types, anything else is typed as runes.
func press(t *testing.T, m tea.Model, keys ...string) Model {
	t.Helper()

	named := map[string]tea.KeyType{
		"enter": tea.KeyEnter,
		"tab":   tea.KeyTab,
		"esc":   tea.KeyEscape,
		"up":    tea.KeyUp,
		"down":  tea.KeyDown,
	}

	for _, k := range keys {
		msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		if keyType, ok := named[k]; ok {
			msg = tea.KeyMsg{Type: keyType}
		}

		m, _ = m.Update(msg)
	}

	model, ok := m.(Model)
	require.True(t, ok)

	return model
}

// TestModel_AddAlarm fills the add form and saves the alarm.
func TestModel_AddAlarm(t *testing.T) {
	t.Parallel()

	m, engine := newTestModel(t)

	m = press(t, m, "a")
	require.Equal(t, viewAdd, m.mode)
	require.Contains(t, m.View(), "Add alarm")

	m = press(t, m, "07:00", "tab", "5, 1", "enter")
	require.Equal(t, viewList, m.mode)
	require.False(t, m.statusErr)
	require.Equal(t, "Alarm added: 07:00 on days 1, 5.", m.status)

	entries := engine.List(context.Background())
	require.Len(t, entries, 1)
	require.Equal(t, alarm.TimeOfDay{Hour: 7, Minute: 0}, entries[0].Trigger)
	require.Equal(t, []int{1, 5}, entries[0].Days.Days())
	require.Len(t, m.alarms, 1)
	require.Contains(t, m.View(), "1, 5 (Mon, Fri)")
}

// TestModel_AddAlarmInvalid keeps the form open and adds nothing on bad input.
func TestModel_AddAlarmInvalid(t *testing.T) {
	t.Parallel()

	m, engine := newTestModel(t)

	m = press(t, m, "a", "25:00", "tab", "1", "enter")
	require.Equal(t, viewAdd, m.mode)
	require.True(t, m.statusErr)
	require.Contains(t, m.status, "invalid time format")

	m = press(t, m, "esc")
	require.Equal(t, viewList, m.mode)
	require.Empty(t, engine.List(context.Background()))

	m = press(t, m, "a", "07:00", "tab", "1, 1", "enter")
	require.Equal(t, viewAdd, m.mode)
	require.True(t, m.statusErr)
	require.Empty(t, engine.List(context.Background()))
}

// TestModel_ListActions snoozes, stops and deletes the selected alarm.
func TestModel_ListActions(t *testing.T) {
	t.Parallel()

	m, engine := newTestModel(t)
	ctx := context.Background()

	_, err := engine.Add(ctx, 7, 0, []int{1})
	require.NoError(t, err)
	_, err = engine.Add(ctx, 8, 0, []int{2})
	require.NoError(t, err)

	m = press(t, m, "down", "down", "up")
	require.Equal(t, 0, m.cursor)

	m = press(t, m, "s")
	require.Equal(t, "Alarm snoozed until 07:05.", m.status)

	m = press(t, m, "s", "s", "s")
	require.True(t, m.statusErr)
	require.Equal(t, "Maximum snooze limit reached.", m.status)

	m = press(t, m, "x")
	require.Equal(t, "Alarm stopped.", m.status)
	require.False(t, m.alarms[0].Enabled)
	require.Contains(t, m.View(), "stopped")

	m = press(t, m, "down", "d")
	require.Equal(t, "Alarm deleted.", m.status)
	require.Len(t, engine.List(ctx), 1)
	require.Equal(t, 0, m.cursor)
}

// TestModel_FireModal answers queued fires in order: snooze key snoozes, any other key stops.
func TestModel_FireModal(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t)

	first := alarm.Alarm{ID: alarm.ID{1}, Trigger: alarm.TimeOfDay{Hour: 7}, Days: alarm.Weekdays(1 << 1)}
	second := alarm.Alarm{ID: alarm.ID{2}, Trigger: alarm.TimeOfDay{Hour: 8}, Days: alarm.Weekdays(1 << 1)}

	firstReply := make(chan alarm.Response, 1)
	secondReply := make(chan alarm.Response, 1)

	model, _ := m.Update(fireMsg{alarm: first, reply: firstReply})
	model, _ = model.Update(fireMsg{alarm: second, reply: secondReply})

	m = press(t, model)
	require.Contains(t, m.View(), "ALARM! 07:00 on Mon")
	require.Contains(t, m.View(), "1 more waiting.")

	m = press(t, m, "s")
	require.Equal(t, alarm.ResponseSnooze, <-firstReply)
	require.Contains(t, m.View(), "ALARM! 08:00")

	m = press(t, m, "q")
	require.Equal(t, alarm.ResponseStop, <-secondReply)
	require.False(t, m.quitting)
	require.Empty(t, m.fires)
}

// TestModel_Resolved reports the outcome and drops a fire that timed out unanswered.
func TestModel_Resolved(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t)

	fired := alarm.Alarm{ID: alarm.ID{1}, Trigger: alarm.TimeOfDay{Hour: 7}}
	other := alarm.Alarm{ID: alarm.ID{2}, Trigger: alarm.TimeOfDay{Hour: 8}}

	model, _ := m.Update(fireMsg{alarm: fired, reply: make(chan alarm.Response, 1)})
	model, _ = model.Update(fireMsg{alarm: other, reply: make(chan alarm.Response, 1)})
	model, _ = model.Update(resolvedMsg{outcome: notify.Outcome{
		Alarm:    fired,
		Response: alarm.ResponseStop,
		TimedOut: true,
	}})

	m = press(t, model)
	require.Len(t, m.fires, 1)
	require.Equal(t, other.ID, m.fires[0].alarm.ID)
	require.Equal(t, "No answer in time. Alarm stopped.", m.status)

	model, _ = m.Update(resolvedMsg{outcome: notify.Outcome{
		Alarm: other,
		Err:   alarm.ErrSnoozeLimitExceeded,
	}})

	m = press(t, model)
	require.Empty(t, m.fires)
	require.True(t, m.statusErr)
	require.Equal(t, "Maximum snooze limit reached.", m.status)
}

// TestModel_ViewAndQuit renders the empty table and quits.
func TestModel_ViewAndQuit(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t)

	view := m.View()
	require.Contains(t, view, "Mon 2024-01-01 06:00:00")
	require.Contains(t, view, "No alarms set.")
	require.NotNil(t, m.Init())

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	require.Empty(t, model.View())
}
