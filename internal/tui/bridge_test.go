package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/notify"
)

// TestBridge_NotAttached fails fires until a program is attached and drops outcomes.
func TestBridge_NotAttached(t *testing.T) {
	t.Parallel()

	b := NewBridge()

	response, err := b.Fire(context.Background(), alarm.Alarm{})
	require.ErrorIs(t, err, errNotAttached)
	require.Equal(t, alarm.ResponseUnknown, response)

	b.Resolved(context.Background(), notify.Outcome{})
}

// TestBridge_Attached forwards fires and outcomes to the program.
func TestBridge_Attached(t *testing.T) {
	t.Parallel()

	var resolved []notify.Outcome

	b := NewBridge()
	b.Attach(func(msg tea.Msg) {
		switch msg := msg.(type) {
		case fireMsg:
			msg.reply <- alarm.ResponseSnooze
		case resolvedMsg:
			resolved = append(resolved, msg.outcome)
		}
	})

	fired := alarm.Alarm{ID: alarm.ID{1}}

	response, err := b.Fire(context.Background(), fired)
	require.NoError(t, err)
	require.Equal(t, alarm.ResponseSnooze, response)

	b.Resolved(context.Background(), notify.Outcome{Alarm: fired, Response: alarm.ResponseSnooze})
	require.Len(t, resolved, 1)
	require.Equal(t, fired.ID, resolved[0].Alarm.ID)
}

// TestBridge_FireCanceled returns the context error when nobody answers.
func TestBridge_FireCanceled(t *testing.T) {
	t.Parallel()

	b := NewBridge()
	b.Attach(func(tea.Msg) {})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.Fire(ctx, alarm.Alarm{})
	require.ErrorIs(t, err, context.Canceled)
}
