package tui

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/notify"
)

// errNotAttached is returned when an alarm fires before the program started.
var errNotAttached = errors.New("terminal UI is not attached")

// fireMsg asks the model to show a fired alarm. reply is buffered, so answering never blocks.
type fireMsg struct {
	alarm alarm.Alarm
	reply chan<- alarm.Response
}

// resolvedMsg tells the model how a fire ended.
type resolvedMsg struct {
	outcome notify.Outcome
}

// Bridge forwards fires from the scheduler goroutine into a running program.
type Bridge struct {
	// mu protects send.
	mu sync.RWMutex
	// send posts a message to the program, usually (*tea.Program).Send.
	send func(tea.Msg)
}

// NewBridge creates a detached bridge.
func NewBridge() *Bridge {
	return new(Bridge)
}

// Attach routes messages to send.
func (b *Bridge) Attach(send func(tea.Msg)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.send = send
}

// Fire shows a in the program and waits for the user's answer or ctx.
func (b *Bridge) Fire(ctx context.Context, a alarm.Alarm) (alarm.Response, error) {
	send := b.sender()
	if send == nil {
		return alarm.ResponseUnknown, errNotAttached
	}

	reply := make(chan alarm.Response, 1)
	send(fireMsg{alarm: a, reply: reply})

	select {
	case response := <-reply:
		return response, nil
	case <-ctx.Done():
		return alarm.ResponseUnknown, ctx.Err()
	}
}

// Resolved forwards the outcome to the program.
func (b *Bridge) Resolved(_ context.Context, outcome notify.Outcome) {
	if send := b.sender(); send != nil {
		send(resolvedMsg{outcome: outcome})
	}
}

func (b *Bridge) sender() func(tea.Msg) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.send
}
