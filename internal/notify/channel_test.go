package notify

import (
	"context"
	"errors"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
)

var errConsumerBroken = errors.New("consumer broken")

// recordingConsumer answers with a fixed response and records outcomes.
type recordingConsumer struct {
	// response is returned from every Fire call.
	response alarm.Response
	// err is returned from every Fire call.
	err error
	// block makes Fire wait for ctx instead of answering.
	block bool

	// fired holds the alarms passed to Fire.
	fired []alarm.Alarm
	// outcomes holds the outcomes passed to Resolved.
	outcomes []Outcome
}

// Fire records the alarm and answers, or blocks until ctx is done.
func (r *recordingConsumer) Fire(ctx context.Context, a alarm.Alarm) (alarm.Response, error) {
	r.fired = append(r.fired, a)

	if r.block {
		<-ctx.Done()

		return alarm.ResponseUnknown, ctx.Err()
	}

	return r.response, r.err
}

// Resolved records the outcome.
func (r *recordingConsumer) Resolved(_ context.Context, outcome Outcome) {
	r.outcomes = append(r.outcomes, outcome)
}

func newAlarm(t *testing.T) *alarm.Alarm {
	t.Helper()

	a, err := alarm.New(7, 0, []int{1}, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	return a
}

// applyTo returns an ApplyFunc mutating a directly.
func applyTo(a *alarm.Alarm) ApplyFunc {
	return func(r alarm.Response) (alarm.Alarm, error) {
		if err := a.Respond(r); err != nil {
			return *a, err
		}

		return *a, nil
	}
}

// TestDeliver_Snooze verifies a snooze answer is applied and reported.
func TestDeliver_Snooze(t *testing.T) {
	t.Parallel()

	a := newAlarm(t)
	consumer := &recordingConsumer{response: alarm.ResponseSnooze}

	c := NewChannel()
	c.Subscribe(consumer)

	outcome := c.Deliver(context.Background(), *a, applyTo(a))

	require.NoError(t, outcome.Err)
	require.Equal(t, alarm.ResponseSnooze, outcome.Response)
	require.False(t, outcome.TimedOut)
	require.Equal(t, 1, outcome.Alarm.SnoozeCount)
	require.Equal(t, "07:05", outcome.Alarm.Trigger.String())
	require.Len(t, consumer.fired, 1)
	require.Equal(t, []Outcome{outcome}, consumer.outcomes)
}

// TestDeliver_SnoozeLimitReported checks that a failed snooze still resolves and is reported.
func TestDeliver_SnoozeLimitReported(t *testing.T) {
	t.Parallel()

	a := newAlarm(t)
	a.SnoozeCount = alarm.MaxSnoozeCount

	consumer := &recordingConsumer{response: alarm.ResponseSnooze}

	c := NewChannel()
	c.Subscribe(consumer)

	outcome := c.Deliver(context.Background(), *a, applyTo(a))

	require.ErrorIs(t, outcome.Err, alarm.ErrSnoozeLimitExceeded)
	require.Equal(t, alarm.MaxSnoozeCount, a.SnoozeCount)
	require.Equal(t, "07:00", a.Trigger.String())
	require.Len(t, consumer.outcomes, 1)
	require.ErrorIs(t, consumer.outcomes[0].Err, alarm.ErrSnoozeLimitExceeded)
}

// TestDeliver_Stop verifies stop disables the alarm and clears snoozes.
func TestDeliver_Stop(t *testing.T) {
	t.Parallel()

	a := newAlarm(t)
	a.SnoozeCount = 2

	c := NewChannel()
	c.Subscribe(HandlerFunc(func(context.Context, alarm.Alarm) alarm.Response {
		return alarm.ResponseStop
	}))

	outcome := c.Deliver(context.Background(), *a, applyTo(a))

	require.NoError(t, outcome.Err)
	require.False(t, a.Enabled)
	require.Zero(t, a.SnoozeCount)
	require.False(t, outcome.Alarm.Enabled)
}

// TestDeliver_NoConsumer ensures firing without subscribers leaves the alarm untouched.
func TestDeliver_NoConsumer(t *testing.T) {
	t.Parallel()

	a := newAlarm(t)
	c := NewChannel()

	unsubscribe := c.Subscribe(HandlerFunc(func(context.Context, alarm.Alarm) alarm.Response {
		return alarm.ResponseStop
	}))
	unsubscribe()

	outcome := c.Deliver(context.Background(), *a, applyTo(a))
	require.ErrorIs(t, outcome.Err, ErrNoConsumer)
	require.True(t, a.Enabled)
}

// TestSubscribe_ReplacesConsumer checks that a stale unsubscribe does not remove the newer consumer.
func TestSubscribe_ReplacesConsumer(t *testing.T) {
	t.Parallel()

	a := newAlarm(t)
	first := &recordingConsumer{response: alarm.ResponseStop}
	second := &recordingConsumer{response: alarm.ResponseSnooze}

	c := NewChannel()
	unsubscribeFirst := c.Subscribe(first)
	c.Subscribe(second)
	unsubscribeFirst()

	outcome := c.Deliver(context.Background(), *a, applyTo(a))
	require.NoError(t, outcome.Err)
	require.Empty(t, first.fired)
	require.Len(t, second.fired, 1)
}

// TestDeliver_ConsumerError propagates consumer failures without applying anything.
func TestDeliver_ConsumerError(t *testing.T) {
	t.Parallel()

	a := newAlarm(t)
	consumer := &recordingConsumer{err: errConsumerBroken}

	c := NewChannel()
	c.Subscribe(consumer)

	outcome := c.Deliver(context.Background(), *a, applyTo(a))
	require.ErrorIs(t, outcome.Err, errConsumerBroken)
	require.True(t, a.Enabled)
	require.Len(t, consumer.outcomes, 1)
}

// TestDeliver_TimeoutAction applies the configured action when the consumer stays silent.
func TestDeliver_TimeoutAction(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		a := newAlarm(t)
		consumer := &recordingConsumer{block: true}

		c := NewChannel(WithResponseTimeout(time.Minute), WithTimeoutAction(alarm.ResponseStop))
		c.Subscribe(consumer)

		start := time.Now()
		outcome := c.Deliver(context.Background(), *a, applyTo(a))

		require.Equal(t, time.Minute, time.Since(start))
		require.NoError(t, outcome.Err)
		require.True(t, outcome.TimedOut)
		require.Equal(t, alarm.ResponseStop, outcome.Response)
		require.False(t, a.Enabled)
	})
}

// TestDeliver_TimeoutNone reports ErrNoResponse and leaves the alarm alone.
func TestDeliver_TimeoutNone(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		a := newAlarm(t)
		consumer := &recordingConsumer{block: true}

		c := NewChannel(WithResponseTimeout(time.Second), WithTimeoutAction(alarm.ResponseUnknown))
		c.Subscribe(consumer)

		outcome := c.Deliver(context.Background(), *a, applyTo(a))

		require.ErrorIs(t, outcome.Err, ErrNoResponse)
		require.True(t, outcome.TimedOut)
		require.True(t, a.Enabled)
		require.Len(t, consumer.outcomes, 1)
	})
}

// TestDeliver_Canceled reports the parent context error instead of the timeout action.
func TestDeliver_Canceled(t *testing.T) {
	t.Parallel()

	a := newAlarm(t)
	consumer := &recordingConsumer{block: true}

	c := NewChannel(WithResponseTimeout(time.Hour))
	c.Subscribe(consumer)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := c.Deliver(ctx, *a, applyTo(a))
	require.ErrorIs(t, outcome.Err, context.Canceled)
	require.False(t, outcome.TimedOut)
	require.True(t, a.Enabled)
}
