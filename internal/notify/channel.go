package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// Consumer receives fired alarms and answers them.
// Fire must return once ctx is done.
type Consumer interface {
	Fire(ctx context.Context, a alarm.Alarm) (alarm.Response, error)
}

// Reporter is implemented by consumers that want to learn how a round-trip ended.
type Reporter interface {
	Resolved(ctx context.Context, outcome Outcome)
}

// HandlerFunc adapts a plain callback to the Consumer interface.
type HandlerFunc func(ctx context.Context, a alarm.Alarm) alarm.Response

// Fire calls f.
func (f HandlerFunc) Fire(ctx context.Context, a alarm.Alarm) (alarm.Response, error) {
	return f(ctx, a), nil
}

// Outcome describes how a single fire round-trip ended.
type Outcome struct {
	// Alarm is the alarm state after the response was applied.
	Alarm alarm.Alarm
	// Response is the applied response, ResponseUnknown when none was applied.
	Response alarm.Response
	// TimedOut is true when Response is the timeout action rather than a consumer answer.
	TimedOut bool
	// Err is the failure, if any: no consumer, no answer or a rejected transition.
	Err error
}

// ApplyFunc applies a response to the alarm owned by the caller and
// returns the resulting alarm state.
type ApplyFunc func(alarm.Response) (alarm.Alarm, error)

var (
	// ErrNoConsumer is reported when an alarm fires with nobody subscribed.
	ErrNoConsumer = errors.New("no consumer subscribed")
	// ErrNoResponse is reported when the consumer did not answer in time and no timeout action is set.
	ErrNoResponse = errors.New("no response from consumer")
)

// Option configures a Channel.
type Option func(*Channel)

// WithResponseTimeout bounds each round-trip. Zero waits until ctx is done.
func WithResponseTimeout(timeout time.Duration) Option {
	return func(c *Channel) {
		if timeout >= 0 {
			c.timeout = timeout
		}
	}
}

// WithTimeoutAction sets the response applied when the timeout expires.
// alarm.ResponseUnknown leaves the alarm untouched.
func WithTimeoutAction(action alarm.Response) Option {
	return func(c *Channel) {
		c.timeoutAction = action
	}
}

// Channel delivers fire events to the subscribed consumer.
type Channel struct {
	// mu protects consumer.
	mu sync.RWMutex
	// consumer is the single subscriber, nil when nobody listens.
	consumer Consumer
	// generation identifies the current subscription; consumers need not be comparable.
	generation uint64

	// timeout bounds each round-trip when positive.
	timeout time.Duration
	// timeoutAction is applied when timeout expires.
	timeoutAction alarm.Response
}

// NewChannel creates a channel with no consumer.
func NewChannel(opts ...Option) *Channel {
	c := &Channel{
		timeoutAction: alarm.ResponseSnooze,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Subscribe makes consumer the receiver of all fire events, replacing any
// previous one. The returned function unsubscribes it.
func (c *Channel) Subscribe(consumer Consumer) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.consumer = consumer
	c.generation++
	generation := c.generation

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		if c.generation == generation {
			c.consumer = nil
		}
	}
}

// Deliver runs one round-trip for a: ask the consumer, apply the answer and report the outcome.
func (c *Channel) Deliver(ctx context.Context, a alarm.Alarm, apply ApplyFunc) Outcome {
	c.mu.RLock()
	consumer := c.consumer
	c.mu.RUnlock()

	outcome := Outcome{Alarm: a}

	if consumer == nil {
		outcome.Err = ErrNoConsumer

		return outcome
	}

	response, timedOut, err := c.ask(ctx, consumer, a)

	outcome.TimedOut = timedOut

	if err != nil {
		outcome.Err = err
		c.report(ctx, consumer, outcome)

		return outcome
	}

	outcome.Response = response

	updated, err := apply(response)
	if err != nil {
		outcome.Err = fmt.Errorf("apply %s: %w", response, err)
	} else {
		outcome.Alarm = updated
	}

	c.report(ctx, consumer, outcome)

	return outcome
}

// ask waits for the consumer's answer, substituting the timeout action when
// the response timeout expires while ctx itself is still live.
func (c *Channel) ask(ctx context.Context, consumer Consumer, a alarm.Alarm) (alarm.Response, bool, error) {
	fireCtx := ctx

	if c.timeout > 0 {
		var cancel context.CancelFunc

		fireCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	response, err := consumer.Fire(fireCtx, a)

	switch {
	case err == nil:
		return response, false, nil
	case ctx.Err() != nil:
		return alarm.ResponseUnknown, false, fmt.Errorf("fire canceled: %w", ctx.Err())
	case fireCtx.Err() == nil:
		return alarm.ResponseUnknown, false, fmt.Errorf("consumer: %w", err)
	}

	// Response timeout expired.
	logger.WarnKV(ctx, "Alarm was not answered in time",
		"alarm_id", a.ID,
		"timeout", c.timeout.String(),
		"timeout_action", c.timeoutAction.String(),
	)

	if c.timeoutAction == alarm.ResponseUnknown {
		return alarm.ResponseUnknown, true, ErrNoResponse
	}

	return c.timeoutAction, true, nil
}

func (c *Channel) report(ctx context.Context, consumer Consumer, outcome Outcome) {
	reporter, ok := consumer.(Reporter)
	if !ok {
		return
	}

	reporter.Resolved(context.WithoutCancel(ctx), outcome)
}
