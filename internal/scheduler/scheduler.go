package scheduler

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/notify"
)

// DefaultInterval is the canonical tick period.
const DefaultInterval = time.Minute

// Entry is a read-only snapshot of one alarm in the collection.
type Entry struct {
	alarm.Alarm

	// Firing is true while a fire round-trip for this alarm is in progress.
	Firing bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithInterval sets the tick period used by Run.
func WithInterval(interval time.Duration) Option {
	return func(s *Scheduler) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithClock replaces the wall-clock source used by Run and for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMatchMode selects the due-detection rule.
func WithMatchMode(mode alarm.MatchMode) Option {
	return func(s *Scheduler) {
		s.mode = mode
	}
}

// WithChannel replaces the notification channel, e.g. to configure response timeouts.
func WithChannel(channel *notify.Channel) Option {
	return func(s *Scheduler) {
		if channel != nil {
			s.channel = channel
		}
	}
}

// Scheduler owns the alarm collection and fires due alarms on every tick.
type Scheduler struct {
	// mu serializes structural changes of alarms against tick evaluation.
	mu sync.RWMutex
	// alarms is the collection in insertion order.
	alarms []*alarm.Alarm
	// firing holds IDs with a round-trip in progress.
	firing map[alarm.ID]struct{}

	// ticking is set while a tick is in flight.
	ticking atomic.Bool
	// inflight tracks tick goroutines started by Run.
	inflight sync.WaitGroup

	// channel delivers fire events to the subscribed consumer.
	channel *notify.Channel
	// now is the wall-clock source.
	now func() time.Time
	// interval is the tick period.
	interval time.Duration
	// mode selects the due-detection rule.
	mode alarm.MatchMode
}

// New creates an empty scheduler.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		firing:   make(map[alarm.ID]struct{}),
		channel:  notify.NewChannel(),
		now:      time.Now,
		interval: DefaultInterval,
		mode:     alarm.MatchExact,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Subscribe registers the consumer of fire events, replacing any previous one.
func (s *Scheduler) Subscribe(consumer notify.Consumer) func() {
	return s.channel.Subscribe(consumer)
}

// Interval returns the tick period.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Now returns the current time of the scheduler's clock.
func (s *Scheduler) Now() time.Time {
	return s.now()
}

// Add validates the input, stores a new alarm and returns its ID.
// On failure the collection is unchanged.
func (s *Scheduler) Add(ctx context.Context, hour, minute int, days []int) (alarm.ID, error) {
	a, err := alarm.New(hour, minute, days, s.now())
	if err != nil {
		return alarm.ID{}, fmt.Errorf("add alarm: %w", err)
	}

	s.mu.Lock()
	s.alarms = append(s.alarms, a)
	s.mu.Unlock()

	logger.InfoKV(ctx, "Alarm added", "alarm_id", a.ID, "time", a.Trigger.String(), "days", a.Days.String())

	return a.ID, nil
}

// Remove deletes the alarm with the given ID, keeping the order of the rest.
func (s *Scheduler) Remove(ctx context.Context, id alarm.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("remove alarm %s: %w", id, alarm.ErrNotFound)
	}

	s.alarms = slices.Delete(s.alarms, idx, idx+1)

	logger.InfoKV(ctx, "Alarm deleted", "alarm_id", id)

	return nil
}

// List returns a snapshot of all alarms in insertion order.
func (s *Scheduler) List(_ context.Context) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]Entry, 0, len(s.alarms))
	for _, a := range s.alarms {
		entries = append(entries, s.entry(a))
	}

	return entries
}

// Get returns a snapshot of one alarm.
func (s *Scheduler) Get(_ context.Context, id alarm.ID) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return Entry{}, fmt.Errorf("get alarm %s: %w", id, alarm.ErrNotFound)
	}

	return s.entry(s.alarms[idx]), nil
}

// Snooze defers the identified alarm by the snooze offset.
func (s *Scheduler) Snooze(ctx context.Context, id alarm.ID) (alarm.Alarm, error) {
	return s.respond(ctx, id, alarm.ResponseSnooze)
}

// Stop disables the identified alarm and clears its snooze count.
func (s *Scheduler) Stop(ctx context.Context, id alarm.ID) (alarm.Alarm, error) {
	return s.respond(ctx, id, alarm.ResponseStop)
}

// Tick fires every alarm that is due at now and returns how many fired.
// It returns 0 without evaluating anything when another tick is in flight.
// The collection lock is released while consumers are being waited on.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) int {
	if !s.ticking.CompareAndSwap(false, true) {
		logger.WarnKV(ctx, "Previous tick still in flight, skipping", "now", now.Format(time.DateTime))

		return 0
	}
	defer s.ticking.Store(false)

	due := s.collectDue(now)

	for _, a := range due {
		s.fire(ctx, a)
	}

	return len(due)
}

// Run drives Tick on a fixed interval until ctx is canceled.
// Each tick runs in its own goroutine so an overrunning tick causes the next to be skipped.
func (s *Scheduler) Run(ctx context.Context) error {
	ctx = logger.WithName(ctx, "scheduler")

	logger.InfoKV(ctx, "Scheduler started", "interval", s.interval.String(), "match_mode", string(s.mode))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.inflight.Wait()
			logger.Info(ctx, "Scheduler stopped")

			return nil
		case <-ticker.C:
			now := s.now()

			s.inflight.Go(func() {
				if fired := s.Tick(ctx, now); fired > 0 {
					logger.DebugKV(ctx, "Tick finished", "fired", fired)
				}
			})
		}
	}
}

// collectDue marks due alarms as firing and returns their snapshots.
func (s *Scheduler) collectDue(now time.Time) []alarm.Alarm {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []alarm.Alarm

	for _, a := range s.alarms {
		if _, busy := s.firing[a.ID]; busy {
			continue
		}

		// A minute fires at most once, even with sub-minute tick intervals.
		if !a.LastFiredAt.IsZero() && a.LastFiredAt.Truncate(time.Minute).Equal(now.Truncate(time.Minute)) {
			continue
		}

		if !s.mode.Due(a, now) {
			continue
		}

		a.LastFiredAt = now
		s.firing[a.ID] = struct{}{}

		due = append(due, a.Clone())
	}

	return due
}

// fire runs one notification round-trip and clears the firing mark.
func (s *Scheduler) fire(ctx context.Context, a alarm.Alarm) {
	ctx = logger.WithKV(ctx, "alarm_id", a.ID)

	logger.InfoKV(ctx, "Alarm fired", "time", a.Trigger.String(), "days", a.Days.String())

	outcome := s.channel.Deliver(ctx, a, func(r alarm.Response) (alarm.Alarm, error) {
		return s.respond(ctx, a.ID, r)
	})

	s.mu.Lock()
	delete(s.firing, a.ID)
	s.mu.Unlock()

	if outcome.Err != nil {
		logger.WarnKV(ctx, "Alarm round-trip failed", "response", outcome.Response.String(), "error", outcome.Err)

		return
	}

	logger.InfoKV(ctx, "Alarm answered",
		"response", outcome.Response.String(),
		"timed_out", outcome.TimedOut,
		"time", outcome.Alarm.Trigger.String(),
		"snooze_count", outcome.Alarm.SnoozeCount,
		"enabled", outcome.Alarm.Enabled,
	)
}

// respond applies a response to the identified alarm under the lock.
func (s *Scheduler) respond(ctx context.Context, id alarm.ID, r alarm.Response) (alarm.Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return alarm.Alarm{}, fmt.Errorf("%s alarm %s: %w", r, id, alarm.ErrNotFound)
	}

	a := s.alarms[idx]
	if err := a.Respond(r); err != nil {
		return a.Clone(), fmt.Errorf("%s alarm %s: %w", r, id, err)
	}

	logger.DebugKV(ctx, "Alarm transition applied", "response", r.String(), "time", a.Trigger.String())

	return a.Clone(), nil
}

func (s *Scheduler) indexOf(id alarm.ID) int {
	return slices.IndexFunc(s.alarms, func(a *alarm.Alarm) bool {
		return a.ID == id
	})
}

func (s *Scheduler) entry(a *alarm.Alarm) Entry {
	_, firing := s.firing[a.ID]

	return Entry{
		Alarm:  a.Clone(),
		Firing: firing,
	}
}
