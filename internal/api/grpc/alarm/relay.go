package alarm

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/notify"
	pb "github.com/oshokin/alarm-clock/internal/pb/v1"
)

// watcherBuffer is how many events a slow watcher may lag behind before events are dropped for it.
const watcherBuffer = 16

var (
	// ErrUnknownFire is returned when answering a fire that is not pending.
	ErrUnknownFire = errors.New("fire is not pending")
	// ErrAlreadyAnswered is returned when a second watcher answers the same fire.
	ErrAlreadyAnswered = errors.New("fire already answered")
)

// pendingFire is one round-trip waiting for a remote answer.
type pendingFire struct {
	// event is the fire event broadcast to watchers.
	event *pb.FireEvent
	// answer receives the first remote response.
	answer chan domain.Response
	// result receives the outcome once the scheduler resolved the fire.
	result chan *pb.FireEvent
	// answered is set by the first Answer call.
	answered bool
}

// Relay is the scheduler's consumer in alarm-server: it broadcasts fires to
// every WatchFires stream and returns the first RespondFire answer.
type Relay struct {
	// mu protects every field below.
	mu sync.Mutex
	// watchers holds the event queues of connected streams.
	watchers map[uint64]chan *pb.FireEvent
	// nextWatcher is the key of the next watcher.
	nextWatcher uint64
	// pending maps fire IDs to unresolved round-trips.
	pending map[string]*pendingFire
	// byAlarm maps alarm IDs to their pending fire ID.
	byAlarm map[domain.ID]string

	// done is closed by Close to end every Watch call.
	done chan struct{}
	// closeOnce guards done.
	closeOnce sync.Once
}

// NewRelay creates a relay with no watchers.
func NewRelay() *Relay {
	return &Relay{
		watchers: make(map[uint64]chan *pb.FireEvent),
		pending:  make(map[string]*pendingFire),
		byAlarm:  make(map[domain.ID]string),
		done:     make(chan struct{}),
	}
}

// Close ends every Watch call so a graceful server stop does not wait on open streams.
func (r *Relay) Close() {
	r.closeOnce.Do(func() {
		close(r.done)
	})
}

// Fire publishes a and blocks until a watcher answers or ctx is done.
func (r *Relay) Fire(ctx context.Context, a domain.Alarm) (domain.Response, error) {
	p := &pendingFire{
		event: &pb.FireEvent{
			Type:    pb.EventFire,
			FireID:  uuid.NewString(),
			Alarm:   toProtoAlarm(a, true),
			FiredAt: a.LastFiredAt,
		},
		answer: make(chan domain.Response, 1),
		result: make(chan *pb.FireEvent, 1),
	}

	r.mu.Lock()
	r.pending[p.event.FireID] = p
	r.byAlarm[a.ID] = p.event.FireID
	r.broadcast(ctx, p.event)
	watchers := len(r.watchers)
	r.mu.Unlock()

	logger.InfoKV(ctx, "Fire published", "fire_id", p.event.FireID, "watchers", watchers)

	select {
	case response := <-p.answer:
		return response, nil
	case <-ctx.Done():
		return domain.ResponseUnknown, ctx.Err()
	}
}

// Resolved drops the pending fire and tells the answering call and every watcher how it ended.
func (r *Relay) Resolved(ctx context.Context, outcome notify.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fireID, ok := r.byAlarm[outcome.Alarm.ID]
	if !ok {
		return
	}

	p := r.pending[fireID]
	delete(r.byAlarm, outcome.Alarm.ID)
	delete(r.pending, fireID)

	event := &pb.FireEvent{
		Type:     pb.EventResolved,
		FireID:   fireID,
		Alarm:    toProtoAlarm(outcome.Alarm, false),
		FiredAt:  p.event.FiredAt,
		TimedOut: outcome.TimedOut,
	}

	if outcome.Response != domain.ResponseUnknown {
		event.Response = outcome.Response.String()
	}

	if outcome.Err != nil {
		event.Error = outcome.Err.Error()
	}

	p.result <- event

	r.broadcast(ctx, event)
}

// Answer delivers response for the pending fire and waits until the scheduler applied it.
func (r *Relay) Answer(ctx context.Context, fireID string, response domain.Response) (*pb.FireEvent, error) {
	r.mu.Lock()

	p, ok := r.pending[fireID]

	switch {
	case !ok:
		r.mu.Unlock()

		return nil, ErrUnknownFire
	case p.answered:
		r.mu.Unlock()

		return nil, ErrAlreadyAnswered
	}

	p.answered = true
	p.answer <- response
	r.mu.Unlock()

	select {
	case event := <-p.result:
		return event, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Watch streams events to send until ctx is done, the relay is closed or send fails.
// Fires still waiting for an answer are sent first.
func (r *Relay) Watch(ctx context.Context, send func(*pb.FireEvent) error) error {
	events := make(chan *pb.FireEvent, watcherBuffer)

	r.mu.Lock()
	id := r.nextWatcher
	r.nextWatcher++
	r.watchers[id] = events

	backlog := make([]*pb.FireEvent, 0, len(r.pending))
	for _, p := range r.pending {
		if !p.answered {
			backlog = append(backlog, p.event)
		}
	}
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.watchers, id)
		r.mu.Unlock()
	}()

	for _, event := range backlog {
		if err := send(event); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-r.done:
			return nil
		case event := <-events:
			if err := send(event); err != nil {
				return err
			}
		}
	}
}

// broadcast queues event on every watcher. Callers hold mu.
func (r *Relay) broadcast(ctx context.Context, event *pb.FireEvent) {
	for id, events := range r.watchers {
		select {
		case events <- event:
		default:
			logger.WarnKV(ctx, "Watcher is lagging, event dropped", "watcher", id, "fire_id", event.FireID)
		}
	}
}
