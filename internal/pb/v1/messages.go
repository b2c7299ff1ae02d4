package pb

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
)

// ActorMetadataKey carries the calling user@host on every request.
const ActorMetadataKey = "x-alarm-actor"

// Fire event types.
const (
	// EventFire announces an alarm waiting for an answer.
	EventFire = "fire"
	// EventResolved announces how a fire ended.
	EventResolved = "resolved"
)

// ErrMalformedMessage is returned when a struct does not have the expected shape.
var ErrMalformedMessage = errors.New("malformed message")

// Alarm is the wire view of one alarm.
type Alarm struct {
	// ID is the alarm UUID.
	ID string
	// Time is the trigger time as HH:MM.
	Time string
	// Days holds the active weekdays, 0 is Sunday.
	Days []int
	// Enabled is false once the alarm was stopped.
	Enabled bool
	// SnoozeCount counts consecutive snoozes.
	SnoozeCount int
	// Firing is true while a fire waits for an answer.
	Firing bool
	// CreatedAt is when the alarm was added.
	CreatedAt time.Time
	// LastFiredAt is zero if the alarm never fired.
	LastFiredAt time.Time
}

// AddAlarmRequest is the body of AddAlarm.
type AddAlarmRequest struct {
	// Time is the trigger time as HH:MM.
	Time string
	// Days holds the active weekdays.
	Days []int
}

// RespondFireRequest is the body of RespondFire.
type RespondFireRequest struct {
	// FireID identifies the pending fire.
	FireID string
	// Response is "snooze" or "stop".
	Response string
}

// FireEvent is streamed by WatchFires and returned by RespondFire.
type FireEvent struct {
	// Type is EventFire or EventResolved.
	Type string
	// FireID identifies one round-trip.
	FireID string
	// Alarm is the alarm as fired, or as it ended up once resolved.
	Alarm *Alarm
	// FiredAt is the tick time that fired the alarm.
	FiredAt time.Time
	// Response is the applied response, empty when none was.
	Response string
	// TimedOut is true when Response is the timeout action.
	TimedOut bool
	// Error describes why the round-trip failed, empty on success.
	Error string
}

// WithActor attaches actor to the outgoing request metadata.
func WithActor(ctx context.Context, actor string) context.Context {
	if actor == "" {
		return ctx
	}

	return metadata.AppendToOutgoingContext(ctx, ActorMetadataKey, actor)
}

// ActorFromContext returns the actor sent by the caller, or "<unknown>".
func ActorFromContext(ctx context.Context) string {
	values := metadata.ValueFromIncomingContext(ctx, ActorMetadataKey)
	if len(values) == 0 || values[0] == "" {
		return "<unknown>"
	}

	return values[0]
}

// Struct encodes the alarm.
func (a *Alarm) Struct() *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			"id":            structpb.NewStringValue(a.ID),
			"time":          structpb.NewStringValue(a.Time),
			"days":          intsValue(a.Days),
			"enabled":       structpb.NewBoolValue(a.Enabled),
			"snooze_count":  structpb.NewNumberValue(float64(a.SnoozeCount)),
			"firing":        structpb.NewBoolValue(a.Firing),
			"created_at":    timeValue(a.CreatedAt),
			"last_fired_at": timeValue(a.LastFiredAt),
		},
	}
}

// DecodeAlarm decodes an alarm struct.
func DecodeAlarm(s *structpb.Struct) (*Alarm, error) {
	f := fields(s.GetFields())

	days, err := f.integers("days")
	if err != nil {
		return nil, err
	}

	snoozeCount, err := f.integer("snooze_count")
	if err != nil {
		return nil, err
	}

	createdAt, err := f.timestamp("created_at")
	if err != nil {
		return nil, err
	}

	lastFiredAt, err := f.timestamp("last_fired_at")
	if err != nil {
		return nil, err
	}

	return &Alarm{
		ID:          f.str("id"),
		Time:        f.str("time"),
		Days:        days,
		Enabled:     f.flag("enabled"),
		SnoozeCount: snoozeCount,
		Firing:      f.flag("firing"),
		CreatedAt:   createdAt,
		LastFiredAt: lastFiredAt,
	}, nil
}

// EncodeAlarms wraps a list of alarms as the ListAlarms response.
func EncodeAlarms(alarms []*Alarm) *structpb.Struct {
	values := make([]*structpb.Value, 0, len(alarms))
	for _, a := range alarms {
		values = append(values, structpb.NewStructValue(a.Struct()))
	}

	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			"alarms": structpb.NewListValue(&structpb.ListValue{Values: values}),
		},
	}
}

// DecodeAlarms decodes the ListAlarms response.
func DecodeAlarms(s *structpb.Struct) ([]*Alarm, error) {
	values := s.GetFields()["alarms"].GetListValue().GetValues()
	alarms := make([]*Alarm, 0, len(values))

	for i, v := range values {
		a, err := DecodeAlarm(v.GetStructValue())
		if err != nil {
			return nil, fmt.Errorf("alarm %d: %w", i, err)
		}

		alarms = append(alarms, a)
	}

	return alarms, nil
}

// Struct encodes the request.
func (r *AddAlarmRequest) Struct() *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			"time": structpb.NewStringValue(r.Time),
			"days": intsValue(r.Days),
		},
	}
}

// DecodeAddAlarmRequest decodes the AddAlarm request.
func DecodeAddAlarmRequest(s *structpb.Struct) (*AddAlarmRequest, error) {
	f := fields(s.GetFields())

	days, err := f.integers("days")
	if err != nil {
		return nil, err
	}

	return &AddAlarmRequest{
		Time: f.str("time"),
		Days: days,
	}, nil
}

// Struct encodes the request.
func (r *RespondFireRequest) Struct() *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			"fire_id":  structpb.NewStringValue(r.FireID),
			"response": structpb.NewStringValue(r.Response),
		},
	}
}

// DecodeRespondFireRequest decodes the RespondFire request.
func DecodeRespondFireRequest(s *structpb.Struct) *RespondFireRequest {
	f := fields(s.GetFields())

	return &RespondFireRequest{
		FireID:   f.str("fire_id"),
		Response: f.str("response"),
	}
}

// Struct encodes the event.
func (e *FireEvent) Struct() *structpb.Struct {
	out := &structpb.Struct{
		Fields: map[string]*structpb.Value{
			"type":      structpb.NewStringValue(e.Type),
			"fire_id":   structpb.NewStringValue(e.FireID),
			"fired_at":  timeValue(e.FiredAt),
			"response":  structpb.NewStringValue(e.Response),
			"timed_out": structpb.NewBoolValue(e.TimedOut),
			"error":     structpb.NewStringValue(e.Error),
		},
	}

	if e.Alarm != nil {
		out.Fields["alarm"] = structpb.NewStructValue(e.Alarm.Struct())
	}

	return out
}

// DecodeFireEvent decodes a WatchFires or RespondFire message.
func DecodeFireEvent(s *structpb.Struct) (*FireEvent, error) {
	f := fields(s.GetFields())

	firedAt, err := f.timestamp("fired_at")
	if err != nil {
		return nil, err
	}

	event := &FireEvent{
		Type:     f.str("type"),
		FireID:   f.str("fire_id"),
		FiredAt:  firedAt,
		Response: f.str("response"),
		TimedOut: f.flag("timed_out"),
		Error:    f.str("error"),
	}

	if nested := f["alarm"].GetStructValue(); nested != nil {
		event.Alarm, err = DecodeAlarm(nested)
		if err != nil {
			return nil, fmt.Errorf("alarm: %w", err)
		}
	}

	return event, nil
}

func intsValue(ints []int) *structpb.Value {
	values := make([]*structpb.Value, 0, len(ints))
	for _, n := range ints {
		values = append(values, structpb.NewNumberValue(float64(n)))
	}

	return structpb.NewListValue(&structpb.ListValue{Values: values})
}

// timeValue encodes t as RFC 3339, or an empty string for the zero time.
func timeValue(t time.Time) *structpb.Value {
	if t.IsZero() {
		return structpb.NewStringValue("")
	}

	return structpb.NewStringValue(t.Format(time.RFC3339Nano))
}

// fields reads typed values out of a struct; missing keys read as zero values.
type fields map[string]*structpb.Value

func (f fields) str(key string) string {
	return f[key].GetStringValue()
}

func (f fields) flag(key string) bool {
	return f[key].GetBoolValue()
}

// integer reads a number; a missing key reads as 0.
func (f fields) integer(key string) (int, error) {
	v, ok := f[key]
	if !ok {
		return 0, nil
	}

	return numberToInt(key, v)
}

// integers reads a list of numbers; a missing key reads as nil.
func (f fields) integers(key string) ([]int, error) {
	v, ok := f[key]
	if !ok {
		return nil, nil
	}

	list, ok := v.GetKind().(*structpb.Value_ListValue)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a list", ErrMalformedMessage, key)
	}

	values := list.ListValue.GetValues()
	ints := make([]int, 0, len(values))

	for _, item := range values {
		n, err := numberToInt(key, item)
		if err != nil {
			return nil, err
		}

		ints = append(ints, n)
	}

	return ints, nil
}

// numberToInt rejects values that are not numbers instead of reading them as 0.
func numberToInt(key string, v *structpb.Value) (int, error) {
	number, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%w: %s must be a number", ErrMalformedMessage, key)
	}

	return toInt(key, number.NumberValue)
}

func (f fields) timestamp(key string) (time.Time, error) {
	raw := f.str(key)
	if raw == "" {
		return time.Time{}, nil
	}

	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %w", ErrMalformedMessage, key, err)
	}

	return t, nil
}

func toInt(key string, n float64) (int, error) {
	if n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %s: %v is not an integer", ErrMalformedMessage, key, n)
	}

	return int(n), nil
}
