package pb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
)

// TestFireEvent_Roundtrip checks that a nested alarm and timestamps survive encoding.
func TestFireEvent_Roundtrip(t *testing.T) {
	t.Parallel()

	firedAt := time.Date(2024, time.January, 1, 7, 0, 0, 0, time.UTC)
	event := &FireEvent{
		Type:   EventFire,
		FireID: "fire-1",
		Alarm: &Alarm{
			ID:          "a1",
			Time:        "07:00",
			Days:        []int{1, 3},
			Enabled:     true,
			SnoozeCount: 2,
			Firing:      true,
			CreatedAt:   firedAt.Add(-time.Hour),
			LastFiredAt: firedAt,
		},
		FiredAt: firedAt,
	}

	got, err := DecodeFireEvent(event.Struct())
	require.NoError(t, err)
	require.Equal(t, event.Type, got.Type)
	require.Equal(t, event.FireID, got.FireID)
	require.True(t, event.FiredAt.Equal(got.FiredAt))
	require.Equal(t, []int{1, 3}, got.Alarm.Days)
	require.Equal(t, 2, got.Alarm.SnoozeCount)
	require.True(t, got.Alarm.Firing)
	require.True(t, got.Alarm.CreatedAt.Equal(event.Alarm.CreatedAt))
}

// TestDecodeAlarm_ZeroTimes ensures empty timestamps decode as the zero time.
func TestDecodeAlarm_ZeroTimes(t *testing.T) {
	t.Parallel()

	got, err := DecodeAlarm((&Alarm{ID: "a1", Time: "23:59", Days: []int{0}}).Struct())
	require.NoError(t, err)
	require.True(t, got.LastFiredAt.IsZero())
	require.True(t, got.CreatedAt.IsZero())

	alarms, err := DecodeAlarms(EncodeAlarms([]*Alarm{got, got}))
	require.NoError(t, err)
	require.Len(t, alarms, 2)
}

// TestDecodeAddAlarmRequest_Malformed rejects days that are not whole numbers and bad timestamps.
func TestDecodeAddAlarmRequest_Malformed(t *testing.T) {
	t.Parallel()

	for _, days := range []any{
		[]any{1.5},
		[]any{"3"},
		[]any{true},
		[]any{nil},
		[]any{"1", "2"},
		"1, 2",
		3.0,
	} {
		request, err := structpb.NewStruct(map[string]any{
			"time": "07:00",
			"days": days,
		})
		require.NoError(t, err)

		_, err = DecodeAddAlarmRequest(request)
		require.ErrorIs(t, err, ErrMalformedMessage, "%v", days)
	}

	withoutDays, err := structpb.NewStruct(map[string]any{"time": "07:00"})
	require.NoError(t, err)

	decoded, err := DecodeAddAlarmRequest(withoutDays)
	require.NoError(t, err)
	require.Empty(t, decoded.Days)

	badCount, err := structpb.NewStruct(map[string]any{"id": "a1", "snooze_count": "2"})
	require.NoError(t, err)

	_, err = DecodeAlarm(badCount)
	require.ErrorIs(t, err, ErrMalformedMessage)

	alarm, err := structpb.NewStruct(map[string]any{
		"id":         "a1",
		"created_at": "yesterday",
	})
	require.NoError(t, err)

	_, err = DecodeAlarm(alarm)
	require.ErrorIs(t, err, ErrMalformedMessage)

	missing := DecodeRespondFireRequest(nil)
	require.Empty(t, missing.FireID)
}

// TestActorMetadata verifies the actor travels through request metadata.
func TestActorMetadata(t *testing.T) {
	t.Parallel()

	require.Equal(t, "<unknown>", ActorFromContext(context.Background()))

	outgoing := WithActor(context.Background(), "alice@desk")

	md, ok := metadata.FromOutgoingContext(outgoing)
	require.True(t, ok)

	incoming := metadata.NewIncomingContext(context.Background(), md)
	require.Equal(t, "alice@desk", ActorFromContext(incoming))
}
