package integration

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oshokin/alarm-clock/internal/config"
	pb "github.com/oshokin/alarm-clock/internal/pb/v1"
	"github.com/oshokin/alarm-clock/internal/service/common"
	"github.com/oshokin/alarm-clock/internal/service/server"
)

// everyDay lists all weekday indices.
var everyDay = []int{0, 1, 2, 3, 4, 5, 6}

// startServer runs alarm-server on a free loopback port with a fast catch-up scheduler.
// It returns the address and a stop function that waits for a clean shutdown.
func startServer(t *testing.T) (string, func()) {
	t.Helper()

	// Reserve a free port for the test server.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	_ = l.Close()

	cfgPath := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, config.Save(cfgPath, &config.Config{
		ServerAddress: addr,
		Timeout:       3 * time.Second,
		TickInterval:  50 * time.Millisecond,
		MatchMode:     "catch_up",
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- server.Run(ctx, &server.Options{ConfigPath: cfgPath, ListenAddress: addr})
	}()

	return addr, func() {
		cancel()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("server did not stop")
		}
	}
}

func dial(t *testing.T, addr, actor string) *common.Client {
	t.Helper()

	c, err := common.Dial(context.Background(), addr,
		common.WithCallTimeout(3*time.Second),
		common.WithActor(actor),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = c.Close()
	})

	// Wait until the server accepts calls.
	require.Eventually(t, func() bool {
		_, err := c.ListAlarms(context.Background())

		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	return c
}

// TestGRPC_ManageAlarms adds, lists, snoozes, stops and removes alarms over the wire.
func TestGRPC_ManageAlarms(t *testing.T) {
	t.Parallel()

	addr, stop := startServer(t)
	defer stop()

	c := dial(t, addr, "alice@laptop")
	ctx := context.Background()

	_, err := c.AddAlarm(ctx, "24:00", []int{1})
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = c.AddAlarm(ctx, "07:00", []int{1, 1})
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	added, err := c.AddAlarm(ctx, "23:58", []int{1, 2})
	require.NoError(t, err)
	require.True(t, added.Enabled)

	snoozed, err := c.SnoozeAlarm(ctx, added.ID)
	require.NoError(t, err)
	require.Equal(t, "00:03", snoozed.Time)
	require.Equal(t, 1, snoozed.SnoozeCount)

	stopped, err := c.StopAlarm(ctx, added.ID)
	require.NoError(t, err)
	require.False(t, stopped.Enabled)
	require.Equal(t, 0, stopped.SnoozeCount)

	alarms, err := c.ListAlarms(ctx)
	require.NoError(t, err)
	require.Len(t, alarms, 1)
	require.Equal(t, added.ID, alarms[0].ID)

	require.NoError(t, c.RemoveAlarm(ctx, added.ID))
	require.Equal(t, codes.NotFound, status.Code(c.RemoveAlarm(ctx, added.ID)))

	alarms, err = c.ListAlarms(ctx)
	require.NoError(t, err)
	require.Empty(t, alarms)
}

// TestGRPC_FireRoundTrip fires an alarm to two watchers; the first answer wins
// and both see how the fire was resolved.
func TestGRPC_FireRoundTrip(t *testing.T) {
	t.Parallel()

	addr, stop := startServer(t)
	defer stop()

	first := dial(t, addr, "alice@laptop")
	second := dial(t, addr, "bob@desktop")

	streamCtx, stopStreams := context.WithCancel(context.Background())
	defer stopStreams()

	firstStream, err := first.WatchFires(streamCtx)
	require.NoError(t, err)

	secondStream, err := second.WatchFires(streamCtx)
	require.NoError(t, err)

	ctx := context.Background()

	added, err := first.AddAlarm(ctx, time.Now().Format("15:04"), everyDay)
	require.NoError(t, err)

	// Unanswered fires are replayed to late watchers, so both streams see it.
	fired, err := firstStream.Recv()
	require.NoError(t, err)
	require.Equal(t, pb.EventFire, fired.Type)
	require.Equal(t, added.ID, fired.Alarm.ID)
	require.True(t, fired.Alarm.Firing)

	seen, err := secondStream.Recv()
	require.NoError(t, err)
	require.Equal(t, fired.FireID, seen.FireID)

	resolved, err := first.RespondFire(ctx, fired.FireID, "snooze")
	require.NoError(t, err)
	require.Equal(t, pb.EventResolved, resolved.Type)
	require.Equal(t, "snooze", resolved.Response)
	require.Equal(t, 1, resolved.Alarm.SnoozeCount)
	require.Empty(t, resolved.Error)

	_, err = second.RespondFire(ctx, fired.FireID, "stop")
	require.Contains(t, []codes.Code{codes.NotFound, codes.FailedPrecondition}, status.Code(err))

	broadcast, err := secondStream.Recv()
	require.NoError(t, err)
	require.Equal(t, pb.EventResolved, broadcast.Type)
	require.Equal(t, fired.FireID, broadcast.FireID)
	require.Equal(t, "snooze", broadcast.Response)

	alarms, err := second.ListAlarms(ctx)
	require.NoError(t, err)
	require.Len(t, alarms, 1)
	require.Equal(t, 1, alarms[0].SnoozeCount)
	require.False(t, alarms[0].Firing)
	require.False(t, alarms[0].LastFiredAt.IsZero())
}
