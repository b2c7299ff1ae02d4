package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	pb "github.com/oshokin/alarm-clock/internal/pb/v1"
	"github.com/oshokin/alarm-clock/internal/service/common"
)

// Options configures how alarm-ctl reaches the server.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ServerAddress overrides server address from config when specified.
	ServerAddress string
	// In is read by watch for answers.
	In io.Reader
	// Out receives human-readable output.
	Out io.Writer
}

// fireStream yields fire events.
type fireStream interface {
	Recv() (*pb.FireEvent, error)
}

// alarmAPI is the part of the gRPC client the commands use.
type alarmAPI interface {
	AddAlarm(ctx context.Context, at string, days []int) (*pb.Alarm, error)
	RemoveAlarm(ctx context.Context, id string) error
	ListAlarms(ctx context.Context) ([]*pb.Alarm, error)
	SnoozeAlarm(ctx context.Context, id string) (*pb.Alarm, error)
	StopAlarm(ctx context.Context, id string) (*pb.Alarm, error)
	WatchFires(ctx context.Context) (fireStream, error)
	RespondFire(ctx context.Context, fireID, response string) (*pb.FireEvent, error)
}

// remote adapts common.Client to alarmAPI.
type remote struct {
	*common.Client
}

// WatchFires opens the event stream.
func (r remote) WatchFires(ctx context.Context) (fireStream, error) {
	stream, err := r.Client.WatchFires(ctx)
	if err != nil {
		return nil, err
	}

	return stream, nil
}

// Commander runs alarm-ctl commands against the alarm server.
type Commander struct {
	// api is the server connection.
	api alarmAPI
	// in is read by Watch.
	in *bufio.Reader
	// out receives human-readable output.
	out io.Writer
	// closeFn releases the connection.
	closeFn func() error
}

// Connect loads settings, detects the caller and dials the server.
func Connect(ctx context.Context, opts *Options) (*Commander, error) {
	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	// Identify current user and hostname for the server's audit log.
	actor, err := common.DetectActor()
	if err != nil {
		return nil, err
	}

	client, err := common.Dial(ctx, serverAddress,
		common.WithCallTimeout(cfg.Timeout),
		common.WithActor(actor.String()),
	)
	if err != nil {
		return nil, err
	}

	logger.DebugKV(ctx, "Connected to alarm server", "server_address", serverAddress, "actor", actor.String())

	c := newCommander(remote{Client: client}, opts.In, opts.Out)
	c.closeFn = client.Close

	return c, nil
}

func newCommander(api alarmAPI, in io.Reader, out io.Writer) *Commander {
	if in == nil {
		in = strings.NewReader("")
	}

	if out == nil {
		out = io.Discard
	}

	return &Commander{
		api:     api,
		in:      bufio.NewReader(in),
		out:     out,
		closeFn: func() error { return nil },
	}
}

// Close releases the server connection.
func (c *Commander) Close() error {
	return c.closeFn()
}

// Add creates an alarm at "HH:MM" on a comma-separated list of weekdays (0 is Sunday).
func (c *Commander) Add(ctx context.Context, at, daySpec string) error {
	days, err := alarm.ParseWeekdays(daySpec)
	if err != nil {
		return err
	}

	if _, err := alarm.ParseTimeOfDay(at); err != nil {
		return err
	}

	added, err := c.api.AddAlarm(ctx, at, days.Days())
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Alarm added: %s on days %s (%s)\n", added.Time, formatDays(added.Days), added.ID)

	return nil
}

// List prints every alarm as a table.
func (c *Commander) List(ctx context.Context) error {
	alarms, err := c.api.ListAlarms(ctx)
	if err != nil {
		return err
	}

	if len(alarms) == 0 {
		fmt.Fprintln(c.out, "No alarms set.")

		return nil
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0) //nolint:mnd // Column padding.
	fmt.Fprintln(w, "ID\tTIME\tDAYS\tENABLED\tSNOOZES\tSTATUS")

	for _, a := range alarms {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%d\t%s\n",
			a.ID, a.Time, formatDays(a.Days), a.Enabled, a.SnoozeCount, formatStatus(a))
	}

	return w.Flush()
}

// Remove deletes an alarm by ID.
func (c *Commander) Remove(ctx context.Context, id string) error {
	if err := c.api.RemoveAlarm(ctx, id); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Alarm %s deleted.\n", id)

	return nil
}

// Snooze defers an alarm by ID.
func (c *Commander) Snooze(ctx context.Context, id string) error {
	snoozed, err := c.api.SnoozeAlarm(ctx, id)
	if status.Code(err) == codes.FailedPrecondition {
		fmt.Fprintln(c.out, "Maximum snooze limit reached.")

		return nil
	}

	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Alarm snoozed until %s (%d/%d).\n", snoozed.Time, snoozed.SnoozeCount, alarm.MaxSnoozeCount)

	return nil
}

// Stop disables an alarm by ID.
func (c *Commander) Stop(ctx context.Context, id string) error {
	if _, err := c.api.StopAlarm(ctx, id); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Alarm %s stopped.\n", id)

	return nil
}

// Watch prints fired alarms and asks how to answer each one until ctx is
// canceled, the input ends or the server closes the stream.
func (c *Commander) Watch(ctx context.Context) error {
	stream, err := c.api.WatchFires(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.out, "Waiting for alarms. Press Ctrl+C to quit.")

	// answered holds fires this watcher answered, so their echo is not printed twice.
	answered := make(map[string]struct{})

	for {
		event, err := stream.Recv()

		switch {
		case ctx.Err() != nil:
			return nil
		case errors.Is(err, io.EOF):
			fmt.Fprintln(c.out, "Server closed the stream.")

			return nil
		case err != nil:
			return fmt.Errorf("receive fire: %w", err)
		}

		if event.Type == pb.EventResolved {
			if _, ok := answered[event.FireID]; ok {
				delete(answered, event.FireID)

				continue
			}

			fmt.Fprintf(c.out, "Alarm %s was answered elsewhere: %s\n", formatAlarm(event.Alarm), formatResult(event))

			continue
		}

		done, err := c.answer(ctx, event)
		if err != nil || done {
			return err
		}

		answered[event.FireID] = struct{}{}
	}
}

// answer prompts for one fire and sends the response. done is true when input ended.
func (c *Commander) answer(ctx context.Context, event *pb.FireEvent) (bool, error) {
	fmt.Fprintf(c.out, "\nALARM! %s\n", formatAlarm(event.Alarm))
	fmt.Fprint(c.out, "Press 's' to snooze or any other key to stop: ")

	line, err := c.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return false, fmt.Errorf("read answer: %w", err)
		}

		// Input ended without an answer.
		if line == "" {
			fmt.Fprintln(c.out)

			return true, nil
		}
	}

	response := alarm.ResponseStop
	if strings.TrimSpace(line) == "s" {
		response = alarm.ResponseSnooze
	}

	result, err := c.api.RespondFire(ctx, event.FireID, response.String())

	switch status.Code(err) {
	case codes.OK:
	case codes.NotFound, codes.FailedPrecondition:
		fmt.Fprintln(c.out, "This alarm was already handled.")

		return false, nil
	default:
		return false, err
	}

	fmt.Fprintln(c.out, formatResult(result))

	return false, nil
}

func formatAlarm(a *pb.Alarm) string {
	if a == nil {
		return "<unknown alarm>"
	}

	return fmt.Sprintf("%s on days %s", a.Time, formatDays(a.Days))
}

// formatDays renders day indices with their names, e.g. "1, 2 (Mon, Tue)".
func formatDays(days []int) string {
	set, err := alarm.NewWeekdays(days...)
	if err != nil {
		return fmt.Sprint(days)
	}

	return fmt.Sprintf("%s (%s)", set, set.Names())
}

func formatStatus(a *pb.Alarm) string {
	switch {
	case a.Firing:
		return "firing"
	case !a.Enabled:
		return "stopped"
	case a.SnoozeCount > 0:
		return "snoozed"
	default:
		return "armed"
	}
}

// formatResult describes how a fire was resolved.
func formatResult(event *pb.FireEvent) string {
	switch {
	case strings.Contains(event.Error, alarm.ErrSnoozeLimitExceeded.Error()):
		return "Maximum snooze limit reached."
	case event.Error != "":
		return "Alarm not updated: " + event.Error
	case event.Response == alarm.ResponseSnooze.String() && event.Alarm != nil:
		return fmt.Sprintf("Alarm snoozed until %s.", event.Alarm.Time)
	case event.Response == alarm.ResponseStop.String():
		return "Alarm stopped."
	default:
		return "Alarm left unchanged."
	}
}
