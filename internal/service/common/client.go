//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/oshokin/alarm-clock/internal/config"
	pb "github.com/oshokin/alarm-clock/internal/pb/v1"
)

// Client wraps the gRPC AlarmClock client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the alarm server.
	conn *grpc.ClientConn
	// api is the AlarmClock client interface.
	api pb.AlarmClockClient

	// callTimeout is the default timeout for individual unary calls.
	callTimeout time.Duration
	// actor is sent as request metadata, e.g. "user@host".
	actor string
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for unary calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithActor sets the caller identity attached to every request.
func WithActor(actor string) Option {
	return func(c *Client) {
		c.actor = actor
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errIDRequired is returned when an alarm or fire ID is empty.
	errIDRequired = errors.New("id must be provided")
)

// FireStream receives events from WatchFires.
type FireStream struct {
	// stream is the server-streaming call.
	stream grpc.ServerStreamingClient[structpb.Struct]
}

// Recv blocks until the next event arrives. It returns io.EOF when the server closed the stream.
func (s *FireStream) Recv() (*pb.FireEvent, error) {
	message, err := s.stream.Recv()
	if err != nil {
		return nil, err
	}

	return pb.DecodeFireEvent(message)
}

// Dial establishes a gRPC connection to the alarm server.
// Note: this uses insecure transport credentials; deploy on a trusted network
// or terminate TLS in a proxy until native TLS is added.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial alarm server: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         pb.NewAlarmClockClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// AddAlarm creates an alarm at "HH:MM" on the given weekdays.
func (c *Client) AddAlarm(ctx context.Context, at string, days []int) (*pb.Alarm, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	request := &pb.AddAlarmRequest{
		Time: at,
		Days: days,
	}

	response, err := c.api.AddAlarm(callCtx, request.Struct())
	if err != nil {
		return nil, fmt.Errorf("add alarm: %w", err)
	}

	return pb.DecodeAlarm(response)
}

// RemoveAlarm deletes the alarm with the given ID.
func (c *Client) RemoveAlarm(ctx context.Context, id string) error {
	if id == "" {
		return errIDRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	if _, err := c.api.RemoveAlarm(callCtx, wrapperspb.String(id)); err != nil {
		return fmt.Errorf("remove alarm: %w", err)
	}

	return nil
}

// ListAlarms returns every alarm in insertion order.
func (c *Client) ListAlarms(ctx context.Context) ([]*pb.Alarm, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.api.ListAlarms(callCtx, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("list alarms: %w", err)
	}

	return pb.DecodeAlarms(response)
}

// SnoozeAlarm defers the alarm with the given ID.
func (c *Client) SnoozeAlarm(ctx context.Context, id string) (*pb.Alarm, error) {
	if id == "" {
		return nil, errIDRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.api.SnoozeAlarm(callCtx, wrapperspb.String(id))
	if err != nil {
		return nil, fmt.Errorf("snooze alarm: %w", err)
	}

	return pb.DecodeAlarm(response)
}

// StopAlarm disables the alarm with the given ID.
func (c *Client) StopAlarm(ctx context.Context, id string) (*pb.Alarm, error) {
	if id == "" {
		return nil, errIDRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.api.StopAlarm(callCtx, wrapperspb.String(id))
	if err != nil {
		return nil, fmt.Errorf("stop alarm: %w", err)
	}

	return pb.DecodeAlarm(response)
}

// WatchFires opens the fire event stream. It lives until ctx is canceled.
func (c *Client) WatchFires(ctx context.Context) (*FireStream, error) {
	stream, err := c.api.WatchFires(pb.WithActor(ctx, c.actor), new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("watch fires: %w", err)
	}

	return &FireStream{stream: stream}, nil
}

// RespondFire answers a pending fire with "snooze" or "stop" and returns how it was resolved.
func (c *Client) RespondFire(ctx context.Context, fireID, response string) (*pb.FireEvent, error) {
	if fireID == "" {
		return nil, errIDRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	request := &pb.RespondFireRequest{
		FireID:   fireID,
		Response: response,
	}

	result, err := c.api.RespondFire(callCtx, request.Struct())
	if err != nil {
		return nil, fmt.Errorf("respond fire: %w", err)
	}

	return pb.DecodeFireEvent(result)
}

// callContext returns a context carrying the actor and the client's call
// timeout if configured, otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = pb.WithActor(ctx, c.actor)

	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
