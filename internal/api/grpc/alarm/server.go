package alarm

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	pb "github.com/oshokin/alarm-clock/internal/pb/v1"
	"github.com/oshokin/alarm-clock/internal/scheduler"
)

// Service abstracts the business operations the transport layer depends on.
type Service interface {
	Add(ctx context.Context, hour, minute int, days []int) (domain.ID, error)
	Remove(ctx context.Context, id domain.ID) error
	List(ctx context.Context) []scheduler.Entry
	Get(ctx context.Context, id domain.ID) (scheduler.Entry, error)
	Snooze(ctx context.Context, id domain.ID) (domain.Alarm, error)
	Stop(ctx context.Context, id domain.ID) (domain.Alarm, error)
}

// Server implements the AlarmClock gRPC API.
type Server struct {
	pb.UnimplementedAlarmClockServer

	// service provides the alarm collection.
	service Service
	// relay carries fires to remote watchers and their answers back.
	relay *Relay
}

// NewServer wires the provided service and relay into a gRPC handler.
func NewServer(service Service, relay *Relay) *Server {
	return &Server{
		service: service,
		relay:   relay,
	}
}

// AddAlarm validates the request and stores a new alarm.
func (s *Server) AddAlarm(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	request, err := pb.DecodeAddAlarmRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	trigger, err := domain.ParseTimeOfDay(request.Time)
	if err != nil {
		return nil, toStatus(err)
	}

	id, err := s.service.Add(ctx, trigger.Hour, trigger.Minute, request.Days)
	if err != nil {
		return nil, toStatus(err)
	}

	logger.InfoKV(ctx, "Alarm added remotely", "alarm_id", id, "actor", pb.ActorFromContext(ctx))

	entry, err := s.service.Get(ctx, id)
	if err != nil {
		return nil, toStatus(err)
	}

	return toProtoEntry(entry).Struct(), nil
}

// RemoveAlarm deletes an alarm by ID.
func (s *Server) RemoveAlarm(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	id, err := domain.ParseID(req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}

	if err := s.service.Remove(ctx, id); err != nil {
		return nil, toStatus(err)
	}

	logger.InfoKV(ctx, "Alarm removed remotely", "alarm_id", id, "actor", pb.ActorFromContext(ctx))

	return new(emptypb.Empty), nil
}

// ListAlarms returns every alarm in insertion order.
func (s *Server) ListAlarms(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	entries := s.service.List(ctx)

	alarms := make([]*pb.Alarm, 0, len(entries))
	for _, entry := range entries {
		alarms = append(alarms, toProtoEntry(entry))
	}

	return pb.EncodeAlarms(alarms), nil
}

// SnoozeAlarm defers an alarm by the snooze offset.
func (s *Server) SnoozeAlarm(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	return s.transition(ctx, req, domain.ResponseSnooze)
}

// StopAlarm disables an alarm.
func (s *Server) StopAlarm(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	return s.transition(ctx, req, domain.ResponseStop)
}

// WatchFires streams fire and resolved events to the caller.
func (s *Server) WatchFires(_ *emptypb.Empty, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	ctx := stream.Context()
	actor := pb.ActorFromContext(ctx)

	logger.InfoKV(ctx, "Watcher connected", "actor", actor)
	defer logger.InfoKV(ctx, "Watcher disconnected", "actor", actor)

	return s.relay.Watch(ctx, func(event *pb.FireEvent) error {
		return stream.Send(event.Struct())
	})
}

// RespondFire answers a pending fire.
func (s *Server) RespondFire(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	request := pb.DecodeRespondFireRequest(req)
	if request.FireID == "" {
		return nil, status.Error(codes.InvalidArgument, "fire_id is required")
	}

	response, err := domain.ParseResponse(request.Response)
	if err != nil {
		return nil, toStatus(err)
	}

	logger.InfoKV(ctx, "Fire answered remotely",
		"fire_id", request.FireID,
		"response", response.String(),
		"actor", pb.ActorFromContext(ctx),
	)

	event, err := s.relay.Answer(ctx, request.FireID, response)
	if err != nil {
		return nil, toStatus(err)
	}

	return event.Struct(), nil
}

func (s *Server) transition(
	ctx context.Context,
	req *wrapperspb.StringValue,
	response domain.Response,
) (*structpb.Struct, error) {
	id, err := domain.ParseID(req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}

	apply := s.service.Snooze
	if response == domain.ResponseStop {
		apply = s.service.Stop
	}

	if _, err := apply(ctx, id); err != nil {
		return nil, toStatus(err)
	}

	logger.InfoKV(ctx, "Alarm updated remotely",
		"alarm_id", id,
		"response", response.String(),
		"actor", pb.ActorFromContext(ctx),
	)

	entry, err := s.service.Get(ctx, id)
	if err != nil {
		return nil, toStatus(err)
	}

	return toProtoEntry(entry).Struct(), nil
}

// toStatus maps domain errors to gRPC status codes.
func toStatus(err error) error {
	var code codes.Code

	switch {
	case errors.Is(err, domain.ErrInvalidTime),
		errors.Is(err, domain.ErrInvalidDaySpec),
		errors.Is(err, domain.ErrInvalidResponse):
		code = codes.InvalidArgument
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, ErrUnknownFire):
		code = codes.NotFound
	case errors.Is(err, domain.ErrSnoozeLimitExceeded), errors.Is(err, ErrAlreadyAnswered):
		code = codes.FailedPrecondition
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	default:
		code = codes.Internal
	}

	return status.Error(code, err.Error())
}

// toProtoEntry converts a scheduler entry to its wire view.
func toProtoEntry(entry scheduler.Entry) *pb.Alarm {
	return toProtoAlarm(entry.Alarm, entry.Firing)
}

// toProtoAlarm converts a domain alarm to its wire view.
func toProtoAlarm(a domain.Alarm, firing bool) *pb.Alarm {
	return &pb.Alarm{
		ID:          a.ID.String(),
		Time:        a.Trigger.String(),
		Days:        a.Days.Days(),
		Enabled:     a.Enabled,
		SnoozeCount: a.SnoozeCount,
		Firing:      firing,
		CreatedAt:   a.CreatedAt,
		LastFiredAt: a.LastFiredAt,
	}
}
