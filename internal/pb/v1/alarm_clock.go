package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "alarmclock.v1.AlarmClock"

// Full method names of the AlarmClock service.
const (
	AlarmClockAddAlarmFullMethodName    = "/" + ServiceName + "/AddAlarm"
	AlarmClockRemoveAlarmFullMethodName = "/" + ServiceName + "/RemoveAlarm"
	AlarmClockListAlarmsFullMethodName  = "/" + ServiceName + "/ListAlarms"
	AlarmClockSnoozeAlarmFullMethodName = "/" + ServiceName + "/SnoozeAlarm"
	AlarmClockStopAlarmFullMethodName   = "/" + ServiceName + "/StopAlarm"
	AlarmClockWatchFiresFullMethodName  = "/" + ServiceName + "/WatchFires"
	AlarmClockRespondFireFullMethodName = "/" + ServiceName + "/RespondFire"
)

// AlarmClockServer is the server API for the AlarmClock service.
// Implementations must embed UnimplementedAlarmClockServer.
type AlarmClockServer interface {
	// AddAlarm creates an alarm from an AddAlarmRequest and returns the Alarm.
	AddAlarm(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	// RemoveAlarm deletes the alarm with the given ID.
	RemoveAlarm(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error)
	// ListAlarms returns every alarm in insertion order.
	ListAlarms(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	// SnoozeAlarm defers the alarm with the given ID.
	SnoozeAlarm(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
	// StopAlarm disables the alarm with the given ID.
	StopAlarm(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
	// WatchFires streams fire and resolved events until the client goes away.
	WatchFires(req *emptypb.Empty, stream grpc.ServerStreamingServer[structpb.Struct]) error
	// RespondFire answers a pending fire and returns how it was resolved.
	RespondFire(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

	mustEmbedUnimplementedAlarmClockServer()
}

// UnimplementedAlarmClockServer must be embedded for forward compatibility.
type UnimplementedAlarmClockServer struct{}

// AddAlarm is not implemented.
func (UnimplementedAlarmClockServer) AddAlarm(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method AddAlarm not implemented")
}

// RemoveAlarm is not implemented.
func (UnimplementedAlarmClockServer) RemoveAlarm(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method RemoveAlarm not implemented")
}

// ListAlarms is not implemented.
func (UnimplementedAlarmClockServer) ListAlarms(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ListAlarms not implemented")
}

// SnoozeAlarm is not implemented.
func (UnimplementedAlarmClockServer) SnoozeAlarm(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method SnoozeAlarm not implemented")
}

// StopAlarm is not implemented.
func (UnimplementedAlarmClockServer) StopAlarm(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method StopAlarm not implemented")
}

// WatchFires is not implemented.
func (UnimplementedAlarmClockServer) WatchFires(*emptypb.Empty, grpc.ServerStreamingServer[structpb.Struct]) error {
	return status.Error(codes.Unimplemented, "method WatchFires not implemented")
}

// RespondFire is not implemented.
func (UnimplementedAlarmClockServer) RespondFire(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method RespondFire not implemented")
}

func (UnimplementedAlarmClockServer) mustEmbedUnimplementedAlarmClockServer() {}

// RegisterAlarmClockServer registers srv on s.
func RegisterAlarmClockServer(s grpc.ServiceRegistrar, srv AlarmClockServer) {
	s.RegisterService(&AlarmClockServiceDesc, srv)
}

// AlarmClockServiceDesc is the grpc.ServiceDesc for the AlarmClock service.
//
//nolint:gochecknoglobals // Service descriptors are package-level by gRPC convention.
var AlarmClockServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AlarmClockServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "AddAlarm",
			Handler: unaryHandler(AlarmClockAddAlarmFullMethodName,
				func(srv AlarmClockServer, ctx context.Context, req *structpb.Struct) (any, error) {
					return srv.AddAlarm(ctx, req)
				}),
		},
		{
			MethodName: "RemoveAlarm",
			Handler: unaryHandler(AlarmClockRemoveAlarmFullMethodName,
				func(srv AlarmClockServer, ctx context.Context, req *wrapperspb.StringValue) (any, error) {
					return srv.RemoveAlarm(ctx, req)
				}),
		},
		{
			MethodName: "ListAlarms",
			Handler: unaryHandler(AlarmClockListAlarmsFullMethodName,
				func(srv AlarmClockServer, ctx context.Context, req *emptypb.Empty) (any, error) {
					return srv.ListAlarms(ctx, req)
				}),
		},
		{
			MethodName: "SnoozeAlarm",
			Handler: unaryHandler(AlarmClockSnoozeAlarmFullMethodName,
				func(srv AlarmClockServer, ctx context.Context, req *wrapperspb.StringValue) (any, error) {
					return srv.SnoozeAlarm(ctx, req)
				}),
		},
		{
			MethodName: "StopAlarm",
			Handler: unaryHandler(AlarmClockStopAlarmFullMethodName,
				func(srv AlarmClockServer, ctx context.Context, req *wrapperspb.StringValue) (any, error) {
					return srv.StopAlarm(ctx, req)
				}),
		},
		{
			MethodName: "RespondFire",
			Handler: unaryHandler(AlarmClockRespondFireFullMethodName,
				func(srv AlarmClockServer, ctx context.Context, req *structpb.Struct) (any, error) {
					return srv.RespondFire(ctx, req)
				}),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchFires",
			Handler:       watchFiresHandler,
			ServerStreams: true,
		},
	},
	Metadata: "alarmclock/v1/alarm_clock.proto",
}

// unaryHandler decodes a request of type Req and routes it through the
// optional interceptor to call.
func unaryHandler[Req any](
	fullMethod string,
	call func(srv AlarmClockServer, ctx context.Context, req *Req) (any, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}

		server, _ := srv.(AlarmClockServer)

		if interceptor == nil {
			return call(server, ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}

		handler := func(ctx context.Context, req any) (any, error) {
			typed, _ := req.(*Req)

			return call(server, ctx, typed)
		}

		return interceptor(ctx, in, info, handler)
	}
}

func watchFiresHandler(srv any, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}

	server, _ := srv.(AlarmClockServer)

	return server.WatchFires(in, &grpc.GenericServerStream[emptypb.Empty, structpb.Struct]{ServerStream: stream})
}

// AlarmClockClient is the client API for the AlarmClock service.
type AlarmClockClient interface {
	AddAlarm(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	RemoveAlarm(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error)
	ListAlarms(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	SnoozeAlarm(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	StopAlarm(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	WatchFires(
		ctx context.Context,
		in *emptypb.Empty,
		opts ...grpc.CallOption,
	) (grpc.ServerStreamingClient[structpb.Struct], error)
	RespondFire(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type alarmClockClient struct {
	cc grpc.ClientConnInterface
}

// NewAlarmClockClient returns a client calling the AlarmClock service over cc.
func NewAlarmClockClient(cc grpc.ClientConnInterface) AlarmClockClient {
	return &alarmClockClient{cc: cc}
}

func (c *alarmClockClient) AddAlarm(
	ctx context.Context,
	in *structpb.Struct,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, AlarmClockAddAlarmFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *alarmClockClient) RemoveAlarm(
	ctx context.Context,
	in *wrapperspb.StringValue,
	opts ...grpc.CallOption,
) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, AlarmClockRemoveAlarmFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *alarmClockClient) ListAlarms(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, AlarmClockListAlarmsFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *alarmClockClient) SnoozeAlarm(
	ctx context.Context,
	in *wrapperspb.StringValue,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, AlarmClockSnoozeAlarmFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *alarmClockClient) StopAlarm(
	ctx context.Context,
	in *wrapperspb.StringValue,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, AlarmClockStopAlarmFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *alarmClockClient) WatchFires(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (grpc.ServerStreamingClient[structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, &AlarmClockServiceDesc.Streams[0], AlarmClockWatchFiresFullMethodName, opts...)
	if err != nil {
		return nil, err
	}

	x := &grpc.GenericClientStream[emptypb.Empty, structpb.Struct]{ClientStream: stream}

	if err := x.SendMsg(in); err != nil {
		return nil, err
	}

	if err := x.CloseSend(); err != nil {
		return nil, err
	}

	return x, nil
}

func (c *alarmClockClient) RespondFire(
	ctx context.Context,
	in *structpb.Struct,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, AlarmClockRespondFireFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}
