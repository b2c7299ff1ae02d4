// Package pb describes the alarmclock.v1.AlarmClock gRPC service.
//
// Messages are protobuf well-known types (Struct, StringValue, Empty) carried
// by the default proto codec, so no generated code is involved. The Go views
// in messages.go convert between those structs and typed values.
// The service and payload fields are described in api/alarmclock/v1/alarm_clock.proto.
package pb
