package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"google.golang.org/grpc"

	api "github.com/oshokin/alarm-clock/internal/api/grpc/alarm"
	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/logger"
	pb "github.com/oshokin/alarm-clock/internal/pb/v1"
	"github.com/oshokin/alarm-clock/internal/scheduler"
	"github.com/oshokin/alarm-clock/internal/service/common"
)

// service ties the alarm engine to its gRPC transport.
// It is unexported to keep the transport decoupled from the implementation.
type service struct {
	// engine owns the alarms and fires them.
	engine *scheduler.Scheduler
	// relay is the engine's consumer, fed by WatchFires and RespondFire.
	relay *api.Relay
	// grpcServer serves the AlarmClock API.
	grpcServer *grpc.Server
}

// newService builds the engine from settings and registers the API.
func newService(settings *config.Config, opts ...scheduler.Option) (*service, error) {
	engine, err := common.NewScheduler(settings, opts...)
	if err != nil {
		return nil, err
	}

	relay := api.NewRelay()
	engine.Subscribe(relay)

	grpcServer := grpc.NewServer()
	pb.RegisterAlarmClockServer(grpcServer, api.NewServer(engine, relay))

	return &service{
		engine:     engine,
		relay:      relay,
		grpcServer: grpcServer,
	}, nil
}

// serve runs the engine and the gRPC server on lis until ctx is canceled.
// A failed Serve stops the engine and the shutdown goroutine before the error is returned.
func (s *service) serve(ctx context.Context, lis net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup

	wg.Go(func() {
		if err := s.engine.Run(ctx); err != nil {
			logger.ErrorKV(ctx, "Scheduler failed", "error", err)
		}
	})

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")

		// Open WatchFires streams would hold GracefulStop forever.
		s.relay.Close()
		s.grpcServer.GracefulStop()
		close(done)
	}()

	if err := s.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		cancel()
		<-done
		wg.Wait()

		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	wg.Wait()
	logger.Info(ctx, "GRPC server stopped")

	return nil
}
