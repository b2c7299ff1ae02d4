//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"fmt"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/notify"
	"github.com/oshokin/alarm-clock/internal/scheduler"
)

// NewScheduler builds the alarm engine from validated settings.
// Extra options are applied after the configured ones.
func NewScheduler(settings *config.Config, opts ...scheduler.Option) (*scheduler.Scheduler, error) {
	action, err := config.ParseTimeoutAction(settings.TimeoutAction)
	if err != nil {
		return nil, fmt.Errorf("timeout action: %w", err)
	}

	channel := notify.NewChannel(
		notify.WithResponseTimeout(settings.ResponseTimeout),
		notify.WithTimeoutAction(action),
	)

	options := append([]scheduler.Option{
		scheduler.WithInterval(settings.TickInterval),
		scheduler.WithMatchMode(settings.Match()),
		scheduler.WithChannel(channel),
	}, opts...)

	return scheduler.New(options...), nil
}
