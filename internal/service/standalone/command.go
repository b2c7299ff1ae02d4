// Package standalone runs the alarm engine in-process behind the terminal UI.
package standalone

import (
	"context"
	"errors"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/service/common"
	"github.com/oshokin/alarm-clock/internal/tui"
	"github.com/oshokin/alarm-clock/internal/version"
)

// Options controls the alarm-clock process.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// LogFile overrides log_file from the configuration when set.
	LogFile string
}

// Run starts the scheduler and the terminal UI and blocks until the user quits or ctx is canceled.
// The UI owns the terminal, so logs go to a file.
func Run(ctx context.Context, opts *Options) error {
	settings, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	level, ok := logger.ParseLogLevel(settings.LogLevel)
	if !ok {
		level = zapcore.InfoLevel
	}

	fileLogger, closeLog, err := logger.OpenFile(
		resolveLogFile(settings.LogFile, opts.LogFile),
		logger.WithLevel(level),
	)
	if err != nil {
		return err
	}

	defer closeLog()

	logger.SetLogger(fileLogger)

	ctx = logger.WithName(ctx, "alarm-clock")

	engine, err := common.NewScheduler(settings)
	if err != nil {
		return fmt.Errorf("initialise scheduler: %w", err)
	}

	bridge := tui.NewBridge()
	unsubscribe := engine.Subscribe(bridge)

	defer unsubscribe()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(
		tui.NewModel(engine, tui.WithContext(ctx)),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	bridge.Attach(program.Send)

	var wg sync.WaitGroup

	wg.Go(func() {
		if err := engine.Run(ctx); err != nil {
			logger.ErrorKV(ctx, "Scheduler failed", "error", err)
		}
	})

	logger.InfoKV(ctx, "Alarm clock started",
		"version", version.Short(),
		"tick_interval", settings.TickInterval.String(),
		"match_mode", settings.MatchMode,
		"response_timeout", settings.ResponseTimeout.String(),
	)

	_, err = program.Run()

	// Stop the scheduler; an unanswered fire is released by the canceled context.
	cancel()
	wg.Wait()

	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("run terminal UI: %w", err)
	}

	logger.Info(ctx, "Alarm clock stopped")

	return nil
}

// resolveLogFile picks the override, then the configured file, then the default name.
func resolveLogFile(configured, override string) string {
	switch {
	case override != "":
		return override
	case configured != "":
		return configured
	default:
		return config.DefaultLogFilename
	}
}
