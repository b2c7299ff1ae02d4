package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// Config holds settings shared by the alarm-clock binaries.
type Config struct {
	// ServerAddress is the gRPC address alarm-server listens on and alarm-ctl dials.
	ServerAddress string `yaml:"server_addr"`
	// Timeout is the duration for network operations and RPC calls.
	Timeout time.Duration `yaml:"timeout"`
	// TickInterval is how often the scheduler evaluates alarms.
	TickInterval time.Duration `yaml:"tick_interval"`
	// MatchMode selects exact-minute or catch-up due detection.
	MatchMode string `yaml:"match_mode"`
	// ResponseTimeout bounds how long a fired alarm waits for an answer. Zero waits indefinitely.
	ResponseTimeout time.Duration `yaml:"response_timeout"`
	// TimeoutAction is applied when ResponseTimeout expires: snooze, stop or none.
	TimeoutAction string `yaml:"timeout_action"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// LogFile is where the terminal UI writes its log.
	LogFile string `yaml:"log_file"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "alarm-clock-settings.yaml"

	// DefaultLogFilename is the default log file of the terminal UI.
	DefaultLogFilename = "alarm-clock.log"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second

	// DefaultTickInterval is the canonical scheduler period.
	DefaultTickInterval = time.Minute

	// DefaultTimeoutAction is applied to unanswered alarms when a response timeout is set.
	DefaultTimeoutAction = "snooze"

	// TimeoutActionNone leaves unanswered alarms untouched.
	TimeoutActionNone = "none"

	// DefaultLogLevel is used when log_level is empty.
	DefaultLogLevel = "info"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errNegativeDuration is returned for negative interval or timeout values.
	errNegativeDuration = errors.New("durations must not be negative")
)

// Default returns a configuration with every field set to its default.
func Default() *Config {
	return &Config{
		Timeout:       DefaultTimeout,
		TickInterval:  DefaultTickInterval,
		MatchMode:     string(alarm.MatchExact),
		TimeoutAction: DefaultTimeoutAction,
		LogLevel:      DefaultLogLevel,
		LogFile:       DefaultLogFilename,
	}
}

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOrDefault is like Load but falls back to Default when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	return cfg, err
}

// Save writes Settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills in defaults for empty fields.
//
//nolint:cyclop // A flat list of field checks reads better than helpers.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.ServerAddress != "" {
		if _, err := net.ResolveTCPAddr("tcp", settings.ServerAddress); err != nil {
			return fmt.Errorf("invalid server socket: %w", err)
		}
	}

	if settings.Timeout < 0 || settings.TickInterval < 0 || settings.ResponseTimeout < 0 {
		return errNegativeDuration
	}

	// Set default timeout if not specified
	if settings.Timeout == 0 {
		settings.Timeout = DefaultTimeout
	}

	if settings.TickInterval == 0 {
		settings.TickInterval = DefaultTickInterval
	}

	mode, err := alarm.ParseMatchMode(settings.MatchMode)
	if err != nil {
		return fmt.Errorf("invalid match mode: %w", err)
	}

	settings.MatchMode = string(mode)

	if _, err := ParseTimeoutAction(settings.TimeoutAction); err != nil {
		return err
	}

	if settings.TimeoutAction == "" {
		settings.TimeoutAction = DefaultTimeoutAction
	}

	if settings.LogLevel == "" {
		settings.LogLevel = DefaultLogLevel
	}

	if _, ok := logger.ParseLogLevel(settings.LogLevel); !ok {
		return fmt.Errorf("invalid log level %q", settings.LogLevel)
	}

	if settings.LogFile == "" {
		settings.LogFile = DefaultLogFilename
	}

	return nil
}

// ParseTimeoutAction converts timeout_action into the response applied on timeout.
// It returns alarm.ResponseUnknown for "none".
func ParseTimeoutAction(s string) (alarm.Response, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return ParseTimeoutAction(DefaultTimeoutAction)
	case TimeoutActionNone:
		return alarm.ResponseUnknown, nil
	}

	response, err := alarm.ParseResponse(s)
	if err != nil {
		return alarm.ResponseUnknown, fmt.Errorf("invalid timeout action: %w", err)
	}

	return response, nil
}

// Match returns the parsed match mode; Validate guarantees it is well-formed.
func (c *Config) Match() alarm.MatchMode {
	mode, err := alarm.ParseMatchMode(c.MatchMode)
	if err != nil {
		return alarm.MatchExact
	}

	return mode
}
