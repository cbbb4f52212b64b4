package config

import (
	"fmt"
	"strings"

	"github.com/creasty/defaults"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	srvErrors "github.com/jkilzi/taskqueue/pkg/errors"
)

const envPrefix = "TASKQUEUE"

// Flag names shared by the flag set, viper keys and environment variables.
const (
	FlagConcurrency = "concurrency"
	FlagDB          = "db"
	FlagHTTPPort    = "http-port"
	FlagLogFormat   = "log-format"
	FlagLogLevel    = "log-level"
)

type Configuration struct {
	Scheduler Scheduler
	Store     Store
	Server    Server
	LogFormat string `default:"console"`
	LogLevel  string `default:"info"`
}

type Scheduler struct {
	Concurrency int `default:"2"`
}

type Store struct {
	// Path of the DuckDB file. ":memory:" keeps the journal in memory.
	Path string `default:":memory:"`
}

type Server struct {
	HTTPPort int `default:"8000"`
}

func NewConfigurationWithDefaults() *Configuration {
	cfg := &Configuration{}
	if err := defaults.Set(cfg); err != nil {
		// only fails on malformed tags
		panic(err)
	}
	return cfg
}

// RegisterFlags adds the global flags to fs. Their defaults come from the
// struct tags of Configuration.
func RegisterFlags(fs *pflag.FlagSet) {
	d := NewConfigurationWithDefaults()
	fs.Int(FlagConcurrency, d.Scheduler.Concurrency, "maximum number of tasks running at the same time")
	fs.String(FlagDB, d.Store.Path, "path of the run journal database (\":memory:\" for in-memory)")
	fs.Int(FlagHTTPPort, d.Server.HTTPPort, "HTTP API listen port")
	fs.String(FlagLogFormat, d.LogFormat, "log format: console or json")
	fs.String(FlagLogLevel, d.LogLevel, "log level: debug, info, warn or error")
}

// Load builds the configuration from defaults, then TASKQUEUE_* environment
// variables, then flags explicitly set on fs. fs may be nil.
func Load(fs *pflag.FlagSet) (*Configuration, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	cfg := NewConfigurationWithDefaults()
	if v.IsSet(FlagConcurrency) {
		cfg.Scheduler.Concurrency = v.GetInt(FlagConcurrency)
	}
	if v.IsSet(FlagDB) {
		cfg.Store.Path = v.GetString(FlagDB)
	}
	if v.IsSet(FlagHTTPPort) {
		cfg.Server.HTTPPort = v.GetInt(FlagHTTPPort)
	}
	if v.IsSet(FlagLogFormat) {
		cfg.LogFormat = v.GetString(FlagLogFormat)
	}
	if v.IsSet(FlagLogLevel) {
		cfg.LogLevel = v.GetString(FlagLogLevel)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Configuration) Validate() error {
	if c.Scheduler.Concurrency < 1 {
		return srvErrors.NewInvalidConfigurationError(FlagConcurrency, fmt.Sprintf("must be at least 1, got %d", c.Scheduler.Concurrency))
	}
	if c.Store.Path == "" {
		return srvErrors.NewInvalidConfigurationError(FlagDB, "must not be empty")
	}
	if c.Server.HTTPPort < 1 || c.Server.HTTPPort > 65535 {
		return srvErrors.NewInvalidConfigurationError(FlagHTTPPort, fmt.Sprintf("must be between 1 and 65535, got %d", c.Server.HTTPPort))
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return srvErrors.NewInvalidConfigurationError(FlagLogFormat, fmt.Sprintf("must be console or json, got %q", c.LogFormat))
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return srvErrors.NewInvalidConfigurationError(FlagLogLevel, err.Error())
	}
	return nil
}
