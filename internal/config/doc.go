// Package config defines the configuration of the taskqueue command.
//
// Configuration is organized into sections (Scheduler, Store, Server) plus
// the logging settings. Defaults are declared as struct tags and applied with
// github.com/creasty/defaults.
//
// # Configuration Structure
//
//	Configuration
//	├── Scheduler      - concurrency limit of the shared scheduler
//	├── Store          - run journal location
//	├── Server         - HTTP API settings
//	├── LogFormat      - Logging format
//	└── LogLevel       - Logging verbosity
//
// # Fields
//
//	┌───────────────────────┬────────────┬───────────────┬────────────────────────┐
//	│ Field                 │ Default    │ Flag          │ Environment            │
//	├───────────────────────┼────────────┼───────────────┼────────────────────────┤
//	│ Scheduler.Concurrency │ 2          │ --concurrency │ TASKQUEUE_CONCURRENCY  │
//	│ Store.Path            │ ":memory:" │ --db          │ TASKQUEUE_DB           │
//	│ Server.HTTPPort       │ 8000       │ --http-port   │ TASKQUEUE_HTTP_PORT    │
//	│ LogFormat             │ "console"  │ --log-format  │ TASKQUEUE_LOG_FORMAT   │
//	│ LogLevel              │ "info"     │ --log-level   │ TASKQUEUE_LOG_LEVEL    │
//	└───────────────────────┴────────────┴───────────────┴────────────────────────┘
//
// # Precedence
//
// Load resolves every field through viper, highest first:
//
//  1. a flag explicitly set on the command line
//  2. the TASKQUEUE_* environment variable
//  3. the struct tag default
//
// # Usage Example
//
//	cmd.PersistentFlags().AddFlagSet(fs)
//	config.RegisterFlags(fs)
//	...
//	cfg, err := config.Load(fs)
//	if err != nil {
//	    return err // *errors.InvalidConfigurationError for bad values
//	}
package config
