// Package cli contains the command line interface for enclose.
//
// # Usage
//
//	enclose [flags] <command> [args...]
//
// The call command is the default, so a closure literal may be given
// directly:
//
//	enclose '_.greeting + ", " + who' --env greeting=hello world
//
// # Configuration
//
// Flag defaults are read from config.json and config.yaml in the
// configuration directory (os.UserConfigDir()/enclose). The YAML file keeps
// its values under a top-level "config" mapping, as written by the init
// command:
//
//	config:
//	  log-level: debug
//	  log-format: json
//
// Command-line flags always take precedence.
//
// # Logging Options
//
//   - --log-level: minimum level (trace, debug, info, warn, error)
//   - --log-format: output format (text, json)
//   - --log-time-layout: timestamp layout or name (kitchen, RFC3339, none)
//   - --log-file: also append JSON records to a file
//   - --log-caller: include caller information
//   - --log-pretty: colorize text output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o enclose .
//
// which adds --pprof-mode and --pprof-dir (default
// os.UserCacheDir()/enclose/pprof).
package cli
