// Package cmd implements the enclose subcommands: call, parse, init and
// repl.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file, and the top-level key read from it.
	ConfigIdentifier = "config"
)
