// Package log provides a concurrency-safe levelled logger built on
// [log/slog].
//
// A [Logger] is configured once, at creation, with functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("kitchen"))
//
//	logger.Info("closure created", slog.Int("id", 3))
//
// Every level has a context-aware variant ([Logger.InfoContext], ...). The
// context-unaware variants use [DefaultContextProvider].
//
// # Default logger
//
// The package-level functions ([Info], [Debug], ...) write to a default
// logger that [Config] reconfigures in place. The command-line front end
// calls [Config] while flags are parsed so that early errors are already
// formatted as requested.
//
// # Output
//
// [FormatJSON] and [FormatText] select the slog handler. With
// [WithPretty] enabled, text output is colourised and unquoted. [WithTee]
// duplicates every record to a second writer, always as plain JSON, which
// is how log files are kept alongside terminal output.
package log
