package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/enclose/cli/cmd/repl"
	"github.com/ardnew/enclose/closure"
	"github.com/ardnew/enclose/log"
)

// Repl starts an interactive session.
type Repl struct {
	Env       []string `help:"Initial variable as KEY=VALUE (repeatable)"            placeholder:"KEY=VALUE" short:"e"`
	EnvFile   []string `help:"YAML or JSON mapping of initial variables"             name:"env-file"`
	Alias     string   `help:"Name through which closures read captured variables" default:"_"`
	NoHistory bool     `help:"Do not read or write the history file"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	vars, err := loadEnv(ctx, r.EnvFile, r.Env)
	if err != nil {
		return err
	}

	var cacheDir string
	if ktx := kongContextFrom(ctx); ktx != nil && !r.NoHistory {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	logger := log.Default()

	logger.DebugContext(ctx, "repl session",
		slog.String("alias", r.Alias),
		slog.Int("vars", len(vars)),
		slog.String("cache_dir", cacheDir),
	)

	registry := closure.NewRegistry(
		closure.WithAlias(r.Alias),
		closure.WithLogger(logger),
	)

	return repl.Run(ctx, repl.NewSession(registry, vars, logger), cacheDir)
}
