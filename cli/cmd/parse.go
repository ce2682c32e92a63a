package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/ardnew/enclose/closure"
	"github.com/ardnew/enclose/log"
)

// Parse reports how a closure literal is split, its parameters, and which
// captured keys its body reads.
type Parse struct {
	Source  string   `arg:"" help:"Closure literal" name:"source" optional:""`
	File    string   `       help:"Read the literal from file or '-' for stdin"                                 short:"f"`
	Env     []string `       help:"Captured variable as KEY=VALUE (repeatable)"  placeholder:"KEY=VALUE"        short:"e"`
	EnvFile []string `       help:"YAML or JSON mapping of captured variables"   name:"env-file"`
	Alias   string   `       help:"Name through which the body reads captured variables" default:"_"`
	Output  string   `       help:"Report format"                                default:"native" enum:"native,json,yaml" short:"o"`
}

// Run executes the parse command.
func (p *Parse) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	source := p.Source
	if p.File != "" {
		if source, err = readSource(p.File); err != nil {
			return err
		}
	}

	if source == "" {
		return ErrNoSource
	}

	env, err := loadEnv(ctx, p.EnvFile, p.Env)
	if err != nil {
		return err
	}

	// Missing captures are reported, not logged.
	registry := closure.NewRegistry(
		closure.WithAlias(p.Alias),
		closure.WithLogger(log.Default().Wrap(log.WithLevel(log.LevelError))),
	)

	rec, err := registry.CreateRecord(ctx, source, env)
	if err != nil {
		return WrapError(err).With(slog.String("command", "parse"))
	}

	report := describe(rec, env)

	if p.Output != formatNative {
		return writeValue(ctx, output, p.Output, report)
	}

	for _, key := range slices.Sorted(maps.Keys(report)) {
		if _, err := fmt.Fprintf(output, "%s: %s\n",
			key, closure.FormatResult(report[key])); err != nil {
			return err
		}
	}

	return nil
}

// describe returns the report of a parsed closure.
func describe(rec *closure.Record, env map[string]any) map[string]any {
	params := make([]any, 0, len(rec.Params()))

	for _, p := range rec.Params() {
		entry := map[string]any{"name": p.Name}
		if p.Optional {
			entry["default"] = p.Default
		}

		params = append(params, entry)
	}

	captures := make([]any, 0, len(rec.Captures()))
	missing := make([]any, 0)

	for _, key := range rec.Captures() {
		captures = append(captures, key)

		if _, ok := env[key]; !ok {
			missing = append(missing, key)
		}
	}

	return map[string]any{
		"params":     rec.ParamText(),
		"parameters": params,
		"body":       rec.Body(),
		"signature":  rec.Signature(),
		"captures":   captures,
		"missing":    missing,
	}
}
