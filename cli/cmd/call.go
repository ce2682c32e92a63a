package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ardnew/enclose/closure"
	"github.com/ardnew/enclose/log"
)

// Call creates a closure from a literal and invokes it once.
type Call struct {
	Source  string   `arg:"" help:"Closure literal, e.g. 'function (a) { a + _.x }'" name:"source" optional:""`
	Args    []string `arg:"" help:"Arguments passed to the closure"                   name:"args"   optional:""`
	File    string   `       help:"Read the literal from file or '-' for stdin"                                                   short:"f"`
	Env     []string `       help:"Captured variable as KEY=VALUE (repeatable)"                    placeholder:"KEY=VALUE"        short:"e"`
	EnvFile []string `       help:"YAML or JSON mapping of captured variables, or '-' for stdin"   name:"env-file"`
	Alias   string   `       help:"Name through which the body reads captured variables"           default:"_"`
	Output  string   `       help:"Result format (native prints a string result unquoted)"           default:"native" enum:"native,json,yaml" short:"o"`
}

// Run executes the call command.
func (c *Call) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	source, args, err := c.literal()
	if err != nil {
		return err
	}

	env, err := loadEnv(ctx, c.EnvFile, c.Env)
	if err != nil {
		return err
	}

	registry := closure.NewRegistry(
		closure.WithAlias(c.Alias),
		closure.WithLogger(log.Default()),
	)

	fn, err := registry.Create(ctx, source, env)
	if err != nil {
		return WrapError(err).With(slog.String("command", "call"))
	}

	values := make([]any, len(args))
	for i, arg := range args {
		values[i] = closure.ParseValue(arg)
	}

	result, err := fn(values...)
	if err != nil {
		return WrapError(err).With(slog.String("command", "call"))
	}

	return writeValue(ctx, output, c.Output, result)
}

// literal returns the closure source and its arguments. With --file, every
// positional is an argument.
func (c *Call) literal() (string, []string, error) {
	if c.File == "" {
		if strings.TrimSpace(c.Source) == "" {
			return "", nil, ErrNoSource
		}

		return c.Source, c.Args, nil
	}

	args := c.Args
	if c.Source != "" {
		args = append([]string{c.Source}, args...)
	}

	source, err := readSource(c.File)
	if err != nil {
		return "", nil, err
	}

	return source, args, nil
}

// readSource reads a literal from path, or stdin if path is "-".
func readSource(path string) (string, error) {
	var r io.Reader = os.Stdin

	if path != stdinSource {
		file, err := os.Open(path)
		if err != nil {
			return "", ErrReadSource.Wrap(err).With(slog.String("file", path))
		}
		defer file.Close()

		r = file
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", ErrReadSource.Wrap(err).With(slog.String("file", path))
	}

	return strings.TrimSpace(string(data)), nil
}
