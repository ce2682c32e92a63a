package closure

import (
	"context"
	"log/slog"
	"maps"

	"github.com/expr-lang/expr"
)

// Eval compiles and runs code once, with the registry's builtins and vars
// in scope. Nothing is registered. Values in vars shadow builtins of the
// same name; a [Func] in vars is callable by name.
//
// The same conveniences as closure bodies apply: a leading "return" and
// trailing semicolons are accepted. Empty code yields nil.
func (r *Registry) Eval(
	ctx context.Context,
	code string,
	vars map[string]any,
) (any, error) {
	code = normalize(code)
	if code == "" {
		return nil, nil
	}

	env := maps.Clone(r.base)
	maps.Copy(env, vars)

	program, err := expr.Compile(code, expr.Env(env))
	if err != nil {
		return nil, ErrCompile.Wrap(err).With(slog.String("source", code))
	}

	result, err := expr.Run(program, env)
	if err != nil {
		return nil, ErrEvaluate.Wrap(err).With(slog.String("source", code))
	}

	r.opts.log().TraceContext(ctx, "expression evaluated",
		slog.String("source", code))

	return result, nil
}
