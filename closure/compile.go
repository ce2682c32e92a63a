package closure

import (
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// returnKeyword matches a "return" keyword that begins a statement.
var returnKeyword = regexp.MustCompile(`(^|;)\s*return\b\s*`)

// normalize rewrites body into an expr program: a leading "return" on any
// statement is removed along with trailing semicolons.
//
// Like the delimiter scan in [Parse], the rewrite does not recognize string
// literals: a "return" following a ';' inside a string is removed too.
func normalize(body string) string {
	s := returnKeyword.ReplaceAllString(strings.TrimSpace(body), "$1 ")

	for {
		s = strings.TrimSpace(s)

		trimmed, ok := strings.CutSuffix(s, ";")
		if !ok {
			return s
		}

		s = trimmed
	}
}

// prelude returns the statement binding alias to the snapshot of closure id.
func prelude(alias string, id ID) string {
	return "let " + alias + " = " + lookupName + "(" + strconv.Itoa(int(id)) + "); "
}

// compile builds the program for a closure body. A nil program means the
// body is empty. The returned keys are the snapshot keys read through the
// alias.
func (r *Registry) compile(
	id ID,
	params []Param,
	body string,
) (*vm.Program, []string, error) {
	code := normalize(body)
	if code == "" {
		return nil, nil, nil
	}

	source := prelude(r.opts.alias, id) + code

	// Parameters stay out of the compile environment so the checker types
	// them as unknown and accepts any operation on them. Free identifiers
	// are rejected by the scope visitor instead.
	env := r.opts.env()

	captures := &captureVisitor{alias: r.opts.alias}
	scope := &scopeVisitor{}

	program, err := expr.Compile(source,
		expr.Env(env),
		expr.AllowUndefinedVariables(),
		expr.Function(lookupName, r.lookup, new(func(int) map[string]any)),
		expr.Patch(captures),
		expr.Patch(scope),
	)
	if err == nil {
		if free := scope.free(func(name string) bool {
			_, ok := env[name]

			return ok || name == lookupName || slices.ContainsFunc(params,
				func(p Param) bool { return p.Name == name })
		}); len(free) > 0 {
			err = fmt.Errorf("unknown name: %s", strings.Join(free, ", "))
		}
	}

	if err != nil {
		return nil, nil, ErrCompile.Wrap(err).With(
			slog.Int("id", int(id)),
			slog.String("source", source),
		)
	}

	r.opts.log().Trace("closure compiled",
		slog.Int("id", int(id)),
		slog.String("source", source),
		slog.Any("captures", captures.keys))

	return program, captures.keys, nil
}

// lookup resolves the snapshot of the closure whose id is params[0]. It is
// injected into every program under lookupName.
func (r *Registry) lookup(params ...any) (any, error) {
	id, ok := params[0].(int)
	if !ok {
		return nil, ErrNotFound.With(slog.Any("id", params[0]))
	}

	rec, err := r.Get(ID(id))
	if err != nil {
		return nil, err
	}

	return copyMap(rec.env), nil
}
