package closure

import (
	"log/slog"
	"maps"
	"strings"

	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/enclose/log"
)

// ID identifies a closure within its [Registry].
type ID int

// Func is the callable returned for a closure. Arguments bind to the
// parameters by position.
type Func func(args ...any) (any, error)

// Record is a registered closure: its source, parsed parts, captured
// snapshot, and compiled program. Records are immutable.
type Record struct {
	id       ID
	source   string
	literal  Literal
	params   []Param
	env      map[string]any
	captures []string
	program  *vm.Program
	base     map[string]any
	logger   log.Logger
	minArity int
	callable Func
}

// ID returns the closure's id.
func (rec *Record) ID() ID { return rec.id }

// Source returns the literal the closure was created from.
func (rec *Record) Source() string { return rec.source }

// ParamText returns the raw parameter list.
func (rec *Record) ParamText() string { return rec.literal.Params }

// Body returns the raw body text.
func (rec *Record) Body() string { return rec.literal.Body }

// Params returns a copy of the parsed parameters, defaults included.
func (rec *Record) Params() []Param {
	params := make([]Param, len(rec.params))
	for i, p := range rec.params {
		p.Default = deepCopy(p.Default)
		params[i] = p
	}

	return params
}

// Env returns a copy of the captured snapshot.
func (rec *Record) Env() map[string]any { return copyMap(rec.env) }

// Captures returns the snapshot keys the body reads through the alias.
func (rec *Record) Captures() []string { return append([]string(nil), rec.captures...) }

// Func returns the closure's callable.
func (rec *Record) Func() Func { return rec.callable }

// Signature returns the parameter list as "(a, b = 2)".
func (rec *Record) Signature() string {
	parts := make([]string, len(rec.params))
	for i, p := range rec.params {
		parts[i] = p.String()
	}

	return "(" + strings.Join(parts, ", ") + ")"
}

// Call invokes the closure with args.
func (rec *Record) Call(args ...any) (any, error) {
	if len(args) < rec.minArity || len(args) > len(rec.params) {
		return nil, ErrArgCount.With(
			slog.Int("id", int(rec.id)),
			slog.Int("min", rec.minArity),
			slog.Int("max", len(rec.params)),
			slog.Int("got", len(args)),
		)
	}

	if rec.program == nil {
		return nil, nil
	}

	env := maps.Clone(rec.base)

	for i, p := range rec.params {
		if i < len(args) {
			env[p.Name] = args[i]
		} else {
			env[p.Name] = deepCopy(p.Default)
		}
	}

	result, err := vm.Run(rec.program, env)
	if err != nil {
		return nil, ErrEvaluate.Wrap(err).With(slog.Int("id", int(rec.id)))
	}

	rec.logger.Trace("closure invoked",
		slog.Int("id", int(rec.id)),
		slog.Int("args", len(args)))

	return result, nil
}
