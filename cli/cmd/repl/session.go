package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/ardnew/enclose/closure"
	"github.com/ardnew/enclose/log"
)

// Result is the outcome of executing one line in a [Session].
type Result struct {
	Output string // text to print, may be empty
	Clear  bool   // clear the screen
	Quit   bool   // end the session
	Edit   string // name of a definition to open in the editor
}

// Session holds the variables and closures defined interactively. Closures
// are registered in the session's registry and capture a snapshot of the
// variables at the time they are defined.
type Session struct {
	registry *closure.Registry
	vars     map[string]any
	defs     map[string]*closure.Record
	logger   log.Logger
}

// NewSession returns a Session whose initial variables are a copy of vars.
func NewSession(
	registry *closure.Registry,
	vars map[string]any,
	logger log.Logger,
) *Session {
	s := &Session{
		registry: registry,
		vars:     make(map[string]any, len(vars)),
		defs:     make(map[string]*closure.Record),
		logger:   logger,
	}

	maps.Copy(s.vars, vars)

	return s
}

// Exec executes one line of input: a command (":help"), a variable
// assignment ("let x = 1"), a closure definition ("def f = function (a) {
// a + _.x }"), or an expression.
func (s *Session) Exec(ctx context.Context, line string) (Result, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Result{}, nil
	}

	s.logger.TraceContext(ctx, "repl exec", slog.String("input", line))

	if cmd, ok := strings.CutPrefix(line, ":"); ok {
		return s.command(cmd)
	}

	if rest, ok := cutKeyword(line, "let"); ok {
		return s.let(ctx, rest)
	}

	if rest, ok := cutKeyword(line, "def"); ok {
		return s.def(ctx, rest)
	}

	result, err := s.registry.Eval(ctx, line, s.scope())
	if err != nil {
		return Result{}, err
	}

	return Result{Output: closure.FormatResult(result)}, nil
}

func (s *Session) command(input string) (Result, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return Result{}, ErrUnknownCommand
	}

	switch name, args := fields[0], fields[1:]; name {
	case "q", "quit", "exit":
		return Result{Quit: true}, nil

	case "h", "help":
		return Result{Output: helpMessage()}, nil

	case "v", "vars":
		return Result{Output: s.listVars()}, nil

	case "l", "list":
		return Result{Output: s.listDefs()}, nil

	case "c", "clear":
		return Result{Clear: true}, nil

	case "e", "edit":
		if len(args) != 1 {
			return Result{}, usage(":edit NAME")
		}

		if _, ok := s.defs[args[0]]; !ok {
			return Result{}, ErrUndefined.Wrap(errors.New(args[0]))
		}

		return Result{Edit: args[0]}, nil

	default:
		return Result{}, ErrUnknownCommand.Wrap(errors.New(name))
	}
}

func (s *Session) let(ctx context.Context, rest string) (Result, error) {
	name, code, err := splitAssignment(rest, "let NAME = EXPR")
	if err != nil {
		return Result{}, err
	}

	value, err := s.registry.Eval(ctx, code, s.scope())
	if err != nil {
		return Result{}, err
	}

	delete(s.defs, name)
	s.vars[name] = value

	return Result{Output: name + " = " + closure.FormatResult(value)}, nil
}

func (s *Session) def(ctx context.Context, rest string) (Result, error) {
	name, source, err := splitAssignment(rest, "def NAME = function (PARAMS) { BODY }")
	if err != nil {
		return Result{}, err
	}

	if err := s.Define(ctx, name, source); err != nil {
		return Result{}, err
	}

	rec := s.defs[name]

	return Result{
		Output: fmt.Sprintf("%s%s #%d", name, rec.Signature(), rec.ID()),
	}, nil
}

// Define registers source as a closure named name, capturing a snapshot of
// the current variables. It replaces any variable or closure of that name.
func (s *Session) Define(ctx context.Context, name, source string) error {
	if !closure.IsIdentifier(name) {
		return ErrUsage.Wrap(errors.New("not an identifier: " + name))
	}

	rec, err := s.registry.CreateRecord(ctx, source, s.vars)
	if err != nil {
		return err
	}

	delete(s.vars, name)
	s.defs[name] = rec

	return nil
}

// Source returns the literal a named closure was defined from.
func (s *Session) Source(name string) (string, bool) {
	rec, ok := s.defs[name]
	if !ok {
		return "", false
	}

	return rec.Source(), true
}

// Signature returns the parameter list of a named closure.
func (s *Session) Signature(name string) (sig string, params []string, ok bool) {
	rec, ok := s.defs[name]
	if !ok {
		return "", nil, false
	}

	for _, p := range rec.Params() {
		params = append(params, p.String())
	}

	return name + rec.Signature(), params, true
}

// Names returns the sorted names of all variables and closures.
func (s *Session) Names() []string {
	names := slices.Collect(maps.Keys(s.vars))
	names = slices.AppendSeq(names, maps.Keys(s.defs))
	slices.Sort(names)

	return names
}

// scope returns the names visible to expressions: variables plus
// closures, callable by name.
func (s *Session) scope() map[string]any {
	env := make(map[string]any, len(s.vars)+len(s.defs))
	maps.Copy(env, s.vars)

	for name, rec := range s.defs {
		env[name] = rec.Func()
	}

	return env
}

func (s *Session) listVars() string {
	if len(s.vars) == 0 {
		return hintStyle.Render("  (no variables)")
	}

	var b strings.Builder

	for _, name := range slices.Sorted(maps.Keys(s.vars)) {
		fmt.Fprintf(&b, "  %s = %s\n", name, closure.FormatResult(s.vars[name]))
	}

	return strings.TrimRight(b.String(), "\n")
}

func (s *Session) listDefs() string {
	if len(s.defs) == 0 {
		return hintStyle.Render("  (no closures)")
	}

	var b strings.Builder

	for _, name := range slices.Sorted(maps.Keys(s.defs)) {
		rec := s.defs[name]
		fmt.Fprintf(&b, "  %s%s %s\n", name, rec.Signature(),
			hintStyle.Render(fmt.Sprintf("#%d captures %v", rec.ID(), rec.Captures())))
	}

	return strings.TrimRight(b.String(), "\n")
}

// cutKeyword reports whether line starts with keyword followed by
// whitespace, returning the remainder.
func cutKeyword(line, keyword string) (string, bool) {
	rest, ok := strings.CutPrefix(line, keyword)
	if !ok || rest == "" || (rest[0] != ' ' && rest[0] != '\t') {
		return "", false
	}

	return strings.TrimSpace(rest), true
}

func usage(form string) error {
	return ErrUsage.Wrap(errors.New("usage: " + form))
}

// splitAssignment splits "NAME = VALUE".
func splitAssignment(s, form string) (name, value string, err error) {
	name, value, ok := strings.Cut(s, "=")
	name, value = strings.TrimSpace(name), strings.TrimSpace(value)

	if !ok || value == "" || !closure.IsIdentifier(name) {
		return "", "", usage(form)
	}

	return name, value, nil
}
