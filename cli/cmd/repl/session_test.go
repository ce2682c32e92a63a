package repl

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/ardnew/enclose/closure"
	"github.com/ardnew/enclose/log"
)

func newTestSession(t *testing.T, vars map[string]any) *Session {
	t.Helper()

	logger := log.Make(io.Discard)
	registry := closure.NewRegistry(
		closure.WithLogger(logger),
		closure.WithProcessEnv([]string{"HOME=/home/gopher"}),
	)

	return NewSession(registry, vars, logger)
}

func TestSession_Exec(t *testing.T) {
	tests := []struct {
		name    string
		lines   []string // all but the last must succeed
		want    string
		wantErr error
	}{
		{"empty", []string{"   "}, "", nil},
		{"expression", []string{"1 + 2"}, "3", nil},
		{"string", []string{`"a" + "b"`}, "ab", nil},
		{"let", []string{"let x = 40"}, "x = 40", nil},
		{"let then use", []string{"let x = 40", "x + 2"}, "42", nil},
		{"builtin", []string{`env("HOME")`}, "/home/gopher", nil},
		{
			"def",
			[]string{"def add = function (a, b = 2) { a + b }"},
			"add(a, b = 2) #0",
			nil,
		},
		{
			"def then call",
			[]string{"def add = function (a, b = 2) { a + b }", "add(40)"},
			"42",
			nil,
		},
		{
			"capture snapshot",
			[]string{
				"let x = 1",
				"def f = function () { _.x }",
				"let x = 2",
				"f() + x",
			},
			"3",
			nil,
		},
		{
			"closure calls closure",
			[]string{
				"def sq = function (n) { n * n }",
				"let g = sq",
				"def h = function (n) { _.g(n) + 1 }",
				"h(3)",
			},
			"10",
			nil,
		},
		{
			"let replaces def",
			[]string{"def f = function () { 1 }", "let f = 2", "f"},
			"2",
			nil,
		},
		{"let usage", []string{"let = 1"}, "", ErrUsage},
		{"let bad name", []string{"let 1x = 1"}, "", ErrUsage},
		{"def usage", []string{"def f"}, "", ErrUsage},
		{
			"def malformed",
			[]string{"def f = function (a) a"},
			"",
			closure.ErrMalformedClosure,
		},
		{"compile error", []string{"nope + 1"}, "", closure.ErrCompile},
		{
			"arg count",
			[]string{"def f = function (a) { a }", "f()"},
			"",
			closure.ErrEvaluate,
		},
		{"unknown command", []string{":frobnicate"}, "", ErrUnknownCommand},
		{"edit usage", []string{":edit"}, "", ErrUsage},
		{"edit undefined", []string{":edit f"}, "", ErrUndefined},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t, nil)

			var (
				res Result
				err error
			)

			for i, line := range tt.lines {
				res, err = s.Exec(t.Context(), line)
				if i < len(tt.lines)-1 && err != nil {
					t.Fatalf("line %q: %v", line, err)
				}
			}

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if res.Output != tt.want {
				t.Errorf("output = %q, want %q", res.Output, tt.want)
			}
		})
	}
}

func TestSession_Commands(t *testing.T) {
	s := newTestSession(t, map[string]any{"name": "gopher"})

	if _, err := s.Exec(t.Context(), "def greet = function (who) { who }"); err != nil {
		t.Fatalf("def: %v", err)
	}

	tests := []struct {
		line  string
		check func(Result) bool
	}{
		{":quit", func(r Result) bool { return r.Quit }},
		{":q", func(r Result) bool { return r.Quit }},
		{":clear", func(r Result) bool { return r.Clear }},
		{":help", func(r Result) bool { return strings.Contains(r.Output, ":edit") }},
		{":vars", func(r Result) bool { return strings.Contains(r.Output, "name = gopher") }},
		{":list", func(r Result) bool { return strings.Contains(r.Output, "greet(who)") }},
		{":edit greet", func(r Result) bool { return r.Edit == "greet" }},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			res, err := s.Exec(t.Context(), tt.line)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !tt.check(res) {
				t.Errorf("unexpected result: %+v", res)
			}
		})
	}
}

func TestSession_Define(t *testing.T) {
	s := newTestSession(t, map[string]any{"x": 1})

	const src = "function (a) { a + _.x }"

	if err := s.Define(t.Context(), "f", src); err != nil {
		t.Fatalf("define: %v", err)
	}

	got, ok := s.Source("f")
	if !ok || got != src {
		t.Errorf("Source() = %q, %v", got, ok)
	}

	sig, params, ok := s.Signature("f")
	if !ok || sig != "f(a)" || len(params) != 1 || params[0] != "a" {
		t.Errorf("Signature() = %q, %v, %v", sig, params, ok)
	}

	if err := s.Define(t.Context(), "bad name", src); !errors.Is(err, ErrUsage) {
		t.Errorf("expected ErrUsage, got %v", err)
	}

	if _, _, ok := s.Signature("x"); ok {
		t.Error("variable reported a signature")
	}

	names := s.Names()
	if len(names) != 2 || names[0] != "f" || names[1] != "x" {
		t.Errorf("Names() = %v", names)
	}
}

func TestCutKeyword(t *testing.T) {
	tests := []struct {
		line   string
		want   string
		wantOK bool
	}{
		{"let x = 1", "x = 1", true},
		{"let\tx = 1", "x = 1", true},
		{"letter", "", false},
		{"let", "", false},
		{"def f = g", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := cutKeyword(tt.line, "let")
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("cutKeyword(%q) = %q, %v", tt.line, got, ok)
			}
		})
	}
}
