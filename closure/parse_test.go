package closure

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		source     string
		wantParams string
		wantBody   string
	}{
		{
			name:       "simple",
			source:     "function (a, b) { return a; }",
			wantParams: "a, b",
			wantBody:   " return a; ",
		},
		{
			name:       "no params",
			source:     "function () { 1 }",
			wantParams: "",
			wantBody:   " 1 ",
		},
		{
			name:       "dollar params",
			source:     "function ($x, $y) { return $x + $y; }",
			wantParams: "$x, $y",
			wantBody:   " return $x + $y; ",
		},
		{
			name:       "nested braces use last closing brace",
			source:     "function (m) { return {a: m}; }",
			wantParams: "m",
			wantBody:   " return {a: m}; ",
		},
		{
			name:       "nested parens use last closing paren",
			source:     "function (a = (1 + 2)) { a }",
			wantParams: "a = (1 + 2)",
			wantBody:   " a ",
		},
		{
			name:       "parens in body are ignored for params",
			source:     "fn(x){ (x) }",
			wantParams: "x",
			wantBody:   " (x) ",
		},
		{
			name:       "empty body",
			source:     "function (){}",
			wantParams: "",
			wantBody:   "",
		},
		{
			name:       "degenerate braces",
			source:     "function () } x {",
			wantParams: "",
			wantBody:   "",
		},
		{
			name:       "degenerate parens",
			source:     "function ) x ( { 1 }",
			wantParams: "",
			wantBody:   " 1 ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lit, err := Parse(tt.source)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if lit.Params != tt.wantParams {
				t.Errorf("params: got %q, want %q", lit.Params, tt.wantParams)
			}

			if lit.Body != tt.wantBody {
				t.Errorf("body: got %q, want %q", lit.Body, tt.wantBody)
			}
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"no braces", "function (x, y) return x;"},
		{"no closing brace", "function (x) { return x;"},
		{"no opening brace", "function (x) return x; }"},
		{"no parens", "function { return 1; }"},
		{"parens only after brace", "function { (x) }"},
		{"no closing paren", "function (x { x }"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.source)
			if !errors.Is(err, ErrMalformedClosure) {
				t.Errorf("expected ErrMalformedClosure, got %v", err)
			}
		})
	}
}
