package closure

import (
	"errors"
	"testing"
)

func TestRegistry_Eval(t *testing.T) {
	r := quietRegistry(WithProcessEnv([]string{"USER=gopher"}))

	double, err := r.Create(t.Context(), "function (n) { n * 2 }", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	vars := map[string]any{"x": 20, "double": double}

	tests := []struct {
		name    string
		code    string
		want    any
		wantErr error
	}{
		{"empty", "  ", nil, nil},
		{"var", "x + 1", 21, nil},
		{"return and semicolon", "return x;", 20, nil},
		{"builtin", `env("USER")`, "gopher", nil},
		{"closure call", "double(x) + 2", 42, nil},
		{"unknown name", "y", nil, ErrCompile},
		{"runtime error", "double()", nil, ErrEvaluate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Eval(t.Context(), tt.code, vars)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Errorf("got %v (%T), want %v", got, got, tt.want)
			}
		})
	}

	if r.Len() != 1 {
		t.Errorf("Eval registered closures: %d", r.Len())
	}
}
