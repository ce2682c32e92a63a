package closure

import (
	"bytes"
	"errors"
	"io"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/ardnew/enclose/log"
)

func quietRegistry(opts ...Option) *Registry {
	return NewRegistry(append(
		[]Option{WithLogger(log.Make(io.Discard))}, opts...,
	)...)
}

func TestRegistry_AddsParameters(t *testing.T) {
	r := quietRegistry()

	fn, err := r.Create(t.Context(), "function ($x, $y) { return $x + $y; }", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := fn(3, 4)
	if err != nil {
		t.Fatalf("call: %v", err)
	}

	if got != 7 {
		t.Errorf("expected 7, got %v (%T)", got, got)
	}
}

func TestRegistry_SnapshotIsolation(t *testing.T) {
	r := quietRegistry()
	env := map[string]any{"a": 5}

	fn, err := r.Create(t.Context(), "function () { return _['a']; }", env)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	env["a"] = 99

	got, err := fn()
	if err != nil {
		t.Fatalf("call: %v", err)
	}

	if got != 5 {
		t.Errorf("expected captured 5, got %v", got)
	}
}

func TestRegistry_NestedSnapshotIsolation(t *testing.T) {
	r := quietRegistry()
	inner := map[string]any{"n": 1}
	list := []any{"x"}
	env := map[string]any{"m": inner, "l": list}

	fn, err := r.Create(t.Context(), "function () { [_.m.n, _.l[0]] }", env)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	inner["n"] = 2
	list[0] = "y"

	got, err := fn()
	if err != nil {
		t.Fatalf("call: %v", err)
	}

	if FormatResult(got) != "[1, x]" {
		t.Errorf("expected [1, x], got %s", FormatResult(got))
	}
}

func TestRegistry_MalformedSource(t *testing.T) {
	r := quietRegistry()

	_, err := r.Create(t.Context(), "function (x, y) return x;", nil)
	if !errors.Is(err, ErrMalformedClosure) {
		t.Fatalf("expected ErrMalformedClosure, got %v", err)
	}

	if r.Len() != 0 {
		t.Errorf("expected empty registry, got %d", r.Len())
	}
}

func TestRegistry_IndependentSnapshots(t *testing.T) {
	r := quietRegistry()
	source := "function () { _.a }"

	f1, err := r.Create(t.Context(), source, map[string]any{"a": 1})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	f2, err := r.Create(t.Context(), source, map[string]any{"a": 2})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	r1, _ := f1()
	r2, _ := f2()

	if r1 != 1 || r2 != 2 {
		t.Errorf("expected 1 and 2, got %v and %v", r1, r2)
	}

	rec0, err := r.Get(0)
	if err != nil {
		t.Fatalf("get 0: %v", err)
	}

	rec1, err := r.Get(1)
	if err != nil {
		t.Fatalf("get 1: %v", err)
	}

	if rec0.Source() != rec1.Source() {
		t.Error("expected identical sources")
	}

	if reflect.DeepEqual(rec0.Env(), rec1.Env()) {
		t.Error("expected distinct snapshots")
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := quietRegistry()

	for range 2 {
		if _, err := r.Create(t.Context(), "function () {}", nil); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	_, err := r.Get(999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRegistry_GetReturnsSnapshotCopy(t *testing.T) {
	r := quietRegistry()
	env := map[string]any{"a": 1, "m": map[string]any{"b": true}}

	rec, err := r.CreateRecord(t.Context(), "function () { _.a }", env)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := r.Get(rec.ID())
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if !reflect.DeepEqual(got.Env(), env) {
		t.Errorf("expected %v, got %v", env, got.Env())
	}

	got.Env()["a"] = 100

	if v, _ := rec.Func()(); v != 1 {
		t.Errorf("snapshot changed through Env: %v", v)
	}
}

func TestRegistry_CompileFailureConsumesNoID(t *testing.T) {
	r := quietRegistry()

	_, err := r.Create(t.Context(), "function () { nosuchname + 1 }", nil)
	if !errors.Is(err, ErrCompile) {
		t.Fatalf("expected ErrCompile, got %v", err)
	}

	rec, err := r.CreateRecord(t.Context(), "function () { 1 }", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if rec.ID() != 0 {
		t.Errorf("expected id 0 after failed compile, got %d", rec.ID())
	}

	if r.Len() != 1 {
		t.Errorf("expected 1 record, got %d", r.Len())
	}
}

func TestRegistry_ParamErrorsConsumeNoID(t *testing.T) {
	r := quietRegistry()

	for _, src := range []string{
		"function (a, a) { a }",
		"function (_) { 1 }",
	} {
		if _, err := r.Create(t.Context(), src, nil); err == nil {
			t.Fatalf("expected error for %q", src)
		}
	}

	if r.Len() != 0 {
		t.Errorf("expected empty registry, got %d", r.Len())
	}
}

func TestRegistry_MonotonicIDs(t *testing.T) {
	r := quietRegistry()

	var prev ID = -1

	for i := range 5 {
		rec, err := r.CreateRecord(t.Context(), "function (x) { x }", nil)
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}

		if rec.ID() <= prev {
			t.Errorf("id %d not greater than %d", rec.ID(), prev)
		}

		prev = rec.ID()
	}
}

func TestRegistry_ConcurrentCreate(t *testing.T) {
	r := quietRegistry()

	const n = 64

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make(map[ID]bool, n)
	)

	for i := range n {
		wg.Go(func() {
			rec, err := r.CreateRecord(t.Context(),
				"function (x) { x + _.i }", map[string]any{"i": i})
			if err != nil {
				t.Errorf("create: %v", err)

				return
			}

			got, err := rec.Call(1)
			if err != nil || got != i+1 {
				t.Errorf("call: got %v, %v; want %d", got, err, i+1)
			}

			mu.Lock()
			ids[rec.ID()] = true
			mu.Unlock()
		})
	}

	wg.Wait()

	if len(ids) != n {
		t.Fatalf("expected %d distinct ids, got %d", n, len(ids))
	}

	for id := range ID(n) {
		if !ids[id] {
			t.Errorf("missing id %d", id)
		}
	}
}

func TestRegistry_All(t *testing.T) {
	r := quietRegistry()

	for _, src := range []string{"f () { 1 }", "f () { 2 }", "f () { 3 }"} {
		if _, err := r.Create(t.Context(), src, nil); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	var ids []ID

	for id, rec := range r.All() {
		if rec.ID() != id {
			t.Errorf("record id %d yielded as %d", rec.ID(), id)
		}

		ids = append(ids, id)
	}

	if !reflect.DeepEqual(ids, []ID{0, 1, 2}) {
		t.Errorf("unexpected ids %v", ids)
	}

	count := 0
	for range r.All() {
		count++

		break
	}

	if count != 1 {
		t.Errorf("iteration did not stop early")
	}
}

func TestRecord_Call(t *testing.T) {
	r := quietRegistry()

	rec, err := r.CreateRecord(t.Context(),
		"function (a, b = 10) { return a * b; }", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	tests := []struct {
		name    string
		args    []any
		want    any
		wantErr error
	}{
		{"default used", []any{2}, 20, nil},
		{"default overridden", []any{2, 3}, 6, nil},
		{"too few", nil, nil, ErrArgCount},
		{"too many", []any{1, 2, 3}, nil, ErrArgCount},
		{"runtime failure", []any{"x", true}, nil, ErrEvaluate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rec.Call(tt.args...)

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
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	if sig := rec.Signature(); sig != "(a, b = 10)" {
		t.Errorf("unexpected signature %q", sig)
	}
}

func TestRecord_EmptyBody(t *testing.T) {
	r := quietRegistry()

	fn, err := r.Create(t.Context(), "function (a) {  }", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := fn(1)
	if err != nil || got != nil {
		t.Errorf("expected nil, nil; got %v, %v", got, err)
	}

	if _, err := fn(); !errors.Is(err, ErrArgCount) {
		t.Errorf("expected ErrArgCount for empty body, got %v", err)
	}
}

func TestRegistry_Statements(t *testing.T) {
	r := quietRegistry()

	fn, err := r.Create(t.Context(),
		"function (n) { let sq = n * n; return sq + _.k; }",
		map[string]any{"k": 1})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if got, err := fn(3); err != nil || got != 10 {
		t.Errorf("expected 10, got %v (%v)", got, err)
	}
}

func TestRegistry_Alias(t *testing.T) {
	r := quietRegistry(WithAlias("env_"))

	fn, err := r.Create(t.Context(), "function (_) { _ + env_.v }",
		map[string]any{"v": 1})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if got, err := fn(2); err != nil || got != 3 {
		t.Errorf("expected 3, got %v (%v)", got, err)
	}

	if _, err := r.Create(t.Context(), "function (env_) { 1 }", nil); !errors.Is(err, ErrReservedName) {
		t.Errorf("expected ErrReservedName, got %v", err)
	}
}

func TestRegistry_Builtins(t *testing.T) {
	dir := t.TempDir()
	r := quietRegistry(WithProcessEnv([]string{"GREETING=hello", "DIR=" + dir}))

	tests := []struct {
		name string
		body string
		want any
	}{
		{"env", `env("GREETING")`, "hello"},
		{"env missing", `env("NOPE")`, ""},
		{"path.cat", `path.cat("a", "b", "c")`, "a/b/c"},
		{"path.base", `path.base("/x/y.txt")`, "y.txt"},
		{"path.dir", `path.dir("/x/y.txt")`, "/x"},
		{"file.exists", `file.exists(env("DIR"))`, true},
		{"file.isDir", `file.isDir(env("DIR"))`, true},
		{"file.exists missing", `file.exists(path.cat(env("DIR"), "nope"))`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := r.Create(t.Context(), "function () {"+tt.body+"}", nil)
			if err != nil {
				t.Fatalf("create: %v", err)
			}

			got, err := fn()
			if err != nil {
				t.Fatalf("call: %v", err)
			}

			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRegistry_MungPrefix(t *testing.T) {
	r := quietRegistry()

	fn, err := r.Create(t.Context(),
		`function (list) { mung.prefix(list, "/opt/bin") }`, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := fn("/usr/bin")
	if err != nil {
		t.Fatalf("call: %v", err)
	}

	s, _ := got.(string)
	if !strings.HasPrefix(s, "/opt/bin") || !strings.Contains(s, "/usr/bin") {
		t.Errorf("unexpected list %q", s)
	}
}

func TestRegistry_BuiltinsDisabled(t *testing.T) {
	r := quietRegistry(WithBuiltins(false))

	if _, err := r.Create(t.Context(), `function () { env("HOME") }`, nil); !errors.Is(err, ErrCompile) {
		t.Errorf("expected ErrCompile, got %v", err)
	}
}

func TestRegistry_CapturesAndWarning(t *testing.T) {
	var buf bytes.Buffer

	r := NewRegistry(WithLogger(log.Make(&buf,
		log.WithLevel(log.LevelWarn), log.WithFormat(log.FormatJSON))))

	rec, err := r.CreateRecord(t.Context(),
		"function () { _.a + _['b'] + _.a }", map[string]any{"a": 1})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if !reflect.DeepEqual(rec.Captures(), []string{"a", "b"}) {
		t.Errorf("unexpected captures %v", rec.Captures())
	}

	out := buf.String()
	if !strings.Contains(out, "captured key not in snapshot") ||
		!strings.Contains(out, `"key":"b"`) {
		t.Errorf("expected warning for b, got %q", out)
	}
}

func TestDefaultRegistry(t *testing.T) {
	before := Default().Len()

	fn := MustCreate("function (s) { s + _.suffix }", map[string]any{"suffix": "!"})

	if got, err := fn("hi"); err != nil || got != "hi!" {
		t.Errorf("expected hi!, got %v (%v)", got, err)
	}

	if Default().Len() != before+1 {
		t.Errorf("expected default registry to grow")
	}

	if _, err := Get(ID(before)); err != nil {
		t.Errorf("get: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic for malformed source")
		}
	}()

	MustCreate("nope", nil)
}

func TestRegistry_ParameterOperations(t *testing.T) {
	r := quietRegistry()

	tests := []struct {
		name   string
		source string
		args   []any
		want   any
	}{
		{"add", "function ($x, $y) { return $x + $y; }", []any{3, 4}, 7},
		{"concat", "function (a, b) { a + b }", []any{"x", "y"}, "xy"},
		{"compare", "function (a) { a > 2 }", []any{3}, true},
		{"index", "function (xs, i) { xs[i] }", []any{[]any{"a", "b"}, 1}, "b"},
		{"member", "function (m) { m.k }", []any{map[string]any{"k": 1}}, 1},
		{"builtin on param", "function (xs) { len(xs) }", []any{[]any{1, 2, 3}}, 3},
		{"predicate", "function (xs) { filter(xs, # > 1) }", []any{[]any{1, 2, 3}}, []any{2, 3}},
		{"let binding", "function (n) { let m = n * 2; m + 1 }", []any{4}, 9},
		{"default", "function (a, b = 10) { a * b }", []any{2}, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := r.Create(t.Context(), tt.source, nil)
			if err != nil {
				t.Fatalf("create: %v", err)
			}

			got, err := fn(tt.args...)
			if err != nil {
				t.Fatalf("call: %v", err)
			}

			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v (%T), want %v (%T)", got, got, tt.want, tt.want)
			}
		})
	}
}

func TestRegistry_UnknownNames(t *testing.T) {
	r := quietRegistry()

	tests := []struct {
		name   string
		source string
	}{
		{"free identifier", "function (a) { a + b }"},
		{"free call", "function () { nosuch(1) }"},
		{"misspelled param", "function ($x) { $y }"},
		{"alias of other registry", "function () { __ }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := r.Len()

			_, err := r.Create(t.Context(), tt.source, nil)
			if !errors.Is(err, ErrCompile) {
				t.Fatalf("expected ErrCompile, got %v", err)
			}

			if r.Len() != before {
				t.Errorf("failed compile registered a closure")
			}
		})
	}
}

func TestRegistry_TypedSnapshotIsolation(t *testing.T) {
	r := quietRegistry()

	xs := []int{1, 2}
	tags := map[string]string{"k": "v"}

	fn, err := r.Create(t.Context(), "function () { [_.xs[0], _.tags.k] }",
		map[string]any{"xs": xs, "tags": tags})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	xs[0] = 99
	tags["k"] = "changed"

	got, err := fn()
	if err != nil {
		t.Fatalf("call: %v", err)
	}

	if want := []any{1, "v"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRecord_ParamsDefaultsAreCopies(t *testing.T) {
	r := quietRegistry()

	rec, err := r.CreateRecord(t.Context(), "function (m = {'k': 1}) { m.k }", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	params := rec.Params()

	m, ok := params[0].Default.(map[string]any)
	if !ok {
		t.Fatalf("default is %T, want map[string]any", params[0].Default)
	}

	m["k"] = 99

	got, err := rec.Call()
	if err != nil {
		t.Fatalf("call: %v", err)
	}

	if got != 1 {
		t.Errorf("got %v, want default unchanged (1)", got)
	}
}
