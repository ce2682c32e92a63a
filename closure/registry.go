package closure

import (
	"context"
	"iter"
	"log/slog"
	"sync"
)

// Registry allocates ids to closures and owns their records. Records are
// never removed. A Registry is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	next    ID
	records map[ID]*Record
	opts    options
	base    map[string]any // builtins shared by every call
}

// NewRegistry returns an empty Registry configured by opts.
func NewRegistry(opts ...Option) *Registry {
	o := makeOptions(opts...)

	return &Registry{
		records: make(map[ID]*Record),
		opts:    o,
		base:    o.env(),
	}
}

// Create parses source, snapshots env, and registers a closure, returning
// its callable. env may be nil.
//
// Parse failures return [ErrMalformedClosure], [ErrInvalidParam], or
// [ErrReservedName]; a body that does not compile returns [ErrCompile].
// A failed Create registers nothing and consumes no id.
func (r *Registry) Create(
	ctx context.Context,
	source string,
	env map[string]any,
) (Func, error) {
	rec, err := r.CreateRecord(ctx, source, env)
	if err != nil {
		return nil, err
	}

	return rec.callable, nil
}

// CreateRecord is like [Registry.Create] but returns the new record.
func (r *Registry) CreateRecord(
	ctx context.Context,
	source string,
	env map[string]any,
) (*Record, error) {
	logger := r.opts.log()

	lit, err := Parse(source)
	if err != nil {
		logger.DebugContext(ctx, "closure rejected", slog.Any("error", err))

		return nil, err
	}

	params, err := parseParams(lit.Params, r.opts.alias, r.opts.env())
	if err != nil {
		logger.DebugContext(ctx, "closure rejected", slog.Any("error", err))

		return nil, err
	}

	snapshot := copyMap(env)
	if snapshot == nil {
		snapshot = map[string]any{}
	}

	minArity := 0
	for _, p := range params {
		if !p.Optional {
			minArity++
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.next

	program, captures, err := r.compile(id, params, lit.Body)
	if err != nil {
		logger.DebugContext(ctx, "closure rejected", slog.Any("error", err))

		return nil, err
	}

	rec := &Record{
		id:       id,
		source:   source,
		literal:  lit,
		params:   params,
		env:      snapshot,
		captures: captures,
		program:  program,
		base:     r.base,
		logger:   logger,
		minArity: minArity,
	}
	rec.callable = rec.Call

	r.records[id] = rec
	r.next++

	for _, key := range captures {
		if _, ok := snapshot[key]; !ok {
			logger.WarnContext(ctx, "captured key not in snapshot",
				slog.Int("id", int(id)),
				slog.String("key", key))
		}
	}

	logger.DebugContext(ctx, "closure created",
		slog.Int("id", int(id)),
		slog.Int("params", len(params)),
		slog.Int("captured", len(snapshot)))

	return rec, nil
}

// Get returns the record registered under id, or [ErrNotFound].
func (r *Registry) Get(id ID) (*Record, error) {
	r.mu.RLock()
	rec, ok := r.records[id]
	r.mu.RUnlock()

	if !ok {
		err := ErrNotFound.With(slog.Int("id", int(id)))
		r.opts.log().Debug("closure lookup failed", slog.Any("error", err))

		return nil, err
	}

	return rec, nil
}

// Len returns the number of registered closures.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.records)
}

// All iterates over the registered closures in id order. Closures created
// during iteration are not visited.
func (r *Registry) All() iter.Seq2[ID, *Record] {
	return func(yield func(ID, *Record) bool) {
		r.mu.RLock()
		n := r.next
		recs := make([]*Record, 0, n)

		for id := range n {
			recs = append(recs, r.records[id])
		}
		r.mu.RUnlock()

		for _, rec := range recs {
			if !yield(rec.id, rec) {
				return
			}
		}
	}
}

// Alias returns the name through which bodies read their snapshot.
func (r *Registry) Alias() string { return r.opts.alias }

//nolint:gochecknoglobals
var defaultRegistry = NewRegistry()

// Default returns the process-wide registry used by [Create] and [Get].
func Default() *Registry { return defaultRegistry }

// Create registers a closure in the default registry.
func Create(ctx context.Context, source string, env map[string]any) (Func, error) {
	return defaultRegistry.Create(ctx, source, env)
}

// Get returns a record from the default registry.
func Get(id ID) (*Record, error) {
	return defaultRegistry.Get(id)
}

// MustCreate is like [Create] but panics on error.
func MustCreate(source string, env map[string]any) Func {
	fn, err := Create(context.Background(), source, env)
	if err != nil {
		panic(err)
	}

	return fn
}
