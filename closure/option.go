package closure

import "github.com/ardnew/enclose/log"

// DefaultAlias is the name through which a body reads its captured
// snapshot.
const DefaultAlias = "_"

// lookupName is the function injected into every program to resolve a
// closure's snapshot by id.
const lookupName = "__closure__"

type options struct {
	alias      string
	logger     *log.Logger
	processEnv []string
	builtins   bool
}

func makeOptions(opts ...Option) options {
	o := options{
		alias:    DefaultAlias,
		builtins: true,
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// Option configures a [Registry].
type Option func(*options)

// WithAlias sets the name through which bodies read their snapshot.
// Invalid identifiers are ignored.
func WithAlias(alias string) Option {
	return func(o *options) {
		if IsIdentifier(alias) && alias != lookupName {
			o.alias = alias
		}
	}
}

// WithLogger sets the logger used for registry events. If not provided,
// the default logger of package log is used at the time of each event.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = &logger
	}
}

// WithProcessEnv sets the environment read by the env builtin. The format
// is []string{"KEY=VALUE", ...}. If nil, os.Environ() is used.
func WithProcessEnv(env []string) Option {
	return func(o *options) {
		o.processEnv = env
	}
}

// WithBuiltins enables or disables the builtin functions in bodies and
// default expressions.
func WithBuiltins(enabled bool) Option {
	return func(o *options) {
		o.builtins = enabled
	}
}

func (o options) log() log.Logger {
	if o.logger != nil {
		return *o.logger
	}

	return log.Default()
}

func (o options) env() map[string]any {
	if !o.builtins {
		return map[string]any{}
	}

	return builtins(o.processEnv)
}
