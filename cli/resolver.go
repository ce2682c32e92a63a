package cli

import (
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// resolve returns a [kong.ConfigurationLoader] that reads flag values from
// the mapping stored under key in a YAML document.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve("config"), "/path/to/config.yaml")
//
// For example, the following file:
//
//	config:
//	  log-level: debug
//	  log_format: json
//	  log-pretty: false
//
// is equivalent to passing:
//
//	--log-level=debug --log-format=json --no-log-pretty
//
// Keys may spell flag names with hyphens or underscores. Numbers are
// handed to kong as strings. A document that cannot be decoded, or has no
// mapping under key, resolves nothing. Command-line flags override config
// file values.
func resolve(key string) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		var doc map[string]any

		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return config{}, nil //nolint:nilerr
		}

		section, ok := doc[key].(map[string]any)
		if !ok {
			return config{}, nil
		}

		conf := make(config, len(section))
		for name, value := range section {
			conf[name] = flagString(value)
		}

		return conf, nil
	}
}

// config implements [kong.Resolver] for a decoded configuration mapping.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	for _, name := range []string{
		flag.Name,
		strings.ReplaceAll(flag.Name, "-", "_"),
	} {
		if value, ok := r[name]; ok {
			return value, nil
		}
	}

	return nil, nil
}

// flagString converts numeric scalars, including those nested in
// sequences, to the string form kong parses.
func flagString(value any) any {
	switch v := value.(type) {
	case int64:
		return strconv.FormatInt(v, 10)

	case uint64:
		return strconv.FormatUint(v, 10)

	case int:
		return strconv.Itoa(v)

	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)

	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = flagString(e)
		}

		return out

	default:
		return value
	}
}
