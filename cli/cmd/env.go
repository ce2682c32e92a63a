package cmd

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/enclose/closure"
	"github.com/ardnew/enclose/log"
)

// loadEnv builds a captured environment from YAML or JSON mapping files,
// read in order, followed by KEY=VALUE pairs. Later entries win.
func loadEnv(
	ctx context.Context,
	files []string,
	pairs []string,
) (map[string]any, error) {
	env := make(map[string]any)

	if len(files) > 0 {
		srcs, err := openSources(files)
		if err != nil {
			return nil, ErrEnvFile.Wrap(err)
		}
		defer srcs.Close()

		for name, r := range srcs.All() {
			m, err := decodeEnv(r)
			if err != nil {
				return nil, ErrEnvFile.Wrap(err).With(slog.String("file", name))
			}

			log.DebugContext(ctx, "loaded environment file",
				slog.String("file", name),
				slog.Int("keys", len(m)))

			maps.Copy(env, m)
		}
	}

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || !closure.IsIdentifier(key) {
			return nil, ErrEnvPair.With(slog.String("entry", pair))
		}

		env[key] = closure.ParseValue(value)
	}

	return env, nil
}

// decodeEnv reads a single YAML (or JSON) mapping. An empty document
// yields an empty map.
func decodeEnv(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	out, _ := normalizeValue(m).(map[string]any)
	if out == nil {
		out = map[string]any{}
	}

	return out, nil
}

// normalizeValue converts decoded YAML values to the shapes closures
// expect: integers become int and nested sequences and mappings become
// []any and map[string]any.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case int64:
		return int(val)

	case uint64:
		if val <= uint64(^uint(0)>>1) {
			return int(val)
		}

		return val

	case []any:
		for i, e := range val {
			val[i] = normalizeValue(e)
		}

		return val

	case map[string]any:
		for k, e := range val {
			val[k] = normalizeValue(e)
		}

		return val

	case map[any]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[toString(k)] = normalizeValue(e)
		}

		return out

	default:
		return v
	}
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}

	return closure.FormatResult(v)
}
