package closure

// This file defines the builtin environment available to closure bodies and
// default parameter expressions. The static part is built once per process
// and cloned on every access so callers may add parameter bindings without
// affecting the shared copy.

import (
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/ardnew/mung"
)

//nolint:gochecknoglobals
var (
	builtinOnce  sync.Once
	builtinCache map[string]any
)

// builtins returns a fresh copy of the builtin environment. The env
// function reads processEnv ("KEY=VALUE" entries), or the process
// environment if processEnv is nil.
func builtins(processEnv []string) map[string]any {
	builtinOnce.Do(func() {
		builtinCache = map[string]any{
			"path": map[string]any{
				"abs":  pathAbs,
				"cat":  pathCat,
				"rel":  pathRel,
				"base": filepath.Base,
				"dir":  filepath.Dir,
			},
			"file": map[string]any{
				"exists": fileExists,
				"isDir":  fileIsDir,
			},
			"mung": map[string]any{
				"prefix":   mungPrefix,
				"prefixif": mungPrefixIf,
			},
		}
	})

	env := maps.Clone(builtinCache)
	env["env"] = envFunc(processEnv)

	return env
}

// Builtins returns a copy of the builtin environment. The env function
// reads processEnv, or the process environment if processEnv is nil.
func Builtins(processEnv []string) map[string]any {
	return builtins(processEnv)
}

// BuiltinNames returns the sorted names of the builtins, with namespaced
// functions in dotted form (e.g. "path.abs").
func BuiltinNames() []string {
	var names []string

	for k, v := range builtins(nil) {
		m, ok := v.(map[string]any)
		if !ok {
			names = append(names, k)

			continue
		}

		for sub := range m {
			names = append(names, k+"."+sub)
		}
	}

	slices.Sort(names)

	return names
}

func fileExists(path string) bool {
	_, err := os.Stat(path)

	return !os.IsNotExist(err)
}

func fileIsDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return info.IsDir()
}

func pathAbs(path string) string {
	p, err := filepath.Abs(path)
	if err != nil {
		return path
	}

	return p
}

func pathCat(elem ...string) string {
	return filepath.Join(elem...)
}

func pathRel(from, to string) string {
	p, err := filepath.Rel(pathAbs(from), pathAbs(to))
	if err != nil {
		return pathCat(from, to)
	}

	return p
}

func mungPrefix(list string, prefix ...string) string {
	return mung.Make(
		mung.WithSubjectItems(list),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
	).String()
}

func mungPrefixIf(
	list string,
	predicate func(string) bool,
	prefix ...string,
) string {
	return mung.Make(
		mung.WithSubjectItems(list),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
		mung.WithFilter(predicate),
	).String()
}

// processEnvMap converts "KEY=VALUE" entries to a map.
func processEnvMap(entries []string) map[string]string {
	result := make(map[string]string, len(entries))

	for _, entry := range entries {
		if key, value, ok := strings.Cut(entry, "="); ok {
			result[key] = value
		}
	}

	return result
}

// envFunc returns the env builtin. A nil entries reads the live process
// environment.
func envFunc(entries []string) func(string) string {
	if entries == nil {
		return os.Getenv
	}

	processEnv := processEnvMap(entries)

	return func(key string) string {
		return processEnv[key]
	}
}
