package closure

import (
	"log/slog"
	"strings"
	"unicode"

	"github.com/expr-lang/expr"
)

// Param is one entry of a parameter list.
type Param struct {
	Name     string
	Default  any  // value of the default expression, evaluated at creation
	Optional bool // true if the parameter declares a default
}

// String returns the parameter as it would appear in a parameter list.
func (p Param) String() string {
	if !p.Optional {
		return p.Name
	}

	return p.Name + " = " + FormatResult(p.Default)
}

// ParseParams parses a comma-separated parameter list such as
// "a, $b, c = 3". Default expressions may use the builtins.
//
// It fails with [ErrInvalidParam] for empty entries, invalid or duplicate
// names, and required parameters following optional ones, and with
// [ErrReservedName] for the default alias or the lookup function name.
func ParseParams(text string) ([]Param, error) {
	return parseParams(text, DefaultAlias, builtins(nil))
}

func parseParams(text, alias string, env map[string]any) ([]Param, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	entries := splitTopLevel(text)
	params := make([]Param, 0, len(entries))
	seen := make(map[string]bool, len(entries))

	for i, entry := range entries {
		name, def, hasDefault := strings.Cut(entry, "=")
		name = strings.TrimSpace(name)

		invalid := func(reason string) error {
			return ErrInvalidParam.With(
				slog.Int("index", i),
				slog.String("param", strings.TrimSpace(entry)),
				slog.String("reason", reason),
			)
		}

		switch {
		case name == "":
			return nil, invalid("empty parameter")

		case !IsIdentifier(name):
			return nil, invalid("not an identifier")

		case name == alias || name == lookupName:
			return nil, ErrReservedName.With(slog.String("param", name))

		case seen[name]:
			return nil, invalid("duplicate parameter")

		case !hasDefault && len(params) > 0 && params[len(params)-1].Optional:
			return nil, invalid("required parameter follows optional parameter")
		}

		seen[name] = true

		p := Param{Name: name, Optional: hasDefault}

		if hasDefault {
			def = strings.TrimSpace(def)
			if def == "" {
				return nil, invalid("empty default")
			}

			v, err := evalDefault(def, env)
			if err != nil {
				return nil, ErrInvalidParam.Wrap(err).With(
					slog.String("param", name),
					slog.String("default", def),
				)
			}

			p.Default = v
		}

		params = append(params, p)
	}

	return params, nil
}

func evalDefault(text string, env map[string]any) (any, error) {
	program, err := expr.Compile(text, expr.Env(env))
	if err != nil {
		return nil, err
	}

	return expr.Run(program, env)
}

// splitTopLevel splits s on commas that are not nested in brackets or
// quotes, trimming each entry.
func splitTopLevel(s string) []string {
	var (
		entries []string
		depth   int
		quote   rune
		escaped bool
		start   int
	)

	for i, r := range s {
		switch {
		case escaped:
			escaped = false

		case quote != 0:
			switch r {
			case '\\':
				escaped = true
			case quote:
				quote = 0
			}

		case r == '"' || r == '\'' || r == '`':
			quote = r

		case r == '(' || r == '[' || r == '{':
			depth++

		case r == ')' || r == ']' || r == '}':
			depth--

		case r == ',' && depth == 0:
			entries = append(entries, strings.TrimSpace(s[start:i]))
			start = i + 1
		}
	}

	return append(entries, strings.TrimSpace(s[start:]))
}

// IsIdentifier reports whether s is a name usable in a closure body:
// letters, digits, '_' and '$', not starting with a digit.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}

	return true
}
