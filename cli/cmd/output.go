package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/enclose/closure"
)

// defaultIndent is the indent width of JSON and YAML output.
const defaultIndent = 2

// Output formats.
const (
	formatNative = "native"
	formatJSON   = "json"
	formatYAML   = "yaml"
)

// writeValue writes v to w in the given format. Native output is
// [closure.FormatResult], except that a string result is written as is.
func writeValue(ctx context.Context, w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		data, err := json.MarshalIndent(v, "", strings.Repeat(" ", defaultIndent))
		if err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		_, err = fmt.Fprintln(w, string(data))

		return err

	case formatYAML:
		data, err := yaml.MarshalContext(ctx, v, yaml.Indent(defaultIndent))
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		_, err = fmt.Fprint(w, string(data))

		return err

	default:
		// A string result is printed verbatim; strings nested in lists and
		// maps are quoted when needed.
		if s, ok := v.(string); ok {
			_, err := fmt.Fprintln(w, s)

			return err
		}

		_, err := fmt.Fprintln(w, closure.FormatResult(v))

		return err
	}
}
