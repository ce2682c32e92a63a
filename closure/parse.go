package closure

import (
	"errors"
	"log/slog"
	"strings"
)

// Literal is the raw text of a function literal split at its delimiters.
type Literal struct {
	Params string // between the first '(' and the last ')' before the body
	Body   string // between the first '{' and the last '}'
}

// Parse splits source into its parameter text and body text.
//
// It fails with [ErrMalformedClosure] if source has no '{' or no '}', or if
// the text preceding the first '{' has no '(' or no ')'. A span whose closing
// delimiter does not follow its opening delimiter is empty.
func Parse(source string) (Literal, error) {
	open := strings.IndexByte(source, '{')
	closing := strings.LastIndexByte(source, '}')

	if open < 0 || closing < 0 {
		return Literal{}, ErrMalformedClosure.
			Wrap(errNoBraces).
			With(slog.String("source", source))
	}

	head := source[:open]

	lparen := strings.IndexByte(head, '(')
	rparen := strings.LastIndexByte(head, ')')

	if lparen < 0 || rparen < 0 {
		return Literal{}, ErrMalformedClosure.
			Wrap(errNoParens).
			With(slog.String("source", source))
	}

	return Literal{
		Params: between(source, lparen, rparen),
		Body:   between(source, open, closing),
	}, nil
}

// between returns s strictly between byte offsets i and j, or "" if j does
// not follow i.
func between(s string, i, j int) string {
	if j <= i {
		return ""
	}

	return s[i+1 : j]
}

var (
	errNoBraces = errors.New("missing '{' or '}'")
	errNoParens = errors.New("missing '(' or ')' before '{'")
)
