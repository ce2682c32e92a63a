// Package closure builds callables from function-literal source text and a
// frozen snapshot of captured values.
//
// A literal has the shape
//
//	function (a, b = 2) { return a + b + _.offset; }
//
// The text between the first '(' and the last ')' preceding the body is the
// parameter list. The text between the first '{' and the last '}' is the body.
// Anything before the parameter list (the "function" keyword, a name) is
// ignored.
//
// # Bodies
//
// Bodies are expr-lang programs (see https://expr-lang.org). Two conveniences
// are accepted so that literals written for other hosts read naturally: a
// statement may begin with the keyword "return", and trailing semicolons are
// dropped. Statements are separated by ';' and the value of the last one is
// the result. An empty body yields nil.
//
// # Captured values
//
// Every closure is registered under an integer id. Its body is compiled with
// the prelude
//
//	let _ = __closure__(<id>);
//
// so the reserved alias (default "_", see [WithAlias]) holds a copy of the
// snapshot taken when the closure was created. Snapshot keys are read with
// member syntax, _.key or _['key']. Mutating the original map after creation
// has no effect on the closure.
//
// # Builtins
//
// Unless disabled with [WithBuiltins], bodies may call:
//
//	env(key)                     process environment variable
//	path.abs(p)                  absolute path
//	path.cat(elem...)            join path elements
//	path.rel(from, to)           relative path
//	path.base(p), path.dir(p)    last element, all but the last element
//	file.exists(p), file.isDir(p)
//	mung.prefix(list, item...)   prepend unique items to a PATH-like list
//	mung.prefixif(list, pred, item...)
//
// Parsing does not understand string or comment syntax: braces and
// parentheses inside quoted text are treated as delimiters.
package closure
