package closure

import (
	"slices"

	"github.com/expr-lang/expr/ast"
)

// envIdentifier is the expr variable naming the whole environment.
const envIdentifier = "$env"

// captureVisitor records the snapshot keys a body reads through the alias,
// in order of first appearance.
//
// Both _.key and _['key'] parse to a MemberNode whose base is the alias
// identifier and whose property is a constant string.
type captureVisitor struct {
	alias string
	keys  []string
}

// Visit implements ast.Visitor.
func (v *captureVisitor) Visit(node *ast.Node) {
	member, ok := (*node).(*ast.MemberNode)
	if !ok {
		return
	}

	base, ok := member.Node.(*ast.IdentifierNode)
	if !ok || base.Value != v.alias {
		return
	}

	prop, ok := member.Property.(*ast.StringNode)
	if !ok {
		return
	}

	if !slices.Contains(v.keys, prop.Value) {
		v.keys = append(v.keys, prop.Value)
	}
}

// scopeVisitor records the identifiers a body references and the names it
// binds with let. Scoping is not tracked: a let anywhere in the body makes
// its name known everywhere.
type scopeVisitor struct {
	used     []string
	declared []string
}

// Visit implements ast.Visitor.
func (v *scopeVisitor) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		if !slices.Contains(v.used, n.Value) {
			v.used = append(v.used, n.Value)
		}

	case *ast.VariableDeclaratorNode:
		v.declared = append(v.declared, n.Name)
	}
}

// free returns the referenced identifiers that are neither declared by the
// body nor accepted by known, in order of first appearance.
func (v *scopeVisitor) free(known func(string) bool) []string {
	var names []string

	for _, name := range v.used {
		if name == envIdentifier || slices.Contains(v.declared, name) || known(name) {
			continue
		}

		names = append(names, name)
	}

	return names
}
