package scope

import "github.com/CWBudde/gosym-lsp/internal/syntax"

// Processor receives candidate declarations during a walk. Returning false stops the walk.
type Processor func(d Declaration) bool

// IsBoundary reports whether nodes of kind k confine the declarations made inside them.
func IsBoundary(k syntax.Kind) bool {
	switch k {
	case syntax.KindBlock,
		syntax.KindIfStmt,
		syntax.KindSwitchStmt,
		syntax.KindTypeSwitchStmt,
		syntax.KindSelectStmt,
		syntax.KindForStmt,
		syntax.KindCommClause,
		syntax.KindFuncLit,
		syntax.KindTypeCaseClause,
		syntax.KindExprCaseClause:
		return true
	}

	return false
}

// ResolveScopeOwner decides how node takes part in a lookup made at place. When place lies inside
// node (node counts as containing itself) the default walk applies and opaque is false. When the
// lookup comes from outside and node is a scope boundary, node is returned as a single opaque
// unit whose internals stay hidden. Any other node falls back to the default walk.
func ResolveScopeOwner(node, place syntax.Node) (owner syntax.Node, opaque bool) {
	if node.Contains(place) {
		return node, false
	}

	return node, IsBoundary(node.Kind())
}

// ProcessDeclarations offers proc the declarations n makes visible at place. lastParent is the
// child of n on the path to place, or the zero Node when n does not contain place.
func ProcessDeclarations(n, lastParent, place syntax.Node, proc Processor) bool {
	owner, opaque := ResolveScopeOwner(n, place)
	if opaque {
		return offer(owner, proc)
	}

	return processDefault(n, lastParent, place, proc)
}

// WalkUp offers proc every declaration visible at place, innermost scope first. It covers the
// lexical chain up to and including the file's top-level declarations and imports.
func WalkUp(place syntax.Node, proc Processor) bool {
	last := place

	for cur := place.Parent(); cur.IsValid(); last, cur = cur, cur.Parent() {
		if !ProcessDeclarations(cur, last, place, proc) {
			return false
		}
	}

	return true
}

// LookupLocal returns the declarations named name visible at from, innermost first.
func LookupLocal(name string, from syntax.Node) []Declaration {
	var found []Declaration

	WalkUp(from, func(d Declaration) bool {
		if d.Name == name {
			found = append(found, d)
		}
		return true
	})

	return found
}

// offer hands n to proc when n declares a lexically scoped name. Methods and fields are only
// reachable through selectors.
func offer(n syntax.Node, proc Processor) bool {
	d, ok := DeclarationOf(n)
	if !ok || d.Kind == DeclMethod || d.Kind == DeclField {
		return true
	}

	return proc(d)
}

func processDefault(n, lastParent, place syntax.Node, proc Processor) bool {
	if !offer(n, proc) {
		return false
	}

	if !n.Contains(place) {
		return processExposed(n, place, proc)
	}

	switch n.Kind() {
	case syntax.KindFile:
		for _, child := range n.Children() {
			if child == lastParent {
				continue
			}
			if !ProcessDeclarations(child, syntax.Node{}, place, proc) {
				return false
			}
		}
		return true
	case syntax.KindShortVarDecl, syntax.KindVarSpec, syntax.KindConstSpec,
		syntax.KindRangeClause, syntax.KindTypeSwitchGuard:
		// names are not in scope inside their own spec
		return true
	case syntax.KindFuncDecl, syntax.KindMethodDecl, syntax.KindFuncLit:
		if lastParent.Role() == syntax.RoleBody && !processSignature(n, proc) {
			return false
		}
	}

	if !lastParent.IsValid() {
		return true
	}

	for _, prev := range lastParent.PrevSiblings() {
		if !ProcessDeclarations(prev, syntax.Node{}, place, proc) {
			return false
		}
	}

	return true
}

// processExposed offers the names a node declares into its enclosing scope when the walk passes
// it from outside. Expressions, function bodies and type specs are not descended into.
func processExposed(n, place syntax.Node, proc Processor) bool {
	var children []syntax.Node

	switch n.Kind() {
	case syntax.KindImportDecl, syntax.KindConstDecl, syntax.KindVarDecl, syntax.KindTypeDecl,
		syntax.KindLabeledStmt:
		children = n.Children()
	case syntax.KindShortVarDecl, syntax.KindVarSpec, syntax.KindConstSpec,
		syntax.KindRangeClause, syntax.KindTypeSwitchGuard:
		children = n.ChildrenWith(syntax.RoleName)
	default:
		return true
	}

	for _, child := range children {
		if !ProcessDeclarations(child, syntax.Node{}, place, proc) {
			return false
		}
	}

	return true
}

// processSignature offers the receiver, parameters and named results of a function to its body.
func processSignature(fn syntax.Node, proc Processor) bool {
	for _, recv := range fn.ChildrenWith(syntax.RoleRecv) {
		for _, def := range recv.ChildrenWith(syntax.RoleName) {
			if !offer(def, proc) {
				return false
			}
		}
	}

	for _, def := range SignatureParams(fn) {
		if !offer(def, proc) {
			return false
		}
	}

	return true
}

// SignatureParams returns the parameter and named result definitions of a function
// declaration, method declaration or function literal, in source order.
func SignatureParams(fn syntax.Node) []syntax.Node {
	var defs []syntax.Node

	ft := fn.Child(syntax.RoleType)
	for _, list := range ft.Children() {
		for _, decl := range list.Children() {
			defs = append(defs, decl.ChildrenWith(syntax.RoleName)...)
		}
	}

	return defs
}

// EnclosingScope returns the innermost scope node that contains n, or the File node.
func EnclosingScope(n syntax.Node) syntax.Node {
	for cur := n.Parent(); cur.IsValid(); cur = cur.Parent() {
		if IsBoundary(cur.Kind()) || cur.Is(syntax.KindFuncDecl, syntax.KindMethodDecl, syntax.KindFile) {
			return cur
		}
	}

	return syntax.Node{}
}
