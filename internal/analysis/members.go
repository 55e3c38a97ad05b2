package analysis

import (
	"github.com/CWBudde/gosym-lsp/internal/scope"
	"github.com/CWBudde/gosym-lsp/internal/syntax"
	"github.com/CWBudde/gosym-lsp/internal/types"
)

// maxEmbedDepth bounds the search for promoted fields and methods through embedded types.
const maxEmbedDepth = 8

// lookupField finds field or promoted member name of st. Direct fields win over members
// promoted from embedded types, and shallower embeddings over deeper ones.
func (q *query) lookupField(st *types.Struct, name string, depth int) (scope.Declaration, bool) {
	if st == nil || depth > maxEmbedDepth {
		return scope.Declaration{}, false
	}

	if f, ok := st.Field(name); ok {
		return scope.DeclarationOf(f.Decl)
	}

	var deeper []types.Type

	for _, f := range st.Fields {
		if !f.Embedded {
			continue
		}

		t := types.Deref(q.typeOfTypeExpr(f.TypeExpr))

		if named, ok := t.(*types.Named); ok {
			if d, ok := q.lookupMethod(named, f.Decl, name); ok {
				return d, true
			}
		}

		switch u := types.Underlying(t).(type) {
		case *types.Struct:
			if inner, ok := u.Field(name); ok {
				return scope.DeclarationOf(inner.Decl)
			}
			deeper = append(deeper, u)
		case *types.Interface:
			if d, ok := q.lookupInterfaceMethod(u, name, depth+1); ok {
				return d, true
			}
		}
	}

	for _, t := range deeper {
		if d, ok := q.lookupField(t.(*types.Struct), name, depth+1); ok {
			return d, true
		}
	}

	return scope.Declaration{}, false
}

// lookupInterfaceMethod finds method name of the interface recv is or is defined as,
// including methods of embedded interfaces.
func (q *query) lookupInterfaceMethod(recv types.Type, name string, depth int) (scope.Declaration, bool) {
	if depth > maxEmbedDepth {
		return scope.Declaration{}, false
	}

	iface, ok := types.Underlying(recv).(*types.Interface)
	if !ok {
		return scope.Declaration{}, false
	}

	for _, m := range iface.Methods {
		if m.Name == name && m.Decl.IsValid() {
			return scope.DeclarationOf(m.Decl)
		}
	}

	for _, embedded := range iface.Embedded {
		if d, ok := q.lookupInterfaceMethod(q.typeOfTypeExpr(embedded), name, depth+1); ok {
			return d, true
		}
	}

	return scope.Declaration{}, false
}

// lookupMethod finds a method declared on recv. Methods of a named type are looked up in the
// package of its declaration; a primitive receiver only matches a locally defined type of the
// same name, looked up from the file of ident.
func (q *query) lookupMethod(recv types.Type, ident syntax.Node, name string) (scope.Declaration, bool) {
	switch t := recv.(type) {
	case *types.Named:
		if !t.Spec.IsValid() {
			return scope.Declaration{}, false
		}
		return first(q.a.index.LookupMethods(t.Spec.Tree(), t.Name, name))
	case *types.Primitive:
		if !ident.IsValid() {
			return scope.Declaration{}, false
		}
		return first(q.a.index.LookupMethods(ident.Tree(), t.Name, name))
	}

	return scope.Declaration{}, false
}
