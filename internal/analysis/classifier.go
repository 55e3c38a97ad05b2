package analysis

import (
	"fmt"

	"github.com/CWBudde/gosym-lsp/internal/scope"
	"github.com/CWBudde/gosym-lsp/internal/syntax"
	"github.com/CWBudde/gosym-lsp/internal/types"
)

func (q *query) ref(kind RefKind, n syntax.Node) Reference {
	return Reference{Kind: kind, Ident: n, a: q.a}
}

// classify picks the resolution strategies for an identifier from the shape around it. The
// first matching context wins.
func (q *query) classify(n syntax.Node) []Reference {
	if isShortVarName(n) && !IsBlank(n) {
		return []Reference{q.ref(RefShortVar, n)}
	}

	if n.Kind() != syntax.KindIdent || IsBlank(n) || IsNil(n) {
		return nil
	}

	parent := n.Parent()

	switch {
	case n.Role() == syntax.RoleKey && parent.Kind() == syntax.KindKeyedElement:
		return q.compositeKeyRefs(n, parent.Parent())

	case n.Role() == syntax.RoleName && parent.Kind() == syntax.KindTypeName:
		if qual := parent.Child(syntax.RoleQualifier); qual.IsValid() {
			return q.qualifiedRefs(n, qual)
		}
		return []Reference{q.ref(RefFunctionOrTypeName, n)}

	case n.Role() == syntax.RoleFun && parent.Is(syntax.KindCallExpr, syntax.KindBuiltinCall):
		r := q.ref(RefFunctionOrTypeName, n)
		r.Callee = true
		return []Reference{r}

	case n.Role() == syntax.RoleSel && parent.Kind() == syntax.KindSelectorExpr:
		return q.selectorRefs(n, parent)

	case n.Role() == syntax.RoleQualifier && parent.Kind() == syntax.KindTypeName:
		return []Reference{q.ref(RefPackage, n)}

	case n.Kind().IsExpression():
		return []Reference{q.ref(RefVarOrConst, n), q.ref(RefPackage, n)}
	}

	return nil
}

// compositeKeyRefs handles the key of a keyed element: a field name for struct literals, a
// value of the key type for map literals.
func (q *query) compositeKeyRefs(n, lit syntax.Node) []Reference {
	switch u := literalUnderlying(q.inferType(lit)).(type) {
	case *types.Struct:
		r := q.ref(RefStructField, n)
		r.Struct = u
		return []Reference{r}
	case *types.Map:
		r := q.ref(RefTypedConst, n)
		r.ExpectedType = u.Key
		return []Reference{r}
	}

	return nil
}

// literalUnderlying returns the structure a composite literal of type t builds. Elided element
// literals of pointer type build the pointee.
func literalUnderlying(t types.Type) types.Type {
	u := types.Underlying(t)
	if p, ok := u.(*types.Pointer); ok {
		return types.Underlying(p.Target)
	}

	return u
}

// qualifiedRefs handles the name of a qualified type reference pkg.T.
func (q *query) qualifiedRefs(n, qual syntax.Node) []Reference {
	d, ok := q.lookupName(qual, qual.Text(), packageKinds)
	if !ok {
		return nil
	}

	pkg := packageType(d)
	if pkg.IsC() {
		return nil
	}

	r := q.ref(RefPackageSymbol, n)
	r.Package = pkg

	return []Reference{r}
}

// selectorRefs handles the selected name of base.Name against every candidate type of base.
func (q *query) selectorRefs(n, sel syntax.Node) []Reference {
	base := sel.Child(syntax.RoleX)
	if !base.IsValid() {
		panic(fmt.Sprintf("analysis: selector %s has no base expression", sel))
	}

	var candidates []types.Type

	switch t := q.inferType(base).(type) {
	case nil:
	case *types.Tuple:
		candidates = t.Types
	default:
		candidates = []types.Type{t}
	}

	return types.VisitAll[[]Reference](candidates, nil, q.selectorVisitor(n))
}

func (q *query) selectorVisitor(n syntax.Node) *types.Visitor[[]Reference] {
	return &types.Visitor[[]Reference]{
		Pointer: func(t *types.Pointer, refs []Reference, v *types.Visitor[[]Reference]) []Reference {
			return types.Visit(t.Target, refs, v)
		},
		Package: func(t *types.Package, refs []Reference, _ *types.Visitor[[]Reference]) []Reference {
			if t.IsC() {
				return refs
			}
			r := q.ref(RefPackageSymbol, n)
			r.Package = t
			return append(refs, r)
		},
		Named: func(t *types.Named, refs []Reference, v *types.Visitor[[]Reference]) []Reference {
			iface := q.ref(RefInterfaceMethod, n)
			iface.Receiver = t
			method := q.ref(RefMethod, n)
			method.Receiver = t
			refs = append(refs, iface, method)

			// members of the underlying structure are promoted onto the named type
			switch u := types.Underlying(t).(type) {
			case nil, *types.Interface:
			default:
				refs = types.Visit(u, refs, v)
			}
			return refs
		},
		Primitive: func(t *types.Primitive, refs []Reference, _ *types.Visitor[[]Reference]) []Reference {
			r := q.ref(RefMethod, n)
			r.Receiver = t
			return append(refs, r)
		},
		Struct: func(t *types.Struct, refs []Reference, _ *types.Visitor[[]Reference]) []Reference {
			r := q.ref(RefStructField, n)
			r.Struct = t
			return append(refs, r)
		},
		Interface: func(t *types.Interface, refs []Reference, _ *types.Visitor[[]Reference]) []Reference {
			r := q.ref(RefInterfaceMethod, n)
			r.Receiver = t
			return append(refs, r)
		},
	}
}

// isShortVarName reports whether n is a name on the left of :=.
func isShortVarName(n syntax.Node) bool {
	return n.Kind() == syntax.KindVarDef && n.Role() == syntax.RoleName &&
		n.Parent().Kind() == syntax.KindShortVarDecl
}

// resolveShortVar binds a name of a short variable declaration. A variable already declared
// earlier in the same block (or as a parameter, when the block is a function body) is
// redeclared; otherwise the name declares a new variable.
func (q *query) resolveShortVar(n syntax.Node) (scope.Declaration, bool) {
	self, ok := scope.DeclarationOf(n)
	if !ok {
		return scope.Declaration{}, false
	}

	decl := n.Parent()
	container := decl.Parent()

	redeclarable := func(d scope.Declaration) bool {
		return d.Name == self.Name &&
			(d.Kind == scope.DeclVariable || d.Kind == scope.DeclParameter || d.Kind == scope.DeclReceiver)
	}

	if container.Kind() == syntax.KindBlock && container.Role() == syntax.RoleBody {
		fn := container.Parent()
		if fn.Is(syntax.KindFuncDecl, syntax.KindMethodDecl, syntax.KindFuncLit) {
			var defs []syntax.Node
			for _, recv := range fn.ChildrenWith(syntax.RoleRecv) {
				defs = append(defs, recv.ChildrenWith(syntax.RoleName)...)
			}
			defs = append(defs, scope.SignatureParams(fn)...)

			for _, def := range defs {
				if d, ok := scope.DeclarationOf(def); ok && redeclarable(d) {
					return d, true
				}
			}
		}
	}

	var original scope.Declaration

	// siblings come nearest first; the earliest match is the original declaration
	for _, sibling := range decl.PrevSiblings() {
		scope.ProcessDeclarations(sibling, syntax.Node{}, n, func(d scope.Declaration) bool {
			if redeclarable(d) {
				original = d
			}
			return true
		})
	}

	if original.IsValid() {
		return original, true
	}

	return self, true
}
