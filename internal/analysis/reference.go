package analysis

import (
	"fmt"

	"github.com/CWBudde/gosym-lsp/internal/scope"
	"github.com/CWBudde/gosym-lsp/internal/syntax"
	"github.com/CWBudde/gosym-lsp/internal/types"
)

// RefKind is the resolution strategy of a Reference.
type RefKind uint8

const (
	// RefStructField looks the name up among the fields of Struct, promoted ones included.
	RefStructField RefKind = iota + 1
	// RefTypedConst looks up a value used as a map key of type ExpectedType.
	RefTypedConst
	// RefFunctionOrTypeName looks up a function or type, or a function value when the name is
	// called.
	RefFunctionOrTypeName
	// RefShortVar binds a name of a short variable declaration, honouring redeclaration.
	RefShortVar
	// RefPackageSymbol looks the name up among the package-level declarations of Package.
	RefPackageSymbol
	// RefInterfaceMethod looks the name up among the methods of the interface underlying
	// Receiver.
	RefInterfaceMethod
	// RefMethod looks the name up among the methods declared on Receiver.
	RefMethod
	// RefVarOrConst looks up a variable, constant, function value or type name.
	RefVarOrConst
	// RefPackage looks up an imported package name.
	RefPackage
)

func (k RefKind) String() string {
	switch k {
	case RefStructField:
		return "StructField"
	case RefTypedConst:
		return "TypedConst"
	case RefFunctionOrTypeName:
		return "FunctionOrTypeName"
	case RefShortVar:
		return "ShortVar"
	case RefPackageSymbol:
		return "PackageSymbol"
	case RefInterfaceMethod:
		return "InterfaceMethod"
	case RefMethod:
		return "Method"
	case RefVarOrConst:
		return "VarOrConst"
	case RefPackage:
		return "Package"
	default:
		return "Unknown"
	}
}

// Reference binds an identifier occurrence to one resolution strategy. Only the payload field
// of its kind is set.
type Reference struct {
	Kind  RefKind
	Ident syntax.Node

	Struct       *types.Struct  // RefStructField
	ExpectedType types.Type     // RefTypedConst
	Receiver     types.Type     // RefMethod, RefInterfaceMethod: *Named, *Primitive or *Interface
	Package      *types.Package // RefPackageSymbol

	// Callee marks a RefFunctionOrTypeName on the function of a call.
	Callee bool

	a *Analyzer
}

// Resolve returns the declaration the reference denotes under its strategy.
func (r Reference) Resolve() (scope.Declaration, bool) {
	if r.a == nil {
		return scope.Declaration{}, false
	}

	return r.a.newQuery().resolveRef(r)
}

func (r Reference) String() string {
	s := fmt.Sprintf("%s(%s)", r.Kind, r.Ident.Text())

	switch r.Kind {
	case RefStructField:
		s += " in " + r.Struct.String()
	case RefTypedConst:
		s += " of " + typeString(r.ExpectedType)
	case RefMethod, RefInterfaceMethod:
		s += " on " + typeString(r.Receiver)
	case RefPackageSymbol:
		s += " in " + r.Package.Path
	}

	return s
}

func typeString(t types.Type) string {
	if t == nil {
		return "?"
	}

	return t.String()
}

var (
	valueKinds = acceptKinds(scope.DeclVariable, scope.DeclParameter, scope.DeclReceiver,
		scope.DeclConst, scope.DeclFunction, scope.DeclTypeSpec)
	typedConstKinds = acceptKinds(scope.DeclConst, scope.DeclVariable, scope.DeclParameter,
		scope.DeclReceiver)
	funcOrTypeKinds = acceptKinds(scope.DeclFunction, scope.DeclTypeSpec)
	calleeKinds     = acceptKinds(scope.DeclFunction, scope.DeclTypeSpec, scope.DeclVariable,
		scope.DeclParameter, scope.DeclReceiver)
	packageKinds = acceptKinds(scope.DeclPackage)
)

func (q *query) resolveRef(r Reference) (scope.Declaration, bool) {
	name := r.Ident.Text()

	switch r.Kind {
	case RefStructField:
		return q.lookupField(r.Struct, name, 0)
	case RefTypedConst:
		return q.lookupName(r.Ident, name, typedConstKinds)
	case RefFunctionOrTypeName:
		if r.Callee {
			return q.lookupName(r.Ident, name, calleeKinds)
		}
		return q.lookupName(r.Ident, name, funcOrTypeKinds)
	case RefShortVar:
		return q.resolveShortVar(r.Ident)
	case RefPackageSymbol:
		return first(q.a.index.LookupImported(r.Package.Path, name))
	case RefInterfaceMethod:
		return q.lookupInterfaceMethod(r.Receiver, name, 0)
	case RefMethod:
		return q.lookupMethod(r.Receiver, r.Ident, name)
	case RefVarOrConst:
		return q.lookupName(r.Ident, name, valueKinds)
	case RefPackage:
		return q.lookupName(r.Ident, name, packageKinds)
	}

	return scope.Declaration{}, false
}

func first(decls []scope.Declaration) (scope.Declaration, bool) {
	if len(decls) == 0 {
		return scope.Declaration{}, false
	}

	return decls[0], true
}
