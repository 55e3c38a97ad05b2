// Package scope implements lexical scoping over syntax trees: which nodes declare names, which
// constructs bound the visibility of those names, and the outward walk that collects the
// declarations visible at a given place.
package scope

import (
	"go/token"

	"github.com/CWBudde/gosym-lsp/internal/syntax"
)

// DeclKind classifies what a declaration introduces.
type DeclKind uint8

const (
	DeclInvalid DeclKind = iota
	DeclVariable
	DeclParameter
	DeclField
	DeclReceiver
	DeclConst
	DeclFunction
	DeclMethod
	DeclTypeSpec
	DeclPackage
)

func (k DeclKind) String() string {
	switch k {
	case DeclVariable:
		return "var"
	case DeclParameter:
		return "param"
	case DeclField:
		return "field"
	case DeclReceiver:
		return "receiver"
	case DeclConst:
		return "const"
	case DeclFunction:
		return "func"
	case DeclMethod:
		return "method"
	case DeclTypeSpec:
		return "type"
	case DeclPackage:
		return "package"
	default:
		return "invalid"
	}
}

// Declaration is a named entity introduced by a node of a syntax tree.
type Declaration struct {
	Kind DeclKind
	Name string
	Node syntax.Node
}

// IsValid reports whether d refers to a declaring node.
func (d Declaration) IsValid() bool {
	return d.Kind != DeclInvalid && d.Node.IsValid()
}

// Pos returns the position of the declared name.
func (d Declaration) Pos() token.Pos {
	return d.Node.NamePos()
}

// Position returns the file position of the declared name.
func (d Declaration) Position() token.Position {
	return d.Node.Position()
}

// File returns the tree the declaration belongs to.
func (d Declaration) File() *syntax.Tree {
	return d.Node.Tree()
}

func (d Declaration) String() string {
	return d.Kind.String() + " " + d.Name
}

var declKinds = map[syntax.Kind]DeclKind{
	syntax.KindVarDef:         DeclVariable,
	syntax.KindParamDef:       DeclParameter,
	syntax.KindFieldDef:       DeclField,
	syntax.KindAnonymousField: DeclField,
	syntax.KindReceiverDef:    DeclReceiver,
	syntax.KindConstDef:       DeclConst,
	syntax.KindFuncDecl:       DeclFunction,
	syntax.KindMethodDecl:     DeclMethod,
	syntax.KindMethodSpec:     DeclMethod,
	syntax.KindTypeSpec:       DeclTypeSpec,
	syntax.KindImportSpec:     DeclPackage,
}

// DeclarationOf returns the declaration n introduces. Blank names and dot or blank imports
// declare nothing that can be referred to.
func DeclarationOf(n syntax.Node) (Declaration, bool) {
	kind, ok := declKinds[n.Kind()]
	if !ok {
		return Declaration{}, false
	}

	name := n.Text()
	if name == "" || name == "_" || name == "." {
		return Declaration{}, false
	}

	return Declaration{Kind: kind, Name: name, Node: n}, true
}

// IsPackageLevel reports whether d is declared at the top level of its file.
func (d Declaration) IsPackageLevel() bool {
	switch d.Kind {
	case DeclFunction, DeclMethod:
		return d.Node.Is(syntax.KindFuncDecl, syntax.KindMethodDecl)
	case DeclVariable, DeclConst, DeclTypeSpec:
		group := d.Node.Parent()
		if d.Kind != DeclTypeSpec {
			group = group.Parent()
		}
		return group.Parent().Is(syntax.KindFile)
	}

	return false
}
