package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/gosym-lsp/internal/scope"
	"github.com/CWBudde/gosym-lsp/internal/syntax"
)

// symbolKind maps a declaration to the closest LSP symbol kind.
func symbolKind(d scope.Declaration) protocol.SymbolKind {
	switch d.Kind {
	case scope.DeclFunction:
		return protocol.SymbolKindFunction
	case scope.DeclMethod:
		return protocol.SymbolKindMethod
	case scope.DeclField:
		return protocol.SymbolKindField
	case scope.DeclConst:
		return protocol.SymbolKindConstant
	case scope.DeclPackage:
		return protocol.SymbolKindPackage
	case scope.DeclTypeSpec:
		switch d.Node.Child(syntax.RoleType).Kind() {
		case syntax.KindStructType:
			return protocol.SymbolKindStruct
		case syntax.KindInterfaceType:
			return protocol.SymbolKindInterface
		}
		return protocol.SymbolKindClass
	}

	return protocol.SymbolKindVariable
}

// containerName returns the receiver type of a method, or the package name for other
// declarations.
func containerName(d scope.Declaration) string {
	if recv := d.Node.Child(syntax.RoleRecv); recv.IsValid() {
		return recv.Value()
	}

	return d.File().PackageName()
}
