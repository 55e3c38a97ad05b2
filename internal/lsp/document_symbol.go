package lsp

import (
	"log"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/gosym-lsp/internal/analysis"
	"github.com/CWBudde/gosym-lsp/internal/document"
	"github.com/CWBudde/gosym-lsp/internal/scope"
	"github.com/CWBudde/gosym-lsp/internal/syntax"
	"github.com/CWBudde/gosym-lsp/internal/workspace"
)

// DocumentSymbol handles the textDocument/documentSymbol request.
// It returns the package-level declarations of the document for the outline view, with struct
// fields and interface methods nested under their type.
func DocumentSymbol(context *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	srv := getServer("DocumentSymbol")
	if srv == nil {
		return nil, nil
	}

	uri := params.TextDocument.URI
	log.Printf("DocumentSymbol request for %s\n", uri)

	doc, exists := srv.Documents().Get(uri)
	if !exists {
		log.Printf("Document not found for document symbols: %s\n", uri)
		return nil, nil
	}

	if doc.Tree == nil {
		return []protocol.DocumentSymbol{}, nil
	}

	symbols := collectDocumentSymbols(srv.Analyzer(), doc.Lines(), doc.Tree)

	log.Printf("Found %d top-level symbols in %s\n", len(symbols), uri)

	return symbols, nil
}

func collectDocumentSymbols(a *analysis.Analyzer, text *document.Text, tree *syntax.Tree) []protocol.DocumentSymbol {
	symbols := []protocol.DocumentSymbol{}

	for _, d := range workspace.PackageDeclarations(tree) {
		sym := declarationSymbol(a, text, d)

		if d.Kind == scope.DeclMethod {
			sym.Name = "(" + containerName(d) + ")." + d.Name
		}

		if d.Kind == scope.DeclTypeSpec {
			for _, member := range memberDeclarations(d.Node.Child(syntax.RoleType)) {
				sym.Children = append(sym.Children, declarationSymbol(a, text, member))
			}
		}

		symbols = append(symbols, sym)
	}

	return symbols
}

// memberDeclarations returns the fields of a struct type or the methods of an interface type.
func memberDeclarations(typeExpr syntax.Node) []scope.Declaration {
	var members []scope.Declaration

	switch typeExpr.Kind() {
	case syntax.KindStructType:
		for _, field := range typeExpr.ChildrenWith(syntax.RoleElem) {
			for _, def := range field.Children() {
				if d, ok := scope.DeclarationOf(def); ok && d.Kind == scope.DeclField {
					members = append(members, d)
				}
			}
		}
	case syntax.KindInterfaceType:
		for _, method := range typeExpr.ChildrenWith(syntax.RoleElem) {
			if d, ok := scope.DeclarationOf(method); ok {
				members = append(members, d)
			}
		}
	}

	return members
}

func declarationSymbol(a *analysis.Analyzer, text *document.Text, d scope.Declaration) protocol.DocumentSymbol {
	n := d.Node
	tree := n.Tree()

	start := tree.Position(n.Pos())
	end := tree.Position(n.End())
	name := n.Position()

	selection := protocol.Range{
		Start: text.LSPPosition(name.Line, name.Column),
		End:   text.LSPPosition(name.Line, name.Column+len(d.Name)),
	}

	detail := Describe(a, n)

	return protocol.DocumentSymbol{
		Name:           d.Name,
		Detail:         &detail,
		Kind:           symbolKind(d),
		Range:          protocol.Range{Start: text.LSPPosition(start.Line, start.Column), End: text.LSPPosition(end.Line, end.Column)},
		SelectionRange: selection,
	}
}
