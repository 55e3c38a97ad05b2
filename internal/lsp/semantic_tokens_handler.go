package lsp

import (
	"log"
	"unicode/utf16"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/gosym-lsp/internal/analysis"
	"github.com/CWBudde/gosym-lsp/internal/document"
	"github.com/CWBudde/gosym-lsp/internal/scope"
	"github.com/CWBudde/gosym-lsp/internal/server"
	"github.com/CWBudde/gosym-lsp/internal/syntax"
	"github.com/CWBudde/gosym-lsp/internal/types"
)

// SemanticTokensFull handles the textDocument/semanticTokens/full request.
// Every name is highlighted by the kind of the declaration it resolves to.
func SemanticTokensFull(context *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	srv := getServer("SemanticTokensFull")
	if srv == nil {
		return nil, nil
	}

	uri := params.TextDocument.URI
	log.Printf("SemanticTokensFull request for %s\n", uri)

	doc, exists := srv.Documents().Get(uri)
	if !exists {
		log.Printf("Document not found for semantic tokens: %s\n", uri)
		return nil, nil
	}

	if data, ok := srv.Tokens().Get(uri, doc.Version, ""); ok {
		return &protocol.SemanticTokens{Data: data}, nil
	}

	data := []protocol.UInteger{}
	if doc.Tree != nil {
		tokens := collectSemanticTokens(srv.Analyzer(), srv.SemanticTokensLegend(), doc.Lines(), doc.Tree)
		data = server.EncodeSemanticTokens(tokens)
	}

	srv.Tokens().Set(uri, doc.Version, "", data)

	log.Printf("Generated %d semantic tokens for %s\n", len(data)/5, uri)

	return &protocol.SemanticTokens{Data: data}, nil
}

// collectSemanticTokens classifies the identifiers and declared names of a tree. Names that
// resolve to nothing are left to syntax highlighting, except predeclared types.
func collectSemanticTokens(a *analysis.Analyzer, legend *server.SemanticTokensLegend, text *document.Text, tree *syntax.Tree) []server.SemanticToken {
	var tokens []server.SemanticToken

	for i := 0; i < tree.Len(); i++ {
		n := tree.Node(syntax.NodeID(i))

		var (
			tokenType string
			modifiers []string
		)

		switch {
		case n.Kind() == syntax.KindIdent:
			d, ok := a.Resolve(n)
			if !ok {
				if types.IsPredeclared(n.Text()) {
					tokenType = server.TokenTypeType
					modifiers = append(modifiers, server.TokenModifierDefaultLibrary)
				}
				break
			}
			tokenType = tokenTypeOf(d)
			if d.Kind == scope.DeclConst {
				modifiers = append(modifiers, server.TokenModifierReadonly)
			}

		case n.Kind().IsDefinition() && n.Kind() != syntax.KindImportSpec:
			d, ok := scope.DeclarationOf(n)
			if !ok {
				break
			}
			tokenType = tokenTypeOf(d)
			modifiers = append(modifiers, server.TokenModifierDeclaration)
			if d.Kind == scope.DeclConst {
				modifiers = append(modifiers, server.TokenModifierReadonly)
			}
		}

		typeIndex := legend.GetTokenTypeIndex(tokenType)
		if typeIndex < 0 {
			continue
		}

		p := n.Position()
		start := text.LSPPosition(p.Line, p.Column)

		tokens = append(tokens, server.SemanticToken{
			Line:      uint32(start.Line),
			StartChar: uint32(start.Character),
			Length:    uint32(len(utf16.Encode([]rune(n.Text())))),
			TokenType: uint32(typeIndex),
			Modifiers: legend.GetModifierMask(modifiers...),
		})
	}

	return tokens
}

func tokenTypeOf(d scope.Declaration) string {
	switch d.Kind {
	case scope.DeclPackage:
		return server.TokenTypeNamespace
	case scope.DeclParameter, scope.DeclReceiver:
		return server.TokenTypeParameter
	case scope.DeclField:
		return server.TokenTypeProperty
	case scope.DeclFunction:
		return server.TokenTypeFunction
	case scope.DeclMethod:
		return server.TokenTypeMethod
	case scope.DeclTypeSpec:
		switch d.Node.Child(syntax.RoleType).Kind() {
		case syntax.KindStructType:
			return server.TokenTypeStruct
		case syntax.KindInterfaceType:
			return server.TokenTypeInterface
		}
		return server.TokenTypeType
	}

	return server.TokenTypeVariable
}
