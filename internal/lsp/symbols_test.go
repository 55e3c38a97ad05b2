package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/gosym-lsp/internal/server"
)

func TestWorkspaceSymbol(t *testing.T) {
	setupServer(t, testDocumentURI, testSource)

	symbols, err := WorkspaceSymbol(nil, &protocol.WorkspaceSymbolParams{Query: "point"})
	require.NoError(t, err)
	require.Len(t, symbols, 1)

	sym := symbols[0]
	assert.Equal(t, "Point", sym.Name)
	assert.Equal(t, protocol.SymbolKindStruct, sym.Kind)
	assert.Equal(t, testDocumentURI, sym.Location.URI)
	assert.Equal(t, uint32(2), sym.Location.Range.Start.Line)
	require.NotNil(t, sym.ContainerName)
	assert.Equal(t, "main", *sym.ContainerName)

	symbols, err = WorkspaceSymbol(nil, &protocol.WorkspaceSymbolParams{Query: "move"})
	require.NoError(t, err)
	require.Len(t, symbols, 1)
	assert.Equal(t, protocol.SymbolKindMethod, symbols[0].Kind)
	assert.Equal(t, "Point", *symbols[0].ContainerName)

	symbols, err = WorkspaceSymbol(nil, &protocol.WorkspaceSymbolParams{Query: ""})
	require.NoError(t, err)
	assert.Len(t, symbols, 4)

	symbols, err = WorkspaceSymbol(nil, &protocol.WorkspaceSymbolParams{Query: "nothing"})
	require.NoError(t, err)
	assert.Empty(t, symbols)
}

func TestDocumentSymbol(t *testing.T) {
	setupServer(t, testDocumentURI, testSource)

	result, err := DocumentSymbol(nil, &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testDocumentURI},
	})
	require.NoError(t, err)

	symbols, ok := result.([]protocol.DocumentSymbol)
	require.True(t, ok)

	var names []string
	for _, s := range symbols {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"Point", "(Point).Move", "Limit", "main"}, names)

	point := symbols[0]
	assert.Equal(t, protocol.SymbolKindStruct, point.Kind)
	assert.Equal(t, protocol.Range{Start: position(2, 5), End: position(2, 10)}, point.SelectionRange)
	assert.Equal(t, uint32(4), point.Range.End.Line)
	require.Len(t, point.Children, 2)
	assert.Equal(t, "X", point.Children[0].Name)
	assert.Equal(t, protocol.SymbolKindField, point.Children[0].Kind)
	assert.Equal(t, "field X int", *point.Children[0].Detail)

	assert.Equal(t, protocol.SymbolKindConstant, symbols[2].Kind)
	assert.Equal(t, "func main()", *symbols[3].Detail)

	result, err = DocumentSymbol(nil, &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///test/missing.go"},
	})
	require.NoError(t, err)
	assert.Nil(t, result)
}

// decodedToken is a semantic token with absolute position.
type decodedToken struct {
	line, char, length uint32
	tokenType          string
	modifiers          uint32
}

func decodeTokens(legend *server.SemanticTokensLegend, data []protocol.UInteger) []decodedToken {
	var out []decodedToken
	var line, char uint32

	for i := 0; i+4 < len(data); i += 5 {
		if data[i] > 0 {
			line += data[i]
			char = data[i+1]
		} else {
			char += data[i+1]
		}

		out = append(out, decodedToken{
			line:      line,
			char:      char,
			length:    data[i+2],
			tokenType: legend.TokenTypes[data[i+3]],
			modifiers: data[i+4],
		})
	}

	return out
}

func TestSemanticTokensFull(t *testing.T) {
	srv, _ := setupServer(t, testDocumentURI, testSource)

	result, err := SemanticTokensFull(nil, &protocol.SemanticTokensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testDocumentURI},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Zero(t, len(result.Data)%5)

	legend := srv.SemanticTokensLegend()
	tokens := decodeTokens(legend, result.Data)

	find := func(line, char uint32) decodedToken {
		t.Helper()
		for _, tok := range tokens {
			if tok.line == line && tok.char == char {
				return tok
			}
		}
		require.FailNow(t, "no token", "%d:%d", line, char)
		return decodedToken{}
	}

	declaration := legend.GetModifierMask(server.TokenModifierDeclaration)
	readonly := legend.GetModifierMask(server.TokenModifierReadonly)

	tests := []struct {
		name      string
		line      uint32
		char      uint32
		tokenType string
		modifiers uint32
	}{
		{"struct declaration", 2, 5, server.TokenTypeStruct, declaration},
		{"field declaration", 3, 1, server.TokenTypeProperty, declaration},
		{"predeclared type", 3, 6, server.TokenTypeType, legend.GetModifierMask(server.TokenModifierDefaultLibrary)},
		{"receiver", 6, 6, server.TokenTypeParameter, declaration},
		{"method declaration", 6, 16, server.TokenTypeMethod, declaration},
		{"field use", 7, 3, server.TokenTypeProperty, 0},
		{"constant declaration", 10, 6, server.TokenTypeVariable, declaration | readonly},
		{"function declaration", 12, 5, server.TokenTypeFunction, declaration},
		{"method call", 14, 3, server.TokenTypeMethod, 0},
		{"constant use", 14, 8, server.TokenTypeVariable, readonly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := find(tt.line, tt.char)
			assert.Equal(t, tt.tokenType, tok.tokenType)
			assert.Equal(t, tt.modifiers, tok.modifiers)
		})
	}

	// the second request is served from the cache
	assert.Equal(t, 1, srv.Tokens().Size())

	again, err := SemanticTokensFull(nil, &protocol.SemanticTokensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testDocumentURI},
	})
	require.NoError(t, err)
	assert.Equal(t, result.Data, again.Data)
}

func TestDidChangeWorkspaceFolders(t *testing.T) {
	srv, _ := setupServer(t, testDocumentURI, testSource)
	srv.SetWorkspaceFolders([]protocol.WorkspaceFolder{{URI: "file:///test", Name: "test"}})

	require.NoError(t, DidChangeWorkspaceFolders(nil, &protocol.DidChangeWorkspaceFoldersParams{
		Event: protocol.WorkspaceFoldersChangeEvent{
			Removed: []protocol.WorkspaceFolder{{URI: "file:///test", Name: "test"}},
		},
	}))

	assert.Empty(t, srv.GetWorkspaceFolders())
	// open documents stay indexed
	assert.Len(t, srv.Index().Search("Point", 0), 1)
}

func TestDidChangeConfiguration(t *testing.T) {
	srv, _ := setupServer(t, testDocumentURI, testSource)

	require.NoError(t, DidChangeConfiguration(nil, &protocol.DidChangeConfigurationParams{
		Settings: map[string]any{
			"gosym": map[string]any{"maxProblems": float64(3)},
		},
	}))
	assert.Equal(t, 3, srv.Config().LSP.MaxProblems)

	// unrelated settings are ignored
	require.NoError(t, DidChangeConfiguration(nil, &protocol.DidChangeConfigurationParams{Settings: "x"}))
	assert.Equal(t, 3, srv.Config().LSP.MaxProblems)
}
