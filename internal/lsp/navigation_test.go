package lsp

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/gosym-lsp/internal/analysis"
	"github.com/CWBudde/gosym-lsp/internal/syntax"
	"github.com/CWBudde/gosym-lsp/internal/workspace"
)

func at(uri string, line, character uint32) protocol.TextDocumentPositionParams {
	return protocol.TextDocumentPositionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		Position:     position(line, character),
	}
}

func TestDefinition(t *testing.T) {
	setupServer(t, testDocumentURI, testSource)

	tests := []struct {
		name      string
		line, col uint32
		wantLine  uint32
		wantStart uint32
		wantEnd   uint32
	}{
		{"method through pointer", 14, 3, 6, 16, 20},
		{"constant argument", 14, 8, 10, 6, 11},
		{"local variable", 15, 5, 13, 1, 2},
		{"field key", 13, 13, 3, 1, 2},
		{"type in literal", 13, 8, 2, 5, 10},
		{"declaration itself", 2, 6, 2, 5, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Definition(nil, &protocol.DefinitionParams{TextDocumentPositionParams: at(testDocumentURI, tt.line, tt.col)})
			require.NoError(t, err)

			loc, ok := result.(*protocol.Location)
			require.True(t, ok, "expected a location, got %v", result)

			assert.Equal(t, testDocumentURI, loc.URI)
			assert.Equal(t, tt.wantLine, loc.Range.Start.Line)
			assert.Equal(t, tt.wantStart, loc.Range.Start.Character)
			assert.Equal(t, tt.wantEnd, loc.Range.End.Character)
		})
	}
}

func TestDefinition_NotOnName(t *testing.T) {
	setupServer(t, testDocumentURI, testSource)

	// on the "=" of "_ = p.Y"
	result, err := Definition(nil, &protocol.DefinitionParams{TextDocumentPositionParams: at(testDocumentURI, 15, 3)})
	require.NoError(t, err)
	assert.Nil(t, result)

	result, err = Definition(nil, &protocol.DefinitionParams{TextDocumentPositionParams: at("file:///test/unknown.go", 0, 0)})
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestDefinition_AcrossFiles(t *testing.T) {
	srv, notes := setupServer(t, testDocumentURI, testSource)

	other := "file:///test/util.go"
	require.NoError(t, DidOpen(notes.context(), &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:     other,
			Version: 1,
			Text:    "package main\n\nfunc origin() *Point { return &Point{} }\n",
		},
	}))
	require.Len(t, srv.Index().PackageTrees(srv.Index().Search("origin", 0)[0].File()), 2)

	result, err := Definition(nil, &protocol.DefinitionParams{TextDocumentPositionParams: at(other, 2, 17)})
	require.NoError(t, err)

	loc, ok := result.(*protocol.Location)
	require.True(t, ok)
	assert.Equal(t, testDocumentURI, loc.URI)
	assert.Equal(t, uint32(2), loc.Range.Start.Line)
}

func TestDefinition_ImportPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/proj\n"), 0o644))

	shapesURI := workspace.PathToURI(filepath.Join(dir, "shapes", "shapes.go"))
	mainURI := workspace.PathToURI(filepath.Join(dir, "main.go"))

	_, notes := setupServer(t, shapesURI, "package shapes\n\ntype Point struct{}\n")
	require.NoError(t, DidOpen(notes.context(), &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:     mainURI,
			Version: 1,
			Text: `package main

import sh "example.com/proj/shapes"
import "fmt"

var _ sh.Point
var _ = fmt.Sprint
`,
		},
	}))

	tests := []struct {
		name      string
		line, col uint32
		wantURI   string
		wantStart protocol.Position
		wantEnd   protocol.Position
	}{
		{"path of a workspace package", 2, 15, shapesURI, position(0, 8), position(0, 14)},
		{"opening quote", 2, 10, shapesURI, position(0, 8), position(0, 14)},
		{"explicit import name", 2, 7, mainURI, position(2, 7), position(2, 9)},
		{"package outside the workspace", 3, 9, mainURI, position(3, 7), position(3, 12)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Definition(nil, &protocol.DefinitionParams{TextDocumentPositionParams: at(mainURI, tt.line, tt.col)})
			require.NoError(t, err)

			loc, ok := result.(*protocol.Location)
			require.True(t, ok)
			assert.Equal(t, tt.wantURI, loc.URI)
			assert.Equal(t, tt.wantStart, loc.Range.Start)
			assert.Equal(t, tt.wantEnd, loc.Range.End)
		})
	}
}

func TestHover(t *testing.T) {
	srv, _ := setupServer(t, testDocumentURI, testSource)

	tests := []struct {
		name      string
		line, col uint32
		want      string
	}{
		{"short variable", 13, 1, "var p *Point"},
		{"method", 14, 4, "func (Point) Move(int)"},
		{"field", 3, 1, "field X int"},
		{"constant", 14, 9, "const Limit int"},
		{"parameter", 7, 8, "param dx int"},
		{"receiver", 7, 1, "receiver p *Point"},
		{"type", 2, 5, "type Point struct{X; Y}"},
		{"predeclared type", 3, 7, "type int"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hover, err := Hover(nil, &protocol.HoverParams{TextDocumentPositionParams: at(testDocumentURI, tt.line, tt.col)})
			require.NoError(t, err)
			require.NotNil(t, hover)

			content, ok := hover.Contents.(protocol.MarkupContent)
			require.True(t, ok)
			assert.Equal(t, protocol.MarkupKindMarkdown, content.Kind)
			assert.Equal(t, "```go\n"+tt.want+"\n```", content.Value)
		})
	}

	assert.Positive(t, srv.Hovers().Size())

	hover, err := Hover(nil, &protocol.HoverParams{TextDocumentPositionParams: at(testDocumentURI, 1, 0)})
	require.NoError(t, err)
	assert.Nil(t, hover)
}

func TestHover_Range(t *testing.T) {
	setupServer(t, testDocumentURI, testSource)

	hover, err := Hover(nil, &protocol.HoverParams{TextDocumentPositionParams: at(testDocumentURI, 14, 5)})
	require.NoError(t, err)
	require.NotNil(t, hover)
	require.NotNil(t, hover.Range)

	assert.Equal(t, protocol.Range{Start: position(14, 3), End: position(14, 7)}, *hover.Range)
}

func TestDescribe(t *testing.T) {
	src := `package p

import "fmt"

type Point struct{ X int }

type Alias = Point

type Celsius float64

const (
	A = iota
	B
)

const C = iota * 2

func show(xs ...string) (int, error) { return fmt.Println(xs) }
`
	tree, errs := syntax.Parse("file:///p/p.go", []byte(src))
	require.Empty(t, errs)

	a := analysis.NewAnalyzer(nil)

	find := func(kind syntax.Kind, text string) syntax.Node {
		for i := 0; i < tree.Len(); i++ {
			if n := tree.Node(syntax.NodeID(i)); n.Kind() == kind && n.Text() == text {
				return n
			}
		}
		require.FailNow(t, "node not found", text)
		return syntax.Node{}
	}

	assert.Equal(t, `package fmt ("fmt")`, Describe(a, find(syntax.KindIdent, "fmt")))
	assert.Equal(t, "type Alias = Point", Describe(a, find(syntax.KindTypeSpec, "Alias")))
	assert.Equal(t, "type Celsius float64", Describe(a, find(syntax.KindTypeSpec, "Celsius")))
	assert.Equal(t, "const iota untyped int = 0", Describe(a, find(syntax.KindIdent, "iota")))
	assert.Equal(t, "func show(...string) (int, error)", Describe(a, find(syntax.KindFuncDecl, "show")))
	assert.Equal(t, "", Describe(a, find(syntax.KindIdent, "Println")))
}

func TestReferences(t *testing.T) {
	setupServer(t, testDocumentURI, testSource)

	refs := func(line, col uint32, includeDecl bool) []string {
		t.Helper()

		locations, err := References(nil, &protocol.ReferenceParams{
			TextDocumentPositionParams: at(testDocumentURI, line, col),
			Context:                    protocol.ReferenceContext{IncludeDeclaration: includeDecl},
		})
		require.NoError(t, err)

		var out []string
		for _, loc := range locations {
			out = append(out, positionString(loc.Range.Start))
		}
		return out
	}

	// field X from its declaration
	assert.Equal(t, []string{"3:1", "7:3", "13:13"}, refs(3, 1, true))
	assert.Equal(t, []string{"7:3", "13:13"}, refs(3, 1, false))

	// local p of main; the receiver p of Move is a different variable
	assert.Equal(t, []string{"13:1", "14:1", "15:5"}, refs(14, 1, true))

	// the method from a call site
	assert.Equal(t, []string{"6:16", "14:3"}, refs(14, 4, true))

	assert.Empty(t, refs(1, 0, true))
}

func positionString(p protocol.Position) string {
	return fmt.Sprintf("%d:%d", p.Line, p.Character)
}

func TestSortLocationsByFileAndPosition(t *testing.T) {
	locations := []protocol.Location{
		{URI: "file:///b.go", Range: protocol.Range{Start: position(1, 0)}},
		{URI: "file:///a.go", Range: protocol.Range{Start: position(3, 4)}},
		{URI: "file:///a.go", Range: protocol.Range{Start: position(3, 1)}},
		{URI: "file:///a.go", Range: protocol.Range{Start: position(0, 9)}},
	}

	sortLocationsByFileAndPosition(locations)

	want := []string{"file:///a.go 0:9", "file:///a.go 3:1", "file:///a.go 3:4", "file:///b.go 1:0"}
	for i, loc := range locations {
		assert.Equal(t, want[i], loc.URI+" "+positionString(loc.Range.Start))
	}
}
