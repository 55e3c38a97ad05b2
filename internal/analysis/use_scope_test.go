package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CWBudde/gosym-lsp/internal/scope"
	"github.com/CWBudde/gosym-lsp/internal/syntax"
	"github.com/CWBudde/gosym-lsp/internal/workspace"
)

const refsSrc = `package p

type T struct{ F int }

func f() {
	t := T{F: 1}
	t.F = 2
	u := t
	t, w := u, 3
	_ = w
	_ = t.F
}

func g() {
	t := 0
	_ = t
}
`

func declOf(t *testing.T, n syntax.Node) scope.Declaration {
	t.Helper()

	d, ok := scope.DeclarationOf(n)
	require.True(t, ok)

	return d
}

func positions(refs []syntax.Node) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, fmt.Sprintf("%s@%d", r.Text(), r.Position().Line))
	}
	return out
}

func TestUseScope(t *testing.T) {
	tree := parse(t, refsSrc)

	owner, global := UseScope(declOf(t, nodeAt(t, tree, syntax.KindTypeSpec, "T", 0)))
	assert.True(t, global)
	assert.Equal(t, syntax.KindFile, owner.Kind())

	owner, global = UseScope(declOf(t, nodeAt(t, tree, syntax.KindFieldDef, "F", 0)))
	assert.True(t, global)
	assert.Equal(t, syntax.KindFile, owner.Kind())

	owner, global = UseScope(declOf(t, nodeAt(t, tree, syntax.KindVarDef, "t", 0)))
	assert.False(t, global)
	assert.Equal(t, syntax.KindBlock, owner.Kind())
	assert.Equal(t, syntax.KindFuncDecl, owner.Parent().Kind())
}

func TestFindReferences_Local(t *testing.T) {
	tree := parse(t, refsSrc)
	a := NewAnalyzer(nil)

	d := declOf(t, nodeAt(t, tree, syntax.KindVarDef, "t", 0))

	// the redeclaration on line 9 counts, the unrelated t in g does not
	assert.Equal(t, []string{"t@7", "t@8", "t@9", "t@11"}, positions(a.FindReferences(d)))
}

func TestFindReferences_Field(t *testing.T) {
	tree := parse(t, refsSrc)
	a := NewAnalyzer(nil)

	d := declOf(t, nodeAt(t, tree, syntax.KindFieldDef, "F", 0))
	assert.Equal(t, []string{"F@6", "F@7", "F@11"}, positions(a.FindReferences(d)))
}

func TestFindReferences_EveryReferenceResolvesBack(t *testing.T) {
	tree := parse(t, resolveSrc)
	a := NewAnalyzer(nil)

	for _, name := range []string{"Point", "Base", "MyInt"} {
		d := declOf(t, nodeAt(t, tree, syntax.KindTypeSpec, name, 0))
		refs := a.FindReferences(d)
		assert.NotEmpty(t, refs, name)

		for _, ref := range refs {
			got, ok := a.Resolve(ref)
			require.True(t, ok)
			assert.Equal(t, d, got)
		}
	}
}

func TestFindReferences_AcrossPackages(t *testing.T) {
	shapesA := `package shapes

type Point struct{ X int }

func New() *Point { return &Point{} }
`
	shapesB := `package shapes

func Origin() Point { return Point{} }
`
	mainFile := `package main

import "example.com/proj/shapes"

func main() {
	var p shapes.Point
	_ = p
	_ = shapes.New()
}
`
	a1 := parse(t, shapesA)
	b1 := parse(t, shapesB)
	m1 := parse(t, mainFile)

	index := workspace.NewSymbolIndex()
	index.AddFile("file:///proj/shapes/a.go", "example.com/proj/shapes", 1, a1)
	index.AddFile("file:///proj/shapes/b.go", "example.com/proj/shapes", 1, b1)
	index.AddFile("file:///proj/main.go", "example.com/proj", 1, m1)

	a := NewAnalyzer(index)

	d := declOf(t, nodeAt(t, a1, syntax.KindTypeSpec, "Point", 0))
	refs := a.FindReferences(d)

	perTree := map[*syntax.Tree]int{}
	for _, r := range refs {
		perTree[r.Tree()]++
	}

	assert.Equal(t, 2, perTree[a1])
	assert.Equal(t, 2, perTree[b1])
	assert.Equal(t, 1, perTree[m1])
}

func TestNameAt(t *testing.T) {
	src := "package p\n\nimport \"fmt\"\n\nfunc Hello(name string) {\n\tfmt.Println(name)\n}\n"
	tree := parse(t, src)

	tests := []struct {
		line, col int
		kind      syntax.Kind
		text      string
	}{
		{5, 6, syntax.KindFuncDecl, "Hello"},
		{5, 12, syntax.KindParamDef, "name"},
		{5, 17, syntax.KindIdent, "string"},
		{6, 2, syntax.KindIdent, "fmt"},
		{6, 6, syntax.KindIdent, "Println"},
		{3, 9, syntax.KindImportSpec, "fmt"},
	}

	for _, tt := range tests {
		n := NameAt(tree, tt.line, tt.col)
		require.True(t, n.IsValid(), "%d:%d", tt.line, tt.col)
		assert.Equal(t, tt.kind, n.Kind(), "%d:%d", tt.line, tt.col)
		assert.Equal(t, tt.text, n.Text(), "%d:%d", tt.line, tt.col)
	}

	assert.False(t, NameAt(tree, 99, 1).IsValid())
}
