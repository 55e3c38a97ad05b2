package workspace

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CWBudde/gosym-lsp/internal/scope"
	"github.com/CWBudde/gosym-lsp/internal/syntax"
)

const (
	testURI1 = "file:///proj/shapes/a.go"
	testURI2 = "file:///proj/shapes/b.go"
	testURI3 = "file:///proj/main.go"
)

const shapesA = `package shapes

const Pi = 3.14

var Origin, Unit Point

type Point struct{ X, Y int }

func New() *Point { return &Point{} }

func (p *Point) Move(dx int) { p.X += dx }
`

const shapesB = `package shapes

type Circle struct{ Center Point }

func (c Circle) Move(dx int) {}

func helper() {}
`

const mainSrc = `package main

import "example.com/proj/shapes"

func main() { _ = shapes.New() }
`

func mustParse(t *testing.T, uri, src string) *syntax.Tree {
	t.Helper()

	tree, errs := syntax.Parse(uri, []byte(src))
	require.Empty(t, errs)

	return tree
}

func newTestIndex(t *testing.T) (*SymbolIndex, *syntax.Tree, *syntax.Tree, *syntax.Tree) {
	t.Helper()

	index := NewSymbolIndex()
	a := mustParse(t, testURI1, shapesA)
	b := mustParse(t, testURI2, shapesB)
	m := mustParse(t, testURI3, mainSrc)

	index.AddFile(testURI1, "example.com/proj/shapes", 1, a)
	index.AddFile(testURI2, "example.com/proj/shapes", 1, b)
	index.AddFile(testURI3, "example.com/proj", 1, m)

	return index, a, b, m
}

func names(decls []scope.Declaration) []string {
	var out []string
	for _, d := range decls {
		out = append(out, d.String())
	}
	return out
}

func TestSymbolIndex_NewSymbolIndex(t *testing.T) {
	index := NewSymbolIndex()

	if index.GetFileCount() != 0 {
		t.Errorf("Expected 0 files, got %d", index.GetFileCount())
	}

	if index.GetSymbolCount() != 0 {
		t.Errorf("Expected 0 symbols, got %d", index.GetSymbolCount())
	}
}

func TestSymbolIndex_AddFile(t *testing.T) {
	index, _, _, _ := newTestIndex(t)

	assert.Equal(t, 3, index.GetFileCount())
	assert.Equal(t, 2, index.GetPackageCount())
	// Pi, Origin, Unit, Point, New, Move | Circle, Move, helper | main
	assert.Equal(t, 10, index.GetSymbolCount())
}

func TestSymbolIndex_LookupGlobalAcrossFiles(t *testing.T) {
	index, a, b, m := newTestIndex(t)

	assert.Equal(t, []string{"type Point"}, names(index.LookupGlobal(b, "Point")))
	assert.Equal(t, []string{"func helper"}, names(index.LookupGlobal(a, "helper")))
	assert.Empty(t, index.LookupGlobal(m, "Point"), "other packages are not global scope")
	assert.Empty(t, index.LookupGlobal(a, "Move"), "methods are not package-level names")
	assert.Equal(t, []string{"var Origin"}, names(index.LookupGlobal(a, "Origin")))
}

func TestSymbolIndex_LookupGlobalUnindexedFile(t *testing.T) {
	index := NewSymbolIndex()
	tree := mustParse(t, "file:///tmp/x.go", "package x\n\nfunc F() {}\n")

	assert.Equal(t, []string{"func F"}, names(index.LookupGlobal(tree, "F")))
}

func TestSymbolIndex_LookupImported(t *testing.T) {
	index, _, _, _ := newTestIndex(t)

	assert.Equal(t, []string{"func New"}, names(index.LookupImported("example.com/proj/shapes", "New")))
	assert.Empty(t, index.LookupImported("fmt", "Println"))
}

func TestSymbolIndex_LookupImportedSkipsUnexported(t *testing.T) {
	index, _, b, _ := newTestIndex(t)

	// visible inside its own package
	assert.NotEmpty(t, index.LookupGlobal(b, "helper"))
	assert.Empty(t, index.LookupImported("example.com/proj/shapes", "helper"))
}

func TestSymbolIndex_LookupMethods(t *testing.T) {
	index, a, b, _ := newTestIndex(t)

	point := index.LookupMethods(b, "Point", "Move")
	require.Len(t, point, 1)
	assert.Equal(t, a, point[0].File())

	circle := index.LookupMethods(a, "Circle", "Move")
	require.Len(t, circle, 1)
	assert.Equal(t, b, circle[0].File())

	assert.Empty(t, index.LookupMethods(a, "Point", "Missing"))
}

func TestSymbolIndex_ReplaceAndRemoveFile(t *testing.T) {
	index, a, _, _ := newTestIndex(t)

	updated := mustParse(t, testURI2, "package shapes\n\nfunc Square() {}\n")
	index.AddFile(testURI2, "example.com/proj/shapes", 2, updated)

	assert.Empty(t, index.LookupGlobal(a, "Circle"))
	assert.Len(t, index.LookupGlobal(a, "Square"), 1)

	info, ok := index.File(testURI2)
	require.True(t, ok)
	assert.Equal(t, int32(2), info.Version)

	index.RemoveFile(testURI2)
	assert.Empty(t, index.LookupGlobal(a, "Square"))
	assert.Len(t, index.LookupGlobal(a, "Point"), 1)

	index.RemoveFile(testURI1)
	assert.Equal(t, 1, index.GetPackageCount())
}

func TestSymbolIndex_RemoveFolder(t *testing.T) {
	index, _, _, m := newTestIndex(t)

	assert.Equal(t, 2, index.RemoveFolder("file:///proj/shapes/"))
	assert.Equal(t, 1, index.GetFileCount())
	assert.Empty(t, index.LookupImported("example.com/proj/shapes", "Point"))
	assert.Len(t, index.LookupGlobal(m, "main"), 1)

	// a sibling folder sharing the prefix is left alone
	assert.Equal(t, 0, index.RemoveFolder("file:///pro"))
	assert.Equal(t, 1, index.GetFileCount())
}

func TestSymbolIndex_PackageAndImporterTrees(t *testing.T) {
	index, a, b, m := newTestIndex(t)

	assert.Equal(t, []*syntax.Tree{a, b}, index.PackageTrees(b))
	assert.Equal(t, []*syntax.Tree{m}, index.ImporterTrees("example.com/proj/shapes"))
	assert.Equal(t, []*syntax.Tree{a, b}, index.PackageFiles("example.com/proj/shapes"))
	assert.Empty(t, index.PackageFiles("fmt"))
	assert.Equal(t, "example.com/proj/shapes", index.ImportPathOf(a))

	uri, ok := index.URIOf(m)
	require.True(t, ok)
	assert.Equal(t, testURI3, uri)
}

func TestSymbolIndex_ExternalTestPackage(t *testing.T) {
	index := NewSymbolIndex()
	lib := mustParse(t, "file:///p/lib.go", "package p\n\nfunc F() {}\n")
	ext := mustParse(t, "file:///p/lib_test.go", "package p_test\n\nfunc G() {}\n")

	index.AddFile("file:///p/lib.go", "example.com/p", 0, lib)
	index.AddFile("file:///p/lib_test.go", "example.com/p", 0, ext)

	assert.Empty(t, index.LookupGlobal(ext, "F"))
	assert.Len(t, index.LookupImported("example.com/p", "F"), 1)
}

func TestSymbolIndex_Search(t *testing.T) {
	index, _, _, _ := newTestIndex(t)

	assert.Equal(t, []string{"method Move", "method Move"}, names(index.Search("mov", 0)))
	assert.Len(t, index.Search("", 3), 3)
}

func TestSymbolIndex_Clear(t *testing.T) {
	index, _, _, _ := newTestIndex(t)

	index.Clear()

	assert.Equal(t, 0, index.GetFileCount())
	assert.Equal(t, 0, index.GetSymbolCount())
}

func TestSymbolIndex_ConcurrentAccess(t *testing.T) {
	index, a, _, _ := newTestIndex(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = index.LookupGlobal(a, "Point")
			_ = index.Search("o", 10)
		}()
		go func() {
			defer wg.Done()
			tree := mustParse(t, testURI2, shapesB)
			index.AddFile(testURI2, "example.com/proj/shapes", 3, tree)
		}()
	}
	wg.Wait()

	assert.Len(t, index.LookupGlobal(a, "Circle"), 1)
}

func TestImports(t *testing.T) {
	tree := mustParse(t, "file:///x.go", "package x\n\nimport (\n\t\"fmt\"\n\t_ \"embed\"\n\tstr \"strings\"\n)\n")

	assert.Equal(t, []string{"package fmt", "package str"}, names(Imports(tree)))
}
