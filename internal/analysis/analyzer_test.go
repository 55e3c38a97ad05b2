package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CWBudde/gosym-lsp/internal/scope"
	"github.com/CWBudde/gosym-lsp/internal/syntax"
	"github.com/CWBudde/gosym-lsp/internal/workspace"
)

var (
	_ SymbolIndex   = (*workspace.SymbolIndex)(nil)
	_ PackageSource = (*workspace.SymbolIndex)(nil)
)

const resolveSrc = `package p

type Point struct {
	X, Y int
}

type Named Point

type Base struct{ ID int }

func (b *Base) Describe() string { return "" }

type Derived struct {
	Base
	Name string
}

type Shape interface {
	Area() float64
}

type MyInt int

func (m MyInt) Double() MyInt { return m * 2 }

const K = "k"

var global = 1

func pair() (int, string) { return 0, "" }

func use() {
	p := Point{X: 1, Y: 2}
	pp := &p
	_ = pp.X
	d := Derived{}
	_ = d.ID
	_ = d.Describe()
	var s Shape
	_ = s.Area()
	var n Named
	_ = n.X
	var mi MyInt
	_ = mi.Double()
	m := map[string]int{K: 1}
	v, ok := m["a"]
	a, b := pair()
	x := global
	x, y := 2, 3
	np := new(Point)
	mk := make(map[string]int)
	_, _, _, _, _, _, _, _, _ = v, ok, a, b, x, y, np, mk, global
}

func shadow() {
	global := "s"
	_ = global
}
`

func parse(t *testing.T, src string) *syntax.Tree {
	t.Helper()

	tree, errs := syntax.Parse("test.go", []byte(src))
	require.Empty(t, errs)

	return tree
}

// identAt returns the n-th (0-based) identifier use with the given name.
func identAt(t *testing.T, tree *syntax.Tree, name string, n int) syntax.Node {
	t.Helper()

	for _, id := range tree.Identifiers() {
		if id.Text() != name {
			continue
		}
		if n == 0 {
			return id
		}
		n--
	}

	require.FailNow(t, "identifier not found", name)
	return syntax.Node{}
}

// nodeAt returns the n-th (0-based) node of the given kind and text.
func nodeAt(t *testing.T, tree *syntax.Tree, kind syntax.Kind, text string, n int) syntax.Node {
	t.Helper()

	for i := 0; i < tree.Len(); i++ {
		node := tree.Node(syntax.NodeID(i))
		if node.Kind() != kind || node.Text() != text {
			continue
		}
		if n == 0 {
			return node
		}
		n--
	}

	require.FailNow(t, "node not found", "%s %q", kind, text)
	return syntax.Node{}
}

func refStrings(refs []Reference) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.String())
	}
	return out
}

func TestClassify_PlainIdentifier(t *testing.T) {
	tree := parse(t, resolveSrc)
	a := NewAnalyzer(nil)

	got := refStrings(a.Classify(identAt(t, tree, "global", 0)))
	assert.Equal(t, []string{"VarOrConst(global)", "Package(global)"}, got)
}

func TestClassify_SelectorThroughPointer(t *testing.T) {
	tree := parse(t, resolveSrc)
	a := NewAnalyzer(nil)

	// pp.X
	sel := identAt(t, tree, "X", 1)
	require.Equal(t, syntax.RoleSel, sel.Role())

	got := refStrings(a.Classify(sel))
	assert.Equal(t, []string{
		"InterfaceMethod(X) on Point",
		"Method(X) on Point",
		"StructField(X) in struct{X; Y}",
	}, got)
}

func TestClassify_IsDeterministic(t *testing.T) {
	tree := parse(t, resolveSrc)
	a := NewAnalyzer(nil)

	for _, id := range tree.Identifiers() {
		first := refStrings(a.Classify(id))
		second := refStrings(a.Classify(id))
		assert.Equal(t, first, second, "classification of %s", id)
	}
}

func TestClassify_BlankAndNil(t *testing.T) {
	tree := parse(t, "package p\n\nfunc f() {\n\t_ = nil\n}\n")
	a := NewAnalyzer(nil)

	blank := identAt(t, tree, "_", 0)
	nilIdent := identAt(t, tree, "nil", 0)

	assert.Empty(t, a.Classify(blank))
	assert.Empty(t, a.Classify(nilIdent))

	_, ok := a.Resolve(blank)
	assert.False(t, ok)
	_, ok = a.Resolve(nilIdent)
	assert.False(t, ok)
}

func TestClassify_CompositeKeys(t *testing.T) {
	tree := parse(t, resolveSrc)
	a := NewAnalyzer(nil)

	fieldKey := identAt(t, tree, "X", 0)
	require.Equal(t, syntax.RoleKey, fieldKey.Role())
	assert.Equal(t, []string{"StructField(X) in struct{X; Y}"}, refStrings(a.Classify(fieldKey)))

	mapKey := identAt(t, tree, "K", 0)
	require.Equal(t, syntax.RoleKey, mapKey.Role())
	assert.Equal(t, []string{"TypedConst(K) of string"}, refStrings(a.Classify(mapKey)))
}

func TestResolve_Members(t *testing.T) {
	tree := parse(t, resolveSrc)
	a := NewAnalyzer(nil)

	tests := []struct {
		name  string
		ident syntax.Node
		want  string
	}{
		{"field key", identAt(t, tree, "X", 0), "field X"},
		{"field through pointer", identAt(t, tree, "X", 1), "field X"},
		{"promoted field", identAt(t, tree, "ID", 0), "field ID"},
		{"promoted method", identAt(t, tree, "Describe", 0), "method Describe"},
		{"interface method", identAt(t, tree, "Area", 0), "method Area"},
		{"field of underlying struct", identAt(t, tree, "X", 2), "field X"},
		{"method on defined basic type", identAt(t, tree, "Double", 0), "method Double"},
		{"map key constant", identAt(t, tree, "K", 0), "const K"},
		{"callee", identAt(t, tree, "pair", 0), "func pair"},
		{"type name", identAt(t, tree, "Point", 2), "type Point"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := a.Resolve(tt.ident)
			require.True(t, ok)
			assert.Equal(t, tt.want, d.String())
		})
	}
}

func TestResolve_DeclarationResolvesToItself(t *testing.T) {
	tree := parse(t, resolveSrc)
	a := NewAnalyzer(nil)

	def := nodeAt(t, tree, syntax.KindTypeSpec, "Point", 0)

	d, ok := a.Resolve(def)
	require.True(t, ok)
	assert.Equal(t, def, d.Node)
}

func TestResolve_ShortVarRedeclaration(t *testing.T) {
	tree := parse(t, resolveSrc)
	a := NewAnalyzer(nil)

	first := nodeAt(t, tree, syntax.KindVarDef, "x", 0)
	second := nodeAt(t, tree, syntax.KindVarDef, "x", 1)
	y := nodeAt(t, tree, syntax.KindVarDef, "y", 0)

	d, ok := a.Resolve(second)
	require.True(t, ok)
	assert.Equal(t, first, d.Node)

	d, ok = a.Resolve(y)
	require.True(t, ok)
	assert.Equal(t, y, d.Node)

	// uses after the redeclaration still denote the original variable
	d, ok = a.Resolve(identAt(t, tree, "x", 0))
	require.True(t, ok)
	assert.Equal(t, first, d.Node)
}

func TestResolve_ShortVarRedeclaresParameter(t *testing.T) {
	tree := parse(t, "package p\n\nfunc f(err error) {\n\tn, err := 1, error(nil)\n\t_, _ = n, err\n}\n")
	a := NewAnalyzer(nil)

	d, ok := a.Resolve(nodeAt(t, tree, syntax.KindVarDef, "err", 0))
	require.True(t, ok)
	assert.Equal(t, scope.DeclParameter, d.Kind)
}

func TestResolve_InnermostShadows(t *testing.T) {
	tree := parse(t, resolveSrc)
	a := NewAnalyzer(nil)

	// global inside shadow() is the local string
	use := identAt(t, tree, "global", 2)
	d, ok := a.Resolve(use)
	require.True(t, ok)
	assert.Equal(t, nodeAt(t, tree, syntax.KindVarDef, "global", 1), d.Node)
	assert.Equal(t, "string", a.InferType(use).String())

	// the package-level variable is used in use()
	d, ok = a.Resolve(identAt(t, tree, "global", 0))
	require.True(t, ok)
	assert.True(t, d.IsPackageLevel())
}

func TestResolve_TypeSwitchVariable(t *testing.T) {
	src := `package p

type Point struct{ X int }

func f(i interface{}) {
	switch v := i.(type) {
	case Point:
		_ = v.X
	case int, string:
		_ = v
	}
}
`
	tree := parse(t, src)
	a := NewAnalyzer(nil)

	d, ok := a.Resolve(identAt(t, tree, "X", 0))
	require.True(t, ok)
	assert.Equal(t, "field X", d.String())

	assert.Equal(t, "Point", a.InferType(identAt(t, tree, "v", 0)).String())
	assert.Equal(t, "interface{}", a.InferType(identAt(t, tree, "v", 1)).String())
}

func TestResolve_AcrossPackages(t *testing.T) {
	shapes := `package shapes

type Point struct{ X, Y int }

func (p *Point) Move(dx int) { p.X += dx }

func New() *Point { return &Point{} }
`
	mainFile := `package main

import "example.com/proj/shapes"

func main() {
	p := shapes.New()
	p.Move(1)
	var q shapes.Point
	_ = q.X
}
`
	shapesTree := parse(t, shapes)
	mainTree := parse(t, mainFile)

	index := workspace.NewSymbolIndex()
	index.AddFile("file:///proj/shapes/a.go", "example.com/proj/shapes", 1, shapesTree)
	index.AddFile("file:///proj/main.go", "example.com/proj", 1, mainTree)

	a := NewAnalyzer(index)

	tests := []struct {
		name  string
		ident syntax.Node
		want  string
	}{
		{"package", identAt(t, mainTree, "shapes", 0), "package shapes"},
		{"package function", identAt(t, mainTree, "New", 0), "func New"},
		{"method through returned pointer", identAt(t, mainTree, "Move", 0), "method Move"},
		{"qualified type", identAt(t, mainTree, "Point", 0), "type Point"},
		{"field of imported type", identAt(t, mainTree, "X", 0), "field X"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := a.Resolve(tt.ident)
			require.True(t, ok)
			assert.Equal(t, tt.want, d.String())
		})
	}

	d, ok := a.Resolve(identAt(t, mainTree, "Move", 0))
	require.True(t, ok)
	assert.Same(t, shapesTree, d.File())
}

func TestImportedPackage(t *testing.T) {
	shapesTree := parse(t, "package shapes\n\ntype Point struct{}\n\nfunc helper() {}\n")
	mainTree := parse(t, `package main

import (
	sh "example.com/proj/shapes"
	"fmt"
)

func main() {
	sh.helper()
	fmt.Println()
}
`)

	index := workspace.NewSymbolIndex()
	index.AddFile("file:///proj/shapes/a.go", "example.com/proj/shapes", 1, shapesTree)
	index.AddFile("file:///proj/main.go", "example.com/proj", 1, mainTree)

	a := NewAnalyzer(index)

	// inside the path string
	spec := ImportPathAt(mainTree, 4, 12)
	require.True(t, spec.IsValid())
	assert.Equal(t, "example.com/proj/shapes", spec.Value())

	pkg, ok := a.ImportedPackage(spec)
	require.True(t, ok)
	assert.Same(t, shapesTree, pkg.Tree())
	assert.Equal(t, "shapes", pkg.Text())
	assert.Equal(t, 1, pkg.Position().Line)
	assert.Equal(t, 9, pkg.Position().Column)

	// the explicit name is not part of the path
	assert.False(t, ImportPathAt(mainTree, 4, 2).IsValid())
	assert.False(t, ImportPathAt(mainTree, 9, 2).IsValid())

	_, ok = a.ImportedPackage(ImportPathAt(mainTree, 5, 3))
	assert.False(t, ok, "packages outside the index")

	_, ok = NewAnalyzer(nil).ImportedPackage(spec)
	assert.False(t, ok)

	// unexported names do not cross package boundaries
	_, ok = a.Resolve(identAt(t, mainTree, "helper", 0))
	assert.False(t, ok)
}

func TestResolve_UnknownPackageMembers(t *testing.T) {
	src := `package p

import "fmt"

func f() {
	fmt.Println("x")
	var b fmt.Stringer
	_ = b
}
`
	tree := parse(t, src)
	a := NewAnalyzer(nil)

	_, ok := a.Resolve(identAt(t, tree, "Println", 0))
	assert.False(t, ok)

	d, ok := a.Resolve(identAt(t, tree, "fmt", 0))
	require.True(t, ok)
	assert.Equal(t, scope.DeclPackage, d.Kind)

	assert.Equal(t, "fmt.Stringer", a.InferType(identAt(t, tree, "b", 0)).String())
}

func TestResolve_CPackageHasNoMembers(t *testing.T) {
	tree := parse(t, "package p\n\nimport \"C\"\n\nfunc f() {\n\tC.free(nil)\n}\n")
	a := NewAnalyzer(nil)

	assert.Empty(t, a.Classify(identAt(t, tree, "free", 0)))
}
