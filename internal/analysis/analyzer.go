// Package analysis resolves identifiers to their declarations and infers the static types of
// expressions by structural analysis of syntax trees.
package analysis

import (
	"log"

	"github.com/CWBudde/gosym-lsp/internal/scope"
	"github.com/CWBudde/gosym-lsp/internal/syntax"
	"github.com/CWBudde/gosym-lsp/internal/types"
)

// SymbolIndex answers the name lookups resolution depends on.
type SymbolIndex interface {
	// LookupGlobal returns the package-level declarations named name in the package owning file.
	LookupGlobal(file *syntax.Tree, name string) []scope.Declaration

	// LookupLocal returns the declarations named name in the lexical scope chain of from,
	// innermost first.
	LookupLocal(name string, from syntax.Node) []scope.Declaration

	// LookupImported returns the package-level declarations named name of the package with the
	// given import path.
	LookupImported(importPath, name string) []scope.Declaration

	// LookupMethods returns the methods named name declared on the receiver base type typeName
	// in the package owning file.
	LookupMethods(file *syntax.Tree, typeName, name string) []scope.Declaration
}

// PackageSource is implemented by indexes that can list the files a reference search has to
// visit.
type PackageSource interface {
	PackageTrees(file *syntax.Tree) []*syntax.Tree
	ImporterTrees(importPath string) []*syntax.Tree
	ImportPathOf(file *syntax.Tree) string
	PackageFiles(importPath string) []*syntax.Tree
}

// Analyzer classifies identifiers, resolves them and infers expression types. It holds no
// state besides its index, so one Analyzer may serve any number of goroutines.
type Analyzer struct {
	index SymbolIndex
}

// NewAnalyzer creates an analyzer backed by index. A nil index restricts lookups to the file
// being analyzed.
func NewAnalyzer(index SymbolIndex) *Analyzer {
	if index == nil {
		index = fileIndex{}
	}

	return &Analyzer{index: index}
}

// Index returns the index the analyzer looks names up in.
func (a *Analyzer) Index() SymbolIndex {
	return a.index
}

// maxQueryDepth bounds the nesting of resolution and inference steps within one query.
const maxQueryDepth = 64

// query carries the per-call bookkeeping of one resolution or inference request.
type query struct {
	a     *Analyzer
	depth int

	// declarations whose type is being computed
	visiting map[syntax.Node]bool
}

func (a *Analyzer) newQuery() *query {
	return &query{a: a, visiting: make(map[syntax.Node]bool)}
}

func (q *query) enter() bool {
	if q.depth >= maxQueryDepth {
		log.Printf("analysis: query depth limit reached")
		return false
	}

	q.depth++

	return true
}

func (q *query) leave() {
	q.depth--
}

// Classify returns the candidate references of an identifier occurrence, in the order they
// should be tried.
func (a *Analyzer) Classify(ident syntax.Node) []Reference {
	return a.newQuery().classify(ident)
}

// Resolve returns the declaration ident refers to. Declaring nodes resolve to themselves, except
// redeclared names of short variable declarations, which resolve to the original declaration.
func (a *Analyzer) Resolve(ident syntax.Node) (scope.Declaration, bool) {
	return a.newQuery().resolve(ident)
}

// InferType returns the static type of an expression or type expression, or nil when it cannot
// be determined.
func (a *Analyzer) InferType(expr syntax.Node) types.Type {
	return a.newQuery().inferType(expr)
}

// TypeOfDeclaration returns the type of the entity d declares.
func (a *Analyzer) TypeOfDeclaration(d scope.Declaration) types.Type {
	return a.newQuery().declType(d, syntax.Node{})
}

// DeclaredType returns the type a TypeSpec introduces: a Named type for a definition, the
// aliased type for an alias.
func (a *Analyzer) DeclaredType(spec syntax.Node) types.Type {
	return a.newQuery().declaredType(spec)
}

func (q *query) resolve(n syntax.Node) (scope.Declaration, bool) {
	if !n.IsValid() || IsBlank(n) || IsNil(n) {
		return scope.Declaration{}, false
	}

	if !q.enter() {
		return scope.Declaration{}, false
	}
	defer q.leave()

	if d, ok := scope.DeclarationOf(n); ok {
		if isShortVarName(n) {
			return q.resolveShortVar(n)
		}
		return d, true
	}

	for _, ref := range q.classify(n) {
		if d, ok := q.resolveRef(ref); ok {
			return d, true
		}
	}

	return scope.Declaration{}, false
}

// lookupName finds the declaration a bare name denotes at n: the innermost lexical declaration,
// then the package scope. The innermost declaration hides outer ones even when accept rejects
// its kind.
func (q *query) lookupName(n syntax.Node, name string, accept func(scope.DeclKind) bool) (scope.Declaration, bool) {
	if local := q.a.index.LookupLocal(name, n); len(local) > 0 {
		d := local[0]
		if !accept(d.Kind) {
			return scope.Declaration{}, false
		}
		if isShortVarName(d.Node) {
			// a redeclaring name stands for the variable it redeclares
			return q.resolveShortVar(d.Node)
		}
		return d, true
	}

	if global := q.a.index.LookupGlobal(n.Tree(), name); len(global) > 0 {
		if accept(global[0].Kind) {
			return global[0], true
		}
	}

	return scope.Declaration{}, false
}

func acceptKinds(kinds ...scope.DeclKind) func(scope.DeclKind) bool {
	return func(k scope.DeclKind) bool {
		for _, want := range kinds {
			if k == want {
				return true
			}
		}
		return false
	}
}

// IsBlank reports whether n is the blank identifier.
func IsBlank(n syntax.Node) bool {
	return n.Text() == "_" && (n.Kind() == syntax.KindIdent || n.Kind().IsDefinition())
}

// IsNil reports whether n is the predeclared nil.
func IsNil(n syntax.Node) bool {
	return n.Kind() == syntax.KindIdent && n.Text() == "nil"
}

// fileIndex answers lookups from the analyzed file alone.
type fileIndex struct{}

func (fileIndex) LookupGlobal(file *syntax.Tree, name string) []scope.Declaration {
	if file == nil {
		return nil
	}

	var found []scope.Declaration

	for _, top := range file.Root().Children() {
		for _, d := range topLevel(top) {
			if d.Name == name && d.Kind != scope.DeclPackage {
				found = append(found, d)
			}
		}
	}

	return found
}

func (fileIndex) LookupLocal(name string, from syntax.Node) []scope.Declaration {
	return scope.LookupLocal(name, from)
}

func (fileIndex) LookupImported(string, string) []scope.Declaration {
	return nil
}

func (fileIndex) LookupMethods(file *syntax.Tree, typeName, name string) []scope.Declaration {
	if file == nil {
		return nil
	}

	var found []scope.Declaration

	for _, top := range file.Root().Children() {
		if top.Kind() == syntax.KindMethodDecl && top.Text() == name && top.Child(syntax.RoleRecv).Value() == typeName {
			if d, ok := scope.DeclarationOf(top); ok {
				found = append(found, d)
			}
		}
	}

	return found
}

// topLevel returns the non-method declarations a top-level node makes.
func topLevel(top syntax.Node) []scope.Declaration {
	var decls []scope.Declaration

	add := func(n syntax.Node) {
		if d, ok := scope.DeclarationOf(n); ok {
			decls = append(decls, d)
		}
	}

	switch top.Kind() {
	case syntax.KindFuncDecl:
		add(top)
	case syntax.KindTypeDecl:
		for _, spec := range top.Children() {
			add(spec)
		}
	case syntax.KindVarDecl, syntax.KindConstDecl:
		for _, spec := range top.Children() {
			for _, def := range spec.ChildrenWith(syntax.RoleName) {
				add(def)
			}
		}
	}

	return decls
}
