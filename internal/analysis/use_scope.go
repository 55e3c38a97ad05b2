package analysis

import (
	"unicode"
	"unicode/utf8"

	"github.com/CWBudde/gosym-lsp/internal/scope"
	"github.com/CWBudde/gosym-lsp/internal/syntax"
)

// UseScope returns the node that bounds the references to d. global reports that d is visible
// across its package, and beyond when exported.
func UseScope(d scope.Declaration) (owner syntax.Node, global bool) {
	root := d.File().Root()

	switch d.Kind {
	case scope.DeclFunction, scope.DeclMethod, scope.DeclField:
		return root, true
	case scope.DeclPackage:
		return root, false
	case scope.DeclVariable, scope.DeclConst, scope.DeclTypeSpec:
		if d.IsPackageLevel() {
			return root, true
		}
	}

	return scope.EnclosingScope(d.Node), false
}

// FindReferences returns the identifier occurrences that resolve to d, in file order. Short
// variable declarations redeclaring d count as references.
func (a *Analyzer) FindReferences(d scope.Declaration) []syntax.Node {
	if !d.IsValid() {
		return nil
	}

	owner, global := UseScope(d)

	trees := []*syntax.Tree{d.File()}
	if global {
		trees = a.searchTrees(d)
	}

	var refs []syntax.Node

	for _, tree := range trees {
		for i := 0; i < tree.Len(); i++ {
			n := tree.Node(syntax.NodeID(i))
			if n == d.Node || n.Text() != d.Name {
				continue
			}

			if n.Kind() != syntax.KindIdent && !isShortVarName(n) {
				continue
			}

			if !global && !owner.Contains(n) {
				continue
			}

			if got, ok := a.Resolve(n); ok && got == d {
				refs = append(refs, n)
			}
		}
	}

	return refs
}

// searchTrees lists the files a reference search for a package-wide declaration visits.
func (a *Analyzer) searchTrees(d scope.Declaration) []*syntax.Tree {
	file := d.File()

	ps, ok := a.index.(PackageSource)
	if !ok {
		return []*syntax.Tree{file}
	}

	seen := map[*syntax.Tree]bool{}

	var trees []*syntax.Tree

	add := func(list []*syntax.Tree) {
		for _, t := range list {
			if !seen[t] {
				seen[t] = true
				trees = append(trees, t)
			}
		}
	}

	add([]*syntax.Tree{file})
	add(ps.PackageTrees(file))

	if isExported(d.Name) {
		if path := ps.ImportPathOf(file); path != "" {
			add(ps.ImporterTrees(path))
		}
	}

	return trees
}

func isExported(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

// NameAt returns the identifier or declaring node under a 1-based line and column, or the zero
// Node when the position is not on a name.
func NameAt(tree *syntax.Tree, line, column int) syntax.Node {
	pos := tree.PosAt(line, column)
	if !pos.IsValid() {
		return syntax.Node{}
	}

	for cur := tree.NodeAtPos(pos); cur.IsValid(); cur = cur.Parent() {
		switch {
		case cur.Kind() == syntax.KindIdent:
			return cur
		case cur.Kind() == syntax.KindTypeName:
			return cur.Child(syntax.RoleName)
		case cur.Kind() == syntax.KindImportSpec:
			return cur
		case cur.Kind().IsDefinition():
			start := cur.NamePos()
			if start.IsValid() && pos >= start && int(pos-start) <= len(cur.Text()) {
				return cur
			}
		}
	}

	return syntax.Node{}
}
