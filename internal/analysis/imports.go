package analysis

import (
	"log"

	"github.com/CWBudde/gosym-lsp/internal/syntax"
)

// ImportPathAt returns the ImportSpec whose path string lies under a 1-based line and column,
// or the zero Node. An explicit import name is not part of the path.
func ImportPathAt(tree *syntax.Tree, line, column int) syntax.Node {
	pos := tree.PosAt(line, column)
	if !pos.IsValid() {
		return syntax.Node{}
	}

	spec := tree.NodeAtPos(pos).Ancestor(syntax.KindImportSpec)

	lit := spec.Child(syntax.RoleValue)
	if !lit.IsValid() || pos < lit.Pos() || pos >= lit.End() {
		return syntax.Node{}
	}

	return spec
}

// ImportedPackage returns the package clause of the workspace package spec imports, taken from
// the package's first file. Packages outside the index have none.
func (a *Analyzer) ImportedPackage(spec syntax.Node) (syntax.Node, bool) {
	if spec.Kind() != syntax.KindImportSpec {
		return syntax.Node{}, false
	}

	ps, ok := a.index.(PackageSource)
	if !ok {
		return syntax.Node{}, false
	}

	trees := ps.PackageFiles(spec.Value())
	if len(trees) == 0 {
		log.Printf("Imported package %q is not in the workspace\n", spec.Value())
		return syntax.Node{}, false
	}

	return trees[0].Root(), true
}
