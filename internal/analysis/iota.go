package analysis

import (
	"github.com/CWBudde/gosym-lsp/internal/syntax"
)

// IsIota reports whether n is the predeclared iota inside a constant declaration.
func (a *Analyzer) IsIota(n syntax.Node) bool {
	if n.Kind() != syntax.KindIdent || n.Text() != "iota" {
		return false
	}

	if !n.Ancestor(syntax.KindConstSpec).IsValid() {
		return false
	}

	_, declared := a.Resolve(n)

	return !declared
}

// IotaValue returns the value iota takes at n: the index of the enclosing spec within its
// constant declaration.
func (a *Analyzer) IotaValue(n syntax.Node) (int, bool) {
	if !a.IsIota(n) {
		return 0, false
	}

	return n.Ancestor(syntax.KindConstSpec).Index(), true
}
