package syntax

import "go/token"

// PosAt converts a 1-based line and column (in bytes) into a token.Pos.
// It returns token.NoPos when the position lies outside the file.
func (t *Tree) PosAt(line, column int) token.Pos {
	if t == nil || t.file == nil || line < 1 || line > t.file.LineCount() || column < 1 {
		return token.NoPos
	}

	start := t.file.LineStart(line)
	offset := t.file.Offset(start) + column - 1

	if offset > t.file.Size() {
		return token.NoPos
	}

	return t.file.Pos(offset)
}

// NodeAt returns the most specific (deepest) node whose span contains the given 1-based
// position. The end of a span is inclusive so that a cursor placed right after an identifier
// still selects it. It returns the zero Node when no node contains the position.
func (t *Tree) NodeAt(line, column int) Node {
	pos := t.PosAt(line, column)
	if !pos.IsValid() {
		return Node{}
	}

	return t.NodeAtPos(pos)
}

// NodeAtPos is NodeAt for an absolute position.
func (t *Tree) NodeAtPos(pos token.Pos) Node {
	cur := t.Root()
	if !cur.IsValid() || !spanContains(cur, pos) {
		return Node{}
	}

	for {
		next := Node{}

		for _, child := range cur.Children() {
			if spanContains(child, pos) {
				next = child
				// identifiers win over enclosing nodes that share their span
				if child.Kind() != KindIdent {
					continue
				}
				break
			}
		}

		if !next.IsValid() {
			return cur
		}

		cur = next
	}
}

func spanContains(n Node, pos token.Pos) bool {
	return n.Pos() <= pos && pos <= n.End()
}
