// Package syntax provides an immutable, arena-backed syntax tree for Go source files.
//
// Nodes live in a single slice owned by the Tree. A Node is a non-owning handle made of the
// tree pointer and an index, so parent links and ancestor walks never form pointer cycles.
package syntax

import (
	"fmt"
	"go/token"
)

// NodeID indexes a node inside its tree's arena.
type NodeID int32

// NoNode is the ID of the absent node.
const NoNode NodeID = -1

type node struct {
	kind     Kind
	role     Role
	op       token.Token
	parent   NodeID
	children []NodeID
	text     string
	value    string
	pos      token.Pos
	end      token.Pos
	namePos  token.Pos
}

// Tree is the syntax tree of one source file. It is never modified after Build returns.
type Tree struct {
	name    string
	pkgName string
	fset    *token.FileSet
	file    *token.File
	nodes   []node
}

// Name returns the file name (or URI) the tree was built from.
func (t *Tree) Name() string {
	return t.name
}

// PackageName returns the name in the file's package clause.
func (t *Tree) PackageName() string {
	return t.pkgName
}

// FileSet returns the file set positions are relative to.
func (t *Tree) FileSet() *token.FileSet {
	return t.fset
}

// Root returns the File node.
func (t *Tree) Root() Node {
	if t == nil || len(t.nodes) == 0 {
		return Node{}
	}

	return Node{tree: t, id: 0}
}

// Node returns the handle for id.
func (t *Tree) Node(id NodeID) Node {
	return Node{tree: t, id: id}
}

// Len returns the number of nodes in the arena.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Position converts p into a file position.
func (t *Tree) Position(p token.Pos) token.Position {
	if t == nil || t.fset == nil || !p.IsValid() {
		return token.Position{}
	}

	return t.fset.Position(p)
}

// Identifiers returns every identifier node of the tree in source order.
func (t *Tree) Identifiers() []Node {
	var idents []Node

	for i := range t.nodes {
		if t.nodes[i].kind == KindIdent {
			idents = append(idents, Node{tree: t, id: NodeID(i)})
		}
	}

	return idents
}

// Node is a handle to a node of a Tree. The zero Node is invalid.
type Node struct {
	tree *Tree
	id   NodeID
}

// IsValid reports whether n refers to a node.
func (n Node) IsValid() bool {
	return n.tree != nil && n.id >= 0 && int(n.id) < len(n.tree.nodes)
}

func (n Node) data() *node {
	return &n.tree.nodes[n.id]
}

// Tree returns the tree owning n.
func (n Node) Tree() *Tree {
	return n.tree
}

// ID returns n's arena index.
func (n Node) ID() NodeID {
	if !n.IsValid() {
		return NoNode
	}

	return n.id
}

// Kind returns the syntactic tag of n.
func (n Node) Kind() Kind {
	if !n.IsValid() {
		return KindInvalid
	}

	return n.data().kind
}

// Is reports whether n has one of the given kinds.
func (n Node) Is(kinds ...Kind) bool {
	k := n.Kind()
	for _, want := range kinds {
		if k == want {
			return true
		}
	}

	return false
}

// Role returns the position n occupies inside its parent.
func (n Node) Role() Role {
	if !n.IsValid() {
		return RoleNone
	}

	return n.data().role
}

// Op returns the operator or token attached to n (unary/binary operators, literal kinds,
// assignment tokens, alias markers).
func (n Node) Op() token.Token {
	if !n.IsValid() {
		return token.ILLEGAL
	}

	return n.data().op
}

// Text returns the identifier name, declared name or literal text of n.
func (n Node) Text() string {
	if !n.IsValid() {
		return ""
	}

	return n.data().text
}

// Value returns auxiliary text: the import path of an ImportSpec, the base type name of a
// Receiver.
func (n Node) Value() string {
	if !n.IsValid() {
		return ""
	}

	return n.data().value
}

// Pos returns the start of n's span.
func (n Node) Pos() token.Pos {
	if !n.IsValid() {
		return token.NoPos
	}

	return n.data().pos
}

// End returns the end of n's span.
func (n Node) End() token.Pos {
	if !n.IsValid() {
		return token.NoPos
	}

	return n.data().end
}

// NamePos returns the position of the name n declares, or Pos when n has no separate name.
func (n Node) NamePos() token.Pos {
	if !n.IsValid() {
		return token.NoPos
	}

	if p := n.data().namePos; p.IsValid() {
		return p
	}

	return n.data().pos
}

// Position returns the file position of n's name.
func (n Node) Position() token.Position {
	if !n.IsValid() {
		return token.Position{}
	}

	return n.tree.Position(n.NamePos())
}

// Parent returns n's parent, or the zero Node for the root.
func (n Node) Parent() Node {
	if !n.IsValid() {
		return Node{}
	}

	p := n.data().parent
	if p == NoNode {
		return Node{}
	}

	return Node{tree: n.tree, id: p}
}

// Children returns n's children in source order.
func (n Node) Children() []Node {
	if !n.IsValid() {
		return nil
	}

	ids := n.data().children
	out := make([]Node, len(ids))

	for i, id := range ids {
		out[i] = Node{tree: n.tree, id: id}
	}

	return out
}

// Child returns the first child with the given role.
func (n Node) Child(role Role) Node {
	if !n.IsValid() {
		return Node{}
	}

	for _, id := range n.data().children {
		if n.tree.nodes[id].role == role {
			return Node{tree: n.tree, id: id}
		}
	}

	return Node{}
}

// ChildrenWith returns all children with the given role, in source order.
func (n Node) ChildrenWith(role Role) []Node {
	if !n.IsValid() {
		return nil
	}

	var out []Node

	for _, id := range n.data().children {
		if n.tree.nodes[id].role == role {
			out = append(out, Node{tree: n.tree, id: id})
		}
	}

	return out
}

// Index returns n's position among its parent's children, or -1 for the root.
func (n Node) Index() int {
	parent := n.Parent()
	if !parent.IsValid() {
		return -1
	}

	for i, id := range parent.data().children {
		if id == n.id {
			return i
		}
	}

	return -1
}

// PrevSiblings returns the siblings preceding n, nearest first.
func (n Node) PrevSiblings() []Node {
	parent := n.Parent()
	if !parent.IsValid() {
		return nil
	}

	ids := parent.data().children

	var out []Node

	for i := n.Index() - 1; i >= 0; i-- {
		out = append(out, Node{tree: n.tree, id: ids[i]})
	}

	return out
}

// Contains reports whether other lies in n's subtree. The test is non-strict: every node
// contains itself.
func (n Node) Contains(other Node) bool {
	if !n.IsValid() || !other.IsValid() || n.tree != other.tree {
		return false
	}

	for cur := other.id; cur != NoNode; cur = n.tree.nodes[cur].parent {
		if cur == n.id {
			return true
		}
	}

	return false
}

// Ancestor returns the nearest strict ancestor of n with one of the given kinds.
func (n Node) Ancestor(kinds ...Kind) Node {
	for cur := n.Parent(); cur.IsValid(); cur = cur.Parent() {
		if cur.Is(kinds...) {
			return cur
		}
	}

	return Node{}
}

// String formats n for debugging.
func (n Node) String() string {
	if !n.IsValid() {
		return "<invalid>"
	}

	pos := n.Position()
	if n.Text() != "" {
		return fmt.Sprintf("%s(%s)@%d:%d", n.Kind(), n.Text(), pos.Line, pos.Column)
	}

	return fmt.Sprintf("%s@%d:%d", n.Kind(), pos.Line, pos.Column)
}
