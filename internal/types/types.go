// Package types models the static types of Go expressions as a closed set of variants.
//
// Behaviour that differs per kind is added at the call site through Visit rather than through
// methods on the variants: the kind set is fixed, while every resolution and typing rule needs its
// own per-kind logic.
package types

import (
	"strings"
	"sync"

	"github.com/CWBudde/gosym-lsp/internal/syntax"
)

// Type is implemented by every type variant of this package only.
type Type interface {
	String() string
	aType()
}

type typ struct{}

func (typ) aType() {}

// Primitive is a predeclared basic type such as int, string or bool.
type Primitive struct {
	typ
	Name string
}

func (p *Primitive) String() string { return p.Name }

// Nil is the type of the untyped nil value.
type Nil struct{ typ }

func (*Nil) String() string { return "nil" }

// Pointer is *Target.
type Pointer struct {
	typ
	Target Type
}

func (p *Pointer) String() string { return "*" + typeString(p.Target) }

// Slice is []Elem; Variadic marks a ...Elem parameter.
type Slice struct {
	typ
	Elem     Type
	Variadic bool
}

func (s *Slice) String() string {
	if s.Variadic {
		return "..." + typeString(s.Elem)
	}

	return "[]" + typeString(s.Elem)
}

// Array is [Len]Elem. Len is the source text of the length expression.
type Array struct {
	typ
	Len  string
	Elem Type
}

func (a *Array) String() string { return "[" + a.Len + "]" + typeString(a.Elem) }

// Map is map[Key]Value.
type Map struct {
	typ
	Key   Type
	Value Type
}

func (m *Map) String() string { return "map[" + typeString(m.Key) + "]" + typeString(m.Value) }

// Chan is a channel type; Dir is "chan", "chan<-" or "<-chan".
type Chan struct {
	typ
	Dir  string
	Elem Type
}

func (c *Chan) String() string { return c.Dir + " " + typeString(c.Elem) }

// Func is a function signature.
type Func struct {
	typ
	Params  []Type
	Results []Type
}

func (f *Func) String() string {
	var sb strings.Builder

	sb.WriteString("func(")
	writeList(&sb, f.Params)
	sb.WriteString(")")

	switch len(f.Results) {
	case 0:
	case 1:
		sb.WriteString(" ")
		sb.WriteString(typeString(f.Results[0]))
	default:
		sb.WriteString(" (")
		writeList(&sb, f.Results)
		sb.WriteString(")")
	}

	return sb.String()
}

// Tuple is the multi-value result of a call with several results.
type Tuple struct {
	typ
	Types []Type
}

func (t *Tuple) String() string {
	var sb strings.Builder

	sb.WriteString("(")
	writeList(&sb, t.Types)
	sb.WriteString(")")

	return sb.String()
}

// Field is a struct field. Its type is kept as the type expression and resolved on demand,
// which keeps self-referential structs finite.
type Field struct {
	Name     string
	Embedded bool
	Decl     syntax.Node // FieldDef or AnonymousField
	TypeExpr syntax.Node
}

// TypeResolver converts a type expression into a type, or nil when it cannot be resolved.
type TypeResolver func(expr syntax.Node) Type

// Struct is a struct type literal. Resolve, when set, turns field type expressions into types.
type Struct struct {
	typ
	Node    syntax.Node
	Fields  []Field
	Resolve TypeResolver
}

func (s *Struct) String() string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}

	return "struct{" + strings.Join(names, "; ") + "}"
}

// Field returns the directly declared field with the given name.
func (s *Struct) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}

	return Field{}, false
}

// FieldType returns the type of field f of s.
func (s *Struct) FieldType(f Field) Type {
	if s.Resolve == nil || !f.TypeExpr.IsValid() {
		return nil
	}

	return s.Resolve(f.TypeExpr)
}

// Method is an interface method specification.
type Method struct {
	Name string
	Decl syntax.Node // MethodSpec
}

// Interface is an interface type literal. Embedded holds the type expressions of embedded
// interfaces.
type Interface struct {
	typ
	Node     syntax.Node
	Methods  []Method
	Embedded []syntax.Node
	Resolve  TypeResolver
}

// MethodType returns the signature of method m of i.
func (i *Interface) MethodType(m Method) Type {
	if i.Resolve == nil || !m.Decl.IsValid() {
		return nil
	}

	return i.Resolve(m.Decl.Child(syntax.RoleType))
}

// EmbeddedType returns the type of the k-th embedded interface of i.
func (i *Interface) EmbeddedType(k int) Type {
	if i.Resolve == nil || k < 0 || k >= len(i.Embedded) {
		return nil
	}

	return i.Resolve(i.Embedded[k])
}

func (i *Interface) String() string {
	if len(i.Methods) == 0 && len(i.Embedded) == 0 {
		return "interface{}"
	}

	names := make([]string, 0, len(i.Methods))
	for _, m := range i.Methods {
		names = append(names, m.Name+"()")
	}

	return "interface{" + strings.Join(names, "; ") + "}"
}

// Package is the pseudo-type of an imported package name.
type Package struct {
	typ
	Name string
	Path string
	Decl syntax.Node // ImportSpec
}

func (p *Package) String() string { return "package " + p.Name + " (\"" + p.Path + "\")" }

// IsC reports whether p is the cgo pseudo-package, which has no resolvable members.
func (p *Package) IsC() bool { return p.Path == "C" }

// Named is a defined type. Two Named types are identical only when they come from the same
// TypeSpec. The underlying type is computed on first use.
type Named struct {
	typ
	Name    string
	PkgPath string
	Spec    syntax.Node // TypeSpec; invalid for predeclared named types such as error

	once       sync.Once
	resolve    func() Type
	underlying Type
}

// NewNamed creates a Named type whose underlying type is produced by resolve on demand.
func NewNamed(name, pkgPath string, spec syntax.Node, resolve func() Type) *Named {
	return &Named{Name: name, PkgPath: pkgPath, Spec: spec, resolve: resolve}
}

// Underlying returns the type the named type is defined as. It may itself be Named.
func (n *Named) Underlying() Type {
	n.once.Do(func() {
		if n.resolve != nil {
			n.underlying = n.resolve()
		}
	})

	return n.underlying
}

func (n *Named) String() string { return n.Name }

func typeString(t Type) string {
	if t == nil {
		return "?"
	}

	return t.String()
}

func writeList(sb *strings.Builder, list []Type) {
	for i, t := range list {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(typeString(t))
	}
}

// maxUnderlyingDepth bounds Named chains; cyclic definitions are rejected upstream.
const maxUnderlyingDepth = 32

// Underlying follows Named types to the first non-Named type. It returns nil when the chain
// does not end within a bounded number of steps or ends in an unresolvable type.
func Underlying(t Type) Type {
	for i := 0; i < maxUnderlyingDepth; i++ {
		named, ok := t.(*Named)
		if !ok {
			return t
		}
		t = named.Underlying()
	}

	return nil
}

// Deref returns the pointee of a pointer type, or t itself.
func Deref(t Type) Type {
	if p, ok := t.(*Pointer); ok {
		return p.Target
	}

	return t
}

// Identical reports whether a and b denote the same type. Named types compare by declaring
// TypeSpec (or by name for predeclared named types); composite types compare structurally.
func Identical(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch x := a.(type) {
	case *Primitive:
		y, ok := b.(*Primitive)
		return ok && x.Name == y.Name
	case *Nil:
		_, ok := b.(*Nil)
		return ok
	case *Pointer:
		y, ok := b.(*Pointer)
		return ok && Identical(x.Target, y.Target)
	case *Slice:
		y, ok := b.(*Slice)
		return ok && Identical(x.Elem, y.Elem)
	case *Array:
		y, ok := b.(*Array)
		return ok && x.Len == y.Len && Identical(x.Elem, y.Elem)
	case *Map:
		y, ok := b.(*Map)
		return ok && Identical(x.Key, y.Key) && Identical(x.Value, y.Value)
	case *Chan:
		y, ok := b.(*Chan)
		return ok && x.Dir == y.Dir && Identical(x.Elem, y.Elem)
	case *Func:
		y, ok := b.(*Func)
		return ok && identicalLists(x.Params, y.Params) && identicalLists(x.Results, y.Results)
	case *Tuple:
		y, ok := b.(*Tuple)
		return ok && identicalLists(x.Types, y.Types)
	case *Struct:
		y, ok := b.(*Struct)
		return ok && identicalStructs(x, y)
	case *Interface:
		y, ok := b.(*Interface)
		return ok && identicalInterfaces(x, y)
	case *Package:
		y, ok := b.(*Package)
		return ok && x.Path == y.Path
	case *Named:
		y, ok := b.(*Named)
		if !ok {
			return false
		}
		if x.Spec.IsValid() || y.Spec.IsValid() {
			return x.Spec == y.Spec
		}
		return x.Name == y.Name && x.PkgPath == y.PkgPath
	}

	return false
}

// identicalStructs compares field names, embedding and field types in declaration order.
func identicalStructs(x, y *Struct) bool {
	if x == y || (x.Node.IsValid() && x.Node == y.Node) {
		return true
	}

	if len(x.Fields) != len(y.Fields) {
		return false
	}

	for i, f := range x.Fields {
		g := y.Fields[i]
		if f.Name != g.Name || f.Embedded != g.Embedded {
			return false
		}
		if !identicalResolved(x.FieldType(f), y.FieldType(g)) {
			return false
		}
	}

	return true
}

// identicalInterfaces compares method sets by name and signature, in any order, and embedded
// interfaces in order.
func identicalInterfaces(x, y *Interface) bool {
	if x == y || (x.Node.IsValid() && x.Node == y.Node) {
		return true
	}

	if len(x.Methods) != len(y.Methods) || len(x.Embedded) != len(y.Embedded) {
		return false
	}

	others := make(map[string]Method, len(y.Methods))
	for _, m := range y.Methods {
		others[m.Name] = m
	}

	for _, m := range x.Methods {
		other, ok := others[m.Name]
		if !ok || !identicalResolved(x.MethodType(m), y.MethodType(other)) {
			return false
		}
	}

	for k := range x.Embedded {
		if !identicalResolved(x.EmbeddedType(k), y.EmbeddedType(k)) {
			return false
		}
	}

	return true
}

// identicalResolved is Identical for components that must both be known.
func identicalResolved(a, b Type) bool {
	return a != nil && b != nil && Identical(a, b)
}

func identicalLists(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if !Identical(a[i], b[i]) {
			return false
		}
	}

	return true
}
