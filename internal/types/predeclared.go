package types

import "github.com/CWBudde/gosym-lsp/internal/syntax"

// The predeclared basic types.
var (
	Bool       = &Primitive{Name: "bool"}
	Int        = &Primitive{Name: "int"}
	Float64    = &Primitive{Name: "float64"}
	Complex128 = &Primitive{Name: "complex128"}
	Rune       = &Primitive{Name: "rune"}
	Byte       = &Primitive{Name: "byte"}
	String     = &Primitive{Name: "string"}
	UntypedNil = &Nil{}
)

var primitiveNames = []string{
	"bool", "byte", "complex64", "complex128", "float32", "float64",
	"int", "int8", "int16", "int32", "int64", "rune", "string",
	"uint", "uint8", "uint16", "uint32", "uint64", "uintptr",
}

var primitives = func() map[string]*Primitive {
	m := make(map[string]*Primitive, len(primitiveNames))
	for _, p := range []*Primitive{Bool, Int, Float64, Complex128, Rune, Byte, String} {
		m[p.Name] = p
	}
	for _, name := range primitiveNames {
		if _, ok := m[name]; !ok {
			m[name] = &Primitive{Name: name}
		}
	}
	return m
}()

// errorType is the predeclared error interface.
var errorType = func() *Named {
	iface := &Interface{Methods: []Method{{Name: "Error"}}}
	return NewNamed("error", "", syntax.Node{}, func() Type { return iface })
}()

// anyType is the predeclared alias for the empty interface.
var anyType = &Interface{}

// Universe returns the predeclared type with the given name, or nil.
func Universe(name string) Type {
	switch name {
	case "error":
		return errorType
	case "any":
		return anyType
	}

	if p, ok := primitives[name]; ok {
		return p
	}

	return nil
}

// IsPredeclared reports whether name is a predeclared type name.
func IsPredeclared(name string) bool {
	return Universe(name) != nil
}
