package types

// Visitor holds one optional callback per type kind. Visit calls exactly the callback that
// matches the visited type; a nil callback forwards the accumulator unchanged, so callers only
// fill in the kinds they handle. The visitor itself is passed to every callback so that a
// callback can recurse into component types with the same behaviour.
type Visitor[D any] struct {
	Primitive func(t *Primitive, data D, v *Visitor[D]) D
	Pointer   func(t *Pointer, data D, v *Visitor[D]) D
	Struct    func(t *Struct, data D, v *Visitor[D]) D
	Map       func(t *Map, data D, v *Visitor[D]) D
	Named     func(t *Named, data D, v *Visitor[D]) D
	Interface func(t *Interface, data D, v *Visitor[D]) D
	Package   func(t *Package, data D, v *Visitor[D]) D
	Slice     func(t *Slice, data D, v *Visitor[D]) D
	Array     func(t *Array, data D, v *Visitor[D]) D
	Chan      func(t *Chan, data D, v *Visitor[D]) D
	Func      func(t *Func, data D, v *Visitor[D]) D
	Tuple     func(t *Tuple, data D, v *Visitor[D]) D
	Nil       func(t *Nil, data D, v *Visitor[D]) D
}

// Visit dispatches t to the matching callback of v and returns the resulting accumulator.
// A nil type leaves data unchanged.
func Visit[D any](t Type, data D, v *Visitor[D]) D {
	switch t := t.(type) {
	case *Primitive:
		if v.Primitive != nil {
			return v.Primitive(t, data, v)
		}
	case *Pointer:
		if v.Pointer != nil {
			return v.Pointer(t, data, v)
		}
	case *Struct:
		if v.Struct != nil {
			return v.Struct(t, data, v)
		}
	case *Map:
		if v.Map != nil {
			return v.Map(t, data, v)
		}
	case *Named:
		if v.Named != nil {
			return v.Named(t, data, v)
		}
	case *Interface:
		if v.Interface != nil {
			return v.Interface(t, data, v)
		}
	case *Package:
		if v.Package != nil {
			return v.Package(t, data, v)
		}
	case *Slice:
		if v.Slice != nil {
			return v.Slice(t, data, v)
		}
	case *Array:
		if v.Array != nil {
			return v.Array(t, data, v)
		}
	case *Chan:
		if v.Chan != nil {
			return v.Chan(t, data, v)
		}
	case *Func:
		if v.Func != nil {
			return v.Func(t, data, v)
		}
	case *Tuple:
		if v.Tuple != nil {
			return v.Tuple(t, data, v)
		}
	case *Nil:
		if v.Nil != nil {
			return v.Nil(t, data, v)
		}
	}

	return data
}

// VisitAll folds Visit over several candidate types, threading the accumulator through each.
func VisitAll[D any](candidates []Type, data D, v *Visitor[D]) D {
	for _, t := range candidates {
		data = Visit(t, data, v)
	}

	return data
}
