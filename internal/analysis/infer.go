package analysis

import (
	"go/token"

	"github.com/CWBudde/gosym-lsp/internal/scope"
	"github.com/CWBudde/gosym-lsp/internal/syntax"
	"github.com/CWBudde/gosym-lsp/internal/types"
)

func isTypeExprKind(k syntax.Kind) bool {
	switch k {
	case syntax.KindTypeName, syntax.KindPointerType, syntax.KindArrayType, syntax.KindSliceType,
		syntax.KindMapType, syntax.KindChanType, syntax.KindFuncType, syntax.KindStructType,
		syntax.KindInterfaceType:
		return true
	}

	return false
}

func (q *query) inferType(n syntax.Node) types.Type {
	if !n.IsValid() {
		return nil
	}

	if isTypeExprKind(n.Kind()) {
		return q.typeOfTypeExpr(n)
	}

	if !q.enter() {
		return nil
	}
	defer q.leave()

	switch n.Kind() {
	case syntax.KindIdent:
		return q.identType(n)
	case syntax.KindBasicLit:
		return basicLitType(n.Op())
	case syntax.KindCompositeLit:
		if typeExpr := n.Child(syntax.RoleType); typeExpr.IsValid() {
			return q.typeOfTypeExpr(typeExpr)
		}
		return q.elidedLiteralType(n)
	case syntax.KindFuncLit:
		return q.typeOfTypeExpr(n.Child(syntax.RoleType))
	case syntax.KindParenExpr:
		return q.inferType(n.Child(syntax.RoleX))
	case syntax.KindSelectorExpr:
		return q.inferType(n.Child(syntax.RoleSel))
	case syntax.KindIndexExpr:
		return q.indexType(n)
	case syntax.KindSliceExpr:
		return q.sliceType(n)
	case syntax.KindTypeAssertExpr:
		if n.Op() == token.TYPE {
			return nil
		}
		return q.typeOfTypeExpr(n.Child(syntax.RoleType))
	case syntax.KindCallExpr:
		return q.callType(n)
	case syntax.KindBuiltinCall:
		return q.builtinType(n)
	case syntax.KindStarExpr:
		return q.starType(n)
	case syntax.KindUnaryExpr:
		return q.unaryType(n)
	case syntax.KindBinaryExpr:
		return q.binaryType(n)
	}

	if d, ok := scope.DeclarationOf(n); ok {
		return q.declType(d, n)
	}

	return nil
}

func basicLitType(kind token.Token) types.Type {
	switch kind {
	case token.INT:
		return types.Int
	case token.FLOAT:
		return types.Float64
	case token.IMAG:
		return types.Complex128
	case token.CHAR:
		return types.Rune
	case token.STRING:
		return types.String
	}

	return nil
}

func (q *query) identType(n syntax.Node) types.Type {
	if IsNil(n) {
		return types.UntypedNil
	}

	if parent := n.Parent(); parent.Kind() == syntax.KindTypeName && n.Role() == syntax.RoleName {
		return q.typeOfTypeExpr(parent)
	}

	if d, ok := q.resolve(n); ok {
		return q.declType(d, n)
	}

	switch n.Text() {
	case "true", "false":
		return types.Bool
	case "iota":
		return types.Int
	}

	return types.Universe(n.Text())
}

// elidedLiteralType returns the type of a composite literal written without its type inside
// an enclosing literal.
func (q *query) elidedLiteralType(lit syntax.Node) types.Type {
	parent := lit.Parent()

	var (
		outer syntax.Node
		isKey bool
	)

	switch {
	case parent.Kind() == syntax.KindKeyedElement:
		outer = parent.Parent()
		isKey = lit.Role() == syntax.RoleKey
	case lit.Role() == syntax.RoleElem && parent.Kind() == syntax.KindCompositeLit:
		outer = parent
	default:
		return nil
	}

	switch u := literalUnderlying(q.inferType(outer)).(type) {
	case *types.Slice:
		return u.Elem
	case *types.Array:
		return u.Elem
	case *types.Map:
		if isKey {
			return u.Key
		}
		return u.Value
	}

	return nil
}

// container returns the underlying type of t, looking through a pointer to an array.
func container(t types.Type) types.Type {
	u := types.Underlying(t)
	if p, ok := u.(*types.Pointer); ok {
		if arr, ok := types.Underlying(p.Target).(*types.Array); ok {
			return arr
		}
	}

	return u
}

func (q *query) indexType(n syntax.Node) types.Type {
	t := q.inferType(n.Child(syntax.RoleX))

	switch u := container(t).(type) {
	case *types.Slice:
		return u.Elem
	case *types.Array:
		return u.Elem
	case *types.Map:
		return u.Value
	case *types.Primitive:
		if u.Name == "string" {
			return types.Byte
		}
	case *types.Func:
		// instantiation of a generic function
		return t
	}

	return nil
}

func (q *query) sliceType(n syntax.Node) types.Type {
	t := q.inferType(n.Child(syntax.RoleX))

	switch u := container(t).(type) {
	case *types.Slice:
		return t
	case *types.Array:
		return &types.Slice{Elem: u.Elem}
	case *types.Primitive:
		if u.Name == "string" {
			return t
		}
	}

	return nil
}

func (q *query) callType(n syntax.Node) types.Type {
	fun := n.Child(syntax.RoleFun)

	if isTypeExprKind(fun.Kind()) || q.isTypeRef(fun) {
		// conversion
		return q.inferType(fun)
	}

	f, ok := types.Underlying(q.inferType(fun)).(*types.Func)
	if !ok {
		return nil
	}

	switch len(f.Results) {
	case 0:
		return nil
	case 1:
		return f.Results[0]
	default:
		return &types.Tuple{Types: f.Results}
	}
}

// isTypeRef reports whether expression n names a type, as the function of a conversion does.
func (q *query) isTypeRef(n syntax.Node) bool {
	switch n.Kind() {
	case syntax.KindParenExpr, syntax.KindStarExpr:
		return q.isTypeRef(n.Child(syntax.RoleX))
	case syntax.KindSelectorExpr:
		d, ok := q.resolve(n.Child(syntax.RoleSel))
		return ok && d.Kind == scope.DeclTypeSpec
	case syntax.KindIdent:
		if d, ok := q.resolve(n); ok {
			return d.Kind == scope.DeclTypeSpec
		}
		return types.IsPredeclared(n.Text())
	}

	return isTypeExprKind(n.Kind())
}

func (q *query) builtinType(n syntax.Node) types.Type {
	switch n.Text() {
	case "new", "make":
		typeArg := n.Child(syntax.RoleType)
		if !typeArg.IsValid() {
			return nil
		}
		return q.typeOfTypeExpr(typeArg)
	case "len", "cap", "copy":
		return types.Int
	case "append", "min", "max":
		if args := n.ChildrenWith(syntax.RoleArg); len(args) > 0 {
			return q.inferType(args[0])
		}
	case "real", "imag":
		return types.Float64
	case "complex":
		return types.Complex128
	}

	return nil
}

func (q *query) starType(n syntax.Node) types.Type {
	x := n.Child(syntax.RoleX)

	if q.isTypeRef(x) {
		if t := q.inferType(x); t != nil {
			return &types.Pointer{Target: t}
		}
		return nil
	}

	if p, ok := types.Underlying(q.inferType(x)).(*types.Pointer); ok {
		return p.Target
	}

	return nil
}

func (q *query) unaryType(n syntax.Node) types.Type {
	t := q.inferType(n.Child(syntax.RoleX))
	if t == nil {
		return nil
	}

	switch n.Op() {
	case token.AND:
		return &types.Pointer{Target: t}
	case token.ARROW:
		if ch, ok := types.Underlying(t).(*types.Chan); ok {
			return ch.Elem
		}
		return nil
	}

	return t
}

func (q *query) binaryType(n syntax.Node) types.Type {
	switch n.Op() {
	case token.EQL, token.NEQ, token.LSS, token.LEQ, token.GTR, token.GEQ, token.LAND, token.LOR:
		return types.Bool
	}

	x := n.Child(syntax.RoleX)
	xt := q.inferType(x)

	if n.Op() == token.SHL || n.Op() == token.SHR {
		return xt
	}

	// an untyped literal operand takes the type of the other operand
	if xt == nil || x.Kind() == syntax.KindBasicLit {
		if yt := q.inferType(n.Child(syntax.RoleY)); yt != nil {
			return yt
		}
	}

	return xt
}

// declType returns the type of the entity d declares. use, when valid, is the place the
// declaration is used from; it narrows type switch variables to the type of their clause.
func (q *query) declType(d scope.Declaration, use syntax.Node) types.Type {
	if q.visiting[d.Node] {
		return nil
	}

	q.visiting[d.Node] = true
	defer delete(q.visiting, d.Node)

	n := d.Node

	switch d.Kind {
	case scope.DeclVariable:
		return q.varType(n, use)
	case scope.DeclConst:
		return q.constType(n)
	case scope.DeclParameter, scope.DeclReceiver, scope.DeclField:
		return q.typeOfTypeExpr(n.Parent().Child(syntax.RoleType))
	case scope.DeclFunction, scope.DeclMethod:
		return q.typeOfTypeExpr(n.Child(syntax.RoleType))
	case scope.DeclTypeSpec:
		return q.declaredType(n)
	case scope.DeclPackage:
		return packageType(d)
	}

	return nil
}

func (q *query) varType(def, use syntax.Node) types.Type {
	spec := def.Parent()

	switch spec.Kind() {
	case syntax.KindVarSpec, syntax.KindShortVarDecl:
		if typeExpr := spec.Child(syntax.RoleType); typeExpr.IsValid() {
			return q.typeOfTypeExpr(typeExpr)
		}
		return q.positionalValueType(spec, def)
	case syntax.KindRangeClause:
		return q.rangeVarType(spec, def)
	case syntax.KindTypeSwitchGuard:
		return q.guardVarType(spec, use)
	}

	return nil
}

// positionalValueType returns the type of the value assigned to def in spec. With a single
// multi-valued right-hand side the name's position selects the result.
func (q *query) positionalValueType(spec, def syntax.Node) types.Type {
	names := spec.ChildrenWith(syntax.RoleName)
	values := spec.ChildrenWith(syntax.RoleValue)

	idx := indexOf(names, def)
	if idx < 0 {
		return nil
	}

	if len(values) == 1 && len(names) > 1 {
		value := values[0]
		t := q.inferType(value)

		if tuple, ok := t.(*types.Tuple); ok {
			if idx < len(tuple.Types) {
				return tuple.Types[idx]
			}
			return nil
		}

		if q.isCommaOk(value) {
			switch idx {
			case 0:
				return t
			case 1:
				return types.Bool
			}
		}

		return nil
	}

	if idx >= len(values) {
		return nil
	}

	return q.inferType(values[idx])
}

func indexOf(nodes []syntax.Node, n syntax.Node) int {
	for i, cur := range nodes {
		if cur == n {
			return i
		}
	}

	return -1
}

// isCommaOk reports whether expression n yields an extra boolean in a two-value assignment.
func (q *query) isCommaOk(n syntax.Node) bool {
	for n.Kind() == syntax.KindParenExpr {
		n = n.Child(syntax.RoleX)
	}

	switch n.Kind() {
	case syntax.KindTypeAssertExpr:
		return true
	case syntax.KindUnaryExpr:
		return n.Op() == token.ARROW
	case syntax.KindIndexExpr:
		_, isMap := types.Underlying(q.inferType(n.Child(syntax.RoleX))).(*types.Map)
		return isMap
	}

	return false
}

func (q *query) rangeVarType(clause, def syntax.Node) types.Type {
	idx := indexOf(clause.ChildrenWith(syntax.RoleName), def)
	if idx < 0 {
		return nil
	}

	var key, value types.Type

	switch u := container(q.inferType(clause.Child(syntax.RoleX))).(type) {
	case *types.Slice:
		key, value = types.Int, u.Elem
	case *types.Array:
		key, value = types.Int, u.Elem
	case *types.Map:
		key, value = u.Key, u.Value
	case *types.Chan:
		key = u.Elem
	case *types.Primitive:
		if u.Name == "string" {
			key, value = types.Int, types.Rune
		} else {
			key = u
		}
	case *types.Func:
		// range over an iterator function
		if len(u.Params) == 1 {
			if yield, ok := types.Underlying(u.Params[0]).(*types.Func); ok && idx < len(yield.Params) {
				return yield.Params[idx]
			}
		}
	}

	if idx == 0 {
		return key
	}

	return value
}

func (q *query) guardVarType(guard, use syntax.Node) types.Type {
	sw := guard.Parent()

	for clause := use.Ancestor(syntax.KindTypeCaseClause); clause.IsValid(); clause = clause.Ancestor(syntax.KindTypeCaseClause) {
		if clause.Parent().Parent() != sw {
			continue
		}

		cases := clause.ChildrenWith(syntax.RoleCase)
		if len(cases) == 1 && cases[0].Text() != "nil" {
			return q.typeOfTypeExpr(cases[0])
		}

		break
	}

	return q.inferType(guard.Child(syntax.RoleX))
}

// constType returns the type of a constant. A spec without values repeats the type and
// values of the nearest preceding spec that has them.
func (q *query) constType(def syntax.Node) types.Type {
	spec := def.Parent()
	idx := indexOf(spec.ChildrenWith(syntax.RoleName), def)

	src := spec
	prev := spec.PrevSiblings()

	for !src.Child(syntax.RoleType).IsValid() && !src.Child(syntax.RoleValue).IsValid() {
		if len(prev) == 0 {
			return nil
		}
		src, prev = prev[0], prev[1:]
	}

	if typeExpr := src.Child(syntax.RoleType); typeExpr.IsValid() {
		return q.typeOfTypeExpr(typeExpr)
	}

	values := src.ChildrenWith(syntax.RoleValue)
	if idx < 0 || idx >= len(values) {
		return nil
	}

	return q.inferType(values[idx])
}

// typeOfTypeExpr converts a type expression into a type.
func (q *query) typeOfTypeExpr(n syntax.Node) types.Type {
	if !n.IsValid() {
		return nil
	}

	if !q.enter() {
		return nil
	}
	defer q.leave()

	switch n.Kind() {
	case syntax.KindTypeName:
		return q.typeNameType(n)
	case syntax.KindPointerType:
		if elem := q.typeOfTypeExpr(n.Child(syntax.RoleElem)); elem != nil {
			return &types.Pointer{Target: elem}
		}
	case syntax.KindSliceType:
		if elem := q.typeOfTypeExpr(n.Child(syntax.RoleElem)); elem != nil {
			return &types.Slice{Elem: elem, Variadic: n.Op() == token.ELLIPSIS}
		}
	case syntax.KindArrayType:
		if elem := q.typeOfTypeExpr(n.Child(syntax.RoleElem)); elem != nil {
			return &types.Array{Len: arrayLen(n), Elem: elem}
		}
	case syntax.KindMapType:
		key := q.typeOfTypeExpr(n.Child(syntax.RoleKey))
		value := q.typeOfTypeExpr(n.Child(syntax.RoleValue))
		if key != nil && value != nil {
			return &types.Map{Key: key, Value: value}
		}
	case syntax.KindChanType:
		if elem := q.typeOfTypeExpr(n.Child(syntax.RoleElem)); elem != nil {
			return &types.Chan{Dir: n.Text(), Elem: elem}
		}
	case syntax.KindFuncType:
		return &types.Func{
			Params:  q.paramTypes(n.Child(syntax.RoleParams)),
			Results: q.paramTypes(n.Child(syntax.RoleResults)),
		}
	case syntax.KindStructType:
		return q.structType(n)
	case syntax.KindInterfaceType:
		return q.interfaceType(n)
	}

	return nil
}

func arrayLen(n syntax.Node) string {
	length := n.Child(syntax.RoleLen)
	switch {
	case !length.IsValid():
		return "..."
	case length.Is(syntax.KindBasicLit, syntax.KindIdent):
		return length.Text()
	default:
		return "?"
	}
}

func (q *query) paramTypes(list syntax.Node) []types.Type {
	var out []types.Type

	for _, decl := range list.Children() {
		t := q.typeOfTypeExpr(decl.Child(syntax.RoleType))

		count := len(decl.ChildrenWith(syntax.RoleName))
		if count == 0 {
			count = 1
		}

		for i := 0; i < count; i++ {
			out = append(out, t)
		}
	}

	return out
}

// resolveTypeExpr backs the on-demand component types of struct and interface literals. Each
// call runs as its own query.
func (a *Analyzer) resolveTypeExpr(expr syntax.Node) types.Type {
	return a.newQuery().typeOfTypeExpr(expr)
}

func (q *query) structType(n syntax.Node) *types.Struct {
	st := &types.Struct{Node: n, Resolve: q.a.resolveTypeExpr}

	for _, decl := range n.ChildrenWith(syntax.RoleElem) {
		typeExpr := decl.Child(syntax.RoleType)
		for _, def := range decl.ChildrenWith(syntax.RoleName) {
			st.Fields = append(st.Fields, types.Field{
				Name:     def.Text(),
				Embedded: def.Kind() == syntax.KindAnonymousField,
				Decl:     def,
				TypeExpr: typeExpr,
			})
		}
	}

	return st
}

func (q *query) interfaceType(n syntax.Node) *types.Interface {
	it := &types.Interface{Node: n, Resolve: q.a.resolveTypeExpr}

	for _, child := range n.Children() {
		switch {
		case child.Kind() == syntax.KindMethodSpec:
			it.Methods = append(it.Methods, types.Method{Name: child.Text(), Decl: child})
		case child.Role() == syntax.RoleEmbed:
			it.Embedded = append(it.Embedded, child)
		}
	}

	return it
}

func (q *query) typeNameType(tn syntax.Node) types.Type {
	name := tn.Text()

	if qual := tn.Child(syntax.RoleQualifier); qual.IsValid() {
		d, ok := q.lookupName(qual, qual.Text(), packageKinds)
		if !ok {
			return nil
		}

		pkg := packageType(d)
		for _, member := range q.a.index.LookupImported(pkg.Path, name) {
			if member.Kind == scope.DeclTypeSpec {
				return q.declaredType(member.Node)
			}
		}

		// declared outside the workspace; the name is all that is known
		return types.NewNamed(pkg.Name+"."+name, pkg.Path, syntax.Node{}, nil)
	}

	if d, ok := q.lookupName(tn.Child(syntax.RoleName), name, acceptKinds(scope.DeclTypeSpec)); ok {
		return q.declaredType(d.Node)
	}

	return types.Universe(name)
}

func (q *query) declaredType(spec syntax.Node) types.Type {
	if spec.Kind() != syntax.KindTypeSpec {
		return nil
	}

	typeExpr := spec.Child(syntax.RoleType)

	if spec.Op() == token.ASSIGN {
		if q.visiting[spec] {
			return nil
		}
		q.visiting[spec] = true
		defer delete(q.visiting, spec)

		return q.typeOfTypeExpr(typeExpr)
	}

	a := q.a

	return types.NewNamed(spec.Text(), a.importPath(spec.Tree()), spec, func() types.Type {
		return a.newQuery().typeOfTypeExpr(typeExpr)
	})
}

func (a *Analyzer) importPath(tree *syntax.Tree) string {
	if ps, ok := a.index.(PackageSource); ok {
		if p := ps.ImportPathOf(tree); p != "" {
			return p
		}
	}

	return tree.PackageName()
}

func packageType(d scope.Declaration) *types.Package {
	return &types.Package{Name: d.Name, Path: d.Node.Value(), Decl: d.Node}
}
