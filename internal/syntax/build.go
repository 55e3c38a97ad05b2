package syntax

import (
	"go/ast"
	"go/token"
	"path"
	"strconv"
)

// builtinFuncs are the predeclared functions whose calls become BuiltinCall nodes.
var builtinFuncs = map[string]bool{
	"append": true, "cap": true, "clear": true, "close": true, "complex": true, "copy": true,
	"delete": true, "imag": true, "len": true, "make": true, "max": true, "min": true,
	"new": true, "panic": true, "print": true, "println": true, "real": true, "recover": true,
}

// IsBuiltinFunc reports whether name is a predeclared function.
func IsBuiltinFunc(name string) bool {
	return builtinFuncs[name]
}

type builder struct {
	tree *Tree
}

// Build converts a parsed go/ast file into an arena tree. Declaring identifiers become
// definition nodes, identifiers in type position become TypeName nodes, and `:=` statements
// become ShortVarDecl nodes so that later passes can classify names from shape alone.
func Build(fset *token.FileSet, name string, file *ast.File) *Tree {
	t := &Tree{
		name: name,
		fset: fset,
	}
	if file.Name != nil {
		t.pkgName = file.Name.Name
	}
	if fset != nil {
		t.file = fset.File(file.Pos())
	}

	b := &builder{tree: t}
	root := b.add(NoNode, RoleNone, KindFile, file.Pos(), file.End())
	b.tree.nodes[root].text = t.pkgName
	if file.Name != nil {
		b.tree.nodes[root].namePos = file.Name.Pos()
	}

	for _, d := range file.Decls {
		b.decl(root, RoleDecl, d)
	}

	return t
}

func (b *builder) add(parent NodeID, role Role, kind Kind, pos, end token.Pos) NodeID {
	id := NodeID(len(b.tree.nodes))
	b.tree.nodes = append(b.tree.nodes, node{
		kind:   kind,
		role:   role,
		parent: parent,
		pos:    pos,
		end:    end,
	})

	if parent != NoNode {
		b.tree.nodes[parent].children = append(b.tree.nodes[parent].children, id)
	}

	return id
}

func (b *builder) named(parent NodeID, role Role, kind Kind, n ast.Node, ident *ast.Ident) NodeID {
	id := b.add(parent, role, kind, n.Pos(), n.End())
	if ident != nil {
		b.tree.nodes[id].text = ident.Name
		b.tree.nodes[id].namePos = ident.Pos()
	}

	return id
}

func (b *builder) ident(parent NodeID, role Role, kind Kind, ident *ast.Ident) NodeID {
	return b.named(parent, role, kind, ident, ident)
}

func (b *builder) decl(parent NodeID, role Role, d ast.Decl) {
	switch d := d.(type) {
	case *ast.GenDecl:
		b.genDecl(parent, role, d)
	case *ast.FuncDecl:
		b.funcDecl(parent, role, d)
	default:
		b.add(parent, role, KindBad, d.Pos(), d.End())
	}
}

func (b *builder) genDecl(parent NodeID, role Role, d *ast.GenDecl) {
	var kind Kind

	switch d.Tok {
	case token.IMPORT:
		kind = KindImportDecl
	case token.CONST:
		kind = KindConstDecl
	case token.VAR:
		kind = KindVarDecl
	case token.TYPE:
		kind = KindTypeDecl
	default:
		b.add(parent, role, KindBad, d.Pos(), d.End())
		return
	}

	group := b.add(parent, role, kind, d.Pos(), d.End())

	for _, spec := range d.Specs {
		switch s := spec.(type) {
		case *ast.ImportSpec:
			b.importSpec(group, s)
		case *ast.ValueSpec:
			if d.Tok == token.CONST {
				b.valueSpec(group, KindConstSpec, KindConstDef, s)
			} else {
				b.valueSpec(group, KindVarSpec, KindVarDef, s)
			}
		case *ast.TypeSpec:
			id := b.named(group, RoleStmt, KindTypeSpec, s, s.Name)
			if s.Assign.IsValid() {
				b.tree.nodes[id].op = token.ASSIGN
			}
			b.typeExpr(id, RoleType, s.Type)
		}
	}
}

func (b *builder) importSpec(parent NodeID, s *ast.ImportSpec) {
	importPath, err := strconv.Unquote(s.Path.Value)
	if err != nil {
		importPath = s.Path.Value
	}

	id := b.add(parent, RoleStmt, KindImportSpec, s.Pos(), s.End())
	n := &b.tree.nodes[id]
	n.value = importPath

	if s.Name != nil {
		n.text = s.Name.Name
		n.namePos = s.Name.Pos()
	} else {
		n.text = path.Base(importPath)
		n.namePos = s.Path.Pos()
	}

	lit := b.add(id, RoleValue, KindBasicLit, s.Path.Pos(), s.Path.End())
	b.tree.nodes[lit].op = s.Path.Kind
	b.tree.nodes[lit].text = s.Path.Value
}

func (b *builder) valueSpec(parent NodeID, specKind, defKind Kind, s *ast.ValueSpec) {
	spec := b.add(parent, RoleStmt, specKind, s.Pos(), s.End())

	for _, name := range s.Names {
		b.ident(spec, RoleName, defKind, name)
	}

	if s.Type != nil {
		b.typeExpr(spec, RoleType, s.Type)
	}

	for _, v := range s.Values {
		b.expr(spec, RoleValue, v)
	}
}

func (b *builder) funcDecl(parent NodeID, role Role, d *ast.FuncDecl) {
	kind := KindFuncDecl
	if d.Recv != nil {
		kind = KindMethodDecl
	}

	fn := b.named(parent, role, kind, d, d.Name)

	if d.Recv != nil {
		for _, field := range d.Recv.List {
			recv := b.add(fn, RoleRecv, KindReceiver, field.Pos(), field.End())
			b.tree.nodes[recv].value = receiverBaseName(field.Type)

			for _, name := range field.Names {
				b.ident(recv, RoleName, KindReceiverDef, name)
			}

			b.typeExpr(recv, RoleType, field.Type)
		}
	}

	b.funcType(fn, RoleType, d.Type)

	if d.Body != nil {
		b.block(fn, RoleBody, d.Body)
	}
}

// receiverBaseName strips pointers, parentheses and type arguments from a receiver type.
func receiverBaseName(e ast.Expr) string {
	for {
		switch t := e.(type) {
		case *ast.StarExpr:
			e = t.X
		case *ast.ParenExpr:
			e = t.X
		case *ast.IndexExpr:
			e = t.X
		case *ast.IndexListExpr:
			e = t.X
		case *ast.Ident:
			return t.Name
		default:
			return ""
		}
	}
}

func (b *builder) funcType(parent NodeID, role Role, ft *ast.FuncType) {
	if ft == nil {
		return
	}

	id := b.add(parent, role, KindFuncType, ft.Pos(), ft.End())
	b.paramList(id, RoleParams, ft.Params)
	b.paramList(id, RoleResults, ft.Results)
}

func (b *builder) paramList(parent NodeID, role Role, fields *ast.FieldList) {
	if fields == nil {
		return
	}

	list := b.add(parent, role, KindParamList, fields.Pos(), fields.End())

	for _, field := range fields.List {
		decl := b.add(list, RoleElem, KindParamDecl, field.Pos(), field.End())
		for _, name := range field.Names {
			b.ident(decl, RoleName, KindParamDef, name)
		}
		b.typeExpr(decl, RoleType, field.Type)
	}
}

func (b *builder) typeExpr(parent NodeID, role Role, e ast.Expr) {
	switch t := e.(type) {
	case nil:
		return
	case *ast.Ident:
		id := b.named(parent, role, KindTypeName, t, t)
		b.ident(id, RoleName, KindIdent, t)
	case *ast.SelectorExpr:
		pkg, ok := t.X.(*ast.Ident)
		if !ok {
			b.expr(parent, role, t)
			return
		}
		id := b.named(parent, role, KindTypeName, t, t.Sel)
		b.ident(id, RoleQualifier, KindIdent, pkg)
		b.ident(id, RoleName, KindIdent, t.Sel)
	case *ast.ParenExpr:
		b.typeExpr(parent, role, t.X)
	case *ast.StarExpr:
		id := b.add(parent, role, KindPointerType, t.Pos(), t.End())
		b.typeExpr(id, RoleElem, t.X)
	case *ast.Ellipsis:
		id := b.add(parent, role, KindSliceType, t.Pos(), t.End())
		b.tree.nodes[id].op = token.ELLIPSIS
		b.typeExpr(id, RoleElem, t.Elt)
	case *ast.ArrayType:
		kind := KindArrayType
		if t.Len == nil {
			kind = KindSliceType
		}
		id := b.add(parent, role, kind, t.Pos(), t.End())
		if _, auto := t.Len.(*ast.Ellipsis); t.Len != nil && !auto {
			b.expr(id, RoleLen, t.Len)
		}
		b.typeExpr(id, RoleElem, t.Elt)
	case *ast.MapType:
		id := b.add(parent, role, KindMapType, t.Pos(), t.End())
		b.typeExpr(id, RoleKey, t.Key)
		b.typeExpr(id, RoleValue, t.Value)
	case *ast.ChanType:
		id := b.add(parent, role, KindChanType, t.Pos(), t.End())
		switch t.Dir {
		case ast.SEND:
			b.tree.nodes[id].text = "chan<-"
		case ast.RECV:
			b.tree.nodes[id].text = "<-chan"
		default:
			b.tree.nodes[id].text = "chan"
		}
		b.typeExpr(id, RoleElem, t.Value)
	case *ast.FuncType:
		b.funcType(parent, role, t)
	case *ast.StructType:
		b.structType(parent, role, t)
	case *ast.InterfaceType:
		b.interfaceType(parent, role, t)
	case *ast.IndexExpr:
		b.typeExpr(parent, role, t.X)
	case *ast.IndexListExpr:
		b.typeExpr(parent, role, t.X)
	default:
		b.expr(parent, role, e)
	}
}

func (b *builder) structType(parent NodeID, role Role, st *ast.StructType) {
	id := b.add(parent, role, KindStructType, st.Pos(), st.End())
	if st.Fields == nil {
		return
	}

	for _, field := range st.Fields.List {
		decl := b.add(id, RoleElem, KindFieldDecl, field.Pos(), field.End())

		if len(field.Names) == 0 {
			embedded := b.add(decl, RoleName, KindAnonymousField, field.Type.Pos(), field.Type.End())
			if base := embeddedName(field.Type); base != nil {
				b.tree.nodes[embedded].text = base.Name
				b.tree.nodes[embedded].namePos = base.Pos()
			}
		}

		for _, name := range field.Names {
			b.ident(decl, RoleName, KindFieldDef, name)
		}

		b.typeExpr(decl, RoleType, field.Type)
	}
}

// embeddedName returns the identifier naming an embedded field: T, *T, pkg.T or *pkg.T.
func embeddedName(e ast.Expr) *ast.Ident {
	for {
		switch t := e.(type) {
		case *ast.StarExpr:
			e = t.X
		case *ast.ParenExpr:
			e = t.X
		case *ast.IndexExpr:
			e = t.X
		case *ast.IndexListExpr:
			e = t.X
		case *ast.SelectorExpr:
			return t.Sel
		case *ast.Ident:
			return t
		default:
			return nil
		}
	}
}

func (b *builder) interfaceType(parent NodeID, role Role, it *ast.InterfaceType) {
	id := b.add(parent, role, KindInterfaceType, it.Pos(), it.End())
	if it.Methods == nil {
		return
	}

	for _, field := range it.Methods.List {
		ft, isMethod := field.Type.(*ast.FuncType)
		if !isMethod || len(field.Names) == 0 {
			b.typeExpr(id, RoleEmbed, field.Type)
			continue
		}

		for _, name := range field.Names {
			m := b.named(id, RoleElem, KindMethodSpec, field, name)
			b.funcType(m, RoleType, ft)
		}
	}
}

// isTypeExpr reports whether e can only be a type, which is how conversions such as
// []byte(s) are told apart from calls.
func isTypeExpr(e ast.Expr) bool {
	switch t := e.(type) {
	case *ast.ArrayType, *ast.MapType, *ast.ChanType, *ast.FuncType, *ast.StructType, *ast.InterfaceType:
		return true
	case *ast.ParenExpr:
		return isTypeExpr(t.X)
	}

	return false
}

func (b *builder) expr(parent NodeID, role Role, e ast.Expr) {
	switch x := e.(type) {
	case nil:
		return
	case *ast.Ident:
		b.ident(parent, role, KindIdent, x)
	case *ast.BasicLit:
		id := b.add(parent, role, KindBasicLit, x.Pos(), x.End())
		b.tree.nodes[id].op = x.Kind
		b.tree.nodes[id].text = x.Value
	case *ast.CompositeLit:
		id := b.add(parent, role, KindCompositeLit, x.Pos(), x.End())
		b.typeExpr(id, RoleType, x.Type)
		for _, elt := range x.Elts {
			b.element(id, elt)
		}
	case *ast.KeyValueExpr:
		b.element(parent, x)
	case *ast.FuncLit:
		id := b.add(parent, role, KindFuncLit, x.Pos(), x.End())
		b.funcType(id, RoleType, x.Type)
		b.block(id, RoleBody, x.Body)
	case *ast.ParenExpr:
		id := b.add(parent, role, KindParenExpr, x.Pos(), x.End())
		b.expr(id, RoleX, x.X)
	case *ast.SelectorExpr:
		id := b.add(parent, role, KindSelectorExpr, x.Pos(), x.End())
		b.expr(id, RoleX, x.X)
		b.ident(id, RoleSel, KindIdent, x.Sel)
	case *ast.IndexExpr:
		id := b.add(parent, role, KindIndexExpr, x.Pos(), x.End())
		b.expr(id, RoleX, x.X)
		b.expr(id, RoleIndex, x.Index)
	case *ast.IndexListExpr:
		id := b.add(parent, role, KindIndexExpr, x.Pos(), x.End())
		b.expr(id, RoleX, x.X)
		for _, index := range x.Indices {
			b.expr(id, RoleIndex, index)
		}
	case *ast.SliceExpr:
		id := b.add(parent, role, KindSliceExpr, x.Pos(), x.End())
		b.expr(id, RoleX, x.X)
		b.expr(id, RoleIndex, x.Low)
		b.expr(id, RoleIndex, x.High)
		b.expr(id, RoleIndex, x.Max)
	case *ast.TypeAssertExpr:
		id := b.add(parent, role, KindTypeAssertExpr, x.Pos(), x.End())
		b.expr(id, RoleX, x.X)
		if x.Type == nil {
			b.tree.nodes[id].op = token.TYPE
		} else {
			b.typeExpr(id, RoleType, x.Type)
		}
	case *ast.CallExpr:
		b.call(parent, role, x)
	case *ast.StarExpr:
		id := b.add(parent, role, KindStarExpr, x.Pos(), x.End())
		b.expr(id, RoleX, x.X)
	case *ast.UnaryExpr:
		id := b.add(parent, role, KindUnaryExpr, x.Pos(), x.End())
		b.tree.nodes[id].op = x.Op
		b.expr(id, RoleX, x.X)
	case *ast.BinaryExpr:
		id := b.add(parent, role, KindBinaryExpr, x.Pos(), x.End())
		b.tree.nodes[id].op = x.Op
		b.expr(id, RoleX, x.X)
		b.expr(id, RoleY, x.Y)
	case *ast.ArrayType, *ast.MapType, *ast.ChanType, *ast.FuncType, *ast.StructType, *ast.InterfaceType, *ast.Ellipsis:
		b.typeExpr(parent, role, e)
	default:
		b.add(parent, role, KindBad, e.Pos(), e.End())
	}
}

func (b *builder) element(parent NodeID, e ast.Expr) {
	kv, ok := e.(*ast.KeyValueExpr)
	if !ok {
		b.expr(parent, RoleElem, e)
		return
	}

	id := b.add(parent, RoleElem, KindKeyedElement, kv.Pos(), kv.End())
	b.expr(id, RoleKey, kv.Key)
	b.expr(id, RoleValue, kv.Value)
}

func (b *builder) call(parent NodeID, role Role, c *ast.CallExpr) {
	if fun, ok := c.Fun.(*ast.Ident); ok && builtinFuncs[fun.Name] {
		id := b.add(parent, role, KindBuiltinCall, c.Pos(), c.End())
		b.tree.nodes[id].text = fun.Name
		b.ident(id, RoleFun, KindIdent, fun)

		for i, arg := range c.Args {
			if i == 0 && (fun.Name == "new" || fun.Name == "make") {
				b.typeExpr(id, RoleType, arg)
				continue
			}
			b.expr(id, RoleArg, arg)
		}

		return
	}

	id := b.add(parent, role, KindCallExpr, c.Pos(), c.End())
	if isTypeExpr(c.Fun) {
		b.typeExpr(id, RoleFun, c.Fun)
	} else {
		b.expr(id, RoleFun, c.Fun)
	}

	for _, arg := range c.Args {
		b.expr(id, RoleArg, arg)
	}
}

func (b *builder) block(parent NodeID, role Role, blk *ast.BlockStmt) {
	if blk == nil {
		return
	}

	id := b.add(parent, role, KindBlock, blk.Pos(), blk.End())
	b.stmts(id, blk.List)
}

func (b *builder) stmts(parent NodeID, list []ast.Stmt) {
	for _, s := range list {
		b.stmt(parent, RoleStmt, s)
	}
}

func (b *builder) stmt(parent NodeID, role Role, s ast.Stmt) {
	switch st := s.(type) {
	case nil, *ast.EmptyStmt:
		return
	case *ast.BlockStmt:
		b.block(parent, role, st)
	case *ast.DeclStmt:
		b.decl(parent, role, st.Decl)
	case *ast.AssignStmt:
		b.assign(parent, role, st)
	case *ast.ExprStmt:
		id := b.add(parent, role, KindExprStmt, st.Pos(), st.End())
		b.expr(id, RoleX, st.X)
	case *ast.IncDecStmt:
		id := b.add(parent, role, KindIncDecStmt, st.Pos(), st.End())
		b.tree.nodes[id].op = st.Tok
		b.expr(id, RoleX, st.X)
	case *ast.SendStmt:
		id := b.add(parent, role, KindSendStmt, st.Pos(), st.End())
		b.expr(id, RoleX, st.Chan)
		b.expr(id, RoleValue, st.Value)
	case *ast.GoStmt:
		id := b.add(parent, role, KindGoStmt, st.Pos(), st.End())
		b.expr(id, RoleX, st.Call)
	case *ast.DeferStmt:
		id := b.add(parent, role, KindDeferStmt, st.Pos(), st.End())
		b.expr(id, RoleX, st.Call)
	case *ast.ReturnStmt:
		id := b.add(parent, role, KindReturnStmt, st.Pos(), st.End())
		for _, r := range st.Results {
			b.expr(id, RoleValue, r)
		}
	case *ast.BranchStmt:
		id := b.add(parent, role, KindBranchStmt, st.Pos(), st.End())
		b.tree.nodes[id].op = st.Tok
		if st.Label != nil {
			b.tree.nodes[id].text = st.Label.Name
		}
	case *ast.LabeledStmt:
		id := b.named(parent, role, KindLabeledStmt, st, st.Label)
		b.stmt(id, RoleStmt, st.Stmt)
	case *ast.IfStmt:
		id := b.add(parent, role, KindIfStmt, st.Pos(), st.End())
		b.stmt(id, RoleInit, st.Init)
		b.expr(id, RoleCond, st.Cond)
		b.block(id, RoleBody, st.Body)
		b.stmt(id, RoleElse, st.Else)
	case *ast.SwitchStmt:
		id := b.add(parent, role, KindSwitchStmt, st.Pos(), st.End())
		b.stmt(id, RoleInit, st.Init)
		b.expr(id, RoleTag, st.Tag)
		b.clauses(id, st.Body, KindExprCaseClause)
	case *ast.TypeSwitchStmt:
		id := b.add(parent, role, KindTypeSwitchStmt, st.Pos(), st.End())
		b.stmt(id, RoleInit, st.Init)
		b.typeSwitchGuard(id, st.Assign)
		b.clauses(id, st.Body, KindTypeCaseClause)
	case *ast.SelectStmt:
		id := b.add(parent, role, KindSelectStmt, st.Pos(), st.End())
		b.clauses(id, st.Body, KindCommClause)
	case *ast.ForStmt:
		id := b.add(parent, role, KindForStmt, st.Pos(), st.End())
		b.stmt(id, RoleInit, st.Init)
		b.expr(id, RoleCond, st.Cond)
		b.stmt(id, RolePost, st.Post)
		b.block(id, RoleBody, st.Body)
	case *ast.RangeStmt:
		b.rangeStmt(parent, role, st)
	default:
		b.add(parent, role, KindBad, s.Pos(), s.End())
	}
}

func (b *builder) assign(parent NodeID, role Role, st *ast.AssignStmt) {
	if st.Tok != token.DEFINE {
		id := b.add(parent, role, KindAssignStmt, st.Pos(), st.End())
		b.tree.nodes[id].op = st.Tok
		for _, lhs := range st.Lhs {
			b.expr(id, RoleLHS, lhs)
		}
		for _, rhs := range st.Rhs {
			b.expr(id, RoleRHS, rhs)
		}
		return
	}

	id := b.add(parent, role, KindShortVarDecl, st.Pos(), st.End())
	for _, lhs := range st.Lhs {
		if name, ok := lhs.(*ast.Ident); ok {
			b.ident(id, RoleName, KindVarDef, name)
		} else {
			b.expr(id, RoleLHS, lhs)
		}
	}

	for _, rhs := range st.Rhs {
		b.expr(id, RoleValue, rhs)
	}
}

func (b *builder) typeSwitchGuard(parent NodeID, s ast.Stmt) {
	var (
		name *ast.Ident
		x    ast.Expr
	)

	switch st := s.(type) {
	case *ast.AssignStmt:
		if len(st.Lhs) == 1 {
			name, _ = st.Lhs[0].(*ast.Ident)
		}
		if len(st.Rhs) == 1 {
			x = st.Rhs[0]
		}
	case *ast.ExprStmt:
		x = st.X
	default:
		return
	}

	id := b.add(parent, RoleTag, KindTypeSwitchGuard, s.Pos(), s.End())
	if name != nil {
		b.ident(id, RoleName, KindVarDef, name)
	}

	if ta, ok := x.(*ast.TypeAssertExpr); ok {
		x = ta.X
	}
	b.expr(id, RoleX, x)
}

func (b *builder) clauses(parent NodeID, body *ast.BlockStmt, kind Kind) {
	if body == nil {
		return
	}

	blk := b.add(parent, RoleBody, KindBlock, body.Pos(), body.End())

	for _, s := range body.List {
		switch c := s.(type) {
		case *ast.CaseClause:
			id := b.add(blk, RoleStmt, kind, c.Pos(), c.End())
			for _, e := range c.List {
				if kind == KindTypeCaseClause {
					b.typeExpr(id, RoleCase, e)
				} else {
					b.expr(id, RoleCase, e)
				}
			}
			b.stmts(id, c.Body)
		case *ast.CommClause:
			id := b.add(blk, RoleStmt, KindCommClause, c.Pos(), c.End())
			b.stmt(id, RoleComm, c.Comm)
			b.stmts(id, c.Body)
		}
	}
}

func (b *builder) rangeStmt(parent NodeID, role Role, st *ast.RangeStmt) {
	id := b.add(parent, role, KindForStmt, st.Pos(), st.End())
	b.tree.nodes[id].op = token.RANGE

	clauseStart := st.For
	if st.Key != nil {
		clauseStart = st.Key.Pos()
	}

	clause := b.add(id, RoleInit, KindRangeClause, clauseStart, st.X.End())
	b.tree.nodes[clause].op = st.Tok

	for _, e := range []ast.Expr{st.Key, st.Value} {
		if e == nil {
			continue
		}
		if name, ok := e.(*ast.Ident); ok && st.Tok == token.DEFINE {
			b.ident(clause, RoleName, KindVarDef, name)
		} else {
			b.expr(clause, RoleLHS, e)
		}
	}

	b.expr(clause, RoleX, st.X)
	b.block(id, RoleBody, st.Body)
}
