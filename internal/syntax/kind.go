package syntax

// Kind is the syntactic tag of a node.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBad
	KindFile

	// Declarations and specs.
	KindImportDecl
	KindImportSpec
	KindConstDecl
	KindConstSpec
	KindConstDef
	KindVarDecl
	KindVarSpec
	KindVarDef
	KindTypeDecl
	KindTypeSpec
	KindFuncDecl
	KindMethodDecl
	KindReceiver
	KindReceiverDef
	KindParamList
	KindParamDecl
	KindParamDef

	// Type expressions.
	KindTypeName
	KindPointerType
	KindArrayType
	KindSliceType
	KindMapType
	KindChanType
	KindFuncType
	KindStructType
	KindFieldDecl
	KindFieldDef
	KindAnonymousField
	KindInterfaceType
	KindMethodSpec

	// Expressions.
	KindIdent
	KindBasicLit
	KindCompositeLit
	KindKeyedElement
	KindFuncLit
	KindParenExpr
	KindSelectorExpr
	KindIndexExpr
	KindSliceExpr
	KindTypeAssertExpr
	KindCallExpr
	KindBuiltinCall
	KindStarExpr
	KindUnaryExpr
	KindBinaryExpr

	// Statements.
	KindBlock
	KindShortVarDecl
	KindAssignStmt
	KindExprStmt
	KindIncDecStmt
	KindSendStmt
	KindGoStmt
	KindDeferStmt
	KindReturnStmt
	KindBranchStmt
	KindLabeledStmt
	KindIfStmt
	KindSwitchStmt
	KindTypeSwitchStmt
	KindTypeSwitchGuard
	KindExprCaseClause
	KindTypeCaseClause
	KindSelectStmt
	KindCommClause
	KindForStmt
	KindRangeClause

	kindCount
)

var kindNames = [kindCount]string{
	KindInvalid:         "Invalid",
	KindBad:             "Bad",
	KindFile:            "File",
	KindImportDecl:      "ImportDecl",
	KindImportSpec:      "ImportSpec",
	KindConstDecl:       "ConstDecl",
	KindConstSpec:       "ConstSpec",
	KindConstDef:        "ConstDef",
	KindVarDecl:         "VarDecl",
	KindVarSpec:         "VarSpec",
	KindVarDef:          "VarDef",
	KindTypeDecl:        "TypeDecl",
	KindTypeSpec:        "TypeSpec",
	KindFuncDecl:        "FuncDecl",
	KindMethodDecl:      "MethodDecl",
	KindReceiver:        "Receiver",
	KindReceiverDef:     "ReceiverDef",
	KindParamList:       "ParamList",
	KindParamDecl:       "ParamDecl",
	KindParamDef:        "ParamDef",
	KindTypeName:        "TypeName",
	KindPointerType:     "PointerType",
	KindArrayType:       "ArrayType",
	KindSliceType:       "SliceType",
	KindMapType:         "MapType",
	KindChanType:        "ChanType",
	KindFuncType:        "FuncType",
	KindStructType:      "StructType",
	KindFieldDecl:       "FieldDecl",
	KindFieldDef:        "FieldDef",
	KindAnonymousField:  "AnonymousField",
	KindInterfaceType:   "InterfaceType",
	KindMethodSpec:      "MethodSpec",
	KindIdent:           "Ident",
	KindBasicLit:        "BasicLit",
	KindCompositeLit:    "CompositeLit",
	KindKeyedElement:    "KeyedElement",
	KindFuncLit:         "FuncLit",
	KindParenExpr:       "ParenExpr",
	KindSelectorExpr:    "SelectorExpr",
	KindIndexExpr:       "IndexExpr",
	KindSliceExpr:       "SliceExpr",
	KindTypeAssertExpr:  "TypeAssertExpr",
	KindCallExpr:        "CallExpr",
	KindBuiltinCall:     "BuiltinCall",
	KindStarExpr:        "StarExpr",
	KindUnaryExpr:       "UnaryExpr",
	KindBinaryExpr:      "BinaryExpr",
	KindBlock:           "Block",
	KindShortVarDecl:    "ShortVarDecl",
	KindAssignStmt:      "AssignStmt",
	KindExprStmt:        "ExprStmt",
	KindIncDecStmt:      "IncDecStmt",
	KindSendStmt:        "SendStmt",
	KindGoStmt:          "GoStmt",
	KindDeferStmt:       "DeferStmt",
	KindReturnStmt:      "ReturnStmt",
	KindBranchStmt:      "BranchStmt",
	KindLabeledStmt:     "LabeledStmt",
	KindIfStmt:          "IfStmt",
	KindSwitchStmt:      "SwitchStmt",
	KindTypeSwitchStmt:  "TypeSwitchStmt",
	KindTypeSwitchGuard: "TypeSwitchGuard",
	KindExprCaseClause:  "ExprCaseClause",
	KindTypeCaseClause:  "TypeCaseClause",
	KindSelectStmt:      "SelectStmt",
	KindCommClause:      "CommClause",
	KindForStmt:         "ForStmt",
	KindRangeClause:     "RangeClause",
}

func (k Kind) String() string {
	if k < kindCount && kindNames[k] != "" {
		return kindNames[k]
	}

	return "Unknown"
}

// IsExpression reports whether nodes of this kind are value expressions.
func (k Kind) IsExpression() bool {
	return k >= KindIdent && k <= KindBinaryExpr
}

// IsType reports whether nodes of this kind are type expressions.
func (k Kind) IsType() bool {
	return k >= KindTypeName && k <= KindMethodSpec
}

// IsDefinition reports whether nodes of this kind introduce a name.
func (k Kind) IsDefinition() bool {
	switch k {
	case KindImportSpec, KindConstDef, KindVarDef, KindTypeSpec, KindFuncDecl, KindMethodDecl,
		KindReceiverDef, KindParamDef, KindFieldDef, KindAnonymousField, KindMethodSpec:
		return true
	}

	return false
}

// Role describes the position a node occupies inside its parent.
type Role uint8

const (
	RoleNone Role = iota
	RoleName
	RoleQualifier
	RoleType
	RoleValue
	RoleKey
	RoleElem
	RoleLen
	RoleRecv
	RoleParams
	RoleResults
	RoleBody
	RoleEmbed
	RoleX
	RoleY
	RoleSel
	RoleIndex
	RoleFun
	RoleArg
	RoleLHS
	RoleRHS
	RoleStmt
	RoleInit
	RoleCond
	RolePost
	RoleElse
	RoleTag
	RoleCase
	RoleComm
	RoleDecl
)
