package ast

// Kind is the closed set of node kinds the engine distinguishes. Every
// construct the front end does not classify maps to KindOther.
type Kind uint8

const (
	KindOther Kind = iota
	KindCompilationUnit
	KindPackageDecl
	KindImportDecl
	KindComment

	// type declarations
	KindClassDecl
	KindInterfaceDecl
	KindEnumDecl
	KindRecordDecl
	KindAnnotationDecl
	KindClassBody
	KindEnumConstant

	// members
	KindFieldDecl
	KindVarDeclarator
	KindMethodDecl
	KindConstructorDecl
	KindAnnotationMember
	KindInitializer

	// declaration parts
	KindModifiers
	KindAnnotation
	KindAnnotationArgs
	KindElementValuePair
	KindParameters
	KindParameter
	KindTypeParameters
	KindTypeParameter
	KindTypeBound
	KindSuperclass
	KindSuperInterfaces
	KindThrows

	// type references
	KindClassType
	KindPrimitiveType
	KindArrayType
	KindTypeArguments
	KindWildcard
	KindUnionType

	// statements
	KindBlock
	KindLocalVarDecl
	KindExprStmt
	KindIf
	KindWhile
	KindDo
	KindFor
	KindForEach
	KindReturn
	KindThrow
	KindTry
	KindResources
	KindResource
	KindCatch
	KindCatchParam
	KindFinally
	KindSwitch
	KindExplicitCtorCall

	// expressions
	KindNameExpr
	KindFieldAccess
	KindMethodCall
	KindArguments
	KindObjectCreation
	KindLambda
	KindMethodRef
	KindLiteral
	KindBinary
	KindUnary
	KindAssign
	KindConditional
	KindInstanceOf
	KindCast
	KindThis
	KindSuper
	KindClassLiteral
	KindArrayAccess
	KindArrayCreation
	KindArrayInit
	KindParen

	kindCount
)

var kindNames = [kindCount]string{
	KindOther:            "Other",
	KindCompilationUnit:  "CompilationUnit",
	KindPackageDecl:      "PackageDecl",
	KindImportDecl:       "ImportDecl",
	KindComment:          "Comment",
	KindClassDecl:        "ClassDecl",
	KindInterfaceDecl:    "InterfaceDecl",
	KindEnumDecl:         "EnumDecl",
	KindRecordDecl:       "RecordDecl",
	KindAnnotationDecl:   "AnnotationDecl",
	KindClassBody:        "ClassBody",
	KindEnumConstant:     "EnumConstant",
	KindFieldDecl:        "FieldDecl",
	KindVarDeclarator:    "VarDeclarator",
	KindMethodDecl:       "MethodDecl",
	KindConstructorDecl:  "ConstructorDecl",
	KindAnnotationMember: "AnnotationMember",
	KindInitializer:      "Initializer",
	KindModifiers:        "Modifiers",
	KindAnnotation:       "Annotation",
	KindAnnotationArgs:   "AnnotationArgs",
	KindElementValuePair: "ElementValuePair",
	KindParameters:       "Parameters",
	KindParameter:        "Parameter",
	KindTypeParameters:   "TypeParameters",
	KindTypeParameter:    "TypeParameter",
	KindTypeBound:        "TypeBound",
	KindSuperclass:       "Superclass",
	KindSuperInterfaces:  "SuperInterfaces",
	KindThrows:           "Throws",
	KindClassType:        "ClassType",
	KindPrimitiveType:    "PrimitiveType",
	KindArrayType:        "ArrayType",
	KindTypeArguments:    "TypeArguments",
	KindWildcard:         "Wildcard",
	KindUnionType:        "UnionType",
	KindBlock:            "Block",
	KindLocalVarDecl:     "LocalVarDecl",
	KindExprStmt:         "ExprStmt",
	KindIf:               "If",
	KindWhile:            "While",
	KindDo:               "Do",
	KindFor:              "For",
	KindForEach:          "ForEach",
	KindReturn:           "Return",
	KindThrow:            "Throw",
	KindTry:              "Try",
	KindResources:        "Resources",
	KindResource:         "Resource",
	KindCatch:            "Catch",
	KindCatchParam:       "CatchParam",
	KindFinally:          "Finally",
	KindSwitch:           "Switch",
	KindExplicitCtorCall: "ExplicitCtorCall",
	KindNameExpr:         "NameExpr",
	KindFieldAccess:      "FieldAccess",
	KindMethodCall:       "MethodCall",
	KindArguments:        "Arguments",
	KindObjectCreation:   "ObjectCreation",
	KindLambda:           "Lambda",
	KindMethodRef:        "MethodRef",
	KindLiteral:          "Literal",
	KindBinary:           "Binary",
	KindUnary:            "Unary",
	KindAssign:           "Assign",
	KindConditional:      "Conditional",
	KindInstanceOf:       "InstanceOf",
	KindCast:             "Cast",
	KindThis:             "This",
	KindSuper:            "Super",
	KindClassLiteral:     "ClassLiteral",
	KindArrayAccess:      "ArrayAccess",
	KindArrayCreation:    "ArrayCreation",
	KindArrayInit:        "ArrayInit",
	KindParen:            "Paren",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "Kind(?)"
}

// IsTypeDecl reports class, interface, enum, record and annotation declarations.
func (k Kind) IsTypeDecl() bool {
	switch k {
	case KindClassDecl, KindInterfaceDecl, KindEnumDecl, KindRecordDecl, KindAnnotationDecl:
		return true
	}
	return false
}

// IsCallableDecl reports methods, constructors and annotation members.
func (k Kind) IsCallableDecl() bool {
	switch k {
	case KindMethodDecl, KindConstructorDecl, KindAnnotationMember:
		return true
	}
	return false
}

// IsTypeRef reports nodes that spell a type.
func (k Kind) IsTypeRef() bool {
	switch k {
	case KindClassType, KindPrimitiveType, KindArrayType, KindWildcard, KindUnionType:
		return true
	}
	return false
}

// Role is the syntactic slot a child fills in its parent.
type Role uint8

const (
	RoleNone Role = iota
	RoleType
	RoleBody
	RoleSuperclass
	RoleInterfaces
	RoleParameters
	RoleTypeParameters
	RoleTypeArguments
	RoleThrows
	RoleValue
	RoleObject
	RoleArguments
	RoleCondition
	RoleConsequence
	RoleAlternative
	RoleLeft
	RoleRight
	RoleOperand
	RoleInit
	RoleUpdate
	RoleResources
	RoleIndex
	RoleArray
	RoleElement
	RoleModifiers
	RoleBound

	roleCount
)

var roleNames = [roleCount]string{
	RoleNone:           "",
	RoleType:           "type",
	RoleBody:           "body",
	RoleSuperclass:     "superclass",
	RoleInterfaces:     "interfaces",
	RoleParameters:     "parameters",
	RoleTypeParameters: "type_parameters",
	RoleTypeArguments:  "type_arguments",
	RoleThrows:         "throws",
	RoleValue:          "value",
	RoleObject:         "object",
	RoleArguments:      "arguments",
	RoleCondition:      "condition",
	RoleConsequence:    "consequence",
	RoleAlternative:    "alternative",
	RoleLeft:           "left",
	RoleRight:          "right",
	RoleOperand:        "operand",
	RoleInit:           "init",
	RoleUpdate:         "update",
	RoleResources:      "resources",
	RoleIndex:          "index",
	RoleArray:          "array",
	RoleElement:        "element",
	RoleModifiers:      "modifiers",
	RoleBound:          "bound",
}

func (r Role) String() string {
	if r < roleCount {
		return roleNames[r]
	}
	return "role(?)"
}

// RoleFromField maps a tree-sitter field name to a Role. Unknown fields
// map to RoleNone.
func RoleFromField(field string) Role {
	for r := Role(1); r < roleCount; r++ {
		if roleNames[r] == field {
			return r
		}
	}
	return RoleNone
}
