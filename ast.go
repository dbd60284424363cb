package main

// NodeKind represents different types of AST nodes
type NodeKind string

const (
	NodeBinary    NodeKind = "NodeBinary"
	NodeAssign    NodeKind = "NodeAssign"
	NodeUnary     NodeKind = "NodeUnary"
	NodeLiteral   NodeKind = "NodeLiteral"
	NodePrimary   NodeKind = "NodePrimary"
	NodeIndex     NodeKind = "NodeIndex"
	NodeVarDecl   NodeKind = "NodeVarDecl"
	NodeFunc      NodeKind = "NodeFunc"
	NodeArgs      NodeKind = "NodeArgs"
	NodeCall      NodeKind = "NodeCall"
	NodeIf        NodeKind = "NodeIf"
	NodeFor       NodeKind = "NodeFor"
	NodeForClause NodeKind = "NodeForClause"
	NodeKeyword   NodeKind = "NodeKeyword"
	NodeList      NodeKind = "NodeList"
	NodeIdent     NodeKind = "NodeIdent"
	NodeType      NodeKind = "NodeType"
	NodeArrayType NodeKind = "NodeArrayType"
)

// ASTNode represents a node in the Abstract Syntax Tree.
//
// The parser (external to this module) produces these as plain data; nothing
// here touches the symbol table. Symbol registration happens later, inside
// the lowering pass, so that tree construction has no hidden side effects.
type ASTNode struct {
	Kind NodeKind
	// Generic ordered children. NodeIf, NodeFor and NodeForClause keep their
	// clause parts in the named fields below instead; those parts are
	// consumed directly by their lowering rules and never appear here.
	Children []*ASTNode

	// NodeBinary, NodeAssign, NodeUnary:
	Op string // "+", "+=", "=", "++", "!", ...
	// NodeIdent, NodePrimary (identifier or array name), NodeFunc, NodeCall:
	Ident string
	// NodeLiteral:
	LitType  string // "int", "float64", "bool", "string"
	LitValue any    // scalar value; composite literals use Children instead
	// NodeKeyword:
	Keyword string // "return", "break", "continue"
	// NodeType, NodeArrayType:
	TypeName string // named type, or element type for arrays
	EltSize  int    // NodeArrayType: element width in bytes
	// NodeVarDecl:
	Const bool

	// NodeIf: Init (optional), Cond, Body, Else (optional).
	// NodeFor: Clause (bool expression or NodeForClause), Body.
	// NodeForClause: Init, Cond, Post (each optional except Cond).
	Init, Cond, Body, Else *ASTNode
	Clause, Post           *ASTNode
	// NodeVarDecl: the declared type annotation (NodeType or NodeArrayType),
	// if any. Never traversed; the lowering pre-rule reads it directly.
	DeclType *ASTNode

	// Source position, for diagnostics.
	Line, Col int

	// Set by the lowering engine once a subtree has been emitted out of band
	// (initializer collapse, parameter registration). The generic traversal
	// skips marked nodes so they are never lowered twice.
	lowered bool
	// Symbols declared for this NodeVarDecl, filled in by the lowering
	// pre-rule, one per identifier.
	syms []*SymbolInfo
}

// AddChild appends a child, ignoring nils so optional parts can be passed
// straight through.
func (n *ASTNode) AddChild(child *ASTNode) {
	if child != nil {
		n.Children = append(n.Children, child)
	}
}

// ToSExpr converts an AST node to s-expression string representation
func ToSExpr(node *ASTNode) string {
	if node == nil {
		return "()"
	}
	switch node.Kind {
	case NodeIdent:
		return "(ident \"" + node.Ident + "\")"
	case NodeLiteral:
		if len(node.Children) > 0 {
			return "(literal " + childSExprs(node) + ")"
		}
		return "(literal " + node.LitType + " " + litString(node.LitValue) + ")"
	case NodeBinary:
		return "(binary \"" + node.Op + "\" " + ToSExpr(node.Children[0]) + " " + ToSExpr(node.Children[1]) + ")"
	case NodeAssign:
		return "(assign \"" + node.Op + "\" " + ToSExpr(node.Children[0]) + " " + ToSExpr(node.Children[1]) + ")"
	case NodeUnary:
		return "(unary \"" + node.Op + "\" " + ToSExpr(node.Children[0]) + ")"
	case NodePrimary:
		if len(node.Children) == 0 {
			return "(primary \"" + node.Ident + "\")"
		}
		return "(primary \"" + node.Ident + "\" " + childSExprs(node) + ")"
	case NodeIndex:
		return "(index " + childSExprs(node) + ")"
	case NodeVarDecl:
		head := "(var"
		if node.Const {
			head = "(const"
		}
		return head + " " + childSExprs(node) + ")"
	case NodeFunc:
		return "(func \"" + node.Ident + "\" " + childSExprs(node) + ")"
	case NodeArgs:
		return "(args " + childSExprs(node) + ")"
	case NodeCall:
		return "(call \"" + node.Ident + "\" " + childSExprs(node) + ")"
	case NodeIf:
		result := "(if"
		if node.Init != nil {
			result += " :init " + ToSExpr(node.Init)
		}
		result += " " + ToSExpr(node.Cond) + " " + ToSExpr(node.Body)
		if node.Else != nil {
			result += " " + ToSExpr(node.Else)
		}
		return result + ")"
	case NodeFor:
		return "(for " + ToSExpr(node.Clause) + " " + ToSExpr(node.Body) + ")"
	case NodeForClause:
		return "(clause " + ToSExpr(node.Init) + " " + ToSExpr(node.Cond) + " " + ToSExpr(node.Post) + ")"
	case NodeKeyword:
		if len(node.Children) == 0 {
			return "(" + node.Keyword + ")"
		}
		return "(" + node.Keyword + " " + childSExprs(node) + ")"
	case NodeList:
		if len(node.Children) == 0 {
			return "(block)"
		}
		return "(block " + childSExprs(node) + ")"
	case NodeType:
		return "(type " + node.TypeName + ")"
	case NodeArrayType:
		return "(array-type " + node.TypeName + ")"
	default:
		return ""
	}
}

func childSExprs(node *ASTNode) string {
	result := ""
	for i, child := range node.Children {
		if i > 0 {
			result += " "
		}
		result += ToSExpr(child)
	}
	return result
}
