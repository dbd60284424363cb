package main

// boolOps are the operators whose result is boolean. Used to classify a
// for-statement's clause as a plain condition versus an init;cond;post
// clause.
var boolOps = map[string]bool{
	"==": true, "!=": true,
	"<": true, ">": true, "<=": true, ">=": true,
	"&&": true, "||": true,
}

// InferExprTypename reports the type name of an expression as far as clause
// classification needs: "bool" for boolean-valued expressions, "forclause"
// for a three-part for clause, and "" when nothing can be said.
func (l *Lowerer) InferExprTypename(node *ASTNode) string {
	if node == nil {
		return ""
	}
	switch node.Kind {
	case NodeForClause:
		return "forclause"
	case NodeBinary:
		if boolOps[node.Op] {
			return "bool"
		}
	case NodeUnary:
		if node.Op == "!" {
			return "bool"
		}
	case NodeLiteral:
		return node.LitType
	case NodePrimary, NodeIdent:
		if sym := l.symtab.Lookup(node.Ident); sym != nil && sym.Type != nil {
			return sym.Type.Name
		}
	}
	return ""
}
