// Package sqlast defines the Oracle-dialect SELECT AST produced by
// internal/sqlparse and consumed by internal/lineage/scope.
package sqlast

import "github.com/oracle-t2t/lineage/internal/sqltoken"

// Node is any AST node that can report its source position.
type Node interface {
	Pos() sqltoken.Position
	End() sqltoken.Position
}

// Expr is a scalar or table-valued expression.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a top-level statement.
type Stmt interface {
	Node
	stmtNode()
}

// TableExpr is anything that can appear as a FROM-clause source:
// a table name, a derived table, a lateral table, an unpivot table, or a
// parenthesized join.
type TableExpr interface {
	Node
	tableExprNode()
}

// NodeInfo carries the start/end position shared by every node.
type NodeInfo struct {
	StartPos sqltoken.Position
	EndPos   sqltoken.Position
}

func (n NodeInfo) Pos() sqltoken.Position { return n.StartPos }
func (n NodeInfo) End() sqltoken.Position { return n.EndPos }
