package sqlast_test

import (
	"testing"

	"github.com/oracle-t2t/lineage/internal/sqlast"
	"github.com/stretchr/testify/require"
)

func TestRenderColumnRefQualified(t *testing.T) {
	expr := &sqlast.ColumnRef{Table: "A", Column: "ID"}
	require.Equal(t, "A.ID", sqlast.Render(expr))
}

func TestRenderColumnRefUnqualified(t *testing.T) {
	expr := &sqlast.ColumnRef{Column: "ID"}
	require.Equal(t, "ID", sqlast.Render(expr))
}

func TestRenderBinaryExpr(t *testing.T) {
	expr := &sqlast.BinaryExpr{
		Op:    "+",
		Left:  &sqlast.ColumnRef{Table: "A", Column: "X"},
		Right: &sqlast.Literal{Type: sqlast.LiteralNumber, Value: "1"},
	}
	require.Equal(t, "A.X + 1", sqlast.Render(expr))
}

func TestRenderFuncCall(t *testing.T) {
	expr := &sqlast.FuncCall{
		Name: "NVL",
		Args: []sqlast.Expr{
			&sqlast.ColumnRef{Table: "A", Column: "X"},
			&sqlast.Literal{Type: sqlast.LiteralNumber, Value: "0"},
		},
	}
	require.Equal(t, "NVL(A.X, 0)", sqlast.Render(expr))
}
