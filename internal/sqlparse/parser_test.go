package sqlparse_test

import (
	"testing"

	"github.com/oracle-t2t/lineage/internal/sqlast"
	"github.com/oracle-t2t/lineage/internal/sqlparse"
	"github.com/stretchr/testify/require"
)

func TestParseSimpleSelectFrom(t *testing.T) {
	stmt, err := sqlparse.Parse("SELECT a.id, a.name FROM customer a")
	require.NoError(t, err)
	require.True(t, stmt.Body.IsLeaf())

	core := stmt.Body.Core
	require.Len(t, core.Columns, 2)
	require.NotNil(t, core.From)

	tbl, ok := core.From.Source.(*sqlast.TableName)
	require.True(t, ok)
	require.Equal(t, "customer", tbl.Name)
	require.Equal(t, "a", tbl.Alias)
}

func TestParseJoinWithOnCondition(t *testing.T) {
	stmt, err := sqlparse.Parse(
		"SELECT a.id FROM orders a JOIN customer b ON a.cust_id = b.id")
	require.NoError(t, err)

	core := stmt.Body.Core
	require.Len(t, core.From.Joins, 1)
	join := core.From.Joins[0]
	require.Equal(t, sqlast.JoinInner, join.Type)
	require.NotNil(t, join.Condition)
}

func TestParseUnionAllProducesSetOpTree(t *testing.T) {
	stmt, err := sqlparse.Parse("SELECT a.id FROM t1 a UNION ALL SELECT b.id FROM t2 b")
	require.NoError(t, err)
	require.False(t, stmt.Body.IsLeaf())
	require.Equal(t, sqlast.SetOpUnionAll, stmt.Body.Op)
	require.True(t, stmt.Body.Left.IsLeaf())
	require.True(t, stmt.Body.Right.IsLeaf())
}

func TestParseWithClauseRegistersCTE(t *testing.T) {
	stmt, err := sqlparse.Parse(
		"WITH base AS (SELECT id FROM t1) SELECT base.id FROM base")
	require.NoError(t, err)
	require.NotNil(t, stmt.With)
	require.Len(t, stmt.With.CTEs, 1)
	require.Equal(t, "base", stmt.With.CTEs[0].Name)
}

func TestParseWhereClauseBuildsBinaryExpr(t *testing.T) {
	stmt, err := sqlparse.Parse("SELECT a.id FROM t1 a WHERE a.id = 1")
	require.NoError(t, err)

	where, ok := stmt.Body.Core.Where.(*sqlast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, "=", where.Op)
}

func TestParseRejectsUnparseableStatement(t *testing.T) {
	_, err := sqlparse.Parse("DROP TABLE foo")
	require.Error(t, err)
}

func TestParseParenthesizedJoinSourceWithoutAlias(t *testing.T) {
	stmt, err := sqlparse.Parse(
		"SELECT a.id FROM (a JOIN b ON a.id = b.id) JOIN c ON a.id = c.id")
	require.NoError(t, err)

	core := stmt.Body.Core
	pt, ok := core.From.Source.(*sqlast.ParenJoinTable)
	require.True(t, ok)

	inner, ok := pt.Source.(*sqlast.TableName)
	require.True(t, ok)
	require.Equal(t, "a", inner.Name)
	require.Len(t, pt.Joins, 1)

	require.Len(t, core.From.Joins, 1)
}

func TestParseCaseExpressionInSelectList(t *testing.T) {
	stmt, err := sqlparse.Parse(
		"SELECT CASE WHEN a.status = 1 THEN a.name ELSE a.alt_name END FROM t1 a")
	require.NoError(t, err)

	item := stmt.Body.Core.Columns[0]
	caseExpr, ok := item.Expr.(*sqlast.CaseExpr)
	require.True(t, ok)
	require.Len(t, caseExpr.Whens, 1)
	require.NotNil(t, caseExpr.Else)
}
