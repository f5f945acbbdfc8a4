package scope_test

import (
	"testing"

	"github.com/oracle-t2t/lineage/internal/lineage/model"
	"github.com/oracle-t2t/lineage/internal/lineage/scope"
	"github.com/oracle-t2t/lineage/internal/sqlparse"
	"github.com/stretchr/testify/require"
)

func parseOne(t *testing.T, sql string) *model.Scope {
	t.Helper()
	stmt, err := sqlparse.Parse(sql)
	require.NoError(t, err)
	b := scope.NewBuilder(nil)
	return b.Build(stmt)
}

func TestBuildRegistersPhysicalRelationsAndProjections(t *testing.T) {
	s := parseOne(t, `SELECT a.col1, a.col2 AS renamed FROM stg_customer a`)

	rel, ok := s.Relation("A")
	require.True(t, ok)
	require.True(t, rel.IsPhysical())
	require.Equal(t, "stg_customer", rel.TableName)

	proj, ok := s.Projection("COL1")
	require.True(t, ok)
	require.Equal(t, "a.col1", proj.ExpressionText)

	proj2, ok := s.Projection("renamed")
	require.True(t, ok)
	require.Equal(t, "a.col2", proj2.ExpressionText)
}

func TestBuildRegistersCTEAsChildScope(t *testing.T) {
	s := parseOne(t, `WITH c AS (SELECT x.id FROM stg_src x) SELECT c.id FROM c`)

	rel, ok := s.Relation("C")
	require.True(t, ok)
	require.False(t, rel.IsPhysical())
	require.NotNil(t, rel.ChildScope)

	_, ok = s.CTE("c")
	require.True(t, ok)
}

func TestBuildCapturesJoinKeyAndFilter(t *testing.T) {
	s := parseOne(t, `SELECT a.id FROM t1 a JOIN t2 b ON a.id = b.id AND b.status = 'ACTIVE'`)

	require.Len(t, s.Joins, 1)
	jk := s.Joins[0]
	require.Equal(t, "a", jk.LeftRef.Alias)
	require.Equal(t, "id", jk.LeftRef.Column)
	require.Equal(t, "b", jk.RightRef.Alias)
	require.Len(t, jk.Filters, 1)
}

func TestBuildUnionMergesProjectionsPositionally(t *testing.T) {
	s := parseOne(t, `SELECT a.id FROM t1 a UNION ALL SELECT b.ref_id FROM t2 b`)

	require.Len(t, s.UnionBranches, 2)
	proj, ok := s.Projection("ID")
	require.True(t, ok)
	require.Len(t, proj.SourceRefs, 2)
	require.Equal(t, model.ColumnRef{Alias: "A", Column: "ID"}, proj.SourceRefs[0])
	require.Equal(t, model.ColumnRef{Alias: "B", Column: "REF_ID"}, proj.SourceRefs[1])
}

func TestBuildExpandsStarAgainstDataModel(t *testing.T) {
	dm := model.NewDataModel(map[string][]string{"stg_customer": {"id", "name"}})
	stmt, err := sqlparse.Parse(`SELECT a.* FROM stg_customer a`)
	require.NoError(t, err)
	b := scope.NewBuilder(dm)
	s := b.Build(stmt)

	_, ok := s.Projection("ID")
	require.True(t, ok)
	_, ok = s.Projection("NAME")
	require.True(t, ok)
}

func TestBuildAssignsAnonAliasToUnaliasedSubquery(t *testing.T) {
	s := parseOne(t, `SELECT x.id FROM (SELECT id FROM t1) x`)
	_, ok := s.Relation("X")
	require.True(t, ok)

	s2 := parseOne(t, `SELECT id FROM (SELECT id FROM t1)`)
	_, ok = s2.Relation("__ANON__")
	require.True(t, ok)
}

func TestBuildHoistsParenthesizedJoinSourceIntoCurrentScope(t *testing.T) {
	s := parseOne(t, `SELECT a.id FROM (t1 a JOIN t2 b ON a.id = b.id) JOIN t3 c ON a.id = c.id`)

	for _, alias := range []string{"A", "B", "C"} {
		rel, ok := s.Relation(alias)
		require.Truef(t, ok, "expected alias %s registered in current scope", alias)
		require.True(t, rel.IsPhysical())
	}

	require.Len(t, s.Joins, 2)
}
