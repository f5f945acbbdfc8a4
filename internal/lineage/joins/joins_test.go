package joins_test

import (
	"testing"

	"github.com/oracle-t2t/lineage/internal/lineage/joins"
	"github.com/oracle-t2t/lineage/internal/lineage/model"
	"github.com/oracle-t2t/lineage/internal/lineage/scope"
	"github.com/oracle-t2t/lineage/internal/sqlparse"
	"github.com/stretchr/testify/require"
)

func TestResolveAllResolvesKeyAndFilterSides(t *testing.T) {
	dm := model.NewDataModel(map[string][]string{
		"t1": {"id"}, "t2": {"id", "status"},
	})
	stmt, err := sqlparse.Parse(`SELECT a.id FROM t1 a JOIN t2 b ON a.id = b.id AND b.status = 'ACTIVE'`)
	require.NoError(t, err)
	s := scope.NewBuilder(dm).Build(stmt)

	rows := joins.NewResolver(dm).ResolveAll(s)
	require.Len(t, rows, 3) // left key, right key, one filter

	var sawFilter bool
	for _, row := range rows {
		if row.Role == model.RoleFilter {
			sawFilter = true
			require.Equal(t, model.KindPhysical, row.Resolved[0].Kind)
			require.Equal(t, "t2", row.Resolved[0].Table)
		}
	}
	require.True(t, sawFilter)
}

func TestResolveAllDescendsIntoNestedScopes(t *testing.T) {
	dm := model.NewDataModel(map[string][]string{"t1": {"id"}, "t2": {"id"}})
	stmt, err := sqlparse.Parse(`SELECT x.id FROM (SELECT a.id FROM t1 a JOIN t2 b ON a.id = b.id) x`)
	require.NoError(t, err)
	s := scope.NewBuilder(dm).Build(stmt)

	rows := joins.NewResolver(dm).ResolveAll(s)
	require.Len(t, rows, 2)
}
