package resolve_test

import (
	"testing"

	"github.com/oracle-t2t/lineage/internal/lineage/model"
	"github.com/oracle-t2t/lineage/internal/lineage/resolve"
	"github.com/oracle-t2t/lineage/internal/lineage/scope"
	"github.com/oracle-t2t/lineage/internal/sqlparse"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, sql string, dm *model.DataModel) *model.Scope {
	t.Helper()
	stmt, err := sqlparse.Parse(sql)
	require.NoError(t, err)
	return scope.NewBuilder(dm).Build(stmt)
}

func TestResolveDirectQualifiedReference(t *testing.T) {
	dm := model.NewDataModel(map[string][]string{"stg_customer": {"cust_id", "cust_name"}})
	s := build(t, `SELECT a.cust_id FROM stg_customer a`, dm)

	r := resolve.NewResolver(dm)
	res := r.Resolve(model.ColumnRef{Alias: "A", Column: "CUST_ID"}, s)
	require.Len(t, res, 1)
	require.Equal(t, model.KindPhysical, res[0].Kind)
	require.Equal(t, "stg_customer", res[0].Table)
	require.True(t, res[0].DMMatch)
}

func TestResolveThroughCTEChain(t *testing.T) {
	dm := model.NewDataModel(map[string][]string{"stg_src": {"id"}})
	s := build(t, `WITH c AS (SELECT x.id FROM stg_src x) SELECT c.id FROM c`, dm)

	r := resolve.NewResolver(dm)
	res := r.Resolve(model.ColumnRef{Alias: "C", Column: "ID"}, s)
	require.Len(t, res, 1)
	require.Equal(t, model.KindPhysical, res[0].Kind)
	require.Equal(t, "stg_src", res[0].Table)
}

func TestResolveUnqualifiedPrefersChildScope(t *testing.T) {
	dm := model.NewDataModel(map[string][]string{
		"stg_src": {"id"}, "dim_lookup": {"id", "name"},
	})
	s := build(t, `SELECT id FROM (SELECT id FROM stg_src) sub JOIN dim_lookup d ON sub.id = d.id`, dm)

	r := resolve.NewResolver(dm)
	res := r.Resolve(model.ColumnRef{Column: "ID"}, s)
	require.Len(t, res, 1)
	require.Equal(t, "stg_src", res[0].Table)
}

func TestResolveUnionMergesBothArms(t *testing.T) {
	dm := model.NewDataModel(map[string][]string{"t1": {"id"}, "t2": {"ref_id"}})
	s := build(t, `SELECT a.id FROM t1 a UNION ALL SELECT b.ref_id FROM t2 b`, dm)

	r := resolve.NewResolver(dm)
	res := r.Resolve(model.ColumnRef{Column: "ID"}, s)
	require.Len(t, res, 2)
	require.Equal(t, "t1", res[0].Table)
	require.Equal(t, "t2", res[1].Table)
}

func TestResolveConstantFastPath(t *testing.T) {
	s := build(t, `SELECT a.id FROM t1 a`, nil)
	r := resolve.NewResolver(nil)
	res := r.Resolve(model.ColumnRef{Column: "SYSDATE"}, s)
	require.Len(t, res, 1)
	require.Equal(t, model.KindConstant, res[0].Kind)
}

func TestResolveAliasNotFoundReturnsUnresolved(t *testing.T) {
	s := build(t, `SELECT a.id FROM t1 a`, nil)
	r := resolve.NewResolver(nil)
	res := r.Resolve(model.ColumnRef{Alias: "ZZZ", Column: "ID"}, s)
	require.Len(t, res, 1)
	require.Equal(t, model.KindUnresolved, res[0].Kind)
	require.Equal(t, model.ReasonAliasNotFound, res[0].Reason)
}

func TestResolveExpressionFallbackLadderTagsPartialFailure(t *testing.T) {
	s := build(t, `SELECT a.id FROM t1 a`, nil)
	r := resolve.NewResolver(nil)

	res := r.ResolveExpressionText("a.id || zzz.missing", s)
	require.Len(t, res, 2)

	var kinds []model.Kind
	var reasons []model.UnresolvedReason
	for _, rc := range res {
		kinds = append(kinds, rc.Kind)
		if rc.Kind == model.KindUnresolved {
			reasons = append(reasons, rc.Reason)
		}
	}
	require.Contains(t, kinds, model.KindPhysical)
	require.Contains(t, reasons, model.ReasonPartialFailure)
}

func TestResolveExpressionFallbackLadderTagsCompleteFailure(t *testing.T) {
	s := build(t, `SELECT a.id FROM t1 a`, nil)
	r := resolve.NewResolver(nil)

	res := r.ResolveExpressionText("zzz.missing || yyy.alsomissing", s)
	require.Len(t, res, 1)
	require.Equal(t, model.KindUnresolved, res[0].Kind)
	require.Equal(t, model.ReasonCompleteFailure, res[0].Reason)
}

func TestResolveStarExpansionWithoutDataModelEntryIsUnresolved(t *testing.T) {
	dm := model.NewDataModel(map[string][]string{"stg_customer": {"id"}})
	s := build(t, `SELECT a.* FROM unknown_tbl a`, dm)
	r := resolve.NewResolver(dm)

	res := r.Resolve(model.ColumnRef{Column: "A.*"}, s)
	require.Len(t, res, 1)
	require.Equal(t, model.KindUnresolved, res[0].Kind)
	require.Equal(t, model.ReasonStarExpansionFailed, res[0].Reason)
}

func TestResolveUnqualifiedAmbiguousAcrossTwoChildScopes(t *testing.T) {
	dm := model.NewDataModel(map[string][]string{"t1": {"id"}, "t2": {"id"}})
	s := build(t, `SELECT id FROM (SELECT id FROM t1) x JOIN (SELECT id FROM t2) y ON x.id = y.id`, dm)

	r := resolve.NewResolver(dm)
	res := r.Resolve(model.ColumnRef{Column: "ID"}, s)
	require.Len(t, res, 1)
	require.Equal(t, model.KindUnresolved, res[0].Kind)
	require.Equal(t, model.ReasonAmbiguous, res[0].Reason)
}

func TestResolveDynamicSQLForDBLinkTable(t *testing.T) {
	s := build(t, `SELECT a.id FROM t1@remote_link a`, nil)
	r := resolve.NewResolver(nil)

	res := r.Resolve(model.ColumnRef{Alias: "A", Column: "ID"}, s)
	require.Len(t, res, 1)
	require.Equal(t, model.KindUnresolved, res[0].Kind)
	require.Equal(t, model.ReasonDynamicSQL, res[0].Reason)
}
