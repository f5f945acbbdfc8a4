// Package scope implements the Scope Builder (spec §4.4): it walks a
// parsed sqlast.SelectStmt and produces the nested model.Scope tree the
// Resolver, Join Extractor, and Mapping Driver all consume.
package scope

import (
	"fmt"
	"strings"

	"github.com/oracle-t2t/lineage/internal/colref"
	"github.com/oracle-t2t/lineage/internal/lineage/model"
	"github.com/oracle-t2t/lineage/internal/sqlast"
)

// Builder accumulates scope-build diagnostics while it runs.
type Builder struct {
	dm       *model.DataModel
	Warnings []string
}

// NewBuilder creates a Builder against an optional data model (nil is
// valid: star-expansion and DM-match annotation simply degrade).
func NewBuilder(dm *model.DataModel) *Builder {
	return &Builder{dm: dm}
}

// Build builds the scope tree rooted at stmt.
func (b *Builder) Build(stmt *sqlast.SelectStmt) *model.Scope {
	return b.buildStatement(stmt, nil, "root")
}

func (b *Builder) buildStatement(stmt *sqlast.SelectStmt, parent *model.Scope, name string) *model.Scope {
	scope := model.NewScope(name, parent)
	if stmt.With != nil {
		// Pass 1: pre-register every CTE name so forward/mutual references
		// within the WITH clause resolve even before their bodies are built.
		for _, cte := range stmt.With.CTEs {
			scope.SetCTE(cte.Name, nil)
		}
		// Pass 2: build each CTE body, a CTE may reference an earlier
		// sibling CTE (already built) since scopes chain through scope.Parent.
		for _, cte := range stmt.With.CTEs {
			cteScope := b.buildStatement(cte.Select, scope, name+".cte_"+cte.Name)
			scope.SetCTE(cte.Name, cteScope)
		}
	}
	b.buildBody(stmt.Body, scope, name)
	return scope
}

func (b *Builder) buildBody(body *sqlast.SelectBody, scope *model.Scope, name string) {
	arms := collectArms(body)
	if len(arms) == 1 {
		b.buildCore(arms[0], scope, name)
		return
	}
	for i, arm := range arms {
		armName := fmt.Sprintf("%s.union%d", name, i)
		armScope := model.NewScope(armName, scope)
		b.buildCore(arm, armScope, armName)
		scope.UnionBranches = append(scope.UnionBranches, armScope)
	}
	b.synthesizeUnionProjections(scope)
	b.publishUnionRelations(scope)
}

// collectArms flattens the SelectBody chain (a leaf on the left, the rest
// of the chain nested on the right) into its leaf SelectCores in source
// order.
func collectArms(body *sqlast.SelectBody) []*sqlast.SelectCore {
	if body.IsLeaf() {
		return []*sqlast.SelectCore{body.Core}
	}
	arms := []*sqlast.SelectCore{body.Left.Core}
	return append(arms, collectArms(body.Right)...)
}

func (b *Builder) buildCore(core *sqlast.SelectCore, scope *model.Scope, name string) {
	if core.From != nil {
		anon := 0
		b.registerTableExpr(core.From.Source, scope, name, &anon)
		for _, j := range core.From.Joins {
			b.registerTableExpr(j.Right, scope, name, &anon)
		}
		b.captureJoins(core, scope)
	}
	if core.Where != nil {
		b.hoistCorrelatedTables(core.Where, scope)
	}
	if core.Having != nil {
		b.hoistCorrelatedTables(core.Having, scope)
	}
	for _, item := range core.Columns {
		b.registerSelectItem(item, scope, name)
	}
}

func (b *Builder) registerTableExpr(te sqlast.TableExpr, scope *model.Scope, name string, anon *int) {
	switch t := te.(type) {
	case *sqlast.TableName:
		alias := t.Alias
		if alias == "" {
			alias = t.Name
		}
		if cteScope, ok := lookupCTEChain(scope, t.Name); ok {
			scope.SetRelation(alias, model.Relation{ChildScope: cteScope})
		} else {
			scope.SetRelation(alias, model.Relation{TableName: t.Name, DBLink: t.DBLink})
		}
	case *sqlast.DerivedTable:
		childName := fmt.Sprintf("%s.sub", name)
		child := b.buildStatement(t.Select, scope, childName)
		alias := t.Alias
		if alias == "" {
			alias = b.anonAlias(scope, name, anon)
		}
		scope.SetRelation(alias, model.Relation{ChildScope: child})
	case *sqlast.LateralTable:
		childName := fmt.Sprintf("%s.lateral", name)
		// LATERAL subqueries may reference sibling FROM-entries already
		// registered in scope; parenting the child scope on scope itself
		// (not a fresh sibling) lets resolution walk back to them.
		child := b.buildStatement(t.Select, scope, childName)
		alias := t.Alias
		if alias == "" {
			alias = b.anonAlias(scope, name, anon)
		}
		scope.SetRelation(alias, model.Relation{ChildScope: child})
	case *sqlast.ParenJoinTable:
		// No alias to hang a child scope off: hoist every table inside
		// into the current scope instead (spec's FROM/JOIN registration
		// rule for an unaliased parenthesized join source).
		b.registerTableExpr(t.Source, scope, name, anon)
		for _, j := range t.Joins {
			b.registerTableExpr(j.Right, scope, name, anon)
		}
	case *sqlast.UnpivotTable:
		b.registerTableExpr(t.Source, scope, name, anon)
		if t.ValueColumn != "" {
			scope.SetProjection(&model.ProjectionDef{
				OutputName:     t.ValueColumn,
				ExpressionText: fmt.Sprintf("UNPIVOT_VALUE(%s)", strings.Join(t.InColumns, ",")),
				Transform:      model.TransformOther,
			})
		}
		if t.NameColumn != "" {
			scope.SetProjection(&model.ProjectionDef{
				OutputName:     t.NameColumn,
				ExpressionText: fmt.Sprintf("UNPIVOT_FOR(%s)", strings.Join(t.InColumns, ",")),
				Transform:      model.TransformOther,
			})
		}
	}
}

// anonAlias synthesizes the collision-safe alias for an unaliased
// subquery in a FROM clause, per SPEC_FULL.md's Open Question decision:
// the first gets "__ANON__", subsequent ones get a numeric suffix and a
// recorded warning since later siblings become unreachable by bare name
// in star-expansion ambiguity checks.
func (b *Builder) anonAlias(scope *model.Scope, scopeName string, anon *int) string {
	*anon++
	if *anon == 1 {
		return "__ANON__"
	}
	alias := fmt.Sprintf("__ANON__%d", *anon)
	b.Warnings = append(b.Warnings, fmt.Sprintf("scope %s: multiple unaliased subqueries, using synthetic alias %s", scopeName, alias))
	return alias
}

func lookupCTEChain(scope *model.Scope, name string) (*model.Scope, bool) {
	for s := scope; s != nil; s = s.Parent {
		if c, ok := s.CTE(name); ok && c != nil {
			return c, true
		}
	}
	return nil, false
}

// hoistCorrelatedTables walks expr for nested EXISTS/IN/scalar-subqueries
// and registers the tables their own FROM clauses introduce into scope,
// if not already present, so correlated references in the outer query's
// WHERE/HAVING resolve without inventing a new scope. Per spec §4.4: this
// is a best-effort textual hoist, not a semantic correlated-subquery model.
func (b *Builder) hoistCorrelatedTables(e sqlast.Expr, scope *model.Scope) {
	for _, stmt := range findNestedStatements(e) {
		b.hoistFromStatement(stmt, scope)
	}
}

func (b *Builder) hoistFromStatement(stmt *sqlast.SelectStmt, scope *model.Scope) {
	if stmt == nil || stmt.Body == nil {
		return
	}
	for _, core := range collectArms(stmt.Body) {
		if core.From == nil {
			continue
		}
		hoistTableExpr(core.From.Source, scope)
		for _, j := range core.From.Joins {
			hoistTableExpr(j.Right, scope)
		}
	}
}

func hoistTableExpr(te sqlast.TableExpr, scope *model.Scope) {
	if pt, ok := te.(*sqlast.ParenJoinTable); ok {
		hoistTableExpr(pt.Source, scope)
		for _, j := range pt.Joins {
			hoistTableExpr(j.Right, scope)
		}
		return
	}
	tn, ok := te.(*sqlast.TableName)
	if !ok {
		return
	}
	alias := tn.Alias
	if alias == "" {
		alias = tn.Name
	}
	if _, exists := scope.Relation(alias); !exists {
		scope.SetRelation(alias, model.Relation{TableName: tn.Name})
	}
}

func findNestedStatements(e sqlast.Expr) []*sqlast.SelectStmt {
	var out []*sqlast.SelectStmt
	var walk func(sqlast.Expr)
	walk = func(x sqlast.Expr) {
		switch v := x.(type) {
		case nil:
			return
		case *sqlast.ExistsExpr:
			out = append(out, v.Select)
		case *sqlast.SubqueryExpr:
			out = append(out, v.Select)
		case *sqlast.InExpr:
			if v.Query != nil {
				out = append(out, v.Query)
			}
			walk(v.Expr)
			for _, val := range v.Values {
				walk(val)
			}
		case *sqlast.BinaryExpr:
			walk(v.Left)
			walk(v.Right)
		case *sqlast.UnaryExpr:
			walk(v.Expr)
		case *sqlast.ParenExpr:
			walk(v.Expr)
		case *sqlast.CaseExpr:
			walk(v.Operand)
			for _, w := range v.Whens {
				walk(w.When)
				walk(w.Then)
			}
			walk(v.Else)
		case *sqlast.BetweenExpr:
			walk(v.Expr)
			walk(v.Low)
			walk(v.High)
		case *sqlast.LikeExpr:
			walk(v.Expr)
			walk(v.Pattern)
		case *sqlast.IsNullExpr:
			walk(v.Expr)
		case *sqlast.CastExpr:
			walk(v.Expr)
		case *sqlast.FuncCall:
			for _, a := range v.Args {
				walk(a)
			}
		}
	}
	walk(e)
	return out
}

func (b *Builder) registerSelectItem(item *sqlast.SelectItem, scope *model.Scope, name string) {
	if item.Star {
		for _, entry := range scope.Relations() {
			b.expandRelationStar(entry.Alias, entry.Rel, scope)
		}
		return
	}
	if item.TableStar != "" {
		if rel, ok := scope.Relation(item.TableStar); ok {
			b.expandRelationStar(item.TableStar, rel, scope)
		} else {
			scope.SetProjection(&model.ProjectionDef{
				OutputName:     item.TableStar + ".*",
				ExpressionText: item.TableStar + ".*",
				OriginAlias:    item.TableStar,
			})
		}
		return
	}

	exprText := sqlast.Render(item.Expr)
	refs := toModelRefs(colref.Extract(exprText))

	outputName := item.Alias
	if outputName == "" {
		if cr, ok := item.Expr.(*sqlast.ColumnRef); ok {
			outputName = cr.Column
		} else {
			outputName = syntheticName(name, len(scope.Projections()))
		}
	}

	originAlias := ""
	if len(refs) == 1 && refs[0].Alias != "" {
		originAlias = refs[0].Alias
	}

	var inline *model.Scope
	if subq := unwrapScalarSubquery(item.Expr); subq != nil {
		inline = b.buildStatement(subq.Select, scope, fmt.Sprintf("%s.scalar_%s", name, outputName))
	}

	scope.SetProjection(&model.ProjectionDef{
		OutputName:     outputName,
		ExpressionText: exprText,
		SourceRefs:     refs,
		OriginAlias:    originAlias,
		Transform:      classifyTransform(item.Expr),
		InlineScope:    inline,
	})
}

// unwrapScalarSubquery returns the SubqueryExpr inside expr, looking
// through any wrapping ParenExpr, or nil if expr is not a scalar subquery.
func unwrapScalarSubquery(expr sqlast.Expr) *sqlast.SubqueryExpr {
	switch e := expr.(type) {
	case *sqlast.SubqueryExpr:
		return e
	case *sqlast.ParenExpr:
		return unwrapScalarSubquery(e.Expr)
	}
	return nil
}

func syntheticName(scopeName string, seq int) string {
	return fmt.Sprintf("EXPR_%d", seq+1)
}

func toModelRefs(refs []colref.Ref) []model.ColumnRef {
	out := make([]model.ColumnRef, 0, len(refs))
	for _, r := range refs {
		out = append(out, model.ColumnRef{Alias: r.Table, Column: r.Column})
	}
	return out
}

func (b *Builder) expandRelationStar(alias string, rel model.Relation, scope *model.Scope) {
	if !rel.IsPhysical() {
		for _, p := range rel.ChildScope.Projections() {
			cp := *p
			cp.OriginAlias = alias
			scope.SetProjection(&cp)
		}
		return
	}
	if b.dm != nil && b.dm.HasTable(rel.TableName) {
		for _, col := range b.dm.Columns(rel.TableName) {
			scope.SetProjection(&model.ProjectionDef{
				OutputName:     col,
				ExpressionText: alias + "." + col,
				SourceRefs:     []model.ColumnRef{{Alias: alias, Column: col}},
				OriginAlias:    alias,
				Transform:      model.TransformDirect,
			})
		}
		return
	}
	// No data model entry for this table: record a single placeholder
	// projection; the Resolver's StarExpansionFailed fallback covers it.
	scope.SetProjection(&model.ProjectionDef{
		OutputName:     alias + ".*",
		ExpressionText: alias + ".*",
		OriginAlias:    alias,
	})
}

var aggregateFns = map[string]bool{
	"SUM": true, "COUNT": true, "AVG": true, "MIN": true, "MAX": true,
	"STDDEV": true, "VARIANCE": true, "LISTAGG": true,
}

func classifyTransform(e sqlast.Expr) model.TransformationType {
	switch v := e.(type) {
	case *sqlast.ColumnRef:
		return model.TransformDirect
	case *sqlast.Literal:
		return model.TransformDirect
	case *sqlast.ParenExpr:
		return classifyTransform(v.Expr)
	case *sqlast.CaseExpr:
		return model.TransformConditional
	case *sqlast.CastExpr:
		return model.TransformTypeCast
	case *sqlast.BinaryExpr, *sqlast.UnaryExpr:
		return model.TransformCalculate
	case *sqlast.FuncCall:
		if v.Window != nil {
			return model.TransformWindow
		}
		name := strings.ToUpper(v.Name)
		switch {
		case aggregateFns[name]:
			return model.TransformAggregate
		case name == "TO_CHAR" || name == "TO_DATE" || name == "TO_NUMBER" || name == "TO_TIMESTAMP":
			return model.TransformFormat
		case name == "DECODE":
			return model.TransformConditional
		case name == "NVL" || name == "NVL2" || name == "COALESCE":
			return model.TransformLookup
		default:
			return model.TransformCalculate
		}
	default:
		return model.TransformOther
	}
}

// synthesizeUnionProjections builds the UNION scope's own projection list
// by walking the first arm's projections positionally and gathering the
// corresponding reference from every arm at that position (spec §4.4).
func (b *Builder) synthesizeUnionProjections(scope *model.Scope) {
	branches := scope.UnionBranches
	if len(branches) == 0 {
		return
	}
	first := branches[0].Projections()
	for i, p := range first {
		var refs []model.ColumnRef
		for _, branch := range branches {
			bp := branch.Projections()
			if i >= len(bp) {
				continue
			}
			refs = append(refs, qualifyForArm(branch, bp[i]))
		}
		scope.SetProjection(&model.ProjectionDef{
			OutputName:     p.OutputName,
			ExpressionText: p.ExpressionText,
			SourceRefs:     refs,
			Transform:      p.Transform,
		})
	}
}

func qualifyForArm(branch *model.Scope, p *model.ProjectionDef) model.ColumnRef {
	if p.OriginAlias != "" {
		if rel, ok := branch.Relation(p.OriginAlias); ok && rel.IsPhysical() {
			return model.ColumnRef{Alias: p.OriginAlias, Column: strings.ToUpper(p.OutputName)}
		}
	}
	return model.ColumnRef{Column: strings.ToUpper(p.OutputName)}
}

// publishUnionRelations exposes every arm's relations on the union scope
// itself, first-arm-wins on alias collisions, so that a JOIN written
// against a UNION'd derived table can still resolve physical tables by
// alias when diagnosing failures.
func (b *Builder) publishUnionRelations(scope *model.Scope) {
	for _, branch := range scope.UnionBranches {
		for _, entry := range branch.Relations() {
			if _, exists := scope.Relation(entry.Alias); !exists {
				scope.SetRelation(entry.Alias, entry.Rel)
			}
		}
	}
}

// allJoins flattens a FROM clause's joins in textual order, descending into
// any ParenJoinTable (source or join side) so a join nested inside an
// unaliased parenthesized join source is still captured.
func allJoins(from *sqlast.FromClause) []*sqlast.Join {
	var joins []*sqlast.Join
	joins = append(joins, nestedJoins(from.Source)...)
	for _, j := range from.Joins {
		joins = append(joins, nestedJoins(j.Right)...)
		joins = append(joins, j)
	}
	return joins
}

func nestedJoins(te sqlast.TableExpr) []*sqlast.Join {
	pt, ok := te.(*sqlast.ParenJoinTable)
	if !ok {
		return nil
	}
	var joins []*sqlast.Join
	joins = append(joins, nestedJoins(pt.Source)...)
	joins = append(joins, pt.Joins...)
	return joins
}

func (b *Builder) captureJoins(core *sqlast.SelectCore, scope *model.Scope) {
	for i, j := range allJoins(core.From) {
		seq := i + 1
		if len(j.Using) > 0 {
			for _, col := range j.Using {
				scope.Joins = append(scope.Joins, &model.JoinKey{
					SeqInScope:    seq,
					Kind:          string(j.Type),
					LeftRef:       model.ColumnRef{Column: col},
					RightRef:      model.ColumnRef{Column: col},
					ConditionText: fmt.Sprintf("USING(%s)", col),
				})
			}
			continue
		}
		if j.Condition == nil {
			scope.Joins = append(scope.Joins, &model.JoinKey{SeqInScope: seq, Kind: string(j.Type)})
			continue
		}

		var keys []*model.JoinKey
		var filters []model.FilterPredicate
		for _, conjunct := range splitOnAnd(j.Condition) {
			if left, right, ok := asSimpleEquality(conjunct); ok {
				keys = append(keys, &model.JoinKey{
					SeqInScope:    seq,
					Kind:          string(j.Type),
					LeftRef:       left,
					RightRef:      right,
					ConditionText: sqlast.Render(conjunct),
				})
				continue
			}
			text := sqlast.Render(conjunct)
			filters = append(filters, model.FilterPredicate{Text: text, Refs: toModelRefs(colref.Extract(text))})
		}
		if len(keys) == 0 {
			keys = append(keys, &model.JoinKey{SeqInScope: seq, Kind: string(j.Type)})
		}
		for _, k := range keys {
			k.Filters = filters
			scope.Joins = append(scope.Joins, k)
		}
	}
}

func splitOnAnd(e sqlast.Expr) []sqlast.Expr {
	if b, ok := e.(*sqlast.BinaryExpr); ok && b.Op == "AND" {
		return append(splitOnAnd(b.Left), splitOnAnd(b.Right)...)
	}
	return []sqlast.Expr{e}
}

func asSimpleEquality(e sqlast.Expr) (model.ColumnRef, model.ColumnRef, bool) {
	bin, ok := e.(*sqlast.BinaryExpr)
	if !ok || bin.Op != "=" {
		return model.ColumnRef{}, model.ColumnRef{}, false
	}
	left, lok := asColumnRef(bin.Left)
	right, rok := asColumnRef(bin.Right)
	if !lok || !rok {
		return model.ColumnRef{}, model.ColumnRef{}, false
	}
	return left, right, true
}

func asColumnRef(e sqlast.Expr) (model.ColumnRef, bool) {
	if cr, ok := e.(*sqlast.ColumnRef); ok {
		return model.ColumnRef{Alias: cr.Table, Column: cr.Column}, true
	}
	return model.ColumnRef{}, false
}
