// Package mapping implements the Mapping Driver (spec §4.7): turns
// normalized mapping rows plus a built scope tree into LineageEdge
// values, and computes per-object resolution statistics.
package mapping

import (
	"strings"

	"github.com/oracle-t2t/lineage/internal/lineage/joins"
	"github.com/oracle-t2t/lineage/internal/lineage/model"
	"github.com/oracle-t2t/lineage/internal/lineage/resolve"
)

// Row is one normalized mapping-table row: a target column plus either
// an explicit source or a transformation expression.
type Row struct {
	ObjectName     string
	DestTable      string
	DestField      string
	Expression     string
	SourceTable    string
	SourceColumn   string
	TransformHint  model.TransformationType // optional, from the mapping tool's own classification
}

// directMappingKeyword is the literal sentinel a source_table value of
// "EXPRESSION" uses to force expression-mapping classification even
// though a source_column value happens to be populated too.
const directMappingKeyword = "EXPRESSION"

// Stats are the per-object statistics §4.7 requires.
type Stats struct {
	ObjectName      string
	MappingRows     int
	JoinRows        int
	PhysicalCount   int
	ConstantCount   int
	UnresolvedCount int
	// JoinUnresolvedCount counts unresolved join-key references separately
	// from UnresolvedCount: the >20% warning rate is a mapping-row metric
	// (unresolved mapping edges over MappingRows), and join rows have no
	// comparable per-object denominator to fold them into.
	JoinUnresolvedCount int
	DMMatchYes          int
	DMMatchNo           int
	Warnings            []string
}

// Driver runs rows through the scope tree and produces edges plus stats.
type Driver struct {
	dm         *model.DataModel
	resolver   *resolve.Resolver
	joinResolv *joins.Resolver
}

// NewDriver creates a Driver against an optional data model.
func NewDriver(dm *model.DataModel) *Driver {
	return NewDriverWithDepth(dm, 0)
}

// NewDriverWithDepth creates a Driver whose Resolver and join Resolver share
// an explicit depth guard (0 uses the Resolver's default).
func NewDriverWithDepth(dm *model.DataModel, maxDepth int) *Driver {
	return &Driver{
		dm:         dm,
		resolver:   resolve.NewResolverWithDepth(dm, maxDepth),
		joinResolv: joins.NewResolverWithDepth(dm, maxDepth),
	}
}

// Run classifies and resolves every row against scope, appends join
// edges, and returns the edges plus per-object statistics keyed by
// ObjectName.
func (d *Driver) Run(rows []Row, scope *model.Scope) ([]model.LineageEdge, map[string]*Stats) {
	stats := make(map[string]*Stats)
	var edges []model.LineageEdge

	for _, row := range rows {
		st := statsFor(stats, row.ObjectName)
		st.MappingRows++
		rowEdges := d.resolveRow(row, scope)
		for _, e := range rowEdges {
			tally(st, e)
			edges = append(edges, e)
		}
	}

	joinRows := d.joinResolv.ResolveAll(scope)
	for _, jr := range joinRows {
		objectName := objectNameForJoin(stats)
		st := statsFor(stats, objectName)
		st.JoinRows++
		e := joinEdge(jr, objectName)
		tallyJoin(st, e)
		edges = append(edges, e)
	}

	for _, st := range stats {
		if st.MappingRows > 0 {
			rate := float64(st.UnresolvedCount) / float64(st.MappingRows)
			if rate > 0.2 {
				st.Warnings = append(st.Warnings, "unresolved rate exceeds 20% for object "+st.ObjectName)
			}
		}
	}

	return edges, stats
}

func statsFor(stats map[string]*Stats, objectName string) *Stats {
	st, ok := stats[objectName]
	if !ok {
		st = &Stats{ObjectName: objectName}
		stats[objectName] = st
	}
	return st
}

// objectNameForJoin assigns join-row stats to the single known object
// when there is exactly one; with multiple objects in one run, joins
// are scope-tree-wide and not obviously attributable to one object, so
// they're tallied against a shared pseudo-object instead of guessing.
func objectNameForJoin(stats map[string]*Stats) string {
	if len(stats) == 1 {
		for name := range stats {
			return name
		}
	}
	return "__JOINS__"
}

func tally(st *Stats, e model.LineageEdge) {
	switch e.SourceType {
	case model.SourcePhysical:
		st.PhysicalCount++
	case model.SourceConstant:
		st.ConstantCount++
	case model.SourceUnresolved:
		st.UnresolvedCount++
	}
	tallyDMMatch(st, e)
}

// tallyJoin is tally's join-row counterpart: physical/constant counts feed
// the same totals, but an unresolved join-key reference goes to
// JoinUnresolvedCount instead of UnresolvedCount so it never skews the
// mapping-row unresolved-rate warning below.
func tallyJoin(st *Stats, e model.LineageEdge) {
	switch e.SourceType {
	case model.SourcePhysical:
		st.PhysicalCount++
	case model.SourceConstant:
		st.ConstantCount++
	case model.SourceUnresolved:
		st.JoinUnresolvedCount++
	}
	tallyDMMatch(st, e)
}

func tallyDMMatch(st *Stats, e model.LineageEdge) {
	if e.DMMatch {
		st.DMMatchYes++
	} else {
		st.DMMatchNo++
	}
}

func (d *Driver) resolveRow(row Row, scope *model.Scope) []model.LineageEdge {
	if isDirectMapping(row) {
		results := d.resolver.Resolve(model.ColumnRef{Alias: row.SourceTable, Column: row.SourceColumn}, scope)
		if allUnresolved(results) {
			return []model.LineageEdge{{
				ObjectName: row.ObjectName, RowType: model.RowMapping,
				DestTable: row.DestTable, DestField: row.DestField,
				SourceType: model.SourcePhysical, SourceTable: row.SourceTable, SourceField: row.SourceColumn,
				DMMatch: d.dm != nil && d.dm.HasColumn(row.SourceTable, row.SourceColumn),
				TracePath: []string{"DIRECT_MAPPING"}, SourceAlias: row.SourceTable,
				OriginalRef: row.SourceTable + "." + row.SourceColumn,
				Transform:   model.TransformDirect, Confidence: model.ConfidenceHigh,
			}}
		}
		return edgesFromResolved(row, results)
	}

	text := expressionText(row)
	results := d.resolver.ResolveExpressionText(text, scope)
	return edgesFromResolved(row, results)
}

func isDirectMapping(row Row) bool {
	if row.Expression != "" {
		return false
	}
	if row.SourceTable == "" || row.SourceColumn == "" {
		return false
	}
	return !strings.EqualFold(row.SourceTable, directMappingKeyword)
}

func expressionText(row Row) string {
	if row.Expression != "" {
		return row.Expression
	}
	if row.SourceColumn != "" {
		return row.SourceColumn
	}
	return row.DestField
}

func allUnresolved(results []model.ResolvedColumn) bool {
	for _, r := range results {
		if r.Kind != model.KindUnresolved {
			return false
		}
	}
	return true
}

func edgesFromResolved(row Row, results []model.ResolvedColumn) []model.LineageEdge {
	out := make([]model.LineageEdge, 0, len(results))
	for _, res := range results {
		out = append(out, edgeFromResolved(row, res))
	}
	return out
}

func edgeFromResolved(row Row, res model.ResolvedColumn) model.LineageEdge {
	e := model.LineageEdge{
		ObjectName: row.ObjectName, RowType: model.RowMapping,
		DestTable: row.DestTable, DestField: row.DestField,
		ExpressionText: row.Expression, TracePath: res.TracePath,
		SourceAlias: res.SourceAlias, OriginalRef: res.OriginalRef,
		Confidence: res.Confidence,
	}
	if row.TransformHint != "" {
		e.Transform = row.TransformHint
	}
	switch res.Kind {
	case model.KindPhysical:
		e.SourceType = model.SourcePhysical
		e.SourceTable = res.Table
		e.SourceField = res.Column
		e.DMMatch = res.DMMatch
	case model.KindConstant:
		e.SourceType = model.SourceConstant
		e.ConstantValue = res.LiteralText
	case model.KindUnresolved:
		e.SourceType = model.SourceUnresolved
		e.FullExpression = res.DebugContext
	}
	return e
}

func joinEdge(jr model.JoinKeyResolved, objectName string) model.LineageEdge {
	e := model.LineageEdge{
		ObjectName: objectName, RowType: model.RowJoin,
		JoinSeq: jr.Join.SeqInScope, JoinKind: jr.Join.Kind,
		JoinRole: jr.Role, JoinSide: jr.Side, JoinCondition: jr.PredicateText,
	}
	if len(jr.Resolved) == 0 {
		return e
	}
	res := jr.Resolved[0]
	e.TracePath = res.TracePath
	e.Confidence = res.Confidence
	switch res.Kind {
	case model.KindPhysical:
		e.SourceType = model.SourcePhysical
		e.SourceTable = res.Table
		e.SourceField = res.Column
		e.DMMatch = res.DMMatch
	case model.KindConstant:
		e.SourceType = model.SourceConstant
		e.ConstantValue = res.LiteralText
	case model.KindUnresolved:
		e.SourceType = model.SourceUnresolved
	}
	return e
}
