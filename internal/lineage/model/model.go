// Package model defines the data shapes the Scope-Tree Resolver builds
// and consumes: ColumnRef, ResolvedColumn, ProjectionDef, Scope, JoinKey,
// JoinKeyResolved, LineageEdge, and DataModel.
package model

import "strings"

// ColumnRef is a (alias?, column) pair from user text. Alias absent means
// the reference was unqualified in the original SQL.
type ColumnRef struct {
	Alias  string
	Column string
}

// String renders the canonical upper-cased form used for tracing.
func (c ColumnRef) String() string {
	if c.Alias == "" {
		return strings.ToUpper(c.Column)
	}
	return strings.ToUpper(c.Alias) + "." + strings.ToUpper(c.Column)
}

// UnresolvedReason enumerates why resolution of a reference failed.
type UnresolvedReason string

const (
	ReasonCycleDetected       UnresolvedReason = "CycleDetected"
	ReasonDepthGuard          UnresolvedReason = "DepthGuard"
	ReasonAliasNotFound       UnresolvedReason = "AliasNotFound"
	ReasonMissingProjection   UnresolvedReason = "MissingProjection"
	ReasonColumnNotFound      UnresolvedReason = "ColumnNotFound"
	ReasonAmbiguous           UnresolvedReason = "Ambiguous"
	ReasonPartialFailure      UnresolvedReason = "PartialFailure"
	ReasonCompleteFailure     UnresolvedReason = "CompleteFailure"
	ReasonStarExpansionFailed UnresolvedReason = "StarExpansionFailed"
	ReasonParserLimitation    UnresolvedReason = "ParserLimitation"
	ReasonDynamicSQL          UnresolvedReason = "DynamicSQL"
)

// Kind tags a ResolvedColumn's variant.
type Kind int

const (
	KindPhysical Kind = iota
	KindConstant
	KindUnresolved
)

// TransformationType is the supplemented, best-effort classification of
// an expression's dominant transform kind (additive, informational only;
// see SPEC_FULL.md §3). It never affects resolution outcomes.
type TransformationType string

const (
	TransformDirect      TransformationType = "DIRECT"
	TransformAggregate   TransformationType = "AGGREGATE"
	TransformConditional TransformationType = "CONDITIONAL"
	TransformCalculate   TransformationType = "CALCULATE"
	TransformFormat      TransformationType = "FORMAT"
	TransformTypeCast    TransformationType = "TYPE_CAST"
	TransformWindow      TransformationType = "WINDOW"
	TransformLookup      TransformationType = "LOOKUP"
	TransformFilter      TransformationType = "FILTER"
	TransformOther       TransformationType = "OTHER"
)

// Confidence is the supplemented, informational resolution-confidence
// classification (additive; see SPEC_FULL.md §3).
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
	ConfidenceNone   Confidence = "NONE"
)

// ResolvedColumn is the outcome of resolution for a single leaf reference.
// Exactly one of Physical/Constant/Unresolved fields is meaningful,
// selected by Kind — a tagged union expressed as a flat struct, matching
// the teacher's preference for plain structs over interface hierarchies
// when the variant set is closed and small.
type ResolvedColumn struct {
	Kind Kind

	// Physical fields.
	Table        string
	Column       string
	DMMatch      bool
	SourceAlias  string
	OriginalRef  string

	// Constant fields.
	LiteralText string

	// Unresolved fields.
	Reason        UnresolvedReason
	FailingRef    string
	DebugContext  string

	// Common to all variants.
	TracePath []string

	// Supplemented, informational fields (SPEC_FULL.md §3).
	Confidence Confidence
}

// Physical constructs a resolved physical column.
func Physical(table, column string, dmMatch bool, trace []string, sourceAlias, originalRef string) ResolvedColumn {
	return ResolvedColumn{
		Kind: KindPhysical, Table: table, Column: column, DMMatch: dmMatch,
		TracePath: trace, SourceAlias: sourceAlias, OriginalRef: originalRef,
		Confidence: confidenceFor(sourceAlias),
	}
}

func confidenceFor(sourceAlias string) Confidence {
	if sourceAlias == "" {
		return ConfidenceMedium
	}
	return ConfidenceHigh
}

// Constant constructs a resolved constant.
func Constant(literal string, trace []string) ResolvedColumn {
	return ResolvedColumn{Kind: KindConstant, LiteralText: literal, TracePath: trace, Confidence: ConfidenceHigh}
}

// Unresolved constructs an unresolved result with a diagnostic reason.
func Unresolved(reason UnresolvedReason, failingRef, debugContext string, trace []string) ResolvedColumn {
	return ResolvedColumn{
		Kind: KindUnresolved, Reason: reason, FailingRef: failingRef,
		DebugContext: debugContext, TracePath: trace, Confidence: ConfidenceNone,
	}
}

// ProjectionDef is one SELECT-list item's definition.
type ProjectionDef struct {
	OutputName     string
	ExpressionText string
	SourceRefs     []ColumnRef
	// OriginAlias is set when this projection was created by expanding
	// alias.*; used to disambiguate identity-name collisions (§4.5 step 2).
	OriginAlias string
	Transform   TransformationType
	// InlineScope is set when ExpressionText is (or wraps) a scalar
	// subquery: the pre-built scope of that subquery, so the Resolver can
	// descend into it without re-parsing expression text (§4.5 "handles
	// scalar subqueries by building their scope inline").
	InlineScope *Scope
}

// Relation is what a FROM-clause alias resolves to: either a physical
// table name or a child Scope.
type Relation struct {
	TableName string // set when ChildScope is nil
	ChildScope *Scope

	// DBLink is set when this physical table was referenced with an
	// Oracle dblink suffix (table@dblink): the table lives in a remote
	// database the resolver has no visibility into.
	DBLink string
}

// IsPhysical reports whether this relation is a physical table rather
// than a nested scope.
func (r Relation) IsPhysical() bool { return r.ChildScope == nil }

// Scope is a node of the scope tree.
type Scope struct {
	Name   string
	Parent *Scope

	relOrder []string
	relations map[string]Relation

	projOrder []string
	projections map[string]*ProjectionDef

	cteOrder []string
	ctes map[string]*Scope

	UnionBranches []*Scope
	Joins         []*JoinKey
}

// NewScope creates an empty Scope named name with the given parent
// (nil for the root scope).
func NewScope(name string, parent *Scope) *Scope {
	return &Scope{
		Name:        name,
		Parent:      parent,
		relations:   make(map[string]Relation),
		projections: make(map[string]*ProjectionDef),
		ctes:        make(map[string]*Scope),
	}
}

// SetRelation registers alias → relation, insertion-ordered. A later
// call with the same alias overwrites the value but keeps the original
// insertion position.
func (s *Scope) SetRelation(alias string, rel Relation) {
	key := strings.ToUpper(alias)
	if _, exists := s.relations[key]; !exists {
		s.relOrder = append(s.relOrder, key)
	}
	s.relations[key] = rel
}

// Relation looks up alias in this scope's own relations only (no
// scope-chain walk).
func (s *Scope) Relation(alias string) (Relation, bool) {
	r, ok := s.relations[strings.ToUpper(alias)]
	return r, ok
}

// RelationEntry pairs an alias with what it resolves to, in scope
// relation order.
type RelationEntry struct {
	Alias string
	Rel   Relation
}

// Relations returns this scope's relations in insertion order.
func (s *Scope) Relations() []RelationEntry {
	out := make([]RelationEntry, 0, len(s.relOrder))
	for _, alias := range s.relOrder {
		out = append(out, RelationEntry{Alias: alias, Rel: s.relations[alias]})
	}
	return out
}

// SetProjection registers output-name → projection, insertion-ordered.
func (s *Scope) SetProjection(p *ProjectionDef) {
	key := strings.ToUpper(p.OutputName)
	if _, exists := s.projections[key]; !exists {
		s.projOrder = append(s.projOrder, key)
	}
	s.projections[key] = p
}

// Projection looks up a projection by output name in this scope only.
func (s *Scope) Projection(name string) (*ProjectionDef, bool) {
	p, ok := s.projections[strings.ToUpper(name)]
	return p, ok
}

// Projections returns this scope's projections in insertion order.
func (s *Scope) Projections() []*ProjectionDef {
	out := make([]*ProjectionDef, 0, len(s.projOrder))
	for _, name := range s.projOrder {
		out = append(out, s.projections[name])
	}
	return out
}

// SetCTE registers a CTE name → scope, insertion-ordered.
func (s *Scope) SetCTE(name string, scope *Scope) {
	key := strings.ToUpper(name)
	if _, exists := s.ctes[key]; !exists {
		s.cteOrder = append(s.cteOrder, key)
	}
	s.ctes[key] = scope
}

// CTE looks up a CTE by name in this scope only.
func (s *Scope) CTE(name string) (*Scope, bool) {
	c, ok := s.ctes[strings.ToUpper(name)]
	return c, ok
}

// JoinRole classifies a JoinKeyResolved side.
type JoinRole string

const (
	RoleKey    JoinRole = "KEY"
	RoleFilter JoinRole = "FILTER"
)

// JoinSide identifies which side of a key a resolved reference came from.
type JoinSide string

const (
	SideLeft   JoinSide = "LEFT"
	SideRight  JoinSide = "RIGHT"
	SideFilter JoinSide = "FILTER"
)

// JoinKey is a single equality or predicate extracted from an ON-clause,
// unresolved: references are recorded exactly as written.
type JoinKey struct {
	SeqInScope   int
	Kind         string // INNER|LEFT|RIGHT|FULL|CROSS
	LeftRef      ColumnRef
	RightRef     ColumnRef
	ConditionText string
	// Filters holds every non-equality predicate attached to this join,
	// as raw reference lists pulled from each filter's expression text.
	Filters []FilterPredicate
}

// FilterPredicate is one non-key predicate attached to a join's ON clause.
type FilterPredicate struct {
	Text string
	Refs []ColumnRef
}

// JoinKeyResolved is a JoinKey after the resolver has run against each
// referenced column in the join's owning scope.
type JoinKeyResolved struct {
	Join        *JoinKey
	OwningScope *Scope
	Role        JoinRole
	Side        JoinSide
	Resolved    []ResolvedColumn
	PredicateText string
}

// RowType distinguishes mapping edges from join edges.
type RowType string

const (
	RowMapping RowType = "MAPPING"
	RowJoin    RowType = "JOIN"
)

// SourceType mirrors ResolvedColumn.Kind at the output-edge level.
type SourceType string

const (
	SourcePhysical   SourceType = "PHYSICAL"
	SourceConstant   SourceType = "CONSTANT"
	SourceUnresolved SourceType = "UNRESOLVED"
)

// LineageEdge is the unit of output.
type LineageEdge struct {
	ObjectName string
	RowType    RowType

	DestTable string
	DestField string

	SourceType     SourceType
	SourceTable    string
	SourceField    string
	ConstantValue  string
	ExpressionText string
	FullExpression string

	DMMatch     bool
	TracePath   []string
	SourceAlias string
	OriginalRef string

	// Join fields, set only when RowType == RowJoin.
	JoinSeq       int
	JoinKind      string
	JoinRole      JoinRole
	JoinSide      JoinSide
	JoinCondition string

	// Supplemented fields (SPEC_FULL.md §3), informational only.
	Transform  TransformationType
	Confidence Confidence
}

// DataModel is a read-only mapping table-name (case-insensitive) →
// set<column-name>. All internal comparisons use upper-case.
type DataModel struct {
	tables map[string]map[string]bool
}

// NewDataModel builds a DataModel from a table name → column names map.
func NewDataModel(tables map[string][]string) *DataModel {
	dm := &DataModel{tables: make(map[string]map[string]bool, len(tables))}
	for table, cols := range tables {
		colSet := make(map[string]bool, len(cols))
		for _, c := range cols {
			colSet[strings.ToUpper(c)] = true
		}
		dm.tables[strings.ToUpper(table)] = colSet
	}
	return dm
}

// HasTable reports whether table is present in the data model.
func (dm *DataModel) HasTable(table string) bool {
	if dm == nil {
		return false
	}
	_, ok := dm.tables[strings.ToUpper(table)]
	return ok
}

// HasColumn reports whether table.column is present in the data model.
func (dm *DataModel) HasColumn(table, column string) bool {
	if dm == nil {
		return false
	}
	cols, ok := dm.tables[strings.ToUpper(table)]
	if !ok {
		return false
	}
	return cols[strings.ToUpper(column)]
}

// Columns returns the column set for table, or nil if table is absent.
func (dm *DataModel) Columns(table string) []string {
	if dm == nil {
		return nil
	}
	cols, ok := dm.tables[strings.ToUpper(table)]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(cols))
	for c := range cols {
		out = append(out, c)
	}
	return out
}
