package sqlast

// TableName references a physical table or a CTE by name, optionally
// schema-qualified, optionally aliased. The scope builder decides at
// registration time whether a given TableName resolves to a CTE already
// in scope or to a physical table in the data model.
type TableName struct {
	NodeInfo
	Schema string
	Name   string
	Alias  string

	// DBLink is set for an Oracle dblink reference (table@dblink_name):
	// the table lives in a remote database this resolver never reads.
	DBLink string
}

func (t *TableName) tableExprNode() {}

// DerivedTable is a parenthesized subquery in a FROM clause: (SELECT ...) alias.
type DerivedTable struct {
	NodeInfo
	Select *SelectStmt
	Alias  string
}

func (d *DerivedTable) tableExprNode() {}

// LateralTable is a LATERAL subquery; unlike DerivedTable it may reference
// columns from sibling FROM-clause entries in the same scope.
type LateralTable struct {
	NodeInfo
	Select *SelectStmt
	Alias  string
}

func (l *LateralTable) tableExprNode() {}

// UnpivotTable wraps a source table expression with UNPIVOT semantics:
// the InColumns are folded into a single ValueColumn/NameColumn pair of
// synthetic output columns, each sourced from every column in InColumns.
type UnpivotTable struct {
	NodeInfo
	Source      TableExpr
	ValueColumn string   // output column holding the unpivoted value
	NameColumn  string   // output column holding the unpivoted column's name
	InColumns   []string // source columns folded into ValueColumn/NameColumn
	Alias       string
}

func (u *UnpivotTable) tableExprNode() {}

// ParenJoinTable is a parenthesized join expression used directly as a join
// source with no alias of its own, e.g. FROM (a JOIN b ON a.id = b.id) JOIN c
// ON .... It has no name to hang a child scope off, so the scope builder
// hoists every table it contains into the enclosing scope instead.
type ParenJoinTable struct {
	NodeInfo
	Source TableExpr
	Joins  []*Join
}

func (p *ParenJoinTable) tableExprNode() {}
