// Package resolve implements the Scope-Tree Resolver (spec §4.5): a
// deterministic, total function from a column reference plus a starting
// scope to the list of ResolvedColumn values it ultimately traces back to.
package resolve

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/oracle-t2t/lineage/internal/colref"
	"github.com/oracle-t2t/lineage/internal/lineage/model"
)

const defaultMaxDepth = 50

// Resolver holds the data model used for dm_match annotation and
// unqualified-reference disambiguation.
type Resolver struct {
	dm       *model.DataModel
	maxDepth int
}

// NewResolver creates a Resolver against an optional data model, using the
// default depth guard (50).
func NewResolver(dm *model.DataModel) *Resolver {
	return NewResolverWithDepth(dm, defaultMaxDepth)
}

// NewResolverWithDepth creates a Resolver with an explicit depth guard,
// letting a caller (e.g. the CLI's --max-depth flag) override the default.
// A non-positive depth falls back to the default rather than disabling the
// guard, since totality depends on it always being bounded.
func NewResolverWithDepth(dm *model.DataModel, maxDepth int) *Resolver {
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}
	return &Resolver{dm: dm, maxDepth: maxDepth}
}

type visitKey struct {
	scope *model.Scope
	ref   string
}

// Resolve is the public entrypoint: resolves a single reference against
// scope, starting with fresh cycle-guard state.
func (r *Resolver) Resolve(ref model.ColumnRef, scope *model.Scope) []model.ResolvedColumn {
	return r.resolve(ref, scope, make(map[visitKey]bool), nil, 0)
}

// ResolveExpressionText resolves arbitrary expression text (not tied to
// a parsed projection) against scope — the shape the Mapping Driver needs
// when a mapping row's expression comes from flat data, not AST.
func (r *Resolver) ResolveExpressionText(text string, scope *model.Scope) []model.ResolvedColumn {
	return r.resolveProjection(&model.ProjectionDef{ExpressionText: text, SourceRefs: toModelRefs(colref.Extract(text))}, scope, make(map[visitKey]bool), nil, 0)
}

func (r *Resolver) resolve(ref model.ColumnRef, scope *model.Scope, visited map[visitKey]bool, trace []string, depth int) []model.ResolvedColumn {
	normalized := ref.String()
	if colref.IsConstant(normalized) {
		return []model.ResolvedColumn{model.Constant(normalized, trace)}
	}

	key := visitKey{scope: scope, ref: normalized}
	if visited[key] {
		return []model.ResolvedColumn{model.Unresolved(model.ReasonCycleDetected, normalized, fmt.Sprintf("revisited %s in scope %s", normalized, scope.Name), trace)}
	}
	if len(trace) > r.maxDepth {
		return []model.ResolvedColumn{model.Unresolved(model.ReasonDepthGuard, normalized, "", trace)}
	}

	visited = cloneVisited(visited)
	visited[key] = true
	trace = append(append([]string{}, trace...), normalized)

	if ref.Alias != "" {
		return r.resolveQualified(ref, scope, visited, trace, depth)
	}
	return r.resolveUnqualified(ref, scope, visited, trace, depth)
}

func cloneVisited(v map[visitKey]bool) map[visitKey]bool {
	out := make(map[visitKey]bool, len(v)+1)
	for k := range v {
		out[k] = true
	}
	return out
}

// resolveQualified implements §4.5 Step 2.
func (r *Resolver) resolveQualified(ref model.ColumnRef, scope *model.Scope, visited map[visitKey]bool, trace []string, depth int) []model.ResolvedColumn {
	rel, _, ok := findAlias(scope, ref.Alias)
	if !ok {
		return []model.ResolvedColumn{model.Unresolved(model.ReasonAliasNotFound, ref.String(), fmt.Sprintf("alias %s not visible from scope %s", ref.Alias, scope.Name), trace)}
	}

	if rel.IsPhysical() {
		if rel.DBLink != "" {
			return []model.ResolvedColumn{model.Unresolved(model.ReasonDynamicSQL, ref.String(), fmt.Sprintf("%s is a remote table via dblink %s; cross-database resolution is not attempted", rel.TableName, rel.DBLink), trace)}
		}
		return []model.ResolvedColumn{model.Physical(rel.TableName, ref.Column, r.dmMatch(rel.TableName, ref.Column), trace, ref.Alias, ref.String())}
	}

	child := rel.ChildScope

	// Self-reference: the alias resolved back to the very scope the ref
	// started from (a subquery aliasing back to itself). Look for a
	// physical table registered under the same alias first; otherwise
	// fall back to unqualified resolution with a fresh visited set since
	// child descent here is not the cycle the visited set guards against.
	if child == scope {
		if nested, ok := scope.Relation(ref.Alias); ok && nested.IsPhysical() {
			return []model.ResolvedColumn{model.Physical(nested.TableName, ref.Column, r.dmMatch(nested.TableName, ref.Column), trace, ref.Alias, ref.String())}
		}
		return r.resolveUnqualified(model.ColumnRef{Column: ref.Column}, scope, make(map[visitKey]bool), trace, depth+1)
	}

	if len(child.UnionBranches) > 0 {
		return r.resolveUnion(ref.Column, child, trace, depth)
	}

	if proj, ok := child.Projection(ref.Column); ok {
		return r.resolveProjection(proj, child, make(map[visitKey]bool), trace, depth+1)
	}

	return []model.ResolvedColumn{model.Unresolved(model.ReasonMissingProjection, ref.String(), nearNeighbors(child, ref.Column), trace)}
}

// resolveUnqualified implements §4.5 Step 3.
func (r *Resolver) resolveUnqualified(ref model.ColumnRef, scope *model.Scope, visited map[visitKey]bool, trace []string, depth int) []model.ResolvedColumn {
	col := ref.Column

	if len(scope.UnionBranches) > 0 {
		return r.resolveUnion(col, scope, trace, depth)
	}

	if proj, ok := scope.Projection(col); ok {
		if isIdentityProjection(proj, scope) {
			if res, ok2 := r.resolveIdentityViaOrigin(col, proj, scope, trace, depth); ok2 {
				return res
			}
			// Identity case, but no child scope of this scope supplies col:
			// fall through to ordinary physical-table matching below instead
			// of re-entering this same projection, which would just bounce
			// off the same identity case again until the depth guard fired.
		} else {
			return r.resolveProjection(proj, scope, make(map[visitKey]bool), trace, depth+1)
		}
	}

	// Not a (non-identity) projection, or an identity projection whose
	// origin bottomed out with no child scope left to try: child-scope
	// matches outrank physical-table matches so a joined dimension table
	// doesn't mask the real subquery source.
	var childResults []model.ResolvedColumn
	for _, entry := range scope.Relations() {
		if entry.Rel.IsPhysical() {
			continue
		}
		if p, ok := entry.Rel.ChildScope.Projection(col); ok {
			childResults = append(childResults, r.resolveProjection(p, entry.Rel.ChildScope, make(map[visitKey]bool), trace, depth+1)...)
		}
	}
	if len(childResults) > 0 {
		return childResults
	}

	var physMatches []model.ResolvedColumn
	for _, entry := range scope.Relations() {
		if !entry.Rel.IsPhysical() || entry.Rel.DBLink != "" {
			continue
		}
		if r.dm != nil && r.dm.HasColumn(entry.Rel.TableName, col) {
			m := model.Physical(entry.Rel.TableName, col, true, trace, entry.Alias, ref.String())
			m.Confidence = model.ConfidenceMedium // inferred, not written qualified
			physMatches = append(physMatches, m)
		}
	}
	if len(physMatches) > 0 {
		return physMatches
	}
	if r.dm == nil {
		for _, entry := range scope.Relations() {
			if entry.Rel.IsPhysical() && entry.Rel.DBLink == "" {
				// No data model to disambiguate among physical relations:
				// fall back to the first one in FROM order, dm_match=false.
				m := model.Physical(entry.Rel.TableName, col, false, trace, entry.Alias, ref.String())
				m.Confidence = model.ConfidenceMedium
				return []model.ResolvedColumn{m}
			}
		}
	}

	if scope.Parent != nil {
		return r.resolve(ref, scope.Parent, visited, trace, depth+1)
	}
	return []model.ResolvedColumn{model.Unresolved(model.ReasonColumnNotFound, ref.String(), "no relation in scope "+scope.Name+" exposes column "+col, trace)}
}

// resolveProjection resolves a projection's expression: scalar-subquery
// inlining, whole-expression constant detection, else per-ref concatenation.
func (r *Resolver) resolveProjection(proj *model.ProjectionDef, scope *model.Scope, visited map[visitKey]bool, trace []string, depth int) []model.ResolvedColumn {
	if len(trace) > r.maxDepth {
		return []model.ResolvedColumn{model.Unresolved(model.ReasonDepthGuard, proj.ExpressionText, "", trace)}
	}

	if isStarExpansionPlaceholder(proj) {
		return []model.ResolvedColumn{model.Unresolved(model.ReasonStarExpansionFailed, proj.OutputName, "alias "+proj.OriginAlias+".* has no data-model entry to enumerate columns from", trace)}
	}

	if proj.InlineScope != nil {
		var out []model.ResolvedColumn
		for _, p := range proj.InlineScope.Projections() {
			out = append(out, r.resolveProjection(p, proj.InlineScope, make(map[visitKey]bool), trace, depth+1)...)
		}
		out = append(out, r.correlatedOuterRefs(proj.InlineScope, scope, trace, depth)...)
		if len(out) > 0 {
			return out
		}
	}

	if colref.IsConstant(strings.TrimSpace(proj.ExpressionText)) {
		return []model.ResolvedColumn{model.Constant(proj.ExpressionText, trace)}
	}

	refs := proj.SourceRefs
	if len(refs) == 0 {
		refs = toModelRefs(colref.Extract(proj.ExpressionText))
	}
	if len(refs) == 0 {
		if looksLikeProceduralSQL(proj.ExpressionText) {
			return []model.ResolvedColumn{model.Unresolved(model.ReasonParserLimitation, proj.ExpressionText, "expression contains PL/SQL or dynamic-SQL syntax outside the supported SELECT grammar", trace)}
		}
		return []model.ResolvedColumn{model.Unresolved(model.ReasonColumnNotFound, proj.ExpressionText, "no extractable column references", trace)}
	}

	return r.resolveRefsWithFallback(proj.ExpressionText, refs, scope, visited, trace, depth)
}

var parserLimitationRe = regexp.MustCompile(`(?i)\b(EXECUTE\s+IMMEDIATE|BEGIN|DECLARE|PRAGMA)\b`)

// looksLikeProceduralSQL reports whether text contains PL/SQL or dynamic-SQL
// syntax the grammar never parses into column references, as opposed to an
// expression that simply has none (e.g. a bare constant already handled
// earlier).
func looksLikeProceduralSQL(text string) bool {
	return parserLimitationRe.MatchString(text)
}

// resolveRefsWithFallback is the §4.5 fallback ladder translated into Go's
// no-exceptions idiom: resolve every ref independently first. If every ref
// failed, the whole expression failed together and is reported as a single
// CompleteFailure carrying the original text. If only some failed, the
// expression as a whole still produced results, so each failing ref is
// re-tagged PartialFailure rather than surfacing its own (possibly
// confusing, in-isolation) reason.
func (r *Resolver) resolveRefsWithFallback(exprText string, refs []model.ColumnRef, scope *model.Scope, visited map[visitKey]bool, trace []string, depth int) []model.ResolvedColumn {
	perRef := make([][]model.ResolvedColumn, len(refs))
	anySucceeded := false
	for i, ref := range refs {
		perRef[i] = r.resolve(ref, scope, visited, trace, depth)
		if !allUnresolved(perRef[i]) {
			anySucceeded = true
		}
	}
	if !anySucceeded {
		return []model.ResolvedColumn{model.Unresolved(model.ReasonCompleteFailure, exprText, "expression produced no resolutions", trace)}
	}

	var out []model.ResolvedColumn
	for i, res := range perRef {
		if allUnresolved(res) {
			out = append(out, model.Unresolved(model.ReasonPartialFailure, refs[i].String(), "ref failed to resolve while sibling refs in the same expression did", trace))
			continue
		}
		out = append(out, res...)
	}
	return out
}

func allUnresolved(res []model.ResolvedColumn) bool {
	if len(res) == 0 {
		return false
	}
	for _, r := range res {
		if r.Kind != model.KindUnresolved {
			return false
		}
	}
	return true
}

// correlatedOuterRefs resolves any reference inside an inline scalar
// subquery's own projections/joins that point outward at the enclosing
// scope's aliases rather than at the subquery's own relations.
func (r *Resolver) correlatedOuterRefs(inner, outer *model.Scope, trace []string, depth int) []model.ResolvedColumn {
	var out []model.ResolvedColumn
	for _, p := range inner.Projections() {
		for _, ref := range p.SourceRefs {
			if ref.Alias == "" {
				continue
			}
			if _, ok := inner.Relation(ref.Alias); ok {
				continue
			}
			if _, ok := outer.Relation(ref.Alias); ok {
				out = append(out, r.resolve(ref, outer, make(map[visitKey]bool), trace, depth+1)...)
			}
		}
	}
	return out
}

func (r *Resolver) resolveUnion(col string, unionScope *model.Scope, trace []string, depth int) []model.ResolvedColumn {
	branches := unionScope.UnionBranches
	if len(branches) == 0 {
		return []model.ResolvedColumn{model.Unresolved(model.ReasonColumnNotFound, col, "union scope has no branches", trace)}
	}
	pos := -1
	for i, p := range branches[0].Projections() {
		if strings.EqualFold(p.OutputName, col) {
			pos = i
			break
		}
	}

	var out []model.ResolvedColumn
	for _, arm := range branches {
		if proj, ok := arm.Projection(col); ok {
			out = append(out, r.resolveProjection(proj, arm, make(map[visitKey]bool), trace, depth+1)...)
			continue
		}
		armProjs := arm.Projections()
		if pos >= 0 && pos < len(armProjs) {
			out = append(out, r.resolveProjection(armProjs[pos], arm, make(map[visitKey]bool), trace, depth+1)...)
			continue
		}
		out = append(out, r.resolveUnqualified(model.ColumnRef{Column: col}, arm, make(map[visitKey]bool), trace, depth+1)...)
	}
	return out
}

// isStarExpansionPlaceholder detects the placeholder projection
// internal/lineage/scope records for alias.* when the data model has no
// entry for the underlying table (it can't enumerate the real columns).
func isStarExpansionPlaceholder(proj *model.ProjectionDef) bool {
	return proj.InlineScope == nil && len(proj.SourceRefs) == 0 &&
		proj.OriginAlias != "" && proj.ExpressionText == proj.OutputName &&
		strings.HasSuffix(proj.OutputName, ".*")
}

// isIdentityProjection detects a projection whose value is just C or
// X.C, where X is not a relation of scope — the star-expansion-copied
// reference case (§4.5 Step 3.2).
func isIdentityProjection(proj *model.ProjectionDef, scope *model.Scope) bool {
	if len(proj.SourceRefs) != 1 {
		return false
	}
	ref := proj.SourceRefs[0]
	if !strings.EqualFold(ref.Column, proj.OutputName) {
		return false
	}
	if ref.Alias == "" {
		return true
	}
	_, isCurrentRelation := scope.Relation(ref.Alias)
	return !isCurrentRelation
}

func (r *Resolver) resolveIdentityViaOrigin(col string, proj *model.ProjectionDef, scope *model.Scope, trace []string, depth int) ([]model.ResolvedColumn, bool) {
	if proj.OriginAlias != "" {
		if rel, ok := scope.Relation(proj.OriginAlias); ok && !rel.IsPhysical() {
			if res := r.traceChildForColumn(col, rel.ChildScope, trace, depth); res != nil {
				return res, true
			}
		}
	}

	var matched []model.ResolvedColumn
	var matchedAliases []string
	for _, entry := range scope.Relations() {
		if entry.Rel.IsPhysical() {
			continue
		}
		if proj.OriginAlias != "" && strings.EqualFold(entry.Alias, proj.OriginAlias) {
			continue
		}
		if res := r.traceChildForColumn(col, entry.Rel.ChildScope, trace, depth); res != nil {
			matched = append(matched, res...)
			matchedAliases = append(matchedAliases, entry.Alias)
		}
	}
	switch len(matchedAliases) {
	case 0:
		return nil, false
	case 1:
		return matched, true
	default:
		// More than one sibling scope exposes this column under its own
		// identity projection: picking one silently would be a coin flip,
		// so report the ambiguity instead.
		msg := fmt.Sprintf("column %s matched star-expansion origins %s", col, strings.Join(matchedAliases, ","))
		return []model.ResolvedColumn{model.Unresolved(model.ReasonAmbiguous, col, msg, trace)}, true
	}
}

func (r *Resolver) traceChildForColumn(col string, child *model.Scope, trace []string, depth int) []model.ResolvedColumn {
	if p, ok := child.Projection(col); ok {
		return r.resolveProjection(p, child, make(map[visitKey]bool), trace, depth+1)
	}
	return nil
}

// findAlias walks the scope chain looking for alias: the current
// scope's own relations and CTEs, its union branches, a depth-capped
// search into nested child scopes (so star-expansion-copied references
// to a deeply-nested alias still resolve), then the parent scope.
func findAlias(scope *model.Scope, alias string) (model.Relation, *model.Scope, bool) {
	for s := scope; s != nil; s = s.Parent {
		if rel, ok := s.Relation(alias); ok {
			return rel, s, true
		}
		if cte, ok := s.CTE(alias); ok && cte != nil {
			return model.Relation{ChildScope: cte}, s, true
		}
		for _, branch := range s.UnionBranches {
			if rel, ok := branch.Relation(alias); ok {
				return rel, branch, true
			}
		}
		if rel, owner, ok := deepSearchChildren(s, alias, 0); ok {
			return rel, owner, true
		}
	}
	return model.Relation{}, nil, false
}

const maxDeepSearchDepth = 10

func deepSearchChildren(scope *model.Scope, alias string, depth int) (model.Relation, *model.Scope, bool) {
	if depth > maxDeepSearchDepth {
		return model.Relation{}, nil, false
	}
	for _, entry := range scope.Relations() {
		if entry.Rel.IsPhysical() {
			continue
		}
		child := entry.Rel.ChildScope
		if rel, ok := child.Relation(alias); ok {
			return rel, child, true
		}
		if rel, owner, ok := deepSearchChildren(child, alias, depth+1); ok {
			return rel, owner, true
		}
	}
	return model.Relation{}, nil, false
}

func nearNeighbors(s *model.Scope, name string) string {
	projs := s.Projections()
	names := make([]string, 0, len(projs))
	for _, p := range projs {
		names = append(names, p.OutputName)
	}
	if len(names) > 8 {
		names = names[:8]
	}
	return fmt.Sprintf("missing %s in scope %s; known projections: %s", name, s.Name, strings.Join(names, ","))
}

func (r *Resolver) dmMatch(table, column string) bool {
	return r.dm != nil && r.dm.HasColumn(table, column)
}

func toModelRefs(refs []colref.Ref) []model.ColumnRef {
	out := make([]model.ColumnRef, 0, len(refs))
	for _, ref := range refs {
		out = append(out, model.ColumnRef{Alias: ref.Table, Column: ref.Column})
	}
	return out
}
