package sqlparse

import (
	"strings"

	"github.com/oracle-t2t/lineage/internal/sqlast"
	"github.com/oracle-t2t/lineage/internal/sqltoken"
)

func (p *Parser) parseFromClause() *sqlast.FromClause {
	start := p.pos()
	from := &sqlast.FromClause{}
	from.Source = p.parseTableRef()
	from.Source = p.parseUnpivotExtension(from.Source)

	for {
		join := p.parseJoin()
		if join == nil {
			break
		}
		from.Joins = append(from.Joins, join)
	}
	from.NodeInfo = nodeInfo(start, p.pos())
	return from
}

// parseUnpivotExtension wraps source in an UnpivotTable if an UNPIVOT
// clause follows, matching Oracle's
// table UNPIVOT (value FOR name IN (col1, col2, ...)) alias syntax.
func (p *Parser) parseUnpivotExtension(source sqlast.TableExpr) sqlast.TableExpr {
	if !p.match(sqltoken.UNPIVOT) {
		return source
	}
	u := &sqlast.UnpivotTable{Source: source}

	p.expect(sqltoken.LPAREN)
	if p.check(sqltoken.IDENT) {
		u.ValueColumn = p.token.Literal
		p.nextToken()
	}
	p.expect(sqltoken.FOR)
	if p.check(sqltoken.IDENT) {
		u.NameColumn = p.token.Literal
		p.nextToken()
	}
	p.expect(sqltoken.IN)
	p.expect(sqltoken.LPAREN)
	for {
		if p.check(sqltoken.IDENT) {
			u.InColumns = append(u.InColumns, p.token.Literal)
			p.nextToken()
		}
		if !p.match(sqltoken.COMMA) {
			break
		}
	}
	p.expect(sqltoken.RPAREN)
	p.expect(sqltoken.RPAREN)

	if p.match(sqltoken.AS) {
		if p.check(sqltoken.IDENT) {
			u.Alias = p.token.Literal
			p.nextToken()
		}
	} else if p.check(sqltoken.IDENT) {
		u.Alias = p.token.Literal
		p.nextToken()
	}
	return u
}

func (p *Parser) parseTableRef() sqlast.TableExpr {
	if p.match(sqltoken.LATERAL) {
		return p.parseLateralTable()
	}
	if p.check(sqltoken.LPAREN) {
		if p.checkPeek(sqltoken.SELECT) || p.checkPeek(sqltoken.WITH) {
			return p.parseDerivedTable()
		}
		return p.parseParenJoinTable()
	}
	return p.parseTableName()
}

// parseParenJoinTable parses a parenthesized join expression used directly
// as a join source, with no alias of its own: (a JOIN b ON a.id = b.id).
// Distinguished from a derived-table subquery by the token right after the
// opening paren: SELECT/WITH means subquery, anything else (a table name)
// means this.
func (p *Parser) parseParenJoinTable() *sqlast.ParenJoinTable {
	start := p.pos()
	p.expect(sqltoken.LPAREN)
	t := &sqlast.ParenJoinTable{Source: p.parseTableRef()}
	for {
		join := p.parseJoin()
		if join == nil {
			break
		}
		t.Joins = append(t.Joins, join)
	}
	p.expect(sqltoken.RPAREN)
	t.NodeInfo = nodeInfo(start, p.pos())
	return t
}

func (p *Parser) parseTableName() *sqlast.TableName {
	start := p.pos()
	t := &sqlast.TableName{}

	if !p.check(sqltoken.IDENT) {
		p.addError("expected table name")
		return t
	}
	parts := []string{p.token.Literal}
	p.nextToken()
	for p.match(sqltoken.DOT) {
		if p.check(sqltoken.IDENT) {
			parts = append(parts, p.token.Literal)
			p.nextToken()
		}
	}
	switch len(parts) {
	case 1:
		t.Name = parts[0]
	case 2:
		t.Schema = parts[0]
		t.Name = parts[1]
	default:
		t.Schema = parts[len(parts)-2]
		t.Name = parts[len(parts)-1]
	}

	if p.match(sqltoken.AT) {
		dblinkParts := []string{}
		if p.check(sqltoken.IDENT) {
			dblinkParts = append(dblinkParts, p.token.Literal)
			p.nextToken()
		}
		for p.match(sqltoken.DOT) {
			if p.check(sqltoken.IDENT) {
				dblinkParts = append(dblinkParts, p.token.Literal)
				p.nextToken()
			}
		}
		t.DBLink = strings.Join(dblinkParts, ".")
	}

	if p.match(sqltoken.AS) {
		if p.check(sqltoken.IDENT) {
			t.Alias = p.token.Literal
			p.nextToken()
		}
	} else if p.check(sqltoken.IDENT) && !p.isJoinKeyword(p.token) && !p.isClauseKeyword(p.token) {
		t.Alias = p.token.Literal
		p.nextToken()
	}
	t.NodeInfo = nodeInfo(start, p.pos())
	return t
}

func (p *Parser) parseDerivedTable() *sqlast.DerivedTable {
	start := p.pos()
	p.expect(sqltoken.LPAREN)
	d := &sqlast.DerivedTable{Select: p.parseStatement()}
	p.expect(sqltoken.RPAREN)

	if p.match(sqltoken.AS) {
		if p.check(sqltoken.IDENT) {
			d.Alias = p.token.Literal
			p.nextToken()
		}
	} else if p.check(sqltoken.IDENT) {
		d.Alias = p.token.Literal
		p.nextToken()
	}
	d.NodeInfo = nodeInfo(start, p.pos())
	return d
}

func (p *Parser) parseLateralTable() *sqlast.LateralTable {
	start := p.pos()
	p.expect(sqltoken.LPAREN)
	l := &sqlast.LateralTable{Select: p.parseStatement()}
	p.expect(sqltoken.RPAREN)

	if p.match(sqltoken.AS) {
		if p.check(sqltoken.IDENT) {
			l.Alias = p.token.Literal
			p.nextToken()
		}
	} else if p.check(sqltoken.IDENT) {
		l.Alias = p.token.Literal
		p.nextToken()
	}
	l.NodeInfo = nodeInfo(start, p.pos())
	return l
}

func (p *Parser) parseJoin() *sqlast.Join {
	start := p.pos()
	j := &sqlast.Join{}

	if p.match(sqltoken.COMMA) {
		j.Type = sqlast.JoinComma
		j.Right = p.parseTableRef()
		j.NodeInfo = nodeInfo(start, p.pos())
		return j
	}

	switch {
	case p.match(sqltoken.INNER):
		j.Type = sqlast.JoinInner
	case p.match(sqltoken.LEFT):
		j.Type = sqlast.JoinLeft
		p.match(sqltoken.OUTER)
	case p.match(sqltoken.RIGHT):
		j.Type = sqlast.JoinRight
		p.match(sqltoken.OUTER)
	case p.match(sqltoken.FULL):
		j.Type = sqlast.JoinFull
		p.match(sqltoken.OUTER)
	case p.match(sqltoken.CROSS):
		j.Type = sqlast.JoinCross
	case p.check(sqltoken.JOIN):
		j.Type = sqlast.JoinInner
	default:
		return nil
	}

	if !p.expect(sqltoken.JOIN) {
		return nil
	}
	j.Right = p.parseTableRef()

	switch {
	case p.match(sqltoken.ON):
		j.Condition = p.parseExpression()
	case p.match(sqltoken.USING):
		j.Using = p.parseUsingColumns()
	}
	j.NodeInfo = nodeInfo(start, p.pos())
	return j
}

func (p *Parser) parseUsingColumns() []string {
	p.expect(sqltoken.LPAREN)
	var cols []string
	for {
		if !p.check(sqltoken.IDENT) {
			p.addError("expected column name in USING clause")
			break
		}
		cols = append(cols, p.token.Literal)
		p.nextToken()
		if !p.match(sqltoken.COMMA) {
			break
		}
	}
	p.expect(sqltoken.RPAREN)
	return cols
}
