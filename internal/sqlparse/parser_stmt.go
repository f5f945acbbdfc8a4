package sqlparse

import (
	"github.com/oracle-t2t/lineage/internal/sqlast"
	"github.com/oracle-t2t/lineage/internal/sqltoken"
)

func (p *Parser) parseStatement() *sqlast.SelectStmt {
	start := p.pos()
	stmt := &sqlast.SelectStmt{}

	if p.check(sqltoken.WITH) {
		stmt.With = p.parseWithClause()
	}
	stmt.Body = p.parseSelectBody()
	stmt.NodeInfo = nodeInfo(start, p.pos())
	return stmt
}

func (p *Parser) parseWithClause() *sqlast.WithClause {
	start := p.pos()
	p.expect(sqltoken.WITH)
	with := &sqlast.WithClause{}

	for {
		cte := p.parseCTE()
		with.CTEs = append(with.CTEs, cte)
		if !p.match(sqltoken.COMMA) {
			break
		}
	}
	with.NodeInfo = nodeInfo(start, p.pos())
	return with
}

func (p *Parser) parseCTE() *sqlast.CTE {
	start := p.pos()
	cte := &sqlast.CTE{}

	if !p.check(sqltoken.IDENT) {
		p.addError("expected CTE name")
		return cte
	}
	cte.Name = p.token.Literal
	p.nextToken()

	if p.match(sqltoken.LPAREN) {
		for p.check(sqltoken.IDENT) {
			cte.Columns = append(cte.Columns, p.token.Literal)
			p.nextToken()
			if !p.match(sqltoken.COMMA) {
				break
			}
		}
		p.expect(sqltoken.RPAREN)
	}

	p.expect(sqltoken.AS)
	p.expect(sqltoken.LPAREN)
	cte.Select = p.parseStatement()
	p.expect(sqltoken.RPAREN)
	cte.NodeInfo = nodeInfo(start, p.pos())
	return cte
}

func (p *Parser) parseSelectBody() *sqlast.SelectBody {
	start := p.pos()
	core := p.parseSelectCore()
	body := &sqlast.SelectBody{Core: core}
	body.NodeInfo = nodeInfo(start, p.pos())

	if p.check(sqltoken.UNION) || p.check(sqltoken.INTERSECT) || p.check(sqltoken.MINUSSET) {
		var op sqlast.SetOpType
		switch p.token.Type {
		case sqltoken.UNION:
			p.nextToken()
			if p.match(sqltoken.DISTINCT) {
				op = sqlast.SetOpUnion
			} else {
				switch {
				case p.checkUnionAll():
					op = sqlast.SetOpUnionAll
				default:
					op = sqlast.SetOpUnion
				}
			}
		case sqltoken.INTERSECT:
			p.nextToken()
			op = sqlast.SetOpIntersect
		case sqltoken.MINUSSET:
			p.nextToken()
			op = sqlast.SetOpMinus
		}

		right := p.parseSelectBody()
		left := &sqlast.SelectBody{Core: core, NodeInfo: body.NodeInfo}
		combined := &sqlast.SelectBody{Left: left, Op: op, Right: right}
		combined.NodeInfo = nodeInfo(start, p.pos())
		return combined
	}

	return body
}

// checkUnionAll consumes a trailing ALL keyword spelled as an identifier
// ("all" is not reserved in this grammar's keyword set, so UNION ALL is
// recognized by literal match rather than a dedicated token).
func (p *Parser) checkUnionAll() bool {
	if p.check(sqltoken.IDENT) && (p.token.Literal == "all" || p.token.Literal == "ALL") {
		p.nextToken()
		return true
	}
	return false
}

func (p *Parser) parseSelectCore() *sqlast.SelectCore {
	start := p.pos()
	p.expect(sqltoken.SELECT)
	sc := &sqlast.SelectCore{}

	if p.match(sqltoken.DISTINCT) {
		sc.Distinct = true
	}

	sc.Columns = p.parseSelectList()

	if p.match(sqltoken.FROM) {
		sc.From = p.parseFromClause()
	}

	if p.match(sqltoken.WHERE) {
		sc.Where = p.parseExpression()
	}

	if p.match(sqltoken.START) {
		p.expect(sqltoken.WITH)
		sc.StartWith = p.parseExpression()
	}
	if p.match(sqltoken.CONNECT) {
		p.expect(sqltoken.BY)
		sc.ConnectBy = p.parseExpression()
	}

	if p.match(sqltoken.GROUP) {
		p.expect(sqltoken.BY)
		sc.GroupBy = p.parseExpressionList()
	}
	if p.match(sqltoken.HAVING) {
		sc.Having = p.parseExpression()
	}
	if p.match(sqltoken.ORDER) {
		p.expect(sqltoken.BY)
		sc.OrderBy = p.parseOrderByList()
	}

	sc.NodeInfo = nodeInfo(start, p.pos())
	return sc
}

func (p *Parser) parseSelectList() []*sqlast.SelectItem {
	var items []*sqlast.SelectItem
	for {
		items = append(items, p.parseSelectItem())
		if !p.match(sqltoken.COMMA) {
			break
		}
	}
	return items
}

func (p *Parser) parseSelectItem() *sqlast.SelectItem {
	start := p.pos()
	item := &sqlast.SelectItem{}

	if p.check(sqltoken.STAR) {
		item.Star = true
		p.nextToken()
		item.NodeInfo = nodeInfo(start, p.pos())
		return item
	}

	if p.check(sqltoken.IDENT) && p.checkPeek(sqltoken.DOT) && p.checkPeek2(sqltoken.STAR) {
		item.TableStar = p.token.Literal
		p.nextToken()
		p.nextToken()
		p.nextToken()
		item.NodeInfo = nodeInfo(start, p.pos())
		return item
	}

	item.Expr = p.parseExpression()

	if p.match(sqltoken.AS) {
		if p.check(sqltoken.IDENT) {
			item.Alias = p.token.Literal
			p.nextToken()
		}
	} else if p.check(sqltoken.IDENT) && !p.isClauseKeyword(p.token) {
		item.Alias = p.token.Literal
		p.nextToken()
	}

	item.NodeInfo = nodeInfo(start, p.pos())
	return item
}

func (p *Parser) parseOrderByList() []*sqlast.OrderByItem {
	var items []*sqlast.OrderByItem
	for {
		items = append(items, p.parseOrderByItem())
		if !p.match(sqltoken.COMMA) {
			break
		}
	}
	return items
}

func (p *Parser) parseOrderByItem() *sqlast.OrderByItem {
	start := p.pos()
	item := &sqlast.OrderByItem{Expr: p.parseExpression()}
	if p.match(sqltoken.ASC) {
		item.Desc = false
	} else if p.match(sqltoken.DESC) {
		item.Desc = true
	}
	item.NodeInfo = nodeInfo(start, p.pos())
	return item
}

func (p *Parser) parseExpressionList() []sqlast.Expr {
	var exprs []sqlast.Expr
	for {
		exprs = append(exprs, p.parseExpression())
		if !p.match(sqltoken.COMMA) {
			break
		}
	}
	return exprs
}
