package sqlparse

import (
	"github.com/oracle-t2t/lineage/internal/sqlast"
	"github.com/oracle-t2t/lineage/internal/sqltoken"
)

func (p *Parser) parseCaseExpr() sqlast.Expr {
	start := p.pos()
	p.expect(sqltoken.CASE)
	c := &sqlast.CaseExpr{}

	if !p.check(sqltoken.WHEN) {
		c.Operand = p.parseExpression()
	}
	for p.match(sqltoken.WHEN) {
		wstart := p.pos()
		when := &sqlast.WhenClause{When: p.parseExpression()}
		p.expect(sqltoken.THEN)
		when.Then = p.parseExpression()
		when.NodeInfo = nodeInfo(wstart, p.pos())
		c.Whens = append(c.Whens, when)
	}
	if p.match(sqltoken.ELSE) {
		c.Else = p.parseExpression()
	}
	p.expect(sqltoken.END)
	c.NodeInfo = nodeInfo(start, p.pos())
	return c
}

func (p *Parser) parseCastExpr() sqlast.Expr {
	start := p.pos()
	p.expect(sqltoken.CAST)
	p.expect(sqltoken.LPAREN)
	c := &sqlast.CastExpr{Expr: p.parseExpression()}
	p.expect(sqltoken.AS)
	c.TypeName = p.parseTypeName()
	p.expect(sqltoken.RPAREN)
	c.NodeInfo = nodeInfo(start, p.pos())
	return c
}

func (p *Parser) parseTypeName() string {
	if !p.check(sqltoken.IDENT) {
		p.addError("expected type name")
		return ""
	}
	typeName := p.token.Literal
	p.nextToken()

	if p.match(sqltoken.LPAREN) {
		typeName += "("
		for {
			switch {
			case p.check(sqltoken.NUMBER), p.check(sqltoken.IDENT):
				typeName += p.token.Literal
				p.nextToken()
			}
			if !p.match(sqltoken.COMMA) {
				break
			}
			typeName += ","
		}
		p.expect(sqltoken.RPAREN)
		typeName += ")"
	}
	return typeName
}

func (p *Parser) parseParenExpr() sqlast.Expr {
	start := p.pos()
	p.expect(sqltoken.LPAREN)

	if p.check(sqltoken.SELECT) || p.check(sqltoken.WITH) {
		sub := &sqlast.SubqueryExpr{Select: p.parseStatement()}
		p.expect(sqltoken.RPAREN)
		sub.NodeInfo = nodeInfo(start, p.pos())
		return sub
	}

	expr := p.parseExpression()
	p.expect(sqltoken.RPAREN)
	return &sqlast.ParenExpr{Expr: expr, NodeInfo: nodeInfo(start, p.pos())}
}

func (p *Parser) parseExistsExpr(not bool, start sqltoken.Position) sqlast.Expr {
	p.nextToken() // consume EXISTS
	p.expect(sqltoken.LPAREN)
	e := &sqlast.ExistsExpr{Not: not, Select: p.parseStatement()}
	p.expect(sqltoken.RPAREN)
	e.NodeInfo = nodeInfo(start, p.pos())
	return e
}
