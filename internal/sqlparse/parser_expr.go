package sqlparse

// Operator precedence, lowest to highest:
//
//  1. OR
//  2. AND
//  3. NOT
//  4. comparisons: =, !=, <>, <, >, <=, >=, IS [NOT] NULL, [NOT] IN,
//     [NOT] BETWEEN, [NOT] LIKE
//  5. addition: +, -, ||
//  6. multiplication: *, /, %
//  7. unary: -, +
//  8. primary

import (
	"github.com/oracle-t2t/lineage/internal/sqlast"
	"github.com/oracle-t2t/lineage/internal/sqltoken"
)

func (p *Parser) parseExpression() sqlast.Expr {
	return p.parseOrExpr()
}

func (p *Parser) parseOrExpr() sqlast.Expr {
	start := p.pos()
	left := p.parseAndExpr()
	for p.match(sqltoken.OR) {
		right := p.parseAndExpr()
		left = &sqlast.BinaryExpr{Left: left, Op: "OR", Right: right, NodeInfo: nodeInfo(start, p.pos())}
	}
	return left
}

func (p *Parser) parseAndExpr() sqlast.Expr {
	start := p.pos()
	left := p.parseNotExpr()
	for p.match(sqltoken.AND) {
		right := p.parseNotExpr()
		left = &sqlast.BinaryExpr{Left: left, Op: "AND", Right: right, NodeInfo: nodeInfo(start, p.pos())}
	}
	return left
}

func (p *Parser) parseNotExpr() sqlast.Expr {
	start := p.pos()
	if p.match(sqltoken.NOT) {
		expr := p.parseNotExpr()
		return &sqlast.UnaryExpr{Op: "NOT", Expr: expr, NodeInfo: nodeInfo(start, p.pos())}
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() sqlast.Expr {
	start := p.pos()
	left := p.parseAddition()

	not := false
	if p.check(sqltoken.NOT) && (p.checkPeek(sqltoken.IN) || p.checkPeek(sqltoken.BETWEEN) || p.checkPeek(sqltoken.LIKE)) {
		p.nextToken()
		not = true
	}

	switch {
	case p.match(sqltoken.IN):
		return p.parseInExpr(left, not, start)
	case p.match(sqltoken.BETWEEN):
		return p.parseBetweenExpr(left, not, start)
	case p.match(sqltoken.LIKE):
		return p.parseLikeExpr(left, not, start)
	}

	if p.match(sqltoken.IS) {
		isNot := p.match(sqltoken.NOT)
		if p.match(sqltoken.NULL) {
			return &sqlast.IsNullExpr{Expr: left, Not: isNot, NodeInfo: nodeInfo(start, p.pos())}
		}
		p.addError("expected NULL after IS")
	}

	switch p.token.Type {
	case sqltoken.EQ:
		p.nextToken()
		return &sqlast.BinaryExpr{Left: left, Op: "=", Right: p.parseAddition(), NodeInfo: nodeInfo(start, p.pos())}
	case sqltoken.NE:
		p.nextToken()
		return &sqlast.BinaryExpr{Left: left, Op: "!=", Right: p.parseAddition(), NodeInfo: nodeInfo(start, p.pos())}
	case sqltoken.LT:
		p.nextToken()
		return &sqlast.BinaryExpr{Left: left, Op: "<", Right: p.parseAddition(), NodeInfo: nodeInfo(start, p.pos())}
	case sqltoken.GT:
		p.nextToken()
		return &sqlast.BinaryExpr{Left: left, Op: ">", Right: p.parseAddition(), NodeInfo: nodeInfo(start, p.pos())}
	case sqltoken.LE:
		p.nextToken()
		return &sqlast.BinaryExpr{Left: left, Op: "<=", Right: p.parseAddition(), NodeInfo: nodeInfo(start, p.pos())}
	case sqltoken.GE:
		p.nextToken()
		return &sqlast.BinaryExpr{Left: left, Op: ">=", Right: p.parseAddition(), NodeInfo: nodeInfo(start, p.pos())}
	}
	return left
}

func (p *Parser) parseInExpr(left sqlast.Expr, not bool, start sqltoken.Position) sqlast.Expr {
	p.expect(sqltoken.LPAREN)
	in := &sqlast.InExpr{Expr: left, Not: not}
	if p.check(sqltoken.SELECT) || p.check(sqltoken.WITH) {
		in.Query = p.parseStatement()
	} else {
		in.Values = p.parseExpressionList()
	}
	p.expect(sqltoken.RPAREN)
	in.NodeInfo = nodeInfo(start, p.pos())
	return in
}

func (p *Parser) parseBetweenExpr(left sqlast.Expr, not bool, start sqltoken.Position) sqlast.Expr {
	b := &sqlast.BetweenExpr{Expr: left, Not: not}
	b.Low = p.parseAddition()
	p.expect(sqltoken.AND)
	b.High = p.parseAddition()
	b.NodeInfo = nodeInfo(start, p.pos())
	return b
}

func (p *Parser) parseLikeExpr(left sqlast.Expr, not bool, start sqltoken.Position) sqlast.Expr {
	l := &sqlast.LikeExpr{Expr: left, Not: not, Pattern: p.parseAddition()}
	l.NodeInfo = nodeInfo(start, p.pos())
	return l
}

func (p *Parser) parseAddition() sqlast.Expr {
	start := p.pos()
	left := p.parseMultiplication()
	for {
		switch p.token.Type {
		case sqltoken.PLUS:
			p.nextToken()
			left = &sqlast.BinaryExpr{Left: left, Op: "+", Right: p.parseMultiplication(), NodeInfo: nodeInfo(start, p.pos())}
		case sqltoken.MINUS:
			p.nextToken()
			left = &sqlast.BinaryExpr{Left: left, Op: "-", Right: p.parseMultiplication(), NodeInfo: nodeInfo(start, p.pos())}
		case sqltoken.DPIPE:
			p.nextToken()
			left = &sqlast.BinaryExpr{Left: left, Op: "||", Right: p.parseMultiplication(), NodeInfo: nodeInfo(start, p.pos())}
		default:
			return left
		}
	}
}

func (p *Parser) parseMultiplication() sqlast.Expr {
	start := p.pos()
	left := p.parseUnary()
	for {
		switch p.token.Type {
		case sqltoken.STAR:
			p.nextToken()
			left = &sqlast.BinaryExpr{Left: left, Op: "*", Right: p.parseUnary(), NodeInfo: nodeInfo(start, p.pos())}
		case sqltoken.SLASH:
			p.nextToken()
			left = &sqlast.BinaryExpr{Left: left, Op: "/", Right: p.parseUnary(), NodeInfo: nodeInfo(start, p.pos())}
		case sqltoken.PERCENT:
			p.nextToken()
			left = &sqlast.BinaryExpr{Left: left, Op: "%", Right: p.parseUnary(), NodeInfo: nodeInfo(start, p.pos())}
		default:
			return left
		}
	}
}

func (p *Parser) parseUnary() sqlast.Expr {
	start := p.pos()
	switch p.token.Type {
	case sqltoken.MINUS:
		p.nextToken()
		return &sqlast.UnaryExpr{Op: "-", Expr: p.parseUnary(), NodeInfo: nodeInfo(start, p.pos())}
	case sqltoken.PLUS:
		p.nextToken()
		return &sqlast.UnaryExpr{Op: "+", Expr: p.parseUnary(), NodeInfo: nodeInfo(start, p.pos())}
	}
	return p.parsePrimary()
}
