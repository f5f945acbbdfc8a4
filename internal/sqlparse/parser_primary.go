package sqlparse

import (
	"strings"

	"github.com/oracle-t2t/lineage/internal/sqlast"
	"github.com/oracle-t2t/lineage/internal/sqltoken"
)

func (p *Parser) parsePrimary() sqlast.Expr {
	start := p.pos()
	switch p.token.Type {
	case sqltoken.NUMBER:
		lit := &sqlast.Literal{Type: sqlast.LiteralNumber, Value: p.token.Literal}
		p.nextToken()
		lit.NodeInfo = nodeInfo(start, p.pos())
		return lit

	case sqltoken.STRING:
		lit := &sqlast.Literal{Type: sqlast.LiteralString, Value: p.token.Literal}
		p.nextToken()
		lit.NodeInfo = nodeInfo(start, p.pos())
		return lit

	case sqltoken.NULL:
		p.nextToken()
		return &sqlast.Literal{Type: sqlast.LiteralNull, Value: "null", NodeInfo: nodeInfo(start, p.pos())}

	case sqltoken.CASE:
		return p.parseCaseExpr()

	case sqltoken.CAST:
		return p.parseCastExpr()

	case sqltoken.NOT:
		if p.checkPeek(sqltoken.EXISTS) {
			p.nextToken()
			return p.parseExistsExpr(true, start)
		}
		p.nextToken()
		return &sqlast.UnaryExpr{Op: "NOT", Expr: p.parsePrimary(), NodeInfo: nodeInfo(start, p.pos())}

	case sqltoken.EXISTS:
		return p.parseExistsExpr(false, start)

	case sqltoken.IDENT, sqltoken.ROWNUM:
		return p.parseIdentifierExpr(start)

	case sqltoken.LPAREN:
		return p.parseParenExpr()

	case sqltoken.STAR:
		p.nextToken()
		return &sqlast.StarExpr{NodeInfo: nodeInfo(start, p.pos())}

	default:
		p.addError("unexpected token in expression: " + p.token.Type.String())
		p.nextToken()
		return nil
	}
}

func (p *Parser) parseIdentifierExpr(start sqltoken.Position) sqlast.Expr {
	name := p.token.Literal
	p.nextToken()

	if p.check(sqltoken.LPAREN) {
		return p.parseFuncCall(name, start)
	}
	if p.check(sqltoken.DOT) {
		return p.parseQualifiedColumnRef(name, start)
	}
	return &sqlast.ColumnRef{Column: name, NodeInfo: nodeInfo(start, p.pos())}
}

func (p *Parser) parseQualifiedColumnRef(firstPart string, start sqltoken.Position) sqlast.Expr {
	parts := []string{firstPart}
	for p.match(sqltoken.DOT) {
		if p.check(sqltoken.STAR) {
			p.nextToken()
			return &sqlast.StarExpr{Table: firstPart, NodeInfo: nodeInfo(start, p.pos())}
		}
		if p.check(sqltoken.IDENT) {
			parts = append(parts, p.token.Literal)
			p.nextToken()
		}
	}

	ref := &sqlast.ColumnRef{}
	switch len(parts) {
	case 2:
		ref.Table = parts[0]
		ref.Column = parts[1]
	default:
		ref.Table = parts[len(parts)-2]
		ref.Column = parts[len(parts)-1]
	}
	ref.NodeInfo = nodeInfo(start, p.pos())
	return ref
}

func (p *Parser) parseFuncCall(name string, start sqltoken.Position) sqlast.Expr {
	fn := &sqlast.FuncCall{Name: strings.ToUpper(name)}
	p.expect(sqltoken.LPAREN)

	if p.check(sqltoken.STAR) {
		fn.Star = true
		p.nextToken()
	} else if !p.check(sqltoken.RPAREN) {
		if p.match(sqltoken.DISTINCT) {
			fn.Distinct = true
		}
		for {
			fn.Args = append(fn.Args, p.parseExpression())
			if !p.match(sqltoken.COMMA) {
				break
			}
		}
	}
	p.expect(sqltoken.RPAREN)

	if p.match(sqltoken.OVER) {
		fn.Window = p.parseWindowSpec()
	}
	fn.NodeInfo = nodeInfo(start, p.pos())
	return fn
}

func (p *Parser) parseWindowSpec() *sqlast.WindowSpec {
	start := p.pos()
	w := &sqlast.WindowSpec{}
	p.expect(sqltoken.LPAREN)

	if p.match(sqltoken.PARTITION) {
		p.expect(sqltoken.BY)
		w.PartitionBy = p.parseExpressionList()
	}
	if p.match(sqltoken.ORDER) {
		p.expect(sqltoken.BY)
		w.OrderBy = p.parseOrderByList()
	}
	p.expect(sqltoken.RPAREN)
	w.NodeInfo = nodeInfo(start, p.pos())
	return w
}
