// Package sqlparse implements a recursive-descent parser for the subset
// of Oracle SQL the column-lineage resolver needs: SELECT statements with
// WITH/CTE, set operations, joins, UNPIVOT, and the scalar expression
// grammar (CASE, CAST, EXISTS, subqueries, BETWEEN/LIKE/IN/IS NULL).
//
// # Grammar Overview
//
//	statement     → [WITH cte_list] select_body
//	select_body   → select_core ((UNION [ALL]|INTERSECT|MINUS) select_body)*
//	select_core   → SELECT [DISTINCT] select_list [FROM from_clause]
//	                [WHERE expr] [START WITH expr] [CONNECT BY expr]
//	                [GROUP BY expr_list] [HAVING expr] [ORDER BY order_list]
//
// Each grammar section lives in its own file: parser_stmt.go (statement,
// WITH, SELECT body/list, ORDER BY), parser_from.go (FROM, JOIN, UNPIVOT),
// parser_expr.go (operator precedence), parser_primary.go (literals,
// column refs, function calls), parser_special.go (CASE, CAST, EXISTS,
// parenthesized/subquery expressions).
package sqlparse

import (
	"fmt"

	"github.com/oracle-t2t/lineage/internal/sqlast"
	"github.com/oracle-t2t/lineage/internal/sqltoken"
)

// Parser parses normalized Oracle SQL into a sqlast.SelectStmt.
type Parser struct {
	lexer  *sqltoken.Lexer
	token  sqltoken.Token
	peek   sqltoken.Token
	peek2  sqltoken.Token
	errors []error
}

// NewParser creates a Parser over sql.
func NewParser(sql string) *Parser {
	p := &Parser{lexer: sqltoken.NewLexer(sql)}
	p.nextToken()
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses sql and returns the resulting statement.
func Parse(sql string) (*sqlast.SelectStmt, error) {
	p := NewParser(sql)
	stmt := p.parseStatement()
	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}
	return stmt, nil
}

func (p *Parser) nextToken() {
	p.token = p.peek
	p.peek = p.peek2
	p.peek2 = p.lexer.NextToken()
}

func (p *Parser) check(t sqltoken.Type) bool     { return p.token.Type == t }
func (p *Parser) checkPeek(t sqltoken.Type) bool  { return p.peek.Type == t }
func (p *Parser) checkPeek2(t sqltoken.Type) bool { return p.peek2.Type == t }

func (p *Parser) match(t sqltoken.Type) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	return false
}

func (p *Parser) expect(t sqltoken.Type) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	p.addError(fmt.Sprintf(errUnexpectedToken, p.token.Type, t))
	return false
}

func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, &ParseError{Pos: p.token.Pos, Message: msg})
}

// isClauseKeyword reports whether tok starts a new SELECT-core clause,
// used to decide whether a bare identifier is an alias or the next clause.
func (p *Parser) isClauseKeyword(tok sqltoken.Token) bool {
	switch tok.Type {
	case sqltoken.FROM, sqltoken.WHERE, sqltoken.GROUP, sqltoken.HAVING,
		sqltoken.ORDER, sqltoken.LIMIT, sqltoken.UNION, sqltoken.INTERSECT,
		sqltoken.MINUSSET, sqltoken.CONNECT, sqltoken.START:
		return true
	}
	return false
}

// isJoinKeyword reports whether tok is part of a JOIN clause, used to
// decide whether a bare identifier after a table ref is an alias.
func (p *Parser) isJoinKeyword(tok sqltoken.Token) bool {
	switch tok.Type {
	case sqltoken.JOIN, sqltoken.LEFT, sqltoken.RIGHT, sqltoken.INNER,
		sqltoken.OUTER, sqltoken.FULL, sqltoken.CROSS, sqltoken.ON,
		sqltoken.LATERAL, sqltoken.USING:
		return true
	}
	return false
}

func (p *Parser) pos() sqltoken.Position { return p.token.Pos }

func nodeInfo(start, end sqltoken.Position) sqlast.NodeInfo {
	return sqlast.NodeInfo{StartPos: start, EndPos: end}
}
