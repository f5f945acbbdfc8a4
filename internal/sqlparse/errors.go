package sqlparse

import (
	"fmt"

	"github.com/oracle-t2t/lineage/internal/sqltoken"
)

// ParseError reports a syntax error at a specific source position.
type ParseError struct {
	Pos     sqltoken.Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

const errUnexpectedToken = "unexpected token %s, expected %s"
