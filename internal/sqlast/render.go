package sqlast

import "strings"

// Render renders expr back to normalized SQL text. It is not guaranteed
// to reproduce the original source byte-for-byte, but it is deterministic
// and preserves every identifier, literal, and operator the Column-Ref
// Extractor and Constant Recognition need to operate on.
func Render(expr Expr) string {
	var b strings.Builder
	render(&b, expr)
	return b.String()
}

func render(b *strings.Builder, expr Expr) {
	switch e := expr.(type) {
	case nil:
		return
	case *ColumnRef:
		if e.Table != "" {
			b.WriteString(e.Table)
			b.WriteByte('.')
		}
		b.WriteString(e.Column)
	case *Literal:
		switch e.Type {
		case LiteralString:
			b.WriteByte('\'')
			b.WriteString(strings.ReplaceAll(e.Value, "'", "''"))
			b.WriteByte('\'')
		default:
			b.WriteString(e.Value)
		}
	case *BinaryExpr:
		render(b, e.Left)
		b.WriteByte(' ')
		b.WriteString(e.Op)
		b.WriteByte(' ')
		render(b, e.Right)
	case *UnaryExpr:
		b.WriteString(e.Op)
		b.WriteByte(' ')
		render(b, e.Expr)
	case *FuncCall:
		b.WriteString(e.Name)
		b.WriteByte('(')
		if e.Star {
			b.WriteByte('*')
		} else {
			if e.Distinct {
				b.WriteString("DISTINCT ")
			}
			for i, a := range e.Args {
				if i > 0 {
					b.WriteString(", ")
				}
				render(b, a)
			}
		}
		b.WriteByte(')')
		if e.Window != nil {
			b.WriteString(" OVER (...)")
		}
	case *CaseExpr:
		b.WriteString("CASE ")
		if e.Operand != nil {
			render(b, e.Operand)
			b.WriteByte(' ')
		}
		for _, w := range e.Whens {
			b.WriteString("WHEN ")
			render(b, w.When)
			b.WriteString(" THEN ")
			render(b, w.Then)
			b.WriteByte(' ')
		}
		if e.Else != nil {
			b.WriteString("ELSE ")
			render(b, e.Else)
			b.WriteByte(' ')
		}
		b.WriteString("END")
	case *CastExpr:
		b.WriteString("CAST(")
		render(b, e.Expr)
		b.WriteString(" AS ")
		b.WriteString(e.TypeName)
		b.WriteByte(')')
	case *InExpr:
		render(b, e.Expr)
		if e.Not {
			b.WriteString(" NOT")
		}
		b.WriteString(" IN (")
		if e.Query != nil {
			b.WriteString("...")
		} else {
			for i, v := range e.Values {
				if i > 0 {
					b.WriteString(", ")
				}
				render(b, v)
			}
		}
		b.WriteByte(')')
	case *BetweenExpr:
		render(b, e.Expr)
		if e.Not {
			b.WriteString(" NOT")
		}
		b.WriteString(" BETWEEN ")
		render(b, e.Low)
		b.WriteString(" AND ")
		render(b, e.High)
	case *IsNullExpr:
		render(b, e.Expr)
		b.WriteString(" IS ")
		if e.Not {
			b.WriteString("NOT ")
		}
		b.WriteString("NULL")
	case *LikeExpr:
		render(b, e.Expr)
		if e.Not {
			b.WriteString(" NOT")
		}
		b.WriteString(" LIKE ")
		render(b, e.Pattern)
	case *ParenExpr:
		b.WriteByte('(')
		render(b, e.Expr)
		b.WriteByte(')')
	case *StarExpr:
		if e.Table != "" {
			b.WriteString(e.Table)
			b.WriteByte('.')
		}
		b.WriteByte('*')
	case *SubqueryExpr:
		b.WriteString("(...)")
	case *ExistsExpr:
		if e.Not {
			b.WriteString("NOT ")
		}
		b.WriteString("EXISTS (...)")
	}
}
