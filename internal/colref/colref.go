// Package colref implements the Column-Ref Extractor (spec §4.2) and
// Constant Recognition (spec §4.3): string-level utilities that pull
// column-like tokens out of arbitrary expression text.
package colref

import (
	"regexp"
	"strings"
)

// Ref is one extracted candidate reference: Table is empty when the
// reference in source text was unqualified.
type Ref struct {
	Table  string
	Column string
}

// String renders the canonical upper-cased form used for map keys and
// tracing: "ALIAS.COLUMN" or "COLUMN".
func (r Ref) String() string {
	if r.Table == "" {
		return r.Column
	}
	return r.Table + "." + r.Column
}

var keywords = map[string]bool{
	"SELECT": true, "FROM": true, "WHERE": true, "AND": true, "OR": true,
	"NOT": true, "AS": true, "ON": true, "JOIN": true, "INNER": true,
	"LEFT": true, "RIGHT": true, "FULL": true, "OUTER": true, "CROSS": true,
	"GROUP": true, "BY": true, "HAVING": true, "ORDER": true, "UNION": true,
	"ALL": true, "INTERSECT": true, "MINUS": true, "DISTINCT": true,
	"CASE": true, "WHEN": true, "THEN": true, "ELSE": true, "END": true,
	"IN": true, "BETWEEN": true, "LIKE": true, "IS": true, "NULL": true,
	"EXISTS": true, "CAST": true, "WITH": true, "CONNECT": true,
	"START": true, "LEVEL": true, "PARTITION": true, "OVER": true,
	"ASC": true, "DESC": true, "LIMIT": true, "USING": true, "LATERAL": true,
	"UNPIVOT": true, "PIVOT": true, "FOR": true, "INTO": true,
}

// functions is the curated set of SQL/Oracle function names that look
// like bare identifiers followed by "(" and must never be mistaken for
// table aliases: aggregates, string/numeric/conversion/date/analytic,
// and Oracle-specific builtins.
var functions = map[string]bool{
	// aggregates
	"SUM": true, "COUNT": true, "AVG": true, "MIN": true, "MAX": true,
	"STDDEV": true, "VARIANCE": true, "LISTAGG": true,
	// string
	"SUBSTR": true, "SUBSTRB": true, "TRIM": true, "LTRIM": true, "RTRIM": true,
	"UPPER": true, "LOWER": true, "INITCAP": true, "REPLACE": true,
	"LPAD": true, "RPAD": true, "CONCAT": true, "LENGTH": true, "INSTR": true,
	"REGEXP_REPLACE": true, "REGEXP_SUBSTR": true, "REGEXP_LIKE": true,
	"REGEXP_INSTR": true, "REGEXP_COUNT": true,
	// numeric
	"ROUND": true, "TRUNC": true, "CEIL": true, "FLOOR": true, "ABS": true,
	"MOD": true, "POWER": true, "SQRT": true, "SIGN": true,
	// conversion
	"TO_DATE": true, "TO_CHAR": true, "TO_NUMBER": true, "TO_TIMESTAMP": true,
	"CAST": true, "CONVERT": true,
	// date
	"ADD_MONTHS": true, "MONTHS_BETWEEN": true, "LAST_DAY": true,
	"NEXT_DAY": true, "EXTRACT": true,
	// analytic/window
	"ROW_NUMBER": true, "RANK": true, "DENSE_RANK": true, "LEAD": true,
	"LAG": true, "NTILE": true, "FIRST_VALUE": true, "LAST_VALUE": true,
	// control/null-handling
	"NVL": true, "NVL2": true, "COALESCE": true, "DECODE": true, "NULLIF": true,
	"GREATEST": true, "LEAST": true,
	// Oracle-specific
	"SYS_GUID": true, "SYS_CONTEXT": true, "USERENV": true, "UNPIVOT_VALUE": true,
	"UNPIVOT_FOR": true,
}

var (
	stringLitRe = regexp.MustCompile(`'([^']|'')*'`)
	dotSpaceRe  = regexp.MustCompile(`\s*\.\s*`)
	tokenRe     = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_$#]*(\.[A-Za-z_][A-Za-z0-9_$#]*)?`)
)

// Extract returns the ordered, de-duplicated list of candidate column
// references in expr, filtering keywords, function names, placeholders,
// and constants (§4.3).
func Extract(expr string) []Ref {
	protected := stringLitRe.ReplaceAllString(expr, "''")
	protected = dotSpaceRe.ReplaceAllString(protected, ".")

	matches := tokenRe.FindAllStringIndex(protected, -1)
	seen := make(map[string]bool, len(matches))
	var refs []Ref

	for _, loc := range matches {
		tok := protected[loc[0]:loc[1]]
		// Skip tokens immediately followed by "(": they're function calls.
		rest := strings.TrimLeft(protected[loc[1]:], " \t\n")
		if strings.HasPrefix(rest, "(") {
			continue
		}
		upper := strings.ToUpper(tok)
		if keywords[upper] || functions[strings.ToUpper(beforeDot(tok))] {
			continue
		}
		if IsConstant(tok) {
			continue
		}

		var ref Ref
		if idx := strings.IndexByte(tok, '.'); idx >= 0 {
			ref = Ref{Table: strings.ToUpper(tok[:idx]), Column: strings.ToUpper(tok[idx+1:])}
		} else {
			ref = Ref{Column: strings.ToUpper(tok)}
		}
		key := ref.String()
		if !seen[key] {
			seen[key] = true
			refs = append(refs, ref)
		}
	}
	return refs
}

func beforeDot(tok string) string {
	if idx := strings.IndexByte(tok, '.'); idx >= 0 {
		return tok[:idx]
	}
	return tok
}

var (
	numericLitRe  = regexp.MustCompile(`^[+-]?\d+(\.\d+)?([eE][+-]?\d+)?$`)
	dateLitRe     = regexp.MustCompile(`(?i)^(DATE|TIMESTAMP|INTERVAL)\s*'`)
	bindSigilRe   = regexp.MustCompile(`^[:$][A-Za-z_][A-Za-z0-9_]*$`)
	unpivotFnRe   = regexp.MustCompile(`(?i)^UNPIVOT_(VALUE|FOR)\(`)
	sysContextRe  = regexp.MustCompile(`(?i)^(SYS_CONTEXT|USERENV)\(`)
	simpleConsts  = map[string]bool{
		"NULL": true, "SYSDATE": true, "SYSTIMESTAMP": true, "CURRENT_DATE": true,
		"CURRENT_TIMESTAMP": true, "ROWNUM": true, "ROWID": true, "LEVEL": true,
		"USER": true, "SYS_GUID()": true,
	}
)

// IsConstant reports whether s is a constant per spec §4.3: a literal,
// pseudo-column, bind variable, or one of the synthetic UNPIVOT markers.
func IsConstant(s string) bool {
	trimmed := strings.TrimSpace(s)
	upper := strings.ToUpper(trimmed)

	if simpleConsts[upper] {
		return true
	}
	if strings.HasPrefix(trimmed, "'") && strings.HasSuffix(trimmed, "'") && len(trimmed) >= 2 {
		return true
	}
	if strings.HasPrefix(trimmed, "N'") && strings.HasSuffix(trimmed, "'") {
		return true
	}
	if numericLitRe.MatchString(trimmed) {
		return true
	}
	if dateLitRe.MatchString(trimmed) {
		return true
	}
	if bindSigilRe.MatchString(trimmed) {
		return true
	}
	if unpivotFnRe.MatchString(trimmed) {
		return true
	}
	if sysContextRe.MatchString(trimmed) {
		return true
	}
	return false
}
