// Package normalize implements the SQL Normalizer: it turns raw Oracle T2T
// SQL text into text safe to hand to internal/sqlparse, by stripping
// comments (string-literal safe), substituting parameter placeholders with
// inert literals, and fixing a small set of vendor quirks.
package normalize

import (
	"regexp"
	"strings"
)

// Normalize runs the full normalization pipeline over raw SQL text:
// placeholder substitution, then comment stripping, then vendor-quirk
// fixes, then whitespace collapsing last.
func Normalize(sql string) string {
	sql = substitutePlaceholders(sql)
	sql = stripComments(sql)
	sql = fixVendorQuirks(sql)
	sql = collapseWhitespace(sql)
	return sql
}

// stripComments removes -- line comments and /* */ block comments with a
// single-pass state machine that never looks inside string literals, and
// never treats a comment delimiter found inside a string as real.
func stripComments(sql string) string {
	var b strings.Builder
	b.Grow(len(sql))

	const (
		stNormal = iota
		stString
		stLineComment
		stBlockComment
	)
	state := stNormal
	n := len(sql)

	for i := 0; i < n; i++ {
		ch := sql[i]
		switch state {
		case stNormal:
			switch {
			case ch == '\'':
				b.WriteByte(ch)
				state = stString
			case ch == '-' && i+1 < n && sql[i+1] == '-':
				state = stLineComment
				i++
			case ch == '/' && i+1 < n && sql[i+1] == '*':
				state = stBlockComment
				i++
			default:
				b.WriteByte(ch)
			}
		case stString:
			b.WriteByte(ch)
			if ch == '\'' {
				if i+1 < n && sql[i+1] == '\'' {
					// doubled '' escape: stay in string, consume both quotes.
					b.WriteByte(sql[i+1])
					i++
				} else {
					state = stNormal
				}
			}
		case stLineComment:
			if ch == '\n' {
				b.WriteByte(ch)
				state = stNormal
			}
		case stBlockComment:
			if ch == '*' && i+1 < n && sql[i+1] == '/' {
				state = stNormal
				i++
			}
		}
	}
	return b.String()
}

var (
	bracketMacroRe    = regexp.MustCompile(`\[([A-Za-z_][A-Za-z0-9_]*)\]`)
	quotedDollarInner = regexp.MustCompile(`^\$([A-Za-z_][A-Za-z0-9_]*)$`)
	bareDollarRe      = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
	dateHintPattern   = regexp.MustCompile(`(?i)date`)
	stringLitSpanRe   = regexp.MustCompile(`'([^']|'')*'`)
)

// substitutePlaceholders replaces the closed set of parameter token shapes
// with inert Oracle literals so the parser accepts them. Runs before
// comment stripping so stray "--"/"/*" inside placeholder syntax (rare,
// but seen in hand-edited scripts) doesn't confuse the comment scanner.
//
// String-literal spans are protected the same way internal/colref does it
// (locate '...' spans before running token regexes over the rest), since a
// literal can legitimately contain placeholder-shaped text — e.g.
// 'Contact $support for help' — that must pass through unchanged (§4.1).
// The one exception is a literal that is itself, in full, a quoted
// placeholder like '$AS_OF_DATE': that whole literal *is* the placeholder
// and is substituted.
func substitutePlaceholders(sql string) string {
	var b strings.Builder
	last := 0
	for _, loc := range stringLitSpanRe.FindAllStringIndex(sql, -1) {
		start, end := loc[0], loc[1]
		b.WriteString(substitutePlaceholdersOutsideLiterals(sql[last:start]))

		lit := sql[start:end]
		if m := quotedDollarInner.FindStringSubmatch(lit[1 : len(lit)-1]); m != nil {
			b.WriteString(placeholderLiteral(m[1]))
		} else {
			b.WriteString(lit)
		}
		last = end
	}
	b.WriteString(substitutePlaceholdersOutsideLiterals(sql[last:]))
	return b.String()
}

// substitutePlaceholdersOutsideLiterals runs the bare-dollar and
// bracket-macro substitutions over a span already known to contain no
// string literal.
func substitutePlaceholdersOutsideLiterals(sql string) string {
	sql = bareDollarRe.ReplaceAllStringFunc(sql, func(m string) string {
		name := bareDollarRe.FindStringSubmatch(m)[1]
		return placeholderLiteral(name)
	})
	sql = bracketMacroRe.ReplaceAllStringFunc(sql, func(m string) string {
		name := bracketMacroRe.FindStringSubmatch(m)[1]
		return "'PLACEHOLDER_" + strings.ToUpper(name) + "'"
	})
	return sql
}

func placeholderLiteral(name string) string {
	upper := strings.ToUpper(name)
	if dateHintPattern.MatchString(name) {
		return "DATE '1970-01-01'"
	}
	return "'PLACEHOLDER_" + upper + "'"
}

var (
	tildeConcatRe  = regexp.MustCompile(`\|\|\s*~\s*\|\|`)
	selfAliasRe    = regexp.MustCompile(`(?i)\b([A-Za-z_][A-Za-z0-9_]*)\s+AS\s+([A-Za-z_][A-Za-z0-9_]*)\b`)
	ansiColorRe    = regexp.MustCompile(`\x1b\[[0-9;]*m`)
	unicodeSpaceRe = regexp.MustCompile(`[\x{00A0}\x{2000}-\x{200B}\x{202F}\x{205F}\x{3000}]`)
)

// fixVendorQuirks applies the small, closed set of Oracle-script fixes
// the teacher's normalizer equivalent needs: the bare-tilde concat quirk,
// self-alias collapse, backslash-quote escaping, and stray control bytes.
func fixVendorQuirks(sql string) string {
	sql = tildeConcatRe.ReplaceAllString(sql, "|| '~' ||")
	sql = selfAliasRe.ReplaceAllStringFunc(sql, func(m string) string {
		parts := selfAliasRe.FindStringSubmatch(m)
		if strings.EqualFold(parts[1], parts[2]) {
			return parts[1]
		}
		return m
	})
	sql = strings.ReplaceAll(sql, `\'`, "''")
	sql = ansiColorRe.ReplaceAllString(sql, "")
	sql = unicodeSpaceRe.ReplaceAllString(sql, " ")
	return sql
}

var whitespaceRunRe = regexp.MustCompile(`[ \t]+`)

// collapseWhitespace normalizes runs of spaces/tabs to a single space,
// leaving newlines alone so line-oriented diagnostics stay useful.
func collapseWhitespace(sql string) string {
	lines := strings.Split(sql, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(whitespaceRunRe.ReplaceAllString(line, " "), " \t")
	}
	return strings.Join(lines, "\n")
}
