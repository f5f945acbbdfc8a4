package normalize_test

import (
	"testing"

	"github.com/oracle-t2t/lineage/internal/normalize"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeStripsLineComment(t *testing.T) {
	sql := "SELECT a -- trailing comment\nFROM t"
	got := normalize.Normalize(sql)
	assert.NotContains(t, got, "trailing comment")
	assert.Contains(t, got, "SELECT a")
	assert.Contains(t, got, "FROM t")
}

func TestNormalizeStripsBlockComment(t *testing.T) {
	sql := "SELECT a /* block\ncomment */ , b FROM t"
	got := normalize.Normalize(sql)
	assert.NotContains(t, got, "block")
	assert.Contains(t, got, "b FROM t")
}

func TestNormalizeDoesNotCorruptStringContainingDashes(t *testing.T) {
	sql := "SELECT '----NOT FOUND' FROM dual"
	got := normalize.Normalize(sql)
	assert.Contains(t, got, "'----NOT FOUND'")
}

func TestNormalizeDoesNotStripCommentMarkerInsideString(t *testing.T) {
	sql := "SELECT '/* not a comment */' FROM dual"
	got := normalize.Normalize(sql)
	assert.Contains(t, got, "'/* not a comment */'")
}

func TestNormalizeBracketPlaceholder(t *testing.T) {
	sql := "SELECT * FROM t WHERE d = [RUN_DATE]"
	got := normalize.Normalize(sql)
	assert.Contains(t, got, "'PLACEHOLDER_RUN_DATE'")
}

func TestNormalizeDollarPlaceholderNonDate(t *testing.T) {
	sql := "SELECT * FROM t WHERE id = $USER_ID"
	got := normalize.Normalize(sql)
	assert.Contains(t, got, "'PLACEHOLDER_USER_ID'")
}

func TestNormalizeDollarPlaceholderDateVariant(t *testing.T) {
	sql := "SELECT * FROM t WHERE d BETWEEN $START_DATE AND $END_DATE"
	got := normalize.Normalize(sql)
	assert.Contains(t, got, "DATE '1970-01-01'")
}

func TestNormalizeQuotedDollarPlaceholderNotDoubleQuoted(t *testing.T) {
	sql := "SELECT * FROM t WHERE id = '$USER_ID'"
	got := normalize.Normalize(sql)
	assert.Contains(t, got, "'PLACEHOLDER_USER_ID'")
	assert.NotContains(t, got, "''PLACEHOLDER_USER_ID''")
}

func TestNormalizeDollarPlaceholderShapedSubstringInsideStringLiteralIsUntouched(t *testing.T) {
	sql := "SELECT 'Contact $support for help' FROM t"
	got := normalize.Normalize(sql)
	assert.Contains(t, got, "'Contact $support for help'")
}

func TestNormalizeBracketMacroShapedSubstringInsideStringLiteralIsUntouched(t *testing.T) {
	sql := "SELECT 'see [RUN_DATE] in docs' FROM t"
	got := normalize.Normalize(sql)
	assert.Contains(t, got, "'see [RUN_DATE] in docs'")
}

func TestNormalizeSelfAliasCollapse(t *testing.T) {
	sql := "SELECT col AS col FROM t"
	got := normalize.Normalize(sql)
	assert.NotContains(t, got, "AS col")
}

func TestNormalizeTildeConcat(t *testing.T) {
	sql := "SELECT a || ~ || b FROM t"
	got := normalize.Normalize(sql)
	assert.Contains(t, got, "|| '~' ||")
}
