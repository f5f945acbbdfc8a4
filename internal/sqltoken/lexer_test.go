package sqltoken_test

import (
	"testing"

	"github.com/oracle-t2t/lineage/internal/sqltoken"
	"github.com/stretchr/testify/require"
)

func TestTokenizeRecognizesKeywordsAndPunctuation(t *testing.T) {
	toks := sqltoken.Tokenize("SELECT a.id FROM t1 a WHERE a.id = 1")
	var kinds []sqltoken.Type
	for _, tok := range toks {
		kinds = append(kinds, tok.Type)
	}
	require.Contains(t, kinds, sqltoken.SELECT)
	require.Contains(t, kinds, sqltoken.FROM)
	require.Contains(t, kinds, sqltoken.DOT)
	require.Contains(t, kinds, sqltoken.EQ)
	require.Contains(t, kinds, sqltoken.NUMBER)
	require.Equal(t, sqltoken.EOF, kinds[len(kinds)-1])
}

func TestTokenizeHandlesStringLiteralWithEscapedQuote(t *testing.T) {
	toks := sqltoken.Tokenize("SELECT 'it''s' FROM dual")
	var found bool
	for _, tok := range toks {
		if tok.Type == sqltoken.STRING {
			require.Equal(t, "it's", tok.Literal)
			found = true
		}
	}
	require.True(t, found)
}

func TestTokenizeHandlesDoubleQuotedIdentifier(t *testing.T) {
	toks := sqltoken.Tokenize(`SELECT "Weird Col" FROM t1`)
	var found bool
	for _, tok := range toks {
		if tok.Type == sqltoken.IDENT && tok.Literal == "Weird Col" {
			found = true
		}
	}
	require.True(t, found)
}

func TestTokenizeDistinguishesNEAndDoublePipe(t *testing.T) {
	toks := sqltoken.Tokenize("a <> b || c != d")
	var kinds []sqltoken.Type
	for _, tok := range toks {
		kinds = append(kinds, tok.Type)
	}
	require.Contains(t, kinds, sqltoken.NE)
	require.Contains(t, kinds, sqltoken.DPIPE)
}

func TestTokenizeScientificNotationNumber(t *testing.T) {
	toks := sqltoken.Tokenize("SELECT 1.5e10 FROM dual")
	var found bool
	for _, tok := range toks {
		if tok.Type == sqltoken.NUMBER && tok.Literal == "1.5e10" {
			found = true
		}
	}
	require.True(t, found)
}
