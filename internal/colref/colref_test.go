package colref_test

import (
	"testing"

	"github.com/oracle-t2t/lineage/internal/colref"
	"github.com/stretchr/testify/assert"
)

func TestExtractQualifiedAndUnqualified(t *testing.T) {
	refs := colref.Extract("A.COL1 + COL2")
	assert.Equal(t, []colref.Ref{
		{Table: "A", Column: "COL1"},
		{Column: "COL2"},
	}, refs)
}

func TestExtractSkipsFunctionNames(t *testing.T) {
	refs := colref.Extract("NVL(A.COL1, 0)")
	assert.Equal(t, []colref.Ref{{Table: "A", Column: "COL1"}}, refs)
}

func TestExtractSkipsKeywordsAndConstants(t *testing.T) {
	refs := colref.Extract("CASE WHEN A.COL1 IS NULL THEN SYSDATE ELSE A.COL2 END")
	assert.Equal(t, []colref.Ref{
		{Table: "A", Column: "COL1"},
		{Table: "A", Column: "COL2"},
	}, refs)
}

func TestExtractDeduplicates(t *testing.T) {
	refs := colref.Extract("A.COL1 || A.COL1")
	assert.Equal(t, []colref.Ref{{Table: "A", Column: "COL1"}}, refs)
}

func TestIsConstantRecognizesOracleLiterals(t *testing.T) {
	assert.True(t, colref.IsConstant("SYSDATE"))
	assert.True(t, colref.IsConstant("'literal text'"))
	assert.True(t, colref.IsConstant("-123.45"))
	assert.True(t, colref.IsConstant("DATE '2024-01-01'"))
	assert.True(t, colref.IsConstant(":bind_var"))
	assert.True(t, colref.IsConstant("UNPIVOT_VALUE(AMT)"))
	assert.False(t, colref.IsConstant("A.COL1"))
}
