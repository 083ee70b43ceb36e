package statement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIfElifElseSharesOneStatement(t *testing.T) {
	stmts, err := Parse([]string{
		"if x > 0",
		"    y = 1",
		"elif x < 0",
		"    y = -1",
		"else",
		"    y = 0",
	})
	require.NoError(t, err)
	require.Len(t, stmts, 1)

	ifStmt := stmts[0]
	require.Len(t, ifStmt.Clauses, 3)
	assert.Equal(t, "if", ifStmt.Clauses[0].Keyword)
	assert.Equal(t, "x > 0", ifStmt.Clauses[0].Header)
	require.Len(t, ifStmt.Clauses[0].Body, 1)
	assert.Equal(t, "y = 1", ifStmt.Clauses[0].Body[0].Clauses[0].Header)

	assert.Equal(t, "elif", ifStmt.Clauses[1].Keyword)
	assert.Equal(t, "x < 0", ifStmt.Clauses[1].Header)
	require.Len(t, ifStmt.Clauses[1].Body, 1)

	assert.Equal(t, "else", ifStmt.Clauses[2].Keyword)
	require.Len(t, ifStmt.Clauses[2].Body, 1)
	assert.Equal(t, "y = 0", ifStmt.Clauses[2].Body[0].Clauses[0].Header)
}

func TestParseAuxKeywordWithNoPrecedingStatementErrors(t *testing.T) {
	_, err := Parse([]string{"else", "    y = 0"})
	assert.Error(t, err)
}

func TestParseInconsistentIndentationErrors(t *testing.T) {
	_, err := Parse([]string{
		"if x > 0",
		"    y = 1",
		"      z = 2",
	})
	assert.Error(t, err)
}

func TestParseThenChainsSameLevelStatement(t *testing.T) {
	stmts, err := Parse([]string{"if x then y = 1"})
	require.NoError(t, err)
	require.Len(t, stmts, 1)

	head := stmts[0]
	assert.Equal(t, "if", head.Keyword())
	assert.Equal(t, "x", head.Clauses[0].Header)
	require.NotNil(t, head.Chained)
	assert.Equal(t, "", head.Chained.Keyword())
	assert.Equal(t, "y = 1", head.Chained.Clauses[0].Header)
}

func TestParseSemicolonSplitsBareStatementsOnOneLine(t *testing.T) {
	stmts, err := Parse([]string{"x = 1; y = 2"})
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Equal(t, "x = 1", stmts[0].Clauses[0].Header)
	require.NotNil(t, stmts[0].Chained)
	assert.Equal(t, "y = 2", stmts[0].Chained.Clauses[0].Header)
}

func TestParseLetIsDeclarativeWithNoBody(t *testing.T) {
	stmts, err := Parse([]string{"let x = 5"})
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Equal(t, "let", stmts[0].Keyword())
	assert.True(t, stmts[0].IsDeclarative())
	assert.Empty(t, stmts[0].Clauses[0].Body)
}

func TestParseNestedBlocks(t *testing.T) {
	stmts, err := Parse([]string{
		"for i in range",
		"    if i > 0",
		"        x = i",
	})
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	forStmt := stmts[0]
	require.Len(t, forStmt.Clauses[0].Body, 1)
	ifStmt := forStmt.Clauses[0].Body[0]
	assert.Equal(t, "if", ifStmt.Keyword())
	require.Len(t, ifStmt.Clauses[0].Body, 1)
	assert.Equal(t, "x = i", ifStmt.Clauses[0].Body[0].Clauses[0].Header)
}
