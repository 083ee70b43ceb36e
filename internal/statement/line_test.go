package statement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeasureIndentSpacesAndTabs(t *testing.T) {
	indent, rest := measureIndent("  x")
	assert.Equal(t, 2, indent)
	assert.Equal(t, "x", rest)

	indent, rest = measureIndent("\tx")
	assert.Equal(t, 8, indent)
	assert.Equal(t, "x", rest)
}

func TestStripCommentOutsideString(t *testing.T) {
	assert.Equal(t, "x = 1", stripComment("x = 1 # trailing comment"))
}

func TestStripCommentInsideStringIsKept(t *testing.T) {
	in := `x = "a # b"`
	assert.Equal(t, in, stripComment(in))
}

func TestJoinLogicalLinesBackslashContinuation(t *testing.T) {
	lines, err := JoinLogicalLines([]string{"a = 1 + \\", "2"})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "a = 1 + 2", lines[0].Text)
}

func TestJoinLogicalLinesUnbalancedBacktick(t *testing.T) {
	lines, err := JoinLogicalLines([]string{"f = `x", "y`"})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0].Text, "`x")
	assert.Contains(t, lines[0].Text, "y`")
}

func TestJoinLogicalLinesTripleQuoteSpansLines(t *testing.T) {
	lines, err := JoinLogicalLines([]string{`s = """`, "multi # not a comment", `line"""`})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0].Text, "not a comment")
}

func TestSplitInlineRespectsStringsAndBrackets(t *testing.T) {
	parts := SplitInline(`f(1; 2); x = "a;b"`)
	require.Len(t, parts, 2)
	assert.Equal(t, "f(1; 2)", parts[0])
	assert.Equal(t, `x = "a;b"`, parts[1])
}

func TestSplitThenSplitsTopLevelOnly(t *testing.T) {
	header, chained, ok := SplitThen("x then y = 1")
	require.True(t, ok)
	assert.Equal(t, "x", header)
	assert.Equal(t, "y = 1", chained)
}

func TestSplitThenIgnoresThenInsideBrackets(t *testing.T) {
	_, _, ok := SplitThen(`f("a then b")`)
	assert.False(t, ok)
}
