package statement

import (
	"testing"

	"github.com/cantus-lang/cantus/internal/bignum"
	"github.com/cantus-lang/cantus/internal/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedDispatcher returns one queued Result per call, in order, and
// records every Statement it was asked to execute.
type scriptedDispatcher struct {
	results []Result
	calls   []*Statement
}

func (d *scriptedDispatcher) Execute(_ *Engine, stmt *Statement, _ string, _ bool) (Result, error) {
	d.calls = append(d.calls, stmt)
	i := len(d.calls) - 1
	if i >= len(d.results) {
		return Result{Code: Resume}, nil
	}
	return d.results[i], nil
}

func bareStmt(header string) *Statement {
	return &Statement{Clauses: []*Clause{{Header: header}}}
}

func TestEngineRunStopsOnNonResume(t *testing.T) {
	d := &scriptedDispatcher{results: []Result{
		Resumed(object.NewNumber(bignum.NewFromInt(1))),
		{Code: Break},
		Resumed(object.NewNumber(bignum.NewFromInt(3))),
	}}
	e := NewEngine(d)

	res, err := e.Run([]*Statement{bareStmt("a"), bareStmt("b"), bareStmt("c")}, "root", false)
	require.NoError(t, err)
	assert.Equal(t, Break, res.Code)
	assert.Len(t, d.calls, 2)
}

func TestEngineRunPushesBareStatementValuesToAnswerRing(t *testing.T) {
	d := &scriptedDispatcher{results: []Result{
		Resumed(object.NewNumber(bignum.NewFromInt(1))),
		Resumed(object.NewNumber(bignum.NewFromInt(2))),
	}}
	e := NewEngine(d)

	_, err := e.Run([]*Statement{bareStmt("a"), bareStmt("b")}, "root", false)
	require.NoError(t, err)

	all := e.Answers.All()
	require.Len(t, all, 2)
	assert.Equal(t, "2", all[0].String())
	assert.Equal(t, "1", all[1].String())
}

func TestEngineRunSkipsUndefinedAnswers(t *testing.T) {
	d := &scriptedDispatcher{results: []Result{
		Resumed(&object.Identifier{Name: "x"}),
	}}
	e := NewEngine(d)

	_, err := e.Run([]*Statement{bareStmt("x")}, "root", false)
	require.NoError(t, err)
	assert.Empty(t, e.Answers.All())
}

func TestEngineRunRejectsNonDeclarativeInDeclarativeOnlyMode(t *testing.T) {
	d := &scriptedDispatcher{}
	e := NewEngine(d)

	stmts, err := Parse([]string{"x = 1"})
	require.NoError(t, err)

	_, err = e.Run(stmts, "root", true)
	assert.Error(t, err)
}

func TestEngineRunAllowsDeclarativeInDeclarativeOnlyMode(t *testing.T) {
	d := &scriptedDispatcher{results: []Result{{Code: Resume}}}
	e := NewEngine(d)

	stmts, err := Parse([]string{"let x = 1"})
	require.NoError(t, err)

	res, err := e.Run(stmts, "root", true)
	require.NoError(t, err)
	assert.Equal(t, Resume, res.Code)
}

func TestRunProgramRejectsTopLevelBreak(t *testing.T) {
	d := &scriptedDispatcher{results: []Result{{Code: Break}}}
	e := NewEngine(d)

	_, err := e.RunProgram([]*Statement{bareStmt("x")}, "root")
	assert.Error(t, err)
}

func TestRunProgramAllowsTopLevelReturn(t *testing.T) {
	d := &scriptedDispatcher{results: []Result{{Code: Return, Value: object.NewNumber(bignum.NewFromInt(7))}}}
	e := NewEngine(d)

	res, err := e.RunProgram([]*Statement{bareStmt("x")}, "root")
	require.NoError(t, err)
	assert.Equal(t, Return, res.Code)
	assert.Equal(t, "7", res.Value.String())
}

func TestAnswerRingRespectsCap(t *testing.T) {
	r := NewAnswerRing(2)
	r.Push(object.NewNumber(bignum.NewFromInt(1)))
	r.Push(object.NewNumber(bignum.NewFromInt(2)))
	r.Push(object.NewNumber(bignum.NewFromInt(3)))
	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, "3", all[0].String())
	assert.Equal(t, "2", all[1].String())
}
