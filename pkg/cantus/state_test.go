package cantus_test

import (
	"context"
	"testing"
	"time"

	"github.com/cantus-lang/cantus/pkg/cantus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalRunsProgramAndReturnsLastAnswer(t *testing.T) {
	state := cantus.NewState()
	result, err := state.Eval("let x = 2 + 3\nx * 4")
	require.NoError(t, err)
	assert.Equal(t, "20", result.String())
}

func TestEvalHonorsTopLevelReturn(t *testing.T) {
	state := cantus.NewState()
	result, err := state.Eval("let x = 41\nreturn x + 1")
	require.NoError(t, err)
	assert.Equal(t, "42", result.String())
}

func TestEvalExprSkipsAnswerRing(t *testing.T) {
	state := cantus.NewState()
	result, err := state.EvalExpr("3 + 4")
	require.NoError(t, err)
	assert.Equal(t, "7", result.String())
}

func TestSetVariableIsVisibleToEval(t *testing.T) {
	state := cantus.NewState()
	state.SetVariable("name", cantus.String("World"))
	result, err := state.Eval(`"Hello, " + name`)
	require.NoError(t, err)
	assert.Equal(t, "Hello, World", result.String())
}

func TestSignificantModeTracksAddition(t *testing.T) {
	state := cantus.NewState(cantus.WithConfig(cantus.Config{SignificantMode: true}))
	result, err := state.Eval("1.20 + 0.034")
	require.NoError(t, err)
	assert.Equal(t, "1.23", result.String())
}

func TestGetVariableAfterLet(t *testing.T) {
	state := cantus.NewState()
	_, err := state.Eval("let total = 9")
	require.NoError(t, err)
	v, ok := state.GetVariable("total")
	require.True(t, ok)
	assert.Equal(t, "9", v.String())
}

func TestGetVariableReportsMissingBinding(t *testing.T) {
	state := cantus.NewState()
	_, ok := state.GetVariable("nope")
	assert.False(t, ok)
}

func TestClearVariablesRemovesBindingButKeepsFunctions(t *testing.T) {
	state := cantus.NewState()
	require.NoError(t, state.Eval1("function add(a, b)\n    return a + b"))
	state.SetVariable("x", cantus.Int(5))

	state.ClearVariables()

	_, ok := state.GetVariable("x")
	assert.False(t, ok)
	result, err := state.Eval("add(2, 3)")
	require.NoError(t, err)
	assert.Equal(t, "5", result.String())
}

func TestClearEverythingRemovesFunctionsToo(t *testing.T) {
	state := cantus.NewState()
	require.NoError(t, state.Eval1("function add(a, b)\n    return a + b"))

	state.ClearEverything()

	_, err := state.Eval("add(2, 3)")
	assert.Error(t, err)
}

func TestRegisterInstallsGoBackedBuiltin(t *testing.T) {
	state := cantus.NewState()
	state.Register("double", 1, 1, func(args []cantus.Value) (cantus.Value, error) {
		n, ok := cantus.AsNumber(args[0])
		if !ok {
			return nil, cantus.TypeError("double expects a Number")
		}
		v, _ := n.AsInt()
		return cantus.Int(v * 2), nil
	})
	result, err := state.Eval("double(21)")
	require.NoError(t, err)
	assert.Equal(t, "42", result.String())
}

func TestDegreesAngleModeConvertsSinInput(t *testing.T) {
	state := cantus.NewState(cantus.WithConfig(cantus.Config{AngleMode: cantus.Degrees}))
	result, err := state.Eval("sin(90)")
	require.NoError(t, err)
	assert.Equal(t, "1", result.String())
}

type capturingSink struct {
	cantus.NopEventSink
	results chan struct {
		value cantus.Value
		err   error
	}
}

func newCapturingSink() *capturingSink {
	return &capturingSink{results: make(chan struct {
		value cantus.Value
		err   error
	}, 4)}
}

func (s *capturingSink) EvalComplete(id string, result cantus.Value, err error) {
	s.results <- struct {
		value cantus.Value
		err   error
	}{result, err}
}

func TestEvalAsyncReportsCompletionThroughEventSink(t *testing.T) {
	sink := newCapturingSink()
	state := cantus.NewState(cantus.WithEventSink(sink))

	state.EvalAsync(context.Background(), "let x = 10\nx * 2")

	select {
	case r := <-sink.results:
		require.NoError(t, r.err)
		assert.Equal(t, "20", r.value.String())
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for EvalComplete")
	}
}

func TestStopAllCancelsWorkerBetweenStatements(t *testing.T) {
	sink := newCapturingSink()
	state := cantus.NewState(cantus.WithEventSink(sink))
	state.Register("pause", 0, 0, func(args []cantus.Value) (cantus.Value, error) {
		time.Sleep(50 * time.Millisecond)
		return cantus.Nil, nil
	})

	state.EvalAsync(context.Background(), "pause()\npause()\n1")
	time.Sleep(10 * time.Millisecond)
	state.StopAll("")

	select {
	case r := <-sink.results:
		require.Error(t, r.err)
		assert.Contains(t, r.err.Error(), "cancelled")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for EvalComplete")
	}
}

func TestSubEvaluatorInheritsParentButIsolatesOwnWrites(t *testing.T) {
	state := cantus.NewState()
	require.NoError(t, state.Eval1("function triple(a)\n    return a * 3"))
	state.SetVariable("shared", cantus.Int(1))

	child := state.SubEvaluator()

	result, err := child.Eval("triple(4)")
	require.NoError(t, err)
	assert.Equal(t, "12", result.String())

	v, ok := child.GetVariable("shared")
	require.True(t, ok)
	assert.Equal(t, "1", v.String())

	_, err = child.Eval("let local = 99")
	require.NoError(t, err)
	_, ok = state.GetVariable("local")
	assert.False(t, ok)
}

func TestDeepCopyIsolatesVariableMutation(t *testing.T) {
	state := cantus.NewState()
	state.SetVariable("count", cantus.Int(1))

	clone := state.DeepCopy()
	clone.SetVariable("count", cantus.Int(99))

	original, ok := state.GetVariable("count")
	require.True(t, ok)
	assert.Equal(t, "1", original.String())

	copied, ok := clone.GetVariable("count")
	require.True(t, ok)
	assert.Equal(t, "99", copied.String())
}
