package cantuserr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithLineOnlySetsOnce(t *testing.T) {
	e := New(EvaluatorError, "undefined: x")
	e = e.WithLine(5)
	again := e.WithLine(9)
	assert.Equal(t, 5, again.Line)
}

func TestWithTrailFrameAccumulates(t *testing.T) {
	e := New(EvaluatorError, "boom").WithLine(3)
	e = e.WithTrailFrame("f", "cantus.main", 3)
	e = e.WithTrailFrame("g", "cantus.main", 7)
	assert.Len(t, e.Trail, 2)
	assert.Contains(t, e.Trail[0], "in f (cantus.main), line 3")
	assert.Contains(t, e.Trail[1], "in g (cantus.main), line 7")
}

func TestErrorStringIncludesKindAndLine(t *testing.T) {
	e := New(MathError, "division by zero").WithLine(2)
	assert.Contains(t, e.Error(), "MathError")
	assert.Contains(t, e.Error(), "line 2")
}
