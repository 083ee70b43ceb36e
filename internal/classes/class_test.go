package classes

import (
	"testing"

	"github.com/cantus-lang/cantus/internal/object"
	"github.com/cantus-lang/cantus/internal/scope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserClassSynthesizesInitAndType(t *testing.T) {
	c := NewUserClass("Animal", nil, nil, nil, "root", "root.Animal")
	_, ok := c.Fields["init"]
	require.True(t, ok)
	typeField, ok := c.Fields["type"]
	require.True(t, ok)
	lam, ok := object.ResolveObj(typeField.Reference).(*object.Lambda)
	require.True(t, ok)
	assert.Equal(t, `"Animal"`, lam.Body)
}

func TestAllFieldsLeftmostBaseWinsOnConflict(t *testing.T) {
	base1 := NewUserClass("Base1", nil, nil, map[string]*scope.Variable{
		"sound": scope.NewVariable("sound", num(1), "root.Base1"),
	}, "root", "root.Base1")
	base2 := NewUserClass("Base2", nil, nil, map[string]*scope.Variable{
		"sound": scope.NewVariable("sound", num(2), "root.Base2"),
	}, "root", "root.Base2")
	derived := NewUserClass("Derived", nil, []*UserClass{base1, base2}, nil, "root", "root.Derived")

	all := derived.AllFields()
	assert.Equal(t, "1", all["sound"].Reference.GetValue().String())
}

func TestAllFieldsOwnFieldOverridesInherited(t *testing.T) {
	base := NewUserClass("Base", nil, nil, map[string]*scope.Variable{
		"sound": scope.NewVariable("sound", num(1), "root.Base"),
	}, "root", "root.Base")
	derived := NewUserClass("Derived", nil, []*UserClass{base}, map[string]*scope.Variable{
		"sound": scope.NewVariable("sound", num(9), "root.Derived"),
	}, "root", "root.Derived")

	all := derived.AllFields()
	assert.Equal(t, "9", all["sound"].Reference.GetValue().String())
}

func TestAllFieldsHandlesDiamondInheritanceWithoutDuplication(t *testing.T) {
	common := NewUserClass("Common", nil, nil, map[string]*scope.Variable{
		"x": scope.NewVariable("x", num(1), "root.Common"),
	}, "root", "root.Common")
	left := NewUserClass("Left", nil, []*UserClass{common}, nil, "root", "root.Left")
	right := NewUserClass("Right", nil, []*UserClass{common}, nil, "root", "root.Right")
	bottom := NewUserClass("Bottom", nil, []*UserClass{left, right}, nil, "root", "root.Bottom")

	all := bottom.AllFields()
	assert.Equal(t, "1", all["x"].Reference.GetValue().String())
}

func TestNewInstanceSkipsInitWhenEmptyArgsAndInitRequiresParams(t *testing.T) {
	c := NewUserClass("Point", nil, nil, map[string]*scope.Variable{
		"init": scope.NewVariable("init", object.NewLambda("", []string{"x"}, []object.Value{nil}, "root.Point", false), "root.Point"),
	}, "root", "root.Point")

	_, callInit := c.NewInstance(nil)
	assert.False(t, callInit)

	_, callInit = c.NewInstance([]object.Value{num(1)})
	assert.True(t, callInit)
}

func TestNewInstanceCopiesAllFieldsIndependently(t *testing.T) {
	c := NewUserClass("Counter", nil, nil, map[string]*scope.Variable{
		"count": scope.NewVariable("count", num(0), "root.Counter"),
	}, "root", "root.Counter")

	inst, _ := c.NewInstance(nil)
	field, ok := inst.Field("count")
	require.True(t, ok)
	ref, ok := object.ResolveRef(field)
	require.True(t, ok)
	ref.Set(num(5))

	classVar := c.Fields["count"]
	assert.Equal(t, "0", classVar.Reference.GetValue().String())
}

func TestIsSubclassOf(t *testing.T) {
	base := NewUserClass("Base", nil, nil, nil, "root", "root.Base")
	derived := NewUserClass("Derived", nil, []*UserClass{base}, nil, "root", "root.Derived")
	other := NewUserClass("Other", nil, nil, nil, "root", "root.Other")

	assert.True(t, derived.IsSubclassOf(base))
	assert.True(t, derived.IsSubclassOf(derived))
	assert.False(t, derived.IsSubclassOf(other))
}
