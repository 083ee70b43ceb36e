package object

// Cell is the storage a Reference ultimately points at. Assignment through
// any alias of a Reference mutates the same Cell; DeepCopy of a Reference
// allocates a brand new Cell (and deep-copies the Cell's value).
type Cell struct {
	value Value
}

// Reference is the unifying indirection every variable binding goes
// through. It either owns a Cell directly, or aliases another Reference
// (so re-pointing a variable's binding — `ref = anotherRef` — works without
// copying the underlying value).
type Reference struct {
	cell    *Cell
	aliasOf *Reference
}

// NewReference allocates a fresh cell holding v.
func NewReference(v Value) *Reference {
	return &Reference{cell: &Cell{value: v}}
}

// NewAlias returns a Reference that points at target's cell indirectly:
// re-pointing target later is observed through this alias too.
func NewAlias(target *Reference) *Reference {
	return &Reference{aliasOf: target}
}

func (r *Reference) Type() string { return TypeReference }

func (r *Reference) String() string { return r.GetValue().String() }

// DeepCopy allocates a new cell holding a deep copy of the resolved value.
func (r *Reference) DeepCopy() Value {
	return NewReference(r.GetValue().DeepCopy())
}

func (r *Reference) Equals(other Value) bool {
	return r.GetValue().Equals(ResolveObj(other))
}

// GetValue follows the alias chain to the owning Reference, then returns
// its cell's value, collapsing indirection transparently.
func (r *Reference) GetValue() Value {
	owner := r.owner()
	return owner.cell.value
}

// Set stores v in the cell this reference (transitively) owns.
func (r *Reference) Set(v Value) {
	owner := r.owner()
	owner.cell.value = v
}

// owner follows aliasOf links until it reaches the Reference that actually
// owns a cell.
func (r *Reference) owner() *Reference {
	cur := r
	for cur.aliasOf != nil {
		cur = cur.aliasOf
	}
	return cur
}

// ResolveObj unwraps reference indirection (of any depth) and returns the
// first non-Reference value reached. Non-reference values are returned
// unchanged.
func ResolveObj(v Value) Value {
	for {
		ref, ok := v.(*Reference)
		if !ok {
			return v
		}
		v = ref.GetValue()
	}
}

// ResolveRef returns the Reference that owns the underlying cell for v, if
// v is a reference (possibly through a chain of aliases).
func ResolveRef(v Value) (*Reference, bool) {
	ref, ok := v.(*Reference)
	if !ok {
		return nil, false
	}
	return ref.owner(), true
}
