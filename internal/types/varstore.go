package types

import "fmt"

// VarStore generates fresh type variable names for one module. Each
// module's canonicalization starts its own store at 0; the coordinator
// reads back Next() afterward and the solver resumes from that value, so
// the solver's fresh variables never collide with the canonicalizer's.
// Different modules reuse the same names.
type VarStore struct {
	next int
}

// NewVarStore creates a VarStore starting at the given counter value.
func NewVarStore(start int) *VarStore {
	return &VarStore{next: start}
}

// Fresh returns a new, never-before-issued type variable.
func (v *VarStore) Fresh() *TVar {
	name := fmt.Sprintf("t%d", v.next)
	v.next++
	return &TVar{Name: name}
}

// Next reports the counter value the next Fresh call will use — the
// "next_var" the coordinator threads into a Constrained message.
func (v *VarStore) Next() int {
	return v.next
}
