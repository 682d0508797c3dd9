package iface

import (
	"testing"

	"github.com/lumen-lang/lumen/internal/core"
	"github.com/lumen-lang/lumen/internal/modid"
	"github.com/lumen-lang/lumen/internal/types"
	"github.com/stretchr/testify/require"
)

func TestNewAndLookup(t *testing.T) {
	sym := core.Symbol{Module: modid.ID(1), Name: "answer"}
	st := New(map[string]*Export{
		"answer": {Symbol: sym, Scheme: types.Mono(types.TInt)},
	})

	require.False(t, st.IsPoisoned())

	scheme, ok := st.Lookup("answer")
	require.True(t, ok)
	require.True(t, scheme.Type.Equals(types.TInt))

	_, ok = st.Lookup("missing")
	require.False(t, ok)
}

func TestPoisonedHasNoExports(t *testing.T) {
	st := Poisoned()
	require.True(t, st.IsPoisoned())
	require.Empty(t, st.ExportNames())

	_, ok := st.Lookup("anything")
	require.False(t, ok)
}

func TestExportNamesSorted(t *testing.T) {
	st := New(map[string]*Export{
		"zeta":  {Scheme: types.Mono(types.TInt)},
		"alpha": {Scheme: types.Mono(types.TBool)},
		"mu":    {Scheme: types.Mono(types.TString)},
	})

	require.Equal(t, []string{"alpha", "mu", "zeta"}, st.ExportNames())
}

func TestCloneSharesUnderlyingData(t *testing.T) {
	st := New(map[string]*Export{"x": {Scheme: types.Mono(types.TInt)}})
	clone := st // SolvedTypes is a thin handle; copying it is "cloning"

	_, ok := clone.Lookup("x")
	require.True(t, ok)
}
