package bus

import (
	"testing"

	"github.com/lumen-lang/lumen/internal/modid"
	"github.com/stretchr/testify/require"
)

func TestSameProducerOrderingIsPreserved(t *testing.T) {
	b := New()
	sender := b.Sender()

	go func() {
		sender.SendDepsRequested(1, nil)
		sender.SendDepsRequested(2, nil)
		sender.SendDepsRequested(3, nil)
	}()

	var got []modid.ID
	for i := 0; i < 3; i++ {
		msg, ok := b.Recv()
		require.True(t, ok)
		require.Equal(t, KindDepsRequested, msg.Kind)
		got = append(got, msg.DepsRequested.ModuleID)
	}

	require.Equal(t, []modid.ID{1, 2, 3}, got)
}

func TestRecvAfterCloseReturnsFalse(t *testing.T) {
	b := New()
	sender := b.Sender()
	sender.SendDepsRequested(1, nil)
	b.Close()

	msg, ok := b.Recv()
	require.True(t, ok)
	require.Equal(t, modid.ID(1), msg.DepsRequested.ModuleID)

	_, ok = b.Recv()
	require.False(t, ok, "receiving after the bus drains and closes must report channel death")
}
