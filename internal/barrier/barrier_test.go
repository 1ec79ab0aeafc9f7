package barrier

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBegin_EmptySetRunsImmediately(t *testing.T) {
	b := New(PolicyOverwrite)
	ran := 0
	b.Begin(func() { ran++ })
	require.Equal(t, 1, ran)
	require.False(t, b.Draining())
}

func TestBegin_FiresOnceAfterAllComplete(t *testing.T) {
	for _, n := range []int{1, 2, 10} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			b := New(PolicyOverwrite)
			for i := range n {
				b.Register(fmt.Sprintf("out/%d.html", i))
			}
			fired := 0
			b.Begin(func() { fired++ })
			require.True(t, b.Draining())

			for i := range n {
				require.Equal(t, 0, fired)
				require.True(t, b.Complete(fmt.Sprintf("out/%d.html", i)))
			}
			require.Equal(t, 1, fired)
			require.Equal(t, 0, b.Pending())
			require.False(t, b.Draining())
		})
	}
}

func TestBegin_BeforeRegisterFiresImmediately(t *testing.T) {
	b := New(PolicyOverwrite)
	fired := 0
	b.Begin(func() {
		fired++
		b.Register("a")
		b.Register("b")
	})
	require.Equal(t, 1, fired)
	require.Equal(t, 2, b.Pending())

	second := 0
	b.Begin(func() { second++ })
	b.Complete("a")
	require.Equal(t, 0, second)
	b.Complete("b")
	require.Equal(t, 1, second)
}

func TestComplete_UnknownIDIsIgnored(t *testing.T) {
	b := New(PolicyOverwrite)
	b.Register("a")
	require.False(t, b.Complete("nope"))
	require.Equal(t, 1, b.Pending())
}

func TestRegister_DuplicateIDsAreCounted(t *testing.T) {
	b := New(PolicyOverwrite)
	b.Register("dist/index.html")
	b.Register("dist/index.html")

	fired := 0
	b.Begin(func() { fired++ })
	b.Complete("dist/index.html")
	require.Equal(t, 0, fired)
	require.Equal(t, 1, b.Pending())
	b.Complete("dist/index.html")
	require.Equal(t, 1, fired)
}

func TestOverwrite_LaterBeginReplacesWaiting(t *testing.T) {
	b := New(PolicyOverwrite)
	b.Register("a")

	var order []string
	dropped := 0
	b.BeginWithDrop(func() { order = append(order, "first") }, func() { dropped++ })
	b.Begin(func() { order = append(order, "second") })
	require.Equal(t, 1, dropped)

	b.Complete("a")
	require.Equal(t, []string{"second"}, order)
}

func TestQueue_RunsInOrder(t *testing.T) {
	b := New(PolicyQueue)
	b.Register("a")

	var order []string
	b.Begin(func() { order = append(order, "first") })
	b.Begin(func() { order = append(order, "second") })
	b.Complete("a")
	require.Equal(t, []string{"first", "second"}, order)
	require.False(t, b.Draining())
}

func TestQueue_WaitsForOperationsIssuedByPredecessor(t *testing.T) {
	b := New(PolicyQueue)
	b.Register("pass1")

	var order []string
	b.Begin(func() {
		order = append(order, "post-process")
		b.Register("sitemap")
	})
	b.Begin(func() { order = append(order, "next-pass") })

	b.Complete("pass1")
	require.Equal(t, []string{"post-process"}, order)
	require.True(t, b.Draining())

	b.Complete("sitemap")
	require.Equal(t, []string{"post-process", "next-pass"}, order)
}

func TestBegin_WhileQueueNonEmptyDoesNotJumpAhead(t *testing.T) {
	b := New(PolicyQueue)
	b.Register("a")

	var order []string
	b.Begin(func() {
		order = append(order, "first")
		// A Begin issued from inside a continuation with nothing pending
		// still runs after the continuations queued before it.
		b.Begin(func() { order = append(order, "nested") })
	})
	b.Begin(func() { order = append(order, "second") })
	b.Complete("a")
	require.Equal(t, []string{"first", "second", "nested"}, order)
}

func TestZeroValueUsesOverwrite(t *testing.T) {
	var b Barrier
	require.Equal(t, PolicyOverwrite, b.Policy())
	b.Register("x")
	fired := 0
	b.Begin(func() { fired++ })
	b.Complete("x")
	require.Equal(t, 1, fired)
	require.Equal(t, "overwrite", PolicyOverwrite.String())
	require.Equal(t, "queue", PolicyQueue.String())
}

func TestSetPolicy_AppliesToLaterBegin(t *testing.T) {
	b := New(PolicyOverwrite)
	b.Register("a")

	var order []string
	b.Begin(func() { order = append(order, "first") })
	b.SetPolicy(PolicyQueue)
	require.Equal(t, PolicyQueue, b.Policy())
	b.Begin(func() { order = append(order, "second") })

	b.Complete("a")
	require.Equal(t, []string{"first", "second"}, order)
}
