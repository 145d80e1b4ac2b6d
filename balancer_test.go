package balancer

import (
	"fmt"
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

var allStrategies = []Strategy{
	RoundRobinStrategy,
	RandomStrategy,
	SmoothWeightedStrategy,
	ConsistentHashStrategy,
}

func TestBalancerContract(t *testing.T) {
	for _, s := range allStrategies {
		t.Run(s.String(), func(t *testing.T) {
			b := New(s, []*Node[string]{
				NewNode("a"),
				NewNode("b"),
				NewNode("a"),
			}, WithLogger(zaptest.NewLogger(t)))

			require.Equal(t, s, b.Strategy())
			require.Len(t, b.Nodes(), 2)
			assert.True(t, b.Contains("a"))
			assert.False(t, b.Contains("c"))
			assert.Nil(t, b.Node("c"))
			assert.Equal(t, "b", b.Node("b").ID())

			require.NoError(t, b.AddNode(NewNode("c")))
			require.ErrorIs(t, b.AddNode(NewNode("c")), ErrDuplicateKey)

			var ids []string
			for _, n := range b.Nodes() {
				ids = append(ids, n.ID())
			}
			assert.Equal(t, []string{"a", "b", "c"}, ids)

			for i := 0; i < 10; i++ {
				id, ok := b.PickID(strconv.Itoa(i))
				require.True(t, ok)
				assert.True(t, b.Contains(id))
			}

			require.NoError(t, b.SetDown("a", true))
			assert.True(t, b.Node("a").Down())
			require.ErrorIs(t, b.SetDown("x", true), ErrNotFound)

			require.NoError(t, b.RemoveNode("a"))
			require.ErrorIs(t, b.RemoveNode("a"), ErrNotFound)
			assert.False(t, b.Contains("a"))

			for i := 0; i < 10; i++ {
				id, ok := b.NextID()
				require.True(t, ok)
				assert.NotEqual(t, "a", id)
			}

			require.NoError(t, b.RemoveNode("b"))
			require.NoError(t, b.RemoveNode("c"))
			assert.Nil(t, b.Next())
			_, ok := b.PickID("key")
			assert.False(t, ok)
		})
	}
}

func TestBalancerDownExclusion(t *testing.T) {
	for _, s := range []Strategy{
		RoundRobinStrategy,
		RandomStrategy,
		SmoothWeightedStrategy,
	} {
		t.Run(s.String(), func(t *testing.T) {
			b := New(s, intNodes(1, 2, 3))

			require.NoError(t, b.SetDown(2, true))
			for i := 0; i < 100; i++ {
				id, ok := b.NextID()
				require.True(t, ok)
				require.NotEqual(t, 2, id)
			}

			require.NoError(t, b.SetDown(1, true))
			require.NoError(t, b.SetDown(3, true))
			for i := 0; i < 10; i++ {
				require.Nil(t, b.Next())
			}

			require.NoError(t, b.SetDown(2, false))
			for i := 0; i < 10; i++ {
				id, ok := b.NextID()
				require.True(t, ok)
				require.Equal(t, 2, id)
			}
		})
	}
}

func TestBalancerConsistentHash(t *testing.T) {
	b := New(ConsistentHashStrategy, []*Node[string]{
		NewNode("1"),
		NewNode("2"),
		NewNode("3"),
	}, WithReplicas(10))

	owner, ok := b.PickID("123")
	require.True(t, ok)
	for i := 0; i < 10; i++ {
		id, _ := b.PickID("123")
		require.Equal(t, owner, id)
	}

	// Down flag is recorded but lookups ignore it.
	require.NoError(t, b.SetDown(owner, true))
	id, _ := b.PickID("123")
	require.Equal(t, owner, id)

	require.NoError(t, b.RemoveNode(owner))
	id, ok = b.PickID("123")
	require.True(t, ok)
	require.NotEqual(t, owner, id)

	ring := b.sel.(*Ring[string])
	require.Equal(t, 10, ring.Replicas)
}

func TestBalancerRoundTrip(t *testing.T) {
	for _, s := range allStrategies {
		t.Run(s.String(), func(t *testing.T) {
			b := New(s, weightedNodes(t, 3, 2, 1))
			for i := 0; i < 5; i++ {
				b.Next()
			}
			n := b.Node(1)
			for i := 0; i < 3; i++ {
				require.NoError(t, b.RemoveNode(1))
				require.False(t, b.Contains(1))
				require.NoError(t, b.AddNode(n))
				require.True(t, b.Contains(1))
				assert.Zero(t, n.current)
				assert.Equal(t, n.Weight(), n.effective)
			}
			assert.Len(t, b.Nodes(), 3)
		})
	}
}

func TestTryNew(t *testing.T) {
	_, err := TryNew(RoundRobinStrategy, []*Node[string]{
		NewNode("a"),
		NewNode("a"),
	})
	require.ErrorIs(t, err, ErrDuplicateKey)

	_, err = TryNew(Strategy(42), []*Node[string]{NewNode("a")})
	require.ErrorIs(t, err, ErrInvalidParameter)

	b, err := TryNew(SmoothWeightedStrategy, weightedNodes(t, 3, 2, 1))
	require.NoError(t, err)

	counts := make(map[int]int)
	for i := 0; i < 12; i++ {
		id, ok := b.NextID()
		require.True(t, ok)
		counts[id]++
	}
	assert.Equal(t, map[int]int{1: 6, 2: 4, 3: 2}, counts)
}

func TestNewUnknownStrategy(t *testing.T) {
	require.Panics(t, func() {
		New[string](Strategy(-1), nil)
	})
}

func TestBalancerAddNodes(t *testing.T) {
	b := New(RoundRobinStrategy, intNodes(1, 2))
	err := b.AddNodes(intNodes(2, 3, 1, 4)...)
	require.Error(t, err)

	errs := multierr.Errors(err)
	require.Len(t, errs, 2)
	for _, err := range errs {
		assert.ErrorIs(t, err, ErrDuplicateKey)
	}
	var ids []int
	for _, n := range b.Nodes() {
		ids = append(ids, n.ID())
	}
	assert.Equal(t, []int{1, 2, 3, 4}, ids)

	require.NoError(t, b.AddNodes(intNodes(5, 6)...))
}

func TestBalancerRandomSource(t *testing.T) {
	b := New(RandomStrategy, intNodes(1, 2, 3), WithIntn(func(n int) int {
		return n - 1
	}))
	for i := 0; i < 3; i++ {
		id, _ := b.NextID()
		require.Equal(t, 3, id)
	}
}

func TestBalancerLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	b := New(RoundRobinStrategy, intNodes(1, 1), WithLogger(zap.New(core)))

	require.Equal(t, 1, logs.FilterMessage("duplicate node ignored").Len())
	require.Equal(t, 1, logs.FilterMessage("node added").Len())

	require.NoError(t, b.SetDown(1, true))
	require.Nil(t, b.Next())
	require.Equal(t, 1, logs.FilterMessage("node state changed").Len())

	entries := logs.FilterMessage("no node available").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "round_robin", entries[0].ContextMap()["strategy"])
}

func TestBalancerConcurrency(t *testing.T) {
	const (
		numWriter = 4
		numItem   = 250
	)
	nodes := make([]*Node[int], 0, numWriter*numItem)
	for i := 0; i < numWriter*numItem; i++ {
		nodes = append(nodes, NewNode(i))
	}
	b := New(ConsistentHashStrategy, nodes, WithReplicas(4))

	var (
		readerDone = make(chan struct{})
		writerDone = make(chan error)
	)
	go func() {
		for {
			select {
			case readerDone <- struct{}{}:
				return
			default:
				b.Pick(strconv.Itoa(rand.Intn(1000000)))
			}
		}
	}()
	for i := 0; i < numWriter; i++ {
		go func(base int) {
			for i := 0; i < numItem; i++ {
				id := base*numItem + i
				if err := b.RemoveNode(id); err != nil {
					writerDone <- fmt.Errorf("can't remove node: %v", err)
					return
				}
				if err := b.AddNode(NewNode(numWriter*numItem + id)); err != nil {
					writerDone <- fmt.Errorf("can't add node: %v", err)
					return
				}
			}
			writerDone <- nil
		}(i)
	}
	for i := 0; i < numWriter; i++ {
		require.NoError(t, <-writerDone)
	}
	<-readerDone

	require.Len(t, b.Nodes(), numWriter*numItem)
	for i := 0; i < numWriter*numItem; i++ {
		require.False(t, b.Contains(i))
		require.True(t, b.Contains(numWriter*numItem+i))
	}
}
