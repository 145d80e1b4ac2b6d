package balancer

import "sync/atomic"

// RoundRobin selects up nodes one after another in insertion order.
type RoundRobin[T comparable] struct {
	nodes[T]

	// cursor is an index of the next candidate.
	cursor int
}

// NewRoundRobin returns round robin over given nodes.
// Nodes with an already seen identifier are skipped.
func NewRoundRobin[T comparable](ns ...*Node[T]) *RoundRobin[T] {
	r := new(RoundRobin[T])
	r.init(ns)
	return r
}

// RemoveNode removes node with given identifier. The node which would have
// been selected after the removed one stays the next one.
// It returns an error wrapping ErrNotFound if there is no such node.
func (r *RoundRobin[T]) RemoveNode(id T) error {
	i, err := r.reg.Remove(id)
	if err != nil {
		return err
	}
	if i < r.cursor {
		r.cursor--
	}
	if r.cursor >= r.reg.Len() {
		r.cursor = 0
	}
	return nil
}

// Next returns the next up node or nil if there are no up nodes.
func (r *RoundRobin[T]) Next() *Node[T] {
	n := r.reg.Len()
	if n == 0 {
		return nil
	}
	if r.cursor >= n {
		r.cursor = 0
	}
	for i := 0; i < n; i++ {
		x := r.reg.At(r.cursor)
		r.cursor = (r.cursor + 1) % n
		if !x.down {
			return x
		}
	}
	return nil
}

// NextID is like Next() but returns only node's identifier.
func (r *RoundRobin[T]) NextID() (T, bool) {
	return nodeID(r.Next())
}

func (r *RoundRobin[T]) pick(string) *Node[T] {
	return r.Next()
}

// AtomicRoundRobin is a round robin which cursor is advanced atomically.
// Next() may be called from multiple goroutines at once.
//
// AtomicRoundRobin does not synchronize structural changes: AddNode(),
// RemoveNode() and SetDown() must not run concurrently with Next() or with
// each other unless the caller holds an external lock.
type AtomicRoundRobin[T comparable] struct {
	nodes[T]

	cursor atomic.Uint64
}

// NewAtomicRoundRobin returns lock-free round robin over given nodes.
// Nodes with an already seen identifier are skipped.
func NewAtomicRoundRobin[T comparable](ns ...*Node[T]) *AtomicRoundRobin[T] {
	r := new(AtomicRoundRobin[T])
	r.init(ns)
	return r
}

// Next returns the next up node or nil if there are no up nodes.
func (r *AtomicRoundRobin[T]) Next() *Node[T] {
	n := r.reg.Len()
	if n == 0 {
		return nil
	}
	for i := 0; i < n; i++ {
		x := r.reg.At(r.advance(uint64(n)))
		if x != nil && !x.down {
			return x
		}
	}
	return nil
}

// NextID is like Next() but returns only node's identifier.
func (r *AtomicRoundRobin[T]) NextID() (T, bool) {
	return nodeID(r.Next())
}

// advance moves the cursor one step forward wrapping at n and returns its
// previous position.
func (r *AtomicRoundRobin[T]) advance(n uint64) int {
	for {
		prev := r.cursor.Load()
		next := (prev + 1) % n
		if r.cursor.CompareAndSwap(prev, next) {
			return int(prev % n)
		}
	}
}
