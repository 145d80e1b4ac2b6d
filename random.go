package balancer

import "math/rand"

// Random selects the first up node found scanning from a random position.
//
// Note that selection is not uniform among up nodes when some of them are
// down: a node following a run of down nodes is picked more often.
type Random[T comparable] struct {
	nodes[T]

	// Intn is an optional function returning a pseudo-random number in
	// [0, n). Values out of that range are reduced modulo n.
	// If Intn is nil, then math/rand.Intn is used.
	Intn func(n int) int
}

// NewRandom returns random selection over given nodes.
// Nodes with an already seen identifier are skipped.
func NewRandom[T comparable](ns ...*Node[T]) *Random[T] {
	r := new(Random[T])
	r.init(ns)
	return r
}

// Next returns a random up node or nil if there are no up nodes.
func (r *Random[T]) Next() *Node[T] {
	n := r.reg.Len()
	if n == 0 {
		return nil
	}
	start := r.intn(n) % n
	if start < 0 {
		start += n
	}
	for i := 0; i < n; i++ {
		x := r.reg.At((start + i) % n)
		if !x.down {
			return x
		}
	}
	return nil
}

// NextID is like Next() but returns only node's identifier.
func (r *Random[T]) NextID() (T, bool) {
	return nodeID(r.Next())
}

func (r *Random[T]) pick(string) *Node[T] {
	return r.Next()
}

func (r *Random[T]) intn(n int) int {
	if r.Intn != nil {
		return r.Intn(n)
	}
	return rand.Intn(n)
}
