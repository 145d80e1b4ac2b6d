package balancer

import "github.com/gobwas/avl"

// point represents a replica of a node on the ring.
//
// Points are ordered by their hash value. Points of different nodes sharing
// the same value are ordered by node insertion sequence, so the node inserted
// earlier owns the collided position.
type point[T comparable] struct {
	// bucket is a bucket where point belongs to.
	bucket *bucket[T]

	// index is a constant index of the point within bucket.
	index int

	// val is a hash value of the point.
	val uint64
}

func (p *point[T]) Compare(x avl.Item) int {
	q := x.(*point[T])
	if c := compare(p.val, q.val); c != 0 {
		return c
	}
	if c := compare(p.bucket.seq, q.bucket.seq); c != 0 {
		return c
	}
	return p.index - q.index
}

// bucket holds a node together with its points on the ring.
type bucket[T comparable] struct {
	node   *Node[T]
	seq    uint64
	points []*point[T]
}

// search is a ring lookup value. It is never equal to any point: it orders
// right before all points having the same hash value.
type search[T comparable] uint64

func (s search[T]) Compare(x avl.Item) int {
	if uint64(s) <= x.(*point[T]).val {
		return -1
	}
	return 1
}

func compare(x0, x1 uint64) int {
	if x0 < x1 {
		return -1
	}
	if x0 > x1 {
		return 1
	}
	return 0
}
