package balancer

import (
	"fmt"
	"hash"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/gobwas/avl"
)

// DefaultReplicas is the default number of ring points per unit of node
// weight.
const DefaultReplicas = 160

// MaxNodePoints is the maximum number of ring points a single node may have.
// Nodes whose weight*Replicas exceeds it are placed as MaxNodePoints points.
const MaxNodePoints = 1 << 20

// Ring is a consistent hashing ring.
//
// Each node is placed on the ring as max(1, weight*Replicas) points, but not
// more than MaxNodePoints. A key
// is served by the node owning the first point clockwise from the key's
// hash. Removing a node relocates only the keys which were served by it.
//
// Ring ignores nodes' down flag: lookups return the owner of the nearest
// point whether it is up or not. Unhealthy nodes should be removed from the
// ring instead.
//
// Ring is goroutine safe. Ring instances must not be copied.
// The zero value for Ring is an empty ring ready to use.
type Ring[T comparable] struct {
	// Hash is an optional function used to build up a new 64-bit hash function
	// for further hash values calculation. If Hash is nil, then xxhash is
	// used.
	Hash func() hash.Hash64

	// Replicas is an optional number of ring points per unit of node weight.
	// Changing it affects only nodes added afterwards.
	//
	// If Replicas is zero, then the DefaultReplicas is used.
	Replicas int

	// hashPool is a pool of reusable hash functions.
	hashPool sync.Pool

	// mu serializes write operations on the ring and protects buckets.
	mu sync.Mutex

	// buckets is a mapping of node identifier to its bucket.
	// It is protected by r.mu mutex.
	buckets map[T]*bucket[T]

	// seq is a sequence number given to the next inserted bucket.
	// It is protected by r.mu mutex.
	seq uint64

	// ringMu serializes read & write operations on the tree holding bucket
	// points.
	ringMu sync.RWMutex

	// ring is a tree holding bucket points.
	// It's protected by r.mu and r.ringMu mutex.
	ring avl.Tree // tree<*point[T]>
}

// NewRing returns a ring with given number of points per unit of weight,
// holding given nodes. Nodes with an already seen identifier are skipped.
func NewRing[T comparable](replicas int, ns ...*Node[T]) *Ring[T] {
	r := &Ring[T]{
		Replicas: replicas,
	}
	for _, n := range ns {
		_ = r.AddNode(n)
	}
	return r
}

// AddNode puts n onto the ring.
// It returns an error wrapping ErrDuplicateKey if n's identifier exists.
func (r *Ring[T]) AddNode(n *Node[T]) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, has := r.buckets[n.id]; has {
		return duplicateKey(n.id)
	}
	if r.buckets == nil {
		r.buckets = make(map[T]*bucket[T])
	}
	n.reset()
	b := &bucket[T]{
		node: n,
		seq:  r.seq,
	}
	r.seq++

	size := r.numPoints(n.weight)
	b.points = make([]*point[T], size)
	for i := range b.points {
		b.points[i] = &point[T]{
			bucket: b,
			index:  i,
			val:    r.digest(n.id, replicaSuffix(i)),
		}
	}

	root := r.root()
	for _, p := range b.points {
		root = mustInsertTree(root, p)
	}
	r.buckets[n.id] = b
	r.swap(root)

	return nil
}

// RemoveNode removes node with given identifier and all its points from the
// ring.
// It returns an error wrapping ErrNotFound if there is no such node.
func (r *Ring[T]) RemoveNode(id T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, has := r.buckets[id]
	if !has {
		return notFound(id)
	}
	root := r.root()
	for _, p := range b.points {
		root = mustDeleteTree(root, p)
	}
	delete(r.buckets, id)
	r.swap(root)

	return nil
}

// Contains reports whether node with given identifier is on the ring.
func (r *Ring[T]) Contains(id T) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, has := r.buckets[id]
	return has
}

// Node returns node with given identifier or nil.
func (r *Ring[T]) Node(id T) *Node[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, has := r.buckets[id]; has {
		return b.node
	}
	return nil
}

// Nodes returns all nodes on the ring in insertion order.
func (r *Ring[T]) Nodes() []*Node[T] {
	r.mu.Lock()
	bs := make([]*bucket[T], 0, len(r.buckets))
	for _, b := range r.buckets {
		bs = append(bs, b)
	}
	r.mu.Unlock()

	sort.Slice(bs, func(i, j int) bool {
		return bs[i].seq < bs[j].seq
	})
	ret := make([]*Node[T], len(bs))
	for i, b := range bs {
		ret[i] = b.node
	}
	return ret
}

// SetDown records node's operational state. It does not affect lookups.
// It returns an error wrapping ErrNotFound if there is no such node.
func (r *Ring[T]) SetDown(id T, down bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, has := r.buckets[id]
	if !has {
		return notFound(id)
	}
	b.node.setDown(down)
	return nil
}

// Get returns the node serving given key.
// Returned node is nil only when ring is empty.
func (r *Ring[T]) Get(key string) *Node[T] {
	d := r.digest(key, nil)

	r.ringMu.RLock()
	item := r.ring.Successor(search[T](d))
	if item == nil {
		item = r.ring.Min()
	}
	r.ringMu.RUnlock()

	if item == nil {
		return nil
	}
	return item.(*point[T]).bucket.node
}

// GetID is like Get() but returns only node's identifier.
func (r *Ring[T]) GetID(key string) (T, bool) {
	return nodeID(r.Get(key))
}

func (r *Ring[T]) pick(key string) *Node[T] {
	return r.Get(key)
}

func (r *Ring[T]) replicas() int {
	if r.Replicas > 0 {
		return r.Replicas
	}
	return DefaultReplicas
}

func (r *Ring[T]) numPoints(weight int) int {
	return numPoints(weight, r.replicas())
}

// numPoints returns max(1, weight*replicas) capped at MaxNodePoints.
func numPoints(weight, replicas int) int {
	if weight <= 0 || replicas <= 0 {
		return 1
	}
	if weight > MaxNodePoints/replicas {
		return MaxNodePoints
	}
	return weight * replicas
}

func (r *Ring[T]) digest(x any, suffix []byte) uint64 {
	h, _ := r.hashPool.Get().(hash.Hash64)
	if h == nil {
		if r.Hash != nil {
			h = r.Hash()
		} else {
			h = xxhash.New()
		}
	}
	defer func() {
		h.Reset()
		r.hashPool.Put(h)
	}()

	err := writeKey(h, x)
	if err == nil {
		_, err = h.Write(suffix)
	}
	if err != nil {
		panic(fmt.Sprintf("balancer: digest error: %v", err))
	}
	return h.Sum64()
}

// r.mu must be held.
func (r *Ring[T]) root() avl.Tree {
	r.ringMu.RLock()
	defer r.ringMu.RUnlock()
	return r.ring
}

// r.mu must be held.
func (r *Ring[T]) swap(root avl.Tree) {
	r.ringMu.Lock()
	r.ring = root
	r.ringMu.Unlock()
}

func mustInsertTree(tree avl.Tree, x avl.Item) avl.Tree {
	tree, existing := tree.Insert(x)
	if existing != nil {
		panic("balancer: internal error: mustInsert failed")
	}
	return tree
}

func mustDeleteTree(tree avl.Tree, x avl.Item) avl.Tree {
	tree, existed := tree.Delete(x)
	if existed == nil {
		panic("balancer: internal error: mustDelete failed")
	}
	return tree
}
