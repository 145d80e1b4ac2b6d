package balancer

// Registry is an ordered collection of nodes keyed by identifier.
// Insertion order defines iteration and selection order.
//
// Registry is not safe for concurrent use.
type Registry[T comparable] struct {
	order []T
	nodes map[T]*Node[T]
}

// NewRegistry returns a registry holding given nodes in order.
// Nodes with an already seen identifier are skipped.
func NewRegistry[T comparable](nodes ...*Node[T]) *Registry[T] {
	r := new(Registry[T])
	for _, n := range nodes {
		_ = r.Insert(n)
	}
	return r
}

// Insert appends n to the registry.
// It returns an error wrapping ErrDuplicateKey if n's identifier exists.
func (r *Registry[T]) Insert(n *Node[T]) error {
	if _, has := r.nodes[n.id]; has {
		return duplicateKey(n.id)
	}
	if r.nodes == nil {
		r.nodes = make(map[T]*Node[T])
	}
	n.reset()
	r.order = append(r.order, n.id)
	r.nodes[n.id] = n
	return nil
}

// Remove deletes the node with given identifier and returns the index it had
// in the order. It takes O(n) time.
// It returns an error wrapping ErrNotFound if there is no such node.
func (r *Registry[T]) Remove(id T) (int, error) {
	if _, has := r.nodes[id]; !has {
		return -1, notFound(id)
	}
	delete(r.nodes, id)
	for i, x := range r.order {
		if x != id {
			continue
		}
		copy(r.order[i:], r.order[i+1:])
		var zero T
		r.order[len(r.order)-1] = zero
		r.order = r.order[:len(r.order)-1]
		return i, nil
	}
	panic("balancer: internal error: registry order is out of sync")
}

// SetDown marks the node with given identifier as down or up.
// It returns an error wrapping ErrNotFound if there is no such node.
func (r *Registry[T]) SetDown(id T, down bool) error {
	n, has := r.nodes[id]
	if !has {
		return notFound(id)
	}
	n.setDown(down)
	return nil
}

// Get returns the node with given identifier or nil.
func (r *Registry[T]) Get(id T) *Node[T] {
	return r.nodes[id]
}

// At returns the node at i-th position of the order or nil if i is out of
// range.
func (r *Registry[T]) At(i int) *Node[T] {
	if i < 0 || i >= len(r.order) {
		return nil
	}
	return r.nodes[r.order[i]]
}

// Contains reports whether node with given identifier is registered.
func (r *Registry[T]) Contains(id T) bool {
	_, has := r.nodes[id]
	return has
}

// Len returns the number of registered nodes.
func (r *Registry[T]) Len() int {
	return len(r.order)
}

// Nodes returns registered nodes in insertion order.
func (r *Registry[T]) Nodes() []*Node[T] {
	ret := make([]*Node[T], len(r.order))
	for i, id := range r.order {
		ret[i] = r.nodes[id]
	}
	return ret
}
