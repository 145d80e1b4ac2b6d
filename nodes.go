package balancer

// nodes holds the node operations shared by registry-backed strategies.
type nodes[T comparable] struct {
	reg Registry[T]
}

// AddNode appends n to the end of selection order.
// It returns an error wrapping ErrDuplicateKey if n's identifier exists.
func (s *nodes[T]) AddNode(n *Node[T]) error {
	return s.reg.Insert(n)
}

// RemoveNode removes node with given identifier.
// It returns an error wrapping ErrNotFound if there is no such node.
func (s *nodes[T]) RemoveNode(id T) error {
	_, err := s.reg.Remove(id)
	return err
}

// Contains reports whether node with given identifier is registered.
func (s *nodes[T]) Contains(id T) bool {
	return s.reg.Contains(id)
}

// Node returns node with given identifier or nil.
func (s *nodes[T]) Node(id T) *Node[T] {
	return s.reg.Get(id)
}

// Nodes returns all registered nodes in selection order.
func (s *nodes[T]) Nodes() []*Node[T] {
	return s.reg.Nodes()
}

// SetDown marks node with given identifier as down or up. Down nodes are
// never selected.
// It returns an error wrapping ErrNotFound if there is no such node.
func (s *nodes[T]) SetDown(id T, down bool) error {
	return s.reg.SetDown(id, down)
}

func (s *nodes[T]) init(ns []*Node[T]) {
	for _, n := range ns {
		_ = s.reg.Insert(n)
	}
}

func nodeID[T comparable](n *Node[T]) (id T, ok bool) {
	if n == nil {
		return id, false
	}
	return n.id, true
}
