package balancer

import "fmt"

// Node is a registered destination.
//
// Identifier and weight are fixed at construction. The down flag is changed
// by the caller through the owning strategy's SetDown() method; scheduling
// counters are owned by SmoothWeighted.
type Node[T comparable] struct {
	id     T
	weight int
	down   bool

	// current and effective are smooth weighted round robin counters.
	// 0 <= effective <= weight holds over the node's lifetime.
	current   int
	effective int
}

// NewNode returns a node with the given identifier and weight of 1.
func NewNode[T comparable](id T) *Node[T] {
	return &Node[T]{
		id:        id,
		weight:    1,
		effective: 1,
	}
}

// NewWeightedNode returns a node with the given identifier and weight.
// It returns an error wrapping ErrInvalidParameter if w is not positive.
func NewWeightedNode[T comparable](id T, w int) (*Node[T], error) {
	if w <= 0 {
		return nil, fmt.Errorf(
			"balancer: node %v: weight must be greater than zero, got %d: %w",
			id, w, ErrInvalidParameter,
		)
	}
	return &Node[T]{
		id:        id,
		weight:    w,
		effective: w,
	}, nil
}

// ID returns node's identifier.
func (n *Node[T]) ID() T {
	return n.id
}

// Weight returns node's weight.
func (n *Node[T]) Weight() int {
	return n.weight
}

// Down reports whether node is marked as down.
func (n *Node[T]) Down() bool {
	return n.down
}

func (n *Node[T]) String() string {
	var state string
	if n.down {
		state = " down"
	}
	return fmt.Sprintf("%v~%d%s", n.id, n.weight, state)
}

// reset drops scheduling state left from a previous registration.
func (n *Node[T]) reset() {
	n.current = 0
	n.effective = n.weight
}

// setDown changes node's operational state. A node coming back up restarts
// with effective weight of 1 and ramps up to its weight on subsequent
// selections.
func (n *Node[T]) setDown(down bool) {
	if n.down && !down {
		n.effective = 1
	}
	n.down = down
}
