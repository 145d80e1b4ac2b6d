package balancer

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// selector is implemented by every strategy type.
type selector[T comparable] interface {
	AddNode(*Node[T]) error
	RemoveNode(T) error
	Contains(T) bool
	Node(T) *Node[T]
	Nodes() []*Node[T]
	SetDown(T, bool) error

	pick(key string) *Node[T]
}

var (
	_ selector[string] = (*RoundRobin[string])(nil)
	_ selector[string] = (*Random[string])(nil)
	_ selector[string] = (*SmoothWeighted[string])(nil)
	_ selector[string] = (*Ring[string])(nil)
)

// Balancer provides one contract over any of the selection strategies.
//
// Balancer is as safe for concurrent use as its underlying strategy is: only
// ConsistentHashStrategy balancers may be used from multiple goroutines
// without external locking.
type Balancer[T comparable] struct {
	strategy Strategy
	sel      selector[T]
	logger   *zap.Logger
	metrics  *Metrics
}

// New returns a balancer using strategy s over given nodes.
// Nodes with an already seen identifier are skipped.
// New panics if s is not one of the known strategies.
func New[T comparable](s Strategy, nodes []*Node[T], opts ...Option) *Balancer[T] {
	b := newBalancer[T](s, newOptions(opts))
	for _, n := range nodes {
		if err := b.AddNode(n); err != nil {
			b.logger.Debug("duplicate node ignored", zap.Error(err))
		}
	}
	return b
}

// TryNew is like New() but returns an error on the first node with an
// already seen identifier. It returns an error wrapping ErrInvalidParameter
// if s is not one of the known strategies.
func TryNew[T comparable](s Strategy, nodes []*Node[T], opts ...Option) (*Balancer[T], error) {
	if s < 0 || int(s) >= len(strategyNames) {
		return nil, fmt.Errorf("balancer: unknown strategy %d: %w", int(s), ErrInvalidParameter)
	}
	b := newBalancer[T](s, newOptions(opts))
	for _, n := range nodes {
		if err := b.AddNode(n); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func newBalancer[T comparable](s Strategy, o options) *Balancer[T] {
	var sel selector[T]
	switch s {
	case RoundRobinStrategy:
		sel = NewRoundRobin[T]()
	case RandomStrategy:
		sel = &Random[T]{
			Intn: o.intn,
		}
	case SmoothWeightedStrategy:
		sel = NewSmoothWeighted[T]()
	case ConsistentHashStrategy:
		sel = &Ring[T]{
			Hash:     o.hash,
			Replicas: o.replicas,
		}
	default:
		panic(fmt.Sprintf("balancer: unknown strategy %d", int(s)))
	}
	b := &Balancer[T]{
		strategy: s,
		sel:      sel,
		logger:   o.logger.With(zap.Stringer("strategy", s)),
		metrics:  o.metrics,
	}
	return b
}

// Strategy returns the strategy used by b.
func (b *Balancer[T]) Strategy() Strategy {
	return b.strategy
}

// AddNode registers n.
// It returns an error wrapping ErrDuplicateKey if n's identifier exists.
func (b *Balancer[T]) AddNode(n *Node[T]) error {
	if err := b.sel.AddNode(n); err != nil {
		return err
	}
	b.metrics.addNodes(b.strategy, 1)
	b.logger.Debug("node added",
		zap.Any("node", n.id),
		zap.Int("weight", n.weight),
	)
	return nil
}

// AddNodes registers all given nodes. Unlike TryNew() it does not stop at
// the first failure: every node which can be added is added, and errors for
// the rest are combined into the returned error.
func (b *Balancer[T]) AddNodes(nodes ...*Node[T]) (err error) {
	for _, n := range nodes {
		err = multierr.Append(err, b.AddNode(n))
	}
	return err
}

// RemoveNode removes node with given identifier.
// It returns an error wrapping ErrNotFound if there is no such node.
func (b *Balancer[T]) RemoveNode(id T) error {
	if err := b.sel.RemoveNode(id); err != nil {
		return err
	}
	b.metrics.addNodes(b.strategy, -1)
	b.logger.Debug("node removed", zap.Any("node", id))
	return nil
}

// Contains reports whether node with given identifier is registered.
func (b *Balancer[T]) Contains(id T) bool {
	return b.sel.Contains(id)
}

// Node returns node with given identifier or nil.
func (b *Balancer[T]) Node(id T) *Node[T] {
	return b.sel.Node(id)
}

// Nodes returns all registered nodes in insertion order.
func (b *Balancer[T]) Nodes() []*Node[T] {
	return b.sel.Nodes()
}

// SetDown marks node with given identifier as down or up.
// ConsistentHashStrategy records the flag but keeps selecting down nodes.
// It returns an error wrapping ErrNotFound if there is no such node.
func (b *Balancer[T]) SetDown(id T, down bool) error {
	if err := b.sel.SetDown(id, down); err != nil {
		return err
	}
	b.logger.Debug("node state changed",
		zap.Any("node", id),
		zap.Bool("down", down),
	)
	return nil
}

// Next returns the next node to send work to, or nil if no node is
// available. Under ConsistentHashStrategy it is the same as Pick("").
func (b *Balancer[T]) Next() *Node[T] {
	return b.Pick("")
}

// NextID is like Next() but returns only node's identifier.
func (b *Balancer[T]) NextID() (T, bool) {
	return nodeID(b.Next())
}

// Pick returns the node to send work identified by key to, or nil if no
// node is available. The key is used only by ConsistentHashStrategy; other
// strategies behave as Next().
func (b *Balancer[T]) Pick(key string) *Node[T] {
	n := b.sel.pick(key)
	if n == nil {
		b.metrics.missed(b.strategy)
		b.logger.Debug("no node available")
		return nil
	}
	b.metrics.selected(b.strategy, n.id)
	return n
}

// PickID is like Pick() but returns only node's identifier.
func (b *Balancer[T]) PickID(key string) (T, bool) {
	return nodeID(b.Pick(key))
}
