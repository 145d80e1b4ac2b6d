package balancer

// SmoothWeighted implements smooth weighted round robin as it is done by
// nginx.
//
// Over any window of selections equal to the sum of up nodes' weights each
// node is selected a number of times proportional to its weight, and
// selections of the same node are spread across the window rather than
// clustered.
type SmoothWeighted[T comparable] struct {
	nodes[T]
}

// NewSmoothWeighted returns smooth weighted round robin over given nodes.
// Nodes with an already seen identifier are skipped.
func NewSmoothWeighted[T comparable](ns ...*Node[T]) *SmoothWeighted[T] {
	w := new(SmoothWeighted[T])
	w.init(ns)
	return w
}

// Next returns the next up node or nil if there are no up nodes.
// Counters of down nodes are left untouched.
func (w *SmoothWeighted[T]) Next() *Node[T] {
	var (
		best  *Node[T]
		total int
	)
	for i, n := 0, w.reg.Len(); i < n; i++ {
		x := w.reg.At(i)
		if x.down {
			continue
		}
		x.current += x.effective
		total += x.effective
		if x.effective < x.weight {
			x.effective++
		}
		if best == nil || x.current > best.current {
			best = x
		}
	}
	if best == nil {
		return nil
	}
	best.current -= total
	return best
}

// NextID is like Next() but returns only node's identifier.
func (w *SmoothWeighted[T]) NextID() (T, bool) {
	return nodeID(w.Next())
}

func (w *SmoothWeighted[T]) pick(string) *Node[T] {
	return w.Next()
}
