package balancer

import (
	"hash"

	"go.uber.org/zap"
)

type options struct {
	replicas int
	hash     func() hash.Hash64
	intn     func(int) int
	logger   *zap.Logger
	metrics  *Metrics
}

func newOptions(opts []Option) options {
	o := options{
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option configures a Balancer.
type Option func(*options)

// WithReplicas sets the number of ring points per unit of node weight used
// by ConsistentHashStrategy. Non-positive n means DefaultReplicas.
func WithReplicas(n int) Option {
	return func(o *options) {
		o.replicas = n
	}
}

// WithHash sets the hash function used by ConsistentHashStrategy.
func WithHash(fn func() hash.Hash64) Option {
	return func(o *options) {
		o.hash = fn
	}
}

// WithIntn sets the random number source used by RandomStrategy.
// fn must return a number in [0, n).
func WithIntn(fn func(n int) int) Option {
	return func(o *options) {
		o.intn = fn
	}
}

// WithLogger sets a logger receiving debug messages about topology changes
// and empty selections.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics makes Balancer report its activity to m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}
